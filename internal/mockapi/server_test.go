package mockapi

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"golang.org/x/crypto/bcrypt"

	"github.com/thomas/lookbook-terminal/internal/api"
	"github.com/thomas/lookbook-terminal/internal/catalog"
	"github.com/thomas/lookbook-terminal/internal/session"
	"github.com/thomas/lookbook-terminal/internal/storage"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func setupServer(t *testing.T, loginRPS float64) (*httptest.Server, *testClock) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	srv, err := New(Options{
		JWTSecret:    "test-secret",
		LoginRPS:     loginRPS,
		PasswordCost: bcrypt.MinCost,
		Logger:       logger,
	})
	require.NoError(t, err)

	clock := &testClock{now: time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)}
	srv.nowFunc = clock.Now

	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts, clock
}

// signedIn returns a client of role with a session signed in as email.
func signedIn(t *testing.T, ts *httptest.Server, role api.Role, email, password string) (*api.Client, *session.Store) {
	t.Helper()
	tokens := session.NewTokens(storage.NewMemory(), role, nil)
	client := api.NewClient(ts.URL+"/api", role, api.WithTokenStore(tokens))
	store := session.NewStore(client, tokens, nil)
	if email != "" {
		_, err := store.Login(context.Background(), email, password)
		require.NoError(t, err)
	}
	return client, store
}

func guest(ts *httptest.Server) *api.Client {
	return api.NewClient(ts.URL+"/api", api.RoleCustomer)
}

func requireStatus(t *testing.T, err error, status int) {
	t.Helper()
	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, status, apiErr.Status)
}

func TestProductListing(t *testing.T) {
	ts, _ := setupServer(t, 100)
	client := guest(ts)
	ctx := context.Background()

	page, err := client.Products(ctx, api.ProductQuery{Page: 1, Limit: 2, Sort: api.SortPriceAsc})
	require.NoError(t, err)
	assert.Equal(t, 6, page.Total)
	assert.Equal(t, 3, page.Pages)
	require.Len(t, page.Products, 2)
	assert.Equal(t, "Canvas Tote", page.Products[0].Name)
	assert.Equal(t, "Silk Scarf", page.Products[1].Name)

	page, err = client.Products(ctx, api.ProductQuery{Category: "outerwear"})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)

	page, err = client.Products(ctx, api.ProductQuery{Search: "LINEN"})
	require.NoError(t, err)
	require.Len(t, page.Products, 1)
	assert.Equal(t, "Linen Shirt", page.Products[0].Name)

	page, err = client.Products(ctx, api.ProductQuery{Featured: true, Sort: api.SortName})
	require.NoError(t, err)
	require.Len(t, page.Products, 2)
	assert.Equal(t, "Linen Shirt", page.Products[0].Name)
	assert.Equal(t, "Wool Coat", page.Products[1].Name)

	page, err = client.Products(ctx, api.ProductQuery{Page: 9})
	require.NoError(t, err)
	assert.Empty(t, page.Products)
}

func TestProductMediaShapes(t *testing.T) {
	ts, _ := setupServer(t, 100)
	client := guest(ts)
	ctx := context.Background()

	shirt, err := client.Product(ctx, "p-linen-shirt")
	require.NoError(t, err)
	perColor, ok := shirt.Media.(*catalog.PerColorMedia)
	require.True(t, ok, "expected per-color media, got %T", shirt.Media)
	assert.Equal(t, []string{"sand", "navy"}, perColor.Colors)
	video, ok := catalog.ResolveVideo(shirt, "navy")
	assert.True(t, ok)
	assert.Equal(t, "/media/linen-shirt-navy.mp4", video)

	coat, err := client.Product(ctx, "p-wool-coat")
	require.NoError(t, err)
	assert.Equal(t, "p-wool-coat", coat.Identifier())
	assert.Equal(t, 340.0, coat.PriceFor("long"))

	scarf, err := client.Product(ctx, "p-silk-scarf")
	require.NoError(t, err)
	assert.Equal(t, "/media/silk-scarf-ivory.jpg", catalog.ResolveImage(scarf, "ivory"))

	jacket, err := client.Product(ctx, "p-field-jacket")
	require.NoError(t, err)
	_, legacy := jacket.Media.(catalog.LegacyMediaList)
	assert.True(t, legacy)

	_, err = client.Product(ctx, "nope")
	requireStatus(t, err, http.StatusNotFound)
}

func TestBatchKeepsRequestOrder(t *testing.T) {
	ts, _ := setupServer(t, 100)

	products, err := guest(ts).ProductsByIDs(context.Background(), []string{"p-wool-coat", "missing", "p-canvas-tote"})
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "Wool Coat", products[0].Name)
	assert.Equal(t, "Canvas Tote", products[1].Name)
}

func TestLoginNormalizesProfiles(t *testing.T) {
	ts, clock := setupServer(t, 100)

	_, ada := signedIn(t, ts, api.RoleCustomer, "ada@lookbook.test", "secret123")
	assert.Equal(t, "Ada Lovelace", ada.User().Name)
	assert.Equal(t, "London", ada.User().City)

	client, grace := signedIn(t, ts, api.RoleCustomer, "GRACE@lookbook.test", "secret123")
	assert.Equal(t, "u-grace", grace.User().ID)
	assert.Equal(t, "Arlington", grace.User().City)

	token := client.Tokens().Token()
	assert.False(t, session.Expired(token, clock.Now()))
	assert.True(t, session.Expired(token, clock.Now().Add(25*time.Hour)))
}

func TestLoginRejectsBadPassword(t *testing.T) {
	ts, _ := setupServer(t, 100)
	_, store := signedIn(t, ts, api.RoleCustomer, "", "")

	_, err := store.Login(context.Background(), "ada@lookbook.test", "wrong")
	requireStatus(t, err, http.StatusUnauthorized)
	assert.Contains(t, err.Error(), "invalid email or password")
	assert.False(t, store.SignedIn())
}

func TestAdminConsoleRejectsCustomers(t *testing.T) {
	ts, _ := setupServer(t, 100)
	client, store := signedIn(t, ts, api.RoleAdmin, "", "")

	_, err := store.Login(context.Background(), "ada@lookbook.test", "secret123")
	assert.ErrorIs(t, err, session.ErrNotAdmin)
	assert.Empty(t, client.Tokens().Token())
}

func TestLoginIsThrottled(t *testing.T) {
	ts, _ := setupServer(t, 1)
	client := guest(ts)
	creds := api.Credentials{Email: "ada@lookbook.test", Password: "secret123"}

	_, err := client.Login(context.Background(), creds)
	require.NoError(t, err)

	_, err = client.Login(context.Background(), creds)
	requireStatus(t, err, http.StatusTooManyRequests)
}

func TestRegister(t *testing.T) {
	ts, _ := setupServer(t, 100)
	client := guest(ts)
	ctx := context.Background()

	resp, err := client.Register(ctx, api.RegisterRequest{Email: "alan@lookbook.test", Password: "enigma1", FirstName: "Alan", LastName: "Turing"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "customer", resp.User.Role)
	assert.Equal(t, "Alan", session.Normalize(resp.User).FirstName)

	_, err = client.Register(ctx, api.RegisterRequest{Email: "alan@lookbook.test", Password: "enigma1"})
	requireStatus(t, err, http.StatusConflict)

	_, err = client.Register(ctx, api.RegisterRequest{Email: "short@lookbook.test", Password: "abc"})
	requireStatus(t, err, http.StatusBadRequest)
}

func TestProfileAndPassword(t *testing.T) {
	ts, _ := setupServer(t, 100)
	_, store := signedIn(t, ts, api.RoleCustomer, "ada@lookbook.test", "secret123")
	ctx := context.Background()

	p, err := store.UpdateProfile(ctx, api.ProfileUpdate{
		Name:    "Ada King",
		Profile: &api.UserProfile{FirstName: "Ada", LastName: "King", City: "Surrey"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Ada King", p.Name)
	assert.Equal(t, "Surrey", p.City)

	err = store.ChangePassword(ctx, "wrong", "newsecret")
	requireStatus(t, err, http.StatusBadRequest)

	require.NoError(t, store.ChangePassword(ctx, "secret123", "newsecret"))
	_, err = store.Login(ctx, "ada@lookbook.test", "newsecret")
	assert.NoError(t, err)
}

func TestOrders(t *testing.T) {
	ts, _ := setupServer(t, 100)
	ctx := context.Background()
	shipping := api.ShippingAddress{Name: "Ada Lovelace", Email: "ada@lookbook.test", Address: "12 Analytical Row", City: "London"}

	guestOrder, err := guest(ts).CreateOrder(ctx, api.CreateOrderRequest{
		Items: []api.OrderItem{
			{ProductID: "p-linen-shirt", Name: "Linen Shirt", Price: 90, Qty: 2},
			{ProductID: "p-canvas-tote", Name: "Canvas Tote", Price: 35, Qty: 1},
		},
		Shipping: shipping,
	})
	require.NoError(t, err)
	assert.Equal(t, "LB-1001", guestOrder.OrderNumber)
	assert.Equal(t, api.OrderPending, guestOrder.Status)
	assert.Equal(t, 215.0, guestOrder.Total)
	assert.Empty(t, guestOrder.UserID)

	shirt, err := guest(ts).Product(ctx, "p-linen-shirt")
	require.NoError(t, err)
	assert.Equal(t, 12, shirt.Stock)

	client, _ := signedIn(t, ts, api.RoleCustomer, "ada@lookbook.test", "secret123")
	mine, err := client.CreateOrder(ctx, api.CreateOrderRequest{
		Items:    []api.OrderItem{{ProductID: "p-wool-coat", Name: "Wool Coat", Price: 340, Qty: 1, Variant: "long"}},
		Shipping: shipping,
	})
	require.NoError(t, err)
	assert.Equal(t, "LB-1002", mine.OrderNumber)

	orders, err := client.MyOrders(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, mine.ID, orders[0].ID)

	byNumber, err := client.OrderByNumber(ctx, "lb-1002")
	require.NoError(t, err)
	assert.Equal(t, mine.ID, byNumber.ID)

	_, err = client.Order(ctx, guestOrder.ID)
	requireStatus(t, err, http.StatusNotFound)

	_, err = guest(ts).MyOrders(ctx)
	requireStatus(t, err, http.StatusUnauthorized)
}

func TestOrderValidation(t *testing.T) {
	ts, _ := setupServer(t, 100)
	client := guest(ts)
	ctx := context.Background()
	shipping := api.ShippingAddress{Name: "Ada", Email: "ada@lookbook.test", Address: "12 Analytical Row"}

	_, err := client.CreateOrder(ctx, api.CreateOrderRequest{Shipping: shipping})
	requireStatus(t, err, http.StatusBadRequest)

	_, err = client.CreateOrder(ctx, api.CreateOrderRequest{
		Items:    []api.OrderItem{{ProductID: "p-field-jacket", Price: 210, Qty: 1}},
		Shipping: shipping,
	})
	requireStatus(t, err, http.StatusConflict)
	assert.Contains(t, err.Error(), "out of stock")

	_, err = client.CreateOrder(ctx, api.CreateOrderRequest{
		Items: []api.OrderItem{{ProductID: "p-canvas-tote", Price: 35, Qty: 1}},
	})
	requireStatus(t, err, http.StatusBadRequest)
}

func TestExpiredTokenIsRejectedAndCleared(t *testing.T) {
	ts, clock := setupServer(t, 100)
	client, store := signedIn(t, ts, api.RoleCustomer, "ada@lookbook.test", "secret123")

	clock.Advance(25 * time.Hour)

	_, err := client.MyOrders(context.Background())
	requireStatus(t, err, http.StatusUnauthorized)
	assert.Empty(t, client.Tokens().Token())

	store.HandleError(err)
	assert.False(t, store.SignedIn())
}

func TestAdminOrders(t *testing.T) {
	ts, _ := setupServer(t, 100)
	ctx := context.Background()
	shipping := api.ShippingAddress{Name: "Ada", Email: "ada@lookbook.test", Address: "12 Analytical Row"}

	for _, qty := range []int{1, 2} {
		_, err := guest(ts).CreateOrder(ctx, api.CreateOrderRequest{
			Items:    []api.OrderItem{{ProductID: "p-oxford-shirt", Price: 75, Qty: qty}},
			Shipping: shipping,
		})
		require.NoError(t, err)
	}

	admin, _ := signedIn(t, ts, api.RoleAdmin, "admin@lookbook.test", "admin123")

	orders, err := admin.Orders(ctx, "")
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, "LB-1002", orders[0].OrderNumber, "newest first")

	updated, err := admin.UpdateOrderStatus(ctx, orders[0].ID, api.OrderShipped)
	require.NoError(t, err)
	assert.Equal(t, api.OrderShipped, updated.Status)

	_, err = admin.UpdateOrderStatus(ctx, orders[0].ID, "lost")
	requireStatus(t, err, http.StatusBadRequest)

	shipped, err := admin.Orders(ctx, api.OrderShipped)
	require.NoError(t, err)
	assert.Len(t, shipped, 1)

	stats, err := admin.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Orders)
	assert.Equal(t, 225.0, stats.Revenue)
	assert.Equal(t, 2, stats.Users)
	assert.Equal(t, 1, stats.OrdersByStatus[api.OrderShipped])

	data, err := admin.ExportOrders(ctx, "")
	require.NoError(t, err)
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(exportSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, exportColumns, rows[0])
	assert.Equal(t, "LB-1002", rows[1][0])

	customer, _ := signedIn(t, ts, api.RoleCustomer, "ada@lookbook.test", "secret123")
	_, err = customer.Stats(ctx)
	requireStatus(t, err, http.StatusForbidden)
}

func TestAdminCatalogChanges(t *testing.T) {
	ts, _ := setupServer(t, 100)
	admin, _ := signedIn(t, ts, api.RoleAdmin, "admin@lookbook.test", "admin123")
	ctx := context.Background()

	created, err := admin.CreateProduct(ctx, catalog.Product{Name: "Belt", Price: 40, Stock: 3})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	created.Featured = true
	updated, err := admin.UpdateProduct(ctx, created.ID, *created)
	require.NoError(t, err)
	assert.True(t, updated.Featured)

	require.NoError(t, admin.DeleteProduct(ctx, created.ID))
	_, err = admin.Product(ctx, created.ID)
	requireStatus(t, err, http.StatusNotFound)

	cat, err := admin.CreateCategory(ctx, api.Category{Name: "Knit Wear"})
	require.NoError(t, err)
	assert.Equal(t, "knit-wear", cat.Slug)

	_, err = guest(ts).CreateProduct(ctx, catalog.Product{Name: "Sneaky", Price: 1})
	requireStatus(t, err, http.StatusUnauthorized)
}

func TestLookbook(t *testing.T) {
	ts, _ := setupServer(t, 100)
	ctx := context.Background()

	posts, err := guest(ts).Posts(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, "post-autumn", posts[0].ID)

	reactions, err := guest(ts).React(ctx, "post-autumn", "fire")
	require.NoError(t, err)
	assert.Equal(t, 4, reactions["fire"])

	_, err = guest(ts).React(ctx, "post-autumn", "meh")
	requireStatus(t, err, http.StatusBadRequest)

	_, err = guest(ts).AddComment(ctx, "post-autumn", "Nice")
	requireStatus(t, err, http.StatusUnauthorized)

	client, _ := signedIn(t, ts, api.RoleCustomer, "ada@lookbook.test", "secret123")
	comment, err := client.AddComment(ctx, "post-autumn", "  Love the scarf  ")
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", comment.Author)
	assert.Equal(t, "Love the scarf", comment.Body)

	post, err := guest(ts).Post(ctx, "post-autumn")
	require.NoError(t, err)
	assert.Equal(t, 1, post.Comments)

	block, err := guest(ts).Content(ctx, "hero")
	require.NoError(t, err)
	assert.Equal(t, "The autumn edit", block.Title)
}

func TestAdminLookbookChanges(t *testing.T) {
	ts, _ := setupServer(t, 100)
	admin, _ := signedIn(t, ts, api.RoleAdmin, "admin@lookbook.test", "admin123")
	ctx := context.Background()

	created, err := admin.CreatePost(ctx, api.Post{Title: "Winter layers", ProductIDs: []string{"p-linen-shirt"}})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	created.Title = "Winter layering"
	updated, err := admin.UpdatePost(ctx, created.ID, *created)
	require.NoError(t, err)
	assert.Equal(t, "Winter layering", updated.Title)
	assert.Equal(t, []string{"p-linen-shirt"}, updated.ProductIDs)

	_, err = guest(ts).UpdatePost(ctx, created.ID, *created)
	requireStatus(t, err, http.StatusUnauthorized)

	require.NoError(t, admin.DeletePost(ctx, created.ID))
	_, err = guest(ts).Post(ctx, created.ID)
	requireStatus(t, err, http.StatusNotFound)

	ada, _ := signedIn(t, ts, api.RoleCustomer, "ada@lookbook.test", "secret123")
	comment, err := ada.AddComment(ctx, "post-autumn", "Where is the scarf from?")
	require.NoError(t, err)

	err = ada.DeleteComment(ctx, "post-autumn", comment.ID)
	requireStatus(t, err, http.StatusForbidden)

	require.NoError(t, admin.DeleteComment(ctx, "post-autumn", comment.ID))
	comments, err := guest(ts).Comments(ctx, "post-autumn")
	require.NoError(t, err)
	assert.Empty(t, comments)
	post, err := guest(ts).Post(ctx, "post-autumn")
	require.NoError(t, err)
	assert.Equal(t, 0, post.Comments)

	err = admin.DeleteComment(ctx, "post-autumn", comment.ID)
	requireStatus(t, err, http.StatusNotFound)
}

func TestAdminContentAndCategoryChanges(t *testing.T) {
	ts, _ := setupServer(t, 100)
	admin, _ := signedIn(t, ts, api.RoleAdmin, "admin@lookbook.test", "admin123")
	ctx := context.Background()

	saved, err := admin.PutContent(ctx, api.ContentBlock{Key: "hero", Title: "The winter edit", Body: "Wool, layered."})
	require.NoError(t, err)
	assert.False(t, saved.UpdatedAt.IsZero())

	block, err := guest(ts).Content(ctx, "hero")
	require.NoError(t, err)
	assert.Equal(t, "The winter edit", block.Title)
	assert.Equal(t, "Wool, layered.", block.Body)

	_, err = guest(ts).PutContent(ctx, api.ContentBlock{Key: "hero", Title: "Defaced"})
	requireStatus(t, err, http.StatusUnauthorized)

	cat, err := admin.UpdateCategory(ctx, "cat-shirts", api.Category{Name: "Shirts and Tops"})
	require.NoError(t, err)
	assert.Equal(t, "cat-shirts", cat.ID)
	assert.Equal(t, "shirts-and-tops", cat.Slug)

	_, err = admin.UpdateCategory(ctx, "cat-shirts", api.Category{Name: "  "})
	requireStatus(t, err, http.StatusBadRequest)

	require.NoError(t, admin.DeleteCategory(ctx, "cat-outerwear"))
	categories, err := guest(ts).Categories(ctx)
	require.NoError(t, err)
	names := make([]string, 0, len(categories))
	for _, c := range categories {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"Shirts and Tops", "Accessories"}, names)

	err = admin.DeleteCategory(ctx, "cat-outerwear")
	requireStatus(t, err, http.StatusNotFound)
}

func TestContactAndUploads(t *testing.T) {
	ts, _ := setupServer(t, 100)
	ctx := context.Background()

	err := guest(ts).SendContact(ctx, api.ContactMessage{Name: "Ada", Email: "ada@lookbook.test", Message: "Do you ship to Paris?"})
	require.NoError(t, err)

	err = guest(ts).SendContact(ctx, api.ContactMessage{Name: "Ada", Email: "not-an-email", Message: "Hi"})
	requireStatus(t, err, http.StatusBadRequest)

	admin, _ := signedIn(t, ts, api.RoleAdmin, "admin@lookbook.test", "admin123")
	messages, err := admin.ContactMessages(ctx)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, "Do you ship to Paris?", messages[0].Message)

	img, err := admin.UploadImage(ctx, api.File{Name: "Look.JPG", Body: strings.NewReader("jpeg")})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(img.URL, "/uploads/"))
	assert.True(t, strings.HasSuffix(img.URL, ".jpg"))
	assert.Equal(t, catalog.MediaTypeImage, img.Type)

	video, err := admin.UploadVideo(ctx, api.File{Name: "walk.mp4", Body: strings.NewReader("mp4")})
	require.NoError(t, err)
	assert.Equal(t, catalog.MediaTypeVideo, video.Type)

	_, err = admin.UploadFromURL(ctx, "ftp://example.com/a.jpg")
	requireStatus(t, err, http.StatusBadRequest)
}

func TestHealthAndMetrics(t *testing.T) {
	ts, _ := setupServer(t, 100)

	health, err := guest(ts).Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ok", health.Status)

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "http_requests_total")
}

func TestFilterProducts(t *testing.T) {
	products := []catalog.Product{
		{ID: "a", Name: "Linen Shirt", Category: "Shirts", Featured: true},
		{ID: "b", Name: "Tote", Description: "linen lining", Category: "Bags"},
		{ID: "c", Name: "Knit", Category: "Knit Wear"},
	}

	tests := []struct {
		name     string
		search   string
		category string
		featured bool
		want     []string
	}{
		{"no filters", "", "", false, []string{"a", "b", "c"}},
		{"search name and description", "linen", "", false, []string{"a", "b"}},
		{"category by name", "", "bags", false, []string{"b"}},
		{"category by slug", "", "knit-wear", false, []string{"c"}},
		{"featured", "linen", "", true, []string{"a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			for _, p := range filterProducts(products, tt.search, tt.category, tt.featured) {
				got = append(got, p.ID)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}
