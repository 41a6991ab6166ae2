package tui

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/thomas/lookbook-terminal/internal/api"
	"github.com/thomas/lookbook-terminal/internal/cache"
	"github.com/thomas/lookbook-terminal/internal/cart"
	"github.com/thomas/lookbook-terminal/internal/catalog"
	"github.com/thomas/lookbook-terminal/internal/session"
	"github.com/thomas/lookbook-terminal/internal/storage"
	"github.com/thomas/lookbook-terminal/internal/wishlist"
)

// testBackend is an in-memory stand-in for the storefront REST API.
type testBackend struct {
	t *testing.T

	mu           sync.Mutex
	products     []catalog.Product
	posts        []api.Post
	orders       []api.Order
	export       []byte
	unauthorized map[string]bool
	batchCalls   int
	roles        map[string]string // email -> role
	content      map[string]api.ContentBlock
	edits        []recordedRequest
}

// recordedRequest is a create, update or delete the backend received.
type recordedRequest struct {
	Method string
	Path   string
	Body   map[string]any
}

func newTestBackend(t *testing.T, products []catalog.Product) (*testBackend, *httptest.Server) {
	b := &testBackend{
		t:            t,
		products:     products,
		unauthorized: make(map[string]bool),
		roles:        map[string]string{"admin@example.com": "admin"},
		content:      make(map[string]api.ContentBlock),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /products", b.listProducts)
	mux.HandleFunc("GET /products/{id}", b.getProduct)
	mux.HandleFunc("POST /products/batch", b.batchProducts)
	mux.HandleFunc("PUT /products/{id}", b.echo)
	mux.HandleFunc("DELETE /products/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("GET /categories", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, []api.Category{{ID: "c1", Name: "Shirts", Slug: "shirts"}})
	})
	mux.HandleFunc("POST /auth/login", b.login)
	mux.HandleFunc("GET /auth/profile", b.profile)
	mux.HandleFunc("POST /orders", b.createOrder)
	mux.HandleFunc("GET /orders/mine", b.listOrders)
	mux.HandleFunc("GET /orders", b.listOrders)
	mux.HandleFunc("PATCH /orders/{id}/status", b.updateStatus)
	mux.HandleFunc("GET /posts", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, b.posts)
	})
	mux.HandleFunc("GET /posts/{id}/comments", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, []api.Comment{{ID: "k1", PostID: r.PathValue("id"), Author: "Ada", Body: "Love it"}})
	})
	mux.HandleFunc("POST /posts/{id}/comments", b.echo)
	mux.HandleFunc("POST /posts", b.record)
	mux.HandleFunc("PUT /posts/{id}", b.record)
	mux.HandleFunc("DELETE /posts/{id}", b.record)
	mux.HandleFunc("DELETE /posts/{id}/comments/{commentId}", b.record)
	mux.HandleFunc("POST /categories", b.record)
	mux.HandleFunc("PUT /categories/{id}", b.record)
	mux.HandleFunc("DELETE /categories/{id}", b.record)
	mux.HandleFunc("GET /content/{key}", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		block, ok := b.content[r.PathValue("key")]
		b.mu.Unlock()
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			writeJSON(w, map[string]string{"message": "content not found"})
			return
		}
		writeJSON(w, block)
	})
	mux.HandleFunc("PUT /content/{key}", b.record)
	mux.HandleFunc("POST /posts/{id}/reactions", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Type string `json:"type"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		writeJSON(w, api.Reactions{req.Type: 4})
	})
	mux.HandleFunc("GET /admin/stats", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, api.Stats{Orders: 2, Revenue: 240, Products: 3, OrdersByStatus: map[string]int{"pending": 2}})
	})
	mux.HandleFunc("GET /admin/orders/export", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", api.XLSXContentType)
		w.Write(b.export)
	})
	mux.HandleFunc("POST /contact", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		denied := b.unauthorized[r.URL.Path]
		b.mu.Unlock()
		if denied {
			w.WriteHeader(http.StatusUnauthorized)
			writeJSON(w, map[string]string{"message": "token expired"})
			return
		}
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(server.Close)

	return b, server
}

func (b *testBackend) deny(path string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.unauthorized[path] = true
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func (b *testBackend) listProducts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, api.ProductPage{Products: b.products, Total: len(b.products), Page: 1, Pages: 1})
}

func (b *testBackend) getProduct(w http.ResponseWriter, r *http.Request) {
	for _, p := range b.products {
		if p.Matches(r.PathValue("id")) {
			writeJSON(w, p)
			return
		}
	}
	w.WriteHeader(http.StatusNotFound)
	writeJSON(w, map[string]string{"message": "product not found"})
}

func (b *testBackend) batchProducts(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IDs []string `json:"ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		b.t.Errorf("decoding batch request: %v", err)
		return
	}

	b.mu.Lock()
	b.batchCalls++
	b.mu.Unlock()

	var out []catalog.Product
	for _, id := range req.IDs {
		for _, p := range b.products {
			if p.Matches(id) {
				out = append(out, p)
			}
		}
	}
	writeJSON(w, out)
}

func (b *testBackend) echo(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	json.NewDecoder(r.Body).Decode(&body)
	writeJSON(w, body)
}

// record logs an edit and answers the way the real backend does: deletes with
// 204, creates with 201 and the body plus an id, updates with the body.
func (b *testBackend) record(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	if r.Method != http.MethodDelete {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			b.t.Errorf("decoding %s %s: %v", r.Method, r.URL.Path, err)
		}
	}

	b.mu.Lock()
	b.edits = append(b.edits, recordedRequest{Method: r.Method, Path: r.URL.Path, Body: body})
	b.mu.Unlock()

	switch r.Method {
	case http.MethodDelete:
		w.WriteHeader(http.StatusNoContent)
	case http.MethodPost:
		if body == nil {
			body = map[string]any{}
		}
		body["id"] = "new-1"
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(body)
	default:
		writeJSON(w, body)
	}
}

// lastEdit returns the most recent recorded edit.
func (b *testBackend) lastEdit(t *testing.T) recordedRequest {
	t.Helper()
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.edits) == 0 {
		t.Fatal("expected an edit request")
	}
	return b.edits[len(b.edits)-1]
}

func (b *testBackend) login(w http.ResponseWriter, r *http.Request) {
	var creds api.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		b.t.Errorf("decoding credentials: %v", err)
		return
	}
	if creds.Password != "secret" {
		w.WriteHeader(http.StatusUnauthorized)
		writeJSON(w, map[string]string{"message": "invalid credentials"})
		return
	}
	writeJSON(w, api.AuthResponse{Token: "tok:" + creds.Email, User: b.user(creds.Email)})
}

func (b *testBackend) profile(w http.ResponseWriter, r *http.Request) {
	email, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer tok:")
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	writeJSON(w, b.user(email))
}

func (b *testBackend) user(email string) *api.User {
	role := b.roles[email]
	if role == "" {
		role = "customer"
	}
	return &api.User{
		ID:    "u-" + email,
		Email: email,
		Role:  role,
		Profile: &api.UserProfile{
			FirstName: "Ada",
			LastName:  "Lovelace",
			Address:   "12 Analytical Row",
			City:      "London",
			Postal:    "N1",
			Country:   "GB",
		},
	}
}

func (b *testBackend) createOrder(w http.ResponseWriter, r *http.Request) {
	var req api.CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		b.t.Errorf("decoding order: %v", err)
		return
	}

	var total float64
	for _, it := range req.Items {
		total += it.Price * float64(it.Qty)
	}
	order := api.Order{
		ID:          "o1",
		OrderNumber: "LB-1001",
		Status:      api.OrderPending,
		Items:       req.Items,
		Shipping:    req.Shipping,
		Subtotal:    total,
		Total:       total,
		CreatedAt:   time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC),
	}

	b.mu.Lock()
	b.orders = append(b.orders, order)
	b.mu.Unlock()

	w.WriteHeader(http.StatusCreated)
	writeJSON(w, order)
}

func (b *testBackend) listOrders(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	orders := b.orders
	if orders == nil {
		orders = []api.Order{}
	}
	writeJSON(w, orders)
}

func (b *testBackend) updateStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status string `json:"status"`
	}
	json.NewDecoder(r.Body).Decode(&req)
	writeJSON(w, api.Order{ID: r.PathValue("id"), OrderNumber: "LB-1001", Status: req.Status})
}

// newTestDeps wires a storefront session against server.
func newTestDeps(t *testing.T, serverURL string) Deps {
	t.Helper()
	kv := storage.NewMemory()
	tokens := session.NewTokens(kv, api.RoleCustomer, nil)
	client := api.NewClient(serverURL, api.RoleCustomer, api.WithTokenStore(tokens))

	return Deps{
		Client:   client,
		Catalog:  cache.NewCatalog(client, time.Minute),
		Session:  session.NewStore(client, tokens, nil),
		Cart:     cart.New(kv, nil),
		Wishlist: wishlist.New(kv, nil),
	}
}

func sampleProducts() []catalog.Product {
	was := 120.0
	return []catalog.Product{
		{
			ID:            "p1",
			Name:          "Linen Shirt",
			Description:   "<p>Washed <strong>linen</strong>.</p>",
			Category:      "Shirts",
			Price:         90,
			OriginalPrice: &was,
			Stock:         5,
			Sizes:         []string{"S", "M", "L"},
			ColorNames:    []string{"sand", "navy"},
			Image:         "/img/shirt.jpg",
			Media: catalog.NewPerColorMedia([]string{"sand", "navy"}, map[string][]catalog.Media{
				"sand": {{URL: "/img/shirt-sand.jpg"}},
				"navy": {{URL: "/img/shirt-navy.jpg"}, {URL: "/vid/shirt-navy.mp4", Type: catalog.MediaTypeVideo}},
			}),
		},
		{
			AltID: "p2",
			Name:  "Canvas Tote",
			Price: 35,
			Stock: 0,
		},
		{
			ID:    "p3",
			Name:  "Wool Coat",
			Price: 300,
			Stock: 2,
			Variants: []catalog.Variant{
				{ID: "long", Label: "Long", Price: 340},
				{ID: "short", Label: "Short"},
			},
		},
	}
}
