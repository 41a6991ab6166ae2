package tui

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/xuri/excelize/v2"

	"github.com/thomas/lookbook-terminal/internal/api"
	"github.com/thomas/lookbook-terminal/internal/cache"
	"github.com/thomas/lookbook-terminal/internal/catalog"
	"github.com/thomas/lookbook-terminal/internal/session"
	"github.com/thomas/lookbook-terminal/internal/storage"
)

func setupAdminModel(t *testing.T) (AdminModel, *testBackend) {
	t.Helper()
	backend, server := newTestBackend(t, sampleProducts())

	kv := storage.NewMemory()
	tokens := session.NewTokens(kv, api.RoleAdmin, nil)
	client := api.NewClient(server.URL, api.RoleAdmin, api.WithTokenStore(tokens))

	m := NewAdminModel(AdminDeps{
		Client:    client,
		Session:   session.NewStore(client, tokens, nil),
		Catalog:   cache.NewCatalog(client, time.Minute),
		ExportDir: t.TempDir(),
	})
	m.nowFunc = func() time.Time { return time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC) }
	m = updateAdmin(t, m, tea.WindowSizeMsg{Width: 100, Height: 40})
	return m, backend
}

func updateAdmin(t *testing.T, m AdminModel, msg tea.Msg) AdminModel {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(AdminModel)
}

func pressAdmin(t *testing.T, m AdminModel, key string) (AdminModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(keyMsg(key))
	return next.(AdminModel), cmd
}

func signedInAdmin(t *testing.T) (AdminModel, *testBackend) {
	t.Helper()
	m, backend := setupAdminModel(t)
	m = updateAdmin(t, m, m.signIn("admin@example.com", "secret")())
	if m.GetView() != AdminViewDashboard {
		t.Fatalf("expected dashboard after sign in, got %v", m.GetView())
	}
	return m, backend
}

func TestAdminStartsAtLogin(t *testing.T) {
	m, _ := setupAdminModel(t)

	m = updateAdmin(t, m, adminSessionMsg{})

	if m.GetView() != AdminViewLogin {
		t.Errorf("expected login view without a session, got %v", m.GetView())
	}
	if m.form == nil {
		t.Error("expected login form")
	}
}

func TestAdminRejectsCustomers(t *testing.T) {
	m, _ := setupAdminModel(t)
	m, _ = m.openLogin()

	m = updateAdmin(t, m, m.signIn("ada@example.com", "secret")())

	if m.GetView() != AdminViewLogin {
		t.Errorf("expected to stay on login, got %v", m.GetView())
	}
	if m.err == nil || !strings.Contains(m.err.Error(), "not an administrator") {
		t.Errorf("expected not an administrator error, got %v", m.err)
	}
	if m.deps.Client.Tokens().Token() != "" {
		t.Error("expected customer token to be discarded")
	}
}

func TestAdminDashboard(t *testing.T) {
	m, _ := signedInAdmin(t)

	next, cmd := m.openDashboard()
	m = updateAdmin(t, next, cmd())

	if m.stats == nil || m.stats.Orders != 2 {
		t.Fatalf("unexpected stats %+v", m.stats)
	}
	view := m.View()
	if !strings.Contains(view, "$240.00") {
		t.Error("expected formatted revenue on dashboard")
	}
}

func TestNextStatus(t *testing.T) {
	tests := []struct {
		current string
		want    string
	}{
		{api.OrderPending, api.OrderProcessing},
		{api.OrderProcessing, api.OrderShipped},
		{api.OrderShipped, api.OrderDelivered},
		{api.OrderDelivered, api.OrderCancelled},
		{api.OrderCancelled, api.OrderPending},
		{"unknown", api.OrderPending},
	}

	for _, tt := range tests {
		t.Run(tt.current, func(t *testing.T) {
			if got := nextStatus(tt.current); got != tt.want {
				t.Errorf("nextStatus(%q) = %q, want %q", tt.current, got, tt.want)
			}
		})
	}
}

func TestAdminOrderStatusUpdate(t *testing.T) {
	m, _ := signedInAdmin(t)
	m.view = AdminViewOrders
	m.orders = []api.Order{{ID: "o1", OrderNumber: "LB-1001", Status: api.OrderPending}}

	m, cmd := pressAdmin(t, m, "s")
	if cmd == nil {
		t.Fatal("expected status update command")
	}
	m = updateAdmin(t, m, cmd())

	if m.orders[0].Status != api.OrderProcessing {
		t.Errorf("expected processing, got %s", m.orders[0].Status)
	}
	if !strings.Contains(m.status, "LB-1001") {
		t.Errorf("unexpected status %q", m.status)
	}
}

func TestAdminStatusFilterCycles(t *testing.T) {
	m, _ := signedInAdmin(t)
	m.view = AdminViewOrders

	m, _ = pressAdmin(t, m, "f")
	if m.statusFilter() != api.OrderPending {
		t.Errorf("expected pending filter, got %q", m.statusFilter())
	}
	for range api.OrderStatuses {
		m, _ = pressAdmin(t, m, "f")
	}
	if m.statusFilter() != "" {
		t.Errorf("expected filter to wrap to all, got %q", m.statusFilter())
	}
}

func TestAdminExportOrders(t *testing.T) {
	m, backend := signedInAdmin(t)

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	f.SetSheetRow(sheet, "A1", &[]any{"Order", "Status", "Total"})
	f.SetSheetRow(sheet, "A2", &[]any{"LB-1001", "pending", 90})
	f.SetSheetRow(sheet, "A3", &[]any{"LB-1002", "shipped", 150})
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("building workbook: %v", err)
	}
	backend.export = buf.Bytes()

	m.view = AdminViewOrders
	m, cmd := pressAdmin(t, m, "e")
	msg := cmd()

	exported, ok := msg.(exportedMsg)
	if !ok {
		t.Fatalf("expected exportedMsg, got %T: %v", msg, msg)
	}
	if exported.rows != 2 {
		t.Errorf("expected 2 rows, got %d", exported.rows)
	}
	if filepath.Base(exported.path) != "orders-all-20261018-093000.xlsx" {
		t.Errorf("unexpected export file name %s", exported.path)
	}
	if _, err := os.Stat(exported.path); err != nil {
		t.Errorf("expected export file to exist: %v", err)
	}

	m = updateAdmin(t, m, msg)
	if !strings.Contains(m.status, "Exported 2 orders") {
		t.Errorf("unexpected status %q", m.status)
	}
}

func TestAdminExportRejectsInvalidWorkbook(t *testing.T) {
	m, backend := signedInAdmin(t)
	backend.export = []byte("not a workbook")

	msg := m.exportOrders("")()

	if _, ok := msg.(errMsg); !ok {
		t.Errorf("expected errMsg for invalid workbook, got %T", msg)
	}
}

func TestAdminProductChangeInvalidatesCatalog(t *testing.T) {
	m, _ := signedInAdmin(t)
	if _, err := m.deps.Catalog.Products(context.Background(), api.ProductQuery{Page: 1}); err != nil {
		t.Fatalf("loading products: %v", err)
	}
	if len(m.deps.Catalog.Known()) == 0 {
		t.Fatal("expected products to be cached")
	}

	m = updateAdmin(t, m, productChangedMsg{status: "Deleted Canvas Tote"})

	if len(m.deps.Catalog.Known()) != 0 {
		t.Error("expected catalog cache to be invalidated")
	}
	if m.status != "Deleted Canvas Tote" {
		t.Errorf("unexpected status %q", m.status)
	}
}

func TestAdminDeleteNeedsConfirmation(t *testing.T) {
	m, _ := signedInAdmin(t)
	next, cmd := m.openProducts()
	m = updateAdmin(t, next, cmd())

	m, _ = pressAdmin(t, m, "d")
	if !m.confirmDel {
		t.Fatal("expected delete confirmation")
	}
	m, cmd = pressAdmin(t, m, "n")
	if cmd != nil || m.status != "Delete cancelled" {
		t.Errorf("expected delete to be cancelled, status %q", m.status)
	}

	m, _ = pressAdmin(t, m, "d")
	m, cmd = pressAdmin(t, m, "y")
	if cmd == nil {
		t.Fatal("expected delete command")
	}
	if _, ok := cmd().(productChangedMsg); !ok {
		t.Error("expected productChangedMsg after delete")
	}
}

func TestAdminUnauthorizedReturnsToLogin(t *testing.T) {
	m, backend := signedInAdmin(t)
	backend.deny("/admin/stats")

	next, cmd := m.openDashboard()
	m = updateAdmin(t, next, cmd())

	if m.GetView() != AdminViewLogin {
		t.Errorf("expected login view after 401, got %v", m.GetView())
	}
	if m.deps.Session.SignedIn() {
		t.Error("expected admin session to end")
	}
	if !strings.Contains(m.status, "sign in again") {
		t.Errorf("unexpected status %q", m.status)
	}
}

func lookbookAdmin(t *testing.T) (AdminModel, *testBackend) {
	t.Helper()
	m, backend := signedInAdmin(t)
	backend.posts = []api.Post{{
		ID:    "post-1",
		Title: "Summer",
		Media: []catalog.Media{
			{URL: "/img/summer.jpg"},
			{URL: "/vid/summer.mp4", Type: catalog.MediaTypeVideo},
		},
		ProductIDs: []string{"p1"},
	}}

	next, cmd := m.openLookbook()
	m = updateAdmin(t, next, cmd())
	if len(m.posts) != 1 {
		t.Fatalf("expected 1 post, got %d", len(m.posts))
	}
	return m, backend
}

func TestAdminEditPost(t *testing.T) {
	m, backend := lookbookAdmin(t)

	m, _ = pressAdmin(t, m, "e")
	if m.GetView() != AdminViewPostForm || m.form == nil {
		t.Fatalf("expected post form, got view %v", m.GetView())
	}
	if m.post.Title != "Summer" || m.post.CoverURL != "/img/summer.jpg" || m.post.Products != "p1" {
		t.Fatalf("expected form prefilled from the post, got %+v", m.post)
	}
	if !strings.Contains(m.View(), "Edit post") {
		t.Error("expected edit title")
	}

	m.post.Title = "  Summer edit "
	m.post.CoverURL = "/img/cover.jpg"
	m.post.Products = "p1, p3,"
	m, cmd := m.submitForm()
	if !m.loading {
		t.Error("expected loading while saving")
	}
	msg := cmd()

	edit := backend.lastEdit(t)
	if edit.Method != http.MethodPut || edit.Path != "/posts/post-1" {
		t.Fatalf("unexpected request %s %s", edit.Method, edit.Path)
	}
	if edit.Body["title"] != "Summer edit" {
		t.Errorf("expected trimmed title, got %v", edit.Body["title"])
	}
	media, _ := edit.Body["media"].([]any)
	if len(media) != 2 {
		t.Fatalf("expected cover plus video, got %v", edit.Body["media"])
	}
	if cover, _ := media[0].(map[string]any); cover["url"] != "/img/cover.jpg" {
		t.Errorf("expected new cover first, got %v", media[0])
	}
	if ids, _ := edit.Body["productIds"].([]any); len(ids) != 2 || ids[1] != "p3" {
		t.Errorf("unexpected product ids %v", edit.Body["productIds"])
	}

	m = updateAdmin(t, m, msg)
	if m.GetView() != AdminViewLookbook || m.form != nil {
		t.Errorf("expected lookbook list after save, got view %v", m.GetView())
	}
	if m.status != "Updated Summer edit" {
		t.Errorf("unexpected status %q", m.status)
	}
}

func TestAdminCreatePost(t *testing.T) {
	m, backend := lookbookAdmin(t)

	m, _ = pressAdmin(t, m, "n")
	if m.GetView() != AdminViewPostForm || m.post.Title != "" {
		t.Fatalf("expected empty post form, got %+v", m.post)
	}

	m.post.Title = "Autumn"
	m.post.Body = "<p>Layers.</p>"
	m.post.CoverURL = "/vid/autumn.mp4"
	m, cmd := m.submitForm()
	msg := cmd()

	edit := backend.lastEdit(t)
	if edit.Method != http.MethodPost || edit.Path != "/posts" {
		t.Fatalf("unexpected request %s %s", edit.Method, edit.Path)
	}
	if _, ok := edit.Body["id"]; ok {
		t.Error("a new post must not carry an id")
	}
	media, _ := edit.Body["media"].([]any)
	if len(media) != 1 {
		t.Fatalf("expected one media entry, got %v", edit.Body["media"])
	}
	if cover, _ := media[0].(map[string]any); cover["type"] != catalog.MediaTypeVideo {
		t.Errorf("expected video cover, got %v", media[0])
	}

	m = updateAdmin(t, m, msg)
	if m.status != "Published Autumn" {
		t.Errorf("unexpected status %q", m.status)
	}
}

func TestAdminDeletePost(t *testing.T) {
	m, backend := lookbookAdmin(t)

	m, _ = pressAdmin(t, m, "d")
	if !m.confirmDel || !strings.Contains(m.status, "Summer") {
		t.Fatalf("expected delete confirmation, status %q", m.status)
	}
	m, cmd := pressAdmin(t, m, "y")
	if cmd == nil {
		t.Fatal("expected delete command")
	}
	m = updateAdmin(t, m, cmd())

	edit := backend.lastEdit(t)
	if edit.Method != http.MethodDelete || edit.Path != "/posts/post-1" {
		t.Errorf("unexpected request %s %s", edit.Method, edit.Path)
	}
	if m.status != "Deleted Summer" {
		t.Errorf("unexpected status %q", m.status)
	}
}

func TestAdminPostFormEscReturnsToList(t *testing.T) {
	m, backend := lookbookAdmin(t)

	m, _ = pressAdmin(t, m, "n")
	m, cmd := pressAdmin(t, m, "esc")

	if cmd != nil {
		t.Error("expected no command on esc")
	}
	if m.GetView() != AdminViewLookbook || m.form != nil {
		t.Errorf("expected lookbook list, got view %v", m.GetView())
	}
	backend.mu.Lock()
	edits := len(backend.edits)
	backend.mu.Unlock()
	if edits != 0 {
		t.Errorf("expected no edits, got %d", edits)
	}
}

func TestAdminDeleteComment(t *testing.T) {
	m, backend := lookbookAdmin(t)

	m, cmd := pressAdmin(t, m, "enter")
	if m.GetView() != AdminViewComments {
		t.Fatalf("expected comments view, got %v", m.GetView())
	}
	m = updateAdmin(t, m, cmd())
	if len(m.comments) != 1 || m.comments[0].Author != "Ada" {
		t.Fatalf("unexpected comments %+v", m.comments)
	}

	m, _ = pressAdmin(t, m, "d")
	if !strings.Contains(m.status, "comment by Ada") {
		t.Errorf("unexpected confirmation %q", m.status)
	}
	m, cmd = pressAdmin(t, m, "y")
	msg := cmd()

	edit := backend.lastEdit(t)
	if edit.Method != http.MethodDelete || edit.Path != "/posts/post-1/comments/k1" {
		t.Errorf("unexpected request %s %s", edit.Method, edit.Path)
	}

	next, cmd := m.Update(msg)
	m = next.(AdminModel)
	if cmd == nil {
		t.Error("expected comments to reload")
	}
	if m.status != "Deleted the comment by Ada" {
		t.Errorf("unexpected status %q", m.status)
	}

	m, cmd = pressAdmin(t, m, "esc")
	if m.GetView() != AdminViewLookbook || cmd == nil {
		t.Errorf("expected lookbook reload on esc, got view %v", m.GetView())
	}
}

func TestAdminCategoryEditing(t *testing.T) {
	m, backend := signedInAdmin(t)
	if _, err := m.deps.Catalog.Products(context.Background(), api.ProductQuery{Page: 1}); err != nil {
		t.Fatalf("loading products: %v", err)
	}

	next, cmd := m.openCatalog()
	m = updateAdmin(t, next, cmd())
	if len(m.categories) != 1 {
		t.Fatalf("expected 1 category, got %d", len(m.categories))
	}

	m, _ = pressAdmin(t, m, "e")
	if m.GetView() != AdminViewCategoryForm || m.category.Name != "Shirts" {
		t.Fatalf("expected prefilled category form, got %+v", m.category)
	}
	m.category.Name = "Shirts & Tops"
	m.category.Slug = ""
	m, cmd = m.submitForm()
	msg := cmd()

	edit := backend.lastEdit(t)
	if edit.Method != http.MethodPut || edit.Path != "/categories/c1" {
		t.Fatalf("unexpected request %s %s", edit.Method, edit.Path)
	}
	if edit.Body["name"] != "Shirts & Tops" {
		t.Errorf("unexpected body %v", edit.Body)
	}

	m = updateAdmin(t, m, msg)
	if m.GetView() != AdminViewCatalog || m.status != "Updated Shirts & Tops" {
		t.Errorf("unexpected view %v, status %q", m.GetView(), m.status)
	}
	if len(m.deps.Catalog.Known()) != 0 {
		t.Error("expected catalog cache to be invalidated")
	}

	m, _ = pressAdmin(t, m, "n")
	m.category.Name = "Knitwear"
	m, cmd = m.submitForm()
	cmd()
	if edit := backend.lastEdit(t); edit.Method != http.MethodPost || edit.Path != "/categories" || edit.Body["name"] != "Knitwear" {
		t.Errorf("unexpected create request %+v", edit)
	}

	m.view = AdminViewCatalog
	m, _ = pressAdmin(t, m, "d")
	_, cmd = pressAdmin(t, m, "y")
	if _, ok := cmd().(categoryChangedMsg); !ok {
		t.Error("expected categoryChangedMsg after delete")
	}
	if edit := backend.lastEdit(t); edit.Method != http.MethodDelete || edit.Path != "/categories/c1" {
		t.Errorf("unexpected delete request %+v", edit)
	}
}

func TestAdminHeroContent(t *testing.T) {
	m, backend := signedInAdmin(t)
	backend.content["hero"] = api.ContentBlock{Key: "hero", Title: "The autumn edit", Body: "Layers for cold days"}
	m.view = AdminViewCatalog

	m, cmd := pressAdmin(t, m, "h")
	m = updateAdmin(t, m, cmd())
	if m.GetView() != AdminViewContentForm {
		t.Fatalf("expected content form, got %v", m.GetView())
	}
	if m.content.Title != "The autumn edit" {
		t.Errorf("expected prefilled headline, got %q", m.content.Title)
	}

	m.content.Title = "Winter is here"
	m, cmd = m.submitForm()
	msg := cmd()

	edit := backend.lastEdit(t)
	if edit.Method != http.MethodPut || edit.Path != "/content/hero" {
		t.Fatalf("unexpected request %s %s", edit.Method, edit.Path)
	}
	if edit.Body["title"] != "Winter is here" || edit.Body["body"] != "Layers for cold days" {
		t.Errorf("unexpected body %v", edit.Body)
	}

	m = updateAdmin(t, m, msg)
	if m.GetView() != AdminViewCatalog || !strings.Contains(m.status, "hero") {
		t.Errorf("unexpected view %v, status %q", m.GetView(), m.status)
	}
}

func TestAdminMissingContentOpensEmpty(t *testing.T) {
	m, _ := signedInAdmin(t)

	msg := m.loadContent("about")()

	loaded, ok := msg.(contentLoadedMsg)
	if !ok {
		t.Fatalf("expected contentLoadedMsg, got %T", msg)
	}
	if loaded.block.Key != "about" || loaded.block.Title != "" {
		t.Errorf("expected empty block, got %+v", loaded.block)
	}
}

func TestPostDetails(t *testing.T) {
	base := api.Post{
		ID:    "post-1",
		Title: "Summer",
		Media: []catalog.Media{{URL: "/a.jpg"}, {URL: "/b.mp4", Type: catalog.MediaTypeVideo}},
	}

	tests := []struct {
		name  string
		cover string
		want  []catalog.Media
	}{
		{"unchanged cover keeps media", "/a.jpg", base.Media},
		{"empty cover drops it", "", []catalog.Media{{URL: "/b.mp4", Type: catalog.MediaTypeVideo}}},
		{"new image cover", "/c.png", []catalog.Media{{URL: "/c.png"}, {URL: "/b.mp4", Type: catalog.MediaTypeVideo}}},
		{"new video cover", "/c.MOV", []catalog.Media{{URL: "/c.MOV", Type: catalog.MediaTypeVideo}, {URL: "/b.mp4", Type: catalog.MediaTypeVideo}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newPostDetails(base)
			d.CoverURL = tt.cover
			got := d.post()
			if got.ID != "post-1" {
				t.Errorf("expected id to be kept, got %q", got.ID)
			}
			if len(got.Media) != len(tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got.Media)
			}
			for i := range tt.want {
				if got.Media[i] != tt.want[i] {
					t.Errorf("media[%d] = %v, want %v", i, got.Media[i], tt.want[i])
				}
			}
		})
	}
}
