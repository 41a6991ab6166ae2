package tui

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/xuri/excelize/v2"

	"github.com/thomas/lookbook-terminal/internal/api"
	"github.com/thomas/lookbook-terminal/internal/cache"
	"github.com/thomas/lookbook-terminal/internal/catalog"
	"github.com/thomas/lookbook-terminal/internal/money"
	"github.com/thomas/lookbook-terminal/internal/session"
)

// AdminView represents the current view of the admin console.
type AdminView int

const (
	AdminViewLogin AdminView = iota
	AdminViewDashboard
	AdminViewOrders
	AdminViewProducts
	AdminViewMessages
	AdminViewLookbook
	AdminViewComments
	AdminViewCatalog
	AdminViewPostForm
	AdminViewCategoryForm
	AdminViewContentForm
)

const adminProductsPerPage = 20

// AdminDeps are the collaborators of one admin session. Client must use the admin role.
type AdminDeps struct {
	Ctx       context.Context
	Client    *api.Client
	Session   *session.Store
	Catalog   *cache.Catalog
	Money     *money.Formatter
	Logger    *log.Logger
	ExportDir string
}

// AdminModel is the admin console Bubble Tea model.
type AdminModel struct {
	deps    AdminDeps
	ctx     context.Context
	logger  *log.Logger
	nowFunc func() time.Time

	view    AdminView
	width   int
	height  int
	styles  Styles
	spinner spinner.Model
	loading bool
	status  string
	err     error

	// Active form (sign in, post, category, content block)
	form     *huh.Form
	login    *loginDetails
	post     *postDetails
	category *categoryDetails
	content  *contentDetails

	stats *api.Stats

	orders      []api.Order
	orderIdx    int
	statusIdx   int // 0 means all statuses
	productPage *api.ProductPage
	productIdx  int
	page        int
	messages    []api.ContactMessage
	messageIdx  int

	posts       []api.Post
	postIdx     int
	commentPost api.Post
	comments    []api.Comment
	commentIdx  int
	categories  []api.Category
	categoryIdx int

	// A pending delete runs once the admin answers y.
	confirmDel    bool
	pendingDelete tea.Cmd
}

// Messages
type (
	adminSessionMsg struct {
		user *session.Profile
	}
	statsLoadedMsg struct {
		stats *api.Stats
	}
	adminOrdersLoadedMsg struct {
		orders []api.Order
	}
	orderUpdatedMsg struct {
		order *api.Order
	}
	adminProductsLoadedMsg struct {
		page *api.ProductPage
	}
	productChangedMsg struct {
		status string
	}
	messagesLoadedMsg struct {
		messages []api.ContactMessage
	}
	exportedMsg struct {
		path string
		rows int
	}
)

// NewAdminModel creates the admin console model for one session.
func NewAdminModel(deps AdminDeps) AdminModel {
	if deps.Ctx == nil {
		deps.Ctx = context.Background()
	}
	if deps.Money == nil {
		deps.Money = money.Default()
	}
	if deps.ExportDir == "" {
		deps.ExportDir = "."
	}
	logger := deps.Logger
	if logger == nil {
		logger = log.Default()
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(colorAdmin)

	return AdminModel{
		deps:    deps,
		ctx:     deps.Ctx,
		logger:  logger.WithPrefix("admin"),
		nowFunc: time.Now,
		view:    AdminViewLogin,
		styles:  AdminStyles(),
		spinner: sp,
		page:    1,
		loading: true,
		login:   &loginDetails{},
	}
}

// Init restores the admin session, if any.
func (m AdminModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		return adminSessionMsg{user: m.deps.Session.Bootstrap(m.ctx)}
	})
}

// Update handles messages and updates the model.
func (m AdminModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case adminSessionMsg:
		m.loading = false
		if msg.user == nil {
			return m.openLogin()
		}
		return m.openDashboard()

	case signedInMsg:
		m.loading = false
		m.form = nil
		m.status = fmt.Sprintf("Signed in as %s", displayName(msg.user))
		return m.openDashboard()

	case statsLoadedMsg:
		m.loading = false
		m.stats = msg.stats

	case adminOrdersLoadedMsg:
		m.loading = false
		m.orders = msg.orders
		m.orderIdx = clampIndex(m.orderIdx, len(m.orders))

	case orderUpdatedMsg:
		m.loading = false
		for i := range m.orders {
			if m.orders[i].ID == msg.order.ID {
				m.orders[i] = *msg.order
			}
		}
		m.status = fmt.Sprintf("Order #%s is now %s", msg.order.OrderNumber, msg.order.Status)

	case adminProductsLoadedMsg:
		m.loading = false
		m.productPage = msg.page
		m.productIdx = clampIndex(m.productIdx, len(msg.page.Products))

	case productChangedMsg:
		m.deps.Catalog.Invalidate()
		m.status = msg.status
		return m, m.loadProducts()

	case messagesLoadedMsg:
		m.loading = false
		m.messages = msg.messages
		m.messageIdx = clampIndex(m.messageIdx, len(m.messages))

	case exportedMsg:
		m.loading = false
		m.status = fmt.Sprintf("Exported %d orders to %s", msg.rows, msg.path)

	case postsLoadedMsg:
		m.loading = false
		m.posts = msg.posts
		m.postIdx = clampIndex(m.postIdx, len(m.posts))

	case lookbookChangedMsg:
		m.form = nil
		m.status = msg.status
		return m.openLookbook()

	case commentsLoadedMsg:
		m.loading = false
		if msg.postID == m.commentPost.ID {
			m.comments = msg.comments
			m.commentIdx = clampIndex(m.commentIdx, len(m.comments))
		}

	case commentDeletedMsg:
		m.status = msg.status
		return m, m.loadComments(msg.postID)

	case categoriesLoadedMsg:
		m.loading = false
		m.categories = msg.categories
		m.categoryIdx = clampIndex(m.categoryIdx, len(m.categories))

	case categoryChangedMsg:
		m.deps.Catalog.Invalidate()
		m.form = nil
		m.status = msg.status
		return m.openCatalog()

	case contentLoadedMsg:
		m.loading = false
		return m.openContentForm(*msg.block)

	case contentSavedMsg:
		m.loading = false
		m.form = nil
		m.view = AdminViewCatalog
		m.status = fmt.Sprintf("Saved the %s banner", msg.block.Key)

	case errMsg:
		m.loading = false
		m.err = msg.err
		m.deps.Session.HandleError(msg.err)
		if !m.deps.Session.SignedIn() && m.view != AdminViewLogin {
			m.status = "Your admin session ended, please sign in again"
			return m.openLogin()
		}
		if m.view == AdminViewLogin || m.isFormView() {
			m.form = m.buildForm()
			return m, m.form.Init()
		}
	}

	if m.form != nil && (m.view == AdminViewLogin || m.isFormView()) {
		var cmd tea.Cmd
		m, cmd = m.updateForm(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m AdminModel) isFormView() bool {
	switch m.view {
	case AdminViewPostForm, AdminViewCategoryForm, AdminViewContentForm:
		return true
	}
	return false
}

// formParent is the view an editor form returns to when dismissed.
func (m AdminModel) formParent() AdminView {
	if m.view == AdminViewPostForm {
		return AdminViewLookbook
	}
	return AdminViewCatalog
}

func (m AdminModel) buildForm() *huh.Form {
	switch m.view {
	case AdminViewPostForm:
		return newPostForm(m.post)
	case AdminViewCategoryForm:
		return newCategoryForm(m.category)
	case AdminViewContentForm:
		return newContentForm(m.content)
	}
	return newLoginForm(m.login)
}

// updateForm forwards msg to the active form and submits it once completed.
func (m AdminModel) updateForm(msg tea.Msg) (AdminModel, tea.Cmd) {
	prev := m.form.State
	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		if prev == huh.StateCompleted || m.loading {
			return m, cmd
		}
		return m.submitForm()
	case huh.StateAborted:
		if m.isFormView() {
			m.form = nil
			m.view = m.formParent()
			return m, nil
		}
	}
	return m, cmd
}

func (m AdminModel) submitForm() (AdminModel, tea.Cmd) {
	m.loading = true
	m.err = nil
	switch m.view {
	case AdminViewPostForm:
		return m, m.savePost(m.post.post())
	case AdminViewCategoryForm:
		return m, m.saveCategory(m.category.category())
	case AdminViewContentForm:
		return m, m.saveContent(m.content.block())
	}
	return m, m.signIn(m.login.Email, m.login.Password)
}

// confirmDelete asks before running del.
func (m AdminModel) confirmDelete(name string, del tea.Cmd) (AdminModel, tea.Cmd) {
	m.confirmDel = true
	m.pendingDelete = del
	m.status = fmt.Sprintf("Delete %s? y to confirm", name)
	return m, nil
}

func (m AdminModel) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "ctrl+c" {
		return m, tea.Quit
	}

	if m.view == AdminViewLogin {
		if key == "esc" {
			return m, tea.Quit
		}
		if m.form == nil || m.loading {
			return m, nil
		}
		return m.updateForm(msg)
	}

	if m.isFormView() {
		if key == "esc" {
			m.form = nil
			m.view = m.formParent()
			return m, nil
		}
		if m.form == nil || m.loading {
			return m, nil
		}
		return m.updateForm(msg)
	}

	if m.confirmDel {
		del := m.pendingDelete
		m.confirmDel = false
		m.pendingDelete = nil
		if key == "y" && del != nil {
			m.status = ""
			m.loading = true
			return m, del
		}
		m.status = "Delete cancelled"
		return m, nil
	}

	m.status = ""
	switch key {
	case "q":
		return m, tea.Quit
	case "1":
		return m.openDashboard()
	case "2":
		return m.openOrders()
	case "3":
		return m.openProducts()
	case "4":
		return m.openMessages()
	case "5":
		return m.openLookbook()
	case "6":
		return m.openCatalog()
	case "x":
		m.deps.Session.Logout()
		m.status = "Signed out"
		return m.openLogin()
	}

	switch m.view {
	case AdminViewDashboard:
		if key == "r" {
			return m.openDashboard()
		}
	case AdminViewOrders:
		return m.handleOrdersKeys(key)
	case AdminViewProducts:
		return m.handleProductsKeys(key)
	case AdminViewLookbook:
		return m.handleLookbookKeys(key)
	case AdminViewComments:
		return m.handleCommentsKeys(key)
	case AdminViewCatalog:
		return m.handleCatalogKeys(key)
	case AdminViewMessages:
		switch key {
		case "up", "k":
			if m.messageIdx > 0 {
				m.messageIdx--
			}
		case "down", "j":
			if m.messageIdx < len(m.messages)-1 {
				m.messageIdx++
			}
		}
	}
	return m, nil
}

func (m AdminModel) openLogin() (AdminModel, tea.Cmd) {
	m.view = AdminViewLogin
	m.login = &loginDetails{}
	m.form = newLoginForm(m.login)
	return m, m.form.Init()
}

func (m AdminModel) signIn(email, password string) tea.Cmd {
	email = strings.TrimSpace(email)
	return func() tea.Msg {
		user, err := m.deps.Session.Login(m.ctx, email, password)
		if errors.Is(err, session.ErrNotAdmin) {
			return errMsg{err: errors.New("this account is not an administrator")}
		}
		if err != nil {
			return errMsg{err: err}
		}
		return signedInMsg{user: user}
	}
}

// ============================================
// Dashboard
// ============================================

func (m AdminModel) openDashboard() (AdminModel, tea.Cmd) {
	m.view = AdminViewDashboard
	m.loading = true
	m.err = nil
	return m, func() tea.Msg {
		stats, err := m.deps.Client.Stats(m.ctx)
		if err != nil {
			return errMsg{err: err}
		}
		return statsLoadedMsg{stats: stats}
	}
}

func (m AdminModel) viewDashboard() string {
	if m.stats == nil {
		return m.styles.Subtle.Render("No statistics yet.")
	}

	var sb strings.Builder
	s := m.stats
	rows := [][2]string{
		{"Orders", fmt.Sprint(s.Orders)},
		{"Revenue", m.deps.Money.Format(s.Revenue)},
		{"Products", fmt.Sprint(s.Products)},
		{"Customers", fmt.Sprint(s.Users)},
		{"Messages", fmt.Sprint(s.Messages)},
	}
	for _, row := range rows {
		sb.WriteString(m.styles.StatKey.Render(row[0]))
		sb.WriteString(m.styles.Stat.Render(row[1]))
		sb.WriteString("\n")
	}

	if len(s.OrdersByStatus) > 0 {
		sb.WriteString("\n")
		sb.WriteString(m.styles.Subtle.Render("Orders by status"))
		sb.WriteString("\n")
		for _, status := range api.OrderStatuses {
			sb.WriteString(m.styles.StatKey.Render("  " + status))
			sb.WriteString(fmt.Sprint(s.OrdersByStatus[status]))
			sb.WriteString("\n")
		}
	}

	sb.WriteString(m.styles.HelpBar.Render("r refresh"))
	return m.styles.Box.Render(sb.String())
}

// ============================================
// Orders
// ============================================

func (m AdminModel) statusFilter() string {
	if m.statusIdx == 0 || m.statusIdx > len(api.OrderStatuses) {
		return ""
	}
	return api.OrderStatuses[m.statusIdx-1]
}

func (m AdminModel) openOrders() (AdminModel, tea.Cmd) {
	m.view = AdminViewOrders
	m.loading = true
	m.err = nil
	return m, m.loadOrders()
}

func (m AdminModel) loadOrders() tea.Cmd {
	status := m.statusFilter()
	return func() tea.Msg {
		orders, err := m.deps.Client.Orders(m.ctx, status)
		if err != nil {
			return errMsg{err: err}
		}
		return adminOrdersLoadedMsg{orders: orders}
	}
}

func (m AdminModel) handleOrdersKeys(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "up", "k":
		if m.orderIdx > 0 {
			m.orderIdx--
		}
	case "down", "j":
		if m.orderIdx < len(m.orders)-1 {
			m.orderIdx++
		}
	case "f":
		m.statusIdx = (m.statusIdx + 1) % (len(api.OrderStatuses) + 1)
		m.orderIdx = 0
		return m.openOrders()
	case "s":
		if m.orderIdx < len(m.orders) {
			o := m.orders[m.orderIdx]
			m.loading = true
			return m, m.updateStatus(o.ID, nextStatus(o.Status))
		}
	case "e":
		m.loading = true
		return m, m.exportOrders(m.statusFilter())
	}
	return m, nil
}

// nextStatus cycles through the known statuses. The server decides which
// transitions it accepts.
func nextStatus(current string) string {
	i := slices.Index(api.OrderStatuses, current)
	return api.OrderStatuses[(i+1)%len(api.OrderStatuses)]
}

func (m AdminModel) updateStatus(id, status string) tea.Cmd {
	return func() tea.Msg {
		order, err := m.deps.Client.UpdateOrderStatus(m.ctx, id, status)
		if err != nil {
			return errMsg{err: err}
		}
		return orderUpdatedMsg{order: order}
	}
}

func (m AdminModel) exportOrders(status string) tea.Cmd {
	now := m.nowFunc()
	return func() tea.Msg {
		data, err := m.deps.Client.ExportOrders(m.ctx, status)
		if err != nil {
			return errMsg{err: err}
		}

		rows, err := countExportRows(data)
		if err != nil {
			return errMsg{err: err}
		}

		if err := os.MkdirAll(m.deps.ExportDir, 0o755); err != nil {
			return errMsg{err: fmt.Errorf("creating export dir: %w", err)}
		}
		if status == "" {
			status = "all"
		}
		path := filepath.Join(m.deps.ExportDir, fmt.Sprintf("orders-%s-%s.xlsx", status, now.Format("20060102-150405")))
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return errMsg{err: fmt.Errorf("writing export: %w", err)}
		}

		m.logger.Info("Orders exported", "path", path, "rows", rows)
		return exportedMsg{path: path, rows: rows}
	}
}

// countExportRows returns the number of data rows in the first sheet of a workbook.
func countExportRows(data []byte) (int, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return 0, fmt.Errorf("reading export: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return 0, fmt.Errorf("reading export rows: %w", err)
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return len(rows) - 1, nil
}

func (m AdminModel) viewOrders() string {
	var sb strings.Builder

	filter := m.statusFilter()
	if filter == "" {
		filter = "all"
	}
	sb.WriteString(m.styles.Chip.Render("Status: " + filter))
	sb.WriteString("\n\n")

	if len(m.orders) == 0 {
		sb.WriteString(m.styles.Subtle.Render("No orders."))
		sb.WriteString("\n")
	}
	for i, o := range m.orders {
		line := fmt.Sprintf("#%-10s %-11s %-24s %s",
			o.OrderNumber, o.Status, o.Shipping.Name, m.deps.Money.Format(o.Total))
		if i == m.orderIdx {
			sb.WriteString(m.styles.RowActive.String() + " " + m.styles.Highlight.Render(line))
		} else {
			sb.WriteString(m.styles.Row.Render(line))
		}
		sb.WriteString("\n")
	}

	sb.WriteString(m.styles.HelpBar.Render("↑/↓ select • s next status • f filter • e export xlsx"))
	return sb.String()
}

// ============================================
// Products
// ============================================

func (m AdminModel) openProducts() (AdminModel, tea.Cmd) {
	m.view = AdminViewProducts
	m.loading = true
	m.err = nil
	return m, m.loadProducts()
}

func (m AdminModel) loadProducts() tea.Cmd {
	q := api.ProductQuery{Page: m.page, Limit: adminProductsPerPage, Sort: api.SortName}
	return func() tea.Msg {
		page, err := m.deps.Client.Products(m.ctx, q)
		if err != nil {
			return errMsg{err: err}
		}
		return adminProductsLoadedMsg{page: page}
	}
}

func (m AdminModel) selectedProduct() *catalog.Product {
	if m.productPage == nil || m.productIdx >= len(m.productPage.Products) {
		return nil
	}
	return &m.productPage.Products[m.productIdx]
}

func (m AdminModel) handleProductsKeys(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "up", "k":
		if m.productIdx > 0 {
			m.productIdx--
		}
	case "down", "j":
		if m.productPage != nil && m.productIdx < len(m.productPage.Products)-1 {
			m.productIdx++
		}
	case "]":
		if m.productPage != nil && m.page < m.productPage.Pages {
			m.page++
			m.productIdx = 0
			return m.openProducts()
		}
	case "[":
		if m.page > 1 {
			m.page--
			m.productIdx = 0
			return m.openProducts()
		}
	case "t":
		if p := m.selectedProduct(); p != nil {
			m.loading = true
			return m, m.toggleFeatured(*p)
		}
	case "d":
		if p := m.selectedProduct(); p != nil {
			return m.confirmDelete(p.Name, m.deleteProduct(*p))
		}
	}
	return m, nil
}

func (m AdminModel) toggleFeatured(p catalog.Product) tea.Cmd {
	p.Featured = !p.Featured
	return func() tea.Msg {
		if _, err := m.deps.Client.UpdateProduct(m.ctx, p.Identifier(), p); err != nil {
			return errMsg{err: err}
		}
		if p.Featured {
			return productChangedMsg{status: p.Name + " is now featured"}
		}
		return productChangedMsg{status: p.Name + " is no longer featured"}
	}
}

func (m AdminModel) deleteProduct(p catalog.Product) tea.Cmd {
	return func() tea.Msg {
		if err := m.deps.Client.DeleteProduct(m.ctx, p.Identifier()); err != nil {
			return errMsg{err: err}
		}
		return productChangedMsg{status: "Deleted " + p.Name}
	}
}

func (m AdminModel) viewProducts() string {
	var sb strings.Builder

	if m.productPage == nil || len(m.productPage.Products) == 0 {
		sb.WriteString(m.styles.Subtle.Render("No products."))
		sb.WriteString("\n")
	} else {
		for i, p := range m.productPage.Products {
			line := fmt.Sprintf("%-32s %10s  stock %-4d", p.Name, m.deps.Money.Format(p.Price), p.Stock)
			if p.Featured {
				line += " ★"
			}
			if i == m.productIdx {
				sb.WriteString(m.styles.RowActive.String() + " " + m.styles.Highlight.Render(line))
			} else {
				sb.WriteString(m.styles.Row.Render(line))
			}
			sb.WriteString("\n")
		}
		sb.WriteString(m.styles.Subtle.Render(fmt.Sprintf("Page %d of %d", m.page, max(1, m.productPage.Pages))))
		sb.WriteString("\n")
	}

	sb.WriteString(m.styles.HelpBar.Render("↑/↓ select • t toggle featured • d delete • [ ] page"))
	return sb.String()
}

// ============================================
// Messages
// ============================================

func (m AdminModel) openMessages() (AdminModel, tea.Cmd) {
	m.view = AdminViewMessages
	m.loading = true
	m.err = nil
	return m, func() tea.Msg {
		messages, err := m.deps.Client.ContactMessages(m.ctx)
		if err != nil {
			return errMsg{err: err}
		}
		return messagesLoadedMsg{messages: messages}
	}
}

func (m AdminModel) viewMessages() string {
	if len(m.messages) == 0 {
		return m.styles.Subtle.Render("Inbox is empty.")
	}

	var sb strings.Builder
	for i, msg := range m.messages {
		subject := msg.Subject
		if subject == "" {
			subject = "(no subject)"
		}
		line := fmt.Sprintf("%s  %s <%s>", subject, msg.Name, msg.Email)
		if i == m.messageIdx {
			sb.WriteString(m.styles.RowActive.String() + " " + m.styles.Highlight.Render(line))
			sb.WriteString("\n")
			sb.WriteString(m.styles.ProductDescription.Render(msg.Message))
		} else {
			sb.WriteString(m.styles.Row.Render(line))
		}
		sb.WriteString("\n")
	}
	sb.WriteString(m.styles.HelpBar.Render("↑/↓ select"))
	return sb.String()
}

// ============================================
// Layout
// ============================================

// View renders the current view.
func (m AdminModel) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var content string
	switch {
	case m.view == AdminViewLogin:
		content = m.styles.ListTitle.Render("Admin sign in") + "\n"
		if m.form != nil && !m.loading {
			content += m.form.View()
		}
	case m.isFormView():
		content = m.styles.ListTitle.Render(m.formTitle()) + "\n"
		if m.form != nil && !m.loading {
			content += m.form.View()
		}
	case m.loading:
		content = m.spinner.View() + " Loading..."
	case m.view == AdminViewDashboard:
		content = m.viewDashboard()
	case m.view == AdminViewOrders:
		content = m.viewOrders()
	case m.view == AdminViewProducts:
		content = m.viewProducts()
	case m.view == AdminViewMessages:
		content = m.viewMessages()
	case m.view == AdminViewLookbook:
		content = m.viewLookbook()
	case m.view == AdminViewComments:
		content = m.viewComments()
	case m.view == AdminViewCatalog:
		content = m.viewCatalog()
	}

	if m.loading && (m.view == AdminViewLogin || m.isFormView()) {
		content += m.spinner.View() + " Please wait..."
	}
	if m.err != nil {
		content += "\n" + m.styles.Error.Render(fmt.Sprintf("Error: %v", friendlyError(m.err)))
	} else if m.status != "" {
		content += "\n" + m.styles.Status.Render(m.status)
	}

	return m.styles.App.Render(m.viewHeader() + "\n" + content)
}

func (m AdminModel) viewHeader() string {
	title := m.styles.HeaderTitle.Render("LOOKBOOK ADMIN")
	if user := m.deps.Session.User(); user != nil {
		title += "  " + m.styles.HeaderUser.Render(user.Email)
	}
	if m.view == AdminViewLogin {
		return m.styles.Header.Render(title)
	}

	tabs := []struct {
		view  AdminView
		label string
	}{
		{AdminViewDashboard, "1 Dashboard"},
		{AdminViewOrders, "2 Orders"},
		{AdminViewProducts, "3 Products"},
		{AdminViewMessages, "4 Messages"},
		{AdminViewLookbook, "5 Lookbook"},
		{AdminViewCatalog, "6 Catalog"},
	}
	active := m.view
	switch {
	case m.view == AdminViewComments:
		active = AdminViewLookbook
	case m.isFormView():
		active = m.formParent()
	}
	var rendered []string
	for _, tab := range tabs {
		if tab.view == active {
			rendered = append(rendered, m.styles.ActiveTab.Render(tab.label))
		} else {
			rendered = append(rendered, m.styles.Tabs.Render(tab.label))
		}
	}
	rendered = append(rendered, m.styles.Tabs.Render("x sign out • q quit"))

	return m.styles.Header.Render(title + "\n" + lipgloss.JoinHorizontal(lipgloss.Top, rendered...))
}

func (m AdminModel) formTitle() string {
	switch m.view {
	case AdminViewPostForm:
		if m.post != nil && m.post.base.ID != "" {
			return "Edit post"
		}
		return "New post"
	case AdminViewCategoryForm:
		if m.category != nil && m.category.ID != "" {
			return "Edit category"
		}
		return "New category"
	}
	return "Hero banner"
}

// GetView returns the current admin view (for testing).
func (m AdminModel) GetView() AdminView {
	return m.view
}
