package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/thomas/lookbook-terminal/internal/api"
	"github.com/thomas/lookbook-terminal/internal/cache"
	"github.com/thomas/lookbook-terminal/internal/cart"
	"github.com/thomas/lookbook-terminal/internal/catalog"
	"github.com/thomas/lookbook-terminal/internal/money"
	"github.com/thomas/lookbook-terminal/internal/session"
	"github.com/thomas/lookbook-terminal/internal/wishlist"
)

// ViewState represents the current view in the application.
type ViewState int

const (
	ViewProductList ViewState = iota
	ViewProductDetails
	ViewCart
	ViewCheckout
	ViewOrderConfirmation
	ViewWishlist
	ViewOrders
	ViewAccount
	ViewLogin
	ViewRegister
	ViewProfile
	ViewPassword
	ViewLookbook
	ViewPost
	ViewContact
)

// Deps are the collaborators of one SSH session. Cart, Wishlist and Session are
// owned by the session; Catalog may be shared.
type Deps struct {
	Ctx      context.Context
	Client   *api.Client
	Catalog  *cache.Catalog
	Session  *session.Store
	Cart     *cart.Store
	Wishlist *wishlist.Store
	Money    *money.Formatter
	Logger   *log.Logger
}

const productsPerPage = 12

type sortOption struct {
	label string
	value string
}

var sortOptions = []sortOption{
	{"Newest", api.SortNewest},
	{"Price ↑", api.SortPriceAsc},
	{"Price ↓", api.SortPriceDesc},
	{"Name", api.SortName},
}

// Model is the storefront Bubble Tea model.
type Model struct {
	// Dependencies
	deps   Deps
	ctx    context.Context
	logger *log.Logger

	// View state
	viewState ViewState
	width     int
	height    int
	styles    Styles
	spinner   spinner.Model
	loading   bool
	status    string
	err       error

	// Product list view
	productList list.Model
	query       api.ProductQuery
	page        *api.ProductPage
	categories  []api.Category
	categoryIdx int // 0 means all categories
	sortIdx     int
	searchInput textinput.Model
	showSearch  bool

	// Product details view
	selected   *catalog.Product
	colorIdx   int
	sizeIdx    int
	variantIdx int

	// Cart view
	cartIdx    int
	qtyInput   textinput.Model
	editingQty bool

	// Active form (checkout, sign in, register, profile, password, contact)
	form     *huh.Form
	checkout *checkoutDetails
	login    *loginDetails
	register *registerDetails
	profile  *profileDetails
	password *passwordDetails
	contact  *contactDetails
	order    *api.Order

	// Wishlist and orders views
	wishlistItems []catalog.Product
	wishIdx       int
	orders        []api.Order
	orderIdx      int

	// Lookbook views
	posts          []api.Post
	postIdx        int
	post           *api.Post
	comments       []api.Comment
	commentInput   textinput.Model
	writingComment bool
}

// Messages
type (
	productsLoadedMsg struct {
		page *api.ProductPage
	}
	categoriesLoadedMsg struct {
		categories []api.Category
	}
	productLoadedMsg struct {
		product *catalog.Product
	}
	bootstrappedMsg struct {
		user *session.Profile
	}
	errMsg struct {
		err error
	}
)

// NewModel creates the storefront model for one session.
func NewModel(deps Deps) Model {
	if deps.Ctx == nil {
		deps.Ctx = context.Background()
	}
	if deps.Money == nil {
		deps.Money = money.Default()
	}
	logger := deps.Logger
	if logger == nil {
		logger = log.Default()
	}

	styles := DefaultStyles()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(colorHighlight)

	search := textinput.New()
	search.Placeholder = "Search products..."
	search.CharLimit = 50
	search.Width = 30

	qty := textinput.New()
	qty.Placeholder = "qty"
	qty.CharLimit = 4
	qty.Width = 6

	comment := textinput.New()
	comment.Placeholder = "Say something nice..."
	comment.CharLimit = 280
	comment.Width = 50

	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
		Foreground(colorHighlight).
		BorderLeftForeground(colorHighlight)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.
		Foreground(colorSand).
		BorderLeftForeground(colorHighlight)

	productList := list.New([]list.Item{}, delegate, 0, 0)
	productList.Title = "Shop"
	productList.SetShowHelp(false)
	productList.SetFilteringEnabled(false)
	productList.Styles.Title = styles.ListTitle

	return Model{
		deps:         deps,
		ctx:          deps.Ctx,
		logger:       logger.WithPrefix("tui"),
		viewState:    ViewProductList,
		styles:       styles,
		spinner:      sp,
		productList:  productList,
		query:        api.ProductQuery{Page: 1, Limit: productsPerPage, Sort: sortOptions[0].value},
		searchInput:  search,
		qtyInput:     qty,
		commentInput: comment,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		m.bootstrap(),
		m.loadCategories(),
		m.loadProducts(),
	)
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.productList.SetSize(msg.Width-4, msg.Height-10)
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case bootstrappedMsg:
		if msg.user != nil {
			m.logger.Debug("Session restored", "email", msg.user.Email)
		}

	case productsLoadedMsg:
		m.loading = false
		m.err = nil
		m.page = msg.page
		m.updateProductList()

	case categoriesLoadedMsg:
		m.categories = msg.categories

	case productLoadedMsg:
		if m.selected != nil && m.selected.Matches(msg.product.Identifier()) {
			m.selected = msg.product
			m.clampSelection()
		}

	case wishlistLoadedMsg:
		m.loading = false
		m.wishlistItems = m.deps.Wishlist.Items(msg.products)
		m.wishIdx = clampIndex(m.wishIdx, len(m.wishlistItems))

	case ordersLoadedMsg:
		m.loading = false
		m.orders = msg.orders
		m.orderIdx = clampIndex(m.orderIdx, len(m.orders))

	case orderPlacedMsg:
		m.loading = false
		m.order = msg.order
		m.deps.Cart.Clear()
		m.cartIdx = 0
		m.form = nil
		m.viewState = ViewOrderConfirmation

	case signedInMsg:
		m.loading = false
		m.err = nil
		m.form = nil
		m.status = fmt.Sprintf("Welcome, %s", displayName(msg.user))
		m.viewState = ViewAccount

	case profileSavedMsg:
		m.loading = false
		m.form = nil
		m.status = "Profile saved"
		m.viewState = ViewAccount

	case passwordChangedMsg:
		m.loading = false
		m.form = nil
		m.status = "Password changed"
		m.viewState = ViewAccount

	case postsLoadedMsg:
		m.loading = false
		m.posts = msg.posts
		m.postIdx = clampIndex(m.postIdx, len(m.posts))

	case commentsLoadedMsg:
		if m.post != nil && m.post.ID == msg.postID {
			m.comments = msg.comments
		}

	case commentAddedMsg:
		m.comments = append(m.comments, *msg.comment)
		if m.post != nil {
			m.post.Comments++
		}
		m.status = "Comment posted"

	case reactedMsg:
		m.applyReactions(msg.postID, msg.reactions)

	case contactSentMsg:
		m.loading = false
		m.form = nil
		m.status = "Thanks, we'll be in touch"
		m.viewState = ViewProductList

	case errMsg:
		m.loading = false
		m.err = msg.err
		if m.deps.Session != nil {
			wasSignedIn := m.deps.Session.SignedIn()
			m.deps.Session.HandleError(msg.err)
			if wasSignedIn && !m.deps.Session.SignedIn() {
				m.status = "Your session expired, please sign in again"
			}
		}
		m.logger.Debug("Request failed", "view", m.viewState, "err", msg.err)
		if m.isFormView() {
			// Reopen the form with the values already entered.
			m.form = m.buildForm()
			if m.form != nil {
				return m, m.form.Init()
			}
		}
	}

	// Update sub-models based on view state
	switch {
	case m.isFormView() && m.form != nil:
		var cmd tea.Cmd
		m, cmd = m.updateForm(msg)
		cmds = append(cmds, cmd)

	case m.viewState == ViewProductList && !m.showSearch:
		var cmd tea.Cmd
		m.productList, cmd = m.productList.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// isFormView reports whether the current view is driven by a huh form.
func (m Model) isFormView() bool {
	switch m.viewState {
	case ViewCheckout, ViewLogin, ViewRegister, ViewProfile, ViewPassword, ViewContact:
		return true
	}
	return false
}

// capturingInput reports whether keystrokes belong to a text field.
func (m Model) capturingInput() bool {
	return m.showSearch || m.editingQty || m.writingComment || m.isFormView()
}

func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "ctrl+c" {
		return m, tea.Quit
	}

	if !m.capturingInput() {
		m.status = ""
		switch key {
		case "q":
			return m, tea.Quit
		case "p":
			m.viewState = ViewProductList
			return m, nil
		case "c":
			m.viewState = ViewCart
			m.cartIdx = clampIndex(m.cartIdx, len(m.deps.Cart.Items()))
			return m, nil
		case "w":
			return m.openWishlist()
		case "o":
			return m.openOrders()
		case "u":
			m.viewState = ViewAccount
			return m, nil
		case "b":
			return m.openLookbook()
		case "m":
			return m.openContact()
		}
	}

	switch m.viewState {
	case ViewProductList:
		return m.handleProductListKeys(msg)
	case ViewProductDetails:
		return m.handleProductDetailsKeys(msg)
	case ViewCart:
		return m.handleCartKeys(msg)
	case ViewOrderConfirmation:
		return m.handleOrderConfirmationKeys(msg)
	case ViewWishlist:
		return m.handleWishlistKeys(msg)
	case ViewOrders:
		return m.handleOrdersKeys(msg)
	case ViewAccount:
		return m.handleAccountKeys(msg)
	case ViewLookbook:
		return m.handleLookbookKeys(msg)
	case ViewPost:
		return m.handlePostKeys(msg)
	case ViewCheckout, ViewLogin, ViewRegister, ViewProfile, ViewPassword, ViewContact:
		return m.handleFormKeys(msg)
	}

	return m, nil
}

func (m Model) handleFormKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "esc" {
		m.form = nil
		m.viewState = m.formParent()
		return m, nil
	}
	if m.form == nil || m.loading {
		return m, nil
	}
	return m.updateForm(msg)
}

// formParent is the view a form returns to when dismissed.
func (m Model) formParent() ViewState {
	switch m.viewState {
	case ViewCheckout:
		return ViewCart
	case ViewLogin, ViewRegister, ViewProfile, ViewPassword:
		return ViewAccount
	}
	return ViewProductList
}

// updateForm forwards msg to the active form and submits it once completed.
func (m Model) updateForm(msg tea.Msg) (Model, tea.Cmd) {
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
		m.form = nil
		m.viewState = m.formParent()
		return m, nil
	}
	return m, cmd
}

func (m Model) submitForm() (Model, tea.Cmd) {
	switch m.viewState {
	case ViewCheckout:
		if !m.checkout.Confirmed {
			m.form = nil
			m.viewState = ViewCart
			return m, nil
		}
		m.loading = true
		return m, m.placeOrder(m.checkout.request(m.deps.Cart.ToOrderItems()))
	case ViewLogin:
		m.loading = true
		return m, m.signIn(m.login.Email, m.login.Password)
	case ViewRegister:
		m.loading = true
		return m, m.signUp(m.register.request())
	case ViewProfile:
		m.loading = true
		return m, m.saveProfile(m.profile.update())
	case ViewPassword:
		m.loading = true
		return m, m.changePassword(m.password.Current, m.password.Next)
	case ViewContact:
		m.loading = true
		return m, m.sendContact(m.contact.message())
	}
	return m, nil
}

func (m Model) buildForm() *huh.Form {
	switch m.viewState {
	case ViewCheckout:
		return newCheckoutForm(m.checkout)
	case ViewLogin:
		return newLoginForm(m.login)
	case ViewRegister:
		return newRegisterForm(m.register)
	case ViewProfile:
		return newProfileForm(m.profile)
	case ViewPassword:
		return newPasswordForm(m.password)
	case ViewContact:
		return newContactForm(m.contact)
	}
	return nil
}

func (m Model) bootstrap() tea.Cmd {
	if m.deps.Session == nil {
		return nil
	}
	return func() tea.Msg {
		return bootstrappedMsg{user: m.deps.Session.Bootstrap(m.ctx)}
	}
}

// View renders the current view.
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var content string

	switch m.viewState {
	case ViewProductList:
		content = m.viewProductList()
	case ViewProductDetails:
		content = m.viewProductDetails()
	case ViewCart:
		content = m.viewCart()
	case ViewCheckout:
		content = m.viewForm("Checkout", m.viewCheckoutSummary())
	case ViewOrderConfirmation:
		content = m.viewOrderConfirmation()
	case ViewWishlist:
		content = m.viewWishlist()
	case ViewOrders:
		content = m.viewOrders()
	case ViewAccount:
		content = m.viewAccount()
	case ViewLogin:
		content = m.viewForm("Sign in", "")
	case ViewRegister:
		content = m.viewForm("Create an account", "")
	case ViewProfile:
		content = m.viewForm("Edit profile", "")
	case ViewPassword:
		content = m.viewForm("Change password", "")
	case ViewLookbook:
		content = m.viewLookbook()
	case ViewPost:
		content = m.viewPost()
	case ViewContact:
		content = m.viewForm("Contact us", "")
	}

	return m.styles.App.Render(m.viewHeader() + "\n" + content + m.viewStatus())
}

var navTabs = []struct {
	key   string
	label string
	views []ViewState
}{
	{"p", "Shop", []ViewState{ViewProductList, ViewProductDetails}},
	{"b", "Lookbook", []ViewState{ViewLookbook, ViewPost}},
	{"w", "Wishlist", []ViewState{ViewWishlist}},
	{"c", "Cart", []ViewState{ViewCart, ViewCheckout, ViewOrderConfirmation}},
	{"o", "Orders", []ViewState{ViewOrders}},
	{"u", "Account", []ViewState{ViewAccount, ViewLogin, ViewRegister, ViewProfile, ViewPassword}},
	{"m", "Contact", []ViewState{ViewContact}},
}

func (m Model) viewHeader() string {
	var tabs []string
	for _, tab := range navTabs {
		label := fmt.Sprintf("%s %s", tab.key, tab.label)
		switch tab.label {
		case "Cart":
			if n := m.deps.Cart.ItemCount(); n > 0 {
				label = fmt.Sprintf("%s (%d)", label, n)
			}
		case "Wishlist":
			if n := m.deps.Wishlist.Len(); n > 0 {
				label = fmt.Sprintf("%s (%d)", label, n)
			}
		}

		style := m.styles.Tabs
		for _, v := range tab.views {
			if v == m.viewState {
				style = m.styles.ActiveTab
			}
		}
		tabs = append(tabs, style.Render(label))
	}

	who := "guest"
	if m.deps.Session != nil {
		if user := m.deps.Session.User(); user != nil {
			who = displayName(user)
		}
	}

	title := m.styles.HeaderTitle.Render("LOOKBOOK") + "  " + m.styles.HeaderUser.Render(who)
	return m.styles.Header.Render(title + "\n" + lipgloss.JoinHorizontal(lipgloss.Top, tabs...))
}

func (m Model) viewStatus() string {
	switch {
	case m.err != nil:
		return "\n" + m.styles.Error.Render(fmt.Sprintf("Error: %v", friendlyError(m.err)))
	case m.status != "":
		return "\n" + m.styles.Status.Render(m.status)
	}
	return ""
}

func (m Model) viewForm(title, summary string) string {
	var sb strings.Builder
	sb.WriteString(m.styles.ListTitle.Render(title))
	sb.WriteString("\n")
	if summary != "" {
		sb.WriteString(summary)
		sb.WriteString("\n")
	}
	if m.loading {
		sb.WriteString(m.spinner.View())
		sb.WriteString(" Sending...")
	} else if m.form != nil {
		sb.WriteString(m.form.View())
	}
	sb.WriteString("\n")
	sb.WriteString(m.styles.HelpBar.Render("esc back"))
	return sb.String()
}

// friendlyError unwraps API errors to the server's message.
func friendlyError(err error) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}

func displayName(p *session.Profile) string {
	if p == nil {
		return "guest"
	}
	if p.Name != "" {
		return p.Name
	}
	return p.Email
}

func clampIndex(i, n int) int {
	if n == 0 || i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// GetViewState returns the current view state (for testing).
func (m Model) GetViewState() ViewState {
	return m.viewState
}

// GetSelectedProduct returns the product shown on the details view (for testing).
func (m Model) GetSelectedProduct() *catalog.Product {
	return m.selected
}
