package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/thomas/lookbook-terminal/internal/cart"
	"github.com/thomas/lookbook-terminal/internal/catalog"
	"github.com/thomas/lookbook-terminal/internal/money"
)

// productItem implements list.Item for products.
type productItem struct {
	product catalog.Product
	money   *money.Formatter
	liked   bool
}

func (i productItem) Title() string {
	if i.liked {
		return i.product.Name + " ♥"
	}
	return i.product.Name
}

func (i productItem) Description() string {
	parts := []string{priceLabel(&i.product, i.money)}
	if !i.product.InStock() {
		parts = append(parts, "Sold out")
	}
	if i.product.Category != "" {
		parts = append(parts, i.product.Category)
	}
	return strings.Join(parts, " • ")
}

func (i productItem) FilterValue() string {
	return i.product.Name
}

func priceLabel(p *catalog.Product, f *money.Formatter) string {
	if p.IsOnSale() {
		return fmt.Sprintf("%s (was %s)", f.Format(p.Price), f.Format(*p.OriginalPrice))
	}
	return f.Format(p.Price)
}

// ============================================
// Product list
// ============================================

func (m Model) handleProductListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if m.showSearch {
		switch key {
		case "enter":
			m.showSearch = false
			m.searchInput.Blur()
			m.query.Search = strings.TrimSpace(m.searchInput.Value())
			m.query.Page = 1
			return m.reloadProducts()
		case "esc":
			m.showSearch = false
			m.searchInput.Blur()
			m.searchInput.SetValue("")
			if m.query.Search != "" {
				m.query.Search = ""
				m.query.Page = 1
				return m.reloadProducts()
			}
			return m, nil
		}
		var cmd tea.Cmd
		m.searchInput, cmd = m.searchInput.Update(msg)
		return m, cmd
	}

	switch key {
	case "/":
		m.showSearch = true
		m.searchInput.Focus()
		return m, textinput.Blink

	case "g":
		m.categoryIdx = (m.categoryIdx + 1) % (len(m.categories) + 1)
		m.query.Category = ""
		if m.categoryIdx > 0 {
			cat := m.categories[m.categoryIdx-1]
			m.query.Category = cat.Slug
			if m.query.Category == "" {
				m.query.Category = cat.Name
			}
		}
		m.query.Page = 1
		return m.reloadProducts()

	case "s":
		m.sortIdx = (m.sortIdx + 1) % len(sortOptions)
		m.query.Sort = sortOptions[m.sortIdx].value
		m.query.Page = 1
		return m.reloadProducts()

	case "f":
		m.query.Featured = !m.query.Featured
		m.query.Page = 1
		return m.reloadProducts()

	case "]":
		if m.page != nil && m.query.Page < m.page.Pages {
			m.query.Page++
			return m.reloadProducts()
		}
		return m, nil

	case "[":
		if m.query.Page > 1 {
			m.query.Page--
			return m.reloadProducts()
		}
		return m, nil

	case "r":
		m.deps.Catalog.Invalidate()
		return m.reloadProducts()

	case "l":
		if item, ok := m.productList.SelectedItem().(productItem); ok {
			m.toggleLike(&item.product)
			m.updateProductList()
		}
		return m, nil

	case "enter":
		if item, ok := m.productList.SelectedItem().(productItem); ok {
			return m.openProduct(item.product)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.productList, cmd = m.productList.Update(msg)
	return m, cmd
}

func (m Model) reloadProducts() (tea.Model, tea.Cmd) {
	m.loading = true
	m.err = nil
	return m, m.loadProducts()
}

func (m Model) loadProducts() tea.Cmd {
	q := m.query
	return func() tea.Msg {
		page, err := m.deps.Catalog.Products(m.ctx, q)
		if err != nil {
			return errMsg{err: err}
		}
		return productsLoadedMsg{page: page}
	}
}

func (m Model) loadCategories() tea.Cmd {
	return func() tea.Msg {
		categories, err := m.deps.Catalog.Categories(m.ctx)
		if err != nil {
			// The list still works without the category filter.
			m.logger.Warn("Loading categories failed", "err", err)
			return categoriesLoadedMsg{}
		}
		return categoriesLoadedMsg{categories: categories}
	}
}

func (m *Model) updateProductList() {
	var products []catalog.Product
	if m.page != nil {
		products = m.page.Products
	}
	items := make([]list.Item, len(products))
	for i, p := range products {
		items[i] = productItem{
			product: p,
			money:   m.deps.Money,
			liked:   m.deps.Wishlist.Has(p.Identifier()),
		}
	}
	m.productList.SetItems(items)
}

func (m *Model) toggleLike(p *catalog.Product) {
	if m.deps.Wishlist.Toggle(p.Identifier()) {
		m.status = fmt.Sprintf("Saved %s to your wishlist", p.Name)
	} else {
		m.status = fmt.Sprintf("Removed %s from your wishlist", p.Name)
	}
}

func (m Model) viewProductList() string {
	var sb strings.Builder

	var filters []string
	category := "All"
	if m.categoryIdx > 0 && m.categoryIdx <= len(m.categories) {
		category = m.categories[m.categoryIdx-1].Name
	}
	filters = append(filters, m.styles.Chip.Render("Category: "+category))
	filters = append(filters, m.styles.Chip.Render("Sort: "+sortOptions[m.sortIdx].label))
	if m.query.Featured {
		filters = append(filters, m.styles.ChipActive.Render("Featured"))
	}
	if m.query.Search != "" {
		filters = append(filters, m.styles.ChipActive.Render(fmt.Sprintf("%q", m.query.Search)))
	}
	sb.WriteString(strings.Join(filters, " "))
	sb.WriteString("\n")

	if m.showSearch {
		sb.WriteString("Search: ")
		sb.WriteString(m.searchInput.View())
		sb.WriteString("\n")
	}
	sb.WriteString("\n")

	switch {
	case m.loading:
		sb.WriteString(m.spinner.View())
		sb.WriteString(" Loading products...")
	case m.page != nil && len(m.page.Products) == 0:
		sb.WriteString(m.styles.Subtle.Render("No products match these filters."))
	default:
		sb.WriteString(m.productList.View())
	}

	if m.page != nil && m.page.Pages > 1 {
		sb.WriteString("\n")
		sb.WriteString(m.styles.Subtle.Render(fmt.Sprintf("Page %d of %d • %d products", m.query.Page, m.page.Pages, m.page.Total)))
	}

	sb.WriteString("\n")
	sb.WriteString(m.styles.HelpBar.Render("/ search • g category • s sort • f featured • [ ] page • l like • enter open • q quit"))

	return sb.String()
}

// ============================================
// Product details
// ============================================

func (m Model) openProduct(p catalog.Product) (tea.Model, tea.Cmd) {
	m.selected = &p
	m.colorIdx, m.sizeIdx, m.variantIdx = 0, 0, 0
	m.viewState = ViewProductDetails
	return m, m.loadProduct(p.Identifier())
}

// loadProduct refreshes the selected product, since list entries can be abridged.
func (m Model) loadProduct(id string) tea.Cmd {
	if id == "" {
		return nil
	}
	return func() tea.Msg {
		p, err := m.deps.Catalog.Product(m.ctx, id)
		if err != nil {
			m.logger.Debug("Refreshing product failed", "id", id, "err", err)
			return nil
		}
		return productLoadedMsg{product: p}
	}
}

func (m *Model) clampSelection() {
	if m.selected == nil {
		return
	}
	m.colorIdx = clampIndex(m.colorIdx, len(m.selected.Colors()))
	m.sizeIdx = clampIndex(m.sizeIdx, len(m.selected.Sizes))
	m.variantIdx = clampIndex(m.variantIdx, len(m.selected.Variants))
}

func (m Model) selectedColor() string {
	if m.selected == nil {
		return ""
	}
	if colors := m.selected.Colors(); m.colorIdx < len(colors) {
		return colors[m.colorIdx]
	}
	return ""
}

func (m Model) selectedSize() string {
	if m.selected == nil || m.sizeIdx >= len(m.selected.Sizes) {
		return ""
	}
	return m.selected.Sizes[m.sizeIdx]
}

func (m Model) selectedVariant() *catalog.Variant {
	if m.selected == nil || m.variantIdx >= len(m.selected.Variants) {
		return nil
	}
	return &m.selected.Variants[m.variantIdx]
}

func (m Model) handleProductDetailsKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.selected == nil {
		m.viewState = ViewProductList
		return m, nil
	}

	switch msg.String() {
	case "esc", "backspace":
		m.viewState = ViewProductList
		m.selected = nil
		m.updateProductList()
		return m, nil

	case "tab":
		if n := len(m.selected.Colors()); n > 0 {
			m.colorIdx = (m.colorIdx + 1) % n
		}

	case "s":
		if n := len(m.selected.Sizes); n > 0 {
			m.sizeIdx = (m.sizeIdx + 1) % n
		}

	case "v":
		if n := len(m.selected.Variants); n > 0 {
			m.variantIdx = (m.variantIdx + 1) % n
		}

	case "l":
		m.toggleLike(m.selected)

	case "a", "enter":
		m.addSelectedToCart()
	}

	return m, nil
}

func (m *Model) addSelectedToCart() {
	p := m.selected
	if !p.InStock() {
		m.status = fmt.Sprintf("%s is sold out", p.Name)
		return
	}

	opts := cart.AddOptions{
		Color: m.selectedColor(),
		Size:  m.selectedSize(),
	}
	if v := m.selectedVariant(); v != nil {
		opts.Variant = v.ID
		opts.VariantLabel = v.Label
	}

	item := m.deps.Cart.AddItem(p, opts)
	m.status = fmt.Sprintf("Added %s to your cart (%d in cart)", item.Name, item.Qty)
}

func (m Model) viewProductDetails() string {
	if m.selected == nil {
		return "No product selected"
	}

	var sb strings.Builder
	p := m.selected
	color := m.selectedColor()

	name := p.Name
	if m.deps.Wishlist.Has(p.Identifier()) {
		name += " " + m.styles.Liked.Render("♥")
	}
	sb.WriteString(m.styles.ProductName.Render(name))
	sb.WriteString("\n")

	variantID := ""
	if v := m.selectedVariant(); v != nil {
		variantID = v.ID
	}
	price := p.PriceFor(variantID)
	if p.IsOnSale() && price == p.Price {
		sb.WriteString(m.styles.ProductSalePrice.Render(m.deps.Money.Format(price)))
		sb.WriteString(" ")
		sb.WriteString(m.styles.ProductWasPrice.Render(m.deps.Money.Format(*p.OriginalPrice)))
	} else {
		sb.WriteString(m.styles.ProductPrice.Render(m.deps.Money.Format(price)))
	}
	sb.WriteString("  ")
	if p.InStock() {
		sb.WriteString(m.styles.ProductInStock.Render(fmt.Sprintf("In stock (%d)", p.Stock)))
	} else {
		sb.WriteString(m.styles.ProductOutOfStock.Render("Sold out"))
	}
	sb.WriteString("\n\n")

	sb.WriteString(m.renderChoices("Color", p.Colors(), m.colorIdx))
	sb.WriteString(m.renderChoices("Size", p.Sizes, m.sizeIdx))
	if len(p.Variants) > 0 {
		labels := make([]string, len(p.Variants))
		for i, v := range p.Variants {
			labels[i] = v.Label
		}
		sb.WriteString(m.renderChoices("Variant", labels, m.variantIdx))
	}

	sb.WriteString(m.styles.ProductAttribute.Render("Image: "))
	sb.WriteString(catalog.ResolveImage(p, color))
	sb.WriteString("\n")
	if video, ok := catalog.ResolveVideo(p, color); ok {
		sb.WriteString(m.styles.ProductAttribute.Render("Video: "))
		sb.WriteString(video)
		sb.WriteString("\n")
	}

	if desc := StripHTML(p.Description); desc != "" {
		sb.WriteString(m.styles.ProductDescription.Render(desc))
		sb.WriteString("\n")
	}

	sb.WriteString(m.styles.HelpBar.Render("tab color • s size • v variant • a add to cart • l like • esc back"))

	return m.styles.Box.Render(sb.String())
}

func (m Model) renderChoices(label string, values []string, selected int) string {
	if len(values) == 0 {
		return ""
	}
	chips := make([]string, len(values))
	for i, v := range values {
		if i == selected {
			chips[i] = m.styles.ChipActive.Render(v)
		} else {
			chips[i] = m.styles.Chip.Render(v)
		}
	}
	return m.styles.ProductAttribute.Render(label+": ") + strings.Join(chips, "") + "\n"
}
