package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/thomas/lookbook-terminal/internal/catalog"
)

// wishlistLoadedMsg carries candidate products; the wishlist picks and orders them.
type wishlistLoadedMsg struct {
	products []catalog.Product
}

func (m Model) openWishlist() (tea.Model, tea.Cmd) {
	m.viewState = ViewWishlist
	m.err = nil
	ids := m.deps.Wishlist.IDs()
	if len(ids) == 0 {
		m.wishlistItems = nil
		return m, nil
	}
	m.loading = true
	return m, m.loadWishlist(ids)
}

// loadWishlist materializes the liked ids, fetching only the products the
// catalog cache does not already know.
func (m Model) loadWishlist(ids []string) tea.Cmd {
	known := m.deps.Catalog.Known()
	return func() tea.Msg {
		var missing []string
		for _, id := range ids {
			if !containsProduct(known, id) {
				missing = append(missing, id)
			}
		}

		products := known
		if len(missing) > 0 {
			fetched, err := m.deps.Client.ProductsByIDs(m.ctx, missing)
			if err != nil {
				return errMsg{err: err}
			}
			products = append(products, fetched...)
		}
		return wishlistLoadedMsg{products: products}
	}
}

func containsProduct(products []catalog.Product, id string) bool {
	for i := range products {
		if products[i].Matches(id) {
			return true
		}
	}
	return false
}

func (m Model) handleWishlistKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "backspace":
		m.viewState = ViewProductList
		return m, nil

	case "up", "k":
		if m.wishIdx > 0 {
			m.wishIdx--
		}

	case "down", "j":
		if m.wishIdx < len(m.wishlistItems)-1 {
			m.wishIdx++
		}

	case "enter":
		if m.wishIdx < len(m.wishlistItems) {
			return m.openProduct(m.wishlistItems[m.wishIdx])
		}

	case "d", "l":
		if m.wishIdx < len(m.wishlistItems) {
			p := m.wishlistItems[m.wishIdx]
			m.deps.Wishlist.Remove(p.Identifier())
			m.wishlistItems = append(m.wishlistItems[:m.wishIdx:m.wishIdx], m.wishlistItems[m.wishIdx+1:]...)
			m.wishIdx = clampIndex(m.wishIdx, len(m.wishlistItems))
			m.status = "Removed " + p.Name + " from your wishlist"
		}
	}

	return m, nil
}

func (m Model) viewWishlist() string {
	var sb strings.Builder

	sb.WriteString(m.styles.ListTitle.Render("Wishlist"))
	sb.WriteString("\n")

	switch {
	case m.loading:
		sb.WriteString(m.spinner.View())
		sb.WriteString(" Loading your favourites...")
		return sb.String()
	case len(m.wishlistItems) == 0:
		sb.WriteString(m.styles.Subtle.Render("Nothing saved yet. Press l on a product to like it."))
		return sb.String()
	}

	for i, p := range m.wishlistItems {
		line := p.Name + "  " + priceLabel(&p, m.deps.Money)
		if !p.InStock() {
			line += "  " + m.styles.ProductOutOfStock.Render("Sold out")
		}
		if i == m.wishIdx {
			sb.WriteString(m.styles.RowActive.String() + " " + m.styles.Highlight.Render(line))
		} else {
			sb.WriteString(m.styles.Row.Render(line))
		}
		sb.WriteString("\n")
	}

	sb.WriteString(m.styles.HelpBar.Render("↑/↓ select • enter open • d remove • esc back"))
	return m.styles.Box.Render(sb.String())
}
