package tui

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/thomas/lookbook-terminal/internal/api"
	"github.com/thomas/lookbook-terminal/internal/cart"
)

type orderPlacedMsg struct {
	order *api.Order
}

// checkoutDetails backs the checkout form.
type checkoutDetails struct {
	Name      string
	Email     string
	Phone     string
	Address   string
	City      string
	Postal    string
	Country   string
	Notes     string
	Confirmed bool
}

func (d *checkoutDetails) request(items []api.OrderItem) api.CreateOrderRequest {
	return api.CreateOrderRequest{
		Items: items,
		Shipping: api.ShippingAddress{
			Name:    strings.TrimSpace(d.Name),
			Email:   strings.TrimSpace(d.Email),
			Phone:   strings.TrimSpace(d.Phone),
			Address: strings.TrimSpace(d.Address),
			City:    strings.TrimSpace(d.City),
			Postal:  strings.TrimSpace(d.Postal),
			Country: strings.TrimSpace(d.Country),
		},
		Notes: strings.TrimSpace(d.Notes),
	}
}

func required(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}

func validEmail(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("email is required")
	}
	if !strings.Contains(s, "@") {
		return errors.New("invalid email format")
	}
	return nil
}

// ============================================
// Cart
// ============================================

func (m Model) handleCartKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	items := m.deps.Cart.Items()

	if m.editingQty {
		switch key {
		case "enter":
			if m.cartIdx < len(items) {
				m.deps.Cart.SetQtyText(items[m.cartIdx].Key, m.qtyInput.Value())
			}
			m.editingQty = false
			m.qtyInput.Blur()
			return m, nil
		case "esc":
			m.editingQty = false
			m.qtyInput.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		m.qtyInput, cmd = m.qtyInput.Update(msg)
		return m, cmd
	}

	switch key {
	case "esc", "backspace":
		m.viewState = ViewProductList
		return m, nil

	case "up", "k":
		if m.cartIdx > 0 {
			m.cartIdx--
		}

	case "down", "j":
		if m.cartIdx < len(items)-1 {
			m.cartIdx++
		}

	case "+", "=":
		if m.cartIdx < len(items) {
			m.deps.Cart.UpdateQty(items[m.cartIdx].Key, items[m.cartIdx].Qty+1)
		}

	case "-":
		if m.cartIdx < len(items) {
			m.deps.Cart.UpdateQty(items[m.cartIdx].Key, items[m.cartIdx].Qty-1)
		}

	case "e":
		if m.cartIdx < len(items) {
			m.editingQty = true
			m.qtyInput.SetValue(fmt.Sprint(items[m.cartIdx].Qty))
			m.qtyInput.Focus()
			return m, textinput.Blink
		}

	case "d", "delete":
		if m.cartIdx < len(items) {
			m.deps.Cart.RemoveItem(items[m.cartIdx].Key)
			m.cartIdx = clampIndex(m.cartIdx, len(items)-1)
		}

	case "x":
		m.deps.Cart.Clear()
		m.cartIdx = 0

	case "enter":
		if !m.deps.Cart.IsEmpty() {
			return m.openCheckout()
		}
	}

	return m, nil
}

func (m Model) viewCart() string {
	var sb strings.Builder

	sb.WriteString(m.styles.ListTitle.Render("Your cart"))
	sb.WriteString("\n")

	items := m.deps.Cart.Items()
	if len(items) == 0 {
		sb.WriteString(m.styles.Subtle.Render("Your cart is empty. Press p to keep shopping."))
		return sb.String()
	}

	for i, item := range items {
		line := fmt.Sprintf("%s  %d × %s = %s",
			item.Name,
			item.Qty,
			m.deps.Money.Format(item.Price),
			m.deps.Money.Format(item.LineTotal()))
		if detail := lineDetail(item); detail != "" {
			line += "\n   " + m.styles.Subtle.Render(detail)
		}

		if i == m.cartIdx {
			sb.WriteString(m.styles.RowActive.String() + " " + m.styles.Highlight.Render(line))
			if m.editingQty {
				sb.WriteString("\n   Qty: " + m.qtyInput.View())
			}
		} else {
			sb.WriteString(m.styles.Row.Render(line))
		}
		sb.WriteString("\n")
	}

	totals := m.deps.Cart.Totals()
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("%d items\n", totals.Count))
	sb.WriteString(m.styles.ProductPrice.Render("Subtotal: " + m.deps.Money.Format(totals.Subtotal)))
	sb.WriteString("\n")

	sb.WriteString(m.styles.HelpBar.Render("↑/↓ select • +/- qty • e edit qty • d remove • x clear • enter checkout • esc back"))

	return m.styles.Box.Render(sb.String())
}

func lineDetail(item cart.LineItem) string {
	var parts []string
	if item.VariantLabel != "" {
		parts = append(parts, item.VariantLabel)
	}
	if item.Color != "" {
		parts = append(parts, item.Color)
	}
	if item.Size != "" {
		parts = append(parts, "size "+item.Size)
	}
	keys := make([]string, 0, len(item.Options))
	for k := range item.Options {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		parts = append(parts, k+": "+item.Options[k])
	}
	return strings.Join(parts, " • ")
}

// ============================================
// Checkout
// ============================================

func (m Model) openCheckout() (tea.Model, tea.Cmd) {
	m.checkout = &checkoutDetails{}
	if user := m.deps.Session.User(); user != nil {
		addr := user.ShippingAddress()
		m.checkout.Name = addr.Name
		m.checkout.Email = addr.Email
		m.checkout.Phone = addr.Phone
		m.checkout.Address = addr.Address
		m.checkout.City = addr.City
		m.checkout.Postal = addr.Postal
		m.checkout.Country = addr.Country
	}

	m.err = nil
	m.form = newCheckoutForm(m.checkout)
	m.viewState = ViewCheckout
	return m, m.form.Init()
}

func newCheckoutForm(d *checkoutDetails) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Full name").
				Value(&d.Name).
				Validate(required("name")),
			huh.NewInput().
				Title("Email").
				Value(&d.Email).
				Validate(validEmail),
			huh.NewInput().
				Title("Phone").
				Value(&d.Phone),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Street address").
				Value(&d.Address).
				Validate(required("address")),
			huh.NewInput().
				Title("City").
				Value(&d.City).
				Validate(required("city")),
			huh.NewInput().
				Title("Postal code").
				Value(&d.Postal),
			huh.NewInput().
				Title("Country").
				Value(&d.Country).
				Placeholder("US"),
		),
		huh.NewGroup(
			huh.NewText().
				Title("Order notes").
				Value(&d.Notes).
				CharLimit(500),
			huh.NewConfirm().
				Title("Place this order?").
				Value(&d.Confirmed).
				Affirmative("Place order").
				Negative("Back to cart"),
		),
	).WithShowHelp(true).WithShowErrors(true)
}

func (m Model) placeOrder(req api.CreateOrderRequest) tea.Cmd {
	return func() tea.Msg {
		order, err := m.deps.Client.CreateOrder(m.ctx, req)
		if err != nil {
			return errMsg{err: err}
		}
		m.logger.Info("Order placed", "number", order.OrderNumber, "items", len(req.Items))
		return orderPlacedMsg{order: order}
	}
}

func (m Model) viewCheckoutSummary() string {
	totals := m.deps.Cart.Totals()
	return m.styles.Subtle.Render(fmt.Sprintf("%d items • subtotal %s", totals.Count, m.deps.Money.Format(totals.Subtotal)))
}

func (m Model) handleOrderConfirmationKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "esc":
		m.viewState = ViewProductList
		m.order = nil
	}
	return m, nil
}

func (m Model) viewOrderConfirmation() string {
	var sb strings.Builder

	sb.WriteString(m.styles.Success.Render("✓ Thank you! Your order has been placed."))
	sb.WriteString("\n\n")

	if o := m.order; o != nil {
		sb.WriteString(fmt.Sprintf("Order #%s\n", o.OrderNumber))
		sb.WriteString(fmt.Sprintf("Status: %s\n", o.Status))
		sb.WriteString(fmt.Sprintf("Total: %s\n", m.deps.Money.Format(o.Total)))

		sb.WriteString("\n")
		sb.WriteString(m.styles.Subtle.Render("Shipping to:"))
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("  %s\n", o.Shipping.Name))
		if o.Shipping.Address != "" {
			sb.WriteString(fmt.Sprintf("  %s\n", o.Shipping.Address))
		}
		sb.WriteString(fmt.Sprintf("  %s %s %s\n", o.Shipping.Postal, o.Shipping.City, o.Shipping.Country))
	}

	sb.WriteString("\n")
	sb.WriteString(m.styles.HelpBar.Render("Press Enter to continue shopping"))

	return m.styles.Box.Render(sb.String())
}
