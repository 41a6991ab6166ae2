package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/thomas/lookbook-terminal/internal/api"
)

type ordersLoadedMsg struct {
	orders []api.Order
}

func (m Model) openOrders() (tea.Model, tea.Cmd) {
	if !m.deps.Session.SignedIn() {
		m.status = "Sign in to see your orders"
		return m.openLogin()
	}
	m.viewState = ViewOrders
	m.loading = true
	m.err = nil
	return m, m.loadOrders()
}

func (m Model) loadOrders() tea.Cmd {
	return func() tea.Msg {
		orders, err := m.deps.Client.MyOrders(m.ctx)
		if err != nil {
			return errMsg{err: err}
		}
		return ordersLoadedMsg{orders: orders}
	}
}

func (m Model) handleOrdersKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "backspace":
		m.viewState = ViewProductList
	case "up", "k":
		if m.orderIdx > 0 {
			m.orderIdx--
		}
	case "down", "j":
		if m.orderIdx < len(m.orders)-1 {
			m.orderIdx++
		}
	case "r":
		m.loading = true
		return m, m.loadOrders()
	}
	return m, nil
}

func (m Model) viewOrders() string {
	var sb strings.Builder

	sb.WriteString(m.styles.ListTitle.Render("My orders"))
	sb.WriteString("\n")

	switch {
	case m.loading:
		sb.WriteString(m.spinner.View())
		sb.WriteString(" Loading orders...")
		return sb.String()
	case len(m.orders) == 0:
		sb.WriteString(m.styles.Subtle.Render("No orders yet."))
		return sb.String()
	}

	for i, o := range m.orders {
		line := fmt.Sprintf("#%s  %s  %s  %s",
			o.OrderNumber,
			o.CreatedAt.Format("2006-01-02"),
			o.Status,
			m.deps.Money.Format(o.Total))
		if i != m.orderIdx {
			sb.WriteString(m.styles.Row.Render(line))
			sb.WriteString("\n")
			continue
		}

		sb.WriteString(m.styles.RowActive.String() + " " + m.styles.Highlight.Render(line))
		sb.WriteString("\n")
		for _, item := range o.Items {
			sb.WriteString(m.styles.Subtle.Render(fmt.Sprintf("     %d × %s  %s", item.Qty, item.Name, m.deps.Money.Format(item.Price))))
			sb.WriteString("\n")
		}
	}

	sb.WriteString(m.styles.HelpBar.Render("↑/↓ select • r refresh • esc back"))
	return m.styles.Box.Render(sb.String())
}
