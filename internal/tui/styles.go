// Package tui implements the storefront and admin consoles using Bubble Tea.
package tui

import "github.com/charmbracelet/lipgloss"

// Color palette, linen and ink.
var (
	colorPaper     = lipgloss.Color("#F5F1EA")
	colorInk       = lipgloss.Color("#1F2430")
	colorSand      = lipgloss.Color("#C8B79E")
	colorStone     = lipgloss.Color("#8A8175")
	colorClay      = lipgloss.Color("#B5654A")
	colorHighlight = lipgloss.Color("#E2A04F")
	colorSuccess   = lipgloss.Color("#5E9C6B")
	colorWarning   = lipgloss.Color("#D9B44A")
	colorError     = lipgloss.Color("#D0533F")
	colorMuted     = lipgloss.Color("#9E9E9E")
	colorAdmin     = lipgloss.Color("#6C7FD8")
)

// Styles holds all the lipgloss styles for the TUI.
type Styles struct {
	App lipgloss.Style

	Header      lipgloss.Style
	HeaderTitle lipgloss.Style
	HeaderUser  lipgloss.Style
	Tabs        lipgloss.Style
	ActiveTab   lipgloss.Style

	ListTitle lipgloss.Style
	Row       lipgloss.Style
	RowActive lipgloss.Style

	ProductName        lipgloss.Style
	ProductPrice       lipgloss.Style
	ProductSalePrice   lipgloss.Style
	ProductWasPrice    lipgloss.Style
	ProductDescription lipgloss.Style
	ProductAttribute   lipgloss.Style
	ProductInStock     lipgloss.Style
	ProductOutOfStock  lipgloss.Style
	Liked              lipgloss.Style

	Chip       lipgloss.Style
	ChipActive lipgloss.Style

	Status  lipgloss.Style
	Stat    lipgloss.Style
	StatKey lipgloss.Style

	Subtle    lipgloss.Style
	Highlight lipgloss.Style
	Error     lipgloss.Style
	Success   lipgloss.Style
	Box       lipgloss.Style
	HelpBar   lipgloss.Style
}

// DefaultStyles returns the storefront styles.
func DefaultStyles() Styles {
	return Styles{
		App: lipgloss.NewStyle().
			Padding(1, 2),

		Header: lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(colorStone).
			MarginBottom(1).
			Padding(0, 1),

		HeaderTitle: lipgloss.NewStyle().
			Foreground(colorSand).
			Bold(true),

		HeaderUser: lipgloss.NewStyle().
			Foreground(colorMuted).
			Italic(true),

		Tabs: lipgloss.NewStyle().
			Foreground(colorMuted).
			Padding(0, 1),

		ActiveTab: lipgloss.NewStyle().
			Foreground(colorInk).
			Background(colorSand).
			Bold(true).
			Padding(0, 1),

		ListTitle: lipgloss.NewStyle().
			Foreground(colorSand).
			Bold(true).
			MarginBottom(1),

		Row: lipgloss.NewStyle().
			Foreground(colorPaper).
			PaddingLeft(2),

		RowActive: lipgloss.NewStyle().
			Foreground(colorHighlight).
			Bold(true).
			PaddingLeft(1).
			SetString("▸"),

		ProductName: lipgloss.NewStyle().
			Foreground(colorSand).
			Bold(true).
			MarginBottom(1),

		ProductPrice: lipgloss.NewStyle().
			Foreground(colorSuccess).
			Bold(true),

		ProductSalePrice: lipgloss.NewStyle().
			Foreground(colorClay).
			Bold(true),

		ProductWasPrice: lipgloss.NewStyle().
			Foreground(colorMuted).
			Strikethrough(true),

		ProductDescription: lipgloss.NewStyle().
			Foreground(colorPaper).
			MarginTop(1).
			MarginBottom(1),

		ProductAttribute: lipgloss.NewStyle().
			Foreground(colorStone),

		ProductInStock: lipgloss.NewStyle().
			Foreground(colorSuccess),

		ProductOutOfStock: lipgloss.NewStyle().
			Foreground(colorError),

		Liked: lipgloss.NewStyle().
			Foreground(colorClay).
			Bold(true),

		Chip: lipgloss.NewStyle().
			Foreground(colorStone).
			Padding(0, 1),

		ChipActive: lipgloss.NewStyle().
			Foreground(colorInk).
			Background(colorHighlight).
			Padding(0, 1),

		Status: lipgloss.NewStyle().
			Foreground(colorSuccess).
			Italic(true),

		Stat: lipgloss.NewStyle().
			Foreground(colorPaper).
			Bold(true),

		StatKey: lipgloss.NewStyle().
			Foreground(colorMuted).
			Width(18),

		Subtle: lipgloss.NewStyle().
			Foreground(colorMuted),

		Highlight: lipgloss.NewStyle().
			Foreground(colorHighlight).
			Bold(true),

		Error: lipgloss.NewStyle().
			Foreground(colorError).
			Bold(true),

		Success: lipgloss.NewStyle().
			Foreground(colorSuccess),

		Box: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(colorStone).
			Padding(1, 2),

		HelpBar: lipgloss.NewStyle().
			Foreground(colorMuted).
			MarginTop(1),
	}
}

// AdminStyles returns the storefront styles recolored for the admin console.
func AdminStyles() Styles {
	s := DefaultStyles()
	s.HeaderTitle = s.HeaderTitle.Foreground(colorAdmin)
	s.ListTitle = s.ListTitle.Foreground(colorAdmin)
	s.ActiveTab = s.ActiveTab.Background(colorAdmin).Foreground(colorPaper)
	s.Header = s.Header.BorderForeground(colorAdmin)
	return s
}
