package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type helpItem struct {
	key  string
	desc string
}

type helpSection struct {
	title string
	items []helpItem
}

// renderHelp renders the help overlay.
func (m Model) renderHelp() string {
	styles := m.theme.Styles()

	sections := []helpSection{
		{
			title: "Navigation",
			items: []helpItem{
				{"1-5", "Catalog/Cart/Orders/Account/Activity"},
				{"tab", "Cycle views"},
				{"esc", "Return to catalog"},
				{"j/k", "Move up/down"},
				{"g/G", "Go to top/bottom"},
			},
		},
		{
			title: "Shopping",
			items: []helpItem{
				{"←/→", "Categories/products"},
				{"a/+", "Add to cart"},
				{"x/-", "Remove one from cart"},
				{"c", "Check out"},
			},
		},
		{
			title: "Orders",
			items: []helpItem{
				{"p", "Mark paid"},
				{"d", "Mark delivered"},
				{"f", "Cycle filter"},
				{"r", "Refresh"},
			},
		},
		{
			title: "Account",
			items: []helpItem{
				{"enter", "Edit sign-in form"},
				{"ctrl+t", "Sign in/sign up"},
				{"n", "Edit name"},
				{"o", "Sign out"},
				{"O", "Sign out, forget email"},
			},
		},
		{
			title: "General",
			items: []helpItem{
				{"T", "Cycle theme"},
				{"h/?", "Toggle help"},
				{"e/ctrl+c", "Quit"},
			},
		},
	}

	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render("Keyboard Shortcuts"))
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render(strings.Repeat("─", 30)))
	b.WriteString("\n\n")

	keyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(m.theme.Warning)).
		Width(12)
	for i, section := range sections {
		b.WriteString(styles.AccentText.Bold(true).Render(section.title))
		b.WriteString("\n")
		for _, item := range section.items {
			b.WriteString(keyStyle.Render(item.key))
			b.WriteString(styles.Text.Render(item.desc))
			b.WriteString("\n")
		}
		if i < len(sections)-1 {
			b.WriteString("\n")
		}
	}
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render("Press any key to close"))

	box := styles.FocusPanel.Padding(1, 3).Render(b.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}
