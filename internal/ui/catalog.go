package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/storefront/internal/model"
)

type catalogState struct {
	categories  []string
	categoryRow int
	products    []model.Product
	productsFor string
	productRow  int
	// focusProducts is true when the product list has focus.
	focusProducts bool
	loading       bool
}

type categoriesMsg struct {
	list []string
	err  error
}

type productsMsg struct {
	category string
	list     []model.Product
	err      error
}

func (c *catalogState) applyCategories(msg categoriesMsg) {
	if msg.err != nil {
		return
	}
	c.categories = msg.list
	c.categoryRow = clampRow(c.categoryRow, len(c.categories))
}

func (c *catalogState) applyProducts(msg productsMsg) {
	c.loading = false
	if msg.err != nil || msg.category != c.selectedCategory() {
		return
	}
	c.products = msg.list
	c.productsFor = msg.category
	c.productRow = clampRow(c.productRow, len(c.products))
}

func (c catalogState) selectedCategory() string {
	if len(c.categories) == 0 {
		return ""
	}
	return c.categories[clampRow(c.categoryRow, len(c.categories))]
}

func (c catalogState) selectedProduct() (model.Product, bool) {
	if len(c.products) == 0 || c.productsFor != c.selectedCategory() {
		return model.Product{}, false
	}
	return c.products[clampRow(c.productRow, len(c.products))], true
}

func (m Model) loadCategoriesCmd() tea.Cmd {
	if m.actions == nil {
		return nil
	}
	actions, ctx := m.actions, m.ctx
	return func() tea.Msg {
		list, err := actions.BrowseCategories(ctx)
		return categoriesMsg{list: list, err: err}
	}
}

func (m *Model) loadProductsCmd() tea.Cmd {
	category := m.catalog.selectedCategory()
	if m.actions == nil || category == "" || category == m.catalog.productsFor {
		return nil
	}
	m.catalog.loading = true
	actions, ctx := m.actions, m.ctx
	return func() tea.Msg {
		list, err := actions.BrowseCategory(ctx, category)
		return productsMsg{category: category, list: list, err: err}
	}
}

func (m Model) handleCatalogKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	c := &m.catalog
	switch {
	case key.Matches(msg, m.keys.Right), key.Matches(msg, m.keys.Confirm) && !c.focusProducts:
		if len(c.products) > 0 {
			c.focusProducts = true
		}
		return m, m.loadProductsCmd()
	case key.Matches(msg, m.keys.Left):
		c.focusProducts = false
		return m, nil
	case key.Matches(msg, m.keys.Refresh):
		return m, m.loadCategoriesCmd()
	case key.Matches(msg, m.keys.Add), key.Matches(msg, m.keys.Confirm):
		p, ok := c.selectedProduct()
		if !ok || !c.focusProducts {
			return m, nil
		}
		if !m.snapshot.SignedIn() {
			m.setFlash("Sign in to add items to your cart", true)
			return m, nil
		}
		return m, m.dispatch("add to cart", "Added "+p.Title, func(ctx context.Context) error {
			return m.actions.AddToCart(ctx, p)
		}, nil)
	}

	if c.focusProducts {
		c.productRow = moveRow(c.productRow, len(c.products), m.keys, msg)
		return m, nil
	}
	prev := c.categoryRow
	c.categoryRow = moveRow(c.categoryRow, len(c.categories), m.keys, msg)
	if c.categoryRow != prev {
		c.productRow = 0
		return m, m.loadProductsCmd()
	}
	return m, nil
}

func (m Model) renderCatalog(width, height int) string {
	styles := m.theme.Styles()
	c := m.catalog

	leftWidth := max(18, width/4)
	var cats strings.Builder
	cats.WriteString(styles.AccentText.Render("Categories") + "\n")
	if len(c.categories) == 0 {
		cats.WriteString(styles.MutedText.Render("loading…"))
	}
	for i, name := range c.categories {
		line := truncate(name, leftWidth-4)
		if i == c.categoryRow {
			line = styles.Selected.Render(line)
		}
		cats.WriteString(line + "\n")
	}

	var prods strings.Builder
	title := "Products"
	if cat := c.selectedCategory(); cat != "" {
		title = "Products · " + cat
	}
	prods.WriteString(styles.AccentText.Render(title) + "\n")
	switch {
	case c.loading && c.productsFor != c.selectedCategory():
		prods.WriteString(styles.MutedText.Render("loading…"))
	case c.productsFor != c.selectedCategory():
		prods.WriteString(styles.MutedText.Render("press enter to load"))
	}
	rightWidth := width - leftWidth - 6
	if c.productsFor == c.selectedCategory() {
		for i, p := range c.products {
			inCart := ""
			if line, ok := m.snapshot.Cart.Lines[p.ID]; ok {
				inCart = fmt.Sprintf(" ×%d", line.Quantity)
			}
			row := fmt.Sprintf("%-*s %8s%s", max(10, rightWidth-16), truncate(p.Title, max(10, rightWidth-16)), formatPrice(p.Price), inCart)
			if i == c.productRow && c.focusProducts {
				row = styles.Selected.Render(row)
			}
			prods.WriteString(row + "\n")
		}
	}

	leftPanel, rightPanel := styles.FocusPanel, styles.Panel
	if c.focusProducts {
		leftPanel, rightPanel = styles.Panel, styles.FocusPanel
	}
	return lipgloss.JoinHorizontal(lipgloss.Top,
		leftPanel.Width(leftWidth).Height(height).Render(cats.String()),
		rightPanel.Width(max(10, rightWidth)).Height(height).Render(prods.String()),
	)
}
