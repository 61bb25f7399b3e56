package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/storefront/internal/model"
)

func (m Model) handleCartKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	lines := m.snapshot.Cart.Items()
	if !m.snapshot.SignedIn() {
		return m, nil
	}
	switch {
	case key.Matches(msg, m.keys.Add):
		if len(lines) == 0 {
			return m, nil
		}
		p := lines[clampRow(m.cartRow, len(lines))].Product
		return m, m.dispatch("add to cart", "", func(ctx context.Context) error {
			return m.actions.AddToCart(ctx, p)
		}, nil)
	case key.Matches(msg, m.keys.Remove):
		if len(lines) == 0 {
			return m, nil
		}
		id := lines[clampRow(m.cartRow, len(lines))].Product.ID
		return m, m.dispatch("remove from cart", "", func(ctx context.Context) error {
			return m.actions.RemoveFromCart(ctx, id)
		}, nil)
	case key.Matches(msg, m.keys.Checkout):
		var placed model.Order
		return m, m.dispatch("checkout", "Order placed", func(ctx context.Context) error {
			order, err := m.actions.Checkout(ctx)
			placed = order
			return err
		}, func(m *Model) {
			if placed.ID != 0 {
				m.setFlash(fmt.Sprintf("Order #%d placed", placed.ID), false)
			}
		})
	}
	m.cartRow = moveRow(m.cartRow, len(lines), m.keys, msg)
	return m, nil
}

func (m Model) renderCart(width, height int) string {
	styles := m.theme.Styles()
	var b strings.Builder
	b.WriteString(styles.AccentText.Render("Cart") + "\n")

	if !m.snapshot.SignedIn() {
		b.WriteString(styles.MutedText.Render("Sign in (4) to use your cart."))
		return styles.FocusPanel.Width(width).Height(height).Render(b.String())
	}

	cart := m.snapshot.Cart
	lines := cart.Items()
	if len(lines) == 0 {
		b.WriteString(styles.MutedText.Render("Your cart is empty. Add products from the catalog (1)."))
		return styles.FocusPanel.Width(width).Height(height).Render(b.String())
	}

	titleWidth := max(10, width-30)
	for i, line := range lines {
		row := fmt.Sprintf("%-*s %3d × %8s = %9s",
			titleWidth, truncate(line.Product.Title, titleWidth),
			line.Quantity, formatPrice(line.Product.Price), formatPrice(line.Subtotal()))
		if i == m.cartRow {
			row = styles.Selected.Render(row)
		}
		b.WriteString(row + "\n")
	}
	b.WriteString("\n")
	b.WriteString(styles.Text.Bold(true).Render(fmt.Sprintf("%d items  total %s", cart.TotalQuantity, formatPrice(cart.TotalPrice))))
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render("a/+ add · x/- remove · c checkout"))
	if cartErr := m.snapshot.CartIO.LastError; cartErr != nil {
		b.WriteString("\n" + styles.DangerText.Render("not saved: "+cartErr.Error()))
	}
	return styles.FocusPanel.Width(width).Height(height).Render(b.String())
}
