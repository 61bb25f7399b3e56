package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/storefront/internal/model"
)

// orderFilter selects which orders the list shows.
type orderFilter int

const (
	filterAllOrders orderFilter = iota
	filterUnpaid
	filterAwaitingDelivery
	filterDelivered
)

type ordersState struct {
	row    int
	filter orderFilter
}

func (f orderFilter) next() orderFilter {
	if f == filterDelivered {
		return filterAllOrders
	}
	return f + 1
}

func (f orderFilter) label() string {
	switch f {
	case filterUnpaid:
		return "Unpaid"
	case filterAwaitingDelivery:
		return "Awaiting delivery"
	case filterDelivered:
		return "Delivered"
	default:
		return "All"
	}
}

func (f orderFilter) matches(o model.Order) bool {
	switch f {
	case filterUnpaid:
		return o.Status() == model.OrderUnpaid
	case filterAwaitingDelivery:
		return o.Status() == model.OrderPaid
	case filterDelivered:
		return o.Status() == model.OrderDelivered
	default:
		return true
	}
}

// visibleOrders returns the filtered orders, newest first.
func (m Model) visibleOrders() []model.Order {
	out := make([]model.Order, 0, len(m.snapshot.Orders))
	for i := len(m.snapshot.Orders) - 1; i >= 0; i-- {
		if o := m.snapshot.Orders[i]; m.orders.filter.matches(o) {
			out = append(out, o)
		}
	}
	return out
}

func (m Model) handleOrdersKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	visible := m.visibleOrders()
	switch {
	case key.Matches(msg, m.keys.CycleFilter):
		m.orders.filter = m.orders.filter.next()
		m.orders.row = 0
		return m, nil
	case key.Matches(msg, m.keys.Refresh):
		if !m.snapshot.SignedIn() {
			return m, nil
		}
		return m, m.dispatch("refresh orders", "", m.actions.RefreshOrders, nil)
	case key.Matches(msg, m.keys.Pay), key.Matches(msg, m.keys.Deliver):
		if len(visible) == 0 {
			return m, nil
		}
		id := visible[clampRow(m.orders.row, len(visible))].ID
		if key.Matches(msg, m.keys.Pay) {
			return m, m.dispatch("pay order", fmt.Sprintf("Order #%d paid", id), func(ctx context.Context) error {
				return m.actions.PayOrder(ctx, id)
			}, nil)
		}
		return m, m.dispatch("deliver order", fmt.Sprintf("Order #%d delivered", id), func(ctx context.Context) error {
			return m.actions.DeliverOrder(ctx, id)
		}, nil)
	}
	m.orders.row = moveRow(m.orders.row, len(visible), m.keys, msg)
	return m, nil
}

func (m Model) renderOrders(width, height int) string {
	styles := m.theme.Styles()
	var b strings.Builder
	b.WriteString(styles.AccentText.Render("Orders · "+m.orders.filter.label()) + "\n")

	if !m.snapshot.SignedIn() {
		b.WriteString(styles.MutedText.Render("Sign in (4) to see your orders."))
		return styles.FocusPanel.Width(width).Height(height).Render(b.String())
	}
	if m.snapshot.OrderIO.Loading() && len(m.snapshot.Orders) == 0 {
		b.WriteString(styles.MutedText.Render("loading…"))
		return styles.FocusPanel.Width(width).Height(height).Render(b.String())
	}

	visible := m.visibleOrders()
	if len(visible) == 0 {
		b.WriteString(styles.MutedText.Render("No orders."))
	}
	for i, o := range visible {
		created := "-"
		if !o.CreatedAt.IsZero() {
			created = o.CreatedAt.Local().Format("2006-01-02 15:04")
		}
		status := string(o.Status())
		row := fmt.Sprintf("#%-6d %-16s %2d lines %10s ", o.ID, created, o.ItemCount, formatPrice(o.TotalPrice))
		if i == m.orders.row {
			row = styles.Selected.Render(row)
		}
		b.WriteString(row + styles.StatusStyle(status).Render(status) + "\n")
	}
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render("p paid · d delivered · f filter · r refresh"))
	return styles.FocusPanel.Width(width).Height(height).Render(b.String())
}
