package ui

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/storefront/internal/storeapi"
)

// bodySize returns the inner width and height available to the active view.
func (m Model) bodySize() (int, int) {
	return max(10, m.width-4), max(3, m.height-4)
}

// renderMain composes the header, the active view and the command bar.
func (m Model) renderMain() string {
	w, h := m.bodySize()
	var body string
	switch m.view {
	case ViewCart:
		body = m.renderCart(w, h)
	case ViewOrders:
		body = m.renderOrders(w, h)
	case ViewAccount:
		body = m.renderAccount(w, h)
	case ViewActivity:
		body = m.renderActivity(w, h)
	default:
		body = m.renderCatalog(w, h)
	}
	return lipgloss.JoinVertical(lipgloss.Left, m.renderHeader(), body, m.renderCommandBar())
}

// renderHeader renders the status bar.
func (m Model) renderHeader() string {
	styles := m.theme.Styles()
	s := m.snapshot
	compact := m.width < 100
	sep := "  "

	parts := []string{styles.Logo.Render("storefront")}

	if s.Identity != nil {
		who := s.Identity.Name
		if who == "" || !compact {
			who = strings.TrimSpace(who + " <" + s.Identity.Email + ">")
		}
		parts = append(parts, styles.SuccessText.Render("●")+" "+styles.Text.Render(truncate(who, 40)))
	} else {
		parts = append(parts, styles.MutedText.Render("○ signed out"))
	}

	cartStyle := styles.MutedText
	if s.CartBadge() > 0 {
		cartStyle = styles.AccentText
	}
	parts = append(parts, styles.MutedText.Render("Cart:")+" "+cartStyle.Render(fmt.Sprintf("%d", s.CartBadge())))

	unpaidStyle := styles.MutedText
	if s.UnpaidCount() > 0 {
		unpaidStyle = styles.WarningText
	}
	parts = append(parts, styles.MutedText.Render("Unpaid:")+" "+unpaidStyle.Render(fmt.Sprintf("%d", s.UnpaidCount())))

	switch {
	case s.Session.IsOffline() || s.OrderIO.IsOffline() || s.Catalog.IsOffline():
		parts = append(parts, styles.StatusStyle("offline").Render("OFFLINE"))
	case m.pending > 0 || s.Session.Loading() || s.OrderIO.Loading():
		parts = append(parts, styles.StatusStyle("loading").Render("…"))
	}

	if ts := m.formatTimestamp(); ts != "" && !compact {
		parts = append(parts, styles.FaintText.Render(ts))
	}

	if m.flash != "" {
		limit := 60
		if compact {
			limit = 30
		}
		flashStyle := styles.SuccessText
		if m.flashErr {
			flashStyle = styles.DangerText
		}
		parts = append(parts, flashStyle.Render(truncate(m.flash, limit)))
	}

	return styles.Header.Width(m.width).Render(strings.Join(parts, sep))
}

// formatTimestamp formats the last snapshot time.
func (m Model) formatTimestamp() string {
	if m.lastUpdated.IsZero() {
		return ""
	}
	return m.lastUpdated.Format(time.TimeOnly)
}

// renderCommandBar renders the key hints for the active view.
func (m Model) renderCommandBar() string {
	styles := m.theme.Styles()

	type cmd struct{ key, desc string }
	var commands []cmd
	switch m.view {
	case ViewCart:
		commands = []cmd{{"a", "Add"}, {"x", "Remove"}, {"c", "Checkout"}}
	case ViewOrders:
		commands = []cmd{{"p", "Paid"}, {"d", "Delivered"}, {"f", m.orders.filter.label()}, {"r", "Refresh"}}
	case ViewAccount:
		if m.snapshot.SignedIn() {
			commands = []cmd{{"n", "Name"}, {"o", "Sign out"}, {"O", "Forget"}}
		} else {
			commands = []cmd{{"enter", "Type"}, {"ctrl+t", "Sign in/up"}}
		}
	case ViewActivity:
		commands = []cmd{{"enter", "Follow"}, {"f", "Level"}, {"r", "Reload"}}
	default:
		commands = []cmd{{"←/→", "Focus"}, {"a", "Add"}, {"r", "Reload"}}
	}
	commands = append(commands, cmd{"1-5", "Views"}, cmd{"T", "Theme"}, cmd{"?", "More"})

	segments := make([]string, 0, len(commands))
	for _, c := range commands {
		segments = append(segments, styles.AccentText.Render(c.key)+styles.FaintText.Render(":")+styles.MutedText.Render(c.desc))
	}
	return styles.Header.Width(m.width).Render(strings.Join(segments, "  "))
}

// userMessage returns the text shown for a failed action. Remote failures
// get the wording from storeapi; local errors are shown as-is.
func userMessage(err error) string {
	var apiErr *storeapi.APIError
	var urlErr *url.Error
	if storeapi.IsAuthError(err) || errors.As(err, &apiErr) || errors.As(err, &urlErr) {
		return storeapi.UserMessage(err)
	}
	return err.Error()
}

// truncate shortens a string to the given limit, adding ellipsis if needed.
func truncate(value string, limit int) string {
	value = strings.TrimSpace(value)
	if limit <= 0 {
		return value
	}
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	if limit <= 3 {
		return string(runes[:limit])
	}
	return string(runes[:limit-3]) + "..."
}

func formatPrice(v float64) string {
	return fmt.Sprintf("$%.2f", v)
}
