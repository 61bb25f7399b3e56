package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/storefront/internal/logtail"
)

const activityLimit = 500

var activityFilters = []string{"", "WARN", "ERROR"}

// activityState backs the client log view.
type activityState struct {
	viewport viewport.Model
	follow   bool
	lines    []string
	filter   int
	err      error
}

type activityMsg struct {
	lines []string
	err   error
}

func (m Model) loadActivityCmd() tea.Cmd {
	if m.logPath == "" {
		return nil
	}
	path, filter := m.logPath, activityFilters[m.activity.filter]
	return func() tea.Msg {
		lines, err := logtail.Activity(path, activityLimit, filter)
		return activityMsg{lines: lines, err: err}
	}
}

func (m *Model) applyActivity(msg activityMsg) {
	m.activity.err = msg.err
	if msg.err != nil {
		return
	}
	m.activity.lines = msg.lines
	m.activity.viewport.SetContent(strings.Join(msg.lines, "\n"))
	if m.activity.follow {
		m.activity.viewport.GotoBottom()
	}
}

func (m *Model) resizeActivity() {
	_, h := m.bodySize()
	m.activity.viewport.Width = max(10, m.width-4)
	m.activity.viewport.Height = max(1, h-3)
	if m.activity.follow {
		m.activity.viewport.GotoBottom()
	}
}

func (m Model) handleActivityKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	vp := &m.activity.viewport
	switch {
	case key.Matches(msg, m.keys.Confirm):
		m.activity.follow = !m.activity.follow
		if m.activity.follow {
			vp.GotoBottom()
		}
	case key.Matches(msg, m.keys.CycleFilter):
		m.activity.filter = (m.activity.filter + 1) % len(activityFilters)
		return m, m.loadActivityCmd()
	case key.Matches(msg, m.keys.Refresh):
		return m, m.loadActivityCmd()
	case key.Matches(msg, m.keys.Top):
		vp.GotoTop()
		m.activity.follow = false
	case key.Matches(msg, m.keys.Bottom):
		vp.GotoBottom()
		m.activity.follow = true
	case key.Matches(msg, m.keys.Down):
		vp.LineDown(1)
		m.activity.follow = false
	case key.Matches(msg, m.keys.Up):
		vp.LineUp(1)
		m.activity.follow = false
	}
	return m, nil
}

func (m Model) renderActivity(width, height int) string {
	styles := m.theme.Styles()
	var b strings.Builder

	title := "Activity"
	if f := activityFilters[m.activity.filter]; f != "" {
		title += " · " + f
	}
	mode := "following"
	if !m.activity.follow {
		mode = "paused"
	}
	b.WriteString(styles.AccentText.Render(title) + "  " + styles.FaintText.Render(mode) + "\n")

	switch {
	case m.logPath == "":
		b.WriteString(styles.MutedText.Render("Logging to stderr; no activity file."))
	case m.activity.err != nil:
		b.WriteString(styles.DangerText.Render(m.activity.err.Error()))
	case len(m.activity.lines) == 0:
		b.WriteString(styles.MutedText.Render("No activity yet."))
	default:
		b.WriteString(m.activity.viewport.View())
	}
	return styles.FocusPanel.Width(width).Height(height).Render(b.String())
}
