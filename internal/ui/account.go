package ui

import (
	"context"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/storefront/internal/model"
	"github.com/five82/storefront/internal/prefs"
)

const (
	fieldName = iota
	fieldEmail
	fieldPassword
)

// accountState holds the sign-in/sign-up form and the profile name editor.
type accountState struct {
	inputs    []textinput.Model
	focus     int
	signUp    bool
	lastEmail string

	// editingName is set while the profile name editor is open.
	editingName bool
	nameEdit    textinput.Model
}

func newAccountState(lastEmail string) accountState {
	name := textinput.New()
	name.Placeholder = "Name"
	name.CharLimit = 64

	email := textinput.New()
	email.Placeholder = "you@example.com"
	email.CharLimit = 128
	email.SetValue(lastEmail)

	password := textinput.New()
	password.Placeholder = "Password"
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'

	edit := textinput.New()
	edit.Placeholder = "New name"
	edit.CharLimit = 64

	a := accountState{
		inputs:    []textinput.Model{name, email, password},
		lastEmail: lastEmail,
		nameEdit:  edit,
	}
	a.focus = fieldEmail
	if lastEmail != "" {
		a.focus = fieldPassword
	}
	return a
}

// editing reports whether a text input currently has focus.
func (a accountState) editing() bool {
	if a.editingName {
		return true
	}
	for _, in := range a.inputs {
		if in.Focused() {
			return true
		}
	}
	return false
}

func (a accountState) fields() []int {
	if a.signUp {
		return []int{fieldName, fieldEmail, fieldPassword}
	}
	return []int{fieldEmail, fieldPassword}
}

func (a *accountState) focusCurrent() tea.Cmd {
	a.blurAll()
	if !a.signUp && a.focus == fieldName {
		a.focus = fieldEmail
	}
	return a.inputs[a.focus].Focus()
}

func (a *accountState) blurForm() {
	for i := range a.inputs {
		a.inputs[i].Blur()
	}
}

func (a *accountState) blurAll() {
	a.blurForm()
	a.nameEdit.Blur()
	a.editingName = false
}

func (a *accountState) moveFocus(step int) tea.Cmd {
	fields := a.fields()
	pos := 0
	for i, f := range fields {
		if f == a.focus {
			pos = i
		}
	}
	a.focus = fields[(pos+step+len(fields))%len(fields)]
	return a.focusCurrent()
}

func (a *accountState) clearPassword() {
	a.inputs[fieldPassword].SetValue("")
}

func (m Model) updateInputs(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	if m.account.editingName {
		m.account.nameEdit, cmd = m.account.nameEdit.Update(msg)
		return m, cmd
	}
	cmds := make([]tea.Cmd, len(m.account.inputs))
	for i := range m.account.inputs {
		m.account.inputs[i], cmds[i] = m.account.inputs[i].Update(msg)
	}
	return m, tea.Batch(cmds...)
}

func (m Model) handleAccountInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	a := &m.account
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		a.blurAll()
		return m, nil
	}

	if a.editingName {
		if msg.String() == "enter" {
			return m.submitName()
		}
		return m.updateInputs(msg)
	}

	switch msg.String() {
	case "tab", "down":
		return m, a.moveFocus(1)
	case "shift+tab", "up":
		return m, a.moveFocus(-1)
	case "ctrl+t":
		a.signUp = !a.signUp
		if a.signUp {
			a.focus = fieldName
		}
		return m, a.focusCurrent()
	case "enter":
		if a.focus != fieldPassword {
			return m, a.moveFocus(1)
		}
		return m.submitCredentials()
	}
	return m.updateInputs(msg)
}

func (m Model) submitCredentials() (tea.Model, tea.Cmd) {
	a := &m.account
	name := strings.TrimSpace(a.inputs[fieldName].Value())
	email := strings.TrimSpace(a.inputs[fieldEmail].Value())
	password := a.inputs[fieldPassword].Value()
	a.clearPassword()

	remember := func(m *Model) {
		if m.actions.Snapshot().SignedIn() {
			m.account.lastEmail = email
			if m.prefsPath != "" {
				_ = prefs.RememberEmail(m.prefsPath, email)
			}
		}
	}
	if a.signUp {
		return m, m.dispatch("sign up", "Welcome, "+name, func(ctx context.Context) error {
			_, err := m.actions.SignUp(ctx, name, email, password)
			return err
		}, remember)
	}
	return m, m.dispatch("sign in", "Signed in as "+email, func(ctx context.Context) error {
		_, err := m.actions.SignIn(ctx, email, password)
		return err
	}, remember)
}

func (m Model) submitName() (tea.Model, tea.Cmd) {
	name := strings.TrimSpace(m.account.nameEdit.Value())
	m.account.blurAll()
	if name == "" {
		return m, nil
	}
	return m, m.dispatch("update profile", "Profile updated", func(ctx context.Context) error {
		_, err := m.actions.UpdateProfile(ctx, model.ProfileUpdate{Name: &name})
		return err
	}, nil)
}

func (m Model) handleAccountKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if !m.snapshot.SignedIn() {
		switch {
		case key.Matches(msg, m.keys.Confirm):
			return m, m.account.focusCurrent()
		case key.Matches(msg, m.keys.ToggleMode):
			m.account.signUp = !m.account.signUp
			if m.account.signUp {
				m.account.focus = fieldName
			}
			return m, m.account.focusCurrent()
		}
		return m, nil
	}
	switch {
	case key.Matches(msg, m.keys.EditName):
		m.account.editingName = true
		if m.snapshot.Identity != nil {
			m.account.nameEdit.SetValue(m.snapshot.Identity.Name)
		}
		return m, m.account.nameEdit.Focus()
	case key.Matches(msg, m.keys.SignOut):
		return m, m.dispatch("sign out", "Signed out", m.actions.SignOut, resetRows)
	case key.Matches(msg, m.keys.SignOutAll):
		return m, m.dispatch("sign out", "Signed out, email forgotten", m.actions.SignOut, func(m *Model) {
			resetRows(m)
			m.account.forgetEmail()
			if m.prefsPath != "" {
				_ = prefs.ForgetEmail(m.prefsPath)
			}
		})
	}
	return m, nil
}

func resetRows(m *Model) {
	m.orders.row = 0
	m.cartRow = 0
}

func (a *accountState) forgetEmail() {
	a.lastEmail = ""
	a.inputs[fieldEmail].SetValue("")
	a.focus = fieldEmail
}

func (m Model) renderAccount(width, height int) string {
	styles := m.theme.Styles()
	a := m.account
	var b strings.Builder

	if id := m.snapshot.Identity; id != nil {
		b.WriteString(styles.AccentText.Render("Account") + "\n\n")
		b.WriteString(styles.MutedText.Render("Name   ") + styles.Text.Render(id.Name) + "\n")
		b.WriteString(styles.MutedText.Render("Email  ") + styles.Text.Render(id.Email) + "\n")
		b.WriteString(styles.MutedText.Render("Orders ") + styles.Text.Render(
			strings.Join([]string{
				strconv.Itoa(len(m.snapshot.Orders)) + " total",
				strconv.Itoa(m.snapshot.UnpaidCount()) + " unpaid",
				strconv.Itoa(m.snapshot.CountOrders(model.OrderDelivered)) + " delivered",
			}, ", ")) + "\n\n")
		if a.editingName {
			b.WriteString(a.nameEdit.View() + "\n")
			b.WriteString(styles.FaintText.Render("enter save · esc cancel"))
		} else {
			b.WriteString(styles.FaintText.Render("n edit name · o sign out · O sign out and forget email"))
		}
		return styles.FocusPanel.Width(width).Height(height).Render(b.String())
	}

	title := "Sign in"
	toggle := "ctrl+t create an account"
	if a.signUp {
		title = "Create account"
		toggle = "ctrl+t sign in instead"
	}
	b.WriteString(styles.AccentText.Render(title) + "\n\n")
	labels := map[int]string{fieldName: "Name", fieldEmail: "Email", fieldPassword: "Password"}
	for _, f := range a.fields() {
		label := styles.MutedText.Width(10).Render(labels[f])
		b.WriteString(label + a.inputs[f].View() + "\n")
	}
	b.WriteString("\n")
	if m.snapshot.Session.Loading() {
		b.WriteString(styles.WarningText.Render("working…") + "\n")
	}
	if !a.editing() {
		b.WriteString(styles.FaintText.Render("enter start typing · " + toggle))
	} else {
		b.WriteString(styles.FaintText.Render("tab next field · enter submit · esc done · " + toggle))
	}
	return styles.FocusPanel.Width(width).Height(height).Render(b.String())
}
