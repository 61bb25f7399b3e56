package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the keyboard bindings used outside of text inputs.
type keyMap struct {
	// Global
	Quit       key.Binding
	Help       key.Binding
	CycleTheme key.Binding
	Tab        key.Binding
	ShiftTab   key.Binding
	Escape     key.Binding

	// View switching
	ViewCatalog  key.Binding
	ViewCart     key.Binding
	ViewOrders   key.Binding
	ViewAccount  key.Binding
	ViewActivity key.Binding

	// Navigation
	Up     key.Binding
	Down   key.Binding
	Left   key.Binding
	Right  key.Binding
	Top    key.Binding
	Bottom key.Binding

	// Actions
	Confirm     key.Binding
	Add         key.Binding
	Remove      key.Binding
	Checkout    key.Binding
	Pay         key.Binding
	Deliver     key.Binding
	Refresh     key.Binding
	CycleFilter key.Binding
	EditName    key.Binding
	SignOut     key.Binding
	SignOutAll  key.Binding
	ToggleMode  key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "e"),
			key.WithHelp("e", "Quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("h", "?"),
			key.WithHelp("h/?", "Toggle help"),
		),
		CycleTheme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "Cycle theme"),
		),
		Tab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "Next view"),
		),
		ShiftTab: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "Previous view"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "Back"),
		),

		ViewCatalog: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "Catalog"),
		),
		ViewCart: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "Cart"),
		),
		ViewOrders: key.NewBinding(
			key.WithKeys("3"),
			key.WithHelp("3", "Orders"),
		),
		ViewAccount: key.NewBinding(
			key.WithKeys("4"),
			key.WithHelp("4", "Account"),
		),
		ViewActivity: key.NewBinding(
			key.WithKeys("5"),
			key.WithHelp("5", "Activity"),
		),

		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/up", "Move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/down", "Move down"),
		),
		Left: key.NewBinding(
			key.WithKeys("left"),
			key.WithHelp("left", "Categories"),
		),
		Right: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("right", "Products"),
		),
		Top: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "Go to top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "Go to bottom"),
		),

		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "Open / confirm"),
		),
		Add: key.NewBinding(
			key.WithKeys("a", "+"),
			key.WithHelp("a/+", "Add to cart"),
		),
		Remove: key.NewBinding(
			key.WithKeys("x", "-"),
			key.WithHelp("x/-", "Remove one"),
		),
		Checkout: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "Checkout"),
		),
		Pay: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "Mark paid"),
		),
		Deliver: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "Mark delivered"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "Refresh"),
		),
		CycleFilter: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "Cycle order filter"),
		),
		EditName: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "Edit name"),
		),
		SignOut: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "Sign out"),
		),
		SignOutAll: key.NewBinding(
			key.WithKeys("O"),
			key.WithHelp("O", "Sign out and forget email"),
		),
		ToggleMode: key.NewBinding(
			key.WithKeys("ctrl+t"),
			key.WithHelp("ctrl+t", "Sign in / sign up"),
		),
	}
}

// ShortHelp returns key bindings for the short help view.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tab, k.ViewCatalog, k.ViewCart, k.ViewOrders, k.ViewAccount, k.ViewActivity},
		{k.Up, k.Down, k.Left, k.Right, k.Top, k.Bottom},
		{k.Confirm, k.Add, k.Remove, k.Checkout},
		{k.Pay, k.Deliver, k.Refresh, k.CycleFilter},
		{k.EditName, k.SignOut, k.SignOutAll, k.ToggleMode},
		{k.CycleTheme, k.Help, k.Quit},
	}
}
