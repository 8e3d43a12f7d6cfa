package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the keyboard bindings of the console.
type keyMap struct {
	// Global
	Quit       key.Binding
	Help       key.Binding
	CycleTheme key.Binding
	NextScreen key.Binding
	PrevScreen key.Binding
	GoldMine   key.Binding
	Cluster    key.Binding
	System     key.Binding
	Diagnostic key.Binding
	Escape     key.Binding
	Confirm    key.Binding

	// Navigation
	Up       key.Binding
	Down     key.Binding
	Top      key.Binding
	Bottom   key.Binding
	PageUp   key.Binding
	PageDown key.Binding

	// Gold Mine
	Search      key.Binding
	Category    key.Binding
	Competitors key.Binding
	MinPrice    key.Binding
	MaxPrice    key.Binding
	Visual      key.Binding
	ClearVisual key.Binding
	NextPage    key.Binding
	PrevPage    key.Binding
	CopyURL     key.Binding
	Reload      key.Binding

	// Cluster Lab
	ToggleTab   key.Binding
	CycleFilter key.Binding
	Toggle      key.Binding
	Trash       key.Binding
	Singleton   key.Binding
	Merge       key.Binding
	Correct     key.Binding
	Incorrect   key.Binding

	// System and diagnostics
	Restart   key.Binding
	WarnsOnly key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "q"),
			key.WithHelp("q", "Quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "Toggle help"),
		),
		CycleTheme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "Cycle theme"),
		),
		NextScreen: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "Next screen"),
		),
		PrevScreen: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "Previous screen"),
		),
		GoldMine: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "Gold Mine"),
		),
		Cluster: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "Cluster Lab"),
		),
		System: key.NewBinding(
			key.WithKeys("3"),
			key.WithHelp("3", "System"),
		),
		Diagnostic: key.NewBinding(
			key.WithKeys("4"),
			key.WithHelp("4", "Diagnostics"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "Close / cancel"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "Open / confirm"),
		),

		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/up", "Move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/down", "Move down"),
		),
		Top: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "Go to top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "Go to bottom"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup", "ctrl+u"),
			key.WithHelp("ctrl+u", "Scroll up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown", "ctrl+d"),
			key.WithHelp("ctrl+d", "Scroll down"),
		),

		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "Search titles"),
		),
		Category: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "Cycle category"),
		),
		Competitors: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "Cycle competitor range"),
		),
		MinPrice: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "Minimum price"),
		),
		MaxPrice: key.NewBinding(
			key.WithKeys("M"),
			key.WithHelp("M", "Maximum price"),
		),
		Visual: key.NewBinding(
			key.WithKeys("v"),
			key.WithHelp("v", "Search by image"),
		),
		ClearVisual: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "Clear image search"),
		),
		NextPage: key.NewBinding(
			key.WithKeys("n", "]"),
			key.WithHelp("n/]", "Next page"),
		),
		PrevPage: key.NewBinding(
			key.WithKeys("p", "["),
			key.WithHelp("p/[", "Previous page"),
		),
		CopyURL: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "Copy product URL"),
		),
		Reload: key.NewBinding(
			key.WithKeys("R"),
			key.WithHelp("R", "Reload page"),
		),

		ToggleTab: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "Console / orphans"),
		),
		CycleFilter: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "Cycle ALL/MATCH/REJECT"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "Select candidate"),
		),
		Trash: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "Trash"),
		),
		Singleton: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "Confirm singleton"),
		),
		Merge: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "Merge selected"),
		),
		Correct: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "Verdict correct"),
		),
		Incorrect: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "Verdict incorrect"),
		),

		Restart: key.NewBinding(
			key.WithKeys("R"),
			key.WithHelp("R", "Restart service"),
		),
		WarnsOnly: key.NewBinding(
			key.WithKeys("w"),
			key.WithHelp("w", "Warnings only"),
		),
	}
}

// ShortHelp returns key bindings for the short help view.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Quit}
}

// FullHelp returns key bindings grouped the way the help overlay shows them.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.NextScreen, k.GoldMine, k.Cluster, k.System, k.Diagnostic, k.Up, k.Down, k.Top, k.Bottom},
		{k.Search, k.Category, k.Competitors, k.MinPrice, k.MaxPrice, k.Visual, k.ClearVisual, k.NextPage, k.PrevPage, k.CopyURL, k.Reload},
		{k.ToggleTab, k.CycleFilter, k.Confirm, k.Correct, k.Incorrect, k.Toggle, k.Trash, k.Singleton, k.Merge},
		{k.Restart, k.WarnsOnly},
		{k.CycleTheme, k.Help, k.Quit},
	}
}
