package ui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Quit, Help, CycleTheme, Escape key.Binding

	NextTab, PrevTab              key.Binding
	Audiobooks, Series, Podcasts  key.Binding
	Refresh, CycleSort            key.Binding
	ToggleOrder, Open             key.Binding
	Up, Down, Top, Bottom         key.Binding
	PageUp, PageDown              key.Binding
	HalfPageUp, HalfPageDown      key.Binding
}

func bind(help, desc string, keys ...string) key.Binding {
	return key.NewBinding(key.WithKeys(keys...), key.WithHelp(help, desc))
}

func newKeyMap() keyMap {
	return keyMap{
		Quit:       bind("e", "Quit", "ctrl+c", "e"),
		Help:       bind("h/?", "Toggle help", "h", "?"),
		CycleTheme: bind("T", "Cycle theme", "T"),
		Escape:     bind("esc", "Leave series", "esc"),

		NextTab:    bind("tab", "Next collection", "tab"),
		PrevTab:    bind("shift+tab", "Previous collection", "shift+tab"),
		Audiobooks: bind("1", "Audiobooks", "1"),
		Series:     bind("2", "Series", "2"),
		Podcasts:   bind("3", "Podcasts", "3"),

		Refresh:     bind("r", "Reload from first page", "r"),
		CycleSort:   bind("s", "Next sort order", "s"),
		ToggleOrder: bind("o", "Ascending/descending", "o"),
		Open:        bind("enter", "Open series", "enter"),

		Up:           bind("k", "Up", "k", "up"),
		Down:         bind("j", "Down", "j", "down"),
		Top:          bind("g", "First row", "g", "home"),
		Bottom:       bind("G", "Last loaded row", "G", "end"),
		PageUp:       bind("pgup", "Page up", "pgup"),
		PageDown:     bind("pgdown", "Page down", "pgdown"),
		HalfPageUp:   bind("ctrl+u", "Half page up", "ctrl+u"),
		HalfPageDown: bind("ctrl+d", "Half page down", "ctrl+d"),
	}
}

// helpGroups lists the bindings shown in the help overlay, by section.
func (k keyMap) helpGroups() []helpGroup {
	return []helpGroup{
		{"Collections", []key.Binding{k.Audiobooks, k.Series, k.Podcasts, k.NextTab, k.Open, k.Escape}},
		{"Moving", []key.Binding{k.Down, k.Up, k.Top, k.Bottom, k.HalfPageDown, k.HalfPageUp}},
		{"Loading", []key.Binding{k.Refresh, k.CycleSort, k.ToggleOrder}},
		{"Other", []key.Binding{k.CycleTheme, k.Help, k.Quit}},
	}
}

type helpGroup struct {
	title    string
	bindings []key.Binding
}
