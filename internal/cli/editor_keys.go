package cli

import "github.com/charmbracelet/bubbles/key"

type editorKeys struct {
	Up       key.Binding
	Down     key.Binding
	Top      key.Binding
	Bottom   key.Binding
	Toggle   key.Binding
	Expand   key.Binding
	Collapse key.Binding
	Move     key.Binding
	NudgeUp  key.Binding
	NudgeDn  key.Binding
	Indent   key.Binding
	Outdent  key.Binding
	NewCase  key.Binding
	NewSect  key.Binding
	NewSuite key.Binding
	Rename   key.Binding
	Delete   key.Binding
	Filter   key.Binding
	Refresh  key.Binding
	Help     key.Binding
	Quit     key.Binding

	// move mode
	DropAfter key.Binding
	DropInto  key.Binding
	DropRoot  key.Binding
	Confirm   key.Binding
	Cancel    key.Binding
}

func defaultEditorKeys() editorKeys {
	return editorKeys{
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Top:      key.NewBinding(key.WithKeys("home", "g"), key.WithHelp("g", "top")),
		Bottom:   key.NewBinding(key.WithKeys("end", "G"), key.WithHelp("G", "bottom")),
		Toggle:   key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "fold")),
		Expand:   key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "open")),
		Collapse: key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "close")),
		Move:     key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "pick up")),
		NudgeUp:  key.NewBinding(key.WithKeys("K", "shift+up"), key.WithHelp("K", "move up")),
		NudgeDn:  key.NewBinding(key.WithKeys("J", "shift+down"), key.WithHelp("J", "move down")),
		Indent:   key.NewBinding(key.WithKeys(">"), key.WithHelp(">", "indent")),
		Outdent:  key.NewBinding(key.WithKeys("<"), key.WithHelp("<", "outdent")),
		NewCase:  key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "new case")),
		NewSect:  key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "new section")),
		NewSuite: key.NewBinding(key.WithKeys("S"), key.WithHelp("S", "new suite")),
		Rename:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "rename")),
		Delete:   key.NewBinding(key.WithKeys("x", "delete"), key.WithHelp("x", "delete")),
		Filter:   key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "filter")),
		Refresh:  key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "reload")),
		Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),

		DropAfter: key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "drop after")),
		DropInto:  key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "drop into")),
		DropRoot:  key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "drop at root")),
		Confirm:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "drop here")),
		Cancel:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
	}
}

// browseHelp and moveHelp implement help.KeyMap for the two main modes.
type browseHelp struct{ k editorKeys }

func (h browseHelp) ShortHelp() []key.Binding {
	return []key.Binding{h.k.Up, h.k.Down, h.k.Toggle, h.k.Move, h.k.NewCase, h.k.Rename, h.k.Delete, h.k.Help, h.k.Quit}
}

func (h browseHelp) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{h.k.Up, h.k.Down, h.k.Top, h.k.Bottom},
		{h.k.Toggle, h.k.Expand, h.k.Collapse, h.k.Filter},
		{h.k.Move, h.k.NudgeUp, h.k.NudgeDn, h.k.Indent, h.k.Outdent},
		{h.k.NewCase, h.k.NewSect, h.k.NewSuite, h.k.Rename, h.k.Delete},
		{h.k.Refresh, h.k.Help, h.k.Quit},
	}
}

type moveHelp struct{ k editorKeys }

func (h moveHelp) ShortHelp() []key.Binding {
	return []key.Binding{h.k.Up, h.k.Down, h.k.Confirm, h.k.DropAfter, h.k.DropInto, h.k.DropRoot, h.k.Cancel}
}

func (h moveHelp) FullHelp() [][]key.Binding { return [][]key.Binding{h.ShortHelp()} }
