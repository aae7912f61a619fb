package audit

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	Select  key.Binding
	Switch  key.Binding
	Back    key.Binding
	Quit    key.Binding
	Browser key.Binding
	Desc    key.Binding
	Preview key.Binding
}

var keys = keyMap{
	Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Select:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
	Switch:  key.NewBinding(key.WithKeys("tab", "left", "right"), key.WithHelp("tab", "switch pane")),
	Back:    key.NewBinding(key.WithKeys("esc", "backspace", "b"), key.WithHelp("esc", "back")),
	Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Browser: key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open URL")),
	Desc:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "description")),
	Preview: key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "response")),
}

func (k keyMap) pickerHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Select, k.Quit}
}

func (k keyMap) listHelp() []key.Binding {
	return []key.Binding{k.Switch, k.Up, k.Down, k.Select, k.Back, k.Quit}
}

func (k keyMap) detailHelp(hasDesc, hasPreview bool) []key.Binding {
	out := []key.Binding{k.Browser}
	if hasDesc {
		out = append(out, k.Desc)
	}
	if hasPreview {
		out = append(out, k.Preview)
	}
	return append(out, k.Back, k.Quit)
}
