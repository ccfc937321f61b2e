package chatlog

import "github.com/charmbracelet/bubbles/key"

// Keys not listed here fall through to the viewport (arrows, j/k, pgup/pgdown,
// u/d, mouse wheel).
var keys = struct {
	Quit   key.Binding
	Jump   key.Binding
	Reload key.Binding
	Debug  key.Binding
}{
	Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Jump:   key.NewBinding(key.WithKeys("G", "end"), key.WithHelp("G", "bottom")),
	Reload: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
	Debug:  key.NewBinding(key.WithKeys("D"), key.WithHelp("D", "debug")),
}
