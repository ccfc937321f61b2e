package chatlog

import "github.com/charmbracelet/lipgloss"

var (
	colorPrimary   = lipgloss.Color("62")  // purple
	colorSecondary = lipgloss.Color("241") // gray
	colorHighlight = lipgloss.Color("212") // pink
	colorSuccess   = lipgloss.Color("78")  // green
	colorWarn      = lipgloss.Color("214") // amber
)

var HeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("255")).
	Background(colorPrimary).
	Padding(0, 1)

var FollowingStyle = lipgloss.NewStyle().
	Foreground(colorSuccess)

var PausedStyle = lipgloss.NewStyle().
	Foreground(colorWarn).
	Bold(true)

var TimeStyle = lipgloss.NewStyle().
	Foreground(colorSecondary)

var SenderStyle = lipgloss.NewStyle().
	Foreground(colorHighlight).
	Bold(true)

// JumpStyle renders the clickable jump-to-bottom line.
var JumpStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("255")).
	Background(colorWarn).
	Bold(true).
	Padding(0, 1)

var StatusBar = lipgloss.NewStyle().
	Foreground(lipgloss.Color("255")).
	Background(lipgloss.Color("236")).
	Padding(0, 1)

var StatusBarKey = lipgloss.NewStyle().
	Foreground(colorHighlight).
	Bold(true)

var StatusBarText = lipgloss.NewStyle().
	Foreground(colorSecondary)

var ErrorStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("255")).
	Background(lipgloss.Color("160")).
	Padding(0, 1)

var DebugPanel = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(colorPrimary).
	Padding(1, 2)

var DebugHeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(colorHighlight)
