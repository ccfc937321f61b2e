package host

import (
	"time"

	"github.com/abelbrown/chatfollow/internal/scroll"
)

// Names of the chat log's hooks and of the panel parts extensions look up.
const (
	HookReady            = "ready"
	HookPreCreateMessage = "preCreateChatMessage"
	HookRenderChatLog    = "renderChatLog"

	SelectorScroll     = ".chat-scroll"
	SelectorLog        = "#chat-log"
	SelectorJumpBottom = ".jump-to-bottom"
)

// ScrollRegion is a scrollable part of the panel that reports scroll activity.
type ScrollRegion interface {
	scroll.Region

	// OnScroll runs fn after every change of the scroll offset. A listener
	// already registered under key is replaced.
	OnScroll(key string, fn func())
	RemoveScrollListener(key string)
}

// Control is a clickable element of the panel.
type Control interface {
	// Bind attaches fn under key, replacing any earlier binding for key.
	// fn returns true when it handled the activation, which suppresses the
	// host's default action.
	Bind(key string, fn func() (handled bool))
	Bound(key string) bool
}

// Panel is the rendered chat log. It is also the receiver of its own forced scroll.
type Panel interface {
	scroll.Target

	Region(selector string) (ScrollRegion, bool)
	Control(selector string) (Control, bool)
}

// Draft describes a message about to be appended.
type Draft struct {
	ID     string
	Sender string
	At     time.Time
}

// Hooks are the chat log's extension points.
type Hooks struct {
	// Ready fires once after startup.
	Ready *Hook[struct{}]
	// PreCreateMessage fires before each message is appended.
	PreCreateMessage *Hook[Draft]
	// RenderChatLog fires whenever the panel is (re)built.
	RenderChatLog *Hook[Panel]
}

// NewHooks returns the chat log's hook set with no handlers.
func NewHooks() *Hooks {
	return &Hooks{
		Ready:            NewHook[struct{}](HookReady),
		PreCreateMessage: NewHook[Draft](HookPreCreateMessage),
		RenderChatLog:    NewHook[Panel](HookRenderChatLog),
	}
}
