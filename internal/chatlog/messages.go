// Package chatlog is the chat log panel: a scrolling list of messages that
// forces itself to the bottom after every append, through a scroll.Slot that
// extensions may wrap.
package chatlog

import "github.com/abelbrown/chatfollow/internal/store"

// MessageReceived appends a message to the log.
type MessageReceived struct {
	Message store.Message
}

// HistoryLoaded replaces the log with stored history.
type HistoryLoaded struct {
	Messages []store.Message
	Err      error
}

// hostReady is delivered once after the program starts and fires the Ready hook.
type hostReady struct{}
