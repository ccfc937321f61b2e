// Package otel records what the chat log and its scroll policy did.
//
// Events are typed structs written as JSONL by an async Logger. An optional
// RingBuffer keeps the most recent events in memory for the debug overlay.
package otel

import (
	"encoding/json"
	"time"
)

// Level defines event severity for filtering.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// EventKind identifies the category of an event.
// Dot-delimited: "<subsystem>.<action>".
type EventKind string

const (
	// Scroll policy
	KindSnapshot    EventKind = "scroll.snapshot"
	KindForward     EventKind = "scroll.forward"
	KindSuppress    EventKind = "scroll.suppress"
	KindDetached    EventKind = "scroll.detached"
	KindInstall     EventKind = "scroll.install"
	KindInstallSkip EventKind = "scroll.install_skip"

	// Bridge
	KindRegionMissing EventKind = "region.missing"
	KindJump          EventKind = "control.jump"

	// Host
	KindMessage    EventKind = "feed.message"
	KindFeedError  EventKind = "feed.error"
	KindStoreError EventKind = "store.error"
	KindKeyPress   EventKind = "ui.key"
	KindRender     EventKind = "ui.render"

	// System
	KindStartup  EventKind = "sys.startup"
	KindShutdown EventKind = "sys.shutdown"
	KindError    EventKind = "sys.error"

	// Trace (CHATFOLLOW_TRACE)
	KindMsgReceived EventKind = "trace.msg_received"
)

// Event is a single observability record. Only Kind is required.
type Event struct {
	Time      time.Time      `json:"t"`
	Level     Level          `json:"level,omitempty"`
	Kind      EventKind      `json:"kind"`
	Comp      string         `json:"comp,omitempty"` // "scroll", "bridge", "chatlog", "feed", "main"
	SessionID string         `json:"session_id,omitempty"`
	Dur       time.Duration  `json:"-"`
	DurMs     float64        `json:"dur_ms,omitempty"`
	Count     int            `json:"count,omitempty"`
	Source    string         `json:"source,omitempty"` // scroll cause or message sender
	Msg       string         `json:"msg,omitempty"`
	Err       string         `json:"err,omitempty"`
	Extra     map[string]any `json:"extra,omitempty"`
}

// MarshalJSON converts Dur to DurMs.
func (e Event) MarshalJSON() ([]byte, error) {
	type alias Event
	a := alias(e)
	if e.Dur > 0 {
		a.DurMs = float64(e.Dur) / float64(time.Millisecond)
	}
	return json.Marshal(a)
}
