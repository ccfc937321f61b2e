// Package bridge feeds chat log events into the scroll policy.
//
// It records at-bottom snapshots before each append, on every user scroll
// and on every render, installs the scroll interceptor once the host's scroll
// implementation exists, and binds the jump-to-bottom control.
package bridge

import (
	"github.com/abelbrown/chatfollow/internal/host"
	"github.com/abelbrown/chatfollow/internal/logging"
	"github.com/abelbrown/chatfollow/internal/otel"
	"github.com/abelbrown/chatfollow/internal/scroll"
	"github.com/google/uuid"
)

// Config names the panel parts the bridge looks for.
type Config struct {
	RegionSelector   string
	FallbackSelector string
	JumpControl      string
}

// DefaultConfig returns the chat log's stock selectors.
func DefaultConfig() Config {
	return Config{
		RegionSelector:   host.SelectorScroll,
		FallbackSelector: host.SelectorLog,
		JumpControl:      host.SelectorJumpBottom,
	}
}

// Resolver returns the live panel, or false when the host has none yet.
type Resolver func() (host.Panel, bool)

// Bridge wires one panel's events to one scroll.State.
type Bridge struct {
	cfg     Config
	sensor  scroll.Sensor
	state   *scroll.State
	slot    *scroll.Slot
	icpt    *scroll.Interceptor
	resolve Resolver
	log     *otel.Logger
	key     string // listener and binding key, unique per bridge
}

// New builds a Bridge. log may be nil.
func New(cfg Config, sensor scroll.Sensor, state *scroll.State, slot *scroll.Slot, resolve Resolver, log *otel.Logger) *Bridge {
	if resolve == nil {
		resolve = func() (host.Panel, bool) { return nil, false }
	}
	return &Bridge{
		cfg:     cfg,
		sensor:  sensor,
		state:   state,
		slot:    slot,
		icpt:    scroll.NewInterceptor(state, log),
		resolve: resolve,
		log:     log,
		key:     "chatfollow-" + uuid.NewString(),
	}
}

// Attach subscribes the bridge to the host's hooks. Installation waits for
// Ready and then for the host's scroll implementation to be registered.
func (b *Bridge) Attach(h *host.Hooks) {
	h.Ready.Once(func(struct{}) {
		b.log.Info(otel.KindStartup, "bridge", "host ready")
		b.slot.OnRegistered(b.Install)
	})
	h.PreCreateMessage.On(func(host.Draft) { b.PreAppend() })
	h.RenderChatLog.On(b.OnRender)
}

// Install wraps the host's scroll implementation. Safe to call repeatedly.
func (b *Bridge) Install() {
	if b.icpt.Install(b.slot) {
		logging.Debug("scroll interceptor installed", "token", b.icpt.Token())
		return
	}
	logging.Debug("scroll interceptor not installed", "mode", b.icpt.Mode())
}

// PreAppend records where the view is before a message lands. An unresolvable
// region counts as at bottom so the log keeps following.
func (b *Bridge) PreAppend() {
	region, found := b.region()
	atBottom, known := b.sensor.Probe(region, found)
	if !known {
		atBottom = true
		b.log.Warn(otel.KindRegionMissing, "bridge", "pre-append: assuming at bottom")
	}
	b.record(atBottom, "pre_append")
}

// Refresh re-reads the region after user scrolling. No-op without a region.
func (b *Bridge) Refresh() {
	region, found := b.region()
	if atBottom, known := b.sensor.Probe(region, found); known {
		b.record(atBottom, "scroll")
	}
}

// OnRender re-binds the scroll listener and the jump control on a freshly
// built panel and takes a snapshot.
func (b *Bridge) OnRender(p host.Panel) {
	if region, ok := Locate(p, b.cfg.RegionSelector, b.cfg.FallbackSelector); ok {
		region.RemoveScrollListener(b.key)
		region.OnScroll(b.key, b.Refresh)
		b.record(scroll.IsAtBottom(region, b.sensor.Tolerance()), "render")
	} else {
		b.log.Warn(otel.KindRegionMissing, "bridge", "render: no scroll region")
	}

	if ctl, ok := p.Control(b.cfg.JumpControl); ok && !ctl.Bound(b.key) {
		ctl.Bind(b.key, func() bool {
			b.JumpToBottom()
			return true
		})
	}
}

// JumpToBottom grants a one-shot override and scrolls through the host's
// (intercepted) implementation so the override is spent on this very call.
func (b *Bridge) JumpToBottom() {
	b.state.SetManualOverride()
	b.log.Info(otel.KindJump, "bridge", "jump to bottom")

	var target scroll.Target
	if p, ok := b.resolve(); ok {
		target = p
	}
	b.slot.Call(scroll.ScrollContext{Target: target, Cause: scroll.CauseControl})
}

// Interceptor returns the bridge's interceptor.
func (b *Bridge) Interceptor() *scroll.Interceptor {
	return b.icpt
}

// State returns the bridge's scroll state.
func (b *Bridge) State() *scroll.State {
	return b.state
}

func (b *Bridge) region() (host.ScrollRegion, bool) {
	p, ok := b.resolve()
	if !ok || p == nil {
		return nil, false
	}
	return Locate(p, b.cfg.RegionSelector, b.cfg.FallbackSelector)
}

func (b *Bridge) record(atBottom bool, trigger string) {
	b.state.RecordSnapshot(atBottom)
	msg := "scrolled_up"
	if atBottom {
		msg = "at_bottom"
	}
	b.log.Emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindSnapshot, Comp: "bridge", Source: trigger, Msg: msg})
}

// Locate finds the panel's scroll region by primary selector, then fallback.
func Locate(p host.Panel, primary, fallback string) (host.ScrollRegion, bool) {
	if p == nil {
		return nil, false
	}
	if r, ok := p.Region(primary); ok && r != nil {
		return r, true
	}
	if fallback == "" {
		return nil, false
	}
	if r, ok := p.Region(fallback); ok && r != nil {
		return r, true
	}
	return nil, false
}
