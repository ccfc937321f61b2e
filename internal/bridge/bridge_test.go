package bridge

import (
	"bytes"
	"testing"

	"github.com/abelbrown/chatfollow/internal/host"
	"github.com/abelbrown/chatfollow/internal/logging"
	"github.com/abelbrown/chatfollow/internal/scroll"
	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRegion struct {
	scroll.Geometry
	listeners map[string]func()
	removed   int
}

func (r *fakeRegion) OnScroll(key string, fn func()) {
	if r.listeners == nil {
		r.listeners = make(map[string]func())
	}
	r.listeners[key] = fn
}

func (r *fakeRegion) RemoveScrollListener(key string) {
	if _, ok := r.listeners[key]; ok {
		r.removed++
	}
	delete(r.listeners, key)
}

// scrollTo moves the offset and notifies listeners the way the chat log does.
func (r *fakeRegion) scrollTo(offset int) {
	r.Offset = offset
	for _, fn := range r.listeners {
		fn()
	}
}

type fakeControl struct {
	bindings map[string]func() bool
}

func (c *fakeControl) Bind(key string, fn func() bool) {
	if c.bindings == nil {
		c.bindings = make(map[string]func() bool)
	}
	c.bindings[key] = fn
}

func (c *fakeControl) Bound(key string) bool {
	_, ok := c.bindings[key]
	return ok
}

// click runs bound handlers and reports whether the default was suppressed.
func (c *fakeControl) click() bool {
	handled := false
	for _, fn := range c.bindings {
		if fn() {
			handled = true
		}
	}
	return handled
}

type fakePanel struct {
	regions  map[string]*fakeRegion
	controls map[string]*fakeControl
	gotos    int
}

func newFakePanel(selector string, g scroll.Geometry) *fakePanel {
	p := &fakePanel{
		regions:  map[string]*fakeRegion{},
		controls: map[string]*fakeControl{host.SelectorJumpBottom: {}},
	}
	if selector != "" {
		p.regions[selector] = &fakeRegion{Geometry: g}
	}
	return p
}

func (p *fakePanel) Region(selector string) (host.ScrollRegion, bool) {
	r, ok := p.regions[selector]
	if !ok {
		return nil, false
	}
	return r, true
}

func (p *fakePanel) Control(selector string) (host.Control, bool) {
	c, ok := p.controls[selector]
	if !ok {
		return nil, false
	}
	return c, true
}

func (p *fakePanel) GotoBottom() {
	p.gotos++
	for _, r := range p.regions {
		r.scrollTo(max(0, r.Content-r.Visible))
	}
}

func (p *fakePanel) region() *fakeRegion {
	for _, r := range p.regions {
		return r
	}
	return nil
}

type harness struct {
	hooks  *host.Hooks
	slot   *scroll.Slot
	state  *scroll.State
	bridge *Bridge
	panel  *fakePanel
	calls  int // host original invocations
}

func newHarness(t *testing.T, panel *fakePanel) *harness {
	t.Helper()
	sensor, err := scroll.NewSensor(5)
	require.NoError(t, err)

	h := &harness{
		hooks: host.NewHooks(),
		slot:  scroll.NewSlot(),
		state: scroll.NewState(),
		panel: panel,
	}
	resolve := func() (host.Panel, bool) {
		if h.panel == nil {
			return nil, false
		}
		return h.panel, true
	}
	h.bridge = New(DefaultConfig(), sensor, h.state, h.slot, resolve, nil)
	h.bridge.Attach(h.hooks)
	return h
}

func (h *harness) registerHost() {
	h.slot.Register(func(sc scroll.ScrollContext) {
		h.calls++
		if sc.Target != nil {
			sc.Target.GotoBottom()
		}
	})
}

// appendMessage mimics the chat log: pre-append hook, content grows, forced scroll.
func (h *harness) appendMessage(rows int) {
	h.hooks.PreCreateMessage.Call(host.Draft{ID: "m"})
	if r := h.panel.region(); r != nil {
		r.Content += rows
	}
	h.slot.Call(scroll.ScrollContext{Target: h.panel, Cause: scroll.CauseAppend})
}

func TestInstallWaitsForReadyAndRegistration(t *testing.T) {
	h := newHarness(t, newFakePanel(host.SelectorScroll, scroll.Geometry{Content: 10, Visible: 10}))
	icpt := h.bridge.Interceptor()

	h.registerHost()
	assert.Equal(t, scroll.ModeUninitialized, icpt.Mode(), "not installed before ready")

	h.hooks.Ready.Call(struct{}{})
	assert.Equal(t, scroll.ModeActive, icpt.Mode())

	h.hooks.Ready.Call(struct{}{})
	h.bridge.Install()
	assert.Equal(t, scroll.ModeActive, icpt.Mode())
}

func TestReadyBeforeRegistrationInstallsLater(t *testing.T) {
	h := newHarness(t, newFakePanel(host.SelectorScroll, scroll.Geometry{}))
	h.hooks.Ready.Call(struct{}{})
	assert.Equal(t, scroll.ModeUninitialized, h.bridge.Interceptor().Mode())

	h.registerHost()
	assert.Equal(t, scroll.ModeActive, h.bridge.Interceptor().Mode())
}

func TestFollowsWhileAtBottom(t *testing.T) {
	h := newHarness(t, newFakePanel(host.SelectorScroll, scroll.Geometry{Offset: 600, Content: 1000, Visible: 400}))
	h.registerHost()
	h.hooks.Ready.Call(struct{}{})

	h.appendMessage(3)
	assert.Equal(t, 1, h.calls)
	assert.Equal(t, 603, h.panel.region().Offset)
}

func TestSuppressesWhileReadingHistory(t *testing.T) {
	panel := newFakePanel(host.SelectorScroll, scroll.Geometry{Offset: 600, Content: 1000, Visible: 400})
	h := newHarness(t, panel)
	h.registerHost()
	h.hooks.Ready.Call(struct{}{})
	h.hooks.RenderChatLog.Call(panel)

	panel.region().scrollTo(200)
	assert.False(t, h.state.AtBottom(), "scroll listener refreshes state")

	h.appendMessage(3)
	assert.Equal(t, 0, h.calls)
	assert.Equal(t, 200, panel.region().Offset)
}

func TestPreAppendSnapshotUsesPreAppendGeometry(t *testing.T) {
	panel := newFakePanel(host.SelectorScroll, scroll.Geometry{Offset: 595, Content: 1000, Visible: 400})
	h := newHarness(t, panel)
	h.registerHost()
	h.hooks.Ready.Call(struct{}{})

	// 5 rows short is within tolerance; the appended 50 rows must not count.
	h.appendMessage(50)
	assert.Equal(t, 1, h.calls)
	assert.Equal(t, 650, panel.region().Offset)
}

func TestMissingRegionFailsOpen(t *testing.T) {
	h := newHarness(t, newFakePanel("", scroll.Geometry{}))
	h.registerHost()
	h.hooks.Ready.Call(struct{}{})

	h.state.RecordSnapshot(false)
	h.hooks.PreCreateMessage.Call(host.Draft{})
	assert.True(t, h.state.AtBottom())
}

func TestNoPanelFailsOpen(t *testing.T) {
	h := newHarness(t, nil)
	h.state.RecordSnapshot(false)
	h.bridge.PreAppend()
	assert.True(t, h.state.AtBottom())
}

func TestRefreshWithoutRegionKeepsState(t *testing.T) {
	h := newHarness(t, newFakePanel("", scroll.Geometry{}))
	h.state.RecordSnapshot(false)
	h.bridge.Refresh()
	assert.False(t, h.state.AtBottom())
}

func TestFallbackSelector(t *testing.T) {
	panel := newFakePanel(host.SelectorLog, scroll.Geometry{Offset: 0, Content: 1000, Visible: 400})
	h := newHarness(t, panel)
	h.registerHost()
	h.hooks.Ready.Call(struct{}{})
	h.hooks.RenderChatLog.Call(panel)

	assert.False(t, h.state.AtBottom(), "fallback region was read")
	assert.Contains(t, panel.region().listeners, h.bridge.key)
}

func TestRenderRebindIsIdempotent(t *testing.T) {
	panel := newFakePanel(host.SelectorScroll, scroll.Geometry{Offset: 600, Content: 1000, Visible: 400})
	h := newHarness(t, panel)

	for i := 0; i < 3; i++ {
		h.hooks.RenderChatLog.Call(panel)
	}
	r := panel.region()
	assert.Len(t, r.listeners, 1)
	assert.Equal(t, 2, r.removed, "previous listener removed before each re-attach")
	assert.Len(t, panel.controls[host.SelectorJumpBottom].bindings, 1)
}

func TestJumpControlOverridesOnce(t *testing.T) {
	panel := newFakePanel(host.SelectorScroll, scroll.Geometry{Offset: 600, Content: 1000, Visible: 400})
	h := newHarness(t, panel)
	h.registerHost()
	h.hooks.Ready.Call(struct{}{})
	h.hooks.RenderChatLog.Call(panel)

	panel.region().scrollTo(100)
	h.appendMessage(10)
	require.Equal(t, 0, h.calls)

	handled := panel.controls[host.SelectorJumpBottom].click()
	assert.True(t, handled, "host default must be suppressed")
	assert.Equal(t, 1, h.calls)
	r := panel.region()
	assert.Equal(t, r.Content-r.Visible, r.Offset)
	assert.False(t, h.state.ManualOverride(), "override consumed by the jump itself")
	assert.True(t, h.state.AtBottom(), "scroll listener saw the jump")

	h.appendMessage(10)
	assert.Equal(t, 2, h.calls, "following again after the jump")
}

func TestOverrideSpentWhenStateAlreadyAtBottom(t *testing.T) {
	panel := newFakePanel(host.SelectorScroll, scroll.Geometry{Offset: 600, Content: 1000, Visible: 400})
	h := newHarness(t, panel)
	h.registerHost()
	h.hooks.Ready.Call(struct{}{})

	h.bridge.JumpToBottom()
	assert.False(t, h.state.ManualOverride())
	assert.Equal(t, scroll.Stats{Forwarded: 1}, h.bridge.Interceptor().Stats())
}

func TestJumpWithoutInterceptorStillScrolls(t *testing.T) {
	panel := newFakePanel(host.SelectorScroll, scroll.Geometry{Offset: 0, Content: 1000, Visible: 400})
	h := newHarness(t, panel)
	h.registerHost()

	h.bridge.JumpToBottom()
	assert.Equal(t, 1, h.calls)
	assert.True(t, h.state.ManualOverride(), "nothing consumed the override")
}

func TestLocate(t *testing.T) {
	both := newFakePanel(host.SelectorScroll, scroll.Geometry{Offset: 1})
	both.regions[host.SelectorLog] = &fakeRegion{Geometry: scroll.Geometry{Offset: 2}}

	r, ok := Locate(both, host.SelectorScroll, host.SelectorLog)
	require.True(t, ok)
	assert.Equal(t, 1, r.ScrollOffset(), "primary wins")

	_, ok = Locate(newFakePanel("", scroll.Geometry{}), host.SelectorScroll, host.SelectorLog)
	assert.False(t, ok)

	_, ok = Locate(newFakePanel(host.SelectorLog, scroll.Geometry{}), host.SelectorScroll, "")
	assert.False(t, ok)

	_, ok = Locate(nil, host.SelectorScroll, host.SelectorLog)
	assert.False(t, ok)
}

func TestBridgesAreIndependent(t *testing.T) {
	left := newHarness(t, newFakePanel(host.SelectorScroll, scroll.Geometry{Offset: 600, Content: 1000, Visible: 400}))
	right := newHarness(t, newFakePanel(host.SelectorScroll, scroll.Geometry{Offset: 0, Content: 1000, Visible: 400}))
	for _, h := range []*harness{left, right} {
		h.registerHost()
		h.hooks.Ready.Call(struct{}{})
		h.hooks.RenderChatLog.Call(h.panel)
	}

	left.appendMessage(1)
	right.appendMessage(1)
	assert.Equal(t, 1, left.calls)
	assert.Equal(t, 0, right.calls)
	assert.NotEqual(t, left.bridge.key, right.bridge.key)
}

func TestInstallWritesDebugLog(t *testing.T) {
	var buf bytes.Buffer
	logging.InitWriter(&buf, log.DebugLevel)
	t.Cleanup(func() { logging.Logger = nil })

	h := newHarness(t, newFakePanel(host.SelectorScroll, scroll.Geometry{}))
	h.bridge.Install()
	assert.Contains(t, buf.String(), "scroll interceptor not installed")

	h.registerHost()
	h.bridge.Install()
	assert.Contains(t, buf.String(), "scroll interceptor installed")
	assert.Contains(t, buf.String(), string(h.bridge.Interceptor().Token()))
}
