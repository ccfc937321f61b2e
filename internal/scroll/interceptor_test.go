package scroll

import (
	"bytes"
	"strings"
	"testing"

	"github.com/abelbrown/chatfollow/internal/otel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeView is a host viewport whose GotoBottom moves the offset.
type fakeView struct {
	Geometry
	gotoCalls int
}

func (v *fakeView) GotoBottom() {
	v.gotoCalls++
	v.Offset = max(0, v.Content-v.Visible)
}

// hostSlot registers a host original that counts its own invocations.
func hostSlot() (*Slot, *int) {
	calls := new(int)
	slot := NewSlot()
	slot.Register(func(sc ScrollContext) {
		*calls++
		if sc.Target != nil {
			sc.Target.GotoBottom()
		}
	})
	return slot, calls
}

func TestInterceptorUninitializedUntilInstalled(t *testing.T) {
	icpt := NewInterceptor(NewState(), nil)
	assert.Equal(t, ModeUninitialized, icpt.Mode())
	assert.Empty(t, icpt.Token())
}

func TestInstallOnEmptySlotIsNoop(t *testing.T) {
	icpt := NewInterceptor(NewState(), nil)
	slot := NewSlot()

	assert.False(t, icpt.Install(slot))
	assert.Equal(t, ModeUninitialized, icpt.Mode())

	fn, tok := slot.Current()
	assert.Nil(t, fn)
	assert.Empty(t, tok)
	slot.Call(ScrollContext{}) // empty slot must not panic
}

func TestSuppressesWhenScrolledUp(t *testing.T) {
	state := NewState()
	slot, calls := hostSlot()
	icpt := NewInterceptor(state, nil)
	require.True(t, icpt.Install(slot))
	assert.Equal(t, ModeActive, icpt.Mode())

	view := &fakeView{Geometry: Geometry{Offset: 100, Content: 1000, Visible: 400}}
	state.RecordSnapshot(false)
	slot.Call(ScrollContext{Target: view, Cause: CauseAppend})

	assert.Equal(t, 0, *calls)
	assert.Equal(t, 100, view.Offset, "offset must not move")
	assert.Equal(t, Stats{Suppressed: 1}, icpt.Stats())
}

func TestForwardsOnceWhenAtBottom(t *testing.T) {
	state := NewState()
	slot, calls := hostSlot()
	icpt := NewInterceptor(state, nil)
	require.True(t, icpt.Install(slot))

	view := &fakeView{Geometry: Geometry{Offset: 590, Content: 1000, Visible: 400}}
	state.RecordSnapshot(true)
	slot.Call(ScrollContext{Target: view, Cause: CauseAppend})

	assert.Equal(t, 1, *calls)
	assert.Equal(t, 1, view.gotoCalls)
	assert.Equal(t, 600, view.Offset)
}

func TestForwardPreservesContext(t *testing.T) {
	var got ScrollContext
	slot := NewSlot()
	slot.Register(func(sc ScrollContext) { got = sc })

	icpt := NewInterceptor(NewState(), nil)
	require.True(t, icpt.Install(slot))

	view := &fakeView{}
	slot.Call(ScrollContext{Target: view, Cause: CauseRender})
	assert.Same(t, view, got.Target)
	assert.Equal(t, CauseRender, got.Cause)
}

func TestManualOverrideConsumedOnce(t *testing.T) {
	state := NewState()
	slot, calls := hostSlot()
	icpt := NewInterceptor(state, nil)
	require.True(t, icpt.Install(slot))

	view := &fakeView{Geometry: Geometry{Offset: 0, Content: 1000, Visible: 400}}
	state.RecordSnapshot(false)
	state.SetManualOverride()

	slot.Call(ScrollContext{Target: view, Cause: CauseControl})
	assert.Equal(t, 1, *calls)
	assert.Equal(t, 600, view.Offset, "override scrolls to content-visible")

	view.Offset = 0
	slot.Call(ScrollContext{Target: view, Cause: CauseAppend})
	assert.Equal(t, 1, *calls, "second call obeys the cached reading")
	assert.Equal(t, 0, view.Offset)
	assert.Equal(t, Stats{Forwarded: 1, Suppressed: 1}, icpt.Stats())
}

func TestInstallTwiceKeepsSingleOriginal(t *testing.T) {
	state := NewState()
	slot, calls := hostSlot()
	icpt := NewInterceptor(state, nil)

	require.True(t, icpt.Install(slot))
	tok := icpt.Token()
	assert.False(t, icpt.Install(slot))
	assert.Equal(t, tok, icpt.Token())

	_, slotTok := slot.Current()
	assert.Equal(t, tok, slotTok)

	view := &fakeView{Geometry: Geometry{Content: 1000, Visible: 400}}
	for i := 0; i < 100; i++ {
		slot.Call(ScrollContext{Target: view, Cause: CauseAppend})
	}
	assert.Equal(t, 100, *calls, "each allowed call reaches the original exactly once")
	assert.Equal(t, 100, view.gotoCalls)
}

func TestDetachedForwardsUnconditionally(t *testing.T) {
	state := NewState()
	slot, calls := hostSlot()
	icpt := NewInterceptor(state, nil)
	require.True(t, icpt.Install(slot))

	// A later extension composes around the wrapper and registers itself.
	wrapper, _ := slot.Current()
	extCalls := 0
	slot.Register(func(sc ScrollContext) {
		extCalls++
		wrapper(sc)
	})
	assert.Equal(t, ModeDetached, icpt.Mode())

	state.RecordSnapshot(false)
	view := &fakeView{Geometry: Geometry{Content: 1000, Visible: 400}}
	slot.Call(ScrollContext{Target: view, Cause: CauseAppend})
	slot.Call(ScrollContext{Target: view, Cause: CauseAppend})

	assert.Equal(t, 2, extCalls)
	assert.Equal(t, 2, *calls, "detached wrapper restores default behaviour")
	assert.Equal(t, Stats{Detached: 2}, icpt.Stats())
	assert.False(t, state.AtBottom(), "detached calls never touch the state")

	assert.False(t, icpt.Install(slot), "reinstall never wraps the replacement")
	assert.Equal(t, ModeDetached, icpt.Mode())
}

func TestSlotOnRegisteredFiresOnce(t *testing.T) {
	slot := NewSlot()
	fired := 0
	slot.OnRegistered(func() { fired++ })
	assert.Equal(t, 0, fired)

	slot.Register(nil)
	assert.Equal(t, 0, fired, "nil registration is not readiness")

	slot.Register(func(ScrollContext) {})
	assert.Equal(t, 1, fired)

	slot.Register(func(ScrollContext) {})
	assert.Equal(t, 1, fired, "subscription is one-shot")

	slot.OnRegistered(func() { fired++ })
	assert.Equal(t, 2, fired, "already registered fires immediately")
}

func TestDeferredInstallViaReadiness(t *testing.T) {
	state := NewState()
	slot := NewSlot()
	icpt := NewInterceptor(state, nil)
	slot.OnRegistered(func() { icpt.Install(slot) })
	assert.Equal(t, ModeUninitialized, icpt.Mode())

	calls := 0
	slot.Register(func(ScrollContext) { calls++ })
	assert.Equal(t, ModeActive, icpt.Mode())

	state.RecordSnapshot(false)
	slot.Call(ScrollContext{Cause: CauseAppend})
	assert.Equal(t, 0, calls)
}

func TestInterceptorEmitsEvents(t *testing.T) {
	var buf bytes.Buffer
	log := otel.NewLogger(&buf)

	state := NewState()
	slot, _ := hostSlot()
	icpt := NewInterceptor(state, log)
	require.True(t, icpt.Install(slot))

	slot.Call(ScrollContext{Cause: CauseAppend})
	state.RecordSnapshot(false)
	slot.Call(ScrollContext{Cause: CauseAppend})
	slot.Register(func(ScrollContext) {})
	icpt.intercept(ScrollContext{Cause: CauseOther})
	icpt.intercept(ScrollContext{Cause: CauseOther})
	log.Close()

	out := buf.String()
	for _, kind := range []string{"scroll.install", "scroll.forward", "scroll.suppress", "scroll.detached"} {
		assert.Contains(t, out, `"kind":"`+kind+`"`)
	}
	assert.Equal(t, 1, strings.Count(out, `"kind":"scroll.detached"`), "detachment reported once")
}

func TestModeString(t *testing.T) {
	assert.Equal(t, "uninitialized", ModeUninitialized.String())
	assert.Equal(t, "active", ModeActive.String())
	assert.Equal(t, "detached", ModeDetached.String())
	assert.Equal(t, "mode(7)", Mode(7).String())
}
