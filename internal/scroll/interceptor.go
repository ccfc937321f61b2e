package scroll

import (
	"fmt"

	"github.com/abelbrown/chatfollow/internal/otel"
	"github.com/google/uuid"
)

// Cause names who asked for a forced scroll.
type Cause string

const (
	CauseAppend  Cause = "append"
	CauseRender  Cause = "render"
	CauseControl Cause = "control"
	CauseOther   Cause = "other"
)

// Target is the receiver a scroll request is issued against.
type Target interface {
	GotoBottom()
}

// ScrollContext is passed unchanged through every ScrollFunc layer.
type ScrollContext struct {
	Target Target
	Cause  Cause
}

// ScrollFunc forces a view to its bottom.
type ScrollFunc func(ScrollContext)

// Token identifies which installation owns a Slot. Empty means the host's own
// registration.
type Token string

// Slot is where the host keeps its active scroll-to-bottom implementation.
// The host always scrolls through Call, so whatever is registered decides.
type Slot struct {
	fn      ScrollFunc
	token   Token
	waiting []func()
}

// NewSlot returns an empty Slot.
func NewSlot() *Slot {
	return &Slot{}
}

// Register replaces the active implementation. Anyone may call it; doing so
// after an Interceptor installed itself detaches that Interceptor.
// Pending OnRegistered subscribers run once fn is non-nil.
func (s *Slot) Register(fn ScrollFunc) {
	s.fn = fn
	s.token = ""
	if fn == nil {
		return
	}
	waiting := s.waiting
	s.waiting = nil
	for _, notify := range waiting {
		notify()
	}
}

// Current returns the active implementation and the token it was installed with.
func (s *Slot) Current() (ScrollFunc, Token) {
	return s.fn, s.token
}

// Call runs the active implementation. No-op on an empty Slot.
func (s *Slot) Call(sc ScrollContext) {
	if s.fn != nil {
		s.fn(sc)
	}
}

// OnRegistered runs fn once a scroll implementation is available: immediately
// if one already is, otherwise on the next Register. Each subscription fires
// at most once.
func (s *Slot) OnRegistered(fn func()) {
	if s.fn != nil {
		fn()
		return
	}
	s.waiting = append(s.waiting, fn)
}

func (s *Slot) install(fn ScrollFunc, tok Token) {
	s.fn = fn
	s.token = tok
}

// Mode is the Interceptor's effective behaviour.
type Mode int

const (
	ModeUninitialized Mode = iota
	ModeActive
	ModeDetached
)

func (m Mode) String() string {
	switch m {
	case ModeUninitialized:
		return "uninitialized"
	case ModeActive:
		return "active"
	case ModeDetached:
		return "detached"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// Stats counts wrapper calls by outcome.
type Stats struct {
	Forwarded  int
	Suppressed int
	Detached   int
}

// Interceptor gates a Slot's scroll implementation behind a State.
//
// The implementation found in the Slot at first successful Install is kept as
// the original for the Interceptor's lifetime. If something else registers
// over the wrapper, the wrapper stops consulting the State and forwards every
// call to the original.
type Interceptor struct {
	state    *State
	log      *otel.Logger // optional
	slot     *Slot
	original ScrollFunc
	token    Token
	stats    Stats

	reportedDetach bool
}

// NewInterceptor returns an uninstalled Interceptor reading state.
// log may be nil.
func NewInterceptor(state *State, log *otel.Logger) *Interceptor {
	return &Interceptor{state: state, log: log}
}

// Install wraps slot's current implementation. It reports whether this call
// installed the wrapper: false when the slot is still empty or when the
// Interceptor was already installed, in which case nothing changes.
func (i *Interceptor) Install(slot *Slot) bool {
	if i.original != nil {
		return false
	}
	fn, _ := slot.Current()
	if fn == nil {
		i.emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindInstallSkip, Msg: "scroll implementation not registered"})
		return false
	}

	i.original = fn
	i.slot = slot
	i.token = Token(uuid.NewString())
	slot.install(i.intercept, i.token)

	i.emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindInstall, Msg: "token " + string(i.token)})
	return true
}

// Mode reports whether the wrapper is installed and still the active implementation.
func (i *Interceptor) Mode() Mode {
	if i.original == nil {
		return ModeUninitialized
	}
	if _, tok := i.slot.Current(); tok != i.token {
		return ModeDetached
	}
	return ModeActive
}

// Stats returns outcome counters.
func (i *Interceptor) Stats() Stats {
	return i.stats
}

// Token returns the installation token, empty before Install.
func (i *Interceptor) Token() Token {
	return i.token
}

func (i *Interceptor) intercept(sc ScrollContext) {
	if i.Mode() == ModeDetached {
		i.stats.Detached++
		if !i.reportedDetach {
			i.reportedDetach = true
			i.emit(otel.Event{Level: otel.LevelWarn, Kind: otel.KindDetached, Msg: "scroll implementation replaced, forwarding to original"})
		}
		i.original(sc)
		return
	}

	d := i.state.ConsumeDecision()
	if !d.Allow {
		i.stats.Suppressed++
		i.emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindSuppress, Msg: string(d.Reason), Source: string(sc.Cause)})
		return
	}
	i.stats.Forwarded++
	i.emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindForward, Msg: string(d.Reason), Source: string(sc.Cause)})
	i.original(sc)
}

func (i *Interceptor) emit(e otel.Event) {
	if i.log == nil {
		return
	}
	e.Comp = "scroll"
	i.log.Emit(e)
}
