package scroll

// Reason explains a Decision.
type Reason string

const (
	ReasonManual     Reason = "manual"
	ReasonAtBottom   Reason = "at_bottom"
	ReasonScrolledUp Reason = "scrolled_up"
)

// Decision is the outcome of consulting a State before a forced scroll.
type Decision struct {
	Allow  bool
	Reason Reason
}

// State holds the cached at-bottom reading and the one-shot manual override
// for a single panel. Not goroutine-safe: owned by the UI loop.
type State struct {
	atBottom       bool
	manualOverride bool
}

// NewState returns a State that starts at bottom, so the first render follows.
func NewState() *State {
	return &State{atBottom: true}
}

// RecordSnapshot stores the latest at-bottom reading.
func (s *State) RecordSnapshot(atBottom bool) {
	s.atBottom = atBottom
}

// SetManualOverride grants the next ConsumeDecision call an unconditional allow.
func (s *State) SetManualOverride() {
	s.manualOverride = true
}

// ConsumeDecision decides whether a forced scroll may run. A pending manual
// override wins and is cleared; otherwise the cached reading governs.
func (s *State) ConsumeDecision() Decision {
	if s.manualOverride {
		s.manualOverride = false
		return Decision{Allow: true, Reason: ReasonManual}
	}
	if s.atBottom {
		return Decision{Allow: true, Reason: ReasonAtBottom}
	}
	return Decision{Allow: false, Reason: ReasonScrolledUp}
}

// AtBottom returns the cached reading.
func (s *State) AtBottom() bool {
	return s.atBottom
}

// ManualOverride reports whether an override is pending.
func (s *State) ManualOverride() bool {
	return s.manualOverride
}
