package core

// Signal is the traffic light of one intersection axis. It cycles
// TurnGreen -> TurnYellow -> StraightGreen -> StraightYellow -> Red and
// stays Red until the owning intersection forces a green phase.
type Signal struct {
	axis               Axis
	phase              Phase
	timer              float64
	waitingTurnRequest bool
	timings            SignalTimings
	owner              *Intersection
}

// NewSignal creates a Red signal for the given axis
func NewSignal(axis Axis, timings SignalTimings) *Signal {
	return &Signal{
		axis:    axis,
		phase:   PhaseRed,
		timings: timings,
	}
}

// Axis returns the axis this signal governs
func (s *Signal) Axis() Axis { return s.axis }

// Phase returns the current phase
func (s *Signal) Phase() Phase { return s.phase }

// Timer returns the seconds left in the current phase. Red reports 0.
func (s *Signal) Timer() float64 { return s.timer }

// WaitingTurnRequest reports whether a turn request is pending
func (s *Signal) WaitingTurnRequest() bool { return s.waitingTurnRequest }

func (s *Signal) IsTurnGreen() bool      { return s.phase == PhaseTurnGreen }
func (s *Signal) IsTurnYellow() bool     { return s.phase == PhaseTurnYellow }
func (s *Signal) IsStraightGreen() bool  { return s.phase == PhaseStraightGreen }
func (s *Signal) IsStraightYellow() bool { return s.phase == PhaseStraightYellow }
func (s *Signal) IsRed() bool            { return s.phase == PhaseRed }

// IsActive reports whether the signal shows anything other than Red
func (s *Signal) IsActive() bool { return s.phase != PhaseRed }

// Update advances the phase timer by dt seconds.
func (s *Signal) Update(dt float64) {
	if s.phase == PhaseRed {
		return
	}
	s.timer -= dt
	if s.timer > 0 {
		return
	}
	next := signalCycle[s.phase]
	s.enter(next, s.durationOf(next))
}

// SetGreen forces StraightGreen with a full timer
func (s *Signal) SetGreen() {
	s.enter(PhaseStraightGreen, s.timings.StraightGreen)
}

// SetTurnGreen forces TurnGreen with a full timer
func (s *Signal) SetTurnGreen() {
	s.enter(PhaseTurnGreen, s.timings.TurnGreen)
}

// RequestTurnGreen records that a vehicle is waiting to turn left
func (s *Signal) RequestTurnGreen() {
	s.waitingTurnRequest = true
}

// ClearWaitingTurnRequest drops a pending turn request
func (s *Signal) ClearWaitingTurnRequest() {
	s.waitingTurnRequest = false
}

// holdRed cuts an active phase short. The scheduler uses it on the crossing
// axis when it grants a green, so both axes are never active at once.
func (s *Signal) holdRed() {
	if s.phase == PhaseRed {
		return
	}
	s.enter(PhaseRed, 0)
}

func (s *Signal) durationOf(p Phase) float64 {
	switch p {
	case PhaseTurnGreen:
		return s.timings.TurnGreen
	case PhaseStraightGreen:
		return s.timings.StraightGreen
	case PhaseTurnYellow, PhaseStraightYellow:
		return s.timings.Yellow
	default:
		return 0
	}
}

func (s *Signal) enter(p Phase, timer float64) {
	prev := s.phase
	s.phase = p
	s.timer = timer
	if prev != p && s.owner != nil {
		s.owner.notify.NotifySignalPhaseChange(s.owner.Snapshot(), s.axis, prev, p)
	}
}

// SignalSnapshot is a read-only copy of a signal's state.
type SignalSnapshot struct {
	Axis               Axis
	Phase              Phase
	Timer              float64
	WaitingTurnRequest bool
}

// Snapshot copies the signal state
func (s *Signal) Snapshot() SignalSnapshot {
	return SignalSnapshot{
		Axis:               s.axis,
		Phase:              s.phase,
		Timer:              s.timer,
		WaitingTurnRequest: s.waitingTurnRequest,
	}
}
