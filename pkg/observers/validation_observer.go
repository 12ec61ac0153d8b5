package observers

import (
	"fmt"
	"sort"
	"sync"

	"github.com/anggasct/trafficsim/pkg/core"
	"github.com/samber/lo"
)

// ValidationObserver checks the world against its invariants as events
// arrive and records every violation instead of failing.
type ValidationObserver struct {
	core.BaseObserver
	expectedStates     map[core.VehicleState]bool
	visitedStates      map[core.VehicleState]bool
	allowedTransitions map[core.VehicleState]map[core.VehicleState]bool
	violations         []string
	mutex              sync.RWMutex
}

// NewValidationObserver creates a validation observer that accepts the
// declared vehicle transitions.
func NewValidationObserver() *ValidationObserver {
	o := &ValidationObserver{
		expectedStates:     make(map[core.VehicleState]bool),
		visitedStates:      make(map[core.VehicleState]bool),
		allowedTransitions: make(map[core.VehicleState]map[core.VehicleState]bool),
		violations:         make([]string, 0),
	}
	for _, from := range core.AllVehicleStates() {
		for _, to := range core.AllVehicleStates() {
			if core.CanVehicleTransition(from, to) {
				o.AddAllowedTransition(from, to)
			}
		}
	}
	return o
}

// AddExpectedState adds a state the run is expected to visit
func (o *ValidationObserver) AddExpectedState(state core.VehicleState) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.expectedStates[state] = true
}

// AddAllowedTransition adds an allowed transition
func (o *ValidationObserver) AddAllowedTransition(from, to core.VehicleState) {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	if _, exists := o.allowedTransitions[from]; !exists {
		o.allowedTransitions[from] = make(map[core.VehicleState]bool)
	}
	o.allowedTransitions[from][to] = true
}

// addViolation must be called with the lock held.
func (o *ValidationObserver) addViolation(format string, args ...interface{}) {
	o.violations = append(o.violations, fmt.Sprintf(format, args...))
}

// OnVehicleSpawned validates a fresh vehicle
func (o *ValidationObserver) OnVehicleSpawned(v core.VehicleSnapshot) {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	o.visitedStates[v.State] = true
	o.checkVehicle(v)
}

// OnVehicleRespawned validates a re-entered vehicle
func (o *ValidationObserver) OnVehicleRespawned(v core.VehicleSnapshot) {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	if v.State != core.StateMoving {
		o.addViolation("vehicle %s respawned in state %s", v.ID, v.State)
	}
	o.checkVehicle(v)
}

// OnVehicleStateChange validates the transition and the resulting vehicle
func (o *ValidationObserver) OnVehicleStateChange(v core.VehicleSnapshot, from, to core.VehicleState) {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	o.visitedStates[to] = true
	// respawn resets any state to Moving
	respawn := to == core.StateMoving && v.Binding == nil
	if allowed, exists := o.allowedTransitions[from]; !respawn && (!exists || !allowed[to]) {
		o.addViolation("vehicle %s: invalid transition from '%s' to '%s'", v.ID, from, to)
	}
	o.checkVehicle(v)
}

func (o *ValidationObserver) checkVehicle(v core.VehicleSnapshot) {
	if v.Speed < 0 {
		o.addViolation("vehicle %s: negative speed %v", v.ID, v.Speed)
	}
	bound := v.Binding != nil
	if bound == (v.State == core.StateMoving) {
		o.addViolation("vehicle %s: binding present=%v in state %s", v.ID, bound, v.State)
	}
	if (v.StopTarget != nil) != bound {
		o.addViolation("vehicle %s: stop target present=%v while bound=%v", v.ID, v.StopTarget != nil, bound)
	}
	switch v.State {
	case core.StateMoving, core.StateApproaching:
		if v.PendingTurn != core.TurnNone {
			o.addViolation("vehicle %s: pending turn %s in state %s", v.ID, v.PendingTurn, v.State)
		}
	default:
		if v.PendingTurn == core.TurnNone {
			o.addViolation("vehicle %s: no pending turn in state %s", v.ID, v.State)
		}
	}
}

// OnSignalPhaseChange checks mutual exclusion of the two axes
func (o *ValidationObserver) OnSignalPhaseChange(ix core.IntersectionSnapshot, axis core.Axis, from, to core.Phase) {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	if ix.BothAxesActive() {
		o.addViolation("intersection %s: NS %s and EW %s active together", ix.StreetName, ix.NS.Phase, ix.EW.Phase)
	}
	for _, sig := range []core.SignalSnapshot{ix.NS, ix.EW} {
		if sig.Timer < 0 {
			o.addViolation("intersection %s: %s timer negative", ix.StreetName, sig.Axis)
		}
	}
}

// OnTurnGranted checks that a granted request was consumed
func (o *ValidationObserver) OnTurnGranted(ix core.IntersectionSnapshot, axis core.Axis) {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	sig := ix.NS
	if axis == core.AxisEastWest {
		sig = ix.EW
	}
	if sig.WaitingTurnRequest || sig.Phase != core.PhaseTurnGreen {
		o.addViolation("intersection %s: %s turn grant left phase %s, request=%v", ix.StreetName, axis, sig.Phase, sig.WaitingTurnRequest)
	}
}

// OnError records errors as violations
func (o *ValidationObserver) OnError(err error) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.addViolation("error occurred: %v", err)
}

// GetViolations returns all validation violations
func (o *ValidationObserver) GetViolations() []string {
	o.mutex.RLock()
	defer o.mutex.RUnlock()

	result := make([]string, len(o.violations))
	copy(result, o.violations)
	return result
}

// GetUnvisitedStates returns expected states that were never entered
func (o *ValidationObserver) GetUnvisitedStates() []core.VehicleState {
	o.mutex.RLock()
	defer o.mutex.RUnlock()

	unvisited := lo.Filter(lo.Keys(o.expectedStates), func(s core.VehicleState, _ int) bool {
		return !o.visitedStates[s]
	})
	sort.Slice(unvisited, func(i, j int) bool { return unvisited[i] < unvisited[j] })
	return unvisited
}

// HasViolations returns whether any violations occurred
func (o *ValidationObserver) HasViolations() bool {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	return len(o.violations) > 0
}

// Reset resets the validation state
func (o *ValidationObserver) Reset() {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	o.visitedStates = make(map[core.VehicleState]bool)
	o.violations = make([]string, 0)
}
