package core

import "sync"

// TestObserver captures every notification for assertions
type TestObserver struct {
	BaseObserver
	mutex         sync.Mutex
	Intersections []IntersectionSnapshot
	StateChanges  []StateChangeEvent
	PhaseChanges  []PhaseChangeEvent
	TurnRequests  []Axis
	TurnGrants    []Axis
	Errors        []error
}

type StateChangeEvent struct {
	Vehicle VehicleSnapshot
	From    VehicleState
	To      VehicleState
}

type PhaseChangeEvent struct {
	Intersection IntersectionSnapshot
	Axis         Axis
	From         Phase
	To           Phase
}

func (o *TestObserver) OnIntersectionAdded(ix IntersectionSnapshot) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.Intersections = append(o.Intersections, ix)
}

func (o *TestObserver) OnVehicleStateChange(v VehicleSnapshot, from, to VehicleState) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.StateChanges = append(o.StateChanges, StateChangeEvent{Vehicle: v, From: from, To: to})
}

func (o *TestObserver) OnSignalPhaseChange(ix IntersectionSnapshot, axis Axis, from, to Phase) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.PhaseChanges = append(o.PhaseChanges, PhaseChangeEvent{Intersection: ix, Axis: axis, From: from, To: to})
}

func (o *TestObserver) OnTurnRequested(ix IntersectionSnapshot, axis Axis, vehicleID string) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.TurnRequests = append(o.TurnRequests, axis)
}

func (o *TestObserver) OnTurnGranted(ix IntersectionSnapshot, axis Axis) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.TurnGrants = append(o.TurnGrants, axis)
}

func (o *TestObserver) OnError(err error) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.Errors = append(o.Errors, err)
}

// States returns the sequence of target states seen so far
func (o *TestObserver) States() []VehicleState {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	states := make([]VehicleState, 0, len(o.StateChanges))
	for _, e := range o.StateChanges {
		states = append(states, e.To)
	}
	return states
}

// scriptedRandom replays fixed draws and then repeats the last one
type scriptedRandom struct {
	ints   []int
	floats []float64
}

func (r *scriptedRandom) Intn(n int) int {
	if len(r.ints) == 0 {
		return 0
	}
	v := r.ints[0]
	if len(r.ints) > 1 {
		r.ints = r.ints[1:]
	}
	return v % n
}

func (r *scriptedRandom) Float64() float64 {
	if len(r.floats) == 0 {
		return 0
	}
	v := r.floats[0]
	if len(r.floats) > 1 {
		r.floats = r.floats[1:]
	}
	return v
}

// turnDraw is the Intn result that RandomTurn maps to turn
func turnDraw(turn Turn) int {
	for i, t := range turnChoices {
		if t == turn {
			return i
		}
	}
	panic("no draw for turn " + turn.String())
}

// driveTick advances one intersection and one vehicle the way the simulation does.
func driveTick(ix *Intersection, v *Vehicle, env *Env) {
	ix.Update(env.Dt)
	if v.Binding() != nil {
		v.CheckLight(ix, env)
		return
	}
	if v.IsApproaching(ix, env.Params) {
		v.Bind(ix, env)
		v.CheckLight(ix, env)
		return
	}
	v.Move(nil, env)
}

func newTestEnv(dt float64, random Random, notify *ObserverManager) *Env {
	params := DefaultParams()
	return &Env{
		Dt:        dt,
		Params:    &params,
		Random:    random,
		Observers: notify,
	}
}
