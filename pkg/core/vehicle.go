package core

import (
	"fmt"
	"math"
)

// Binding ties a vehicle to the intersection it is negotiating and the
// signal axis it obeys there. Intersection is an index into the driver's
// intersection list.
type Binding struct {
	Intersection int
	Axis         Axis
}

// WaitKind is the state of a stopped left-turner's retry timer.
type WaitKind int

const (
	NotWaiting WaitKind = iota
	RequestPending
	WaitingSince
)

func (k WaitKind) String() string {
	switch k {
	case NotWaiting:
		return "NotWaiting"
	case RequestPending:
		return "RequestPending"
	case WaitingSince:
		return "WaitingSince"
	default:
		return fmt.Sprintf("WaitKind(%d)", int(k))
	}
}

// Wait tracks a left-turn request. Since is only meaningful for WaitingSince.
type Wait struct {
	Kind  WaitKind
	Since float64
}

// Env carries the per-tick collaborators a vehicle needs.
type Env struct {
	Dt        float64
	Now       float64 // seconds on the turn-retry clock
	Params    *Params
	Random    Random
	Observers *ObserverManager
}

// Vehicle is a car on the road network. Identity survives respawns.
type Vehicle struct {
	id           string
	plate        string
	position     Point
	speed        float64
	targetSpeed  float64
	facing       Direction
	pendingTurn  Turn
	turnProgress float64
	currentRoad  string
	binding      *Binding
	state        VehicleState
	stopTarget   *Point
	wait         Wait
}

// NewVehicle creates a stationary vehicle in state Moving. Place it with Respawn.
func NewVehicle(id, plate string) *Vehicle {
	return &Vehicle{
		id:    id,
		plate: plate,
		state: StateMoving,
	}
}

func (v *Vehicle) ID() string            { return v.id }
func (v *Vehicle) Plate() string         { return v.plate }
func (v *Vehicle) Position() Point       { return v.position }
func (v *Vehicle) Speed() float64        { return v.speed }
func (v *Vehicle) TargetSpeed() float64  { return v.targetSpeed }
func (v *Vehicle) Facing() Direction     { return v.facing }
func (v *Vehicle) PendingTurn() Turn     { return v.pendingTurn }
func (v *Vehicle) TurnProgress() float64 { return v.turnProgress }
func (v *Vehicle) CurrentRoad() string   { return v.currentRoad }
func (v *Vehicle) State() VehicleState   { return v.state }
func (v *Vehicle) Wait() Wait            { return v.wait }

// Binding returns a copy of the current binding, or nil when unbound
func (v *Vehicle) Binding() *Binding {
	if v.binding == nil {
		return nil
	}
	b := *v.binding
	return &b
}

// StopTarget returns a copy of the stop point, or nil when unbound
func (v *Vehicle) StopTarget() *Point {
	if v.stopTarget == nil {
		return nil
	}
	p := *v.stopTarget
	return &p
}

// SpeedKmh returns the speed in km/h truncated to two decimals.
func (v *Vehicle) SpeedKmh() float64 {
	return truncate2(v.speed * 3.6)
}

// SetPosition moves the vehicle
func (v *Vehicle) SetPosition(p Point) { v.position = p }

// SetFacing turns the vehicle in place
func (v *Vehicle) SetFacing(d Direction) { v.facing = d }

// SetSpeed sets both the current and the cruising speed, in m/s.
func (v *Vehicle) SetSpeed(speed float64) {
	v.speed = speed
	v.targetSpeed = speed
}

// Respawn places the vehicle at spawn on road with a fresh speed and clears
// every trace of a previous intersection negotiation.
func (v *Vehicle) Respawn(road Road, spawn Point, speed float64, notify *ObserverManager) {
	v.position = spawn
	v.SetSpeed(speed)
	v.facing = road.FacingFrom(spawn)
	v.currentRoad = road.Name
	v.binding = nil
	v.stopTarget = nil
	v.pendingTurn = TurnNone
	v.turnProgress = 0
	v.wait = Wait{}
	if prev := v.state; prev != StateMoving {
		v.state = StateMoving
		notify.NotifyVehicleStateChange(v.Snapshot(), prev, StateMoving)
	}
}

func (v *Vehicle) setState(to VehicleState, notify *ObserverManager) {
	from := v.state
	if from == to {
		return
	}
	if !CanVehicleTransition(from, to) {
		panic(fmt.Sprintf("core: vehicle %s: illegal transition %s -> %s", v.id, from, to))
	}
	v.state = to
	notify.NotifyVehicleStateChange(v.Snapshot(), from, to)
}

// IsApproaching reports whether an unbound, moving vehicle has entered the
// approach window of ix. The window is inclusive on X and exclusive on Y.
func (v *Vehicle) IsApproaching(ix *Intersection, params *Params) bool {
	if v.state != StateMoving || v.binding != nil {
		return false
	}
	c := ix.Position()
	return math.Abs(v.position.X-c.X) <= params.ApproachDistance &&
		math.Abs(v.position.Y-c.Y) < params.ApproachDistance
}

// Bind attaches the vehicle to ix and the signal for its facing, sets the
// stop point and enters Approaching.
func (v *Vehicle) Bind(ix *Intersection, env *Env) {
	v.binding = &Binding{Intersection: ix.Index(), Axis: v.facing.Axis()}
	stop := v.stopPointFor(ix.Position(), env.Params.StopBuffer)
	v.stopTarget = &stop
	v.setState(StateApproaching, env.Observers)
}

func (v *Vehicle) stopPointFor(center Point, buffer float64) Point {
	switch v.facing {
	case East:
		return NewPoint(center.X-buffer, v.position.Y)
	case West:
		return NewPoint(center.X+buffer, v.position.Y)
	case North:
		return NewPoint(v.position.X, center.Y-buffer)
	case South:
		return NewPoint(v.position.X, center.Y+buffer)
	default:
		panic(fmt.Sprintf("core: vehicle %s: unknown facing %d", v.id, int(v.facing)))
	}
}

// pastCenterBy returns how far the vehicle is beyond center along its facing.
// Negative values mean it has not reached it yet.
func (v *Vehicle) pastCenterBy(center Point) float64 {
	switch v.facing {
	case East:
		return v.position.X - center.X
	case West:
		return center.X - v.position.X
	case North:
		return v.position.Y - center.Y
	case South:
		return center.Y - v.position.Y
	default:
		panic(fmt.Sprintf("core: vehicle %s: unknown facing %d", v.id, int(v.facing)))
	}
}

// IsPastStopLine reports whether the vehicle has crossed the intersection center.
func (v *Vehicle) IsPastStopLine(center Point) bool {
	return v.pastCenterBy(center) > 0
}

func (v *Vehicle) hasCleared(ix *Intersection, params *Params) bool {
	return v.state == StateContinuing && v.pastCenterBy(ix.Position()) > params.ClearBuffer
}

func (v *Vehicle) release() {
	v.binding = nil
	v.stopTarget = nil
	v.pendingTurn = TurnNone
	v.turnProgress = 0
}

// Move runs one tick of motion. ix is the bound intersection, or nil.
func (v *Vehicle) Move(ix *Intersection, env *Env) {
	if v.binding != nil && ix != nil && v.hasCleared(ix, env.Params) {
		v.release()
		v.setState(StateMoving, env.Observers)
		v.moveStraight(env)
		return
	}

	switch v.state {
	case StateStopped:
	case StateTurning:
		v.moveTurn(ix, env)
	case StateMoving, StateBraking, StateContinuing:
		v.moveStraight(env)
	case StateApproaching, StateReasoning:
		panic(fmt.Sprintf("core: vehicle %s: motion requested while %s", v.id, v.state))
	default:
		panic(fmt.Sprintf("core: vehicle %s: unknown state %d", v.id, int(v.state)))
	}
}

func (v *Vehicle) moveStraight(env *Env) {
	p := env.Params
	switch v.state {
	case StateBraking:
		v.speed -= p.Deceleration * env.Dt
		if v.speed <= 0 || (v.stopTarget != nil && v.position.Within(*v.stopTarget, p.SnapTolerance)) {
			v.speed = 0
			v.setState(StateStopped, env.Observers)
		}
	case StateStopped:
		v.speed = 0
	default:
		if v.speed < v.targetSpeed {
			v.speed = math.Min(v.speed+p.Acceleration*env.Dt, v.targetSpeed)
		}
	}
	v.advance(v.speed * env.Dt / MetersPerUnit)
}

func (v *Vehicle) advance(distance float64) {
	switch v.facing {
	case East:
		v.position.X += distance
	case West:
		v.position.X -= distance
	case North:
		v.position.Y += distance
	case South:
		v.position.Y -= distance
	default:
		panic(fmt.Sprintf("core: vehicle %s: unknown facing %d", v.id, int(v.facing)))
	}
}

// moveTurn keeps the vehicle rolling through the intersection and rotates it
// once it has covered the turn length and sits on the center.
func (v *Vehicle) moveTurn(ix *Intersection, env *Env) {
	step := v.speed * env.Dt / MetersPerUnit
	turnLength := v.turnLength(env.Params) + env.Params.TurnLengthBase

	v.moveStraight(env)
	v.turnProgress += step

	if ix == nil || v.turnProgress < turnLength {
		return
	}
	if !v.position.Within(ix.Position(), env.Params.SnapTolerance) {
		return
	}
	v.completeTurn(ix, env)
}

func (v *Vehicle) turnLength(params *Params) float64 {
	switch v.facing {
	case North, South:
		return math.Mod(math.Abs(v.position.Y), params.CrossStreetSpacing)
	case East, West:
		return math.Mod(math.Abs(v.position.X), params.CrossStreetSpacing)
	default:
		panic(fmt.Sprintf("core: vehicle %s: unknown facing %d", v.id, int(v.facing)))
	}
}

func (v *Vehicle) completeTurn(ix *Intersection, env *Env) {
	switch v.pendingTurn {
	case TurnLeft:
		v.facing = v.facing.Left()
	case TurnRight:
		v.facing = v.facing.Right()
	default:
		panic(fmt.Sprintf("core: vehicle %s: turning with pending turn %s", v.id, v.pendingTurn))
	}
	if v.facing.IsHorizontal() {
		v.currentRoad = env.Params.MainRoadName
	} else {
		v.currentRoad = ix.StreetName()
	}
	v.setState(StateContinuing, env.Observers)
}

// VehicleSnapshot is a read-only copy of a vehicle's state.
type VehicleSnapshot struct {
	ID           string
	Plate        string
	Position     Point
	Speed        float64
	TargetSpeed  float64
	Facing       Direction
	PendingTurn  Turn
	TurnProgress float64
	CurrentRoad  string
	Binding      *Binding
	State        VehicleState
	StopTarget   *Point
	Wait         Wait
}

// Snapshot copies the vehicle state
func (v *Vehicle) Snapshot() VehicleSnapshot {
	return VehicleSnapshot{
		ID:           v.id,
		Plate:        v.plate,
		Position:     v.position,
		Speed:        v.speed,
		TargetSpeed:  v.targetSpeed,
		Facing:       v.facing,
		PendingTurn:  v.pendingTurn,
		TurnProgress: v.turnProgress,
		CurrentRoad:  v.currentRoad,
		Binding:      v.Binding(),
		State:        v.state,
		StopTarget:   v.StopTarget(),
		Wait:         v.wait,
	}
}

// SpeedKmh returns the speed in km/h truncated to two decimals.
func (s VehicleSnapshot) SpeedKmh() float64 {
	return truncate2(s.Speed * 3.6)
}
