package core

import "fmt"

// Phase is the light shown by a Signal.
type Phase int

const (
	PhaseTurnGreen Phase = iota
	PhaseTurnYellow
	PhaseStraightGreen
	PhaseStraightYellow
	PhaseRed
)

func (p Phase) String() string {
	switch p {
	case PhaseTurnGreen:
		return "TurnGreen"
	case PhaseTurnYellow:
		return "TurnYellow"
	case PhaseStraightGreen:
		return "StraightGreen"
	case PhaseStraightYellow:
		return "StraightYellow"
	case PhaseRed:
		return "Red"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// SchedulePhase is the step of an intersection's four-step rotation.
type SchedulePhase int

const (
	ScheduleNsTurn SchedulePhase = iota
	ScheduleNsStraight
	ScheduleEwTurn
	ScheduleEwStraight
)

func (s SchedulePhase) String() string {
	switch s {
	case ScheduleNsTurn:
		return "NsTurn"
	case ScheduleNsStraight:
		return "NsStraight"
	case ScheduleEwTurn:
		return "EwTurn"
	case ScheduleEwStraight:
		return "EwStraight"
	default:
		return fmt.Sprintf("SchedulePhase(%d)", int(s))
	}
}

// VehicleState is the behavioral state of a vehicle.
type VehicleState int

const (
	StateMoving VehicleState = iota
	StateApproaching
	StateReasoning
	StateBraking
	StateStopped
	StateTurning
	StateContinuing
)

func (s VehicleState) String() string {
	switch s {
	case StateMoving:
		return "Moving"
	case StateApproaching:
		return "Approaching"
	case StateReasoning:
		return "Reasoning"
	case StateBraking:
		return "Braking"
	case StateStopped:
		return "Stopped"
	case StateTurning:
		return "Turning"
	case StateContinuing:
		return "Continuing"
	default:
		return fmt.Sprintf("VehicleState(%d)", int(s))
	}
}

// AllVehicleStates lists every vehicle state in declaration order.
func AllVehicleStates() []VehicleState {
	return []VehicleState{
		StateMoving, StateApproaching, StateReasoning, StateBraking,
		StateStopped, StateTurning, StateContinuing,
	}
}

// Transition is a declared edge of one of the engine state machines.
type Transition struct {
	Source  string
	Target  string
	Trigger string
}

// MachineDescription describes a state machine for export.
type MachineDescription struct {
	Name        string
	Initial     string
	States      []string
	Transitions []Transition
}

type phaseEdge struct {
	from, to Phase
	trigger  string
}

// signalCycle drives Signal.Update; the forced edges are owned by the intersection.
var signalCycle = map[Phase]Phase{
	PhaseTurnGreen:      PhaseTurnYellow,
	PhaseTurnYellow:     PhaseStraightGreen,
	PhaseStraightGreen:  PhaseStraightYellow,
	PhaseStraightYellow: PhaseRed,
}

var signalForced = []phaseEdge{
	{PhaseRed, PhaseStraightGreen, "set green"},
	{PhaseTurnYellow, PhaseStraightGreen, "set green"},
	{PhaseStraightGreen, PhaseStraightGreen, "set green"},
	{PhaseRed, PhaseTurnGreen, "set turn green"},
	{PhaseTurnYellow, PhaseTurnGreen, "set turn green"},
	{PhaseStraightGreen, PhaseTurnGreen, "set turn green"},
	{PhaseTurnYellow, PhaseRed, "hold red"},
	{PhaseStraightGreen, PhaseRed, "hold red"},
	{PhaseStraightYellow, PhaseRed, "hold red"},
}

type scheduleEdge struct {
	from, to SchedulePhase
	trigger  string
}

var scheduleEdges = []scheduleEdge{
	{ScheduleNsTurn, ScheduleNsTurn, "turn granted"},
	{ScheduleNsTurn, ScheduleNsStraight, "no request"},
	{ScheduleNsStraight, ScheduleEwTurn, "straight granted"},
	{ScheduleEwTurn, ScheduleEwTurn, "turn granted"},
	{ScheduleEwTurn, ScheduleEwStraight, "no request"},
	{ScheduleEwStraight, ScheduleNsTurn, "straight granted"},
}

type vehicleEdge struct {
	from, to VehicleState
	trigger  string
}

// vehicleEdges are the transitions setState accepts. Respawn is an
// out-of-band reset to Moving and is not listed here.
var vehicleEdges = []vehicleEdge{
	{StateMoving, StateApproaching, "approach detected"},
	{StateApproaching, StateReasoning, "turn chosen"},
	{StateReasoning, StateContinuing, "straight allowed"},
	{StateReasoning, StateTurning, "turn allowed"},
	{StateReasoning, StateBraking, "light blocks"},
	{StateBraking, StateContinuing, "straight allowed"},
	{StateBraking, StateTurning, "turn allowed"},
	{StateBraking, StateStopped, "speed zero"},
	{StateStopped, StateContinuing, "straight green"},
	{StateStopped, StateTurning, "turn allowed"},
	{StateTurning, StateContinuing, "turn completed"},
	{StateContinuing, StateMoving, "cleared"},
}

var vehicleAllowed = func() map[VehicleState]map[VehicleState]bool {
	allowed := make(map[VehicleState]map[VehicleState]bool)
	for _, e := range vehicleEdges {
		if allowed[e.from] == nil {
			allowed[e.from] = make(map[VehicleState]bool)
		}
		allowed[e.from][e.to] = true
	}
	return allowed
}()

// CanVehicleTransition reports whether from -> to is a declared vehicle edge.
func CanVehicleTransition(from, to VehicleState) bool {
	return vehicleAllowed[from][to]
}

// SignalMachine describes the Signal phase machine, including the edges the
// owning intersection forces.
func SignalMachine() MachineDescription {
	d := MachineDescription{Name: "Signal", Initial: PhaseRed.String()}
	for p := PhaseTurnGreen; p <= PhaseRed; p++ {
		d.States = append(d.States, p.String())
	}
	for p := PhaseTurnGreen; p < PhaseRed; p++ {
		d.Transitions = append(d.Transitions, Transition{p.String(), signalCycle[p].String(), "timer expired"})
	}
	for _, e := range signalForced {
		d.Transitions = append(d.Transitions, Transition{e.from.String(), e.to.String(), e.trigger})
	}
	return d
}

// ScheduleMachine describes the intersection's four-step rotation.
func ScheduleMachine() MachineDescription {
	d := MachineDescription{Name: "Schedule", Initial: ScheduleEwStraight.String()}
	for s := ScheduleNsTurn; s <= ScheduleEwStraight; s++ {
		d.States = append(d.States, s.String())
	}
	for _, e := range scheduleEdges {
		d.Transitions = append(d.Transitions, Transition{e.from.String(), e.to.String(), e.trigger})
	}
	return d
}

// VehicleMachine describes the vehicle behavior machine.
func VehicleMachine() MachineDescription {
	d := MachineDescription{Name: "Vehicle", Initial: StateMoving.String()}
	for _, s := range AllVehicleStates() {
		d.States = append(d.States, s.String())
	}
	for _, e := range vehicleEdges {
		d.Transitions = append(d.Transitions, Transition{e.from.String(), e.to.String(), e.trigger})
	}
	return d
}
