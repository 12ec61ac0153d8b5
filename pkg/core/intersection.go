package core

import "fmt"

// Intersection is the crossing of the main road with one side road. It owns
// a signal per axis and rotates them through NsTurn, NsStraight, EwTurn and
// EwStraight. A turn step is only served when its signal holds a request.
type Intersection struct {
	id         string
	index      int
	position   Point
	streetName string

	ns *Signal
	ew *Signal

	schedulePhase     SchedulePhase
	scheduleTimer     float64
	lightLogicRunning bool

	timings SignalTimings
	notify  *ObserverManager
}

// NewIntersection creates an intersection with EW green, NS red and the
// schedule parked on EwStraight for the grace period.
func NewIntersection(id string, index int, position Point, streetName string, params *Params, notify *ObserverManager) *Intersection {
	ix := &Intersection{
		id:                id,
		index:             index,
		position:          position,
		streetName:        streetName,
		schedulePhase:     ScheduleEwStraight,
		scheduleTimer:     params.ScheduleGracePeriod,
		lightLogicRunning: true,
		timings:           params.Signal,
		notify:            notify,
	}
	ix.ns = NewSignal(AxisNorthSouth, params.Signal)
	ix.ew = NewSignal(AxisEastWest, params.Signal)
	ix.ns.owner = ix
	ix.ew.owner = ix
	ix.ew.SetGreen()
	return ix
}

func (ix *Intersection) ID() string                   { return ix.id }
func (ix *Intersection) Index() int                   { return ix.index }
func (ix *Intersection) Position() Point              { return ix.position }
func (ix *Intersection) StreetName() string           { return ix.streetName }
func (ix *Intersection) SchedulePhase() SchedulePhase { return ix.schedulePhase }
func (ix *Intersection) ScheduleTimer() float64       { return ix.scheduleTimer }
func (ix *Intersection) LightLogicRunning() bool      { return ix.lightLogicRunning }

// NS returns the north-south signal
func (ix *Intersection) NS() *Signal { return ix.ns }

// EW returns the east-west signal
func (ix *Intersection) EW() *Signal { return ix.ew }

// Signal returns the signal for an axis
func (ix *Intersection) Signal(axis Axis) *Signal {
	switch axis {
	case AxisNorthSouth:
		return ix.ns
	case AxisEastWest:
		return ix.ew
	default:
		panic(fmt.Sprintf("core: unknown axis %d", int(axis)))
	}
}

// SignalFor returns the signal governing traffic with the given facing
func (ix *Intersection) SignalFor(facing Direction) *Signal {
	return ix.Signal(facing.Axis())
}

// PauseLightLogic freezes every timer of the intersection
func (ix *Intersection) PauseLightLogic() {
	ix.lightLogicRunning = false
}

// ResumeLightLogic lets the timers run again
func (ix *Intersection) ResumeLightLogic() {
	ix.lightLogicRunning = true
}

// Update advances both signals and the schedule by dt seconds.
func (ix *Intersection) Update(dt float64) {
	if !ix.lightLogicRunning {
		return
	}
	ix.ns.Update(dt)
	ix.ew.Update(dt)

	ix.scheduleTimer -= dt
	if ix.scheduleTimer <= 0 {
		ix.switchPhase()
	}
}

func (ix *Intersection) switchPhase() {
	switch ix.schedulePhase {
	case ScheduleNsTurn:
		ix.serveTurn(AxisNorthSouth, ScheduleNsStraight)
	case ScheduleNsStraight:
		ix.serveStraight(AxisNorthSouth, ScheduleEwTurn)
	case ScheduleEwTurn:
		ix.serveTurn(AxisEastWest, ScheduleEwStraight)
	case ScheduleEwStraight:
		ix.serveStraight(AxisEastWest, ScheduleNsTurn)
	default:
		panic(fmt.Sprintf("core: intersection %s in unknown schedule phase %d", ix.streetName, int(ix.schedulePhase)))
	}
}

// serveTurn grants the turn phase if requested; otherwise the paired
// straight step runs immediately.
func (ix *Intersection) serveTurn(axis Axis, straight SchedulePhase) {
	sig := ix.Signal(axis)
	if !sig.WaitingTurnRequest() {
		ix.schedulePhase = straight
		ix.switchPhase()
		return
	}
	ix.Signal(axis.Other()).holdRed()
	sig.SetTurnGreen()
	sig.ClearWaitingTurnRequest()
	ix.scheduleTimer = ix.timings.TurnGreen + ix.timings.Yellow
	ix.notify.NotifyTurnGranted(ix.Snapshot(), axis)
}

func (ix *Intersection) serveStraight(axis Axis, next SchedulePhase) {
	ix.Signal(axis.Other()).holdRed()
	ix.Signal(axis).SetGreen()
	ix.scheduleTimer = ix.timings.StraightGreen + ix.timings.Yellow
	ix.schedulePhase = next
}

// IntersectionSnapshot is a read-only copy of an intersection's state.
type IntersectionSnapshot struct {
	ID                string
	Index             int
	Position          Point
	StreetName        string
	NS                SignalSnapshot
	EW                SignalSnapshot
	SchedulePhase     SchedulePhase
	ScheduleTimer     float64
	LightLogicRunning bool
}

// Snapshot copies the intersection state
func (ix *Intersection) Snapshot() IntersectionSnapshot {
	return IntersectionSnapshot{
		ID:                ix.id,
		Index:             ix.index,
		Position:          ix.position,
		StreetName:        ix.streetName,
		NS:                ix.ns.Snapshot(),
		EW:                ix.ew.Snapshot(),
		SchedulePhase:     ix.schedulePhase,
		ScheduleTimer:     ix.scheduleTimer,
		LightLogicRunning: ix.lightLogicRunning,
	}
}

// BothAxesActive reports a broken mutual exclusion.
func (s IntersectionSnapshot) BothAxesActive() bool {
	return s.NS.Phase != PhaseRed && s.EW.Phase != PhaseRed
}
