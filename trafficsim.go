// Package trafficsim is a discrete-time traffic simulation engine. Vehicles
// drive along a main road crossed by side roads, negotiate signaled
// intersections (braking, queueing, requesting and taking turn phases) and
// re-enter the world when they leave it. The host owns the clock: it calls
// Tick with the elapsed seconds, or hands the simulation to a Runner.
package trafficsim

import (
	"github.com/anggasct/trafficsim/pkg/core"
	"github.com/anggasct/trafficsim/pkg/observers"
)

// Core types
type (
	// Point is a position in world units (1 unit = 10 m)
	Point = core.Point

	// Direction is a vehicle facing
	Direction = core.Direction

	// Turn is the maneuver a vehicle takes at an intersection
	Turn = core.Turn

	// Axis identifies the north-south or east-west signal of an intersection
	Axis = core.Axis

	// Road is a main or side road with its two entry points
	Road = core.Road

	// Phase is the light shown by a signal
	Phase = core.Phase

	// SchedulePhase is the step of an intersection's rotation
	SchedulePhase = core.SchedulePhase

	// VehicleState is the behavioral state of a vehicle
	VehicleState = core.VehicleState

	// Binding ties a vehicle to an intersection and signal axis
	Binding = core.Binding

	// Wait is the retry timer of a stopped left-turner
	Wait = core.Wait

	// Params holds the engine constants derived from a Config
	Params = core.Params

	// Random is the injectable source of random decisions
	Random = core.Random

	// Clock is the injectable wall clock
	Clock = core.Clock
)

// Snapshot types
type (
	// VehicleSnapshot is a read-only copy of a vehicle
	VehicleSnapshot = core.VehicleSnapshot

	// IntersectionSnapshot is a read-only copy of an intersection
	IntersectionSnapshot = core.IntersectionSnapshot

	// SignalSnapshot is a read-only copy of a signal
	SignalSnapshot = core.SignalSnapshot
)

// Observer types
type (
	// Observer receives world notifications
	Observer = core.Observer

	// ExtendedObserver adds the optional notifications
	ExtendedObserver = core.ExtendedObserver

	// BaseObserver provides no-op implementations to embed
	BaseObserver = core.BaseObserver

	// LoggingObserver logs world events through logrus
	LoggingObserver = observers.LoggingObserver

	// MetricsObserver counts world events
	MetricsObserver = observers.MetricsObserver

	// ValidationObserver records invariant violations
	ValidationObserver = observers.ValidationObserver

	// LogLevel is the verbosity threshold of a LoggingObserver
	LogLevel = observers.LogLevel
)

// Logging observer levels
const (
	LogError   = observers.LogError
	LogWarning = observers.LogWarning
	LogInfo    = observers.LogInfo
	LogDebug   = observers.LogDebug
)

// Directions
const (
	North = core.North
	South = core.South
	East  = core.East
	West  = core.West
)

// Turns
const (
	TurnNone     = core.TurnNone
	TurnLeft     = core.TurnLeft
	TurnRight    = core.TurnRight
	TurnStraight = core.TurnStraight
)

// Vehicle states
const (
	StateMoving      = core.StateMoving
	StateApproaching = core.StateApproaching
	StateReasoning   = core.StateReasoning
	StateBraking     = core.StateBraking
	StateStopped     = core.StateStopped
	StateTurning     = core.StateTurning
	StateContinuing  = core.StateContinuing
)

// Signal phases
const (
	PhaseTurnGreen      = core.PhaseTurnGreen
	PhaseTurnYellow     = core.PhaseTurnYellow
	PhaseStraightGreen  = core.PhaseStraightGreen
	PhaseStraightYellow = core.PhaseStraightYellow
	PhaseRed            = core.PhaseRed
)

// Constructors
var (
	// NewRandom creates a seeded random source
	NewRandom = core.NewRandom

	// NewLoggingObserver creates a logrus-backed logging observer
	NewLoggingObserver = observers.NewLoggingObserver

	// NewMetricsObserver creates a metrics observer
	NewMetricsObserver = observers.NewMetricsObserver

	// NewValidationObserver creates an invariant validation observer
	NewValidationObserver = observers.NewValidationObserver
)
