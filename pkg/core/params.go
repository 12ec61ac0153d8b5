// Package core holds the simulation engine: signals, intersections, vehicles
// and the transition tables that constrain them.
package core

// SignalTimings holds the phase durations of a Signal, in seconds.
type SignalTimings struct {
	TurnGreen     float64
	StraightGreen float64
	Yellow        float64
}

// DefaultSignalTimings returns the stock 10/20/4 second cycle.
func DefaultSignalTimings() SignalTimings {
	return SignalTimings{
		TurnGreen:     10,
		StraightGreen: 20,
		Yellow:        4,
	}
}

// Params holds the timing and geometry constants shared by the engine entities.
// Distances are in world units, speeds in m/s, times in seconds.
type Params struct {
	Signal              SignalTimings
	ScheduleGracePeriod float64

	ApproachDistance float64
	StopBuffer       float64
	ClearBuffer      float64
	SnapTolerance    float64
	TurnLengthBase   float64

	Acceleration      float64
	Deceleration      float64
	TurnRetryInterval float64

	HalfHeight         float64
	MainRoadLength     float64
	CrossStreetSpacing float64
	MainRoadName       string
}

// DefaultParams returns the stock engine parameters.
func DefaultParams() Params {
	return Params{
		Signal:              DefaultSignalTimings(),
		ScheduleGracePeriod: 5,
		ApproachDistance:    10,
		StopBuffer:          5,
		ClearBuffer:         10.5,
		SnapTolerance:       0.1,
		TurnLengthBase:      5,
		Acceleration:        2.5,
		Deceleration:        5,
		TurnRetryInterval:   30,
		HalfHeight:          50,
		MainRoadLength:      400,
		CrossStreetSpacing:  100,
		MainRoadName:        "Main Road",
	}
}
