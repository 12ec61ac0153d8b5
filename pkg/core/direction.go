package core

import "fmt"

// Direction is the facing of a vehicle. North is +Y, East is +X.
type Direction int

const (
	North Direction = iota
	South
	East
	West
)

func (d Direction) String() string {
	switch d {
	case North:
		return "North"
	case South:
		return "South"
	case East:
		return "East"
	case West:
		return "West"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// Left returns the facing after a left turn.
func (d Direction) Left() Direction {
	switch d {
	case North:
		return West
	case West:
		return South
	case South:
		return East
	case East:
		return North
	default:
		panic(fmt.Sprintf("core: cannot rotate unknown direction %d", int(d)))
	}
}

// Right returns the facing after a right turn.
func (d Direction) Right() Direction {
	switch d {
	case North:
		return East
	case East:
		return South
	case South:
		return West
	case West:
		return North
	default:
		panic(fmt.Sprintf("core: cannot rotate unknown direction %d", int(d)))
	}
}

// IsHorizontal reports whether the direction runs along the main road.
func (d Direction) IsHorizontal() bool {
	switch d {
	case East, West:
		return true
	case North, South:
		return false
	default:
		panic(fmt.Sprintf("core: unknown direction %d", int(d)))
	}
}

// Axis returns the signal axis governing traffic with this facing.
func (d Direction) Axis() Axis {
	if d.IsHorizontal() {
		return AxisEastWest
	}
	return AxisNorthSouth
}

// Turn is the maneuver a vehicle commits to at an intersection.
// The zero value means no turn has been chosen.
type Turn int

const (
	TurnNone Turn = iota
	TurnLeft
	TurnRight
	TurnStraight
)

// turnChoices is the order used when drawing a random maneuver.
var turnChoices = [...]Turn{TurnLeft, TurnRight, TurnStraight}

func (t Turn) String() string {
	switch t {
	case TurnNone:
		return "None"
	case TurnLeft:
		return "Left"
	case TurnRight:
		return "Right"
	case TurnStraight:
		return "Straight"
	default:
		return fmt.Sprintf("Turn(%d)", int(t))
	}
}

// Axis identifies one of the two signals of an intersection.
type Axis int

const (
	AxisNorthSouth Axis = iota
	AxisEastWest
)

func (a Axis) String() string {
	switch a {
	case AxisNorthSouth:
		return "NS"
	case AxisEastWest:
		return "EW"
	default:
		return fmt.Sprintf("Axis(%d)", int(a))
	}
}

// Other returns the crossing axis.
func (a Axis) Other() Axis {
	if a == AxisNorthSouth {
		return AxisEastWest
	}
	return AxisNorthSouth
}
