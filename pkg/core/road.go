package core

// Road is a straight road with an entry point at each end.
// The main road runs east-west along y=0; side roads run north-south and
// cross it at multiples of the cross street spacing.
type Road struct {
	Name        string
	IsMain      bool
	SpawnPoints [2]Point
}

// NewMainRoad creates the east-west road spanning [0, MainRoadLength].
func NewMainRoad(params *Params) Road {
	return Road{
		Name:   params.MainRoadName,
		IsMain: true,
		SpawnPoints: [2]Point{
			NewPoint(0, 0),
			NewPoint(params.MainRoadLength, 0),
		},
	}
}

// NewSideRoad creates the north-south road crossing the main road at
// index*CrossStreetSpacing.
func NewSideRoad(name string, index int, params *Params) Road {
	x := float64(index) * params.CrossStreetSpacing
	return Road{
		Name: name,
		SpawnPoints: [2]Point{
			NewPoint(x, params.HalfHeight),
			NewPoint(x, -params.HalfHeight),
		},
	}
}

// CrossingX returns the x coordinate where a side road meets the main road.
func (r Road) CrossingX() float64 {
	return r.SpawnPoints[0].X
}

// EastEnd returns the eastern spawn point of the main road.
func (r Road) EastEnd() Point {
	return r.SpawnPoints[1]
}

// WidenEast moves the main road's east end to intersectionCount*spacing.
// The road never shrinks; it reports whether the end moved.
func (r *Road) WidenEast(intersectionCount int, spacing float64) bool {
	if !r.IsMain {
		return false
	}
	x := float64(intersectionCount) * spacing
	if x <= r.SpawnPoints[1].X {
		return false
	}
	r.SpawnPoints[1].Set(x, 0)
	return true
}

// FacingFrom returns the direction of travel for a vehicle entering at spawn.
func (r Road) FacingFrom(spawn Point) Direction {
	if r.IsMain {
		if spawn.X <= r.SpawnPoints[0].X {
			return East
		}
		return West
	}
	if spawn.Y > 0 {
		return South
	}
	return North
}
