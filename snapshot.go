package trafficsim

import (
	"github.com/anggasct/trafficsim/pkg/core"
	"github.com/samber/lo"
)

// Snapshot is an immutable view of the world after a command or tick.
// Hosts may hold on to it and read it from any goroutine.
type Snapshot struct {
	Tick          uint64
	SimTime       float64
	Running       bool
	Initiated     bool
	Roads         []core.Road
	Intersections []core.IntersectionSnapshot
	Vehicles      []core.VehicleSnapshot
}

// Snapshot returns the most recently published view without locking
func (s *Simulation) Snapshot() *Snapshot {
	return s.snapshot.Load()
}

// publish must be called with the write lock held.
func (s *Simulation) publish() {
	s.snapshot.Store(&Snapshot{
		Tick:          s.tickCount,
		SimTime:       s.simTime,
		Running:       s.isRunning,
		Initiated:     s.isInitiated,
		Roads:         append([]core.Road(nil), s.roads...),
		Intersections: lo.Map(s.intersections, func(ix *core.Intersection, _ int) core.IntersectionSnapshot { return ix.Snapshot() }),
		Vehicles:      lo.Map(s.vehicles, func(v *core.Vehicle, _ int) core.VehicleSnapshot { return v.Snapshot() }),
	})
}

// VehiclesInState counts the vehicles currently in state
func (snap *Snapshot) VehiclesInState(state core.VehicleState) int {
	return lo.CountBy(snap.Vehicles, func(v core.VehicleSnapshot) bool { return v.State == state })
}

// VehiclesByState groups vehicle counts by state
func (snap *Snapshot) VehiclesByState() map[core.VehicleState]int {
	counts := make(map[core.VehicleState]int)
	for _, v := range snap.Vehicles {
		counts[v.State]++
	}
	return counts
}

// Vehicle looks a vehicle up by ID
func (snap *Snapshot) Vehicle(id string) (core.VehicleSnapshot, bool) {
	return lo.Find(snap.Vehicles, func(v core.VehicleSnapshot) bool { return v.ID == id })
}
