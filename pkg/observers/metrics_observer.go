package observers

import (
	"sync"

	"github.com/anggasct/trafficsim/pkg/core"
)

// MetricsObserver collects counters about a running simulation. Time spent
// in a state is measured in simulated seconds, at tick resolution.
type MetricsObserver struct {
	core.BaseObserver
	stateVisits      map[core.VehicleState]int
	stateTimeSpent   map[core.VehicleState]float64
	transitionCounts map[string]int
	phaseCounts      map[core.Phase]int
	turnRequests     int
	turnGrants       int
	spawns           int
	respawns         int
	ticks            uint64
	simTime          float64
	errorCount       int
	lastStateEntry   map[string]float64
	mutex            sync.RWMutex
}

// NewMetricsObserver creates a new metrics observer
func NewMetricsObserver() *MetricsObserver {
	return &MetricsObserver{
		stateVisits:      make(map[core.VehicleState]int),
		stateTimeSpent:   make(map[core.VehicleState]float64),
		transitionCounts: make(map[string]int),
		phaseCounts:      make(map[core.Phase]int),
		lastStateEntry:   make(map[string]float64),
	}
}

// OnVehicleSpawned counts spawns and starts the Moving clock
func (o *MetricsObserver) OnVehicleSpawned(v core.VehicleSnapshot) {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	o.spawns++
	o.stateVisits[v.State]++
	o.lastStateEntry[v.ID] = o.simTime
}

// OnVehicleRespawned counts respawns
func (o *MetricsObserver) OnVehicleRespawned(v core.VehicleSnapshot) {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	o.respawns++
}

// OnVehicleStateChange records visits, transitions and time spent
func (o *MetricsObserver) OnVehicleStateChange(v core.VehicleSnapshot, from, to core.VehicleState) {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	if entered, ok := o.lastStateEntry[v.ID]; ok {
		o.stateTimeSpent[from] += o.simTime - entered
	}
	o.lastStateEntry[v.ID] = o.simTime
	o.stateVisits[to]++
	o.transitionCounts[from.String()+"->"+to.String()]++
}

// OnSignalPhaseChange counts phase entries
func (o *MetricsObserver) OnSignalPhaseChange(ix core.IntersectionSnapshot, axis core.Axis, from, to core.Phase) {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	o.phaseCounts[to]++
}

// OnTurnRequested counts turn requests
func (o *MetricsObserver) OnTurnRequested(ix core.IntersectionSnapshot, axis core.Axis, vehicleID string) {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	o.turnRequests++
}

// OnTurnGranted counts served turn requests
func (o *MetricsObserver) OnTurnGranted(ix core.IntersectionSnapshot, axis core.Axis) {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	o.turnGrants++
}

// OnTick tracks the tick counter and simulated time
func (o *MetricsObserver) OnTick(tick uint64, simTime float64) {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	o.ticks = tick
	o.simTime = simTime
}

// OnSimulationReset forgets per-vehicle clocks; counters are kept
func (o *MetricsObserver) OnSimulationReset() {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	o.lastStateEntry = make(map[string]float64)
	o.simTime = 0
}

// OnError records error metrics
func (o *MetricsObserver) OnError(err error) {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	o.errorCount++
}

// GetStateVisitCounts returns the number of times each vehicle state was entered
func (o *MetricsObserver) GetStateVisitCounts() map[core.VehicleState]int {
	o.mutex.RLock()
	defer o.mutex.RUnlock()

	result := make(map[core.VehicleState]int, len(o.stateVisits))
	for state, count := range o.stateVisits {
		result[state] = count
	}
	return result
}

// GetStateTimeSpent returns simulated seconds spent in each left state
func (o *MetricsObserver) GetStateTimeSpent() map[core.VehicleState]float64 {
	o.mutex.RLock()
	defer o.mutex.RUnlock()

	result := make(map[core.VehicleState]float64, len(o.stateTimeSpent))
	for state, spent := range o.stateTimeSpent {
		result[state] = spent
	}
	return result
}

// GetTransitionCounts returns the number of times each "From->To" transition occurred
func (o *MetricsObserver) GetTransitionCounts() map[string]int {
	o.mutex.RLock()
	defer o.mutex.RUnlock()

	result := make(map[string]int, len(o.transitionCounts))
	for transition, count := range o.transitionCounts {
		result[transition] = count
	}
	return result
}

// GetPhaseCounts returns the number of times each signal phase was entered
func (o *MetricsObserver) GetPhaseCounts() map[core.Phase]int {
	o.mutex.RLock()
	defer o.mutex.RUnlock()

	result := make(map[core.Phase]int, len(o.phaseCounts))
	for phase, count := range o.phaseCounts {
		result[phase] = count
	}
	return result
}

// GetTurnRequests returns the number of turn requests
func (o *MetricsObserver) GetTurnRequests() int {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	return o.turnRequests
}

// GetTurnGrants returns the number of served turn requests
func (o *MetricsObserver) GetTurnGrants() int {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	return o.turnGrants
}

// GetSpawnCount returns the number of spawned vehicles
func (o *MetricsObserver) GetSpawnCount() int {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	return o.spawns
}

// GetRespawnCount returns the number of respawns
func (o *MetricsObserver) GetRespawnCount() int {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	return o.respawns
}

// GetTickCount returns the last observed tick number
func (o *MetricsObserver) GetTickCount() uint64 {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	return o.ticks
}

// GetErrorCount returns the number of errors
func (o *MetricsObserver) GetErrorCount() int {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	return o.errorCount
}

// Reset resets all metrics
func (o *MetricsObserver) Reset() {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	o.stateVisits = make(map[core.VehicleState]int)
	o.stateTimeSpent = make(map[core.VehicleState]float64)
	o.transitionCounts = make(map[string]int)
	o.phaseCounts = make(map[core.Phase]int)
	o.turnRequests = 0
	o.turnGrants = 0
	o.spawns = 0
	o.respawns = 0
	o.ticks = 0
	o.errorCount = 0
	o.lastStateEntry = make(map[string]float64)
}
