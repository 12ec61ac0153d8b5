package core

import "fmt"

// Observer receives notifications about the simulated world.
// Callbacks run synchronously on the ticking goroutine.
type Observer interface {
	// Required methods

	// OnIntersectionAdded is called after a side road and its intersection are created
	OnIntersectionAdded(ix IntersectionSnapshot)
}

// ExtendedObserver provides additional optional observation methods
type ExtendedObserver interface {
	Observer

	// OnRoadAdded is called for every road, including the main road
	OnRoadAdded(road Road)

	// OnVehicleSpawned is called when a new vehicle enters the world
	OnVehicleSpawned(v VehicleSnapshot)

	// OnVehicleRespawned is called when an out-of-bounds vehicle is re-entered
	OnVehicleRespawned(v VehicleSnapshot)

	// OnVehicleStateChange is called after a vehicle changes behavioral state
	OnVehicleStateChange(v VehicleSnapshot, from, to VehicleState)

	// OnSignalPhaseChange is called after a signal changes phase
	OnSignalPhaseChange(ix IntersectionSnapshot, axis Axis, from, to Phase)

	// OnTurnRequested is called when a stopped vehicle asks for a turn phase
	OnTurnRequested(ix IntersectionSnapshot, axis Axis, vehicleID string)

	// OnTurnGranted is called when the scheduler serves a turn request
	OnTurnGranted(ix IntersectionSnapshot, axis Axis)

	// OnSimulationStarted is called when the simulation is started
	OnSimulationStarted()

	// OnSimulationPaused is called when the simulation is paused
	OnSimulationPaused()

	// OnSimulationResumed is called when the simulation continues after a pause
	OnSimulationResumed()

	// OnSimulationReset is called after the world has been cleared
	OnSimulationReset()

	// OnTick is called after every applied tick
	OnTick(tick uint64, simTime float64)

	// OnError is called when an error occurs, including observer panics
	OnError(err error)
}

// BaseObserver provides a default implementation with no-op methods
type BaseObserver struct{}

// OnIntersectionAdded implements the required Observer method
func (o *BaseObserver) OnIntersectionAdded(ix IntersectionSnapshot) {}

// OnRoadAdded implements the optional ExtendedObserver method
func (o *BaseObserver) OnRoadAdded(road Road) {}

// OnVehicleSpawned implements the optional ExtendedObserver method
func (o *BaseObserver) OnVehicleSpawned(v VehicleSnapshot) {}

// OnVehicleRespawned implements the optional ExtendedObserver method
func (o *BaseObserver) OnVehicleRespawned(v VehicleSnapshot) {}

// OnVehicleStateChange implements the optional ExtendedObserver method
func (o *BaseObserver) OnVehicleStateChange(v VehicleSnapshot, from, to VehicleState) {}

// OnSignalPhaseChange implements the optional ExtendedObserver method
func (o *BaseObserver) OnSignalPhaseChange(ix IntersectionSnapshot, axis Axis, from, to Phase) {}

// OnTurnRequested implements the optional ExtendedObserver method
func (o *BaseObserver) OnTurnRequested(ix IntersectionSnapshot, axis Axis, vehicleID string) {}

// OnTurnGranted implements the optional ExtendedObserver method
func (o *BaseObserver) OnTurnGranted(ix IntersectionSnapshot, axis Axis) {}

// OnSimulationStarted implements the optional ExtendedObserver method
func (o *BaseObserver) OnSimulationStarted() {}

// OnSimulationPaused implements the optional ExtendedObserver method
func (o *BaseObserver) OnSimulationPaused() {}

// OnSimulationResumed implements the optional ExtendedObserver method
func (o *BaseObserver) OnSimulationResumed() {}

// OnSimulationReset implements the optional ExtendedObserver method
func (o *BaseObserver) OnSimulationReset() {}

// OnTick implements the optional ExtendedObserver method
func (o *BaseObserver) OnTick(tick uint64, simTime float64) {}

// OnError implements the optional ExtendedObserver method
func (o *BaseObserver) OnError(err error) {}

// ObserverManager fans notifications out to registered observers.
// A nil manager drops every notification.
type ObserverManager struct {
	observers []Observer
}

// NewObserverManager creates a new observer manager
func NewObserverManager() *ObserverManager {
	return &ObserverManager{
		observers: make([]Observer, 0),
	}
}

// AddObserver adds an observer to the manager
func (om *ObserverManager) AddObserver(observer Observer) {
	om.observers = append(om.observers, observer)
}

// RemoveObserver removes an observer from the manager
func (om *ObserverManager) RemoveObserver(observer Observer) {
	for i, obs := range om.observers {
		if obs == observer {
			om.observers = append(om.observers[:i], om.observers[i+1:]...)
			break
		}
	}
}

// Len returns the number of registered observers
func (om *ObserverManager) Len() int {
	if om == nil {
		return 0
	}
	return len(om.observers)
}

func (om *ObserverManager) snapshot() []Observer {
	if om == nil || len(om.observers) == 0 {
		return nil
	}
	observers := make([]Observer, len(om.observers))
	copy(observers, om.observers)
	return observers
}

// reportPanic forwards a recovered observer panic to the observer's OnError.
// A panic raised by OnError itself is swallowed.
func reportPanic(observer Observer, method string, r interface{}) {
	extObs, ok := observer.(ExtendedObserver)
	if !ok {
		return
	}
	func() {
		defer func() { recover() }()
		extObs.OnError(fmt.Errorf("observer panic in %s: %v", method, r))
	}()
}

// NotifyIntersectionAdded notifies all observers of a new intersection
func (om *ObserverManager) NotifyIntersectionAdded(ix IntersectionSnapshot) {
	for _, observer := range om.snapshot() {
		func() {
			defer func() {
				if r := recover(); r != nil {
					reportPanic(observer, "OnIntersectionAdded", r)
				}
			}()
			observer.OnIntersectionAdded(ix)
		}()
	}
}

func (om *ObserverManager) notifyExtended(method string, fn func(ExtendedObserver)) {
	for _, observer := range om.snapshot() {
		extObs, ok := observer.(ExtendedObserver)
		if !ok {
			continue
		}
		func() {
			defer func() {
				if r := recover(); r != nil {
					reportPanic(observer, method, r)
				}
			}()
			fn(extObs)
		}()
	}
}

// NotifyRoadAdded notifies all observers of a new road
func (om *ObserverManager) NotifyRoadAdded(road Road) {
	om.notifyExtended("OnRoadAdded", func(o ExtendedObserver) { o.OnRoadAdded(road) })
}

// NotifyVehicleSpawned notifies all observers of a new vehicle
func (om *ObserverManager) NotifyVehicleSpawned(v VehicleSnapshot) {
	om.notifyExtended("OnVehicleSpawned", func(o ExtendedObserver) { o.OnVehicleSpawned(v) })
}

// NotifyVehicleRespawned notifies all observers of a respawn
func (om *ObserverManager) NotifyVehicleRespawned(v VehicleSnapshot) {
	om.notifyExtended("OnVehicleRespawned", func(o ExtendedObserver) { o.OnVehicleRespawned(v) })
}

// NotifyVehicleStateChange notifies all observers of a vehicle state change
func (om *ObserverManager) NotifyVehicleStateChange(v VehicleSnapshot, from, to VehicleState) {
	om.notifyExtended("OnVehicleStateChange", func(o ExtendedObserver) { o.OnVehicleStateChange(v, from, to) })
}

// NotifySignalPhaseChange notifies all observers of a signal phase change
func (om *ObserverManager) NotifySignalPhaseChange(ix IntersectionSnapshot, axis Axis, from, to Phase) {
	om.notifyExtended("OnSignalPhaseChange", func(o ExtendedObserver) { o.OnSignalPhaseChange(ix, axis, from, to) })
}

// NotifyTurnRequested notifies all observers of a turn request
func (om *ObserverManager) NotifyTurnRequested(ix IntersectionSnapshot, axis Axis, vehicleID string) {
	om.notifyExtended("OnTurnRequested", func(o ExtendedObserver) { o.OnTurnRequested(ix, axis, vehicleID) })
}

// NotifyTurnGranted notifies all observers of a served turn request
func (om *ObserverManager) NotifyTurnGranted(ix IntersectionSnapshot, axis Axis) {
	om.notifyExtended("OnTurnGranted", func(o ExtendedObserver) { o.OnTurnGranted(ix, axis) })
}

// NotifySimulationStarted notifies all observers that the simulation started
func (om *ObserverManager) NotifySimulationStarted() {
	om.notifyExtended("OnSimulationStarted", func(o ExtendedObserver) { o.OnSimulationStarted() })
}

// NotifySimulationPaused notifies all observers that the simulation paused
func (om *ObserverManager) NotifySimulationPaused() {
	om.notifyExtended("OnSimulationPaused", func(o ExtendedObserver) { o.OnSimulationPaused() })
}

// NotifySimulationResumed notifies all observers that the simulation resumed
func (om *ObserverManager) NotifySimulationResumed() {
	om.notifyExtended("OnSimulationResumed", func(o ExtendedObserver) { o.OnSimulationResumed() })
}

// NotifySimulationReset notifies all observers that the world was cleared
func (om *ObserverManager) NotifySimulationReset() {
	om.notifyExtended("OnSimulationReset", func(o ExtendedObserver) { o.OnSimulationReset() })
}

// NotifyTick notifies all observers of an applied tick
func (om *ObserverManager) NotifyTick(tick uint64, simTime float64) {
	om.notifyExtended("OnTick", func(o ExtendedObserver) { o.OnTick(tick, simTime) })
}

// NotifyError notifies all observers of an error
func (om *ObserverManager) NotifyError(err error) {
	for _, observer := range om.snapshot() {
		if extObs, ok := observer.(ExtendedObserver); ok {
			func() {
				defer func() { recover() }()
				extObs.OnError(err)
			}()
		}
	}
}
