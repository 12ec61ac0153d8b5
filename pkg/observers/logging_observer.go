// Package observers provides observers for monitoring a running simulation
package observers

import (
	"sync"

	"github.com/anggasct/trafficsim/pkg/core"
	"github.com/sirupsen/logrus"
)

// LogLevel represents the logging level
type LogLevel int

const (
	// LogError logs only errors
	LogError LogLevel = iota
	// LogWarning logs errors and warnings
	LogWarning
	// LogInfo logs errors, warnings, and info
	LogInfo
	// LogDebug logs errors, warnings, info, and debug
	LogDebug
)

// LoggingObserver logs simulation events through logrus
type LoggingObserver struct {
	core.BaseObserver
	level  LogLevel
	prefix string
	logger logrus.FieldLogger
	mutex  sync.RWMutex
}

// NewLoggingObserver creates a new logging observer writing to the logrus
// standard logger. The prefix is attached to every entry as the "observer" field.
func NewLoggingObserver(level LogLevel, prefix string) *LoggingObserver {
	return &LoggingObserver{
		level:  level,
		prefix: prefix,
		logger: logrus.StandardLogger(),
	}
}

// NewDefaultLoggingObserver logs at LogInfo with the "trafficsim" prefix
func NewDefaultLoggingObserver() *LoggingObserver {
	return NewLoggingObserver(LogInfo, "trafficsim")
}

// SetLogger redirects the observer to another logger
func (o *LoggingObserver) SetLogger(logger logrus.FieldLogger) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.logger = logger
}

// log writes the entry when level passes the threshold
func (o *LoggingObserver) log(level LogLevel, fields logrus.Fields, msg string) {
	o.mutex.RLock()
	defer o.mutex.RUnlock()

	if level > o.level {
		return
	}
	entry := o.logger.WithFields(fields)
	if o.prefix != "" {
		entry = entry.WithField("observer", o.prefix)
	}
	switch level {
	case LogError:
		entry.Error(msg)
	case LogWarning:
		entry.Warn(msg)
	case LogInfo:
		entry.Info(msg)
	default:
		entry.Debug(msg)
	}
}

// OnIntersectionAdded logs new intersections
func (o *LoggingObserver) OnIntersectionAdded(ix core.IntersectionSnapshot) {
	o.log(LogInfo, logrus.Fields{
		"intersection": ix.ID,
		"street":       ix.StreetName,
		"position":     ix.Position.String(),
	}, "Intersection added")
}

// OnRoadAdded logs new roads
func (o *LoggingObserver) OnRoadAdded(road core.Road) {
	o.log(LogDebug, logrus.Fields{"road": road.Name, "main": road.IsMain}, "Road added")
}

// OnVehicleSpawned logs new vehicles
func (o *LoggingObserver) OnVehicleSpawned(v core.VehicleSnapshot) {
	o.log(LogInfo, vehicleFields(v), "Vehicle spawned")
}

// OnVehicleRespawned logs respawns
func (o *LoggingObserver) OnVehicleRespawned(v core.VehicleSnapshot) {
	o.log(LogDebug, vehicleFields(v), "Vehicle respawned")
}

// OnVehicleStateChange logs vehicle state transitions
func (o *LoggingObserver) OnVehicleStateChange(v core.VehicleSnapshot, from, to core.VehicleState) {
	fields := vehicleFields(v)
	fields["from"] = from.String()
	fields["to"] = to.String()
	if v.PendingTurn != core.TurnNone {
		fields["turn"] = v.PendingTurn.String()
	}
	o.log(LogDebug, fields, "Vehicle transition")
}

// OnSignalPhaseChange logs signal phase changes
func (o *LoggingObserver) OnSignalPhaseChange(ix core.IntersectionSnapshot, axis core.Axis, from, to core.Phase) {
	o.log(LogDebug, logrus.Fields{
		"street": ix.StreetName,
		"axis":   axis.String(),
		"from":   from.String(),
		"to":     to.String(),
	}, "Signal phase change")
}

// OnTurnRequested logs turn requests
func (o *LoggingObserver) OnTurnRequested(ix core.IntersectionSnapshot, axis core.Axis, vehicleID string) {
	o.log(LogInfo, logrus.Fields{
		"street":  ix.StreetName,
		"axis":    axis.String(),
		"vehicle": vehicleID,
	}, "Turn requested")
}

// OnTurnGranted logs served turn requests
func (o *LoggingObserver) OnTurnGranted(ix core.IntersectionSnapshot, axis core.Axis) {
	o.log(LogInfo, logrus.Fields{"street": ix.StreetName, "axis": axis.String()}, "Turn granted")
}

// OnSimulationStarted logs the start
func (o *LoggingObserver) OnSimulationStarted() {
	o.log(LogInfo, nil, "Simulation started")
}

// OnSimulationPaused logs a pause
func (o *LoggingObserver) OnSimulationPaused() {
	o.log(LogInfo, nil, "Simulation paused")
}

// OnSimulationResumed logs a resume
func (o *LoggingObserver) OnSimulationResumed() {
	o.log(LogInfo, nil, "Simulation resumed")
}

// OnSimulationReset logs a reset
func (o *LoggingObserver) OnSimulationReset() {
	o.log(LogInfo, nil, "Simulation reset")
}

// OnError logs errors
func (o *LoggingObserver) OnError(err error) {
	o.log(LogError, logrus.Fields{logrus.ErrorKey: err}, "Simulation error")
}

func vehicleFields(v core.VehicleSnapshot) logrus.Fields {
	return logrus.Fields{
		"vehicle":  v.ID,
		"plate":    v.Plate,
		"road":     v.CurrentRoad,
		"position": v.Position.String(),
		"speed":    v.SpeedKmh(),
	}
}
