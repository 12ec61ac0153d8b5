package trafficsim

import (
	"math"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/anggasct/trafficsim/pkg/core"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
)

// Simulation owns the road network, the intersections and the vehicles and
// advances them one tick at a time. All methods are safe for concurrent use;
// commands never overlap a tick.
type Simulation struct {
	config    Config
	params    core.Params
	random    core.Random
	clock     core.Clock
	logger    logrus.FieldLogger
	observers *core.ObserverManager
	pending   []core.Observer

	roads             []core.Road
	intersections     []*core.Intersection
	vehicles          []*core.Vehicle
	intersectionCount int

	isRunning   bool
	isInitiated bool
	simTime     float64
	tickCount   uint64
	createdAt   time.Time

	snapshot atomic.Pointer[Snapshot]
	mutex    sync.RWMutex
}

// New creates an idle simulation. Call StartSimulation to build the world.
func New(opts ...Option) (*Simulation, error) {
	s := &Simulation{
		config:    DefaultConfig(),
		observers: core.NewObserverManager(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.config.Validate(); err != nil {
		return nil, err
	}

	s.params = s.config.Params()
	if s.random == nil {
		s.random = core.NewRandom(s.config.Seed)
	}
	if s.clock == nil {
		s.clock = core.SystemClock{}
	}
	if s.logger == nil {
		logger := logrus.New()
		level, _ := logrus.ParseLevel(s.config.LogLevel)
		logger.SetLevel(level)
		s.logger = logger
	}
	for _, o := range s.pending {
		s.observers.AddObserver(o)
	}
	s.pending = nil
	s.createdAt = s.clock.Now()
	s.publish()
	return s, nil
}

// Config returns the configuration the simulation was built with
func (s *Simulation) Config() Config {
	return s.config
}

// AddObserver registers an observer. Observers are called on the ticking
// goroutine while the simulation is locked and must not issue commands.
func (s *Simulation) AddObserver(o core.Observer) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.observers.AddObserver(o)
}

// RemoveObserver unregisters an observer
func (s *Simulation) RemoveObserver(o core.Observer) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.observers.RemoveObserver(o)
}

// StartSimulation builds the main road, the configured side roads and the
// initial vehicles, and starts the clock.
func (s *Simulation) StartSimulation() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.isInitiated {
		return s.reject("StartSimulation", ErrAlreadyInitiated)
	}

	s.intersectionCount = 1
	s.isRunning = true
	s.isInitiated = true

	mainRoad := core.NewMainRoad(&s.params)
	s.roads = append(s.roads, mainRoad)
	s.observers.NotifyRoadAdded(mainRoad)

	for _, name := range s.config.World.InitialSideRoads {
		if err := s.addRoad("StartSimulation", name); err != nil {
			return err
		}
	}
	for i := 0; i < s.config.World.InitialVehicles; i++ {
		s.spawn()
	}

	s.logger.WithFields(logrus.Fields{
		"roads":    len(s.roads),
		"vehicles": len(s.vehicles),
	}).Info("Simulation started")
	s.observers.NotifySimulationStarted()
	s.publish()
	return nil
}

// PauseSimulation stops the clock and freezes every intersection
func (s *Simulation) PauseSimulation() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.pause()
	s.publish()
}

func (s *Simulation) pause() {
	wasRunning := s.isRunning
	s.isRunning = false
	for _, ix := range s.intersections {
		ix.PauseLightLogic()
	}
	if wasRunning {
		s.logger.Info("Simulation paused")
		s.observers.NotifySimulationPaused()
	}
}

// ContinueSimulation resumes a paused simulation. It does nothing before start.
func (s *Simulation) ContinueSimulation() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if !s.isInitiated || s.isRunning {
		return
	}
	s.isRunning = true
	for _, ix := range s.intersections {
		ix.ResumeLightLogic()
	}
	s.logger.Info("Simulation resumed")
	s.observers.NotifySimulationResumed()
	s.publish()
}

// ResetSimulation pauses and clears the world. StartSimulation may be
// called again afterwards.
func (s *Simulation) ResetSimulation() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.pause()
	s.roads = nil
	s.intersections = nil
	s.vehicles = nil
	s.intersectionCount = 0
	s.isInitiated = false
	s.simTime = 0
	s.tickCount = 0

	s.logger.Info("Simulation reset")
	s.observers.NotifySimulationReset()
	s.publish()
}

// AddRoad adds a side road and its intersection with the main road
func (s *Simulation) AddRoad(name string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if !s.isInitiated {
		return s.reject("AddRoad", ErrNotInitiated)
	}
	if err := s.addRoad("AddRoad", name); err != nil {
		return err
	}
	s.publish()
	return nil
}

func (s *Simulation) addRoad(op, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return s.reject(op, ErrInvalidRoadName)
	}
	if lo.ContainsBy(s.roads, func(r core.Road) bool { return r.Name == name }) {
		return s.reject(op, ErrDuplicateRoad, logrus.Fields{"road": name})
	}

	index := s.intersectionCount
	road := core.NewSideRoad(name, index, &s.params)
	ix := core.NewIntersection(uuid.NewString(), len(s.intersections), core.NewPoint(road.CrossingX(), 0), name, &s.params, s.observers)
	if !s.isRunning {
		ix.PauseLightLogic()
	}
	s.roads = append(s.roads, road)
	s.intersections = append(s.intersections, ix)
	s.intersectionCount++

	if s.roads[0].WidenEast(s.intersectionCount, s.params.CrossStreetSpacing) {
		s.logger.WithField("east_end", s.roads[0].EastEnd().X).Debug("Main road widened")
	}

	s.logger.WithFields(logrus.Fields{
		"road":         name,
		"intersection": ix.ID(),
		"x":            road.CrossingX(),
	}).Info("Road added")
	s.observers.NotifyRoadAdded(road)
	s.observers.NotifyIntersectionAdded(ix.Snapshot())
	return nil
}

// SpawnRandomCar adds a vehicle at a random road end
func (s *Simulation) SpawnRandomCar() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if !s.isInitiated {
		return s.reject("SpawnRandomCar", ErrNotInitiated)
	}
	s.spawn()
	s.publish()
	return nil
}

func (s *Simulation) spawn() {
	v := core.NewVehicle(uuid.NewString(), core.GeneratePlate(s.random))
	s.place(v)
	s.vehicles = append(s.vehicles, v)

	s.logger.WithFields(logrus.Fields{
		"vehicle": v.ID(),
		"plate":   v.Plate(),
		"road":    v.CurrentRoad(),
	}).Info("Vehicle spawned")
	s.observers.NotifyVehicleSpawned(v.Snapshot())
}

// place puts v at a random end of a random road with a random speed.
func (s *Simulation) place(v *core.Vehicle) {
	road := s.roads[s.random.Intn(len(s.roads))]
	spawn := road.SpawnPoints[s.random.Intn(len(road.SpawnPoints))]
	kmh := core.RandomBetween(s.random, s.config.Vehicles.MinSpeedKmh, s.config.Vehicles.MaxSpeedKmh)
	v.Respawn(road, spawn, kmh/3.6, s.observers)
}

func (s *Simulation) respawn(v *core.Vehicle) {
	from := v.Position()
	s.place(v)
	s.logger.WithFields(logrus.Fields{
		"vehicle": v.ID(),
		"from":    from.String(),
		"to":      v.Position().String(),
	}).Debug("Vehicle respawned")
	s.observers.NotifyVehicleRespawned(v.Snapshot())
}

// Tick advances the world by dt seconds. It reports false and changes
// nothing when the simulation is not running or dt is not a positive number.
func (s *Simulation) Tick(dt float64) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if !s.isRunning || !s.isInitiated || !(dt > 0) || math.IsInf(dt, 0) {
		return false
	}

	for _, ix := range s.intersections {
		ix.Update(dt)
	}

	env := &core.Env{
		Dt:        dt,
		Now:       s.retryNow(dt),
		Params:    &s.params,
		Random:    s.random,
		Observers: s.observers,
	}
	for _, v := range s.vehicles {
		s.drive(v, env)
	}

	maxX := s.roads[0].EastEnd().X
	for _, v := range s.vehicles {
		if s.outOfBounds(v.Position(), maxX) {
			s.respawn(v)
		}
	}

	s.simTime += dt
	s.tickCount++
	s.publish()
	s.observers.NotifyTick(s.tickCount, s.simTime)
	return true
}

// drive runs one vehicle through its light check, or scans for an
// intersection to approach, or moves it along the road.
func (s *Simulation) drive(v *core.Vehicle, env *core.Env) {
	if b := v.Binding(); b != nil {
		v.CheckLight(s.intersections[b.Intersection], env)
		return
	}
	for _, ix := range s.intersections {
		if v.IsApproaching(ix, env.Params) {
			v.Bind(ix, env)
			v.CheckLight(ix, env)
			return
		}
	}
	v.Move(nil, env)
}

func (s *Simulation) outOfBounds(p core.Point, maxX float64) bool {
	return p.Y > s.params.HalfHeight || p.Y < -s.params.HalfHeight || p.X < 0 || p.X > maxX
}

// retryNow is the timestamp handed to waiting left-turners for this tick.
func (s *Simulation) retryNow(dt float64) float64 {
	if s.config.Vehicles.RetryClock == RetryClockWall {
		return s.clock.Now().Sub(s.createdAt).Seconds()
	}
	return s.simTime + dt
}

func (s *Simulation) reject(op string, sentinel *SimulationError, fields ...logrus.Fields) error {
	err := NewSimulationError(sentinel.Code, op, sentinel.Message)
	entry := s.logger.WithField("operation", op)
	for _, f := range fields {
		entry = entry.WithFields(f)
	}
	entry.WithError(err).Warn("Command rejected")
	s.observers.NotifyError(err)
	return err
}

// IsRunning reports whether ticks are being applied
func (s *Simulation) IsRunning() bool {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.isRunning
}

// IsInitiated reports whether the world has been built
func (s *Simulation) IsInitiated() bool {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.isInitiated
}

// SimTime returns the simulated seconds applied so far
func (s *Simulation) SimTime() float64 {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.simTime
}

// TickCount returns the number of applied ticks
func (s *Simulation) TickCount() uint64 {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.tickCount
}

// Roads returns a copy of the road list. The main road comes first.
func (s *Simulation) Roads() []core.Road {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return append([]core.Road(nil), s.roads...)
}

// Vehicles returns a snapshot of every vehicle
func (s *Simulation) Vehicles() []core.VehicleSnapshot {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return lo.Map(s.vehicles, func(v *core.Vehicle, _ int) core.VehicleSnapshot { return v.Snapshot() })
}

// Intersections returns a snapshot of every intersection
func (s *Simulation) Intersections() []core.IntersectionSnapshot {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return lo.Map(s.intersections, func(ix *core.Intersection, _ int) core.IntersectionSnapshot { return ix.Snapshot() })
}
