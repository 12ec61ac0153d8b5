package trafficsim

import (
	"sync"
	"testing"
	"time"

	"github.com/anggasct/trafficsim/pkg/core"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

// TestObserver captures driver-level notifications
type TestObserver struct {
	core.BaseObserver
	mutex         sync.Mutex
	Intersections []core.IntersectionSnapshot
	Roads         []core.Road
	Spawned       []core.VehicleSnapshot
	Respawned     []core.VehicleSnapshot
	Lifecycle     []string
	Ticks         int
	Errors        []error
}

func (o *TestObserver) OnIntersectionAdded(ix core.IntersectionSnapshot) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.Intersections = append(o.Intersections, ix)
}

func (o *TestObserver) OnRoadAdded(road core.Road) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.Roads = append(o.Roads, road)
}

func (o *TestObserver) OnVehicleSpawned(v core.VehicleSnapshot) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.Spawned = append(o.Spawned, v)
}

func (o *TestObserver) OnVehicleRespawned(v core.VehicleSnapshot) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.Respawned = append(o.Respawned, v)
}

func (o *TestObserver) OnSimulationStarted() { o.record("started") }
func (o *TestObserver) OnSimulationPaused()  { o.record("paused") }
func (o *TestObserver) OnSimulationResumed() { o.record("resumed") }
func (o *TestObserver) OnSimulationReset()   { o.record("reset") }

func (o *TestObserver) record(event string) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.Lifecycle = append(o.Lifecycle, event)
}

func (o *TestObserver) OnTick(tick uint64, simTime float64) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.Ticks++
}

func (o *TestObserver) OnError(err error) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.Errors = append(o.Errors, err)
}

// fakeClock returns a fixed time that tests can move
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func newTestSimulation(t *testing.T, opts ...Option) *Simulation {
	t.Helper()
	logger, _ := test.NewNullLogger()
	base := []Option{WithLogger(logger), WithRandom(core.NewRandom(1))}
	sim, err := New(append(base, opts...)...)
	require.NoError(t, err)
	return sim
}

func newStartedSimulation(t *testing.T, opts ...Option) *Simulation {
	t.Helper()
	sim := newTestSimulation(t, opts...)
	require.NoError(t, sim.StartSimulation())
	return sim
}
