package trafficsim

import (
	"testing"

	"github.com/anggasct/trafficsim/pkg/core"
	"github.com/anggasct/trafficsim/pkg/observers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validState(s core.VehicleState) bool {
	for _, known := range core.AllVehicleStates() {
		if s == known {
			return true
		}
	}
	return false
}

func TestThousandTickRun(t *testing.T) {
	validator := observers.NewValidationObserver()
	metrics := observers.NewMetricsObserver()
	sim := newStartedSimulation(t, WithObserver(validator), WithObserver(metrics))
	dt := 1.0 / 60.0

	for tick := 1; tick <= 1000; tick++ {
		require.True(t, sim.Tick(dt))

		snap := sim.Snapshot()
		require.Len(t, snap.Vehicles, 3)
		maxX := snap.Roads[0].EastEnd().X
		for _, v := range snap.Vehicles {
			assert.True(t, validState(v.State), "tick %d: vehicle %s in unknown state %d", tick, v.ID, v.State)
			assert.GreaterOrEqual(t, v.Speed, 0.0)
			assert.True(t, v.Position.X >= 0 && v.Position.X <= maxX && v.Position.Y >= -50 && v.Position.Y <= 50,
				"tick %d: vehicle %s out of bounds at %s", tick, v.ID, v.Position)
		}
		for _, ix := range snap.Intersections {
			if ix.BothAxesActive() {
				t.Fatalf("tick %d: %s has NS %s and EW %s active", tick, ix.StreetName, ix.NS.Phase, ix.EW.Phase)
			}
		}
	}

	assert.Equal(t, uint64(1000), sim.TickCount())
	assert.Equal(t, uint64(1000), metrics.GetTickCount())
	assert.Empty(t, validator.GetViolations())
}

func TestLongRunKeepsInvariants(t *testing.T) {
	validator := observers.NewValidationObserver()
	cfg := DefaultConfig()
	cfg.World.InitialVehicles = 12
	sim := newStartedSimulation(t, WithConfig(cfg), WithObserver(validator), WithRandom(core.NewRandom(2024)))

	// ten simulated minutes
	for tick := 0; tick < 60*60*10; tick++ {
		sim.Tick(1.0 / 60.0)
	}

	assert.Empty(t, validator.GetViolations())
	assert.Len(t, sim.Vehicles(), 12)
	for _, ix := range sim.Intersections() {
		assert.False(t, ix.BothAxesActive())
	}
}
