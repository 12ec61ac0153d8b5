package trafficsim

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, 10.0, cfg.Signals.TurnGreen)
	assert.Equal(t, 20.0, cfg.Signals.StraightGreen)
	assert.Equal(t, 4.0, cfg.Signals.Yellow)
	assert.Equal(t, 5.0, cfg.Signals.GracePeriod)
	assert.Equal(t, 10.5, cfg.Vehicles.ClearBuffer)
	assert.Equal(t, RetryClockSimulated, cfg.Vehicles.RetryClock)
	assert.Equal(t, 30.0, cfg.Vehicles.TurnRetryInterval)
	assert.Equal(t, []string{"1st St.", "2nd St.", "3rd St."}, cfg.World.InitialSideRoads)
	assert.Equal(t, 3, cfg.World.InitialVehicles)
	assert.Equal(t, time.Second/60, cfg.TickInterval())

	params := cfg.Params()
	assert.Equal(t, 14.0, params.Signal.TurnGreen+params.Signal.Yellow)
	assert.Equal(t, "Main Road", params.MainRoadName)
	assert.Equal(t, 100.0, params.CrossStreetSpacing)
}

func TestParseConfig(t *testing.T) {
	t.Run("Partial documents override defaults", func(t *testing.T) {
		cfg, err := ParseConfig([]byte(`
signals:
  straight_green: 30
vehicles:
  retry_clock: wall
world:
  initial_side_roads: [Elm, Oak]
  initial_vehicles: 5
log_level: debug
seed: 99
`))
		require.NoError(t, err)

		assert.Equal(t, 30.0, cfg.Signals.StraightGreen)
		assert.Equal(t, 10.0, cfg.Signals.TurnGreen)
		assert.Equal(t, RetryClockWall, cfg.Vehicles.RetryClock)
		assert.Equal(t, []string{"Elm", "Oak"}, cfg.World.InitialSideRoads)
		assert.Equal(t, 5, cfg.World.InitialVehicles)
		assert.Equal(t, "debug", cfg.LogLevel)
		assert.Equal(t, int64(99), cfg.Seed)
	})

	t.Run("Empty document yields defaults", func(t *testing.T) {
		cfg, err := ParseConfig(nil)
		require.NoError(t, err)
		assert.Equal(t, DefaultConfig(), cfg)

		cfg, err = ParseConfig([]byte("# nothing here\n"))
		require.NoError(t, err)
		assert.Equal(t, DefaultConfig(), cfg)
	})

	t.Run("Unknown keys are rejected", func(t *testing.T) {
		_, err := ParseConfig([]byte("signals:\n  purple: 3\n"))
		assert.Error(t, err)
	})

	t.Run("All invalid values are reported", func(t *testing.T) {
		_, err := ParseConfig([]byte(`
signals:
  yellow: -1
vehicles:
  min_speed_kmh: 100
  retry_clock: sundial
world:
  initial_side_roads: ["Elm", "Elm", " "]
log_level: loud
`))
		require.Error(t, err)
		assert.True(t, IsConfigurationError(err))
		assert.Equal(t, ErrCodeInvalidConfiguration, GetErrorCode(err))

		collector, ok := err.(*ErrorCollector)
		require.True(t, ok)
		assert.Len(t, collector.GetErrors(), 6)
		assert.Contains(t, err.Error(), "signals.yellow")
		assert.Contains(t, err.Error(), "vehicles.retry_clock")
	})
}

func TestLoadConfig(t *testing.T) {
	t.Run("From file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "sim.yaml")
		require.NoError(t, os.WriteFile(path, []byte("runner:\n  tick_rate: 30\n"), 0644))

		cfg, err := LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, 30.0, cfg.Runner.TickRate)
	})

	t.Run("Missing file", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
		require.Error(t, err)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}
