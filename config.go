package trafficsim

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"time"

	"github.com/anggasct/trafficsim/pkg/core"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// RetryClock selects the time base of the left-turn retry timer.
type RetryClock string

const (
	// RetryClockSimulated measures waiting in simulated seconds
	RetryClockSimulated RetryClock = "simulated"
	// RetryClockWall measures waiting in wall-clock seconds since the simulation was created
	RetryClockWall RetryClock = "wall"
)

// SignalConfig holds signal phase durations in seconds
type SignalConfig struct {
	TurnGreen     float64 `yaml:"turn_green"`
	StraightGreen float64 `yaml:"straight_green"`
	Yellow        float64 `yaml:"yellow"`
	GracePeriod   float64 `yaml:"grace_period"`
}

// VehicleConfig holds vehicle behavior parameters
type VehicleConfig struct {
	ApproachDistance  float64    `yaml:"approach_distance"`
	StopBuffer        float64    `yaml:"stop_buffer"`
	ClearBuffer       float64    `yaml:"clear_buffer"`
	SnapTolerance     float64    `yaml:"snap_tolerance"`
	TurnLengthBase    float64    `yaml:"turn_length_base"`
	Acceleration      float64    `yaml:"acceleration"`
	Deceleration      float64    `yaml:"deceleration"`
	MinSpeedKmh       float64    `yaml:"min_speed_kmh"`
	MaxSpeedKmh       float64    `yaml:"max_speed_kmh"`
	TurnRetryInterval float64    `yaml:"turn_retry_interval"`
	RetryClock        RetryClock `yaml:"retry_clock"`
}

// WorldConfig holds the road network layout and the start scenario
type WorldConfig struct {
	HalfHeight         float64  `yaml:"half_height"`
	MainRoadLength     float64  `yaml:"main_road_length"`
	CrossStreetSpacing float64  `yaml:"cross_street_spacing"`
	MainRoadName       string   `yaml:"main_road_name"`
	InitialSideRoads   []string `yaml:"initial_side_roads"`
	InitialVehicles    int      `yaml:"initial_vehicles"`
}

// RunnerConfig holds the periodic tick scheduler settings
type RunnerConfig struct {
	TickRate      float64 `yaml:"tick_rate"`
	MaxFrameDelta float64 `yaml:"max_frame_delta"`
}

// Config is the complete simulation configuration
type Config struct {
	Signals  SignalConfig  `yaml:"signals"`
	Vehicles VehicleConfig `yaml:"vehicles"`
	World    WorldConfig   `yaml:"world"`
	Runner   RunnerConfig  `yaml:"runner"`
	LogLevel string        `yaml:"log_level"`
	Seed     int64         `yaml:"seed"`
}

// DefaultConfig returns the stock configuration
func DefaultConfig() Config {
	params := core.DefaultParams()
	return Config{
		Signals: SignalConfig{
			TurnGreen:     params.Signal.TurnGreen,
			StraightGreen: params.Signal.StraightGreen,
			Yellow:        params.Signal.Yellow,
			GracePeriod:   params.ScheduleGracePeriod,
		},
		Vehicles: VehicleConfig{
			ApproachDistance:  params.ApproachDistance,
			StopBuffer:        params.StopBuffer,
			ClearBuffer:       params.ClearBuffer,
			SnapTolerance:     params.SnapTolerance,
			TurnLengthBase:    params.TurnLengthBase,
			Acceleration:      params.Acceleration,
			Deceleration:      params.Deceleration,
			MinSpeedKmh:       55,
			MaxSpeedKmh:       90,
			TurnRetryInterval: params.TurnRetryInterval,
			RetryClock:        RetryClockSimulated,
		},
		World: WorldConfig{
			HalfHeight:         params.HalfHeight,
			MainRoadLength:     params.MainRoadLength,
			CrossStreetSpacing: params.CrossStreetSpacing,
			MainRoadName:       params.MainRoadName,
			InitialSideRoads:   []string{"1st St.", "2nd St.", "3rd St."},
			InitialVehicles:    3,
		},
		Runner: RunnerConfig{
			TickRate:      60,
			MaxFrameDelta: 0.1,
		},
		LogLevel: "info",
	}
}

// LoadConfig reads a YAML file on top of the defaults
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}

// ParseConfig decodes YAML on top of the defaults. Unknown keys are rejected
// and the result is validated.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if len(bytes.TrimSpace(data)) > 0 {
		decoder := yaml.NewDecoder(bytes.NewReader(data))
		decoder.KnownFields(true)
		if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks every field and reports all problems at once
func (c Config) Validate() error {
	ec := NewErrorCollector()

	positive := func(component string, v float64) {
		if !(v > 0) || math.IsInf(v, 0) {
			ec.Add(NewConfigurationError(component, fmt.Sprintf("must be a positive number, got %v", v)))
		}
	}
	nonNegative := func(component string, v float64) {
		if !(v >= 0) || math.IsInf(v, 0) {
			ec.Add(NewConfigurationError(component, fmt.Sprintf("must not be negative, got %v", v)))
		}
	}

	positive("signals.turn_green", c.Signals.TurnGreen)
	positive("signals.straight_green", c.Signals.StraightGreen)
	positive("signals.yellow", c.Signals.Yellow)
	positive("signals.grace_period", c.Signals.GracePeriod)

	positive("vehicles.approach_distance", c.Vehicles.ApproachDistance)
	nonNegative("vehicles.stop_buffer", c.Vehicles.StopBuffer)
	nonNegative("vehicles.clear_buffer", c.Vehicles.ClearBuffer)
	positive("vehicles.snap_tolerance", c.Vehicles.SnapTolerance)
	nonNegative("vehicles.turn_length_base", c.Vehicles.TurnLengthBase)
	positive("vehicles.acceleration", c.Vehicles.Acceleration)
	positive("vehicles.deceleration", c.Vehicles.Deceleration)
	positive("vehicles.min_speed_kmh", c.Vehicles.MinSpeedKmh)
	positive("vehicles.max_speed_kmh", c.Vehicles.MaxSpeedKmh)
	if c.Vehicles.MaxSpeedKmh < c.Vehicles.MinSpeedKmh {
		ec.Add(NewConfigurationError("vehicles.max_speed_kmh", "must not be below min_speed_kmh"))
	}
	positive("vehicles.turn_retry_interval", c.Vehicles.TurnRetryInterval)
	switch c.Vehicles.RetryClock {
	case RetryClockSimulated, RetryClockWall:
	default:
		ec.Add(NewConfigurationError("vehicles.retry_clock", fmt.Sprintf("unknown clock %q, want simulated or wall", c.Vehicles.RetryClock)))
	}

	positive("world.half_height", c.World.HalfHeight)
	positive("world.main_road_length", c.World.MainRoadLength)
	positive("world.cross_street_spacing", c.World.CrossStreetSpacing)
	if strings.TrimSpace(c.World.MainRoadName) == "" {
		ec.Add(NewConfigurationError("world.main_road_name", "must not be blank"))
	}
	seen := map[string]bool{strings.TrimSpace(c.World.MainRoadName): true}
	for _, name := range c.World.InitialSideRoads {
		name = strings.TrimSpace(name)
		if name == "" {
			ec.Add(NewConfigurationError("world.initial_side_roads", "contains a blank name"))
			continue
		}
		if seen[name] {
			ec.Add(NewConfigurationError("world.initial_side_roads", fmt.Sprintf("duplicate road %q", name)))
		}
		seen[name] = true
	}
	if c.World.InitialVehicles < 0 {
		ec.Add(NewConfigurationError("world.initial_vehicles", "must not be negative"))
	}

	positive("runner.tick_rate", c.Runner.TickRate)
	positive("runner.max_frame_delta", c.Runner.MaxFrameDelta)

	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		ec.Add(NewConfigurationError("log_level", err.Error()))
	}

	return ec.Err()
}

// Params converts the configuration into engine parameters
func (c Config) Params() core.Params {
	return core.Params{
		Signal: core.SignalTimings{
			TurnGreen:     c.Signals.TurnGreen,
			StraightGreen: c.Signals.StraightGreen,
			Yellow:        c.Signals.Yellow,
		},
		ScheduleGracePeriod: c.Signals.GracePeriod,
		ApproachDistance:    c.Vehicles.ApproachDistance,
		StopBuffer:          c.Vehicles.StopBuffer,
		ClearBuffer:         c.Vehicles.ClearBuffer,
		SnapTolerance:       c.Vehicles.SnapTolerance,
		TurnLengthBase:      c.Vehicles.TurnLengthBase,
		Acceleration:        c.Vehicles.Acceleration,
		Deceleration:        c.Vehicles.Deceleration,
		TurnRetryInterval:   c.Vehicles.TurnRetryInterval,
		HalfHeight:          c.World.HalfHeight,
		MainRoadLength:      c.World.MainRoadLength,
		CrossStreetSpacing:  c.World.CrossStreetSpacing,
		MainRoadName:        c.World.MainRoadName,
	}
}

// TickInterval returns the runner period
func (c Config) TickInterval() time.Duration {
	return time.Duration(float64(time.Second) / c.Runner.TickRate)
}

// Option configures a Simulation
type Option func(*Simulation)

// WithConfig replaces the default configuration
func WithConfig(cfg Config) Option {
	return func(s *Simulation) {
		s.config = cfg
	}
}

// WithRandom injects the random source for spawns and turn choices
func WithRandom(r core.Random) Option {
	return func(s *Simulation) {
		s.random = r
	}
}

// WithClock injects the wall clock used by the wall retry clock
func WithClock(c core.Clock) Option {
	return func(s *Simulation) {
		s.clock = c
	}
}

// WithLogger replaces the default logrus logger
func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Simulation) {
		s.logger = l
	}
}

// WithObserver registers an observer before the simulation starts
func WithObserver(o core.Observer) Option {
	return func(s *Simulation) {
		s.pending = append(s.pending, o)
	}
}
