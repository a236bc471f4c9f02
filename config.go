package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// Config mirrors config.json
type Config struct {
	GraphFile      string        `json:"graphFile"`
	GraphMLKeys    GraphMLKeys   `json:"graphmlKeys"`
	StartNode      NodeID        `json:"startNode"`
	GoalNode       NodeID        `json:"goalNode"`
	MandatoryNodes []NodeID      `json:"mandatoryNodes"`
	Vehicle        VehicleParams `json:"vehicle"`
	Sequencer      struct {
		GoalLast    bool `json:"goalLast"`
		Parallelism int  `json:"parallelism"`
	} `json:"sequencer"`
	Server ServerConfig `json:"server"`
}

// ServerConfig governs the HTTP service
type ServerConfig struct {
	Addr         string  `json:"addr"`
	RateLimit    float64 `json:"rateLimit"` // route requests per second
	RateBurst    int     `json:"rateBurst"`
	AllowOrigins string  `json:"allowOrigins"`
	Geographic   bool    `json:"geographic"` // node X/Y are lon/lat; enables distanceMeters
}

const (
	defaultGraphFile = "Competition_track_graph.graphml"
	defaultAddr      = ":8080"
	defaultRateLimit = 20
	defaultRateBurst = 40
)

// DefaultConfig returns a config with every default applied
func DefaultConfig() Config {
	cfg := Config{Vehicle: DefaultVehicleParams()}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.GraphFile == "" {
		c.GraphFile = defaultGraphFile
	}
	c.GraphMLKeys = c.GraphMLKeys.withDefaults()

	def := DefaultVehicleParams()
	if c.Vehicle.Wheelbase == 0 {
		c.Vehicle.Wheelbase = def.Wheelbase
	}
	if c.Vehicle.Speed == 0 {
		c.Vehicle.Speed = def.Speed
	}
	if c.Vehicle.TimeStep == 0 {
		c.Vehicle.TimeStep = def.TimeStep
	}
	if c.Vehicle.ArrivalThreshold == 0 {
		c.Vehicle.ArrivalThreshold = def.ArrivalThreshold
	}
	if c.Vehicle.MaxStepsPerTarget == 0 {
		c.Vehicle.MaxStepsPerTarget = def.MaxStepsPerTarget
	}

	if c.Server.Addr == "" {
		c.Server.Addr = defaultAddr
	}
	if c.Server.RateLimit == 0 {
		c.Server.RateLimit = defaultRateLimit
	}
	if c.Server.RateBurst == 0 {
		c.Server.RateBurst = defaultRateBurst
	}
	if c.Server.AllowOrigins == "" {
		c.Server.AllowOrigins = "*"
	}
}

func (c *Config) applyEnv() {
	if v := os.Getenv("PLANNER_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("PLANNER_GRAPH_FILE"); v != "" {
		c.GraphFile = v
	}
}

// LoadConfig reads a JSON config file, applying defaults and environment overrides.
// An empty filename, or a file that does not exist, yields the defaults.
func LoadConfig(filename string) (Config, error) {
	// Vehicle is pre-filled so omitted keys keep their defaults while an explicit
	// headingUpdateInterval of 0 (never re-aim) survives.
	cfg := Config{Vehicle: DefaultVehicleParams()}

	if filename != "" {
		data, err := os.ReadFile(filename)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := json.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("failed to parse config %s: %w", filename, err)
			}
		}
	}

	cfg.applyDefaults()
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first invalid setting
func (c Config) Validate() error {
	if c.GraphFile == "" {
		return errors.New("config: graphFile is required")
	}
	if err := c.Vehicle.Validate(); err != nil {
		return fmt.Errorf("config: vehicle: %w", err)
	}
	if c.Sequencer.Parallelism < 0 {
		return fmt.Errorf("config: sequencer parallelism must not be negative, got %d", c.Sequencer.Parallelism)
	}
	if c.Server.RateLimit < 0 || c.Server.RateBurst < 0 {
		return errors.New("config: server rate limits must not be negative")
	}
	return nil
}

// SequenceOptions translates the sequencer section into options
func (c Config) SequenceOptions() []SequenceOption {
	var opts []SequenceOption
	if c.Sequencer.GoalLast {
		opts = append(opts, WithGoalLast())
	}
	if c.Sequencer.Parallelism > 1 {
		opts = append(opts, WithParallelism(c.Sequencer.Parallelism))
	}
	return opts
}
