package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Topic directions, seen from the simulation.
const (
	DirectionInbound  = "INBOUND"
	DirectionOutbound = "OUTBOUND"
)

// Priorities select the inbound worker pool.
const (
	PriorityHigh     = "HIGH"
	PriorityStandard = "STANDARD"
	PriorityLow      = "LOW"
)

// Control modes of the mounted arm. Only reported; the bridge does not
// drive the arm.
const (
	ControlModeDisplacement = "displacement"
	ControlModeForce        = "force"
)

// Config is the operational bridge configuration.
type Config struct {
	Version       string           `yaml:"version" json:"version"`
	ConfigID      string           `yaml:"config_id" json:"config_id"`
	LastUpdated   string           `yaml:"lastUpdated" json:"lastUpdated"`
	RobotID       string           `yaml:"robot_id" json:"robot_id"`
	Robot         RobotConfig      `yaml:"robot" json:"robot"`
	Simulation    SimulationConfig `yaml:"simulation" json:"simulation"`
	Teleop        TeleopLimits     `yaml:"teleop" json:"teleop"`
	TopicMappings []TopicMapping   `yaml:"topic_mappings" json:"topic_mappings"`
	Defaults      DefaultsConfig   `yaml:"defaults" json:"defaults"`
}

// RobotConfig describes the simulated base.
type RobotConfig struct {
	// Scale converts meters to scene units. Omitted means 1.
	Scale float64 `yaml:"scale" json:"scale"`
	// WheelRadius in meters. Required.
	WheelRadius float64 `yaml:"wheel_radius" json:"wheel_radius"`
}

// SimulationConfig holds host loop settings.
type SimulationConfig struct {
	// TimeStep in seconds between bridge ticks.
	TimeStep    float64 `yaml:"time_step" json:"time_step"`
	ControlMode string  `yaml:"control_mode" json:"control_mode"`
}

// TeleopLimits bounds commands accepted over HTTP and WebSocket. Zero
// disables a limit.
type TeleopLimits struct {
	MaxLinear  float64 `yaml:"max_linear" json:"max_linear"`
	MaxAngular float64 `yaml:"max_angular" json:"max_angular"`
}

// TopicMapping binds a ROS topic to a bus topic.
type TopicMapping struct {
	TopicID     string `yaml:"topic_id" json:"topic_id"`
	RosTopic    string `yaml:"ros_topic" json:"ros_topic"`
	BusTopic    string `yaml:"bus_topic" json:"bus_topic"`
	MessageType string `yaml:"message_type" json:"message_type"`
	Priority    string `yaml:"priority" json:"priority"`
	Direction   string `yaml:"direction" json:"direction"`
}

// DefaultsConfig holds default values for topic mappings
type DefaultsConfig struct {
	Priority  string `yaml:"priority" json:"priority"`
	Direction string `yaml:"direction" json:"direction"`
}

// ValidationError lists every problem found in a Config.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Problems, "; ")
}

// IsValidationError marks the error as caused by bad input.
func (e *ValidationError) IsValidationError() bool { return true }

// IsValidation reports whether err is or wraps a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// LoadConfig reads, parses and validates the bridge config at path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return nil, fmt.Errorf("config file '%s': %w", path, err)
	}
	return cfg, nil
}

// ParseConfig decodes YAML, fills defaults and validates.
func ParseConfig(data []byte) (*Config, error) {
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}
	config.fillDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *Config) fillDefaults() {
	if c.Robot.Scale == 0 {
		c.Robot.Scale = 1
	}
	if c.Simulation.ControlMode == "" {
		c.Simulation.ControlMode = ControlModeDisplacement
	}
	if c.Defaults.Priority == "" {
		c.Defaults.Priority = PriorityStandard
	}
	if c.Defaults.Direction == "" {
		c.Defaults.Direction = DirectionOutbound
	}
}

// Validate checks required fields and value ranges.
func (c *Config) Validate() error {
	var problems []string
	addf := func(format string, args ...interface{}) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if c.ConfigID == "" || c.Version == "" || c.RobotID == "" {
		addf("missing required fields (config_id, version, robot_id)")
	}
	if !positive(c.Robot.Scale) {
		addf("robot.scale must be positive, got %v", c.Robot.Scale)
	}
	if !positive(c.Robot.WheelRadius) {
		addf("robot.wheel_radius must be positive, got %v", c.Robot.WheelRadius)
	}
	if !positive(c.Simulation.TimeStep) {
		addf("simulation.time_step must be positive, got %v", c.Simulation.TimeStep)
	}
	switch c.Simulation.ControlMode {
	case ControlModeDisplacement, ControlModeForce:
	default:
		addf("simulation.control_mode must be %q or %q, got %q",
			ControlModeDisplacement, ControlModeForce, c.Simulation.ControlMode)
	}
	if c.Teleop.MaxLinear < 0 || c.Teleop.MaxAngular < 0 {
		addf("teleop limits cannot be negative")
	}

	seen := make(map[string]bool, len(c.TopicMappings))
	for i, m := range c.TopicMappings {
		m = applyDefaults(m, c.Defaults)
		if m.BusTopic == "" {
			addf("topic_mappings[%d]: bus_topic is required", i)
		} else if seen[m.BusTopic] {
			addf("topic_mappings[%d]: duplicate bus_topic %q", i, m.BusTopic)
		}
		seen[m.BusTopic] = true
		if m.MessageType == "" {
			addf("topic_mappings[%d]: message_type is required", i)
		}
		if m.Direction != DirectionInbound && m.Direction != DirectionOutbound {
			addf("topic_mappings[%d]: unknown direction %q", i, m.Direction)
		}
		switch m.Priority {
		case PriorityHigh, PriorityStandard, PriorityLow:
		default:
			addf("topic_mappings[%d]: unknown priority %q", i, m.Priority)
		}
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}

// GetTopicMappingsByDirection returns topic mappings filtered by direction
func (c *Config) GetTopicMappingsByDirection(direction string) []TopicMapping {
	var result []TopicMapping

	for _, mapping := range c.TopicMappings {
		mapping = applyDefaults(mapping, c.Defaults)
		if mapping.Direction == direction {
			result = append(result, mapping)
		}
	}

	return result
}

// GetTopicMappingByBusTopic returns the mapping for a bus topic.
func (c *Config) GetTopicMappingByBusTopic(busTopic string) (TopicMapping, bool) {
	for _, mapping := range c.TopicMappings {
		if mapping.BusTopic == busTopic {
			return applyDefaults(mapping, c.Defaults), true
		}
	}

	return TopicMapping{}, false
}

// applyDefaults merges default values into a topic mapping where fields are empty
func applyDefaults(mapping TopicMapping, defaults DefaultsConfig) TopicMapping {
	result := mapping

	if result.Priority == "" {
		result.Priority = defaults.Priority
	}

	if result.Direction == "" {
		result.Direction = defaults.Direction
	}

	return result
}
