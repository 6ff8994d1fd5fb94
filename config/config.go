// Package config loads the platform geometry and serial settings from a
// JSON file and turns them into engine types.
package config

import (
	"encoding/json"
	"io"
	"os"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	goutils "go.viam.com/utils"

	"github.com/alvidrezluke/lynceus-platform/controller"
	"github.com/alvidrezluke/lynceus-platform/kinematics"
	"github.com/alvidrezluke/lynceus-platform/maestro"
)

// MotorConfig is one leg's servo base.
type MotorConfig struct {
	Position  []float64 `json:"position"` // x, y, z in the world frame
	Direction string    `json:"direction"`
	Channel   int       `json:"channel"`
}

// ServoConfig overrides the default servo range mapping.
type ServoConfig struct {
	MinAngleDeg float64 `json:"min_angle_deg"`
	MaxAngleDeg float64 `json:"max_angle_deg"`
	MinWidthUS  uint    `json:"min_width_us"`
	MaxWidthUS  uint    `json:"max_width_us"`
}

// Config describes the full platform: shared leg segment lengths, six
// motors, the six platform attachment offsets and optionally how to
// reach the servo controller.
type Config struct {
	TopLegLength    float64       `json:"top_leg_length"`
	BottomLegLength float64       `json:"bottom_leg_length"`
	Motors          []MotorConfig `json:"motors"`
	Center          []float64     `json:"center,omitempty"`
	Attachments     [][]float64   `json:"attachments"`
	SerialPath      string        `json:"serial_path,omitempty"`
	Servo           *ServoConfig  `json:"servo,omitempty"`
}

// Validate ensures all parts of the config are valid.
func (c *Config) Validate(path string) error {
	if c.TopLegLength <= 0 {
		return goutils.NewConfigValidationError(path, errors.New("top_leg_length must be positive"))
	}
	if c.BottomLegLength <= 0 {
		return goutils.NewConfigValidationError(path, errors.New("bottom_leg_length must be positive"))
	}
	if len(c.Motors) == 0 {
		return goutils.NewConfigValidationFieldRequiredError(path, "motors")
	}
	if len(c.Motors) != kinematics.NumLegs {
		return goutils.NewConfigValidationError(path,
			errors.Errorf("need exactly %d motors, got %d", kinematics.NumLegs, len(c.Motors)))
	}
	for i, m := range c.Motors {
		if len(m.Position) != 3 {
			return goutils.NewConfigValidationError(path,
				errors.Errorf("motor %d position needs 3 coordinates, got %d", i, len(m.Position)))
		}
		if _, err := kinematics.ParseDirection(m.Direction); err != nil {
			return goutils.NewConfigValidationError(path, errors.Wrapf(err, "motor %d", i))
		}
		if m.Channel < 0 || m.Channel > maestro.MaxChannel {
			return goutils.NewConfigValidationError(path,
				errors.Errorf("motor %d channel %d out of range 0-%d", i, m.Channel, maestro.MaxChannel))
		}
	}
	if len(c.Attachments) == 0 {
		return goutils.NewConfigValidationFieldRequiredError(path, "attachments")
	}
	if len(c.Attachments) != kinematics.NumLegs {
		return goutils.NewConfigValidationError(path,
			errors.Errorf("need exactly %d attachments, got %d", kinematics.NumLegs, len(c.Attachments)))
	}
	for i, a := range c.Attachments {
		if len(a) != 3 {
			return goutils.NewConfigValidationError(path,
				errors.Errorf("attachment %d needs 3 coordinates, got %d", i, len(a)))
		}
	}
	if c.Center != nil && len(c.Center) != 3 {
		return goutils.NewConfigValidationError(path,
			errors.Errorf("center needs 3 coordinates, got %d", len(c.Center)))
	}
	if c.Servo != nil {
		if c.Servo.MinAngleDeg >= c.Servo.MaxAngleDeg {
			return goutils.NewConfigValidationError(path, errors.New("servo min_angle_deg must be below max_angle_deg"))
		}
		if c.Servo.MinWidthUS >= c.Servo.MaxWidthUS {
			return goutils.NewConfigValidationError(path, errors.New("servo min_width_us must be below max_width_us"))
		}
	}
	return nil
}

// Engine builds the kinematics engine described by the config.
func (c *Config) Engine(logger golog.Logger) (*kinematics.Kinematics, error) {
	var motors [kinematics.NumLegs]kinematics.Motor
	for i, mc := range c.Motors {
		dir, err := kinematics.ParseDirection(mc.Direction)
		if err != nil {
			return nil, errors.Wrapf(err, "motor %d", i)
		}
		motors[i] = kinematics.Motor{Position: vec3(mc.Position), Direction: dir, Channel: mc.Channel}
	}
	var platform kinematics.Platform
	if c.Center != nil {
		platform.Center = vec3(c.Center)
	}
	for i, a := range c.Attachments {
		platform.Attachments[i] = vec3(a)
	}
	return kinematics.New(c.TopLegLength, c.BottomLegLength, motors, platform, logger)
}

// ServoRange returns the configured range mapping, or the default.
func (c *Config) ServoRange() controller.ServoRange {
	if c.Servo == nil {
		return controller.DefaultServoRange
	}
	return controller.ServoRange{
		MinAngleDeg: c.Servo.MinAngleDeg,
		MaxAngleDeg: c.Servo.MaxAngleDeg,
		MinWidthUS:  c.Servo.MinWidthUS,
		MaxWidthUS:  c.Servo.MaxWidthUS,
	}
}

// FromReader parses and validates a config.
func FromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	if err := json.NewDecoder(r).Decode(cfg); err != nil {
		return nil, errors.Wrap(err, "cannot parse config")
	}
	if err := cfg.Validate(""); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromFile reads, parses and validates the config at the given path.
func FromFile(path string) (*Config, error) {
	f, err := os.Open(path) //nolint:gosec
	if err != nil {
		return nil, errors.Wrapf(err, "cannot open config %q", path)
	}
	defer goutils.UncheckedErrorFunc(f.Close)
	cfg := &Config{}
	if err := json.NewDecoder(f).Decode(cfg); err != nil {
		return nil, errors.Wrapf(err, "cannot parse config %q", path)
	}
	if err := cfg.Validate(path); err != nil {
		return nil, err
	}
	return cfg, nil
}

func vec3(v []float64) r3.Vector {
	return r3.Vector{X: v[0], Y: v[1], Z: v[2]}
}
