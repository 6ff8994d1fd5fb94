// Package controller drives the physical platform: it feeds solved poses
// to the actuator channels the motors are wired to.
package controller

import (
	"context"
	"math"
	"time"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	goutils "go.viam.com/utils"

	"github.com/alvidrezluke/lynceus-platform/kinematics"
	"github.com/alvidrezluke/lynceus-platform/maestro"
	"github.com/alvidrezluke/lynceus-platform/spatialmath"
	"github.com/alvidrezluke/lynceus-platform/utils"
)

// movingPollInterval is how often WaitUntilStopped asks the board whether
// the servos have settled.
const movingPollInterval = 20 * time.Millisecond

// Actuator is the subset of the servo controller the Controller uses.
type Actuator interface {
	SetTarget(channel int, target uint16) error
	GetPosition(channel int) (int, error)
	GetMovingState() (maestro.MovingState, error)
	Close() error
}

// ServoRange maps a servo's mechanical range onto pulse widths. Solved
// angles are mapped linearly from [MinAngleDeg, MaxAngleDeg] onto
// [MinWidthUS, MaxWidthUS]; the board itself takes quarter microseconds.
type ServoRange struct {
	MinAngleDeg float64
	MaxAngleDeg float64
	MinWidthUS  uint
	MaxWidthUS  uint
}

// DefaultServoRange covers a standard 180 degree hobby servo.
var DefaultServoRange = ServoRange{MinAngleDeg: 0, MaxAngleDeg: 180, MinWidthUS: 500, MaxWidthUS: 2500}

// Target converts a solved angle in radians to a target in quarter
// microseconds. Angles outside the mechanical range error rather than
// clamp: commanding a clamped pose would silently bend the platform.
func (sr ServoRange) Target(angleRad float64) (uint16, error) {
	deg := utils.RadToDeg(angleRad)
	if deg < sr.MinAngleDeg || deg > sr.MaxAngleDeg {
		return 0, errors.Errorf("angle %.2f deg outside servo range [%.1f, %.1f]",
			deg, sr.MinAngleDeg, sr.MaxAngleDeg)
	}
	pct := (deg - sr.MinAngleDeg) / (sr.MaxAngleDeg - sr.MinAngleDeg)
	us := float64(sr.MinWidthUS) + pct*float64(sr.MaxWidthUS-sr.MinWidthUS)
	return uint16(math.Round(us * 4)), nil
}

// Controller ties a kinematics engine to the actuator its motors are
// wired to.
type Controller struct {
	kin    *kinematics.Kinematics
	dev    Actuator
	rng    ServoRange
	logger golog.Logger
}

// New returns a controller for the given engine and actuator.
func New(kin *kinematics.Kinematics, dev Actuator, rng ServoRange, logger golog.Logger) *Controller {
	return &Controller{kin: kin, dev: dev, rng: rng, logger: logger}
}

// MoveTo solves the pose and commands all six channels. The solved
// angles are returned so the caller can log or replay them.
func (c *Controller) MoveTo(ctx context.Context, target r3.Vector, orientation *spatialmath.EulerAngles) ([kinematics.NumLegs]float64, error) {
	angles, err := c.kin.InverseKinematics(target, orientation)
	if err != nil {
		return angles, err
	}
	if err := ctx.Err(); err != nil {
		return angles, err
	}
	motors := c.kin.Motors()
	for i, angle := range angles {
		tgt, err := c.rng.Target(angle)
		if err != nil {
			return angles, errors.Wrapf(err, "leg %d", i)
		}
		if err := c.dev.SetTarget(motors[i].Channel, tgt); err != nil {
			return angles, errors.Wrapf(err, "leg %d", i)
		}
		c.logger.Debugw("commanded", "leg", i, "channel", motors[i].Channel, "target", tgt)
	}
	return angles, nil
}

// WaitUntilStopped polls the moving state until every servo has settled
// or the context is done.
func (c *Controller) WaitUntilStopped(ctx context.Context) error {
	for {
		state, err := c.dev.GetMovingState()
		if err != nil {
			return err
		}
		if state == maestro.ServosStopped {
			return nil
		}
		if !goutils.SelectContextOrWait(ctx, movingPollInterval) {
			return ctx.Err()
		}
	}
}

// Positions reads back the feedback position of every leg's channel, in
// quarter microseconds.
func (c *Controller) Positions() ([kinematics.NumLegs]int, error) {
	var out [kinematics.NumLegs]int
	for i, m := range c.kin.Motors() {
		pos, err := c.dev.GetPosition(m.Channel)
		if err != nil {
			return out, errors.Wrapf(err, "leg %d", i)
		}
		out[i] = pos
	}
	return out, nil
}

// Close releases the actuator connection.
func (c *Controller) Close() error {
	return c.dev.Close()
}
