package kinematics

import (
	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"github.com/alvidrezluke/lynceus-platform/spatialmath"
	"github.com/alvidrezluke/lynceus-platform/utils"
)

// Kinematics solves inverse kinematics for a six leg parallel platform.
// The geometry is immutable after construction, so a solve is a pure
// function of the requested pose and is safe to call concurrently.
type Kinematics struct {
	topLegLength    float64
	bottomLegLength float64
	motors          [NumLegs]Motor
	platform        Platform
	logger          golog.Logger
}

// New validates the geometry and returns an engine for it. The two leg
// segment lengths are shared by all six legs.
func New(topLength, bottomLength float64, motors [NumLegs]Motor, platform Platform, logger golog.Logger) (*Kinematics, error) {
	if !utils.IsFinite(topLength) || !utils.IsFinite(bottomLength) {
		return nil, errors.Wrap(ErrFloatConversion, "leg segment length")
	}
	if topLength <= 0 || bottomLength <= 0 {
		return nil, errors.Errorf("leg segment lengths must be positive, got top %v and bottom %v", topLength, bottomLength)
	}
	for i, m := range motors {
		if !utils.IsFinite(m.Position.X) || !utils.IsFinite(m.Position.Y) || !utils.IsFinite(m.Position.Z) {
			return nil, errors.Wrapf(ErrFloatConversion, "motor %d position", i)
		}
	}
	for i, a := range platform.Attachments {
		if !utils.IsFinite(a.X) || !utils.IsFinite(a.Y) || !utils.IsFinite(a.Z) {
			return nil, errors.Wrapf(ErrFloatConversion, "attachment %d offset", i)
		}
	}
	return &Kinematics{
		topLegLength:    topLength,
		bottomLegLength: bottomLength,
		motors:          motors,
		platform:        platform,
		logger:          logger,
	}, nil
}

// Motors returns a copy of the motor set, index aligned with solved
// angles.
func (k *Kinematics) Motors() [NumLegs]Motor {
	return k.motors
}

// LegVectors computes, for each leg, the world frame vector from the
// motor base to where the platform attachment point lands once the
// platform is moved to target and rotated.
func (k *Kinematics) LegVectors(target r3.Vector, rot *spatialmath.RotationMatrix) [NumLegs]r3.Vector {
	var legs [NumLegs]r3.Vector
	for i, m := range k.motors {
		legs[i] = target.Add(rot.Mul(k.platform.Attachments[i])).Sub(m.Position)
	}
	return legs
}

// InverseKinematics returns the six servo angles (radians, index aligned
// with the motors) that place the platform at the given pose. A pose is
// valid only if every leg can reach it: the first leg failure aborts the
// solve and no partial solution is returned. A nil orientation means no
// rotation.
func (k *Kinematics) InverseKinematics(target r3.Vector, orientation *spatialmath.EulerAngles) ([NumLegs]float64, error) {
	var angles [NumLegs]float64
	if orientation == nil {
		orientation = spatialmath.NewEulerAngles()
	}
	if !orientation.IsFinite() {
		return angles, errors.Wrapf(ErrInvalidTargetOrientation,
			"orientation (%v, %v, %v) is not finite", orientation.Roll, orientation.Pitch, orientation.Yaw)
	}
	if !utils.IsFinite(target.X) || !utils.IsFinite(target.Y) || !utils.IsFinite(target.Z) {
		return angles, errors.Wrap(ErrInvalidTargetPosition, "target is not finite")
	}

	rot := orientation.RotationMatrix()
	legs := k.LegVectors(target, rot)
	for i, leg := range legs {
		angle, err := servoAngle(leg, k.topLegLength, k.bottomLegLength, k.motors[i].Direction)
		if err != nil {
			k.logger.Debugw("pose unreachable", "leg", i, "error", err)
			return [NumLegs]float64{}, newLegError(i, err)
		}
		angles[i] = angle
	}
	return angles, nil
}
