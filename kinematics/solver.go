package kinematics

import (
	"math"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"github.com/alvidrezluke/lynceus-platform/utils"
)

// servoAngle reduces one leg to a planar two segment linkage and solves
// the servo angle with the law of cosines.
//
// r is the horizontal projection of the leg vector and d its full length.
// phi is the cosine of the angle between the bottom segment and that
// projection; it must land in [-1, 1] for the pose to be reachable.
// Non-finite inputs are rejected up front rather than letting a NaN flow
// through the trig calls.
func servoAngle(leg r3.Vector, topLength, bottomLength float64, dir Direction) (float64, error) {
	if !utils.IsFinite(leg.X) || !utils.IsFinite(leg.Y) || !utils.IsFinite(leg.Z) {
		return 0, errors.Wrap(ErrInvalidTargetPosition, "leg vector is not finite")
	}
	r := math.Hypot(leg.X, leg.Y)
	if r == 0 {
		return 0, errors.Wrap(ErrInvalidTargetPosition, "leg vector has no horizontal projection")
	}
	d2 := utils.Square(leg.X) + utils.Square(leg.Y) + utils.Square(leg.Z)
	phi := (d2 + utils.Square(bottomLength) - utils.Square(topLength)) / (2 * bottomLength * r)
	if math.IsNaN(phi) || phi < -1 || phi > 1 {
		return 0, errors.Wrapf(ErrInvalidTargetPosition, "acos argument %.4f out of range", phi)
	}

	base := math.Atan2(leg.Z, leg.Y)
	var angle float64
	switch dir {
	case Left:
		angle = base + math.Acos(phi)
	case Right:
		angle = base - math.Acos(phi)
	default:
		return 0, errors.Wrapf(ErrInvalidAngle, "unknown direction %d", int(dir))
	}
	if math.IsNaN(angle) {
		return 0, ErrInvalidAngle
	}
	return angle, nil
}
