// Package kinematics computes inverse kinematics for a six leg parallel
// platform: given a target pose and the fixed geometry it derives the six
// servo angles that place the platform there.
package kinematics

import (
	"strings"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
)

// NumLegs is the number of kinematic chains connecting the fixed motor
// bases to the platform. The geometry types use fixed-size arrays so a
// configuration with the wrong leg count cannot be represented.
const NumLegs = 6

// Direction selects which of the two angular solution branches a leg's
// servo uses. The horn mounting alternates sides around the platform, so
// the two branches are mechanically distinct.
type Direction int

const (
	// Left selects base + acos(phi).
	Left Direction = iota
	// Right selects base - acos(phi).
	Right
)

func (d Direction) String() string {
	switch d {
	case Left:
		return "left"
	case Right:
		return "right"
	}
	return "unknown"
}

// ParseDirection maps a configuration string onto a Direction.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(s) {
	case "left":
		return Left, nil
	case "right":
		return Right, nil
	}
	return Left, errors.Errorf("unknown direction %q", s)
}

// Motor is one fixed servo base: its world frame position, which solution
// branch its horn uses, and the actuator channel it is wired to. Motors
// are value data created once from calibration and never mutated.
type Motor struct {
	Position  r3.Vector
	Direction Direction
	Channel   int
}

// Platform describes the rigid top plate: a center reference point and
// the six attachment offsets, expressed in the platform's local frame.
// Attachment i belongs to the leg driven by motor i.
type Platform struct {
	Center      r3.Vector
	Attachments [NumLegs]r3.Vector
}
