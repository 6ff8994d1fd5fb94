// Package spatialmath defines the spatial types used to describe platform
// poses: euler angles and rotation matrices over r3 vectors.
package spatialmath

import (
	"math"

	"github.com/alvidrezluke/lynceus-platform/utils"
)

// EulerAngles are three angles (in radians) representing the rotation of
// the platform frame relative to the world frame. They are applied
// intrinsically in ZYX order: yaw about world Z, then pitch about Y, then
// roll about X.
type EulerAngles struct {
	Roll  float64 `json:"roll"`
	Pitch float64 `json:"pitch"`
	Yaw   float64 `json:"yaw"`
}

// NewEulerAngles creates an empty EulerAngles struct.
func NewEulerAngles() *EulerAngles {
	return &EulerAngles{}
}

// IsFinite reports whether all three angles are finite real numbers.
func (ea *EulerAngles) IsFinite() bool {
	return utils.IsFinite(ea.Roll) && utils.IsFinite(ea.Pitch) && utils.IsFinite(ea.Yaw)
}

// RotationMatrix returns the rotation matrix representation of the euler
// angles. Every entry is rounded per the package rounding policy; see
// RotationMatrix for why.
func (ea *EulerAngles) RotationMatrix() *RotationMatrix {
	ca, sa := math.Cos(ea.Yaw), math.Sin(ea.Yaw)
	cb, sb := math.Cos(ea.Pitch), math.Sin(ea.Pitch)
	cg, sg := math.Cos(ea.Roll), math.Sin(ea.Roll)

	rm := &RotationMatrix{[9]float64{
		ca * cb, ca*sb*sg - sa*cg, sa*sg + ca*cg*sb,
		sa * cb, ca*cg + sa*sb*sg, cg*sa*sb - ca*sg,
		-sb, cb * sg, cb * cg,
	}}
	for i := range rm.mat {
		rm.mat[i] = roundPlaces(rm.mat[i], matrixPrecision)
	}
	return rm
}
