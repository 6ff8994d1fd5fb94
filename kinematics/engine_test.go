package kinematics

import (
	"math"
	"testing"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.viam.com/test"

	"github.com/alvidrezluke/lynceus-platform/spatialmath"
	"github.com/alvidrezluke/lynceus-platform/utils"
)

const (
	testTopLength    = 119.0
	testBottomLength = 21.1
)

// motors at the corners of a regular hexagon, horn mounting alternating
// sides
var testMotors = [NumLegs]Motor{
	{Position: r3.Vector{X: 28.3, Y: -94.45, Z: 10}, Direction: Right, Channel: 0},
	{Position: r3.Vector{X: 95.95, Y: 22.72, Z: 10}, Direction: Left, Channel: 1},
	{Position: r3.Vector{X: 67.65, Y: 71.73, Z: 10}, Direction: Right, Channel: 2},
	{Position: r3.Vector{X: -67.65, Y: 71.73, Z: 10}, Direction: Left, Channel: 3},
	{Position: r3.Vector{X: -95.95, Y: 22.72, Z: 10}, Direction: Right, Channel: 4},
	{Position: r3.Vector{X: -28.3, Y: -94.45, Z: 10}, Direction: Left, Channel: 5},
}

// the top plate attaches directly above each motor at 80% of its radius
func testPlatform() Platform {
	var p Platform
	for i, m := range testMotors {
		p.Attachments[i] = r3.Vector{X: 0.8 * m.Position.X, Y: 0.8 * m.Position.Y}
	}
	return p
}

// homePosition is a comfortably reachable neutral pose for the test
// geometry.
var homePosition = r3.Vector{Z: 125}

func newTestEngine(t *testing.T) *Kinematics {
	t.Helper()
	kin, err := New(testTopLength, testBottomLength, testMotors, testPlatform(), golog.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	return kin
}

func TestHomeSolveRoundTrip(t *testing.T) {
	kin := newTestEngine(t)
	angles, err := kin.InverseKinematics(homePosition, nil)
	test.That(t, err, test.ShouldBeNil)

	// feeding each angle back through the forward relationship must
	// reconstruct the home leg vector norms:
	//   d^2 = top^2 - bottom^2 + 2*bottom*r*cos(theta - base)
	legs := kin.LegVectors(homePosition, spatialmath.NewEulerAngles().RotationMatrix())
	for i, leg := range legs {
		r := math.Hypot(leg.X, leg.Y)
		d2 := utils.Square(leg.X) + utils.Square(leg.Y) + utils.Square(leg.Z)
		base := math.Atan2(leg.Z, leg.Y)
		forward := utils.Square(testTopLength) - utils.Square(testBottomLength) +
			2*testBottomLength*r*math.Cos(angles[i]-base)
		test.That(t, forward, test.ShouldAlmostEqual, d2, 1e-8)
	}
}

func TestZeroPoseLegVectors(t *testing.T) {
	kin := newTestEngine(t)
	legs := kin.LegVectors(r3.Vector{}, spatialmath.NewEulerAngles().RotationMatrix())
	platform := testPlatform()
	for i, leg := range legs {
		test.That(t, leg, test.ShouldResemble, platform.Attachments[i].Sub(testMotors[i].Position))
	}
}

func TestRotatedSolve(t *testing.T) {
	kin := newTestEngine(t)
	angles, err := kin.InverseKinematics(homePosition, &spatialmath.EulerAngles{Roll: 0.05, Pitch: -0.05, Yaw: 0.1})
	test.That(t, err, test.ShouldBeNil)
	home, err := kin.InverseKinematics(homePosition, nil)
	test.That(t, err, test.ShouldBeNil)
	// a small tilt must perturb every leg away from its home angle
	for i := range angles {
		test.That(t, math.Abs(angles[i]-home[i]), test.ShouldBeGreaterThan, 1e-6)
	}
}

func TestUnreachablePose(t *testing.T) {
	kin := newTestEngine(t)
	angles, err := kin.InverseKinematics(r3.Vector{Z: 1000}, nil)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, errors.Is(err, ErrInvalidTargetPosition), test.ShouldBeTrue)

	var legErr *LegError
	test.That(t, errors.As(err, &legErr), test.ShouldBeTrue)
	test.That(t, legErr.Leg, test.ShouldEqual, 0)

	// no partial solution on failure
	test.That(t, angles, test.ShouldResemble, [NumLegs]float64{})
}

func TestNonFiniteInputs(t *testing.T) {
	kin := newTestEngine(t)

	_, err := kin.InverseKinematics(homePosition, &spatialmath.EulerAngles{Roll: math.NaN()})
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, errors.Is(err, ErrInvalidTargetOrientation), test.ShouldBeTrue)

	_, err = kin.InverseKinematics(r3.Vector{X: math.NaN(), Z: 125}, nil)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, errors.Is(err, ErrInvalidTargetPosition), test.ShouldBeTrue)
}

func TestNewValidation(t *testing.T) {
	logger := golog.NewTestLogger(t)

	_, err := New(0, testBottomLength, testMotors, testPlatform(), logger)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "positive")

	_, err = New(math.NaN(), testBottomLength, testMotors, testPlatform(), logger)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, errors.Is(err, ErrFloatConversion), test.ShouldBeTrue)

	badMotors := testMotors
	badMotors[3].Position.Y = math.Inf(-1)
	_, err = New(testTopLength, testBottomLength, badMotors, testPlatform(), logger)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, errors.Is(err, ErrFloatConversion), test.ShouldBeTrue)
	test.That(t, err.Error(), test.ShouldContainSubstring, "motor 3")
}

func TestParseDirection(t *testing.T) {
	dir, err := ParseDirection("Left")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, dir, test.ShouldEqual, Left)

	dir, err = ParseDirection("right")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, dir, test.ShouldEqual, Right)

	_, err = ParseDirection("sideways")
	test.That(t, err, test.ShouldNotBeNil)
}
