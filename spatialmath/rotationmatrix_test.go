package spatialmath

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
	"gonum.org/v1/gonum/mat"
)

func TestZeroRotation(t *testing.T) {
	rm := NewEulerAngles().RotationMatrix()
	identity := [9]float64{1, 0, 0, 0, 1, 0, 0, 0, 1}
	for i, want := range identity {
		test.That(t, rm.mat[i], test.ShouldEqual, want)
	}
}

func TestRotationFixtures(t *testing.T) {
	// reference matrices precomputed at 4 decimal places
	for _, tc := range []struct {
		name string
		ea   *EulerAngles
		want [9]float64
	}{
		{
			"quarter third half pi",
			&EulerAngles{Roll: math.Pi / 4, Pitch: math.Pi / 3, Yaw: math.Pi / 2},
			[9]float64{
				0, -0.7071, 0.7071,
				0.5, 0.6124, 0.6124,
				-0.8660, 0.3536, 0.3536,
			},
		},
		{
			"equal angles",
			&EulerAngles{Roll: math.Sqrt2 / 2, Pitch: math.Sqrt2 / 2, Yaw: math.Sqrt2 / 2},
			[9]float64{
				0.5780, -0.1730, 0.7975,
				0.4939, 0.8521, -0.1730,
				-0.6496, 0.4939, 0.5780,
			},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			rm := tc.ea.RotationMatrix()
			for i, want := range tc.want {
				test.That(t, rm.mat[i], test.ShouldEqual, want)
			}
		})
	}
}

func TestOrthonormalWithinRounding(t *testing.T) {
	for _, ea := range []*EulerAngles{
		{Roll: 0.3, Pitch: -1.2, Yaw: 2.9},
		{Roll: math.Pi / 4, Pitch: math.Pi / 3, Yaw: math.Pi / 2},
		{Roll: -2.1, Pitch: 0.001, Yaw: -0.7},
	} {
		rm := ea.RotationMatrix()
		a := mat.NewDense(3, 3, rm.RowMajor())
		var p mat.Dense
		p.Mul(a.T(), a)
		for i := 0; i < 3; i++ {
			for j := 0; j < 3; j++ {
				want := 0.0
				if i == j {
					want = 1.0
				}
				// entries are rounded to 4 places, so the product can
				// drift by a few multiples of that
				test.That(t, p.At(i, j), test.ShouldAlmostEqual, want, 1e-3)
			}
		}
	}
}

func TestNewRotationMatrix(t *testing.T) {
	_, err := NewRotationMatrix([]float64{1, 2, 3})
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "exactly 9")

	rm, err := NewRotationMatrix([]float64{1, 0, 0, 0, 1, 0, 0, 0, 1})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, rm.At(1, 1), test.ShouldEqual, 1)
	test.That(t, rm.Row(2), test.ShouldResemble, r3.Vector{X: 0, Y: 0, Z: 1})
}

func TestMulAndTranspose(t *testing.T) {
	// a quarter turn of yaw maps x onto y exactly once rounded
	rm := (&EulerAngles{Yaw: math.Pi / 2}).RotationMatrix()
	rotated := rm.Mul(r3.Vector{X: 1})
	test.That(t, rotated, test.ShouldResemble, r3.Vector{X: 0, Y: 1, Z: 0})

	back := rm.Transpose().Mul(rotated)
	test.That(t, back, test.ShouldResemble, r3.Vector{X: 1, Y: 0, Z: 0})
}

func TestIsFinite(t *testing.T) {
	test.That(t, (&EulerAngles{Roll: 1e9}).IsFinite(), test.ShouldBeTrue)
	test.That(t, (&EulerAngles{Pitch: math.NaN()}).IsFinite(), test.ShouldBeFalse)
	test.That(t, (&EulerAngles{Yaw: math.Inf(1)}).IsFinite(), test.ShouldBeFalse)
}
