package se2

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrSingularMatrix is returned by Invert when the determinant is exactly zero.
	ErrSingularMatrix = errors.New("se2: matrix is not invertible")
	// ErrNotRigid is returned when a pose does not form a finite rigid transform.
	ErrNotRigid = errors.New("se2: not a rigid transform")
)

// MatrixValidationTolerance is the tolerance for checking rotation block validity.
const MatrixValidationTolerance = 0.01

// Transform is a 3x3 homogeneous SE(2) matrix stored row-major:
//
//	[ m0 m1 m2 ]   [ cos θ  -sin θ  tx ]
//	[ m3 m4 m5 ] = [ sin θ   cos θ  ty ]
//	[ m6 m7 m8 ]   [   0       0     1 ]
//
// The upper-left 2x2 block must be a pure rotation and the bottom row must be
// [0 0 1]; Invert and ExtractPose assume that shape.
type Transform [9]float64

// Identity returns the identity transform.
func Identity() Transform {
	return Transform{
		1, 0, 0,
		0, 1, 0,
		0, 0, 1,
	}
}

// At returns the element at row r, column c.
func (m Transform) At(r, c int) float64 {
	return m[r*3+c]
}

// Det returns the full 3x3 determinant.
func (m Transform) Det() float64 {
	return m[0]*(m[4]*m[8]-m[5]*m[7]) -
		m[1]*(m[3]*m[8]-m[5]*m[6]) +
		m[2]*(m[3]*m[7]-m[4]*m[6])
}

// ToMatrix builds the homogeneous transform for p.
func ToMatrix(p Pose) Transform {
	c, s := math.Cos(p.Heading), math.Sin(p.Heading)
	return Transform{
		c, -s, p.X,
		s, c, p.Y,
		0, 0, 1,
	}
}

// Invert returns the inverse of m using the closed-form adjugate for a
// matrix whose bottom row is [0 0 1].
func Invert(m Transform) (Transform, error) {
	det := m.Det()
	if det == 0 {
		return Transform{}, fmt.Errorf("invert: determinant %g: %w", det, ErrSingularMatrix)
	}

	a, b, tx := m[0], m[1], m[2]
	c, d, ty := m[3], m[4], m[5]

	return Transform{
		d / det, -b / det, (b*ty - d*tx) / det,
		-c / det, a / det, (c*tx - a*ty) / det,
		0, 0, 1,
	}, nil
}

// Multiply returns the matrix product a·b.
func Multiply(a, b Transform) Transform {
	var out Transform
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			var sum float64
			for k := 0; k < 3; k++ {
				sum += a[i*3+k] * b[k*3+j]
			}
			out[i*3+j] = sum
		}
	}
	return out
}

// ExtractPose reads the pose encoded by m. The rotation block is not
// re-validated.
func ExtractPose(m Transform) Pose {
	return Pose{
		X:       m[2],
		Y:       m[5],
		Heading: math.Atan2(m[3], m[0]),
	}
}

// IsValidTransform checks that m is a proper rigid transform: all entries
// finite, det ≈ 1 (rotation, not reflection or scale) and bottom row [0 0 1].
func IsValidTransform(m Transform) bool {
	for _, v := range m {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	// The rotation block determinant equals the full determinant when the
	// bottom row is [0 0 1], so check the row first.
	if m[6] != 0 || m[7] != 0 || math.Abs(m[8]-1.0) > 0.001 {
		return false
	}
	if math.Abs(m.Det()-1.0) > MatrixValidationTolerance {
		return false
	}
	// Columns of a rotation are orthogonal.
	return math.Abs(m[0]*m[1]+m[3]*m[4]) <= MatrixValidationTolerance
}
