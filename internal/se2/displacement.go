package se2

import "fmt"

// Displacement returns pose b expressed in the frame of pose a (A⁻¹·B):
// how far b lies from a, and at what relative heading, measured along a's
// own orientation.
func Displacement(a, b Pose) (Pose, error) {
	ma, mb := ToMatrix(a), ToMatrix(b)
	if !IsValidTransform(ma) || !IsValidTransform(mb) {
		return Pose{}, fmt.Errorf("displacement from %v to %v: %w", a, b, ErrNotRigid)
	}
	aInv, err := Invert(ma)
	if err != nil {
		return Pose{}, fmt.Errorf("displacement from %v: %w", a, err)
	}
	return ExtractPose(Multiply(aInv, mb)), nil
}

// Compose applies displacement d in the frame of a, the inverse of
// Displacement: Compose(a, Displacement(a, b)) == b.
func Compose(a, d Pose) Pose {
	return ExtractPose(Multiply(ToMatrix(a), ToMatrix(d)))
}
