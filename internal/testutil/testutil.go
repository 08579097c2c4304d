// Package testutil provides shared test utilities and fixtures.
//
// This package centralises common test helpers to reduce code duplication
// across test files and improve test maintainability.
package testutil

import (
	"testing"

	"gonum.org/v1/gonum/floats/scalar"

	"github.com/banshee-data/pathreplay/internal/se2"
)

// PoseTolerance is the default absolute tolerance for pose comparisons.
const PoseTolerance = 1e-9

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// AssertFloatNear checks that got is within tol of want.
func AssertFloatNear(t *testing.T, name string, got, want, tol float64) {
	t.Helper()
	if !scalar.EqualWithinAbs(got, want, tol) {
		t.Errorf("%s = %.12g, want %.12g (tol %g)", name, got, want, tol)
	}
}

// AssertPoseNear checks x and y within tol and heading modulo 2π within tol.
func AssertPoseNear(t *testing.T, got, want se2.Pose, tol float64) {
	t.Helper()
	AssertFloatNear(t, "x", got.X, want.X, tol)
	AssertFloatNear(t, "y", got.Y, want.Y, tol)
	AssertFloatNear(t, "heading", se2.AngleDiff(want.Heading, got.Heading), 0, tol)
}

// PoseNear is the boolean form of AssertPoseNear, for use in loops and
// property checks.
func PoseNear(got, want se2.Pose, tol float64) bool {
	return scalar.EqualWithinAbs(got.X, want.X, tol) &&
		scalar.EqualWithinAbs(got.Y, want.Y, tol) &&
		scalar.EqualWithinAbs(se2.AngleDiff(want.Heading, got.Heading), 0, tol)
}
