package frames

import "gonum.org/v1/gonum/num/quat"

// ExternalPositionToSim maps an external (Z-up) position into the simulation frame.
func ExternalPositionToSim(p Vector3) Vector3 {
	return Vector3{X: p.Y, Y: p.Z, Z: p.X}
}

// SimPositionToExternal is the inverse of ExternalPositionToSim.
//
// An older keyboard controller negated the external X component here. That
// variant is not supported: both directions are an unsigned permutation.
func SimPositionToExternal(p Vector3) Vector3 {
	return Vector3{X: p.Z, Y: p.X, Z: p.Y}
}

// ExternalOrientationToSim swaps the Y and Z vector components.
func ExternalOrientationToSim(q Quaternion) Quaternion {
	return Quaternion{X: q.X, Y: q.Z, Z: q.Y, W: q.W}
}

// SimOrientationToExternal is the inverse of ExternalOrientationToSim. The
// swap is its own inverse.
func SimOrientationToExternal(q Quaternion) Quaternion {
	return Quaternion{X: q.X, Y: q.Z, Z: q.Y, W: q.W}
}

// ExternalPoseToSim converts both halves of a pose.
func ExternalPoseToSim(p Pose) Pose {
	return Pose{
		Position:    ExternalPositionToSim(p.Position),
		Orientation: ExternalOrientationToSim(p.Orientation),
	}
}

// SimPoseToExternal converts both halves of a pose.
func SimPoseToExternal(p Pose) Pose {
	return Pose{
		Position:    SimPositionToExternal(p.Position),
		Orientation: SimOrientationToExternal(p.Orientation),
	}
}

// Normalize scales q to unit length. The zero quaternion maps to Identity.
func Normalize(q Quaternion) Quaternion {
	n := q.Number()
	abs := quat.Abs(n)
	if abs == 0 {
		return Identity
	}
	return FromNumber(quat.Scale(1/abs, n))
}

// IsUnit reports whether |q| is within tol of 1.
func IsUnit(q Quaternion, tol float64) bool {
	d := q.Norm() - 1
	return d <= tol && d >= -tol
}

// PositionFromSlice reads x, y, z from a raw message field.
func PositionFromSlice(field string, s []float64) (Vector3, error) {
	if err := checkLen(field, s, 3); err != nil {
		return Vector3{}, err
	}
	return Vector3{X: s[0], Y: s[1], Z: s[2]}, nil
}

// OrientationFromSlice reads x, y, z, w from a raw message field.
func OrientationFromSlice(field string, s []float64) (Quaternion, error) {
	if err := checkLen(field, s, 4); err != nil {
		return Quaternion{}, err
	}
	return Quaternion{X: s[0], Y: s[1], Z: s[2], W: s[3]}, nil
}

// ExternalPositionSliceToSim is ExternalPositionToSim for raw components.
func ExternalPositionSliceToSim(s []float64) (Vector3, error) {
	p, err := PositionFromSlice("position", s)
	if err != nil {
		return Vector3{}, err
	}
	return ExternalPositionToSim(p), nil
}

// ExternalOrientationSliceToSim is ExternalOrientationToSim for raw components.
func ExternalOrientationSliceToSim(s []float64) (Quaternion, error) {
	q, err := OrientationFromSlice("orientation", s)
	if err != nil {
		return Quaternion{}, err
	}
	return ExternalOrientationToSim(q), nil
}
