package common

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// ProjectionPlane is the plane perpendicular to a character's up axis, used
// to measure rotations around that axis.
type ProjectionPlane struct {
	Forward  mgl64.Vec3
	Sideways mgl64.Vec3
}

func NewProjectionPlane(up, forward mgl64.Vec3) ProjectionPlane {
	return ProjectionPlane{
		Forward:  forward,
		Sideways: up.Cross(forward),
	}
}

// DefaultProjectionPlane builds a projection plane using negative Z as the
// default forward direction.
func DefaultProjectionPlane(up mgl64.Vec3) ProjectionPlane {
	return NewProjectionPlane(up, mgl64.Vec3{0, 0, -1})
}

func (p ProjectionPlane) projectAndNormalize(v mgl64.Vec3) (float64, float64) {
	x := v.Dot(p.Forward)
	y := v.Dot(p.Sideways)
	length := math.Hypot(x, y)
	if length < 1e-12 {
		return 0, 0
	}
	return x / length, y / length
}

// RotationToSetForward returns the signed rotation (radians) around the up
// axis that would take currentForward to desiredForward, measured on the
// projection plane.
func (p ProjectionPlane) RotationToSetForward(currentForward, desiredForward mgl64.Vec3) float64 {
	cx, cy := p.projectAndNormalize(currentForward)
	dx, dy := p.projectAndNormalize(desiredForward)
	if (cx == 0 && cy == 0) || (dx == 0 && dy == 0) {
		return 0
	}
	return math.Atan2(cx*dy-cy*dx, cx*dx+cy*dy)
}

// RotationArc returns the minimal rotation that takes from to to. Both
// vectors are assumed non-zero; they do not need to be normalized.
func RotationArc(from, to mgl64.Vec3) mgl64.Quat {
	f := NormalizeOrZero(from)
	t := NormalizeOrZero(to)
	if f.LenSqr() == 0 || t.LenSqr() == 0 {
		return mgl64.QuatIdent()
	}
	dot := Clamp(f.Dot(t), -1, 1)
	if dot > 1-1e-9 {
		return mgl64.QuatIdent()
	}
	if dot < -1+1e-9 {
		// Opposite vectors: pick any axis perpendicular to f.
		axis := f.Cross(mgl64.Vec3{1, 0, 0})
		if axis.LenSqr() < 1e-9 {
			axis = f.Cross(mgl64.Vec3{0, 1, 0})
		}
		return mgl64.QuatRotate(math.Pi, NormalizeOrZero(axis))
	}
	return mgl64.QuatRotate(math.Acos(dot), NormalizeOrZero(f.Cross(t)))
}
