package common

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

func Lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

func Clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// ClampMag limits the magnitude of v to max, preserving its direction.
func ClampMag(v mgl64.Vec3, max float64) mgl64.Vec3 {
	lenSq := v.LenSqr()
	if lenSq <= max*max {
		return v
	}
	return v.Mul(max / math.Sqrt(lenSq))
}

// NormalizeOrZero returns the unit vector of v, or the zero vector when v is
// too small to normalize safely.
func NormalizeOrZero(v mgl64.Vec3) mgl64.Vec3 {
	lenSq := v.LenSqr()
	if lenSq < 1e-12 {
		return mgl64.Vec3{}
	}
	return v.Mul(1 / math.Sqrt(lenSq))
}

// Project returns the component of v along onto. onto does not need to be
// normalized.
func Project(v, onto mgl64.Vec3) mgl64.Vec3 {
	lenSq := onto.LenSqr()
	if lenSq < 1e-12 {
		return mgl64.Vec3{}
	}
	return onto.Mul(v.Dot(onto) / lenSq)
}

// Reject returns v with its component along axis removed.
func Reject(v, axis mgl64.Vec3) mgl64.Vec3 {
	return v.Sub(Project(v, axis))
}

func IsFinite(v mgl64.Vec3) bool {
	for i := 0; i < 3; i++ {
		if math.IsNaN(v[i]) || math.IsInf(v[i], 0) {
			return false
		}
	}
	return true
}
