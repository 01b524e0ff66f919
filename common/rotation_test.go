package common

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestRotationToSetForward(t *testing.T) {
	plane := DefaultProjectionPlane(mgl64.Vec3{0, 1, 0})

	cases := []struct {
		name    string
		current mgl64.Vec3
		desired mgl64.Vec3
		want    float64
	}{
		{"already_aligned", mgl64.Vec3{0, 0, -1}, mgl64.Vec3{0, 0, -1}, 0},
		{"quarter_turn", mgl64.Vec3{0, 0, -1}, mgl64.Vec3{-1, 0, 0}, math.Pi / 2},
		{"quarter_turn_other_way", mgl64.Vec3{0, 0, -1}, mgl64.Vec3{1, 0, 0}, -math.Pi / 2},
		{"half_turn", mgl64.Vec3{0, 0, -1}, mgl64.Vec3{0, 0, 1}, math.Pi},
		{"ignores_vertical_component", mgl64.Vec3{0, 0, -1}, mgl64.Vec3{-1, 5, 0}, math.Pi / 2},
		{"degenerate_desired", mgl64.Vec3{0, 0, -1}, mgl64.Vec3{0, 1, 0}, 0},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := plane.RotationToSetForward(c.current, c.desired)
			if math.Abs(got-c.want) > 1e-9 {
				t.Fatalf("rotation %v, want %v", got, c.want)
			}
		})
	}
}

func TestRotationArc(t *testing.T) {
	cases := []struct {
		name string
		from mgl64.Vec3
		to   mgl64.Vec3
	}{
		{"quarter_turn", mgl64.Vec3{1, 0, 0}, mgl64.Vec3{0, 1, 0}},
		{"small_tilt", mgl64.Vec3{0, 1, 0}, mgl64.Vec3{0.1, 1, 0}},
		{"opposite", mgl64.Vec3{0, 1, 0}, mgl64.Vec3{0, -1, 0}},
		{"unnormalized", mgl64.Vec3{3, 0, 0}, mgl64.Vec3{0, 0, 7}},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			q := RotationArc(c.from, c.to)
			got := q.Rotate(NormalizeOrZero(c.from))
			want := NormalizeOrZero(c.to)
			if got.Sub(want).Len() > 1e-9 {
				t.Fatalf("rotated %v to %v, want %v", c.from, got, want)
			}
		})
	}
}

func TestRotationArcIdentityForAligned(t *testing.T) {
	q := RotationArc(mgl64.Vec3{0, 1, 0}, mgl64.Vec3{0, 2, 0})
	if q != mgl64.QuatIdent() {
		t.Fatalf("aligned vectors should need no rotation, got %v", q)
	}
}
