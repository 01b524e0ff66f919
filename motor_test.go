package stride

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func vecNear(a, b mgl64.Vec3, tolerance float64) bool {
	return a.Sub(b).Len() <= tolerance
}

func TestVelChangeCalcBoost(t *testing.T) {
	cases := []struct {
		name          string
		change        VelChange
		frameDuration float64
		want          mgl64.Vec3
	}{
		{
			"boost_only",
			BoostChange(mgl64.Vec3{3, 0, 0}),
			0.1,
			mgl64.Vec3{3, 0, 0},
		},
		{
			"acceleration_only",
			AccelerationChange(mgl64.Vec3{10, 0, 0}),
			0.1,
			mgl64.Vec3{1, 0, 0},
		},
		{
			"combined",
			VelChange{Acceleration: mgl64.Vec3{10, 0, 0}, Boost: mgl64.Vec3{0, 2, 0}},
			0.5,
			mgl64.Vec3{5, 2, 0},
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := c.change.CalcBoost(c.frameDuration)
			if !vecNear(got, c.want, 1e-9) {
				t.Fatalf("CalcBoost = %v, want %v", got, c.want)
			}
		})
	}
}

func TestVelChangeCancelOnAxis(t *testing.T) {
	change := VelChange{
		Acceleration: mgl64.Vec3{3, 4, 0},
		Boost:        mgl64.Vec3{-1, 2, 5},
	}
	change.CancelOnAxis(mgl64.Vec3{0, 1, 0})
	if change.Acceleration[1] != 0 || change.Boost[1] != 0 {
		t.Fatalf("axis component should be cancelled, got acceleration %v boost %v",
			change.Acceleration, change.Boost)
	}
	if change.Acceleration[0] != 3 || change.Boost[0] != -1 || change.Boost[2] != 5 {
		t.Fatalf("other axes should be untouched, got acceleration %v boost %v",
			change.Acceleration, change.Boost)
	}
}

func TestVelChangeApplyBoostLimit(t *testing.T) {
	direction := mgl64.Vec3{1, 0, 0}
	cases := []struct {
		name      string
		change    VelChange
		limit     float64
		wantBoost float64
		wantAccel float64
	}{
		{
			"under_limit_untouched",
			VelChange{Boost: mgl64.Vec3{2, 0, 0}},
			5,
			2, 0,
		},
		{
			"cut_comes_out_of_boost",
			VelChange{Boost: mgl64.Vec3{4, 0, 0}},
			1,
			1, 0,
		},
		{
			"cut_spills_into_acceleration",
			VelChange{Acceleration: mgl64.Vec3{30, 0, 0}, Boost: mgl64.Vec3{1, 0, 0}},
			2,
			0, 20,
		},
	}

	const frameDuration = 0.1
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			change := c.change
			change.ApplyBoostLimit(frameDuration, direction, c.limit)
			if got := change.Boost.Dot(direction); math.Abs(got-c.wantBoost) > 1e-9 {
				t.Fatalf("boost on axis = %v, want %v", got, c.wantBoost)
			}
			if got := change.Acceleration.Dot(direction); math.Abs(got-c.wantAccel) > 1e-9 {
				t.Fatalf("acceleration on axis = %v, want %v", got, c.wantAccel)
			}
			if got := change.CalcBoost(frameDuration).Dot(direction); c.limit < got-1e-9 {
				t.Fatalf("total boost %v exceeds limit %v", got, c.limit)
			}
		})
	}
}

func TestMotorClear(t *testing.T) {
	motor := Motor{
		Lin: VelChange{Boost: mgl64.Vec3{1, 2, 3}},
		Ang: VelChange{Acceleration: mgl64.Vec3{4, 5, 6}},
	}
	motor.Clear()
	if motor.Lin != (VelChange{}) || motor.Ang != (VelChange{}) {
		t.Fatalf("motor should be zero after Clear, got %+v", motor)
	}
}
