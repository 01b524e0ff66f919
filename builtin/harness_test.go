package builtin

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/milk9111/stride"
)

const testDt = 1.0 / 60

// testRig runs the controller against a minimal simulated world: flat ground
// at a fixed height, constant gravity, semi-implicit Euler integration. It
// stands in for a physics backend the way backend/cpspace does, casting the
// sensor straight down before the frame and folding the motor's output into
// the velocity after it.
type testRig struct {
	controller *stride.Controller
	tracker    stride.RigidBodyTracker
	sensor     stride.ProximitySensor
	motor      stride.Motor
	groundY    float64
}

func newTestRig(cfg WalkConfig, startHeight float64) *testRig {
	r := &testRig{
		controller: stride.NewController(),
		groundY:    0,
	}
	r.tracker.Rotation = mgl64.QuatIdent()
	r.tracker.Gravity = mgl64.Vec3{0, -500, 0}
	r.tracker.Translation = mgl64.Vec3{0, startHeight, 0}
	// The controller only configures the sensor at the end of a frame; prime
	// it so the very first cast works.
	r.sensor.CastDirection = mgl64.Vec3{0, -1, 0}
	r.sensor.CastRange = cfg.FloatHeight + cfg.ClingDistance
	return r
}

func (r *testRig) step(feed func(c *stride.Controller)) {
	distance := r.tracker.Translation.Y() - r.groundY
	if 0 < r.sensor.CastRange && distance <= r.sensor.CastRange {
		r.sensor.Output = &stride.ProximitySensorOutput{
			Entity:    1,
			Proximity: distance,
			Normal:    mgl64.Vec3{0, 1, 0},
		}
	} else {
		r.sensor.Output = nil
	}

	r.controller.StartFeeding()
	feed(r.controller)
	r.controller.Update(testDt, &r.tracker, &r.sensor, &r.motor)

	r.tracker.Velocity = r.tracker.Velocity.
		Add(r.motor.Lin.CalcBoost(testDt)).
		Add(r.tracker.Gravity.Mul(testDt))
	r.tracker.Translation = r.tracker.Translation.Add(r.tracker.Velocity.Mul(testDt))
}

// groundDistance is what the next sensor cast would read.
func (r *testRig) groundDistance() float64 {
	return r.tracker.Translation.Y() - r.groundY
}

func (r *testRig) mustAirborne() bool {
	airborne, err := r.controller.IsAirborne()
	if err != nil {
		panic(err)
	}
	return airborne
}

func testWalkConfig() WalkConfig {
	return WalkConfig{
		Up:              mgl64.Vec3{0, 1, 0},
		FloatHeight:     32,
		ClingDistance:   8,
		SpringStrength:  400,
		SpringDampening: 1.2,
		Acceleration:    1200,
		AirAcceleration: 500,
		CoyoteTime:      0.15,
	}
}

func near(a, b, tolerance float64) bool {
	return math.Abs(a-b) <= tolerance
}
