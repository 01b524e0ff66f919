package builtin

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/milk9111/stride"
)

func feedWalk(cfg WalkConfig, desired mgl64.Vec3) func(c *stride.Controller) {
	return func(c *stride.Controller) {
		c.FeedBasis(&Walk{DesiredVelocity: desired, Config: cfg})
	}
}

func TestWalkFloatsAtEquilibrium(t *testing.T) {
	cfg := testWalkConfig()
	rig := newTestRig(cfg, cfg.FloatHeight)

	// At the float height with no velocity the spring exactly compensates
	// gravity, so the character must not drift at all.
	for i := 0; i < 10; i++ {
		rig.step(feedWalk(cfg, mgl64.Vec3{}))
		if !near(rig.groundDistance(), cfg.FloatHeight, 1e-9) {
			t.Fatalf("frame %d: drifted to distance %v, want %v",
				i, rig.groundDistance(), cfg.FloatHeight)
		}
	}
	if rig.mustAirborne() {
		t.Fatalf("floating at the float height should not count as airborne")
	}
}

func TestWalkSpringConvergesToFloatHeight(t *testing.T) {
	cases := []struct {
		name        string
		startHeight float64
	}{
		{"from_below", 26},
		{"from_above", 38},
	}

	cfg := testWalkConfig()
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			rig := newTestRig(cfg, c.startHeight)
			for i := 0; i < 180; i++ {
				rig.step(feedWalk(cfg, mgl64.Vec3{}))
			}
			if !near(rig.groundDistance(), cfg.FloatHeight, 0.1) {
				t.Fatalf("settled at distance %v, want %v", rig.groundDistance(), cfg.FloatHeight)
			}
			if rig.mustAirborne() {
				t.Fatalf("should have settled on the ground")
			}
		})
	}
}

func TestWalkReachesDesiredVelocity(t *testing.T) {
	cfg := testWalkConfig()
	rig := newTestRig(cfg, cfg.FloatHeight)
	desired := mgl64.Vec3{160, 0, 0}

	for i := 0; i < 60; i++ {
		rig.step(feedWalk(cfg, desired))
	}
	if !near(rig.tracker.Velocity.X(), desired.X(), 1e-6) {
		t.Fatalf("velocity %v, want %v", rig.tracker.Velocity.X(), desired.X())
	}
	walk := rig.controller.Basis().(*Walk)
	if !near(walk.RunningVelocity().X(), desired.X(), 1e-6) {
		t.Fatalf("running velocity %v, want %v", walk.RunningVelocity().X(), desired.X())
	}

	// Dropping the input stops crisply through the boost path.
	for i := 0; i < 30; i++ {
		rig.step(feedWalk(cfg, mgl64.Vec3{}))
	}
	if !near(rig.tracker.Velocity.X(), 0, 1e-9) {
		t.Fatalf("velocity after stopping %v, want 0", rig.tracker.Velocity.X())
	}
}

func TestWalkAccelerationIsLimited(t *testing.T) {
	cfg := testWalkConfig()
	rig := newTestRig(cfg, cfg.FloatHeight)
	desired := mgl64.Vec3{160, 0, 0}

	// Starting from rest the direction change factor is 1.5, so the first
	// frame may not gain more than 1.5 times the acceleration limit.
	rig.step(feedWalk(cfg, desired))
	maxGain := 1.5 * cfg.Acceleration * testDt
	if gain := rig.tracker.Velocity.X(); maxGain+1e-9 < gain {
		t.Fatalf("first frame gained %v, limit %v", gain, maxGain)
	}
}

func TestWalkCoyoteTime(t *testing.T) {
	cfg := testWalkConfig()
	rig := newTestRig(cfg, cfg.FloatHeight)
	for i := 0; i < 10; i++ {
		rig.step(feedWalk(cfg, mgl64.Vec3{}))
	}

	// Losing the ground does not make the character airborne right away.
	rig.tracker.Translation = rig.tracker.Translation.Add(mgl64.Vec3{0, 200, 0})
	rig.step(feedWalk(cfg, mgl64.Vec3{}))
	if rig.mustAirborne() {
		t.Fatalf("should still be in coyote time right after losing the ground")
	}
	walk := rig.controller.Basis().(*Walk)
	if _, lost := walk.AirborneDuration(); !lost {
		t.Fatalf("the ground loss itself should be tracked immediately")
	}

	frames := int(cfg.CoyoteTime/testDt) + 2
	for i := 0; i < frames; i++ {
		rig.step(feedWalk(cfg, mgl64.Vec3{}))
	}
	if !rig.mustAirborne() {
		t.Fatalf("should be airborne after the coyote time passed")
	}
}

func TestWalkCoyoteJump(t *testing.T) {
	cfg := testWalkConfig()
	jumpCfg := JumpConfig{CoyoteTime: cfg.CoyoteTime, InputBufferTime: 0.2}
	rig := newTestRig(cfg, cfg.FloatHeight)
	for i := 0; i < 10; i++ {
		rig.step(feedWalk(cfg, mgl64.Vec3{}))
	}

	// Walk off a ledge, then jump within the coyote window.
	rig.tracker.Translation = rig.tracker.Translation.Add(mgl64.Vec3{0, 200, 0})
	rig.step(feedWalk(cfg, mgl64.Vec3{}))
	rig.step(func(c *stride.Controller) {
		c.FeedBasis(&Walk{Config: cfg})
		c.FeedAction(&Jump{Height: 90, Config: jumpCfg})
	})

	if rig.controller.ActionName() != "jump" {
		t.Fatalf("the jump should start during coyote time")
	}
	if rig.tracker.Velocity.Y() <= 0 {
		t.Fatalf("the jump should have boosted upward, velocity %v", rig.tracker.Velocity.Y())
	}
	// Jumping forfeits the rest of the coyote window.
	if !rig.mustAirborne() {
		t.Fatalf("jumping should make the character count as airborne immediately")
	}
}

func TestWalkFreeFallExtraGravity(t *testing.T) {
	cfg := testWalkConfig()
	cfg.FreeFallExtraGravity = 300
	plain := testWalkConfig()

	fall := func(cfg WalkConfig) float64 {
		rig := newTestRig(cfg, cfg.FloatHeight+500)
		for i := 0; i < 30; i++ {
			rig.step(feedWalk(cfg, mgl64.Vec3{}))
		}
		return rig.tracker.Velocity.Y()
	}

	if boosted, normal := fall(cfg), fall(plain); normal <= boosted {
		t.Fatalf("extra gravity should fall faster: %v vs %v", boosted, normal)
	}
}

func TestWalkRidesMovingPlatform(t *testing.T) {
	cfg := testWalkConfig()
	rig := newTestRig(cfg, cfg.FloatHeight)
	platformVelocity := mgl64.Vec3{50, 0, 0}

	// Hand-feed sensor output for a platform moving sideways; the walk should
	// carry the character along without any desired velocity.
	for i := 0; i < 30; i++ {
		rig.controller.StartFeeding()
		rig.controller.FeedBasis(&Walk{Config: cfg})
		rig.sensor.Output = &stride.ProximitySensorOutput{
			Entity:       7,
			Proximity:    cfg.FloatHeight,
			Normal:       mgl64.Vec3{0, 1, 0},
			EntityLinvel: platformVelocity,
		}
		rig.controller.Update(testDt, &rig.tracker, &rig.sensor, &rig.motor)
		rig.tracker.Velocity = rig.tracker.Velocity.
			Add(rig.motor.Lin.CalcBoost(testDt)).
			Add(rig.tracker.Gravity.Mul(testDt))
	}

	walk := rig.controller.Basis().(*Walk)
	if entity, ok := walk.StandingOnEntity(); !ok || entity != 7 {
		t.Fatalf("standing on = %v, %v, want entity 7", entity, ok)
	}
	if math.Abs(rig.tracker.Velocity.X()-platformVelocity.X()) > 1 {
		t.Fatalf("velocity %v, want to match the platform's %v",
			rig.tracker.Velocity.X(), platformVelocity.X())
	}
}
