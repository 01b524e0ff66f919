package builtin

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/milk9111/stride"
)

func testKnockbackConfig() KnockbackConfig {
	return KnockbackConfig{
		NoPushTimeout:              0.4,
		BarrierStrengthDiminishing: 2,
		AccelerationLimit:          60,
		AirAccelerationLimit:       30,
	}
}

func TestKnockbackShoveAndPushback(t *testing.T) {
	cfg := testWalkConfig()
	desired := mgl64.Vec3{160, 0, 0}
	rig := newTestRig(cfg, cfg.FloatHeight)
	for i := 0; i < 60; i++ {
		rig.step(feedWalk(cfg, desired))
	}
	if !near(rig.tracker.Velocity.X(), 160, 1e-6) {
		t.Fatalf("setup: should be running at 160, at %v", rig.tracker.Velocity.X())
	}

	shove := mgl64.Vec3{-300, 0, 0}
	knockback := &Knockback{Shove: shove, Config: testKnockbackConfig()}
	rig.step(func(c *stride.Controller) {
		c.FeedBasis(&Walk{DesiredVelocity: desired, Config: cfg})
		c.FeedActionInterrupt(knockback)
	})

	if got := rig.tracker.Velocity.X(); !near(got, -140, 1e-6) {
		t.Fatalf("velocity after the shove %v, want -140", got)
	}
	if knockback.Phase() != KnockbackPhasePushback {
		t.Fatalf("phase %v, want pushback", knockback.Phase())
	}

	// While the barrier is fresh, the walk's recovery is almost fully capped
	// by the pushback acceleration limit.
	for i := 0; i < 10; i++ {
		rig.step(feedWalk(cfg, desired))
	}
	if rig.controller.ActionName() != "knockback" {
		t.Fatalf("the knockback should still hold the character")
	}
	if got := rig.tracker.Velocity.X(); -100 < got {
		t.Fatalf("recovered to %v in 10 frames, the barrier should slow that down", got)
	}

	// The barrier wears down as the character fights it, and eventually
	// clears, handing control back.
	for i := 0; i < 600; i++ {
		rig.step(feedWalk(cfg, desired))
		if rig.controller.ActionName() == "" {
			break
		}
	}
	if rig.controller.ActionName() != "" {
		t.Fatalf("the knockback never released the character")
	}
	for i := 0; i < 120; i++ {
		rig.step(feedWalk(cfg, desired))
	}
	if !near(rig.tracker.Velocity.X(), 160, 1) {
		t.Fatalf("should be running again at 160, at %v", rig.tracker.Velocity.X())
	}
}

func TestKnockbackRefusesCancellation(t *testing.T) {
	cfg := testWalkConfig()
	rig := newTestRig(cfg, cfg.FloatHeight)
	rig.step(feedWalk(cfg, mgl64.Vec3{}))

	knockback := &Knockback{Shove: mgl64.Vec3{-300, 0, 0}, Config: testKnockbackConfig()}
	rig.step(func(c *stride.Controller) {
		c.FeedBasis(&Walk{Config: cfg})
		c.FeedActionInterrupt(knockback)
	})

	// Mash jump during the stun; the knockback must not yield.
	jumpCfg := testJumpConfig()
	for i := 0; i < 5; i++ {
		rig.step(func(c *stride.Controller) {
			c.FeedBasis(&Walk{Config: cfg})
			c.FeedAction(&Jump{Height: 90, Config: jumpCfg})
		})
		if rig.controller.ActionName() != "knockback" {
			t.Fatalf("frame %d: %q took over during the knockback", i, rig.controller.ActionName())
		}
	}
}

func TestKnockbackZeroShoveFinishesImmediately(t *testing.T) {
	cfg := testWalkConfig()
	rig := newTestRig(cfg, cfg.FloatHeight)
	rig.step(feedWalk(cfg, mgl64.Vec3{}))

	rig.step(func(c *stride.Controller) {
		c.FeedBasis(&Walk{Config: cfg})
		c.FeedActionInterrupt(&Knockback{Config: testKnockbackConfig()})
	})
	if rig.controller.ActionName() != "" {
		t.Fatalf("a zero shove has no boundary and should finish right away")
	}
	if !near(rig.tracker.Velocity.X(), 0, 1e-9) {
		t.Fatalf("a zero shove should not move the character, velocity %v", rig.tracker.Velocity.X())
	}
}
