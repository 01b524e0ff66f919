package builtin

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/milk9111/stride"
)

func testCrouchConfig() CrouchConfig {
	return CrouchConfig{
		HeightChangeImpulseForDuration: 0.04,
		HeightChangeImpulseLimit:       400,
	}
}

func feedWalkAndCrouch(cfg WalkConfig, crouch *Crouch) func(c *stride.Controller) {
	return func(c *stride.Controller) {
		c.FeedBasis(&Walk{Config: cfg})
		c.FeedAction(crouch)
	}
}

func TestCrouchLowersFloatHeightAndRises(t *testing.T) {
	cfg := testWalkConfig()
	rig := newTestRig(cfg, cfg.FloatHeight)
	rig.step(feedWalk(cfg, mgl64.Vec3{}))

	const floatOffset = -14
	crouch := &Crouch{FloatOffset: floatOffset, Config: testCrouchConfig()}
	for i := 0; i < 120; i++ {
		rig.step(feedWalkAndCrouch(cfg, crouch))
	}
	if rig.controller.ActionName() != "crouch" {
		t.Fatalf("the crouch should still be held")
	}
	crouched := cfg.FloatHeight + floatOffset
	if !near(rig.groundDistance(), crouched, 1) {
		t.Fatalf("crouched at distance %v, want %v", rig.groundDistance(), crouched)
	}
	if crouch.Phase() != CrouchPhaseMaintaining {
		t.Fatalf("phase %v, want maintaining", crouch.Phase())
	}
	if rig.mustAirborne() {
		t.Fatalf("crouching should stay grounded")
	}

	// Release: the crouch rises back to the normal float height, then
	// finishes on its own.
	for i := 0; i < 180; i++ {
		rig.step(feedWalk(cfg, mgl64.Vec3{}))
	}
	if rig.controller.ActionName() != "" {
		t.Fatalf("the crouch should have finished after rising")
	}
	if !near(rig.groundDistance(), cfg.FloatHeight, 1) {
		t.Fatalf("rose to distance %v, want %v", rig.groundDistance(), cfg.FloatHeight)
	}
}

func TestCrouchCancellation(t *testing.T) {
	cases := []struct {
		name          string
		uncancellable bool
		wantAction    string
	}{
		{"cancellable_yields_to_jump", false, "jump"},
		{"uncancellable_refuses_jump", true, "crouch"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			cfg := testWalkConfig()
			rig := newTestRig(cfg, cfg.FloatHeight)
			rig.step(feedWalk(cfg, mgl64.Vec3{}))

			crouch := &Crouch{
				FloatOffset:   -14,
				Uncancellable: c.uncancellable,
				Config:        testCrouchConfig(),
			}
			for i := 0; i < 60; i++ {
				rig.step(feedWalkAndCrouch(cfg, crouch))
			}
			if rig.controller.ActionName() != "crouch" {
				t.Fatalf("setup: the crouch should be running")
			}

			jumpCfg := testJumpConfig()
			rig.step(func(ctl *stride.Controller) {
				ctl.FeedBasis(&Walk{Config: cfg})
				ctl.FeedAction(crouch)
				ctl.FeedAction(&Jump{Height: 90, Config: jumpCfg})
			})
			if got := rig.controller.ActionName(); got != c.wantAction {
				t.Fatalf("running action %q, want %q", got, c.wantAction)
			}
		})
	}
}

func TestCrouchWaitsForGround(t *testing.T) {
	cfg := testWalkConfig()
	rig := newTestRig(cfg, cfg.FloatHeight+400)
	for i := 0; i < 12; i++ {
		rig.step(feedWalk(cfg, mgl64.Vec3{}))
	}

	crouch := &Crouch{FloatOffset: -14, Config: testCrouchConfig()}
	rig.step(feedWalkAndCrouch(cfg, crouch))
	if rig.controller.ActionName() == "crouch" {
		t.Fatalf("the crouch should wait for a ground reading")
	}
}
