package builtin

import (
	"log"
	"math"

	"github.com/milk9111/stride"
	"github.com/milk9111/stride/common"
)

// CrouchPhase is the crouch state machine's current phase.
type CrouchPhase int

const (
	CrouchPhaseSinking CrouchPhase = iota
	CrouchPhaseMaintaining
	CrouchPhaseRising
)

// CrouchConfig tunes the crouch action.
type CrouchConfig struct {
	// HeightChangeImpulseForDuration is the time the height change impulse
	// aims to complete the sink or rise in.
	HeightChangeImpulseForDuration float64 `yaml:"height_change_impulse_for_duration"`

	// HeightChangeImpulseLimit caps the height change impulse.
	HeightChangeImpulseLimit float64 `yaml:"height_change_impulse_limit"`
}

type crouchMemory struct {
	phase CrouchPhase
}

// Crouch is the builtin crouch action: it lowers the float height of a Walk
// basis by FloatOffset, holds it there while fed, and rises back when
// released. It only works on top of the Walk basis.
type Crouch struct {
	// FloatOffset is the signed change to the float height; negative values
	// crouch.
	FloatOffset float64

	// Uncancellable refuses cancellation by other actions. The crouch
	// enforcer helper sets it while there is a ceiling overhead.
	Uncancellable bool

	Config CrouchConfig

	memory crouchMemory
}

func (c *Crouch) Name() string { return "crouch" }

func (c *Crouch) ViolatesCoyoteTime() bool { return false }

func (c *Crouch) SensorCastRange() float64 { return 0 }

func (c *Crouch) Phase() CrouchPhase { return c.memory.phase }

func (c *Crouch) UpdateInput(next stride.Action) {
	if nextCrouch, ok := next.(*Crouch); ok {
		c.FloatOffset = nextCrouch.FloatOffset
		c.Uncancellable = nextCrouch.Uncancellable
		c.Config = nextCrouch.Config
	}
}

func (c *Crouch) InitiationDecision(ctx stride.ActionContext, _ float64) stride.InitiationDirective {
	if ctx.Sensor.Output != nil {
		return stride.InitiationAllow
	}
	return stride.InitiationDelay
}

func (c *Crouch) Apply(ctx stride.ActionContext, status stride.LifecycleStatus, motor *stride.Motor) stride.LifecycleDirective {
	walk, ok := ctx.Basis.(*Walk)
	if !ok {
		log.Printf("crouch: basis is not a walk basis")
		return stride.DirectiveFinished
	}
	output := ctx.Sensor.Output
	if output == nil {
		return stride.DirectiveReschedule(0)
	}
	if status.JustStarted() {
		c.memory = crouchMemory{phase: CrouchPhaseSinking}
	}

	// The crouch floats at an offset height without touching the walk's
	// config; the effective float height is derived here per frame.
	springOffsetUp := walk.Config.FloatHeight - output.Proximity
	springOffsetDown := springOffsetUp + c.FloatOffset

	switch status {
	case stride.LifecycleNoLongerFed:
		c.memory.phase = CrouchPhaseRising
	case stride.LifecycleCancelledInto:
		if !c.Uncancellable {
			c.memory.phase = CrouchPhaseRising
		}
	}

	up := walk.Config.Up
	basisCtx := stride.BasisContext{
		FrameDuration: ctx.FrameDuration,
		Tracker:       ctx.Tracker,
		Sensor:        ctx.Sensor,
	}

	impulseOrSpringForceBoost := func(springOffset float64) float64 {
		springForceBoost := walk.SpringForceBoost(basisCtx, springOffset)
		impulseBoost := c.impulseBoost(springOffset)
		if math.Abs(springForceBoost) < math.Abs(impulseBoost) {
			return impulseBoost
		}
		return springForceBoost
	}

	setImpulse := func(impulse float64) {
		motor.Lin.CancelOnAxis(up)
		motor.Lin = motor.Lin.Add(stride.BoostChange(up.Mul(impulse)))
	}

	switch c.memory.phase {
	case CrouchPhaseSinking:
		if springOffsetDown < -0.01 {
			setImpulse(impulseOrSpringForceBoost(springOffsetDown))
		} else {
			c.memory.phase = CrouchPhaseMaintaining
			setImpulse(walk.SpringForceBoost(basisCtx, springOffsetDown))
		}
		// The status handling above already moved cancellations to Rising;
		// anything still here keeps sinking. That includes a refused
		// cancellation of an uncancellable crouch.
		return stride.DirectiveStillActive

	case CrouchPhaseMaintaining:
		setImpulse(walk.SpringForceBoost(basisCtx, springOffsetDown))
		// If the crouch should finish or cancel, the status handling above
		// moves it to Rising first.
		return stride.DirectiveStillActive

	default:
		if 0.01 < springOffsetUp {
			setImpulse(impulseOrSpringForceBoost(springOffsetUp))
			if status == stride.LifecycleCancelledInto {
				// Don't finish the rise, just let the other action run.
				return stride.DirectiveReschedule(0)
			}
			return stride.DirectiveStillActive
		}
		return stride.DirectiveFinished
	}
}

func (c *Crouch) impulseBoost(springOffset float64) float64 {
	velocityToNewFloatHeight := springOffset / c.Config.HeightChangeImpulseForDuration
	return common.Clamp(velocityToNewFloatHeight,
		-c.Config.HeightChangeImpulseLimit, c.Config.HeightChangeImpulseLimit)
}

// VerticalCastRange is the range, from the crouch enforcer's sensor offset,
// to check for a ceiling.
func (c *Crouch) VerticalCastRange() float64 {
	return -c.FloatOffset
}

// PreventCancellation makes the crouch refuse cancellation by other actions.
func (c *Crouch) PreventCancellation() {
	c.Uncancellable = true
}

// Overwrite replaces the held input with other's, when other is also a
// crouch. Used by the crouch enforcer to refresh its held copy.
func (c *Crouch) Overwrite(other stride.Action) bool {
	nextCrouch, ok := other.(*Crouch)
	if !ok {
		return false
	}
	c.FloatOffset = nextCrouch.FloatOffset
	c.Uncancellable = nextCrouch.Uncancellable
	c.Config = nextCrouch.Config
	return true
}

// FeedInto force-feeds an uncancellable copy of the crouch to the
// controller, on behalf of the crouch enforcer.
func (c *Crouch) FeedInto(controller *stride.Controller) {
	fed := &Crouch{
		FloatOffset:   c.FloatOffset,
		Uncancellable: c.Uncancellable,
		Config:        c.Config,
	}
	fed.PreventCancellation()
	controller.FeedActionInterrupt(fed)
}
