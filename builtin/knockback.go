package builtin

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/milk9111/stride"
)

// KnockbackPhase is the knockback state machine's current phase.
type KnockbackPhase int

const (
	KnockbackPhaseShove KnockbackPhase = iota
	KnockbackPhasePushback
)

// KnockbackConfig tunes the pushback that follows the shove.
type KnockbackConfig struct {
	// NoPushTimeout abandons the pushback boundary once nothing pushed on
	// it for that many seconds.
	NoPushTimeout float64 `yaml:"no_push_timeout"`

	// BarrierStrengthDiminishing is an exponent describing how the barrier
	// weakens as it gets cleared. Values above 1 work best.
	BarrierStrengthDiminishing float64 `yaml:"barrier_strength_diminishing"`

	// AccelerationLimit caps how hard the character may push against the
	// barrier while grounded. In practice it gets blended with the basis's
	// own acceleration by the barrier strength, so the effective limit is
	// higher.
	AccelerationLimit float64 `yaml:"acceleration_limit"`

	// AirAccelerationLimit is AccelerationLimit for the air.
	AirAccelerationLimit float64 `yaml:"air_acceleration_limit"`
}

type knockbackMemory struct {
	phase    KnockbackPhase
	boundary *stride.VelocityBoundary
}

// Knockback is the builtin knockback action: an instantaneous shove followed
// by a pushback period during which the character struggles to regain
// control. It cannot be rejected or cancelled; it always runs to completion.
type Knockback struct {
	// Shove is the velocity change the impact applies.
	Shove mgl64.Vec3

	// ForceForward, when non-zero, keeps the character facing it for the
	// duration. Useful for hit-stun animations.
	ForceForward mgl64.Vec3

	Config KnockbackConfig

	memory knockbackMemory
}

func (k *Knockback) Name() string { return "knockback" }

func (k *Knockback) ViolatesCoyoteTime() bool { return false }

func (k *Knockback) SensorCastRange() float64 { return 0 }

func (k *Knockback) Phase() KnockbackPhase { return k.memory.phase }

func (k *Knockback) UpdateInput(next stride.Action) {
	if nextKnockback, ok := next.(*Knockback); ok {
		k.Shove = nextKnockback.Shove
		k.ForceForward = nextKnockback.ForceForward
		k.Config = nextKnockback.Config
	}
}

func (k *Knockback) InitiationDecision(_ stride.ActionContext, _ float64) stride.InitiationDirective {
	return stride.InitiationAllow
}

func (k *Knockback) Apply(ctx stride.ActionContext, status stride.LifecycleStatus, motor *stride.Motor) stride.LifecycleDirective {
	if status.JustStarted() {
		k.memory = knockbackMemory{phase: KnockbackPhaseShove}
	}

	switch k.memory.phase {
	case KnockbackPhaseShove:
		boundary := stride.NewVelocityBoundary(
			ctx.Tracker.Velocity,
			ctx.Tracker.Velocity.Add(k.Shove),
			k.Config.NoPushTimeout)
		if boundary == nil {
			return stride.DirectiveFinished
		}
		motor.Lin.Boost = motor.Lin.Boost.Add(k.Shove)
		k.memory.phase = KnockbackPhasePushback
		k.memory.boundary = boundary

	case KnockbackPhasePushback:
		boundary := k.memory.boundary
		boundary.Update(ctx.Tracker.Velocity, ctx.FrameDuration)
		if boundary.IsCleared() {
			return stride.DirectiveFinished
		}
		accelerationLimit := k.Config.AccelerationLimit
		if ctx.Basis.IsAirborne() {
			accelerationLimit = k.Config.AirAccelerationLimit
		}
		if direction, limit, ok := boundary.LimitBoost(
			ctx.Tracker.Velocity,
			motor.Lin.CalcBoost(ctx.FrameDuration),
			ctx.FrameDuration*accelerationLimit,
			k.Config.BarrierStrengthDiminishing,
		); ok {
			motor.Lin.ApplyBoostLimit(ctx.FrameDuration, direction, limit)
		}
	}

	if 0 < k.ForceForward.LenSqr() {
		up := ctx.Basis.UpDirection()
		motor.Ang.CancelOnAxis(up)
		motor.Ang = motor.Ang.Add(TorqueToForceForward(
			k.ForceForward, ctx.Tracker.Rotation, ctx.Tracker.AngVel, up, ctx.FrameDuration))
	}

	// Cancellation is ignored on purpose. The knockback releases the
	// character only once the boundary clears.
	return stride.DirectiveStillActive
}
