package builtin

import (
	"log"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/milk9111/stride"
	"github.com/milk9111/stride/common"
)

// JumpPhase is the jump state machine's current phase, exposed for animation.
type JumpPhase int

const (
	JumpPhaseNoJump JumpPhase = iota
	JumpPhaseStarting
	JumpPhaseSlowDownTooFastSlopeJump
	JumpPhaseMaintaining
	JumpPhaseStoppedMaintaining
	JumpPhaseFall
)

// JumpConfig tunes the jump action.
type JumpConfig struct {
	// UpslopeExtraGravity brakes the excess energy gained from jumping up a
	// slope, so the jump height stays the same on any incline.
	UpslopeExtraGravity float64 `yaml:"upslope_extra_gravity"`

	// TakeoffExtraGravity applies while the upward velocity is above
	// TakeoffAboveVelocity, making the start of the jump snappier without
	// lowering its height.
	TakeoffExtraGravity  float64 `yaml:"takeoff_extra_gravity"`
	TakeoffAboveVelocity float64 `yaml:"takeoff_above_velocity"`

	// PeakPreventionExtraGravity applies while the upward velocity is below
	// PeakPreventionAtUpwardVelocity, cutting the floaty section at the top
	// of the jump.
	PeakPreventionAtUpwardVelocity float64 `yaml:"peak_prevention_at_upward_velocity"`
	PeakPreventionExtraGravity     float64 `yaml:"peak_prevention_extra_gravity"`

	// ShortenExtraGravity applies when the jump input is released before
	// the peak, shortening the jump.
	ShortenExtraGravity float64 `yaml:"shorten_extra_gravity"`

	// FallExtraGravity applies during the fall that follows the jump's
	// peak.
	FallExtraGravity float64 `yaml:"fall_extra_gravity"`

	// CoyoteTime is how long after losing the ground the jump may still
	// start.
	CoyoteTime float64 `yaml:"coyote_time"`

	// InputBufferTime is how long a jump pressed too early in the air keeps
	// waiting for a landing before it gets rejected.
	InputBufferTime float64 `yaml:"input_buffer_time"`

	// RescheduleCooldown, when positive, lets a held jump input trigger
	// again that many seconds after the jump finished, without having to be
	// released first.
	RescheduleCooldown float64 `yaml:"reschedule_cooldown"`

	// MaintainDisplacement, when non-zero, is a horizontal displacement
	// target for the ascent. While the jump is maintained, a velocity
	// boundary keeps the character from drifting much faster than the
	// velocity that displacement implies.
	MaintainDisplacement mgl64.Vec3 `yaml:"maintain_displacement"`

	// BoundaryNoPushTimeout, BoundaryStrengthDiminishing and
	// BoundaryAccelerationLimit tune the MaintainDisplacement boundary the
	// same way the knockback config tunes its pushback.
	BoundaryNoPushTimeout       float64 `yaml:"boundary_no_push_timeout"`
	BoundaryStrengthDiminishing float64 `yaml:"boundary_strength_diminishing"`
	BoundaryAccelerationLimit   float64 `yaml:"boundary_acceleration_limit"`
}

type jumpMemory struct {
	phase JumpPhase
	// desiredEnergy is the kinetic energy, per unit mass, the character
	// needs at takeoff. The potential energy at the takeoff point is
	// defined as zero; deriving velocity from energy is easier than the
	// ballistic formulas.
	desiredEnergy         float64
	zeroPotentialEnergyAt mgl64.Vec3
	maintainBoundary      *stride.VelocityBoundary
	maintainBoundaryDone  bool
}

// Jump is the builtin jump action. The jump's height is the input; holding
// the input maintains the jump, releasing it early shortens the jump by
// applying ShortenExtraGravity.
type Jump struct {
	// Height the jump should reach, measured from the float height.
	Height float64

	// AllowInAir permits starting the jump while airborne, for air jumps.
	// Note that this action alone does not count jumps; a caller that wants
	// "double jump but not infinite jumps" has to track that itself.
	AllowInAir bool

	Config JumpConfig

	memory jumpMemory
}

func (j *Jump) Name() string { return "jump" }

func (j *Jump) ViolatesCoyoteTime() bool { return true }

func (j *Jump) SensorCastRange() float64 { return 0 }

// Phase is the jump state machine's current phase.
func (j *Jump) Phase() JumpPhase { return j.memory.phase }

func (j *Jump) UpdateInput(next stride.Action) {
	if nextJump, ok := next.(*Jump); ok {
		j.Height = nextJump.Height
		j.AllowInAir = nextJump.AllowInAir
		j.Config = nextJump.Config
	}
}

func (j *Jump) InitiationDecision(ctx stride.ActionContext, beingFedFor float64) stride.InitiationDirective {
	airborneDuration, airborne := ctx.Basis.AirborneDuration()
	if !airborne || airborneDuration < j.Config.CoyoteTime || j.AllowInAir {
		return stride.InitiationAllow
	}
	if beingFedFor < j.Config.InputBufferTime {
		return stride.InitiationDelay
	}
	return stride.InitiationReject
}

func (j *Jump) Apply(ctx stride.ActionContext, status stride.LifecycleStatus, motor *stride.Motor) stride.LifecycleDirective {
	up := ctx.Basis.UpDirection()

	if status.JustStarted() {
		gravity := ctx.Tracker.Gravity.Dot(up.Mul(-1))
		j.memory = jumpMemory{
			phase: JumpPhaseStarting,
			desiredEnergy: common.NewSegmentedJumpCalculator(j.Height).
				AddSegment(gravity+j.Config.PeakPreventionExtraGravity, j.Config.PeakPreventionAtUpwardVelocity).
				AddSegment(gravity, j.Config.TakeoffAboveVelocity).
				AddSegment(gravity+j.Config.TakeoffExtraGravity, math.Inf(1)).
				KineticEnergy(),
		}
	}

	effectiveVelocity := ctx.Basis.EffectiveVelocity()

	// The phase may advance several times within one frame (e.g. starting
	// and immediately reaching the slope slow-down), but a bounded number
	// of times. Running out of iterations means a configuration bug.
	for i := 0; i < 7; i++ {
		switch j.memory.phase {
		case JumpPhaseNoJump:
			panic("jump: applied with no jump in progress")

		case JumpPhaseStarting:
			var extraHeight float64
			if displacement, ok := ctx.Basis.Displacement(); ok {
				extraHeight = displacement.Dot(up)
			} else if airborneDuration, airborne := ctx.Basis.AirborneDuration(); airborne {
				if j.Config.CoyoteTime <= airborneDuration && !j.AllowInAir {
					return j.simpleOrReschedule(status)
				}
			} else {
				return j.simpleOrReschedule(status)
			}
			gravity := ctx.Tracker.Gravity.Dot(up.Mul(-1))
			energyFromExtraHeight := extraHeight * gravity
			desiredKineticEnergy := j.memory.desiredEnergy - energyFromExtraHeight
			desiredUpwardVelocity := math.Sqrt(2 * desiredKineticEnergy)

			relativeVelocity := effectiveVelocity.Dot(up) - math.Max(ctx.Basis.VerticalVelocity(), 0)

			motor.Lin.CancelOnAxis(up)
			motor.Lin.Boost = motor.Lin.Boost.Add(up.Mul(desiredUpwardVelocity - relativeVelocity))
			if 0 <= extraHeight {
				j.memory.phase = JumpPhaseSlowDownTooFastSlopeJump
				j.memory.zeroPotentialEnergyAt = ctx.Tracker.Translation.Sub(up.Mul(extraHeight))
			}
			return j.simpleOrReschedule(status)

		case JumpPhaseSlowDownTooFastSlopeJump:
			upwardVelocity := up.Dot(effectiveVelocity)
			if upwardVelocity <= ctx.Basis.VerticalVelocity() {
				j.memory.phase = JumpPhaseFall
				continue
			}
			if !status.IsActive() {
				j.memory.phase = JumpPhaseStoppedMaintaining
				continue
			}
			relativeVelocity := effectiveVelocity.Dot(up)
			extraHeight := ctx.Tracker.Translation.Sub(j.memory.zeroPotentialEnergyAt).Dot(up)
			gravity := ctx.Tracker.Gravity.Dot(up.Mul(-1))
			energyFromExtraHeight := extraHeight * gravity
			desiredKineticEnergy := j.memory.desiredEnergy - energyFromExtraHeight
			desiredUpwardVelocity := math.Sqrt(2 * desiredKineticEnergy)
			if relativeVelocity <= desiredUpwardVelocity {
				j.memory.phase = JumpPhaseMaintaining
				continue
			}
			extraGravity := j.Config.UpslopeExtraGravity
			if j.Config.TakeoffAboveVelocity <= relativeVelocity {
				extraGravity += j.Config.TakeoffExtraGravity
			}
			motor.Lin.CancelOnAxis(up)
			motor.Lin.Acceleration = up.Mul(-extraGravity)
			return j.simpleOrReschedule(status)

		case JumpPhaseMaintaining:
			relevantUpwardVelocity := effectiveVelocity.Dot(up)
			if relevantUpwardVelocity <= 0 {
				j.memory.phase = JumpPhaseFall
				motor.Lin.CancelOnAxis(up)
			} else {
				motor.Lin.CancelOnAxis(up)
				if relevantUpwardVelocity < j.Config.PeakPreventionAtUpwardVelocity {
					motor.Lin.Acceleration = motor.Lin.Acceleration.Sub(up.Mul(j.Config.PeakPreventionExtraGravity))
				} else if j.Config.TakeoffAboveVelocity <= relevantUpwardVelocity {
					motor.Lin.Acceleration = motor.Lin.Acceleration.Sub(up.Mul(j.Config.TakeoffExtraGravity))
				}
				j.maintainHorizontalBoundary(ctx, up, relevantUpwardVelocity, motor)
			}
			switch status {
			case stride.LifecycleInitiated, stride.LifecycleCancelledFrom, stride.LifecycleStillFed:
				return stride.DirectiveStillActive
			case stride.LifecycleCancelledInto:
				return j.finishOrReschedule()
			default:
				j.memory.phase = JumpPhaseStoppedMaintaining
				return stride.DirectiveStillActive
			}

		case JumpPhaseStoppedMaintaining:
			if status == stride.LifecycleCancelledInto {
				return j.finishOrReschedule()
			}
			if j.landed(ctx, up) {
				return j.finishOrReschedule()
			}
			upwardVelocity := up.Dot(effectiveVelocity)
			if upwardVelocity <= 0 {
				j.memory.phase = JumpPhaseFall
				continue
			}
			motor.Lin.CancelOnAxis(up)
			motor.Lin.Acceleration = motor.Lin.Acceleration.Sub(up.Mul(j.Config.ShortenExtraGravity))
			return stride.DirectiveStillActive

		case JumpPhaseFall:
			if j.landed(ctx, up) || status == stride.LifecycleCancelledInto {
				return j.finishOrReschedule()
			}
			motor.Lin.CancelOnAxis(up)
			motor.Lin.Acceleration = motor.Lin.Acceleration.Sub(up.Mul(j.Config.FallExtraGravity))
			return stride.DirectiveStillActive
		}
	}
	log.Printf("jump: could not decide on jump state")
	return stride.DirectiveFinished
}

// maintainHorizontalBoundary restrains horizontal drift during the ascent
// toward the configured displacement target. The boundary is built once, from
// the current horizontal velocity toward the velocity the displacement
// implies over the remaining ascent, and worn down like a knockback barrier.
func (j *Jump) maintainHorizontalBoundary(ctx stride.ActionContext, up mgl64.Vec3, upwardVelocity float64, motor *stride.Motor) {
	if j.Config.MaintainDisplacement == (mgl64.Vec3{}) {
		return
	}
	effectiveVelocity := ctx.Basis.EffectiveVelocity()
	horizontalVelocity := common.Reject(effectiveVelocity, up)
	if j.memory.maintainBoundary == nil && !j.memory.maintainBoundaryDone {
		gravity := ctx.Tracker.Gravity.Dot(up.Mul(-1))
		if gravity <= 0 {
			j.memory.maintainBoundaryDone = true
			return
		}
		remainingAscent := upwardVelocity / gravity
		if remainingAscent <= 0 {
			j.memory.maintainBoundaryDone = true
			return
		}
		targetVelocity := common.Reject(j.Config.MaintainDisplacement, up).Mul(1 / remainingAscent)
		j.memory.maintainBoundary = stride.NewVelocityBoundary(
			horizontalVelocity, targetVelocity, j.Config.BoundaryNoPushTimeout)
		if j.memory.maintainBoundary == nil {
			j.memory.maintainBoundaryDone = true
			return
		}
	}
	boundary := j.memory.maintainBoundary
	if boundary == nil {
		return
	}
	boundary.Update(horizontalVelocity, ctx.FrameDuration)
	if boundary.IsCleared() {
		j.memory.maintainBoundary = nil
		j.memory.maintainBoundaryDone = true
		return
	}
	if direction, limit, ok := boundary.LimitBoost(
		effectiveVelocity,
		motor.Lin.CalcBoost(ctx.FrameDuration),
		ctx.FrameDuration*j.Config.BoundaryAccelerationLimit,
		j.Config.BoundaryStrengthDiminishing,
	); ok {
		motor.Lin.ApplyBoostLimit(ctx.FrameDuration, direction, limit)
	}
}

func (j *Jump) landed(ctx stride.ActionContext, up mgl64.Vec3) bool {
	displacement, ok := ctx.Basis.Displacement()
	return ok && displacement.Dot(up) <= 0
}

func (j *Jump) finishOrReschedule() stride.LifecycleDirective {
	if 0 < j.Config.RescheduleCooldown {
		return stride.DirectiveReschedule(j.Config.RescheduleCooldown)
	}
	return stride.DirectiveFinished
}

func (j *Jump) simpleOrReschedule(status stride.LifecycleStatus) stride.LifecycleDirective {
	if 0 < j.Config.RescheduleCooldown {
		return status.SimpleDirectiveReschedule(j.Config.RescheduleCooldown)
	}
	return status.SimpleDirective()
}
