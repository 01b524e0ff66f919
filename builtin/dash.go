package builtin

import (
	"log"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/milk9111/stride"
	"github.com/milk9111/stride/common"
)

// DashPhase is the dash state machine's current phase, exposed for animation.
type DashPhase int

const (
	DashPhasePre DashPhase = iota
	DashPhaseDuring
	DashPhaseBraking
)

// DashConfig tunes the dash action.
type DashConfig struct {
	// Speed the character moves at during the dash.
	Speed float64 `yaml:"speed"`

	// BrakeToSpeed is the speed the brake phase slows down to once the dash
	// covers its displacement.
	BrakeToSpeed float64 `yaml:"brake_to_speed"`

	// Acceleration caps how fast the character reaches the dash speed.
	Acceleration float64 `yaml:"acceleration"`

	// BrakeAcceleration caps the braking after the dash.
	BrakeAcceleration float64 `yaml:"brake_acceleration"`

	// InputBufferTime is how long a dash pressed in the air waits for a
	// landing before it gets rejected, when air dashing is disallowed.
	InputBufferTime float64 `yaml:"input_buffer_time"`
}

type dashMemory struct {
	phase DashPhase
	// direction and destination are frozen when the dash starts; the input
	// displacement has no effect mid-dash.
	direction   mgl64.Vec3
	destination mgl64.Vec3
	// considerBlockedIfSpeedIsLessThan catches the character being stopped
	// by an obstacle, so the dash does not grind against a wall.
	considerBlockedIfSpeedIsLessThan float64
}

// Dash is the builtin dash action: a burst of speed over a fixed
// displacement, then a brake.
type Dash struct {
	// Displacement is the vector the dash should cover. A zero or
	// non-finite displacement rejects the dash.
	Displacement mgl64.Vec3

	// DesiredForward, when non-zero, turns the character toward it during
	// the dash.
	DesiredForward mgl64.Vec3

	// AllowInAir permits dashing while airborne.
	AllowInAir bool

	Config DashConfig

	memory dashMemory
}

func (d *Dash) Name() string { return "dash" }

func (d *Dash) ViolatesCoyoteTime() bool { return true }

func (d *Dash) SensorCastRange() float64 { return 0 }

func (d *Dash) Phase() DashPhase { return d.memory.phase }

func (d *Dash) UpdateInput(next stride.Action) {
	if nextDash, ok := next.(*Dash); ok {
		d.Displacement = nextDash.Displacement
		d.DesiredForward = nextDash.DesiredForward
		d.AllowInAir = nextDash.AllowInAir
		d.Config = nextDash.Config
	}
}

func (d *Dash) InitiationDecision(ctx stride.ActionContext, beingFedFor float64) stride.InitiationDirective {
	if !common.IsFinite(d.Displacement) || d.Displacement == (mgl64.Vec3{}) {
		return stride.InitiationReject
	}
	if d.AllowInAir || !ctx.Basis.IsAirborne() {
		return stride.InitiationAllow
	}
	if beingFedFor < d.Config.InputBufferTime {
		return stride.InitiationDelay
	}
	return stride.InitiationReject
}

func (d *Dash) Apply(ctx stride.ActionContext, status stride.LifecycleStatus, motor *stride.Motor) stride.LifecycleDirective {
	if status.JustStarted() {
		d.memory = dashMemory{phase: DashPhasePre}
	}
	for i := 0; i < 3; i++ {
		switch d.memory.phase {
		case DashPhasePre:
			// The initiation decision should have caught this already.
			if !common.IsFinite(d.Displacement) || d.Displacement == (mgl64.Vec3{}) {
				return stride.DirectiveFinished
			}
			d.memory = dashMemory{
				phase:                            DashPhaseDuring,
				direction:                        d.Displacement.Normalize(),
				destination:                      ctx.Tracker.Translation.Add(d.Displacement),
				considerBlockedIfSpeedIsLessThan: math.Inf(-1),
			}
			continue

		case DashPhaseDuring:
			distanceToDestination := d.memory.direction.Dot(d.memory.destination.Sub(ctx.Tracker.Translation))
			if distanceToDestination < 0 {
				d.memory.phase = DashPhaseBraking
				continue
			}

			currentSpeed := d.memory.direction.Dot(ctx.Tracker.Velocity)
			if currentSpeed < d.memory.considerBlockedIfSpeedIsLessThan {
				return stride.DirectiveFinished
			}

			motor.Lin.Clear()
			motor.Lin.Acceleration = ctx.Tracker.Gravity.Mul(-1)
			motor.Lin.Boost = common.ClampMag(
				d.memory.direction.Mul(d.Config.Speed).Sub(ctx.Tracker.Velocity),
				ctx.FrameDuration*d.Config.Acceleration)
			expectedSpeed := d.memory.direction.Dot(ctx.Tracker.Velocity.Add(motor.Lin.Boost))
			if currentSpeed < expectedSpeed {
				d.memory.considerBlockedIfSpeedIsLessThan = 0.5 * (currentSpeed + expectedSpeed)
			} else {
				d.memory.considerBlockedIfSpeedIsLessThan = 0.5 * currentSpeed
			}

			if 0 < d.DesiredForward.LenSqr() {
				up := ctx.Basis.UpDirection()
				motor.Ang.CancelOnAxis(up)
				motor.Ang = motor.Ang.Add(TorqueToForceForward(
					d.DesiredForward, ctx.Tracker.Rotation, ctx.Tracker.AngVel, up, ctx.FrameDuration))
			}

			return stride.DirectiveStillActive

		case DashPhaseBraking:
			remainingSpeed := d.memory.direction.Dot(ctx.Tracker.Velocity)
			if remainingSpeed <= d.Config.BrakeToSpeed {
				return stride.DirectiveFinished
			}
			motor.Lin.Boost = d.memory.direction.Mul(
				-math.Min(remainingSpeed-d.Config.BrakeToSpeed, d.Config.BrakeAcceleration))
			return stride.DirectiveStillActive
		}
	}
	log.Printf("dash: could not decide on dash state")
	return stride.DirectiveFinished
}
