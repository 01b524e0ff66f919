package builtin

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/milk9111/stride"
	"github.com/milk9111/stride/common"
)

// WallSlideConfig tunes the wall slide action.
type WallSlideConfig struct {
	// MaxFallSpeed is the sliding speed; falling faster than that gets
	// slowed down.
	MaxFallSpeed float64 `yaml:"max_fall_speed"`

	// MaintainDistance, when positive, is a distance to keep from the
	// contact point in the direction of the wall's normal, so the character
	// clings to the wall.
	MaintainDistance float64 `yaml:"maintain_distance"`

	// MaxSidewaysSpeed caps how fast the character may move sideways on the
	// wall while sliding.
	MaxSidewaysSpeed float64 `yaml:"max_sideways_speed"`

	// MaxSidewaysAcceleration caps the sideways acceleration, including the
	// braking applied when the slide starts faster than MaxSidewaysSpeed.
	MaxSidewaysAcceleration float64 `yaml:"max_sideways_acceleration"`
}

// WallSlide is the builtin wall slide action. It does not detect the wall
// itself; the caller decides when to feed it and with which contact point.
// The point does not even have to be on an actual wall; the character will
// pretend there is one there and slide on it.
type WallSlide struct {
	// ContactPoint is the point on the wall the character touches.
	ContactPoint mgl64.Vec3

	// Normal is the wall's normal.
	Normal mgl64.Vec3

	// ForceForward, when non-zero, keeps the character facing it, typically
	// into or along the wall.
	ForceForward mgl64.Vec3

	Config WallSlideConfig
}

func (s *WallSlide) Name() string { return "wall-slide" }

func (s *WallSlide) ViolatesCoyoteTime() bool { return true }

func (s *WallSlide) SensorCastRange() float64 { return 0 }

func (s *WallSlide) UpdateInput(next stride.Action) {
	if nextSlide, ok := next.(*WallSlide); ok {
		*s = *nextSlide
	}
}

func (s *WallSlide) InitiationDecision(_ stride.ActionContext, _ float64) stride.InitiationDirective {
	return stride.InitiationAllow
}

func (s *WallSlide) Apply(ctx stride.ActionContext, status stride.LifecycleStatus, motor *stride.Motor) stride.LifecycleDirective {
	if !status.IsActive() {
		return stride.DirectiveFinished
	}
	up := ctx.Basis.UpDirection()

	// Cap the fall speed by compensating for whatever the motor already
	// applies vertically.
	downwardSpeed := -ctx.Tracker.Velocity.Dot(up)
	desiredUpwardBoost := downwardSpeed - s.Config.MaxFallSpeed
	actualUpwardBoost := motor.Lin.CalcBoost(ctx.FrameDuration).Dot(up)
	compensation := desiredUpwardBoost - actualUpwardBoost
	motor.Lin = motor.Lin.Add(stride.AccelerationChange(up.Mul(compensation / ctx.FrameDuration)))

	if 0 < s.Config.MaintainDistance {
		planarVector := common.Reject(ctx.Tracker.Translation.Sub(s.ContactPoint), up)
		clingDirection := common.NormalizeOrZero(planarVector)
		if clingDirection.LenSqr() != 0 {
			currentClingDistance := planarVector.Len()
			currentClingSpeed := ctx.Tracker.Velocity.Dot(clingDirection)
			desiredClingSpeed := (s.Config.MaintainDistance - currentClingDistance) / ctx.FrameDuration
			clingBoost := desiredClingSpeed - currentClingSpeed
			motor.Lin.CancelOnAxis(clingDirection)
			motor.Lin = motor.Lin.Add(stride.BoostChange(clingDirection.Mul(clingBoost)))
		}
	}

	sidewaysDirection := s.Normal.Cross(up)
	projectedSidewaysVelocity := sidewaysDirection.Dot(
		ctx.Tracker.Velocity.Add(motor.Lin.CalcBoost(ctx.FrameDuration)))
	if s.Config.MaxSidewaysSpeed < math.Abs(projectedSidewaysVelocity) {
		desiredSidewaysVelocity := math.Copysign(s.Config.MaxSidewaysSpeed, projectedSidewaysVelocity)
		desiredSidewaysBoost := desiredSidewaysVelocity - projectedSidewaysVelocity
		motor.Lin = motor.Lin.Add(stride.AccelerationChange(
			sidewaysDirection.Mul(desiredSidewaysBoost / ctx.FrameDuration)))
	}

	sidewaysAcceleration := sidewaysDirection.Dot(motor.Lin.CalcAcceleration(ctx.FrameDuration))
	if s.Config.MaxSidewaysAcceleration < math.Abs(sidewaysAcceleration) {
		desiredSidewaysAcceleration := math.Copysign(s.Config.MaxSidewaysAcceleration, sidewaysAcceleration)
		motor.Lin = motor.Lin.Add(stride.AccelerationChange(
			sidewaysDirection.Mul(desiredSidewaysAcceleration - sidewaysAcceleration)))
	}

	if 0 < s.ForceForward.LenSqr() {
		motor.Ang.CancelOnAxis(up)
		motor.Ang = motor.Ang.Add(TorqueToForceForward(
			s.ForceForward, ctx.Tracker.Rotation, ctx.Tracker.AngVel, up, ctx.FrameDuration))
	}

	return stride.DirectiveStillActive
}
