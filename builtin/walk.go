package builtin

import (
	"log"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/milk9111/stride"
	"github.com/milk9111/stride/common"
)

// WalkConfig tunes the floating walk basis. It rarely changes frame to
// frame, and typically comes from a config asset.
type WalkConfig struct {
	// Up is the direction the character floats against.
	Up mgl64.Vec3 `yaml:"up"`

	// FloatHeight is the height the character floats above the ground at
	// rest, measured from the sensor's cast origin.
	FloatHeight float64 `yaml:"float_height"`

	// ClingDistance is the extra distance above FloatHeight where the
	// spring still acts, pulling the character down to the float height.
	// Above it the character counts as in the air.
	ClingDistance float64 `yaml:"cling_distance"`

	// SpringStrength is the force pushing the character to the float
	// height, linear in the displacement from it.
	SpringStrength float64 `yaml:"spring_strength"`

	// SpringDampening slows the vertical spring motion, linear in the
	// vertical velocity. As it approaches 2.0 the character starts to shake
	// violently.
	SpringDampening float64 `yaml:"spring_dampening"`

	// Acceleration limits horizontal movement. Braking and direction
	// changes get up to 2 times this, for a 180 degree turn.
	Acceleration float64 `yaml:"acceleration"`

	// AirAcceleration limits horizontal movement in the air. Zero disables
	// air movement entirely.
	AirAcceleration float64 `yaml:"air_acceleration"`

	// CoyoteTime is how long, in seconds, the character still counts as
	// grounded after losing its footing.
	CoyoteTime float64 `yaml:"coyote_time"`

	// FreeFallExtraGravity is added to the normal gravity during a fall not
	// initiated by an action that brings its own fall gravity. Too low a
	// value lets the character run up a slope and launch off it.
	FreeFallExtraGravity float64 `yaml:"free_fall_extra_gravity"`

	// TiltOffsetAngvel is the maximum angular velocity used to keep the
	// character upright. Redundant when the body's rotation is locked.
	TiltOffsetAngvel float64 `yaml:"tilt_offset_angvel"`

	// TiltOffsetAngacl is the maximum angular acceleration for reaching
	// TiltOffsetAngvel.
	TiltOffsetAngacl float64 `yaml:"tilt_offset_angacl"`

	// TurningAngvel is the maximum angular velocity for turning toward the
	// desired forward direction.
	TurningAngvel float64 `yaml:"turning_angvel"`
}

type standingOnState struct {
	entity       int
	entityLinvel mgl64.Vec3
}

type walkMemory struct {
	// airborneTime is seconds since the ground was lost, nil while
	// grounded. The character counts as airborne once it passes the coyote
	// time.
	airborneTime      *float64
	standingOffset    float64
	standingOn        *standingOnState
	effectiveVelocity mgl64.Vec3
	verticalVelocity  float64
	runningVelocity   mgl64.Vec3
}

// Walk is the builtin basis: a floating character that springs to a target
// height above the ground, accelerates toward a desired horizontal velocity,
// and turns to face a desired direction. Feed it fresh every frame.
type Walk struct {
	// DesiredVelocity is the direction and speed to accelerate to, assumed
	// orthogonal to the up direction.
	DesiredVelocity mgl64.Vec3

	// DesiredForward, when non-zero, makes the character rotate so that its
	// negative Z faces that direction.
	DesiredForward mgl64.Vec3

	Config WalkConfig

	memory walkMemory
}

func (w *Walk) Name() string { return "walk" }

func (w *Walk) InheritMemory(prev stride.Basis) {
	if prevWalk, ok := prev.(*Walk); ok {
		w.memory = prevWalk.memory
	}
}

// climbVectors are the slope-aligned axes: direction points up the slope,
// sideways across it.
type climbVectors struct {
	direction mgl64.Vec3
	sideways  mgl64.Vec3
}

func (c *climbVectors) project(v mgl64.Vec3) mgl64.Vec3 {
	onDirection := c.direction.Mul(v.Dot(c.direction))
	onSideways := c.sideways.Mul(v.Dot(c.sideways))
	return onDirection.Add(onSideways)
}

func (w *Walk) Apply(ctx stride.BasisContext, motor *stride.Motor) {
	up := w.Config.Up
	if w.memory.airborneTime != nil {
		*w.memory.airborneTime += ctx.FrameDuration
	}

	var climb *climbVectors
	var impulseToOffset mgl64.Vec3
	consideredInAir := w.memory.airborneTime != nil

	if output := ctx.Sensor.Output; output != nil {
		w.memory.effectiveVelocity = ctx.Tracker.Velocity.Sub(output.EntityLinvel)
		sidewaysUnnormalized := output.Normal.Cross(up)
		if sidewaysUnnormalized.LenSqr() != 0 {
			climb = &climbVectors{
				direction: common.NormalizeOrZero(sidewaysUnnormalized.Cross(output.Normal)),
				sideways:  common.NormalizeOrZero(sidewaysUnnormalized),
			}
		}
		if consideredInAir {
			w.memory.standingOn = nil
		} else {
			if standingOn := w.memory.standingOn; standingOn != nil && standingOn.entity == output.Entity {
				impulseToOffset = output.EntityLinvel.Sub(standingOn.entityLinvel)
			}
			w.memory.standingOn = &standingOnState{
				entity:       output.Entity,
				entityLinvel: output.EntityLinvel,
			}
		}
	} else {
		w.memory.effectiveVelocity = ctx.Tracker.Velocity
		consideredInAir = true
		w.memory.standingOn = nil
	}
	w.memory.effectiveVelocity = w.memory.effectiveVelocity.Add(impulseToOffset)

	velocityOnPlane := common.Reject(w.memory.effectiveVelocity, up)

	exactAcceleration := w.DesiredVelocity.Sub(velocityOnPlane)

	// Reversing direction gets up to twice the acceleration of keeping it.
	safeDirectionCoefficient := common.NormalizeOrZero(w.DesiredVelocity).
		Dot(common.NormalizeOrZero(velocityOnPlane))
	directionChangeFactor := 1.5 - 0.5*safeDirectionCoefficient

	accelerationLimit := w.Config.Acceleration
	if consideredInAir {
		accelerationLimit = w.Config.AirAcceleration
	}
	acceleration := directionChangeFactor * accelerationLimit

	walkAcceleration := common.ClampMag(exactAcceleration, ctx.FrameDuration*acceleration)
	if climb != nil {
		walkAcceleration = climb.project(walkAcceleration)
	}

	if climb != nil {
		w.memory.verticalVelocity = w.memory.effectiveVelocity.Dot(climb.direction) * climb.direction.Dot(up)
	} else {
		w.memory.verticalVelocity = 0
	}

	upwardImpulse, decided := w.decideUpwardImpulse(ctx, up)
	if !decided {
		log.Printf("walk: could not decide on float state")
	}

	// A zero desired velocity stops crisply with a boost; otherwise an
	// acceleration integrates more smoothly under the physics engine.
	horizontal := stride.BoostChange(impulseToOffset)
	if w.DesiredVelocity == (mgl64.Vec3{}) {
		horizontal = horizontal.Add(stride.BoostChange(walkAcceleration))
	} else {
		horizontal = horizontal.Add(stride.AccelerationChange(walkAcceleration.Mul(1 / ctx.FrameDuration)))
	}
	motor.Lin = horizontal.Add(upwardImpulse)
	newVelocity := w.memory.effectiveVelocity.
		Add(motor.Lin.CalcBoost(ctx.FrameDuration)).
		Sub(impulseToOffset)
	w.memory.runningVelocity = common.Reject(newVelocity, up)

	// Tilt

	torqueToFixTilt := func() mgl64.Vec3 {
		tiltedUp := ctx.Tracker.Rotation.Rotate(up)
		rotationRequired := common.RotationArc(tiltedUp, up)
		desiredAngvel := common.ClampMag(rotationRequired.V.Mul(1/ctx.FrameDuration), w.Config.TiltOffsetAngvel)
		angvelDiff := desiredAngvel.Sub(ctx.Tracker.AngVel)
		return common.ClampMag(angvelDiff, ctx.FrameDuration*w.Config.TiltOffsetAngacl)
	}()

	// Turning

	var desiredAngvel float64
	if 0 < w.DesiredForward.LenSqr() {
		projection := common.DefaultProjectionPlane(up)
		currentForward := ctx.Tracker.Rotation.Rotate(projection.Forward)
		rotationAlongUpAxis := projection.RotationToSetForward(currentForward, w.DesiredForward)
		desiredAngvel = common.Clamp(rotationAlongUpAxis/ctx.FrameDuration,
			-w.Config.TurningAngvel, w.Config.TurningAngvel)
	}

	existingAngvel := ctx.Tracker.AngVel.Dot(up)
	torqueToTurn := desiredAngvel - existingAngvel
	// The tilt torque already contributes along the up axis.
	torqueToTurn -= torqueToFixTilt.Dot(up)

	motor.Ang = stride.BoostChange(torqueToFixTilt.Add(up.Mul(torqueToTurn)))
}

// decideUpwardImpulse resolves the grounded/airborne state and the vertical
// correction. The state may flip at most once per frame (landing or losing
// the ground), hence the two iterations.
func (w *Walk) decideUpwardImpulse(ctx stride.BasisContext, up mgl64.Vec3) (stride.VelChange, bool) {
	for i := 0; i < 2; i++ {
		if w.memory.airborneTime != nil {
			if output := ctx.Sensor.Output; output != nil && output.Proximity <= w.Config.FloatHeight {
				w.memory.airborneTime = nil
				continue
			}
			if w.memory.verticalVelocity <= 0 {
				return stride.AccelerationChange(up.Mul(-w.Config.FreeFallExtraGravity)), true
			}
			return stride.VelChange{}, true
		}
		if output := ctx.Sensor.Output; output != nil {
			springOffset := w.Config.FloatHeight - output.Proximity
			w.memory.standingOffset = -springOffset
			boost := w.SpringForceBoost(ctx, springOffset)
			return stride.BoostChange(up.Mul(boost)), true
		}
		var justLost float64
		w.memory.airborneTime = &justLost
	}
	return stride.VelChange{}, false
}

// SpringForceBoost is the vertical boost the spring and damper would apply
// for the given offset from the float height. Exposed for actions that float
// at an altered height, like crouching.
func (w *Walk) SpringForceBoost(ctx stride.BasisContext, springOffset float64) float64 {
	springForce := springOffset * w.Config.SpringStrength

	relativeVelocity := w.memory.effectiveVelocity.Dot(w.Config.Up) - w.memory.verticalVelocity

	dampeningForce := relativeVelocity * w.Config.SpringDampening / ctx.FrameDuration
	springForce -= dampeningForce

	gravityCompensation := -ctx.Tracker.Gravity.Dot(w.Config.Up)

	return ctx.FrameDuration * (springForce + gravityCompensation)
}

func (w *Walk) SensorCastRange() float64 {
	return w.Config.FloatHeight + w.Config.ClingDistance
}

func (w *Walk) UpDirection() mgl64.Vec3 {
	return w.Config.Up
}

func (w *Walk) IsAirborne() bool {
	return w.memory.airborneTime != nil && w.Config.CoyoteTime <= *w.memory.airborneTime
}

func (w *Walk) AirborneDuration() (float64, bool) {
	if w.memory.airborneTime == nil {
		return 0, false
	}
	return *w.memory.airborneTime, true
}

func (w *Walk) EffectiveVelocity() mgl64.Vec3 {
	return w.memory.effectiveVelocity
}

func (w *Walk) VerticalVelocity() float64 {
	return w.memory.verticalVelocity
}

func (w *Walk) Displacement() (mgl64.Vec3, bool) {
	if w.memory.airborneTime != nil {
		return mgl64.Vec3{}, false
	}
	return w.Config.Up.Mul(w.memory.standingOffset), true
}

func (w *Walk) ViolateCoyoteTime() {
	if w.memory.airborneTime != nil && *w.memory.airborneTime < w.Config.CoyoteTime {
		*w.memory.airborneTime = w.Config.CoyoteTime
	}
}

func (w *Walk) Neutralize() {
	w.DesiredVelocity = mgl64.Vec3{}
	w.DesiredForward = mgl64.Vec3{}
}

// RunningVelocity is the horizontal velocity the basis expects after its
// output is applied. Mainly useful for animation.
func (w *Walk) RunningVelocity() mgl64.Vec3 {
	return w.memory.runningVelocity
}

// StandingOnEntity returns the id of the body the character stands on. ok is
// false while not standing on anything.
func (w *Walk) StandingOnEntity() (int, bool) {
	if w.memory.standingOn == nil {
		return 0, false
	}
	return w.memory.standingOn.entity, true
}
