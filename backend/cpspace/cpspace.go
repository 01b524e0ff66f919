// Package cpspace adapts the engine to a Chipmunk physics space. The 2D
// space embeds into the engine's 3D math on the XY plane, with Y up and
// rotations around Z.
package cpspace

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/jakecoffman/cp"

	"github.com/milk9111/stride"
)

// Toggle controls whether a character's controller actually runs.
type Toggle int

const (
	// ToggleEnabled runs the full pipeline.
	ToggleEnabled Toggle = iota
	// ToggleSenseOnly keeps the tracker and sensors up to date but neither
	// updates the controller nor applies the motor. Useful for cutscenes
	// where the game moves the body directly.
	ToggleSenseOnly
	// ToggleDisabled skips the character entirely.
	ToggleDisabled
)

// Character ties a controller to a Chipmunk body. The game owns the
// controller and feeds it; Step runs the whole per-frame pipeline.
type Character struct {
	Body    *cp.Body
	Tracker stride.RigidBodyTracker
	Sensor  stride.ProximitySensor
	Motor   stride.Motor
	Toggle  Toggle

	// Filter is applied to the sensor casts, so the character's own shapes
	// can be excluded from ground detection.
	Filter cp.ShapeFilter

	// ExtraSensors are cast alongside the main sensor, like the crouch
	// enforcer's ceiling sensor.
	ExtraSensors []*stride.ProximitySensor

	entityIDs    map[*cp.Body]int
	nextEntityID int
}

func NewCharacter(body *cp.Body) *Character {
	return &Character{
		Body:      body,
		Filter:    cp.SHAPE_FILTER_ALL,
		entityIDs: make(map[*cp.Body]int),
	}
}

func toVec3(v cp.Vector) mgl64.Vec3 {
	return mgl64.Vec3{v.X, v.Y, 0}
}

func toVec2(v mgl64.Vec3) cp.Vector {
	return cp.Vector{X: v[0], Y: v[1]}
}

// SyncTracker copies the body's kinematic state into the tracker. Call it at
// the start of the frame, before feeding the controller.
func (c *Character) SyncTracker(space *cp.Space) {
	c.Tracker = stride.RigidBodyTracker{
		Translation: toVec3(c.Body.Position()),
		Rotation:    mgl64.QuatRotate(c.Body.Angle(), mgl64.Vec3{0, 0, 1}),
		Velocity:    toVec3(c.Body.Velocity()),
		AngVel:      mgl64.Vec3{0, 0, c.Body.AngularVelocity()},
		Gravity:     toVec3(space.Gravity()),
	}
}

// CastSensor performs the proximity casts the controller asked for last
// frame, on the main sensor and any extra sensors.
func (c *Character) CastSensor(space *cp.Space) {
	c.cast(space, &c.Sensor)
	for _, sensor := range c.ExtraSensors {
		c.cast(space, sensor)
	}
}

func (c *Character) cast(space *cp.Space, sensor *stride.ProximitySensor) {
	sensor.Output = nil
	if sensor.CastRange <= 0 || sensor.CastDirection == (mgl64.Vec3{}) {
		return
	}
	origin := c.Body.Position().Add(toVec2(sensor.CastOrigin))
	end := origin.Add(toVec2(sensor.CastDirection.Mul(sensor.CastRange)))
	info := space.SegmentQueryFirst(origin, end, 0, c.Filter)
	if info.Shape == nil {
		return
	}
	hitBody := info.Shape.Body()
	sensor.Output = &stride.ProximitySensorOutput{
		Entity:       c.entityID(hitBody),
		Proximity:    info.Alpha * sensor.CastRange,
		Normal:       toVec3(info.Normal),
		EntityLinvel: toVec3(hitBody.Velocity()),
		EntityAngvel: mgl64.Vec3{0, 0, hitBody.AngularVelocity()},
	}
}

// entityID assigns a stable id per detected body. The ids only need to be
// consistent across frames for this character, so the basis can notice when
// the ground under it changes.
func (c *Character) entityID(body *cp.Body) int {
	if id, ok := c.entityIDs[body]; ok {
		return id
	}
	c.nextEntityID++
	c.entityIDs[body] = c.nextEntityID
	return c.nextEntityID
}

// ApplyMotor folds the motor's velocity changes into the body.
func (c *Character) ApplyMotor(frameDuration float64) {
	linear := c.Motor.Lin.CalcBoost(frameDuration)
	velocity := c.Body.Velocity().Add(toVec2(linear))
	if math.IsNaN(velocity.X) || math.IsNaN(velocity.Y) {
		return
	}
	c.Body.SetVelocityVector(velocity)

	angular := c.Motor.Ang.CalcBoost(frameDuration)[2]
	if !math.IsNaN(angular) {
		c.Body.SetAngularVelocity(c.Body.AngularVelocity() + angular)
	}
}

// Step runs one frame of the controller pipeline: sync the tracker, cast the
// sensors, open the feeding session and let feed supply the basis and
// actions, update the controller, apply the motor. Call it once per
// character per frame, before stepping the space.
func (c *Character) Step(space *cp.Space, frameDuration float64, controller *stride.Controller, feed func(*stride.Controller)) {
	if c.Toggle == ToggleDisabled {
		return
	}
	c.SyncTracker(space)
	c.CastSensor(space)
	if c.Toggle == ToggleSenseOnly {
		return
	}
	controller.StartFeeding()
	feed(controller)
	controller.Update(frameDuration, &c.Tracker, &c.Sensor, &c.Motor)
	c.ApplyMotor(frameDuration)
}
