package stride

import "github.com/go-gl/mathgl/mgl64"

// RigidBodyTracker is the kinematic state of the character's rigid body,
// copied from the physics backend at the start of each frame.
type RigidBodyTracker struct {
	Translation mgl64.Vec3
	Rotation    mgl64.Quat
	Velocity    mgl64.Vec3
	AngVel      mgl64.Vec3
	Gravity     mgl64.Vec3
}

// ProximitySensor casts a ray (or shape) from the character toward the ground
// to detect what it stands on. The controller sets the cast direction and
// range before the backend performs the cast; the backend fills Output, or
// sets it to nil when nothing is in range.
type ProximitySensor struct {
	// CastOrigin is the cast's origin in the rigid body's local space.
	CastOrigin    mgl64.Vec3
	CastDirection mgl64.Vec3
	CastRange     float64
	Output        *ProximitySensorOutput
}

// ProximitySensorOutput describes the surface a ProximitySensor detected.
type ProximitySensorOutput struct {
	// Entity identifies the detected body, in whatever scheme the backend
	// uses. Bases compare it across frames to notice standing-on changes.
	Entity int
	// Proximity is the distance from the cast origin to the detected surface.
	Proximity float64
	Normal    mgl64.Vec3
	// EntityLinvel and EntityAngvel are the detected body's velocities, used
	// to ride moving platforms.
	EntityLinvel mgl64.Vec3
	EntityAngvel mgl64.Vec3
}
