package stride

import "github.com/go-gl/mathgl/mgl64"

// BasisContext is the data a basis gets to work with each frame.
type BasisContext struct {
	FrameDuration float64
	Tracker       *RigidBodyTracker
	Sensor        *ProximitySensor
}

// Basis is the steady movement mode of the character, active whenever no
// action overrides it. A typical game has a single basis that handles
// standing, walking and falling, and feeds it fresh input every frame.
//
// A basis carries memory between frames. When the same basis kind is fed
// again the controller calls InheritMemory on the new value with the old one,
// so input fields change while the internal state persists.
type Basis interface {
	// Name identifies the basis kind. Feeding a basis with the same name as
	// the current one updates its input instead of replacing its state.
	Name() string

	// Apply runs the basis for one frame, writing its velocity changes into
	// the motor.
	Apply(ctx BasisContext, motor *Motor)

	// InheritMemory copies the per-frame working state from the previously
	// fed value of the same basis kind.
	InheritMemory(prev Basis)

	// SensorCastRange is how far down the ground sensor must reach for the
	// basis to do its job.
	SensorCastRange() float64

	// UpDirection is the direction the basis considers up.
	UpDirection() mgl64.Vec3

	// IsAirborne reports whether the character is in the air, coyote time
	// included.
	IsAirborne() bool

	// AirborneDuration is how long the character has been airborne. ok is
	// false while grounded.
	AirborneDuration() (duration float64, ok bool)

	// EffectiveVelocity is the character's velocity relative to whatever it
	// stands on.
	EffectiveVelocity() mgl64.Vec3

	// VerticalVelocity is the character's velocity component along the up
	// axis that counts as actual vertical movement, excluding motion that
	// comes from walking on a slope.
	VerticalVelocity() float64

	// Displacement is the position offset the basis tries to correct, such
	// as the deviation from float height. ok is false when the basis has no
	// such notion right now.
	Displacement() (displacement mgl64.Vec3, ok bool)

	// ViolateCoyoteTime tells the basis an action that counts as leaving the
	// ground (like a jump) has started, so it stops reporting the character
	// as grounded until it actually lands again.
	ViolateCoyoteTime()

	// Neutralize resets the basis's input so it no longer tries to move the
	// character, keeping enough state to stay afloat.
	Neutralize()
}
