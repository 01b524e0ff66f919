package stride

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/milk9111/stride/common"
)

// VelChange represents a change to velocity, linear or angular.
//
// This documentation uses the term "forces", but the numbers ignore mass and
// are applied directly to the velocity.
type VelChange struct {
	// Acceleration is the part of the change that the backend multiplies by
	// the frame duration, so that it applies smoothly over time and is not
	// sensitive to frame rate.
	Acceleration mgl64.Vec3
	// Boost is the part of the change the backend adds to the velocity as-is.
	Boost mgl64.Vec3
}

func AccelerationChange(acceleration mgl64.Vec3) VelChange {
	return VelChange{Acceleration: acceleration}
}

func BoostChange(boost mgl64.Vec3) VelChange {
	return VelChange{Boost: boost}
}

func (c VelChange) Add(other VelChange) VelChange {
	return VelChange{
		Acceleration: c.Acceleration.Add(other.Acceleration),
		Boost:        c.Boost.Add(other.Boost),
	}
}

func (c *VelChange) Clear() {
	*c = VelChange{}
}

// CancelOnAxis removes the change's component along axis, leaving the other
// axes untouched. Actions use this to replace just the basis's contribution
// on one axis.
func (c *VelChange) CancelOnAxis(axis mgl64.Vec3) {
	c.Acceleration = common.Reject(c.Acceleration, axis)
	c.Boost = common.Reject(c.Boost, axis)
}

// CalcBoost folds the acceleration into an equivalent instantaneous boost for
// the given frame duration.
func (c VelChange) CalcBoost(frameDuration float64) mgl64.Vec3 {
	return c.Acceleration.Mul(frameDuration).Add(c.Boost)
}

// CalcMeanBoost is like CalcBoost, but counts the acceleration at half
// strength - the average velocity change over the frame.
func (c VelChange) CalcMeanBoost(frameDuration float64) mgl64.Vec3 {
	return c.Acceleration.Mul(0.5 * frameDuration).Add(c.Boost)
}

// CalcAcceleration folds the boost into an equivalent acceleration for the
// given frame duration.
func (c VelChange) CalcAcceleration(frameDuration float64) mgl64.Vec3 {
	return c.Acceleration.Add(c.Boost.Mul(1 / frameDuration))
}

// ApplyBoostLimit caps the total boost (acceleration folded in) along
// direction at limit. The cut comes out of the boost first; only when that is
// not enough does it reduce the acceleration, so the change keeps as much of
// its frame-rate-independent part as possible.
func (c *VelChange) ApplyBoostLimit(frameDuration float64, direction mgl64.Vec3, limit float64) {
	regular := c.CalcBoost(frameDuration).Dot(direction)
	toCut := regular - limit
	if toCut <= 0 {
		return
	}
	boostPart := c.Boost.Dot(direction)
	if toCut <= boostPart {
		c.Boost = c.Boost.Sub(direction.Mul(toCut))
		return
	}
	// Nullifying the boost is not enough, and we don't want to reverse it,
	// so cut the acceleration as well.
	c.Boost = common.Reject(c.Boost, direction)
	c.Acceleration = c.Acceleration.Sub(direction.Mul((toCut - boostPart) / frameDuration))
}

// Motor is the backend-neutral per-frame output of the engine: instructions
// on how to change the rigid body's velocity. The physics backend adapter
// reads it after the controller update and applies it to the body.
type Motor struct {
	// Lin is how much velocity to add to the rigid body this frame.
	Lin VelChange
	// Ang is how much angular velocity to add, given as the rotation axis
	// multiplied by the rotation speed in radians per second.
	Ang VelChange
}

func (m *Motor) Clear() {
	m.Lin.Clear()
	m.Ang.Clear()
}
