// Package helpers provides control helpers that sit between the game code
// and the controller, wrapping action feeds with extra policy.
package helpers

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/milk9111/stride"
)

// CrouchEnforcedAction is an action the crouch enforcer can hold and
// force-feed, like the builtin crouch.
type CrouchEnforcedAction interface {
	stride.Action

	// Overwrite replaces the held input with other's. Returns false when
	// other is a different action kind.
	Overwrite(other stride.Action) bool

	// FeedInto feeds an uncancellable copy of the action to the controller.
	FeedInto(controller *stride.Controller)

	// VerticalCastRange is the range, from the enforcer's sensor offset, to
	// check for a ceiling. Anything within it enforces the crouch.
	VerticalCastRange() float64

	// PreventCancellation makes the action refuse cancellation.
	PreventCancellation()
}

// CrouchEnforcer prevents the character from standing up when the player
// stops feeding a crouch action while under an obstacle. It keeps a ceiling
// sensor pointed upward; while that sensor senses anything, it force-feeds
// the crouch even though the game code no longer does.
//
// Pass crouch feeds through Enforcing on their way to the controller, and
// call Update once per frame inside the feeding session, after the regular
// feeds. The backend must cast Sensor alongside the controller's main
// sensor.
type CrouchEnforcer struct {
	offset             mgl64.Vec3
	sensor             stride.ProximitySensor
	enforced           CrouchEnforcedAction
	fedThisFrame       bool
	currentlyEnforcing bool
}

// NewCrouchEnforcer creates a crouch enforcer whose ceiling sensor casts
// from offset, in the rigid body's local space. Place the offset at the top
// of the collider.
func NewCrouchEnforcer(offset mgl64.Vec3) *CrouchEnforcer {
	return &CrouchEnforcer{offset: offset}
}

// Sensor is the upward ceiling sensor. The physics backend adapter casts it
// every frame, the same way it casts the controller's main sensor.
func (e *CrouchEnforcer) Sensor() *stride.ProximitySensor {
	return &e.sensor
}

// CurrentlyEnforcing reports whether a detected ceiling is holding the
// crouch down.
func (e *CrouchEnforcer) CurrentlyEnforcing() bool {
	return e.currentlyEnforcing
}

// Enforcing registers the crouch action with the enforcer on its way to the
// controller. Feed its return value instead of the original:
//
//	controller.FeedAction(enforcer.Enforcing(&builtin.Crouch{FloatOffset: -0.9}))
func (e *CrouchEnforcer) Enforcing(action CrouchEnforcedAction) stride.Action {
	if e.enforced == nil || !e.enforced.Overwrite(action) {
		e.enforced = action
	}
	e.fedThisFrame = true
	if e.currentlyEnforcing {
		action.PreventCancellation()
	}
	return action
}

// Update maintains the ceiling sensor and force-feeds the held action while
// a ceiling is detected. mainSensor is the controller's ground sensor, used
// to derive the upward cast direction.
func (e *CrouchEnforcer) Update(controller *stride.Controller, mainSensor *stride.ProximitySensor) {
	if e.enforced != nil && e.fedThisFrame {
		e.sensor.CastOrigin = e.offset
		e.sensor.CastDirection = mainSensor.CastDirection.Mul(-1)
		e.sensor.CastRange = e.enforced.VerticalCastRange()
		e.fedThisFrame = false
	} else {
		e.enforced = nil
		e.sensor.CastRange = 0
	}

	if e.enforced != nil && e.sensor.Output != nil {
		e.enforced.FeedInto(controller)
		e.fedThisFrame = true
		e.currentlyEnforcing = true
	} else {
		e.currentlyEnforcing = false
	}
}
