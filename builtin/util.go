package builtin

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/milk9111/stride"
	"github.com/milk9111/stride/common"
)

// TorqueToForceForward is the angular velocity change that rotates the
// character around the up axis to face forward within one frame. Actions that
// force a facing direction, like wall sliding, add it to the angular motor
// after cancelling the up axis.
func TorqueToForceForward(forward mgl64.Vec3, rotation mgl64.Quat, angvel, up mgl64.Vec3, frameDuration float64) stride.VelChange {
	projection := common.DefaultProjectionPlane(up)
	currentForward := rotation.Rotate(projection.Forward)
	rotationAlongUpAxis := projection.RotationToSetForward(currentForward, forward)
	desiredAngvel := rotationAlongUpAxis / frameDuration
	existingAngvel := angvel.Dot(up)
	torqueToTurn := desiredAngvel - existingAngvel
	return stride.BoostChange(up.Mul(torqueToTurn))
}
