package stride

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/milk9111/stride/common"
)

// VelocityBoundary is an indication that the character was knocked back and
// "struggles" to get back to its original velocity. Its direction is the
// direction of the disruption; regular movement that pushes against that
// direction pushes on the boundary, and gets limited with diminishing
// strength the deeper it digs into the barrier. The frontier chases the
// character's actual velocity, so the boundary clears itself once the
// character recovers its pre-disruption velocity or stops pushing long
// enough.
type VelocityBoundary struct {
	base             float64
	originalFrontier float64
	frontier         float64
	direction        mgl64.Vec3
	noPushTime       float64
	noPushTimeout    float64
}

// NewVelocityBoundary creates a boundary for a disruption that changed the
// character's velocity from disruptionFrom to disruptionTo. Returns nil when
// the disruption is zero and no boundary is needed.
func NewVelocityBoundary(disruptionFrom, disruptionTo mgl64.Vec3, noPushTimeout float64) *VelocityBoundary {
	direction := common.NormalizeOrZero(disruptionTo.Sub(disruptionFrom))
	if direction.LenSqr() == 0 {
		return nil
	}
	frontier := disruptionTo.Dot(direction)
	return &VelocityBoundary{
		base:             disruptionFrom.Dot(direction),
		originalFrontier: frontier,
		frontier:         frontier,
		direction:        direction,
		noPushTimeout:    noPushTimeout,
	}
}

// Update advances the boundary by one frame. When the character's velocity
// along the boundary direction drops below the frontier, the frontier follows
// it down and the no-push timer resets. Otherwise the timer ticks toward the
// timeout.
//
// Update only maintains the boundary. To apply it, use LimitBoost to
// determine how to alter the velocity change.
func (b *VelocityBoundary) Update(velocity mgl64.Vec3, frameDuration float64) {
	newFrontier := velocity.Dot(b.direction)
	if newFrontier < b.frontier {
		b.frontier = newFrontier
		b.noPushTime = 0
	} else {
		b.noPushTime += frameDuration
	}
}

// IsCleared reports whether the boundary no longer restricts movement, either
// because nothing pushed on it for the timeout duration or because the
// frontier receded past the base.
func (b *VelocityBoundary) IsCleared() bool {
	return b.noPushTimeout <= b.noPushTime || b.frontier <= b.base
}

func (b *VelocityBoundary) Direction() mgl64.Vec3 {
	return b.direction
}

// LimitBoost calculates how a boost needs to be limited according to the
// boundary. regularBoost is the total boost the caller would have applied
// before taking the boundary into account, and currentVelocity the
// character's velocity before it. boostLimitInsideBarrier is the maximum
// boost allowed inside a full strength barrier, and strengthDiminishing is an
// exponent describing how the barrier weakens as it gets cleared (values
// above 1 work best).
//
// The returned value is the boost limit only on the axis of the returned
// direction; the other axes should remain the same. ok is false when the
// boost does not push on the boundary at all, in which case no limiting is
// needed.
func (b *VelocityBoundary) LimitBoost(
	currentVelocity mgl64.Vec3,
	regularBoost mgl64.Vec3,
	boostLimitInsideBarrier float64,
	strengthDiminishing float64,
) (direction mgl64.Vec3, limit float64, ok bool) {
	boost := regularBoost.Dot(b.direction)
	if 0 <= boost {
		// Not pushing the barrier.
		return mgl64.Vec3{}, 0, false
	}
	current := currentVelocity.Dot(b.direction)
	afterBoost := current + boost
	if b.frontier <= afterBoost {
		return mgl64.Vec3{}, 0, false
	}
	boostBeforeBarrier := math.Max(current-b.frontier, 0)
	fractionBeforeFrontier := boostBeforeBarrier / -boost
	fractionAfterFrontier := 1 - fractionBeforeFrontier
	pushInsideBarrier := fractionAfterFrontier * boostLimitInsideBarrier
	barrierDepth := b.frontier - b.base
	if barrierDepth <= 0 {
		return mgl64.Vec3{}, 0, false
	}
	var fractionInsideBarrier float64
	if pushInsideBarrier <= barrierDepth {
		fractionInsideBarrier = fractionAfterFrontier
	} else {
		fractionInsideBarrier = barrierDepth / boostLimitInsideBarrier
	}
	fractionInsideBarrier = common.Clamp(fractionInsideBarrier, 0, 1)

	boostOutsideBarrier := (1 - fractionInsideBarrier) * boost
	// Negative here, because this is the part that pushes against the
	// barrier.
	boostInsideBarrier := fractionInsideBarrier * -boostLimitInsideBarrier

	totalBoost := boostOutsideBarrier + boostInsideBarrier

	barrierStrength := math.Pow(b.percentageLeft(), strengthDiminishing)
	totalBoost = (1-barrierStrength)*boost + barrierStrength*totalBoost

	return b.direction.Mul(-1), -totalBoost, true
}

func (b *VelocityBoundary) percentageLeft() float64 {
	currentDepth := b.frontier - b.base
	originalDepth := b.originalFrontier - b.base
	return currentDepth / originalDepth
}
