package common

// SegmentedJumpCalculator computes the kinetic energy needed at takeoff for a
// jump whose ascent passes through segments with different gravities (extra
// takeoff gravity near the ground, normal gravity in the middle, peak
// prevention gravity near the top). It integrates the jump in reverse, from
// the peak down, so segments must be added top-most first.
//
// Energies are per unit mass, with the potential energy at the takeoff point
// defined as zero. Deriving the takeoff velocity from energy is easier than
// chaining the ballistic formulas per segment.
type SegmentedJumpCalculator struct {
	height        float64
	kineticEnergy float64
}

// NewSegmentedJumpCalculator starts a calculation for a jump of the given
// total height.
func NewSegmentedJumpCalculator(totalHeight float64) *SegmentedJumpCalculator {
	return &SegmentedJumpCalculator{height: totalHeight}
}

// AddSegment consumes the part of the remaining jump height where the
// character moves slower than velocityThreshold, under the given gravity.
func (c *SegmentedJumpCalculator) AddSegment(gravity, velocityThreshold float64) *SegmentedJumpCalculator {
	if c.height <= 0 {
		// No more height to jump.
		return c
	}

	kineticEnergyAtThreshold := 0.5 * velocityThreshold * velocityThreshold

	transferredEnergy := kineticEnergyAtThreshold - c.kineticEnergy
	if transferredEnergy <= 0 {
		// Already faster than that velocity.
		return c
	}

	segmentHeight := transferredEnergy / gravity
	if c.height < segmentHeight {
		// This segment is the last one.
		c.kineticEnergy += c.height * gravity
		c.height = 0
	} else {
		c.kineticEnergy += transferredEnergy
		c.height -= segmentHeight
	}
	return c
}

// KineticEnergy is the energy the character needs at takeoff to reach the
// requested height through the added segments.
func (c *SegmentedJumpCalculator) KineticEnergy() float64 {
	return c.kineticEnergy
}
