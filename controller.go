package stride

import (
	"errors"

	"github.com/milk9111/stride/common"
)

// ErrNoBasis is returned by queries that need a basis before one was ever
// fed.
var ErrNoBasis = errors.New("stride: controller has no basis")

type fedEntry struct {
	fedThisFrame bool
	// rescheduledIn counts down to when a finished action may restart
	// without its input having to stop. Negative when no reschedule is
	// armed.
	rescheduledIn float64
	rescheduled   bool
}

type contenderEntry struct {
	action Action
	// beingFedFor is how long the contender has been waiting to start.
	beingFedFor float64
	// interrupt marks a contender fed through FeedActionInterrupt, which a
	// plain feed of another kind must not silently overwrite.
	interrupt bool
}

// Controller is the heart of the engine. Game code feeds it a basis and
// actions every frame, and the per-frame Update arbitrates them and writes
// the resulting velocity changes into the motor.
//
// Feeding follows a strict per-frame session: call StartFeeding once, then
// FeedBasis and any number of FeedAction calls, then Update. Feeding outside
// a session is a bug in the calling code and panics.
type Controller struct {
	basis           Basis
	actionsBeingFed map[string]*fedEntry
	currentAction   Action
	contender       *contenderEntry
	flow            FlowStatus
	feeding         bool
}

func NewController() *Controller {
	return &Controller{
		actionsBeingFed: make(map[string]*fedEntry),
	}
}

// StartFeeding opens the frame's feeding session. Must be called before any
// FeedBasis or FeedAction call, once per frame.
func (c *Controller) StartFeeding() {
	c.feeding = true
}

func (c *Controller) mustBeFeeding() {
	if !c.feeding {
		panic("stride: feeding without StartFeeding")
	}
}

// FeedBasis sets the basis for this frame. When the new value is the same
// kind as the current basis it inherits the current one's working memory, so
// feeding fresh input every frame does not reset the movement state.
func (c *Controller) FeedBasis(basis Basis) {
	c.mustBeFeeding()
	if c.basis != nil && c.basis.Name() == basis.Name() {
		basis.InheritMemory(c.basis)
	}
	c.basis = basis
}

// NeutralizeBasis makes the basis pretend the user provided no input this
// frame. Configuration fields keep their values; only the input fields get
// nullified.
func (c *Controller) NeutralizeBasis() {
	if c.basis != nil {
		c.basis.Neutralize()
	}
}

// FeedAction feeds an action for this frame. It is safe to feed several
// actions in the same frame; the controller decides which one runs.
func (c *Controller) FeedAction(action Action) {
	c.feedAction(action, false)
}

// FeedActionInterrupt is like FeedAction, but the contender it creates
// cannot be silently overwritten by a plain feed of a different action kind.
// Control helpers use it to force an action through.
func (c *Controller) FeedActionInterrupt(action Action) {
	c.feedAction(action, true)
}

func (c *Controller) feedAction(action Action, interrupt bool) {
	c.mustBeFeeding()
	name := action.Name()
	if entry, ok := c.actionsBeingFed[name]; ok {
		entry.fedThisFrame = true
		if c.currentAction != nil {
			if c.currentAction.Name() == name {
				c.currentAction.UpdateInput(action)
			}
			// A different action is running. Do not contend, because the
			// input was already held when it started.
		} else if c.contender == nil && entry.rescheduled && entry.rescheduledIn <= 0 {
			// No action is running, and this one finished with a
			// reschedule whose cooldown has passed.
			c.contender = &contenderEntry{action: action, interrupt: interrupt}
		}
		return
	}
	c.actionsBeingFed[name] = &fedEntry{fedThisFrame: true}
	if c.contender != nil {
		if c.contender.action.Name() == name {
			c.contender.action.UpdateInput(action)
			return
		}
		if c.contender.interrupt && !interrupt {
			return
		}
	}
	c.contender = &contenderEntry{action: action, interrupt: interrupt}
}

// BasisName returns the current basis's name, or empty when no basis was fed
// yet.
func (c *Controller) BasisName() string {
	if c.basis == nil {
		return ""
	}
	return c.basis.Name()
}

// Basis returns the current basis, or nil. Callers that need a concrete kind
// type-switch on the result.
func (c *Controller) Basis() Basis {
	return c.basis
}

// ActionName returns the running action's name, or empty when no action is
// running.
func (c *Controller) ActionName() string {
	if c.currentAction == nil {
		return ""
	}
	return c.currentAction.Name()
}

// Action returns the running action, or nil.
func (c *Controller) Action() Action {
	return c.currentAction
}

// FedStatus reports whether an action kind is being fed right now.
func (c *Controller) FedStatus(name string) FedStatus {
	entry, ok := c.actionsBeingFed[name]
	if !ok {
		return FedNot
	}
	if entry.fedThisFrame {
		return FedFresh
	}
	return FedLingering
}

// FlowStatus indicates the state and flow of movement actions. Query it
// every frame to key animation or sound off action transitions. Unlike
// polling ActionName, it distinguishes an action restarting from one that
// simply kept running, and it reports ActionEnded as soon as the input stops
// even while the action plays its termination sequence.
func (c *Controller) FlowStatus() FlowStatus {
	return c.flow
}

// IsAirborne checks whether the character is in the air, according to the
// basis. Returns ErrNoBasis when no basis was ever fed.
func (c *Controller) IsAirborne() (bool, error) {
	if c.basis == nil {
		return false, ErrNoBasis
	}
	return c.basis.IsAirborne(), nil
}

// Update runs one frame of the engine: applies the basis, arbitrates the fed
// actions, applies the winner, and prepares the sensor for the next frame's
// cast. It closes the feeding session opened by StartFeeding.
func (c *Controller) Update(frameDuration float64, tracker *RigidBodyTracker, sensor *ProximitySensor, motor *Motor) {
	c.feeding = false
	if frameDuration == 0 {
		return
	}

	// Roll the flow status forward from the previous frame's transition.
	switch c.flow.Kind {
	case FlowNoAction, FlowActionOngoing:
	case FlowActionEnded:
		c.flow = FlowStatus{Kind: FlowNoAction}
	case FlowActionStarted, FlowCancelled:
		c.flow = FlowStatus{Kind: FlowActionOngoing, Name: c.flow.Name}
	}

	if c.basis != nil {
		motor.Clear()
		basisCtx := BasisContext{
			FrameDuration: frameDuration,
			Tracker:       tracker,
			Sensor:        sensor,
		}
		c.basis.Apply(basisCtx, motor)

		actionCtx := ActionContext{
			FrameDuration: frameDuration,
			Tracker:       tracker,
			Sensor:        sensor,
			Basis:         c.basis,
		}

		hasValidContender := false
		if c.contender != nil {
			decision := c.contender.action.InitiationDecision(actionCtx, c.contender.beingFedFor)
			c.contender.beingFedFor += frameDuration
			switch decision {
			case InitiationReject:
				c.contender = nil
			case InitiationDelay:
			case InitiationAllow:
				hasValidContender = true
			}
		}

		if c.currentAction != nil {
			name := c.currentAction.Name()
			var lifecycleStatus LifecycleStatus
			switch {
			case hasValidContender:
				lifecycleStatus = LifecycleCancelledInto
			case c.fedThisFrame(name):
				lifecycleStatus = LifecycleStillFed
			default:
				lifecycleStatus = LifecycleNoLongerFed
			}

			directive := c.currentAction.Apply(actionCtx, lifecycleStatus, motor)
			if c.currentAction.ViolatesCoyoteTime() {
				c.basis.ViolateCoyoteTime()
			}

			switch directive.resolution {
			case resolutionStillActive:
				if lifecycleStatus == LifecycleNoLongerFed && c.flow.Kind == FlowActionOngoing {
					c.flow = FlowStatus{Kind: FlowActionEnded}
				}
			case resolutionFinished, resolutionReschedule:
				if directive.resolution == resolutionReschedule {
					c.rescheduleAction(name, directive.RescheduleAfter)
				}
				if hasValidContender {
					contender := c.contender
					c.contender = nil
					if entry, ok := c.actionsBeingFed[contender.action.Name()]; ok {
						entry.rescheduled = false
						entry.rescheduledIn = 0
					}
					contenderDirective := contender.action.Apply(actionCtx, LifecycleCancelledFrom, motor)
					if contender.action.ViolatesCoyoteTime() {
						c.basis.ViolateCoyoteTime()
					}
					switch contenderDirective.resolution {
					case resolutionStillActive:
						if c.flow.Kind == FlowActionOngoing {
							c.flow = FlowStatus{Kind: FlowCancelled, Name: contender.action.Name(), Old: name}
						} else {
							c.flow = FlowStatus{Kind: FlowActionStarted, Name: contender.action.Name()}
						}
						c.currentAction = contender.action
					case resolutionFinished:
						if c.flow.Kind == FlowActionOngoing {
							c.flow = FlowStatus{Kind: FlowActionEnded}
						}
						c.currentAction = nil
					case resolutionReschedule:
						if c.flow.Kind == FlowActionOngoing {
							c.flow = FlowStatus{Kind: FlowActionEnded}
						}
						c.rescheduleAction(contender.action.Name(), contenderDirective.RescheduleAfter)
						c.currentAction = nil
					}
				} else {
					c.flow = FlowStatus{Kind: FlowActionEnded}
					c.currentAction = nil
				}
			}
		} else if hasValidContender {
			contender := c.contender
			c.contender = nil
			directive := contender.action.Apply(actionCtx, LifecycleInitiated, motor)
			if contender.action.ViolatesCoyoteTime() {
				c.basis.ViolateCoyoteTime()
			}
			switch directive.resolution {
			case resolutionStillActive:
				c.flow = FlowStatus{Kind: FlowActionStarted, Name: contender.action.Name()}
				c.currentAction = contender.action
			case resolutionFinished:
			case resolutionReschedule:
				c.rescheduleAction(contender.action.Name(), directive.RescheduleAfter)
			}
		}

		sensorCastRange := c.basis.SensorCastRange()
		if c.currentAction != nil {
			sensorCastRange = max(sensorCastRange, c.currentAction.SensorCastRange())
		}
		sensor.CastRange = sensorCastRange
		sensor.CastDirection = common.NormalizeOrZero(c.basis.UpDirection()).Mul(-1)
	}

	// Cycle the fed ledger. Entries fed this frame linger one more frame;
	// entries not re-fed since are dropped.
	for name, entry := range c.actionsBeingFed {
		if entry.fedThisFrame {
			entry.fedThisFrame = false
			if entry.rescheduled {
				entry.rescheduledIn -= frameDuration
			}
		} else {
			delete(c.actionsBeingFed, name)
		}
	}

	if c.contender != nil {
		if _, ok := c.actionsBeingFed[c.contender.action.Name()]; !ok {
			c.contender = nil
		}
	}
}

func (c *Controller) fedThisFrame(name string) bool {
	entry, ok := c.actionsBeingFed[name]
	return ok && entry.fedThisFrame
}

func (c *Controller) rescheduleAction(name string, after float64) {
	if entry, ok := c.actionsBeingFed[name]; ok {
		entry.rescheduled = true
		entry.rescheduledIn = after
	}
}
