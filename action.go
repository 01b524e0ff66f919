package stride

// ActionContext is the data an action gets to work with each frame. Actions
// run on top of a basis and usually consult it through Basis.
type ActionContext struct {
	FrameDuration float64
	Tracker       *RigidBodyTracker
	Sensor        *ProximitySensor
	Basis         Basis
}

// LifecycleStatus tells an action where it stands in its lifecycle when it
// gets applied.
type LifecycleStatus int

const (
	// LifecycleInitiated is passed on the action's first frame, when no
	// other action was running before it.
	LifecycleInitiated LifecycleStatus = iota
	// LifecycleCancelledFrom is passed on the action's first frame when it
	// cancelled another action to start.
	LifecycleCancelledFrom
	// LifecycleStillFed is passed while the player input keeps feeding the
	// action.
	LifecycleStillFed
	// LifecycleNoLongerFed is passed once the player input stops feeding the
	// action. The action keeps running until it returns a finishing
	// directive.
	LifecycleNoLongerFed
	// LifecycleCancelledInto is passed when another action wants to start.
	// The action may wind down gracefully, or ignore the cancellation and
	// return DirectiveStillActive to refuse it.
	LifecycleCancelledInto
)

// JustStarted reports whether this is the action's first frame.
func (s LifecycleStatus) JustStarted() bool {
	return s == LifecycleInitiated || s == LifecycleCancelledFrom
}

// IsActive reports whether the player input is still feeding the action.
func (s LifecycleStatus) IsActive() bool {
	switch s {
	case LifecycleInitiated, LifecycleCancelledFrom, LifecycleStillFed:
		return true
	default:
		return false
	}
}

// Directive resolutions an action returns from Apply.
const (
	resolutionStillActive = iota
	resolutionFinished
	resolutionReschedule
)

// LifecycleDirective is an action's verdict on its own lifecycle, returned
// from Apply every frame.
type LifecycleDirective struct {
	resolution      int
	RescheduleAfter float64
}

var (
	// DirectiveStillActive keeps the action running for another frame.
	DirectiveStillActive = LifecycleDirective{resolution: resolutionStillActive}
	// DirectiveFinished ends the action this frame. The same input must
	// stop and be fed again before the action can run again.
	DirectiveFinished = LifecycleDirective{resolution: resolutionFinished}
)

// DirectiveReschedule ends the action like DirectiveFinished, but arms it to
// run again without the input having to stop, once the cooldown passes.
func DirectiveReschedule(after float64) LifecycleDirective {
	return LifecycleDirective{resolution: resolutionReschedule, RescheduleAfter: after}
}

// SimpleDirective returns DirectiveFinished when the action is no longer
// active, DirectiveStillActive otherwise.
func (s LifecycleStatus) SimpleDirective() LifecycleDirective {
	if s.IsActive() {
		return DirectiveStillActive
	}
	return DirectiveFinished
}

// SimpleDirectiveReschedule is like SimpleDirective, but finishes with a
// reschedule cooldown instead.
func (s LifecycleStatus) SimpleDirectiveReschedule(after float64) LifecycleDirective {
	if s.IsActive() {
		return DirectiveStillActive
	}
	return DirectiveReschedule(after)
}

// InitiationDirective is an action's verdict on whether it may start,
// returned from InitiationDecision while the action is a contender.
type InitiationDirective int

const (
	// InitiationReject drops the contender. The input must stop and be fed
	// again before the action gets another chance.
	InitiationReject InitiationDirective = iota
	// InitiationDelay keeps the action as a contender; its initiation will
	// be checked again next frame. This is how input buffering works.
	InitiationDelay
	// InitiationAllow starts the action this frame.
	InitiationAllow
)

// Action is a movement ability that overrides the basis while it runs, like a
// jump or a dash. Only one action runs at a time; the controller arbitrates
// between fed actions.
//
// Like a basis, an action is re-fed every frame the player keeps the input
// held. When the same action kind is fed while running, the controller calls
// UpdateInput on the running value so the fresh input lands without resetting
// the action's state.
type Action interface {
	// Name identifies the action kind. At most one action of each name can
	// be fed per frame.
	Name() string

	// InitiationDecision decides whether the action may start right now.
	// beingFedFor is how long the action has been waiting as a contender,
	// for input buffering cutoffs.
	InitiationDecision(ctx ActionContext, beingFedFor float64) InitiationDirective

	// Apply runs the action for one frame, writing its velocity changes
	// into the motor, and returns what should happen to it next.
	Apply(ctx ActionContext, status LifecycleStatus, motor *Motor) LifecycleDirective

	// UpdateInput copies the input fields from a freshly fed value of the
	// same action kind into the running one.
	UpdateInput(next Action)

	// SensorCastRange is how far the ground sensor must reach for the
	// action to do its job. The controller takes the maximum over the basis
	// and the current action.
	SensorCastRange() float64

	// ViolatesCoyoteTime reports whether starting this action counts as
	// deliberately leaving the ground, which forfeits coyote time for
	// follow-up actions.
	ViolatesCoyoteTime() bool
}

// FedStatus describes whether an action kind is currently being fed.
type FedStatus int

const (
	// FedNot means the action kind has not been fed recently.
	FedNot FedStatus = iota
	// FedLingering means the action kind was fed last frame but not yet
	// this frame. Input feeding usually happens before the frame update, so
	// a one frame grace keeps held input from flickering.
	FedLingering
	// FedFresh means the action kind was fed this frame.
	FedFresh
)

// FlowStatusKind is the transition the action flow made this frame.
type FlowStatusKind int

const (
	// FlowNoAction means no action was running this frame.
	FlowNoAction FlowStatusKind = iota
	// FlowActionStarted means an action started this frame with no action
	// running before it.
	FlowActionStarted
	// FlowActionOngoing means the action kept running this frame.
	FlowActionOngoing
	// FlowActionEnded means the action finished this frame.
	FlowActionEnded
	// FlowCancelled means an action cancelled another this frame; Old names
	// the cancelled action and Name the new one.
	FlowCancelled
)

// FlowStatus describes what happened to the action flow this frame, for game
// code that keys animation or sound off action transitions.
type FlowStatus struct {
	Kind FlowStatusKind
	// Name is the current action's name, empty for FlowNoAction and
	// FlowActionEnded.
	Name string
	// Old is the cancelled action's name; set only for FlowCancelled.
	Old string
}

// Ongoing reports whether an action is running as of this frame.
func (s FlowStatus) Ongoing() bool {
	switch s.Kind {
	case FlowActionStarted, FlowActionOngoing, FlowCancelled:
		return true
	default:
		return false
	}
}

// JustStarting returns the name of the action that started this frame, or
// empty when none did.
func (s FlowStatus) JustStarting() string {
	if s.Kind == FlowActionStarted || s.Kind == FlowCancelled {
		return s.Name
	}
	return ""
}
