package models

import "time"

// CommandDescriptor describes the remote command registered with the platform.
type CommandDescriptor struct {
	Name        string
	Description string
	Public      bool // false restricts the command to administrators
}

// EventKind tags an inbound interaction event.
type EventKind int

// Interaction event kinds.
const (
	EventUnknown EventKind = iota
	EventCommandInvocation
	EventControlActivation
	EventProbe
)

func (k EventKind) String() string {
	switch k {
	case EventCommandInvocation:
		return "command"
	case EventControlActivation:
		return "control"
	case EventProbe:
		return "probe"
	default:
		return "unknown"
	}
}

// InteractionEvent is a single inbound interaction from the platform.
type InteractionEvent struct {
	Kind  EventKind
	ID    string // correlates the acknowledgment
	Token string // interaction token required to respond

	CommandName string // set for EventCommandInvocation
	ControlID   string // set for EventControlActivation

	ChannelID string
	UserID    string
	Username  string
}

// AckKind selects the acknowledgment sent back for an interaction.
type AckKind int

// Acknowledgment kinds.
const (
	// AckDeferredUpdate tells the platform the control was handled without
	// changing the message.
	AckDeferredUpdate AckKind = iota
	// AckPong answers a connectivity probe.
	AckPong
	// AckFailureNotice replies privately to the user that the action failed.
	AckFailureNotice
)

func (k AckKind) String() string {
	switch k {
	case AckDeferredUpdate:
		return "deferred_update"
	case AckPong:
		return "pong"
	case AckFailureNotice:
		return "failure_notice"
	default:
		return "unknown"
	}
}

// ControlButton is one button of a confirmation control.
type ControlButton struct {
	Label    string
	CustomID string
	Danger   bool
}

// ControlMessage is the message posted in response to a command invocation.
type ControlMessage struct {
	Content string
	Buttons []ControlButton
}

// RouterConfig holds the immutable settings of the interaction router.
type RouterConfig struct {
	CommandName    string
	ChannelID      string
	Prompt         string
	LaunchToken    string
	ShutdownToken  string        // empty disables the shutdown control
	RequestTimeout time.Duration // bounds each platform call
}

// Outcome summarises how the router handled an event.
type Outcome string

// Router outcomes.
const (
	OutcomeIgnored       Outcome = "ignored"
	OutcomeControlPosted Outcome = "control_posted"
	OutcomeWakeSent      Outcome = "wake_sent"
	OutcomeShutdownSent  Outcome = "shutdown_sent"
	OutcomeProbeAnswered Outcome = "probe_answered"
	OutcomeFailed        Outcome = "failed"
)

// InteractionResult holds the result of handling one interaction event.
type InteractionResult struct {
	Kind         EventKind
	Outcome      Outcome
	State        string // final lifecycle state
	WakeSent     bool
	Acknowledged bool
	Error        error
}
