package interaction

import (
	"github.com/looplab/fsm"
)

// Lifecycle states of a single interaction event.
const (
	StateReceived     = "received"
	StateDispatched   = "dispatched"
	StateAcknowledged = "acknowledged"
	StateIgnored      = "ignored"
	StateFailed       = "failed"
)

const (
	eventDispatch = "dispatch"
	eventAck      = "ack"
	eventIgnore   = "ignore"
	eventFail     = "fail"
)

// newLifecycle returns the state machine for one event. An acknowledgment
// is only accepted after the action was dispatched.
func newLifecycle() *fsm.FSM {
	return fsm.NewFSM(
		StateReceived,
		fsm.Events{
			{Name: eventDispatch, Src: []string{StateReceived}, Dst: StateDispatched},
			{Name: eventAck, Src: []string{StateDispatched}, Dst: StateAcknowledged},
			{Name: eventIgnore, Src: []string{StateReceived}, Dst: StateIgnored},
			{Name: eventFail, Src: []string{StateReceived, StateDispatched}, Dst: StateFailed},
		},
		fsm.Callbacks{},
	)
}
