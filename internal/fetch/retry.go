package fetch

import (
	"time"

	"github.com/vietddude/harvester/internal/pacing"
)

// ErrorAction determines how a failed attempt is handled.
type ErrorAction int

const (
	ActionRetry ErrorAction = iota
	ActionFatal
)

func (a ErrorAction) String() string {
	if a == ActionRetry {
		return "retry"
	}
	return "fatal"
}

// ClassifyStatus maps a non-2xx HTTP status to an action. 429 and 5xx are
// transient; everything else is terminal.
func ClassifyStatus(code int) ErrorAction {
	if code == 429 || (code >= 500 && code <= 599) {
		return ActionRetry
	}
	return ActionFatal
}

// Phase is the state of a retry sequence.
//
//	Attempting → Backoff → Attempting → ... → Terminal
type Phase int

const (
	PhaseAttempting Phase = iota
	PhaseBackoff
	PhaseTerminal
)

func (p Phase) String() string {
	switch p {
	case PhaseAttempting:
		return "attempting"
	case PhaseBackoff:
		return "backoff"
	default:
		return "terminal"
	}
}

// RetryState is the observable state of a Machine.
type RetryState struct {
	Phase   Phase
	Attempt int           // 1-based attempt number
	Waited  time.Duration // total backoff scheduled so far
	Reason  string        // last failure reason
	// Exhausted is set when the sequence ended on a transient failure.
	Exhausted bool
}

// Backoff computes RetryBase * 2^(attempt-1) plus a jitter in [JitterMin, JitterMax].
type Backoff struct {
	Base      time.Duration
	JitterMin time.Duration
	JitterMax time.Duration
	Rand      pacing.Rand
}

// Delay returns the wait after the given failed attempt.
func (b Backoff) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	r := b.Rand
	if r == nil {
		r = pacing.DefaultRand
	}
	return b.Base*time.Duration(1<<(attempt-1)) + pacing.Between(r, b.JitterMin, b.JitterMax)
}

// Machine is the retry state machine for one download. It performs no I/O and
// never sleeps; the caller executes the attempts and the waits it schedules.
type Machine struct {
	max     int
	backoff Backoff
	state   RetryState
}

// NewMachine starts a sequence in PhaseAttempting at attempt 1.
func NewMachine(maxAttempts int, b Backoff) *Machine {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Machine{
		max:     maxAttempts,
		backoff: b,
		state:   RetryState{Phase: PhaseAttempting, Attempt: 1},
	}
}

// State returns the current state.
func (m *Machine) State() RetryState {
	return m.state
}

// Succeeded ends the sequence.
func (m *Machine) Succeeded() {
	m.state.Phase = PhaseTerminal
	m.state.Reason = ""
}

// Failed records a failed attempt. It returns the wait before the next
// attempt and true, or false when the sequence is terminal.
func (m *Machine) Failed(reason string, action ErrorAction) (time.Duration, bool) {
	m.state.Reason = reason

	if action == ActionFatal {
		m.state.Phase = PhaseTerminal
		return 0, false
	}
	if m.state.Attempt >= m.max {
		m.state.Phase = PhaseTerminal
		m.state.Exhausted = true
		return 0, false
	}

	wait := m.backoff.Delay(m.state.Attempt)
	m.state.Phase = PhaseBackoff
	m.state.Waited += wait
	return wait, true
}

// Resume moves from PhaseBackoff to the next attempt.
func (m *Machine) Resume() {
	if m.state.Phase != PhaseBackoff {
		return
	}
	m.state.Phase = PhaseAttempting
	m.state.Attempt++
}
