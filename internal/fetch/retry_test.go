package fetch

import (
	"testing"
	"time"
)

type fixedRand struct{ v int64 }

func (f fixedRand) Int64N(n int64) int64 {
	if f.v >= n {
		return n - 1
	}
	return f.v
}

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		code   int
		expect ErrorAction
	}{
		{429, ActionRetry},
		{500, ActionRetry},
		{502, ActionRetry},
		{503, ActionRetry},
		{599, ActionRetry},
		{400, ActionFatal},
		{401, ActionFatal},
		{403, ActionFatal},
		{404, ActionFatal},
		{410, ActionFatal},
		{304, ActionFatal},
	}

	for _, tt := range tests {
		if got := ClassifyStatus(tt.code); got != tt.expect {
			t.Errorf("ClassifyStatus(%d) = %v, want %v", tt.code, got, tt.expect)
		}
	}
}

func TestBackoffDelay(t *testing.T) {
	b := Backoff{
		Base:      10 * time.Second,
		JitterMin: time.Second,
		JitterMax: 5 * time.Second,
		Rand:      fixedRand{0},
	}

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{1, 11 * time.Second},
		{2, 21 * time.Second},
		{3, 41 * time.Second},
	}
	for _, tt := range tests {
		if got := b.Delay(tt.attempt); got != tt.want {
			t.Errorf("Delay(%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}

	b.Rand = fixedRand{1 << 62}
	if got := b.Delay(1); got != 15*time.Second {
		t.Errorf("Delay(1) with max jitter = %v, want 15s", got)
	}
}

func TestMachineRetriesThenSucceeds(t *testing.T) {
	m := NewMachine(3, Backoff{Base: time.Second, Rand: fixedRand{0}})

	wait, retry := m.Failed("HTTP 500 Internal Server Error", ActionRetry)
	if !retry || wait != time.Second {
		t.Fatalf("Failed() = %v, %v, want 1s, true", wait, retry)
	}
	if st := m.State(); st.Phase != PhaseBackoff || st.Attempt != 1 {
		t.Fatalf("state = %+v, want backoff at attempt 1", st)
	}

	m.Resume()
	if st := m.State(); st.Phase != PhaseAttempting || st.Attempt != 2 {
		t.Fatalf("state = %+v, want attempting at attempt 2", st)
	}

	m.Succeeded()
	if st := m.State(); st.Phase != PhaseTerminal || st.Reason != "" || st.Waited != time.Second {
		t.Errorf("state = %+v, want terminal success after 1s of backoff", st)
	}
}

func TestMachineFatalStopsImmediately(t *testing.T) {
	m := NewMachine(3, Backoff{Base: time.Second, Rand: fixedRand{0}})

	if _, retry := m.Failed("HTTP 404 Not Found", ActionFatal); retry {
		t.Fatal("fatal action must not retry")
	}
	st := m.State()
	if st.Phase != PhaseTerminal || st.Exhausted || st.Attempt != 1 {
		t.Errorf("state = %+v, want terminal, not exhausted, attempt 1", st)
	}
}

func TestMachineExhausts(t *testing.T) {
	m := NewMachine(3, Backoff{Base: time.Second, Rand: fixedRand{0}})

	var waits []time.Duration
	for {
		wait, retry := m.Failed("timeout", ActionRetry)
		if !retry {
			break
		}
		waits = append(waits, wait)
		m.Resume()
	}

	if len(waits) != 2 || waits[0] != time.Second || waits[1] != 2*time.Second {
		t.Errorf("waits = %v, want [1s 2s]", waits)
	}
	st := m.State()
	if !st.Exhausted || st.Attempt != 3 || st.Reason != "timeout" || st.Waited != 3*time.Second {
		t.Errorf("state = %+v", st)
	}
}

func TestMachineResumeOnlyFromBackoff(t *testing.T) {
	m := NewMachine(2, Backoff{})
	m.Resume()
	if m.State().Attempt != 1 {
		t.Errorf("Resume() outside backoff advanced the attempt")
	}
}
