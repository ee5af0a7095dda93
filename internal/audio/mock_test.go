package audio

import (
	"errors"
	"testing"
	"time"
)

// TestMockDriverRecords tests that calls are recorded in order.
func TestMockDriverRecords(t *testing.T) {
	m := NewMockDriver()

	var hooks []string
	m.OnEngage = func() { hooks = append(hooks, "on") }
	m.OnDisengage = func() { hooks = append(hooks, "off") }

	if err := m.Engage(); err != nil {
		t.Fatalf("Engage failed: %v", err)
	}
	if !m.Engaged() {
		t.Error("Expected driver to be engaged")
	}
	time.Sleep(5 * time.Millisecond)
	if err := m.Disengage(); err != nil {
		t.Fatalf("Disengage failed: %v", err)
	}
	if m.Engaged() {
		t.Error("Expected driver to be disengaged")
	}

	events := m.Events()
	if len(events) != 2 {
		t.Fatalf("Expected 2 events, got %d", len(events))
	}
	if events[0].Action != ActionEngage || events[1].Action != ActionDisengage {
		t.Errorf("Unexpected events: %v", events)
	}
	if len(hooks) != 2 || hooks[0] != "on" || hooks[1] != "off" {
		t.Errorf("Unexpected hooks: %v", hooks)
	}

	durations := m.ToneDurations()
	if len(durations) != 1 || durations[0] < 5*time.Millisecond {
		t.Errorf("Expected one tone of at least 5ms, got %v", durations)
	}

	engages, disengages := m.Counts()
	if engages != 1 || disengages != 1 {
		t.Errorf("Expected 1/1 calls, got %d/%d", engages, disengages)
	}

	m.Reset()
	if len(m.Events()) != 0 {
		t.Error("Expected Reset to clear events")
	}
}

// TestMockDriverErrors tests injected failures.
func TestMockDriverErrors(t *testing.T) {
	m := NewMockDriver()
	boom := errors.New("boom")

	m.SetErrors(boom, nil)
	if err := m.Engage(); !errors.Is(err, boom) {
		t.Errorf("Expected injected error, got %v", err)
	}
	if len(m.Events()) != 0 {
		t.Error("Failed calls should not be recorded")
	}

	m.SetErrors(nil, boom)
	if err := m.Engage(); err != nil {
		t.Errorf("Unexpected error: %v", err)
	}
	if err := m.Disengage(); !errors.Is(err, boom) {
		t.Errorf("Expected injected error, got %v", err)
	}

	_ = m.Close()
	if err := m.Engage(); !errors.Is(err, ErrDriverClosed) {
		t.Errorf("Expected ErrDriverClosed, got %v", err)
	}
}

// TestMockActionString tests action names.
func TestMockActionString(t *testing.T) {
	if ActionEngage.String() != "engage" || ActionDisengage.String() != "disengage" {
		t.Error("Unexpected action names")
	}
	if MockAction(9).String() != "unknown" {
		t.Error("Expected unknown action name")
	}
}
