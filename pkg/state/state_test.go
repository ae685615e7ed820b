package state

import (
	"testing"
	"time"
)

func TestManager(t *testing.T) {
	m := New()
	now := time.Date(2026, 10, 19, 18, 0, 0, 0, time.Local)
	m.now = func() time.Time { return now }

	if got := m.GetState(1); got.State != StateNormal {
		t.Errorf("unknown chat state = %q", got.State)
	}

	m.SetState(1, StateEditingMemo, "18:30", "さくら")
	got := m.GetState(1)
	if got.State != StateEditingMemo || got.Group != "18:30" || got.Room != "さくら" {
		t.Errorf("GetState() = %+v", got)
	}

	m.ClearState(1)
	if got := m.GetState(1); got.State != StateNormal {
		t.Errorf("state after clear = %q", got.State)
	}

	m.SetState(2, StateEditingMemo, "19:00", "ふじ")
	now = now.Add(11 * time.Minute)
	if got := m.GetState(2); got.State != StateNormal {
		t.Errorf("expired state = %q", got.State)
	}
	if _, ok := m.states[2]; ok {
		t.Error("expired state not removed")
	}
}
