package reset

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/korjavin/dinnerboard/pkg/board"
	"github.com/korjavin/dinnerboard/pkg/roomprefs"
	"github.com/korjavin/dinnerboard/pkg/storage"
)

const day = "2026-10-19"

func TestRun(t *testing.T) {
	s, err := storage.NewInMemory()
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	boards := board.NewStore(s, func() string { return day })
	prefs := roomprefs.New(s)
	svc := New(boards, prefs)

	cells := []board.Cell{
		{Group: "18:00", Room: "つばき", Col: 4},
		{Group: "18:30", Room: "さくら", Col: 0},
		{Group: "19:00", Room: "ふじ", Col: 6},
	}
	boards.Update(func(b *board.Board) error {
		b.SetStatus(cells[0], board.StatusOrdered)
		b.SetWelldone(cells[0], 2)
		b.SetWaitTime(cells[0], board.Minutes(10))
		b.SetStatus(cells[1], board.StatusServed)
		b.SetStaff(cells[1], "真弓")
		b.SetStatus(cells[2], board.StatusMeatFired)
		return nil
	})
	s.SetRaw(board.LegacyKey(day), []byte(`{"18:00":{"つばき":{"0":true}}}`))
	prefs.SetSpeed("18:30", "さくら", roomprefs.SpeedSlow)
	prefs.SetMemo("18:30", "さくら", "記念日")

	first, err := svc.Run()
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	for _, c := range cells {
		if st := first.Status(c); st != board.StatusPending {
			t.Errorf("%s = %s after reset", c, st.Name())
		}
	}
	if first.HasSideData() {
		t.Error("side data left after reset")
	}
	if _, err := s.GetRaw(board.LegacyKey(day)); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("legacy record still present: %v", err)
	}
	if prefs.Speed("18:30", "さくら") != roomprefs.SpeedNormal || prefs.Memo("18:30", "さくら") != "" {
		t.Error("room preferences survived reset")
	}

	second, err := svc.Run()
	if err != nil {
		t.Fatalf("second Run() error = %v", err)
	}
	a, _ := json.Marshal(first)
	b, _ := json.Marshal(second)
	if string(a) != string(b) {
		t.Errorf("reset not idempotent:\n%s\n%s", a, b)
	}

	stored, _ := json.Marshal(boards.Load())
	if string(stored) != string(a) {
		t.Errorf("stored board differs from returned board")
	}
}

type failingPrefs struct{}

func (failingPrefs) Clear() (int, error) { return 0, errors.New("disk full") }

func TestRunPrefsFailure(t *testing.T) {
	s, err := storage.NewInMemory()
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	svc := New(board.NewStore(s, func() string { return day }), failingPrefs{})
	if _, err := svc.Run(); err == nil {
		t.Error("Run() ignored preference failure")
	}
}
