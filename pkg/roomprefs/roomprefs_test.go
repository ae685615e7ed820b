package roomprefs

import (
	"errors"
	"testing"

	"github.com/korjavin/dinnerboard/pkg/storage"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	s, err := storage.NewInMemory()
	if err != nil {
		t.Fatalf("NewInMemory() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return New(s)
}

func TestParseSpeed(t *testing.T) {
	tests := []struct {
		in      string
		want    Speed
		wantErr bool
	}{
		{"VF", SpeedVeryFast, false},
		{"ls", SpeedLittleSlow, false},
		{" n ", SpeedNormal, false},
		{"X", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSpeed(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseSpeed() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseSpeed() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSpeedAndMemo(t *testing.T) {
	svc := newTestService(t)

	if got := svc.Speed("18:30", "さくら"); got != SpeedNormal {
		t.Errorf("default speed = %q", got)
	}
	if err := svc.SetSpeed("18:30", "さくら", SpeedSlow); err != nil {
		t.Fatal(err)
	}
	if got := svc.Speed("18:30", "さくら"); got != SpeedSlow {
		t.Errorf("Speed() = %q", got)
	}
	if err := svc.SetSpeed("18:30", "さくら", Speed("Z")); err == nil {
		t.Error("SetSpeed() accepted unknown class")
	}

	if err := svc.SetMemo("18:30", "さくら", "誕生日ケーキあり"); err != nil {
		t.Fatal(err)
	}
	if got := svc.Memo("18:30", "さくら"); got != "誕生日ケーキあり" {
		t.Errorf("Memo() = %q", got)
	}
	if err := svc.SetMemo("18:30", "さくら", "あいうえおかきくけこさ"); !errors.Is(err, ErrMemoTooLong) {
		t.Errorf("SetMemo(11 runes) error = %v", err)
	}
	if err := svc.SetMemo("18:30", "さくら", ""); err != nil {
		t.Fatal(err)
	}
	if got := svc.Memo("18:30", "さくら"); got != "" {
		t.Errorf("Memo() after clear = %q", got)
	}
}

func TestClear(t *testing.T) {
	svc := newTestService(t)
	svc.SetSpeed("18:00", "つばき", SpeedFast)
	svc.SetSpeed("19:00", "ふじ", SpeedVerySlow)
	svc.SetMemo("18:00", "つばき", "窓側")

	n, err := svc.Clear()
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Errorf("Clear() = %d, want 3", n)
	}
	if got := svc.Speed("18:00", "つばき"); got != SpeedNormal {
		t.Errorf("speed after Clear = %q", got)
	}
	if n, _ := svc.Clear(); n != 0 {
		t.Errorf("second Clear() = %d", n)
	}
}
