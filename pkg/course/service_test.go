package course

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/korjavin/dinnerboard/pkg/board"
	"github.com/korjavin/dinnerboard/pkg/storage"
)

func newTestService(t *testing.T, staff ...string) *Service {
	t.Helper()
	s, err := storage.NewInMemory()
	if err != nil {
		t.Fatalf("NewInMemory() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	boards := board.NewStore(s, func() string { return "2026-10-19" })
	return New(boards, StaffList(staff))
}

func TestCycles(t *testing.T) {
	tests := []struct {
		dish string
		want []board.Status
	}{
		{"果菜盛", []board.Status{board.StatusWaiting, board.StatusServed, board.StatusPending}},
		{"しゃぶしゃぶ", []board.Status{board.StatusWaiting, board.StatusServed, board.StatusPending}},
		{"煮物", []board.Status{board.StatusMeatFired, board.StatusWaiting, board.StatusOrdered, board.StatusServed, board.StatusPending}},
		{"ステーキ", []board.Status{board.StatusMeatFired, board.StatusWaiting, board.StatusOrdered, board.StatusServed, board.StatusPending}},
		{"刺身", []board.Status{board.StatusWaiting, board.StatusOrdered, board.StatusServed, board.StatusPending}},
	}

	for _, tt := range tests {
		t.Run(tt.dish, func(t *testing.T) {
			svc := newTestService(t, "真弓", "ミン")
			cell := board.Cell{Group: "18:00", Room: "つばき", Col: 1}

			for i, want := range tt.want {
				tr, err := svc.Advance(cell, tt.dish)
				if err != nil {
					t.Fatalf("Advance() #%d error = %v", i+1, err)
				}
				if tr.To != want {
					t.Fatalf("Advance() #%d = %s, want %s", i+1, tr.To.Name(), want.Name())
				}
				if tr.Prompt != nil {
					ans, _ := tr.Prompt.Choose(0)
					if _, err := svc.Resolve(tr.Prompt.ID, ans); err != nil {
						t.Fatalf("Resolve() #%d error = %v", i+1, err)
					}
				}
			}

			b := svc.Board()
			if b.Status(cell) != board.StatusPending {
				t.Errorf("cycle did not return to pending")
			}
			if b.HasSideData() {
				t.Errorf("side data left after wrap")
			}
		})
	}
}

func TestPromptKinds(t *testing.T) {
	tests := []struct {
		dish string
		want []PromptKind
	}{
		{"果菜盛", []PromptKind{PromptWaitTime, PromptStaff, PromptNone}},
		{"煮物", []PromptKind{PromptWaitTime, PromptWelldone, PromptNone, PromptStaff, PromptNone}},
		{"揚物", []PromptKind{PromptWaitTime, PromptNone, PromptStaff, PromptNone}},
	}

	for _, tt := range tests {
		t.Run(tt.dish, func(t *testing.T) {
			svc := newTestService(t, "サラミ")
			cell := board.Cell{Group: "19:00", Room: "ふじ", Col: 3}
			for i, want := range tt.want {
				tr, err := svc.Advance(cell, tt.dish)
				if err != nil {
					t.Fatal(err)
				}
				got := PromptNone
				if tr.Prompt != nil {
					got = tr.Prompt.Kind
				}
				if got != want {
					t.Errorf("step %d prompt = %s, want %s", i+1, got, want)
				}
			}
		})
	}
}

func TestMeatPassKeepsWelldoneUntilWrap(t *testing.T) {
	svc := newTestService(t, "翔平")
	cell := board.Cell{Group: "18:30", Room: "さくら", Col: 4}

	tr, _ := svc.Advance(cell, "煮物") // meat-fired
	if _, err := svc.Resolve(tr.Prompt.ID, Answer{Value: "15"}); err != nil {
		t.Fatal(err)
	}
	tr, _ = svc.Advance(cell, "煮物") // waiting, welldone prompt
	if tr.Prompt == nil || tr.Prompt.Kind != PromptWelldone {
		t.Fatalf("expected welldone prompt, got %+v", tr.Prompt)
	}
	if got := len(tr.Prompt.Options); got != WelldoneMax+1 {
		t.Errorf("welldone options = %d", got)
	}
	if _, err := svc.Resolve(tr.Prompt.ID, Answer{Value: "2"}); err != nil {
		t.Fatal(err)
	}
	tr, _ = svc.Advance(cell, "煮物") // ordered
	if tr.To != board.StatusOrdered {
		t.Fatalf("third advance = %s", tr.To.Name())
	}
	if n, ok := tr.Board.Welldone(cell); !ok || n != 2 {
		t.Errorf("welldone while ordered = %d, %v", n, ok)
	}
	if w, ok := tr.Board.WaitTime(cell); !ok || w != board.Minutes(15) {
		t.Errorf("wait time while ordered = %v, %v", w, ok)
	}

	tr, _ = svc.Advance(cell, "煮物") // served
	if _, err := svc.Resolve(tr.Prompt.ID, Dismiss); err != nil {
		t.Fatal(err)
	}
	tr, _ = svc.Advance(cell, "煮物") // pending
	if _, ok := tr.Board.Welldone(cell); ok {
		t.Error("welldone survived wrap to pending")
	}
}

func TestDismissKeepsTransition(t *testing.T) {
	svc := newTestService(t, "ボビ")
	cell := board.Cell{Group: "18:00", Room: "やまぶき", Col: 0}

	tr, err := svc.Advance(cell, "吸物")
	if err != nil {
		t.Fatal(err)
	}
	b, err := svc.Resolve(tr.Prompt.ID, Dismiss)
	if err != nil {
		t.Fatalf("Resolve(dismiss) error = %v", err)
	}
	if b.Status(cell) != board.StatusWaiting {
		t.Errorf("status after dismiss = %s", b.Status(cell).Name())
	}
	if _, ok := b.WaitTime(cell); ok {
		t.Error("dismiss recorded a wait time")
	}
	if _, err := svc.Resolve(tr.Prompt.ID, Answer{Value: "10"}); !errors.Is(err, ErrPromptExpired) {
		t.Errorf("second Resolve() error = %v, want ErrPromptExpired", err)
	}
}

func TestStaleAndInvalidAnswers(t *testing.T) {
	svc := newTestService(t, "パビ")
	cell := board.Cell{Group: "18:00", Room: "やまぶき", Col: 2}

	first, _ := svc.Advance(cell, "蒸物") // waiting
	if _, err := svc.Resolve(first.Prompt.ID, Answer{Value: "7"}); !errors.Is(err, ErrInvalidAnswer) {
		t.Errorf("Resolve(7) error = %v, want ErrInvalidAnswer", err)
	}
	if _, ok := svc.Pending(first.Prompt.ID); !ok {
		t.Error("invalid answer closed the prompt")
	}

	svc.Advance(cell, "蒸物") // ordered supersedes the open prompt
	if _, err := svc.Resolve(first.Prompt.ID, Answer{Value: "10"}); !errors.Is(err, ErrPromptExpired) {
		t.Errorf("superseded Resolve() error = %v", err)
	}

	served, _ := svc.Advance(cell, "蒸物")
	b, err := svc.Resolve(served.Prompt.ID, Answer{Value: "パビ"})
	if err != nil {
		t.Fatal(err)
	}
	if name, _ := b.Staff(cell); name != "パビ" {
		t.Errorf("staff = %q", name)
	}
}

func TestPromptOutlivedByOtherView(t *testing.T) {
	svc := newTestService(t)
	other := New(svc.boards, nil)
	cell := board.Cell{Group: "19:00", Room: "ききょう", Col: 5}

	tr, _ := svc.Advance(cell, "飯")
	other.Advance(cell, "飯") // ordered from another view
	if _, err := svc.Resolve(tr.Prompt.ID, Answer{Value: "voice"}); !errors.Is(err, ErrPromptExpired) {
		t.Errorf("Resolve() error = %v, want ErrPromptExpired", err)
	}
}

func TestReselectWaitTime(t *testing.T) {
	svc := newTestService(t)
	cell := board.Cell{Group: "18:30", Room: "さくら", Col: 0}

	if _, err := svc.WaitPrompt(cell, "吸物"); !errors.Is(err, ErrNoCountdown) {
		t.Errorf("WaitPrompt() on pending error = %v", err)
	}
	if _, err := svc.ReselectWaitTime(cell, board.Minutes(5)); !errors.Is(err, ErrNoCountdown) {
		t.Errorf("ReselectWaitTime() on pending error = %v", err)
	}

	tr, _ := svc.Advance(cell, "吸物")
	svc.Resolve(tr.Prompt.ID, Answer{Value: "10"})

	p, err := svc.WaitPrompt(cell, "吸物")
	if err != nil {
		t.Fatalf("WaitPrompt() error = %v", err)
	}
	if !p.Reselect || p.Kind != PromptWaitTime {
		t.Errorf("WaitPrompt() = %+v", p)
	}
	b, err := svc.Resolve(p.ID, Answer{Value: "voice"})
	if err != nil {
		t.Fatal(err)
	}
	if w, _ := b.WaitTime(cell); w != board.VerbalCall {
		t.Errorf("wait time = %v", w)
	}
	if b.Status(cell) != board.StatusWaiting {
		t.Errorf("reselect changed status to %s", b.Status(cell).Name())
	}

	b, err = svc.ReselectWaitTime(cell, board.Minutes(30))
	if err != nil {
		t.Fatal(err)
	}
	if w, _ := b.WaitTime(cell); w != board.Minutes(30) {
		t.Errorf("wait time = %v", w)
	}

	// another view moves the dish on while the reselect is open
	p, err = svc.WaitPrompt(cell, "吸物")
	if err != nil {
		t.Fatal(err)
	}
	svc.boards.Update(func(b *board.Board) error {
		b.SetStatus(cell, board.StatusOrdered)
		return nil
	})
	if _, err := svc.Resolve(p.ID, Answer{Value: "5"}); !errors.Is(err, ErrPromptExpired) {
		t.Errorf("Resolve() after the countdown ended error = %v, want ErrPromptExpired", err)
	}
	if w, _ := svc.Board().WaitTime(cell); w != board.Minutes(30) {
		t.Errorf("expired reselect changed the wait time to %v", w)
	}
}

type scriptedPrompter struct {
	answers map[PromptKind]Answer
	err     error
	asked   []PromptKind
}

func (p *scriptedPrompter) Ask(_ context.Context, pr Prompt) (Answer, error) {
	p.asked = append(p.asked, pr.Kind)
	if p.err != nil {
		return Answer{}, p.err
	}
	return p.answers[pr.Kind], nil
}

func TestAdvanceWith(t *testing.T) {
	svc := newTestService(t, "真弓")
	cell := board.Cell{Group: "18:00", Room: "つばき", Col: 4}
	p := &scriptedPrompter{answers: map[PromptKind]Answer{
		PromptWaitTime: {Value: "20"},
		PromptWelldone: {Value: "1"},
	}}

	ctx := context.Background()
	svc.AdvanceWith(ctx, cell, "ステーキ", p)
	tr, err := svc.AdvanceWith(ctx, cell, "ステーキ", p)
	if err != nil {
		t.Fatal(err)
	}
	if n, _ := tr.Board.Welldone(cell); n != 1 {
		t.Errorf("welldone = %d", n)
	}
	if w, _ := tr.Board.WaitTime(cell); w != board.Minutes(20) {
		t.Errorf("wait time = %v", w)
	}

	p.err = errors.New("closed")
	svc.AdvanceWith(ctx, cell, "ステーキ", p) // ordered, no prompt
	tr, err = svc.AdvanceWith(ctx, cell, "ステーキ", p)
	if err != nil {
		t.Fatal(err)
	}
	if tr.To != board.StatusServed {
		t.Errorf("status = %s", tr.To.Name())
	}
	if _, ok := tr.Board.Staff(cell); ok {
		t.Error("failed prompt recorded staff")
	}
	if len(p.asked) != 3 {
		t.Errorf("asked %v", p.asked)
	}
}

func TestCountdown(t *testing.T) {
	now := time.Date(2026, 10, 19, 18, 40, 0, 0, time.Local)
	cell := board.Cell{Group: "18:30", Room: "さくら", Col: 4}
	b := board.New()

	if _, ok := Countdown(b, cell, now); ok {
		t.Error("pending cell shows a countdown")
	}
	b.SetStatus(cell, board.StatusMeatFired)
	if got, _ := Countdown(b, cell, now); got != "18:40" {
		t.Errorf("Countdown() without wait time = %q", got)
	}
	b.SetWaitTime(cell, board.Minutes(25))
	if got, _ := Countdown(b, cell, now); got != "19:05" {
		t.Errorf("Countdown() = %q", got)
	}
	b.SetStatus(cell, board.StatusOrdered)
	if _, ok := Countdown(b, cell, now); ok {
		t.Error("ordered cell shows a countdown")
	}
}

func TestCookingStatus(t *testing.T) {
	if _, ok := CookingStatus(CategoryOf("果菜盛")); ok {
		t.Error("simple dishes have no cooking status")
	}
	for _, dish := range []string{"煮物", "刺身"} {
		if st, ok := CookingStatus(CategoryOf(dish)); !ok || st != board.StatusOrdered {
			t.Errorf("CookingStatus(%s) = %s, %v", dish, st, ok)
		}
	}
}
