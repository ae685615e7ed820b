package watch

import (
	"context"
	"testing"
	"time"

	"github.com/korjavin/dinnerboard/pkg/storage"
)

func TestHubPrefixes(t *testing.T) {
	h := NewHub()
	boards, stopBoards := h.Subscribe("board:")
	defer stopBoards()
	all, stopAll := h.Subscribe()
	defer stopAll()

	h.Publish(Change{Key: "settings:today"})

	select {
	case c := <-all:
		if c.Key != "settings:today" {
			t.Errorf("got %q", c.Key)
		}
	default:
		t.Fatal("catch-all subscriber missed the change")
	}
	select {
	case c := <-boards:
		t.Fatalf("board subscriber got %q", c.Key)
	default:
	}
}

func TestHubCoalesces(t *testing.T) {
	h := NewHub()
	ch, stop := h.Subscribe()

	h.Publish(Change{Key: "a"})
	h.Publish(Change{Key: "b"}) // must not block

	if c := <-ch; c.Key != "a" {
		t.Errorf("first change = %q", c.Key)
	}
	select {
	case c := <-ch:
		t.Errorf("unexpected second change %q", c.Key)
	default:
	}

	stop()
	stop()
	if _, ok := <-ch; ok {
		t.Error("channel open after unsubscribe")
	}
	h.Publish(Change{Key: "c"})
}

func TestFeed(t *testing.T) {
	s, err := storage.NewInMemory()
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	h := NewHub()
	ch, stop := h.Subscribe()
	defer stop()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- h.Feed(ctx, s, "board:") }()

	select {
	case <-h.Ready():
	case <-time.After(5 * time.Second):
		t.Fatal("feed never became ready")
	}

	s.SetRaw("ignored:key", []byte("x"))
	s.SetRaw("board:v3:2026-10-19", []byte("{}"))

	select {
	case c := <-ch:
		if c.Key != "board:v3:2026-10-19" {
			t.Fatalf("got %q", c.Key)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no change delivered")
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Feed() error = %v", err)
	}
}
