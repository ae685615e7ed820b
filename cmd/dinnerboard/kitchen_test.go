package main

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/korjavin/dinnerboard/pkg/board"
	"github.com/korjavin/dinnerboard/pkg/kitchen"
)

func TestTerminalDisplay(t *testing.T) {
	var out bytes.Buffer
	d := &terminalDisplay{out: &out}

	d.Alert([]string{"ステーキ"})
	d.Show(kitchen.Result{Buckets: []kitchen.Bucket{{Dish: "ステーキ", State: board.StatusOrdered, TotalGuests: 2}}})

	got := out.String()
	if !strings.HasPrefix(got, "\a") {
		t.Errorf("alert did not ring the bell: %q", got)
	}
	queue := strings.Index(got, "ステーキ")
	alert := strings.Index(got, "🔔")
	if queue < 0 || alert < queue {
		t.Errorf("alert should follow the queue: %q", got)
	}

	out.Reset()
	d.Show(kitchen.Result{})
	if strings.Contains(out.String(), "🔔") {
		t.Errorf("alert shown twice: %q", out.String())
	}
}

// syncBuffer is written by the monitor goroutine and read by the test
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestStartKitchenRefreshesOnWrites(t *testing.T) {
	a := newTestApp(t)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	var out syncBuffer
	aggs, err := startKitchen(ctx, a, &terminalDisplay{out: &out, clear: true})
	if err != nil {
		t.Fatalf("startKitchen() error = %v", err)
	}
	if len(aggs) != 1 {
		t.Fatalf("startKitchen() returned %d aggregators, want 1", len(aggs))
	}

	// 刺身 reaches the kitchen once it is ordered
	cell := board.Cell{Group: "18:30", Room: "さくら", Col: 1}
	for i := 0; i < 2; i++ {
		if _, err := a.course.Advance(cell, "刺身"); err != nil {
			t.Fatalf("Advance() #%d error = %v", i+1, err)
		}
	}

	deadline := time.Now().Add(5 * time.Second)
	for !strings.Contains(out.String(), "【刺身】") {
		if time.Now().After(deadline) {
			t.Fatalf("terminal never showed the ordered dish: %q", out.String())
		}
		time.Sleep(10 * time.Millisecond)
	}
	if !strings.Contains(out.String(), "さくら 3名") {
		t.Errorf("queue does not name the room: %q", out.String())
	}
}
