package kitchen

import (
	"context"

	"github.com/korjavin/dinnerboard/pkg/board"
	"github.com/korjavin/dinnerboard/pkg/logger"
	"github.com/korjavin/dinnerboard/pkg/models"
	"github.com/korjavin/dinnerboard/pkg/roster"
	"github.com/korjavin/dinnerboard/pkg/watch"
)

// RosterSource provides tonight's rooms and extra-dish rules
type RosterSource interface {
	Roster() models.Roster
	ExtraDishes() []models.ExtraDish
}

// BoardSource provides the current board
type BoardSource interface {
	Load() *board.Board
}

// Display shows an aggregation result
type Display interface {
	Show(res Result)
}

// Monitor keeps a display in step with the store: every change of the
// board or roster records re-runs the full aggregation
type Monitor struct {
	agg     *Aggregator
	roster  RosterSource
	boards  BoardSource
	hub     *watch.Hub
	display Display
	logger  *logger.Logger
}

// NewMonitor creates a monitor
func NewMonitor(agg *Aggregator, rs RosterSource, boards BoardSource, hub *watch.Hub, display Display) *Monitor {
	return &Monitor{
		agg:     agg,
		roster:  rs,
		boards:  boards,
		hub:     hub,
		display: display,
		logger:  logger.New("kitchen").With("monitor"),
	}
}

// WatchedPrefixes are the record keys a change of which invalidates the
// kitchen queue
var WatchedPrefixes = []string{board.KeyPrefix, roster.KeyRoster, roster.KeyExtraDishes}

// Refresh aggregates the current state and shows it
func (m *Monitor) Refresh() Result {
	res := m.agg.Aggregate(m.roster.Roster(), m.roster.ExtraDishes(), m.boards.Load())
	if m.display != nil {
		m.display.Show(res)
	}
	return res
}

// Run shows the current queue, then refreshes on every change until ctx is
// cancelled
func (m *Monitor) Run(ctx context.Context) error {
	changes, stop := m.hub.Subscribe(WatchedPrefixes...)
	defer stop()

	m.Refresh()
	m.logger.Info("Kitchen monitor started")

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("Kitchen monitor stopped")
			return nil
		case c, ok := <-changes:
			if !ok {
				return nil
			}
			m.logger.Debug("Refreshing after change of %s", c.Key)
			m.Refresh()
		}
	}
}
