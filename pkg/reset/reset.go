// Package reset clears the day's service back to its starting point.
package reset

import (
	"fmt"

	"github.com/korjavin/dinnerboard/pkg/board"
	"github.com/korjavin/dinnerboard/pkg/logger"
)

// PrefsClearer discards the per-room notes kept beside the board
type PrefsClearer interface {
	Clear() (int, error)
}

// Service resets the board of the current day
type Service struct {
	boards *board.Store
	prefs  PrefsClearer
	logger *logger.Logger
}

// New creates a reset service; prefs may be nil
func New(boards *board.Store, prefs PrefsClearer) *Service {
	return &Service{
		boards: boards,
		prefs:  prefs,
		logger: logger.New("reset"),
	}
}

// Run sets every cell of the day back to pending, drops staff, welldone and
// wait times, removes the legacy record of the day and clears room
// preferences. It returns the cleared board. Running it twice gives the
// same result.
func (s *Service) Run() (*board.Board, error) {
	b, err := s.boards.Update(func(b *board.Board) error {
		b.ResetAll()
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to reset board: %w", err)
	}

	if err := s.boards.DeleteLegacy(); err != nil {
		return nil, err
	}

	cleared := 0
	if s.prefs != nil {
		if cleared, err = s.prefs.Clear(); err != nil {
			return nil, err
		}
	}

	s.logger.Info("Reset board %s: %d cells pending, %d room preferences cleared",
		s.boards.Day(), len(b.Cells()), cleared)
	return b, nil
}
