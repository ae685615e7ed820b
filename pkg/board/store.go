package board

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/korjavin/dinnerboard/pkg/logger"
	"github.com/korjavin/dinnerboard/pkg/storage"
)

// KeyPrefix is shared by every board record, current and legacy
const KeyPrefix = "board:"

const (
	currentPrefix = KeyPrefix + "v3:"
	legacyPrefix  = KeyPrefix + "v2:"
	dayLayout     = "2006-01-02"
)

// DayStart is when a service day begins. A dinner running past midnight
// still belongs to the evening it started on.
const DayStart = 4 * time.Hour

// Key returns the record key of the day's board
func Key(day string) string {
	return currentPrefix + day
}

// LegacyKey returns the key of the older two-state (served / not served)
// board of the day. It is a separate record and is never read as a Board.
func LegacyKey(day string) string {
	return legacyPrefix + day
}

// DayOf extracts the service day from a board record key
func DayOf(key string) (string, bool) {
	for _, p := range []string{currentPrefix, legacyPrefix} {
		if strings.HasPrefix(key, p) {
			return strings.TrimPrefix(key, p), true
		}
	}
	return "", false
}

// Today returns the service day of t
func Today(t time.Time) string {
	return t.Add(-DayStart).Format(dayLayout)
}

// Store persists the board of the current service day
type Store struct {
	store  *storage.Store
	day    func() string
	mu     sync.Mutex
	logger *logger.Logger
}

// NewStore creates a board store. day reports the current service day and
// defaults to Today of the local time.
func NewStore(store *storage.Store, day func() string) *Store {
	if day == nil {
		day = func() string { return Today(time.Now()) }
	}
	return &Store{
		store:  store,
		day:    day,
		logger: logger.New("board"),
	}
}

// Day returns the current service day
func (s *Store) Day() string {
	return s.day()
}

// Key returns the record key of the current day
func (s *Store) Key() string {
	return Key(s.day())
}

// Load returns the current day's board. Missing or corrupt records yield an
// empty board.
func (s *Store) Load() *Board {
	data, err := s.store.GetRaw(s.Key())
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.logger.Error("Failed to read board %s: %v", s.Key(), err)
		}
		return New()
	}
	return s.decode(data)
}

func (s *Store) decode(data []byte) *Board {
	if len(data) == 0 {
		return New()
	}
	b := New()
	if err := json.Unmarshal(data, b); err != nil {
		s.logger.Warn("Discarding unreadable board %s: %v", s.Key(), err)
		return New()
	}
	return b
}

// Save replaces the current day's board
func (s *Store) Save(b *Board) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Set(s.Key(), b); err != nil {
		return fmt.Errorf("failed to save board: %w", err)
	}
	return nil
}

// Update applies fn to the current board and persists the result as one
// read-modify-write. If fn fails nothing is written. The returned board is
// a copy of what was stored.
func (s *Store) Update(fn func(*Board) error) (*Board, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result *Board
	err := s.store.Mutate(s.Key(), func(current []byte) ([]byte, error) {
		b := s.decode(current)
		if err := fn(b); err != nil {
			return nil, err
		}
		result = b
		return json.Marshal(b)
	})
	if err != nil {
		return nil, err
	}
	return result.Clone(), nil
}

// DeleteLegacy drops the day's legacy two-state record if present
func (s *Store) DeleteLegacy() error {
	if err := s.store.Delete(LegacyKey(s.day())); err != nil {
		return fmt.Errorf("failed to delete legacy board: %w", err)
	}
	return nil
}

// PruneBefore deletes board records, current and legacy, of days before
// day. It returns the number of records removed.
func (s *Store) PruneBefore(day string) (int, error) {
	keys, err := s.store.List(KeyPrefix)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, key := range keys {
		d, ok := DayOf(key)
		if !ok || d >= day {
			continue
		}
		if err := s.store.Delete(key); err != nil {
			return removed, fmt.Errorf("failed to delete %s: %w", key, err)
		}
		removed++
	}
	if removed > 0 {
		s.logger.Info("Pruned %d board records older than %s", removed, day)
	}
	return removed, nil
}
