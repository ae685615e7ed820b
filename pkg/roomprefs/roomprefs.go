// Package roomprefs stores the per-room notes the floor keeps next to the
// board: the meal pace of the room and a short memo.
package roomprefs

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/korjavin/dinnerboard/pkg/logger"
	"github.com/korjavin/dinnerboard/pkg/storage"
)

const (
	speedPrefix = "speed:"
	memoPrefix  = "memo:"
)

// MemoMaxRunes is the longest memo accepted
const MemoMaxRunes = 10

// ErrMemoTooLong is returned for memos over MemoMaxRunes characters
var ErrMemoTooLong = fmt.Errorf("memo longer than %d characters", MemoMaxRunes)

// Speed classifies how fast a room eats, from very fast to very slow
type Speed string

const (
	SpeedVeryFast   Speed = "VF"
	SpeedFast       Speed = "F"
	SpeedLittleFast Speed = "LF"
	SpeedNormal     Speed = "N"
	SpeedLittleSlow Speed = "LS"
	SpeedSlow       Speed = "S"
	SpeedVerySlow   Speed = "VS"
)

// Speeds lists the classes from fastest to slowest
func Speeds() []Speed {
	return []Speed{SpeedVeryFast, SpeedFast, SpeedLittleFast, SpeedNormal, SpeedLittleSlow, SpeedSlow, SpeedVerySlow}
}

var speedLabels = map[Speed]string{
	SpeedVeryFast:   "とても早い",
	SpeedFast:       "早い",
	SpeedLittleFast: "少し早い",
	SpeedNormal:     "普通",
	SpeedLittleSlow: "少し遅い",
	SpeedSlow:       "遅い",
	SpeedVerySlow:   "とても遅い",
}

// Label is the class code with its description, e.g. "S (遅い)"
func (s Speed) Label() string {
	return fmt.Sprintf("%s (%s)", s, speedLabels[s])
}

// ParseSpeed accepts a class code, case-insensitively
func ParseSpeed(s string) (Speed, error) {
	up := Speed(strings.ToUpper(strings.TrimSpace(s)))
	for _, sp := range Speeds() {
		if sp == up {
			return sp, nil
		}
	}
	return "", fmt.Errorf("unknown speed %q", s)
}

// Service reads and writes room preferences
type Service struct {
	store  *storage.Store
	logger *logger.Logger
}

// New creates a preferences service
func New(store *storage.Store) *Service {
	return &Service{store: store, logger: logger.New("roomprefs")}
}

func roomKey(prefix, group, room string) string {
	return prefix + group + ":" + room
}

// Speed returns the room's speed class, SpeedNormal when unset
func (s *Service) Speed(group, room string) Speed {
	var sp Speed
	if err := s.store.Get(roomKey(speedPrefix, group, room), &sp); err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.logger.Warn("Failed to read speed of %s/%s: %v", group, room, err)
		}
		return SpeedNormal
	}
	if _, err := ParseSpeed(string(sp)); err != nil {
		return SpeedNormal
	}
	return sp
}

// SetSpeed stores the room's speed class
func (s *Service) SetSpeed(group, room string, sp Speed) error {
	if _, err := ParseSpeed(string(sp)); err != nil {
		return err
	}
	if err := s.store.Set(roomKey(speedPrefix, group, room), sp); err != nil {
		return fmt.Errorf("failed to save speed: %w", err)
	}
	return nil
}

// Memo returns the room's memo, empty when unset
func (s *Service) Memo(group, room string) string {
	var memo string
	if err := s.store.Get(roomKey(memoPrefix, group, room), &memo); err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.logger.Warn("Failed to read memo of %s/%s: %v", group, room, err)
		}
		return ""
	}
	return memo
}

// SetMemo stores the room's memo; an empty memo removes it
func (s *Service) SetMemo(group, room, memo string) error {
	memo = strings.TrimSpace(memo)
	if utf8.RuneCountInString(memo) > MemoMaxRunes {
		return ErrMemoTooLong
	}

	key := roomKey(memoPrefix, group, room)
	if memo == "" {
		return s.store.Delete(key)
	}
	if err := s.store.Set(key, memo); err != nil {
		return fmt.Errorf("failed to save memo: %w", err)
	}
	return nil
}

// Clear removes every speed and memo and returns how many were removed
func (s *Service) Clear() (int, error) {
	total := 0
	for _, prefix := range []string{speedPrefix, memoPrefix} {
		n, err := s.store.DeletePrefix(prefix)
		total += n
		if err != nil {
			return total, fmt.Errorf("failed to clear %s preferences: %w", strings.TrimSuffix(prefix, ":"), err)
		}
	}
	return total, nil
}
