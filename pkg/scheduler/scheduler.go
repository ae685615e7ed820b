package scheduler

import (
	"fmt"
	"sync"
	"time"

	"github.com/korjavin/dinnerboard/pkg/board"
	"github.com/korjavin/dinnerboard/pkg/logger"
	"github.com/korjavin/dinnerboard/pkg/messages"
)

// reminderWindow is how long after the reminder time a late tick still
// sends the reminder
const reminderWindow = 5 * time.Minute

// Notifier delivers scheduler messages to the operators
type Notifier interface {
	Notify(text string)
}

// Service runs the daily housekeeping of the board
type Service struct {
	boards   *board.Store
	notifier Notifier
	remindAt time.Duration // offset from midnight
	now      func() time.Time
	logger   *logger.Logger
	stopChan chan struct{}

	mu           sync.Mutex
	lastReminder string
}

// New creates a new scheduler service. reminderTime is HH:MM local time;
// an empty value disables the reminder.
func New(boards *board.Store, notifier Notifier, reminderTime string) (*Service, error) {
	s := &Service{
		boards:   boards,
		notifier: notifier,
		remindAt: -1,
		now:      time.Now,
		logger:   logger.New("scheduler"),
		stopChan: make(chan struct{}),
	}
	if reminderTime != "" {
		t, err := time.Parse("15:04", reminderTime)
		if err != nil {
			return nil, fmt.Errorf("invalid reminder time %q: %w", reminderTime, err)
		}
		s.remindAt = time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute
	}
	return s, nil
}

// Start starts the scheduler
func (s *Service) Start() {
	s.logger.Info("Starting board scheduler")

	// Drop boards of past days
	go s.runPruneScheduler()

	// Remind the operators before service
	if s.remindAt >= 0 && s.notifier != nil {
		go s.runReminderScheduler()
	}
}

// Stop stops the scheduler
func (s *Service) Stop() {
	s.logger.Info("Stopping board scheduler")
	close(s.stopChan)
}

// runPruneScheduler removes board records of previous days at start and
// then every hour
func (s *Service) runPruneScheduler() {
	s.logger.Info("Starting board prune scheduler")

	if _, err := s.prune(); err != nil {
		s.logger.Error("Failed to prune boards: %v", err)
	}

	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := s.prune(); err != nil {
				s.logger.Error("Failed to prune boards: %v", err)
			}
		case <-s.stopChan:
			return
		}
	}
}

func (s *Service) prune() (int, error) {
	return s.boards.PruneBefore(board.Today(s.now()))
}

// runReminderScheduler checks every minute whether the reminder is due
func (s *Service) runReminderScheduler() {
	s.logger.Info("Starting reminder scheduler")

	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.checkReminder()
		case <-s.stopChan:
			return
		}
	}
}

// checkReminder sends the day's reminder once, if now falls within the
// reminder window. It reports whether a reminder was sent.
func (s *Service) checkReminder() bool {
	if s.remindAt < 0 || s.notifier == nil {
		return false
	}

	now := s.now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	since := now.Sub(midnight)
	if since < s.remindAt || since >= s.remindAt+reminderWindow {
		return false
	}

	day := board.Today(now)
	s.mu.Lock()
	if s.lastReminder == day {
		s.mu.Unlock()
		return false
	}
	s.lastReminder = day
	s.mu.Unlock()

	s.logger.Info("Sending pre-service reminder for %s", day)
	s.notifier.Notify(messages.Reminder(day, s.boards.Load()))
	return true
}
