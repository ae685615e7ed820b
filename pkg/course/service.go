package course

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/korjavin/dinnerboard/pkg/board"
	"github.com/korjavin/dinnerboard/pkg/logger"
)

var (
	// ErrPromptExpired is returned when answering a prompt that was already
	// answered, superseded by a newer action on the cell, or outlived the
	// status it was asked for
	ErrPromptExpired = errors.New("prompt expired")
	// ErrInvalidAnswer is returned when the answer is not one of the options
	ErrInvalidAnswer = errors.New("answer is not one of the prompt options")
	// ErrNoCountdown is returned when reselecting a wait time on a cell that
	// is not meat-fired or waiting
	ErrNoCountdown = errors.New("cell has no countdown")
)

// WelldoneMax is the largest well-done headcount offered
const WelldoneMax = 5

// StaffSource provides the names offered by the staff prompt
type StaffSource interface {
	Staff() []string
}

// StaffList is a fixed staff roster
type StaffList []string

// Staff returns the list itself
func (l StaffList) Staff() []string { return l }

// Option is one choice of a prompt
type Option struct {
	Value string
	Label string
}

// Prompt is an open question attached to a cell after a transition. The
// status change it belongs to is already committed.
type Prompt struct {
	ID       string
	Kind     PromptKind
	Cell     board.Cell
	Dish     string
	Status   board.Status // status the cell must still be in when answered
	Reselect bool
	Options  []Option
}

// Answer resolves a prompt: a chosen option value, or a dismissal
type Answer struct {
	Value     string
	Dismissed bool
}

// Dismiss is the answer of a closed prompt
var Dismiss = Answer{Dismissed: true}

// Choose answers with the option at index i
func (p Prompt) Choose(i int) (Answer, error) {
	if i < 0 || i >= len(p.Options) {
		return Answer{}, ErrInvalidAnswer
	}
	return Answer{Value: p.Options[i].Value}, nil
}

func (p Prompt) accepts(value string) bool {
	for _, o := range p.Options {
		if o.Value == value {
			return true
		}
	}
	return false
}

// Transition is the outcome of one advance
type Transition struct {
	Cell     board.Cell
	Dish     string
	Category Category
	From     board.Status
	To       board.Status
	Prompt   *Prompt
	Board    *board.Board
}

// Prompter answers prompts synchronously, e.g. a terminal or a test double
type Prompter interface {
	Ask(ctx context.Context, p Prompt) (Answer, error)
}

// Service applies operator actions to the day's board
type Service struct {
	boards *board.Store
	staff  StaffSource
	now    func() time.Time

	mu      sync.Mutex
	pending map[string]Prompt
	byCell  map[board.Cell]string

	logger *logger.Logger
}

// New creates a transition service
func New(boards *board.Store, staff StaffSource) *Service {
	if staff == nil {
		staff = StaffList(nil)
	}
	return &Service{
		boards:  boards,
		staff:   staff,
		now:     time.Now,
		pending: make(map[string]Prompt),
		byCell:  make(map[board.Cell]string),
		logger:  logger.New("course"),
	}
}

// Board returns the current day's board
func (s *Service) Board() *board.Board {
	return s.boards.Load()
}

// Advance moves the cell to the next status of the dish's cycle and commits
// it. Wrapping back to pending clears staff, welldone and wait time. The
// returned transition carries the prompt to ask, if any; any prompt still
// open on the cell is superseded.
func (s *Service) Advance(cell board.Cell, dish string) (Transition, error) {
	cat := CategoryOf(dish)
	tr := Transition{Cell: cell, Dish: dish, Category: cat}

	var entered step
	b, err := s.boards.Update(func(b *board.Board) error {
		b.EnsureCell(cell)
		tr.From = b.Status(cell)
		entered = next(cat, tr.From)
		b.SetStatus(cell, entered.status)
		if entered.status == board.StatusPending {
			b.ClearSide(cell)
		}
		return nil
	})
	if err != nil {
		return Transition{}, fmt.Errorf("failed to advance %s: %w", cell, err)
	}
	tr.To = entered.status
	tr.Board = b

	s.mu.Lock()
	s.dropLocked(cell)
	if entered.prompt != PromptNone {
		p := s.openLocked(entered.prompt, cell, dish, entered.status, false)
		tr.Prompt = &p
	}
	s.mu.Unlock()

	s.logger.Info("%s %s: %s -> %s", cell, dish, tr.From.Name(), tr.To.Name())
	return tr, nil
}

// Pending returns an open prompt by id
func (s *Service) Pending(id string) (Prompt, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.pending[id]
	return p, ok
}

// Resolve applies the answer of an open prompt. A dismissal closes the
// prompt and leaves the annotation unset. The board after the answer is
// returned.
func (s *Service) Resolve(id string, ans Answer) (*board.Board, error) {
	s.mu.Lock()
	p, ok := s.pending[id]
	if !ok {
		s.mu.Unlock()
		return nil, ErrPromptExpired
	}
	if !ans.Dismissed && !p.accepts(ans.Value) {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: %q", ErrInvalidAnswer, ans.Value)
	}
	s.dropLocked(p.Cell)
	s.mu.Unlock()

	if ans.Dismissed {
		s.logger.Debug("%s %s prompt dismissed", p.Cell, p.Kind)
		return s.boards.Load(), nil
	}

	if p.Reselect {
		return s.resolveReselect(p, ans.Value)
	}

	b, err := s.boards.Update(func(b *board.Board) error {
		if b.Status(p.Cell) != p.Status {
			return ErrPromptExpired
		}
		return apply(b, p, ans.Value)
	})
	if err != nil {
		if errors.Is(err, ErrPromptExpired) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to record %s for %s: %w", p.Kind, p.Cell, err)
	}

	s.logger.Info("%s %s = %s", p.Cell, p.Kind, ans.Value)
	return b, nil
}

// resolveReselect records a new wait time chosen on a reselect prompt. The
// cell must still show a countdown.
func (s *Service) resolveReselect(p Prompt, value string) (*board.Board, error) {
	w, err := board.ParseWaitTime(value)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAnswer, err)
	}
	b, err := s.ReselectWaitTime(p.Cell, w)
	if errors.Is(err, ErrNoCountdown) {
		return nil, ErrPromptExpired
	}
	if err != nil {
		return nil, err
	}
	s.logger.Info("%s %s reselected = %s", p.Cell, p.Kind, value)
	return b, nil
}

func apply(b *board.Board, p Prompt, value string) error {
	switch p.Kind {
	case PromptWaitTime:
		w, err := board.ParseWaitTime(value)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidAnswer, err)
		}
		b.SetWaitTime(p.Cell, w)
	case PromptWelldone:
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 || n > WelldoneMax {
			return fmt.Errorf("%w: welldone %q", ErrInvalidAnswer, value)
		}
		b.SetWelldone(p.Cell, n)
	case PromptStaff:
		b.SetStaff(p.Cell, value)
	default:
		return fmt.Errorf("%w: prompt kind %s", ErrInvalidAnswer, p.Kind)
	}
	return nil
}

// WaitPrompt opens a wait-time prompt for a cell showing a countdown, so
// the operator can choose a new time
func (s *Service) WaitPrompt(cell board.Cell, dish string) (Prompt, error) {
	st := s.boards.Load().Status(cell)
	if !HasCountdown(st) {
		return Prompt{}, ErrNoCountdown
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.dropLocked(cell)
	return s.openLocked(PromptWaitTime, cell, dish, st, true), nil
}

// ReselectWaitTime replaces the wait time of a cell showing a countdown.
// The status is left unchanged.
func (s *Service) ReselectWaitTime(cell board.Cell, w board.WaitTime) (*board.Board, error) {
	b, err := s.boards.Update(func(b *board.Board) error {
		if !HasCountdown(b.Status(cell)) {
			return ErrNoCountdown
		}
		b.SetWaitTime(cell, w)
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrNoCountdown) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to reselect wait time for %s: %w", cell, err)
	}
	return b, nil
}

// AdvanceWith advances the cell and, when the transition asks something,
// puts the question to p and records the answer. A prompter error counts
// as a dismissal: the status change stands.
func (s *Service) AdvanceWith(ctx context.Context, cell board.Cell, dish string, p Prompter) (Transition, error) {
	tr, err := s.Advance(cell, dish)
	if err != nil || tr.Prompt == nil {
		return tr, err
	}

	ans, err := p.Ask(ctx, *tr.Prompt)
	if err != nil {
		s.logger.Warn("Prompt %s for %s dismissed: %v", tr.Prompt.Kind, cell, err)
		ans = Dismiss
	}

	b, err := s.Resolve(tr.Prompt.ID, ans)
	if err != nil {
		return tr, err
	}
	tr.Board = b
	return tr, nil
}

// Countdown returns what a cell's countdown shows: the time the dish goes
// out, the verbal-call label, or the current time when no wait time was
// chosen. ok is false for statuses without a countdown.
func Countdown(b *board.Board, cell board.Cell, now time.Time) (string, bool) {
	if !HasCountdown(b.Status(cell)) {
		return "", false
	}
	if w, ok := b.WaitTime(cell); ok {
		return DisplayTime(w, now), true
	}
	return now.Format("15:04"), true
}

// DisplayTime returns now plus the wait as HH:MM, or the verbal-call label
func DisplayTime(w board.WaitTime, now time.Time) string {
	return w.Display(now)
}

// Now returns the service clock
func (s *Service) Now() time.Time {
	return s.now()
}

func (s *Service) openLocked(kind PromptKind, cell board.Cell, dish string, st board.Status, reselect bool) Prompt {
	p := Prompt{
		ID:       uuid.NewString(),
		Kind:     kind,
		Cell:     cell,
		Dish:     dish,
		Status:   st,
		Reselect: reselect,
		Options:  s.options(kind),
	}
	s.pending[p.ID] = p
	s.byCell[cell] = p.ID
	return p
}

func (s *Service) dropLocked(cell board.Cell) {
	if id, ok := s.byCell[cell]; ok {
		delete(s.pending, id)
		delete(s.byCell, cell)
	}
}

func (s *Service) options(kind PromptKind) []Option {
	switch kind {
	case PromptWaitTime:
		choices := board.WaitChoices()
		out := make([]Option, len(choices))
		for i, w := range choices {
			out[i] = Option{Value: w.String(), Label: w.Label()}
		}
		return out
	case PromptWelldone:
		out := make([]Option, 0, WelldoneMax+1)
		for n := 0; n <= WelldoneMax; n++ {
			out = append(out, Option{Value: strconv.Itoa(n), Label: fmt.Sprintf("%d名", n)})
		}
		return out
	case PromptStaff:
		names := s.staff.Staff()
		out := make([]Option, 0, len(names))
		for _, name := range names {
			out = append(out, Option{Value: name, Label: name})
		}
		return out
	}
	return nil
}
