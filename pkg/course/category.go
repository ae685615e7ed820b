// Package course drives a dish through its service statuses and the side
// prompts (wait time, well-done count, serving staff) attached to each step.
package course

import (
	"github.com/korjavin/dinnerboard/pkg/board"
	"github.com/korjavin/dinnerboard/pkg/menu"
)

// Category selects the status cycle a dish follows
type Category int

const (
	// CategoryDefault: pending → waiting → ordered → served
	CategoryDefault Category = iota
	// CategorySimple: pending → waiting → served
	CategorySimple
	// CategoryMeat: pending → meat-fired → waiting → ordered → served
	CategoryMeat
)

func (c Category) String() string {
	switch c {
	case CategorySimple:
		return "simple"
	case CategoryMeat:
		return "meat"
	default:
		return "default"
	}
}

var categories = map[string]Category{
	menu.DishKanamori:   CategorySimple,
	menu.DishShabushabu: CategorySimple,
	menu.DishNimono:     CategoryMeat,
	menu.DishSteak:      CategoryMeat,
}

// CategoryOf returns the category of a dish name
func CategoryOf(dish string) Category {
	if c, ok := categories[dish]; ok {
		return c
	}
	return CategoryDefault
}

// PromptKind names the side annotation collected on a transition
type PromptKind int

const (
	PromptNone PromptKind = iota
	PromptWaitTime
	PromptWelldone
	PromptStaff
)

func (k PromptKind) String() string {
	switch k {
	case PromptWaitTime:
		return "wait-time"
	case PromptWelldone:
		return "welldone"
	case PromptStaff:
		return "staff"
	default:
		return "none"
	}
}

// step is one entry of a cycle: the status entered and the prompt asked on
// entering it
type step struct {
	status board.Status
	prompt PromptKind
}

var cycles = map[Category][]step{
	CategorySimple: {
		{board.StatusPending, PromptNone},
		{board.StatusWaiting, PromptWaitTime},
		{board.StatusServed, PromptStaff},
	},
	CategoryMeat: {
		{board.StatusPending, PromptNone},
		{board.StatusMeatFired, PromptWaitTime},
		{board.StatusWaiting, PromptWelldone},
		{board.StatusOrdered, PromptNone},
		{board.StatusServed, PromptStaff},
	},
	CategoryDefault: {
		{board.StatusPending, PromptNone},
		{board.StatusWaiting, PromptWaitTime},
		{board.StatusOrdered, PromptNone},
		{board.StatusServed, PromptStaff},
	},
}

// Cycle returns the statuses of a category in order, starting at pending
func Cycle(c Category) []board.Status {
	steps := cycles[c]
	out := make([]board.Status, len(steps))
	for i, s := range steps {
		out[i] = s.status
	}
	return out
}

// next returns the step following current. A status the cycle does not
// contain wraps to pending.
func next(c Category, current board.Status) step {
	steps := cycles[c]
	for i, s := range steps {
		if s.status == current {
			return steps[(i+1)%len(steps)]
		}
	}
	return steps[0]
}

// CookingStatus is the status in which the kitchen is actively preparing
// the dish. Simple dishes have none.
func CookingStatus(c Category) (board.Status, bool) {
	if c == CategorySimple {
		return "", false
	}
	return board.StatusOrdered, true
}

// HasCountdown reports whether a cell in status s shows its wait time and
// accepts a new one
func HasCountdown(s board.Status) bool {
	return s == board.StatusMeatFired || s == board.StatusWaiting
}
