package board

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Status is a dish's service status. Values are the labels stored in the
// day record.
type Status string

const (
	StatusPending   Status = "未"
	StatusMeatFired Status = "肉"
	StatusWaiting   Status = "待"
	StatusOrdered   Status = "注"
	StatusServed    Status = "済"
)

// Name returns an English name for logs
func (s Status) Name() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusMeatFired:
		return "meat-fired"
	case StatusWaiting:
		return "waiting"
	case StatusOrdered:
		return "ordered"
	case StatusServed:
		return "served"
	default:
		return "unknown(" + string(s) + ")"
	}
}

// Valid reports whether s is one of the known statuses
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusMeatFired, StatusWaiting, StatusOrdered, StatusServed:
		return true
	}
	return false
}

// VerbalCallLabel is shown instead of a time when the dish goes out on call
const VerbalCallLabel = "声がけ"

const verbalCallValue = "voice"

// WaitMinutes are the offsets offered by the wait-time prompt
var WaitMinutes = []int{5, 10, 15, 20, 25, 30}

// WaitTime is the chosen delay before a dish goes out: a minute offset or
// a verbal call with no fixed time
type WaitTime struct {
	Minutes int
	Verbal  bool
}

// VerbalCall is the "call when ready" sentinel
var VerbalCall = WaitTime{Verbal: true}

// Minutes returns a minute-offset wait time
func Minutes(n int) WaitTime {
	return WaitTime{Minutes: n}
}

// ParseWaitTime parses the stored form: a minute count or "voice"
func ParseWaitTime(s string) (WaitTime, error) {
	s = strings.TrimSpace(s)
	if s == verbalCallValue {
		return VerbalCall, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return WaitTime{}, fmt.Errorf("invalid wait time %q", s)
	}
	return Minutes(n), nil
}

// String returns the stored form
func (w WaitTime) String() string {
	if w.Verbal {
		return verbalCallValue
	}
	return strconv.Itoa(w.Minutes)
}

// Label is the prompt button text
func (w WaitTime) Label() string {
	if w.Verbal {
		return VerbalCallLabel
	}
	return fmt.Sprintf("+%d分", w.Minutes)
}

// Display returns the time the dish should go out, computed from now at
// display time, or the verbal-call label
func (w WaitTime) Display(now time.Time) string {
	if w.Verbal {
		return VerbalCallLabel
	}
	return now.Add(time.Duration(w.Minutes) * time.Minute).Format("15:04")
}

// MarshalJSON stores wait times as strings, e.g. "10" or "voice"
func (w WaitTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(w.String())
}

// UnmarshalJSON accepts the string form and bare numbers
func (w *WaitTime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		var n int
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("invalid wait time %s", data)
		}
		s = strconv.Itoa(n)
	}
	parsed, err := ParseWaitTime(s)
	if err != nil {
		return err
	}
	*w = parsed
	return nil
}

// WaitChoices lists the wait-time prompt options in display order
func WaitChoices() []WaitTime {
	choices := make([]WaitTime, 0, len(WaitMinutes)+1)
	for _, m := range WaitMinutes {
		choices = append(choices, Minutes(m))
	}
	return append(choices, VerbalCall)
}
