// Package kitchen derives the "cook now" queue from the board: every dish
// currently ordered in some room, merged by dish name.
package kitchen

import (
	"sort"
	"sync"

	"github.com/korjavin/dinnerboard/pkg/board"
	"github.com/korjavin/dinnerboard/pkg/course"
	"github.com/korjavin/dinnerboard/pkg/logger"
	"github.com/korjavin/dinnerboard/pkg/menu"
	"github.com/korjavin/dinnerboard/pkg/models"
)

// RoomEntry is one room's share of a bucket
type RoomEntry struct {
	Group    string
	Name     string
	Guests   int
	Welldone int
}

// Bucket is one dish the kitchen has to prepare, summed across rooms
type Bucket struct {
	Dish          string
	Reading       string
	State         board.Status
	Extra         bool
	TotalGuests   int
	TotalWelldone int
	Rooms         []RoomEntry
}

// Result is the outcome of one aggregation
type Result struct {
	Buckets []Bucket
	// Alert is set when a dish appeared that the previous call did not have
	Alert bool
	// New lists those dishes in bucket order
	New []string
}

// Readings resolves the kana shown under a dish name
type Readings interface {
	Reading(dish string) string
}

// Alerter plays the new-work signal
type Alerter interface {
	Alert(dishes []string)
}

type staticReadings struct{}

func (staticReadings) Reading(dish string) string { return menu.Reading(dish) }

// urgency orders bucket states; lower comes first
var urgency = map[board.Status]int{
	board.StatusOrdered: 0,
	board.StatusWaiting: 1,
}

// Aggregator recomputes the kitchen queue and remembers which dishes the
// previous call showed, to detect new work
type Aggregator struct {
	readings Readings
	alerter  Alerter

	mu       sync.Mutex
	previous map[string]struct{}

	logger *logger.Logger
}

// NewAggregator creates an aggregator; readings and alerter may be nil
func NewAggregator(readings Readings, alerter Alerter) *Aggregator {
	if readings == nil {
		readings = staticReadings{}
	}
	return &Aggregator{
		readings: readings,
		alerter:  alerter,
		logger:   logger.New("kitchen"),
	}
}

// Aggregate builds the queue from scratch. For each room it resolves the
// dish sequence and adds every column in its category's cooking status
// to the bucket of that dish. Buckets keep first-seen order, stably sorted
// by state urgency.
//
// When the result names a dish the previous call did not, exactly one
// alert is raised for the call. An empty result forgets the previous set
// without alerting.
func (a *Aggregator) Aggregate(r models.Roster, rules []models.ExtraDish, b *board.Board) Result {
	var buckets []Bucket
	index := make(map[string]int)

	for _, room := range r.Rooms {
		dishes := menu.Resolve(room.Plan, rules, room.Name)
		for col, dish := range dishes {
			cooking, ok := course.CookingStatus(course.CategoryOf(dish))
			if !ok {
				continue
			}
			cell := board.Cell{Group: room.Dinner, Room: room.Name, Col: col}
			st := b.Status(cell)
			if st != cooking {
				continue
			}

			welldone, _ := b.Welldone(cell)
			i, ok := index[dish]
			if !ok {
				i = len(buckets)
				index[dish] = i
				buckets = append(buckets, Bucket{
					Dish:    dish,
					Reading: a.readings.Reading(dish),
					State:   st,
					Extra:   menu.IsExtra(dish, rules),
				})
			}
			bk := &buckets[i]
			bk.TotalGuests += room.Guests()
			bk.TotalWelldone += welldone
			bk.Rooms = append(bk.Rooms, RoomEntry{
				Group:    room.Dinner,
				Name:     room.Name,
				Guests:   room.Guests(),
				Welldone: welldone,
			})
		}
	}

	sort.SliceStable(buckets, func(i, j int) bool {
		return urgency[buckets[i].State] < urgency[buckets[j].State]
	})

	res := Result{Buckets: buckets}
	res.New = a.remember(buckets)
	res.Alert = len(res.New) > 0

	if res.Alert {
		a.logger.Info("New work: %v", res.New)
		if a.alerter != nil {
			a.alerter.Alert(res.New)
		}
	}
	return res
}

// remember swaps in the dish set of buckets and returns the names the
// previous set lacked
func (a *Aggregator) remember(buckets []Bucket) []string {
	a.mu.Lock()
	defer a.mu.Unlock()

	if len(buckets) == 0 {
		a.previous = nil
		return nil
	}

	current := make(map[string]struct{}, len(buckets))
	var added []string
	for _, bk := range buckets {
		current[bk.Dish] = struct{}{}
		if _, ok := a.previous[bk.Dish]; !ok {
			added = append(added, bk.Dish)
		}
	}
	a.previous = current
	return added
}

// Reset forgets the previous dish set, so the next non-empty result alerts
func (a *Aggregator) Reset() {
	a.mu.Lock()
	a.previous = nil
	a.mu.Unlock()
}
