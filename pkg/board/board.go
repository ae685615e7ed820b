package board

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// Cell addresses one dish of one room: the column is the dish's position in
// the room's resolved sequence
type Cell struct {
	Group string
	Room  string
	Col   int
}

func (c Cell) String() string {
	return fmt.Sprintf("%s/%s/%d", c.Group, c.Room, c.Col)
}

// RoomCells holds a room's statuses and side-data, keyed by column
type RoomCells struct {
	Status   map[int]Status
	Staff    map[int]string
	Welldone map[int]int
	WaitTime map[int]WaitTime
}

func newRoomCells() *RoomCells {
	return &RoomCells{Status: make(map[int]Status)}
}

const (
	fieldStaff    = "staff"
	fieldWelldone = "welldone"
	fieldWaitTime = "waitTime"
)

// MarshalJSON writes the day-record layout: statuses under their column
// number next to the staff, welldone and waitTime sub-maps
func (r *RoomCells) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(r.Status)+3)
	for col, st := range r.Status {
		out[strconv.Itoa(col)] = st
	}
	if len(r.Staff) > 0 {
		out[fieldStaff] = stringKeys(r.Staff)
	}
	if len(r.Welldone) > 0 {
		out[fieldWelldone] = stringKeys(r.Welldone)
	}
	if len(r.WaitTime) > 0 {
		out[fieldWaitTime] = stringKeys(r.WaitTime)
	}
	return json.Marshal(out)
}

// UnmarshalJSON reads the day-record layout. Entries that do not parse are
// dropped rather than failing the whole record.
func (r *RoomCells) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*r = *newRoomCells()
	for key, val := range raw {
		switch key {
		case fieldStaff:
			r.Staff = intKeys[string](val)
		case fieldWelldone:
			r.Welldone = intKeys[int](val)
		case fieldWaitTime:
			r.WaitTime = intKeys[WaitTime](val)
		default:
			col, err := strconv.Atoi(key)
			if err != nil || col < 0 {
				continue
			}
			var st Status
			if err := json.Unmarshal(val, &st); err != nil || !st.Valid() {
				continue
			}
			r.Status[col] = st
		}
	}
	return nil
}

func stringKeys[V any](m map[int]V) map[string]V {
	out := make(map[string]V, len(m))
	for k, v := range m {
		out[strconv.Itoa(k)] = v
	}
	return out
}

func intKeys[V any](data json.RawMessage) map[int]V {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil
	}
	out := make(map[int]V, len(raw))
	for k, rv := range raw {
		col, err := strconv.Atoi(k)
		if err != nil || col < 0 {
			continue
		}
		var v V
		if err := json.Unmarshal(rv, &v); err != nil {
			continue
		}
		out[col] = v
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Board is the service state of one day: group → room → cells
type Board struct {
	groups map[string]map[string]*RoomCells
}

// New returns an empty board
func New() *Board {
	return &Board{groups: make(map[string]map[string]*RoomCells)}
}

// MarshalJSON writes the board as {group: {room: cells}}
func (b *Board) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.groups)
}

// UnmarshalJSON reads {group: {room: cells}}
func (b *Board) UnmarshalJSON(data []byte) error {
	groups := make(map[string]map[string]*RoomCells)
	if err := json.Unmarshal(data, &groups); err != nil {
		return err
	}
	for g, rooms := range groups {
		if rooms == nil {
			groups[g] = make(map[string]*RoomCells)
			continue
		}
		for r, cells := range rooms {
			if cells == nil {
				rooms[r] = newRoomCells()
			}
		}
	}
	b.groups = groups
	return nil
}

func (b *Board) room(group, room string) *RoomCells {
	if b.groups == nil {
		return nil
	}
	return b.groups[group][room]
}

func (b *Board) ensureRoom(group, room string) *RoomCells {
	if b.groups == nil {
		b.groups = make(map[string]map[string]*RoomCells)
	}
	rooms, ok := b.groups[group]
	if !ok {
		rooms = make(map[string]*RoomCells)
		b.groups[group] = rooms
	}
	rc, ok := rooms[room]
	if !ok {
		rc = newRoomCells()
		rooms[room] = rc
	}
	return rc
}

// EnsureCell creates the cell as pending if it does not exist yet
func (b *Board) EnsureCell(c Cell) {
	rc := b.ensureRoom(c.Group, c.Room)
	if _, ok := rc.Status[c.Col]; !ok {
		rc.Status[c.Col] = StatusPending
	}
}

// Lookup returns the cell's status without creating it
func (b *Board) Lookup(c Cell) (Status, bool) {
	rc := b.room(c.Group, c.Room)
	if rc == nil {
		return "", false
	}
	st, ok := rc.Status[c.Col]
	return st, ok
}

// Status returns the cell's status; cells never touched are pending
func (b *Board) Status(c Cell) Status {
	if st, ok := b.Lookup(c); ok {
		return st
	}
	return StatusPending
}

// SetStatus sets the cell's status, creating the cell if needed
func (b *Board) SetStatus(c Cell, s Status) {
	b.ensureRoom(c.Group, c.Room).Status[c.Col] = s
}

// Staff returns who served the dish
func (b *Board) Staff(c Cell) (string, bool) {
	rc := b.room(c.Group, c.Room)
	if rc == nil {
		return "", false
	}
	name, ok := rc.Staff[c.Col]
	return name, ok
}

// SetStaff records who served the dish
func (b *Board) SetStaff(c Cell, name string) {
	b.EnsureCell(c)
	rc := b.room(c.Group, c.Room)
	if rc.Staff == nil {
		rc.Staff = make(map[int]string)
	}
	rc.Staff[c.Col] = name
}

// ClearStaff removes the serving staff
func (b *Board) ClearStaff(c Cell) {
	if rc := b.room(c.Group, c.Room); rc != nil {
		delete(rc.Staff, c.Col)
	}
}

// Welldone returns the well-done headcount
func (b *Board) Welldone(c Cell) (int, bool) {
	rc := b.room(c.Group, c.Room)
	if rc == nil {
		return 0, false
	}
	n, ok := rc.Welldone[c.Col]
	return n, ok
}

// SetWelldone records the well-done headcount
func (b *Board) SetWelldone(c Cell, n int) {
	b.EnsureCell(c)
	rc := b.room(c.Group, c.Room)
	if rc.Welldone == nil {
		rc.Welldone = make(map[int]int)
	}
	rc.Welldone[c.Col] = n
}

// ClearWelldone removes the well-done headcount
func (b *Board) ClearWelldone(c Cell) {
	if rc := b.room(c.Group, c.Room); rc != nil {
		delete(rc.Welldone, c.Col)
	}
}

// WaitTime returns the chosen wait time
func (b *Board) WaitTime(c Cell) (WaitTime, bool) {
	rc := b.room(c.Group, c.Room)
	if rc == nil {
		return WaitTime{}, false
	}
	w, ok := rc.WaitTime[c.Col]
	return w, ok
}

// SetWaitTime records the chosen wait time
func (b *Board) SetWaitTime(c Cell, w WaitTime) {
	b.EnsureCell(c)
	rc := b.room(c.Group, c.Room)
	if rc.WaitTime == nil {
		rc.WaitTime = make(map[int]WaitTime)
	}
	rc.WaitTime[c.Col] = w
}

// ClearWaitTime removes the wait time
func (b *Board) ClearWaitTime(c Cell) {
	if rc := b.room(c.Group, c.Room); rc != nil {
		delete(rc.WaitTime, c.Col)
	}
}

// ClearSide removes staff, welldone and wait time of the cell
func (b *Board) ClearSide(c Cell) {
	b.ClearStaff(c)
	b.ClearWelldone(c)
	b.ClearWaitTime(c)
}

// ResetAll sets every existing cell back to pending and drops all side
// data, keeping the group and room keys
func (b *Board) ResetAll() {
	for _, rooms := range b.groups {
		for _, rc := range rooms {
			for col := range rc.Status {
				rc.Status[col] = StatusPending
			}
			rc.Staff = nil
			rc.Welldone = nil
			rc.WaitTime = nil
		}
	}
}

// Groups returns the time-group ids present, sorted
func (b *Board) Groups() []string {
	out := make([]string, 0, len(b.groups))
	for g := range b.groups {
		out = append(out, g)
	}
	sort.Strings(out)
	return out
}

// Rooms returns the rooms of a group, sorted
func (b *Board) Rooms(group string) []string {
	out := make([]string, 0, len(b.groups[group]))
	for r := range b.groups[group] {
		out = append(out, r)
	}
	sort.Strings(out)
	return out
}

// Cells returns every cell that has a status, ordered by group, room, column
func (b *Board) Cells() []Cell {
	var out []Cell
	for _, g := range b.Groups() {
		for _, r := range b.Rooms(g) {
			rc := b.groups[g][r]
			cols := make([]int, 0, len(rc.Status))
			for col := range rc.Status {
				cols = append(cols, col)
			}
			sort.Ints(cols)
			for _, col := range cols {
				out = append(out, Cell{Group: g, Room: r, Col: col})
			}
		}
	}
	return out
}

// HasSideData reports whether any cell still carries staff, welldone or
// wait time
func (b *Board) HasSideData() bool {
	for _, rooms := range b.groups {
		for _, rc := range rooms {
			if len(rc.Staff) > 0 || len(rc.Welldone) > 0 || len(rc.WaitTime) > 0 {
				return true
			}
		}
	}
	return false
}

// Clone returns a deep copy
func (b *Board) Clone() *Board {
	out := New()
	for g, rooms := range b.groups {
		dst := make(map[string]*RoomCells, len(rooms))
		for r, rc := range rooms {
			dst[r] = &RoomCells{
				Status:   cloneMap(rc.Status),
				Staff:    cloneMap(rc.Staff),
				Welldone: cloneMap(rc.Welldone),
				WaitTime: cloneMap(rc.WaitTime),
			}
			if dst[r].Status == nil {
				dst[r].Status = make(map[int]Status)
			}
		}
		out.groups[g] = dst
	}
	return out
}

func cloneMap[V any](m map[int]V) map[int]V {
	if m == nil {
		return nil
	}
	out := make(map[int]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
