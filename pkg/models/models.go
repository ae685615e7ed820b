package models

// TimeGroups are the dinner seating start times a service is split into
var TimeGroups = []string{"18:00", "18:30", "19:00"}

// DefaultGuests is assumed for a room whose guest count was left empty
const DefaultGuests = 2

// Allergy names an allergen and the settings dish names it applies to
type Allergy struct {
	Name    string   `json:"name"`
	Targets []string `json:"targets,omitempty"`
}

// RoomSlot is one room's booking for tonight as produced by the settings form
type RoomSlot struct {
	Name      string    `json:"name"`
	Dinner    string    `json:"dinner"` // time-group id, e.g. "18:30"
	Plan      string    `json:"plan,omitempty"`
	Guest     int       `json:"guest,omitempty"`
	Allergies []Allergy `json:"allergies,omitempty"`
	Cake      bool      `json:"cake,omitempty"`
	Plate     bool      `json:"plate,omitempty"`
}

// Guests returns the guest count, falling back to DefaultGuests
func (r RoomSlot) Guests() int {
	if r.Guest > 0 {
		return r.Guest
	}
	return DefaultGuests
}

// Roster is tonight's settings record
type Roster struct {
	Rooms       []RoomSlot `json:"rooms"`
	Staff       []string   `json:"staff,omitempty"`
	CustomStaff string     `json:"customStaff,omitempty"`
}

// RoomsInGroup returns the rooms seated in the given time-group, in roster order
func (r Roster) RoomsInGroup(group string) []RoomSlot {
	var out []RoomSlot
	for _, room := range r.Rooms {
		if room.Dinner == group {
			out = append(out, room)
		}
	}
	return out
}

// ExtraDish is a plan-independent dish inserted before an anchor dish for
// the listed rooms. Position is an anchor label such as "煮物の前".
type ExtraDish struct {
	Name     string   `json:"name"`
	Position string   `json:"position"`
	Rooms    []string `json:"rooms"`
}

// Targets reports whether the rule applies to the room
func (e ExtraDish) Targets(room string) bool {
	for _, r := range e.Rooms {
		if r == room {
			return true
		}
	}
	return false
}
