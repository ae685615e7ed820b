// Package roster keeps tonight's room bookings, extra-dish rules and staff
// list as written by the settings import.
package roster

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/korjavin/dinnerboard/pkg/logger"
	"github.com/korjavin/dinnerboard/pkg/menu"
	"github.com/korjavin/dinnerboard/pkg/models"
	"github.com/korjavin/dinnerboard/pkg/storage"
)

// Record keys
const (
	KeyRoster      = "settings:today"
	KeyExtraDishes = "extra-dishes"
)

// File is the import format: the roster plus its extra-dish rules
type File struct {
	models.Roster
	ExtraDishes []models.ExtraDish `json:"extraDishes,omitempty"`
}

// Service reads and writes the roster records
type Service struct {
	store        *storage.Store
	defaultStaff []string
	customStaff  string
	logger       *logger.Logger
}

// New creates a roster service. defaultStaff and customStaff are offered
// when the roster names no staff of its own.
func New(store *storage.Store, defaultStaff []string, customStaff string) *Service {
	return &Service{
		store:        store,
		defaultStaff: defaultStaff,
		customStaff:  customStaff,
		logger:       logger.New("roster"),
	}
}

// Roster returns tonight's roster; missing or unreadable records read as empty
func (s *Service) Roster() models.Roster {
	var r models.Roster
	if err := s.store.Get(KeyRoster, &r); err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.logger.Warn("Ignoring unreadable roster: %v", err)
		}
		return models.Roster{}
	}
	return r
}

// ExtraDishes returns the extra-dish rules; missing or unreadable records
// read as none
func (s *Service) ExtraDishes() []models.ExtraDish {
	var rules []models.ExtraDish
	if err := s.store.Get(KeyExtraDishes, &rules); err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.logger.Warn("Ignoring unreadable extra dishes: %v", err)
		}
		return nil
	}
	return rules
}

// Staff returns the names offered by the staff prompt: the roster's staff
// (or the configured default) with the custom name appended once
func (s *Service) Staff() []string {
	r := s.Roster()

	names := r.Staff
	if len(names) == 0 {
		names = s.defaultStaff
	}
	out := append([]string(nil), names...)

	custom := r.CustomStaff
	if custom == "" {
		custom = s.customStaff
	}
	if custom != "" && !slices.Contains(out, custom) {
		out = append(out, custom)
	}
	return out
}

// Save replaces tonight's roster and extra-dish rules together
func (s *Service) Save(f File) error {
	rules := f.ExtraDishes
	if rules == nil {
		rules = []models.ExtraDish{}
	}
	err := s.store.SetMany(map[string]interface{}{
		KeyRoster:      f.Roster,
		KeyExtraDishes: rules,
	})
	if err != nil {
		return fmt.Errorf("failed to save roster: %w", err)
	}
	return nil
}

// Import reads a roster file, validates it and saves it
func (s *Service) Import(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return s.ImportData(data, path)
}

// ImportData parses, validates and saves a roster document; source only
// names it in logs and errors
func (s *Service) ImportData(data []byte, source string) (File, error) {
	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return File{}, fmt.Errorf("failed to parse %s: %w", source, err)
	}
	if err := Validate(f); err != nil {
		return File{}, err
	}
	for _, w := range Warnings(f) {
		s.logger.Warn("%s", w)
	}

	if err := s.Save(f); err != nil {
		return File{}, err
	}
	s.logger.Info("Imported %d rooms and %d extra dishes from %s", len(f.Rooms), len(f.ExtraDishes), source)
	return f, nil
}

// Validate rejects rosters the board cannot address
func Validate(f File) error {
	seen := make(map[string]bool)
	for i, room := range f.Rooms {
		if room.Name == "" {
			return fmt.Errorf("room #%d has no name", i+1)
		}
		if room.Dinner == "" {
			return fmt.Errorf("room %s has no dinner time", room.Name)
		}
		if room.Guest < 0 {
			return fmt.Errorf("room %s has a negative guest count", room.Name)
		}
		id := room.Dinner + "/" + room.Name
		if seen[id] {
			return fmt.Errorf("room %s is booked twice at %s", room.Name, room.Dinner)
		}
		seen[id] = true
	}
	return nil
}

// Warnings lists entries that load but will not show as intended
func Warnings(f File) []string {
	var out []string
	for _, room := range f.Rooms {
		if !slices.Contains(models.TimeGroups, room.Dinner) {
			out = append(out, fmt.Sprintf("room %s uses unknown dinner time %s", room.Name, room.Dinner))
		}
		if _, ok := menu.Plans[room.Plan]; !ok && room.Plan != "" {
			out = append(out, fmt.Sprintf("room %s has unknown plan %s, default dishes apply", room.Name, room.Plan))
		}
	}
	for _, rule := range f.ExtraDishes {
		if rule.Name == "" || rule.Position == "" {
			out = append(out, fmt.Sprintf("extra dish %q is incomplete and will be skipped", rule.Name))
			continue
		}
		if !slices.Contains(menu.Positions(), rule.Position) {
			out = append(out, fmt.Sprintf("extra dish %s has unknown position %s", rule.Name, rule.Position))
		}
	}
	return out
}

// Dishes lists every dish served tonight once, in first-seen order
func Dishes(r models.Roster, rules []models.ExtraDish) []string {
	var out []string
	seen := make(map[string]bool)
	for _, room := range r.Rooms {
		for _, dish := range menu.Resolve(room.Plan, rules, room.Name) {
			if !seen[dish] {
				seen[dish] = true
				out = append(out, dish)
			}
		}
	}
	return out
}
