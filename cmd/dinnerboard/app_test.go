package main

import (
	"testing"

	"github.com/korjavin/dinnerboard/pkg/config"
	"github.com/korjavin/dinnerboard/pkg/models"
	"github.com/korjavin/dinnerboard/pkg/roster"
	"github.com/korjavin/dinnerboard/pkg/storage"
)

// newTestApp builds the services on an in-memory store with one room
// seated at 18:30 on the default menu
func newTestApp(t *testing.T) *app {
	t.Helper()
	s, err := storage.NewInMemory()
	if err != nil {
		t.Fatalf("NewInMemory() error = %v", err)
	}
	a := newApp(&config.Config{Staff: []string{"真弓"}}, s)
	t.Cleanup(a.Close)

	f := roster.File{Roster: models.Roster{Rooms: []models.RoomSlot{{Name: "さくら", Dinner: "18:30", Guest: 3}}}}
	if err := a.roster.Save(f); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	return a
}
