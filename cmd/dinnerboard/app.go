package main

import (
	"fmt"

	"github.com/korjavin/dinnerboard/pkg/board"
	"github.com/korjavin/dinnerboard/pkg/config"
	"github.com/korjavin/dinnerboard/pkg/course"
	"github.com/korjavin/dinnerboard/pkg/logger"
	"github.com/korjavin/dinnerboard/pkg/menu"
	"github.com/korjavin/dinnerboard/pkg/openai"
	"github.com/korjavin/dinnerboard/pkg/reset"
	"github.com/korjavin/dinnerboard/pkg/roomprefs"
	"github.com/korjavin/dinnerboard/pkg/roster"
	"github.com/korjavin/dinnerboard/pkg/storage"
)

// app holds the services every subcommand shares
type app struct {
	cfg      *config.Config
	store    *storage.Store
	boards   *board.Store
	roster   *roster.Service
	prefs    *roomprefs.Service
	course   *course.Service
	reset    *reset.Service
	readings *menu.ReadingBook
	log      *logger.Logger
}

// openApp loads the configuration and opens the store under DATA_DIR.
// Badger locks the directory, so only one command can hold it at a time.
func openApp() (*app, error) {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return nil, err
	}

	store, err := storage.New(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	return newApp(cfg, store), nil
}

// newApp builds the services on an open store
func newApp(cfg *config.Config, store *storage.Store) *app {
	var remote menu.RemoteReader
	if cfg.OpenAIAPIKey != "" {
		remote = openai.New(cfg.OpenAIAPIKey, cfg.OpenAIAPIBase, cfg.OpenAIModel)
	}

	boards := board.NewStore(store, nil)
	rosterService := roster.New(store, cfg.Staff, cfg.CustomStaff)
	prefs := roomprefs.New(store)

	return &app{
		cfg:      cfg,
		store:    store,
		boards:   boards,
		roster:   rosterService,
		prefs:    prefs,
		course:   course.New(boards, rosterService),
		reset:    reset.New(boards, prefs),
		readings: menu.NewReadingBook(store, remote),
		log:      logger.Global,
	}
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		a.log.Error("Failed to close storage: %v", err)
	}
}
