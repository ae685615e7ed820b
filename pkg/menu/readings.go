package menu

import (
	"errors"
	"fmt"
	"strings"

	"github.com/korjavin/dinnerboard/pkg/logger"
	"github.com/korjavin/dinnerboard/pkg/storage"
)

// readings holds the kana shown under each dish name on the kitchen display
var readings = map[string]string{
	"吸物":     "すいもの",
	"すいもの":   "すいもの",
	"刺身":     "さしみ",
	"さしみ":    "さしみ",
	"蒸物":     "むしもの",
	"むしもの":   "むしもの",
	"揚物":     "あげもの",
	"あげもの":   "あげもの",
	"煮物":     "にもの",
	"にもの":    "にもの",
	"飯":      "めし・ごはん",
	"ご飯":     "ごはん",
	"甘味":     "あまみ・デザート",
	"デザート":   "デザート",
	"果菜盛":    "かなもり",
	"かなもり":   "かなもり",
	"しゃぶしゃぶ": "しゃぶしゃぶ",
	"ステーキ":   "ステーキ",
	"すき焼き":   "すきやき",
	"単品ステーキ": "たんぴんステーキ",
	"フライ":    "フライ",
	"茶碗蒸し":   "ちゃわんむし",
	"牛たたき":   "ぎゅうたたき",
	"焼物":     "やきもの",
	"小鉢":     "こばち",
}

const readingKeyPrefix = "reading:"

// Reading returns the static reading of dish, or the dish name itself
func Reading(dish string) string {
	if r, ok := readings[dish]; ok {
		return r
	}
	return dish
}

// RemoteReader looks up the reading of a dish the static table lacks
type RemoteReader interface {
	DishReading(dish string) (string, error)
}

// ReadingBook resolves dish readings from the static table first, then from
// readings learned earlier and cached in storage
type ReadingBook struct {
	store  *storage.Store
	remote RemoteReader
	logger *logger.Logger
}

// NewReadingBook creates a reading book; remote may be nil
func NewReadingBook(store *storage.Store, remote RemoteReader) *ReadingBook {
	return &ReadingBook{
		store:  store,
		remote: remote,
		logger: logger.New("menu"),
	}
}

// Reading never blocks on the network: unknown dishes read as themselves
func (b *ReadingBook) Reading(dish string) string {
	if r, ok := readings[dish]; ok {
		return r
	}
	if b == nil || b.store == nil {
		return dish
	}

	var cached string
	if err := b.store.Get(readingKeyPrefix+dish, &cached); err == nil && cached != "" {
		return cached
	}
	return dish
}

// Learn fetches and caches readings for the dishes that neither the static
// table nor the cache knows. It returns how many readings were learned.
func (b *ReadingBook) Learn(dishes []string) (int, error) {
	if b.remote == nil {
		return 0, nil
	}

	learned := 0
	var errs []error
	for _, dish := range dishes {
		if _, ok := readings[dish]; ok {
			continue
		}
		var cached string
		err := b.store.Get(readingKeyPrefix+dish, &cached)
		if err == nil {
			continue
		}
		if !errors.Is(err, storage.ErrNotFound) {
			errs = append(errs, err)
			continue
		}

		reading, err := b.remote.DishReading(dish)
		if err != nil {
			errs = append(errs, fmt.Errorf("reading for %s: %w", dish, err))
			continue
		}
		reading = strings.TrimSpace(reading)
		if reading == "" {
			continue
		}
		if err := b.store.Set(readingKeyPrefix+dish, reading); err != nil {
			errs = append(errs, err)
			continue
		}
		b.logger.Info("Learned reading %s for %s", reading, dish)
		learned++
	}
	return learned, errors.Join(errs...)
}
