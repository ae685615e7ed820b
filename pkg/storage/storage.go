package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v3"
	"github.com/dgraph-io/badger/v3/pb"
	"github.com/google/uuid"
	"github.com/korjavin/dinnerboard/pkg/logger"
)

// ErrNotFound is returned when a key does not exist
var ErrNotFound = errors.New("key not found")

// maxConflictRetries bounds Mutate retries on concurrent transactions
const maxConflictRetries = 5

// subscribedKeyPrefix names the marker records Subscribe writes until badger
// delivers one back, which shows the subscription is registered
const subscribedKeyPrefix = "sys:subscribed:"

// subscribedPoll is how often the marker is rewritten while waiting
const subscribedPoll = 10 * time.Millisecond

// Store represents a BadgerDB storage instance
type Store struct {
	db     *badger.DB
	logger *logger.Logger
}

// New creates a new BadgerDB storage instance
func New(dataDir string) (*Store, error) {
	absPath, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}

	opts := badger.DefaultOptions(absPath)
	opts.Logger = nil // Disable Badger's internal logger

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open BadgerDB: %w", err)
	}

	s := &Store{db: db, logger: logger.New("storage")}
	s.logger.Info("BadgerDB opened at %s", absPath)
	return s, nil
}

// NewInMemory opens a store that keeps everything in memory
func NewInMemory() (*Store, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory BadgerDB: %w", err)
	}
	return &Store{db: db, logger: logger.New("storage")}, nil
}

// Close closes the BadgerDB database
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Set stores a value for a key
func (s *Store) Set(key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}
	return s.SetRaw(key, data)
}

// SetRaw stores already encoded bytes for a key
func (s *Store) SetRaw(key string, data []byte) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
}

// SetMany stores several values in one transaction: either every key is
// written or none is
func (s *Store) SetMany(values map[string]interface{}) error {
	encoded := make(map[string][]byte, len(values))
	for key, value := range values {
		data, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("failed to marshal value for %s: %w", key, err)
		}
		encoded[key] = data
	}

	return s.db.Update(func(txn *badger.Txn) error {
		for key, data := range encoded {
			if err := txn.Set([]byte(key), data); err != nil {
				return err
			}
		}
		return nil
	})
}

// GetRaw retrieves the stored bytes for a key
func (s *Store) GetRaw(key string) ([]byte, error) {
	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})

	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return nil, fmt.Errorf("failed to get value: %w", err)
	}
	return data, nil
}

// Get retrieves a value for a key
func (s *Store) Get(key string, value interface{}) error {
	data, err := s.GetRaw(key)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, value)
}

// Mutate runs a read-modify-write cycle on one key inside a single
// transaction. fn receives nil when the key is absent and returns the
// bytes to store. Conflicting concurrent writers are retried.
func (s *Store) Mutate(key string, fn func(current []byte) ([]byte, error)) error {
	var err error
	for attempt := 0; attempt < maxConflictRetries; attempt++ {
		err = s.db.Update(func(txn *badger.Txn) error {
			var current []byte
			item, err := txn.Get([]byte(key))
			switch {
			case errors.Is(err, badger.ErrKeyNotFound):
			case err != nil:
				return err
			default:
				if current, err = item.ValueCopy(nil); err != nil {
					return err
				}
			}

			next, err := fn(current)
			if err != nil {
				return err
			}
			return txn.Set([]byte(key), next)
		})
		if !errors.Is(err, badger.ErrConflict) {
			break
		}
		s.logger.Debug("Transaction conflict on %s, retrying (%d)", key, attempt+1)
	}
	if err != nil {
		return fmt.Errorf("failed to mutate %s: %w", key, err)
	}
	return nil
}

// Delete removes a key from the database
func (s *Store) Delete(key string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
}

// DeletePrefix removes every key starting with prefix and returns how many
// keys were removed
func (s *Store) DeletePrefix(prefix string) (int, error) {
	keys, err := s.List(prefix)
	if err != nil {
		return 0, err
	}
	if len(keys) == 0 {
		return 0, nil
	}

	wb := s.db.NewWriteBatch()
	defer wb.Cancel()
	for _, key := range keys {
		if err := wb.Delete([]byte(key)); err != nil {
			return 0, fmt.Errorf("failed to delete %s: %w", key, err)
		}
	}
	if err := wb.Flush(); err != nil {
		return 0, fmt.Errorf("failed to flush deletes: %w", err)
	}
	return len(keys), nil
}

// List returns all keys with a given prefix
func (s *Store) List(prefix string) ([]string, error) {
	var keys []string
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefixBytes := []byte(prefix)
		for it.Seek(prefixBytes); it.ValidForPrefix(prefixBytes); it.Next() {
			keys = append(keys, string(it.Item().KeyCopy(nil)))
		}
		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}

	return keys, nil
}

// Subscribe calls fn with the key of every write (set or delete) that
// matches one of the prefixes. It blocks until ctx is cancelled.
//
// Badger registers the subscription asynchronously. ready, when not nil, is
// called once it is registered; every write made after that reaches fn.
func (s *Store) Subscribe(ctx context.Context, prefixes []string, fn func(key string), ready func()) error {
	matches := make([]pb.Match, 0, len(prefixes)+1)
	for _, p := range prefixes {
		matches = append(matches, pb.Match{Prefix: []byte(p)})
	}

	marker := subscribedKeyPrefix + uuid.NewString()
	matches = append(matches, pb.Match{Prefix: []byte(marker)})

	subscribed := make(chan struct{})
	var once sync.Once
	go s.announce(ctx, marker, subscribed)

	err := s.db.Subscribe(ctx, func(kvs *badger.KVList) error {
		for _, kv := range kvs.Kv {
			key := string(kv.Key)
			if key == marker {
				once.Do(func() {
					close(subscribed)
					if ready != nil {
						ready()
					}
				})
				continue
			}
			fn(key)
		}
		return nil
	}, matches)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("subscription ended: %w", err)
	}
	return nil
}

// announce writes marker until the subscription sees it, then removes it
func (s *Store) announce(ctx context.Context, marker string, subscribed <-chan struct{}) {
	ticker := time.NewTicker(subscribedPoll)
	defer ticker.Stop()

	for {
		if err := s.SetRaw(marker, []byte{}); err != nil {
			s.logger.Debug("Failed to write subscription marker: %v", err)
		}
		select {
		case <-subscribed:
			if err := s.Delete(marker); err != nil {
				s.logger.Debug("Failed to remove subscription marker: %v", err)
			}
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// RunGC runs garbage collection on the database
func (s *Store) RunGC() error {
	return s.db.RunValueLogGC(0.5)
}

// StartGCRoutine starts a goroutine that periodically runs garbage collection
// until ctx is cancelled
func (s *Store) StartGCRoutine(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				// ErrNoRewrite only means there was nothing to collect
				if err := s.RunGC(); err != nil && !errors.Is(err, badger.ErrNoRewrite) {
					s.logger.Error("BadgerDB GC error: %v", err)
				}
			}
		}
	}()
	s.logger.Info("Started BadgerDB GC routine with interval %v", interval)
}
