// Package history persists per-session triage records so past sessions
// can be reviewed with `cull history`.
package history

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

// keyPrefix namespaces session records inside the store.
const keyPrefix = "session/"

// Record summarizes one completed (or abandoned) review session.
type Record struct {
	ID           string    `json:"id"`
	Source       string    `json:"source"`
	Mode         string    `json:"mode"`
	StartedAt    time.Time `json:"started_at"`
	FinishedAt   time.Time `json:"finished_at"`
	QueueLength  int64     `json:"queue_length"`
	FilesKept    int64     `json:"files_kept"`
	FilesDeleted int64     `json:"files_deleted"`
	FilesSkipped int64     `json:"files_skipped"`
	BytesDeleted int64     `json:"bytes_deleted"`
	BytesQueued  int64     `json:"bytes_queued"`
}

// NewRecord creates a record for a session starting now.
func NewRecord(source, mode string) Record {
	return Record{
		ID:        uuid.NewString(),
		Source:    source,
		Mode:      mode,
		StartedAt: time.Now().UTC(),
	}
}

// Store wraps Badger for session record persistence.
type Store struct {
	db *badger.DB
}

// Open opens or creates a history store at the given directory.
func Open(dir string) (*Store, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil // Disable badger logging

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening history store: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the store.
func (s *Store) Close() error {
	return s.db.Close()
}

// Append persists a session record.
func (s *Store) Append(rec Record) error {
	value, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding record: %w", err)
	}

	key := []byte(keyPrefix + rec.StartedAt.Format(time.RFC3339Nano) + "/" + rec.ID)
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, value)
	})
}

// List returns records sorted newest-first. If limit is 0 or negative,
// all records are returned.
func (s *Store) List(limit int) ([]Record, error) {
	var records []Record

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(keyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var rec Record
				if err := json.Unmarshal(val, &rec); err != nil {
					return nil // Skip records that can't be parsed
				}
				records = append(records, rec)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].StartedAt.After(records[j].StartedAt)
	})

	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}
