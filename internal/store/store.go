package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/mmcdole/cachegen/internal/domain"
	bolt "go.etcd.io/bbolt"
)

// Bucket names
var (
	bucketBatches = []byte("batches")
	bucketNames   = []byte("names")
)

// HistoryStore implements domain.HistoryStore using BoltDB.
type HistoryStore struct {
	db *bolt.DB
	mu sync.RWMutex // Protects memory cache

	// Memory-only mode keeps everything here; unused when db is set
	batches map[string][]byte
	names   map[string][]byte
}

// NewHistoryStore opens (or creates) the journal at path.
// An empty path keeps the journal in memory only.
func NewHistoryStore(path string) (*HistoryStore, error) {
	s := &HistoryStore{
		batches: make(map[string][]byte),
		names:   make(map[string][]byte),
	}
	if path == "" {
		// Memory-only mode (no persistence)
		return s, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	// Create buckets
	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{bucketBatches, bucketNames} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	s.db = db
	return s, nil
}

func (s *HistoryStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// RecordBatch stores the batch and indexes every entry name.
// A name saved again points at the newest batch.
func (s *HistoryStore) RecordBatch(batch domain.Batch) error {
	if batch.ID == "" {
		return fmt.Errorf("batch has no id")
	}

	batchData, err := json.Marshal(batch)
	if err != nil {
		return err
	}

	names := make(map[string][]byte, len(batch.Entries))
	for _, e := range batch.Entries {
		rec := domain.NameRecord{
			Name:        e.DerivedName,
			SourcePath:  e.SourcePath,
			BatchID:     batch.ID,
			Destination: batch.Destination,
			SavedAt:     batch.CreatedAt,
		}
		data, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		names[e.DerivedName] = data
	}

	if s.db == nil {
		s.mu.Lock()
		s.batches[batch.ID] = batchData
		for k, v := range names {
			s.names[k] = v
		}
		s.mu.Unlock()
		return nil
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket(bucketBatches).Put([]byte(batch.ID), batchData); err != nil {
			return err
		}
		b := tx.Bucket(bucketNames)
		for k, v := range names {
			if err := b.Put([]byte(k), v); err != nil {
				return err
			}
		}
		return nil
	})
}

// RecentBatches returns up to limit batches, newest first
func (s *HistoryStore) RecentBatches(limit int) ([]domain.Batch, error) {
	var raw [][]byte

	if s.db == nil {
		s.mu.RLock()
		for _, v := range s.batches {
			raw = append(raw, v)
		}
		s.mu.RUnlock()
	} else {
		err := s.db.View(func(tx *bolt.Tx) error {
			return tx.Bucket(bucketBatches).ForEach(func(_, v []byte) error {
				data := make([]byte, len(v))
				copy(data, v)
				raw = append(raw, data)
				return nil
			})
		})
		if err != nil {
			return nil, err
		}
	}

	batches := make([]domain.Batch, 0, len(raw))
	for _, data := range raw {
		var b domain.Batch
		if err := json.Unmarshal(data, &b); err != nil {
			continue
		}
		batches = append(batches, b)
	}

	sort.Slice(batches, func(i, j int) bool {
		if batches[i].CreatedAt.Equal(batches[j].CreatedAt) {
			return batches[i].ID > batches[j].ID
		}
		return batches[i].CreatedAt.After(batches[j].CreatedAt)
	})

	if limit > 0 && len(batches) > limit {
		batches = batches[:limit]
	}
	return batches, nil
}

// LookupName finds the record for an exact name, or every record whose name
// starts with query (e.g. a reversed hash) when there is no exact match
func (s *HistoryStore) LookupName(query string) ([]domain.NameRecord, error) {
	if query == "" {
		return nil, domain.ErrNotFound
	}

	var raw [][]byte

	if s.db == nil {
		s.mu.RLock()
		if v, ok := s.names[query]; ok {
			raw = append(raw, v)
		} else {
			keys := make([]string, 0)
			for k := range s.names {
				if strings.HasPrefix(k, query) {
					keys = append(keys, k)
				}
			}
			sort.Strings(keys)
			for _, k := range keys {
				raw = append(raw, s.names[k])
			}
		}
		s.mu.RUnlock()
	} else {
		err := s.db.View(func(tx *bolt.Tx) error {
			b := tx.Bucket(bucketNames)
			if v := b.Get([]byte(query)); v != nil {
				raw = append(raw, append([]byte(nil), v...))
				return nil
			}
			// Prefix scan
			c := b.Cursor()
			prefix := []byte(query)
			for k, v := c.Seek(prefix); k != nil && strings.HasPrefix(string(k), query); k, v = c.Next() {
				raw = append(raw, append([]byte(nil), v...))
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, query)
	}

	records := make([]domain.NameRecord, 0, len(raw))
	for _, data := range raw {
		var rec domain.NameRecord
		if err := json.Unmarshal(data, &rec); err != nil {
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// Clear deletes every batch and name record
func (s *HistoryStore) Clear() error {
	s.mu.Lock()
	s.batches = make(map[string][]byte)
	s.names = make(map[string][]byte)
	s.mu.Unlock()

	if s.db == nil {
		return nil
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{bucketBatches, bucketNames} {
			if err := tx.DeleteBucket(bucket); err != nil {
				return err
			}
			if _, err := tx.CreateBucket(bucket); err != nil {
				return err
			}
		}
		return nil
	})
}
