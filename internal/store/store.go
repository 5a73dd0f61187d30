// Sentinel-AI - Event-Driven News Intelligence Pipeline
// Copyright 2026 Sentinel-AI contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gsantopaolo/sentinel-AI

package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/gsantopaolo/sentinel-AI/internal/metrics"
)

// ErrNotFound is returned when no item exists for the given id.
// Callers in the pipeline treat it as retryable: the filter's upsert
// may not have landed yet when a ranked or inspected event arrives.
var ErrNotFound = errors.New("item not found")

const itemKeyPrefix = "item:"

// Store is a BadgerDB-backed item store. Partial updates run inside a
// single transaction; a concurrent conflicting write surfaces as
// badger.ErrConflict, which callers retry.
type Store struct {
	db *badger.DB
}

// Open opens (or creates) the store at path.
func Open(path string) (*Store, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open item store at %s: %w", path, err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func itemKey(id string) []byte {
	return []byte(itemKeyPrefix + id)
}

// Upsert writes the full item keyed by its id. Used by the filter
// stage, whose redeliveries replay the identical record, so a blind
// overwrite is safe there and only there.
func (s *Store) Upsert(ctx context.Context, item *Item) error {
	if item.ID == "" {
		return fmt.Errorf("upsert item: empty id")
	}
	item.UpdatedAt = time.Now().UTC()

	data, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("marshal item %s: %w", item.ID, err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(itemKey(item.ID), data)
	})
	observeStore("upsert", err)
	if err != nil {
		return fmt.Errorf("upsert item %s: %w", item.ID, err)
	}
	return nil
}

// Get retrieves one item by id.
func (s *Store) Get(ctx context.Context, id string) (*Item, error) {
	var item Item
	err := s.db.View(func(txn *badger.Txn) error {
		it, err := txn.Get(itemKey(id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return it.Value(func(val []byte) error {
			return json.Unmarshal(val, &item)
		})
	})
	observeStore("get", err)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get item %s: %w", id, err)
	}
	return &item, nil
}

// ApplyScores updates only the scoring fields of the item. The read
// and write share one transaction, so a concurrent anomaly flag on the
// same item either serializes cleanly or fails with badger.ErrConflict
// for the caller to retry. It never clobbers fields it does not own.
func (s *Store) ApplyScores(ctx context.Context, id string, importance, recency, final float64) error {
	err := s.mutate(id, func(item *Item) {
		item.ImportanceScore = importance
		item.RecencyScore = recency
		item.FinalScore = final
		item.Ranked = true
	})
	observeStore("apply_scores", err)
	return err
}

// FlagAnomaly marks the item anomalous. Same transactional scope as
// ApplyScores.
func (s *Store) FlagAnomaly(ctx context.Context, id, reason string) error {
	err := s.mutate(id, func(item *Item) {
		item.Anomalous = true
		item.AnomalyReason = reason
	})
	observeStore("flag_anomaly", err)
	return err
}

// mutate reads, applies fn, and writes back within one transaction.
func (s *Store) mutate(id string, fn func(*Item)) error {
	return s.db.Update(func(txn *badger.Txn) error {
		it, err := txn.Get(itemKey(id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		var item Item
		if err := it.Value(func(val []byte) error {
			return json.Unmarshal(val, &item)
		}); err != nil {
			return err
		}

		fn(&item)
		item.UpdatedAt = time.Now().UTC()

		data, err := json.Marshal(&item)
		if err != nil {
			return err
		}
		return txn.Set(itemKey(id), data)
	})
}

// Replace overwrites the item with a record assembled outside any
// transaction. Two stages doing read-Replace on the same item can lose
// each other's writes; production code uses ApplyScores and
// FlagAnomaly instead. Kept for full-record rewrites where the caller
// owns every field.
func (s *Store) Replace(ctx context.Context, item *Item) error {
	if item.ID == "" {
		return fmt.Errorf("replace item: empty id")
	}
	item.UpdatedAt = time.Now().UTC()

	data, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("marshal item %s: %w", item.ID, err)
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(itemKey(item.ID), data)
	})
	observeStore("replace", err)
	if err != nil {
		return fmt.Errorf("replace item %s: %w", item.ID, err)
	}
	return nil
}

// ListRanked returns up to limit ranked items ordered by final score,
// highest first. Unranked items are skipped.
func (s *Store) ListRanked(ctx context.Context, limit int) ([]*Item, error) {
	var items []*Item
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(itemKeyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var item Item
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &item)
			}); err != nil {
				return err
			}
			if !item.Ranked {
				continue
			}
			items = append(items, &item)
		}
		return nil
	})
	observeStore("list_ranked", err)
	if err != nil {
		return nil, fmt.Errorf("list ranked items: %w", err)
	}

	sort.Slice(items, func(i, j int) bool {
		return items[i].FinalScore > items[j].FinalScore
	})
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func observeStore(op string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	metrics.StoreOperations.WithLabelValues(op, result).Inc()
}
