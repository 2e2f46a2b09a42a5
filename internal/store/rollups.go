package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/pageturnapp/pageturn-server/internal/domain"
)

// Rollups are keyed by their date string, so a range scan over the
// prefix walks them in chronological order for free.

// GetRollup retrieves the rollup for one day.
// Returns ErrNotFound when that day saw no reading.
func (s *Store) GetRollup(ctx context.Context, date string) (*domain.DailyRollup, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var rollup domain.DailyRollup
	err := s.get([]byte(rollupPrefix+date), &rollup)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("rollup for %s: %w", date, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting rollup for %s: %w", date, err)
	}
	return &rollup, nil
}

// SetRollup overwrites one day's rollup.
func (s *Store) SetRollup(ctx context.Context, rollup *domain.DailyRollup) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if rollup.Date == "" {
		return ErrInvalidInput.WithMessage("rollup requires a date")
	}

	if err := s.set([]byte(rollupPrefix+rollup.Date), rollup); err != nil {
		return fmt.Errorf("setting rollup for %s: %w", rollup.Date, err)
	}
	return nil
}

// RecordSessionRollup folds a completed session into the rollup for
// the day it ended. A read-modify-write inside one transaction keeps
// concurrent session stops from losing updates.
func (s *Store) RecordSessionRollup(ctx context.Context, session *domain.ReadingSession, now time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	date := now.Format(domain.RollupDateLayout)
	key := []byte(rollupPrefix + date)

	err := s.db.Update(func(txn *badger.Txn) error {
		rollup := domain.DailyRollup{Date: date}

		item, err := txn.Get(key)
		if err == nil {
			err = item.Value(func(val []byte) error {
				return json.Unmarshal(val, &rollup)
			})
			if err != nil {
				return err
			}
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		rollup.RecordSession(session, now)

		data, err := json.Marshal(&rollup)
		if err != nil {
			return err
		}
		return txn.Set(key, data)
	})
	if err != nil {
		return fmt.Errorf("recording rollup for %s: %w", date, err)
	}
	return nil
}

// ListRollups returns rollups in the half-open interval [from, to),
// oldest first. A zero from means from the beginning of time.
func (s *Store) ListRollups(ctx context.Context, from, to time.Time) ([]*domain.DailyRollup, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prefix := []byte(rollupPrefix)
	seek := prefix
	if !from.IsZero() {
		seek = []byte(rollupPrefix + from.Format(domain.RollupDateLayout))
	}
	var end string
	if !to.IsZero() {
		end = to.Format(domain.RollupDateLayout)
	}

	var rollups []*domain.DailyRollup

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = true

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(seek); it.ValidForPrefix(prefix); it.Next() {
			date := string(it.Item().Key())[len(rollupPrefix):]
			if end != "" && date >= end {
				break
			}

			var rollup domain.DailyRollup
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &rollup)
			})
			if err != nil {
				return err
			}
			rollups = append(rollups, &rollup)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing rollups: %w", err)
	}

	return rollups, nil
}
