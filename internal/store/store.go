// Package store holds parsed nomination records and answers the single query
// the pipeline needs: every win, ordered by year.
package store

import (
	"cmp"
	"context"
	"slices"

	"github.com/rotisserie/eris"

	"github.com/sells-group/producer-intervals/internal/model"
)

// Supported repository drivers.
const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
)

// Repository is the storage-agnostic contract behind the interval pipeline.
// Load is called once at startup; Winners may then be called concurrently.
type Repository interface {
	// Load replaces the repository contents with records.
	Load(ctx context.Context, records []model.Record) error

	// Winners returns winning records exploded per producer, ascending by
	// year, ties kept in load order.
	Winners(ctx context.Context) ([]model.WinEvent, error)

	Close() error
}

// New opens a repository for the given driver. The DSN is only used by SQL
// backends; an empty DSN means a private in-memory database.
func New(driver, dsn string) (Repository, error) {
	switch driver {
	case "", DriverMemory:
		return NewMemory(), nil
	case DriverSQLite:
		if dsn == "" {
			dsn = ":memory:"
		}
		return NewSQLite(dsn)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", driver)
	}
}

// Winners filters records to winners and stable-sorts them by year.
func Winners(records []model.Record) []model.WinEvent {
	events := make([]model.WinEvent, 0, len(records))
	for _, r := range records {
		if !r.Winner {
			continue
		}
		events = append(events, model.WinEvent{Producer: r.Producer, Year: r.Year})
	}
	slices.SortStableFunc(events, func(a, b model.WinEvent) int {
		return cmp.Compare(a.Year, b.Year)
	})
	return events
}
