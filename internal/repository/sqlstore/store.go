package sqlstore

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// Store holds the typed queries for every aggregate. It keeps no connection of its own:
// callers pass the *gorm.DB to run against, which may be a transaction.
type Store struct{}

// New returns a Store.
func New() *Store {
	return &Store{}
}

// dateRange applies inclusive bounds on column. Bounds are compared in UTC, the zone every
// stored date is written in.
func dateRange(stmt *gorm.DB, column string, from, to *time.Time) *gorm.DB {
	if from != nil {
		stmt = stmt.Where(column+" >= ?", from.UTC())
	}
	if to != nil {
		stmt = stmt.Where(column+" <= ?", to.UTC())
	}
	return stmt
}

func scoped(ctx context.Context, db *gorm.DB) *gorm.DB {
	return db.WithContext(ctx)
}
