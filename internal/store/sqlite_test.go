package store

import (
	"testing"

	"github.com/feral-file/ff-projector/internal/store/storetest"
)

// TestSQLiteStore runs all store tests against an in-memory SQLite database
func TestSQLiteStore(t *testing.T) {
	RunStoreTests(t, func(t *testing.T) Store {
		return NewGormStore(storetest.NewSQLite(t))
	})
}
