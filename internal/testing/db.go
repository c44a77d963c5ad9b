// Package testing provides testing utilities and helpers for the yieldrouter project.
package testing

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/aristath/yieldrouter/internal/clientdata"
	"github.com/aristath/yieldrouter/internal/database"
)

// NewTestDB creates a file-backed SQLite database in a temporary directory with
// its embedded schema applied. The database is closed when the test ends.
//
// Supported schema names:
//   - "client_data" - API response cache tables
//   - "strategies" - copy-trading strategies and follows
//   - Unknown names - creates empty database (no schema applied)
func NewTestDB(t *testing.T, name string) *database.DB {
	t.Helper()

	db, err := database.New(database.Config{
		Path:    filepath.Join(t.TempDir(), name+".db"),
		Profile: database.ProfileStandard,
		Name:    name,
	})
	if err != nil {
		t.Fatalf("Failed to create test database %s: %v", name, err)
	}

	if err := db.Migrate(); err != nil {
		_ = db.Close()
		t.Fatalf("Failed to migrate test database %s: %v", name, err)
	}

	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Logf("Warning: Failed to close test database %s: %v", name, err)
		}
	})

	return db
}

// NewClientDataRepo returns a cache repository over a fresh client_data
// database, driven by now when it is non-nil.
func NewClientDataRepo(t *testing.T, now func() time.Time) *clientdata.Repository {
	t.Helper()

	db := NewTestDB(t, database.NameClientData)
	if now == nil {
		return clientdata.NewRepository(db.Conn())
	}
	return clientdata.NewRepository(db.Conn(), clientdata.WithClock(now))
}

// Clock is a manually advanced clock for cache expiry tests.
type Clock struct {
	now time.Time
}

// NewClock creates a clock frozen at start.
func NewClock(start time.Time) *Clock {
	return &Clock{now: start}
}

// Now returns the current frozen time.
func (c *Clock) Now() time.Time {
	return c.now
}

// Advance moves the clock forward by d.
func (c *Clock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}
