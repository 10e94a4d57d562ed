// Package testutil provides helpers for repository tests backed by an
// in-memory sqlite database.
package testutil

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/tri-star/chase-light-sub003/internal/db"
	"github.com/tri-star/chase-light-sub003/internal/model"
	"github.com/tri-star/chase-light-sub003/internal/repository"
	"github.com/tri-star/chase-light-sub003/internal/snowflake"
)

var initOnce sync.Once

// NewTestDB opens an isolated in-memory database with the full schema
// applied. The connection is closed when the test finishes.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()

	initOnce.Do(func() {
		if err := snowflake.Init(1); err != nil {
			t.Fatalf("init snowflake: %v", err)
		}
	})

	conn, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	// In-memory sqlite loses the schema when the pool opens a second
	// connection.
	conn.SetMaxOpenConns(1)
	if _, err := conn.Exec("PRAGMA foreign_keys = ON;"); err != nil {
		t.Fatalf("enable foreign keys: %v", err)
	}
	if err := db.Migrate(conn); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func SeedUser(t *testing.T, conn *sql.DB, email string) int64 {
	t.Helper()
	user, err := repository.NewUserRepository(conn).Create(context.Background(), model.User{
		Email: email,
		Name:  email,
	})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user.ID
}

func SeedFeed(t *testing.T, conn *sql.DB, feed model.Feed) int64 {
	t.Helper()
	if feed.UserID == 0 {
		feed.UserID = SeedUser(t, conn, "seed-"+feed.Name+"@example.com")
	}
	created, err := repository.NewFeedRepository(conn).Create(context.Background(), feed)
	if err != nil {
		t.Fatalf("seed feed: %v", err)
	}
	return created.ID
}

func SeedFeedLog(t *testing.T, conn *sql.DB, log model.FeedLog) int64 {
	t.Helper()
	if log.Date.IsZero() {
		log.Date = time.Now().UTC()
	}
	stored, _, err := repository.NewFeedLogRepository(conn).Upsert(context.Background(), log)
	if err != nil {
		t.Fatalf("seed feed log: %v", err)
	}
	return stored.ID
}
