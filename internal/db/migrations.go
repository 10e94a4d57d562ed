package db

import (
	"database/sql"
	"fmt"
)

// Base schema - uses Snowflake IDs (no AUTOINCREMENT)
const baseSchema = `
CREATE TABLE IF NOT EXISTS users (
  id INTEGER PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS feeds (
  id INTEGER PRIMARY KEY,
  user_id INTEGER NOT NULL,
  name TEXT NOT NULL,
  source_url TEXT NOT NULL,
  poll_cycle TEXT NOT NULL DEFAULT 'daily',
  cursor TEXT,
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL,
  FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_feeds_user_id ON feeds(user_id);

CREATE TABLE IF NOT EXISTS feed_logs (
  id INTEGER PRIMARY KEY,
  feed_id INTEGER NOT NULL,
  external_key TEXT NOT NULL,
  title TEXT NOT NULL,
  url TEXT,
  body TEXT,
  date TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'WAIT',
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL,
  FOREIGN KEY (feed_id) REFERENCES feeds(id) ON DELETE CASCADE
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_feed_logs_feed_key ON feed_logs(feed_id, external_key);
CREATE INDEX IF NOT EXISTS idx_feed_logs_status ON feed_logs(status);
CREATE INDEX IF NOT EXISTS idx_feed_logs_created_at ON feed_logs(created_at);

CREATE TABLE IF NOT EXISTS feed_log_items (
  id INTEGER PRIMARY KEY,
  feed_log_id INTEGER NOT NULL,
  summary TEXT NOT NULL,
  link_title TEXT,
  link_url TEXT,
  created_at TEXT NOT NULL,
  FOREIGN KEY (feed_log_id) REFERENCES feed_logs(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_feed_log_items_log_id ON feed_log_items(feed_log_id);

CREATE TABLE IF NOT EXISTS notifications (
  id INTEGER PRIMARY KEY,
  user_id INTEGER NOT NULL,
  created_at TEXT NOT NULL,
  FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_notifications_user_created ON notifications(user_id, created_at);

CREATE TABLE IF NOT EXISTS notification_items (
  id INTEGER PRIMARY KEY,
  notification_id INTEGER NOT NULL,
  feed_log_id INTEGER NOT NULL,
  feed_name TEXT NOT NULL,
  title TEXT NOT NULL,
  FOREIGN KEY (notification_id) REFERENCES notifications(id) ON DELETE CASCADE,
  FOREIGN KEY (feed_log_id) REFERENCES feed_logs(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_notification_items_notification ON notification_items(notification_id);
`

func Migrate(db *sql.DB) error {
	if _, err := db.Exec(baseSchema); err != nil {
		return fmt.Errorf("migrate base schema: %w", err)
	}
	return nil
}
