package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tri-star/chase-light-sub003/internal/model"
	"github.com/tri-star/chase-light-sub003/internal/snowflake"
)

type FeedRepository interface {
	Create(ctx context.Context, feed model.Feed) (model.Feed, error)
	GetByID(ctx context.Context, id int64) (model.Feed, error)
	ListIDs(ctx context.Context) ([]int64, error)
	ListByUser(ctx context.Context, userID int64) ([]model.Feed, error)
	// UpdateCursor persists the cursor for a feed. Callers guarantee the new
	// cursor never regresses; the repository just stores it.
	UpdateCursor(ctx context.Context, id int64, cursor time.Time) error
}

type feedRepository struct {
	db dbtx
}

func NewFeedRepository(db dbtx) FeedRepository {
	return &feedRepository{db: db}
}

func (r *feedRepository) Create(ctx context.Context, feed model.Feed) (model.Feed, error) {
	feed.ID = snowflake.NextID()
	now := time.Now().UTC()
	if feed.PollCycle == "" {
		feed.PollCycle = "daily"
	}
	_, err := r.db.ExecContext(
		ctx,
		`INSERT INTO feeds (id, user_id, name, source_url, poll_cycle, cursor, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		feed.ID,
		feed.UserID,
		feed.Name,
		feed.SourceURL,
		feed.PollCycle,
		formatTimePtr(feed.Cursor),
		formatTime(now),
		formatTime(now),
	)
	if err != nil {
		return model.Feed{}, fmt.Errorf("create feed: %w", err)
	}
	feed.CreatedAt = now
	feed.UpdatedAt = now
	return feed, nil
}

func (r *feedRepository) GetByID(ctx context.Context, id int64) (model.Feed, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, user_id, name, source_url, poll_cycle, cursor, created_at, updated_at FROM feeds WHERE id = ?`, id)
	return scanFeed(row)
}

func (r *feedRepository) ListIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id FROM feeds ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list feed ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan feed id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate feed ids: %w", err)
	}
	return ids, nil
}

func (r *feedRepository) ListByUser(ctx context.Context, userID int64) ([]model.Feed, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, user_id, name, source_url, poll_cycle, cursor, created_at, updated_at FROM feeds WHERE user_id = ? ORDER BY name`, userID)
	if err != nil {
		return nil, fmt.Errorf("list feeds: %w", err)
	}
	defer rows.Close()

	var feeds []model.Feed
	for rows.Next() {
		feed, err := scanFeed(rows)
		if err != nil {
			return nil, err
		}
		feeds = append(feeds, feed)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate feeds: %w", err)
	}
	return feeds, nil
}

func (r *feedRepository) UpdateCursor(ctx context.Context, id int64, cursor time.Time) error {
	_, err := r.db.ExecContext(
		ctx,
		`UPDATE feeds SET cursor = ?, updated_at = ? WHERE id = ?`,
		formatTime(cursor),
		formatTime(time.Now()),
		id,
	)
	if err != nil {
		return fmt.Errorf("update feed cursor: %w", err)
	}
	return nil
}

func scanFeed(scanner interface {
	Scan(dest ...any) error
}) (model.Feed, error) {
	var feed model.Feed
	var cursor sql.NullString
	var createdAt string
	var updatedAt string
	if err := scanner.Scan(
		&feed.ID,
		&feed.UserID,
		&feed.Name,
		&feed.SourceURL,
		&feed.PollCycle,
		&cursor,
		&createdAt,
		&updatedAt,
	); err != nil {
		return model.Feed{}, err
	}
	if cursor.Valid && cursor.String != "" {
		t, err := parseTime(cursor.String)
		if err != nil {
			return model.Feed{}, fmt.Errorf("parse feed cursor: %w", err)
		}
		feed.Cursor = &t
	}
	var err error
	feed.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return model.Feed{}, fmt.Errorf("parse feed created_at: %w", err)
	}
	feed.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return model.Feed{}, fmt.Errorf("parse feed updated_at: %w", err)
	}
	return feed, nil
}
