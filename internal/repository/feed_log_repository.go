package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tri-star/chase-light-sub003/internal/model"
	"github.com/tri-star/chase-light-sub003/internal/snowflake"
)

type FeedLogRepository interface {
	GetByID(ctx context.Context, id int64) (model.FeedLog, error)
	GetByKey(ctx context.Context, feedID int64, externalKey string) (*model.FeedLog, error)
	// Upsert creates the log in WAIT status or, when (feed_id, external_key)
	// already exists, refreshes the mutable fields without touching status.
	// Returns the stored row and whether it was newly created.
	Upsert(ctx context.Context, log model.FeedLog) (model.FeedLog, bool, error)
	UpdateStatus(ctx context.Context, id int64, status string) error
	ClearItems(ctx context.Context, feedLogID int64) error
	SaveItems(ctx context.Context, feedLogID int64, items []model.FeedLogItem) error
	GetItems(ctx context.Context, feedLogID int64) ([]model.FeedLogItem, error)
	ListPending(ctx context.Context, statuses []string) ([]model.FeedLog, error)
	ListCreatedSince(ctx context.Context, userID int64, since time.Time) ([]model.FeedLog, error)
}

type feedLogRepository struct {
	db dbtx
}

func NewFeedLogRepository(db dbtx) FeedLogRepository {
	return &feedLogRepository{db: db}
}

const feedLogColumns = `id, feed_id, external_key, title, url, body, date, status, created_at, updated_at`

func (r *feedLogRepository) GetByID(ctx context.Context, id int64) (model.FeedLog, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+feedLogColumns+` FROM feed_logs WHERE id = ?`, id)
	return scanFeedLog(row)
}

func (r *feedLogRepository) GetByKey(ctx context.Context, feedID int64, externalKey string) (*model.FeedLog, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+feedLogColumns+` FROM feed_logs WHERE feed_id = ? AND external_key = ?`, feedID, externalKey)
	log, err := scanFeedLog(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find feed log: %w", err)
	}
	return &log, nil
}

func (r *feedLogRepository) Upsert(ctx context.Context, log model.FeedLog) (model.FeedLog, bool, error) {
	existing, err := r.GetByKey(ctx, log.FeedID, log.ExternalKey)
	if err != nil {
		return model.FeedLog{}, false, err
	}

	now := time.Now().UTC()
	if log.Status == "" {
		log.Status = model.FeedLogStatusWait
	}
	_, err = r.db.ExecContext(
		ctx,
		`INSERT INTO feed_logs (id, feed_id, external_key, title, url, body, date, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(feed_id, external_key) DO UPDATE SET
		   title = excluded.title,
		   url = excluded.url,
		   body = excluded.body,
		   date = excluded.date,
		   updated_at = excluded.updated_at`,
		snowflake.NextID(),
		log.FeedID,
		log.ExternalKey,
		log.Title,
		nullableString(log.URL),
		nullableString(log.Body),
		formatTime(log.Date),
		log.Status,
		formatTime(now),
		formatTime(now),
	)
	if err != nil {
		return model.FeedLog{}, false, fmt.Errorf("upsert feed log: %w", err)
	}

	stored, err := r.GetByKey(ctx, log.FeedID, log.ExternalKey)
	if err != nil {
		return model.FeedLog{}, false, err
	}
	if stored == nil {
		return model.FeedLog{}, false, fmt.Errorf("upsert feed log: row not found after write")
	}
	return *stored, existing == nil, nil
}

func (r *feedLogRepository) UpdateStatus(ctx context.Context, id int64, status string) error {
	result, err := r.db.ExecContext(
		ctx,
		`UPDATE feed_logs SET status = ?, updated_at = ? WHERE id = ?`,
		status,
		formatTime(time.Now()),
		id,
	)
	if err != nil {
		return fmt.Errorf("update feed log status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update feed log status: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *feedLogRepository) ClearItems(ctx context.Context, feedLogID int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM feed_log_items WHERE feed_log_id = ?`, feedLogID); err != nil {
		return fmt.Errorf("clear feed log items: %w", err)
	}
	return nil
}

func (r *feedLogRepository) SaveItems(ctx context.Context, feedLogID int64, items []model.FeedLogItem) error {
	now := time.Now().UTC()
	for _, item := range items {
		_, err := r.db.ExecContext(
			ctx,
			`INSERT INTO feed_log_items (id, feed_log_id, summary, link_title, link_url, created_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			snowflake.NextID(),
			feedLogID,
			item.Summary,
			nullableString(item.LinkTitle),
			nullableString(item.LinkURL),
			formatTime(now),
		)
		if err != nil {
			return fmt.Errorf("save feed log item: %w", err)
		}
	}
	return nil
}

func (r *feedLogRepository) GetItems(ctx context.Context, feedLogID int64) ([]model.FeedLogItem, error) {
	rows, err := r.db.QueryContext(
		ctx,
		`SELECT id, feed_log_id, summary, link_title, link_url, created_at
		 FROM feed_log_items WHERE feed_log_id = ? ORDER BY id`,
		feedLogID,
	)
	if err != nil {
		return nil, fmt.Errorf("list feed log items: %w", err)
	}
	defer rows.Close()

	var items []model.FeedLogItem
	for rows.Next() {
		var item model.FeedLogItem
		var linkTitle, linkURL sql.NullString
		var createdAt string
		if err := rows.Scan(&item.ID, &item.FeedLogID, &item.Summary, &linkTitle, &linkURL, &createdAt); err != nil {
			return nil, fmt.Errorf("scan feed log item: %w", err)
		}
		item.LinkTitle = stringPtr(linkTitle)
		item.LinkURL = stringPtr(linkURL)
		item.CreatedAt, err = parseTime(createdAt)
		if err != nil {
			return nil, fmt.Errorf("parse feed log item created_at: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate feed log items: %w", err)
	}
	return items, nil
}

func (r *feedLogRepository) ListPending(ctx context.Context, statuses []string) ([]model.FeedLog, error) {
	if len(statuses) == 0 {
		return nil, nil
	}
	placeholders := strings.Repeat("?,", len(statuses)-1) + "?"
	args := make([]any, len(statuses))
	for i, s := range statuses {
		args[i] = s
	}
	rows, err := r.db.QueryContext(
		ctx,
		`SELECT `+feedLogColumns+` FROM feed_logs WHERE status IN (`+placeholders+`) ORDER BY date ASC`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("list pending feed logs: %w", err)
	}
	defer rows.Close()
	return collectFeedLogs(rows)
}

func (r *feedLogRepository) ListCreatedSince(ctx context.Context, userID int64, since time.Time) ([]model.FeedLog, error) {
	rows, err := r.db.QueryContext(
		ctx,
		`SELECT l.id, l.feed_id, l.external_key, l.title, l.url, l.body, l.date, l.status, l.created_at, l.updated_at
		 FROM feed_logs l
		 INNER JOIN feeds f ON l.feed_id = f.id
		 WHERE f.user_id = ? AND l.created_at > ?
		 ORDER BY l.date ASC`,
		userID,
		formatTime(since),
	)
	if err != nil {
		return nil, fmt.Errorf("list feed logs since: %w", err)
	}
	defer rows.Close()
	return collectFeedLogs(rows)
}

func collectFeedLogs(rows *sql.Rows) ([]model.FeedLog, error) {
	var logs []model.FeedLog
	for rows.Next() {
		log, err := scanFeedLog(rows)
		if err != nil {
			return nil, err
		}
		logs = append(logs, log)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate feed logs: %w", err)
	}
	return logs, nil
}

func scanFeedLog(scanner interface {
	Scan(dest ...any) error
}) (model.FeedLog, error) {
	var log model.FeedLog
	var url, body sql.NullString
	var date, createdAt, updatedAt string
	if err := scanner.Scan(
		&log.ID,
		&log.FeedID,
		&log.ExternalKey,
		&log.Title,
		&url,
		&body,
		&date,
		&log.Status,
		&createdAt,
		&updatedAt,
	); err != nil {
		return model.FeedLog{}, err
	}
	log.URL = stringPtr(url)
	log.Body = stringPtr(body)
	var err error
	log.Date, err = parseTime(date)
	if err != nil {
		return model.FeedLog{}, fmt.Errorf("parse feed log date: %w", err)
	}
	log.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return model.FeedLog{}, fmt.Errorf("parse feed log created_at: %w", err)
	}
	log.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return model.FeedLog{}, fmt.Errorf("parse feed log updated_at: %w", err)
	}
	return log, nil
}
