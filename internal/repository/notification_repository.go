package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tri-star/chase-light-sub003/internal/model"
	"github.com/tri-star/chase-light-sub003/internal/snowflake"
)

type NotificationRepository interface {
	// Create persists a notification together with its items. Notifications
	// are immutable once created.
	Create(ctx context.Context, notification model.Notification) (model.Notification, error)
	GetByID(ctx context.Context, id int64) (model.Notification, error)
	// LatestCreatedAt returns the creation time of the user's most recent
	// notification, or nil when the user was never notified.
	LatestCreatedAt(ctx context.Context, userID int64) (*time.Time, error)
}

type notificationRepository struct {
	db dbtx
}

func NewNotificationRepository(db dbtx) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, notification model.Notification) (model.Notification, error) {
	if len(notification.Items) == 0 {
		return model.Notification{}, fmt.Errorf("create notification: empty item set")
	}

	notification.ID = snowflake.NextID()
	now := time.Now().UTC()
	_, err := r.db.ExecContext(
		ctx,
		`INSERT INTO notifications (id, user_id, created_at) VALUES (?, ?, ?)`,
		notification.ID,
		notification.UserID,
		formatTime(now),
	)
	if err != nil {
		return model.Notification{}, fmt.Errorf("create notification: %w", err)
	}
	notification.CreatedAt = now

	for i := range notification.Items {
		item := &notification.Items[i]
		item.ID = snowflake.NextID()
		item.NotificationID = notification.ID
		_, err := r.db.ExecContext(
			ctx,
			`INSERT INTO notification_items (id, notification_id, feed_log_id, feed_name, title)
			 VALUES (?, ?, ?, ?, ?)`,
			item.ID,
			item.NotificationID,
			item.FeedLogID,
			item.FeedName,
			item.Title,
		)
		if err != nil {
			return model.Notification{}, fmt.Errorf("create notification item: %w", err)
		}
	}

	return notification, nil
}

func (r *notificationRepository) GetByID(ctx context.Context, id int64) (model.Notification, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, user_id, created_at FROM notifications WHERE id = ?`, id)

	var notification model.Notification
	var createdAt string
	if err := row.Scan(&notification.ID, &notification.UserID, &createdAt); err != nil {
		return model.Notification{}, err
	}
	var err error
	notification.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return model.Notification{}, fmt.Errorf("parse notification created_at: %w", err)
	}

	rows, err := r.db.QueryContext(
		ctx,
		`SELECT id, notification_id, feed_log_id, feed_name, title
		 FROM notification_items WHERE notification_id = ? ORDER BY id`,
		id,
	)
	if err != nil {
		return model.Notification{}, fmt.Errorf("list notification items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item model.NotificationItem
		if err := rows.Scan(&item.ID, &item.NotificationID, &item.FeedLogID, &item.FeedName, &item.Title); err != nil {
			return model.Notification{}, fmt.Errorf("scan notification item: %w", err)
		}
		notification.Items = append(notification.Items, item)
	}
	if err := rows.Err(); err != nil {
		return model.Notification{}, fmt.Errorf("iterate notification items: %w", err)
	}

	return notification, nil
}

func (r *notificationRepository) LatestCreatedAt(ctx context.Context, userID int64) (*time.Time, error) {
	row := r.db.QueryRowContext(
		ctx,
		`SELECT created_at FROM notifications WHERE user_id = ? ORDER BY created_at DESC LIMIT 1`,
		userID,
	)
	var createdAt string
	if err := row.Scan(&createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("latest notification: %w", err)
	}
	t, err := parseTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse notification created_at: %w", err)
	}
	return &t, nil
}
