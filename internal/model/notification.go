package model

import "time"

// Notification is an immutable per-user digest. It is never created empty.
type Notification struct {
	ID        int64
	UserID    int64
	CreatedAt time.Time
	Items     []NotificationItem
}

type NotificationItem struct {
	ID             int64
	NotificationID int64
	FeedLogID      int64
	FeedName       string
	Title          string
}
