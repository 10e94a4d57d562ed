package model

import "time"

type Feed struct {
	ID        int64
	UserID    int64
	Name      string
	SourceURL string // GitHub repository URL, e.g. https://github.com/golang/go
	PollCycle string
	// Cursor is the publish time of the newest release already recorded.
	// Nil until the first successful fetch. Monotonically non-decreasing.
	Cursor    *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}
