package model

import "time"

// FeedLog status lifecycle: WAIT/ERROR -> IN_PROGRESS -> DONE or ERROR.
// Logs are created in WAIT by the fetch use case and mutated only by the
// analyze worker.
const (
	FeedLogStatusWait       = "WAIT"
	FeedLogStatusInProgress = "IN_PROGRESS"
	FeedLogStatusDone       = "DONE"
	FeedLogStatusError      = "ERROR"
)

type FeedLog struct {
	ID          int64
	FeedID      int64
	ExternalKey string // release ID at the source; unique per feed
	Title       string
	URL         *string
	Body        *string
	Date        time.Time
	Status      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// FeedLogItem is one structured finding produced by analysis. The full set
// for a log is replaced on every analysis attempt.
type FeedLogItem struct {
	ID        int64
	FeedLogID int64
	Summary   string
	LinkTitle *string
	LinkURL   *string
	CreatedAt time.Time
}
