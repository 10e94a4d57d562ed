package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tri-star/chase-light-sub003/internal/github"
	"github.com/tri-star/chase-light-sub003/internal/logger"
	"github.com/tri-star/chase-light-sub003/internal/metrics"
	"github.com/tri-star/chase-light-sub003/internal/model"
	"github.com/tri-star/chase-light-sub003/internal/release"
	"github.com/tri-star/chase-light-sub003/internal/repository"
)

// FeedFetchService advances one feed past its cursor: it discovers releases
// published after the cursor, records them idempotently as WAIT logs, and
// moves the cursor forward. Reruns with an un-advanced cursor are safe
// because log creation is keyed on (feed_id, external_key).
type FeedFetchService interface {
	// Execute returns the logs newly created for the feed.
	Execute(ctx context.Context, feedID int64) ([]model.FeedLog, error)
}

type feedFetchService struct {
	feeds  repository.FeedRepository
	logs   repository.FeedLogRepository
	finder *release.Finder
	limit  int
}

func NewFeedFetchService(
	feeds repository.FeedRepository,
	logs repository.FeedLogRepository,
	finder *release.Finder,
	limit int,
) FeedFetchService {
	if limit <= 0 {
		limit = release.DefaultLimit
	}
	return &feedFetchService{
		feeds:  feeds,
		logs:   logs,
		finder: finder,
		limit:  limit,
	}
}

func (s *feedFetchService) Execute(ctx context.Context, feedID int64) ([]model.FeedLog, error) {
	feed, err := s.feeds.GetByID(ctx, feedID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("feed %d: %w", feedID, ErrNotFound)
		}
		return nil, fmt.Errorf("load feed %d: %w", feedID, err)
	}

	owner, repo, err := github.ParseRepoURL(feed.SourceURL)
	if err != nil {
		return nil, fmt.Errorf("feed %d: %w: %v", feedID, ErrInvalid, err)
	}

	releases, err := s.finder.List(ctx, owner, repo, feed.Cursor, s.limit)
	if err != nil {
		return nil, err
	}

	var created []model.FeedLog
	for _, rel := range releases {
		log := model.FeedLog{
			FeedID:      feed.ID,
			ExternalKey: rel.ExternalID,
			Title:       rel.DisplayName(),
			Date:        rel.PublishedAt,
			Status:      model.FeedLogStatusWait,
		}
		if rel.URL != "" {
			url := rel.URL
			log.URL = &url
		}
		if rel.Body != "" {
			body := rel.Body
			log.Body = &body
		}

		stored, isNew, err := s.logs.Upsert(ctx, log)
		if err != nil {
			return nil, fmt.Errorf("feed %d: %w", feedID, err)
		}
		if isNew {
			created = append(created, stored)
		}
	}

	// The cursor advances last, after all logs are durably written, and
	// never regresses.
	newCursor := maxPublishedAt(feed.Cursor, releases)
	if newCursor != nil && (feed.Cursor == nil || newCursor.After(*feed.Cursor)) {
		if err := s.feeds.UpdateCursor(ctx, feed.ID, *newCursor); err != nil {
			return nil, fmt.Errorf("feed %d: %w", feedID, err)
		}
	}

	metrics.ReleasesDiscovered.Add(float64(len(created)))
	logger.Info("feed fetch completed",
		"module", "service", "action", "fetch", "resource", "feed",
		"feed_id", feed.ID, "releases", len(releases), "created", len(created))

	return created, nil
}

func maxPublishedAt(cursor *time.Time, releases []release.Release) *time.Time {
	max := cursor
	for _, rel := range releases {
		if max == nil || rel.PublishedAt.After(*max) {
			t := rel.PublishedAt
			max = &t
		}
	}
	return max
}
