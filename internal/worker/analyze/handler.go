package analyze

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/tri-star/chase-light-sub003/internal/github"
	"github.com/tri-star/chase-light-sub003/internal/model"
	"github.com/tri-star/chase-light-sub003/internal/release"
	"github.com/tri-star/chase-light-sub003/internal/repository"
	"github.com/tri-star/chase-light-sub003/internal/service"
	"github.com/tri-star/chase-light-sub003/internal/summarizer"
)

// Handler processes one analysis message. Redelivery after a partial
// failure is safe: every attempt clears prior items before recomputing, and
// the DONE status plus the saved item set is the only state other consumers
// observe.
type Handler struct {
	feeds      repository.FeedRepository
	logs       repository.FeedLogRepository
	source     release.Source
	summarizer summarizer.Summarizer
}

func NewHandler(
	feeds repository.FeedRepository,
	logs repository.FeedLogRepository,
	source release.Source,
	sum summarizer.Summarizer,
) *Handler {
	return &Handler{
		feeds:      feeds,
		logs:       logs,
		source:     source,
		summarizer: sum,
	}
}

// IsFatal reports whether the error must not be redriven. Fatal errors are
// acked and dropped; everything else relies on the queue redrive policy.
func IsFatal(err error) bool {
	return errors.Is(err, service.ErrNotFound) || errors.Is(err, service.ErrInvalid)
}

func (h *Handler) Handle(ctx context.Context, feedLogID int64) error {
	log, err := h.logs.GetByID(ctx, feedLogID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("feed log %d: %w", feedLogID, service.ErrNotFound)
		}
		return fmt.Errorf("load feed log %d: %w", feedLogID, err)
	}

	if err := h.logs.UpdateStatus(ctx, log.ID, model.FeedLogStatusInProgress); err != nil {
		return fmt.Errorf("feed log %d: %w", log.ID, err)
	}
	if err := h.logs.ClearItems(ctx, log.ID); err != nil {
		return fmt.Errorf("feed log %d: %w", log.ID, err)
	}

	body, err := h.fetchBody(ctx, log)
	if err != nil {
		return h.fail(ctx, log.ID, err)
	}

	items, err := h.summarizer.Analyze(ctx, body)
	if err != nil {
		return h.fail(ctx, log.ID, err)
	}

	if err := h.logs.SaveItems(ctx, log.ID, items); err != nil {
		return h.fail(ctx, log.ID, err)
	}
	if err := h.logs.UpdateStatus(ctx, log.ID, model.FeedLogStatusDone); err != nil {
		return fmt.Errorf("feed log %d: %w", log.ID, err)
	}
	return nil
}

// fetchBody loads the release body from the source at analysis time, so a
// redelivered message always summarizes the current content.
func (h *Handler) fetchBody(ctx context.Context, log model.FeedLog) (string, error) {
	feed, err := h.feeds.GetByID(ctx, log.FeedID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("feed %d: %w", log.FeedID, service.ErrNotFound)
		}
		return "", fmt.Errorf("load feed %d: %w", log.FeedID, err)
	}

	owner, repo, err := github.ParseRepoURL(feed.SourceURL)
	if err != nil {
		return "", fmt.Errorf("feed %d: %w: %v", feed.ID, service.ErrInvalid, err)
	}

	rel, err := h.source.GetRelease(ctx, owner, repo, log.ExternalKey)
	if err != nil {
		if errors.Is(err, github.ErrSourceNotFound) {
			// The release vanished at the source; fall back to the body
			// captured at fetch time.
			if log.Body != nil {
				return *log.Body, nil
			}
			return "", fmt.Errorf("release %s: %w", log.ExternalKey, service.ErrNotFound)
		}
		return "", fmt.Errorf("fetch release %s: %w", log.ExternalKey, err)
	}
	return rel.Body, nil
}

// fail marks the log ERROR so the enqueuer can pick it up again, then
// returns the original error for the redrive decision. Fatal errors skip
// the ERROR status: they will never succeed, so the log must not be
// re-enqueued forever.
func (h *Handler) fail(ctx context.Context, feedLogID int64, cause error) error {
	if IsFatal(cause) {
		return cause
	}
	if err := h.logs.UpdateStatus(ctx, feedLogID, model.FeedLogStatusError); err != nil {
		return fmt.Errorf("mark feed log %d error (after %v): %w", feedLogID, cause, err)
	}
	return cause
}
