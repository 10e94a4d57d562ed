// Package pipeline sequences the update-detection stages as an explicit
// state machine: list feeds, fan out per-feed fetches, enqueue pending
// logs, notify users. Analysis happens asynchronously on the queue; a run
// does not wait for it.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/tri-star/chase-light-sub003/internal/logger"
	"github.com/tri-star/chase-light-sub003/internal/metrics"
	"github.com/tri-star/chase-light-sub003/internal/model"
	"github.com/tri-star/chase-light-sub003/internal/repository"
	"github.com/tri-star/chase-light-sub003/internal/service"
)

type State string

const (
	StateListFeeds                = State("ListFeeds")
	StateCreateFeedLogCollections = State("CreateFeedLogCollections")
	StateEnqueuePendingFeedLog    = State("EnqueuePendingFeedLog")
	StateNotifyUpdate             = State("NotifyUpdate")
	StateEnd                      = State("End")
)

// transitions is the linear stage graph; concurrency exists only inside
// the CreateFeedLogCollections fan-out.
var transitions = map[State]State{
	StateListFeeds:                StateCreateFeedLogCollections,
	StateCreateFeedLogCollections: StateEnqueuePendingFeedLog,
	StateEnqueuePendingFeedLog:    StateNotifyUpdate,
	StateNotifyUpdate:             StateEnd,
}

const DefaultFetchConcurrency = 3

// DefaultRunTimeout is the hard wall-clock bound for one pipeline run.
const DefaultRunTimeout = 10 * time.Minute

// FeedResult is the caught outcome of one feed in the fan-out stage.
type FeedResult struct {
	FeedID  int64
	Created []model.FeedLog
	Err     error
}

// Result summarizes one pipeline run.
type Result struct {
	StartedAt   time.Time
	FinishedAt  time.Time
	FeedResults []FeedResult
}

// FailedFeeds returns the results whose fetch failed.
func (r *Result) FailedFeeds() []FeedResult {
	var failed []FeedResult
	for _, fr := range r.FeedResults {
		if fr.Err != nil {
			failed = append(failed, fr)
		}
	}
	return failed
}

type Pipeline struct {
	feeds       repository.FeedRepository
	fetch       service.FeedFetchService
	enqueue     service.EnqueueService
	notify      service.NotificationService
	concurrency int
	timeout     time.Duration
}

func New(
	feeds repository.FeedRepository,
	fetch service.FeedFetchService,
	enqueue service.EnqueueService,
	notify service.NotificationService,
	concurrency int,
) *Pipeline {
	if concurrency <= 0 {
		concurrency = DefaultFetchConcurrency
	}
	return &Pipeline{
		feeds:       feeds,
		fetch:       fetch,
		enqueue:     enqueue,
		notify:      notify,
		concurrency: concurrency,
		timeout:     DefaultRunTimeout,
	}
}

// Run drives the state machine from ListFeeds to End. A stage error aborts
// the run; a per-feed error inside the fan-out stage is caught and recorded
// in the result instead.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	result := &Result{StartedAt: time.Now().UTC()}
	defer func() {
		result.FinishedAt = time.Now().UTC()
		metrics.PipelineDuration.Observe(result.FinishedAt.Sub(result.StartedAt).Seconds())
	}()

	var feedIDs []int64
	state := StateListFeeds
	for state != StateEnd {
		var err error
		switch state {
		case StateListFeeds:
			feedIDs, err = p.feeds.ListIDs(ctx)
		case StateCreateFeedLogCollections:
			result.FeedResults = p.fetchFeeds(ctx, feedIDs)
		case StateEnqueuePendingFeedLog:
			err = p.enqueue.Run(ctx)
		case StateNotifyUpdate:
			err = p.notify.Run(ctx)
		default:
			err = fmt.Errorf("unknown pipeline state %q", state)
		}
		if err != nil {
			metrics.PipelineRuns.WithLabelValues("failed").Inc()
			return result, fmt.Errorf("pipeline stage %s: %w", state, err)
		}
		state = transitions[state]
	}

	metrics.PipelineRuns.WithLabelValues("ok").Inc()
	logger.Info("pipeline run completed",
		"module", "pipeline", "feeds", len(feedIDs), "failed_feeds", len(result.FailedFeeds()))
	return result, nil
}

func (p *Pipeline) fetchFeeds(ctx context.Context, feedIDs []int64) []FeedResult {
	fanned := FanOut(ctx, feedIDs, p.concurrency, func(ctx context.Context, feedID int64) ([]model.FeedLog, error) {
		return p.fetch.Execute(ctx, feedID)
	})

	results := make([]FeedResult, len(fanned))
	for i, fr := range fanned {
		results[i] = FeedResult{FeedID: fr.Item, Created: fr.Value, Err: fr.Err}
		if fr.Err != nil {
			metrics.FeedFetchFailures.Inc()
			logger.Error("feed fetch failed",
				"module", "pipeline", "feed_id", fr.Item, "error", fr.Err)
		}
	}
	return results
}
