package pipeline_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tri-star/chase-light-sub003/internal/model"
	"github.com/tri-star/chase-light-sub003/internal/pipeline"
)

type feedRepoStub struct {
	ids     []int64
	listErr error
}

func (s *feedRepoStub) Create(ctx context.Context, feed model.Feed) (model.Feed, error) {
	return feed, nil
}

func (s *feedRepoStub) GetByID(ctx context.Context, id int64) (model.Feed, error) {
	return model.Feed{ID: id}, nil
}

func (s *feedRepoStub) ListIDs(ctx context.Context) ([]int64, error) {
	return s.ids, s.listErr
}

func (s *feedRepoStub) ListByUser(ctx context.Context, userID int64) ([]model.Feed, error) {
	return nil, nil
}

func (s *feedRepoStub) UpdateCursor(ctx context.Context, id int64, cursor time.Time) error {
	return nil
}

type fetchStub struct {
	mu      sync.Mutex
	fetched []int64
	failOn  int64
	failErr error
}

func (s *fetchStub) Execute(ctx context.Context, feedID int64) ([]model.FeedLog, error) {
	s.mu.Lock()
	s.fetched = append(s.fetched, feedID)
	s.mu.Unlock()
	if feedID == s.failOn && s.failErr != nil {
		return nil, s.failErr
	}
	return []model.FeedLog{{FeedID: feedID}}, nil
}

type runStub struct {
	calls int
	err   error
}

func (s *runStub) Run(ctx context.Context) error {
	s.calls++
	return s.err
}

func TestPipeline_RunsAllStagesInOrder(t *testing.T) {
	fetch := &fetchStub{}
	enqueue := &runStub{}
	notify := &runStub{}

	p := pipeline.New(&feedRepoStub{ids: []int64{1, 2}}, fetch, enqueue, notify, 2)

	result, err := p.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, result.FeedResults, 2)
	require.Len(t, fetch.fetched, 2)
	require.Equal(t, 1, enqueue.calls)
	require.Equal(t, 1, notify.calls)
	require.Empty(t, result.FailedFeeds())
	require.False(t, result.FinishedAt.Before(result.StartedAt))
}

func TestPipeline_FeedFailureDoesNotAbortRun(t *testing.T) {
	fetch := &fetchStub{failOn: 2, failErr: errors.New("rate limited")}
	enqueue := &runStub{}
	notify := &runStub{}

	p := pipeline.New(&feedRepoStub{ids: []int64{1, 2, 3}}, fetch, enqueue, notify, 2)

	result, err := p.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, result.FeedResults, 3)

	failed := result.FailedFeeds()
	require.Len(t, failed, 1)
	require.Equal(t, int64(2), failed[0].FeedID)

	// Later stages still ran.
	require.Equal(t, 1, enqueue.calls)
	require.Equal(t, 1, notify.calls)
}

func TestPipeline_StageErrorAbortsRun(t *testing.T) {
	fetch := &fetchStub{}
	enqueueErr := errors.New("queue unavailable")
	enqueue := &runStub{err: enqueueErr}
	notify := &runStub{}

	p := pipeline.New(&feedRepoStub{ids: []int64{1}}, fetch, enqueue, notify, 2)

	_, err := p.Run(context.Background())
	require.ErrorIs(t, err, enqueueErr)
	require.Equal(t, 0, notify.calls)
}

func TestPipeline_ListFeedsErrorAbortsRun(t *testing.T) {
	listErr := errors.New("db closed")
	fetch := &fetchStub{}
	enqueue := &runStub{}
	notify := &runStub{}

	p := pipeline.New(&feedRepoStub{listErr: listErr}, fetch, enqueue, notify, 2)

	_, err := p.Run(context.Background())
	require.ErrorIs(t, err, listErr)
	require.Empty(t, fetch.fetched)
	require.Equal(t, 0, enqueue.calls)
	require.Equal(t, 0, notify.calls)
}

func TestPipeline_NoFeedsStillNotifies(t *testing.T) {
	fetch := &fetchStub{}
	enqueue := &runStub{}
	notify := &runStub{}

	p := pipeline.New(&feedRepoStub{}, fetch, enqueue, notify, 2)

	result, err := p.Run(context.Background())
	require.NoError(t, err)
	require.Empty(t, result.FeedResults)
	require.Equal(t, 1, enqueue.calls)
	require.Equal(t, 1, notify.calls)
}
