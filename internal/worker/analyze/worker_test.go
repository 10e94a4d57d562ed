package analyze

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/tri-star/chase-light-sub003/internal/model"
	"github.com/tri-star/chase-light-sub003/internal/queue"
	"github.com/tri-star/chase-light-sub003/internal/release"
	"github.com/tri-star/chase-light-sub003/internal/summarizer/mocks"
)

func TestWorker_AcksOnSuccess(t *testing.T) {
	ctrl := gomock.NewController(t)
	sum := mocks.NewMockSummarizer(ctrl)
	sum.EXPECT().Analyze(gomock.Any(), gomock.Any()).
		Return([]model.FeedLogItem{{Summary: "ok"}}, nil)

	env := newHandlerEnv(t, &sourceStub{
		release: release.Release{ExternalID: "101", Body: "body"},
	}, sum, nil)

	q := queue.NewMemoryQueue(5, time.Minute)
	worker := NewWorker(q, env.handler, 10, 2)

	ctx := context.Background()
	require.NoError(t, q.Send(ctx, env.logID))
	batch, err := q.Receive(ctx, 10)
	require.NoError(t, err)

	worker.processBatch(ctx, batch)

	require.Equal(t, 0, q.Depth())
	require.Empty(t, q.DeadLetters())

	log, err := env.logs.GetByID(ctx, env.logID)
	require.NoError(t, err)
	require.Equal(t, model.FeedLogStatusDone, log.Status)
}

func TestWorker_AcksAndDropsFatalMessages(t *testing.T) {
	ctrl := gomock.NewController(t)
	env := newHandlerEnv(t, &sourceStub{}, mocks.NewMockSummarizer(ctrl), nil)

	q := queue.NewMemoryQueue(5, time.Minute)
	worker := NewWorker(q, env.handler, 10, 2)

	ctx := context.Background()
	// No feed log exists for this id.
	require.NoError(t, q.Send(ctx, 555555))
	batch, err := q.Receive(ctx, 10)
	require.NoError(t, err)

	worker.processBatch(ctx, batch)

	// Dropped, not redriven.
	require.Equal(t, 0, q.Depth())
	require.Empty(t, q.DeadLetters())
}

func TestWorker_NacksRetryableFailures(t *testing.T) {
	ctrl := gomock.NewController(t)
	sum := mocks.NewMockSummarizer(ctrl)
	sum.EXPECT().Analyze(gomock.Any(), gomock.Any()).
		Return(nil, errors.New("model overloaded"))

	env := newHandlerEnv(t, &sourceStub{
		release: release.Release{ExternalID: "101", Body: "body"},
	}, sum, nil)

	q := queue.NewMemoryQueue(5, time.Minute)
	worker := NewWorker(q, env.handler, 10, 2)

	ctx := context.Background()
	require.NoError(t, q.Send(ctx, env.logID))
	batch, err := q.Receive(ctx, 10)
	require.NoError(t, err)

	worker.processBatch(ctx, batch)

	// Redriven for a later attempt.
	require.Equal(t, 1, q.Depth())

	log, err := env.logs.GetByID(ctx, env.logID)
	require.NoError(t, err)
	require.Equal(t, model.FeedLogStatusError, log.Status)
}
