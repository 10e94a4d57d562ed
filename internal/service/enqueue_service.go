package service

import (
	"context"
	"fmt"

	"github.com/tri-star/chase-light-sub003/internal/logger"
	"github.com/tri-star/chase-light-sub003/internal/model"
	"github.com/tri-star/chase-light-sub003/internal/queue"
	"github.com/tri-star/chase-light-sub003/internal/repository"
)

// EnqueueService publishes one queue message per undelivered feed log.
// Running it again before analysis completes may emit duplicates; the
// analyze worker tolerates them.
type EnqueueService interface {
	Run(ctx context.Context) error
}

type enqueueService struct {
	logs  repository.FeedLogRepository
	queue queue.Queue
}

func NewEnqueueService(logs repository.FeedLogRepository, q queue.Queue) EnqueueService {
	return &enqueueService{logs: logs, queue: q}
}

func (s *enqueueService) Run(ctx context.Context) error {
	pending, err := s.logs.ListPending(ctx, []string{model.FeedLogStatusWait, model.FeedLogStatusError})
	if err != nil {
		return fmt.Errorf("list pending logs: %w", err)
	}

	enqueued := 0
	for _, log := range pending {
		if err := s.queue.Send(ctx, log.ID); err != nil {
			return fmt.Errorf("enqueue log %d: %w", log.ID, err)
		}
		enqueued++
	}

	logger.Info("pending logs enqueued",
		"module", "service", "action", "enqueue", "resource", "feed_log", "count", enqueued)
	return nil
}
