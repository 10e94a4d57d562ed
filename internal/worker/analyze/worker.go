// Package analyze consumes analysis messages and summarizes release bodies
// into feed log items.
package analyze

import (
	"context"
	"errors"
	"sync"

	"github.com/tri-star/chase-light-sub003/internal/logger"
	"github.com/tri-star/chase-light-sub003/internal/metrics"
	"github.com/tri-star/chase-light-sub003/internal/queue"
)

const (
	DefaultBatchSize   = 10
	DefaultConcurrency = 3
)

// Worker pulls message batches from the queue and handles them with bounded
// concurrency. Acknowledgement is decided from the handler result: fatal
// errors ack (drop), retryable errors nack (redrive).
type Worker struct {
	queue       queue.Queue
	handler     *Handler
	batchSize   int
	concurrency int

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewWorker(q queue.Queue, handler *Handler, batchSize, concurrency int) *Worker {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Worker{
		queue:       q,
		handler:     handler,
		batchSize:   batchSize,
		concurrency: concurrency,
	}
}

func (w *Worker) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel
	w.wg.Add(1)
	go w.run(ctx)
	logger.Info("analyze worker started",
		"module", "worker", "batch_size", w.batchSize, "concurrency", w.concurrency)
}

func (w *Worker) Stop() {
	w.cancel()
	w.wg.Wait()
	logger.Info("analyze worker stopped", "module", "worker")
}

func (w *Worker) run(ctx context.Context) {
	defer w.wg.Done()

	for {
		batch, err := w.queue.Receive(ctx, w.batchSize)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			logger.Error("queue receive failed", "module", "worker", "error", err)
			continue
		}
		w.processBatch(ctx, batch)
	}
}

func (w *Worker) processBatch(ctx context.Context, batch []queue.Message) {
	var wg sync.WaitGroup
	sem := make(chan struct{}, w.concurrency)

	for _, msg := range batch {
		wg.Add(1)

		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			// Unprocessed messages reappear after the visibility timeout.
			wg.Done()
			wg.Wait()
			return
		}

		go func(msg queue.Message) {
			defer wg.Done()
			defer func() { <-sem }()
			w.processMessage(ctx, msg)
		}(msg)
	}

	wg.Wait()
}

func (w *Worker) processMessage(ctx context.Context, msg queue.Message) {
	err := w.handler.Handle(ctx, msg.FeedLogID)
	switch {
	case err == nil:
		w.queue.Ack(msg.ID)
		metrics.AnalyzeProcessed.WithLabelValues("done").Inc()
	case IsFatal(err):
		w.queue.Ack(msg.ID)
		metrics.AnalyzeProcessed.WithLabelValues("dropped").Inc()
		logger.Warn("analysis message dropped",
			"module", "worker", "message_id", msg.ID, "feed_log_id", msg.FeedLogID, "error", err)
	default:
		w.queue.Nack(msg.ID)
		metrics.AnalyzeProcessed.WithLabelValues("retried").Inc()
		logger.Error("analysis failed, message redriven",
			"module", "worker", "message_id", msg.ID, "feed_log_id", msg.FeedLogID,
			"receive_count", msg.ReceiveCount, "error", err)
	}
}
