package queue

import (
	"context"
	"sync"
	"time"

	"github.com/tri-star/chase-light-sub003/internal/logger"
)

const (
	DefaultMaxReceive        = 5
	DefaultVisibilityTimeout = 300 * time.Second
)

type memoryMessage struct {
	Message
	visibleDeadline time.Time
}

// MemoryQueue is an in-process Queue with visibility timeout and
// redrive-to-DLQ semantics.
type MemoryQueue struct {
	mu                sync.Mutex
	ready             []*memoryMessage
	inflight          map[string]*memoryMessage
	dead              []Message
	notify            chan struct{}
	maxReceive        int
	visibilityTimeout time.Duration
}

func NewMemoryQueue(maxReceive int, visibilityTimeout time.Duration) *MemoryQueue {
	if maxReceive <= 0 {
		maxReceive = DefaultMaxReceive
	}
	if visibilityTimeout <= 0 {
		visibilityTimeout = DefaultVisibilityTimeout
	}
	return &MemoryQueue{
		inflight:          make(map[string]*memoryMessage),
		notify:            make(chan struct{}, 1),
		maxReceive:        maxReceive,
		visibilityTimeout: visibilityTimeout,
	}
}

func (q *MemoryQueue) Send(ctx context.Context, feedLogID int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	q.mu.Lock()
	q.ready = append(q.ready, &memoryMessage{
		Message: Message{ID: newMessageID(), FeedLogID: feedLogID},
	})
	q.mu.Unlock()
	q.wake()
	return nil
}

func (q *MemoryQueue) Receive(ctx context.Context, max int) ([]Message, error) {
	if max <= 0 {
		max = 1
	}
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		if batch := q.take(max); len(batch) > 0 {
			return batch, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-q.notify:
		case <-ticker.C:
			// Re-check for expired visibility deadlines.
		}
	}
}

func (q *MemoryQueue) take(max int) []Message {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.reapExpiredLocked()

	var batch []Message
	for len(batch) < max && len(q.ready) > 0 {
		msg := q.ready[0]
		q.ready = q.ready[1:]

		msg.ReceiveCount++
		if msg.ReceiveCount > q.maxReceive {
			q.dead = append(q.dead, msg.Message)
			logger.Warn("message moved to dead-letter queue",
				"module", "queue", "message_id", msg.ID, "feed_log_id", msg.FeedLogID, "receive_count", msg.ReceiveCount)
			continue
		}

		msg.visibleDeadline = time.Now().Add(q.visibilityTimeout)
		q.inflight[msg.ID] = msg
		batch = append(batch, msg.Message)
	}
	return batch
}

func (q *MemoryQueue) Ack(id string) {
	q.mu.Lock()
	delete(q.inflight, id)
	q.mu.Unlock()
}

func (q *MemoryQueue) Nack(id string) {
	q.mu.Lock()
	msg, ok := q.inflight[id]
	if ok {
		delete(q.inflight, id)
		q.ready = append(q.ready, msg)
	}
	q.mu.Unlock()
	if ok {
		q.wake()
	}
}

// DeadLetters returns the messages that exceeded the receive limit.
func (q *MemoryQueue) DeadLetters() []Message {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]Message, len(q.dead))
	copy(out, q.dead)
	return out
}

// Depth returns the number of ready (visible) messages.
func (q *MemoryQueue) Depth() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.ready)
}

// reapExpiredLocked requeues inflight messages whose visibility timeout
// passed without an ack.
func (q *MemoryQueue) reapExpiredLocked() {
	now := time.Now()
	for id, msg := range q.inflight {
		if now.After(msg.visibleDeadline) {
			delete(q.inflight, id)
			q.ready = append(q.ready, msg)
		}
	}
}

func (q *MemoryQueue) wake() {
	select {
	case q.notify <- struct{}{}:
	default:
	}
}
