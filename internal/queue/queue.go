// Package queue provides at-least-once message delivery between the
// pipeline and the analyze worker. Delivery order is not guaranteed and
// duplicates are possible; consumers must be idempotent.
package queue

import (
	"context"

	"github.com/google/uuid"
)

// Message carries one unit of analysis work.
type Message struct {
	ID           string
	FeedLogID    int64
	ReceiveCount int
}

// Queue is the producer/consumer contract. A received message stays
// invisible until it is acked, nacked, or its visibility timeout expires.
// After too many receives the message is moved to the dead-letter queue.
type Queue interface {
	// Send publishes a message for the given feed log.
	Send(ctx context.Context, feedLogID int64) error
	// Receive blocks until at least one message is available or ctx is
	// done, returning at most max messages.
	Receive(ctx context.Context, max int) ([]Message, error)
	// Ack removes a delivered message permanently.
	Ack(id string)
	// Nack returns a delivered message to the queue for redelivery.
	Nack(id string)
}

func newMessageID() string {
	return uuid.NewString()
}
