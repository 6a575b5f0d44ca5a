// Package bus provides in-memory message passing between workers.
// Each worker has a pending-message queue keyed by its ID; reading a
// queue drains it.
package bus

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rainycowork/cowork/pkg/models"
)

// MessageBus is a per-recipient pending-message queue with drain-on-read
// semantics. It is safe for concurrent use.
type MessageBus struct {
	// queues maps worker ID to that worker's pending messages.
	queues map[string][]models.Message
	mu     sync.RWMutex
}

// New creates a new MessageBus with no queues.
func New() *MessageBus {
	return &MessageBus{
		queues: make(map[string][]models.Message),
	}
}

// Send enqueues a point-to-point message for one recipient.
// It fills in the message ID and timestamp and returns the stored message.
func (b *MessageBus) Send(from, to string, msg models.Message) models.Message {
	msg.ID = uuid.New().String()
	msg.From = from
	msg.To = to
	msg.SentAt = time.Now()

	b.mu.Lock()
	defer b.mu.Unlock()
	b.queues[to] = append(b.queues[to], msg)
	return msg
}

// Broadcast enqueues a message for every known queue except the sender's.
// Only workers that have previously received a message or been registered
// via Register have queues.
func (b *MessageBus) Broadcast(from string, msg models.Message) int {
	msg.From = from
	msg.SentAt = time.Now()

	b.mu.Lock()
	defer b.mu.Unlock()

	delivered := 0
	for id := range b.queues {
		if id == from {
			continue
		}
		m := msg
		m.ID = uuid.New().String()
		m.To = id
		b.queues[id] = append(b.queues[id], m)
		delivered++
	}
	return delivered
}

// Register ensures a queue exists for the worker so broadcasts reach it
// before it has received any direct message.
func (b *MessageBus) Register(workerID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.queues[workerID]; !ok {
		b.queues[workerID] = nil
	}
}

// Receive removes and returns all pending messages for a worker.
// After Receive, the worker's queue is empty.
func (b *MessageBus) Receive(workerID string) []models.Message {
	b.mu.Lock()
	defer b.mu.Unlock()

	msgs := b.queues[workerID]
	b.queues[workerID] = nil
	return msgs
}

// PendingCount returns the number of messages waiting for a worker.
func (b *MessageBus) PendingCount(workerID string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.queues[workerID])
}
