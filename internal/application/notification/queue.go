// Package notification holds the transient user-visible messages ("toasts")
// produced by the storefront. The browser drains them after each action.
package notification

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Level is the notification severity
type Level string

const (
	LevelSuccess Level = "success"
	LevelInfo    Level = "info"
	LevelError   Level = "error"
)

// DefaultCapacity bounds a queue; the oldest notification is dropped past it
const DefaultCapacity = 50

// Notification is a single transient message
type Notification struct {
	Level     Level     `json:"level"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

// Notifier emits notifications
type Notifier interface {
	Success(message string)
	Info(message string)
	Error(message string)
}

// Queue is a bounded FIFO of notifications for one browser profile
type Queue struct {
	mu       sync.Mutex
	items    []Notification
	capacity int
	logger   *zap.Logger
	now      func() time.Time
}

// NewQueue creates a queue. A capacity <= 0 uses DefaultCapacity.
func NewQueue(capacity int, logger *zap.Logger) *Queue {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Queue{
		capacity: capacity,
		logger:   logger,
		now:      time.Now,
	}
}

// Push appends a notification, dropping the oldest when full
func (q *Queue) Push(level Level, message string) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) >= q.capacity {
		q.items = q.items[1:]
	}
	q.items = append(q.items, Notification{Level: level, Message: message, CreatedAt: q.now()})

	q.logger.Debug("Notification queued",
		zap.String("level", string(level)),
		zap.String("message", message),
	)
}

// Success queues a success notification
func (q *Queue) Success(message string) { q.Push(LevelSuccess, message) }

// Info queues an informational notification
func (q *Queue) Info(message string) { q.Push(LevelInfo, message) }

// Error queues an error notification
func (q *Queue) Error(message string) { q.Push(LevelError, message) }

// Drain returns all queued notifications and empties the queue
func (q *Queue) Drain() []Notification {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := q.items
	q.items = nil
	if out == nil {
		out = []Notification{}
	}
	return out
}

// Len returns the number of pending notifications
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

var _ Notifier = (*Queue)(nil)
