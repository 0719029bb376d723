// Package jobs runs background work (scenario calculation, receipt OCR and
// tax card parsing) off the request path.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrQueueClosed is returned by Dequeue after Close.
var ErrQueueClosed = errors.New("queue closed")

// Queue hands job IDs from the API to workers.
type Queue interface {
	Enqueue(ctx context.Context, jobID string) error
	// Dequeue blocks until a job ID is available, ctx is done or the queue closes.
	Dequeue(ctx context.Context) (string, error)
	Close() error
}

// MemoryQueue is a buffered channel queue for a single process. After Close,
// Enqueue fails and Dequeue keeps handing out buffered IDs until none are left.
type MemoryQueue struct {
	ch chan string

	mu       sync.RWMutex
	stopping chan struct{} // wakes Enqueue calls blocked on a full buffer
	done     chan struct{} // closed once no further Enqueue can succeed
	once     sync.Once
}

// NewMemoryQueue creates a queue holding up to size pending IDs.
func NewMemoryQueue(size int) *MemoryQueue {
	if size <= 0 {
		size = 100
	}
	return &MemoryQueue{
		ch:       make(chan string, size),
		stopping: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

var _ Queue = (*MemoryQueue)(nil)

func (q *MemoryQueue) Enqueue(ctx context.Context, jobID string) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	select {
	case <-q.stopping:
		return ErrQueueClosed
	default:
	}
	select {
	case q.ch <- jobID:
		return nil
	case <-q.stopping:
		return ErrQueueClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *MemoryQueue) Dequeue(ctx context.Context) (string, error) {
	select {
	case id := <-q.ch:
		return id, nil
	case <-q.done:
		select {
		case id := <-q.ch:
			return id, nil
		default:
			return "", ErrQueueClosed
		}
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Len reports the number of buffered IDs.
func (q *MemoryQueue) Len() int {
	return len(q.ch)
}

// Close stops accepting IDs. Buffered IDs stay available to Dequeue.
func (q *MemoryQueue) Close() error {
	q.once.Do(func() {
		close(q.stopping)
		q.mu.Lock()
		close(q.done)
		q.mu.Unlock()
	})
	return nil
}

// RedisQueue is a Redis list shared by several server instances.
// Close stops local workers from popping further IDs; the list and the client
// are left alone so other instances keep serving it.
type RedisQueue struct {
	client      *redis.Client
	key         string
	pollTimeout time.Duration

	done chan struct{}
	once sync.Once
}

// NewRedisQueue pushes to and pops from the list at key.
func NewRedisQueue(client *redis.Client, key string) *RedisQueue {
	return &RedisQueue{
		client:      client,
		key:         key,
		pollTimeout: 5 * time.Second,
		done:        make(chan struct{}),
	}
}

var _ Queue = (*RedisQueue)(nil)

func (q *RedisQueue) Enqueue(ctx context.Context, jobID string) error {
	if err := q.client.LPush(ctx, q.key, jobID).Err(); err != nil {
		return fmt.Errorf("enqueue %s: %w", jobID, err)
	}
	return nil
}

func (q *RedisQueue) Dequeue(ctx context.Context) (string, error) {
	for {
		select {
		case <-q.done:
			return "", ErrQueueClosed
		default:
		}
		res, err := q.client.BRPop(ctx, q.pollTimeout, q.key).Result()
		switch {
		case err == nil:
			// BRPOP returns [key, value]
			return res[1], nil
		case errors.Is(err, redis.Nil):
			// poll timeout, check ctx and wait again
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
		case errors.Is(err, redis.ErrClosed):
			return "", ErrQueueClosed
		default:
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			return "", fmt.Errorf("dequeue: %w", err)
		}
	}
}

func (q *RedisQueue) Close() error {
	q.once.Do(func() { close(q.done) })
	return nil
}
