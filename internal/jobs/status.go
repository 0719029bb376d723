package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/castlemilk/taxpilot/backend/internal/domain"
	"github.com/redis/go-redis/v9"
)

// ErrJobNotFound is returned for unknown or expired job IDs.
var ErrJobNotFound = errors.New("job not found")

// StatusStore tracks job state. Entries expire after a TTL.
type StatusStore interface {
	Create(ctx context.Context, job *domain.Job) error
	Get(ctx context.Context, id string) (*domain.Job, error)
	Update(ctx context.Context, job *domain.Job) error
}

// MemoryStatusStore keeps jobs in memory with background cleanup.
type MemoryStatusStore struct {
	mu   sync.RWMutex
	jobs map[string]*domain.Job
	ttl  time.Duration
	now  func() time.Time
	done chan struct{}
	once sync.Once
}

// NewMemoryStatusStore creates a status store and starts its cleanup loop.
// Call Stop to end it.
func NewMemoryStatusStore(ttl time.Duration) *MemoryStatusStore {
	s := &MemoryStatusStore{
		jobs: make(map[string]*domain.Job),
		ttl:  ttl,
		now:  time.Now,
		done: make(chan struct{}),
	}
	go s.cleanupLoop(5 * time.Minute)
	return s
}

var _ StatusStore = (*MemoryStatusStore)(nil)

func (s *MemoryStatusStore) Create(ctx context.Context, job *domain.Job) error {
	if job.ID == "" {
		return fmt.Errorf("job ID is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[job.ID]; ok {
		return fmt.Errorf("job %s already exists", job.ID)
	}
	cp := *job
	s.jobs[job.ID] = &cp
	return nil
}

func (s *MemoryStatusStore) Get(ctx context.Context, id string) (*domain.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", id, ErrJobNotFound)
	}
	cp := *job
	return &cp, nil
}

func (s *MemoryStatusStore) Update(ctx context.Context, job *domain.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[job.ID]; !ok {
		return fmt.Errorf("%s: %w", job.ID, ErrJobNotFound)
	}
	cp := *job
	s.jobs[job.ID] = &cp
	return nil
}

// Stop ends the cleanup loop. It is safe to call more than once.
func (s *MemoryStatusStore) Stop() {
	s.once.Do(func() { close(s.done) })
}

func (s *MemoryStatusStore) cleanupLoop(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.expire()
		}
	}
}

// expire drops jobs created more than ttl ago.
func (s *MemoryStatusStore) expire() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	removed := 0
	for id, job := range s.jobs {
		if now.Sub(job.CreatedAt) > s.ttl {
			delete(s.jobs, id)
			removed++
		}
	}
	return removed
}

// RedisStatusStore keeps jobs as JSON strings with a Redis TTL.
type RedisStatusStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStatusStore stores jobs under prefix+id.
func NewRedisStatusStore(client *redis.Client, prefix string, ttl time.Duration) *RedisStatusStore {
	return &RedisStatusStore{client: client, prefix: prefix, ttl: ttl}
}

var _ StatusStore = (*RedisStatusStore)(nil)

func (s *RedisStatusStore) Create(ctx context.Context, job *domain.Job) error {
	if job.ID == "" {
		return fmt.Errorf("job ID is required")
	}
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("encode job: %w", err)
	}
	ok, err := s.client.SetNX(ctx, s.prefix+job.ID, payload, s.ttl).Result()
	if err != nil {
		return fmt.Errorf("create job %s: %w", job.ID, err)
	}
	if !ok {
		return fmt.Errorf("job %s already exists", job.ID)
	}
	return nil
}

func (s *RedisStatusStore) Get(ctx context.Context, id string) (*domain.Job, error) {
	payload, err := s.client.Get(ctx, s.prefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%s: %w", id, ErrJobNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get job %s: %w", id, err)
	}
	var job domain.Job
	if err := json.Unmarshal(payload, &job); err != nil {
		return nil, fmt.Errorf("decode job %s: %w", id, err)
	}
	return &job, nil
}

// Update overwrites the job and keeps its remaining TTL.
func (s *RedisStatusStore) Update(ctx context.Context, job *domain.Job) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("encode job: %w", err)
	}
	ok, err := s.client.SetArgs(ctx, s.prefix+job.ID, payload, redis.SetArgs{Mode: "XX", KeepTTL: true}).Result()
	if errors.Is(err, redis.Nil) || (err == nil && ok != "OK") {
		return fmt.Errorf("%s: %w", job.ID, ErrJobNotFound)
	}
	if err != nil {
		return fmt.Errorf("update job %s: %w", job.ID, err)
	}
	return nil
}
