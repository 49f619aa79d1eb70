package worker

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrJobNotFound is returned for ids the store has never seen or has
// already evicted.
var ErrJobNotFound = errors.New("job not found")

// DefaultStoreSize is the number of jobs a Store keeps.
const DefaultStoreSize = 1024

type record struct {
	completion Completion
	done       chan struct{}
}

// Store keeps job state in memory so clients can poll for results. Once
// full, the oldest finished job is evicted to make room.
type Store struct {
	mu    sync.RWMutex
	jobs  map[string]*record
	order []string
	size  int
}

// NewStore returns a Store holding at most size jobs. A size below one
// uses DefaultStoreSize.
func NewStore(size int) *Store {
	if size < 1 {
		size = DefaultStoreSize
	}
	return &Store{
		jobs: make(map[string]*record),
		size: size,
	}
}

func (s *Store) add(id, key string, textLength int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.evict()
	s.jobs[id] = &record{
		completion: Completion{
			ID:         id,
			Key:        key,
			TextLength: textLength,
			Status:     StatusQueued,
			Submitted:  time.Now(),
		},
		done: make(chan struct{}),
	}
	s.order = append(s.order, id)
}

// remove forgets a job that was never queued.
func (s *Store) remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[id]; !ok {
		return
	}
	delete(s.jobs, id)
	for i, o := range s.order {
		if o == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// evict drops finished jobs, oldest first, until there is room for one
// more. Jobs still queued or running are never dropped. Callers hold mu.
func (s *Store) evict() {
	for i := 0; len(s.jobs) >= s.size && i < len(s.order); {
		id := s.order[i]
		rec, ok := s.jobs[id]
		if ok && !rec.completion.Status.Finished() {
			i++
			continue
		}
		delete(s.jobs, id)
		s.order = append(s.order[:i], s.order[i+1:]...)
	}
}

func (s *Store) setStatus(id string, status Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec, ok := s.jobs[id]; ok {
		rec.completion.Status = status
	}
}

func (s *Store) finish(c Completion) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.jobs[c.ID]
	if !ok || rec.completion.Status.Finished() {
		return
	}
	c.Submitted = rec.completion.Submitted
	rec.completion = c
	close(rec.done)
}

// Get returns the current state of a job.
func (s *Store) Get(id string) (Completion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.jobs[id]
	if !ok {
		return Completion{}, ErrJobNotFound
	}
	return rec.completion, nil
}

// Wait blocks until the job finishes or ctx is done.
func (s *Store) Wait(ctx context.Context, id string) (Completion, error) {
	s.mu.RLock()
	rec, ok := s.jobs[id]
	s.mu.RUnlock()
	if !ok {
		return Completion{}, ErrJobNotFound
	}

	select {
	case <-rec.done:
		return s.Get(id)
	case <-ctx.Done():
		return Completion{}, ctx.Err()
	}
}

// Len returns the number of jobs held.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.jobs)
}
