package analysis

import (
	"context"
	"sync"
	"time"

	types "github.com/yungbote/toxicity-backend/internal/domain"
	pkgerrors "github.com/yungbote/toxicity-backend/internal/pkg/errors"
)

// JobStore tracks one AnalysisJob per analysis id. Put overwrites any
// previous entry for the same id; Update applies the mutation atomically
// per key so concurrent pollers cannot lose each other's writes.
type JobStore interface {
	Put(ctx context.Context, job *types.AnalysisJob) error
	Get(ctx context.Context, analysisID string) (*types.AnalysisJob, error)
	Update(ctx context.Context, analysisID string, mutate func(*types.AnalysisJob)) (*types.AnalysisJob, error)
}

type memoryStore struct {
	mu   sync.RWMutex
	jobs map[string]*types.AnalysisJob
}

// NewMemoryStore returns a process-lifetime JobStore. Entries do not
// survive a restart; callers retry by issuing a fresh analyze request.
func NewMemoryStore() JobStore {
	return &memoryStore{jobs: make(map[string]*types.AnalysisJob)}
}

func (s *memoryStore) Put(ctx context.Context, job *types.AnalysisJob) error {
	if job == nil || job.AnalysisID == "" {
		return pkgerrors.ErrInvalidArgument
	}
	cp := *job
	cp.UpdatedAt = time.Now().UTC()
	s.mu.Lock()
	s.jobs[cp.AnalysisID] = &cp
	s.mu.Unlock()
	return nil
}

func (s *memoryStore) Get(ctx context.Context, analysisID string) (*types.AnalysisJob, error) {
	s.mu.RLock()
	job, ok := s.jobs[analysisID]
	s.mu.RUnlock()
	if !ok {
		return nil, pkgerrors.ErrNotFound
	}
	cp := *job
	return &cp, nil
}

func (s *memoryStore) Update(ctx context.Context, analysisID string, mutate func(*types.AnalysisJob)) (*types.AnalysisJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[analysisID]
	if !ok {
		return nil, pkgerrors.ErrNotFound
	}
	mutate(job)
	job.UpdatedAt = time.Now().UTC()
	cp := *job
	return &cp, nil
}
