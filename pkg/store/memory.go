package store

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/seqlab/counterseq/pkg/study"
)

var _ Store = (*Memory)(nil)

// Memory is an in-process store backed by maps. It is safe for concurrent
// use and hands out deep copies, so callers can never mutate stored state.
type Memory struct {
	mu          sync.RWMutex
	studies     map[string]*study.Study
	assignments map[string][]*study.Assignment
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		studies:     make(map[string]*study.Study),
		assignments: make(map[string][]*study.Assignment),
	}
}

func (m *Memory) PutStudy(ctx context.Context, st *study.Study) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.studies[st.ID] = st.Clone()
	return nil
}

func (m *Memory) GetStudy(ctx context.Context, id string) (*study.Study, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	st, ok := m.studies[id]
	if !ok {
		return nil, ErrNotFound
	}
	return st.Clone(), nil
}

func (m *Memory) ListStudies(ctx context.Context) ([]*study.Study, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*study.Study, 0, len(m.studies))
	for _, st := range m.studies {
		out = append(out, st.Clone())
	}
	sortStudies(out)
	return out, nil
}

func (m *Memory) DeleteStudy(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.studies[id]; !ok {
		return ErrNotFound
	}
	delete(m.studies, id)
	delete(m.assignments, id)
	return nil
}

func (m *Memory) PutAssignment(ctx context.Context, a *study.Assignment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.assignments[a.StudyID] = append(m.assignments[a.StudyID], a.Clone())
	return nil
}

func (m *Memory) ListAssignments(ctx context.Context, studyID string) ([]*study.Assignment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	stored := m.assignments[studyID]
	out := make([]*study.Assignment, 0, len(stored))
	for _, a := range stored {
		out = append(out, a.Clone())
	}
	sortAssignments(out)
	return out, nil
}

func (m *Memory) CountAssignments(ctx context.Context, studyID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.assignments[studyID]), nil
}

func (m *Memory) Close() error { return nil }

// sortStudies orders newest first, ID as tie-break for stable output.
func sortStudies(studies []*study.Study) {
	slices.SortFunc(studies, func(a, b *study.Study) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
}

// sortAssignments orders by assignment index.
func sortAssignments(assignments []*study.Assignment) {
	slices.SortFunc(assignments, func(a, b *study.Assignment) int {
		return a.Index - b.Index
	})
}
