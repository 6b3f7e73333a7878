package reports

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepository keeps reports in process memory for development.
type MemoryRepository struct {
	mu   sync.RWMutex
	docs map[string]Report
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{docs: map[string]Report{}}
}

func (m *MemoryRepository) Create(_ context.Context, rep Report) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[rep.ID] = rep
	return nil
}

func (m *MemoryRepository) Get(_ context.Context, id string) (*Report, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rep, ok := m.docs[id]
	if !ok {
		return nil, nil
	}
	return &rep, nil
}

func (m *MemoryRepository) List(_ context.Context, universityID, kind string) ([]Report, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := []Report{}
	for _, rep := range m.docs {
		if rep.UniversityID == universityID && (kind == "" || rep.Kind == kind) {
			res = append(res, rep)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].UpdatedAt.After(res[j].UpdatedAt) })
	return res, nil
}

func (m *MemoryRepository) Update(_ context.Context, rep Report) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.docs[rep.ID]; !ok {
		return false, nil
	}
	m.docs[rep.ID] = rep
	return true, nil
}

func (m *MemoryRepository) Delete(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.docs[id]; !ok {
		return false, nil
	}
	delete(m.docs, id)
	return true, nil
}
