package voiceprint

import (
	"cmp"
	"context"
	"maps"
	"slices"
	"sync"
)

// MemoryStore is an in-process Store.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]map[string]Enrollment // speaker -> id -> enrollment
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]map[string]Enrollment)}
}

func (s *MemoryStore) Put(_ context.Context, e Enrollment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	byID := s.data[e.Speaker]
	if byID == nil {
		byID = make(map[string]Enrollment)
		s.data[e.Speaker] = byID
	}
	e.Embedding = slices.Clone(e.Embedding)
	byID[e.ID] = e
	return nil
}

func (s *MemoryStore) List(_ context.Context, speaker string) ([]Enrollment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Enrollment
	for name, byID := range s.data {
		if speaker != "" && name != speaker {
			continue
		}
		for _, e := range byID {
			e.Embedding = slices.Clone(e.Embedding)
			out = append(out, e)
		}
	}
	slices.SortFunc(out, func(a, b Enrollment) int {
		return cmp.Or(cmp.Compare(a.Speaker, b.Speaker), cmp.Compare(a.ID, b.ID))
	})
	return out, nil
}

func (s *MemoryStore) Speakers(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Sorted(maps.Keys(s.data)), nil
}

func (s *MemoryStore) DeleteSpeaker(_ context.Context, speaker string) (int, error) {
	if err := checkSpeaker(speaker); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.data[speaker])
	delete(s.data, speaker)
	return n, nil
}

func (s *MemoryStore) Close() error { return nil }
