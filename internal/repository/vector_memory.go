package repository

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"aula-rag/internal/models"
)

type memoryNamespace struct {
	dimension int
	entries   []models.VectorEntry
}

// MemoryVectorStore is a brute-force cosine-similarity store with the same
// semantics as VectorRepository. It backs local development and tests, where
// a Postgres instance is not available.
type MemoryVectorStore struct {
	mu         sync.RWMutex
	namespaces map[string]*memoryNamespace
}

func NewMemoryVectorStore() *MemoryVectorStore {
	return &MemoryVectorStore{
		namespaces: make(map[string]*memoryNamespace),
	}
}

func (s *MemoryVectorStore) EnsureNamespace(_ context.Context, namespace string, dimension int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ns, ok := s.namespaces[namespace]; ok {
		if ns.dimension != dimension {
			return fmt.Errorf("%w: namespace %s has dimension %d, got %d", ErrDimensionMismatch, namespace, ns.dimension, dimension)
		}
		return nil
	}
	s.namespaces[namespace] = &memoryNamespace{dimension: dimension}
	return nil
}

func (s *MemoryVectorStore) HasNamespace(_ context.Context, namespace string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.namespaces[namespace]
	return ok, nil
}

func (s *MemoryVectorStore) Replace(_ context.Context, namespace, key string, entries []models.VectorEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ns, ok := s.namespaces[namespace]
	if !ok {
		return fmt.Errorf("namespace %s not initialized", namespace)
	}
	for _, e := range entries {
		if len(e.Embedding) != ns.dimension {
			return fmt.Errorf("%w: namespace %s has dimension %d, got %d", ErrDimensionMismatch, namespace, ns.dimension, len(e.Embedding))
		}
	}

	kept := ns.entries[:0]
	for _, e := range ns.entries {
		if e.Key != key {
			kept = append(kept, e)
		}
	}
	ns.entries = append(kept, entries...)
	return nil
}

func (s *MemoryVectorStore) Search(_ context.Context, namespace string, vector []float32, filters map[string]string, limit int) ([]models.VectorMatch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ns, ok := s.namespaces[namespace]
	if !ok {
		return nil, nil
	}
	if len(vector) != ns.dimension {
		return nil, fmt.Errorf("%w: namespace %s has dimension %d, got %d", ErrDimensionMismatch, namespace, ns.dimension, len(vector))
	}

	var matches []models.VectorMatch
	for _, e := range ns.entries {
		if !matchesFilters(e.Filters, filters) {
			continue
		}
		matches = append(matches, models.VectorMatch{
			Key:     e.Key,
			Content: e.Content,
			Filters: e.Filters,
			Score:   cosineSimilarity(e.Embedding, vector),
		})
	}

	sort.Slice(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

func (s *MemoryVectorStore) DeleteByKey(_ context.Context, namespace, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ns, ok := s.namespaces[namespace]
	if !ok {
		return nil
	}
	kept := ns.entries[:0]
	for _, e := range ns.entries {
		if e.Key != key {
			kept = append(kept, e)
		}
	}
	ns.entries = kept
	return nil
}

func (s *MemoryVectorStore) DeleteNamespace(_ context.Context, namespace string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.namespaces, namespace)
	return nil
}

func matchesFilters(attached, wanted map[string]string) bool {
	for name, value := range wanted {
		if attached[name] != value {
			return false
		}
	}
	return true
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i] * b[i])
		normA += float64(a[i] * a[i])
		normB += float64(b[i] * b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}
