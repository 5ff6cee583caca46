package pathstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// MemoryStore is an in-process Store used by unit tests and the mock
// provider. Documents are held as marshaled JSON so Get/Set round-trip the
// same way the postgres store does.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]json.RawMessage
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string]json.RawMessage)}
}

func (s *MemoryStore) Get(ctx context.Context, path string, dest any) error {
	s.mu.RLock()
	raw, ok := s.docs[path]
	s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("Get %s: %w", path, ErrPathNotFound)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("Get %s: %w", path, err)
	}
	return nil
}

func (s *MemoryStore) Set(ctx context.Context, path string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("Set %s: %w", path, err)
	}
	s.mu.Lock()
	s.docs[path] = raw
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) SetIfAbsent(ctx context.Context, path string, value any) (bool, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return false, fmt.Errorf("SetIfAbsent %s: %w", path, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.docs[path]; exists {
		return false, nil
	}
	s.docs[path] = raw
	return true, nil
}

func (s *MemoryStore) Merge(ctx context.Context, path string, fields map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := map[string]any{}
	if raw, ok := s.docs[path]; ok {
		if err := json.Unmarshal(raw, &doc); err != nil {
			return fmt.Errorf("Merge %s: existing document is not an object: %w", path, err)
		}
	}
	for k, v := range fields {
		doc[k] = v
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("Merge %s: %w", path, err)
	}
	s.docs[path] = raw
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, path string) error {
	s.mu.Lock()
	delete(s.docs, path)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Children(ctx context.Context, path string) ([]string, error) {
	prefix := path + "/"

	s.mu.RLock()
	seen := map[string]struct{}{}
	for p := range s.docs {
		rest, ok := strings.CutPrefix(p, prefix)
		if !ok {
			continue
		}
		child, _, _ := strings.Cut(rest, "/")
		if child != "" {
			seen[child] = struct{}{}
		}
	}
	s.mu.RUnlock()

	children := make([]string, 0, len(seen))
	for c := range seen {
		children = append(children, c)
	}
	sort.Strings(children)
	return children, nil
}
