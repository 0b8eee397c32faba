package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// watchBuffer is how many changes a slow watcher may lag before new ones are dropped
const watchBuffer = 32

// MemoryStore keeps documents in process memory
type MemoryStore struct {
	mu       sync.RWMutex
	docs     map[string][]byte
	watchers map[string]map[chan Change]struct{}
}

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		docs:     make(map[string][]byte),
		watchers: make(map[string]map[chan Change]struct{}),
	}
}

func (s *MemoryStore) Get(_ context.Context, path string, dst any) error {
	s.mu.RLock()
	b, ok := s.docs[path]
	s.mu.RUnlock()
	if !ok {
		return ErrNotFound
	}
	return json.Unmarshal(b, dst)
}

func (s *MemoryStore) Set(_ context.Context, path string, v any) error {
	if err := validPath(path); err != nil {
		return err
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[path] = b
	s.notify(Change{Path: path, Value: b})
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[path]; !ok {
		return nil
	}
	delete(s.docs, path)
	s.notify(Change{Path: path})
	return nil
}

func (s *MemoryStore) Watch(ctx context.Context, userID string) (<-chan Change, error) {
	ch := make(chan Change, watchBuffer)

	s.mu.Lock()
	if s.watchers[userID] == nil {
		s.watchers[userID] = make(map[chan Change]struct{})
	}
	s.watchers[userID][ch] = struct{}{}
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		delete(s.watchers[userID], ch)
		if len(s.watchers[userID]) == 0 {
			delete(s.watchers, userID)
		}
		s.mu.Unlock()
		close(ch)
	}()
	return ch, nil
}

// notify must be called with s.mu held
func (s *MemoryStore) notify(change Change) {
	userID, ok := userFromPath(change.Path)
	if !ok {
		return
	}
	for ch := range s.watchers[userID] {
		select {
		case ch <- change:
		default:
		}
	}
}
