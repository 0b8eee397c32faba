package pipeline

import "sync"

// runLocks tracks which (user, kind) keys have a run in flight. Acquisition
// never waits: a second caller for a held key is told the run is in
// progress. A key is forgotten as soon as its holder releases it.
type runLocks struct {
	mu   sync.Mutex
	held map[string]struct{}
}

func newRunLocks() *runLocks {
	return &runLocks{
		held: make(map[string]struct{}),
	}
}

func lockKey(userID string, kind Kind) string {
	return userID + "/" + string(kind)
}

// tryLock returns the release func, or false when the key is held
func (l *runLocks) tryLock(key string) (func(), bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.held[key]; ok {
		return nil, false
	}
	l.held[key] = struct{}{}

	var once sync.Once
	return func() { once.Do(func() { l.release(key) }) }, true
}

func (l *runLocks) release(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.held, key)
}

func (l *runLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.held)
}
