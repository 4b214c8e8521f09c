package project

import (
	"fmt"
	"sync"
)

// projectLocks admits one in-flight mutation per project id.
type projectLocks struct {
	mu   sync.Mutex
	held map[string]struct{}
}

func newProjectLocks() *projectLocks {
	return &projectLocks{held: make(map[string]struct{})}
}

// acquire claims id or fails with ErrBusy. The returned func releases it.
func (l *projectLocks) acquire(id string) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, busy := l.held[id]; busy {
		return nil, fmt.Errorf("%w: %s", ErrBusy, id)
	}
	l.held[id] = struct{}{}
	return func() {
		l.mu.Lock()
		delete(l.held, id)
		l.mu.Unlock()
	}, nil
}
