package memory

import (
	"context"
	"sync"

	"tilebot/internal/app/ports"
)

// ActionLog records pushed actions in order. It backs tests and dry runs
// where no game transport is connected.
type ActionLog struct {
	mu      sync.Mutex
	actions []ports.Action
	err     error
}

func NewActionLog() *ActionLog {
	return &ActionLog{}
}

// Fail makes every subsequent Push return err. Used to exercise session
// fault handling.
func (l *ActionLog) Fail(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.err = err
}

func (l *ActionLog) Push(_ context.Context, a ports.Action) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return l.err
	}
	l.actions = append(l.actions, a)
	return nil
}

// Actions returns a copy of everything pushed so far.
func (l *ActionLog) Actions() []ports.Action {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]ports.Action, len(l.actions))
	copy(out, l.actions)
	return out
}

// Drain returns and clears the recorded actions.
func (l *ActionLog) Drain() []ports.Action {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := l.actions
	l.actions = nil
	return out
}

var _ ports.ActionSink = (*ActionLog)(nil)
