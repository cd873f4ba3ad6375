package lookup

import (
	"context"
	"sync"

	"github.com/rs/xid"
)

type State string

const (
	StatePending   State = "pending"
	StateSucceeded State = "succeeded"
	StateFailed    State = "failed"
)

func (s State) String() string {
	return string(s)
}

// Task is a single in-flight official rate lookup
type Task struct {
	result *Result
	err    error

	done  chan struct{}
	id    xid.ID
	state State

	mu sync.RWMutex
}

// Start runs FetchOfficialRate in the background and returns immediately.
// Starting a new task never cancels a previous one
func (l *Lookup) Start(ctx context.Context) *Task {
	t := &Task{
		id:    xid.New(),
		done:  make(chan struct{}),
		state: StatePending,
	}

	l.logger.Debug(
		"started official rate lookup",
		"id", t.id.String(),
	)

	go func() {
		res, err := l.FetchOfficialRate(ctx)

		t.mu.Lock()

		t.result, t.err = res, err

		if err != nil {
			t.state = StateFailed
		} else {
			t.state = StateSucceeded
		}

		t.mu.Unlock()

		close(t.done)
	}()

	return t
}

// ID returns the unique task identifier
func (t *Task) ID() string {
	return t.id.String()
}

// State returns the current task state
func (t *Task) State() State {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.state
}

// Done is closed once the task has succeeded or failed
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the task completes, or the context is done.
// Giving up on the wait does not stop the lookup itself
func (t *Task) Wait(ctx context.Context) (*Result, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-t.done:
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.result, t.err
}
