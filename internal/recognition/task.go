package recognition

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Task is one execution of a Request. It is created Running by
// Runner.Start and ends in Succeeded or Failed; it is never restarted.
//
// All methods are safe for concurrent use.
type Task struct {
	id        string
	req       Request
	cancel    context.CancelFunc
	startedAt time.Time

	mu         sync.Mutex
	state      State
	history    []Event
	changed    chan struct{}
	progress   ProgressEvent
	logs       []LogEvent
	result     *Result
	finishedAt time.Time

	done chan struct{}
}

func newTask(id string, req Request, cancel context.CancelFunc, startedAt time.Time) *Task {
	return &Task{
		id:        id,
		req:       req,
		cancel:    cancel,
		startedAt: startedAt,
		state:     StateIdle,
		changed:   make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// ID returns the task's unique identifier.
func (t *Task) ID() string { return t.id }

// Request returns the request the task was started with.
func (t *Task) Request() Request { return t.req }

// State returns the current lifecycle state.
func (t *Task) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Done is closed once the terminal Result has been emitted.
func (t *Task) Done() <-chan struct{} { return t.done }

// Events returns the task's complete event stream. See Subscribe.
//
// The stream is only released once it has been read to its close; a caller
// that may stop reading early should use Subscribe with a cancellable ctx.
func (t *Task) Events() <-chan Event {
	return t.Subscribe(context.Background())
}

// Subscribe returns a channel carrying every event of the task in emission
// order, starting from the first event regardless of when Subscribe is
// called. The channel is closed right after the terminal Result, or early if
// ctx ends. Each call yields an independent stream.
//
// The task never waits for subscribers: a slow reader only delays its own
// stream.
func (t *Task) Subscribe(ctx context.Context) <-chan Event {
	out := make(chan Event)
	go func() {
		defer close(out)
		next := 0
		for {
			t.mu.Lock()
			pending := t.history[next:]
			changed := t.changed
			finished := t.result != nil
			t.mu.Unlock()

			for _, e := range pending {
				select {
				case out <- e:
				case <-ctx.Done():
					return
				}
			}
			next += len(pending)

			if finished {
				return
			}
			select {
			case <-changed:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Wait blocks until the task has finished or ctx ends.
func (t *Task) Wait(ctx context.Context) (Result, error) {
	select {
	case <-t.done:
		t.mu.Lock()
		defer t.mu.Unlock()
		return *t.result, nil
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

// Snapshot is a point-in-time view of a task.
type Snapshot struct {
	ID         string        `json:"task_id"`
	FilePath   string        `json:"file_path"`
	State      State         `json:"state"`
	Progress   ProgressEvent `json:"progress"`
	Percent    int           `json:"percent"`
	Logs       []LogEvent    `json:"logs"`
	Result     *Result       `json:"result,omitempty"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt *time.Time    `json:"finished_at,omitempty"`
}

// Snapshot returns the task's current state, latest progress, log history
// and, once finished, its result.
func (t *Task) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := Snapshot{
		ID:        t.id,
		FilePath:  t.req.FilePath,
		State:     t.state,
		Progress:  t.progress,
		Percent:   t.progress.Percent(),
		Logs:      append([]LogEvent(nil), t.logs...),
		StartedAt: t.startedAt,
	}
	if t.result != nil {
		r := *t.result
		s.Result = &r
		finished := t.finishedAt
		s.FinishedAt = &finished
	}
	return s
}

func (t *Task) setRunning() {
	t.mu.Lock()
	t.state = StateRunning
	t.mu.Unlock()
}

// emit appends e to the history and wakes subscribers. Events after the
// terminal Result are dropped.
func (t *Task) emit(e Event) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.result != nil {
		return
	}

	switch ev := e.(type) {
	case LogEvent:
		t.logs = append(t.logs, ev)
	case ProgressEvent:
		t.progress = ev
	}

	t.history = append(t.history, e)
	close(t.changed)
	t.changed = make(chan struct{})
}

func (t *Task) logf(severity Severity, format string, args ...interface{}) {
	t.emit(LogEvent{Message: fmt.Sprintf(format, args...), Severity: severity})
}

func (t *Task) reportProgress(completed, total int) {
	t.emit(ProgressEvent{Completed: completed, Total: total})
}

// finish emits the terminal result and moves the task to its final state.
func (t *Task) finish(res Result, at time.Time) {
	t.mu.Lock()
	if t.result != nil {
		t.mu.Unlock()
		return
	}
	t.history = append(t.history, res)
	t.result = &res
	t.finishedAt = at
	if res.Succeeded {
		t.state = StateSucceeded
	} else {
		t.state = StateFailed
	}
	close(t.changed)
	t.changed = make(chan struct{})
	t.mu.Unlock()

	t.cancel()
	close(t.done)
}
