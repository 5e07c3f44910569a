package recognition

import (
	"fmt"
	"image"
)

// Request asks for one file to be recognized. It is a value and is never
// modified after Start.
type Request struct {
	// FilePath is the image or PDF document to recognize.
	FilePath string `json:"file_path"`

	// EnginePath selects the tesseract executable. Empty uses the runner's
	// default engine.
	EnginePath string `json:"engine_path,omitempty"`
}

// Unit is one image submitted to the engine: the whole input for an image
// file, one page for a document.
type Unit struct {
	// Index is 1-based.
	Index int
	Image image.Image
}

// Event is one notification emitted by a task: a LogEvent, a ProgressEvent
// or the terminal Result.
type Event interface {
	isEvent()
}

// Severity grades a LogEvent.
type Severity int

const (
	SeverityInfo Severity = iota
	SeveritySuccess
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeveritySuccess:
		return "success"
	case SeverityError:
		return "error"
	default:
		return "info"
	}
}

// MarshalText encodes the severity by name.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// LogEvent is a human-readable line describing the task's progress.
type LogEvent struct {
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

// ProgressEvent reports how many units have completed.
type ProgressEvent struct {
	Completed int `json:"completed"`
	Total     int `json:"total"`
}

// Percent returns Completed/Total as a whole percentage rounded down,
// clamped to [0, 100]. A zero Total reports 0.
func (p ProgressEvent) Percent() int {
	if p.Total <= 0 || p.Completed <= 0 {
		return 0
	}
	if p.Completed >= p.Total {
		return 100
	}
	return p.Completed * 100 / p.Total
}

// Result is the terminal outcome of a task. Exactly one is emitted per task.
type Result struct {
	Text      string `json:"text"`
	Succeeded bool   `json:"succeeded"`
}

func (LogEvent) isEvent()      {}
func (ProgressEvent) isEvent() {}
func (Result) isEvent()        {}

// State is a task's position in its lifecycle. Succeeded and Failed are
// terminal.
type State int

const (
	StateIdle State = iota
	StateRunning
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Terminal reports whether no further transitions are possible.
func (s State) Terminal() bool {
	return s == StateSucceeded || s == StateFailed
}
