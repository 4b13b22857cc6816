package domain

import (
	"fmt"
	"time"
)

// StreamCategory classifies one line arriving from the interpreter
// session. The five categories are subscribed before the script is
// invoked so nothing is lost to a race at startup.
type StreamCategory string

const (
	StreamOutput   StreamCategory = "output"
	StreamWarning  StreamCategory = "warning"
	StreamError    StreamCategory = "error"
	StreamVerbose  StreamCategory = "verbose"
	StreamProgress StreamCategory = "progress"
	// StreamResult carries the script's direct return values.
	StreamResult StreamCategory = "result"
)

// StreamEvent is one arrival on one category. Percent is meaningful
// only for StreamProgress.
type StreamEvent struct {
	Category StreamCategory
	Text     string
	Percent  int
}

// LineSink receives one line at a time, synchronously, from the worker
// goroutine driving the run. Callers updating UI-owned state must
// marshal accordingly.
type LineSink func(line string)

// ProgressSink receives percent-complete values in [0, 100].
type ProgressSink func(percent int)

// ExecutionRequest is built by the caller immediately before Execute
// and not retained afterwards. All sinks are optional.
type ExecutionRequest struct {
	ScriptPath string
	Parameters map[string]string
	Output     LineSink
	Error      LineSink
	Progress   ProgressSink
}

func (r ExecutionRequest) Validate() error {
	if r.ScriptPath == "" {
		return fmt.Errorf("script path is required")
	}
	return nil
}

// ExitStatus is the session's post-run exit-code probe. Known is false
// when the session ended without reporting a code; success determination
// then falls back to the error-stream-empty signal alone.
type ExitStatus struct {
	Code  int
	Known bool
}

// ExecutionResult is the deterministic verdict of one run. Success is
// true only if no error-stream entries were captured and the exit-code
// probe, when known, equals zero.
type ExecutionResult struct {
	Success       bool
	ExitCode      int
	ExitCodeKnown bool
	Output        string
	ErrorOutput   string
	Duration      time.Duration
	CompletedAt   time.Time
}

// CancelledMessage marks a caller-initiated cancellation in
// ExecutionResult.ErrorOutput, distinguishing it from a script-raised
// error so callers can offer "retry" vs "investigate" differently.
const CancelledMessage = "execution cancelled by caller"

// DeadlineMessage marks a run aborted by a deadline on the caller's
// context. Like CancelledMessage it is appended to ErrorOutput so an
// aborted run is never mistaken for a clean one.
const DeadlineMessage = "execution aborted: deadline exceeded"
