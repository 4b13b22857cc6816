package service

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"toolhub/internal/modules/runner/domain"
	runnerout "toolhub/internal/modules/runner/port/out"
	"toolhub/internal/platform/clock"
	apperrors "toolhub/internal/platform/errors"
)

// RunnerService is the execution host: it runs one script at a time in a
// fresh interpreter session, multiplexes the session's output categories
// to the caller's sinks in real time, and supports cooperative
// cancellation. A host instance is reusable for sequential runs but
// rejects overlap; queuing is a caller-layer concern.
type RunnerService struct {
	factory runnerout.SessionFactory
	clk     clock.Clock
	log     zerolog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
}

func NewRunnerService(factory runnerout.SessionFactory, clk clock.Clock, log zerolog.Logger) *RunnerService {
	return &RunnerService{factory: factory, clk: clk, log: log}
}

type runOutcome struct {
	status domain.ExitStatus
	err    error
}

// Execute runs the script to completion or cancellation. Environment
// faults (missing script, session creation failure) and script-level
// failures are reported inside the result; the only errors returned are
// caller contract violations (bad request, overlapping run).
func (s *RunnerService) Execute(ctx context.Context, req domain.ExecutionRequest) (domain.ExecutionResult, error) {
	if err := req.Validate(); err != nil {
		return domain.ExecutionResult{}, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}
	start := s.clk.Now()

	// Path check happens before any session exists; a missing script
	// must not pay the interpreter spawn cost.
	if info, err := os.Stat(req.ScriptPath); err != nil || info.IsDir() {
		return s.failed(start, fmt.Sprintf("script file missing: %s", req.ScriptPath)), nil
	}

	runCtx, cancel, err := s.begin(ctx)
	if err != nil {
		return domain.ExecutionResult{}, err
	}
	defer s.finish(cancel)

	session, err := s.factory.Open(runCtx)
	if err != nil {
		return s.failed(start, fmt.Sprintf("open interpreter session: %v", err)), nil
	}
	// Teardown is unconditional: success, failure or cancellation.
	defer session.Close()

	collector := newCollector(req)

	// The blocking invocation lives on its own goroutine; sinks are
	// invoked from there, never from the caller's goroutine.
	done := make(chan runOutcome, 1)
	go func() {
		status, runErr := session.Run(runCtx, req.ScriptPath, req.Parameters, collector.emit)
		done <- runOutcome{status: status, err: runErr}
	}()
	outcome := <-done

	end := s.clk.Now()
	result := domain.ExecutionResult{
		ExitCode:      outcome.status.Code,
		ExitCodeKnown: outcome.status.Known,
		Output:        collector.output(),
		ErrorOutput:   collector.errors(),
		Duration:      end.Sub(start),
		CompletedAt:   end,
	}

	switch {
	case runCtx.Err() != nil:
		// An aborted run is never a success, whatever the exit probe
		// said. Cancellation and deadline expiry are kept apart in the
		// transcript so callers can offer retry vs investigate.
		result.Success = false
		if runCtx.Err() == context.Canceled {
			result.ErrorOutput = appendLine(result.ErrorOutput, domain.CancelledMessage)
			s.log.Info().Str("script", req.ScriptPath).Msg("run cancelled")
		} else {
			result.ErrorOutput = appendLine(result.ErrorOutput, domain.DeadlineMessage)
			s.log.Info().Str("script", req.ScriptPath).Msg("run aborted on deadline")
		}
	case outcome.err != nil:
		result.Success = false
		result.ErrorOutput = appendLine(result.ErrorOutput, fmt.Sprintf("interpreter session fault: %v", outcome.err))
	default:
		exitOK := !outcome.status.Known || outcome.status.Code == 0
		result.Success = !collector.sawErrors() && exitOK
	}
	return result, nil
}

// Stop signals cooperative cancellation of the in-flight run. It races
// with natural completion; arriving after the run finished is a no-op.
// There is no hard timeout here: if the interpreter ignores the signal,
// Execute blocks until the worker goroutine returns.
func (s *RunnerService) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
}

// Active reports whether a run is currently in flight.
func (s *RunnerService) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancel != nil
}

func (s *RunnerService) begin(ctx context.Context) (context.Context, context.CancelFunc, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return nil, nil, apperrors.ErrRunActive
	}
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	return runCtx, cancel, nil
}

func (s *RunnerService) finish(cancel context.CancelFunc) {
	cancel()
	s.mu.Lock()
	s.cancel = nil
	s.mu.Unlock()
}

func (s *RunnerService) failed(start time.Time, message string) domain.ExecutionResult {
	end := s.clk.Now()
	return domain.ExecutionResult{
		Success:     false,
		ErrorOutput: message,
		Duration:    end.Sub(start),
		CompletedAt: end,
	}
}

func appendLine(acc, line string) string {
	if acc == "" {
		return line
	}
	return acc + "\n" + line
}

// collector accumulates the run transcript and forwards each event to
// the caller's sinks. Warnings and verbose text are folded into the
// output sink with a category prefix so callers wire three callbacks,
// not five.
type collector struct {
	req domain.ExecutionRequest

	mu      sync.Mutex
	out     strings.Builder
	errs    strings.Builder
	hadErrs bool
}

func newCollector(req domain.ExecutionRequest) *collector {
	return &collector{req: req}
}

func (c *collector) emit(ev domain.StreamEvent) {
	switch ev.Category {
	case domain.StreamOutput, domain.StreamResult:
		c.appendOutput(ev.Text)
	case domain.StreamWarning:
		c.appendOutput("WARNING: " + ev.Text)
	case domain.StreamVerbose:
		c.appendOutput("VERBOSE: " + ev.Text)
	case domain.StreamError:
		c.appendError(ev.Text)
	case domain.StreamProgress:
		if c.req.Progress != nil {
			c.req.Progress(clampPercent(ev.Percent))
		}
	}
}

func (c *collector) appendOutput(line string) {
	c.mu.Lock()
	if c.out.Len() > 0 {
		c.out.WriteByte('\n')
	}
	c.out.WriteString(line)
	c.mu.Unlock()
	if c.req.Output != nil {
		c.req.Output(line)
	}
}

func (c *collector) appendError(line string) {
	c.mu.Lock()
	if c.errs.Len() > 0 {
		c.errs.WriteByte('\n')
	}
	c.errs.WriteString(line)
	c.hadErrs = true
	c.mu.Unlock()
	if c.req.Error != nil {
		c.req.Error(line)
	}
}

func (c *collector) output() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.out.String()
}

func (c *collector) errors() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errs.String()
}

func (c *collector) sawErrors() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hadErrs
}

func clampPercent(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
