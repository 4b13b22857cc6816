// psrunner hosts one isolated PowerShell session per subprocess. The
// launcher spawns it fresh for every run and kills it afterwards, so no
// interpreter state survives between tools. Use -ExecutionPolicy Bypass
// on the command line: the policy applies to this process only, never
// system-wide.
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/hashicorp/go-plugin"

	runnerrpc "toolhub/internal/modules/runner/adapter/out/rpc"
)

type server struct{}

func (s *server) RuntimeInfo(ctx context.Context, _ *runnerrpc.Empty) (*runnerrpc.RuntimeInfo, error) {
	interpreter, err := locateInterpreter()
	if err != nil {
		return nil, err
	}
	out, err := exec.CommandContext(ctx, interpreter,
		"-NoProfile", "-NonInteractive", "-Command", "$PSVersionTable.PSVersion.ToString()").Output()
	if err != nil {
		return nil, fmt.Errorf("query interpreter version: %w", err)
	}
	return &runnerrpc.RuntimeInfo{
		Interpreter: interpreter,
		Version:     strings.TrimSpace(string(out)),
	}, nil
}

func (s *server) Run(in *runnerrpc.RunRequest, stream runnerrpc.RunEventSender) error {
	interpreter, err := locateInterpreter()
	if err != nil {
		return err
	}
	ctx := stream.Context()

	args := []string{"-NoProfile", "-NonInteractive", "-ExecutionPolicy", "Bypass", "-File", in.ScriptPath}
	args = append(args, namedParameters(in.Parameters)...)

	cmd := exec.CommandContext(ctx, interpreter, args...)
	if in.WorkDir != "" {
		cmd.Dir = in.WorkDir
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start interpreter: %w", err)
	}

	// grpc streams do not allow concurrent sends; both pump goroutines
	// share one guarded sender.
	sender := &lockedSender{stream: stream}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		pump(stdout, sender, classify)
	}()
	go func() {
		defer wg.Done()
		pump(stderr, sender, func(line string) *runnerrpc.RunEvent {
			return &runnerrpc.RunEvent{Kind: runnerrpc.EventError, Text: line}
		})
	}()
	wg.Wait()

	waitErr := cmd.Wait()
	if ctx.Err() != nil {
		// Client abandoned the run; the interpreter was killed via ctx.
		return nil
	}
	code := 0
	if cmd.ProcessState != nil {
		code = cmd.ProcessState.ExitCode()
	}
	if waitErr != nil && code == 0 {
		// Wait failed for a reason other than a non-zero exit.
		return fmt.Errorf("interpreter wait: %w", waitErr)
	}
	sender.send(&runnerrpc.RunEvent{Kind: runnerrpc.EventExit, ExitCode: int32(code)})
	return nil
}

// maxLineBytes bounds a single interpreter line. Scripts dumping whole
// result sets on one line still fit; anything beyond is a read fault,
// not a silent truncation.
const maxLineBytes = 1 << 20

// pump drains one interpreter stream line by line. A scan fault (line
// over maxLineBytes, pipe error) is surfaced as an error event so the
// launcher never mistakes a truncated transcript for a clean run.
func pump(r io.Reader, sender *lockedSender, toEvent func(string) *runnerrpc.RunEvent) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for scanner.Scan() {
		sender.send(toEvent(scanner.Text()))
	}
	if err := scanner.Err(); err != nil {
		sender.send(&runnerrpc.RunEvent{Kind: runnerrpc.EventError, Text: fmt.Sprintf("stream read failed, output truncated: %v", err)})
	}
}

type lockedSender struct {
	mu     sync.Mutex
	stream runnerrpc.RunEventSender
}

func (s *lockedSender) send(ev *runnerrpc.RunEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.stream.Send(ev)
}

// classify maps one stdout line to its stream category. PowerShell's
// warning/verbose/progress streams arrive prefixed when redirected
// through a console host.
func classify(line string) *runnerrpc.RunEvent {
	switch {
	case strings.HasPrefix(line, "WARNING:"):
		return &runnerrpc.RunEvent{Kind: runnerrpc.EventWarning, Text: strings.TrimSpace(strings.TrimPrefix(line, "WARNING:"))}
	case strings.HasPrefix(line, "VERBOSE:"):
		return &runnerrpc.RunEvent{Kind: runnerrpc.EventVerbose, Text: strings.TrimSpace(strings.TrimPrefix(line, "VERBOSE:"))}
	case strings.HasPrefix(line, "PROGRESS:"):
		raw := strings.TrimSpace(strings.TrimPrefix(line, "PROGRESS:"))
		if pct, err := strconv.Atoi(raw); err == nil {
			return &runnerrpc.RunEvent{Kind: runnerrpc.EventProgress, Percent: int32(pct)}
		}
		return &runnerrpc.RunEvent{Kind: runnerrpc.EventOutput, Text: line}
	default:
		return &runnerrpc.RunEvent{Kind: runnerrpc.EventOutput, Text: line}
	}
}

func namedParameters(params map[string]string) []string {
	keys := make([]string, 0, len(params))
	for key := range params {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	out := make([]string, 0, 2*len(keys))
	for _, key := range keys {
		out = append(out, "-"+key, params[key])
	}
	return out
}

func locateInterpreter() (string, error) {
	for _, candidate := range []string{"pwsh", "powershell"} {
		if path, err := exec.LookPath(candidate); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("no PowerShell interpreter on PATH (tried pwsh, powershell)")
}

func main() {
	plugin.Serve(&plugin.ServeConfig{
		HandshakeConfig: runnerrpc.HandshakeConfig,
		Plugins:         runnerrpc.RunnerMap(&server{}),
		GRPCServer:      plugin.DefaultGRPCServer,
	})
}
