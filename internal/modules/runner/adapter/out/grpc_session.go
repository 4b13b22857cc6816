package out

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"time"

	hclog "github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-plugin"

	runnerrpc "toolhub/internal/modules/runner/adapter/out/rpc"
	"toolhub/internal/modules/runner/domain"
	runnerout "toolhub/internal/modules/runner/port/out"
)

const defaultStartTimeout = 5 * time.Second

// GRPCSessionFactory spawns one runner subprocess per session. The
// subprocess hosts the interpreter; killing it on Close is what makes
// the session isolated and single-use.
type GRPCSessionFactory struct {
	runnerBinary string
	workDir      string
}

func NewGRPCSessionFactory(runnerBinary, workDir string) runnerout.SessionFactory {
	return &GRPCSessionFactory{runnerBinary: runnerBinary, workDir: workDir}
}

func (f *GRPCSessionFactory) Open(_ context.Context) (runnerout.Session, error) {
	client := plugin.NewClient(&plugin.ClientConfig{
		HandshakeConfig:  runnerrpc.HandshakeConfig,
		AllowedProtocols: []plugin.Protocol{plugin.ProtocolGRPC},
		Plugins:          runnerrpc.RunnerMap(nil),
		Cmd:              exec.Command(f.runnerBinary),
		Managed:          true,
		StartTimeout:     defaultStartTimeout,
		Logger:           hclog.New(&hclog.LoggerOptions{Output: io.Discard, Level: hclog.NoLevel}),
	})

	rpcClient, err := client.Client()
	if err != nil {
		client.Kill()
		return nil, fmt.Errorf("start runner subprocess: %w", err)
	}
	raw, err := rpcClient.Dispense(runnerrpc.RunnerMapKey)
	if err != nil {
		client.Kill()
		return nil, fmt.Errorf("dispense runner: %w", err)
	}
	typed, ok := raw.(runnerrpc.ScriptRunnerClient)
	if !ok {
		client.Kill()
		return nil, fmt.Errorf("runner rpc client type mismatch")
	}
	return &grpcSession{client: client, rpc: typed, workDir: f.workDir}, nil
}

type grpcSession struct {
	client  *plugin.Client
	rpc     runnerrpc.ScriptRunnerClient
	workDir string
}

// Run streams events from the runner subprocess until the final exit
// event, EOF or context cancellation. Cancellation surfaces as a nil
// error with an unknown exit status; the service layer decides how to
// report it.
func (s *grpcSession) Run(ctx context.Context, scriptPath string, parameters map[string]string, emit func(domain.StreamEvent)) (domain.ExitStatus, error) {
	stream, err := s.rpc.Run(ctx, &runnerrpc.RunRequest{
		ScriptPath: scriptPath,
		Parameters: parameters,
		WorkDir:    s.workDir,
	})
	if err != nil {
		return domain.ExitStatus{}, fmt.Errorf("invoke script: %w", err)
	}

	status := domain.ExitStatus{}
	for {
		ev, err := stream.Recv()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return status, nil
			}
			if ctx.Err() != nil {
				return status, nil
			}
			return status, fmt.Errorf("runner stream: %w", err)
		}
		switch ev.Kind {
		case runnerrpc.EventExit:
			status = domain.ExitStatus{Code: int(ev.ExitCode), Known: true}
		case runnerrpc.EventOutput:
			emit(domain.StreamEvent{Category: domain.StreamOutput, Text: ev.Text})
		case runnerrpc.EventWarning:
			emit(domain.StreamEvent{Category: domain.StreamWarning, Text: ev.Text})
		case runnerrpc.EventError:
			emit(domain.StreamEvent{Category: domain.StreamError, Text: ev.Text})
		case runnerrpc.EventVerbose:
			emit(domain.StreamEvent{Category: domain.StreamVerbose, Text: ev.Text})
		case runnerrpc.EventProgress:
			emit(domain.StreamEvent{Category: domain.StreamProgress, Percent: int(ev.Percent)})
		case runnerrpc.EventResult:
			emit(domain.StreamEvent{Category: domain.StreamResult, Text: ev.Text})
		}
	}
}

func (s *grpcSession) Close() {
	s.client.Kill()
}
