package rpc

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hashicorp/go-plugin"
	"google.golang.org/grpc"
	"google.golang.org/grpc/encoding"
)

const (
	RunnerMapKey      = "toolhub"
	serviceName       = "toolhub.runner.v1.ScriptRunner"
	jsonCodecName     = "json"
	methodRuntimeInfo = "/" + serviceName + "/RuntimeInfo"
	methodRun         = "/" + serviceName + "/Run"
)

var HandshakeConfig = plugin.HandshakeConfig{
	ProtocolVersion:  1,
	MagicCookieKey:   "TOOLHUB_RUNNER",
	MagicCookieValue: "toolhub",
}

type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func (jsonCodec) Name() string {
	return jsonCodecName
}

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

type Empty struct{}

type RuntimeInfo struct {
	Interpreter string `json:"interpreter"`
	Version     string `json:"version"`
}

type RunRequest struct {
	ScriptPath string            `json:"script_path"`
	Parameters map[string]string `json:"parameters"`
	WorkDir    string            `json:"work_dir"`
}

// RunEvent is one streamed arrival. Kind is one of output, warning,
// error, verbose, progress, result or exit; Percent is set for progress
// events and ExitCode for the final exit event.
type RunEvent struct {
	Kind     string `json:"kind"`
	Text     string `json:"text,omitempty"`
	Percent  int32  `json:"percent,omitempty"`
	ExitCode int32  `json:"exit_code,omitempty"`
}

const (
	EventOutput   = "output"
	EventWarning  = "warning"
	EventError    = "error"
	EventVerbose  = "verbose"
	EventProgress = "progress"
	EventResult   = "result"
	EventExit     = "exit"
)

// RunEventSender is the server side of the Run stream. Context is the
// stream context; it is cancelled when the client abandons the run.
type RunEventSender interface {
	Send(ev *RunEvent) error
	Context() context.Context
}

// RunEventStream is the client side of the Run stream; Recv returns
// io.EOF when the runner has finished sending.
type RunEventStream interface {
	Recv() (*RunEvent, error)
}

type ScriptRunnerServer interface {
	RuntimeInfo(ctx context.Context, in *Empty) (*RuntimeInfo, error)
	Run(in *RunRequest, stream RunEventSender) error
}

type ScriptRunnerClient interface {
	RuntimeInfo(ctx context.Context) (*RuntimeInfo, error)
	Run(ctx context.Context, in *RunRequest) (RunEventStream, error)
}

type scriptRunnerClient struct {
	conn *grpc.ClientConn
}

func NewScriptRunnerClient(conn *grpc.ClientConn) ScriptRunnerClient {
	return &scriptRunnerClient{conn: conn}
}

func (c *scriptRunnerClient) RuntimeInfo(ctx context.Context) (*RuntimeInfo, error) {
	out := &RuntimeInfo{}
	if err := c.conn.Invoke(ctx, methodRuntimeInfo, &Empty{}, out, grpc.CallContentSubtype(jsonCodecName)); err != nil {
		return nil, err
	}
	return out, nil
}

var runStreamDesc = grpc.StreamDesc{
	StreamName:    "Run",
	ServerStreams: true,
}

func (c *scriptRunnerClient) Run(ctx context.Context, in *RunRequest) (RunEventStream, error) {
	stream, err := c.conn.NewStream(ctx, &runStreamDesc, methodRun, grpc.CallContentSubtype(jsonCodecName))
	if err != nil {
		return nil, err
	}
	if err := stream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := stream.CloseSend(); err != nil {
		return nil, err
	}
	return &runEventStream{stream: stream}, nil
}

type runEventStream struct {
	stream grpc.ClientStream
}

func (s *runEventStream) Recv() (*RunEvent, error) {
	ev := &RunEvent{}
	if err := s.stream.RecvMsg(ev); err != nil {
		return nil, err
	}
	return ev, nil
}

type runEventSender struct {
	stream grpc.ServerStream
}

func (s *runEventSender) Send(ev *RunEvent) error {
	return s.stream.SendMsg(ev)
}

func (s *runEventSender) Context() context.Context {
	return s.stream.Context()
}

func RegisterScriptRunnerServer(server grpc.ServiceRegistrar, impl ScriptRunnerServer) {
	server.RegisterService(&grpc.ServiceDesc{
		ServiceName: serviceName,
		HandlerType: (*ScriptRunnerServer)(nil),
		Methods: []grpc.MethodDesc{
			{
				MethodName: "RuntimeInfo",
				Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
					in := &Empty{}
					if err := dec(in); err != nil {
						return nil, err
					}
					if interceptor == nil {
						return impl.RuntimeInfo(ctx, in)
					}
					info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodRuntimeInfo}
					handler := func(ctx context.Context, req any) (any, error) {
						empty, ok := req.(*Empty)
						if !ok {
							return nil, fmt.Errorf("invalid request type")
						}
						return impl.RuntimeInfo(ctx, empty)
					}
					return interceptor(ctx, in, info, handler)
				},
			},
		},
		Streams: []grpc.StreamDesc{
			{
				StreamName:    "Run",
				ServerStreams: true,
				Handler: func(srv any, stream grpc.ServerStream) error {
					in := &RunRequest{}
					if err := stream.RecvMsg(in); err != nil {
						return err
					}
					return impl.Run(in, &runEventSender{stream: stream})
				},
			},
		},
		Metadata: "schemas/runner-rpc-v1.proto",
	}, impl)
}

type GRPCRunnerPlugin struct {
	plugin.NetRPCUnsupportedPlugin
	Impl ScriptRunnerServer
}

func (p *GRPCRunnerPlugin) GRPCServer(_ *plugin.GRPCBroker, server *grpc.Server) error {
	RegisterScriptRunnerServer(server, p.Impl)
	return nil
}

func (p *GRPCRunnerPlugin) GRPCClient(_ context.Context, _ *plugin.GRPCBroker, conn *grpc.ClientConn) (any, error) {
	return NewScriptRunnerClient(conn), nil
}

func RunnerMap(impl ScriptRunnerServer) map[string]plugin.Plugin {
	return map[string]plugin.Plugin{
		RunnerMapKey: &GRPCRunnerPlugin{Impl: impl},
	}
}
