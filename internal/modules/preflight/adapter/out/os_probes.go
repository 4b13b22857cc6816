package out

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/exec"
	"strings"
	"time"

	preflightout "toolhub/internal/modules/preflight/port/out"
)

// OSPrivilegeProbe reports elevation from the effective uid. On the POS
// back-office hosts the launcher runs as a dedicated service account, so
// root/administrator is the only elevated state we need to recognize.
type OSPrivilegeProbe struct{}

func NewOSPrivilegeProbe() preflightout.PrivilegeProbe {
	return OSPrivilegeProbe{}
}

func (OSPrivilegeProbe) Elevated(_ context.Context) (bool, error) {
	uid := os.Geteuid()
	if uid < 0 {
		return false, fmt.Errorf("effective uid unavailable on this platform")
	}
	return uid == 0, nil
}

// TCPDialer opens and immediately closes a raw TCP connection.
type TCPDialer struct{}

func NewTCPDialer() preflightout.Dialer {
	return TCPDialer{}
}

func (TCPDialer) Dial(ctx context.Context, address string, timeout time.Duration) error {
	dialer := &net.Dialer{Timeout: timeout}
	conn, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		return err
	}
	return conn.Close()
}

// ExecRuntimeProbe asks an interpreter binary for its version. A probe
// failure (binary missing, non-zero exit) is an error for the caller to
// convert, never a crash.
type ExecRuntimeProbe struct{}

func NewExecRuntimeProbe() preflightout.RuntimeProbe {
	return ExecRuntimeProbe{}
}

func (ExecRuntimeProbe) Version(ctx context.Context, interpreter string) (string, error) {
	path, err := exec.LookPath(interpreter)
	if err != nil {
		return "", fmt.Errorf("locate %s: %w", interpreter, err)
	}
	out, err := exec.CommandContext(ctx, path, "-NoProfile", "-NonInteractive", "-Command", "$PSVersionTable.PSVersion.ToString()").Output()
	if err != nil {
		return "", fmt.Errorf("query %s version: %w", interpreter, err)
	}
	version := strings.TrimSpace(string(out))
	if version == "" {
		return "", fmt.Errorf("%s reported an empty version", interpreter)
	}
	return version, nil
}
