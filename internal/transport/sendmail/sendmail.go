// Package sendmail implements a Transport that pipes messages to a local
// sendmail binary, the traditional system mail entry point.
package sendmail

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"

	"github.com/aherne/mailing-api/internal/transport"
)

// DefaultPath is where most MTAs install their sendmail shim.
const DefaultPath = "/usr/sbin/sendmail"

// runFunc executes the sendmail command and returns its combined output.
type runFunc func(ctx context.Context, path string, args []string, stdin []byte) ([]byte, error)

// Transport invokes a sendmail-compatible binary once per message.
type Transport struct {
	path string
	run  runFunc
}

// New creates a Transport around the binary at path, or DefaultPath when
// path is empty.
func New(path string) *Transport {
	if path == "" {
		path = DefaultPath
	}
	return &Transport{path: path, run: runCommand}
}

// NewWithRunner creates a Transport with a custom command runner. Useful
// for tests.
func NewWithRunner(path string, run func(ctx context.Context, path string, args []string, stdin []byte) ([]byte, error)) *Transport {
	return &Transport{path: path, run: run}
}

// Send pipes the reassembled message to sendmail. The -t flag makes
// sendmail take the envelope recipients from the To, Cc, and Bcc headers
// (stripping Bcc on the way out); -i keeps a lone dot line from
// terminating the message early.
func (t *Transport) Send(ctx context.Context, recipients, subject, body, headers string) error {
	msg := transport.AssembleMessage(recipients, subject, body, headers)

	out, err := t.run(ctx, t.path, []string{"-t", "-i"}, msg)
	if err != nil {
		return fmt.Errorf("sendmail invocation failed: %w (output: %s)", err, bytes.TrimSpace(out))
	}

	slog.Debug("message handed to sendmail",
		"path", t.path,
		"bytes", len(msg),
	)
	return nil
}

// Name returns the transport name.
func (t *Transport) Name() string {
	return "sendmail"
}

// runCommand runs the binary with the message on stdin.
func runCommand(ctx context.Context, path string, args []string, stdin []byte) ([]byte, error) {
	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Stdin = bytes.NewReader(stdin)
	return cmd.CombinedOutput()
}
