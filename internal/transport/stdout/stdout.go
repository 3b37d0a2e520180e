// Package stdout implements a Transport that prints messages to standard
// output instead of delivering them. Useful for development and dry runs.
package stdout

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
)

// Transport prints compiled messages in a human-readable framing.
type Transport struct {
	writer io.Writer
}

// New creates a Transport that writes to os.Stdout.
func New() *Transport {
	return &Transport{writer: os.Stdout}
}

// NewWithWriter creates a Transport that writes to w. Useful for tests.
func NewWithWriter(w io.Writer) *Transport {
	return &Transport{writer: w}
}

// Send prints the message. It fails only when the writer does.
func (t *Transport) Send(_ context.Context, recipients, subject, body, headers string) error {
	var b strings.Builder

	b.WriteString("========================================\n")
	fmt.Fprintf(&b, "To: %s\n", recipients)
	fmt.Fprintf(&b, "Subject: %s\n", subject)
	if headers != "" {
		for _, line := range strings.Split(headers, "\r\n") {
			b.WriteString(line + "\n")
		}
	}
	b.WriteString("Body:\n")
	b.WriteString(body + "\n")
	b.WriteString("========================================\n")

	if _, err := fmt.Fprint(t.writer, b.String()); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}
	return nil
}

// Name returns the transport name.
func (t *Transport) Name() string {
	return "stdout"
}
