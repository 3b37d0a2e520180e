package stdout

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestSend_BasicMessage(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	tr := NewWithWriter(&buf)

	err := tr.Send(context.Background(), "alice@example.com, bob@example.com", "Monthly Report", "Please find the report attached.", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	output := buf.String()

	if !strings.Contains(output, "To: alice@example.com, bob@example.com") {
		t.Error("output missing To line")
	}
	if !strings.Contains(output, "Subject: Monthly Report") {
		t.Error("output missing Subject line")
	}
	if !strings.Contains(output, "Please find the report attached.") {
		t.Error("output missing body text")
	}
	if !strings.HasPrefix(output, "========================================\n") {
		t.Error("output should start with separator line")
	}
	if !strings.HasSuffix(output, "========================================\n") {
		t.Error("output should end with separator line")
	}
}

func TestSend_HeaderBlock(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	tr := NewWithWriter(&buf)

	headers := "From: me@x.com\r\nX-Priority: 1"
	err := tr.Send(context.Background(), "a@x.com", "Hi", "Hello", headers)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "From: me@x.com\n") {
		t.Error("output missing From header, CRLF should be rewritten to newline")
	}
	if !strings.Contains(output, "X-Priority: 1\n") {
		t.Error("output missing custom header")
	}
}

func TestSend_EmptyHeaders(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	tr := NewWithWriter(&buf)

	if err := tr.Send(context.Background(), "a@x.com", "Hi", "Hello", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(buf.String(), "Subject: Hi\nBody:\n") {
		t.Errorf("empty header block should add no lines, got %q", buf.String())
	}
}

func TestName(t *testing.T) {
	t.Parallel()

	tr := New()
	if tr.Name() != "stdout" {
		t.Errorf("Name(): got %q, want %q", tr.Name(), "stdout")
	}
}
