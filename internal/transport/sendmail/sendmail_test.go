package sendmail

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestSend_PipesAssembledMessage(t *testing.T) {
	t.Parallel()

	var gotPath string
	var gotArgs []string
	var gotStdin []byte

	tr := NewWithRunner("/usr/sbin/sendmail", func(_ context.Context, path string, args []string, stdin []byte) ([]byte, error) {
		gotPath = path
		gotArgs = args
		gotStdin = stdin
		return nil, nil
	})

	err := tr.Send(context.Background(), "a@x.com", "Hi", "Hello", "From: me@x.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotPath != "/usr/sbin/sendmail" {
		t.Errorf("path: got %q, want %q", gotPath, "/usr/sbin/sendmail")
	}
	if len(gotArgs) != 2 || gotArgs[0] != "-t" || gotArgs[1] != "-i" {
		t.Errorf("args: got %v, want [-t -i]", gotArgs)
	}

	want := "To: a@x.com\r\nSubject: Hi\r\nFrom: me@x.com\r\n\r\nHello"
	if string(gotStdin) != want {
		t.Errorf("stdin: got %q, want %q", gotStdin, want)
	}
}

func TestSend_RunnerFailure(t *testing.T) {
	t.Parallel()

	tr := NewWithRunner("/usr/sbin/sendmail", func(_ context.Context, _ string, _ []string, _ []byte) ([]byte, error) {
		return []byte("sendmail: fatal: bad things\n"), errors.New("exit status 1")
	})

	err := tr.Send(context.Background(), "a@x.com", "Hi", "Hello", "")
	if err == nil {
		t.Fatal("expected an error")
	}
	if !strings.Contains(err.Error(), "exit status 1") {
		t.Errorf("error %q should carry the exec failure", err)
	}
	if !strings.Contains(err.Error(), "bad things") {
		t.Errorf("error %q should carry the command output", err)
	}
}

func TestNew_DefaultPath(t *testing.T) {
	t.Parallel()

	tr := New("")
	if tr.path != DefaultPath {
		t.Errorf("path: got %q, want %q", tr.path, DefaultPath)
	}
}

func TestName(t *testing.T) {
	t.Parallel()

	if got := New("").Name(); got != "sendmail" {
		t.Errorf("Name(): got %q, want %q", got, "sendmail")
	}
}
