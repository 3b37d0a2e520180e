package smtprelay

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/emersion/go-sasl"
)

type submission struct {
	addr string
	auth sasl.Client
	from string
	to   []string
	msg  []byte
}

func fakeSender(rec *[]submission, err error) func(string, sasl.Client, string, []string, io.Reader) error {
	return func(addr string, a sasl.Client, from string, to []string, r io.Reader) error {
		msg, readErr := io.ReadAll(r)
		if readErr != nil {
			return readErr
		}
		*rec = append(*rec, submission{addr: addr, auth: a, from: from, to: to, msg: msg})
		return err
	}
}

func TestSend_SubmitsToRelay(t *testing.T) {
	t.Parallel()

	var subs []submission
	tr := NewWithSender(Config{
		Addr: "relay.example.com:587",
		From: "noreply@example.com",
	}, fakeSender(&subs, nil))

	err := tr.Send(context.Background(), `"Alice" <alice@example.com>, bob@example.com`, "Hi", "Hello", "From: noreply@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(subs) != 1 {
		t.Fatalf("submissions: got %d, want 1", len(subs))
	}
	sub := subs[0]
	if sub.addr != "relay.example.com:587" {
		t.Errorf("addr: got %q, want %q", sub.addr, "relay.example.com:587")
	}
	if sub.from != "noreply@example.com" {
		t.Errorf("from: got %q, want %q", sub.from, "noreply@example.com")
	}
	if len(sub.to) != 2 || sub.to[0] != "alice@example.com" || sub.to[1] != "bob@example.com" {
		t.Errorf("to: got %v, want bare envelope addresses", sub.to)
	}
	if sub.auth != nil {
		t.Error("no credentials configured, auth should be nil")
	}
	if !strings.HasPrefix(string(sub.msg), "To: ") {
		t.Errorf("message should start with the To line, got %q", sub.msg)
	}
	if !strings.HasSuffix(string(sub.msg), "\r\n\r\nHello") {
		t.Errorf("message should end with the body, got %q", sub.msg)
	}
}

func TestSend_EnvelopeIncludesCcAndBcc(t *testing.T) {
	t.Parallel()

	var subs []submission
	tr := NewWithSender(Config{
		Addr: "relay.example.com:587",
		From: "noreply@example.com",
	}, fakeSender(&subs, nil))

	err := tr.Send(context.Background(), "a@x.com", "Hi", "Hello", "Cc: cc@x.com\r\nBcc: secret@x.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(subs) != 1 {
		t.Fatalf("submissions: got %d, want 1", len(subs))
	}
	sub := subs[0]
	want := []string{"a@x.com", "cc@x.com", "secret@x.com"}
	if len(sub.to) != len(want) {
		t.Fatalf("envelope: got %v, want %v", sub.to, want)
	}
	for i := range want {
		if sub.to[i] != want[i] {
			t.Errorf("envelope %d: got %q, want %q", i, sub.to[i], want[i])
		}
	}

	msg := string(sub.msg)
	if !strings.Contains(msg, "Cc: cc@x.com\r\n") {
		t.Errorf("Cc header should stay on the wire, got %q", msg)
	}
	if strings.Contains(msg, "Bcc") {
		t.Errorf("Bcc header must not reach the wire, got %q", msg)
	}
}

func TestSend_WithCredentials(t *testing.T) {
	t.Parallel()

	var subs []submission
	tr := NewWithSender(Config{
		Addr:     "relay.example.com:587",
		From:     "noreply@example.com",
		Username: "user",
		Password: "secret",
	}, fakeSender(&subs, nil))

	if err := tr.Send(context.Background(), "a@x.com", "Hi", "Hello", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if subs[0].auth == nil {
		t.Error("credentials configured, auth should be set")
	}
}

func TestSend_BadRecipients(t *testing.T) {
	t.Parallel()

	var subs []submission
	tr := NewWithSender(Config{Addr: "relay:25", From: "n@x.com"}, fakeSender(&subs, nil))

	if err := tr.Send(context.Background(), "<<<garbage", "Hi", "Hello", ""); err == nil {
		t.Fatal("expected an error for unparseable recipients")
	}
	if len(subs) != 0 {
		t.Errorf("nothing should reach the relay, got %d submissions", len(subs))
	}
}

func TestSend_RelayFailure(t *testing.T) {
	t.Parallel()

	var subs []submission
	tr := NewWithSender(Config{Addr: "relay:25", From: "n@x.com"}, fakeSender(&subs, errors.New("550 rejected")))

	err := tr.Send(context.Background(), "a@x.com", "Hi", "Hello", "")
	if err == nil {
		t.Fatal("expected an error")
	}
	if !strings.Contains(err.Error(), "550 rejected") {
		t.Errorf("error %q should carry the relay response", err)
	}
}

func TestTLSConfig(t *testing.T) {
	t.Parallel()

	tr := New(Config{Addr: "relay.example.com:587", InsecureSkipVerify: true})
	cfg := tr.tlsConfig()
	if cfg.ServerName != "relay.example.com" {
		t.Errorf("ServerName: got %q, want %q", cfg.ServerName, "relay.example.com")
	}
	if !cfg.InsecureSkipVerify {
		t.Error("InsecureSkipVerify should carry over from the relay config")
	}

	cfg = New(Config{Addr: "relay.example.com"}).tlsConfig()
	if cfg.ServerName != "relay.example.com" {
		t.Errorf("ServerName without port: got %q", cfg.ServerName)
	}
	if cfg.InsecureSkipVerify {
		t.Error("verification should stay on by default")
	}
}

func TestName(t *testing.T) {
	t.Parallel()

	if got := New(Config{}).Name(); got != "smtp" {
		t.Errorf("Name(): got %q, want %q", got, "smtp")
	}
}
