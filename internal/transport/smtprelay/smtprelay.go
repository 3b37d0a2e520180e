// Package smtprelay implements a Transport that submits messages to an
// SMTP relay over the network.
package smtprelay

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"log/slog"
	"net"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"

	"github.com/aherne/mailing-api/internal/transport"
)

// Config holds the relay connection settings.
type Config struct {
	// Addr is the relay address in host:port form.
	Addr string

	// From is the envelope sender (MAIL FROM).
	From string

	// Username and Password enable PLAIN authentication when both are
	// set.
	Username string
	Password string

	// ImplicitTLS dials a relay that expects TLS from the first byte
	// (smtps). Without it the connection upgrades with STARTTLS when the
	// relay offers it.
	ImplicitTLS bool

	// InsecureSkipVerify accepts self-signed relay certificates.
	InsecureSkipVerify bool
}

// sendFunc submits one message to the relay; replaced in tests.
type sendFunc func(addr string, a sasl.Client, from string, to []string, r io.Reader) error

// Transport hands messages to an SMTP relay, one submission per Send.
type Transport struct {
	cfg  Config
	send sendFunc
}

// New creates a Transport for the relay described by cfg.
func New(cfg Config) *Transport {
	t := &Transport{cfg: cfg}
	t.send = t.submit
	return t
}

// NewWithSender creates a Transport with a custom submission function.
// Useful for tests.
func NewWithSender(cfg Config, send func(addr string, a sasl.Client, from string, to []string, r io.Reader) error) *Transport {
	return &Transport{cfg: cfg, send: send}
}

// Send collects the envelope recipients from the To list and the Cc and
// Bcc header lines, reassembles the wire message without the Bcc header,
// and submits it to the relay in one blocking call.
func (t *Transport) Send(_ context.Context, recipients, subject, body, headers string) error {
	to, err := transport.EnvelopeRecipients(recipients, headers)
	if err != nil {
		return err
	}

	// Bcc recipients travel only in the envelope.
	msg := transport.AssembleMessage(recipients, subject, body, transport.StripHeader(headers, "Bcc"))

	var auth sasl.Client
	if t.cfg.Username != "" && t.cfg.Password != "" {
		auth = sasl.NewPlainClient("", t.cfg.Username, t.cfg.Password)
	}

	if err := t.send(t.cfg.Addr, auth, t.cfg.From, to, bytes.NewReader(msg)); err != nil {
		return fmt.Errorf("smtp submission to %s failed: %w", t.cfg.Addr, err)
	}

	slog.Debug("message submitted to relay",
		"addr", t.cfg.Addr,
		"recipients", len(to),
	)
	return nil
}

// tlsConfig builds the client TLS settings for the configured relay.
func (t *Transport) tlsConfig() *tls.Config {
	host, _, err := net.SplitHostPort(t.cfg.Addr)
	if err != nil {
		host = t.cfg.Addr
	}
	return &tls.Config{
		ServerName:         host,
		InsecureSkipVerify: t.cfg.InsecureSkipVerify,
	}
}

// submit performs one SMTP submission: dial, TLS, optional auth,
// envelope, data.
func (t *Transport) submit(addr string, auth sasl.Client, from string, to []string, r io.Reader) error {
	var c *smtp.Client
	var err error
	if t.cfg.ImplicitTLS {
		c, err = smtp.DialTLS(addr, t.tlsConfig())
	} else {
		c, err = smtp.Dial(addr)
	}
	if err != nil {
		return err
	}
	defer c.Close()

	if !t.cfg.ImplicitTLS {
		if ok, _ := c.Extension("STARTTLS"); ok {
			if err := c.StartTLS(t.tlsConfig()); err != nil {
				return err
			}
		}
	}

	if auth != nil {
		if err := c.Auth(auth); err != nil {
			return err
		}
	}

	if err := c.Mail(from, nil); err != nil {
		return err
	}
	for _, rcpt := range to {
		if err := c.Rcpt(rcpt); err != nil {
			return err
		}
	}

	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := io.Copy(w, r); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}

	return c.Quit()
}

// Name returns the transport name.
func (t *Transport) Name() string {
	return "smtp"
}
