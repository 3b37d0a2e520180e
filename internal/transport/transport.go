// Package transport defines the delivery abstraction the message compiler
// hands finished messages to, plus helpers shared by the concrete
// implementations.
package transport

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
)

// Transport delivers a compiled message. recipients is the comma-joined
// rendered To list, headers the CRLF-joined header block (possibly
// empty), body the compiled body text. Implementations make a single
// delivery attempt; there is no retry policy at this level.
type Transport interface {
	// Send delivers one message. A non-nil error means the message was
	// not accepted for delivery.
	Send(ctx context.Context, recipients, subject, body, headers string) error

	// Name identifies the transport in logs and configuration.
	Name() string
}

// ExtractAddresses parses a comma-joined recipient list into bare email
// addresses, dropping display names. Transports that need individual
// envelope recipients (SMTP RCPT TO, SES destinations) use this.
func ExtractAddresses(recipients string) ([]string, error) {
	if strings.TrimSpace(recipients) == "" {
		return nil, fmt.Errorf("empty recipient list")
	}

	parsed, err := mail.ParseAddressList(recipients)
	if err != nil {
		return nil, fmt.Errorf("failed to parse recipient list: %w", err)
	}

	addrs := make([]string, 0, len(parsed))
	for _, p := range parsed {
		addrs = append(addrs, p.Address)
	}
	return addrs, nil
}

// AssembleMessage reassembles a full wire message from the pieces the
// compiler hands a transport: To and Subject lines, the compiled header
// block, a blank line, then the body.
func AssembleMessage(recipients, subject, body, headers string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "To: %s\r\n", recipients)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	if headers != "" {
		b.WriteString(headers)
		b.WriteString("\r\n")
	}
	b.WriteString("\r\n")
	b.WriteString(body)
	return []byte(b.String())
}

// HasHeader reports whether the compiled header block already contains a
// header line with the given name.
func HasHeader(headers, name string) bool {
	prefix := strings.ToLower(name) + ":"
	for _, line := range strings.Split(headers, "\r\n") {
		if strings.HasPrefix(strings.ToLower(line), prefix) {
			return true
		}
	}
	return false
}

// HeaderValue returns the value of the named header line in the compiled
// block, or the empty string when the header is absent.
func HeaderValue(headers, name string) string {
	prefix := strings.ToLower(name) + ":"
	for _, line := range strings.Split(headers, "\r\n") {
		if strings.HasPrefix(strings.ToLower(line), prefix) {
			return strings.TrimSpace(line[len(prefix):])
		}
	}
	return ""
}

// StripHeader removes the named header line from the compiled block.
func StripHeader(headers, name string) string {
	if headers == "" {
		return ""
	}
	prefix := strings.ToLower(name) + ":"
	var kept []string
	for _, line := range strings.Split(headers, "\r\n") {
		if strings.HasPrefix(strings.ToLower(line), prefix) {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\r\n")
}

// EnvelopeRecipients merges the To list with any Cc and Bcc addresses
// found in the compiled header block into one bare envelope recipient
// list. The compiler only ever places Cc and Bcc in the header block, so
// transports that submit with an explicit envelope (SMTP RCPT TO, SES
// destinations) must collect them from there or those recipients never
// see the message.
func EnvelopeRecipients(recipients, headers string) ([]string, error) {
	to, err := ExtractAddresses(recipients)
	if err != nil {
		return nil, err
	}

	for _, name := range []string{"Cc", "Bcc"} {
		value := HeaderValue(headers, name)
		if value == "" {
			continue
		}
		addrs, err := ExtractAddresses(value)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s header: %w", name, err)
		}
		to = append(to, addrs...)
	}

	return to, nil
}
