package email

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// crlf separates header and body lines, per RFC 5322.
const crlf = "\r\n"

// defaultCharset is assumed for the text part when no charset was set.
const defaultCharset = "iso-8859-1"

// base64LineLength is the RFC 2045 line limit for base64 body data.
const base64LineLength = 76

// mimeNotice is shown by mail agents that do not understand multipart
// bodies.
const mimeNotice = "This is a multi-part message in MIME format."

// newBoundary returns a fresh boundary token. UUID-derived, so it will
// not collide with message text or base64 attachment data.
func newBoundary() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// compileHeaders renders the header block in a fixed order: MIME headers
// when needed, then From, Sender, Reply-To, Cc, Bcc, then custom headers.
// The result is CRLF-joined with no trailing line ending; a bare
// plaintext message compiles to an empty block.
func (m *Message) compileHeaders(boundary string) string {
	var lines []string

	switch {
	case len(m.attachments) > 0:
		lines = append(lines,
			"MIME-Version: 1.0",
			fmt.Sprintf("Content-Type: multipart/mixed; boundary=%q", boundary),
			"Content-Transfer-Encoding: 7bit",
			mimeNotice,
		)
	case m.contentType != "":
		lines = append(lines,
			"MIME-Version: 1.0",
			fmt.Sprintf("Content-type:%s; charset=%q", m.contentType, m.charset),
		)
	}

	if m.from != nil {
		lines = append(lines, "From: "+m.from.String())
	}
	if m.sender != nil {
		lines = append(lines, "Sender: "+m.sender.String())
	}
	if m.replyTo != nil {
		lines = append(lines, "Reply-To: "+m.replyTo.String())
	}
	if len(m.cc) > 0 {
		lines = append(lines, "Cc: "+joinAddresses(m.cc))
	}
	if len(m.bcc) > 0 {
		lines = append(lines, "Bcc: "+joinAddresses(m.bcc))
	}
	for _, h := range m.customHeaders {
		lines = append(lines, h.Name+": "+h.Value)
	}

	return strings.Join(lines, crlf)
}

// compileBody renders the message body. Without attachments the text
// passes through untouched; with attachments it becomes a multipart/mixed
// body holding one text part followed by one base64 part per attachment,
// delimited by boundary.
func (m *Message) compileBody(boundary string) (string, error) {
	if len(m.attachments) == 0 {
		return m.body, nil
	}

	contentType := m.contentType
	if contentType == "" {
		contentType = "text/plain"
	}
	charset := m.charset
	if charset == "" {
		charset = defaultCharset
	}

	lines := []string{
		"--" + boundary,
		fmt.Sprintf("Content-Type: %s; charset=%q", contentType, charset),
		"Content-Transfer-Encoding: 8bit",
		"",
		m.body,
	}

	for _, path := range m.attachments {
		data, err := m.fs.ReadBytes(path)
		if err != nil {
			return "", fmt.Errorf("failed to read attachment %s: %w", path, err)
		}
		lines = append(lines,
			"--"+boundary,
			fmt.Sprintf("Content-Type: %s; name=%q", m.fs.MimeType(path), m.fs.Basename(path)),
			"Content-Transfer-Encoding: base64",
			"Content-Disposition: attachment",
			"",
			encodeBase64(data),
		)
	}

	lines = append(lines, "--"+boundary+"--")

	return strings.Join(lines, crlf), nil
}

// encodeBase64 encodes data and wraps it at the RFC 2045 line limit with
// CRLF terminators.
func encodeBase64(data []byte) string {
	encoded := base64.StdEncoding.EncodeToString(data)
	var lines []string
	for i := 0; i < len(encoded); i += base64LineLength {
		end := i + base64LineLength
		if end > len(encoded) {
			end = len(encoded)
		}
		lines = append(lines, encoded[i:end])
	}
	return strings.Join(lines, crlf)
}
