package email

import (
	"context"
	"fmt"

	"github.com/aherne/mailing-api/internal/transport"
)

// Header is a single custom header line appended verbatim after the
// standard headers, in insertion order.
type Header struct {
	Name  string
	Value string
}

// Message accumulates the parts of a single email message. It is built up
// with the Add/Set methods and consumed by Send. A Message is not safe
// for concurrent use.
type Message struct {
	subject string
	body    string

	to      []Address
	from    *Address
	sender  *Address
	replyTo *Address
	cc      []Address
	bcc     []Address

	customHeaders []Header

	contentType string
	charset     string

	attachments []string

	fs FileSystem
}

// NewMessage creates a message with the given subject and body text,
// resolving attachments through the real file system.
func NewMessage(subject, body string) *Message {
	return NewMessageWithFS(subject, body, OSFileSystem{})
}

// NewMessageWithFS creates a message that resolves attachments through fs.
// Useful for tests.
func NewMessageWithFS(subject, body string, fs FileSystem) *Message {
	return &Message{subject: subject, body: body, fs: fs}
}

// AddTo appends a recipient. At least one is required before Send.
func (m *Message) AddTo(addr Address) {
	m.to = append(m.to, addr)
}

// SetFrom sets the From header address.
func (m *Message) SetFrom(addr Address) {
	m.from = &addr
}

// SetSender sets the Sender header address.
func (m *Message) SetSender(addr Address) {
	m.sender = &addr
}

// SetReplyTo sets the Reply-To header address.
func (m *Message) SetReplyTo(addr Address) {
	m.replyTo = &addr
}

// AddCC appends a carbon-copy recipient. Recipients are not deduplicated.
func (m *Message) AddCC(addr Address) {
	m.cc = append(m.cc, addr)
}

// AddBCC appends a blind carbon-copy recipient.
func (m *Message) AddBCC(addr Address) {
	m.bcc = append(m.bcc, addr)
}

// SetContentType overrides the default text/plain content type. The
// charset always travels with the content type; neither is set alone.
func (m *Message) SetContentType(contentType, charset string) {
	m.contentType = contentType
	m.charset = charset
}

// AddCustomHeader appends a header emitted verbatim after the standard
// headers. Collisions with standard headers are not detected; that is the
// caller's responsibility.
func (m *Message) AddCustomHeader(name, value string) {
	m.customHeaders = append(m.customHeaders, Header{Name: name, Value: value})
}

// AddAttachment records a file to attach. The path must exist now; its
// bytes are read later, when the message is compiled.
func (m *Message) AddAttachment(path string) error {
	if !m.fs.Exists(path) {
		return fmt.Errorf("%w: %s", ErrAttachmentNotFound, path)
	}
	m.attachments = append(m.attachments, path)
	return nil
}

// Send compiles the message and hands it to t in a single blocking call.
// The boundary token is regenerated on every call, so sending the same
// message twice produces two distinct multipart encodings of the same
// content. A transport failure leaves the message untouched.
func (m *Message) Send(ctx context.Context, t transport.Transport) error {
	if len(m.to) == 0 {
		return ErrNoRecipients
	}

	boundary := newBoundary()
	headers := m.compileHeaders(boundary)
	body, err := m.compileBody(boundary)
	if err != nil {
		return err
	}

	if err := t.Send(ctx, joinAddresses(m.to), m.subject, body, headers); err != nil {
		return fmt.Errorf("%w: %w", ErrSendFailed, err)
	}
	return nil
}
