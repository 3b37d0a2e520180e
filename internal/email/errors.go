package email

import "errors"

// Sentinel errors surfaced by the message builder. Callers match them
// with errors.Is; the package itself never logs.
var (
	// ErrBadAddress reports an address or display name that would break
	// a header line or a comma-joined recipient list.
	ErrBadAddress = errors.New("malformed address")

	// ErrAttachmentNotFound reports an attachment path that did not
	// resolve to an existing file when AddAttachment was called.
	ErrAttachmentNotFound = errors.New("attachment not found")

	// ErrNoRecipients reports a Send on a message with no To addresses.
	ErrNoRecipients = errors.New("message has no recipients")

	// ErrSendFailed reports a transport that refused or failed to
	// deliver the compiled message.
	ErrSendFailed = errors.New("send failed")
)
