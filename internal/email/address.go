// Package email implements the message model for the mailing API: an
// immutable Address value and a Message builder whose compiler assembles
// RFC-822-style headers and a multipart MIME body before handing the
// result to a transport.
package email

import (
	"fmt"
	"strings"
)

// Address is an immutable email address with an optional display name.
type Address struct {
	email string
	name  string
}

// NewAddress creates an Address without a display name.
func NewAddress(email string) (Address, error) {
	return NewNamedAddress("", email)
}

// NewNamedAddress creates an Address with a display name. The email must
// not contain newlines or commas, which would corrupt header lines or
// comma-joined recipient lists; the name must not contain newlines or
// double quotes. Commas in the name are fine since it is rendered quoted.
func NewNamedAddress(name, email string) (Address, error) {
	if email == "" {
		return Address{}, fmt.Errorf("%w: empty email", ErrBadAddress)
	}
	if strings.ContainsAny(email, "\r\n,") {
		return Address{}, fmt.Errorf("%w: email %q contains a newline or comma", ErrBadAddress, email)
	}
	if strings.ContainsAny(name, "\r\n\"") {
		return Address{}, fmt.Errorf("%w: display name %q contains a newline or quote", ErrBadAddress, name)
	}
	return Address{email: email, name: name}, nil
}

// Email returns the bare address.
func (a Address) Email() string { return a.email }

// Name returns the display name, empty when none was given.
func (a Address) Name() string { return a.name }

// String renders the address as a single header token: "name" <email>
// when a display name is set, the bare email otherwise.
func (a Address) String() string {
	if a.name == "" {
		return a.email
	}
	return fmt.Sprintf("%q <%s>", a.name, a.email)
}

// joinAddresses renders addresses as a comma-separated header value.
func joinAddresses(addrs []Address) string {
	tokens := make([]string, 0, len(addrs))
	for _, a := range addrs {
		tokens = append(tokens, a.String())
	}
	return strings.Join(tokens, ", ")
}
