package email

import (
	"errors"
	"testing"
)

func TestAddress_String(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		addrName  string
		addrEmail string
		want      string
	}{
		{name: "bare email", addrName: "", addrEmail: "a@x.com", want: "a@x.com"},
		{name: "with display name", addrName: "Alice Smith", addrEmail: "alice@example.com", want: `"Alice Smith" <alice@example.com>`},
		{name: "display name with comma", addrName: "Smith, Alice", addrEmail: "alice@example.com", want: `"Smith, Alice" <alice@example.com>`},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			addr, err := NewNamedAddress(tt.addrName, tt.addrEmail)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := addr.String(); got != tt.want {
				t.Errorf("String(): got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewAddress_Rejections(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		addrName  string
		addrEmail string
	}{
		{name: "empty email", addrName: "Alice", addrEmail: ""},
		{name: "email with comma", addrName: "", addrEmail: "a@x.com,b@x.com"},
		{name: "email with LF", addrName: "", addrEmail: "a@x.com\nBcc: evil@x.com"},
		{name: "email with CR", addrName: "", addrEmail: "a@x.com\r"},
		{name: "name with LF", addrName: "Alice\nBcc: evil@x.com", addrEmail: "a@x.com"},
		{name: "name with quote", addrName: `Alice" <evil@x.com>`, addrEmail: "a@x.com"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := NewNamedAddress(tt.addrName, tt.addrEmail)
			if !errors.Is(err, ErrBadAddress) {
				t.Errorf("expected ErrBadAddress, got %v", err)
			}
		})
	}
}

func TestAddress_Accessors(t *testing.T) {
	t.Parallel()

	addr, err := NewNamedAddress("Alice", "alice@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if addr.Email() != "alice@example.com" {
		t.Errorf("Email(): got %q, want %q", addr.Email(), "alice@example.com")
	}
	if addr.Name() != "Alice" {
		t.Errorf("Name(): got %q, want %q", addr.Name(), "Alice")
	}
}

func TestJoinAddresses(t *testing.T) {
	t.Parallel()

	alice, _ := NewNamedAddress("Alice", "alice@example.com")
	bob, _ := NewAddress("bob@example.com")

	got := joinAddresses([]Address{alice, bob})
	want := `"Alice" <alice@example.com>, bob@example.com`
	if got != want {
		t.Errorf("joinAddresses: got %q, want %q", got, want)
	}

	if joinAddresses(nil) != "" {
		t.Errorf("joinAddresses(nil): got %q, want empty", joinAddresses(nil))
	}
}
