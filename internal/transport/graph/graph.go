// Package graph implements a Transport that delivers messages through
// the Microsoft Graph sendMail endpoint. The compiled message is
// submitted in raw MIME form, which Graph accepts as a base64 text/plain
// request body, so headers and multipart framing pass through untouched.
package graph

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aherne/mailing-api/internal/transport"
)

// Config holds the settings for creating a Transport.
type Config struct {
	TenantID     string
	ClientID     string
	ClientSecret string

	// Sender is the user or shared mailbox the message is sent as.
	Sender string
}

// Transport submits raw MIME messages to the Graph API using OAuth2
// client-credentials authentication.
type Transport struct {
	sender     string
	sendURL    string
	httpClient *http.Client
	token      *tokenCache
}

// New creates a Transport for the given tenant and sender.
func New(cfg Config) *Transport {
	tokenURL := fmt.Sprintf(
		"https://login.microsoftonline.com/%s/oauth2/v2.0/token",
		cfg.TenantID,
	)

	client := &http.Client{Timeout: 30 * time.Second}

	return &Transport{
		sender:     cfg.Sender,
		sendURL:    fmt.Sprintf("https://graph.microsoft.com/v1.0/users/%s/sendMail", cfg.Sender),
		httpClient: client,
		token:      newTokenCache(tokenURL, cfg.ClientID, cfg.ClientSecret, client),
	}
}

// newWithOverrides creates a Transport with custom URLs and HTTP client,
// used for testing.
func newWithOverrides(cfg Config, sendURL, tokenURL string, client *http.Client) *Transport {
	return &Transport{
		sender:     cfg.Sender,
		sendURL:    sendURL,
		httpClient: client,
		token:      newTokenCache(tokenURL, cfg.ClientID, cfg.ClientSecret, client),
	}
}

// Send submits the message once. A 401 triggers a single token refresh
// and one more attempt; any other failure is returned as-is.
func (t *Transport) Send(ctx context.Context, recipients, subject, body, headers string) error {
	raw := buildRawMessage(t.sender, recipients, subject, body, headers)
	payload := base64.StdEncoding.EncodeToString(raw)

	err := t.post(ctx, payload)
	if err == nil {
		return nil
	}

	sendErr, ok := err.(*sendError)
	if !ok || sendErr.statusCode != http.StatusUnauthorized {
		return err
	}

	slog.Info("refreshing Graph API token after 401")
	if _, refreshErr := t.token.ForceRefresh(ctx); refreshErr != nil {
		return fmt.Errorf("token refresh failed: %w", refreshErr)
	}

	return t.post(ctx, payload)
}

// Name returns the transport name.
func (t *Transport) Name() string {
	return "msgraph"
}

// post performs a single sendMail request with the base64 MIME payload.
func (t *Transport) post(ctx context.Context, payload string) error {
	token, err := t.token.Token(ctx)
	if err != nil {
		return fmt.Errorf("failed to get access token: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.sendURL, strings.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "text/plain")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	// HTTP 202 Accepted is success for sendMail
	if resp.StatusCode == http.StatusAccepted || resp.StatusCode == http.StatusOK {
		return nil
	}

	respBody, _ := io.ReadAll(resp.Body)

	var graphErrResp graphErrorResponse
	if jsonErr := json.Unmarshal(respBody, &graphErrResp); jsonErr == nil && graphErrResp.Error.Message != "" {
		return &sendError{statusCode: resp.StatusCode, message: graphErrResp.Error.Message}
	}

	return &sendError{statusCode: resp.StatusCode, message: string(respBody)}
}

// buildRawMessage prepends a From line when the compiled headers lack
// one, then reassembles the wire message. The full header block stays in
// the payload, Bcc included: sendMail with raw MIME takes its recipients
// from the message headers, and Graph strips the Bcc line on delivery.
func buildRawMessage(sender, recipients, subject, body, headers string) []byte {
	msg := transport.AssembleMessage(recipients, subject, body, headers)
	if transport.HasHeader(headers, "From") {
		return msg
	}
	return append([]byte(fmt.Sprintf("From: %s\r\n", sender)), msg...)
}

// sendError is an error response from the sendMail endpoint.
type sendError struct {
	statusCode int
	message    string
}

func (e *sendError) Error() string {
	return fmt.Sprintf("Graph API error (HTTP %d): %s", e.statusCode, e.message)
}

// graphErrorResponse is the error envelope Graph returns on failure.
type graphErrorResponse struct {
	Error graphError `json:"error"`
}

// graphError is the error detail in a Graph API error response.
type graphError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
