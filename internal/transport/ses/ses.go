// Package ses implements a Transport that delivers messages through the
// AWS SES v2 API as raw MIME content.
package ses

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	sesv2 "github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"github.com/aherne/mailing-api/internal/transport"
)

// Config holds the settings for creating a Transport.
type Config struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string

	// Sender is the verified SES identity used as the envelope sender
	// and, when the compiled headers carry no From line, as the From
	// header.
	Sender string
}

// SendEmailAPI is the interface for the SES v2 SendEmail operation. Used
// for testing with mock implementations.
type SendEmailAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// Transport submits raw MIME messages to SES v2.
type Transport struct {
	sender string
	client SendEmailAPI
}

// New creates a Transport backed by a real SES client.
func New(ctx context.Context, cfg Config) (*Transport, error) {
	var opts []func(*awsconfig.LoadOptions) error

	opts = append(opts, awsconfig.WithRegion(cfg.Region))

	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &Transport{
		sender: cfg.Sender,
		client: sesv2.NewFromConfig(awsCfg),
	}, nil
}

// NewWithClient creates a Transport with a custom client, used for
// testing.
func NewWithClient(sender string, client SendEmailAPI) *Transport {
	return &Transport{sender: sender, client: client}
}

// Send builds a raw MIME message from the compiled pieces and submits it
// in a single SendEmail call.
func (t *Transport) Send(ctx context.Context, recipients, subject, body, headers string) error {
	to, err := transport.EnvelopeRecipients(recipients, headers)
	if err != nil {
		return err
	}

	// With raw content the Destination is the envelope, so Cc and Bcc
	// recipients go there and the Bcc line never reaches the wire.
	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(t.sender),
		Destination: &types.Destination{
			ToAddresses: to,
		},
		Content: &types.EmailContent{
			Raw: &types.RawMessage{
				Data: buildRawMessage(t.sender, recipients, subject, body, transport.StripHeader(headers, "Bcc")),
			},
		},
	}

	out, err := t.client.SendEmail(ctx, input)
	if err != nil {
		return fmt.Errorf("SES SendEmail failed: %w", err)
	}

	slog.Debug("message accepted by SES",
		"message_id", aws.ToString(out.MessageId),
		"recipients", len(to),
	)
	return nil
}

// Name returns the transport name.
func (t *Transport) Name() string {
	return "ses"
}

// buildRawMessage prepends a From line when the compiled headers lack
// one, then reassembles the wire message. SES rejects raw content with
// no From header.
func buildRawMessage(sender, recipients, subject, body, headers string) []byte {
	var buf bytes.Buffer
	if !transport.HasHeader(headers, "From") {
		fmt.Fprintf(&buf, "From: %s\r\n", sender)
	}
	buf.Write(transport.AssembleMessage(recipients, subject, body, headers))
	return buf.Bytes()
}
