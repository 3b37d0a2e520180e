// Package main is the command-line entry point: it builds one message
// from flags and hands it to the configured transport.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/mail"
	"os"
	"strings"

	"github.com/aherne/mailing-api/internal/config"
	"github.com/aherne/mailing-api/internal/email"
	"github.com/aherne/mailing-api/internal/transport"
	"github.com/aherne/mailing-api/internal/transport/graph"
	"github.com/aherne/mailing-api/internal/transport/sendmail"
	"github.com/aherne/mailing-api/internal/transport/ses"
	"github.com/aherne/mailing-api/internal/transport/smtprelay"
	"github.com/aherne/mailing-api/internal/transport/stdout"
)

// stringList collects repeatable flag values in order.
type stringList []string

func (s *stringList) String() string {
	return strings.Join(*s, ",")
}

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

func main() {
	var (
		to      stringList
		cc      stringList
		bcc     stringList
		attach  stringList
		headers stringList
	)

	configPath := flag.String("config", "", "path to YAML configuration file (optional)")
	from := flag.String("from", "", "From address, bare or in 'Name <addr>' form")
	replyTo := flag.String("reply-to", "", "Reply-To address")
	subject := flag.String("subject", "", "message subject")
	body := flag.String("body", "", "message body text")
	contentType := flag.String("content-type", "", "body content type (e.g. text/html)")
	charset := flag.String("charset", "utf-8", "charset when -content-type is set")
	flag.Var(&to, "to", "recipient address (repeatable)")
	flag.Var(&cc, "cc", "carbon-copy address (repeatable)")
	flag.Var(&bcc, "bcc", "blind carbon-copy address (repeatable)")
	flag.Var(&attach, "attach", "attachment file path (repeatable)")
	flag.Var(&headers, "header", "custom header in 'Name: Value' form (repeatable)")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	setupLogger(cfg.Logging.Level)

	msg := email.NewMessage(*subject, *body)

	if err := populateMessage(msg, *from, *replyTo, to, cc, bcc, attach, headers); err != nil {
		slog.Error("failed to build message", "error", err)
		os.Exit(1)
	}
	if *contentType != "" {
		msg.SetContentType(*contentType, *charset)
	}

	t := selectTransport(cfg)

	slog.Info("sending message",
		"transport", t.Name(),
		"recipients", len(to),
		"attachments", len(attach),
	)

	if err := msg.Send(context.Background(), t); err != nil {
		slog.Error("send failed", "error", err)
		os.Exit(1)
	}

	slog.Info("message sent")
}

// populateMessage applies the address, attachment, and header flags to
// msg in the order they were given.
func populateMessage(msg *email.Message, from, replyTo string, to, cc, bcc, attach, headers stringList) error {
	if len(to) == 0 {
		return fmt.Errorf("at least one -to address is required")
	}

	for _, raw := range to {
		addr, err := parseAddress(raw)
		if err != nil {
			return err
		}
		msg.AddTo(addr)
	}
	for _, raw := range cc {
		addr, err := parseAddress(raw)
		if err != nil {
			return err
		}
		msg.AddCC(addr)
	}
	for _, raw := range bcc {
		addr, err := parseAddress(raw)
		if err != nil {
			return err
		}
		msg.AddBCC(addr)
	}
	if from != "" {
		addr, err := parseAddress(from)
		if err != nil {
			return err
		}
		msg.SetFrom(addr)
	}
	if replyTo != "" {
		addr, err := parseAddress(replyTo)
		if err != nil {
			return err
		}
		msg.SetReplyTo(addr)
	}

	for _, h := range headers {
		name, value, ok := strings.Cut(h, ":")
		if !ok {
			return fmt.Errorf("malformed -header value %q, want 'Name: Value'", h)
		}
		msg.AddCustomHeader(strings.TrimSpace(name), strings.TrimSpace(value))
	}

	for _, path := range attach {
		if err := msg.AddAttachment(path); err != nil {
			return err
		}
	}

	return nil
}

// parseAddress accepts a bare address or the 'Name <addr>' form.
func parseAddress(raw string) (email.Address, error) {
	parsed, err := mail.ParseAddress(raw)
	if err != nil {
		return email.Address{}, fmt.Errorf("invalid address %q: %w", raw, err)
	}
	if parsed.Name != "" {
		return email.NewNamedAddress(parsed.Name, parsed.Address)
	}
	return email.NewAddress(parsed.Address)
}

// loadConfig loads configuration from the specified path (YAML + env
// override) or from environment variables only if no path is given.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFromFile(path)
	}
	return config.Load()
}

// setupLogger configures the global slog logger with JSON output and the
// specified log level.
func setupLogger(level string) {
	var logLevel slog.Level

	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))
}

// selectTransport chooses the delivery backend based on configuration.
// If TRANSPORT is set it takes precedence; otherwise the first fully
// configured backend wins, falling back to sendmail when the binary
// exists and stdout as the last resort.
func selectTransport(cfg *config.Config) transport.Transport {
	switch cfg.Transport {
	case "sendmail":
		slog.Info("using sendmail transport", "path", cfg.Sendmail.Path)
		return sendmail.New(cfg.Sendmail.Path)

	case "smtp":
		if !cfg.SMTPConfigured() {
			slog.Error("smtp transport selected but SMTP_ADDR and SMTP_FROM are required")
			os.Exit(1)
		}
		slog.Info("using smtp transport", "addr", cfg.SMTP.Addr)
		return smtprelay.New(smtprelay.Config{
			Addr:               cfg.SMTP.Addr,
			From:               cfg.SMTP.From,
			Username:           cfg.SMTP.Username,
			Password:           cfg.SMTP.Password,
			ImplicitTLS:        cfg.SMTP.ImplicitTLS,
			InsecureSkipVerify: cfg.SMTP.InsecureSkipVerify,
		})

	case "ses":
		if !cfg.SESConfigured() {
			slog.Error("ses transport selected but SES_REGION and SES_SENDER are required")
			os.Exit(1)
		}
		slog.Info("using SES transport", "region", cfg.SES.Region, "sender", cfg.SES.Sender)
		t, err := ses.New(context.Background(), ses.Config{
			Region:          cfg.SES.Region,
			AccessKeyID:     cfg.SES.AccessKeyID,
			SecretAccessKey: cfg.SES.SecretAccessKey,
			Sender:          cfg.SES.Sender,
		})
		if err != nil {
			slog.Error("failed to create SES transport", "error", err)
			os.Exit(1)
		}
		return t

	case "graph":
		if !cfg.GraphConfigured() {
			slog.Error("graph transport selected but GRAPH_TENANT_ID, GRAPH_CLIENT_ID, GRAPH_CLIENT_SECRET, and GRAPH_SENDER are required")
			os.Exit(1)
		}
		slog.Info("using Graph transport", "sender", cfg.Graph.Sender)
		return graph.New(graph.Config{
			TenantID:     cfg.Graph.TenantID,
			ClientID:     cfg.Graph.ClientID,
			ClientSecret: cfg.Graph.ClientSecret,
			Sender:       cfg.Graph.Sender,
		})

	case "stdout":
		slog.Info("using stdout transport")
		return stdout.New()

	case "":
		if cfg.GraphConfigured() {
			slog.Info("using Graph transport (auto-detected)", "sender", cfg.Graph.Sender)
			return graph.New(graph.Config{
				TenantID:     cfg.Graph.TenantID,
				ClientID:     cfg.Graph.ClientID,
				ClientSecret: cfg.Graph.ClientSecret,
				Sender:       cfg.Graph.Sender,
			})
		}
		if cfg.SESConfigured() {
			slog.Info("using SES transport (auto-detected)", "region", cfg.SES.Region)
			t, err := ses.New(context.Background(), ses.Config{
				Region:          cfg.SES.Region,
				AccessKeyID:     cfg.SES.AccessKeyID,
				SecretAccessKey: cfg.SES.SecretAccessKey,
				Sender:          cfg.SES.Sender,
			})
			if err != nil {
				slog.Error("failed to create SES transport", "error", err)
				os.Exit(1)
			}
			return t
		}
		if cfg.SMTPConfigured() {
			slog.Info("using smtp transport (auto-detected)", "addr", cfg.SMTP.Addr)
			return smtprelay.New(smtprelay.Config{
				Addr:               cfg.SMTP.Addr,
				From:               cfg.SMTP.From,
				Username:           cfg.SMTP.Username,
				Password:           cfg.SMTP.Password,
				ImplicitTLS:        cfg.SMTP.ImplicitTLS,
				InsecureSkipVerify: cfg.SMTP.InsecureSkipVerify,
			})
		}
		if _, err := os.Stat(cfg.Sendmail.Path); err == nil {
			slog.Info("using sendmail transport (auto-detected)", "path", cfg.Sendmail.Path)
			return sendmail.New(cfg.Sendmail.Path)
		}
		slog.Info("no transport configured, using stdout transport")
		return stdout.New()

	default:
		slog.Error("unknown transport", "transport", cfg.Transport)
		os.Exit(1)
		return nil
	}
}
