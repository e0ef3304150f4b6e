package email

import (
	"context"
	"log/slog"

	"github.com/dmitrymomot/todoapi/pkg/validator"
)

// EmailSender sends a single message.
type EmailSender interface {
	SendEmail(ctx context.Context, params SendEmailParams) error
}

// SendEmailParams describes an outgoing message. At least one body is required.
type SendEmailParams struct {
	SendTo   string `json:"send_to"`
	Subject  string `json:"subject"`
	BodyHTML string `json:"body_html,omitempty"`
	BodyText string `json:"body_text,omitempty"`
	Tag      string `json:"tag,omitempty"`
}

// Validate checks recipient, subject and body.
func (p SendEmailParams) Validate() error {
	return validator.Apply(
		validator.Required("send_to", p.SendTo),
		validator.Email("send_to", p.SendTo),
		validator.Required("subject", p.Subject),
		validator.MaxLen("subject", p.Subject, 2000),
		validator.Custom("body", "html or text body is required", func() bool {
			return p.BodyHTML != "" || p.BodyText != ""
		}),
	)
}

// New returns a Postmark sender when a server token is configured and a
// LogSender otherwise.
func New(cfg Config, log *slog.Logger) (EmailSender, error) {
	if cfg.PostmarkServerToken == "" {
		return NewLogSender(log), nil
	}
	return NewPostmarkClient(cfg)
}
