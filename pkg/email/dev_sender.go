package email

import (
	"context"
	"log/slog"
)

// DevSender implements EmailSender for local development: it logs the email
// instead of sending it, so reset links are visible in the server output.
type DevSender struct {
	log *slog.Logger
}

// NewDevSender creates a development email sender.
func NewDevSender(log *slog.Logger) EmailSender {
	return &DevSender{log: log}
}

func (d *DevSender) SendEmail(ctx context.Context, params SendEmailParams) error {
	if err := params.Validate(); err != nil {
		return err
	}

	d.log.InfoContext(ctx, "dev email",
		slog.String("to", params.SendTo),
		slog.String("subject", params.Subject),
		slog.String("tag", params.Tag),
		slog.String("body", params.BodyHTML),
	)
	return nil
}
