package email

import (
	"context"
	"log/slog"

	"github.com/dmitrymomot/todoapi/pkg/logger"
)

// LogSender logs messages instead of delivering them.
type LogSender struct {
	logger *slog.Logger
}

func NewLogSender(log *slog.Logger) *LogSender {
	if log == nil {
		log = slog.Default()
	}
	return &LogSender{logger: log}
}

func (s *LogSender) SendEmail(ctx context.Context, params SendEmailParams) error {
	if err := params.Validate(); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "email not delivered: no provider configured",
		slog.String("to", params.SendTo),
		slog.String("subject", params.Subject),
		slog.String("tag", params.Tag),
		logger.Component("email"),
	)
	return nil
}
