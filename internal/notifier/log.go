package notifier

import (
	"context"
	"log/slog"

	"github.com/amishk599/jobpipe/internal/model"
)

// Ensure LogSender implements model.Sender.
var _ model.Sender = (*LogSender)(nil)

// LogSender writes responses to the given logger instead of delivering them.
type LogSender struct {
	logger *slog.Logger
}

// NewLogSender returns a sender that logs each response via slog.
func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

// Send logs the recipient, subject and body size. It never fails.
func (n *LogSender) Send(_ context.Context, recipient, subject, body string) error {
	n.logger.Info("response sent", "recipient", recipient, "subject", subject, "body_bytes", len(body))
	n.logger.Debug("response body", "body", body)
	return nil
}
