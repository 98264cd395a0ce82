package logger

import (
	"context"
	"log/slog"
	"time"
)

// AuditLogger records token lifecycle events in a structured, greppable
// shape. Token values and recipient addresses never appear here.
type AuditLogger struct {
	logger *slog.Logger
}

// NewAuditLogger creates a new audit logger
func NewAuditLogger(logger *slog.Logger) *AuditLogger {
	return &AuditLogger{logger: logger}
}

// LogTokenIssuance records the aggregate outcome of an issuance batch
func (al *AuditLogger) LogTokenIssuance(formID string, total, successful, failed int) {
	attrs := []slog.Attr{
		slog.String("audit_type", "token"),
		slog.String("event_type", "token_issuance"),
		slog.String("form_id", formID),
		slog.Int("total", total),
		slog.Int("successful", successful),
		slog.Int("failed", failed),
		slog.String("timestamp", time.Now().UTC().Format(time.RFC3339)),
	}

	level := slog.LevelInfo
	if failed > 0 {
		level = slog.LevelWarn
	}
	al.logger.LogAttrs(context.Background(), level, "audit", attrs...)
}

// LogTokenRedemption records one validation attempt
func (al *AuditLogger) LogTokenRedemption(formID string, success bool, failureReason string) {
	attrs := []slog.Attr{
		slog.String("audit_type", "token"),
		slog.String("event_type", "token_redemption"),
		slog.String("form_id", formID),
		slog.Bool("success", success),
		slog.String("timestamp", time.Now().UTC().Format(time.RFC3339)),
	}

	if failureReason != "" {
		attrs = append(attrs, slog.String("failure_reason", failureReason))
	}

	if success {
		al.logger.LogAttrs(context.Background(), slog.LevelInfo, "audit", attrs...)
	} else {
		al.logger.LogAttrs(context.Background(), slog.LevelWarn, "audit", attrs...)
	}
}
