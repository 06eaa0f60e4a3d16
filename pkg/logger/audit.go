package logger

import (
	"context"
	"log/slog"
	"time"
)

// VerdictEvent is one scoring outcome for the audit trail
type VerdictEvent struct {
	Username  string
	IPAddress string
	UserAgent string
	Verdict   string
	Score     int
	Blocked   bool
}

// AuditLogger emits structured audit events for scoring verdicts
type AuditLogger struct {
	logger *slog.Logger
}

// NewAuditLogger creates a new audit logger
func NewAuditLogger(logger *slog.Logger) *AuditLogger {
	return &AuditLogger{logger: logger}
}

// LogVerdict logs one scoring verdict. Blocked attempts log at Warn,
// everything else at Info.
func (al *AuditLogger) LogVerdict(event VerdictEvent) {
	attrs := []slog.Attr{
		slog.String("audit_type", "bot_detection"),
		slog.String("username", SanitizedUsername(event.Username)),
		slog.String("verdict", event.Verdict),
		slog.Int("bot_score", event.Score),
		slog.Bool("blocked", event.Blocked),
		slog.String("timestamp", time.Now().UTC().Format(time.RFC3339)),
	}

	if event.IPAddress != "" {
		attrs = append(attrs, slog.String("ip_address", event.IPAddress))
	}
	if event.UserAgent != "" {
		attrs = append(attrs, slog.String("user_agent", event.UserAgent))
	}

	level := slog.LevelInfo
	if event.Blocked {
		level = slog.LevelWarn
	}
	al.logger.LogAttrs(context.Background(), level, "audit", attrs...)
}
