package logger

import (
	"context"
	"log/slog"
	"time"
)

// AlertEvent describes a security occurrence worth surfacing outside the
// regular request log stream.
type AlertEvent struct {
	EventType string
	Severity  string
	Email     string
	IPAddress string
	Details   string
	Metadata  map[string]string
}

// AlertLogger writes high-signal security events to a dedicated slog
// channel so they can be routed (and alerted on) independently of
// application logs.
type AlertLogger struct {
	logger *slog.Logger
}

func NewAlertLogger(logger *slog.Logger) *AlertLogger {
	return &AlertLogger{logger: logger}
}

// Alert emits a security alert. Severity drives the log level: critical
// events log at Error, everything else at Warn.
func (al *AlertLogger) Alert(event AlertEvent) {
	attrs := []slog.Attr{
		slog.String("alert_type", "security"),
		slog.String("event_type", event.EventType),
		slog.String("severity", event.Severity),
		slog.String("timestamp", time.Now().UTC().Format(time.RFC3339)),
	}

	if event.Email != "" {
		attrs = append(attrs, slog.String("email", SanitizedEmail(event.Email)))
	}
	if event.IPAddress != "" {
		attrs = append(attrs, slog.String("ip_address", event.IPAddress))
	}
	if event.Details != "" {
		attrs = append(attrs, slog.String("details", event.Details))
	}
	for key, val := range event.Metadata {
		attrs = append(attrs, slog.String(key, val))
	}

	level := slog.LevelWarn
	if event.Severity == "critical" {
		level = slog.LevelError
	}
	al.logger.LogAttrs(context.Background(), level, "security_alert", attrs...)
}
