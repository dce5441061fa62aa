// Package audit records security-relevant events (signups, login attempts,
// logouts, rate-limit blocks) as structured log entries. Events are
// best-effort: recording never fails the operation being audited.
package audit

import (
	"context"

	"go.uber.org/zap"
)

// Event actions recorded by the auth and transport layers.
const (
	ActionSignup       = "signup"
	ActionLoginSuccess = "login_success"
	ActionLoginFailure = "login_failure"
	ActionLogout       = "logout"
	ActionRateLimited  = "rate_limited"
)

// IPExtractor returns the client IP from the request context. Returning ""
// records the IP as "unknown".
type IPExtractor func(context.Context) string

type clientIPKey struct{}

// ClientIPKey is the context key transports use to pass the client IP
// along to the audit logger.
var ClientIPKey = clientIPKey{}

// Logger writes audit events through zap. The zero value is not usable;
// construct with NewLogger.
type Logger struct {
	log         *zap.Logger
	ipExtractor IPExtractor
}

// NewLogger returns a Logger writing to log. ipExtractor may be nil.
func NewLogger(log *zap.Logger, ipExtractor IPExtractor) *Logger {
	if log == nil {
		log = zap.NewNop()
	}
	return &Logger{log: log, ipExtractor: ipExtractor}
}

// Event records one audit event. subjectID is 0 when the subject is unknown
// (failed logins, anonymous rate-limit blocks). Passwords, tokens, and
// hashes must never appear in fields.
func (l *Logger) Event(ctx context.Context, action string, subjectID int64, fields ...zap.Field) {
	ip := ""
	if l.ipExtractor != nil {
		ip = l.ipExtractor(ctx)
	}
	if ip == "" {
		ip = "unknown"
	}
	all := make([]zap.Field, 0, len(fields)+3)
	all = append(all, zap.String("action", action), zap.Int64("subject_id", subjectID), zap.String("ip", ip))
	all = append(all, fields...)
	l.log.Info("audit", all...)
}
