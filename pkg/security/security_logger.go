package security

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// EventType represents the type of security event
type EventType string

const (
	EventResumeUploaded     EventType = "resume_uploaded"
	EventResumeRejected     EventType = "resume_rejected"
	EventResumeDeleted      EventType = "resume_deleted"
	EventResumeCompensated  EventType = "resume_compensated"
	EventMalwareDetected    EventType = "malware_detected"
	EventRateLimitTriggered EventType = "rate_limit_triggered"
	EventUnauthorizedAccess EventType = "unauthorized_access"
	EventNotificationPosted EventType = "notification_created"
)

// SecurityEvent represents a security-related event to be logged
type SecurityEvent struct {
	Timestamp    time.Time              `json:"timestamp"`
	Service      string                 `json:"service"`
	Environment  string                 `json:"env"`
	Level        string                 `json:"level"`
	Event        EventType              `json:"event"`
	SubjectType  string                 `json:"subject_type,omitempty"`  // "email", "ip", "user_id"
	SubjectValue string                 `json:"subject_value,omitempty"` // Masked or hashed for PII
	IP           string                 `json:"ip,omitempty"`
	RequestID    string                 `json:"request_id,omitempty"`
	Details      map[string]interface{} `json:"details,omitempty"`
}

// SecurityLogger writes audit events through zap. A nil *SecurityLogger is a
// valid no-op logger.
type SecurityLogger struct {
	zapLogger   *zap.Logger
	serviceName string
	environment string
}

// NewSecurityLogger builds a production zap logger writing JSON to stdout.
func NewSecurityLogger(serviceName, environment string) *SecurityLogger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.LevelKey = "level"
	config.EncoderConfig.MessageKey = "message"
	config.OutputPaths = []string{"stdout"}
	config.ErrorOutputPaths = []string{"stderr"}

	logger, err := config.Build(
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.ErrorLevel),
	)
	if err != nil {
		logger, _ = zap.NewProduction()
	}
	return NewSecurityLoggerWith(logger, serviceName, environment)
}

// NewSecurityLoggerWith wraps an existing zap logger.
func NewSecurityLoggerWith(logger *zap.Logger, serviceName, environment string) *SecurityLogger {
	return &SecurityLogger{
		zapLogger:   logger,
		serviceName: serviceName,
		environment: environment,
	}
}

func levelFor(event EventType) zapcore.Level {
	switch event {
	case EventResumeUploaded, EventResumeDeleted, EventNotificationPosted:
		return zapcore.InfoLevel
	case EventMalwareDetected, EventUnauthorizedAccess:
		return zapcore.ErrorLevel
	default:
		return zapcore.WarnLevel
	}
}

// Log logs a security event
func (sl *SecurityLogger) Log(ctx context.Context, event SecurityEvent) {
	if sl == nil || sl.zapLogger == nil {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	event.Service = sl.serviceName
	event.Environment = sl.environment

	level := levelFor(event.Event)
	event.Level = level.String()

	fields := []zap.Field{
		zap.String("service", event.Service),
		zap.String("env", event.Environment),
		zap.String("event", string(event.Event)),
	}
	if event.SubjectType != "" {
		fields = append(fields, zap.String("subject_type", event.SubjectType))
	}
	if event.SubjectValue != "" {
		fields = append(fields, zap.String("subject_value", event.SubjectValue))
	}
	if event.IP != "" {
		fields = append(fields, zap.String("ip", event.IP))
	}
	if event.RequestID != "" {
		fields = append(fields, zap.String("request_id", event.RequestID))
	}
	if len(event.Details) > 0 {
		detailsJSON, _ := json.Marshal(event.Details)
		fields = append(fields, zap.String("details", string(detailsJSON)))
	}

	sl.zapLogger.Log(level, string(event.Event), fields...)
}

// LogResumeUploaded records a stored resume.
func (sl *SecurityLogger) LogResumeUploaded(ctx context.Context, userID, path string, size int64) {
	sl.Log(ctx, SecurityEvent{
		Event:        EventResumeUploaded,
		SubjectType:  "user_id",
		SubjectValue: HashValue(userID),
		Details:      map[string]interface{}{"path_hash": HashValue(path), "size": size},
	})
}

// LogResumeRejected records a resume refused before storage.
func (sl *SecurityLogger) LogResumeRejected(ctx context.Context, userID, ip, kind, reason string) {
	sl.Log(ctx, SecurityEvent{
		Event:        EventResumeRejected,
		SubjectType:  "user_id",
		SubjectValue: HashValue(userID),
		IP:           ip,
		Details:      map[string]interface{}{"kind": kind, "reason": reason},
	})
}

// LogResumeCompensated records an upload rolled back after the profile update failed.
func (sl *SecurityLogger) LogResumeCompensated(ctx context.Context, userID string, removed bool) {
	sl.Log(ctx, SecurityEvent{
		Event:        EventResumeCompensated,
		SubjectType:  "user_id",
		SubjectValue: HashValue(userID),
		Details:      map[string]interface{}{"object_removed": removed},
	})
}

// LogResumeDeleted records a resume delete and whether every step succeeded.
func (sl *SecurityLogger) LogResumeDeleted(ctx context.Context, userID string, removedObjects int, complete bool) {
	sl.Log(ctx, SecurityEvent{
		Event:        EventResumeDeleted,
		SubjectType:  "user_id",
		SubjectValue: HashValue(userID),
		Details:      map[string]interface{}{"removed_objects": removedObjects, "complete": complete},
	})
}

// LogMalwareDetected records an infected upload.
func (sl *SecurityLogger) LogMalwareDetected(ctx context.Context, userID, ip, threat, scanner string) {
	sl.Log(ctx, SecurityEvent{
		Event:        EventMalwareDetected,
		SubjectType:  "user_id",
		SubjectValue: HashValue(userID),
		IP:           ip,
		Details:      map[string]interface{}{"threat": threat, "scanner": scanner},
	})
}

// LogRateLimitTriggered logs when rate limiting is triggered
func (sl *SecurityLogger) LogRateLimitTriggered(ctx context.Context, ip, requestID, endpoint string) {
	sl.Log(ctx, SecurityEvent{
		Event:        EventRateLimitTriggered,
		SubjectType:  "ip",
		SubjectValue: ip,
		IP:           ip,
		RequestID:    requestID,
		Details:      map[string]interface{}{"endpoint": endpoint},
	})
}

// LogUnauthorizedAccess logs a rejected token or a forbidden call.
func (sl *SecurityLogger) LogUnauthorizedAccess(ctx context.Context, ip, requestID, endpoint, reason string) {
	sl.Log(ctx, SecurityEvent{
		Event:     EventUnauthorizedAccess,
		IP:        ip,
		RequestID: requestID,
		Details:   map[string]interface{}{"endpoint": endpoint, "reason": reason},
	})
}

// LogNotificationCreated records a server-side notification publish.
func (sl *SecurityLogger) LogNotificationCreated(ctx context.Context, actorID, recipientID, notificationType string) {
	sl.Log(ctx, SecurityEvent{
		Event:        EventNotificationPosted,
		SubjectType:  "user_id",
		SubjectValue: HashValue(recipientID),
		Details:      map[string]interface{}{"actor": HashValue(actorID), "type": notificationType},
	})
}

// Sync flushes any buffered log entries
func (sl *SecurityLogger) Sync() error {
	if sl == nil || sl.zapLogger == nil {
		return nil
	}
	return sl.zapLogger.Sync()
}

// --- Helper Functions ---

// MaskEmail masks an email for logging (e.g., "j***@example.com")
func MaskEmail(email string) string {
	if len(email) < 3 {
		return "***"
	}
	atIndex := -1
	for i, c := range email {
		if c == '@' {
			atIndex = i
			break
		}
	}
	if atIndex <= 1 {
		return "***" + email[1:]
	}
	return string(email[0]) + "***" + email[atIndex:]
}

// HashValue creates a SHA256 hash of a value (for logging without PII)
func HashValue(value string) string {
	hash := sha256.Sum256([]byte(value))
	return hex.EncodeToString(hash[:8]) // First 16 chars of hex
}
