// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"net/http"
	"strings"

	"github.com/dalemusser/gatherly/internal/app/store/audit"
	"github.com/dalemusser/gatherly/internal/app/system/network"
	"github.com/dalemusser/gatherly/internal/domain/models"
	"go.uber.org/zap"
)

// Destinations accepted by each Config field.
const (
	DestAll = "all" // MongoDB + zap
	DestDB  = "db"  // MongoDB only
	DestLog = "log" // zap only
	DestOff = "off" // disabled
)

// Config holds audit logging configuration.
type Config struct {
	// Invitation controls logging for invitation lifecycle events.
	Invitation string
	// Auth controls logging for session create/end events.
	Auth string
	// Admin controls logging for admin configuration changes.
	Admin string
}

// EventStore persists audit events. *audit.Store implements it.
type EventStore interface {
	Log(ctx context.Context, event audit.Event) error
}

// Logger provides convenience methods for logging audit events.
// It logs to MongoDB (via EventStore) and to structured logs (via zap).
type Logger struct {
	store  EventStore
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger.
func New(store EventStore, zapLog *zap.Logger, config Config) *Logger {
	return &Logger{
		store:  store,
		zapLog: zapLog,
		config: config,
	}
}

// logToZap logs the event to zap with consistent structure.
func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
		zap.String("ip", event.IP),
	}

	if event.UserID != "" {
		fields = append(fields, zap.String("user_id", event.UserID))
	}
	if event.ActorID != "" {
		fields = append(fields, zap.String("actor_id", event.ActorID))
	}
	if event.InvitationID != "" {
		fields = append(fields, zap.String("invitation_id", event.InvitationID))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// Log records an audit event based on configuration.
// If the logger is nil, this is a no-op (allows tests to use nil audit logger).
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	// Determine which config setting applies based on event category
	var setting string
	switch event.Category {
	case audit.CategoryInvitation:
		setting = l.config.Invitation
	case audit.CategoryAuth:
		setting = l.config.Auth
	case audit.CategoryAdmin:
		setting = l.config.Admin
	}
	if setting == "" {
		setting = DestAll
	}

	if setting == DestOff {
		return
	}

	if setting == DestAll || setting == DestLog {
		l.logToZap(event)
	}

	if (setting == DestAll || setting == DestDB) && l.store != nil {
		if err := l.store.Log(ctx, event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType),
			)
		}
	}
}

// --- Invitation Events ---

func (l *Logger) invitationEvent(ctx context.Context, r *http.Request, eventType string, inv *models.Invitation, details map[string]string) {
	l.Log(ctx, audit.Event{
		Category:     audit.CategoryInvitation,
		EventType:    eventType,
		UserID:       inv.UserID,
		InvitationID: inv.ID,
		IP:           network.ClientIP(r),
		UserAgent:    r.UserAgent(),
		Success:      true,
		Details:      details,
	})
}

// InvitationCreated logs a new draft.
func (l *Logger) InvitationCreated(ctx context.Context, r *http.Request, inv *models.Invitation) {
	if inv == nil {
		return
	}
	l.invitationEvent(ctx, r, audit.EventInvitationCreated, inv, map[string]string{
		"template_id": inv.TemplateID,
	})
}

// InvitationUpdated logs a draft edit.
func (l *Logger) InvitationUpdated(ctx context.Context, r *http.Request, inv *models.Invitation) {
	if inv == nil {
		return
	}
	l.invitationEvent(ctx, r, audit.EventInvitationUpdated, inv, map[string]string{
		"template_id": inv.TemplateID,
	})
}

// InvitationPublished logs the draft -> published transition.
func (l *Logger) InvitationPublished(ctx context.Context, r *http.Request, inv *models.Invitation) {
	if inv == nil {
		return
	}
	l.invitationEvent(ctx, r, audit.EventInvitationPublished, inv, map[string]string{
		"slug": inv.SlugValue(),
	})
}

// --- Authentication Events ---

// SessionCreated logs a session cookie being issued. sessionID may be empty.
func (l *Logger) SessionCreated(ctx context.Context, r *http.Request, userID, sessionID string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventSessionCreated,
		UserID:    userID,
		IP:        network.ClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   true,
		Details:   sessionDetails(sessionID),
	})
}

// SessionEnded logs a session cookie being cleared. sessionID may be empty.
func (l *Logger) SessionEnded(ctx context.Context, r *http.Request, userID, sessionID string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventSessionEnded,
		UserID:    userID,
		IP:        network.ClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   true,
		Details:   sessionDetails(sessionID),
	})
}

func sessionDetails(sessionID string) map[string]string {
	if sessionID == "" {
		return nil
	}
	return map[string]string{"session_id": sessionID}
}

// --- Admin Events ---

// ConfigUpdated logs an admin changing app configuration keys.
func (l *Logger) ConfigUpdated(ctx context.Context, r *http.Request, actorID string, keys []string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAdmin,
		EventType: audit.EventConfigUpdated,
		ActorID:   actorID,
		IP:        network.ClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   true,
		Details: map[string]string{
			"keys": strings.Join(keys, ","),
		},
	})
}
