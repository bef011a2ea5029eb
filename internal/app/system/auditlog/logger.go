// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/dalemusser/iglesiahub/internal/app/store/audit"
	"go.uber.org/zap"
)

// Destinations accepted for each category.
const (
	All = "all" // MongoDB + zap
	DB  = "db"  // MongoDB only
	Log = "log" // zap only
	Off = "off"
)

// Config holds audit logging configuration, one destination per category.
type Config struct {
	Auth       string
	Admin      string
	Automation string
}

// Sink persists audit events. *audit.Store satisfies it.
type Sink interface {
	Log(ctx context.Context, event audit.Event) error
}

// Logger provides convenience methods for logging audit events.
type Logger struct {
	store  Sink
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger.
func New(store Sink, zapLog *zap.Logger, config Config) *Logger {
	if zapLog == nil {
		zapLog = zap.NewNop()
	}
	return &Logger{store: store, zapLog: zapLog, config: config}
}

// Actor identifies who triggered an event.
type Actor struct {
	ID       string
	ChurchID int64
}

// SystemActor is used for worker and CLI runs.
func SystemActor(churchID int64) Actor { return Actor{ID: "system", ChurchID: churchID} }

func clientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	return r.RemoteAddr
}

func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
		zap.Int64("church_id", event.ChurchID),
	}
	if event.ActorID != "" {
		fields = append(fields, zap.String("actor_id", event.ActorID))
	}
	if event.PersonID != nil {
		fields = append(fields, zap.Int64("person_id", *event.PersonID))
	}
	if event.IP != "" {
		fields = append(fields, zap.String("ip", event.IP))
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

// Log records an audit event according to its category's destination.
// A nil Logger is a no-op so handlers can run without auditing in tests.
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	var setting string
	switch event.Category {
	case audit.CategoryAuth:
		setting = l.config.Auth
	case audit.CategoryAdmin:
		setting = l.config.Admin
	case audit.CategoryAutomation:
		setting = l.config.Automation
	}
	if setting == "" {
		setting = All
	}
	if setting == Off {
		return
	}

	if setting == All || setting == Log {
		l.logToZap(event)
	}
	if (setting == All || setting == DB) && l.store != nil {
		if err := l.store.Log(ctx, event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType))
		}
	}
}

func (l *Logger) admin(ctx context.Context, r *http.Request, a Actor, eventType string, personID *int64, details map[string]string) {
	ev := audit.Event{
		ChurchID:  a.ChurchID,
		Category:  audit.CategoryAdmin,
		EventType: eventType,
		ActorID:   a.ID,
		PersonID:  personID,
		IP:        clientIP(r),
		Success:   true,
		Details:   details,
	}
	if r != nil {
		ev.UserAgent = r.UserAgent()
	}
	l.Log(ctx, ev)
}

func id64(v int64) *int64 { return &v }

func itoa(v int64) string { return strconv.FormatInt(v, 10) }

// --- Authentication Events ---

// SessionStarted logs a cookie session minted from a provider token.
func (l *Logger) SessionStarted(ctx context.Context, r *http.Request, a Actor, role string) {
	l.Log(ctx, audit.Event{
		ChurchID:  a.ChurchID,
		Category:  audit.CategoryAuth,
		EventType: audit.EventSessionStarted,
		ActorID:   a.ID,
		IP:        clientIP(r),
		UserAgent: r.UserAgent(),
		Success:   true,
		Details:   map[string]string{"role": role},
	})
}

// SessionEnded logs a logout.
func (l *Logger) SessionEnded(ctx context.Context, r *http.Request, a Actor) {
	l.Log(ctx, audit.Event{
		ChurchID:  a.ChurchID,
		Category:  audit.CategoryAuth,
		EventType: audit.EventSessionEnded,
		ActorID:   a.ID,
		IP:        clientIP(r),
		UserAgent: r.UserAgent(),
		Success:   true,
	})
}

// SessionRejected logs a provider token that failed verification.
func (l *Logger) SessionRejected(ctx context.Context, r *http.Request, reason string) {
	l.Log(ctx, audit.Event{
		Category:      audit.CategoryAuth,
		EventType:     audit.EventSessionRejected,
		IP:            clientIP(r),
		UserAgent:     r.UserAgent(),
		FailureReason: reason,
	})
}

// KioskTokenRejected logs a visitor registration with a bad kiosk token.
func (l *Logger) KioskTokenRejected(ctx context.Context, r *http.Request) {
	l.Log(ctx, audit.Event{
		Category:      audit.CategoryAuth,
		EventType:     audit.EventKioskTokenRejected,
		IP:            clientIP(r),
		UserAgent:     r.UserAgent(),
		FailureReason: "invalid kiosk token",
	})
}

// --- Admin Events ---

func (l *Logger) PersonCreated(ctx context.Context, r *http.Request, a Actor, personID int64, role string) {
	l.admin(ctx, r, a, audit.EventPersonCreated, id64(personID), map[string]string{"role": role})
}

func (l *Logger) PersonUpdated(ctx context.Context, r *http.Request, a Actor, personID int64) {
	l.admin(ctx, r, a, audit.EventPersonUpdated, id64(personID), nil)
}

func (l *Logger) PersonDeleted(ctx context.Context, r *http.Request, a Actor, personID int64) {
	l.admin(ctx, r, a, audit.EventPersonDeleted, id64(personID), nil)
}

// PersonConverted logs a visitor→member conversion; PersonID is the visitor.
func (l *Logger) PersonConverted(ctx context.Context, r *http.Request, a Actor, visitorID, memberID int64) {
	l.admin(ctx, r, a, audit.EventPersonConverted, id64(visitorID), map[string]string{
		"member_id": itoa(memberID),
	})
}

// VisitorRegistered logs a kiosk registration.
func (l *Logger) VisitorRegistered(ctx context.Context, r *http.Request, churchID int64, kioskID string, personID int64) {
	l.admin(ctx, r, Actor{ID: "kiosk:" + kioskID, ChurchID: churchID}, audit.EventVisitorRegistered, id64(personID), nil)
}

func (l *Logger) FamilyConsolidated(ctx context.Context, r *http.Request, a Actor, keptID, mergedID, relinked int64) {
	l.admin(ctx, r, a, audit.EventFamilyConsolidated, nil, map[string]string{
		"kept_family_id":   itoa(keptID),
		"merged_family_id": itoa(mergedID),
		"relinked":         itoa(relinked),
	})
}

func (l *Logger) MinistryMembersSet(ctx context.Context, r *http.Request, a Actor, ministryID int64, count int) {
	l.admin(ctx, r, a, audit.EventMinistryMembersSet, nil, map[string]string{
		"ministry_id": itoa(ministryID),
		"members":     strconv.Itoa(count),
	})
}

func (l *Logger) NotificationsSent(ctx context.Context, r *http.Request, a Actor, channel string, sent, failed int) {
	l.admin(ctx, r, a, audit.EventNotificationsSent, nil, map[string]string{
		"channel": channel,
		"sent":    strconv.Itoa(sent),
		"failed":  strconv.Itoa(failed),
	})
}

func (l *Logger) KioskTokenIssued(ctx context.Context, r *http.Request, a Actor, tokenID, label string) {
	l.admin(ctx, r, a, audit.EventKioskTokenIssued, nil, map[string]string{"token_id": tokenID, "label": label})
}

func (l *Logger) KioskTokenRevoked(ctx context.Context, r *http.Request, a Actor, tokenID string) {
	l.admin(ctx, r, a, audit.EventKioskTokenRevoked, nil, map[string]string{"token_id": tokenID})
}

func (l *Logger) ChurchSettingsUpdated(ctx context.Context, r *http.Request, a Actor) {
	l.admin(ctx, r, a, audit.EventChurchSettingsUpdate, nil, nil)
}

// --- Automation Events ---

// AutomationRun logs a bulk pass over one church.
func (l *Logger) AutomationRun(ctx context.Context, a Actor, total, updated, errs int) {
	l.Log(ctx, audit.Event{
		ChurchID:  a.ChurchID,
		Category:  audit.CategoryAutomation,
		EventType: audit.EventAutomationRun,
		ActorID:   a.ID,
		Success:   errs == 0,
		Details: map[string]string{
			"total":   strconv.Itoa(total),
			"updated": strconv.Itoa(updated),
			"errors":  strconv.Itoa(errs),
		},
	})
}
