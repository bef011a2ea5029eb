package auditlog_test

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/iglesiahub/internal/app/store/audit"
	"github.com/dalemusser/iglesiahub/internal/app/system/auditlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type memSink struct {
	events []audit.Event
	err    error
}

func (m *memSink) Log(_ context.Context, e audit.Event) error {
	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, e)
	return nil
}

func newLogger(cfg auditlog.Config) (*auditlog.Logger, *memSink, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	sink := &memSink{}
	return auditlog.New(sink, zap.New(core), cfg), sink, logs
}

func TestLogger_NilLogger(t *testing.T) {
	var logger *auditlog.Logger
	req := httptest.NewRequest("GET", "/", nil)

	logger.Log(context.Background(), audit.Event{EventType: "test"})
	logger.SessionStarted(context.Background(), req, auditlog.Actor{ID: "u"}, "admin")
	logger.AutomationRun(context.Background(), auditlog.SystemActor(1), 1, 1, 0)
}

func TestLogger_Destinations(t *testing.T) {
	tests := []struct {
		setting string
		wantDB  int
		wantZap int
	}{
		{auditlog.All, 1, 1},
		{auditlog.DB, 1, 0},
		{auditlog.Log, 0, 1},
		{auditlog.Off, 0, 0},
		{"", 1, 1},
	}
	for _, tt := range tests {
		t.Run("admin="+tt.setting, func(t *testing.T) {
			l, sink, logs := newLogger(auditlog.Config{Admin: tt.setting})
			req := httptest.NewRequest("POST", "/api/persons", nil)
			l.PersonCreated(context.Background(), req, auditlog.Actor{ID: "u1", ChurchID: 4}, 10, "VISITOR")

			assert.Len(t, sink.events, tt.wantDB)
			assert.Equal(t, tt.wantZap, logs.FilterMessage("audit event").Len())
		})
	}
}

func TestLogger_PersonConverted(t *testing.T) {
	l, sink, _ := newLogger(auditlog.Config{})
	req := httptest.NewRequest("POST", "/api/persons/3/convert", nil)
	req.Header.Set("X-Forwarded-For", "10.0.0.1, 10.0.0.2")

	l.PersonConverted(context.Background(), req, auditlog.Actor{ID: "u1", ChurchID: 4}, 3, 9)

	require.Len(t, sink.events, 1)
	e := sink.events[0]
	assert.Equal(t, audit.EventPersonConverted, e.EventType)
	assert.Equal(t, int64(4), e.ChurchID)
	require.NotNil(t, e.PersonID)
	assert.Equal(t, int64(3), *e.PersonID)
	assert.Equal(t, "9", e.Details["member_id"])
	assert.Equal(t, "10.0.0.1", e.IP)
}

func TestLogger_AutomationRunFailureIsWarn(t *testing.T) {
	l, _, logs := newLogger(auditlog.Config{Automation: auditlog.Log})
	l.AutomationRun(context.Background(), auditlog.SystemActor(2), 5, 4, 1)

	entries := logs.FilterMessage("audit event").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
}

func TestLogger_SinkErrorIsLogged(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := auditlog.New(&memSink{err: errors.New("db down")}, zap.New(core), auditlog.Config{Admin: auditlog.DB})

	l.PersonDeleted(context.Background(), httptest.NewRequest("DELETE", "/", nil), auditlog.Actor{ID: "u", ChurchID: 1}, 5)
	assert.Equal(t, 1, logs.FilterMessage("failed to store audit event").Len())
}
