package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/vitneshimmanuvel/dsqaubackend/internal/auth"
	"github.com/vitneshimmanuvel/dsqaubackend/internal/domain"
	"github.com/vitneshimmanuvel/dsqaubackend/internal/http/middleware"
)

func auditedRouter(status int) (http.Handler, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.InfoLevel)
	audit := middleware.NewAuditMiddleware(nil, zap.New(core))

	r := chi.NewRouter()
	r.Use(audit.Audit)
	respond := func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(status) }
	r.Get("/api/v1/projects/{id}", respond)
	r.Post("/api/v1/projects/{id}/stages/{stageId}/complete", respond)
	r.Put("/api/v1/leads/{id}", respond)
	r.Post("/health/ready", respond)
	return r, logs
}

func asActor(req *http.Request, id uuid.UUID) *http.Request {
	return req.WithContext(auth.WithUserContext(context.Background(), &auth.UserContext{
		UserID: id,
		Role:   domain.RoleAdmin,
	}))
}

func TestAudit_RecordsSuccessfulMutation(t *testing.T) {
	h, logs := auditedRouter(http.StatusOK)
	actor := uuid.New()
	projectID, stageID := uuid.New(), uuid.New()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/projects/"+projectID.String()+"/stages/"+stageID.String()+"/complete", nil)
	h.ServeHTTP(httptest.NewRecorder(), asActor(req, actor))

	entries := logs.FilterMessage("entity modified").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "create", fields["action"])
	assert.Equal(t, "/api/v1/projects/{id}/stages/{stageId}/complete", fields["route"])
	assert.Equal(t, projectID.String(), fields["param_id"])
	assert.Equal(t, stageID.String(), fields["param_stageId"])
	assert.Equal(t, actor.String(), fields["actor_id"])
	assert.Equal(t, "admin", fields["actor_role"])
	assert.Equal(t, "audit", entries[0].LoggerName)
}

func TestAudit_SkipsReadsFailuresAndHealth(t *testing.T) {
	t.Run("reads", func(t *testing.T) {
		h, logs := auditedRouter(http.StatusOK)
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/projects/"+uuid.NewString(), nil))
		assert.Zero(t, logs.Len())
	})

	t.Run("failed mutation", func(t *testing.T) {
		h, logs := auditedRouter(http.StatusConflict)
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPut, "/api/v1/leads/"+uuid.NewString(), nil))
		assert.Zero(t, logs.Len())
	})

	t.Run("skipped path", func(t *testing.T) {
		h, logs := auditedRouter(http.StatusOK)
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/health/ready", nil))
		assert.Zero(t, logs.Len())
	})
}

func TestAudit_UpdateAction(t *testing.T) {
	h, logs := auditedRouter(http.StatusOK)
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPut, "/api/v1/leads/"+uuid.NewString(), nil))

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "update", logs.All()[0].ContextMap()["action"])
	_, hasActor := logs.All()[0].ContextMap()["actor_id"]
	assert.False(t, hasActor)
}
