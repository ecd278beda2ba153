package router_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/vitneshimmanuvel/dsqaubackend/internal/auth"
	"github.com/vitneshimmanuvel/dsqaubackend/internal/config"
	"github.com/vitneshimmanuvel/dsqaubackend/internal/domain"
	"github.com/vitneshimmanuvel/dsqaubackend/internal/http/handler"
	"github.com/vitneshimmanuvel/dsqaubackend/internal/http/middleware"
	"github.com/vitneshimmanuvel/dsqaubackend/internal/http/router"
	"github.com/vitneshimmanuvel/dsqaubackend/internal/lock"
	"github.com/vitneshimmanuvel/dsqaubackend/internal/notify"
	"github.com/vitneshimmanuvel/dsqaubackend/internal/repository"
	"github.com/vitneshimmanuvel/dsqaubackend/internal/service"
	"github.com/vitneshimmanuvel/dsqaubackend/internal/testutil"
	"github.com/vitneshimmanuvel/dsqaubackend/internal/wage"
)

const testAPIKey = "test-api-key"

type testServer struct {
	t       *testing.T
	db      *gorm.DB
	handler http.Handler
	tokens  *auth.TokenManager
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db := testutil.SetupTestDB(t)
	log := zap.NewNop()

	cfg := &config.Config{
		App:    config.AppConfig{Name: "dsqua", Environment: "development", Port: 8080},
		Auth:   config.AuthConfig{JWTSecret: "router-test-secret", Issuer: "dsqua-test", TokenTTLHours: 1},
		ApiKey: config.ApiKeyConfig{Value: testAPIKey},
		CORS: config.CORSConfig{
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "x-api-key"},
			AllowCredentials: true,
		},
		Security:  config.SecurityConfig{ContentTypeNosniff: true, FrameOptions: "DENY"},
		RateLimit: config.RateLimitConfig{Enabled: false, RequestsPerMinute: 100, RequestsPerMinuteAuth: 100},
	}

	locker := lock.NewKeyedMutex()
	tokens := auth.NewTokenManager(&cfg.Auth)
	catalog := domain.DefaultCatalog()

	userRepo := repository.NewUserRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	wageRepo := repository.NewWageLogRepository(db)
	materialRepo := repository.NewMaterialRepository(db)
	vendorOrderRepo := repository.NewVendorOrderRepository(db)
	rawOrderRepo := repository.NewRawMaterialOrderRepository(db)
	paymentRepo := repository.NewLedgerPaymentRepository(db)
	milestoneRepo := repository.NewMilestoneRepository(db)
	partPaymentRepo := repository.NewPartPaymentRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	dispatcher := notify.NewInAppDispatcher(notificationRepo)

	userService := service.NewUserService(userRepo, tokens, log)
	projectService := service.NewProjectService(db, projectRepo, userRepo, catalog, locker, log)
	handlers := router.Handlers{
		Health:   handler.NewHealthHandler(db, nil, log),
		Auth:     handler.NewAuthHandler(userService, catalog, log),
		User:     handler.NewUserHandler(userService, log),
		Project:  handler.NewProjectHandler(projectService, log),
		Wage:     handler.NewWageHandler(service.NewWageService(db, wageRepo, projectService, wage.NewCalculator(wage.DefaultRates()), locker, log), log),
		Material: handler.NewMaterialHandler(service.NewMaterialService(db, materialRepo, paymentRepo, projectService, locker, log), log),
		Vendor: handler.NewVendorHandler(service.NewVendorService(db, repository.NewVendorRepository(db),
			vendorOrderRepo, paymentRepo, projectService, locker, log), log),
		RawMaterial: handler.NewRawMaterialHandler(service.NewRawMaterialService(db, rawOrderRepo, paymentRepo, projectService, locker, log), log),
		Milestone: handler.NewMilestoneHandler(service.NewMilestoneService(db, milestoneRepo, partPaymentRepo,
			projectRepo, projectService, dispatcher, locker, log), log),
		Lead: handler.NewLeadHandler(service.NewLeadService(db, repository.NewLeadRepository(db),
			repository.NewLeadStageHistoryRepository(db), repository.NewFollowUpRepository(db),
			projectRepo, projectService, dispatcher, locker, log), log),
		Analytics: handler.NewAnalyticsHandler(service.NewAnalyticsService(projectRepo, milestoneRepo, partPaymentRepo,
			materialRepo, vendorOrderRepo, rawOrderRepo, paymentRepo, wageRepo, projectService, nil, log), log),
		Notification: handler.NewNotificationHandler(service.NewNotificationService(notificationRepo, log), log),
	}

	rt := router.NewRouter(cfg, log,
		auth.NewMiddleware(tokens, testAPIKey, log),
		middleware.NewRateLimiter(&cfg.RateLimit, log),
		middleware.NewAuditMiddleware(nil, log),
		handlers,
	)
	return &testServer{t: t, db: db, handler: rt.Setup(), tokens: tokens}
}

// tokenFor issues a bearer token for u
func (s *testServer) tokenFor(u *domain.User) string {
	s.t.Helper()
	token, _, err := s.tokens.Issue(u)
	require.NoError(s.t, err)
	return "Bearer " + token
}

// do sends a request; auth is either an API key, a bearer header value, or empty
func (s *testServer) do(method, path, authValue string, body interface{}) *httptest.ResponseRecorder {
	s.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	switch {
	case authValue == testAPIKey:
		req.Header.Set("x-api-key", authValue)
	case authValue != "":
		req.Header.Set("Authorization", authValue)
	}
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))

	w = s.do(http.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	ready := decode[map[string]interface{}](t, w)
	assert.Equal(t, "healthy", ready["status"])
	assert.Contains(t, ready["checks"], "database")
	assert.NotContains(t, ready["checks"], "redis")

	w = s.do(http.MethodGet, "/health/db", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthentication(t *testing.T) {
	s := newTestServer(t)

	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/api/v1/auth/me", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/api/v1/auth/me", "Bearer not-a-jwt", nil).Code)

	w := s.do(http.MethodGet, "/api/v1/auth/me", testAPIKey, nil)
	require.Equal(t, http.StatusOK, w.Code)
	me := decode[domain.UserDTO](t, w)
	assert.Equal(t, auth.SystemUserID, me.ID)
	assert.Equal(t, domain.RoleSuperAdmin, me.Role)

	admin := testutil.CreateTestUser(t, s.db, domain.RoleAdmin)
	w = s.do(http.MethodGet, "/api/v1/auth/me", s.tokenFor(admin), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, admin.ID, decode[domain.UserDTO](t, w).ID)
}

func TestUserRoutesRequireSuperAdmin(t *testing.T) {
	s := newTestServer(t)
	admin := testutil.CreateTestUser(t, s.db, domain.RoleAdmin)
	superAdmin := testutil.CreateTestUser(t, s.db, domain.RoleSuperAdmin)

	assert.Equal(t, http.StatusForbidden, s.do(http.MethodGet, "/api/v1/users", s.tokenFor(admin), nil).Code)

	create := domain.CreateUserRequest{Email: "site.client@example.com", DisplayName: "Site Client", Role: domain.RoleCustomer}
	w := s.do(http.MethodPost, "/api/v1/users", s.tokenFor(superAdmin), create)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[domain.UserDTO](t, w)
	assert.Equal(t, domain.RoleCustomer, created.Role)

	// duplicate e-mail is a precondition failure
	w = s.do(http.MethodPost, "/api/v1/users", s.tokenFor(superAdmin), create)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(http.MethodPost, "/api/v1/users/"+created.ID.String()+"/token", s.tokenFor(superAdmin), nil)
	require.Equal(t, http.StatusOK, w.Code)
	issued := decode[domain.TokenResponse](t, w)
	assert.NotEmpty(t, issued.Token)

	// the issued token authenticates the new account
	w = s.do(http.MethodGet, "/api/v1/auth/me", "Bearer "+issued.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, created.ID, decode[domain.UserDTO](t, w).ID)
}

func TestProjectRoutes(t *testing.T) {
	s := newTestServer(t)
	admin := testutil.CreateTestUser(t, s.db, domain.RoleAdmin)
	client := testutil.CreateTestUser(t, s.db, domain.RoleCustomer)

	t.Run("validation errors name the fields", func(t *testing.T) {
		w := s.do(http.MethodPost, "/api/v1/projects", s.tokenFor(admin), map[string]interface{}{"budget": -1})
		require.Equal(t, http.StatusBadRequest, w.Code)
		apiErr := decode[domain.APIError](t, w)
		assert.Contains(t, apiErr.Errors, "name")
		assert.Contains(t, apiErr.Errors, "clientID")
	})

	t.Run("malformed body", func(t *testing.T) {
		w := s.do(http.MethodPost, "/api/v1/projects", s.tokenFor(admin), "not an object")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("customers cannot create projects", func(t *testing.T) {
		w := s.do(http.MethodPost, "/api/v1/projects", s.tokenFor(client), map[string]interface{}{
			"name": "Villa", "clientId": client.ID, "budget": 100000, "startDate": "2026-02-01T00:00:00Z",
		})
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	var project domain.ProjectDTO
	t.Run("admin creates and reads a project", func(t *testing.T) {
		w := s.do(http.MethodPost, "/api/v1/projects", s.tokenFor(admin), map[string]interface{}{
			"name": "Anna Nagar Villa", "location": "Chennai", "clientId": client.ID,
			"budget": 2500000, "startDate": "2026-02-01T00:00:00Z",
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		project = decode[domain.ProjectDTO](t, w)
		assert.Equal(t, "/api/v1/projects/"+project.ID.String(), w.Header().Get("Location"))
		assert.Equal(t, admin.ID, project.AdminID)
		assert.Len(t, project.Stages, len(domain.DefaultCatalog().ProjectStages))

		w = s.do(http.MethodGet, "/api/v1/projects/"+project.ID.String(), s.tokenFor(client), nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, project.ID, decode[domain.ProjectDTO](t, w).ID)

		w = s.do(http.MethodGet, "/api/v1/projects/"+project.ID.String()+"/stages", s.tokenFor(admin), nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, decode[[]domain.ProjectStageDTO](t, w), len(project.Stages))
	})

	t.Run("lists are paginated", func(t *testing.T) {
		w := s.do(http.MethodGet, "/api/v1/projects?page=1&pageSize=5&search=anna", s.tokenFor(admin), nil)
		require.Equal(t, http.StatusOK, w.Code)
		page := decode[domain.PaginatedResponse](t, w)
		assert.Equal(t, int64(1), page.Total)
		assert.Equal(t, 5, page.PageSize)
	})

	t.Run("invalid and unknown ids", func(t *testing.T) {
		assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/api/v1/projects/not-a-uuid", s.tokenFor(admin), nil).Code)
		assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/api/v1/projects/"+uuid.NewString(), s.tokenFor(admin), nil).Code)
		assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/api/v1/projects?clientId=nope", s.tokenFor(admin), nil).Code)
	})
}

func TestWageCalculateRoute(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodPost, "/api/v1/wage/calculate", testAPIKey, map[string]interface{}{
		"workerCount": 3, "ratePerWorker": 800, "shiftKind": "DAY",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	result := decode[domain.WageCalculationDTO](t, w)
	assert.Equal(t, 2400.0, result.Total)

	w = s.do(http.MethodPost, "/api/v1/wage/calculate", testAPIKey, map[string]interface{}{
		"workerCount": 0, "ratePerWorker": 800, "shiftKind": "SPLIT",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	apiErr := decode[domain.APIError](t, w)
	assert.Contains(t, apiErr.Errors, "workerCount")
	assert.Contains(t, apiErr.Errors, "shiftKind")
}

func TestCatalogAndNotificationRoutes(t *testing.T) {
	s := newTestServer(t)
	admin := testutil.CreateTestUser(t, s.db, domain.RoleAdmin)

	w := s.do(http.MethodGet, "/api/v1/catalog", s.tokenFor(admin), nil)
	require.Equal(t, http.StatusOK, w.Code)
	catalog := decode[domain.CatalogDTO](t, w)
	assert.Equal(t, domain.DefaultCatalog().WorkerCategories, catalog.WorkerCategories)

	w = s.do(http.MethodGet, "/api/v1/notifications/count", s.tokenFor(admin), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(0), decode[domain.UnreadCountDTO](t, w).Count)

	assert.Equal(t, http.StatusNoContent, s.do(http.MethodPut, "/api/v1/notifications/read-all", s.tokenFor(admin), nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodPut, "/api/v1/notifications/"+uuid.NewString()+"/read", s.tokenFor(admin), nil).Code)
}

func TestUnknownRoute(t *testing.T) {
	s := newTestServer(t)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/api/v1/does-not-exist", testAPIKey, nil).Code)
}

func TestMilestoneWorkflowOverHTTP(t *testing.T) {
	s := newTestServer(t)
	admin := testutil.CreateTestUser(t, s.db, domain.RoleAdmin)
	client := testutil.CreateTestUser(t, s.db, domain.RoleCustomer)
	project := testutil.CreateTestProject(t, s.db, client.ID, admin.ID, 1000)
	adminAuth, clientAuth := s.tokenFor(admin), s.tokenFor(client)

	w := s.do(http.MethodPost, "/api/v1/projects/"+project.ID.String()+"/milestones", adminAuth, map[string]interface{}{
		"stageName": "Foundation", "amount": 400,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	milestone := decode[domain.PaymentMilestoneDTO](t, w)
	base := "/api/v1/milestones/" + milestone.ID.String()

	// confirming before both sides acknowledged is a conflict
	assert.Equal(t, http.StatusConflict, s.do(http.MethodPost, base+"/confirm", adminAuth, nil).Code)

	// only the project's admin may request acknowledgment
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodPost, base+"/request-acknowledgment", clientAuth, nil).Code)

	w = s.do(http.MethodPost, base+"/request-acknowledgment", adminAuth, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, domain.MilestoneAwaitingClient, decode[domain.PaymentMilestoneDTO](t, w).Status)

	// the client was notified in-app
	w = s.do(http.MethodGet, "/api/v1/notifications/count", clientAuth, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(1), decode[domain.UnreadCountDTO](t, w).Count)

	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPost, base+"/acknowledge", clientAuth, map[string]interface{}{}).Code)

	w = s.do(http.MethodPost, base+"/acknowledge", clientAuth, map[string]interface{}{"accepted": true, "notes": "sent by NEFT"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, domain.MilestoneAwaitingAdmin, decode[domain.PaymentMilestoneDTO](t, w).Status)

	// an empty body confirms the remaining balance
	w = s.do(http.MethodPost, base+"/confirm", adminAuth, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	paid := decode[domain.PaymentMilestoneDTO](t, w)
	assert.Equal(t, domain.MilestonePaid, paid.Status)
	assert.Equal(t, 400.0, paid.PaidAmount)

	w = s.do(http.MethodGet, "/api/v1/projects/"+project.ID.String(), adminAuth, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 400.0, decode[domain.ProjectDTO](t, w).Spent)
}
