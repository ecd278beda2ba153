package service_test

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/vitneshimmanuvel/dsqaubackend/internal/auth"
	"github.com/vitneshimmanuvel/dsqaubackend/internal/config"
	"github.com/vitneshimmanuvel/dsqaubackend/internal/domain"
	"github.com/vitneshimmanuvel/dsqaubackend/internal/lock"
	"github.com/vitneshimmanuvel/dsqaubackend/internal/notify"
	"github.com/vitneshimmanuvel/dsqaubackend/internal/repository"
	"github.com/vitneshimmanuvel/dsqaubackend/internal/service"
	"github.com/vitneshimmanuvel/dsqaubackend/internal/testutil"
	"github.com/vitneshimmanuvel/dsqaubackend/internal/wage"
)

type fixture struct {
	db       *gorm.DB
	recorder *notify.Recorder

	users         *service.UserService
	projects      *service.ProjectService
	wages         *service.WageService
	materials     *service.MaterialService
	vendors       *service.VendorService
	rawMaterials  *service.RawMaterialService
	milestones    *service.MilestoneService
	leads         *service.LeadService
	analytics     *service.AnalyticsService
	notifications *service.NotificationService

	superAdmin *domain.User
	admin      *domain.User
	client     *domain.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	locker := lock.NewKeyedMutex()
	recorder := notify.NewRecorder()

	userRepo := repository.NewUserRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	paymentRepo := repository.NewLedgerPaymentRepository(db)
	milestoneRepo := repository.NewMilestoneRepository(db)
	partRepo := repository.NewPartPaymentRepository(db)
	materialRepo := repository.NewMaterialRepository(db)
	vendorOrderRepo := repository.NewVendorOrderRepository(db)
	rawOrderRepo := repository.NewRawMaterialOrderRepository(db)
	wageRepo := repository.NewWageLogRepository(db)

	tokens := auth.NewTokenManager(&config.AuthConfig{JWTSecret: "test-secret", Issuer: "test", TokenTTLHours: 1})
	projects := service.NewProjectService(db, projectRepo, userRepo, domain.DefaultCatalog(), locker, logger)

	f := &fixture{
		db:           db,
		recorder:     recorder,
		users:        service.NewUserService(userRepo, tokens, logger),
		projects:     projects,
		wages:        service.NewWageService(db, wageRepo, projects, wage.NewCalculator(wage.DefaultRates()), locker, logger),
		materials:    service.NewMaterialService(db, materialRepo, paymentRepo, projects, locker, logger),
		vendors:      service.NewVendorService(db, repository.NewVendorRepository(db), vendorOrderRepo, paymentRepo, projects, locker, logger),
		rawMaterials: service.NewRawMaterialService(db, rawOrderRepo, paymentRepo, projects, locker, logger),
		milestones:   service.NewMilestoneService(db, milestoneRepo, partRepo, projectRepo, projects, recorder, locker, logger),
		leads: service.NewLeadService(db,
			repository.NewLeadRepository(db),
			repository.NewLeadStageHistoryRepository(db),
			repository.NewFollowUpRepository(db),
			projectRepo, projects, recorder, locker, logger),
		analytics: service.NewAnalyticsService(projectRepo, milestoneRepo, partRepo, materialRepo,
			vendorOrderRepo, rawOrderRepo, paymentRepo, wageRepo, projects, nil, logger),
		notifications: service.NewNotificationService(repository.NewNotificationRepository(db), logger),
	}
	f.superAdmin = testutil.CreateTestUser(t, db, domain.RoleSuperAdmin)
	f.admin = testutil.CreateTestUser(t, db, domain.RoleAdmin)
	f.client = testutil.CreateTestUser(t, db, domain.RoleCustomer)
	return f
}

func asUser(u *domain.User) context.Context {
	return auth.WithUserContext(context.Background(), &auth.UserContext{
		UserID:      u.ID,
		DisplayName: u.DisplayName,
		Email:       u.Email,
		Role:        u.Role,
	})
}

// project creates a project administered by the fixture admin for the fixture client
func (f *fixture) project(t *testing.T, budget float64) *domain.Project {
	t.Helper()
	return testutil.CreateTestProject(t, f.db, f.client.ID, f.admin.ID, budget)
}

func float(v float64) *float64 { return &v }

func boolPtr(v bool) *bool { return &v }

func (f *fixture) otherAdmin(t *testing.T) *domain.User {
	t.Helper()
	return testutil.CreateTestUser(t, f.db, domain.RoleAdmin)
}

func (f *fixture) otherClient(t *testing.T) *domain.User {
	t.Helper()
	return testutil.CreateTestUser(t, f.db, domain.RoleCustomer)
}
