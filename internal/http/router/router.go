package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"

	_ "github.com/vitneshimmanuvel/dsqaubackend/docs" // swagger docs registration
	"github.com/vitneshimmanuvel/dsqaubackend/internal/auth"
	"github.com/vitneshimmanuvel/dsqaubackend/internal/config"
	"github.com/vitneshimmanuvel/dsqaubackend/internal/domain"
	"github.com/vitneshimmanuvel/dsqaubackend/internal/http/handler"
	"github.com/vitneshimmanuvel/dsqaubackend/internal/http/middleware"
)

// Handlers groups every HTTP handler the router mounts
type Handlers struct {
	Health       *handler.HealthHandler
	Auth         *handler.AuthHandler
	User         *handler.UserHandler
	Project      *handler.ProjectHandler
	Wage         *handler.WageHandler
	Material     *handler.MaterialHandler
	Vendor       *handler.VendorHandler
	RawMaterial  *handler.RawMaterialHandler
	Milestone    *handler.MilestoneHandler
	Lead         *handler.LeadHandler
	Analytics    *handler.AnalyticsHandler
	Notification *handler.NotificationHandler
}

type Router struct {
	cfg             *config.Config
	logger          *zap.Logger
	authMiddleware  *auth.Middleware
	rateLimiter     *middleware.RateLimiter
	auditMiddleware *middleware.AuditMiddleware
	h               Handlers
}

func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	authMiddleware *auth.Middleware,
	rateLimiter *middleware.RateLimiter,
	auditMiddleware *middleware.AuditMiddleware,
	handlers Handlers,
) *Router {
	return &Router{
		cfg:             cfg,
		logger:          logger,
		authMiddleware:  authMiddleware,
		rateLimiter:     rateLimiter,
		auditMiddleware: auditMiddleware,
		h:               handlers,
	}
}

func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.RequestID)
	r.Use(middleware.Recovery(rt.logger))
	r.Use(middleware.Logging(rt.logger))
	r.Use(middleware.SecurityHeaders(&rt.cfg.Security))
	r.Use(middleware.CORS(&rt.cfg.CORS, rt.cfg.App.Environment, rt.logger))
	r.Use(rt.rateLimiter.LimitByIP)
	if timeout := rt.cfg.Server.RequestTimeoutDuration(); timeout > 0 {
		r.Use(chimw.Timeout(timeout))
	}

	r.Get("/health", rt.h.Health.Live)
	r.Get("/health/db", rt.h.Health.Database)
	r.Get("/health/ready", rt.h.Health.Ready)

	if rt.cfg.Server.EnableSwagger {
		r.Get("/swagger/*", httpSwagger.Handler(
			httpSwagger.URL("/swagger/doc.json"),
		))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(rt.authMiddleware.Authenticate)
		r.Use(rt.rateLimiter.LimitByUser)
		r.Use(rt.auditMiddleware.Audit)

		r.Get("/auth/me", rt.h.Auth.Me)
		r.Get("/catalog", rt.h.Auth.Catalog)

		// Account management
		r.Route("/users", func(r chi.Router) {
			r.Use(rt.authMiddleware.RequireRole(domain.RoleSuperAdmin))
			r.Get("/", rt.h.User.List)
			r.Post("/", rt.h.User.Create)
			r.Get("/{id}", rt.h.User.GetByID)
			r.Put("/{id}", rt.h.User.Update)
			r.Post("/{id}/token", rt.h.User.IssueToken)
		})

		// Projects and their sub-resources
		r.Route("/projects", func(r chi.Router) {
			r.Get("/", rt.h.Project.List)
			r.Post("/", rt.h.Project.Create)
			r.Get("/{id}", rt.h.Project.GetByID)
			r.Put("/{id}", rt.h.Project.Update)
			r.Get("/{id}/stages", rt.h.Project.ListStages)
			r.Post("/{id}/stages/{stageId}/complete", rt.h.Project.CompleteStage)

			r.Get("/{id}/wage-logs", rt.h.Wage.ListByProject)
			r.Post("/{id}/wage-logs", rt.h.Wage.Create)

			r.Get("/{id}/materials", rt.h.Material.ListByProject)
			r.Post("/{id}/materials", rt.h.Material.Create)

			r.Get("/{id}/milestones", rt.h.Milestone.ListByProject)
			r.Post("/{id}/milestones", rt.h.Milestone.Create)
			r.Post("/{id}/milestones/template", rt.h.Milestone.CreateFromTemplate)
		})

		// Wages
		r.Post("/wage/calculate", rt.h.Wage.Calculate)
		r.Route("/wage-logs", func(r chi.Router) {
			r.Put("/{id}", rt.h.Wage.Update)
			r.Post("/{id}/pay", rt.h.Wage.MarkPaid)
		})

		// Materials
		r.Route("/materials", func(r chi.Router) {
			r.Get("/{id}", rt.h.Material.GetByID)
			r.Put("/{id}", rt.h.Material.Update)
			r.Get("/{id}/payments", rt.h.Material.ListPayments)
			r.Post("/{id}/payments", rt.h.Material.RecordPayment)
		})

		// Vendors
		r.Route("/vendors", func(r chi.Router) {
			r.Get("/", rt.h.Vendor.List)
			r.Post("/", rt.h.Vendor.Create)
			r.Get("/{id}", rt.h.Vendor.GetByID)
			r.Put("/{id}", rt.h.Vendor.Update)
			r.Post("/{id}/reconcile", rt.h.Vendor.Reconcile)
			r.Get("/{id}/orders", rt.h.Vendor.ListOrders)
			r.Post("/{id}/orders", rt.h.Vendor.CreateOrder)
		})
		r.Route("/vendor-orders", func(r chi.Router) {
			r.Get("/{id}", rt.h.Vendor.GetOrder)
			r.Put("/{id}", rt.h.Vendor.UpdateOrder)
			r.Get("/{id}/payments", rt.h.Vendor.ListOrderPayments)
			r.Post("/{id}/payments", rt.h.Vendor.RecordOrderPayment)
		})

		// Raw materials
		r.Route("/raw-material-orders", func(r chi.Router) {
			r.Get("/", rt.h.RawMaterial.List)
			r.Post("/", rt.h.RawMaterial.Create)
			r.Get("/{id}", rt.h.RawMaterial.GetByID)
			r.Put("/{id}", rt.h.RawMaterial.Update)
			r.Get("/{id}/payments", rt.h.RawMaterial.ListPayments)
			r.Post("/{id}/payments", rt.h.RawMaterial.RecordPayment)
		})

		// Payment milestones
		r.Route("/milestones", func(r chi.Router) {
			r.Get("/reminders", rt.h.Milestone.ListReminders)
			r.Post("/reminders/send", rt.h.Milestone.SendReminders)
			r.Get("/{id}", rt.h.Milestone.GetByID)
			r.Post("/{id}/request-acknowledgment", rt.h.Milestone.RequestAcknowledgment)
			r.Post("/{id}/acknowledge", rt.h.Milestone.Acknowledge)
			r.Post("/{id}/cancel-request", rt.h.Milestone.CancelRequest)
			r.Post("/{id}/confirm", rt.h.Milestone.ConfirmPayment)
			r.Get("/{id}/part-payments", rt.h.Milestone.ListPartPayments)
		})

		// Leads
		r.Route("/leads", func(r chi.Router) {
			r.Get("/", rt.h.Lead.List)
			r.Post("/", rt.h.Lead.Create)
			r.Get("/stats", rt.h.Lead.Stats)
			r.Get("/{id}", rt.h.Lead.GetByID)
			r.Put("/{id}", rt.h.Lead.Update)
			r.Put("/{id}/stage", rt.h.Lead.ChangeStage)
			r.Post("/{id}/win", rt.h.Lead.Win)
			r.Post("/{id}/lose", rt.h.Lead.Lose)
			r.Post("/{id}/reopen", rt.h.Lead.Reopen)
			r.Get("/{id}/history", rt.h.Lead.History)
			r.Get("/{id}/follow-ups", rt.h.Lead.ListFollowUps)
			r.Post("/{id}/follow-ups", rt.h.Lead.AddFollowUp)
		})
		r.Post("/follow-ups/{id}/complete", rt.h.Lead.CompleteFollowUp)

		// Analytics
		r.Route("/analytics", func(r chi.Router) {
			r.Get("/overview", rt.h.Analytics.Overview)
			r.Get("/monthly", rt.h.Analytics.Monthly)
			r.Get("/projects", rt.h.Analytics.Projects)
			r.Get("/expenses", rt.h.Analytics.Expenses)
			r.Get("/workforce", rt.h.Analytics.Workforce)
		})

		// Notifications
		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", rt.h.Notification.List)
			r.Get("/count", rt.h.Notification.GetUnreadCount)
			r.Put("/read-all", rt.h.Notification.MarkAllAsRead)
			r.Put("/{id}/read", rt.h.Notification.MarkAsRead)
		})
	})

	return r
}
