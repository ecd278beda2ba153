package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vitneshimmanuvel/dsqaubackend/internal/domain"
	"github.com/vitneshimmanuvel/dsqaubackend/internal/mapper"
	"github.com/vitneshimmanuvel/dsqaubackend/internal/reporting"
	"github.com/vitneshimmanuvel/dsqaubackend/internal/repository"
)

const (
	defaultWorkforceWeeks = 8
	maxWorkforceWeeks     = 52
)

// AnalyticsService loads record snapshots and runs the reporting calculations over them
type AnalyticsService struct {
	projectRepo     *repository.ProjectRepository
	milestoneRepo   *repository.MilestoneRepository
	partPaymentRepo *repository.PartPaymentRepository
	materialRepo    *repository.MaterialRepository
	vendorOrderRepo *repository.VendorOrderRepository
	rawOrderRepo    *repository.RawMaterialOrderRepository
	paymentRepo     *repository.LedgerPaymentRepository
	wageRepo        *repository.WageLogRepository
	projects        *ProjectService
	loc             *time.Location
	logger          *zap.Logger
}

// NewAnalyticsService creates a new analytics service. loc is the calendar used for monthly buckets.
func NewAnalyticsService(
	projectRepo *repository.ProjectRepository,
	milestoneRepo *repository.MilestoneRepository,
	partPaymentRepo *repository.PartPaymentRepository,
	materialRepo *repository.MaterialRepository,
	vendorOrderRepo *repository.VendorOrderRepository,
	rawOrderRepo *repository.RawMaterialOrderRepository,
	paymentRepo *repository.LedgerPaymentRepository,
	wageRepo *repository.WageLogRepository,
	projects *ProjectService,
	loc *time.Location,
	logger *zap.Logger,
) *AnalyticsService {
	if loc == nil {
		loc = time.UTC
	}
	return &AnalyticsService{
		projectRepo:     projectRepo,
		milestoneRepo:   milestoneRepo,
		partPaymentRepo: partPaymentRepo,
		materialRepo:    materialRepo,
		vendorOrderRepo: vendorOrderRepo,
		rawOrderRepo:    rawOrderRepo,
		paymentRepo:     paymentRepo,
		wageRepo:        wageRepo,
		projects:        projects,
		loc:             loc,
		logger:          logger,
	}
}

// Overview returns income, expense and profit, for one project or the whole company
func (s *AnalyticsService) Overview(ctx context.Context, projectID *uuid.UUID) (*domain.OverviewDTO, error) {
	snap, err := s.snapshot(ctx, projectID)
	if err != nil {
		return nil, err
	}
	dto := mapper.ToOverviewDTO(reporting.ComputeOverview(*snap))
	return &dto, nil
}

// Monthly returns the twelve month income and expense trend for a year; zero means the current year
func (s *AnalyticsService) Monthly(ctx context.Context, year int, projectID *uuid.UUID) ([]domain.MonthTrendDTO, error) {
	if year == 0 {
		year = time.Now().In(s.loc).Year()
	}
	if year < 2000 || year > 2100 {
		return nil, fmt.Errorf("%w: year %d is out of range", domain.ErrInvalidInput, year)
	}
	snap, err := s.snapshot(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return mapper.ToMonthTrendDTOs(reporting.MonthlyTrend(*snap, year, s.loc)), nil
}

// Projects returns per-project financials
func (s *AnalyticsService) Projects(ctx context.Context) ([]domain.ProjectStatDTO, error) {
	snap, err := s.snapshot(ctx, nil)
	if err != nil {
		return nil, err
	}
	projects, err := s.projectRepo.ListAll(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return mapper.ToProjectStatDTOs(reporting.ProjectStats(projects, *snap)), nil
}

// Expenses groups paid expenses by material type and worker category
func (s *AnalyticsService) Expenses(ctx context.Context, projectID *uuid.UUID) (*domain.ExpenseBreakdownDTO, error) {
	snap, err := s.snapshot(ctx, projectID)
	if err != nil {
		return nil, err
	}
	dto := mapper.ToExpenseBreakdownDTO(reporting.BreakdownExpenses(*snap))
	return &dto, nil
}

// Workforce returns trailing weekly wage and worker-day totals
func (s *AnalyticsService) Workforce(ctx context.Context, weeks int, projectID *uuid.UUID) ([]domain.WorkforceWeekDTO, error) {
	if weeks <= 0 {
		weeks = defaultWorkforceWeeks
	}
	if weeks > maxWorkforceWeeks {
		weeks = maxWorkforceWeeks
	}
	if err := s.checkScope(ctx, projectID); err != nil {
		return nil, err
	}
	logs, err := s.wageRepo.ListAll(ctx, &repository.WageLogFilters{ProjectID: projectID})
	if err != nil {
		return nil, fmt.Errorf("failed to list wage logs: %w", err)
	}
	now := time.Now().In(s.loc)
	return mapper.ToWorkforceWeekDTOs(reporting.WeeklyWorkforceTrend(logs, now, weeks)), nil
}

func (s *AnalyticsService) checkScope(ctx context.Context, projectID *uuid.UUID) error {
	if _, err := requireStaff(ctx); err != nil {
		return err
	}
	if projectID != nil {
		if _, err := s.projects.project(ctx, *projectID); err != nil {
			return err
		}
	}
	return nil
}

// snapshot loads every record that feeds the reports, narrowed to a project when given
func (s *AnalyticsService) snapshot(ctx context.Context, projectID *uuid.UUID) (*reporting.Snapshot, error) {
	if err := s.checkScope(ctx, projectID); err != nil {
		return nil, err
	}

	var (
		snap reporting.Snapshot
		err  error
	)
	if snap.Milestones, err = s.milestoneRepo.ListAll(ctx, nil, &repository.MilestoneFilters{ProjectID: projectID}); err != nil {
		return nil, fmt.Errorf("failed to load milestones: %w", err)
	}
	if snap.PartPayments, err = s.partPaymentRepo.ListAll(ctx, projectID); err != nil {
		return nil, fmt.Errorf("failed to load part payments: %w", err)
	}
	if snap.Materials, err = s.materialRepo.ListAll(ctx, &repository.MaterialFilters{ProjectID: projectID}); err != nil {
		return nil, fmt.Errorf("failed to load materials: %w", err)
	}
	if snap.VendorOrders, err = s.vendorOrderRepo.ListAll(ctx, nil, &repository.VendorOrderFilters{ProjectID: projectID}); err != nil {
		return nil, fmt.Errorf("failed to load vendor orders: %w", err)
	}
	if snap.RawMaterialOrders, err = s.rawOrderRepo.ListAll(ctx, &repository.RawMaterialOrderFilters{ProjectID: projectID}); err != nil {
		return nil, fmt.Errorf("failed to load raw material orders: %w", err)
	}
	if snap.LedgerPayments, err = s.paymentRepo.ListAll(ctx, &repository.LedgerPaymentFilters{ProjectID: projectID}); err != nil {
		return nil, fmt.Errorf("failed to load ledger payments: %w", err)
	}
	if snap.WageLogs, err = s.wageRepo.ListAll(ctx, &repository.WageLogFilters{ProjectID: projectID}); err != nil {
		return nil, fmt.Errorf("failed to load wage logs: %w", err)
	}

	s.logger.Debug("analytics snapshot loaded",
		zap.Int("milestones", len(snap.Milestones)),
		zap.Int("ledger_payments", len(snap.LedgerPayments)),
		zap.Int("wage_logs", len(snap.WageLogs)))
	return &snap, nil
}
