package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/vitneshimmanuvel/dsqaubackend/internal/domain"
	"github.com/vitneshimmanuvel/dsqaubackend/internal/ledger"
	"github.com/vitneshimmanuvel/dsqaubackend/internal/lock"
	"github.com/vitneshimmanuvel/dsqaubackend/internal/mapper"
	"github.com/vitneshimmanuvel/dsqaubackend/internal/repository"
	"github.com/vitneshimmanuvel/dsqaubackend/internal/wage"
)

var defaultHours = decimal.NewFromInt(8)

// WageService records crew wage logs and keeps their totals in line with the calculator
type WageService struct {
	db       *gorm.DB
	wageRepo *repository.WageLogRepository
	projects *ProjectService
	calc     *wage.Calculator
	locker   lock.Locker
	logger   *zap.Logger
}

// NewWageService creates a new wage service instance
func NewWageService(
	db *gorm.DB,
	wageRepo *repository.WageLogRepository,
	projects *ProjectService,
	calc *wage.Calculator,
	locker lock.Locker,
	logger *zap.Logger,
) *WageService {
	return &WageService{
		db:       db,
		wageRepo: wageRepo,
		projects: projects,
		calc:     calc,
		locker:   locker,
		logger:   logger,
	}
}

// Calculate previews a wage without saving anything
func (s *WageService) Calculate(req *domain.WageCalculationRequest) (*domain.WageCalculationDTO, error) {
	b, err := s.calc.Breakdown(wageInput(req.WorkerCount, req.RatePerWorker, req.HoursWorked, req.ShiftKind, req.ShiftFraction))
	if err != nil {
		return nil, err
	}
	return &domain.WageCalculationDTO{
		Regular:    mapper.Money(b.Regular),
		Overtime:   mapper.Money(b.Overtime),
		Total:      mapper.Money(b.Total),
		Multiplier: b.Multiplier.InexactFloat64(),
	}, nil
}

func wageInput(count int, rate float64, hours *float64, shift domain.ShiftKind, fraction *float64) wage.Input {
	in := wage.Input{
		WorkerCount:   count,
		RatePerWorker: ledger.Money(mapper.Decimal(rate)),
		HoursWorked:   defaultHours,
		Shift:         shift,
		ShiftFraction: wage.DefaultShiftFraction,
	}
	if hours != nil {
		in.HoursWorked = mapper.Decimal(*hours)
	}
	if fraction != nil {
		in.ShiftFraction = mapper.Decimal(*fraction)
	}
	return in
}

// Create records a crew's day on a project
func (s *WageService) Create(ctx context.Context, projectID uuid.UUID, req *domain.CreateWageLogRequest) (*domain.WageLogDTO, error) {
	if _, _, err := s.projects.managedProject(ctx, projectID); err != nil {
		return nil, err
	}
	category := strings.TrimSpace(req.Category)
	if category == "" {
		return nil, fmt.Errorf("%w: category is required", domain.ErrInvalidInput)
	}

	in := wageInput(req.WorkerCount, req.RatePerWorker, req.HoursWorked, req.ShiftKind, req.ShiftFraction)
	total, err := s.calc.Calculate(in)
	if err != nil {
		return nil, err
	}

	log := &domain.WageLog{
		ProjectID:     projectID,
		WorkDate:      req.WorkDate,
		Category:      category,
		WorkerCount:   in.WorkerCount,
		ShiftKind:     in.Shift,
		ShiftFraction: in.ShiftFraction,
		HoursWorked:   in.HoursWorked,
		RatePerWorker: in.RatePerWorker,
		TotalWage:     ledger.Money(total),
		PaymentStatus: domain.WagePending,
		QualityIssue:  req.QualityIssue,
		MistakeNoted:  req.MistakeNoted,
		Notes:         req.Notes,
		CreatedByID:   actorID(ctx),
	}
	if err := s.wageRepo.Create(ctx, log); err != nil {
		return nil, fmt.Errorf("failed to create wage log: %w", err)
	}

	s.logger.Info("wage log created",
		zap.String("wage_log_id", log.ID.String()),
		zap.String("project_id", projectID.String()),
		zap.String("total_wage", total.StringFixed(2)))

	dto := mapper.ToWageLogDTO(log)
	return &dto, nil
}

// Update patches a wage log and recomputes its total. Paid logs only accept the quality flags and notes.
func (s *WageService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateWageLogRequest) (*domain.WageLogDTO, error) {
	existing, err := s.wageRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, _, err := s.projects.managedProject(ctx, existing.ProjectID); err != nil {
		return nil, err
	}

	unlock, err := s.locker.Lock(ctx, lock.Key(lockWageLog, id))
	if err != nil {
		return nil, err
	}
	defer unlock()

	var updated *domain.WageLog
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		log, err := s.wageRepo.GetForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if log.PaymentStatus == domain.WagePaid && changesPay(req) {
			return ErrWageAlreadyPaid
		}

		if req.WorkDate != nil {
			log.WorkDate = *req.WorkDate
		}
		if req.Category != nil {
			c := strings.TrimSpace(*req.Category)
			if c == "" {
				return fmt.Errorf("%w: category is required", domain.ErrInvalidInput)
			}
			log.Category = c
		}
		if req.WorkerCount != nil {
			log.WorkerCount = *req.WorkerCount
		}
		if req.ShiftKind != nil {
			log.ShiftKind = *req.ShiftKind
		}
		if req.ShiftFraction != nil {
			log.ShiftFraction = mapper.Decimal(*req.ShiftFraction)
		}
		if req.HoursWorked != nil {
			log.HoursWorked = mapper.Decimal(*req.HoursWorked)
		}
		if req.RatePerWorker != nil {
			log.RatePerWorker = ledger.Money(mapper.Decimal(*req.RatePerWorker))
		}
		if req.QualityIssue != nil {
			log.QualityIssue = *req.QualityIssue
		}
		if req.MistakeNoted != nil {
			log.MistakeNoted = *req.MistakeNoted
		}
		if req.Notes != nil {
			log.Notes = *req.Notes
		}

		total, err := s.calc.Calculate(wage.Input{
			WorkerCount:   log.WorkerCount,
			RatePerWorker: log.RatePerWorker,
			HoursWorked:   log.HoursWorked,
			Shift:         log.ShiftKind,
			ShiftFraction: log.ShiftFraction,
		})
		if err != nil {
			return err
		}
		log.TotalWage = ledger.Money(total)

		if err := s.wageRepo.Update(ctx, tx, log); err != nil {
			return err
		}
		updated = log
		return nil
	})
	if err != nil {
		return nil, err
	}

	dto := mapper.ToWageLogDTO(updated)
	return &dto, nil
}

// changesPay reports whether the patch touches anything that affects the wage amount
func changesPay(r *domain.UpdateWageLogRequest) bool {
	return r.WorkDate != nil || r.Category != nil || r.WorkerCount != nil || r.ShiftKind != nil ||
		r.ShiftFraction != nil || r.HoursWorked != nil || r.RatePerWorker != nil
}

// MarkPaid settles a pending wage log
func (s *WageService) MarkPaid(ctx context.Context, id uuid.UUID) (*domain.WageLogDTO, error) {
	existing, err := s.wageRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, _, err := s.projects.managedProject(ctx, existing.ProjectID); err != nil {
		return nil, err
	}

	unlock, err := s.locker.Lock(ctx, lock.Key(lockWageLog, id))
	if err != nil {
		return nil, err
	}
	defer unlock()

	var updated *domain.WageLog
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		log, err := s.wageRepo.GetForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if log.PaymentStatus == domain.WagePaid {
			return ErrWageAlreadyPaid
		}
		now := time.Now().UTC()
		log.PaymentStatus = domain.WagePaid
		log.PaidAt = &now
		if err := s.wageRepo.Update(ctx, tx, log); err != nil {
			return err
		}
		updated = log
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("wage log paid",
		zap.String("wage_log_id", id.String()),
		zap.String("total_wage", updated.TotalWage.StringFixed(2)))

	dto := mapper.ToWageLogDTO(updated)
	return &dto, nil
}

// List returns a page of wage logs visible to the caller
func (s *WageService) List(ctx context.Context, page, pageSize int, filters *repository.WageLogFilters) (*domain.PaginatedResponse, error) {
	page, pageSize = repository.NormalizePage(page, pageSize)
	logs, total, err := s.wageRepo.List(ctx, page, pageSize, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list wage logs: %w", err)
	}
	dtos := make([]domain.WageLogDTO, len(logs))
	for i := range logs {
		dtos[i] = mapper.ToWageLogDTO(&logs[i])
	}
	return paginated(dtos, total, page, pageSize), nil
}
