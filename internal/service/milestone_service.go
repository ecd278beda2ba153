package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/vitneshimmanuvel/dsqaubackend/internal/domain"
	"github.com/vitneshimmanuvel/dsqaubackend/internal/lock"
	"github.com/vitneshimmanuvel/dsqaubackend/internal/mapper"
	"github.com/vitneshimmanuvel/dsqaubackend/internal/milestone"
	"github.com/vitneshimmanuvel/dsqaubackend/internal/notify"
	"github.com/vitneshimmanuvel/dsqaubackend/internal/repository"
)

// MilestoneService runs the payment milestone workflow against the database.
// Each step locks the milestone, applies the pure transition inside a transaction,
// and delivers the resulting notifications after commit.
type MilestoneService struct {
	db            *gorm.DB
	milestoneRepo *repository.MilestoneRepository
	partRepo      *repository.PartPaymentRepository
	projectRepo   *repository.ProjectRepository
	projects      *ProjectService
	dispatcher    notify.Dispatcher
	locker        lock.Locker
	logger        *zap.Logger
}

// NewMilestoneService creates a new milestone service instance
func NewMilestoneService(
	db *gorm.DB,
	milestoneRepo *repository.MilestoneRepository,
	partRepo *repository.PartPaymentRepository,
	projectRepo *repository.ProjectRepository,
	projects *ProjectService,
	dispatcher notify.Dispatcher,
	locker lock.Locker,
	logger *zap.Logger,
) *MilestoneService {
	return &MilestoneService{
		db:            db,
		milestoneRepo: milestoneRepo,
		partRepo:      partRepo,
		projectRepo:   projectRepo,
		projects:      projects,
		dispatcher:    dispatcher,
		locker:        locker,
		logger:        logger,
	}
}

// Create adds a milestone at the end of a project's plan
func (s *MilestoneService) Create(ctx context.Context, projectID uuid.UUID, req *domain.CreateMilestoneRequest) (*domain.PaymentMilestoneDTO, error) {
	if _, _, err := s.projects.managedProject(ctx, projectID); err != nil {
		return nil, err
	}
	last, err := s.milestoneRepo.MaxDisplayOrder(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to read milestone order: %w", err)
	}

	m, err := milestone.New(projectID, milestone.Draft{
		StageName:    req.StageName,
		Description:  req.Description,
		Amount:       mapper.Decimal(req.Amount),
		DueDate:      req.DueDate,
		ReminderDays: req.ReminderDays,
		DisplayOrder: last + 1,
	})
	if err != nil {
		return nil, err
	}
	if err := s.milestoneRepo.Create(ctx, nil, &m); err != nil {
		return nil, fmt.Errorf("failed to create milestone: %w", err)
	}

	s.logger.Info("milestone created",
		zap.String("milestone_id", m.ID.String()),
		zap.String("project_id", projectID.String()),
		zap.String("amount", m.Amount.StringFixed(2)))

	dto := mapper.ToMilestoneDTO(&m, time.Now())
	return &dto, nil
}

// CreateFromTemplate splits the project budget into milestones by percentage
func (s *MilestoneService) CreateFromTemplate(ctx context.Context, projectID uuid.UUID, req *domain.MilestoneTemplateRequest) ([]domain.PaymentMilestoneDTO, error) {
	project, _, err := s.projects.managedProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	items := make([]milestone.TemplateItem, len(req.Items))
	for i, it := range req.Items {
		items[i] = milestone.TemplateItem{
			StageName:    it.StageName,
			Description:  it.Description,
			Percentage:   mapper.Decimal(it.Percentage),
			DueDate:      it.DueDate,
			ReminderDays: it.ReminderDays,
		}
	}
	planned, err := milestone.FromTemplate(*project, items)
	if err != nil {
		return nil, err
	}

	last, err := s.milestoneRepo.MaxDisplayOrder(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to read milestone order: %w", err)
	}
	ptrs := make([]*domain.PaymentMilestone, len(planned))
	for i := range planned {
		planned[i].DisplayOrder += last
		ptrs[i] = &planned[i]
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.milestoneRepo.Create(ctx, tx, ptrs...)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create milestones: %w", err)
	}

	s.logger.Info("milestones created from template",
		zap.String("project_id", projectID.String()),
		zap.Int("count", len(planned)))

	now := time.Now()
	dtos := make([]domain.PaymentMilestoneDTO, len(planned))
	for i := range planned {
		dtos[i] = mapper.ToMilestoneDTO(&planned[i], now)
	}
	return dtos, nil
}

// GetByID returns a milestone with its part payments
func (s *MilestoneService) GetByID(ctx context.Context, id uuid.UUID) (*domain.PaymentMilestoneDTO, error) {
	m, err := s.milestoneRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := mapper.ToMilestoneDTO(m, time.Now())
	return &dto, nil
}

// ListByProject returns a project's milestones in plan order
func (s *MilestoneService) ListByProject(ctx context.Context, projectID uuid.UUID) ([]domain.PaymentMilestoneDTO, error) {
	if _, err := s.projects.project(ctx, projectID); err != nil {
		return nil, err
	}
	milestones, err := s.milestoneRepo.ListAll(ctx, nil, &repository.MilestoneFilters{ProjectID: &projectID})
	if err != nil {
		return nil, fmt.Errorf("failed to list milestones: %w", err)
	}
	now := time.Now()
	dtos := make([]domain.PaymentMilestoneDTO, len(milestones))
	for i := range milestones {
		dtos[i] = mapper.ToMilestoneDTO(&milestones[i], now)
	}
	return dtos, nil
}

// ListPartPayments returns the installments confirmed against a milestone
func (s *MilestoneService) ListPartPayments(ctx context.Context, id uuid.UUID) ([]domain.PartPaymentDTO, error) {
	if _, err := s.milestoneRepo.GetByID(ctx, id); err != nil {
		return nil, err
	}
	payments, err := s.partRepo.ListByMilestone(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list part payments: %w", err)
	}
	return mapper.ToPartPaymentDTOs(payments), nil
}

// RequestAcknowledgment asks the client to acknowledge the payment due
func (s *MilestoneService) RequestAcknowledgment(ctx context.Context, id uuid.UUID) (*domain.PaymentMilestoneDTO, error) {
	m, project, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	uc, err := requireProjectManager(ctx, project)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, m.ID, project, false, func(current domain.PaymentMilestone, p milestone.Parties, now time.Time) (milestone.Outcome, error) {
		return milestone.RequestAcknowledgment(current, p, uc.UserID, now)
	})
}

// Acknowledge records the client's acceptance or rejection of a payment request
func (s *MilestoneService) Acknowledge(ctx context.Context, id uuid.UUID, req *domain.AcknowledgeMilestoneRequest) (*domain.PaymentMilestoneDTO, error) {
	if req.Accepted == nil {
		return nil, fmt.Errorf("%w: accepted is required", domain.ErrInvalidInput)
	}
	m, project, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	uc, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	if uc.UserID != project.ClientID {
		return nil, ErrPermissionDenied
	}
	accepted := *req.Accepted
	return s.transition(ctx, m.ID, project, false, func(current domain.PaymentMilestone, p milestone.Parties, now time.Time) (milestone.Outcome, error) {
		return milestone.ClientAcknowledge(current, p, uc.UserID, accepted, req.Notes, now)
	})
}

// CancelRequest withdraws a payment request that is still awaiting the client
func (s *MilestoneService) CancelRequest(ctx context.Context, id uuid.UUID, req *domain.CancelMilestoneRequest) (*domain.PaymentMilestoneDTO, error) {
	m, project, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := requireProjectManager(ctx, project); err != nil {
		return nil, err
	}
	return s.transition(ctx, m.ID, project, false, func(current domain.PaymentMilestone, p milestone.Parties, _ time.Time) (milestone.Outcome, error) {
		return milestone.CancelRequest(current, p, req.Reason)
	})
}

// ConfirmPayment records money received and recomputes the project's spent amount
func (s *MilestoneService) ConfirmPayment(ctx context.Context, id uuid.UUID, req *domain.ConfirmPaymentRequest) (*domain.PaymentMilestoneDTO, error) {
	m, project, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	uc, err := requireProjectManager(ctx, project)
	if err != nil {
		return nil, err
	}

	c := milestone.Confirmation{
		AdminID:       uc.UserID,
		IsPartPayment: req.IsPartPayment,
		Notes:         req.Notes,
		ReceiptRef:    req.ReceiptRef,
	}
	if req.Amount != nil {
		amount := mapper.Decimal(*req.Amount)
		c.Amount = &amount
	}
	return s.transition(ctx, m.ID, project, true, func(current domain.PaymentMilestone, p milestone.Parties, now time.Time) (milestone.Outcome, error) {
		return milestone.ConfirmPayment(current, p, c, now)
	})
}

type stepFunc func(current domain.PaymentMilestone, p milestone.Parties, now time.Time) (milestone.Outcome, error)

func (s *MilestoneService) load(ctx context.Context, id uuid.UUID) (*domain.PaymentMilestone, *domain.Project, error) {
	m, err := s.milestoneRepo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	project, err := s.projects.project(ctx, m.ProjectID)
	if err != nil {
		return nil, nil, err
	}
	return m, project, nil
}

// transition applies one workflow step under the milestone lock. When settle is set the
// project is locked too and its spent amount is recomputed in the same transaction.
func (s *MilestoneService) transition(ctx context.Context, id uuid.UUID, project *domain.Project, settle bool, step stepFunc) (*domain.PaymentMilestoneDTO, error) {
	keys := []string{lock.Key(lockMilestone, id)}
	if settle {
		keys = append([]string{lock.Key(lockProject, project.ID)}, keys...)
	}
	unlock, err := lock.LockAll(ctx, s.locker, keys...)
	if err != nil {
		return nil, err
	}
	defer unlock()

	var out milestone.Outcome
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if settle {
			if _, err := s.projectRepo.GetForUpdate(ctx, tx, project.ID); err != nil {
				return err
			}
		}
		current, err := s.milestoneRepo.GetForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		readVersion := current.Version

		out, err = step(*current, milestone.PartiesOf(*project), time.Now().UTC())
		if err != nil {
			return err
		}
		if err := s.milestoneRepo.Update(ctx, tx, &out.Milestone, readVersion); err != nil {
			return err
		}
		if out.PartPayment != nil {
			if err := s.partRepo.Create(ctx, tx, out.PartPayment); err != nil {
				return err
			}
		}
		if !settle {
			return nil
		}

		all, err := s.milestoneRepo.ListAll(ctx, tx, &repository.MilestoneFilters{ProjectID: &project.ID})
		if err != nil {
			return err
		}
		return s.projectRepo.UpdateSpent(ctx, tx, project.ID, milestone.ProjectSpent(all))
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("milestone updated",
		zap.String("milestone_id", id.String()),
		zap.String("project_id", project.ID.String()),
		zap.String("status", string(out.Milestone.Status)),
		zap.String("paid", out.Milestone.PaidAmount.StringFixed(2)),
		zap.String("actor", actorID(ctx).String()))

	notify.DispatchAll(ctx, s.dispatcher, s.logger, out.Intents)
	return s.GetByID(ctx, id)
}

// ListReminders returns unpaid milestones inside their reminder window
func (s *MilestoneService) ListReminders(ctx context.Context, projectID *uuid.UUID) ([]domain.MilestoneReminderDTO, error) {
	if _, err := currentUser(ctx); err != nil {
		return nil, err
	}
	now := time.Now()
	due, projects, err := s.dueMilestones(ctx, projectID, now)
	if err != nil {
		return nil, err
	}

	out := make([]domain.MilestoneReminderDTO, 0, len(due))
	for i := range due {
		out = append(out, domain.MilestoneReminderDTO{
			Milestone:   mapper.ToMilestoneDTO(&due[i], now),
			ProjectName: projects[due[i].ProjectID].Name,
			Overdue:     milestone.Overdue(due[i], now),
		})
	}
	return out, nil
}

// SendReminders notifies clients about every due milestone on projects the caller administers
func (s *MilestoneService) SendReminders(ctx context.Context, projectID *uuid.UUID) (*domain.ReminderSendResultDTO, error) {
	uc, err := requireStaff(ctx)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	due, projects, err := s.dueMilestones(ctx, projectID, now)
	if err != nil {
		return nil, err
	}

	var intents []domain.NotificationIntent
	for _, m := range due {
		p := projects[m.ProjectID]
		if !canManageProject(uc, &p) {
			continue
		}
		intents = append(intents, milestone.ReminderIntent(m, milestone.PartiesOf(p), now))
	}
	notify.DispatchAll(ctx, s.dispatcher, s.logger, intents)

	s.logger.Info("milestone reminders sent", zap.Int("count", len(intents)))
	return &domain.ReminderSendResultDTO{Sent: len(intents)}, nil
}

func (s *MilestoneService) dueMilestones(ctx context.Context, projectID *uuid.UUID, now time.Time) ([]domain.PaymentMilestone, map[uuid.UUID]domain.Project, error) {
	milestones, err := s.milestoneRepo.ListAll(ctx, nil, &repository.MilestoneFilters{
		ProjectID:   projectID,
		Unpaid:      true,
		WithDueDate: true,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list milestones: %w", err)
	}
	projects, err := s.projectRepo.ListAll(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list projects: %w", err)
	}
	byID := make(map[uuid.UUID]domain.Project, len(projects))
	for _, p := range projects {
		byID[p.ID] = p
	}

	var due []domain.PaymentMilestone
	for _, m := range milestones {
		if _, ok := byID[m.ProjectID]; !ok {
			continue
		}
		if milestone.ReminderDue(m, now) {
			due = append(due, m)
		}
	}
	return due, byID, nil
}
