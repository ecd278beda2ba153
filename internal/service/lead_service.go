package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/vitneshimmanuvel/dsqaubackend/internal/domain"
	"github.com/vitneshimmanuvel/dsqaubackend/internal/lock"
	"github.com/vitneshimmanuvel/dsqaubackend/internal/mapper"
	"github.com/vitneshimmanuvel/dsqaubackend/internal/notify"
	"github.com/vitneshimmanuvel/dsqaubackend/internal/reporting"
	"github.com/vitneshimmanuvel/dsqaubackend/internal/repository"
)

// LeadService moves leads through the sales pipeline and keeps their follow-up summary current
type LeadService struct {
	db           *gorm.DB
	leadRepo     *repository.LeadRepository
	historyRepo  *repository.LeadStageHistoryRepository
	followUpRepo *repository.FollowUpRepository
	projectRepo  *repository.ProjectRepository
	projects     *ProjectService
	dispatcher   notify.Dispatcher
	locker       lock.Locker
	logger       *zap.Logger
}

// NewLeadService creates a new lead service instance
func NewLeadService(
	db *gorm.DB,
	leadRepo *repository.LeadRepository,
	historyRepo *repository.LeadStageHistoryRepository,
	followUpRepo *repository.FollowUpRepository,
	projectRepo *repository.ProjectRepository,
	projects *ProjectService,
	dispatcher notify.Dispatcher,
	locker lock.Locker,
	logger *zap.Logger,
) *LeadService {
	return &LeadService{
		db:           db,
		leadRepo:     leadRepo,
		historyRepo:  historyRepo,
		followUpRepo: followUpRepo,
		projectRepo:  projectRepo,
		projects:     projects,
		dispatcher:   dispatcher,
		locker:       locker,
		logger:       logger,
	}
}

// Create opens a lead in the NEW stage
func (s *LeadService) Create(ctx context.Context, req *domain.CreateLeadRequest) (*domain.LeadDTO, error) {
	if _, err := requireStaff(ctx); err != nil {
		return nil, err
	}
	if req.EstimatedBudget < 0 {
		return nil, fmt.Errorf("%w: estimated budget cannot be negative", domain.ErrInvalidInput)
	}

	now := time.Now().UTC()
	lead := &domain.Lead{
		Name:            strings.TrimSpace(req.Name),
		Phone:           req.Phone,
		Email:           req.Email,
		Source:          req.Source,
		Location:        req.Location,
		EstimatedBudget: mapper.Decimal(req.EstimatedBudget),
		Stage:           domain.LeadStageNew,
		AssignedToID:    req.AssignedToID,
		Notes:           req.Notes,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.leadRepo.Create(ctx, tx, lead); err != nil {
			return err
		}
		return s.historyRepo.Create(ctx, tx, &domain.LeadStageHistory{
			LeadID:      lead.ID,
			ToStage:     domain.LeadStageNew,
			ChangedByID: actorID(ctx),
			ChangedAt:   now,
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create lead: %w", err)
	}

	s.logger.Info("lead created", zap.String("lead_id", lead.ID.String()), zap.String("source", lead.Source))
	s.notifyAssignee(ctx, lead, "New lead assigned", fmt.Sprintf("Lead %s has been assigned to you.", lead.Name))

	dto := mapper.ToLeadDTO(lead)
	return &dto, nil
}

// GetByID returns a lead
func (s *LeadService) GetByID(ctx context.Context, id uuid.UUID) (*domain.LeadDTO, error) {
	if _, err := requireStaff(ctx); err != nil {
		return nil, err
	}
	lead, err := s.leadRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := mapper.ToLeadDTO(lead)
	return &dto, nil
}

// List returns a page of leads
func (s *LeadService) List(ctx context.Context, page, pageSize int, filters *repository.LeadFilters, sort repository.SortConfig) (*domain.PaginatedResponse, error) {
	if _, err := requireStaff(ctx); err != nil {
		return nil, err
	}
	page, pageSize = repository.NormalizePage(page, pageSize)
	leads, total, err := s.leadRepo.List(ctx, page, pageSize, filters, sort)
	if err != nil {
		return nil, fmt.Errorf("failed to list leads: %w", err)
	}
	dtos := make([]domain.LeadDTO, len(leads))
	for i := range leads {
		dtos[i] = mapper.ToLeadDTO(&leads[i])
	}
	return paginated(dtos, total, page, pageSize), nil
}

// Update patches a lead's details. The stage and the follow-up summary are not editable here.
func (s *LeadService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateLeadRequest) (*domain.LeadDTO, error) {
	if _, err := requireStaff(ctx); err != nil {
		return nil, err
	}
	unlock, err := s.locker.Lock(ctx, lock.Key(lockLead, id))
	if err != nil {
		return nil, err
	}
	defer unlock()

	var (
		updated    *domain.Lead
		reassigned bool
	)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		lead, err := s.leadRepo.GetForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if req.Name != nil {
			lead.Name = strings.TrimSpace(*req.Name)
		}
		if req.Phone != nil {
			lead.Phone = *req.Phone
		}
		if req.Email != nil {
			lead.Email = *req.Email
		}
		if req.Source != nil {
			lead.Source = *req.Source
		}
		if req.Location != nil {
			lead.Location = *req.Location
		}
		if req.EstimatedBudget != nil {
			if *req.EstimatedBudget < 0 {
				return fmt.Errorf("%w: estimated budget cannot be negative", domain.ErrInvalidInput)
			}
			lead.EstimatedBudget = mapper.Decimal(*req.EstimatedBudget)
		}
		if req.AssignedToID != nil && (lead.AssignedToID == nil || *lead.AssignedToID != *req.AssignedToID) {
			lead.AssignedToID = req.AssignedToID
			reassigned = true
		}
		if req.Notes != nil {
			lead.Notes = *req.Notes
		}
		if err := s.leadRepo.Update(ctx, tx, lead); err != nil {
			return err
		}
		updated = lead
		return nil
	})
	if err != nil {
		return nil, err
	}

	if reassigned {
		s.notifyAssignee(ctx, updated, "Lead assigned", fmt.Sprintf("Lead %s has been assigned to you.", updated.Name))
	}
	dto := mapper.ToLeadDTO(updated)
	return &dto, nil
}

// ChangeStage moves an open lead to another open stage
func (s *LeadService) ChangeStage(ctx context.Context, id uuid.UUID, req *domain.UpdateLeadStageRequest) (*domain.LeadDTO, error) {
	if !req.Stage.IsValid() || req.Stage.IsClosed() {
		return nil, fmt.Errorf("%w: stage %q must be an open pipeline stage", domain.ErrInvalidInput, req.Stage)
	}
	return s.move(ctx, id, req.Note, func(_ *gorm.DB, lead *domain.Lead, _ time.Time) error {
		if lead.Stage.IsClosed() {
			return ErrLeadClosed
		}
		lead.Stage = req.Stage
		return nil
	})
}

// Win closes a lead as won and, when asked, opens its project in the same transaction
func (s *LeadService) Win(ctx context.Context, id uuid.UUID, req *domain.WinLeadRequest) (*domain.LeadDTO, error) {
	var project *domain.Project
	if req.Project != nil {
		p, err := s.projects.prepare(ctx, req.Project)
		if err != nil {
			return nil, err
		}
		project = p
	}

	dto, err := s.move(ctx, id, req.Note, func(tx *gorm.DB, lead *domain.Lead, now time.Time) error {
		if lead.Stage.IsClosed() {
			return ErrLeadClosed
		}
		if project != nil {
			project.LeadID = &lead.ID
			if err := s.projectRepo.Create(ctx, tx, project); err != nil {
				return err
			}
			lead.ProjectID = &project.ID
		}
		lead.Stage = domain.LeadStageWon
		lead.ClosedAt = &now
		lead.LostReason = ""
		return nil
	})
	if err != nil {
		return nil, err
	}
	if project != nil {
		s.logger.Info("project opened from lead",
			zap.String("lead_id", id.String()),
			zap.String("project_id", project.ID.String()))
	}
	return dto, nil
}

// Lose closes a lead as lost with a reason
func (s *LeadService) Lose(ctx context.Context, id uuid.UUID, req *domain.LoseLeadRequest) (*domain.LeadDTO, error) {
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		return nil, fmt.Errorf("%w: a reason is required", domain.ErrInvalidInput)
	}
	return s.move(ctx, id, reason, func(_ *gorm.DB, lead *domain.Lead, now time.Time) error {
		if lead.Stage.IsClosed() {
			return ErrLeadClosed
		}
		lead.Stage = domain.LeadStageLost
		lead.LostReason = reason
		lead.ClosedAt = &now
		return nil
	})
}

// Reopen moves a closed lead back into the pipeline, to NEW unless another open stage is given
func (s *LeadService) Reopen(ctx context.Context, id uuid.UUID, req *domain.ReopenLeadRequest) (*domain.LeadDTO, error) {
	target := req.Stage
	if target == "" {
		target = domain.LeadStageNew
	}
	if !target.IsValid() || target.IsClosed() {
		return nil, fmt.Errorf("%w: stage %q must be an open pipeline stage", domain.ErrInvalidInput, target)
	}
	return s.move(ctx, id, req.Note, func(_ *gorm.DB, lead *domain.Lead, _ time.Time) error {
		if !lead.Stage.IsClosed() {
			return ErrLeadNotClosed
		}
		lead.Stage = target
		lead.ClosedAt = nil
		lead.LostReason = ""
		return nil
	})
}

type leadStep func(tx *gorm.DB, lead *domain.Lead, now time.Time) error

// move applies a stage change under the lead lock and appends a history row.
// A step that leaves the stage unchanged writes nothing.
func (s *LeadService) move(ctx context.Context, id uuid.UUID, note string, step leadStep) (*domain.LeadDTO, error) {
	if _, err := requireStaff(ctx); err != nil {
		return nil, err
	}
	unlock, err := s.locker.Lock(ctx, lock.Key(lockLead, id))
	if err != nil {
		return nil, err
	}
	defer unlock()

	var (
		updated *domain.Lead
		from    domain.LeadStage
	)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		lead, err := s.leadRepo.GetForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		from = lead.Stage
		now := time.Now().UTC()
		if err := step(tx, lead, now); err != nil {
			return err
		}
		updated = lead
		if lead.Stage == from {
			return nil
		}
		if err := s.leadRepo.Update(ctx, tx, lead); err != nil {
			return err
		}
		prev := from
		return s.historyRepo.Create(ctx, tx, &domain.LeadStageHistory{
			LeadID:      lead.ID,
			FromStage:   &prev,
			ToStage:     lead.Stage,
			Note:        note,
			ChangedByID: actorID(ctx),
			ChangedAt:   now,
		})
	})
	if err != nil {
		return nil, err
	}

	if updated.Stage != from {
		s.logger.Info("lead stage changed",
			zap.String("lead_id", id.String()),
			zap.String("from", string(from)),
			zap.String("to", string(updated.Stage)))
		s.notifyAssignee(ctx, updated, "Lead stage changed",
			fmt.Sprintf("Lead %s moved from %s to %s.", updated.Name, from, updated.Stage))
	}
	dto := mapper.ToLeadDTO(updated)
	return &dto, nil
}

// notifyAssignee tells the assigned user about a change made by someone else
func (s *LeadService) notifyAssignee(ctx context.Context, lead *domain.Lead, title, message string) {
	if lead.AssignedToID == nil || *lead.AssignedToID == actorID(ctx) {
		return
	}
	notify.DispatchAll(ctx, s.dispatcher, s.logger, []domain.NotificationIntent{{
		RecipientID: *lead.AssignedToID,
		ProjectID:   lead.ProjectID,
		Category:    domain.NotificationLead,
		Title:       title,
		Message:     message,
	}})
}

// History returns a lead's stage changes, oldest first
func (s *LeadService) History(ctx context.Context, id uuid.UUID) ([]domain.LeadStageHistoryDTO, error) {
	if _, err := requireStaff(ctx); err != nil {
		return nil, err
	}
	if _, err := s.leadRepo.GetByID(ctx, id); err != nil {
		return nil, err
	}
	entries, err := s.historyRepo.ListByLead(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list lead history: %w", err)
	}
	dtos := make([]domain.LeadStageHistoryDTO, len(entries))
	for i := range entries {
		dtos[i] = mapper.ToLeadStageHistoryDTO(&entries[i])
	}
	return dtos, nil
}

// AddFollowUp schedules a contact with a lead
func (s *LeadService) AddFollowUp(ctx context.Context, leadID uuid.UUID, req *domain.CreateFollowUpRequest) (*domain.FollowUpDTO, error) {
	if _, err := requireStaff(ctx); err != nil {
		return nil, err
	}
	unlock, err := s.locker.Lock(ctx, lock.Key(lockLead, leadID))
	if err != nil {
		return nil, err
	}
	defer unlock()

	followUp := &domain.FollowUp{
		LeadID:      leadID,
		ScheduledAt: req.ScheduledAt.UTC(),
		Method:      req.Method,
		Notes:       req.Notes,
		CreatedByID: actorID(ctx),
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		lead, err := s.leadRepo.GetForUpdate(ctx, tx, leadID)
		if err != nil {
			return err
		}
		if err := s.followUpRepo.Create(ctx, tx, followUp); err != nil {
			return err
		}
		return s.refreshFollowUps(ctx, tx, lead)
	})
	if err != nil {
		return nil, err
	}

	dto := mapper.ToFollowUpDTO(followUp)
	return &dto, nil
}

// CompleteFollowUp records the outcome of a scheduled contact
func (s *LeadService) CompleteFollowUp(ctx context.Context, id uuid.UUID, req *domain.CompleteFollowUpRequest) (*domain.FollowUpDTO, error) {
	if _, err := requireStaff(ctx); err != nil {
		return nil, err
	}
	existing, err := s.followUpRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	unlock, err := s.locker.Lock(ctx, lock.Key(lockLead, existing.LeadID))
	if err != nil {
		return nil, err
	}
	defer unlock()

	var updated *domain.FollowUp
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		lead, err := s.leadRepo.GetForUpdate(ctx, tx, existing.LeadID)
		if err != nil {
			return err
		}
		f, err := s.followUpRepo.GetByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if f.CompletedAt != nil {
			return ErrFollowUpCompleted
		}
		completedAt := time.Now().UTC()
		if req.CompletedAt != nil {
			completedAt = req.CompletedAt.UTC()
		}
		f.CompletedAt = &completedAt
		f.Outcome = req.Outcome
		if err := s.followUpRepo.Complete(ctx, tx, f); err != nil {
			return err
		}
		updated = f
		return s.refreshFollowUps(ctx, tx, lead)
	})
	if err != nil {
		return nil, err
	}

	dto := mapper.ToFollowUpDTO(updated)
	return &dto, nil
}

// refreshFollowUps recomputes the lead's follow-up summary from its rows
func (s *LeadService) refreshFollowUps(ctx context.Context, tx *gorm.DB, lead *domain.Lead) error {
	followUps, err := s.followUpRepo.ListByLead(ctx, tx, lead.ID)
	if err != nil {
		return err
	}
	summarizeFollowUps(lead, followUps)
	return s.leadRepo.Update(ctx, tx, lead)
}

// summarizeFollowUps derives the count, the next open follow-up and the last contact
func summarizeFollowUps(lead *domain.Lead, followUps []domain.FollowUp) {
	lead.FollowUpCount = len(followUps)
	lead.NextFollowUpAt = nil
	lead.LastContactedAt = nil
	for i := range followUps {
		f := followUps[i]
		if f.CompletedAt == nil {
			if lead.NextFollowUpAt == nil || f.ScheduledAt.Before(*lead.NextFollowUpAt) {
				at := f.ScheduledAt
				lead.NextFollowUpAt = &at
			}
			continue
		}
		if lead.LastContactedAt == nil || f.CompletedAt.After(*lead.LastContactedAt) {
			at := *f.CompletedAt
			lead.LastContactedAt = &at
		}
	}
}

// ListFollowUps returns a lead's follow-ups in schedule order
func (s *LeadService) ListFollowUps(ctx context.Context, leadID uuid.UUID) ([]domain.FollowUpDTO, error) {
	if _, err := requireStaff(ctx); err != nil {
		return nil, err
	}
	if _, err := s.leadRepo.GetByID(ctx, leadID); err != nil {
		return nil, err
	}
	followUps, err := s.followUpRepo.ListByLead(ctx, nil, leadID)
	if err != nil {
		return nil, fmt.Errorf("failed to list follow-ups: %w", err)
	}
	dtos := make([]domain.FollowUpDTO, len(followUps))
	for i := range followUps {
		dtos[i] = mapper.ToFollowUpDTO(&followUps[i])
	}
	return dtos, nil
}

// Stats summarises the pipeline
func (s *LeadService) Stats(ctx context.Context) (*domain.PipelineStatsDTO, error) {
	if _, err := requireStaff(ctx); err != nil {
		return nil, err
	}
	leads, err := s.leadRepo.ListAll(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list leads: %w", err)
	}
	dto := mapper.ToPipelineStatsDTO(reporting.ComputePipelineStats(leads))
	return &dto, nil
}
