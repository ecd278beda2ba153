package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/vitneshimmanuvel/dsqaubackend/internal/auth"
	"github.com/vitneshimmanuvel/dsqaubackend/internal/domain"
	"github.com/vitneshimmanuvel/dsqaubackend/internal/lock"
	"github.com/vitneshimmanuvel/dsqaubackend/internal/mapper"
	"github.com/vitneshimmanuvel/dsqaubackend/internal/repository"
)

// ProjectService handles business logic for projects and their stages
type ProjectService struct {
	db          *gorm.DB
	projectRepo *repository.ProjectRepository
	userRepo    *repository.UserRepository
	catalog     domain.Catalog
	locker      lock.Locker
	logger      *zap.Logger
}

// NewProjectService creates a new project service instance
func NewProjectService(
	db *gorm.DB,
	projectRepo *repository.ProjectRepository,
	userRepo *repository.UserRepository,
	catalog domain.Catalog,
	locker lock.Locker,
	logger *zap.Logger,
) *ProjectService {
	return &ProjectService{
		db:          db,
		projectRepo: projectRepo,
		userRepo:    userRepo,
		catalog:     catalog,
		locker:      locker,
		logger:      logger,
	}
}

// Create opens a project with the catalog's stages, the first one in progress
func (s *ProjectService) Create(ctx context.Context, req *domain.CreateProjectRequest) (*domain.ProjectDTO, error) {
	project, err := s.prepare(ctx, req)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.projectRepo.Create(ctx, tx, project)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	s.logger.Info("project created",
		zap.String("project_id", project.ID.String()),
		zap.String("client_id", project.ClientID.String()),
		zap.String("admin_id", project.AdminID.String()),
		zap.Int("stages", len(project.Stages)))

	dto := mapper.ToProjectDTO(project)
	return &dto, nil
}

// prepare validates a create request and builds the project and its stages without saving.
// It reads users, so it must run before any transaction is opened.
func (s *ProjectService) prepare(ctx context.Context, req *domain.CreateProjectRequest) (*domain.Project, error) {
	uc, err := requireStaff(ctx)
	if err != nil {
		return nil, err
	}

	adminID := uc.UserID
	if req.AdminID != nil {
		adminID = *req.AdminID
	}
	if uc.Role == domain.RoleAdmin && adminID != uc.UserID {
		return nil, ErrPermissionDenied
	}
	if err := s.checkUser(ctx, req.ClientID, ErrInvalidClient, domain.RoleCustomer); err != nil {
		return nil, err
	}
	if err := s.checkUser(ctx, adminID, ErrInvalidAdmin, domain.RoleAdmin, domain.RoleSuperAdmin); err != nil {
		return nil, err
	}
	if err := validateDates(req.StartDate, req.EndDate); err != nil {
		return nil, err
	}
	if req.Budget < 0 {
		return nil, fmt.Errorf("%w: budget cannot be negative", domain.ErrInvalidInput)
	}

	status := req.Status
	if status == "" {
		status = domain.ProjectStatusPlanning
	}
	if !status.IsValid() {
		return nil, fmt.Errorf("%w: unknown project status %q", domain.ErrInvalidInput, status)
	}

	now := time.Now().UTC()
	project := &domain.Project{
		Name:        strings.TrimSpace(req.Name),
		Location:    req.Location,
		Description: req.Description,
		ClientID:    req.ClientID,
		AdminID:     adminID,
		Status:      status,
		Budget:      mapper.Decimal(req.Budget),
		Spent:       decimal.Zero,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
	}
	for i, name := range s.catalog.Stages() {
		stage := domain.ProjectStage{
			Name:         name,
			DisplayOrder: i + 1,
			Status:       domain.StageStatusPending,
		}
		if i == 0 {
			stage.Status = domain.StageStatusInProgress
			stage.StartedAt = &now
			project.CurrentStage = name
		}
		project.Stages = append(project.Stages, stage)
	}
	return project, nil
}

func (s *ProjectService) checkUser(ctx context.Context, id uuid.UUID, invalid error, roles ...domain.UserRole) error {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return invalid
		}
		return err
	}
	if !user.IsActive {
		return invalid
	}
	for _, r := range roles {
		if user.Role == r {
			return nil
		}
	}
	return invalid
}

func validateDates(start time.Time, end *time.Time) error {
	if start.IsZero() {
		return fmt.Errorf("%w: start date is required", domain.ErrInvalidInput)
	}
	if end != nil && end.Before(start) {
		return fmt.Errorf("%w: end date cannot be before start date", domain.ErrInvalidInput)
	}
	return nil
}

// GetByID returns a project with its stages
func (s *ProjectService) GetByID(ctx context.Context, id uuid.UUID) (*domain.ProjectDTO, error) {
	project, err := s.projectRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := mapper.ToProjectDTO(project)
	return &dto, nil
}

// List returns a page of projects visible to the caller
func (s *ProjectService) List(ctx context.Context, page, pageSize int, filters *repository.ProjectFilters, sort repository.SortConfig) (*domain.PaginatedResponse, error) {
	page, pageSize = repository.NormalizePage(page, pageSize)
	projects, total, err := s.projectRepo.List(ctx, page, pageSize, filters, sort)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	dtos := make([]domain.ProjectDTO, len(projects))
	for i := range projects {
		dtos[i] = mapper.ToProjectDTO(&projects[i])
	}
	return paginated(dtos, total, page, pageSize), nil
}

// Update changes a project's editable fields. Spent is derived and never taken from the request.
func (s *ProjectService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateProjectRequest) (*domain.ProjectDTO, error) {
	project, err := s.projectRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	uc, err := requireProjectManager(ctx, project)
	if err != nil {
		return nil, err
	}
	if !req.Status.IsValid() {
		return nil, fmt.Errorf("%w: unknown project status %q", domain.ErrInvalidInput, req.Status)
	}
	if req.Budget < 0 {
		return nil, fmt.Errorf("%w: budget cannot be negative", domain.ErrInvalidInput)
	}
	if err := validateDates(req.StartDate, req.EndDate); err != nil {
		return nil, err
	}
	if req.AdminID != nil && *req.AdminID != project.AdminID {
		if !uc.IsSuperAdmin() {
			return nil, ErrPermissionDenied
		}
		if err := s.checkUser(ctx, *req.AdminID, ErrInvalidAdmin, domain.RoleAdmin, domain.RoleSuperAdmin); err != nil {
			return nil, err
		}
		project.AdminID = *req.AdminID
	}

	project.Name = strings.TrimSpace(req.Name)
	project.Location = req.Location
	project.Description = req.Description
	project.Status = req.Status
	project.Budget = mapper.Decimal(req.Budget)
	project.StartDate = req.StartDate
	project.EndDate = req.EndDate

	if err := s.projectRepo.Update(ctx, project); err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}
	return s.GetByID(ctx, id)
}

// ListStages returns a project's stages in order
func (s *ProjectService) ListStages(ctx context.Context, projectID uuid.UUID) ([]domain.ProjectStageDTO, error) {
	if _, err := s.projectRepo.GetByID(ctx, projectID); err != nil {
		return nil, err
	}
	stages, err := s.projectRepo.ListStages(ctx, nil, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list stages: %w", err)
	}
	dtos := make([]domain.ProjectStageDTO, len(stages))
	for i := range stages {
		dtos[i] = mapper.ToProjectStageDTO(&stages[i])
	}
	return dtos, nil
}

// CompleteStage marks a stage completed and starts the next pending one
func (s *ProjectService) CompleteStage(ctx context.Context, projectID, stageID uuid.UUID) (*domain.ProjectDTO, error) {
	project, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if _, err := requireProjectManager(ctx, project); err != nil {
		return nil, err
	}

	unlock, err := s.locker.Lock(ctx, lock.Key(lockProject, projectID))
	if err != nil {
		return nil, err
	}
	defer unlock()

	now := time.Now().UTC()
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.projectRepo.GetForUpdate(ctx, tx, projectID); err != nil {
			return err
		}
		stages, err := s.projectRepo.ListStages(ctx, tx, projectID)
		if err != nil {
			return err
		}

		idx := -1
		for i := range stages {
			if stages[i].ID == stageID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return fmt.Errorf("%w: stage %s in project %s", domain.ErrNotFound, stageID, projectID)
		}
		stage := &stages[idx]
		if stage.Status == domain.StageStatusCompleted {
			return ErrStageNotActive
		}

		if stage.StartedAt == nil {
			stage.StartedAt = &now
		}
		stage.Status = domain.StageStatusCompleted
		stage.CompletedAt = &now
		if err := s.projectRepo.UpdateStage(ctx, tx, stage); err != nil {
			return err
		}

		current := stage.Name
		for i := idx + 1; i < len(stages); i++ {
			next := &stages[i]
			if next.Status != domain.StageStatusPending {
				continue
			}
			next.Status = domain.StageStatusInProgress
			next.StartedAt = &now
			if err := s.projectRepo.UpdateStage(ctx, tx, next); err != nil {
				return err
			}
			current = next.Name
			break
		}
		return s.projectRepo.UpdateCurrentStage(ctx, tx, projectID, current)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("project stage completed",
		zap.String("project_id", projectID.String()),
		zap.String("stage_id", stageID.String()),
		zap.String("completed_by", actorID(ctx).String()))

	return s.GetByID(ctx, projectID)
}

// project loads a project visible to the caller, for other services
func (s *ProjectService) project(ctx context.Context, id uuid.UUID) (*domain.Project, error) {
	return s.projectRepo.GetByID(ctx, id)
}

// managedProject loads a project and checks that the caller administers it
func (s *ProjectService) managedProject(ctx context.Context, id uuid.UUID) (*domain.Project, *auth.UserContext, error) {
	project, err := s.projectRepo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	uc, err := requireProjectManager(ctx, project)
	if err != nil {
		return nil, nil, err
	}
	return project, uc, nil
}
