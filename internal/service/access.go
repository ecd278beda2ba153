package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/vitneshimmanuvel/dsqaubackend/internal/auth"
	"github.com/vitneshimmanuvel/dsqaubackend/internal/domain"
)

// Lock kinds for entities that are serialized per row
const (
	lockVendor    = "vendor"
	lockMilestone = "milestone"
	lockProject   = "project"
	lockLead      = "lead"
	lockWageLog   = "wage_log"
)

func currentUser(ctx context.Context) (*auth.UserContext, error) {
	uc, ok := auth.FromContext(ctx)
	if !ok || uc == nil {
		return nil, ErrUnauthorized
	}
	return uc, nil
}

// actorID returns the caller's ID, or the system ID when the call is not user-initiated
func actorID(ctx context.Context) uuid.UUID {
	if uc, ok := auth.FromContext(ctx); ok && uc != nil {
		return uc.UserID
	}
	return auth.SystemUserID
}

// requireStaff allows super admins and admins
func requireStaff(ctx context.Context) (*auth.UserContext, error) {
	uc, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	if !uc.IsAdmin() {
		return nil, ErrPermissionDenied
	}
	return uc, nil
}

// canManageProject reports whether the caller administers the project
func canManageProject(uc *auth.UserContext, p *domain.Project) bool {
	if uc.IsSuperAdmin() {
		return true
	}
	return uc.Role == domain.RoleAdmin && p.AdminID == uc.UserID
}

// requireProjectManager checks that the caller administers an already loaded project
func requireProjectManager(ctx context.Context, p *domain.Project) (*auth.UserContext, error) {
	uc, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	if !canManageProject(uc, p) {
		return nil, ErrPermissionDenied
	}
	return uc, nil
}

func paginated(data interface{}, total int64, page, pageSize int) *domain.PaginatedResponse {
	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return &domain.PaginatedResponse{
		Data:       data,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}
