package auth

import (
	"context"

	"github.com/google/uuid"

	"github.com/vitneshimmanuvel/dsqaubackend/internal/domain"
)

// UserContext holds authenticated user information
type UserContext struct {
	UserID      uuid.UUID
	DisplayName string
	Email       string
	Role        domain.UserRole
}

type contextKey string

const userContextKey contextKey = "userContext"

// SystemUserID identifies requests authenticated with the API key
var SystemUserID = uuid.MustParse("00000000-0000-0000-0000-000000000000")

// WithUserContext adds user context to the context
func WithUserContext(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// FromContext extracts user context from the context
func FromContext(ctx context.Context) (*UserContext, bool) {
	user, ok := ctx.Value(userContextKey).(*UserContext)
	return user, ok
}

// HasAnyRole checks if user has any of the specified roles
func (u *UserContext) HasAnyRole(roles ...domain.UserRole) bool {
	for _, role := range roles {
		if u.Role == role {
			return true
		}
	}
	return false
}

// IsSuperAdmin checks if user can manage all data and users
func (u *UserContext) IsSuperAdmin() bool {
	return u.Role == domain.RoleSuperAdmin
}

// IsAdmin checks if user is an admin or super admin
func (u *UserContext) IsAdmin() bool {
	return u.HasAnyRole(domain.RoleSuperAdmin, domain.RoleAdmin)
}

// IsCustomer checks if user is a client account
func (u *UserContext) IsCustomer() bool {
	return u.Role == domain.RoleCustomer
}
