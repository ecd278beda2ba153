package service

import (
	"fmt"

	"github.com/vitneshimmanuvel/dsqaubackend/internal/domain"
)

// Service errors wrap the domain taxonomy so callers can match either with errors.Is
var (
	// ErrPermissionDenied is returned when the caller may not act on the entity
	ErrPermissionDenied = fmt.Errorf("%w: permission denied", domain.ErrForbidden)

	// ErrUnauthorized is returned when no authenticated user is on the context
	ErrUnauthorized = fmt.Errorf("%w: no authenticated user", domain.ErrForbidden)

	// ErrDuplicateEmail is returned when a user with the email already exists
	ErrDuplicateEmail = fmt.Errorf("%w: a user with this email already exists", domain.ErrPreconditionFailed)

	// ErrUserInactive is returned when issuing a token for a deactivated user
	ErrUserInactive = fmt.Errorf("%w: user is not active", domain.ErrPreconditionFailed)

	// ErrInvalidClient is returned when a project's client is not a customer account
	ErrInvalidClient = fmt.Errorf("%w: client must be an active customer account", domain.ErrInvalidInput)

	// ErrInvalidAdmin is returned when a project's admin cannot administer projects
	ErrInvalidAdmin = fmt.Errorf("%w: admin must be an active admin account", domain.ErrInvalidInput)

	// ErrStageNotActive is returned when completing a stage that is already completed
	ErrStageNotActive = fmt.Errorf("%w: stage is already completed", domain.ErrPreconditionFailed)

	// ErrWageAlreadyPaid is returned when a paid wage log is paid or edited again
	ErrWageAlreadyPaid = fmt.Errorf("%w: wage log is already paid", domain.ErrPreconditionFailed)

	// ErrLeadClosed is returned when moving a won or lost lead
	ErrLeadClosed = fmt.Errorf("%w: lead is closed", domain.ErrPreconditionFailed)

	// ErrLeadNotClosed is returned when reopening a lead that is still open
	ErrLeadNotClosed = fmt.Errorf("%w: lead is not closed", domain.ErrPreconditionFailed)

	// ErrFollowUpCompleted is returned when completing a follow-up twice
	ErrFollowUpCompleted = fmt.Errorf("%w: follow-up is already completed", domain.ErrPreconditionFailed)
)
