// Package milestone drives payment milestones through the admin and client
// acknowledgment workflow.
//
// The functions here are pure: they take a milestone snapshot and return the
// updated milestone together with the notifications to send. Persisting the
// result and serializing concurrent calls is the caller's job.
package milestone

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vitneshimmanuvel/dsqaubackend/internal/domain"
	"github.com/vitneshimmanuvel/dsqaubackend/internal/ledger"
)

// Parties identifies who gets notified about a project's milestones
type Parties struct {
	ProjectID   uuid.UUID
	ProjectName string
	ClientID    uuid.UUID
	AdminID     uuid.UUID
}

// PartiesOf extracts the notification parties of a project
func PartiesOf(p domain.Project) Parties {
	return Parties{ProjectID: p.ID, ProjectName: p.Name, ClientID: p.ClientID, AdminID: p.AdminID}
}

// Outcome is the result of one workflow step
type Outcome struct {
	Milestone   domain.PaymentMilestone
	PartPayment *domain.PartPayment
	Intents     []domain.NotificationIntent
}

// Confirmation carries the admin's payment confirmation
type Confirmation struct {
	AdminID uuid.UUID
	// Amount defaults to the remaining balance when nil
	Amount        *decimal.Decimal
	IsPartPayment bool
	Notes         string
	ReceiptRef    string
}

// Draft describes a milestone to create
type Draft struct {
	StageName    string
	Description  string
	Amount       decimal.Decimal
	DueDate      *time.Time
	ReminderDays int
	DisplayOrder int
	Percentage   *decimal.Decimal
}

// New builds a pending milestone for a project
func New(projectID uuid.UUID, s Draft) (domain.PaymentMilestone, error) {
	if s.StageName == "" {
		return domain.PaymentMilestone{}, fmt.Errorf("%w: stage name is required", domain.ErrInvalidInput)
	}
	if err := ledger.CheckAmount(s.Amount); err != nil {
		return domain.PaymentMilestone{}, err
	}
	if s.ReminderDays < 0 {
		return domain.PaymentMilestone{}, fmt.Errorf("%w: reminder days cannot be negative", domain.ErrInvalidInput)
	}
	return domain.PaymentMilestone{
		ProjectID:          projectID,
		StageName:          s.StageName,
		Description:        s.Description,
		Amount:             s.Amount,
		PaidAmount:         decimal.Zero,
		RemainingAmount:    s.Amount,
		Status:             domain.MilestonePending,
		PercentageOfBudget: s.Percentage,
		DisplayOrder:       s.DisplayOrder,
		DueDate:            s.DueDate,
		ReminderDays:       s.ReminderDays,
		Version:            1,
	}, nil
}

// TemplateItem is one row of a milestone plan expressed as a share of the budget
type TemplateItem struct {
	StageName    string
	Description  string
	Percentage   decimal.Decimal
	DueDate      *time.Time
	ReminderDays int
}

var hundred = decimal.NewFromInt(100)

// FromTemplate splits a project budget into milestones by percentage
func FromTemplate(project domain.Project, items []TemplateItem) ([]domain.PaymentMilestone, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: template has no items", domain.ErrInvalidInput)
	}
	if !project.Budget.IsPositive() {
		return nil, fmt.Errorf("%w: project budget must be set before planning milestones", domain.ErrPreconditionFailed)
	}

	sum := decimal.Zero
	for _, it := range items {
		if !it.Percentage.IsPositive() {
			return nil, fmt.Errorf("%w: percentage for %q must be positive", domain.ErrInvalidInput, it.StageName)
		}
		sum = sum.Add(it.Percentage)
	}
	if sum.GreaterThan(hundred) {
		return nil, fmt.Errorf("%w: percentages add up to %s, above 100", domain.ErrInvalidInput, sum)
	}

	out := make([]domain.PaymentMilestone, 0, len(items))
	for i, it := range items {
		pct := it.Percentage
		m, err := New(project.ID, Draft{
			StageName:    it.StageName,
			Description:  it.Description,
			Amount:       project.Budget.Mul(pct).Div(hundred).Round(2),
			DueDate:      it.DueDate,
			ReminderDays: it.ReminderDays,
			DisplayOrder: i + 1,
			Percentage:   &pct,
		})
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

// RequestAcknowledgment records the admin's request for payment and hands the
// milestone to the client. It starts a new acknowledgment round, so any earlier
// client acknowledgment is cleared.
func RequestAcknowledgment(m domain.PaymentMilestone, p Parties, adminID uuid.UUID, now time.Time) (Outcome, error) {
	if m.Status == domain.MilestonePaid {
		return Outcome{}, fmt.Errorf("%w: milestone is already paid", domain.ErrPreconditionFailed)
	}

	m.Status = domain.MilestoneAwaitingClient
	m.AdminAcknowledged = true
	m.AdminAcknowledgedByID = &adminID
	m.AdminAcknowledgedAt = &now
	m.ClientAcknowledged = false
	m.ClientAcknowledgedByID = nil
	m.ClientAcknowledgedAt = nil

	return Outcome{
		Milestone: m,
		Intents: []domain.NotificationIntent{{
			RecipientID: p.ClientID,
			ProjectID:   &p.ProjectID,
			Category:    domain.NotificationMilestone,
			Title:       "Payment requested",
			Message: fmt.Sprintf("Payment of %s is requested for the %s stage of %s. Please review and acknowledge.",
				m.RemainingAmount.StringFixed(2), m.StageName, p.ProjectName),
		}},
	}, nil
}

// ClientAcknowledge records the client's answer to a payment request.
// A rejection leaves the status, the acknowledgment flags and the amounts
// untouched and alerts the admin.
func ClientAcknowledge(m domain.PaymentMilestone, p Parties, clientID uuid.UUID, accepted bool, notes string, now time.Time) (Outcome, error) {
	if m.Status != domain.MilestoneAwaitingClient {
		return Outcome{}, fmt.Errorf("%w: milestone is not awaiting the client (status %s)", domain.ErrPreconditionFailed, m.Status)
	}

	if !accepted {
		m.LastRejectedAt = &now
		m.LastRejectionNote = notes
		msg := fmt.Sprintf("The client declined the payment request for the %s stage of %s.", m.StageName, p.ProjectName)
		if notes != "" {
			msg += " Note: " + notes
		}
		return Outcome{
			Milestone: m,
			Intents: []domain.NotificationIntent{{
				RecipientID: p.AdminID,
				ProjectID:   &p.ProjectID,
				Category:    domain.NotificationMilestone,
				Title:       "Payment request declined",
				Message:     msg,
			}},
		}, nil
	}

	m.ClientAcknowledged = true
	m.ClientAcknowledgedByID = &clientID
	m.ClientAcknowledgedAt = &now
	m.ClientNotes = notes
	m.Status = domain.MilestoneAwaitingAdmin

	return Outcome{
		Milestone: m,
		Intents: []domain.NotificationIntent{{
			RecipientID: p.AdminID,
			ProjectID:   &p.ProjectID,
			Category:    domain.NotificationMilestone,
			Title:       "Payment acknowledged",
			Message: fmt.Sprintf("The client acknowledged the %s payment for the %s stage of %s. Confirm once received.",
				m.RemainingAmount.StringFixed(2), m.StageName, p.ProjectName),
		}},
	}, nil
}

// CancelRequest withdraws a pending payment request, typically after the client declined it.
// The milestone returns to PENDING, or PARTIAL when something was already paid.
func CancelRequest(m domain.PaymentMilestone, p Parties, reason string) (Outcome, error) {
	if m.Status != domain.MilestoneAwaitingClient {
		return Outcome{}, fmt.Errorf("%w: only a request awaiting the client can be cancelled", domain.ErrPreconditionFailed)
	}

	m.AdminAcknowledged = false
	m.AdminAcknowledgedByID = nil
	m.AdminAcknowledgedAt = nil
	if m.PaidAmount.IsPositive() {
		m.Status = domain.MilestonePartial
	} else {
		m.Status = domain.MilestonePending
	}

	msg := fmt.Sprintf("The payment request for the %s stage of %s was withdrawn.", m.StageName, p.ProjectName)
	if reason != "" {
		msg += " Reason: " + reason
	}
	return Outcome{
		Milestone: m,
		Intents: []domain.NotificationIntent{{
			RecipientID: p.ClientID,
			ProjectID:   &p.ProjectID,
			Category:    domain.NotificationMilestone,
			Title:       "Payment request withdrawn",
			Message:     msg,
		}},
	}, nil
}

// ConfirmPayment records money received against the milestone. Both the admin
// and the client must have acknowledged the request first. Every call applies
// its amount; repeated calls are not deduplicated.
func ConfirmPayment(m domain.PaymentMilestone, p Parties, c Confirmation, now time.Time) (Outcome, error) {
	if m.Status == domain.MilestonePaid {
		return Outcome{}, fmt.Errorf("%w: milestone is already paid", domain.ErrPreconditionFailed)
	}
	if !m.AdminAcknowledged || !m.ClientAcknowledged {
		return Outcome{}, fmt.Errorf("%w: both admin and client must acknowledge before payment is confirmed", domain.ErrPreconditionFailed)
	}

	amount := m.RemainingAmount
	if c.Amount != nil {
		amount = *c.Amount
	}
	if err := ledger.CheckAmount(amount); err != nil {
		return Outcome{}, err
	}

	m.PaidAmount = m.PaidAmount.Add(amount)
	m.RemainingAmount = ledger.Remaining(m.Amount, m.PaidAmount)
	fullyPaid := m.RemainingAmount.IsZero()

	out := Outcome{}
	if fullyPaid {
		m.Status = domain.MilestonePaid
		m.PaidDate = &now
	} else {
		m.Status = domain.MilestonePartial
	}

	if !fullyPaid || c.IsPartPayment {
		out.PartPayment = &domain.PartPayment{
			MilestoneID:   m.ID,
			ProjectID:     m.ProjectID,
			Amount:        amount,
			ReceiptRef:    c.ReceiptRef,
			Notes:         c.Notes,
			ConfirmedByID: c.AdminID,
			ConfirmedAt:   now,
		}
	}

	var title, msg string
	if fullyPaid {
		title = "Payment received"
		msg = fmt.Sprintf("Payment of %s for the %s stage of %s is confirmed. The milestone is fully paid.",
			amount.StringFixed(2), m.StageName, p.ProjectName)
	} else {
		title = "Part payment received"
		msg = fmt.Sprintf("Part payment of %s for the %s stage of %s is confirmed. Remaining: %s.",
			amount.StringFixed(2), m.StageName, p.ProjectName, m.RemainingAmount.StringFixed(2))
	}

	out.Milestone = m
	out.Intents = []domain.NotificationIntent{{
		RecipientID: p.ClientID,
		ProjectID:   &p.ProjectID,
		Category:    domain.NotificationMilestone,
		Title:       title,
		Message:     msg,
	}}
	return out, nil
}

// ProjectSpent sums what has been paid across a project's milestones
func ProjectSpent(milestones []domain.PaymentMilestone) decimal.Decimal {
	total := decimal.Zero
	for _, m := range milestones {
		total = total.Add(m.PaidAmount)
	}
	return total
}
