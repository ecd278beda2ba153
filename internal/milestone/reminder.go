package milestone

import (
	"fmt"
	"time"

	"github.com/vitneshimmanuvel/dsqaubackend/internal/domain"
)

// ReminderDue reports whether an unpaid milestone has entered its reminder window
func ReminderDue(m domain.PaymentMilestone, now time.Time) bool {
	if m.Status == domain.MilestonePaid || m.DueDate == nil {
		return false
	}
	start := startOfDay(*m.DueDate).AddDate(0, 0, -m.ReminderDays)
	return !now.Before(start)
}

// Overdue reports whether an unpaid milestone is past its due date
func Overdue(m domain.PaymentMilestone, now time.Time) bool {
	if m.Status == domain.MilestonePaid || m.DueDate == nil {
		return false
	}
	return now.After(startOfDay(*m.DueDate).AddDate(0, 0, 1))
}

// ReminderIntent builds the reminder sent to the client for a due milestone
func ReminderIntent(m domain.PaymentMilestone, p Parties, now time.Time) domain.NotificationIntent {
	title := "Payment due soon"
	if Overdue(m, now) {
		title = "Payment overdue"
	}
	return domain.NotificationIntent{
		RecipientID: p.ClientID,
		ProjectID:   &p.ProjectID,
		Category:    domain.NotificationReminder,
		Title:       title,
		Message: fmt.Sprintf("%s is due for the %s stage of %s on %s.",
			m.RemainingAmount.StringFixed(2), m.StageName, p.ProjectName, m.DueDate.Format("2006-01-02")),
	}
}

func startOfDay(t time.Time) time.Time {
	y, mo, d := t.Date()
	return time.Date(y, mo, d, 0, 0, 0, 0, t.Location())
}
