package milestone_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitneshimmanuvel/dsqaubackend/internal/domain"
	"github.com/vitneshimmanuvel/dsqaubackend/internal/milestone"
)

func d(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

var now = time.Date(2024, 6, 10, 9, 30, 0, 0, time.UTC)

func fixture(t *testing.T, amount float64) (domain.PaymentMilestone, milestone.Parties) {
	t.Helper()
	p := milestone.Parties{ProjectID: uuid.New(), ProjectName: "Villa Extension", ClientID: uuid.New(), AdminID: uuid.New()}
	m, err := milestone.New(p.ProjectID, milestone.Draft{StageName: "Foundation", Amount: d(amount)})
	require.NoError(t, err)
	m.ID = uuid.New()
	return m, p
}

func acknowledged(t *testing.T, amount float64) (domain.PaymentMilestone, milestone.Parties) {
	t.Helper()
	m, p := fixture(t, amount)
	out, err := milestone.RequestAcknowledgment(m, p, p.AdminID, now)
	require.NoError(t, err)
	out, err = milestone.ClientAcknowledge(out.Milestone, p, p.ClientID, true, "ok", now)
	require.NoError(t, err)
	return out.Milestone, p
}

func TestNew(t *testing.T) {
	projectID := uuid.New()

	m, err := milestone.New(projectID, milestone.Draft{StageName: "Roofing", Amount: d(250)})
	require.NoError(t, err)
	assert.Equal(t, domain.MilestonePending, m.Status)
	assert.True(t, d(250).Equal(m.RemainingAmount))
	assert.True(t, m.PaidAmount.IsZero())

	_, err = milestone.New(projectID, milestone.Draft{StageName: "Roofing", Amount: decimal.Zero})
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	_, err = milestone.New(projectID, milestone.Draft{Amount: d(10)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestFromTemplate(t *testing.T) {
	project := domain.Project{Budget: d(200000)}
	project.ID = uuid.New()

	ms, err := milestone.FromTemplate(project, []milestone.TemplateItem{
		{StageName: "Advance", Percentage: d(10)},
		{StageName: "Foundation", Percentage: d(25)},
		{StageName: "Structure", Percentage: d(40)},
	})
	require.NoError(t, err)
	require.Len(t, ms, 3)
	assert.True(t, d(20000).Equal(ms[0].Amount))
	assert.True(t, d(50000).Equal(ms[1].Amount))
	assert.True(t, d(80000).Equal(ms[2].Amount))
	assert.Equal(t, 3, ms[2].DisplayOrder)
	assert.Equal(t, project.ID, ms[1].ProjectID)

	_, err = milestone.FromTemplate(project, []milestone.TemplateItem{{StageName: "A", Percentage: d(60)}, {StageName: "B", Percentage: d(50)}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = milestone.FromTemplate(domain.Project{}, []milestone.TemplateItem{{StageName: "A", Percentage: d(10)}})
	assert.ErrorIs(t, err, domain.ErrPreconditionFailed)
}

func TestRequestAcknowledgment(t *testing.T) {
	m, p := fixture(t, 1000)

	out, err := milestone.RequestAcknowledgment(m, p, p.AdminID, now)
	require.NoError(t, err)

	got := out.Milestone
	assert.Equal(t, domain.MilestoneAwaitingClient, got.Status)
	assert.True(t, got.AdminAcknowledged)
	require.NotNil(t, got.AdminAcknowledgedByID)
	assert.Equal(t, p.AdminID, *got.AdminAcknowledgedByID)
	assert.Equal(t, now, *got.AdminAcknowledgedAt)
	require.Len(t, out.Intents, 1)
	assert.Equal(t, p.ClientID, out.Intents[0].RecipientID)

	t.Run("paid milestone", func(t *testing.T) {
		paid := m
		paid.Status = domain.MilestonePaid
		_, err := milestone.RequestAcknowledgment(paid, p, p.AdminID, now)
		assert.ErrorIs(t, err, domain.ErrPreconditionFailed)
	})

	t.Run("re-request clears client acknowledgment", func(t *testing.T) {
		ack, p := acknowledged(t, 1000)
		part := d(100)
		conf, err := milestone.ConfirmPayment(ack, p, milestone.Confirmation{AdminID: p.AdminID, Amount: &part}, now)
		require.NoError(t, err)

		again, err := milestone.RequestAcknowledgment(conf.Milestone, p, p.AdminID, now)
		require.NoError(t, err)
		assert.False(t, again.Milestone.ClientAcknowledged)
		assert.Equal(t, domain.MilestoneAwaitingClient, again.Milestone.Status)
	})
}

func TestClientAcknowledge(t *testing.T) {
	m, p := fixture(t, 1000)
	req, err := milestone.RequestAcknowledgment(m, p, p.AdminID, now)
	require.NoError(t, err)

	t.Run("accept", func(t *testing.T) {
		out, err := milestone.ClientAcknowledge(req.Milestone, p, p.ClientID, true, "will pay friday", now)
		require.NoError(t, err)
		assert.Equal(t, domain.MilestoneAwaitingAdmin, out.Milestone.Status)
		assert.True(t, out.Milestone.ClientAcknowledged)
		assert.Equal(t, "will pay friday", out.Milestone.ClientNotes)
		require.Len(t, out.Intents, 1)
		assert.Equal(t, p.AdminID, out.Intents[0].RecipientID)
	})

	t.Run("reject leaves state unchanged", func(t *testing.T) {
		before := req.Milestone
		out, err := milestone.ClientAcknowledge(before, p, p.ClientID, false, "amount is wrong", now)
		require.NoError(t, err)

		got := out.Milestone
		assert.Equal(t, domain.MilestoneAwaitingClient, got.Status)
		assert.Equal(t, before.AdminAcknowledged, got.AdminAcknowledged)
		assert.False(t, got.ClientAcknowledged)
		assert.True(t, before.PaidAmount.Equal(got.PaidAmount))
		assert.True(t, before.RemainingAmount.Equal(got.RemainingAmount))
		assert.True(t, before.Amount.Equal(got.Amount))
		assert.Nil(t, got.PaidDate)
		assert.Equal(t, "amount is wrong", got.LastRejectionNote)
		require.Len(t, out.Intents, 1)
		assert.Equal(t, p.AdminID, out.Intents[0].RecipientID)
		assert.Contains(t, out.Intents[0].Message, "amount is wrong")
	})

	t.Run("not awaiting client", func(t *testing.T) {
		_, err := milestone.ClientAcknowledge(m, p, p.ClientID, true, "", now)
		assert.ErrorIs(t, err, domain.ErrPreconditionFailed)
	})
}

func TestCancelRequest(t *testing.T) {
	m, p := fixture(t, 1000)
	req, err := milestone.RequestAcknowledgment(m, p, p.AdminID, now)
	require.NoError(t, err)

	out, err := milestone.CancelRequest(req.Milestone, p, "wrong stage")
	require.NoError(t, err)
	assert.Equal(t, domain.MilestonePending, out.Milestone.Status)
	assert.False(t, out.Milestone.AdminAcknowledged)
	assert.Nil(t, out.Milestone.AdminAcknowledgedByID)
	require.Len(t, out.Intents, 1)
	assert.Equal(t, p.ClientID, out.Intents[0].RecipientID)

	_, err = milestone.CancelRequest(out.Milestone, p, "")
	assert.ErrorIs(t, err, domain.ErrPreconditionFailed)

	t.Run("back to partial when something was paid", func(t *testing.T) {
		ack, p := acknowledged(t, 1000)
		part := d(300)
		conf, err := milestone.ConfirmPayment(ack, p, milestone.Confirmation{AdminID: p.AdminID, Amount: &part}, now)
		require.NoError(t, err)
		again, err := milestone.RequestAcknowledgment(conf.Milestone, p, p.AdminID, now)
		require.NoError(t, err)

		out, err := milestone.CancelRequest(again.Milestone, p, "")
		require.NoError(t, err)
		assert.Equal(t, domain.MilestonePartial, out.Milestone.Status)
	})
}

func TestConfirmPayment_RequiresBothAcknowledgments(t *testing.T) {
	cases := []struct {
		name      string
		admin     bool
		client    bool
		wantError bool
	}{
		{"neither", false, false, true},
		{"admin only", true, false, true},
		{"client only", false, true, true},
		{"both", true, true, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m, p := fixture(t, 500)
			m.AdminAcknowledged = tc.admin
			m.ClientAcknowledged = tc.client
			m.Status = domain.MilestoneAwaitingAdmin

			out, err := milestone.ConfirmPayment(m, p, milestone.Confirmation{AdminID: p.AdminID}, now)
			if tc.wantError {
				assert.ErrorIs(t, err, domain.ErrPreconditionFailed)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, domain.MilestonePaid, out.Milestone.Status)
		})
	}
}

func TestConfirmPayment_Full(t *testing.T) {
	m, p := acknowledged(t, 1000)

	out, err := milestone.ConfirmPayment(m, p, milestone.Confirmation{AdminID: p.AdminID, ReceiptRef: "rcpt-1"}, now)
	require.NoError(t, err)

	got := out.Milestone
	assert.Equal(t, domain.MilestonePaid, got.Status)
	assert.True(t, d(1000).Equal(got.PaidAmount))
	assert.True(t, got.RemainingAmount.IsZero())
	require.NotNil(t, got.PaidDate)
	assert.Equal(t, now, *got.PaidDate)
	assert.Nil(t, out.PartPayment)
	require.Len(t, out.Intents, 1)
	assert.Equal(t, p.ClientID, out.Intents[0].RecipientID)
	assert.Equal(t, "Payment received", out.Intents[0].Title)

	_, err = milestone.ConfirmPayment(got, p, milestone.Confirmation{AdminID: p.AdminID}, now)
	assert.ErrorIs(t, err, domain.ErrPreconditionFailed)
}

func TestConfirmPayment_FullFlaggedAsPartPayment(t *testing.T) {
	m, p := acknowledged(t, 1000)

	out, err := milestone.ConfirmPayment(m, p, milestone.Confirmation{AdminID: p.AdminID, IsPartPayment: true}, now)
	require.NoError(t, err)
	assert.Equal(t, domain.MilestonePaid, out.Milestone.Status)
	require.NotNil(t, out.PartPayment)
	assert.True(t, d(1000).Equal(out.PartPayment.Amount))
}

func TestConfirmPayment_Partial(t *testing.T) {
	m, p := acknowledged(t, 1000)
	part := d(400)

	out, err := milestone.ConfirmPayment(m, p, milestone.Confirmation{AdminID: p.AdminID, Amount: &part, Notes: "first"}, now)
	require.NoError(t, err)

	got := out.Milestone
	assert.Equal(t, domain.MilestonePartial, got.Status)
	assert.True(t, d(400).Equal(got.PaidAmount))
	assert.True(t, d(600).Equal(got.RemainingAmount))
	assert.Nil(t, got.PaidDate)
	require.NotNil(t, out.PartPayment)
	assert.True(t, d(400).Equal(out.PartPayment.Amount))
	assert.Equal(t, m.ID, out.PartPayment.MilestoneID)
	assert.Equal(t, "Part payment received", out.Intents[0].Title)

	t.Run("further installments stay partial until settled", func(t *testing.T) {
		second := d(100)
		next, err := milestone.ConfirmPayment(got, p, milestone.Confirmation{AdminID: p.AdminID, Amount: &second}, now)
		require.NoError(t, err)
		assert.Equal(t, domain.MilestonePartial, next.Milestone.Status)

		final, err := milestone.ConfirmPayment(next.Milestone, p, milestone.Confirmation{AdminID: p.AdminID}, now)
		require.NoError(t, err)
		assert.Equal(t, domain.MilestonePaid, final.Milestone.Status)
		assert.True(t, d(1000).Equal(final.Milestone.PaidAmount))
	})
}

func TestConfirmPayment_InvalidAmount(t *testing.T) {
	m, p := acknowledged(t, 1000)
	zero := decimal.Zero
	neg := d(-10)

	_, err := milestone.ConfirmPayment(m, p, milestone.Confirmation{AdminID: p.AdminID, Amount: &zero}, now)
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
	_, err = milestone.ConfirmPayment(m, p, milestone.Confirmation{AdminID: p.AdminID, Amount: &neg}, now)
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	subCent := d(1.005)
	_, err = milestone.ConfirmPayment(m, p, milestone.Confirmation{AdminID: p.AdminID, Amount: &subCent}, now)
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	_, err = milestone.New(p.ProjectID, milestone.Draft{StageName: "Plastering", Amount: d(99.999)})
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
}

func TestProjectSpent(t *testing.T) {
	assert.True(t, milestone.ProjectSpent(nil).IsZero())

	a, p := acknowledged(t, 100)
	b, _ := acknowledged(t, 200)
	b.ProjectID = p.ProjectID

	first, err := milestone.ConfirmPayment(a, p, milestone.Confirmation{AdminID: p.AdminID}, now)
	require.NoError(t, err)
	second, err := milestone.ConfirmPayment(b, p, milestone.Confirmation{AdminID: p.AdminID}, now)
	require.NoError(t, err)

	forward := milestone.ProjectSpent([]domain.PaymentMilestone{first.Milestone, second.Milestone})
	backward := milestone.ProjectSpent([]domain.PaymentMilestone{second.Milestone, first.Milestone})
	assert.True(t, d(300).Equal(forward))
	assert.True(t, forward.Equal(backward))
}

func TestReminders(t *testing.T) {
	m, p := fixture(t, 1000)
	due := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	m.DueDate = &due
	m.ReminderDays = 3

	assert.False(t, milestone.ReminderDue(m, time.Date(2024, 6, 11, 23, 0, 0, 0, time.UTC)))
	assert.True(t, milestone.ReminderDue(m, time.Date(2024, 6, 12, 0, 0, 0, 0, time.UTC)))
	assert.False(t, milestone.Overdue(m, time.Date(2024, 6, 15, 18, 0, 0, 0, time.UTC)))
	assert.True(t, milestone.Overdue(m, time.Date(2024, 6, 16, 0, 0, 1, 0, time.UTC)))

	intent := milestone.ReminderIntent(m, p, time.Date(2024, 6, 17, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, "Payment overdue", intent.Title)
	assert.Equal(t, p.ClientID, intent.RecipientID)
	assert.Equal(t, domain.NotificationReminder, intent.Category)

	paid := m
	paid.Status = domain.MilestonePaid
	assert.False(t, milestone.ReminderDue(paid, due))

	noDue := m
	noDue.DueDate = nil
	assert.False(t, milestone.ReminderDue(noDue, due))
}
