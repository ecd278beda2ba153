package service_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitneshimmanuvel/dsqaubackend/internal/domain"
	"github.com/vitneshimmanuvel/dsqaubackend/internal/service"
)

func createMilestone(t *testing.T, f *fixture, projectID uuid.UUID, stage string, amount float64) *domain.PaymentMilestoneDTO {
	t.Helper()
	m, err := f.milestones.Create(asUser(f.admin), projectID, &domain.CreateMilestoneRequest{
		StageName: stage,
		Amount:    amount,
	})
	require.NoError(t, err)
	return m
}

// acknowledged drives a milestone to AWAITING_ADMIN with both acknowledgments
func acknowledged(t *testing.T, f *fixture, id uuid.UUID) {
	t.Helper()
	_, err := f.milestones.RequestAcknowledgment(asUser(f.admin), id)
	require.NoError(t, err)
	_, err = f.milestones.Acknowledge(asUser(f.client), id, &domain.AcknowledgeMilestoneRequest{Accepted: boolPtr(true)})
	require.NoError(t, err)
}

func TestMilestoneService_Create(t *testing.T) {
	f := newFixture(t)
	project := f.project(t, 1000)

	t.Run("display order follows existing milestones", func(t *testing.T) {
		first := createMilestone(t, f, project.ID, "Foundation", 200)
		second := createMilestone(t, f, project.ID, "Structure", 300)

		assert.Equal(t, 1, first.DisplayOrder)
		assert.Equal(t, 2, second.DisplayOrder)
		assert.Equal(t, domain.MilestonePending, second.Status)
		assert.Equal(t, 300.0, second.RemainingAmount)
	})

	t.Run("zero amount is rejected", func(t *testing.T) {
		_, err := f.milestones.Create(asUser(f.admin), project.ID, &domain.CreateMilestoneRequest{StageName: "Roof", Amount: 0})
		assert.ErrorIs(t, err, domain.ErrInvalidAmount)
	})

	t.Run("customer cannot create", func(t *testing.T) {
		_, err := f.milestones.Create(asUser(f.client), project.ID, &domain.CreateMilestoneRequest{StageName: "Roof", Amount: 10})
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("other admin cannot create", func(t *testing.T) {
		other := f.otherAdmin(t)
		_, err := f.milestones.Create(asUser(other), project.ID, &domain.CreateMilestoneRequest{StageName: "Roof", Amount: 10})
		assert.ErrorIs(t, err, service.ErrPermissionDenied)
	})
}

func TestMilestoneService_CreateFromTemplate(t *testing.T) {
	f := newFixture(t)
	project := f.project(t, 2000)

	created, err := f.milestones.CreateFromTemplate(asUser(f.admin), project.ID, &domain.MilestoneTemplateRequest{
		Items: []domain.MilestoneTemplateItem{
			{StageName: "Foundation", Percentage: 25},
			{StageName: "Structure", Percentage: 40},
		},
	})
	require.NoError(t, err)
	require.Len(t, created, 2)
	assert.Equal(t, 500.0, created[0].Amount)
	assert.Equal(t, 800.0, created[1].Amount)
	assert.Equal(t, 1, created[0].DisplayOrder)
	assert.Equal(t, 2, created[1].DisplayOrder)

	_, err = f.milestones.CreateFromTemplate(asUser(f.admin), project.ID, &domain.MilestoneTemplateRequest{
		Items: []domain.MilestoneTemplateItem{
			{StageName: "A", Percentage: 60},
			{StageName: "B", Percentage: 50},
		},
	})
	assert.Error(t, err)

	list, err := f.milestones.ListByProject(asUser(f.admin), project.ID)
	require.NoError(t, err)
	assert.Len(t, list, 2, "a failed template must not create anything")
}

func TestMilestoneService_AcknowledgmentWorkflow(t *testing.T) {
	f := newFixture(t)
	project := f.project(t, 1000)
	m := createMilestone(t, f, project.ID, "Foundation", 100)

	requested, err := f.milestones.RequestAcknowledgment(asUser(f.admin), m.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.MilestoneAwaitingClient, requested.Status)
	assert.True(t, requested.AdminAcknowledged)
	assert.False(t, requested.ClientAcknowledged)

	intents := f.recorder.Intents()
	require.Len(t, intents, 1)
	assert.Equal(t, f.client.ID, intents[0].RecipientID)
	assert.Equal(t, domain.NotificationMilestone, intents[0].Category)

	acked, err := f.milestones.Acknowledge(asUser(f.client), m.ID, &domain.AcknowledgeMilestoneRequest{
		Accepted: boolPtr(true),
		Notes:    "transferred today",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.MilestoneAwaitingAdmin, acked.Status)
	assert.True(t, acked.ClientAcknowledged)
	assert.Equal(t, "transferred today", acked.ClientNotes)

	paid, err := f.milestones.ConfirmPayment(asUser(f.admin), m.ID, &domain.ConfirmPaymentRequest{})
	require.NoError(t, err)
	assert.Equal(t, domain.MilestonePaid, paid.Status)
	assert.Equal(t, 100.0, paid.PaidAmount)
	assert.Equal(t, 0.0, paid.RemainingAmount)
	assert.NotNil(t, paid.PaidDate)

	got, err := f.projects.GetByID(asUser(f.admin), project.ID)
	require.NoError(t, err)
	assert.Equal(t, 100.0, got.Spent)

	parts, err := f.milestones.ListPartPayments(asUser(f.admin), m.ID)
	require.NoError(t, err)
	assert.Empty(t, parts, "a single full payment records no installment")

	_, err = f.milestones.ConfirmPayment(asUser(f.admin), m.ID, &domain.ConfirmPaymentRequest{})
	assert.ErrorIs(t, err, domain.ErrPreconditionFailed)
}

func TestMilestoneService_OnlyClientAcknowledges(t *testing.T) {
	f := newFixture(t)
	project := f.project(t, 1000)
	m := createMilestone(t, f, project.ID, "Foundation", 100)
	_, err := f.milestones.RequestAcknowledgment(asUser(f.admin), m.ID)
	require.NoError(t, err)

	_, err = f.milestones.Acknowledge(asUser(f.admin), m.ID, &domain.AcknowledgeMilestoneRequest{Accepted: boolPtr(true)})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	stranger := f.otherClient(t)
	_, err = f.milestones.Acknowledge(asUser(stranger), m.ID, &domain.AcknowledgeMilestoneRequest{Accepted: boolPtr(true)})
	assert.ErrorIs(t, err, domain.ErrNotFound, "another customer cannot see the milestone")
}

func TestMilestoneService_RejectLeavesState(t *testing.T) {
	f := newFixture(t)
	project := f.project(t, 1000)
	m := createMilestone(t, f, project.ID, "Foundation", 100)
	_, err := f.milestones.RequestAcknowledgment(asUser(f.admin), m.ID)
	require.NoError(t, err)
	f.recorder.Reset()

	rejected, err := f.milestones.Acknowledge(asUser(f.client), m.ID, &domain.AcknowledgeMilestoneRequest{
		Accepted: boolPtr(false),
		Notes:    "amount is wrong",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.MilestoneAwaitingClient, rejected.Status)
	assert.False(t, rejected.ClientAcknowledged)
	assert.Equal(t, 0.0, rejected.PaidAmount)
	assert.Equal(t, 100.0, rejected.RemainingAmount)
	assert.Equal(t, "amount is wrong", rejected.LastRejectionNote)
	assert.NotNil(t, rejected.LastRejectedAt)

	intents := f.recorder.Intents()
	require.Len(t, intents, 1)
	assert.Equal(t, f.admin.ID, intents[0].RecipientID)

	cancelled, err := f.milestones.CancelRequest(asUser(f.admin), m.ID, &domain.CancelMilestoneRequest{Reason: "reissuing"})
	require.NoError(t, err)
	assert.Equal(t, domain.MilestonePending, cancelled.Status)
	assert.False(t, cancelled.AdminAcknowledged)

	_, err = f.milestones.CancelRequest(asUser(f.admin), m.ID, &domain.CancelMilestoneRequest{})
	assert.ErrorIs(t, err, domain.ErrPreconditionFailed)
}

func TestMilestoneService_ConfirmRequiresBothAcknowledgments(t *testing.T) {
	f := newFixture(t)
	project := f.project(t, 1000)

	t.Run("neither acknowledged", func(t *testing.T) {
		m := createMilestone(t, f, project.ID, "Foundation", 100)
		_, err := f.milestones.ConfirmPayment(asUser(f.admin), m.ID, &domain.ConfirmPaymentRequest{})
		assert.ErrorIs(t, err, domain.ErrPreconditionFailed)
	})

	t.Run("only admin acknowledged", func(t *testing.T) {
		m := createMilestone(t, f, project.ID, "Structure", 100)
		_, err := f.milestones.RequestAcknowledgment(asUser(f.admin), m.ID)
		require.NoError(t, err)
		_, err = f.milestones.ConfirmPayment(asUser(f.admin), m.ID, &domain.ConfirmPaymentRequest{})
		assert.ErrorIs(t, err, domain.ErrPreconditionFailed)
	})

	t.Run("both acknowledged", func(t *testing.T) {
		m := createMilestone(t, f, project.ID, "Roofing", 100)
		acknowledged(t, f, m.ID)
		_, err := f.milestones.ConfirmPayment(asUser(f.admin), m.ID, &domain.ConfirmPaymentRequest{})
		assert.NoError(t, err)
	})

	t.Run("non-positive amount", func(t *testing.T) {
		m := createMilestone(t, f, project.ID, "Finishing", 100)
		acknowledged(t, f, m.ID)
		_, err := f.milestones.ConfirmPayment(asUser(f.admin), m.ID, &domain.ConfirmPaymentRequest{Amount: float(0)})
		assert.ErrorIs(t, err, domain.ErrInvalidAmount)
	})
}

func TestMilestoneService_PartPayments(t *testing.T) {
	f := newFixture(t)
	project := f.project(t, 1000)
	m := createMilestone(t, f, project.ID, "Foundation", 100)
	acknowledged(t, f, m.ID)

	partial, err := f.milestones.ConfirmPayment(asUser(f.admin), m.ID, &domain.ConfirmPaymentRequest{Amount: float(40), ReceiptRef: "UPI-1"})
	require.NoError(t, err)
	assert.Equal(t, domain.MilestonePartial, partial.Status)
	assert.Equal(t, 40.0, partial.PaidAmount)
	assert.Equal(t, 60.0, partial.RemainingAmount)

	overpaid, err := f.milestones.ConfirmPayment(asUser(f.admin), m.ID, &domain.ConfirmPaymentRequest{Amount: float(80)})
	require.NoError(t, err)
	assert.Equal(t, domain.MilestonePaid, overpaid.Status)
	assert.Equal(t, 120.0, overpaid.PaidAmount)
	assert.Equal(t, 0.0, overpaid.RemainingAmount, "remaining is clamped at zero")

	parts, err := f.milestones.ListPartPayments(asUser(f.admin), m.ID)
	require.NoError(t, err)
	require.Len(t, parts, 1)
	assert.Equal(t, 40.0, parts[0].Amount)
	assert.Equal(t, "UPI-1", parts[0].ReceiptRef)
}

func TestMilestoneService_ProjectSpentIndependentOfOrder(t *testing.T) {
	orders := [][]int{{0, 1, 2}, {2, 1, 0}, {1, 2, 0}}
	for _, order := range orders {
		f := newFixture(t)
		project := f.project(t, 1000)
		ids := []uuid.UUID{
			createMilestone(t, f, project.ID, "Foundation", 50).ID,
			createMilestone(t, f, project.ID, "Structure", 100).ID,
			createMilestone(t, f, project.ID, "Roofing", 150).ID,
		}
		for _, id := range ids {
			acknowledged(t, f, id)
		}
		for _, i := range order {
			_, err := f.milestones.ConfirmPayment(asUser(f.admin), ids[i], &domain.ConfirmPaymentRequest{})
			require.NoError(t, err)
		}

		got, err := f.projects.GetByID(asUser(f.admin), project.ID)
		require.NoError(t, err)
		assert.Equal(t, 300.0, got.Spent, "order %v", order)
	}
}

func TestMilestoneService_ConcurrentConfirmations(t *testing.T) {
	f := newFixture(t)
	project := f.project(t, 1000)
	ids := make([]uuid.UUID, 3)
	for i, amount := range []float64{50, 100, 150} {
		ids[i] = createMilestone(t, f, project.ID, "Stage", amount).ID
		acknowledged(t, f, ids[i])
	}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for _, id := range ids {
		wg.Add(1)
		go func(id uuid.UUID) {
			defer wg.Done()
			_, err := f.milestones.ConfirmPayment(asUser(f.admin), id, &domain.ConfirmPaymentRequest{})
			mu.Lock()
			errs = append(errs, err)
			mu.Unlock()
		}(id)
	}
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
	got, err := f.projects.GetByID(asUser(f.admin), project.ID)
	require.NoError(t, err)
	assert.Equal(t, 300.0, got.Spent)
}

func TestMilestoneService_Reminders(t *testing.T) {
	f := newFixture(t)
	project := f.project(t, 1000)
	ctx := asUser(f.admin)

	past := time.Now().UTC().AddDate(0, 0, -2)
	soon := time.Now().UTC().AddDate(0, 0, 2)
	later := time.Now().UTC().AddDate(0, 1, 0)

	_, err := f.milestones.Create(ctx, project.ID, &domain.CreateMilestoneRequest{StageName: "Overdue", Amount: 10, DueDate: &past})
	require.NoError(t, err)
	_, err = f.milestones.Create(ctx, project.ID, &domain.CreateMilestoneRequest{StageName: "Soon", Amount: 10, DueDate: &soon, ReminderDays: 3})
	require.NoError(t, err)
	_, err = f.milestones.Create(ctx, project.ID, &domain.CreateMilestoneRequest{StageName: "Later", Amount: 10, DueDate: &later, ReminderDays: 3})
	require.NoError(t, err)
	_, err = f.milestones.Create(ctx, project.ID, &domain.CreateMilestoneRequest{StageName: "Undated", Amount: 10})
	require.NoError(t, err)

	due, err := f.milestones.ListReminders(ctx, &project.ID)
	require.NoError(t, err)
	require.Len(t, due, 2)

	byStage := map[string]domain.MilestoneReminderDTO{}
	for _, r := range due {
		byStage[r.Milestone.StageName] = r
	}
	assert.True(t, byStage["Overdue"].Overdue)
	assert.False(t, byStage["Soon"].Overdue)
	assert.Equal(t, project.Name, byStage["Soon"].ProjectName)

	f.recorder.Reset()
	res, err := f.milestones.SendReminders(ctx, &project.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Sent)
	for _, intent := range f.recorder.Intents() {
		assert.Equal(t, f.client.ID, intent.RecipientID)
		assert.Equal(t, domain.NotificationReminder, intent.Category)
	}

	other := f.otherAdmin(t)
	res, err = f.milestones.SendReminders(asUser(other), nil)
	require.NoError(t, err)
	assert.Zero(t, res.Sent, "admins only remind for their own projects")
}

func TestMilestoneService_NotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.milestones.RequestAcknowledgment(asUser(f.admin), uuid.New())
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}
