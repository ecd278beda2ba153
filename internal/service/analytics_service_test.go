package service_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitneshimmanuvel/dsqaubackend/internal/domain"
)

func TestAnalyticsService_EmptyOverview(t *testing.T) {
	f := newFixture(t)

	overview, err := f.analytics.Overview(asUser(f.admin), nil)
	require.NoError(t, err)
	assert.Equal(t, domain.OverviewDTO{}, *overview)

	months, err := f.analytics.Monthly(asUser(f.admin), 2026, nil)
	require.NoError(t, err)
	assert.Len(t, months, 12)

	weeks, err := f.analytics.Workforce(asUser(f.admin), 0, nil)
	require.NoError(t, err)
	assert.Len(t, weeks, 8)
}

func TestAnalyticsService_Overview(t *testing.T) {
	f := newFixture(t)
	ctx := asUser(f.admin)
	project := f.project(t, 1000)
	idle := f.project(t, 500)

	m := createMilestone(t, f, project.ID, "Foundation", 400)
	acknowledged(t, f, m.ID)
	_, err := f.milestones.ConfirmPayment(ctx, m.ID, &domain.ConfirmPaymentRequest{Amount: float(300)})
	require.NoError(t, err)

	material, err := f.materials.Create(ctx, project.ID, &domain.CreateMaterialRequest{
		Name: "Cement", MaterialType: "Cement", Quantity: 2, UnitPrice: 60, PurchaseDate: project.StartDate,
	})
	require.NoError(t, err)
	_, err = f.materials.RecordPayment(ctx, material.ID, &domain.RecordPaymentRequest{Amount: 100})
	require.NoError(t, err)

	log, err := f.wages.Create(ctx, project.ID, &domain.CreateWageLogRequest{
		WorkDate: time.Now().UTC(), Category: "Helper", WorkerCount: 1, ShiftKind: domain.ShiftDay, RatePerWorker: 50,
	})
	require.NoError(t, err)
	_, err = f.wages.MarkPaid(ctx, log.ID)
	require.NoError(t, err)

	overview, err := f.analytics.Overview(ctx, &project.ID)
	require.NoError(t, err)
	assert.Equal(t, 300.0, overview.Income)
	assert.Equal(t, 100.0, overview.PendingIncome)
	assert.Equal(t, 150.0, overview.Expense)
	assert.Equal(t, 20.0, overview.PendingExpense)
	assert.Equal(t, 150.0, overview.Profit)
	assert.Equal(t, 0.5, overview.Margin)

	empty, err := f.analytics.Overview(ctx, &idle.ID)
	require.NoError(t, err)
	assert.Equal(t, 0.0, empty.Income)

	stats, err := f.analytics.Projects(ctx)
	require.NoError(t, err)
	require.Len(t, stats, 2)
	for _, s := range stats {
		if s.ProjectID == project.ID {
			assert.Equal(t, 30.0, s.Progress)
			assert.Equal(t, 150.0, s.Profit)
		}
	}

	breakdown, err := f.analytics.Expenses(ctx, &project.ID)
	require.NoError(t, err)
	require.Len(t, breakdown.Materials, 1)
	assert.Equal(t, "Cement", breakdown.Materials[0].Category)
	assert.Equal(t, 100.0, breakdown.Materials[0].Amount)
	require.Len(t, breakdown.Labour, 1)
	assert.Equal(t, 50.0, breakdown.Labour[0].Amount)

	weeks, err := f.analytics.Workforce(ctx, 2, &project.ID)
	require.NoError(t, err)
	require.Len(t, weeks, 2)
	assert.Equal(t, 50.0, weeks[1].Wages)
	assert.Equal(t, 1.0, weeks[1].WorkerDays)
}

func TestAnalyticsService_Validation(t *testing.T) {
	f := newFixture(t)

	_, err := f.analytics.Monthly(asUser(f.admin), 1850, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.analytics.Overview(asUser(f.client), nil)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}
