package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitneshimmanuvel/dsqaubackend/internal/auth"
	"github.com/vitneshimmanuvel/dsqaubackend/internal/domain"
	"github.com/vitneshimmanuvel/dsqaubackend/internal/ledger"
	"github.com/vitneshimmanuvel/dsqaubackend/internal/repository"
	"github.com/vitneshimmanuvel/dsqaubackend/internal/testutil"
)

func TestBuildOrderClause(t *testing.T) {
	fields := map[string]string{"name": "name"}
	assert.Equal(t, "name ASC", repository.BuildOrderClause(repository.SortConfig{Field: "name", Order: repository.SortOrderAsc}, fields, "created_at"))
	assert.Equal(t, "created_at DESC", repository.BuildOrderClause(repository.SortConfig{Field: "drop table", Order: "x"}, fields, "created_at"))
}

func TestNormalizePage(t *testing.T) {
	page, size := repository.NormalizePage(0, 0)
	assert.Equal(t, 1, page)
	assert.Equal(t, repository.DefaultPageSize, size)

	_, size = repository.NormalizePage(3, 10000)
	assert.Equal(t, repository.MaxPageSize, size)
}

func TestMaterialRepository_VersionedUpdate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	repo := repository.NewMaterialRepository(db)

	client := testutil.CreateTestUser(t, db, domain.RoleCustomer)
	admin := testutil.CreateTestUser(t, db, domain.RoleAdmin)
	project := testutil.CreateTestProject(t, db, client.ID, admin.ID, 100000)

	l, err := ledger.FromQuantity(testutil.D(10), testutil.D(350))
	require.NoError(t, err)
	material := &domain.Material{
		ProjectID:    project.ID,
		Name:         "OPC Cement",
		MaterialType: "Cement",
		Quantity:     testutil.D(10),
		UnitPrice:    testutil.D(350),
		PurchaseDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		Ledger:       l,
	}
	require.NoError(t, repo.Create(ctx, material))

	stale, err := repo.GetByID(ctx, material.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stale.Version)
	assert.True(t, stale.TotalAmount.Equal(testutil.D(3500)))

	fresh := *stale
	fresh.Ledger, err = ledger.ApplyPayment(fresh.Ledger, testutil.D(500))
	require.NoError(t, err)
	require.NoError(t, repo.Update(ctx, nil, &fresh, stale.Version))
	assert.Equal(t, 2, fresh.Version)

	stale.Ledger, err = ledger.ApplyPayment(stale.Ledger, testutil.D(100))
	require.NoError(t, err)
	err = repo.Update(ctx, nil, stale, stale.Version)
	assert.ErrorIs(t, err, domain.ErrConcurrentUpdate)

	stored, err := repo.GetByID(ctx, material.ID)
	require.NoError(t, err)
	assert.True(t, stored.PaidAmount.Equal(testutil.D(500)))
	assert.Equal(t, domain.PaymentPartial, stored.PaymentStatus)
}

func TestRepository_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()

	_, err := repository.NewProjectRepository(db).GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = repository.NewVendorRepository(db).GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)

	err = repository.NewNotificationRepository(db).MarkAsRead(ctx, uuid.New(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProjectRepository_CustomerScope(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewProjectRepository(db)

	admin := testutil.CreateTestUser(t, db, domain.RoleAdmin)
	alice := testutil.CreateTestUser(t, db, domain.RoleCustomer)
	bob := testutil.CreateTestUser(t, db, domain.RoleCustomer)
	own := testutil.CreateTestProject(t, db, alice.ID, admin.ID, 1000)
	other := testutil.CreateTestProject(t, db, bob.ID, admin.ID, 1000)

	aliceCtx := auth.WithUserContext(context.Background(), &auth.UserContext{UserID: alice.ID, Role: domain.RoleCustomer})
	adminCtx := auth.WithUserContext(context.Background(), &auth.UserContext{UserID: admin.ID, Role: domain.RoleAdmin})

	projects, total, err := repo.List(aliceCtx, 1, 20, nil, repository.DefaultSortConfig())
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, projects, 1)
	assert.Equal(t, own.ID, projects[0].ID)

	_, err = repo.GetByID(aliceCtx, other.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, total, err = repo.List(adminCtx, 1, 20, nil, repository.DefaultSortConfig())
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)

	m := &domain.PaymentMilestone{ProjectID: other.ID, StageName: "Foundation", Amount: testutil.D(100), RemainingAmount: testutil.D(100), Version: 1}
	require.NoError(t, repository.NewMilestoneRepository(db).Create(context.Background(), nil, m))
	visible, err := repository.NewMilestoneRepository(db).ListAll(aliceCtx, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, visible)
}

func TestMilestoneRepository_MaxDisplayOrder(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	repo := repository.NewMilestoneRepository(db)

	projectID := uuid.New()
	max, err := repo.MaxDisplayOrder(ctx, projectID)
	require.NoError(t, err)
	assert.Equal(t, 0, max)

	require.NoError(t, repo.Create(ctx, nil,
		&domain.PaymentMilestone{ProjectID: projectID, StageName: "A", Amount: testutil.D(1), DisplayOrder: 1, Version: 1},
		&domain.PaymentMilestone{ProjectID: projectID, StageName: "B", Amount: testutil.D(1), DisplayOrder: 4, Version: 1},
	))
	max, err = repo.MaxDisplayOrder(ctx, projectID)
	require.NoError(t, err)
	assert.Equal(t, 4, max)
}
