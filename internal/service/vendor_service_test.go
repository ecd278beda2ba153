package service_test

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitneshimmanuvel/dsqaubackend/internal/domain"
	"github.com/vitneshimmanuvel/dsqaubackend/internal/reporting"
	"github.com/vitneshimmanuvel/dsqaubackend/internal/repository"
)

func createVendor(t *testing.T, f *fixture) *domain.VendorDTO {
	t.Helper()
	v, err := f.vendors.Create(asUser(f.admin), &domain.CreateVendorRequest{Name: "Sri Balaji Traders", Category: "Cement"})
	require.NoError(t, err)
	return v
}

func createOrder(t *testing.T, f *fixture, vendorID uuid.UUID, quantity, unitPrice float64) *domain.VendorOrderDTO {
	t.Helper()
	o, err := f.vendors.CreateOrder(asUser(f.admin), vendorID, &domain.CreateVendorOrderRequest{
		Description: "OPC 53 grade cement",
		Quantity:    quantity,
		UnitPrice:   unitPrice,
	})
	require.NoError(t, err)
	return o
}

func TestVendorService_OrderCounters(t *testing.T) {
	f := newFixture(t)
	ctx := asUser(f.admin)
	vendor := createVendor(t, f)

	order := createOrder(t, f, vendor.ID, 100, 4.5)
	assert.Equal(t, 450.0, order.TotalAmount)
	assert.Equal(t, domain.PaymentPending, order.PaymentStatus)

	got, err := f.vendors.GetByID(ctx, vendor.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.TotalOrders)
	assert.Equal(t, 450.0, got.TotalAmount)
	assert.Equal(t, 450.0, got.PendingAmount)
	assert.Equal(t, 0.0, got.TotalPaid)

	paid, err := f.vendors.RecordOrderPayment(ctx, order.ID, &domain.RecordPaymentRequest{Amount: 200, Mode: domain.PaymentModeUPI})
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPartial, paid.PaymentStatus)
	assert.Equal(t, 250.0, paid.RemainingAmount)

	got, err = f.vendors.GetByID(ctx, vendor.ID)
	require.NoError(t, err)
	assert.Equal(t, 250.0, got.PendingAmount)
	assert.Equal(t, 200.0, got.TotalPaid)

	updated, err := f.vendors.UpdateOrder(ctx, order.ID, &domain.UpdateVendorOrderRequest{Quantity: float(120)})
	require.NoError(t, err)
	assert.Equal(t, 540.0, updated.TotalAmount)
	assert.Equal(t, 340.0, updated.RemainingAmount)

	got, err = f.vendors.GetByID(ctx, vendor.ID)
	require.NoError(t, err)
	assert.Equal(t, 540.0, got.TotalAmount)
	assert.Equal(t, 340.0, got.PendingAmount)

	payments, err := f.vendors.ListOrderPayments(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.Equal(t, 200.0, payments[0].Amount)
}

func TestVendorService_RejectsInvalidPayment(t *testing.T) {
	f := newFixture(t)
	ctx := asUser(f.admin)
	vendor := createVendor(t, f)
	order := createOrder(t, f, vendor.ID, 10, 10)

	_, err := f.vendors.RecordOrderPayment(ctx, order.ID, &domain.RecordPaymentRequest{Amount: 0})
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	got, err := f.vendors.GetByID(ctx, vendor.ID)
	require.NoError(t, err)
	assert.Equal(t, 100.0, got.PendingAmount)
	assert.Equal(t, 0.0, got.TotalPaid)
}

func TestVendorService_AmountsSettleToCents(t *testing.T) {
	f := newFixture(t)
	ctx := asUser(f.admin)
	vendor := createVendor(t, f)
	order := createOrder(t, f, vendor.ID, 3.333, 1.5)
	assert.Equal(t, 5.0, order.TotalAmount)

	var stored domain.VendorOrder
	require.NoError(t, f.db.First(&stored, "id = ?", order.ID).Error)
	assert.Equal(t, "5.00", stored.TotalAmount.StringFixed(2))
	assert.True(t, stored.TotalAmount.Equal(stored.TotalAmount.Round(2)), "total %s", stored.TotalAmount)

	_, err := f.vendors.RecordOrderPayment(ctx, order.ID, &domain.RecordPaymentRequest{Amount: 1.005})
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	_, err = f.vendors.RecordOrderPayment(ctx, order.ID, &domain.RecordPaymentRequest{Amount: 1})
	require.NoError(t, err)
	paid, err := f.vendors.RecordOrderPayment(ctx, order.ID, &domain.RecordPaymentRequest{Amount: 4})
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPaid, paid.PaymentStatus)

	got, err := f.vendors.GetByID(ctx, vendor.ID)
	require.NoError(t, err)
	assert.Equal(t, 0.0, got.PendingAmount)
	assert.Equal(t, 5.0, got.TotalPaid)
}

func TestVendorService_AggregateConsistency(t *testing.T) {
	f := newFixture(t)
	ctx := asUser(f.admin)
	vendor := createVendor(t, f)

	orders := []*domain.VendorOrderDTO{
		createOrder(t, f, vendor.ID, 10, 25),
		createOrder(t, f, vendor.ID, 4, 100),
		createOrder(t, f, vendor.ID, 1, 75.5),
	}

	var wg sync.WaitGroup
	for i := 0; i < 12; i++ {
		order := orders[i%len(orders)]
		wg.Add(1)
		go func(id uuid.UUID) {
			defer wg.Done()
			_, err := f.vendors.RecordOrderPayment(ctx, id, &domain.RecordPaymentRequest{Amount: 30})
			assert.NoError(t, err)
		}(order.ID)
	}
	wg.Wait()

	got, err := f.vendors.GetByID(ctx, vendor.ID)
	require.NoError(t, err)

	all, err := repository.NewVendorOrderRepository(f.db).ListAll(ctx, nil, &repository.VendorOrderFilters{VendorID: &vendor.ID})
	require.NoError(t, err)
	totals := reporting.ComputeVendorTotals(all)

	assert.Equal(t, 3, got.TotalOrders)
	assert.Equal(t, 725.5, got.TotalAmount)
	assert.Equal(t, 360.0, got.TotalPaid)
	assert.Equal(t, totals.TotalAmount.InexactFloat64(), got.TotalAmount)
	assert.Equal(t, totals.PendingAmount.InexactFloat64(), got.PendingAmount)
	assert.Equal(t, totals.TotalPaid.InexactFloat64(), got.TotalPaid)

	rec, err := f.vendors.Reconcile(ctx, vendor.ID)
	require.NoError(t, err)
	assert.False(t, rec.Changed)
}

func TestVendorService_ReconcileRepairsDrift(t *testing.T) {
	f := newFixture(t)
	ctx := asUser(f.admin)
	vendor := createVendor(t, f)
	createOrder(t, f, vendor.ID, 2, 50)

	require.NoError(t, f.db.Model(&domain.Vendor{}).Where("id = ?", vendor.ID).
		Update("pending_amount", 999).Error)

	rec, err := f.vendors.Reconcile(ctx, vendor.ID)
	require.NoError(t, err)
	assert.True(t, rec.Changed)
	assert.Equal(t, 100.0, rec.Vendor.PendingAmount)
}

func TestVendorService_CustomerForbidden(t *testing.T) {
	f := newFixture(t)
	_, err := f.vendors.Create(asUser(f.client), &domain.CreateVendorRequest{Name: "X"})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestMaterialService_Payments(t *testing.T) {
	f := newFixture(t)
	ctx := asUser(f.admin)
	project := f.project(t, 10000)

	m, err := f.materials.Create(ctx, project.ID, &domain.CreateMaterialRequest{
		Name:         "River sand",
		MaterialType: "Sand",
		Quantity:     3,
		Unit:         "load",
		UnitPrice:    4000,
		PurchaseDate: project.StartDate,
	})
	require.NoError(t, err)
	assert.Equal(t, 12000.0, m.TotalAmount)

	paid, err := f.materials.RecordPayment(ctx, m.ID, &domain.RecordPaymentRequest{Amount: 5000})
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPartial, paid.PaymentStatus)
	assert.Equal(t, 7000.0, paid.RemainingAmount)

	_, err = f.materials.Update(ctx, m.ID, &domain.UpdateMaterialRequest{Quantity: float(1)})
	require.NoError(t, err)
	got, err := f.materials.GetByID(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, 4000.0, got.TotalAmount)
	assert.Equal(t, 0.0, got.RemainingAmount)
	assert.Equal(t, domain.PaymentPaid, got.PaymentStatus)

	payments, err := f.materials.ListPayments(ctx, m.ID)
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.Equal(t, domain.LedgerMaterial, payments[0].LedgerKind)
	assert.Equal(t, m.ID, payments[0].LedgerID)
}

func TestRawMaterialService_Payments(t *testing.T) {
	f := newFixture(t)
	ctx := asUser(f.admin)

	o, err := f.rawMaterials.Create(ctx, &domain.CreateRawMaterialOrderRequest{
		SupplierName: "Chettinad Steel",
		MaterialName: "TMT bars",
		Quantity:     2,
		Unit:         "tonne",
		UnitPrice:    55000,
	})
	require.NoError(t, err)
	assert.Equal(t, 110000.0, o.TotalAmount)

	paid, err := f.rawMaterials.RecordPayment(ctx, o.ID, &domain.RecordPaymentRequest{Amount: 110000})
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPaid, paid.PaymentStatus)

	_, err = f.rawMaterials.RecordPayment(ctx, o.ID, &domain.RecordPaymentRequest{Amount: -5})
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	_, err = f.rawMaterials.Create(asUser(f.client), &domain.CreateRawMaterialOrderRequest{SupplierName: "a", MaterialName: "b", Quantity: 1})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}
