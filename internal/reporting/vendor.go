package reporting

import (
	"github.com/shopspring/decimal"

	"github.com/vitneshimmanuvel/dsqaubackend/internal/domain"
)

// VendorTotals is the aggregate a vendor's counters must agree with
type VendorTotals struct {
	TotalOrders   int
	TotalAmount   decimal.Decimal
	PendingAmount decimal.Decimal
	TotalPaid     decimal.Decimal
}

// ComputeVendorTotals recomputes vendor counters from its orders
func ComputeVendorTotals(orders []domain.VendorOrder) VendorTotals {
	t := VendorTotals{TotalAmount: decimal.Zero, PendingAmount: decimal.Zero, TotalPaid: decimal.Zero}
	for _, o := range orders {
		t.TotalOrders++
		t.TotalAmount = t.TotalAmount.Add(o.TotalAmount)
		t.PendingAmount = t.PendingAmount.Add(o.RemainingAmount)
		t.TotalPaid = t.TotalPaid.Add(o.PaidAmount)
	}
	return t
}

// Matches reports whether the vendor's stored counters equal the totals
func (t VendorTotals) Matches(v domain.Vendor) bool {
	return t.TotalOrders == v.TotalOrders &&
		t.TotalAmount.Equal(v.TotalAmount) &&
		t.PendingAmount.Equal(v.PendingAmount) &&
		t.TotalPaid.Equal(v.TotalPaid)
}
