package domain

import "github.com/shopspring/decimal"

// PaymentStatus is the derived settlement state of a ledger
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "PENDING"
	PaymentPartial PaymentStatus = "PARTIAL"
	PaymentPaid    PaymentStatus = "PAID"
)

// Ledger is the paid/remaining bookkeeping shared by every billable entity.
// Remaining and PaymentStatus are derived from TotalAmount and PaidAmount.
type Ledger struct {
	TotalAmount     decimal.Decimal `gorm:"type:decimal(15,2);not null"`
	PaidAmount      decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0"`
	RemainingAmount decimal.Decimal `gorm:"type:decimal(15,2);not null"`
	PaymentStatus   PaymentStatus   `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	Version         int             `gorm:"not null;default:1"`
}
