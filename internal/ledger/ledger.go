// Package ledger maintains the paid, remaining and status fields of billable entities.
package ledger

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vitneshimmanuvel/dsqaubackend/internal/domain"
)

// Stored precision of money and quantity columns
const (
	MoneyPlaces    int32 = 2
	QuantityPlaces int32 = 3
)

// Money rounds an amount to the precision it is stored at
func Money(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyPlaces)
}

// Quantity rounds a quantity to the precision it is stored at
func Quantity(d decimal.Decimal) decimal.Decimal {
	return d.Round(QuantityPlaces)
}

// CheckAmount rejects amounts that are not positive or carry fractions of a cent
func CheckAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() || !amount.Equal(Money(amount)) {
		return domain.ErrInvalidAmount
	}
	return nil
}

// Status derives the payment status from a total and a paid amount
func Status(total, paid decimal.Decimal) domain.PaymentStatus {
	if Remaining(total, paid).IsZero() {
		return domain.PaymentPaid
	}
	if paid.IsPositive() {
		return domain.PaymentPartial
	}
	return domain.PaymentPending
}

// Remaining returns max(0, total - paid)
func Remaining(total, paid decimal.Decimal) decimal.Decimal {
	r := total.Sub(paid)
	if r.IsNegative() {
		return decimal.Zero
	}
	return r
}

// New opens a ledger for a total with nothing paid
func New(total decimal.Decimal) (domain.Ledger, error) {
	if total.IsNegative() {
		return domain.Ledger{}, fmt.Errorf("%w: total cannot be negative", domain.ErrInvalidInput)
	}
	total = Money(total)
	return domain.Ledger{
		TotalAmount:     total,
		PaidAmount:      decimal.Zero,
		RemainingAmount: total,
		PaymentStatus:   Status(total, decimal.Zero),
		Version:         1,
	}, nil
}

// FromQuantity opens a ledger whose total is quantity times unit price
func FromQuantity(quantity, unitPrice decimal.Decimal) (domain.Ledger, error) {
	if quantity.IsNegative() || unitPrice.IsNegative() {
		return domain.Ledger{}, fmt.Errorf("%w: quantity and unit price cannot be negative", domain.ErrInvalidInput)
	}
	return New(Quantity(quantity).Mul(Money(unitPrice)))
}

// Posting describes a payment to be applied
type Posting struct {
	Amount     decimal.Decimal
	Mode       domain.PaymentMode
	Reference  string
	Notes      string
	PaidAt     time.Time
	RecordedBy uuid.UUID
}

// Result is the outcome of applying a payment
type Result struct {
	Ledger domain.Ledger
	// Settled is how much of the payment reduced the remaining balance.
	// It is less than the amount only when the payment over-pays.
	Settled decimal.Decimal
	Payment domain.LedgerPayment
}

// ApplyPayment adds amount to what has been paid and re-derives remaining and status.
// A payment larger than the remaining balance is accepted; remaining is clamped at zero.
func ApplyPayment(l domain.Ledger, amount decimal.Decimal) (domain.Ledger, error) {
	if err := CheckAmount(amount); err != nil {
		return l, err
	}
	paid := l.PaidAmount.Add(amount)
	l.PaidAmount = paid
	l.RemainingAmount = Remaining(l.TotalAmount, paid)
	l.PaymentStatus = Status(l.TotalAmount, paid)
	return l, nil
}

// Post applies a payment to the ledger of one entity and builds its payment record
func Post(l domain.Ledger, kind domain.LedgerKind, ledgerID uuid.UUID, p Posting) (Result, error) {
	if err := Validate(l); err != nil {
		return Result{}, err
	}
	updated, err := ApplyPayment(l, p.Amount)
	if err != nil {
		return Result{}, err
	}

	mode := p.Mode
	if mode == "" {
		mode = domain.PaymentModeCash
	}
	paidAt := p.PaidAt
	if paidAt.IsZero() {
		paidAt = time.Now()
	}

	return Result{
		Ledger:  updated,
		Settled: l.RemainingAmount.Sub(updated.RemainingAmount),
		Payment: domain.LedgerPayment{
			LedgerKind:   kind,
			LedgerID:     ledgerID,
			Amount:       p.Amount,
			Mode:         mode,
			Reference:    p.Reference,
			Notes:        p.Notes,
			PaidAt:       paidAt,
			RecordedByID: p.RecordedBy,
		},
	}, nil
}

// RecalculateTotal sets total to quantity times unit price, keeping what has been paid
func RecalculateTotal(l domain.Ledger, quantity, unitPrice decimal.Decimal) (domain.Ledger, error) {
	if quantity.IsNegative() || unitPrice.IsNegative() {
		return l, fmt.Errorf("%w: quantity and unit price cannot be negative", domain.ErrInvalidInput)
	}
	total := Money(Quantity(quantity).Mul(Money(unitPrice)))
	l.TotalAmount = total
	l.RemainingAmount = Remaining(total, l.PaidAmount)
	l.PaymentStatus = Status(total, l.PaidAmount)
	return l, nil
}

// Validate checks that the stored fields are mutually consistent
func Validate(l domain.Ledger) error {
	if l.TotalAmount.IsNegative() || l.PaidAmount.IsNegative() || l.RemainingAmount.IsNegative() {
		return fmt.Errorf("%w: negative ledger amount", domain.ErrInvariantViolation)
	}
	if want := Remaining(l.TotalAmount, l.PaidAmount); !want.Equal(l.RemainingAmount) {
		return fmt.Errorf("%w: remaining %s, expected %s", domain.ErrInvariantViolation, l.RemainingAmount, want)
	}
	if want := Status(l.TotalAmount, l.PaidAmount); want != l.PaymentStatus {
		return fmt.Errorf("%w: status %s, expected %s", domain.ErrInvariantViolation, l.PaymentStatus, want)
	}
	return nil
}
