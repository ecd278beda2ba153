// Package wage computes crew wages from shift, hours and head count.
package wage

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/vitneshimmanuvel/dsqaubackend/internal/domain"
)

// ErrInvalidWageInput is returned when an input is outside its allowed range.
// It wraps domain.ErrInvalidInput.
var ErrInvalidWageInput = fmt.Errorf("%w: wage", domain.ErrInvalidInput)

var (
	baseHours    = decimal.NewFromInt(8)
	overtimeRate = decimal.NewFromFloat(1.5)
)

// DefaultShiftFraction applies when a wage log does not state a fraction
var DefaultShiftFraction = decimal.NewFromInt(1)

// Rates maps each shift kind to its pay multiplier
type Rates map[domain.ShiftKind]decimal.Decimal

// DefaultRates returns the standard shift multipliers
func DefaultRates() Rates {
	return Rates{
		domain.ShiftDay:     decimal.NewFromInt(1),
		domain.ShiftNight:   decimal.NewFromFloat(1.25),
		domain.ShiftFullDay: decimal.NewFromFloat(1.5),
		domain.ShiftHalfDay: decimal.NewFromFloat(0.5),
	}
}

// Input describes one crew's shift
type Input struct {
	WorkerCount   int
	RatePerWorker decimal.Decimal
	HoursWorked   decimal.Decimal
	Shift         domain.ShiftKind
	ShiftFraction decimal.Decimal
}

// Breakdown splits a wage into its regular and overtime parts
type Breakdown struct {
	Regular    decimal.Decimal
	Overtime   decimal.Decimal
	Total      decimal.Decimal
	Multiplier decimal.Decimal
}

// Calculator computes wages using a fixed set of shift multipliers
type Calculator struct {
	rates Rates
}

// NewCalculator creates a calculator. A nil rates map uses DefaultRates.
func NewCalculator(rates Rates) *Calculator {
	if rates == nil {
		rates = DefaultRates()
	}
	copied := make(Rates, len(rates))
	for k, v := range rates {
		copied[k] = v
	}
	return &Calculator{rates: copied}
}

// Multiplier returns the multiplier for a shift kind
func (c *Calculator) Multiplier(shift domain.ShiftKind) (decimal.Decimal, bool) {
	m, ok := c.rates[shift]
	return m, ok
}

// Calculate returns the total wage for the input
func (c *Calculator) Calculate(in Input) (decimal.Decimal, error) {
	b, err := c.Breakdown(in)
	if err != nil {
		return decimal.Zero, err
	}
	return b.Total, nil
}

// Breakdown returns the regular and overtime components of a wage.
//
// Up to eight hours the wage is prorated by hours/8. Beyond eight hours the
// crew earns a full shift plus overtime at 1.5x the hourly rate for each extra
// hour; the shift fraction scales only the regular part.
func (c *Calculator) Breakdown(in Input) (Breakdown, error) {
	if err := c.validate(in); err != nil {
		return Breakdown{}, err
	}

	multiplier := c.rates[in.Shift]
	count := decimal.NewFromInt(int64(in.WorkerCount))

	if in.HoursWorked.LessThanOrEqual(baseHours) {
		regular := count.
			Mul(in.RatePerWorker).
			Mul(in.HoursWorked.Div(baseHours)).
			Mul(multiplier).
			Mul(in.ShiftFraction)
		return Breakdown{Regular: regular, Overtime: decimal.Zero, Total: regular, Multiplier: multiplier}, nil
	}

	regular := count.Mul(in.RatePerWorker).Mul(multiplier).Mul(in.ShiftFraction)
	overtime := count.
		Mul(in.RatePerWorker.Div(baseHours)).
		Mul(in.HoursWorked.Sub(baseHours)).
		Mul(overtimeRate).
		Mul(multiplier)

	return Breakdown{
		Regular:    regular,
		Overtime:   overtime,
		Total:      regular.Add(overtime),
		Multiplier: multiplier,
	}, nil
}

func (c *Calculator) validate(in Input) error {
	if in.WorkerCount < 1 {
		return fmt.Errorf("%w: worker count must be at least 1", ErrInvalidWageInput)
	}
	if in.RatePerWorker.IsNegative() {
		return fmt.Errorf("%w: rate per worker cannot be negative", ErrInvalidWageInput)
	}
	if in.HoursWorked.IsNegative() {
		return fmt.Errorf("%w: hours worked cannot be negative", ErrInvalidWageInput)
	}
	if in.ShiftFraction.IsNegative() || in.ShiftFraction.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("%w: shift fraction must be between 0 and 1", ErrInvalidWageInput)
	}
	if _, ok := c.rates[in.Shift]; !ok {
		return fmt.Errorf("%w: unknown shift kind %q", ErrInvalidWageInput, in.Shift)
	}
	return nil
}

// IsInvalidInput reports whether err came from wage input validation
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidWageInput)
}
