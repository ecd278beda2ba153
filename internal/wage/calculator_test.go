package wage_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitneshimmanuvel/dsqaubackend/internal/domain"
	"github.com/vitneshimmanuvel/dsqaubackend/internal/wage"
)

func d(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

func TestCalculator_Calculate(t *testing.T) {
	calc := wage.NewCalculator(nil)

	tests := []struct {
		name string
		in   wage.Input
		want decimal.Decimal
	}{
		{
			name: "full day shift at base hours",
			in:   wage.Input{WorkerCount: 2, RatePerWorker: d(1000), HoursWorked: d(8), Shift: domain.ShiftDay, ShiftFraction: d(1)},
			want: d(2000),
		},
		{
			name: "prorated under base hours",
			in:   wage.Input{WorkerCount: 2, RatePerWorker: d(1000), HoursWorked: d(4), Shift: domain.ShiftDay, ShiftFraction: d(1)},
			want: d(1000),
		},
		{
			name: "overtime on day shift",
			in:   wage.Input{WorkerCount: 2, RatePerWorker: d(1000), HoursWorked: d(12), Shift: domain.ShiftDay, ShiftFraction: d(1)},
			want: d(3500),
		},
		{
			name: "night shift multiplier",
			in:   wage.Input{WorkerCount: 4, RatePerWorker: d(800), HoursWorked: d(8), Shift: domain.ShiftNight, ShiftFraction: d(1)},
			want: d(4000),
		},
		{
			name: "full day shift with overtime",
			in:   wage.Input{WorkerCount: 1, RatePerWorker: d(800), HoursWorked: d(10), Shift: domain.ShiftFullDay, ShiftFraction: d(1)},
			want: d(1200 + 450),
		},
		{
			name: "half day shift",
			in:   wage.Input{WorkerCount: 3, RatePerWorker: d(600), HoursWorked: d(8), Shift: domain.ShiftHalfDay, ShiftFraction: d(1)},
			want: d(900),
		},
		{
			name: "fraction scales regular pay",
			in:   wage.Input{WorkerCount: 2, RatePerWorker: d(1000), HoursWorked: d(8), Shift: domain.ShiftDay, ShiftFraction: d(0.5)},
			want: d(1000),
		},
		{
			name: "fraction does not scale overtime",
			in:   wage.Input{WorkerCount: 1, RatePerWorker: d(800), HoursWorked: d(10), Shift: domain.ShiftDay, ShiftFraction: d(0.5)},
			want: d(400 + 300),
		},
		{
			name: "zero hours",
			in:   wage.Input{WorkerCount: 5, RatePerWorker: d(700), HoursWorked: d(0), Shift: domain.ShiftDay, ShiftFraction: d(1)},
			want: decimal.Zero,
		},
		{
			name: "zero rate",
			in:   wage.Input{WorkerCount: 5, RatePerWorker: d(0), HoursWorked: d(11), Shift: domain.ShiftNight, ShiftFraction: d(1)},
			want: decimal.Zero,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := calc.Calculate(tt.in)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "want %s got %s", tt.want, got)
		})
	}
}

func TestCalculator_NightShiftWithOvertime(t *testing.T) {
	calc := wage.NewCalculator(nil)

	b, err := calc.Breakdown(wage.Input{
		WorkerCount:   4,
		RatePerWorker: d(800),
		HoursWorked:   d(10),
		Shift:         domain.ShiftNight,
		ShiftFraction: d(1),
	})
	require.NoError(t, err)

	assert.True(t, d(4000).Equal(b.Regular), "regular %s", b.Regular)
	assert.True(t, d(1500).Equal(b.Overtime), "overtime %s", b.Overtime)
	assert.True(t, d(5500).Equal(b.Total), "total %s", b.Total)
	assert.True(t, d(1.25).Equal(b.Multiplier))
}

func TestCalculator_BaseHoursMatchesFullShift(t *testing.T) {
	calc := wage.NewCalculator(nil)

	for shift, multiplier := range wage.DefaultRates() {
		got, err := calc.Calculate(wage.Input{
			WorkerCount:   3,
			RatePerWorker: d(900),
			HoursWorked:   d(8),
			Shift:         shift,
			ShiftFraction: d(1),
		})
		require.NoError(t, err)
		want := d(3 * 900).Mul(multiplier)
		assert.True(t, want.Equal(got), "%s: want %s got %s", shift, want, got)
	}
}

func TestCalculator_LinearInWorkerCount(t *testing.T) {
	calc := wage.NewCalculator(nil)
	base := wage.Input{WorkerCount: 1, RatePerWorker: d(750), HoursWorked: d(11), Shift: domain.ShiftNight, ShiftFraction: d(0.75)}

	one, err := calc.Calculate(base)
	require.NoError(t, err)

	for k := 2; k <= 6; k++ {
		in := base
		in.WorkerCount = k
		got, err := calc.Calculate(in)
		require.NoError(t, err)
		assert.True(t, one.Mul(decimal.NewFromInt(int64(k))).Equal(got), "k=%d", k)
	}
}

func TestCalculator_NeverNegative(t *testing.T) {
	calc := wage.NewCalculator(nil)
	hours := []float64{0, 0.5, 4, 7.99, 8, 8.01, 12, 16, 24}
	fractions := []float64{0, 0.25, 0.5, 1}

	for shift := range wage.DefaultRates() {
		for _, h := range hours {
			for _, f := range fractions {
				got, err := calc.Calculate(wage.Input{WorkerCount: 2, RatePerWorker: d(500), HoursWorked: d(h), Shift: shift, ShiftFraction: d(f)})
				require.NoError(t, err)
				assert.False(t, got.IsNegative())
			}
		}
	}
}

func TestCalculator_Idempotent(t *testing.T) {
	calc := wage.NewCalculator(nil)
	in := wage.Input{WorkerCount: 7, RatePerWorker: d(833.33), HoursWorked: d(9.5), Shift: domain.ShiftFullDay, ShiftFraction: d(0.8)}

	first, err := calc.Calculate(in)
	require.NoError(t, err)
	second, err := calc.Calculate(in)
	require.NoError(t, err)
	assert.True(t, first.Equal(second))
}

func TestCalculator_InvalidInput(t *testing.T) {
	calc := wage.NewCalculator(nil)
	valid := wage.Input{WorkerCount: 1, RatePerWorker: d(100), HoursWorked: d(8), Shift: domain.ShiftDay, ShiftFraction: d(1)}

	tests := []struct {
		name   string
		mutate func(*wage.Input)
	}{
		{"zero workers", func(in *wage.Input) { in.WorkerCount = 0 }},
		{"negative rate", func(in *wage.Input) { in.RatePerWorker = d(-1) }},
		{"negative hours", func(in *wage.Input) { in.HoursWorked = d(-0.5) }},
		{"fraction above one", func(in *wage.Input) { in.ShiftFraction = d(1.1) }},
		{"negative fraction", func(in *wage.Input) { in.ShiftFraction = d(-0.1) }},
		{"unknown shift", func(in *wage.Input) { in.Shift = domain.ShiftKind("EVENING") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.mutate(&in)
			_, err := calc.Calculate(in)
			require.Error(t, err)
			assert.True(t, wage.IsInvalidInput(err))
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestCalculator_CustomRates(t *testing.T) {
	calc := wage.NewCalculator(wage.Rates{domain.ShiftDay: d(2)})

	got, err := calc.Calculate(wage.Input{WorkerCount: 1, RatePerWorker: d(100), HoursWorked: d(8), Shift: domain.ShiftDay, ShiftFraction: d(1)})
	require.NoError(t, err)
	assert.True(t, d(200).Equal(got))

	_, err = calc.Calculate(wage.Input{WorkerCount: 1, RatePerWorker: d(100), HoursWorked: d(8), Shift: domain.ShiftNight, ShiftFraction: d(1)})
	assert.ErrorIs(t, err, wage.ErrInvalidWageInput)
}
