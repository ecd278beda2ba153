// Package reporting rolls up income, expense and workforce figures from record snapshots.
// Every function tolerates empty input and returns zero values rather than failing.
package reporting

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vitneshimmanuvel/dsqaubackend/internal/domain"
)

// Snapshot is the set of records a report is computed from
type Snapshot struct {
	Milestones        []domain.PaymentMilestone
	PartPayments      []domain.PartPayment
	Materials         []domain.Material
	VendorOrders      []domain.VendorOrder
	RawMaterialOrders []domain.RawMaterialOrder
	LedgerPayments    []domain.LedgerPayment
	WageLogs          []domain.WageLog
}

// Overview is the headline financial summary
type Overview struct {
	Income         decimal.Decimal
	PendingIncome  decimal.Decimal
	Expense        decimal.Decimal
	PendingExpense decimal.Decimal
	Profit         decimal.Decimal
	// Margin is profit divided by income, zero when there is no income
	Margin decimal.Decimal
}

// ComputeOverview summarises milestones, ledgers and wages
func ComputeOverview(s Snapshot) Overview {
	o := Overview{
		Income:         decimal.Zero,
		PendingIncome:  decimal.Zero,
		Expense:        decimal.Zero,
		PendingExpense: decimal.Zero,
	}

	for _, m := range s.Milestones {
		o.Income = o.Income.Add(m.PaidAmount)
		o.PendingIncome = o.PendingIncome.Add(m.RemainingAmount)
	}
	for _, l := range ledgers(s) {
		o.Expense = o.Expense.Add(l.PaidAmount)
		o.PendingExpense = o.PendingExpense.Add(l.RemainingAmount)
	}
	for _, w := range s.WageLogs {
		if w.PaymentStatus == domain.WagePaid {
			o.Expense = o.Expense.Add(w.TotalWage)
		} else {
			o.PendingExpense = o.PendingExpense.Add(w.TotalWage)
		}
	}

	o.Profit = o.Income.Sub(o.Expense)
	o.Margin = ratio(o.Profit, o.Income)
	return o
}

// MonthBucket holds one calendar month of a trend
type MonthBucket struct {
	Month   time.Month
	Income  decimal.Decimal
	Expense decimal.Decimal
	Profit  decimal.Decimal
}

// MonthlyTrend returns twelve buckets for the given year in loc.
//
// Income comes from milestone receipts: each part payment at its confirmation
// time, plus any paid amount not covered by part payments at the milestone's
// paid date. Expense comes from ledger payments at their payment time and from
// paid wage logs at their paid time, or their work date when that is unknown.
func MonthlyTrend(s Snapshot, year int, loc *time.Location) []MonthBucket {
	if loc == nil {
		loc = time.UTC
	}
	buckets := make([]MonthBucket, 12)
	for i := range buckets {
		buckets[i] = MonthBucket{Month: time.Month(i + 1), Income: decimal.Zero, Expense: decimal.Zero, Profit: decimal.Zero}
	}
	add := func(at time.Time, amount decimal.Decimal, income bool) {
		at = at.In(loc)
		if at.Year() != year {
			return
		}
		b := &buckets[at.Month()-1]
		if income {
			b.Income = b.Income.Add(amount)
		} else {
			b.Expense = b.Expense.Add(amount)
		}
	}

	covered := make(map[uuid.UUID]decimal.Decimal)
	for _, pp := range s.PartPayments {
		add(pp.ConfirmedAt, pp.Amount, true)
		covered[pp.MilestoneID] = covered[pp.MilestoneID].Add(pp.Amount)
	}
	for _, m := range s.Milestones {
		if m.PaidDate == nil {
			continue
		}
		if rest := m.PaidAmount.Sub(covered[m.ID]); rest.IsPositive() {
			add(*m.PaidDate, rest, true)
		}
	}

	for _, p := range s.LedgerPayments {
		add(p.PaidAt, p.Amount, false)
	}
	for _, w := range s.WageLogs {
		if w.PaymentStatus != domain.WagePaid {
			continue
		}
		at := w.WorkDate
		if w.PaidAt != nil {
			at = *w.PaidAt
		}
		add(at, w.TotalWage, false)
	}

	for i := range buckets {
		buckets[i].Profit = buckets[i].Income.Sub(buckets[i].Expense)
	}
	return buckets
}

// ProjectStat is the financial position of one project
type ProjectStat struct {
	ProjectID   uuid.UUID
	ProjectName string
	Status      domain.ProjectStatus
	Budget      decimal.Decimal
	Income      decimal.Decimal
	Expense     decimal.Decimal
	Profit      decimal.Decimal
	// Progress is income as a percentage of budget, zero when the budget is zero
	Progress decimal.Decimal
}

// ProjectStats computes per-project income, expense and progress
func ProjectStats(projects []domain.Project, s Snapshot) []ProjectStat {
	income := make(map[uuid.UUID]decimal.Decimal)
	expense := make(map[uuid.UUID]decimal.Decimal)

	for _, m := range s.Milestones {
		income[m.ProjectID] = income[m.ProjectID].Add(m.PaidAmount)
	}
	for _, m := range s.Materials {
		expense[m.ProjectID] = expense[m.ProjectID].Add(m.PaidAmount)
	}
	for _, o := range s.VendorOrders {
		if o.ProjectID != nil {
			expense[*o.ProjectID] = expense[*o.ProjectID].Add(o.PaidAmount)
		}
	}
	for _, o := range s.RawMaterialOrders {
		if o.ProjectID != nil {
			expense[*o.ProjectID] = expense[*o.ProjectID].Add(o.PaidAmount)
		}
	}
	for _, w := range s.WageLogs {
		if w.PaymentStatus == domain.WagePaid {
			expense[w.ProjectID] = expense[w.ProjectID].Add(w.TotalWage)
		}
	}

	out := make([]ProjectStat, 0, len(projects))
	for _, p := range projects {
		in := income[p.ID]
		ex := expense[p.ID]
		out = append(out, ProjectStat{
			ProjectID:   p.ID,
			ProjectName: p.Name,
			Status:      p.Status,
			Budget:      p.Budget,
			Income:      in,
			Expense:     ex,
			Profit:      in.Sub(ex),
			Progress:    ratio(in, p.Budget).Mul(decimal.NewFromInt(100)),
		})
	}
	return out
}

// CategoryAmount is one slice of a breakdown
type CategoryAmount struct {
	Category string
	Amount   decimal.Decimal
}

// ExpenseBreakdown splits paid expense by material type and by worker category
type ExpenseBreakdown struct {
	Materials []CategoryAmount
	Labour    []CategoryAmount
}

const uncategorized = "Uncategorized"

// BreakdownExpenses groups paid ledger amounts by material type and paid wages by worker category.
// Slices are ordered by amount, largest first.
func BreakdownExpenses(s Snapshot) ExpenseBreakdown {
	materials := make(map[string]decimal.Decimal)
	for _, m := range s.Materials {
		addPositive(materials, m.MaterialType, m.PaidAmount)
	}
	for _, o := range s.VendorOrders {
		addPositive(materials, o.MaterialType, o.PaidAmount)
	}
	for _, o := range s.RawMaterialOrders {
		addPositive(materials, o.MaterialName, o.PaidAmount)
	}

	labour := make(map[string]decimal.Decimal)
	for _, w := range s.WageLogs {
		if w.PaymentStatus == domain.WagePaid {
			addPositive(labour, w.Category, w.TotalWage)
		}
	}

	return ExpenseBreakdown{Materials: sorted(materials), Labour: sorted(labour)}
}

// WeekBucket is one trailing seven-day window of workforce activity
type WeekBucket struct {
	Start      time.Time
	End        time.Time
	Wages      decimal.Decimal
	WorkerDays decimal.Decimal
	Entries    int
}

// WeeklyWorkforceTrend returns weeks trailing seven-day buckets, oldest first,
// the last one ending on the day of now. Worker-days count each worker weighted
// by the shift fraction.
func WeeklyWorkforceTrend(logs []domain.WageLog, now time.Time, weeks int) []WeekBucket {
	if weeks <= 0 {
		return []WeekBucket{}
	}
	today := dayOf(now)
	buckets := make([]WeekBucket, weeks)
	for i := range buckets {
		end := today.AddDate(0, 0, -7*(weeks-1-i))
		buckets[i] = WeekBucket{
			Start:      end.AddDate(0, 0, -6),
			End:        end,
			Wages:      decimal.Zero,
			WorkerDays: decimal.Zero,
		}
	}

	for _, w := range logs {
		day := dayOf(w.WorkDate.In(now.Location()))
		for i := range buckets {
			b := &buckets[i]
			if day.Before(b.Start) || day.After(b.End) {
				continue
			}
			b.Wages = b.Wages.Add(w.TotalWage)
			b.WorkerDays = b.WorkerDays.Add(decimal.NewFromInt(int64(w.WorkerCount)).Mul(w.ShiftFraction))
			b.Entries++
			break
		}
	}
	return buckets
}

func ledgers(s Snapshot) []domain.Ledger {
	out := make([]domain.Ledger, 0, len(s.Materials)+len(s.VendorOrders)+len(s.RawMaterialOrders))
	for _, m := range s.Materials {
		out = append(out, m.Ledger)
	}
	for _, o := range s.VendorOrders {
		out = append(out, o.Ledger)
	}
	for _, o := range s.RawMaterialOrders {
		out = append(out, o.Ledger)
	}
	return out
}

func ratio(num, den decimal.Decimal) decimal.Decimal {
	if den.IsZero() {
		return decimal.Zero
	}
	return num.Div(den)
}

func addPositive(m map[string]decimal.Decimal, key string, amount decimal.Decimal) {
	if !amount.IsPositive() {
		return
	}
	if key == "" {
		key = uncategorized
	}
	m[key] = m[key].Add(amount)
}

func sorted(m map[string]decimal.Decimal) []CategoryAmount {
	out := make([]CategoryAmount, 0, len(m))
	for k, v := range m {
		out = append(out, CategoryAmount{Category: k, Amount: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Amount.Cmp(out[j].Amount); c != 0 {
			return c > 0
		}
		return out[i].Category < out[j].Category
	})
	return out
}

func dayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
