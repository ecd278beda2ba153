package mapper

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/vitneshimmanuvel/dsqaubackend/internal/domain"
	"github.com/vitneshimmanuvel/dsqaubackend/internal/milestone"
	"github.com/vitneshimmanuvel/dsqaubackend/internal/reporting"
)

const (
	timeLayout = "2006-01-02T15:04:05Z07:00"
	dateLayout = "2006-01-02"
)

// Money converts a decimal amount for JSON output
func Money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

// Decimal converts a request amount into a decimal
func Decimal(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatTime(*t)
	return &s
}

func formatDate(t time.Time) string {
	return t.Format(dateLayout)
}

func formatDatePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatDate(*t)
	return &s
}

// ToUserDTO converts User to UserDTO
func ToUserDTO(u *domain.User) domain.UserDTO {
	return domain.UserDTO{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		Phone:       u.Phone,
		Role:        u.Role,
		IsActive:    u.IsActive,
		LastLoginAt: formatTimePtr(u.LastLoginAt),
		CreatedAt:   formatTime(u.CreatedAt),
	}
}

// ToProjectDTO converts Project to ProjectDTO, including loaded stages
func ToProjectDTO(p *domain.Project) domain.ProjectDTO {
	dto := domain.ProjectDTO{
		ID:           p.ID,
		Name:         p.Name,
		Location:     p.Location,
		Description:  p.Description,
		ClientID:     p.ClientID,
		AdminID:      p.AdminID,
		Status:       p.Status,
		Budget:       Money(p.Budget),
		Spent:        Money(p.Spent),
		StartDate:    formatDate(p.StartDate),
		EndDate:      formatDatePtr(p.EndDate),
		CurrentStage: p.CurrentStage,
		LeadID:       p.LeadID,
		CreatedAt:    formatTime(p.CreatedAt),
		UpdatedAt:    formatTime(p.UpdatedAt),
	}
	for i := range p.Stages {
		dto.Stages = append(dto.Stages, ToProjectStageDTO(&p.Stages[i]))
	}
	return dto
}

// ToProjectStageDTO converts ProjectStage to ProjectStageDTO
func ToProjectStageDTO(s *domain.ProjectStage) domain.ProjectStageDTO {
	return domain.ProjectStageDTO{
		ID:           s.ID,
		Name:         s.Name,
		DisplayOrder: s.DisplayOrder,
		Status:       s.Status,
		StartedAt:    formatTimePtr(s.StartedAt),
		CompletedAt:  formatTimePtr(s.CompletedAt),
	}
}

// ToWageLogDTO converts WageLog to WageLogDTO
func ToWageLogDTO(w *domain.WageLog) domain.WageLogDTO {
	return domain.WageLogDTO{
		ID:            w.ID,
		ProjectID:     w.ProjectID,
		WorkDate:      formatDate(w.WorkDate),
		Category:      w.Category,
		WorkerCount:   w.WorkerCount,
		ShiftKind:     w.ShiftKind,
		ShiftFraction: w.ShiftFraction.InexactFloat64(),
		HoursWorked:   w.HoursWorked.InexactFloat64(),
		RatePerWorker: Money(w.RatePerWorker),
		TotalWage:     Money(w.TotalWage),
		PaymentStatus: w.PaymentStatus,
		PaidAt:        formatTimePtr(w.PaidAt),
		QualityIssue:  w.QualityIssue,
		MistakeNoted:  w.MistakeNoted,
		Notes:         w.Notes,
		CreatedAt:     formatTime(w.CreatedAt),
	}
}

// ToLedgerDTO converts the embedded ledger fields
func ToLedgerDTO(l domain.Ledger) domain.LedgerDTO {
	return domain.LedgerDTO{
		TotalAmount:     Money(l.TotalAmount),
		PaidAmount:      Money(l.PaidAmount),
		RemainingAmount: Money(l.RemainingAmount),
		PaymentStatus:   l.PaymentStatus,
	}
}

// ToLedgerPaymentDTO converts LedgerPayment to LedgerPaymentDTO
func ToLedgerPaymentDTO(p *domain.LedgerPayment) domain.LedgerPaymentDTO {
	return domain.LedgerPaymentDTO{
		ID:           p.ID,
		LedgerKind:   p.LedgerKind,
		LedgerID:     p.LedgerID,
		Amount:       Money(p.Amount),
		Mode:         p.Mode,
		Reference:    p.Reference,
		PaidAt:       formatTime(p.PaidAt),
		RecordedByID: p.RecordedByID,
		Notes:        p.Notes,
	}
}

// ToLedgerPaymentDTOs converts a list of payments
func ToLedgerPaymentDTOs(payments []domain.LedgerPayment) []domain.LedgerPaymentDTO {
	out := make([]domain.LedgerPaymentDTO, len(payments))
	for i := range payments {
		out[i] = ToLedgerPaymentDTO(&payments[i])
	}
	return out
}

// ToMaterialDTO converts Material to MaterialDTO
func ToMaterialDTO(m *domain.Material) domain.MaterialDTO {
	return domain.MaterialDTO{
		ID:           m.ID,
		ProjectID:    m.ProjectID,
		Name:         m.Name,
		MaterialType: m.MaterialType,
		Quantity:     m.Quantity.InexactFloat64(),
		Unit:         m.Unit,
		UnitPrice:    Money(m.UnitPrice),
		SupplierName: m.SupplierName,
		PurchaseDate: formatDate(m.PurchaseDate),
		LedgerDTO:    ToLedgerDTO(m.Ledger),
		CreatedAt:    formatTime(m.CreatedAt),
	}
}

// ToVendorDTO converts Vendor to VendorDTO
func ToVendorDTO(v *domain.Vendor) domain.VendorDTO {
	return domain.VendorDTO{
		ID:            v.ID,
		Name:          v.Name,
		ContactPerson: v.ContactPerson,
		Phone:         v.Phone,
		Email:         v.Email,
		Category:      v.Category,
		Address:       v.Address,
		TotalOrders:   v.TotalOrders,
		TotalAmount:   Money(v.TotalAmount),
		PendingAmount: Money(v.PendingAmount),
		TotalPaid:     Money(v.TotalPaid),
		CreatedAt:     formatTime(v.CreatedAt),
	}
}

// ToVendorOrderDTO converts VendorOrder to VendorOrderDTO
func ToVendorOrderDTO(o *domain.VendorOrder) domain.VendorOrderDTO {
	return domain.VendorOrderDTO{
		ID:           o.ID,
		VendorID:     o.VendorID,
		ProjectID:    o.ProjectID,
		Description:  o.Description,
		MaterialType: o.MaterialType,
		Quantity:     o.Quantity.InexactFloat64(),
		Unit:         o.Unit,
		UnitPrice:    Money(o.UnitPrice),
		OrderDate:    formatDate(o.OrderDate),
		LedgerDTO:    ToLedgerDTO(o.Ledger),
		CreatedAt:    formatTime(o.CreatedAt),
	}
}

// ToRawMaterialOrderDTO converts RawMaterialOrder to RawMaterialOrderDTO
func ToRawMaterialOrderDTO(o *domain.RawMaterialOrder) domain.RawMaterialOrderDTO {
	return domain.RawMaterialOrderDTO{
		ID:           o.ID,
		ProjectID:    o.ProjectID,
		SupplierName: o.SupplierName,
		MaterialName: o.MaterialName,
		Quantity:     o.Quantity.InexactFloat64(),
		Unit:         o.Unit,
		UnitPrice:    Money(o.UnitPrice),
		OrderDate:    formatDate(o.OrderDate),
		LedgerDTO:    ToLedgerDTO(o.Ledger),
		CreatedAt:    formatTime(o.CreatedAt),
	}
}

// ToPartPaymentDTO converts PartPayment to PartPaymentDTO
func ToPartPaymentDTO(p *domain.PartPayment) domain.PartPaymentDTO {
	return domain.PartPaymentDTO{
		ID:            p.ID,
		MilestoneID:   p.MilestoneID,
		Amount:        Money(p.Amount),
		ReceiptRef:    p.ReceiptRef,
		Notes:         p.Notes,
		ConfirmedByID: p.ConfirmedByID,
		ConfirmedAt:   formatTime(p.ConfirmedAt),
	}
}

// ToPartPaymentDTOs converts a list of part payments
func ToPartPaymentDTOs(payments []domain.PartPayment) []domain.PartPaymentDTO {
	out := make([]domain.PartPaymentDTO, len(payments))
	for i := range payments {
		out[i] = ToPartPaymentDTO(&payments[i])
	}
	return out
}

// ToMilestoneDTO converts PaymentMilestone to PaymentMilestoneDTO; now drives the reminder flags
func ToMilestoneDTO(m *domain.PaymentMilestone, now time.Time) domain.PaymentMilestoneDTO {
	dto := domain.PaymentMilestoneDTO{
		ID:                   m.ID,
		ProjectID:            m.ProjectID,
		StageName:            m.StageName,
		Description:          m.Description,
		Amount:               Money(m.Amount),
		PaidAmount:           Money(m.PaidAmount),
		RemainingAmount:      Money(m.RemainingAmount),
		Status:               m.Status,
		DisplayOrder:         m.DisplayOrder,
		DueDate:              formatDatePtr(m.DueDate),
		ReminderDays:         m.ReminderDays,
		AdminAcknowledged:    m.AdminAcknowledged,
		AdminAcknowledgedAt:  formatTimePtr(m.AdminAcknowledgedAt),
		ClientAcknowledged:   m.ClientAcknowledged,
		ClientAcknowledgedAt: formatTimePtr(m.ClientAcknowledgedAt),
		ClientNotes:          m.ClientNotes,
		LastRejectedAt:       formatTimePtr(m.LastRejectedAt),
		LastRejectionNote:    m.LastRejectionNote,
		PaidDate:             formatTimePtr(m.PaidDate),
		ReminderDue:          milestone.ReminderDue(*m, now),
		Overdue:              milestone.Overdue(*m, now),
	}
	if m.PercentageOfBudget != nil {
		pct := m.PercentageOfBudget.InexactFloat64()
		dto.PercentageOfBudget = &pct
	}
	if len(m.PartPayments) > 0 {
		dto.PartPayments = ToPartPaymentDTOs(m.PartPayments)
	}
	return dto
}

// ToLeadDTO converts Lead to LeadDTO
func ToLeadDTO(l *domain.Lead) domain.LeadDTO {
	return domain.LeadDTO{
		ID:              l.ID,
		Name:            l.Name,
		Phone:           l.Phone,
		Email:           l.Email,
		Source:          l.Source,
		Location:        l.Location,
		EstimatedBudget: Money(l.EstimatedBudget),
		Stage:           l.Stage,
		AssignedToID:    l.AssignedToID,
		Notes:           l.Notes,
		FollowUpCount:   l.FollowUpCount,
		NextFollowUpAt:  formatTimePtr(l.NextFollowUpAt),
		LastContactedAt: formatTimePtr(l.LastContactedAt),
		LostReason:      l.LostReason,
		ProjectID:       l.ProjectID,
		ClosedAt:        formatTimePtr(l.ClosedAt),
		CreatedAt:       formatTime(l.CreatedAt),
		UpdatedAt:       formatTime(l.UpdatedAt),
	}
}

// ToLeadStageHistoryDTO converts a history entry
func ToLeadStageHistoryDTO(h *domain.LeadStageHistory) domain.LeadStageHistoryDTO {
	return domain.LeadStageHistoryDTO{
		ID:          h.ID,
		FromStage:   h.FromStage,
		ToStage:     h.ToStage,
		Note:        h.Note,
		ChangedByID: h.ChangedByID,
		ChangedAt:   formatTime(h.ChangedAt),
	}
}

// ToFollowUpDTO converts FollowUp to FollowUpDTO
func ToFollowUpDTO(f *domain.FollowUp) domain.FollowUpDTO {
	return domain.FollowUpDTO{
		ID:          f.ID,
		LeadID:      f.LeadID,
		ScheduledAt: formatTime(f.ScheduledAt),
		Method:      f.Method,
		Notes:       f.Notes,
		CompletedAt: formatTimePtr(f.CompletedAt),
		Outcome:     f.Outcome,
	}
}

// ToNotificationDTO converts Notification to NotificationDTO
func ToNotificationDTO(n *domain.Notification) domain.NotificationDTO {
	return domain.NotificationDTO{
		ID:        n.ID,
		ProjectID: n.ProjectID,
		Category:  n.Category,
		Title:     n.Title,
		Message:   n.Message,
		Read:      n.Read,
		ReadAt:    formatTimePtr(n.ReadAt),
		CreatedAt: formatTime(n.CreatedAt),
	}
}

// ToPipelineStatsDTO converts pipeline statistics
func ToPipelineStatsDTO(s reporting.PipelineStats) domain.PipelineStatsDTO {
	dto := domain.PipelineStatsDTO{
		Stages:         make([]domain.PipelineStageDTO, len(s.Stages)),
		Total:          s.Total,
		Open:           s.Open,
		OpenValue:      Money(s.OpenValue),
		Won:            s.Won,
		Lost:           s.Lost,
		ConversionRate: s.ConversionRate.Round(4).InexactFloat64(),
	}
	for i, st := range s.Stages {
		dto.Stages[i] = domain.PipelineStageDTO{Stage: st.Stage, Count: st.Count, Value: Money(st.Value)}
	}
	return dto
}

// ToOverviewDTO converts the financial overview
func ToOverviewDTO(o reporting.Overview) domain.OverviewDTO {
	return domain.OverviewDTO{
		Income:         Money(o.Income),
		PendingIncome:  Money(o.PendingIncome),
		Expense:        Money(o.Expense),
		PendingExpense: Money(o.PendingExpense),
		Profit:         Money(o.Profit),
		Margin:         o.Margin.Round(4).InexactFloat64(),
	}
}

// ToMonthTrendDTOs converts monthly buckets
func ToMonthTrendDTOs(buckets []reporting.MonthBucket) []domain.MonthTrendDTO {
	out := make([]domain.MonthTrendDTO, len(buckets))
	for i, b := range buckets {
		out[i] = domain.MonthTrendDTO{
			Month:   int(b.Month),
			Label:   b.Month.String()[:3],
			Income:  Money(b.Income),
			Expense: Money(b.Expense),
			Profit:  Money(b.Profit),
		}
	}
	return out
}

// ToProjectStatDTOs converts per-project statistics
func ToProjectStatDTOs(stats []reporting.ProjectStat) []domain.ProjectStatDTO {
	out := make([]domain.ProjectStatDTO, len(stats))
	for i, s := range stats {
		out[i] = domain.ProjectStatDTO{
			ProjectID:   s.ProjectID,
			ProjectName: s.ProjectName,
			Status:      s.Status,
			Budget:      Money(s.Budget),
			Income:      Money(s.Income),
			Expense:     Money(s.Expense),
			Profit:      Money(s.Profit),
			Progress:    Money(s.Progress),
		}
	}
	return out
}

// ToExpenseBreakdownDTO converts an expense breakdown
func ToExpenseBreakdownDTO(b reporting.ExpenseBreakdown) domain.ExpenseBreakdownDTO {
	conv := func(in []reporting.CategoryAmount) []domain.CategoryAmountDTO {
		out := make([]domain.CategoryAmountDTO, len(in))
		for i, c := range in {
			out[i] = domain.CategoryAmountDTO{Category: c.Category, Amount: Money(c.Amount)}
		}
		return out
	}
	return domain.ExpenseBreakdownDTO{Materials: conv(b.Materials), Labour: conv(b.Labour)}
}

// ToWorkforceWeekDTOs converts weekly workforce buckets
func ToWorkforceWeekDTOs(weeks []reporting.WeekBucket) []domain.WorkforceWeekDTO {
	out := make([]domain.WorkforceWeekDTO, len(weeks))
	for i, w := range weeks {
		out[i] = domain.WorkforceWeekDTO{
			WeekStart:  formatDate(w.Start),
			WeekEnd:    formatDate(w.End),
			Wages:      Money(w.Wages),
			WorkerDays: w.WorkerDays.Round(2).InexactFloat64(),
			Entries:    w.Entries,
		}
	}
	return out
}
