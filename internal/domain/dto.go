package domain

import (
	"time"

	"github.com/google/uuid"
)

// DTOs for API requests and responses. Money is exposed as float64 with two decimals.

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code,omitempty"`
}

// PaginatedResponse wraps a page of results
type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	PageSize   int         `json:"pageSize"`
	TotalPages int         `json:"totalPages"`
}

// Users

type UserDTO struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"displayName"`
	Phone       string    `json:"phone,omitempty"`
	Role        UserRole  `json:"role"`
	IsActive    bool      `json:"isActive"`
	LastLoginAt *string   `json:"lastLoginAt,omitempty"` // ISO 8601
	CreatedAt   string    `json:"createdAt"`             // ISO 8601
}

type CreateUserRequest struct {
	Email       string   `json:"email" validate:"required,email,max=255"`
	DisplayName string   `json:"displayName" validate:"required,max=200"`
	Phone       string   `json:"phone,omitempty" validate:"max=50"`
	Role        UserRole `json:"role" validate:"required,oneof=super_admin admin customer"`
}

type UpdateUserRequest struct {
	DisplayName string   `json:"displayName" validate:"required,max=200"`
	Phone       string   `json:"phone,omitempty" validate:"max=50"`
	Role        UserRole `json:"role" validate:"required,oneof=super_admin admin customer"`
	IsActive    *bool    `json:"isActive,omitempty"`
}

// TokenResponse is returned when an access token is issued
type TokenResponse struct {
	Token     string  `json:"token"`
	ExpiresAt string  `json:"expiresAt"` // ISO 8601
	User      UserDTO `json:"user"`
}

// Projects

type ProjectStageDTO struct {
	ID           uuid.UUID   `json:"id"`
	Name         string      `json:"name"`
	DisplayOrder int         `json:"displayOrder"`
	Status       StageStatus `json:"status"`
	StartedAt    *string     `json:"startedAt,omitempty"`
	CompletedAt  *string     `json:"completedAt,omitempty"`
}

type ProjectDTO struct {
	ID           uuid.UUID         `json:"id"`
	Name         string            `json:"name"`
	Location     string            `json:"location,omitempty"`
	Description  string            `json:"description,omitempty"`
	ClientID     uuid.UUID         `json:"clientId"`
	AdminID      uuid.UUID         `json:"adminId"`
	Status       ProjectStatus     `json:"status"`
	Budget       float64           `json:"budget"`
	Spent        float64           `json:"spent"`
	StartDate    string            `json:"startDate"`
	EndDate      *string           `json:"endDate,omitempty"`
	CurrentStage string            `json:"currentStage,omitempty"`
	LeadID       *uuid.UUID        `json:"leadId,omitempty"`
	Stages       []ProjectStageDTO `json:"stages,omitempty"`
	CreatedAt    string            `json:"createdAt"`
	UpdatedAt    string            `json:"updatedAt"`
}

type CreateProjectRequest struct {
	Name        string        `json:"name" validate:"required,max=200"`
	Location    string        `json:"location,omitempty" validate:"max=300"`
	Description string        `json:"description,omitempty"`
	ClientID    uuid.UUID     `json:"clientId" validate:"required"`
	AdminID     *uuid.UUID    `json:"adminId,omitempty"`
	Status      ProjectStatus `json:"status,omitempty" validate:"omitempty,oneof=planning active on_hold completed cancelled"`
	Budget      float64       `json:"budget" validate:"gte=0"`
	StartDate   time.Time     `json:"startDate" validate:"required"`
	EndDate     *time.Time    `json:"endDate,omitempty"`
}

type UpdateProjectRequest struct {
	Name        string        `json:"name" validate:"required,max=200"`
	Location    string        `json:"location,omitempty" validate:"max=300"`
	Description string        `json:"description,omitempty"`
	AdminID     *uuid.UUID    `json:"adminId,omitempty"`
	Status      ProjectStatus `json:"status" validate:"required,oneof=planning active on_hold completed cancelled"`
	Budget      float64       `json:"budget" validate:"gte=0"`
	StartDate   time.Time     `json:"startDate" validate:"required"`
	EndDate     *time.Time    `json:"endDate,omitempty"`
}

// Wages

type WageCalculationRequest struct {
	WorkerCount   int       `json:"workerCount" validate:"min=1"`
	RatePerWorker float64   `json:"ratePerWorker" validate:"gte=0"`
	HoursWorked   *float64  `json:"hoursWorked,omitempty" validate:"omitempty,gte=0,lte=24"`
	ShiftKind     ShiftKind `json:"shiftKind" validate:"required,oneof=DAY NIGHT FULL_DAY HALF_DAY"`
	ShiftFraction *float64  `json:"shiftFraction,omitempty" validate:"omitempty,gte=0,lte=1"`
}

type WageCalculationDTO struct {
	Regular    float64 `json:"regular"`
	Overtime   float64 `json:"overtime"`
	Total      float64 `json:"total"`
	Multiplier float64 `json:"multiplier"`
}

type WageLogDTO struct {
	ID            uuid.UUID         `json:"id"`
	ProjectID     uuid.UUID         `json:"projectId"`
	WorkDate      string            `json:"workDate"`
	Category      string            `json:"category"`
	WorkerCount   int               `json:"workerCount"`
	ShiftKind     ShiftKind         `json:"shiftKind"`
	ShiftFraction float64           `json:"shiftFraction"`
	HoursWorked   float64           `json:"hoursWorked"`
	RatePerWorker float64           `json:"ratePerWorker"`
	TotalWage     float64           `json:"totalWage"`
	PaymentStatus WagePaymentStatus `json:"paymentStatus"`
	PaidAt        *string           `json:"paidAt,omitempty"`
	QualityIssue  bool              `json:"qualityIssue"`
	MistakeNoted  bool              `json:"mistakeNoted"`
	Notes         string            `json:"notes,omitempty"`
	CreatedAt     string            `json:"createdAt"`
}

type CreateWageLogRequest struct {
	WorkDate      time.Time `json:"workDate" validate:"required"`
	Category      string    `json:"category" validate:"required,max=100"`
	WorkerCount   int       `json:"workerCount" validate:"min=1"`
	ShiftKind     ShiftKind `json:"shiftKind" validate:"required,oneof=DAY NIGHT FULL_DAY HALF_DAY"`
	ShiftFraction *float64  `json:"shiftFraction,omitempty" validate:"omitempty,gte=0,lte=1"`
	HoursWorked   *float64  `json:"hoursWorked,omitempty" validate:"omitempty,gte=0,lte=24"`
	RatePerWorker float64   `json:"ratePerWorker" validate:"gte=0"`
	QualityIssue  bool      `json:"qualityIssue,omitempty"`
	MistakeNoted  bool      `json:"mistakeNoted,omitempty"`
	Notes         string    `json:"notes,omitempty"`
}

// UpdateWageLogRequest patches a wage log; omitted fields keep their value
type UpdateWageLogRequest struct {
	WorkDate      *time.Time `json:"workDate,omitempty"`
	Category      *string    `json:"category,omitempty" validate:"omitempty,max=100"`
	WorkerCount   *int       `json:"workerCount,omitempty" validate:"omitempty,min=1"`
	ShiftKind     *ShiftKind `json:"shiftKind,omitempty" validate:"omitempty,oneof=DAY NIGHT FULL_DAY HALF_DAY"`
	ShiftFraction *float64   `json:"shiftFraction,omitempty" validate:"omitempty,gte=0,lte=1"`
	HoursWorked   *float64   `json:"hoursWorked,omitempty" validate:"omitempty,gte=0,lte=24"`
	RatePerWorker *float64   `json:"ratePerWorker,omitempty" validate:"omitempty,gte=0"`
	QualityIssue  *bool      `json:"qualityIssue,omitempty"`
	MistakeNoted  *bool      `json:"mistakeNoted,omitempty"`
	Notes         *string    `json:"notes,omitempty"`
}

// Ledgers

type LedgerDTO struct {
	TotalAmount     float64       `json:"totalAmount"`
	PaidAmount      float64       `json:"paidAmount"`
	RemainingAmount float64       `json:"remainingAmount"`
	PaymentStatus   PaymentStatus `json:"paymentStatus"`
}

type RecordPaymentRequest struct {
	Amount    float64     `json:"amount"`
	Mode      PaymentMode `json:"mode,omitempty" validate:"omitempty,oneof=cash bank_transfer upi cheque card other"`
	Reference string      `json:"reference,omitempty" validate:"max=200"`
	Notes     string      `json:"notes,omitempty"`
	PaidAt    *time.Time  `json:"paidAt,omitempty"`
}

type LedgerPaymentDTO struct {
	ID           uuid.UUID   `json:"id"`
	LedgerKind   LedgerKind  `json:"ledgerKind"`
	LedgerID     uuid.UUID   `json:"ledgerId"`
	Amount       float64     `json:"amount"`
	Mode         PaymentMode `json:"mode"`
	Reference    string      `json:"reference,omitempty"`
	PaidAt       string      `json:"paidAt"`
	RecordedByID uuid.UUID   `json:"recordedById"`
	Notes        string      `json:"notes,omitempty"`
}

type MaterialDTO struct {
	ID           uuid.UUID `json:"id"`
	ProjectID    uuid.UUID `json:"projectId"`
	Name         string    `json:"name"`
	MaterialType string    `json:"materialType"`
	Quantity     float64   `json:"quantity"`
	Unit         string    `json:"unit,omitempty"`
	UnitPrice    float64   `json:"unitPrice"`
	SupplierName string    `json:"supplierName,omitempty"`
	PurchaseDate string    `json:"purchaseDate"`
	LedgerDTO
	CreatedAt string `json:"createdAt"`
}

type CreateMaterialRequest struct {
	Name         string    `json:"name" validate:"required,max=200"`
	MaterialType string    `json:"materialType" validate:"required,max=100"`
	Quantity     float64   `json:"quantity" validate:"gt=0"`
	Unit         string    `json:"unit,omitempty" validate:"max=30"`
	UnitPrice    float64   `json:"unitPrice" validate:"gte=0"`
	SupplierName string    `json:"supplierName,omitempty" validate:"max=200"`
	PurchaseDate time.Time `json:"purchaseDate" validate:"required"`
}

type UpdateMaterialRequest struct {
	Name         *string    `json:"name,omitempty" validate:"omitempty,max=200"`
	MaterialType *string    `json:"materialType,omitempty" validate:"omitempty,max=100"`
	Quantity     *float64   `json:"quantity,omitempty" validate:"omitempty,gt=0"`
	Unit         *string    `json:"unit,omitempty" validate:"omitempty,max=30"`
	UnitPrice    *float64   `json:"unitPrice,omitempty" validate:"omitempty,gte=0"`
	SupplierName *string    `json:"supplierName,omitempty" validate:"omitempty,max=200"`
	PurchaseDate *time.Time `json:"purchaseDate,omitempty"`
}

// Vendors

type VendorDTO struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	ContactPerson string    `json:"contactPerson,omitempty"`
	Phone         string    `json:"phone,omitempty"`
	Email         string    `json:"email,omitempty"`
	Category      string    `json:"category,omitempty"`
	Address       string    `json:"address,omitempty"`
	TotalOrders   int       `json:"totalOrders"`
	TotalAmount   float64   `json:"totalAmount"`
	PendingAmount float64   `json:"pendingAmount"`
	TotalPaid     float64   `json:"totalPaid"`
	CreatedAt     string    `json:"createdAt"`
}

type CreateVendorRequest struct {
	Name          string `json:"name" validate:"required,max=200"`
	ContactPerson string `json:"contactPerson,omitempty" validate:"max=200"`
	Phone         string `json:"phone,omitempty" validate:"max=50"`
	Email         string `json:"email,omitempty" validate:"omitempty,email,max=255"`
	Category      string `json:"category,omitempty" validate:"max=100"`
	Address       string `json:"address,omitempty" validate:"max=500"`
}

type UpdateVendorRequest = CreateVendorRequest

// VendorReconcileDTO reports the result of recomputing vendor counters
type VendorReconcileDTO struct {
	Vendor  VendorDTO `json:"vendor"`
	Changed bool      `json:"changed"`
}

type VendorOrderDTO struct {
	ID           uuid.UUID  `json:"id"`
	VendorID     uuid.UUID  `json:"vendorId"`
	ProjectID    *uuid.UUID `json:"projectId,omitempty"`
	Description  string     `json:"description"`
	MaterialType string     `json:"materialType,omitempty"`
	Quantity     float64    `json:"quantity"`
	Unit         string     `json:"unit,omitempty"`
	UnitPrice    float64    `json:"unitPrice"`
	OrderDate    string     `json:"orderDate"`
	LedgerDTO
	CreatedAt string `json:"createdAt"`
}

type CreateVendorOrderRequest struct {
	ProjectID    *uuid.UUID `json:"projectId,omitempty"`
	Description  string     `json:"description" validate:"required,max=500"`
	MaterialType string     `json:"materialType,omitempty" validate:"max=100"`
	Quantity     float64    `json:"quantity" validate:"gt=0"`
	Unit         string     `json:"unit,omitempty" validate:"max=30"`
	UnitPrice    float64    `json:"unitPrice" validate:"gte=0"`
	OrderDate    *time.Time `json:"orderDate,omitempty"`
}

type UpdateVendorOrderRequest struct {
	ProjectID    *uuid.UUID `json:"projectId,omitempty"`
	Description  *string    `json:"description,omitempty" validate:"omitempty,max=500"`
	MaterialType *string    `json:"materialType,omitempty" validate:"omitempty,max=100"`
	Quantity     *float64   `json:"quantity,omitempty" validate:"omitempty,gt=0"`
	Unit         *string    `json:"unit,omitempty" validate:"omitempty,max=30"`
	UnitPrice    *float64   `json:"unitPrice,omitempty" validate:"omitempty,gte=0"`
	OrderDate    *time.Time `json:"orderDate,omitempty"`
}

// Raw material orders

type RawMaterialOrderDTO struct {
	ID           uuid.UUID  `json:"id"`
	ProjectID    *uuid.UUID `json:"projectId,omitempty"`
	SupplierName string     `json:"supplierName"`
	MaterialName string     `json:"materialName"`
	Quantity     float64    `json:"quantity"`
	Unit         string     `json:"unit,omitempty"`
	UnitPrice    float64    `json:"unitPrice"`
	OrderDate    string     `json:"orderDate"`
	LedgerDTO
	CreatedAt string `json:"createdAt"`
}

type CreateRawMaterialOrderRequest struct {
	ProjectID    *uuid.UUID `json:"projectId,omitempty"`
	SupplierName string     `json:"supplierName" validate:"required,max=200"`
	MaterialName string     `json:"materialName" validate:"required,max=200"`
	Quantity     float64    `json:"quantity" validate:"gt=0"`
	Unit         string     `json:"unit,omitempty" validate:"max=30"`
	UnitPrice    float64    `json:"unitPrice" validate:"gte=0"`
	OrderDate    *time.Time `json:"orderDate,omitempty"`
}

type UpdateRawMaterialOrderRequest struct {
	ProjectID    *uuid.UUID `json:"projectId,omitempty"`
	SupplierName *string    `json:"supplierName,omitempty" validate:"omitempty,max=200"`
	MaterialName *string    `json:"materialName,omitempty" validate:"omitempty,max=200"`
	Quantity     *float64   `json:"quantity,omitempty" validate:"omitempty,gt=0"`
	Unit         *string    `json:"unit,omitempty" validate:"omitempty,max=30"`
	UnitPrice    *float64   `json:"unitPrice,omitempty" validate:"omitempty,gte=0"`
	OrderDate    *time.Time `json:"orderDate,omitempty"`
}

// Payment milestones

type PartPaymentDTO struct {
	ID            uuid.UUID `json:"id"`
	MilestoneID   uuid.UUID `json:"milestoneId"`
	Amount        float64   `json:"amount"`
	ReceiptRef    string    `json:"receiptRef,omitempty"`
	Notes         string    `json:"notes,omitempty"`
	ConfirmedByID uuid.UUID `json:"confirmedById"`
	ConfirmedAt   string    `json:"confirmedAt"`
}

type PaymentMilestoneDTO struct {
	ID                   uuid.UUID        `json:"id"`
	ProjectID            uuid.UUID        `json:"projectId"`
	StageName            string           `json:"stageName"`
	Description          string           `json:"description,omitempty"`
	Amount               float64          `json:"amount"`
	PaidAmount           float64          `json:"paidAmount"`
	RemainingAmount      float64          `json:"remainingAmount"`
	Status               MilestoneStatus  `json:"status"`
	PercentageOfBudget   *float64         `json:"percentageOfBudget,omitempty"`
	DisplayOrder         int              `json:"displayOrder"`
	DueDate              *string          `json:"dueDate,omitempty"`
	ReminderDays         int              `json:"reminderDays"`
	AdminAcknowledged    bool             `json:"adminAcknowledged"`
	AdminAcknowledgedAt  *string          `json:"adminAcknowledgedAt,omitempty"`
	ClientAcknowledged   bool             `json:"clientAcknowledged"`
	ClientAcknowledgedAt *string          `json:"clientAcknowledgedAt,omitempty"`
	ClientNotes          string           `json:"clientNotes,omitempty"`
	LastRejectedAt       *string          `json:"lastRejectedAt,omitempty"`
	LastRejectionNote    string           `json:"lastRejectionNote,omitempty"`
	PaidDate             *string          `json:"paidDate,omitempty"`
	ReminderDue          bool             `json:"reminderDue"`
	Overdue              bool             `json:"overdue"`
	PartPayments         []PartPaymentDTO `json:"partPayments,omitempty"`
}

type CreateMilestoneRequest struct {
	StageName    string     `json:"stageName" validate:"required,max=100"`
	Description  string     `json:"description,omitempty"`
	Amount       float64    `json:"amount"`
	DueDate      *time.Time `json:"dueDate,omitempty"`
	ReminderDays int        `json:"reminderDays,omitempty" validate:"gte=0,lte=365"`
}

type MilestoneTemplateItem struct {
	StageName    string     `json:"stageName" validate:"required,max=100"`
	Description  string     `json:"description,omitempty"`
	Percentage   float64    `json:"percentage" validate:"gt=0,lte=100"`
	DueDate      *time.Time `json:"dueDate,omitempty"`
	ReminderDays int        `json:"reminderDays,omitempty" validate:"gte=0,lte=365"`
}

type MilestoneTemplateRequest struct {
	Items []MilestoneTemplateItem `json:"items" validate:"required,min=1,dive"`
}

type AcknowledgeMilestoneRequest struct {
	Accepted *bool  `json:"accepted" validate:"required"`
	Notes    string `json:"notes,omitempty" validate:"max=1000"`
}

type CancelMilestoneRequest struct {
	Reason string `json:"reason,omitempty" validate:"max=1000"`
}

// ConfirmPaymentRequest confirms money received; amount defaults to the remaining balance
type ConfirmPaymentRequest struct {
	Amount        *float64 `json:"amount,omitempty"`
	IsPartPayment bool     `json:"isPartPayment,omitempty"`
	Notes         string   `json:"notes,omitempty"`
	ReceiptRef    string   `json:"receiptRef,omitempty" validate:"max=300"`
}

type MilestoneReminderDTO struct {
	Milestone   PaymentMilestoneDTO `json:"milestone"`
	ProjectName string              `json:"projectName"`
	Overdue     bool                `json:"overdue"`
}

type ReminderSendResultDTO struct {
	Sent int `json:"sent"`
}

// Leads

type LeadDTO struct {
	ID              uuid.UUID  `json:"id"`
	Name            string     `json:"name"`
	Phone           string     `json:"phone,omitempty"`
	Email           string     `json:"email,omitempty"`
	Source          string     `json:"source,omitempty"`
	Location        string     `json:"location,omitempty"`
	EstimatedBudget float64    `json:"estimatedBudget"`
	Stage           LeadStage  `json:"stage"`
	AssignedToID    *uuid.UUID `json:"assignedToId,omitempty"`
	Notes           string     `json:"notes,omitempty"`
	FollowUpCount   int        `json:"followUpCount"`
	NextFollowUpAt  *string    `json:"nextFollowUpAt,omitempty"`
	LastContactedAt *string    `json:"lastContactedAt,omitempty"`
	LostReason      string     `json:"lostReason,omitempty"`
	ProjectID       *uuid.UUID `json:"projectId,omitempty"`
	ClosedAt        *string    `json:"closedAt,omitempty"`
	CreatedAt       string     `json:"createdAt"`
	UpdatedAt       string     `json:"updatedAt"`
}

type CreateLeadRequest struct {
	Name            string     `json:"name" validate:"required,max=200"`
	Phone           string     `json:"phone,omitempty" validate:"max=50"`
	Email           string     `json:"email,omitempty" validate:"omitempty,email,max=255"`
	Source          string     `json:"source,omitempty" validate:"max=100"`
	Location        string     `json:"location,omitempty" validate:"max=300"`
	EstimatedBudget float64    `json:"estimatedBudget,omitempty" validate:"gte=0"`
	AssignedToID    *uuid.UUID `json:"assignedToId,omitempty"`
	Notes           string     `json:"notes,omitempty"`
}

// UpdateLeadRequest patches lead details; the stage changes through its own endpoints
type UpdateLeadRequest struct {
	Name            *string    `json:"name,omitempty" validate:"omitempty,max=200"`
	Phone           *string    `json:"phone,omitempty" validate:"omitempty,max=50"`
	Email           *string    `json:"email,omitempty" validate:"omitempty,email,max=255"`
	Source          *string    `json:"source,omitempty" validate:"omitempty,max=100"`
	Location        *string    `json:"location,omitempty" validate:"omitempty,max=300"`
	EstimatedBudget *float64   `json:"estimatedBudget,omitempty" validate:"omitempty,gte=0"`
	AssignedToID    *uuid.UUID `json:"assignedToId,omitempty"`
	Notes           *string    `json:"notes,omitempty"`
}

type UpdateLeadStageRequest struct {
	Stage LeadStage `json:"stage" validate:"required,oneof=NEW CONTACTED QUALIFIED PROPOSAL_SENT NEGOTIATION"`
	Note  string    `json:"note,omitempty" validate:"max=1000"`
}

// WinLeadRequest closes a lead as won, optionally opening a project for it
type WinLeadRequest struct {
	Note    string                `json:"note,omitempty" validate:"max=1000"`
	Project *CreateProjectRequest `json:"project,omitempty"`
}

type LoseLeadRequest struct {
	Reason string `json:"reason" validate:"required,max=1000"`
}

type ReopenLeadRequest struct {
	Stage LeadStage `json:"stage,omitempty" validate:"omitempty,oneof=NEW CONTACTED QUALIFIED PROPOSAL_SENT NEGOTIATION"`
	Note  string    `json:"note,omitempty" validate:"max=1000"`
}

type LeadStageHistoryDTO struct {
	ID          uuid.UUID  `json:"id"`
	FromStage   *LeadStage `json:"fromStage,omitempty"`
	ToStage     LeadStage  `json:"toStage"`
	Note        string     `json:"note,omitempty"`
	ChangedByID uuid.UUID  `json:"changedById"`
	ChangedAt   string     `json:"changedAt"`
}

type FollowUpDTO struct {
	ID          uuid.UUID `json:"id"`
	LeadID      uuid.UUID `json:"leadId"`
	ScheduledAt string    `json:"scheduledAt"`
	Method      string    `json:"method,omitempty"`
	Notes       string    `json:"notes,omitempty"`
	CompletedAt *string   `json:"completedAt,omitempty"`
	Outcome     string    `json:"outcome,omitempty"`
}

type CreateFollowUpRequest struct {
	ScheduledAt time.Time `json:"scheduledAt" validate:"required"`
	Method      string    `json:"method,omitempty" validate:"omitempty,oneof=call visit email whatsapp meeting other"`
	Notes       string    `json:"notes,omitempty"`
}

type CompleteFollowUpRequest struct {
	Outcome     string     `json:"outcome,omitempty" validate:"max=1000"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

type PipelineStageDTO struct {
	Stage LeadStage `json:"stage"`
	Count int       `json:"count"`
	Value float64   `json:"value"`
}

type PipelineStatsDTO struct {
	Stages         []PipelineStageDTO `json:"stages"`
	Total          int                `json:"total"`
	Open           int                `json:"open"`
	OpenValue      float64            `json:"openValue"`
	Won            int                `json:"won"`
	Lost           int                `json:"lost"`
	ConversionRate float64            `json:"conversionRate"`
}

// Analytics

type OverviewDTO struct {
	Income         float64 `json:"income"`
	PendingIncome  float64 `json:"pendingIncome"`
	Expense        float64 `json:"expense"`
	PendingExpense float64 `json:"pendingExpense"`
	Profit         float64 `json:"profit"`
	Margin         float64 `json:"margin"`
}

type MonthTrendDTO struct {
	Month   int     `json:"month"`
	Label   string  `json:"label"`
	Income  float64 `json:"income"`
	Expense float64 `json:"expense"`
	Profit  float64 `json:"profit"`
}

type ProjectStatDTO struct {
	ProjectID   uuid.UUID     `json:"projectId"`
	ProjectName string        `json:"projectName"`
	Status      ProjectStatus `json:"status"`
	Budget      float64       `json:"budget"`
	Income      float64       `json:"income"`
	Expense     float64       `json:"expense"`
	Profit      float64       `json:"profit"`
	Progress    float64       `json:"progress"`
}

type CategoryAmountDTO struct {
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
}

type ExpenseBreakdownDTO struct {
	Materials []CategoryAmountDTO `json:"materials"`
	Labour    []CategoryAmountDTO `json:"labour"`
}

type WorkforceWeekDTO struct {
	WeekStart  string  `json:"weekStart"`
	WeekEnd    string  `json:"weekEnd"`
	Wages      float64 `json:"wages"`
	WorkerDays float64 `json:"workerDays"`
	Entries    int     `json:"entries"`
}

// Notifications

type NotificationDTO struct {
	ID        uuid.UUID  `json:"id"`
	ProjectID *uuid.UUID `json:"projectId,omitempty"`
	Category  string     `json:"category"`
	Title     string     `json:"title"`
	Message   string     `json:"message"`
	Read      bool       `json:"read"`
	ReadAt    *string    `json:"readAt,omitempty"`
	CreatedAt string     `json:"createdAt"`
}

// UnreadCountDTO represents the count of unread notifications
type UnreadCountDTO struct {
	Count int64 `json:"count"`
}

// CatalogDTO lists the configured reference data
type CatalogDTO struct {
	WorkerCategories []string `json:"workerCategories"`
	ProjectStages    []string `json:"projectStages"`
}
