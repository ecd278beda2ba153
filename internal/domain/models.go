package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// BaseModel carries the identity and timestamps shared by every table
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// BeforeCreate assigns an ID when the caller did not set one
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// UserRole is the single role an account holds
type UserRole string

const (
	RoleSuperAdmin UserRole = "super_admin"
	RoleAdmin      UserRole = "admin"
	RoleCustomer   UserRole = "customer"
)

// IsValid checks if the role is a known value
func (r UserRole) IsValid() bool {
	switch r {
	case RoleSuperAdmin, RoleAdmin, RoleCustomer:
		return true
	}
	return false
}

// User is an account that can sign in
type User struct {
	BaseModel
	Email       string   `gorm:"type:varchar(255);not null;uniqueIndex"`
	DisplayName string   `gorm:"type:varchar(200);not null"`
	Phone       string   `gorm:"type:varchar(50)"`
	Role        UserRole `gorm:"type:varchar(20);not null;index"`
	IsActive    bool     `gorm:"not null;default:true"`
	LastLoginAt *time.Time
}

// ProjectStatus represents the status of a project
type ProjectStatus string

const (
	ProjectStatusPlanning  ProjectStatus = "planning"
	ProjectStatusActive    ProjectStatus = "active"
	ProjectStatusOnHold    ProjectStatus = "on_hold"
	ProjectStatusCompleted ProjectStatus = "completed"
	ProjectStatusCancelled ProjectStatus = "cancelled"
)

// IsValid checks if the status is a known value
func (s ProjectStatus) IsValid() bool {
	switch s {
	case ProjectStatusPlanning, ProjectStatusActive, ProjectStatusOnHold, ProjectStatusCompleted, ProjectStatusCancelled:
		return true
	}
	return false
}

// Project is a construction job for one client, administered by one admin
type Project struct {
	BaseModel
	Name         string          `gorm:"type:varchar(200);not null;index"`
	Location     string          `gorm:"type:varchar(300)"`
	Description  string          `gorm:"type:text"`
	ClientID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	AdminID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	Status       ProjectStatus   `gorm:"type:varchar(20);not null;default:'planning';index"`
	Budget       decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0"`
	Spent        decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0"`
	StartDate    time.Time       `gorm:"type:date;not null"`
	EndDate      *time.Time      `gorm:"type:date"`
	CurrentStage string          `gorm:"type:varchar(100)"`
	LeadID       *uuid.UUID      `gorm:"type:uuid;index"`
	Stages       []ProjectStage  `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE"`
}

// StageStatus is the progress of a single project stage
type StageStatus string

const (
	StageStatusPending    StageStatus = "pending"
	StageStatusInProgress StageStatus = "in_progress"
	StageStatusCompleted  StageStatus = "completed"
)

// ProjectStage is one step in a project's staged progress
type ProjectStage struct {
	BaseModel
	ProjectID    uuid.UUID   `gorm:"type:uuid;not null;index"`
	Name         string      `gorm:"type:varchar(100);not null"`
	DisplayOrder int         `gorm:"not null;default:0"`
	Status       StageStatus `gorm:"type:varchar(20);not null;default:'pending'"`
	StartedAt    *time.Time
	CompletedAt  *time.Time
}

// ShiftKind is the kind of shift a crew worked
type ShiftKind string

const (
	ShiftDay     ShiftKind = "DAY"
	ShiftNight   ShiftKind = "NIGHT"
	ShiftFullDay ShiftKind = "FULL_DAY"
	ShiftHalfDay ShiftKind = "HALF_DAY"
)

// IsValid checks if the shift kind is a known value
func (s ShiftKind) IsValid() bool {
	switch s {
	case ShiftDay, ShiftNight, ShiftFullDay, ShiftHalfDay:
		return true
	}
	return false
}

// WagePaymentStatus tracks whether a wage log has been paid out
type WagePaymentStatus string

const (
	WagePending WagePaymentStatus = "PENDING"
	WagePaid    WagePaymentStatus = "PAID"
)

// WageLog records one crew's work on one day
type WageLog struct {
	BaseModel
	ProjectID     uuid.UUID         `gorm:"type:uuid;not null;index"`
	WorkDate      time.Time         `gorm:"type:date;not null;index"`
	Category      string            `gorm:"type:varchar(100);not null;index"`
	WorkerCount   int               `gorm:"not null"`
	ShiftKind     ShiftKind         `gorm:"type:varchar(20);not null;default:'DAY'"`
	ShiftFraction decimal.Decimal   `gorm:"type:decimal(5,4);not null"`
	HoursWorked   decimal.Decimal   `gorm:"type:decimal(6,2);not null"`
	RatePerWorker decimal.Decimal   `gorm:"type:decimal(15,2);not null"`
	TotalWage     decimal.Decimal   `gorm:"type:decimal(15,2);not null"`
	PaymentStatus WagePaymentStatus `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	PaidAt        *time.Time
	QualityIssue  bool   `gorm:"not null;default:false"`
	MistakeNoted  bool   `gorm:"not null;default:false"`
	Notes         string `gorm:"type:text"`
	CreatedByID   uuid.UUID `gorm:"type:uuid"`
}

// Vendor supplies goods against orders; its counters aggregate those orders
type Vendor struct {
	BaseModel
	Name          string          `gorm:"type:varchar(200);not null;index"`
	ContactPerson string          `gorm:"type:varchar(200)"`
	Phone         string          `gorm:"type:varchar(50)"`
	Email         string          `gorm:"type:varchar(255)"`
	Category      string          `gorm:"type:varchar(100);index"`
	Address       string          `gorm:"type:varchar(500)"`
	TotalOrders   int             `gorm:"not null;default:0"`
	TotalAmount   decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0"`
	PendingAmount decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0"`
	TotalPaid     decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0"`
}

// Material is a purchase booked directly against a project
type Material struct {
	BaseModel
	ProjectID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	Name         string          `gorm:"type:varchar(200);not null"`
	MaterialType string          `gorm:"type:varchar(100);not null;index"`
	Quantity     decimal.Decimal `gorm:"type:decimal(15,3);not null"`
	Unit         string          `gorm:"type:varchar(30)"`
	UnitPrice    decimal.Decimal `gorm:"type:decimal(15,2);not null"`
	SupplierName string          `gorm:"type:varchar(200)"`
	PurchaseDate time.Time       `gorm:"type:date;not null"`
	Ledger       `gorm:"embedded"`
}

// VendorOrder is an order placed with a vendor
type VendorOrder struct {
	BaseModel
	VendorID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProjectID    *uuid.UUID      `gorm:"type:uuid;index"`
	Description  string          `gorm:"type:varchar(500);not null"`
	MaterialType string          `gorm:"type:varchar(100);index"`
	Quantity     decimal.Decimal `gorm:"type:decimal(15,3);not null"`
	Unit         string          `gorm:"type:varchar(30)"`
	UnitPrice    decimal.Decimal `gorm:"type:decimal(15,2);not null"`
	OrderDate    time.Time       `gorm:"type:date;not null"`
	Ledger       `gorm:"embedded"`
}

// RawMaterialOrder is a bulk raw material purchase from an ad-hoc supplier
type RawMaterialOrder struct {
	BaseModel
	ProjectID    *uuid.UUID      `gorm:"type:uuid;index"`
	SupplierName string          `gorm:"type:varchar(200);not null"`
	MaterialName string          `gorm:"type:varchar(200);not null;index"`
	Quantity     decimal.Decimal `gorm:"type:decimal(15,3);not null"`
	Unit         string          `gorm:"type:varchar(30)"`
	UnitPrice    decimal.Decimal `gorm:"type:decimal(15,2);not null"`
	OrderDate    time.Time       `gorm:"type:date;not null"`
	Ledger       `gorm:"embedded"`
}

// LedgerKind names which table a ledger payment belongs to
type LedgerKind string

const (
	LedgerMaterial         LedgerKind = "material"
	LedgerVendorOrder      LedgerKind = "vendor_order"
	LedgerRawMaterialOrder LedgerKind = "raw_material_order"
)

// PaymentMode is how money changed hands
type PaymentMode string

const (
	PaymentModeCash         PaymentMode = "cash"
	PaymentModeBankTransfer PaymentMode = "bank_transfer"
	PaymentModeUPI          PaymentMode = "upi"
	PaymentModeCheque       PaymentMode = "cheque"
	PaymentModeCard         PaymentMode = "card"
	PaymentModeOther        PaymentMode = "other"
)

// LedgerPayment is an immutable record of one payment posted to a ledger
type LedgerPayment struct {
	BaseModel
	LedgerKind   LedgerKind      `gorm:"type:varchar(30);not null;index:idx_ledger_payment_entity"`
	LedgerID     uuid.UUID       `gorm:"type:uuid;not null;index:idx_ledger_payment_entity"`
	ProjectID    *uuid.UUID      `gorm:"type:uuid;index"`
	VendorID     *uuid.UUID      `gorm:"type:uuid;index"`
	Amount       decimal.Decimal `gorm:"type:decimal(15,2);not null"`
	Mode         PaymentMode     `gorm:"type:varchar(20);not null;default:'cash'"`
	Reference    string          `gorm:"type:varchar(200)"`
	PaidAt       time.Time       `gorm:"not null;index"`
	RecordedByID uuid.UUID       `gorm:"type:uuid"`
	Notes        string          `gorm:"type:text"`
}

// MilestoneStatus is the position of a payment milestone in the acknowledgment workflow
type MilestoneStatus string

const (
	MilestonePending        MilestoneStatus = "PENDING"
	MilestoneAwaitingClient MilestoneStatus = "AWAITING_CLIENT"
	MilestoneAwaitingAdmin  MilestoneStatus = "AWAITING_ADMIN"
	MilestonePartial        MilestoneStatus = "PARTIAL"
	MilestonePaid           MilestoneStatus = "PAID"
)

// PaymentMilestone is an amount the client owes at a project stage
type PaymentMilestone struct {
	BaseModel
	ProjectID              uuid.UUID        `gorm:"type:uuid;not null;index"`
	StageName              string           `gorm:"type:varchar(100);not null"`
	Description            string           `gorm:"type:text"`
	Amount                 decimal.Decimal  `gorm:"type:decimal(15,2);not null"`
	PaidAmount             decimal.Decimal  `gorm:"type:decimal(15,2);not null;default:0"`
	RemainingAmount        decimal.Decimal  `gorm:"type:decimal(15,2);not null;default:0"`
	Status                 MilestoneStatus  `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	PercentageOfBudget     *decimal.Decimal `gorm:"type:decimal(5,2)"`
	DisplayOrder           int              `gorm:"not null;default:0"`
	DueDate                *time.Time       `gorm:"type:date;index"`
	ReminderDays           int              `gorm:"not null;default:0"`
	AdminAcknowledged      bool             `gorm:"not null;default:false"`
	AdminAcknowledgedByID  *uuid.UUID       `gorm:"type:uuid"`
	AdminAcknowledgedAt    *time.Time
	ClientAcknowledged     bool       `gorm:"not null;default:false"`
	ClientAcknowledgedByID *uuid.UUID `gorm:"type:uuid"`
	ClientAcknowledgedAt   *time.Time
	ClientNotes            string `gorm:"type:text"`
	LastRejectedAt         *time.Time
	LastRejectionNote      string `gorm:"type:text"`
	PaidDate               *time.Time
	Version                int           `gorm:"not null;default:1"`
	PartPayments           []PartPayment `gorm:"foreignKey:MilestoneID;constraint:OnDelete:CASCADE"`
}

// PartPayment records one confirmed installment against a milestone
type PartPayment struct {
	BaseModel
	MilestoneID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProjectID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount        decimal.Decimal `gorm:"type:decimal(15,2);not null"`
	ReceiptRef    string          `gorm:"type:varchar(300)"`
	Notes         string          `gorm:"type:text"`
	ConfirmedByID uuid.UUID       `gorm:"type:uuid"`
	ConfirmedAt   time.Time       `gorm:"not null;index"`
}

// LeadStage is a step in the sales pipeline, in pipeline order
type LeadStage string

const (
	LeadStageNew          LeadStage = "NEW"
	LeadStageContacted    LeadStage = "CONTACTED"
	LeadStageQualified    LeadStage = "QUALIFIED"
	LeadStageProposalSent LeadStage = "PROPOSAL_SENT"
	LeadStageNegotiation  LeadStage = "NEGOTIATION"
	LeadStageWon          LeadStage = "WON"
	LeadStageLost         LeadStage = "LOST"
)

// LeadStages lists the pipeline in order
var LeadStages = []LeadStage{
	LeadStageNew,
	LeadStageContacted,
	LeadStageQualified,
	LeadStageProposalSent,
	LeadStageNegotiation,
	LeadStageWon,
	LeadStageLost,
}

// IsValid checks if the stage is a known value
func (s LeadStage) IsValid() bool {
	for _, v := range LeadStages {
		if s == v {
			return true
		}
	}
	return false
}

// IsClosed reports whether the stage ends the pipeline
func (s LeadStage) IsClosed() bool {
	return s == LeadStageWon || s == LeadStageLost
}

// Lead is a prospective client moving through the pipeline
type Lead struct {
	BaseModel
	Name            string          `gorm:"type:varchar(200);not null;index"`
	Phone           string          `gorm:"type:varchar(50)"`
	Email           string          `gorm:"type:varchar(255)"`
	Source          string          `gorm:"type:varchar(100)"`
	Location        string          `gorm:"type:varchar(300)"`
	EstimatedBudget decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0"`
	Stage           LeadStage       `gorm:"type:varchar(20);not null;default:'NEW';index"`
	AssignedToID    *uuid.UUID      `gorm:"type:uuid;index"`
	Notes           string          `gorm:"type:text"`
	FollowUpCount   int             `gorm:"not null;default:0"`
	NextFollowUpAt  *time.Time      `gorm:"index"`
	LastContactedAt *time.Time
	LostReason      string     `gorm:"type:text"`
	ProjectID       *uuid.UUID `gorm:"type:uuid"`
	ClosedAt        *time.Time
}

// LeadStageHistory is an append-only log of lead stage changes
type LeadStageHistory struct {
	BaseModel
	LeadID      uuid.UUID  `gorm:"type:uuid;not null;index"`
	FromStage   *LeadStage `gorm:"type:varchar(20)"`
	ToStage     LeadStage  `gorm:"type:varchar(20);not null"`
	Note        string     `gorm:"type:text"`
	ChangedByID uuid.UUID  `gorm:"type:uuid"`
	ChangedAt   time.Time  `gorm:"not null"`
}

// TableName matches the migration
func (LeadStageHistory) TableName() string {
	return "lead_stage_history"
}

// FollowUp is a scheduled contact with a lead
type FollowUp struct {
	BaseModel
	LeadID      uuid.UUID `gorm:"type:uuid;not null;index"`
	ScheduledAt time.Time `gorm:"not null;index"`
	Method      string    `gorm:"type:varchar(50)"`
	Notes       string    `gorm:"type:text"`
	CompletedAt *time.Time
	Outcome     string    `gorm:"type:text"`
	CreatedByID uuid.UUID `gorm:"type:uuid"`
}

// Notification categories
const (
	NotificationMilestone = "milestone"
	NotificationReminder  = "reminder"
	NotificationLead      = "lead"
)

// Notification is an in-app message for one user
type Notification struct {
	BaseModel
	UserID    uuid.UUID  `gorm:"type:uuid;not null;index"`
	ProjectID *uuid.UUID `gorm:"type:uuid"`
	Category  string     `gorm:"type:varchar(50);not null"`
	Title     string     `gorm:"type:varchar(200);not null"`
	Message   string     `gorm:"type:varchar(1000);not null"`
	Read      bool       `gorm:"column:read;not null;default:false;index"`
	ReadAt    *time.Time
}

// AllModels lists every table for auto-migration
func AllModels() []interface{} {
	return []interface{}{
		&User{},
		&Project{},
		&ProjectStage{},
		&WageLog{},
		&Vendor{},
		&Material{},
		&VendorOrder{},
		&RawMaterialOrder{},
		&LedgerPayment{},
		&PaymentMilestone{},
		&PartPayment{},
		&Lead{},
		&LeadStageHistory{},
		&FollowUp{},
		&Notification{},
	}
}
