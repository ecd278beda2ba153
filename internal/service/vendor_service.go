package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/vitneshimmanuvel/dsqaubackend/internal/domain"
	"github.com/vitneshimmanuvel/dsqaubackend/internal/ledger"
	"github.com/vitneshimmanuvel/dsqaubackend/internal/lock"
	"github.com/vitneshimmanuvel/dsqaubackend/internal/mapper"
	"github.com/vitneshimmanuvel/dsqaubackend/internal/reporting"
	"github.com/vitneshimmanuvel/dsqaubackend/internal/repository"
)

// VendorService handles vendors, their orders and the cached order aggregate on each vendor.
// Every change to an order adjusts the vendor counters in the same transaction, under the vendor lock.
type VendorService struct {
	db          *gorm.DB
	vendorRepo  *repository.VendorRepository
	orderRepo   *repository.VendorOrderRepository
	paymentRepo *repository.LedgerPaymentRepository
	projects    *ProjectService
	locker      lock.Locker
	logger      *zap.Logger
}

// NewVendorService creates a new vendor service instance
func NewVendorService(
	db *gorm.DB,
	vendorRepo *repository.VendorRepository,
	orderRepo *repository.VendorOrderRepository,
	paymentRepo *repository.LedgerPaymentRepository,
	projects *ProjectService,
	locker lock.Locker,
	logger *zap.Logger,
) *VendorService {
	return &VendorService{
		db:          db,
		vendorRepo:  vendorRepo,
		orderRepo:   orderRepo,
		paymentRepo: paymentRepo,
		projects:    projects,
		locker:      locker,
		logger:      logger,
	}
}

// Create registers a vendor with empty counters
func (s *VendorService) Create(ctx context.Context, req *domain.CreateVendorRequest) (*domain.VendorDTO, error) {
	if _, err := requireStaff(ctx); err != nil {
		return nil, err
	}
	vendor := &domain.Vendor{}
	applyVendorProfile(vendor, req)
	if err := s.vendorRepo.Create(ctx, vendor); err != nil {
		return nil, fmt.Errorf("failed to create vendor: %w", err)
	}
	dto := mapper.ToVendorDTO(vendor)
	return &dto, nil
}

func applyVendorProfile(v *domain.Vendor, req *domain.CreateVendorRequest) {
	v.Name = strings.TrimSpace(req.Name)
	v.ContactPerson = req.ContactPerson
	v.Phone = req.Phone
	v.Email = req.Email
	v.Category = req.Category
	v.Address = req.Address
}

// GetByID returns a vendor
func (s *VendorService) GetByID(ctx context.Context, id uuid.UUID) (*domain.VendorDTO, error) {
	if _, err := requireStaff(ctx); err != nil {
		return nil, err
	}
	vendor, err := s.vendorRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := mapper.ToVendorDTO(vendor)
	return &dto, nil
}

// Update changes a vendor's contact details; the counters are never taken from the request
func (s *VendorService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateVendorRequest) (*domain.VendorDTO, error) {
	if _, err := requireStaff(ctx); err != nil {
		return nil, err
	}
	vendor, err := s.vendorRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	applyVendorProfile(vendor, req)
	if err := s.vendorRepo.UpdateProfile(ctx, vendor); err != nil {
		return nil, fmt.Errorf("failed to update vendor: %w", err)
	}
	dto := mapper.ToVendorDTO(vendor)
	return &dto, nil
}

// List returns a page of vendors
func (s *VendorService) List(ctx context.Context, page, pageSize int, filters *repository.VendorFilters, sort repository.SortConfig) (*domain.PaginatedResponse, error) {
	if _, err := requireStaff(ctx); err != nil {
		return nil, err
	}
	page, pageSize = repository.NormalizePage(page, pageSize)
	vendors, total, err := s.vendorRepo.List(ctx, page, pageSize, filters, sort)
	if err != nil {
		return nil, fmt.Errorf("failed to list vendors: %w", err)
	}
	dtos := make([]domain.VendorDTO, len(vendors))
	for i := range vendors {
		dtos[i] = mapper.ToVendorDTO(&vendors[i])
	}
	return paginated(dtos, total, page, pageSize), nil
}

// CreateOrder places an order with a vendor and adds it to the vendor's counters
func (s *VendorService) CreateOrder(ctx context.Context, vendorID uuid.UUID, req *domain.CreateVendorOrderRequest) (*domain.VendorOrderDTO, error) {
	if _, err := requireStaff(ctx); err != nil {
		return nil, err
	}
	if req.ProjectID != nil {
		if _, err := s.projects.project(ctx, *req.ProjectID); err != nil {
			return nil, err
		}
	}

	quantity := ledger.Quantity(mapper.Decimal(req.Quantity))
	unitPrice := ledger.Money(mapper.Decimal(req.UnitPrice))
	l, err := ledger.FromQuantity(quantity, unitPrice)
	if err != nil {
		return nil, err
	}
	orderDate := time.Now().UTC()
	if req.OrderDate != nil {
		orderDate = *req.OrderDate
	}
	order := &domain.VendorOrder{
		VendorID:     vendorID,
		ProjectID:    req.ProjectID,
		Description:  strings.TrimSpace(req.Description),
		MaterialType: req.MaterialType,
		Quantity:     quantity,
		Unit:         req.Unit,
		UnitPrice:    unitPrice,
		OrderDate:    orderDate,
		Ledger:       l,
	}

	unlock, err := s.locker.Lock(ctx, lock.Key(lockVendor, vendorID))
	if err != nil {
		return nil, err
	}
	defer unlock()

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		vendor, err := s.vendorRepo.GetForUpdate(ctx, tx, vendorID)
		if err != nil {
			return err
		}
		if err := s.orderRepo.Create(ctx, tx, order); err != nil {
			return err
		}
		vendor.TotalOrders++
		vendor.TotalAmount = vendor.TotalAmount.Add(order.TotalAmount)
		vendor.PendingAmount = vendor.PendingAmount.Add(order.RemainingAmount)
		return s.vendorRepo.UpdateCounters(ctx, tx, vendor)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("vendor order created",
		zap.String("vendor_id", vendorID.String()),
		zap.String("order_id", order.ID.String()),
		zap.String("total", order.TotalAmount.StringFixed(2)))

	dto := mapper.ToVendorOrderDTO(order)
	return &dto, nil
}

// UpdateOrder patches an order, recalculates its total and moves the vendor counters by the difference
func (s *VendorService) UpdateOrder(ctx context.Context, orderID uuid.UUID, req *domain.UpdateVendorOrderRequest) (*domain.VendorOrderDTO, error) {
	if _, err := requireStaff(ctx); err != nil {
		return nil, err
	}
	existing, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if req.ProjectID != nil {
		if _, err := s.projects.project(ctx, *req.ProjectID); err != nil {
			return nil, err
		}
	}

	unlock, err := lock.LockAll(ctx, s.locker,
		lock.Key(lockVendor, existing.VendorID),
		lock.Key(string(domain.LedgerVendorOrder), orderID))
	if err != nil {
		return nil, err
	}
	defer unlock()

	var updated *domain.VendorOrder
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		vendor, err := s.vendorRepo.GetForUpdate(ctx, tx, existing.VendorID)
		if err != nil {
			return err
		}
		o, err := s.orderRepo.GetForUpdate(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if err := ledger.Validate(o.Ledger); err != nil {
			return err
		}
		readVersion := o.Version
		before := o.Ledger

		if req.ProjectID != nil {
			o.ProjectID = req.ProjectID
		}
		if req.Description != nil {
			o.Description = strings.TrimSpace(*req.Description)
		}
		if req.MaterialType != nil {
			o.MaterialType = *req.MaterialType
		}
		if req.Quantity != nil {
			o.Quantity = ledger.Quantity(mapper.Decimal(*req.Quantity))
		}
		if req.Unit != nil {
			o.Unit = *req.Unit
		}
		if req.UnitPrice != nil {
			o.UnitPrice = ledger.Money(mapper.Decimal(*req.UnitPrice))
		}
		if req.OrderDate != nil {
			o.OrderDate = *req.OrderDate
		}

		l, err := ledger.RecalculateTotal(o.Ledger, o.Quantity, o.UnitPrice)
		if err != nil {
			return err
		}
		o.Ledger = l
		if err := s.orderRepo.Update(ctx, tx, o, readVersion); err != nil {
			return err
		}

		vendor.TotalAmount = vendor.TotalAmount.Add(l.TotalAmount.Sub(before.TotalAmount))
		vendor.PendingAmount = vendor.PendingAmount.Add(l.RemainingAmount.Sub(before.RemainingAmount))
		if err := s.vendorRepo.UpdateCounters(ctx, tx, vendor); err != nil {
			return err
		}
		updated = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	dto := mapper.ToVendorOrderDTO(updated)
	return &dto, nil
}

// RecordOrderPayment posts a payment to an order and moves it from pending to paid on the vendor
func (s *VendorService) RecordOrderPayment(ctx context.Context, orderID uuid.UUID, req *domain.RecordPaymentRequest) (*domain.VendorOrderDTO, error) {
	if _, err := requireStaff(ctx); err != nil {
		return nil, err
	}
	existing, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	unlock, err := lock.LockAll(ctx, s.locker,
		lock.Key(lockVendor, existing.VendorID),
		lock.Key(string(domain.LedgerVendorOrder), orderID))
	if err != nil {
		return nil, err
	}
	defer unlock()

	var updated *domain.VendorOrder
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		vendor, err := s.vendorRepo.GetForUpdate(ctx, tx, existing.VendorID)
		if err != nil {
			return err
		}
		o, err := s.orderRepo.GetForUpdate(ctx, tx, orderID)
		if err != nil {
			return err
		}
		readVersion := o.Version

		res, err := ledger.Post(o.Ledger, domain.LedgerVendorOrder, o.ID, postingFrom(ctx, req))
		if err != nil {
			return err
		}
		o.Ledger = res.Ledger
		if err := s.orderRepo.Update(ctx, tx, o, readVersion); err != nil {
			return err
		}

		payment := res.Payment
		payment.VendorID = &vendor.ID
		payment.ProjectID = o.ProjectID
		if err := s.paymentRepo.Create(ctx, tx, &payment); err != nil {
			return err
		}

		vendor.TotalPaid = vendor.TotalPaid.Add(res.Payment.Amount)
		vendor.PendingAmount = vendor.PendingAmount.Sub(res.Settled)
		if err := s.vendorRepo.UpdateCounters(ctx, tx, vendor); err != nil {
			return err
		}
		updated = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("vendor order payment recorded",
		zap.String("vendor_id", existing.VendorID.String()),
		zap.String("order_id", orderID.String()),
		zap.String("paid", updated.PaidAmount.StringFixed(2)),
		zap.String("status", string(updated.PaymentStatus)))

	dto := mapper.ToVendorOrderDTO(updated)
	return &dto, nil
}

// GetOrder returns a vendor order
func (s *VendorService) GetOrder(ctx context.Context, orderID uuid.UUID) (*domain.VendorOrderDTO, error) {
	if _, err := requireStaff(ctx); err != nil {
		return nil, err
	}
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	dto := mapper.ToVendorOrderDTO(order)
	return &dto, nil
}

// ListOrders returns a page of a vendor's orders
func (s *VendorService) ListOrders(ctx context.Context, vendorID uuid.UUID, page, pageSize int, filters *repository.VendorOrderFilters) (*domain.PaginatedResponse, error) {
	if _, err := requireStaff(ctx); err != nil {
		return nil, err
	}
	if _, err := s.vendorRepo.GetByID(ctx, vendorID); err != nil {
		return nil, err
	}
	if filters == nil {
		filters = &repository.VendorOrderFilters{}
	}
	filters.VendorID = &vendorID

	page, pageSize = repository.NormalizePage(page, pageSize)
	orders, total, err := s.orderRepo.List(ctx, page, pageSize, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list vendor orders: %w", err)
	}
	dtos := make([]domain.VendorOrderDTO, len(orders))
	for i := range orders {
		dtos[i] = mapper.ToVendorOrderDTO(&orders[i])
	}
	return paginated(dtos, total, page, pageSize), nil
}

// ListOrderPayments returns the payment history of an order
func (s *VendorService) ListOrderPayments(ctx context.Context, orderID uuid.UUID) ([]domain.LedgerPaymentDTO, error) {
	if _, err := requireStaff(ctx); err != nil {
		return nil, err
	}
	if _, err := s.orderRepo.GetByID(ctx, orderID); err != nil {
		return nil, err
	}
	payments, err := s.paymentRepo.ListByLedger(ctx, domain.LedgerVendorOrder, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	return mapper.ToLedgerPaymentDTOs(payments), nil
}

// Reconcile recomputes a vendor's counters from its orders and stores them when they drifted
func (s *VendorService) Reconcile(ctx context.Context, vendorID uuid.UUID) (*domain.VendorReconcileDTO, error) {
	if _, err := requireStaff(ctx); err != nil {
		return nil, err
	}

	unlock, err := s.locker.Lock(ctx, lock.Key(lockVendor, vendorID))
	if err != nil {
		return nil, err
	}
	defer unlock()

	var result domain.VendorReconcileDTO
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		vendor, err := s.vendorRepo.GetForUpdate(ctx, tx, vendorID)
		if err != nil {
			return err
		}
		orders, err := s.orderRepo.ListAll(ctx, tx, &repository.VendorOrderFilters{VendorID: &vendorID})
		if err != nil {
			return err
		}

		totals := reporting.ComputeVendorTotals(orders)
		if !totals.Matches(*vendor) {
			s.logger.Warn("vendor counters drifted from orders",
				zap.String("vendor_id", vendorID.String()),
				zap.String("stored_pending", vendor.PendingAmount.StringFixed(2)),
				zap.String("computed_pending", totals.PendingAmount.StringFixed(2)))

			vendor.TotalOrders = totals.TotalOrders
			vendor.TotalAmount = totals.TotalAmount
			vendor.PendingAmount = totals.PendingAmount
			vendor.TotalPaid = totals.TotalPaid
			if err := s.vendorRepo.UpdateCounters(ctx, tx, vendor); err != nil {
				return err
			}
			result.Changed = true
		}
		result.Vendor = mapper.ToVendorDTO(vendor)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}
