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
	"github.com/vitneshimmanuvel/dsqaubackend/internal/repository"
)

// RawMaterialService handles bulk raw material purchases from ad-hoc suppliers
type RawMaterialService struct {
	db          *gorm.DB
	orderRepo   *repository.RawMaterialOrderRepository
	paymentRepo *repository.LedgerPaymentRepository
	projects    *ProjectService
	locker      lock.Locker
	logger      *zap.Logger
}

// NewRawMaterialService creates a new raw material service instance
func NewRawMaterialService(
	db *gorm.DB,
	orderRepo *repository.RawMaterialOrderRepository,
	paymentRepo *repository.LedgerPaymentRepository,
	projects *ProjectService,
	locker lock.Locker,
	logger *zap.Logger,
) *RawMaterialService {
	return &RawMaterialService{
		db:          db,
		orderRepo:   orderRepo,
		paymentRepo: paymentRepo,
		projects:    projects,
		locker:      locker,
		logger:      logger,
	}
}

// Create books a raw material order with nothing paid
func (s *RawMaterialService) Create(ctx context.Context, req *domain.CreateRawMaterialOrderRequest) (*domain.RawMaterialOrderDTO, error) {
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

	order := &domain.RawMaterialOrder{
		ProjectID:    req.ProjectID,
		SupplierName: strings.TrimSpace(req.SupplierName),
		MaterialName: strings.TrimSpace(req.MaterialName),
		Quantity:     quantity,
		Unit:         req.Unit,
		UnitPrice:    unitPrice,
		OrderDate:    orderDate,
		Ledger:       l,
	}
	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to create raw material order: %w", err)
	}

	s.logger.Info("raw material order created",
		zap.String("order_id", order.ID.String()),
		zap.String("supplier", order.SupplierName),
		zap.String("total", l.TotalAmount.StringFixed(2)))

	dto := mapper.ToRawMaterialOrderDTO(order)
	return &dto, nil
}

// GetByID returns a raw material order
func (s *RawMaterialService) GetByID(ctx context.Context, id uuid.UUID) (*domain.RawMaterialOrderDTO, error) {
	if _, err := requireStaff(ctx); err != nil {
		return nil, err
	}
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := mapper.ToRawMaterialOrderDTO(order)
	return &dto, nil
}

// Update patches an order and recalculates its total, keeping what has been paid
func (s *RawMaterialService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateRawMaterialOrderRequest) (*domain.RawMaterialOrderDTO, error) {
	if _, err := requireStaff(ctx); err != nil {
		return nil, err
	}
	if req.ProjectID != nil {
		if _, err := s.projects.project(ctx, *req.ProjectID); err != nil {
			return nil, err
		}
	}

	unlock, err := s.locker.Lock(ctx, lock.Key(string(domain.LedgerRawMaterialOrder), id))
	if err != nil {
		return nil, err
	}
	defer unlock()

	var updated *domain.RawMaterialOrder
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		o, err := s.orderRepo.GetForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := ledger.Validate(o.Ledger); err != nil {
			return err
		}
		readVersion := o.Version

		if req.ProjectID != nil {
			o.ProjectID = req.ProjectID
		}
		if req.SupplierName != nil {
			o.SupplierName = strings.TrimSpace(*req.SupplierName)
		}
		if req.MaterialName != nil {
			o.MaterialName = strings.TrimSpace(*req.MaterialName)
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
		updated = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	dto := mapper.ToRawMaterialOrderDTO(updated)
	return &dto, nil
}

// RecordPayment posts a payment to a raw material order
func (s *RawMaterialService) RecordPayment(ctx context.Context, id uuid.UUID, req *domain.RecordPaymentRequest) (*domain.RawMaterialOrderDTO, error) {
	if _, err := requireStaff(ctx); err != nil {
		return nil, err
	}

	unlock, err := s.locker.Lock(ctx, lock.Key(string(domain.LedgerRawMaterialOrder), id))
	if err != nil {
		return nil, err
	}
	defer unlock()

	var updated *domain.RawMaterialOrder
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		o, err := s.orderRepo.GetForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		readVersion := o.Version

		res, err := ledger.Post(o.Ledger, domain.LedgerRawMaterialOrder, o.ID, postingFrom(ctx, req))
		if err != nil {
			return err
		}
		o.Ledger = res.Ledger
		if err := s.orderRepo.Update(ctx, tx, o, readVersion); err != nil {
			return err
		}

		payment := res.Payment
		payment.ProjectID = o.ProjectID
		if err := s.paymentRepo.Create(ctx, tx, &payment); err != nil {
			return err
		}
		updated = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("raw material payment recorded",
		zap.String("order_id", id.String()),
		zap.String("paid", updated.PaidAmount.StringFixed(2)),
		zap.String("status", string(updated.PaymentStatus)))

	dto := mapper.ToRawMaterialOrderDTO(updated)
	return &dto, nil
}

// ListPayments returns the payment history of an order
func (s *RawMaterialService) ListPayments(ctx context.Context, id uuid.UUID) ([]domain.LedgerPaymentDTO, error) {
	if _, err := requireStaff(ctx); err != nil {
		return nil, err
	}
	if _, err := s.orderRepo.GetByID(ctx, id); err != nil {
		return nil, err
	}
	payments, err := s.paymentRepo.ListByLedger(ctx, domain.LedgerRawMaterialOrder, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	return mapper.ToLedgerPaymentDTOs(payments), nil
}

// List returns a page of raw material orders
func (s *RawMaterialService) List(ctx context.Context, page, pageSize int, filters *repository.RawMaterialOrderFilters) (*domain.PaginatedResponse, error) {
	if _, err := requireStaff(ctx); err != nil {
		return nil, err
	}
	page, pageSize = repository.NormalizePage(page, pageSize)
	orders, total, err := s.orderRepo.List(ctx, page, pageSize, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list raw material orders: %w", err)
	}
	dtos := make([]domain.RawMaterialOrderDTO, len(orders))
	for i := range orders {
		dtos[i] = mapper.ToRawMaterialOrderDTO(&orders[i])
	}
	return paginated(dtos, total, page, pageSize), nil
}
