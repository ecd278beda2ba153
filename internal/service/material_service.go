package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/vitneshimmanuvel/dsqaubackend/internal/domain"
	"github.com/vitneshimmanuvel/dsqaubackend/internal/ledger"
	"github.com/vitneshimmanuvel/dsqaubackend/internal/lock"
	"github.com/vitneshimmanuvel/dsqaubackend/internal/mapper"
	"github.com/vitneshimmanuvel/dsqaubackend/internal/repository"
)

// MaterialService handles project material purchases and their payments
type MaterialService struct {
	db           *gorm.DB
	materialRepo *repository.MaterialRepository
	paymentRepo  *repository.LedgerPaymentRepository
	projects     *ProjectService
	locker       lock.Locker
	logger       *zap.Logger
}

// NewMaterialService creates a new material service instance
func NewMaterialService(
	db *gorm.DB,
	materialRepo *repository.MaterialRepository,
	paymentRepo *repository.LedgerPaymentRepository,
	projects *ProjectService,
	locker lock.Locker,
	logger *zap.Logger,
) *MaterialService {
	return &MaterialService{
		db:           db,
		materialRepo: materialRepo,
		paymentRepo:  paymentRepo,
		projects:     projects,
		locker:       locker,
		logger:       logger,
	}
}

// Create books a material purchase against a project with nothing paid
func (s *MaterialService) Create(ctx context.Context, projectID uuid.UUID, req *domain.CreateMaterialRequest) (*domain.MaterialDTO, error) {
	if _, _, err := s.projects.managedProject(ctx, projectID); err != nil {
		return nil, err
	}

	quantity := ledger.Quantity(mapper.Decimal(req.Quantity))
	unitPrice := ledger.Money(mapper.Decimal(req.UnitPrice))
	l, err := ledger.FromQuantity(quantity, unitPrice)
	if err != nil {
		return nil, err
	}

	material := &domain.Material{
		ProjectID:    projectID,
		Name:         strings.TrimSpace(req.Name),
		MaterialType: strings.TrimSpace(req.MaterialType),
		Quantity:     quantity,
		Unit:         req.Unit,
		UnitPrice:    unitPrice,
		SupplierName: req.SupplierName,
		PurchaseDate: req.PurchaseDate,
		Ledger:       l,
	}
	if err := s.materialRepo.Create(ctx, material); err != nil {
		return nil, fmt.Errorf("failed to create material: %w", err)
	}

	s.logger.Info("material created",
		zap.String("material_id", material.ID.String()),
		zap.String("project_id", projectID.String()),
		zap.String("total", l.TotalAmount.StringFixed(2)))

	dto := mapper.ToMaterialDTO(material)
	return &dto, nil
}

// GetByID returns a material visible to the caller
func (s *MaterialService) GetByID(ctx context.Context, id uuid.UUID) (*domain.MaterialDTO, error) {
	material, err := s.materialRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := mapper.ToMaterialDTO(material)
	return &dto, nil
}

// Update patches a material and recalculates its total, keeping what has been paid
func (s *MaterialService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateMaterialRequest) (*domain.MaterialDTO, error) {
	existing, err := s.materialRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, _, err := s.projects.managedProject(ctx, existing.ProjectID); err != nil {
		return nil, err
	}

	unlock, err := s.locker.Lock(ctx, lock.Key(string(domain.LedgerMaterial), id))
	if err != nil {
		return nil, err
	}
	defer unlock()

	var updated *domain.Material
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		m, err := s.materialRepo.GetForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := ledger.Validate(m.Ledger); err != nil {
			return err
		}
		readVersion := m.Version

		if req.Name != nil {
			m.Name = strings.TrimSpace(*req.Name)
		}
		if req.MaterialType != nil {
			m.MaterialType = strings.TrimSpace(*req.MaterialType)
		}
		if req.Quantity != nil {
			m.Quantity = ledger.Quantity(mapper.Decimal(*req.Quantity))
		}
		if req.Unit != nil {
			m.Unit = *req.Unit
		}
		if req.UnitPrice != nil {
			m.UnitPrice = ledger.Money(mapper.Decimal(*req.UnitPrice))
		}
		if req.SupplierName != nil {
			m.SupplierName = *req.SupplierName
		}
		if req.PurchaseDate != nil {
			m.PurchaseDate = *req.PurchaseDate
		}

		l, err := ledger.RecalculateTotal(m.Ledger, m.Quantity, m.UnitPrice)
		if err != nil {
			return err
		}
		m.Ledger = l
		if err := s.materialRepo.Update(ctx, tx, m, readVersion); err != nil {
			return err
		}
		updated = m
		return nil
	})
	if err != nil {
		return nil, err
	}

	dto := mapper.ToMaterialDTO(updated)
	return &dto, nil
}

// RecordPayment posts a payment to a material's ledger
func (s *MaterialService) RecordPayment(ctx context.Context, id uuid.UUID, req *domain.RecordPaymentRequest) (*domain.MaterialDTO, error) {
	existing, err := s.materialRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, _, err := s.projects.managedProject(ctx, existing.ProjectID); err != nil {
		return nil, err
	}

	unlock, err := s.locker.Lock(ctx, lock.Key(string(domain.LedgerMaterial), id))
	if err != nil {
		return nil, err
	}
	defer unlock()

	var updated *domain.Material
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		m, err := s.materialRepo.GetForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		readVersion := m.Version

		res, err := ledger.Post(m.Ledger, domain.LedgerMaterial, m.ID, postingFrom(ctx, req))
		if err != nil {
			return err
		}
		m.Ledger = res.Ledger
		if err := s.materialRepo.Update(ctx, tx, m, readVersion); err != nil {
			return err
		}

		payment := res.Payment
		payment.ProjectID = &m.ProjectID
		if err := s.paymentRepo.Create(ctx, tx, &payment); err != nil {
			return err
		}
		updated = m
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("material payment recorded",
		zap.String("material_id", id.String()),
		zap.String("paid", updated.PaidAmount.StringFixed(2)),
		zap.String("status", string(updated.PaymentStatus)))

	dto := mapper.ToMaterialDTO(updated)
	return &dto, nil
}

// ListPayments returns the payment history of a material
func (s *MaterialService) ListPayments(ctx context.Context, id uuid.UUID) ([]domain.LedgerPaymentDTO, error) {
	if _, err := s.materialRepo.GetByID(ctx, id); err != nil {
		return nil, err
	}
	payments, err := s.paymentRepo.ListByLedger(ctx, domain.LedgerMaterial, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	return mapper.ToLedgerPaymentDTOs(payments), nil
}

// List returns a page of materials visible to the caller
func (s *MaterialService) List(ctx context.Context, page, pageSize int, filters *repository.MaterialFilters) (*domain.PaginatedResponse, error) {
	page, pageSize = repository.NormalizePage(page, pageSize)
	materials, total, err := s.materialRepo.List(ctx, page, pageSize, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list materials: %w", err)
	}
	dtos := make([]domain.MaterialDTO, len(materials))
	for i := range materials {
		dtos[i] = mapper.ToMaterialDTO(&materials[i])
	}
	return paginated(dtos, total, page, pageSize), nil
}
