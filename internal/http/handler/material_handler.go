package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/vitneshimmanuvel/dsqaubackend/internal/domain"
	"github.com/vitneshimmanuvel/dsqaubackend/internal/repository"
	"github.com/vitneshimmanuvel/dsqaubackend/internal/service"
)

type MaterialHandler struct {
	materialService *service.MaterialService
	logger          *zap.Logger
}

func NewMaterialHandler(materialService *service.MaterialService, logger *zap.Logger) *MaterialHandler {
	return &MaterialHandler{
		materialService: materialService,
		logger:          logger,
	}
}

// ListByProject godoc
// @Summary List project materials
// @Tags Materials
// @Produce json
// @Param id path string true "Project ID" format(uuid)
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param materialType query string false "Filter by material type"
// @Param paymentStatus query string false "Filter by payment status" Enums(PENDING, PARTIAL, PAID)
// @Param search query string false "Search by name or supplier"
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.MaterialDTO}
// @Failure 400 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects/{id}/materials [get]
func (h *MaterialHandler) ListByProject(w http.ResponseWriter, r *http.Request) {
	projectID, ok := parseID(w, r, "id", "project")
	if !ok {
		return
	}
	page, pageSize := pagination(r)

	q := r.URL.Query()
	filters := &repository.MaterialFilters{
		ProjectID:    &projectID,
		MaterialType: q.Get("materialType"),
		Search:       q.Get("search"),
	}
	filters.PaymentStatus = paymentStatusQuery(r)

	result, err := h.materialService.List(r.Context(), page, pageSize, filters)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// Create godoc
// @Summary Record material purchase
// @Tags Materials
// @Accept json
// @Produce json
// @Param id path string true "Project ID" format(uuid)
// @Param request body domain.CreateMaterialRequest true "Material"
// @Success 201 {object} domain.MaterialDTO
// @Failure 400 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects/{id}/materials [post]
func (h *MaterialHandler) Create(w http.ResponseWriter, r *http.Request) {
	projectID, ok := parseID(w, r, "id", "project")
	if !ok {
		return
	}

	var req domain.CreateMaterialRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	material, err := h.materialService.Create(r.Context(), projectID, &req)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, material)
}

// GetByID godoc
// @Summary Get material by ID
// @Tags Materials
// @Produce json
// @Param id path string true "Material ID" format(uuid)
// @Success 200 {object} domain.MaterialDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /materials/{id} [get]
func (h *MaterialHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "material")
	if !ok {
		return
	}

	material, err := h.materialService.GetByID(r.Context(), id)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, material)
}

// Update godoc
// @Summary Update material
// @Description Patch a material. Quantity and unit price changes recompute the ledger.
// @Tags Materials
// @Accept json
// @Produce json
// @Param id path string true "Material ID" format(uuid)
// @Param request body domain.UpdateMaterialRequest true "Fields to change"
// @Success 200 {object} domain.MaterialDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /materials/{id} [put]
func (h *MaterialHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "material")
	if !ok {
		return
	}

	var req domain.UpdateMaterialRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	material, err := h.materialService.Update(r.Context(), id, &req)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, material)
}

// ListPayments godoc
// @Summary List material payments
// @Tags Materials
// @Produce json
// @Param id path string true "Material ID" format(uuid)
// @Success 200 {array} domain.LedgerPaymentDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /materials/{id}/payments [get]
func (h *MaterialHandler) ListPayments(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "material")
	if !ok {
		return
	}

	payments, err := h.materialService.ListPayments(r.Context(), id)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, payments)
}

// RecordPayment godoc
// @Summary Record material payment
// @Description Apply a part payment to the material's ledger
// @Tags Materials
// @Accept json
// @Produce json
// @Param id path string true "Material ID" format(uuid)
// @Param request body domain.RecordPaymentRequest true "Payment"
// @Success 201 {object} domain.MaterialDTO
// @Failure 400 {object} domain.APIError "Amount must be greater than zero"
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /materials/{id}/payments [post]
func (h *MaterialHandler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "material")
	if !ok {
		return
	}

	var req domain.RecordPaymentRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	material, err := h.materialService.RecordPayment(r.Context(), id, &req)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, material)
}

// paymentStatusQuery reads the paymentStatus filter shared by ledger listings
func paymentStatusQuery(r *http.Request) *domain.PaymentStatus {
	s := r.URL.Query().Get("paymentStatus")
	if s == "" {
		return nil
	}
	status := domain.PaymentStatus(s)
	return &status
}
