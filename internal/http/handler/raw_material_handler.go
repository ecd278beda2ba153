package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/vitneshimmanuvel/dsqaubackend/internal/domain"
	"github.com/vitneshimmanuvel/dsqaubackend/internal/repository"
	"github.com/vitneshimmanuvel/dsqaubackend/internal/service"
)

type RawMaterialHandler struct {
	rawMaterialService *service.RawMaterialService
	logger             *zap.Logger
}

func NewRawMaterialHandler(rawMaterialService *service.RawMaterialService, logger *zap.Logger) *RawMaterialHandler {
	return &RawMaterialHandler{
		rawMaterialService: rawMaterialService,
		logger:             logger,
	}
}

// List godoc
// @Summary List raw material orders
// @Tags Raw Materials
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param projectId query string false "Filter by project ID" format(uuid)
// @Param paymentStatus query string false "Filter by payment status" Enums(PENDING, PARTIAL, PAID)
// @Param search query string false "Search by material or supplier"
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.RawMaterialOrderDTO}
// @Failure 400 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /raw-material-orders [get]
func (h *RawMaterialHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := pagination(r)

	projectID, err := optionalUUIDQuery(r, "projectId")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	filters := &repository.RawMaterialOrderFilters{
		ProjectID:     projectID,
		PaymentStatus: paymentStatusQuery(r),
		Search:        r.URL.Query().Get("search"),
	}

	result, err := h.rawMaterialService.List(r.Context(), page, pageSize, filters)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// Create godoc
// @Summary Create raw material order
// @Tags Raw Materials
// @Accept json
// @Produce json
// @Param request body domain.CreateRawMaterialOrderRequest true "Order"
// @Success 201 {object} domain.RawMaterialOrderDTO
// @Failure 400 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /raw-material-orders [post]
func (h *RawMaterialHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateRawMaterialOrderRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	order, err := h.rawMaterialService.Create(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, order)
}

// GetByID godoc
// @Summary Get raw material order by ID
// @Tags Raw Materials
// @Produce json
// @Param id path string true "Order ID" format(uuid)
// @Success 200 {object} domain.RawMaterialOrderDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /raw-material-orders/{id} [get]
func (h *RawMaterialHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "raw material order")
	if !ok {
		return
	}

	order, err := h.rawMaterialService.GetByID(r.Context(), id)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, order)
}

// Update godoc
// @Summary Update raw material order
// @Tags Raw Materials
// @Accept json
// @Produce json
// @Param id path string true "Order ID" format(uuid)
// @Param request body domain.UpdateRawMaterialOrderRequest true "Fields to change"
// @Success 200 {object} domain.RawMaterialOrderDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /raw-material-orders/{id} [put]
func (h *RawMaterialHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "raw material order")
	if !ok {
		return
	}

	var req domain.UpdateRawMaterialOrderRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	order, err := h.rawMaterialService.Update(r.Context(), id, &req)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, order)
}

// ListPayments godoc
// @Summary List raw material order payments
// @Tags Raw Materials
// @Produce json
// @Param id path string true "Order ID" format(uuid)
// @Success 200 {array} domain.LedgerPaymentDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /raw-material-orders/{id}/payments [get]
func (h *RawMaterialHandler) ListPayments(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "raw material order")
	if !ok {
		return
	}

	payments, err := h.rawMaterialService.ListPayments(r.Context(), id)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, payments)
}

// RecordPayment godoc
// @Summary Record raw material order payment
// @Tags Raw Materials
// @Accept json
// @Produce json
// @Param id path string true "Order ID" format(uuid)
// @Param request body domain.RecordPaymentRequest true "Payment"
// @Success 201 {object} domain.RawMaterialOrderDTO
// @Failure 400 {object} domain.APIError "Amount must be greater than zero"
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /raw-material-orders/{id}/payments [post]
func (h *RawMaterialHandler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "raw material order")
	if !ok {
		return
	}

	var req domain.RecordPaymentRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	order, err := h.rawMaterialService.RecordPayment(r.Context(), id, &req)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, order)
}
