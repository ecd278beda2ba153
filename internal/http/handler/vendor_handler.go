package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/vitneshimmanuvel/dsqaubackend/internal/domain"
	"github.com/vitneshimmanuvel/dsqaubackend/internal/repository"
	"github.com/vitneshimmanuvel/dsqaubackend/internal/service"
)

type VendorHandler struct {
	vendorService *service.VendorService
	logger        *zap.Logger
}

func NewVendorHandler(vendorService *service.VendorService, logger *zap.Logger) *VendorHandler {
	return &VendorHandler{
		vendorService: vendorService,
		logger:        logger,
	}
}

// List godoc
// @Summary List vendors
// @Tags Vendors
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param category query string false "Filter by category"
// @Param search query string false "Search by name or contact"
// @Param withPending query bool false "Only vendors still owed money"
// @Param sortBy query string false "Sort field" Enums(createdAt, name, category, totalAmount, pendingAmount)
// @Param sortOrder query string false "Sort order" Enums(asc, desc) default(desc)
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.VendorDTO}
// @Failure 403 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /vendors [get]
func (h *VendorHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := pagination(r)

	q := r.URL.Query()
	filters := &repository.VendorFilters{
		Category:    q.Get("category"),
		Search:      q.Get("search"),
		WithPending: q.Get("withPending") == "true",
	}

	result, err := h.vendorService.List(r.Context(), page, pageSize, filters, sortConfig(r))
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// Create godoc
// @Summary Create vendor
// @Tags Vendors
// @Accept json
// @Produce json
// @Param request body domain.CreateVendorRequest true "Vendor"
// @Success 201 {object} domain.VendorDTO
// @Failure 400 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /vendors [post]
func (h *VendorHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateVendorRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	vendor, err := h.vendorService.Create(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	w.Header().Set("Location", "/api/v1/vendors/"+vendor.ID.String())
	respondJSON(w, http.StatusCreated, vendor)
}

// GetByID godoc
// @Summary Get vendor by ID
// @Description Get a vendor with its running totals
// @Tags Vendors
// @Produce json
// @Param id path string true "Vendor ID" format(uuid)
// @Success 200 {object} domain.VendorDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /vendors/{id} [get]
func (h *VendorHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "vendor")
	if !ok {
		return
	}

	vendor, err := h.vendorService.GetByID(r.Context(), id)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, vendor)
}

// Update godoc
// @Summary Update vendor profile
// @Tags Vendors
// @Accept json
// @Produce json
// @Param id path string true "Vendor ID" format(uuid)
// @Param request body domain.UpdateVendorRequest true "Vendor"
// @Success 200 {object} domain.VendorDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /vendors/{id} [put]
func (h *VendorHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "vendor")
	if !ok {
		return
	}

	var req domain.UpdateVendorRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	vendor, err := h.vendorService.Update(r.Context(), id, &req)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, vendor)
}

// Reconcile godoc
// @Summary Reconcile vendor totals
// @Description Recompute the vendor's totals from its orders and repair any drift
// @Tags Vendors
// @Produce json
// @Param id path string true "Vendor ID" format(uuid)
// @Success 200 {object} domain.VendorReconcileDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /vendors/{id}/reconcile [post]
func (h *VendorHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "vendor")
	if !ok {
		return
	}

	result, err := h.vendorService.Reconcile(r.Context(), id)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// ListOrders godoc
// @Summary List vendor orders
// @Tags Vendors
// @Produce json
// @Param id path string true "Vendor ID" format(uuid)
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param projectId query string false "Filter by project ID" format(uuid)
// @Param paymentStatus query string false "Filter by payment status" Enums(PENDING, PARTIAL, PAID)
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.VendorOrderDTO}
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /vendors/{id}/orders [get]
func (h *VendorHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "vendor")
	if !ok {
		return
	}
	page, pageSize := pagination(r)

	projectID, err := optionalUUIDQuery(r, "projectId")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	filters := &repository.VendorOrderFilters{
		ProjectID:     projectID,
		PaymentStatus: paymentStatusQuery(r),
	}

	result, err := h.vendorService.ListOrders(r.Context(), id, page, pageSize, filters)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// CreateOrder godoc
// @Summary Place vendor order
// @Tags Vendors
// @Accept json
// @Produce json
// @Param id path string true "Vendor ID" format(uuid)
// @Param request body domain.CreateVendorOrderRequest true "Order"
// @Success 201 {object} domain.VendorOrderDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /vendors/{id}/orders [post]
func (h *VendorHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "vendor")
	if !ok {
		return
	}

	var req domain.CreateVendorOrderRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	order, err := h.vendorService.CreateOrder(r.Context(), id, &req)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, order)
}

// GetOrder godoc
// @Summary Get vendor order by ID
// @Tags Vendors
// @Produce json
// @Param id path string true "Order ID" format(uuid)
// @Success 200 {object} domain.VendorOrderDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /vendor-orders/{id} [get]
func (h *VendorHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "vendor order")
	if !ok {
		return
	}

	order, err := h.vendorService.GetOrder(r.Context(), id)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, order)
}

// UpdateOrder godoc
// @Summary Update vendor order
// @Description Patch an order. Vendor totals follow the change.
// @Tags Vendors
// @Accept json
// @Produce json
// @Param id path string true "Order ID" format(uuid)
// @Param request body domain.UpdateVendorOrderRequest true "Fields to change"
// @Success 200 {object} domain.VendorOrderDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /vendor-orders/{id} [put]
func (h *VendorHandler) UpdateOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "vendor order")
	if !ok {
		return
	}

	var req domain.UpdateVendorOrderRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	order, err := h.vendorService.UpdateOrder(r.Context(), id, &req)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, order)
}

// ListOrderPayments godoc
// @Summary List vendor order payments
// @Tags Vendors
// @Produce json
// @Param id path string true "Order ID" format(uuid)
// @Success 200 {array} domain.LedgerPaymentDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /vendor-orders/{id}/payments [get]
func (h *VendorHandler) ListOrderPayments(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "vendor order")
	if !ok {
		return
	}

	payments, err := h.vendorService.ListOrderPayments(r.Context(), id)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, payments)
}

// RecordOrderPayment godoc
// @Summary Record vendor order payment
// @Description Apply a part payment to the order and the vendor's totals
// @Tags Vendors
// @Accept json
// @Produce json
// @Param id path string true "Order ID" format(uuid)
// @Param request body domain.RecordPaymentRequest true "Payment"
// @Success 201 {object} domain.VendorOrderDTO
// @Failure 400 {object} domain.APIError "Amount must be greater than zero"
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /vendor-orders/{id}/payments [post]
func (h *VendorHandler) RecordOrderPayment(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "vendor order")
	if !ok {
		return
	}

	var req domain.RecordPaymentRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	order, err := h.vendorService.RecordOrderPayment(r.Context(), id, &req)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, order)
}
