package handler

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/vitneshimmanuvel/dsqaubackend/internal/domain"
	"github.com/vitneshimmanuvel/dsqaubackend/internal/repository"
	"github.com/vitneshimmanuvel/dsqaubackend/internal/service"
)

const dateLayout = "2006-01-02"

type WageHandler struct {
	wageService *service.WageService
	logger      *zap.Logger
}

func NewWageHandler(wageService *service.WageService, logger *zap.Logger) *WageHandler {
	return &WageHandler{
		wageService: wageService,
		logger:      logger,
	}
}

// Calculate godoc
// @Summary Calculate wage
// @Description Compute regular, overtime and total pay for a crew without storing anything
// @Tags Wages
// @Accept json
// @Produce json
// @Param request body domain.WageCalculationRequest true "Crew and shift"
// @Success 200 {object} domain.WageCalculationDTO
// @Failure 400 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /wage/calculate [post]
func (h *WageHandler) Calculate(w http.ResponseWriter, r *http.Request) {
	var req domain.WageCalculationRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	result, err := h.wageService.Calculate(&req)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// ListByProject godoc
// @Summary List wage logs
// @Tags Wages
// @Produce json
// @Param id path string true "Project ID" format(uuid)
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param category query string false "Filter by worker category"
// @Param status query string false "Filter by payment status" Enums(PENDING, PAID)
// @Param from query string false "Earliest work date (YYYY-MM-DD)"
// @Param to query string false "Latest work date (YYYY-MM-DD)"
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.WageLogDTO}
// @Failure 400 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects/{id}/wage-logs [get]
func (h *WageHandler) ListByProject(w http.ResponseWriter, r *http.Request) {
	projectID, ok := parseID(w, r, "id", "project")
	if !ok {
		return
	}
	page, pageSize := pagination(r)

	q := r.URL.Query()
	filters := &repository.WageLogFilters{
		ProjectID: &projectID,
		Category:  q.Get("category"),
	}
	if s := q.Get("status"); s != "" {
		status := domain.WagePaymentStatus(s)
		filters.Status = &status
	}
	for param, dst := range map[string]**time.Time{"from": &filters.From, "to": &filters.To} {
		raw := q.Get(param)
		if raw == "" {
			continue
		}
		t, err := time.Parse(dateLayout, raw)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid "+param+": must be YYYY-MM-DD")
			return
		}
		*dst = &t
	}

	result, err := h.wageService.List(r.Context(), page, pageSize, filters)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// Create godoc
// @Summary Log crew work
// @Description Record one crew's work day. The total wage is computed server side.
// @Tags Wages
// @Accept json
// @Produce json
// @Param id path string true "Project ID" format(uuid)
// @Param request body domain.CreateWageLogRequest true "Wage log"
// @Success 201 {object} domain.WageLogDTO
// @Failure 400 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects/{id}/wage-logs [post]
func (h *WageHandler) Create(w http.ResponseWriter, r *http.Request) {
	projectID, ok := parseID(w, r, "id", "project")
	if !ok {
		return
	}

	var req domain.CreateWageLogRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	log, err := h.wageService.Create(r.Context(), projectID, &req)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, log)
}

// Update godoc
// @Summary Update wage log
// @Description Patch a wage log. Paid logs only accept quality flags and notes.
// @Tags Wages
// @Accept json
// @Produce json
// @Param id path string true "Wage log ID" format(uuid)
// @Param request body domain.UpdateWageLogRequest true "Fields to change"
// @Success 200 {object} domain.WageLogDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError "Wage log is already paid"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /wage-logs/{id} [put]
func (h *WageHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "wage log")
	if !ok {
		return
	}

	var req domain.UpdateWageLogRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	log, err := h.wageService.Update(r.Context(), id, &req)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, log)
}

// MarkPaid godoc
// @Summary Mark wage log paid
// @Tags Wages
// @Produce json
// @Param id path string true "Wage log ID" format(uuid)
// @Success 200 {object} domain.WageLogDTO
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError "Wage log is already paid"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /wage-logs/{id}/pay [post]
func (h *WageHandler) MarkPaid(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "wage log")
	if !ok {
		return
	}

	log, err := h.wageService.MarkPaid(r.Context(), id)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, log)
}
