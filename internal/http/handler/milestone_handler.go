package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/vitneshimmanuvel/dsqaubackend/internal/domain"
	"github.com/vitneshimmanuvel/dsqaubackend/internal/service"
)

type MilestoneHandler struct {
	milestoneService *service.MilestoneService
	logger           *zap.Logger
}

func NewMilestoneHandler(milestoneService *service.MilestoneService, logger *zap.Logger) *MilestoneHandler {
	return &MilestoneHandler{
		milestoneService: milestoneService,
		logger:           logger,
	}
}

// ListByProject godoc
// @Summary List project milestones
// @Description Payment milestones of a project in display order
// @Tags Milestones
// @Produce json
// @Param id path string true "Project ID" format(uuid)
// @Success 200 {array} domain.PaymentMilestoneDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects/{id}/milestones [get]
func (h *MilestoneHandler) ListByProject(w http.ResponseWriter, r *http.Request) {
	projectID, ok := parseID(w, r, "id", "project")
	if !ok {
		return
	}

	milestones, err := h.milestoneService.ListByProject(r.Context(), projectID)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, milestones)
}

// Create godoc
// @Summary Create milestone
// @Tags Milestones
// @Accept json
// @Produce json
// @Param id path string true "Project ID" format(uuid)
// @Param request body domain.CreateMilestoneRequest true "Milestone"
// @Success 201 {object} domain.PaymentMilestoneDTO
// @Failure 400 {object} domain.APIError "Amount must be greater than zero"
// @Failure 403 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects/{id}/milestones [post]
func (h *MilestoneHandler) Create(w http.ResponseWriter, r *http.Request) {
	projectID, ok := parseID(w, r, "id", "project")
	if !ok {
		return
	}

	var req domain.CreateMilestoneRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	milestone, err := h.milestoneService.Create(r.Context(), projectID, &req)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, milestone)
}

// CreateFromTemplate godoc
// @Summary Create milestones from percentages
// @Description Split the project budget into milestones. Percentages may not exceed 100 in total.
// @Tags Milestones
// @Accept json
// @Produce json
// @Param id path string true "Project ID" format(uuid)
// @Param request body domain.MilestoneTemplateRequest true "Template"
// @Success 201 {array} domain.PaymentMilestoneDTO
// @Failure 400 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects/{id}/milestones/template [post]
func (h *MilestoneHandler) CreateFromTemplate(w http.ResponseWriter, r *http.Request) {
	projectID, ok := parseID(w, r, "id", "project")
	if !ok {
		return
	}

	var req domain.MilestoneTemplateRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	milestones, err := h.milestoneService.CreateFromTemplate(r.Context(), projectID, &req)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, milestones)
}

// GetByID godoc
// @Summary Get milestone by ID
// @Tags Milestones
// @Produce json
// @Param id path string true "Milestone ID" format(uuid)
// @Success 200 {object} domain.PaymentMilestoneDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /milestones/{id} [get]
func (h *MilestoneHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "milestone")
	if !ok {
		return
	}

	milestone, err := h.milestoneService.GetByID(r.Context(), id)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, milestone)
}

// RequestAcknowledgment godoc
// @Summary Request client acknowledgment
// @Description Admin asks the client to acknowledge the milestone
// @Tags Milestones
// @Produce json
// @Param id path string true "Milestone ID" format(uuid)
// @Success 200 {object} domain.PaymentMilestoneDTO
// @Failure 403 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError "Milestone is not pending"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /milestones/{id}/request-acknowledgment [post]
func (h *MilestoneHandler) RequestAcknowledgment(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "milestone")
	if !ok {
		return
	}

	milestone, err := h.milestoneService.RequestAcknowledgment(r.Context(), id)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, milestone)
}

// Acknowledge godoc
// @Summary Acknowledge milestone
// @Description Client accepts or rejects the acknowledgment request
// @Tags Milestones
// @Accept json
// @Produce json
// @Param id path string true "Milestone ID" format(uuid)
// @Param request body domain.AcknowledgeMilestoneRequest true "Decision"
// @Success 200 {object} domain.PaymentMilestoneDTO
// @Failure 400 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError "Milestone is not awaiting the client"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /milestones/{id}/acknowledge [post]
func (h *MilestoneHandler) Acknowledge(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "milestone")
	if !ok {
		return
	}

	var req domain.AcknowledgeMilestoneRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	milestone, err := h.milestoneService.Acknowledge(r.Context(), id, &req)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, milestone)
}

// CancelRequest godoc
// @Summary Cancel acknowledgment request
// @Description Admin withdraws a pending request so it can be issued again
// @Tags Milestones
// @Accept json
// @Produce json
// @Param id path string true "Milestone ID" format(uuid)
// @Param request body domain.CancelMilestoneRequest false "Reason"
// @Success 200 {object} domain.PaymentMilestoneDTO
// @Failure 403 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /milestones/{id}/cancel-request [post]
func (h *MilestoneHandler) CancelRequest(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "milestone")
	if !ok {
		return
	}

	var req domain.CancelMilestoneRequest
	if !decodeOptional(w, r, &req) {
		return
	}

	milestone, err := h.milestoneService.CancelRequest(r.Context(), id, &req)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, milestone)
}

// ConfirmPayment godoc
// @Summary Confirm milestone payment
// @Description Admin confirms money received. Both parties must have acknowledged first.
// @Tags Milestones
// @Accept json
// @Produce json
// @Param id path string true "Milestone ID" format(uuid)
// @Param request body domain.ConfirmPaymentRequest false "Payment"
// @Success 200 {object} domain.PaymentMilestoneDTO
// @Failure 400 {object} domain.APIError "Amount must be greater than zero"
// @Failure 403 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError "Acknowledgment missing"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /milestones/{id}/confirm [post]
func (h *MilestoneHandler) ConfirmPayment(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "milestone")
	if !ok {
		return
	}

	var req domain.ConfirmPaymentRequest
	if !decodeOptional(w, r, &req) {
		return
	}

	milestone, err := h.milestoneService.ConfirmPayment(r.Context(), id, &req)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, milestone)
}

// ListPartPayments godoc
// @Summary List milestone part payments
// @Tags Milestones
// @Produce json
// @Param id path string true "Milestone ID" format(uuid)
// @Success 200 {array} domain.PartPaymentDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /milestones/{id}/part-payments [get]
func (h *MilestoneHandler) ListPartPayments(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "milestone")
	if !ok {
		return
	}

	payments, err := h.milestoneService.ListPartPayments(r.Context(), id)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, payments)
}

// ListReminders godoc
// @Summary List due milestone reminders
// @Description Unpaid milestones inside their reminder window, computed at request time
// @Tags Milestones
// @Produce json
// @Param projectId query string false "Limit to one project" format(uuid)
// @Success 200 {array} domain.MilestoneReminderDTO
// @Failure 400 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /milestones/reminders [get]
func (h *MilestoneHandler) ListReminders(w http.ResponseWriter, r *http.Request) {
	projectID, err := optionalUUIDQuery(r, "projectId")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	reminders, err := h.milestoneService.ListReminders(r.Context(), projectID)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, reminders)
}

// SendReminders godoc
// @Summary Send due milestone reminders
// @Description Notify the client of every due milestone
// @Tags Milestones
// @Produce json
// @Param projectId query string false "Limit to one project" format(uuid)
// @Success 200 {object} domain.ReminderSendResultDTO
// @Failure 400 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /milestones/reminders/send [post]
func (h *MilestoneHandler) SendReminders(w http.ResponseWriter, r *http.Request) {
	projectID, err := optionalUUIDQuery(r, "projectId")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.milestoneService.SendReminders(r.Context(), projectID)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}
