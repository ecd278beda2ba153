package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/vitneshimmanuvel/dsqaubackend/internal/domain"
	"github.com/vitneshimmanuvel/dsqaubackend/internal/repository"
	"github.com/vitneshimmanuvel/dsqaubackend/internal/service"
)

type LeadHandler struct {
	leadService *service.LeadService
	logger      *zap.Logger
}

func NewLeadHandler(leadService *service.LeadService, logger *zap.Logger) *LeadHandler {
	return &LeadHandler{
		leadService: leadService,
		logger:      logger,
	}
}

// List godoc
// @Summary List leads
// @Tags Leads
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param stage query string false "Filter by stage" Enums(NEW, CONTACTED, QUALIFIED, PROPOSAL_SENT, NEGOTIATION, WON, LOST)
// @Param assignedToId query string false "Filter by assignee" format(uuid)
// @Param source query string false "Filter by source"
// @Param search query string false "Search by name, phone or email"
// @Param open query bool false "Only leads that are not won or lost"
// @Param sortBy query string false "Sort field" Enums(createdAt, updatedAt, name, stage, estimatedBudget, nextFollowUpAt)
// @Param sortOrder query string false "Sort order" Enums(asc, desc) default(desc)
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.LeadDTO}
// @Failure 400 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /leads [get]
func (h *LeadHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := pagination(r)

	q := r.URL.Query()
	filters := &repository.LeadFilters{
		Source:   q.Get("source"),
		Search:   q.Get("search"),
		OpenOnly: q.Get("open") == "true",
	}
	if s := q.Get("stage"); s != "" {
		stage := domain.LeadStage(s)
		filters.Stage = &stage
	}
	assignee, err := optionalUUIDQuery(r, "assignedToId")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	filters.AssignedToID = assignee

	result, err := h.leadService.List(r.Context(), page, pageSize, filters, sortConfig(r))
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// Create godoc
// @Summary Create lead
// @Description Create a lead in the NEW stage
// @Tags Leads
// @Accept json
// @Produce json
// @Param request body domain.CreateLeadRequest true "Lead"
// @Success 201 {object} domain.LeadDTO
// @Failure 400 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /leads [post]
func (h *LeadHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateLeadRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	lead, err := h.leadService.Create(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	w.Header().Set("Location", "/api/v1/leads/"+lead.ID.String())
	respondJSON(w, http.StatusCreated, lead)
}

// Stats godoc
// @Summary Pipeline statistics
// @Description Count and value per stage plus conversion rate
// @Tags Leads
// @Produce json
// @Success 200 {object} domain.PipelineStatsDTO
// @Failure 403 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /leads/stats [get]
func (h *LeadHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.leadService.Stats(r.Context())
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

// GetByID godoc
// @Summary Get lead by ID
// @Tags Leads
// @Produce json
// @Param id path string true "Lead ID" format(uuid)
// @Success 200 {object} domain.LeadDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /leads/{id} [get]
func (h *LeadHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "lead")
	if !ok {
		return
	}

	lead, err := h.leadService.GetByID(r.Context(), id)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, lead)
}

// Update godoc
// @Summary Update lead
// @Description Patch lead details. The stage changes through the stage endpoints.
// @Tags Leads
// @Accept json
// @Produce json
// @Param id path string true "Lead ID" format(uuid)
// @Param request body domain.UpdateLeadRequest true "Fields to change"
// @Success 200 {object} domain.LeadDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /leads/{id} [put]
func (h *LeadHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "lead")
	if !ok {
		return
	}

	var req domain.UpdateLeadRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	lead, err := h.leadService.Update(r.Context(), id, &req)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, lead)
}

// ChangeStage godoc
// @Summary Move lead to an open stage
// @Tags Leads
// @Accept json
// @Produce json
// @Param id path string true "Lead ID" format(uuid)
// @Param request body domain.UpdateLeadStageRequest true "Target stage"
// @Success 200 {object} domain.LeadDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError "Lead is closed"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /leads/{id}/stage [put]
func (h *LeadHandler) ChangeStage(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "lead")
	if !ok {
		return
	}

	var req domain.UpdateLeadStageRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	lead, err := h.leadService.ChangeStage(r.Context(), id, &req)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, lead)
}

// Win godoc
// @Summary Mark lead won
// @Description Close the lead as won, optionally opening a project for it
// @Tags Leads
// @Accept json
// @Produce json
// @Param id path string true "Lead ID" format(uuid)
// @Param request body domain.WinLeadRequest false "Project to open"
// @Success 200 {object} domain.LeadDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError "Lead is closed"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /leads/{id}/win [post]
func (h *LeadHandler) Win(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "lead")
	if !ok {
		return
	}

	var req domain.WinLeadRequest
	if !decodeOptional(w, r, &req) {
		return
	}

	lead, err := h.leadService.Win(r.Context(), id, &req)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, lead)
}

// Lose godoc
// @Summary Mark lead lost
// @Tags Leads
// @Accept json
// @Produce json
// @Param id path string true "Lead ID" format(uuid)
// @Param request body domain.LoseLeadRequest true "Reason"
// @Success 200 {object} domain.LeadDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError "Lead is closed"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /leads/{id}/lose [post]
func (h *LeadHandler) Lose(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "lead")
	if !ok {
		return
	}

	var req domain.LoseLeadRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	lead, err := h.leadService.Lose(r.Context(), id, &req)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, lead)
}

// Reopen godoc
// @Summary Reopen closed lead
// @Tags Leads
// @Accept json
// @Produce json
// @Param id path string true "Lead ID" format(uuid)
// @Param request body domain.ReopenLeadRequest false "Stage to reopen into"
// @Success 200 {object} domain.LeadDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError "Lead is not closed"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /leads/{id}/reopen [post]
func (h *LeadHandler) Reopen(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "lead")
	if !ok {
		return
	}

	var req domain.ReopenLeadRequest
	if !decodeOptional(w, r, &req) {
		return
	}

	lead, err := h.leadService.Reopen(r.Context(), id, &req)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, lead)
}

// History godoc
// @Summary Lead stage history
// @Tags Leads
// @Produce json
// @Param id path string true "Lead ID" format(uuid)
// @Success 200 {array} domain.LeadStageHistoryDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /leads/{id}/history [get]
func (h *LeadHandler) History(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "lead")
	if !ok {
		return
	}

	history, err := h.leadService.History(r.Context(), id)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, history)
}

// ListFollowUps godoc
// @Summary List lead follow-ups
// @Tags Leads
// @Produce json
// @Param id path string true "Lead ID" format(uuid)
// @Success 200 {array} domain.FollowUpDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /leads/{id}/follow-ups [get]
func (h *LeadHandler) ListFollowUps(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "lead")
	if !ok {
		return
	}

	followUps, err := h.leadService.ListFollowUps(r.Context(), id)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, followUps)
}

// AddFollowUp godoc
// @Summary Schedule follow-up
// @Tags Leads
// @Accept json
// @Produce json
// @Param id path string true "Lead ID" format(uuid)
// @Param request body domain.CreateFollowUpRequest true "Follow-up"
// @Success 201 {object} domain.FollowUpDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /leads/{id}/follow-ups [post]
func (h *LeadHandler) AddFollowUp(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "lead")
	if !ok {
		return
	}

	var req domain.CreateFollowUpRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	followUp, err := h.leadService.AddFollowUp(r.Context(), id, &req)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, followUp)
}

// CompleteFollowUp godoc
// @Summary Complete follow-up
// @Tags Leads
// @Accept json
// @Produce json
// @Param id path string true "Follow-up ID" format(uuid)
// @Param request body domain.CompleteFollowUpRequest false "Outcome"
// @Success 200 {object} domain.FollowUpDTO
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError "Follow-up is already completed"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /follow-ups/{id}/complete [post]
func (h *LeadHandler) CompleteFollowUp(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "follow-up")
	if !ok {
		return
	}

	var req domain.CompleteFollowUpRequest
	if !decodeOptional(w, r, &req) {
		return
	}

	followUp, err := h.leadService.CompleteFollowUp(r.Context(), id, &req)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, followUp)
}
