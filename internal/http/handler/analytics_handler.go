package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/vitneshimmanuvel/dsqaubackend/internal/service"
)

type AnalyticsHandler struct {
	analyticsService *service.AnalyticsService
	logger           *zap.Logger
}

func NewAnalyticsHandler(analyticsService *service.AnalyticsService, logger *zap.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		analyticsService: analyticsService,
		logger:           logger,
	}
}

// Overview godoc
// @Summary Financial overview
// @Description Income, expenses, profit and margin across all projects or one
// @Tags Analytics
// @Produce json
// @Param projectId query string false "Limit to one project" format(uuid)
// @Success 200 {object} domain.OverviewDTO
// @Failure 400 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /analytics/overview [get]
func (h *AnalyticsHandler) Overview(w http.ResponseWriter, r *http.Request) {
	projectID, err := optionalUUIDQuery(r, "projectId")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	overview, err := h.analyticsService.Overview(r.Context(), projectID)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, overview)
}

// Monthly godoc
// @Summary Monthly trend
// @Description Income and expenses for each month of a year
// @Tags Analytics
// @Produce json
// @Param year query int false "Calendar year, defaults to the current year"
// @Param projectId query string false "Limit to one project" format(uuid)
// @Success 200 {array} domain.MonthTrendDTO
// @Failure 400 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /analytics/monthly [get]
func (h *AnalyticsHandler) Monthly(w http.ResponseWriter, r *http.Request) {
	year, err := optionalIntQuery(r, "year")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	projectID, err := optionalUUIDQuery(r, "projectId")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	months, err := h.analyticsService.Monthly(r.Context(), year, projectID)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, months)
}

// Projects godoc
// @Summary Per-project statistics
// @Tags Analytics
// @Produce json
// @Success 200 {array} domain.ProjectStatDTO
// @Failure 403 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /analytics/projects [get]
func (h *AnalyticsHandler) Projects(w http.ResponseWriter, r *http.Request) {
	stats, err := h.analyticsService.Projects(r.Context())
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

// Expenses godoc
// @Summary Expense breakdown
// @Description Expenses grouped by source and by material type
// @Tags Analytics
// @Produce json
// @Param projectId query string false "Limit to one project" format(uuid)
// @Success 200 {object} domain.ExpenseBreakdownDTO
// @Failure 400 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /analytics/expenses [get]
func (h *AnalyticsHandler) Expenses(w http.ResponseWriter, r *http.Request) {
	projectID, err := optionalUUIDQuery(r, "projectId")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	breakdown, err := h.analyticsService.Expenses(r.Context(), projectID)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, breakdown)
}

// Workforce godoc
// @Summary Weekly workforce
// @Description Worker days and wages for the most recent weeks
// @Tags Analytics
// @Produce json
// @Param weeks query int false "Number of weeks (max 52)" default(8)
// @Param projectId query string false "Limit to one project" format(uuid)
// @Success 200 {array} domain.WorkforceWeekDTO
// @Failure 400 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /analytics/workforce [get]
func (h *AnalyticsHandler) Workforce(w http.ResponseWriter, r *http.Request) {
	weeks, err := optionalIntQuery(r, "weeks")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	projectID, err := optionalUUIDQuery(r, "projectId")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.analyticsService.Workforce(r.Context(), weeks, projectID)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}
