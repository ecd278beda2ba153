package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/vitneshimmanuvel/dsqaubackend/internal/domain"
	"github.com/vitneshimmanuvel/dsqaubackend/internal/service"
)

type AuthHandler struct {
	userService *service.UserService
	catalog     domain.Catalog
	logger      *zap.Logger
}

func NewAuthHandler(userService *service.UserService, catalog domain.Catalog, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		catalog:     catalog,
		logger:      logger,
	}
}

// Me godoc
// @Summary Get current authenticated user
// @Description Returns the account behind the bearer token or the system account for API key callers
// @Tags Auth
// @Produce json
// @Success 200 {object} domain.UserDTO
// @Failure 401 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /auth/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.userService.Me(r.Context())
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

// Catalog godoc
// @Summary Get reference data
// @Description Returns the configured worker categories and project stages
// @Tags Auth
// @Produce json
// @Success 200 {object} domain.CatalogDTO
// @Failure 401 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /catalog [get]
func (h *AuthHandler) Catalog(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, domain.CatalogDTO{
		WorkerCategories: h.catalog.Categories(),
		ProjectStages:    h.catalog.Stages(),
	})
}
