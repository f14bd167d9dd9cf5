package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/curio-learn/profile-service/internal/services"
	"github.com/curio-learn/profile-service/internal/utils"
)

// UserHandler administers local accounts
type UserHandler struct {
	BaseHandler
	accounts services.AccountService
}

func NewUserHandler(accounts services.AccountService, logger utils.Logger) *UserHandler {
	return &UserHandler{
		BaseHandler: NewBaseHandler(logger),
		accounts:    accounts,
	}
}

// ListUsers lists accounts with optional search
// @Summary List accounts
// @Description Get a paginated list of accounts, searched on username and email
// @Tags users
// @Produce json
// @Param q query string false "Search query (username or email)"
// @Param page query int false "Page number (default: 1)"
// @Param per_page query int false "Page size (default: 50, max: 500)"
// @Success 200 {object} services.AccountListResponse
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /admin/users [get]
func (h *UserHandler) ListUsers(c *gin.Context) {
	query := c.Query("q")
	h.LogRequest(c, "Listing users", "query", query)

	page := h.parseIntQuery(c, "page", 1)
	perPage := h.parseIntQuery(c, "per_page", 0)

	users, err := h.accounts.List(c.Request.Context(), query, page, perPage)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, users)
}

// GetUser gets an account by ID
// @Summary Get account
// @Tags users
// @Produce json
// @Param id path uint true "Account ID"
// @Success 200 {object} models.User
// @Failure 404 {object} ErrorResponse "User not found"
// @Router /admin/users/{id} [get]
func (h *UserHandler) GetUser(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Getting user", "user_id", id)

	user, err := h.accounts.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// DeleteUser deletes an account together with its profile and student data
// @Summary Delete account
// @Tags users
// @Produce json
// @Param id path uint true "Account ID"
// @Success 200 {object} SuccessResponse
// @Failure 403 {object} ErrorResponse "Cannot delete own account"
// @Failure 404 {object} ErrorResponse "User not found"
// @Router /admin/users/{id} [delete]
func (h *UserHandler) DeleteUser(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	actor := h.currentUser(c)
	if actor == nil {
		return
	}

	h.LogRequest(c, "Deleting user", "user_id", id)

	if err := h.accounts.Delete(c.Request.Context(), id, actor.ID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "User deleted successfully",
	})
}

// GetCurrentUser returns the authenticated account
// @Summary Current account
// @Tags users
// @Produce json
// @Success 200 {object} models.User
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Router /admin/me [get]
func (h *UserHandler) GetCurrentUser(c *gin.Context) {
	user := h.currentUser(c)
	if user == nil {
		return
	}

	c.JSON(http.StatusOK, user)
}
