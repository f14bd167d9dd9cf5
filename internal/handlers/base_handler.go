package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/curio-learn/profile-service/internal/admin"
	"github.com/curio-learn/profile-service/internal/models"
	"github.com/curio-learn/profile-service/internal/repositories"
	"github.com/curio-learn/profile-service/internal/services"
	"github.com/curio-learn/profile-service/internal/utils"
	"github.com/curio-learn/profile-service/internal/validator"
)

// ErrorResponse is the JSON body of every failed request
type ErrorResponse struct {
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// BaseHandler carries the logger and the helpers shared by all handlers
type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

// LogRequest logs an incoming operation with the request-scoped logger
func (h *BaseHandler) LogRequest(c *gin.Context, msg string, args ...any) {
	utils.GetLogger(c, h.logger).Info(msg, args...)
}

func (h *BaseHandler) LogError(c *gin.Context, err error, msg string, args ...any) {
	args = append(args, "error", err)
	utils.GetLogger(c, h.logger).Error(msg, args...)
}

// parseIDParam reads a positive numeric path parameter. On failure it
// writes a 400 and returns 0.
func (h *BaseHandler) parseIDParam(c *gin.Context, param string) uint {
	raw := c.Param(param)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid " + param,
			Details: raw,
		})
		return 0
	}
	return uint(id)
}

func (h *BaseHandler) parseIntQuery(c *gin.Context, param string, defaultValue int) int {
	valueStr := c.Query(param)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func (h *BaseHandler) parseUintQueryPtr(c *gin.Context, param string) *uint {
	valueStr := c.Query(param)
	if valueStr == "" {
		return nil
	}
	value, err := strconv.ParseUint(valueStr, 10, 64)
	if err != nil {
		return nil
	}
	v := uint(value)
	return &v
}

// currentUser returns the account set by the auth middleware. It writes a
// 401 and returns nil when there is none.
func (h *BaseHandler) currentUser(c *gin.Context) *models.User {
	user, err := GetUserFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
		})
		return nil
	}
	return user
}

// handleServiceError maps service and repository errors to HTTP responses
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	var fieldErrs validator.ValidationErrors

	switch {
	case errors.As(err, &fieldErrs):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: fieldErrs,
		})
	case errors.Is(err, services.ErrValidationFailed), errors.Is(err, repositories.ErrInvalidLookup):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request",
			Details: err.Error(),
		})
	case errors.Is(err, services.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "Unauthorized",
		})
	case errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, ErrorResponse{
			Message: "Access denied",
			Details: err.Error(),
		})
	case errors.Is(err, services.ErrNotFound), errors.Is(err, admin.ErrModelNotRegistered):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "Resource not found",
			Details: err.Error(),
		})
	case errors.Is(err, services.ErrAlreadyExists):
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: "Resource already exists",
			Details: err.Error(),
		})
	default:
		h.LogError(c, err, "Unhandled service error")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "Internal server error",
		})
	}
}
