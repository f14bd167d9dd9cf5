package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/curio-learn/profile-service/internal/services"
	"github.com/curio-learn/profile-service/internal/utils"
)

const healthCheckTimeout = 5 * time.Second

type HandlerManager struct {
	services       services.ServiceManager
	adminHandler   *AdminHandler
	userHandler    *UserHandler
	authMiddleware *CasdoorAuthMiddleware
	logger         utils.Logger
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	logger utils.Logger,
	authMiddleware *CasdoorAuthMiddleware,
) *HandlerManager {
	return &HandlerManager{
		services:       serviceManager,
		adminHandler:   NewAdminHandler(serviceManager, logger),
		userHandler:    NewUserHandler(serviceManager.Account(), logger),
		authMiddleware: authMiddleware,
		logger:         logger,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", hm.HealthCheck)

	// Every admin route needs a verified token and a staff account
	adminGroup := router.Group("/admin")
	adminGroup.Use(hm.authMiddleware.AuthMiddleware(), hm.authMiddleware.RequireStaff())
	{
		adminGroup.GET("", hm.adminHandler.Index)
		adminGroup.GET("/me", hm.userHandler.GetCurrentUser)
		adminGroup.GET("/history", hm.adminHandler.History)

		// Accounts
		users := adminGroup.Group("/users")
		{
			users.GET("", hm.userHandler.ListUsers)
			users.GET("/:id", hm.userHandler.GetUser)
			users.DELETE("/:id", hm.userHandler.DeleteUser)
		}

		// Registered models
		models := adminGroup.Group("/:model")
		{
			models.GET("", hm.adminHandler.ChangeList)
			models.POST("", hm.adminHandler.Add)
			models.GET("/export.xlsx", hm.adminHandler.Export)
			models.GET("/:id", hm.adminHandler.Detail)
			models.PUT("/:id", hm.adminHandler.Change)
			models.DELETE("/:id", hm.adminHandler.Delete)
		}
	}
}

// HealthCheck reports database and cache reachability
func (hm *HandlerManager) HealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
	defer cancel()

	if err := hm.services.HealthCheck(ctx); err != nil {
		utils.GetLogger(c, hm.logger).Error("Health check failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":    "unhealthy",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"service":   "profile-service",
			"error":     err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   "profile-service",
	})
}
