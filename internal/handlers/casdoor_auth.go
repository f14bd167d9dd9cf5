package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/gin-gonic/gin"

	"github.com/curio-learn/profile-service/internal/config"
	"github.com/curio-learn/profile-service/internal/models"
	"github.com/curio-learn/profile-service/internal/services"
	"github.com/curio-learn/profile-service/internal/utils"
)

// TokenVerifier verifies a bearer token and returns its claims.
// *casdoorsdk.Client satisfies it.
type TokenVerifier interface {
	ParseJwtToken(token string) (*casdoorsdk.Claims, error)
}

// CasdoorAuthMiddleware provides authentication using Casdoor SDK
type CasdoorAuthMiddleware struct {
	verifier TokenVerifier
	accounts services.AccountService
	logger   utils.Logger
}

// NewCasdoorAuthMiddleware creates a new Casdoor authentication middleware
func NewCasdoorAuthMiddleware(cfg config.CasdoorConfig, accounts services.AccountService, logger utils.Logger) *CasdoorAuthMiddleware {
	client := casdoorsdk.NewClient(
		cfg.Endpoint,
		cfg.ClientID,
		cfg.ClientSecret,
		cfg.Cert,
		cfg.Organization,
		cfg.Application,
	)

	return NewAuthMiddleware(client, accounts, logger)
}

// NewAuthMiddleware builds the middleware around any verifier
func NewAuthMiddleware(verifier TokenVerifier, accounts services.AccountService, logger utils.Logger) *CasdoorAuthMiddleware {
	return &CasdoorAuthMiddleware{
		verifier: verifier,
		accounts: accounts,
		logger:   logger,
	}
}

// AuthMiddleware verifies the bearer token and provisions the local account
func (cam *CasdoorAuthMiddleware) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, "authorization header missing")
			return
		}

		tokenParts := strings.Fields(authHeader)
		if len(tokenParts) != 2 || !strings.EqualFold(tokenParts[0], "bearer") {
			abortUnauthorized(c, "invalid authorization header format")
			return
		}

		claims, err := cam.verifier.ParseJwtToken(tokenParts[1])
		if err != nil {
			abortUnauthorized(c, fmt.Sprintf("invalid token: %v", err))
			return
		}

		identity, err := identityFromClaims(claims)
		if err != nil {
			abortUnauthorized(c, err.Error())
			return
		}

		user, err := cam.accounts.Provision(c.Request.Context(), identity)
		if err != nil {
			utils.GetLogger(c, cam.logger).Error("Failed to provision account", "external_id", identity.ExternalID, "error", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
				Message: "Failed to resolve account",
			})
			return
		}

		if !user.IsActive {
			c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{
				Message: "Account is inactive",
			})
			return
		}

		c.Set("user_id", user.ID)
		c.Set("user", user)
		c.Set("user_role", user.Role())
		c.Set("user_email", user.Email)

		c.Next()
	}
}

// RequireStaff rejects accounts without admin access
func (cam *CasdoorAuthMiddleware) RequireStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := GetUserFromContext(c)
		if err != nil {
			abortUnauthorized(c, err.Error())
			return
		}

		if !user.IsStaff {
			c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{
				Message: "Access denied",
				Details: "staff access required",
			})
			return
		}

		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, details string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
		Message: "Unauthorized",
		Details: details,
	})
}

// identityFromClaims maps Casdoor claims to an identity. Casdoor admins and
// users of type "admin" become staff.
func identityFromClaims(claims *casdoorsdk.Claims) (*services.Identity, error) {
	if claims == nil {
		return nil, fmt.Errorf("empty token claims")
	}

	externalID := claims.User.Id
	if externalID == "" {
		return nil, fmt.Errorf("invalid user ID in token")
	}

	username := claims.User.Name
	if username == "" {
		username = externalID
	}

	return &services.Identity{
		ExternalID: externalID,
		Username:   username,
		Email:      claims.User.Email,
		IsAdmin:    claims.User.IsAdmin || strings.EqualFold(claims.User.Type, "admin"),
	}, nil
}

// GetUserFromContext extracts user from Gin context
func GetUserFromContext(c *gin.Context) (*models.User, error) {
	user, exists := c.Get("user")
	if !exists {
		return nil, fmt.Errorf("user not found in context")
	}

	userModel, ok := user.(*models.User)
	if !ok {
		return nil, fmt.Errorf("invalid user type in context")
	}

	return userModel, nil
}

// GetUserIDFromContext extracts user ID from Gin context
func GetUserIDFromContext(c *gin.Context) (uint, error) {
	userID, exists := c.Get("user_id")
	if !exists {
		return 0, fmt.Errorf("user ID not found in context")
	}

	id, ok := userID.(uint)
	if !ok {
		return 0, fmt.Errorf("invalid user ID type in context")
	}

	return id, nil
}
