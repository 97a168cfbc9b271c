package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"form-builder-api/internal/domain"
	"form-builder-api/internal/response"
)

// Context keys set by the auth middleware
const (
	ContextUserID    = "user_id"
	ContextUserEmail = "user_email"
	ContextUserRole  = "user_role"
)

// Auth returns a middleware that validates JWT tokens and stores the
// authenticated identity in the request context
func Auth(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := parseBearerToken(c, jwtSecret)
		if !ok {
			return
		}

		userID, role, ok := identityFromClaims(claims)
		if !ok {
			response.SendError(c, http.StatusUnauthorized, response.ErrCodeUnauthorized, "Invalid token claims")
			c.Abort()
			return
		}

		c.Set(ContextUserID, userID)
		c.Set(ContextUserRole, role)
		if email, ok := claims["email"].(string); ok {
			c.Set(ContextUserEmail, email)
		}

		c.Next()
	}
}

// OptionalAuth attaches the identity when a valid token is present but lets
// anonymous requests through. Used on public submission routes to attribute
// authenticated submissions.
func OptionalAuth(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}

		tokenString, ok := bearerToken(authHeader)
		if !ok {
			c.Next()
			return
		}

		claims, err := validateToken(tokenString, jwtSecret)
		if err != nil {
			c.Next()
			return
		}

		if userID, role, ok := identityFromClaims(claims); ok {
			c.Set(ContextUserID, userID)
			c.Set(ContextUserRole, role)
		}

		c.Next()
	}
}

// parseBearerToken extracts and validates the bearer token, writing the
// error response itself on failure
func parseBearerToken(c *gin.Context, jwtSecret string) (jwt.MapClaims, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		response.SendError(c, http.StatusUnauthorized, response.ErrCodeUnauthorized, "Authorization header is required")
		c.Abort()
		return nil, false
	}

	tokenString, ok := bearerToken(authHeader)
	if !ok {
		response.SendError(c, http.StatusUnauthorized, response.ErrCodeUnauthorized, "Invalid authorization header format")
		c.Abort()
		return nil, false
	}

	claims, err := validateToken(tokenString, jwtSecret)
	if err != nil {
		response.SendError(c, http.StatusUnauthorized, response.ErrCodeUnauthorized, "Invalid or expired token")
		c.Abort()
		return nil, false
	}

	return claims, true
}

func bearerToken(authHeader string) (string, bool) {
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", false
	}
	return parts[1], true
}

func validateToken(tokenString, jwtSecret string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(jwtSecret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

func identityFromClaims(claims jwt.MapClaims) (uuid.UUID, domain.UserRole, bool) {
	userIDStr, ok := claims["user_id"].(string)
	if !ok {
		return uuid.Nil, "", false
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return uuid.Nil, "", false
	}

	role := domain.UserRoleUser
	if roleStr, ok := claims["role"].(string); ok && roleStr == string(domain.UserRoleAdmin) {
		role = domain.UserRoleAdmin
	}

	return userID, role, true
}
