package middleware

import (
	"net/http"
	"os"
	"strconv"
	"strings"

	"backend/internal/service"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// AuthMiddleware validates access tokens and gates routes on resolved
// permissions. Authorization decisions always come from the role/permission
// graph at request time, never from claims baked into the token.
type AuthMiddleware struct {
	secret []byte
	authz  service.AuthzService
}

func NewAuthMiddleware(secret []byte, authz service.AuthzService) *AuthMiddleware {
	return &AuthMiddleware{secret: secret, authz: authz}
}

// SetTokenCookie sets the access_token as an HttpOnly cookie
func SetTokenCookie(c *gin.Context, accessToken string, maxAge int) {
	// Production (cross-origin): SameSiteNoneMode + Secure=true
	// Development (same-site):   SameSiteLaxMode  + Secure=false
	sameSite := http.SameSiteLaxMode
	secure := false
	if os.Getenv("GIN_MODE") == "release" {
		sameSite = http.SameSiteNoneMode
		secure = true
	}

	c.SetSameSite(sameSite)
	c.SetCookie("access_token", accessToken, maxAge, "/", "", secure, true)
}

// ClearTokenCookie removes the access_token cookie
func ClearTokenCookie(c *gin.Context) {
	sameSite := http.SameSiteLaxMode
	secure := false
	if os.Getenv("GIN_MODE") == "release" {
		sameSite = http.SameSiteNoneMode
		secure = true
	}

	c.SetSameSite(sameSite)
	c.SetCookie("access_token", "", -1, "/", "", secure, true)
}

// authenticate parses the token from cookie or Authorization header and
// returns the authenticated user id. Aborts the request on failure.
func (m *AuthMiddleware) authenticate(c *gin.Context) (uint, bool) {
	// Try cookie first, fallback to Authorization header
	tokenString, cookieErr := c.Cookie("access_token")
	if cookieErr != nil || tokenString == "" {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Authorization is missing"))
			return 0, false
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid authorization format. Expected 'Bearer <token>'"))
			return 0, false
		}
		tokenString = parts[1]
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid token"))
		return 0, false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid token claims"))
		return 0, false
	}

	sub, _ := claims["sub"].(string)
	userID, convErr := strconv.ParseUint(sub, 10, 64)
	if convErr != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid subject claim"))
		return 0, false
	}

	c.Set("userID", uint(userID))
	if username, ok := claims["username"].(string); ok {
		c.Set("username", username)
	}
	return uint(userID), true
}

// Authenticate only verifies the token, without a permission check
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := m.authenticate(c); !ok {
			return
		}
		c.Next()
	}
}

// RequirePermission verifies the token and resolves the named permission
// through the user's roles. An unknown principal simply lacks every
// permission, so the request is denied rather than erroring out.
func (m *AuthMiddleware) RequirePermission(permissionName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := m.authenticate(c)
		if !ok {
			return
		}

		granted, err := m.authz.HasPermission(c.Request.Context(), userID, permissionName)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Authorization check failed"))
			return
		}
		if !granted {
			c.AbortWithStatusJSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Access denied: insufficient permissions"))
			return
		}

		c.Next()
	}
}

// RequireAnyRole verifies the token and checks the user holds at least one
// of the given roles
func (m *AuthMiddleware) RequireAnyRole(roleNames ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := m.authenticate(c)
		if !ok {
			return
		}

		held, err := m.authz.HasAnyRole(c.Request.Context(), userID, roleNames...)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Authorization check failed"))
			return
		}
		if !held {
			c.AbortWithStatusJSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Access denied: insufficient role"))
			return
		}

		c.Next()
	}
}
