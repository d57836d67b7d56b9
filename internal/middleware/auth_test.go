package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"backend/internal/model"
	"backend/internal/repository"
	"backend/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testSecret = []byte("middleware-test-secret")

func newAuthzFixture(t *testing.T) (*gorm.DB, service.AuthzService) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&model.Customer{},
		&model.AppUser{},
		&model.AppRole{},
		&model.AppPermission{},
		&model.UserRole{},
		&model.RolePermission{},
	))

	return db, service.NewAuthzService(repository.NewGrantRepository(db))
}

// seedGrant wires user -> role -> permission directly in the store
func seedGrant(t *testing.T, db *gorm.DB, userID uint, permissionName string) {
	t.Helper()

	role := model.AppRole{RoleName: "Fixture-" + permissionName}
	require.NoError(t, db.Create(&role).Error)
	perm := model.AppPermission{PermissionName: permissionName}
	require.NoError(t, db.Create(&perm).Error)
	require.NoError(t, db.Create(&model.UserRole{UserID: userID, RoleID: role.ID}).Error)
	require.NoError(t, db.Create(&model.RolePermission{RoleID: role.ID, PermissionID: perm.ID}).Error)
}

func signToken(t *testing.T, userID uint) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":      strconv.FormatUint(uint64(userID), 10),
		"username": "tester",
		"exp":      time.Now().Add(time.Minute).Unix(),
	})
	signed, err := token.SignedString(testSecret)
	require.NoError(t, err)
	return signed
}

func newProtectedRouter(authz service.AuthzService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	auth := NewAuthMiddleware(testSecret, authz)

	router := gin.New()
	router.GET("/protected", auth.RequirePermission("customers.read"), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	router.GET("/identified", auth.Authenticate(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": c.GetUint("userID")})
	})
	return router
}

func TestRequirePermissionRejectsMissingToken(t *testing.T) {
	_, authz := newAuthzFixture(t)
	router := newProtectedRouter(authz)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequirePermissionRejectsBadToken(t *testing.T) {
	_, authz := newAuthzFixture(t)
	router := newProtectedRouter(authz)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequirePermissionDeniesWithoutGrant(t *testing.T) {
	_, authz := newAuthzFixture(t)
	router := newProtectedRouter(authz)

	// Valid token, but the graph holds nothing for this user
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, 7))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequirePermissionAllowsGrantedUser(t *testing.T) {
	db, authz := newAuthzFixture(t)
	router := newProtectedRouter(authz)
	seedGrant(t, db, 7, "customers.read")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, 7))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthenticateAcceptsCookie(t *testing.T) {
	_, authz := newAuthzFixture(t)
	router := newProtectedRouter(authz)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/identified", nil)
	req.AddCookie(&http.Cookie{Name: "access_token", Value: signToken(t, 42)})
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "42")
}

func TestRequirePermissionRevocationTakesImmediateEffect(t *testing.T) {
	db, authz := newAuthzFixture(t)
	router := newProtectedRouter(authz)
	seedGrant(t, db, 7, "customers.read")

	token := signToken(t, 7)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	// Drop the assignment; the very same token must now be refused
	require.NoError(t, db.Where("user_id = ?", 7).Delete(&model.UserRole{}).Error)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
