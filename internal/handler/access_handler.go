package handler

import (
	"net/http"
	"strconv"

	"backend/internal/middleware"
	"backend/internal/service"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type AccessHandler struct {
	accessService service.AccessService
	authzService  service.AuthzService
	auth          *middleware.AuthMiddleware
}

func NewAccessHandler(accessService service.AccessService, authzService service.AuthzService, auth *middleware.AuthMiddleware) *AccessHandler {
	return &AccessHandler{accessService: accessService, authzService: authzService, auth: auth}
}

func (h *AccessHandler) RegisterRoutes(router *gin.RouterGroup) {
	roles := router.Group("/api/roles")
	roles.Use(h.auth.RequirePermission("roles.manage"))
	{
		roles.GET("", h.ListRoles)
		roles.POST("", h.CreateRole)
		roles.GET("/:id/permissions", h.ListRolePermissions)
		roles.PUT("/:id/permissions/:permId", h.GrantPermission)
		roles.DELETE("/:id/permissions/:permId", h.RevokePermission)
	}

	perms := router.Group("/api/permissions")
	perms.Use(h.auth.RequirePermission("roles.manage"))
	{
		perms.GET("", h.ListPermissions)
		perms.POST("", h.CreatePermission)
	}

	userAccess := router.Group("/api/users/:id")
	userAccess.Use(h.auth.RequirePermission("roles.manage"))
	{
		userAccess.GET("/roles", h.ListUserRoles)
		userAccess.GET("/permissions", h.ListUserPermissions)
		userAccess.PUT("/roles/:roleId", h.AssignRole)
		userAccess.DELETE("/roles/:roleId", h.RevokeRole)
	}
}

func parseUintParam(c *gin.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid "+name))
		return 0, false
	}
	return uint(v), true
}

// CreateRole handles POST /api/roles
// @Summary      Create a role
// @Tags         access
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateRoleRequest  true  "Create Role Payload"
// @Success      201      {object}  response.Response{data=service.RoleResponse}
// @Failure      409      {object}  response.Response
// @Router       /api/roles [post]
func (h *AccessHandler) CreateRole(c *gin.Context) {
	var req service.CreateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	role, err := h.accessService.CreateRole(c.Request.Context(), req, c.GetString("username"))
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, role))
}

// CreatePermission handles POST /api/permissions
// @Summary      Create a permission
// @Tags         access
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreatePermissionRequest  true  "Create Permission Payload"
// @Success      201      {object}  response.Response{data=service.PermissionResponse}
// @Failure      409      {object}  response.Response
// @Router       /api/permissions [post]
func (h *AccessHandler) CreatePermission(c *gin.Context) {
	var req service.CreatePermissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	perm, err := h.accessService.CreatePermission(c.Request.Context(), req, c.GetString("username"))
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, perm))
}

// ListRoles handles GET /api/roles
// @Summary      List roles
// @Tags         access
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]service.RoleResponse}
// @Router       /api/roles [get]
func (h *AccessHandler) ListRoles(c *gin.Context) {
	roles, err := h.accessService.ListRoles(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, roles))
}

// ListPermissions handles GET /api/permissions
// @Summary      List permissions
// @Tags         access
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]service.PermissionResponse}
// @Router       /api/permissions [get]
func (h *AccessHandler) ListPermissions(c *gin.Context) {
	perms, err := h.accessService.ListPermissions(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, perms))
}

// ListRolePermissions handles GET /api/roles/:id/permissions
// @Summary      List the permissions granted to a role
// @Tags         access
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Role ID"
// @Success      200  {object}  response.Response{data=[]service.PermissionResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/roles/{id}/permissions [get]
func (h *AccessHandler) ListRolePermissions(c *gin.Context) {
	roleID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	perms, err := h.accessService.PermissionsOfRole(c.Request.Context(), roleID)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, perms))
}

// GrantPermission handles PUT /api/roles/:id/permissions/:permId
// @Summary      Grant a permission to a role (idempotent)
// @Tags         access
// @Produce      json
// @Security     BearerAuth
// @Param        id      path      int  true  "Role ID"
// @Param        permId  path      int  true  "Permission ID"
// @Success      204     "No Content"
// @Failure      404     {object}  response.Response
// @Router       /api/roles/{id}/permissions/{permId} [put]
func (h *AccessHandler) GrantPermission(c *gin.Context) {
	roleID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	permID, ok := parseUintParam(c, "permId")
	if !ok {
		return
	}

	if err := h.accessService.GrantPermissionToRole(c.Request.Context(), roleID, permID, c.GetString("username")); err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.Status(http.StatusNoContent)
}

// RevokePermission handles DELETE /api/roles/:id/permissions/:permId
// @Summary      Revoke a permission from a role (idempotent)
// @Tags         access
// @Produce      json
// @Security     BearerAuth
// @Param        id      path      int  true  "Role ID"
// @Param        permId  path      int  true  "Permission ID"
// @Success      204     "No Content"
// @Failure      404     {object}  response.Response
// @Router       /api/roles/{id}/permissions/{permId} [delete]
func (h *AccessHandler) RevokePermission(c *gin.Context) {
	roleID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	permID, ok := parseUintParam(c, "permId")
	if !ok {
		return
	}

	if err := h.accessService.RevokePermissionFromRole(c.Request.Context(), roleID, permID, c.GetString("username")); err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.Status(http.StatusNoContent)
}

// AssignRole handles PUT /api/users/:id/roles/:roleId
// @Summary      Assign a role to a user (idempotent)
// @Tags         access
// @Produce      json
// @Security     BearerAuth
// @Param        id      path      int  true  "User ID"
// @Param        roleId  path      int  true  "Role ID"
// @Success      204     "No Content"
// @Failure      404     {object}  response.Response
// @Router       /api/users/{id}/roles/{roleId} [put]
func (h *AccessHandler) AssignRole(c *gin.Context) {
	userID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	roleID, ok := parseUintParam(c, "roleId")
	if !ok {
		return
	}

	if err := h.accessService.AssignRoleToUser(c.Request.Context(), userID, roleID, c.GetString("username")); err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.Status(http.StatusNoContent)
}

// RevokeRole handles DELETE /api/users/:id/roles/:roleId
// @Summary      Revoke a role from a user (idempotent)
// @Tags         access
// @Produce      json
// @Security     BearerAuth
// @Param        id      path      int  true  "User ID"
// @Param        roleId  path      int  true  "Role ID"
// @Success      204     "No Content"
// @Failure      404     {object}  response.Response
// @Router       /api/users/{id}/roles/{roleId} [delete]
func (h *AccessHandler) RevokeRole(c *gin.Context) {
	userID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	roleID, ok := parseUintParam(c, "roleId")
	if !ok {
		return
	}

	if err := h.accessService.RevokeRoleFromUser(c.Request.Context(), userID, roleID, c.GetString("username")); err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.Status(http.StatusNoContent)
}

// ListUserRoles handles GET /api/users/:id/roles
// @Summary      List the roles held by a user
// @Tags         access
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "User ID"
// @Success      200  {object}  response.Response{data=[]service.RoleResponse}
// @Router       /api/users/{id}/roles [get]
func (h *AccessHandler) ListUserRoles(c *gin.Context) {
	userID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	roles, err := h.accessService.RolesOfUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, roles))
}

// ListUserPermissions handles GET /api/users/:id/permissions
// @Summary      List the effective permissions of a user
// @Description  The transitive set reachable through the user's roles
// @Tags         access
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "User ID"
// @Success      200  {object}  response.Response{data=[]service.PermissionResponse}
// @Router       /api/users/{id}/permissions [get]
func (h *AccessHandler) ListUserPermissions(c *gin.Context) {
	userID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	perms, err := h.authzService.PermissionsOfUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, perms))
}
