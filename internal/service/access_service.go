package service

import (
	"context"
	"encoding/json"
	"time"

	"backend/internal/apperror"
	"backend/internal/logging"
	"backend/internal/model"
	"backend/internal/repository"
	"backend/internal/websocket"
)

// --- DTOs ---

type CreateRoleRequest struct {
	RoleName    string `json:"roleName" binding:"required"`
	Description string `json:"description"`
}

type CreatePermissionRequest struct {
	PermissionName string `json:"permissionName" binding:"required"`
	EndPoint       string `json:"endPoint"`
	Description    string `json:"description"`
}

type RoleResponse struct {
	ID          uint   `json:"id"`
	RoleName    string `json:"roleName"`
	Description string `json:"description,omitempty"`
	CreatedAt   string `json:"createdAt"`
}

type PermissionResponse struct {
	ID             uint   `json:"id"`
	PermissionName string `json:"permissionName"`
	EndPoint       string `json:"endPoint,omitempty"`
	Description    string `json:"description,omitempty"`
}

// AccessService is the role/permission graph: role and permission
// provisioning plus the idempotent assign/revoke operations on the two join
// relations.
type AccessService interface {
	CreateRole(ctx context.Context, req CreateRoleRequest, actor string) (*RoleResponse, error)
	CreatePermission(ctx context.Context, req CreatePermissionRequest, actor string) (*PermissionResponse, error)
	ListRoles(ctx context.Context) ([]RoleResponse, error)
	ListPermissions(ctx context.Context) ([]PermissionResponse, error)

	AssignRoleToUser(ctx context.Context, userID, roleID uint, actor string) error
	RevokeRoleFromUser(ctx context.Context, userID, roleID uint, actor string) error
	GrantPermissionToRole(ctx context.Context, roleID, permissionID uint, actor string) error
	RevokePermissionFromRole(ctx context.Context, roleID, permissionID uint, actor string) error

	RolesOfUser(ctx context.Context, userID uint) ([]RoleResponse, error)
	PermissionsOfRole(ctx context.Context, roleID uint) ([]PermissionResponse, error)
}

type accessService struct {
	repo      repository.GrantRepository
	userRepo  repository.UserRepository
	auditRepo repository.AuditRepository
	txManager repository.TransactionManager
	logs      *logging.Loggers
	hub       *websocket.Hub
}

// NewAccessService returns a new instance of AccessService
func NewAccessService(
	repo repository.GrantRepository,
	userRepo repository.UserRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	logs *logging.Loggers,
	hub *websocket.Hub,
) AccessService {
	return &accessService{
		repo:      repo,
		userRepo:  userRepo,
		auditRepo: auditRepo,
		txManager: txManager,
		logs:      logs,
		hub:       hub,
	}
}

func mapRoleToResponse(r *model.AppRole) *RoleResponse {
	return &RoleResponse{
		ID:          r.ID,
		RoleName:    r.RoleName,
		Description: r.Description,
		CreatedAt:   r.CreatedAt.Format(time.RFC3339),
	}
}

func mapPermissionToResponse(p *model.AppPermission) *PermissionResponse {
	return &PermissionResponse{
		ID:             p.ID,
		PermissionName: p.PermissionName,
		EndPoint:       p.EndPoint,
		Description:    p.Description,
	}
}

// notify pushes an access-control change to connected admin clients and the
// actions log. Best effort; the mutation has already committed.
func (s *accessService) notify(action, actor string, fields map[string]interface{}) {
	event := map[string]interface{}{"type": action, "actor": actor}
	for k, v := range fields {
		event[k] = v
	}
	if payload, err := json.Marshal(event); err == nil && s.hub != nil {
		s.hub.Broadcast <- payload
	}

	e := s.logs.Actions.Info().Str("action", action).Str("actor", actor)
	for k, v := range fields {
		e = e.Interface(k, v)
	}
	e.Msg("access graph changed")
}

func (s *accessService) CreateRole(ctx context.Context, req CreateRoleRequest, actor string) (*RoleResponse, error) {
	if req.RoleName == "" {
		return nil, apperror.Validation("roleName is required")
	}

	// Role names are unique under exact, case-sensitive comparison
	existing, err := s.repo.FindRoleByName(ctx, req.RoleName)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperror.DuplicateKey("role '%s' already exists", req.RoleName)
	}

	role := &model.AppRole{RoleName: req.RoleName, Description: req.Description}
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.CreateRole(txCtx, role); err != nil {
			return err
		}
		return s.auditRepo.Log(txCtx, &model.AuditLog{
			Action:     model.ActionCreateRole,
			EntityID:   uitoa(role.ID),
			EntityName: role.RoleName,
		})
	})
	if err != nil {
		return nil, err
	}

	s.notify(model.ActionCreateRole, actor, map[string]interface{}{"role": role.RoleName})
	return mapRoleToResponse(role), nil
}

func (s *accessService) CreatePermission(ctx context.Context, req CreatePermissionRequest, actor string) (*PermissionResponse, error) {
	if req.PermissionName == "" {
		return nil, apperror.Validation("permissionName is required")
	}

	existing, err := s.repo.FindPermissionByName(ctx, req.PermissionName)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperror.DuplicateKey("permission '%s' already exists", req.PermissionName)
	}

	perm := &model.AppPermission{
		PermissionName: req.PermissionName,
		EndPoint:       req.EndPoint,
		Description:    req.Description,
	}
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.CreatePermission(txCtx, perm); err != nil {
			return err
		}
		return s.auditRepo.Log(txCtx, &model.AuditLog{
			Action:     model.ActionCreatePerm,
			EntityID:   uitoa(perm.ID),
			EntityName: perm.PermissionName,
		})
	})
	if err != nil {
		return nil, err
	}

	s.notify(model.ActionCreatePerm, actor, map[string]interface{}{"permission": perm.PermissionName})
	return mapPermissionToResponse(perm), nil
}

func (s *accessService) ListRoles(ctx context.Context) ([]RoleResponse, error) {
	roles, err := s.repo.ListRoles(ctx)
	if err != nil {
		return nil, err
	}
	res := make([]RoleResponse, 0, len(roles))
	for i := range roles {
		res = append(res, *mapRoleToResponse(&roles[i]))
	}
	return res, nil
}

func (s *accessService) ListPermissions(ctx context.Context) ([]PermissionResponse, error) {
	perms, err := s.repo.ListPermissions(ctx)
	if err != nil {
		return nil, err
	}
	res := make([]PermissionResponse, 0, len(perms))
	for i := range perms {
		res = append(res, *mapPermissionToResponse(&perms[i]))
	}
	return res, nil
}

// requireUser verifies the referenced user entity exists. Only the join row
// may be absent in the idempotent operations, never the entities.
func (s *accessService) requireUser(ctx context.Context, userID uint) error {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return apperror.NotFound("user %d not found", userID)
	}
	return nil
}

func (s *accessService) requireRole(ctx context.Context, roleID uint) (*model.AppRole, error) {
	role, err := s.repo.FindRoleByID(ctx, roleID)
	if err != nil {
		return nil, err
	}
	if role == nil {
		return nil, apperror.NotFound("role %d not found", roleID)
	}
	return role, nil
}

func (s *accessService) requirePermission(ctx context.Context, permissionID uint) (*model.AppPermission, error) {
	perm, err := s.repo.FindPermissionByID(ctx, permissionID)
	if err != nil {
		return nil, err
	}
	if perm == nil {
		return nil, apperror.NotFound("permission %d not found", permissionID)
	}
	return perm, nil
}

func (s *accessService) AssignRoleToUser(ctx context.Context, userID, roleID uint, actor string) error {
	if err := s.requireUser(ctx, userID); err != nil {
		return err
	}
	role, err := s.requireRole(ctx, roleID)
	if err != nil {
		return err
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.AssignRoleToUser(txCtx, userID, roleID); err != nil {
			return err
		}
		return s.auditRepo.Log(txCtx, &model.AuditLog{
			UserID:     &userID,
			Action:     model.ActionAssignRole,
			EntityID:   uitoa(roleID),
			EntityName: role.RoleName,
		})
	})
	if err != nil {
		return err
	}

	s.notify(model.ActionAssignRole, actor, map[string]interface{}{"user_id": userID, "role": role.RoleName})
	return nil
}

func (s *accessService) RevokeRoleFromUser(ctx context.Context, userID, roleID uint, actor string) error {
	if err := s.requireUser(ctx, userID); err != nil {
		return err
	}
	role, err := s.requireRole(ctx, roleID)
	if err != nil {
		return err
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.RevokeRoleFromUser(txCtx, userID, roleID); err != nil {
			return err
		}
		return s.auditRepo.Log(txCtx, &model.AuditLog{
			UserID:     &userID,
			Action:     model.ActionRevokeRole,
			EntityID:   uitoa(roleID),
			EntityName: role.RoleName,
		})
	})
	if err != nil {
		return err
	}

	s.notify(model.ActionRevokeRole, actor, map[string]interface{}{"user_id": userID, "role": role.RoleName})
	return nil
}

func (s *accessService) GrantPermissionToRole(ctx context.Context, roleID, permissionID uint, actor string) error {
	role, err := s.requireRole(ctx, roleID)
	if err != nil {
		return err
	}
	perm, err := s.requirePermission(ctx, permissionID)
	if err != nil {
		return err
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.GrantPermissionToRole(txCtx, roleID, permissionID); err != nil {
			return err
		}
		return s.auditRepo.Log(txCtx, &model.AuditLog{
			Action:     model.ActionGrantPermission,
			EntityID:   uitoa(permissionID),
			EntityName: role.RoleName + " -> " + perm.PermissionName,
		})
	})
	if err != nil {
		return err
	}

	s.notify(model.ActionGrantPermission, actor, map[string]interface{}{"role": role.RoleName, "permission": perm.PermissionName})
	return nil
}

func (s *accessService) RevokePermissionFromRole(ctx context.Context, roleID, permissionID uint, actor string) error {
	role, err := s.requireRole(ctx, roleID)
	if err != nil {
		return err
	}
	perm, err := s.requirePermission(ctx, permissionID)
	if err != nil {
		return err
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.RevokePermissionFromRole(txCtx, roleID, permissionID); err != nil {
			return err
		}
		return s.auditRepo.Log(txCtx, &model.AuditLog{
			Action:     model.ActionRevokePermission,
			EntityID:   uitoa(permissionID),
			EntityName: role.RoleName + " -> " + perm.PermissionName,
		})
	})
	if err != nil {
		return err
	}

	s.notify(model.ActionRevokePermission, actor, map[string]interface{}{"role": role.RoleName, "permission": perm.PermissionName})
	return nil
}

func (s *accessService) RolesOfUser(ctx context.Context, userID uint) ([]RoleResponse, error) {
	roles, err := s.repo.RolesOfUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	res := make([]RoleResponse, 0, len(roles))
	for i := range roles {
		res = append(res, *mapRoleToResponse(&roles[i]))
	}
	return res, nil
}

func (s *accessService) PermissionsOfRole(ctx context.Context, roleID uint) ([]PermissionResponse, error) {
	if _, err := s.requireRole(ctx, roleID); err != nil {
		return nil, err
	}
	perms, err := s.repo.PermissionsOfRole(ctx, roleID)
	if err != nil {
		return nil, err
	}
	res := make([]PermissionResponse, 0, len(perms))
	for i := range perms {
		res = append(res, *mapPermissionToResponse(&perms[i]))
	}
	return res, nil
}
