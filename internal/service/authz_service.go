package service

import (
	"context"
	"sort"

	"backend/internal/model"
	"backend/internal/repository"
)

// AuthzService answers "is permission P granted to user U" by walking the
// user→role→permission graph. Results are always computed from current store
// state; there is no cache to invalidate. Unknown principals resolve to the
// empty permission set — fail closed, never an error.
type AuthzService interface {
	PermissionsOfUser(ctx context.Context, userID uint) ([]PermissionResponse, error)
	HasPermission(ctx context.Context, userID uint, permissionName string) (bool, error)
	HasAnyRole(ctx context.Context, userID uint, roleNames ...string) (bool, error)
	HasAllRoles(ctx context.Context, userID uint, roleNames ...string) (bool, error)
}

type authzService struct {
	repo repository.GrantRepository
}

// NewAuthzService returns a new instance of AuthzService
func NewAuthzService(repo repository.GrantRepository) AuthzService {
	return &authzService{repo: repo}
}

// permissionSet expands the user's roles to the union of their permissions.
// Set semantics: a permission reachable through several roles appears once.
func (s *authzService) permissionSet(ctx context.Context, userID uint) (map[uint]model.AppPermission, error) {
	roles, err := s.repo.RolesOfUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	set := make(map[uint]model.AppPermission)
	for _, role := range roles {
		perms, err := s.repo.PermissionsOfRole(ctx, role.ID)
		if err != nil {
			return nil, err
		}
		for _, p := range perms {
			set[p.ID] = p
		}
	}
	return set, nil
}

func (s *authzService) PermissionsOfUser(ctx context.Context, userID uint) ([]PermissionResponse, error) {
	set, err := s.permissionSet(ctx, userID)
	if err != nil {
		return nil, err
	}

	res := make([]PermissionResponse, 0, len(set))
	for _, p := range set {
		res = append(res, *mapPermissionToResponse(&p))
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res, nil
}

func (s *authzService) HasPermission(ctx context.Context, userID uint, permissionName string) (bool, error) {
	set, err := s.permissionSet(ctx, userID)
	if err != nil {
		return false, err
	}
	for _, p := range set {
		// Exact match, consistent with the permission uniqueness rule
		if p.PermissionName == permissionName {
			return true, nil
		}
	}
	return false, nil
}

func (s *authzService) HasAnyRole(ctx context.Context, userID uint, roleNames ...string) (bool, error) {
	held, err := s.heldRoleNames(ctx, userID)
	if err != nil {
		return false, err
	}
	for _, name := range roleNames {
		if held[name] {
			return true, nil
		}
	}
	return false, nil
}

func (s *authzService) HasAllRoles(ctx context.Context, userID uint, roleNames ...string) (bool, error) {
	held, err := s.heldRoleNames(ctx, userID)
	if err != nil {
		return false, err
	}
	for _, name := range roleNames {
		if !held[name] {
			return false, nil
		}
	}
	return true, nil
}

func (s *authzService) heldRoleNames(ctx context.Context, userID uint) (map[string]bool, error) {
	roles, err := s.repo.RolesOfUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	held := make(map[string]bool, len(roles))
	for _, r := range roles {
		held[r.RoleName] = true
	}
	return held, nil
}
