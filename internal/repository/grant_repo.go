package repository

import (
	"context"
	"errors"

	"backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GrantRepository owns the role/permission graph: the AppRole and
// AppPermission entities plus the two join relations. Join rows are never
// exposed raw; callers only get assign/revoke/query.
type GrantRepository interface {
	CreateRole(ctx context.Context, role *model.AppRole) error
	FindRoleByID(ctx context.Context, id uint) (*model.AppRole, error)
	FindRoleByName(ctx context.Context, name string) (*model.AppRole, error)
	ListRoles(ctx context.Context) ([]model.AppRole, error)

	CreatePermission(ctx context.Context, perm *model.AppPermission) error
	FindPermissionByID(ctx context.Context, id uint) (*model.AppPermission, error)
	FindPermissionByName(ctx context.Context, name string) (*model.AppPermission, error)
	ListPermissions(ctx context.Context) ([]model.AppPermission, error)

	// Join mutations are idempotent: assigning an existing pair or revoking
	// an absent one is a no-op, which makes concurrent calls converge.
	AssignRoleToUser(ctx context.Context, userID, roleID uint) error
	RevokeRoleFromUser(ctx context.Context, userID, roleID uint) error
	GrantPermissionToRole(ctx context.Context, roleID, permissionID uint) error
	RevokePermissionFromRole(ctx context.Context, roleID, permissionID uint) error

	RolesOfUser(ctx context.Context, userID uint) ([]model.AppRole, error)
	PermissionsOfRole(ctx context.Context, roleID uint) ([]model.AppPermission, error)
}

type grantRepository struct {
	db *gorm.DB
}

// NewGrantRepository returns a new instance of GrantRepository
func NewGrantRepository(db *gorm.DB) GrantRepository {
	return &grantRepository{db: db}
}

func (r *grantRepository) CreateRole(ctx context.Context, role *model.AppRole) error {
	return GetDB(ctx, r.db).Create(role).Error
}

func (r *grantRepository) FindRoleByID(ctx context.Context, id uint) (*model.AppRole, error) {
	var role model.AppRole
	if err := GetDB(ctx, r.db).First(&role, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &role, nil
}

func (r *grantRepository) FindRoleByName(ctx context.Context, name string) (*model.AppRole, error) {
	var role model.AppRole
	if err := GetDB(ctx, r.db).First(&role, "\"roleName\" = ?", name).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &role, nil
}

func (r *grantRepository) ListRoles(ctx context.Context) ([]model.AppRole, error) {
	var roles []model.AppRole
	if err := GetDB(ctx, r.db).Order("id asc").Find(&roles).Error; err != nil {
		return nil, err
	}
	return roles, nil
}

func (r *grantRepository) CreatePermission(ctx context.Context, perm *model.AppPermission) error {
	return GetDB(ctx, r.db).Create(perm).Error
}

func (r *grantRepository) FindPermissionByID(ctx context.Context, id uint) (*model.AppPermission, error) {
	var perm model.AppPermission
	if err := GetDB(ctx, r.db).First(&perm, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &perm, nil
}

func (r *grantRepository) FindPermissionByName(ctx context.Context, name string) (*model.AppPermission, error) {
	var perm model.AppPermission
	if err := GetDB(ctx, r.db).First(&perm, "\"permissionName\" = ?", name).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &perm, nil
}

func (r *grantRepository) ListPermissions(ctx context.Context) ([]model.AppPermission, error) {
	var perms []model.AppPermission
	if err := GetDB(ctx, r.db).Order("id asc").Find(&perms).Error; err != nil {
		return nil, err
	}
	return perms, nil
}

func (r *grantRepository) AssignRoleToUser(ctx context.Context, userID, roleID uint) error {
	row := model.UserRole{UserID: userID, RoleID: roleID}
	return GetDB(ctx, r.db).Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error
}

func (r *grantRepository) RevokeRoleFromUser(ctx context.Context, userID, roleID uint) error {
	return GetDB(ctx, r.db).
		Where("user_id = ? AND role_id = ?", userID, roleID).
		Delete(&model.UserRole{}).Error
}

func (r *grantRepository) GrantPermissionToRole(ctx context.Context, roleID, permissionID uint) error {
	row := model.RolePermission{RoleID: roleID, PermissionID: permissionID}
	return GetDB(ctx, r.db).Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error
}

func (r *grantRepository) RevokePermissionFromRole(ctx context.Context, roleID, permissionID uint) error {
	return GetDB(ctx, r.db).
		Where("role_id = ? AND permission_id = ?", roleID, permissionID).
		Delete(&model.RolePermission{}).Error
}

func (r *grantRepository) RolesOfUser(ctx context.Context, userID uint) ([]model.AppRole, error) {
	var roles []model.AppRole
	err := GetDB(ctx, r.db).
		Joins("JOIN \"_userRole\" ur ON ur.role_id = \"AppRole\".id").
		Where("ur.user_id = ?", userID).
		Find(&roles).Error
	if err != nil {
		return nil, err
	}
	return roles, nil
}

func (r *grantRepository) PermissionsOfRole(ctx context.Context, roleID uint) ([]model.AppPermission, error) {
	var perms []model.AppPermission
	err := GetDB(ctx, r.db).
		Joins("JOIN \"_rolePermission\" rp ON rp.permission_id = \"AppPermission\".id").
		Where("rp.role_id = ?", roleID).
		Find(&perms).Error
	if err != nil {
		return nil, err
	}
	return perms, nil
}
