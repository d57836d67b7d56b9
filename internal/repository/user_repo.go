package repository

import (
	"context"
	"errors"

	"backend/internal/model"

	"gorm.io/gorm"
)

// publicUserColumns is the default projection for user reads. The password
// column is deliberately absent; only GetByUsernameWithCredentials selects it.
var publicUserColumns = []string{
	"user_id", "customer_id", "username", "first_name", "last_name", "created_at", "updated_at",
}

// UserRepository defines the interface for data access of AppUser entities
type UserRepository interface {
	Create(ctx context.Context, user *model.AppUser) error
	GetByID(ctx context.Context, id uint) (*model.AppUser, error)
	GetByUsername(ctx context.Context, username string) (*model.AppUser, error)
	// GetByUsernameWithCredentials is the elevated projection including the
	// stored password hash, used only for credential verification.
	GetByUsernameWithCredentials(ctx context.Context, username string) (*model.AppUser, error)
	ListByCustomer(ctx context.Context, customerID uint) ([]model.AppUser, error)
	List(ctx context.Context, page, limit int) ([]model.AppUser, int64, error)
	Update(ctx context.Context, user *model.AppUser) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a new instance of UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *model.AppUser) error {
	return GetDB(ctx, r.db).Create(user).Error
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*model.AppUser, error) {
	var user model.AppUser
	if err := GetDB(ctx, r.db).Select(publicUserColumns).First(&user, "user_id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*model.AppUser, error) {
	var user model.AppUser
	err := GetDB(ctx, r.db).Select(publicUserColumns).First(&user, "username = ?", username).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByUsernameWithCredentials(ctx context.Context, username string) (*model.AppUser, error) {
	var user model.AppUser
	err := GetDB(ctx, r.db).First(&user, "username = ?", username).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) ListByCustomer(ctx context.Context, customerID uint) ([]model.AppUser, error) {
	var users []model.AppUser
	err := GetDB(ctx, r.db).
		Select(publicUserColumns).
		Where("customer_id = ?", customerID).
		Order("user_id asc").
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepository) List(ctx context.Context, page, limit int) ([]model.AppUser, int64, error) {
	var users []model.AppUser
	var total int64

	db := GetDB(ctx, r.db)
	if err := db.Model(&model.AppUser{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Select(publicUserColumns).Order("user_id asc").Offset(offset).Limit(limit).Find(&users).Error; err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

func (r *userRepository) Update(ctx context.Context, user *model.AppUser) error {
	return GetDB(ctx, r.db).Save(user).Error
}
