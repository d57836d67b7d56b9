package repository

import (
	"context"
	"errors"

	"backend/internal/model"

	"gorm.io/gorm"
)

// CustomerRepository defines the interface for data access of Customer entities
type CustomerRepository interface {
	Create(ctx context.Context, customer *model.Customer) error
	GetByID(ctx context.Context, id uint) (*model.Customer, error)
	FindByNameInsensitive(ctx context.Context, name string) (*model.Customer, error)
	FindByCodeInsensitive(ctx context.Context, code string) (*model.Customer, error)
	FindByFiscalNumberInsensitive(ctx context.Context, fiscalNumber string) (*model.Customer, error)
	// UpdateVersioned persists the customer only if the stored record_version
	// still equals expectedVersion, incrementing it atomically. Returns false
	// when no row matched (stale version or vanished row).
	UpdateVersioned(ctx context.Context, customer *model.Customer, expectedVersion uint) (bool, error)
	List(ctx context.Context, page, limit int) ([]model.Customer, int64, error)
}

type customerRepository struct {
	db *gorm.DB
}

// NewCustomerRepository returns a new instance of CustomerRepository
func NewCustomerRepository(db *gorm.DB) CustomerRepository {
	return &customerRepository{db: db}
}

func (r *customerRepository) Create(ctx context.Context, customer *model.Customer) error {
	return GetDB(ctx, r.db).Create(customer).Error
}

func (r *customerRepository) GetByID(ctx context.Context, id uint) (*model.Customer, error) {
	var customer model.Customer
	if err := GetDB(ctx, r.db).First(&customer, "customer_id = ?", id).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *customerRepository) FindByNameInsensitive(ctx context.Context, name string) (*model.Customer, error) {
	return r.findInsensitive(ctx, "customer_name", name)
}

func (r *customerRepository) FindByCodeInsensitive(ctx context.Context, code string) (*model.Customer, error) {
	return r.findInsensitive(ctx, "customer_code", code)
}

func (r *customerRepository) FindByFiscalNumberInsensitive(ctx context.Context, fiscalNumber string) (*model.Customer, error) {
	return r.findInsensitive(ctx, "fiscal_number", fiscalNumber)
}

func (r *customerRepository) findInsensitive(ctx context.Context, column, value string) (*model.Customer, error) {
	var customer model.Customer
	err := GetDB(ctx, r.db).
		Where("UPPER("+column+") = UPPER(?)", value).
		First(&customer).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &customer, nil
}

func (r *customerRepository) UpdateVersioned(ctx context.Context, customer *model.Customer, expectedVersion uint) (bool, error) {
	res := GetDB(ctx, r.db).
		Model(&model.Customer{}).
		Where("customer_id = ? AND record_version = ?", customer.CustomerID, expectedVersion).
		Updates(map[string]interface{}{
			"customer_name":       customer.CustomerName,
			"customer_code":       customer.CustomerCode,
			"customer_type_id":    customer.CustomerTypeID,
			"fiscal_number":       customer.FiscalNumber,
			"record_version":      gorm.Expr("record_version + 1"),
			"last_update_date":    customer.LastUpdateDate,
			"last_update_user":    customer.LastUpdateUser,
			"last_update_process": customer.LastUpdateProcess,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *customerRepository) List(ctx context.Context, page, limit int) ([]model.Customer, int64, error) {
	var customers []model.Customer
	var total int64

	db := GetDB(ctx, r.db)
	if err := db.Model(&model.Customer{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Order("customer_id asc").Offset(offset).Limit(limit).Find(&customers).Error; err != nil {
		return nil, 0, err
	}

	return customers, total, nil
}
