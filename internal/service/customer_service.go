package service

import (
	"context"
	"time"

	"backend/internal/apperror"
	"backend/internal/logging"
	"backend/internal/model"
	"backend/internal/repository"
)

// updateProcess tags customer mutations with the writing process, matching
// the audit columns the production schema expects.
const updateProcess = "hotel_management"

// --- DTOs ---

type CreateCustomerRequest struct {
	CustomerName   string  `json:"customer_name" binding:"required"`
	CustomerCode   string  `json:"customer_code" binding:"required"`
	CustomerTypeID uint    `json:"customer_type_id" binding:"required"`
	FiscalNumber   *string `json:"fiscal_number"`
}

// UpdateCustomerRequest is a patch: nil fields are left unchanged.
// ExpectedVersion, when supplied, must match the stored record_version.
type UpdateCustomerRequest struct {
	CustomerName    *string `json:"customer_name"`
	CustomerCode    *string `json:"customer_code"`
	CustomerTypeID  *uint   `json:"customer_type_id"`
	FiscalNumber    *string `json:"fiscal_number"`
	ExpectedVersion *uint   `json:"expected_version"`
}

type CustomerResponse struct {
	CustomerID     uint    `json:"customer_id"`
	CustomerName   string  `json:"customer_name"`
	CustomerCode   string  `json:"customer_code"`
	CustomerTypeID uint    `json:"customer_type_id"`
	FiscalNumber   *string `json:"fiscal_number,omitempty"`
	RecordVersion  uint    `json:"record_version"`
	CreationDate   string  `json:"creation_date"`
	CreationUser   string  `json:"creation_user"`
}

// CustomerService is the tenant directory: customer provisioning and the
// customer→user ownership relation.
type CustomerService interface {
	CreateCustomer(ctx context.Context, req CreateCustomerRequest, actor string) (*CustomerResponse, error)
	GetCustomer(ctx context.Context, id uint) (*CustomerResponse, error)
	UpdateCustomer(ctx context.Context, id uint, req UpdateCustomerRequest, actor string) (*CustomerResponse, error)
	ListCustomers(ctx context.Context, page, limit int) ([]CustomerResponse, int64, error)
	ListUsersForCustomer(ctx context.Context, customerID uint) ([]UserResponse, error)
}

type customerService struct {
	repo      repository.CustomerRepository
	userRepo  repository.UserRepository
	auditRepo repository.AuditRepository
	txManager repository.TransactionManager
	logs      *logging.Loggers
}

// NewCustomerService returns a new instance of CustomerService
func NewCustomerService(
	repo repository.CustomerRepository,
	userRepo repository.UserRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	logs *logging.Loggers,
) CustomerService {
	return &customerService{
		repo:      repo,
		userRepo:  userRepo,
		auditRepo: auditRepo,
		txManager: txManager,
		logs:      logs,
	}
}

func mapCustomerToResponse(c *model.Customer) *CustomerResponse {
	return &CustomerResponse{
		CustomerID:     c.CustomerID,
		CustomerName:   c.CustomerName,
		CustomerCode:   c.CustomerCode,
		CustomerTypeID: c.CustomerTypeID,
		FiscalNumber:   c.FiscalNumber,
		RecordVersion:  c.RecordVersion,
		CreationDate:   c.CreationDate.Format(time.RFC3339),
		CreationUser:   c.CreationUser,
	}
}

// checkBusinessKeys enforces the case-insensitive uniqueness of name, code
// and fiscal number at the application level, before the UPPER() expression
// indexes get a say. excludeID skips the record being updated.
func (s *customerService) checkBusinessKeys(ctx context.Context, name, code string, fiscal *string, excludeID uint) error {
	if name != "" {
		existing, err := s.repo.FindByNameInsensitive(ctx, name)
		if err != nil {
			return err
		}
		if existing != nil && existing.CustomerID != excludeID {
			return apperror.DuplicateKey("customer name '%s' is already in use", name)
		}
	}
	if code != "" {
		existing, err := s.repo.FindByCodeInsensitive(ctx, code)
		if err != nil {
			return err
		}
		if existing != nil && existing.CustomerID != excludeID {
			return apperror.DuplicateKey("customer code '%s' is already in use", code)
		}
	}
	if fiscal != nil && *fiscal != "" {
		existing, err := s.repo.FindByFiscalNumberInsensitive(ctx, *fiscal)
		if err != nil {
			return err
		}
		if existing != nil && existing.CustomerID != excludeID {
			return apperror.DuplicateKey("fiscal number '%s' is already in use", *fiscal)
		}
	}
	return nil
}

func (s *customerService) CreateCustomer(ctx context.Context, req CreateCustomerRequest, actor string) (*CustomerResponse, error) {
	if req.CustomerName == "" || req.CustomerCode == "" || req.CustomerTypeID == 0 {
		return nil, apperror.Validation("customer_name, customer_code and customer_type_id are required")
	}
	if len(req.CustomerCode) > 10 {
		return nil, apperror.Validation("customer_code must be at most 10 characters")
	}

	if err := s.checkBusinessKeys(ctx, req.CustomerName, req.CustomerCode, req.FiscalNumber, 0); err != nil {
		return nil, err
	}

	customer := &model.Customer{
		CustomerName:      req.CustomerName,
		CustomerCode:      req.CustomerCode,
		CustomerTypeID:    req.CustomerTypeID,
		FiscalNumber:      req.FiscalNumber,
		RecordVersion:     1,
		CreationDate:      time.Now(),
		CreationUser:      actor,
		LastUpdateProcess: updateProcess,
	}

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.Create(txCtx, customer); err != nil {
			return err
		}
		return s.auditRepo.Log(txCtx, &model.AuditLog{
			Action:     model.ActionCreateCustomer,
			EntityID:   customer.CustomerCode,
			EntityName: customer.CustomerName,
		})
	})
	if err != nil {
		return nil, err
	}

	s.logs.Actions.Info().
		Str("action", model.ActionCreateCustomer).
		Uint("customer_id", customer.CustomerID).
		Str("customer_code", customer.CustomerCode).
		Str("actor", actor).
		Msg("customer created")

	return mapCustomerToResponse(customer), nil
}

func (s *customerService) GetCustomer(ctx context.Context, id uint) (*CustomerResponse, error) {
	customer, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.NotFound("customer %d not found", id)
	}
	return mapCustomerToResponse(customer), nil
}

func (s *customerService) UpdateCustomer(ctx context.Context, id uint, req UpdateCustomerRequest, actor string) (*CustomerResponse, error) {
	customer, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.NotFound("customer %d not found", id)
	}

	expected := customer.RecordVersion
	if req.ExpectedVersion != nil {
		expected = *req.ExpectedVersion
	}

	if req.CustomerName != nil {
		customer.CustomerName = *req.CustomerName
	}
	if req.CustomerCode != nil {
		if len(*req.CustomerCode) > 10 {
			return nil, apperror.Validation("customer_code must be at most 10 characters")
		}
		customer.CustomerCode = *req.CustomerCode
	}
	if req.CustomerTypeID != nil {
		customer.CustomerTypeID = *req.CustomerTypeID
	}
	if req.FiscalNumber != nil {
		customer.FiscalNumber = req.FiscalNumber
	}

	if err := s.checkBusinessKeys(ctx, customer.CustomerName, customer.CustomerCode, customer.FiscalNumber, customer.CustomerID); err != nil {
		return nil, err
	}

	now := time.Now()
	customer.LastUpdateDate = &now
	customer.LastUpdateUser = &actor
	customer.LastUpdateProcess = updateProcess

	var updated bool
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var txErr error
		updated, txErr = s.repo.UpdateVersioned(txCtx, customer, expected)
		if txErr != nil || !updated {
			return txErr
		}
		return s.auditRepo.Log(txCtx, &model.AuditLog{
			Action:     model.ActionUpdateCustomer,
			EntityID:   customer.CustomerCode,
			EntityName: customer.CustomerName,
		})
	})
	if err != nil {
		return nil, err
	}
	if !updated {
		// The row existed a moment ago, so a miss means the version moved
		return nil, apperror.StaleVersion("customer %d was modified concurrently (expected version %d)", id, expected)
	}

	s.logs.Actions.Info().
		Str("action", model.ActionUpdateCustomer).
		Uint("customer_id", customer.CustomerID).
		Str("actor", actor).
		Msg("customer updated")

	return s.GetCustomer(ctx, id)
}

func (s *customerService) ListCustomers(ctx context.Context, page, limit int) ([]CustomerResponse, int64, error) {
	customers, total, err := s.repo.List(ctx, page, limit)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]CustomerResponse, 0, len(customers))
	for i := range customers {
		responses = append(responses, *mapCustomerToResponse(&customers[i]))
	}
	return responses, total, nil
}

func (s *customerService) ListUsersForCustomer(ctx context.Context, customerID uint) ([]UserResponse, error) {
	if _, err := s.repo.GetByID(ctx, customerID); err != nil {
		return nil, apperror.NotFound("customer %d not found", customerID)
	}

	users, err := s.userRepo.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}

	responses := make([]UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, *mapUserToResponse(&users[i]))
	}
	return responses, nil
}
