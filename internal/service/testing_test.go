package service

import (
	"fmt"
	"testing"
	"time"

	"backend/internal/logging"
	"backend/internal/model"
	"backend/internal/password"
	"backend/internal/repository"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a per-test in-memory sqlite database with the full schema
func newTestDB(t *testing.T) *gorm.DB {
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
		&model.AuditLog{},
	))

	return db
}

type testEnv struct {
	db        *gorm.DB
	users     UserService
	customers CustomerService
	access    AccessService
	authz     AuthzService
	audit     AuditService

	userRepo  repository.UserRepository
	grantRepo repository.GrantRepository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := newTestDB(t)
	logs := logging.NewTestLoggers()

	txManager := repository.NewTransactionManager(db)
	userRepo := repository.NewUserRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	grantRepo := repository.NewGrantRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	return &testEnv{
		db: db,
		users: NewUserService(userRepo, customerRepo, auditRepo, txManager, logs, UserServiceConfig{
			PasswordPolicy: password.Policy{Active: true, MinimumCharacters: 4},
			JWTSecret:      []byte("test-secret"),
			TokenTTL:       time.Minute,
		}),
		customers: NewCustomerService(customerRepo, userRepo, auditRepo, txManager, logs),
		access:    NewAccessService(grantRepo, userRepo, auditRepo, txManager, logs, nil),
		authz:     NewAuthzService(grantRepo),
		audit:     NewAuditService(auditRepo),
		userRepo:  userRepo,
		grantRepo: grantRepo,
	}
}

// seedCustomer inserts a customer directly and returns its id
func (e *testEnv) seedCustomer(t *testing.T, name, code string) uint {
	t.Helper()

	customer := &model.Customer{
		CustomerName:      name,
		CustomerCode:      code,
		CustomerTypeID:    1,
		RecordVersion:     1,
		CreationDate:      time.Now(),
		CreationUser:      "seed",
		LastUpdateProcess: "test",
	}
	require.NoError(t, e.db.Create(customer).Error)
	return customer.CustomerID
}
