package database

import (
	"log"

	"backend/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// NewConnection initializes a new connection pool using GORM
func NewConnection(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates or alters the schema for the core models. With force set,
// existing tables are dropped first (destructive — dbsync CLI only).
func Migrate(db *gorm.DB, force bool) error {
	if force {
		if err := db.Migrator().DropTable(
			&model.AuditLog{},
			&model.UserRole{},
			&model.RolePermission{},
			&model.AppUser{},
			&model.AppRole{},
			&model.AppPermission{},
			&model.Customer{},
		); err != nil {
			return err
		}
	}

	if err := db.AutoMigrate(
		&model.Customer{},
		&model.AppUser{},
		&model.AppRole{},
		&model.AppPermission{},
		&model.UserRole{},
		&model.RolePermission{},
		&model.AuditLog{},
	); err != nil {
		return err
	}

	if err := ensureCustomerIndexes(db); err != nil {
		// Expression indexes are postgres-specific; log and continue on
		// engines that cannot build them (the services pre-check anyway).
		log.Println("WARNING: Failed to create customer unique indexes:", err)
	}

	return nil
}

// ensureCustomerIndexes enforces case-insensitive uniqueness on the three
// customer business keys at the database level, as the last line of defense
// against concurrent inserts slipping past the application pre-checks.
func ensureCustomerIndexes(db *gorm.DB) error {
	stmts := []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS customers_uk1 ON customers (UPPER(customer_name))`,
		`CREATE UNIQUE INDEX IF NOT EXISTS customers_uk2 ON customers (UPPER(customer_code))`,
		`CREATE UNIQUE INDEX IF NOT EXISTS customers_uk3 ON customers (UPPER(fiscal_number)) WHERE fiscal_number IS NOT NULL`,
	}
	for _, stmt := range stmts {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}
