package database

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"pos-service/internal/model"
	"pos-service/pkg/config"
)

// InitDB opens the postgres connection, configures the pool and runs
// migrations
func InitDB(cfg *config.Config) (*gorm.DB, error) {
	logLevel := cfg.DB.LogLevel
	if cfg.Server.Env == "production" {
		logLevel = logger.Error
	}

	pgConfig := postgres.Config{
		DSN:                  cfg.DB.GetDSN(),
		PreferSimpleProtocol: true, // Disables implicit prepared statement usage
	}

	db, err := gorm.Open(postgres.New(pgConfig), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database object: %w", err)
	}

	// Set connection pool settings from config
	sqlDB.SetMaxIdleConns(cfg.DB.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.DB.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.DB.ConnMaxLifetime)

	if err := db.AutoMigrate(
		&model.User{},
		&model.Product{},
		&model.StockMovement{},
		&model.Member{},
		&model.Sale{},
		&model.MemberTransaction{},
	); err != nil {
		return nil, fmt.Errorf("failed to run database migrations: %w", err)
	}

	return db, nil
}

// SeedUsers creates the initial admin and employee accounts when the user
// table is empty. Passwords come from SEED_ADMIN_PASSWORD and
// SEED_EMPLOYEE_PASSWORD; the defaults are for development only.
func SeedUsers(db *gorm.DB, cfg *config.POSConfig, log *zap.Logger) error {
	var count int64
	if err := db.Model(&model.User{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	log.Warn("No user accounts found, seeding defaults. Set SEED_ADMIN_PASSWORD and SEED_EMPLOYEE_PASSWORD to override.")

	now := time.Now()
	for _, u := range []struct {
		username string
		password string
		role     string
	}{
		{"admin", cfg.AdminPassword, "admin"},
		{"employee", cfg.EmployeePassword, "employee"},
	} {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("failed to hash seed password for %s: %w", u.username, err)
		}
		user := model.User{
			Username:     u.username,
			PasswordHash: string(hash),
			Role:         u.role,
			CreatedAt:    now,
		}
		if err := db.Create(&user).Error; err != nil {
			return fmt.Errorf("failed to seed user %s: %w", u.username, err)
		}
		log.Info("Seeded user account", zap.String("username", u.username), zap.String("role", u.role))
	}
	return nil
}
