package database

import (
	"fmt"
	"log"
	"os"

	"github.com/admiralorbiter/skien/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB holds the database connection
var DB *gorm.DB

// Config holds database configuration
type Config struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// LoadConfig loads database configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		DBName:   getEnv("DB_NAME", "skien"),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
	}
}

// Connect establishes a connection to the PostgreSQL database
func Connect(config *Config) error {
	// Build DSN without empty password parameter
	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s dbname=%s sslmode=%s",
		config.Host, config.Port, config.User, config.DBName, config.SSLMode,
	)

	// Only add password if it's not empty
	if config.Password != "" {
		dsn = fmt.Sprintf(
			"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			config.Host, config.Port, config.User, config.Password, config.DBName, config.SSLMode,
		)
	}

	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
		// Surface unique-constraint races as gorm.ErrDuplicatedKey so the
		// service layer can report them without driver-specific checks.
		TranslateError: true,
	})

	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	log.Println("Successfully connected to database")
	return nil
}

// Migrate runs database migrations
func Migrate() error {
	if DB == nil {
		return fmt.Errorf("database connection not established")
	}

	if err := models.AutoMigrate(DB); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := applyCheckConstraints(DB); err != nil {
		return fmt.Errorf("failed to apply check constraints: %w", err)
	}

	log.Println("Database migrations completed successfully")
	return nil
}

// applyCheckConstraints adds the constraints AutoMigrate cannot express.
// Validation enforces the same rules; these are the storage-level backstop.
func applyCheckConstraints(db *gorm.DB) error {
	stmts := []string{
		`ALTER TABLE edges DROP CONSTRAINT IF EXISTS ck_edge_no_self_loop`,
		`ALTER TABLE edges ADD CONSTRAINT ck_edge_no_self_loop CHECK (src_event_id != dst_event_id)`,
		`ALTER TABLE event_claims DROP CONSTRAINT IF EXISTS ck_event_importance_range`,
		`ALTER TABLE event_claims ADD CONSTRAINT ck_event_importance_range CHECK (importance IS NULL OR (importance >= 1 AND importance <= 5))`,
	}
	for _, stmt := range stmts {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}

// Close closes the database connection
func Close() error {
	if DB == nil {
		return nil
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}

	return sqlDB.Close()
}

// getEnv returns environment variable value or default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
