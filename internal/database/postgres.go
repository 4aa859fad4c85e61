package database

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// ConnectPostgres establishes a connection to the PostgreSQL database using the provided DSN.
func ConnectPostgres(dsn string) (*gorm.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres dsn must not be empty")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	return db, nil
}

// InstallConstraints creates indexes the schema needs beyond what AutoMigrate
// derives from struct tags. The partial unique index backs the rule that a
// student holds at most one active placement at a time.
func InstallConstraints(db *gorm.DB) error {
	statements := []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_placements_one_active_per_student
			ON placements (student_id) WHERE status = 'aktif'`,
		`CREATE INDEX IF NOT EXISTS idx_activity_logs_entity
			ON activity_logs (entity_type, entity_id)`,
	}

	for _, stmt := range statements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("failed to install schema constraints: %w", err)
		}
	}

	return nil
}
