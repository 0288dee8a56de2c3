package database

import (
	"fmt"

	"community-app/internal/domain/billing"
	"community-app/internal/domain/chat"
	"community-app/internal/domain/courses"
	"community-app/internal/domain/groups"
	"community-app/internal/domain/notifications"
	"community-app/internal/domain/plans"
	"community-app/internal/domain/users"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Open connects to Postgres and migrates all domain models.
// The returned handle is passed to handlers explicitly; callers own its
// lifecycle and should Close it on shutdown.
func Open(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Required for UUID generation
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto;`).Error; err != nil {
		return nil, fmt.Errorf("failed to enable pgcrypto extension: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

// Migrate runs AutoMigrate for every domain model. Split out so tests can
// migrate an in-memory database without the Postgres-only setup above.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		// core
		&users.User{},
		&users.VerificationToken{},
		&users.OwnerApplication{},
		&groups.Group{},
		&groups.Member{},
		&plans.PricingPlan{},

		// billing
		&billing.MemberPayment{},
		&billing.Subscription{},

		// community
		&notifications.Notification{},
		&chat.Channel{},
		&chat.Message{},
		&chat.DirectMessage{},
		&courses.Course{},
		&courses.Lesson{},
	); err != nil {
		return fmt.Errorf("automigrate error: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
