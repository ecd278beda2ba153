// Package testutil provides an in-memory database and fixtures for package tests.
package testutil

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/vitneshimmanuvel/dsqaubackend/internal/domain"
)

// SetupTestDB opens a private in-memory SQLite database with every table migrated.
// The pool is limited to one connection so all statements see the same database;
// inside a transaction only the transaction handle may be used.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=private&_loc=UTC", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	require.NoError(t, err, "failed to open test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(domain.AllModels()...), "failed to migrate test database")
	return db
}

// D is shorthand for a decimal literal
func D(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v)
}

// CreateTestUser creates an active user with the given role
func CreateTestUser(t *testing.T, db *gorm.DB, role domain.UserRole) *domain.User {
	t.Helper()
	id := uuid.New()
	user := &domain.User{
		Email:       fmt.Sprintf("%s-%s@example.com", role, id.String()[:8]),
		DisplayName: fmt.Sprintf("Test %s", role),
		Role:        role,
		IsActive:    true,
	}
	user.ID = id
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreateTestProject creates an active project owned by the given client and admin
func CreateTestProject(t *testing.T, db *gorm.DB, clientID, adminID uuid.UUID, budget float64) *domain.Project {
	t.Helper()
	project := &domain.Project{
		Name:      "Test Villa " + uuid.NewString()[:6],
		Location:  "Chennai",
		ClientID:  clientID,
		AdminID:   adminID,
		Status:    domain.ProjectStatusActive,
		Budget:    D(budget),
		Spent:     decimal.Zero,
		StartDate: time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, db.Create(project).Error)
	return project
}

// CreateTestVendor creates a vendor with zeroed counters
func CreateTestVendor(t *testing.T, db *gorm.DB, name string) *domain.Vendor {
	t.Helper()
	vendor := &domain.Vendor{
		Name:          name,
		Category:      "Cement",
		TotalAmount:   decimal.Zero,
		PendingAmount: decimal.Zero,
		TotalPaid:     decimal.Zero,
	}
	require.NoError(t, db.Create(vendor).Error)
	return vendor
}
