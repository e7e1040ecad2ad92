// Package testutil provides shared scaffolding for repository
// integration tests. Tests are skipped unless TEST_POSTGRES_DSN points
// at a database the suite may migrate and write to.
package testutil

import (
	"os"
	"sync"
	"testing"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	types "github.com/partaj-app/partaj-backend/internal/domain"
	"github.com/partaj-app/partaj-backend/internal/platform/logger"
)

var (
	dbOnce sync.Once
	dbConn *gorm.DB
	dbErr  error
)

// Logger returns a logger suitable for tests.
func Logger(tb testing.TB) *logger.Logger {
	tb.Helper()
	log, err := logger.New("development")
	if err != nil {
		tb.Fatalf("new logger: %v", err)
	}
	return log
}

// DB opens (once per process) the database named by TEST_POSTGRES_DSN
// and runs migrations. Tests are skipped when the variable is unset.
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()

	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		tb.Skip("TEST_POSTGRES_DSN not set; skipping database test")
	}

	dbOnce.Do(func() {
		dbConn, dbErr = gorm.Open(postgres.Open(dsn), &gorm.Config{
			Logger: gormlogger.Default.LogMode(gormlogger.Silent),
		})
		if dbErr != nil {
			return
		}
		dbErr = autoMigrateAll(dbConn)
	})
	if dbErr != nil {
		tb.Fatalf("open test database: %v", dbErr)
	}
	return dbConn
}

// Tx begins a transaction rolled back when the test finishes, keeping
// tests isolated from each other.
func Tx(tb testing.TB) *gorm.DB {
	tb.Helper()

	tx := DB(tb).Begin()
	if tx.Error != nil {
		tb.Fatalf("begin transaction: %v", tx.Error)
	}
	tb.Cleanup(func() {
		tx.Rollback()
	})
	return tx
}

func autoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		&types.User{},
		&types.UserToken{},
		&types.Unit{},
		&types.UnitMembership{},
		&types.Topic{},
		&types.ReferralUrgency{},
		&types.Referral{},
		&types.ReferralUserLink{},
		&types.ReferralAssignment{},
		&types.ReferralUnitAssignment{},
		&types.ReferralActivity{},
		&types.ReferralUrgencyLevelHistory{},
		&types.ReferralMessage{},
		&types.ReferralSatisfaction{},
		&types.ReferralReport{},
		&types.ReferralReportVersion{},
		&types.ReportEvent{},
		&types.ReferralReportPublishment{},
		&types.Notification{},
	)
}
