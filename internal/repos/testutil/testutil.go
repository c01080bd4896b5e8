package testutil

import (
	"os"
	"testing"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/brightpath/wellbeing-worker/internal/logger"
	"github.com/brightpath/wellbeing-worker/internal/types"
)

// DB opens a test database. When TEST_POSTGRES_DSN is set it connects to
// that Postgres instance; otherwise it falls back to an in-memory SQLite
// database so repo tests can run without external services. Either way the
// owned tables are migrated fresh.
func DB(t *testing.T) *gorm.DB {
	t.Helper()

	var (
		db  *gorm.DB
		err error
	)
	if dsn := os.Getenv("TEST_POSTGRES_DSN"); dsn != "" {
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
			Logger: gormlogger.Default.LogMode(gormlogger.Silent),
		})
	} else {
		db, err = gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
			Logger: gormlogger.Default.LogMode(gormlogger.Silent),
		})
	}
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}

	if err := db.AutoMigrate(
		&types.StudentAnalytics{},
		&types.StudentClassification{},
		&types.StudentWeeklyClassification{},
	); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

// Tx starts a transaction that is rolled back when the test finishes, so
// tests sharing a Postgres database never see each other's rows.
func Tx(t *testing.T, db *gorm.DB) *gorm.DB {
	t.Helper()

	tx := db.Begin()
	if tx.Error != nil {
		t.Fatalf("begin test tx: %v", tx.Error)
	}
	t.Cleanup(func() {
		tx.Rollback()
	})
	return tx
}

// Logger returns a quiet logger for wiring repos under test.
func Logger(t *testing.T) *logger.Logger {
	t.Helper()

	log, err := logger.New("dev")
	if err != nil {
		t.Fatalf("new test logger: %v", err)
	}
	return log
}
