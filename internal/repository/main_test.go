package repository_test

import (
	"context"
	"log"
	"os"
	"testing"

	"github.com/Domenick1991/aircargo/migrations"
	"github.com/Domenick1991/aircargo/testutil"
)

// TestMain applies the migrations once when a Postgres test database is configured.
func TestMain(m *testing.M) {
	dsn := os.Getenv(testutil.PostgresEnv)
	if dsn == "" {
		os.Exit(m.Run())
	}

	db := testutil.MustOpenSQLDB(dsn)
	if _, err := migrations.Up(context.Background(), db); err != nil {
		log.Fatalf("TestMain: run migrations: %v", err)
	}
	db.Close()

	os.Exit(m.Run())
}
