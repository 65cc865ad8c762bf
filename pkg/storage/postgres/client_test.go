package postgres_test

import (
	"context"
	"os"
	"strconv"
	"testing"
	"time"

	"runetick/config"
	"runetick/pkg/storage/postgres"
)

// testConfig reads connection settings from RUNETICK_TEST_PG_* and skips when they are absent.
func testConfig(t *testing.T) config.PostgresConfig {
	t.Helper()
	host := os.Getenv("RUNETICK_TEST_PG_HOST")
	if host == "" {
		t.Skip("RUNETICK_TEST_PG_HOST not set")
	}
	port, _ := strconv.Atoi(os.Getenv("RUNETICK_TEST_PG_PORT"))
	if port == 0 {
		port = 5432
	}
	return config.PostgresConfig{
		Host:     host,
		Port:     port,
		User:     os.Getenv("RUNETICK_TEST_PG_USER"),
		Password: os.Getenv("RUNETICK_TEST_PG_PASSWORD"),
		DBName:   "runetick_test",
		SSLMode:  "disable",
		TimeZone: "UTC",

		MaxOpenConns:    5,
		MaxIdleConns:    2,
		ConnMaxLifetime: time.Hour,
	}
}

// go test -v --run ^TestPostgresInvalidDSN$
func TestPostgresInvalidDSN(t *testing.T) {
	if testing.Short() {
		t.Skip("dials the network")
	}
	invalidDSN := "host=invalid.invalid port=5432 user=fail password=fail dbname=fail sslmode=disable connect_timeout=2"

	_, err := postgres.NewClient(invalidDSN)
	if err == nil {
		t.Fatal("expected error for invalid DSN, got nil")
	}
}

// go test -v --run ^TestPostgresClientWithConfig$
func TestPostgresClientWithConfig(t *testing.T) {
	cfg := testConfig(t)

	client, err := postgres.InitializeAndMigrateBlobRecord(cfg, "dev", true)
	if err != nil {
		t.Fatalf("failed to initialize Postgres client: %v", err)
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if !client.IsHealthy(ctx) {
		t.Fatal("expected healthy DB connection")
	}
}
