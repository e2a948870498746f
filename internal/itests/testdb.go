//go:build integration

package itests

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"CatalogAPI/internal/db"

	_ "github.com/jackc/pgx/v5/stdlib"
)

const testDBName = "catalog_test"

// DeriveTestDSN points baseDSN at the test database and at the postgres
// maintenance database used to create and drop it.
func DeriveTestDSN(baseDSN string) (testDSN, adminDSN string, err error) {
	u, err := url.Parse(baseDSN)
	if err != nil {
		return "", "", fmt.Errorf("parse DSN: %w", err)
	}
	if u.Scheme != "postgres" && u.Scheme != "postgresql" {
		return "", "", errors.New("only URL DSN supported: postgres://...")
	}
	if host := u.Hostname(); host != "localhost" && host != "127.0.0.1" {
		return "", "", fmt.Errorf("refuse non-local host for tests: %s", host)
	}

	u.Path = "/" + testDBName
	testDSN = u.String()
	u.Path = "/postgres"
	adminDSN = u.String()
	return testDSN, adminDSN, nil
}

func withAdmin(adminDSN string, timeout time.Duration, fn func(context.Context, *sql.DB) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	conn, err := sql.Open("pgx", adminDSN)
	if err != nil {
		return err
	}
	defer conn.Close()
	return fn(ctx, conn)
}

func createTestDatabase(adminDSN string) error {
	return withAdmin(adminDSN, 10*time.Second, func(ctx context.Context, conn *sql.DB) error {
		if err := dropTestDatabase(ctx, conn); err != nil {
			return err
		}
		_, err := conn.ExecContext(ctx, `CREATE DATABASE `+quoteIdent(testDBName))
		return err
	})
}

func dropTestDatabase(ctx context.Context, conn *sql.DB) error {
	_, _ = conn.ExecContext(ctx, `
		SELECT pg_terminate_backend(pid)
		FROM pg_stat_activity
		WHERE datname = $1 AND pid <> pg_backend_pid()
	`, testDBName)
	_, err := conn.ExecContext(ctx, `DROP DATABASE IF EXISTS `+quoteIdent(testDBName))
	return err
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// SetupTestDB recreates the test database, migrates it and opens db.Pool on
// it. The returned func closes the pool and drops the database.
func SetupTestDB(baseDSN, migrationsDir string) (func() error, error) {
	if os.Getenv("APP_ENV") == "production" {
		return nil, errors.New("APP_ENV=production, refusing to run integration tests")
	}
	testDSN, adminDSN, err := DeriveTestDSN(baseDSN)
	if err != nil {
		return nil, err
	}
	if err := createTestDatabase(adminDSN); err != nil {
		return nil, fmt.Errorf("create %s: %w (POSTGRES_DSN -> %s)", testDBName, err, redactDSN(baseDSN))
	}

	teardown := func() error {
		db.ClosePostgres()
		return withAdmin(adminDSN, 15*time.Second, dropTestDatabase)
	}
	if err := db.RunMigrations(migrationsDir, testDSN); err != nil {
		_ = teardown()
		return nil, err
	}
	if err := db.InitPostgres(context.Background(), testDSN); err != nil {
		_ = teardown()
		return nil, err
	}
	return teardown, nil
}

func redactDSN(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil || u.User == nil || u.User.Username() == "" {
		return dsn
	}
	u.User = url.UserPassword(u.User.Username(), "******")
	return u.String()
}
