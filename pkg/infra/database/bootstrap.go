package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

// EnsureDatabase connects to the admin database and creates cfg.DBName
// when it does not exist yet.
func EnsureDatabase(ctx context.Context, logger *logrus.Logger, cfg *Config) error {
	admin := cfg.AdminDB
	if admin == "" {
		admin = "postgres"
	}
	conn, err := sql.Open("postgres", cfg.dsn(admin))
	if err != nil {
		return fmt.Errorf("open admin database: %w", err)
	}
	defer conn.Close() //nolint:errcheck

	var exists bool
	err = conn.QueryRowContext(ctx,
		"SELECT EXISTS (SELECT 1 FROM pg_database WHERE datname = $1)", cfg.DBName,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check database %s: %w", cfg.DBName, err)
	}
	if exists {
		return nil
	}

	if _, err := conn.ExecContext(ctx, createDatabaseSQL(cfg.DBName)); err != nil {
		if isDuplicateDatabase(err) {
			return nil
		}
		return fmt.Errorf("create database %s: %w", cfg.DBName, err)
	}
	logger.WithField("db", cfg.DBName).Info("database created")
	return nil
}

func createDatabaseSQL(name string) string {
	return "CREATE DATABASE " + pq.QuoteIdentifier(name)
}

// isDuplicateDatabase covers a concurrent creator winning the race.
func isDuplicateDatabase(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == pgerrcode.DuplicateDatabase
}
