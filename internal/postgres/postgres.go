package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/gpinvoice/invoicegen/internal/config"
	ierr "github.com/gpinvoice/invoicegen/internal/errors"
	"github.com/gpinvoice/invoicegen/internal/logger"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// DB wraps sqlx.DB and logs every statement it runs
type DB struct {
	*sqlx.DB
	logger *logger.Logger
}

// NewDB opens the connection pool and, when enabled, creates the schema
func NewDB(cfg *config.Configuration, logger *logger.Logger) (*DB, error) {
	db, err := sqlx.Connect("postgres", cfg.Postgres.GetDSN())
	if err != nil {
		return nil, ierr.WithError(err).WithHint("failed to connect to postgres").Mark(ierr.ErrDatabase)
	}

	if cfg.Postgres.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.Postgres.MaxOpenConns)
	}
	if cfg.Postgres.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.Postgres.MaxIdleConns)
	}
	if cfg.Postgres.ConnMaxLifetimeMinutes > 0 {
		db.SetConnMaxLifetime(time.Duration(cfg.Postgres.ConnMaxLifetimeMinutes) * time.Minute)
	}

	wrapped := &DB{DB: db, logger: logger}
	if cfg.Postgres.AutoMigrate {
		if err := wrapped.Migrate(context.Background()); err != nil {
			db.Close()
			return nil, err
		}
	}
	return wrapped, nil
}

// Close closes the database connection
func (db *DB) Close() {
	if err := db.DB.Close(); err != nil {
		db.logger.Errorw("error closing database", "error", err)
	}
}

// Migrate creates the invoices table and its indexes if they are missing
func (db *DB) Migrate(ctx context.Context) error {
	if _, err := db.DB.ExecContext(ctx, schema); err != nil {
		return ierr.WithError(err).WithHint("failed to create invoice schema").Mark(ierr.ErrDatabase)
	}
	return nil
}

func (db *DB) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	t := newQueryTracer(db.logger, query, args)
	res, err := db.DB.ExecContext(ctx, query, args...)
	t.done(err)
	return res, err
}

func (db *DB) GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	t := newQueryTracer(db.logger, query, args)
	err := db.DB.GetContext(ctx, dest, query, args...)
	t.done(err)
	return err
}

func (db *DB) SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	t := newQueryTracer(db.logger, query, args)
	err := db.DB.SelectContext(ctx, dest, query, args...)
	t.done(err)
	return err
}

const schema = `
CREATE TABLE IF NOT EXISTS invoices (
	id                  TEXT PRIMARY KEY,
	template_id         INTEGER DEFAULT 1,
	currency            VARCHAR(10) DEFAULT '৳',
	invoice_number      VARCHAR(50) UNIQUE NOT NULL,
	payment_date        DATE NOT NULL,
	invoice_for_name    VARCHAR(255) NOT NULL,
	invoice_for_company VARCHAR(255),
	transfer_method     VARCHAR(100),
	transaction_id      VARCHAR(255),
	status              VARCHAR(50) DEFAULT 'Pending',
	notes               TEXT,
	amount_in_words     TEXT,
	discount            DECIMAL(10, 2) DEFAULT 0,
	subtotal            DECIMAL(10, 2) DEFAULT 0,
	total               DECIMAL(10, 2) DEFAULT 0,
	line_items          JSONB,
	created_at          TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
	updated_at          TIMESTAMP WITH TIME ZONE DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_invoices_invoice_number ON invoices(invoice_number);
CREATE INDEX IF NOT EXISTS idx_invoices_status ON invoices(status);
CREATE INDEX IF NOT EXISTS idx_invoices_created_at ON invoices(created_at DESC);
`
