package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/kisses-noo/rpp-lab/internal/domain"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// For in-memory SQLite, multiple connections create separate databases.
	// Keep a single connection to avoid schema/data disappearing across goroutines.
	if dsn == ":memory:" || strings.Contains(dsn, "mode=memory") {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return s, nil
}

// migrate runs database migrations.
func (s *SQLiteStore) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS currencies (
			currency_name TEXT PRIMARY KEY,
			rate TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS admins (
			chat_id TEXT PRIMARY KEY
		)`,
		`CREATE TABLE IF NOT EXISTS users (
			chat_id TEXT PRIMARY KEY,
			name TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS operations (
			id TEXT PRIMARY KEY,
			date DATE NOT NULL,
			sum TEXT NOT NULL,
			chat_id TEXT NOT NULL,
			type_operation TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_operations_owner ON operations(chat_id, date)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\n%s", err, m)
		}
	}

	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// InsertCurrency adds a currency. Duplicate codes are a conflict.
func (s *SQLiteStore) InsertCurrency(ctx context.Context, rec domain.CurrencyRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO currencies (currency_name, rate) VALUES (?, ?)`,
		rec.Code, rec.Rate.StringFixed(2))
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: currency %s", domain.ErrConflict, rec.Code)
	}
	return err
}

// UpdateCurrencyRate changes the rate of an existing currency.
func (s *SQLiteStore) UpdateCurrencyRate(ctx context.Context, code string, rate decimal.Decimal) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE currencies SET rate = ? WHERE currency_name = ?`,
		rate.StringFixed(2), code)
	if err != nil {
		return err
	}
	return requireRow(res, fmt.Errorf("%w: currency %s", domain.ErrNotFound, code))
}

// DeleteCurrency removes a currency.
func (s *SQLiteStore) DeleteCurrency(ctx context.Context, code string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM currencies WHERE currency_name = ?`, code)
	if err != nil {
		return err
	}
	return requireRow(res, fmt.Errorf("%w: currency %s", domain.ErrNotFound, code))
}

// GetCurrency retrieves a currency by canonical code.
func (s *SQLiteStore) GetCurrency(ctx context.Context, code string) (*domain.CurrencyRecord, error) {
	var rec domain.CurrencyRecord
	var rate string
	err := s.db.QueryRowContext(ctx,
		`SELECT currency_name, rate FROM currencies WHERE currency_name = ?`,
		code).Scan(&rec.Code, &rate)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	rec.Rate, err = decimal.NewFromString(rate)
	if err != nil {
		return nil, fmt.Errorf("bad stored rate for %s: %w", code, err)
	}
	return &rec, nil
}

// ListCurrencies lists all currencies ordered by code.
func (s *SQLiteStore) ListCurrencies(ctx context.Context) ([]domain.CurrencyRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT currency_name, rate FROM currencies ORDER BY currency_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []domain.CurrencyRecord
	for rows.Next() {
		var rec domain.CurrencyRecord
		var rate string
		if err := rows.Scan(&rec.Code, &rate); err != nil {
			return nil, err
		}
		if rec.Rate, err = decimal.NewFromString(rate); err != nil {
			return nil, fmt.Errorf("bad stored rate for %s: %w", rec.Code, err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// IsAdmin reports whether the chat id belongs to an admin.
func (s *SQLiteStore) IsAdmin(ctx context.Context, chatID string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM admins WHERE chat_id = ?`, chatID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// AddAdmin grants admin rights to a chat id. Adding twice is a no-op.
func (s *SQLiteStore) AddAdmin(ctx context.Context, chatID string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO admins (chat_id) VALUES (?)`, chatID)
	return err
}

// RegisterUser stores a registration. A second attempt is a conflict and
// never overwrites the first.
func (s *SQLiteStore) RegisterUser(ctx context.Context, user domain.UserRegistration) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (chat_id, name) VALUES (?, ?)`,
		user.OwnerID, user.DisplayName)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: user %s", domain.ErrConflict, user.OwnerID)
	}
	return err
}

// GetUser retrieves a registration by chat id.
func (s *SQLiteStore) GetUser(ctx context.Context, chatID string) (*domain.UserRegistration, error) {
	var user domain.UserRegistration
	err := s.db.QueryRowContext(ctx,
		`SELECT chat_id, name FROM users WHERE chat_id = ?`,
		chatID).Scan(&user.OwnerID, &user.DisplayName)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// InsertEntry stores a committed ledger operation.
func (s *SQLiteStore) InsertEntry(ctx context.Context, entry domain.LedgerEntry) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO operations (id, date, sum, chat_id, type_operation) VALUES (?, ?, ?, ?, ?)`,
		entry.ID, entry.Date.Format("2006-01-02"), entry.Amount.StringFixed(2), entry.OwnerID, string(entry.Kind))
	return err
}

// ListEntries returns the user's operations ordered by date. Ties on date
// keep insertion order via the rowid.
func (s *SQLiteStore) ListEntries(ctx context.Context, ownerID string, order domain.SortOrder) ([]domain.LedgerEntry, error) {
	dir := "ASC"
	if order == domain.SortDesc {
		dir = "DESC"
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, date, sum, type_operation FROM operations WHERE chat_id = ? ORDER BY date `+dir+`, rowid ASC`,
		ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.LedgerEntry
	for rows.Next() {
		var e domain.LedgerEntry
		var date, amount string
		if err := rows.Scan(&e.ID, &date, &amount, &e.Kind); err != nil {
			return nil, err
		}
		if e.Date, err = parseStoredDate(date); err != nil {
			return nil, err
		}
		if e.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("bad stored amount for %s: %w", e.ID, err)
		}
		e.OwnerID = ownerID
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// parseStoredDate accepts the stored DATE column in either plain or
// datetime form, depending on how the driver round-trips it.
func parseStoredDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

// requireRow converts an affected-row count of zero into notFound.
func requireRow(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}

// isUniqueViolation checks for a SQLite UNIQUE constraint failure.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
