// Package store defines the storage interface and SQLite implementation
// backing the collaborator services.
package store

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/kisses-noo/rpp-lab/internal/domain"
)

// Store is the persistence surface consumed by the collaborator services.
type Store interface {
	// Currency operations
	InsertCurrency(ctx context.Context, rec domain.CurrencyRecord) error
	UpdateCurrencyRate(ctx context.Context, code string, rate decimal.Decimal) error
	DeleteCurrency(ctx context.Context, code string) error
	GetCurrency(ctx context.Context, code string) (*domain.CurrencyRecord, error)
	ListCurrencies(ctx context.Context) ([]domain.CurrencyRecord, error)

	// Admin operations
	IsAdmin(ctx context.Context, chatID string) (bool, error)
	AddAdmin(ctx context.Context, chatID string) error

	// User operations
	RegisterUser(ctx context.Context, user domain.UserRegistration) error
	GetUser(ctx context.Context, chatID string) (*domain.UserRegistration, error)

	// Ledger operations
	InsertEntry(ctx context.Context, entry domain.LedgerEntry) error
	ListEntries(ctx context.Context, ownerID string, order domain.SortOrder) ([]domain.LedgerEntry, error)

	// Lifecycle
	Close() error
}
