package store

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kisses-noo/rpp-lab/internal/domain"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	require.NoError(t, err)
	return d
}

func TestInsertCurrencyDuplicateIsConflict(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	rec := domain.CurrencyRecord{Code: "USD", Rate: decimal.RequireFromString("75.50")}
	require.NoError(t, s.InsertCurrency(ctx, rec))

	err := s.InsertCurrency(ctx, domain.CurrencyRecord{Code: "USD", Rate: decimal.RequireFromString("99")})
	assert.ErrorIs(t, err, domain.ErrConflict)

	// The original record is untouched.
	got, err := s.GetCurrency(ctx, "USD")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "75.50", got.Rate.StringFixed(2))

	all, err := s.ListCurrencies(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestUpdateCurrencyRate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.InsertCurrency(ctx, domain.CurrencyRecord{Code: "EUR", Rate: decimal.RequireFromString("80.20")}))
	require.NoError(t, s.UpdateCurrencyRate(ctx, "EUR", decimal.RequireFromString("82.00")))

	got, err := s.GetCurrency(ctx, "EUR")
	require.NoError(t, err)
	assert.Equal(t, "82.00", got.Rate.StringFixed(2))
}

func TestUpdateMissingCurrencyIsNotFound(t *testing.T) {
	s := newTestStore(t)
	err := s.UpdateCurrencyRate(context.Background(), "XXX", decimal.RequireFromString("1"))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteCurrency(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.InsertCurrency(ctx, domain.CurrencyRecord{Code: "USD", Rate: decimal.RequireFromString("75.50")}))
	require.NoError(t, s.DeleteCurrency(ctx, "USD"))

	got, err := s.GetCurrency(ctx, "USD")
	require.NoError(t, err)
	assert.Nil(t, got)

	assert.ErrorIs(t, s.DeleteCurrency(ctx, "USD"), domain.ErrNotFound)
}

func TestAdmins(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	ok, err := s.IsAdmin(ctx, "42")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.AddAdmin(ctx, "42"))
	// Seeding twice must stay a no-op.
	require.NoError(t, s.AddAdmin(ctx, "42"))

	ok, err = s.IsAdmin(ctx, "42")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRegisterUserSecondAttemptIsConflict(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.RegisterUser(ctx, domain.UserRegistration{OwnerID: "u1", DisplayName: "Alice"}))

	err := s.RegisterUser(ctx, domain.UserRegistration{OwnerID: "u1", DisplayName: "Mallory"})
	assert.ErrorIs(t, err, domain.ErrConflict)

	// The conflict never overwrites the first registration.
	got, err := s.GetUser(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Alice", got.DisplayName)
}

func TestListEntriesOrderAndTies(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	entries := []domain.LedgerEntry{
		{ID: "op_1", Date: date(t, "2024-01-02"), Amount: decimal.RequireFromString("200"), OwnerID: "u1", Kind: domain.EntryExpense},
		{ID: "op_2", Date: date(t, "2024-01-01"), Amount: decimal.RequireFromString("1000"), OwnerID: "u1", Kind: domain.EntryIncome},
		{ID: "op_3", Date: date(t, "2024-01-01"), Amount: decimal.RequireFromString("5"), OwnerID: "u1", Kind: domain.EntryExpense},
		{ID: "op_other", Date: date(t, "2024-01-01"), Amount: decimal.RequireFromString("7"), OwnerID: "u2", Kind: domain.EntryIncome},
	}
	for _, e := range entries {
		require.NoError(t, s.InsertEntry(ctx, e))
	}

	asc, err := s.ListEntries(ctx, "u1", domain.SortAsc)
	require.NoError(t, err)
	require.Len(t, asc, 3)
	// Ties on date keep insertion order.
	assert.Equal(t, []string{"op_2", "op_3", "op_1"}, ids(asc))

	desc, err := s.ListEntries(ctx, "u1", domain.SortDesc)
	require.NoError(t, err)
	assert.Equal(t, []string{"op_1", "op_2", "op_3"}, ids(desc))
}

func ids(entries []domain.LedgerEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.ID
	}
	return out
}
