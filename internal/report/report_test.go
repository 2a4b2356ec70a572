package report

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kisses-noo/rpp-lab/internal/domain"
)

type fakeRates struct {
	rates map[string]decimal.Decimal
	err   error
}

func (f fakeRates) GetRate(_ context.Context, code string) (decimal.Decimal, error) {
	if f.err != nil {
		return decimal.Zero, f.err
	}
	r, ok := f.rates[code]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: currency %s", domain.ErrNotFound, code)
	}
	return r, nil
}

type fakeEntries struct {
	entries []domain.LedgerEntry
	err     error
}

func (f fakeEntries) ListEntries(_ context.Context, _ string, order domain.SortOrder) ([]domain.LedgerEntry, error) {
	if f.err != nil {
		return nil, f.err
	}
	if order == domain.SortDesc {
		out := make([]domain.LedgerEntry, len(f.entries))
		for i, e := range f.entries {
			out[len(f.entries)-1-i] = e
		}
		return out, nil
	}
	return f.entries, nil
}

func entry(date string, amount string, kind domain.EntryKind) domain.LedgerEntry {
	d, _ := time.Parse("2006-01-02", date)
	return domain.LedgerEntry{Date: d, Amount: decimal.RequireFromString(amount), OwnerID: "u1", Kind: kind}
}

func TestConvertRoundsHalfUp(t *testing.T) {
	// The rounding mode is round-half-up (half away from zero).
	cases := []struct {
		amount, rate, want string
	}{
		{"1000", "75.50", "13.25"}, // 13.2450... rounds up on the half
		{"200", "75.50", "2.65"},   // 2.6490...
		{"2.345", "1", "2.35"},     // exact half goes up
		{"2.344", "1", "2.34"},
		{"10", "3", "3.33"},
	}
	for _, c := range cases {
		got := Convert(decimal.RequireFromString(c.amount), decimal.RequireFromString(c.rate))
		assert.Equal(t, c.want, got.StringFixed(2), "%s / %s", c.amount, c.rate)
	}
}

func TestConvertIsIdempotent(t *testing.T) {
	one := decimal.NewFromInt(1)
	rounded := Convert(decimal.RequireFromString("13.245033"), one)
	again := Convert(rounded, one)
	assert.True(t, rounded.Equal(again), "rounding an already-rounded value must be a no-op")
}

func TestBuildConvertsAndOrders(t *testing.T) {
	b := NewBuilder(
		fakeRates{rates: map[string]decimal.Decimal{"USD": decimal.RequireFromString("75.50")}},
		fakeEntries{entries: []domain.LedgerEntry{
			entry("2024-01-01", "1000", domain.EntryIncome),
			entry("2024-01-02", "200", domain.EntryExpense),
		}},
	)

	lines, err := b.Build(context.Background(), "u1", "USD", domain.SortAsc)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, "2024-01-01", lines[0].Date)
	assert.Equal(t, "13.25", lines[0].Amount.StringFixed(2))
	assert.Equal(t, "2024-01-02", lines[1].Date)
	assert.Equal(t, "2.65", lines[1].Amount.StringFixed(2))

	desc, err := b.Build(context.Background(), "u1", "USD", domain.SortDesc)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-02", desc[0].Date)
}

func TestBuildBaseCurrencySkipsRateLookup(t *testing.T) {
	// A failing rate source must not matter for the base currency.
	b := NewBuilder(
		fakeRates{err: errors.New("rate source must not be called")},
		fakeEntries{entries: []domain.LedgerEntry{entry("2024-01-01", "99.99", domain.EntryIncome)}},
	)

	lines, err := b.Build(context.Background(), "u1", BaseCurrency, domain.SortAsc)
	require.NoError(t, err)
	assert.Equal(t, "99.99", lines[0].Amount.StringFixed(2))
}

func TestBuildFailsWholesaleOnRateError(t *testing.T) {
	b := NewBuilder(
		fakeRates{err: fmt.Errorf("%w: connection refused", domain.ErrUnavailable)},
		fakeEntries{entries: []domain.LedgerEntry{entry("2024-01-01", "10", domain.EntryIncome)}},
	)

	lines, err := b.Build(context.Background(), "u1", "USD", domain.SortAsc)
	assert.ErrorIs(t, err, domain.ErrUnavailable)
	assert.Nil(t, lines, "no partial report on rate failure")
}

func TestRender(t *testing.T) {
	lines := []Line{
		{Date: "2024-01-01", Amount: decimal.RequireFromString("13.25"), Kind: domain.EntryIncome},
		{Date: "2024-01-02", Amount: decimal.RequireFromString("2.65"), Kind: domain.EntryExpense},
	}
	out := Render(lines, "USD")
	assert.Contains(t, out, "Your operations (USD):")
	assert.Contains(t, out, "2024-01-01: 13.25 USD (INCOME)")
	assert.Contains(t, out, "2024-01-02: 2.65 USD (EXPENSE)")
}
