// Package report builds the converted, ordered ledger reports.
package report

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/kisses-noo/rpp-lab/internal/domain"
)

// BaseCurrency is the unit ledger amounts are stored in. Its rate is 1.
const BaseCurrency = "RUB"

// RateSource resolves a currency code to its rate against the base unit.
type RateSource interface {
	GetRate(ctx context.Context, code string) (decimal.Decimal, error)
}

// EntrySource lists a user's committed operations ordered by date.
type EntrySource interface {
	ListEntries(ctx context.Context, ownerID string, order domain.SortOrder) ([]domain.LedgerEntry, error)
}

// Line is one rendered report row.
type Line struct {
	Date   string
	Amount decimal.Decimal
	Kind   domain.EntryKind
}

// Builder assembles reports from the collaborator services.
type Builder struct {
	rates   RateSource
	entries EntrySource
}

// NewBuilder creates a new report builder.
func NewBuilder(rates RateSource, entries EntrySource) *Builder {
	return &Builder{rates: rates, entries: entries}
}

// Build returns the user's operations converted into the target currency,
// ordered by date per the requested order. Amounts are divided by the rate
// and rounded half-up to 2 decimal places. If the rate lookup fails, the
// whole report fails with that error; no partial report is produced.
func (b *Builder) Build(ctx context.Context, ownerID, currency string, order domain.SortOrder) ([]Line, error) {
	rate := decimal.NewFromInt(1)
	if currency != BaseCurrency {
		r, err := b.rates.GetRate(ctx, currency)
		if err != nil {
			return nil, err
		}
		rate = r
	}

	entries, err := b.entries.ListEntries(ctx, ownerID, order)
	if err != nil {
		return nil, err
	}

	lines := make([]Line, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, Line{
			Date:   e.Date.Format("2006-01-02"),
			Amount: Convert(e.Amount, rate),
			Kind:   e.Kind,
		})
	}
	return lines, nil
}

// Convert divides an amount by the rate and rounds half-up to 2 decimals.
// Rounding is idempotent: converting with rate 1 an already-rounded value
// returns it unchanged.
func Convert(amount, rate decimal.Decimal) decimal.Decimal {
	return amount.Div(rate).Round(2)
}

// Render formats report lines as the user-facing message body.
func Render(lines []Line, currency string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Your operations (%s):\n\n", currency)
	for _, l := range lines {
		fmt.Fprintf(&sb, "%s: %s %s (%s)\n", l.Date, l.Amount.StringFixed(2), currency, l.Kind)
	}
	return sb.String()
}
