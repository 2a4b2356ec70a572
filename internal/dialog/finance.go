package dialog

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/kisses-noo/rpp-lab/internal/domain"
	"github.com/kisses-noo/rpp-lab/internal/report"
	"github.com/kisses-noo/rpp-lab/internal/validate"
)

// Finance-ledger graph handlers.

func (e *Engine) onUsername(ctx context.Context, sess domain.Session, ev domain.Event) (domain.Session, string) {
	name := strings.TrimSpace(ev.Text)
	if name == "" {
		return sess, promptUsername
	}

	err := e.backend.RegisterUser(ctx, sess.UserID, name)
	success := fmt.Sprintf("Registration complete, %s!", name)
	if domain.ErrorKind(err) == domain.ErrConflict {
		// One-shot registration: a duplicate never overwrites the first.
		sess.Reset()
		return sess, msgAlreadyReg
	}
	return commit(sess, err, success)
}

func (e *Engine) onOpType(_ context.Context, sess domain.Session, ev domain.Event) (domain.Session, string) {
	var kind domain.EntryKind
	switch ev.Token {
	case domain.TokenTypeIncome:
		kind = domain.EntryIncome
	case domain.TokenTypeExpense:
		kind = domain.EntryExpense
	default:
		return sess, promptOpType
	}

	sess.Fields[fieldOpType] = string(kind)
	sess.State = domain.StateAwaitAmount
	return sess, promptAmount
}

func (e *Engine) onAmount(_ context.Context, sess domain.Session, ev domain.Event) (domain.Session, string) {
	amount, err := validate.Amount(ev.Text)
	if err != nil {
		return sess, errorMessage(err)
	}

	sess.Fields[fieldSum] = amount.String()
	sess.State = domain.StateAwaitDate
	return sess, promptDate
}

func (e *Engine) onDate(ctx context.Context, sess domain.Session, ev domain.Event) (domain.Session, string) {
	date, err := validate.Date(ev.Text)
	if err != nil {
		return sess, errorMessage(err)
	}

	// The amount was validated when it was accumulated.
	amount, err := validate.Amount(sess.Fields[fieldSum])
	if err != nil {
		sess.Reset()
		return sess, msgInternal
	}

	entry := domain.LedgerEntry{
		ID:      "op_" + uuid.New().String()[:8],
		Date:    date,
		Amount:  amount,
		OwnerID: sess.UserID,
		Kind:    domain.EntryKind(sess.Fields[fieldOpType]),
	}
	err = e.backend.AddEntry(ctx, entry)
	return commit(sess, err, "Operation added.")
}

func (e *Engine) onReportCurrency(_ context.Context, sess domain.Session, ev domain.Event) (domain.Session, string) {
	// Currency arrives as a button token or as free text.
	input := ev.Text
	if ev.Token != "" {
		input = string(ev.Token)
	}
	code, err := validate.CurrencyCode(input)
	if err != nil {
		return sess, errorMessage(err)
	}

	sess.Fields[fieldReportCurrency] = code
	sess.State = domain.StateAwaitSortOrder
	return sess, promptSortOrder
}

func (e *Engine) onSortOrder(ctx context.Context, sess domain.Session, ev domain.Event) (domain.Session, string) {
	var order domain.SortOrder
	input := strings.ToUpper(strings.TrimSpace(ev.Text))
	if ev.Token != "" {
		input = string(ev.Token)
	}
	switch input {
	case string(domain.SortAsc):
		order = domain.SortAsc
	case string(domain.SortDesc):
		order = domain.SortDesc
	default:
		return sess, promptSortOrder
	}

	currency := sess.Fields[fieldReportCurrency]
	lines, err := e.reports.Build(ctx, sess.UserID, currency, order)
	if err != nil {
		return commit(sess, err, "")
	}

	sess.Reset()
	if len(lines) == 0 {
		return sess, msgNoOperations
	}
	return sess, report.Render(lines, currency)
}
