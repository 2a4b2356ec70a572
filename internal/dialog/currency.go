package dialog

import (
	"context"
	"fmt"

	"github.com/kisses-noo/rpp-lab/internal/domain"
	"github.com/kisses-noo/rpp-lab/internal/validate"
)

// Currency-management graph handlers. Each non-idle state expects exactly
// one typed input; a rejected input re-prompts without touching the session.

func (e *Engine) onCurrencyName(_ context.Context, sess domain.Session, ev domain.Event) (domain.Session, string) {
	code, err := validate.CurrencyCode(ev.Text)
	if err != nil {
		return sess, errorMessage(err)
	}
	sess.Fields[fieldCurrencyName] = code
	sess.State = domain.StateAwaitRate
	return sess, fmt.Sprintf("Enter the %s rate to the base unit (for example, 90.5):", code)
}

func (e *Engine) onCurrencyRate(ctx context.Context, sess domain.Session, ev domain.Event) (domain.Session, string) {
	rate, err := validate.Rate(ev.Text)
	if err != nil {
		return sess, errorMessage(err)
	}

	code := sess.Fields[fieldCurrencyName]
	err = e.backend.UpsertCurrency(ctx, code, rate)
	return commit(sess, err, fmt.Sprintf("Currency %s added.", code))
}

func (e *Engine) onDeleteName(ctx context.Context, sess domain.Session, ev domain.Event) (domain.Session, string) {
	code, err := validate.CurrencyCode(ev.Text)
	if err != nil {
		return sess, errorMessage(err)
	}

	err = e.backend.DeleteCurrency(ctx, code)
	return commit(sess, err, fmt.Sprintf("Currency %s deleted.", code))
}

func (e *Engine) onUpdateName(_ context.Context, sess domain.Session, ev domain.Event) (domain.Session, string) {
	code, err := validate.CurrencyCode(ev.Text)
	if err != nil {
		return sess, errorMessage(err)
	}
	sess.Fields[fieldCurrencyName] = code
	sess.State = domain.StateAwaitNewRate
	return sess, promptNewRate
}

func (e *Engine) onNewRate(ctx context.Context, sess domain.Session, ev domain.Event) (domain.Session, string) {
	rate, err := validate.Rate(ev.Text)
	if err != nil {
		return sess, errorMessage(err)
	}

	code := sess.Fields[fieldCurrencyName]
	err = e.backend.UpdateRate(ctx, code, rate)
	return commit(sess, err, fmt.Sprintf("Rate of %s updated to %s.", code, rate.StringFixed(2)))
}

func (e *Engine) onConvertName(_ context.Context, sess domain.Session, ev domain.Event) (domain.Session, string) {
	code, err := validate.CurrencyCode(ev.Text)
	if err != nil {
		return sess, errorMessage(err)
	}
	sess.Fields[fieldCurrencyName] = code
	sess.State = domain.StateAwaitConvertAmount
	return sess, promptConvertAmount
}

func (e *Engine) onConvertAmount(ctx context.Context, sess domain.Session, ev domain.Event) (domain.Session, string) {
	amount, err := validate.Amount(ev.Text)
	if err != nil {
		return sess, errorMessage(err)
	}

	code := sess.Fields[fieldCurrencyName]
	conv, err := e.backend.Convert(ctx, code, amount)
	success := ""
	if err == nil {
		success = fmt.Sprintf("%s %s = %s in the base unit.\nRate: 1 %s = %s.",
			amount.String(), code, conv.ConvertedAmount.StringFixed(2), code, conv.Rate.String())
	}
	return commit(sess, err, success)
}
