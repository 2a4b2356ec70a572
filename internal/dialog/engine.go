// Package dialog implements the finite-state dialogue engine.
//
// Each inbound event is one transition: the engine reads the user's session,
// computes the next state (possibly calling collaborator services within the
// turn) and writes it back guarded by the version it read. Concurrent events
// for the same user are serialized by the session store's CompareAndSet; the
// losing turn restarts its read-compute-write cycle.
package dialog

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/kisses-noo/rpp-lab/internal/domain"
	"github.com/kisses-noo/rpp-lab/internal/report"
	"github.com/kisses-noo/rpp-lab/internal/session"
)

// Backend is the collaborator surface the engine drives.
type Backend interface {
	IsAdmin(ctx context.Context, userID string) (bool, error)
	GetRate(ctx context.Context, code string) (decimal.Decimal, error)
	UpsertCurrency(ctx context.Context, code string, rate decimal.Decimal) error
	UpdateRate(ctx context.Context, code string, rate decimal.Decimal) error
	DeleteCurrency(ctx context.Context, code string) error
	ListCurrencies(ctx context.Context) ([]domain.CurrencyRecord, error)
	Convert(ctx context.Context, code string, amount decimal.Decimal) (domain.Conversion, error)
	RegisterUser(ctx context.Context, ownerID, name string) error
	IsRegistered(ctx context.Context, ownerID string) (bool, error)
	AddEntry(ctx context.Context, entry domain.LedgerEntry) error
	ListEntries(ctx context.Context, ownerID string, order domain.SortOrder) ([]domain.LedgerEntry, error)
}

// handlerFunc computes one transition for a non-idle state. It returns the
// next session and the reply text. Validation failures return the session
// unchanged together with a re-prompt.
type handlerFunc func(ctx context.Context, sess domain.Session, ev domain.Event) (domain.Session, string)

// Engine is the dialogue state machine.
type Engine struct {
	sessions *session.Store
	backend  Backend
	reports  *report.Builder
	handlers map[domain.State]handlerFunc
}

// NewEngine creates a dialogue engine over the given session store and
// collaborator client.
func NewEngine(sessions *session.Store, b Backend) *Engine {
	e := &Engine{
		sessions: sessions,
		backend:  b,
		reports:  report.NewBuilder(b, b),
	}
	e.handlers = map[domain.State]handlerFunc{
		// Currency-management graph.
		domain.StateAwaitName:          e.onCurrencyName,
		domain.StateAwaitRate:          e.onCurrencyRate,
		domain.StateAwaitDeleteName:    e.onDeleteName,
		domain.StateAwaitUpdateName:    e.onUpdateName,
		domain.StateAwaitNewRate:       e.onNewRate,
		domain.StateAwaitConvertName:   e.onConvertName,
		domain.StateAwaitConvertAmount: e.onConvertAmount,

		// Finance-ledger graph.
		domain.StateAwaitUsername:       e.onUsername,
		domain.StateAwaitOpType:         e.onOpType,
		domain.StateAwaitAmount:         e.onAmount,
		domain.StateAwaitDate:           e.onDate,
		domain.StateAwaitReportCurrency: e.onReportCurrency,
		domain.StateAwaitSortOrder:      e.onSortOrder,
	}
	return e
}

// Handle processes one inbound event and produces the reply. It retries the
// read-compute-write cycle on version conflicts.
func (e *Engine) Handle(ctx context.Context, ev domain.Event) domain.Reply {
	for {
		sess := e.sessions.Get(ev.UserID)
		next, text := e.transition(ctx, sess, ev)

		err := e.sessions.CompareAndSet(ev.UserID, sess.Version, next)
		if errors.Is(err, session.ErrVersionConflict) {
			slog.Debug("session version conflict, retrying turn", "user_id", ev.UserID)
			continue
		}
		if err != nil {
			slog.Error("failed to store session", "user_id", ev.UserID, "error", err)
			return domain.Reply{UserID: ev.UserID, Text: msgInternal}
		}
		return domain.Reply{UserID: ev.UserID, Text: text}
	}
}

// transition computes a single state transition.
func (e *Engine) transition(ctx context.Context, sess domain.Session, ev domain.Event) (domain.Session, string) {
	if cmd, ok := parseCommand(ev.Text); ok {
		// A command always abandons whatever workflow was in flight.
		sess.Reset()
		return e.handleCommand(ctx, sess, cmd)
	}

	if sess.State == domain.StateIdle {
		if ev.Token != "" {
			return e.handleIdleToken(ctx, sess, ev.Token)
		}
		return sess, msgIdleHint
	}

	h, ok := e.handlers[sess.State]
	if !ok {
		// Unknown state means corrupted session data; recover to idle.
		slog.Error("no handler for state", "user_id", sess.UserID, "state", sess.State)
		sess.Reset()
		return sess, msgInternal
	}
	return h(ctx, sess, ev)
}

// commit finishes a workflow: the session clears its fields and returns to
// IDLE whether the collaborator call succeeded or not. Only the reply
// differs, by error kind.
func commit(sess domain.Session, err error, success string) (domain.Session, string) {
	sess.Reset()
	if err != nil {
		return sess, errorMessage(err)
	}
	return sess, success
}
