package dialog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/kisses-noo/rpp-lab/internal/domain"
)

// parseCommand extracts a leading /command from free text.
func parseCommand(text string) (string, bool) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return "", false
	}
	cmd, _, _ := strings.Cut(text, " ")
	return cmd, true
}

// handleCommand dispatches a command. The session is already reset: a
// command starts from IDLE regardless of what was in flight.
func (e *Engine) handleCommand(ctx context.Context, sess domain.Session, cmd string) (domain.Session, string) {
	switch cmd {
	case "/start", "/help":
		return sess, e.helpText(ctx, sess.UserID)

	case "/cancel":
		return sess, msgCancelled

	case "/reg":
		registered, err := e.backend.IsRegistered(ctx, sess.UserID)
		if err != nil {
			return sess, errorMessage(err)
		}
		if registered {
			return sess, msgAlreadyReg
		}
		sess.State = domain.StateAwaitUsername
		return sess, promptUsername

	case "/add_operation":
		if next, msg, ok := e.requireRegistered(ctx, sess); !ok {
			return next, msg
		}
		sess.State = domain.StateAwaitOpType
		return sess, promptOpType

	case "/operations":
		if next, msg, ok := e.requireRegistered(ctx, sess); !ok {
			return next, msg
		}
		sess.State = domain.StateAwaitReportCurrency
		return sess, promptReportCurrency

	case "/manage_currency":
		if next, msg, ok := e.requireAdmin(ctx, sess); !ok {
			return next, msg
		}
		return sess, msgManageMenu

	case "/get_currencies":
		return sess, e.listCurrencies(ctx)

	case "/convert":
		sess.State = domain.StateAwaitConvertName
		return sess, promptConvertName

	default:
		return sess, msgUnknownCommand
	}
}

// handleIdleToken handles menu button selections arriving at IDLE. Entering
// the currency-management graph is admin-gated: the gate runs before any
// state change.
func (e *Engine) handleIdleToken(ctx context.Context, sess domain.Session, token domain.Token) (domain.Session, string) {
	switch token {
	case domain.TokenAddCurrency:
		if next, msg, ok := e.requireAdmin(ctx, sess); !ok {
			return next, msg
		}
		sess.State = domain.StateAwaitName
		return sess, promptCurrencyName

	case domain.TokenDeleteCurrency:
		if next, msg, ok := e.requireAdmin(ctx, sess); !ok {
			return next, msg
		}
		sess.State = domain.StateAwaitDeleteName
		return sess, promptDeleteName

	case domain.TokenUpdateCurrency:
		if next, msg, ok := e.requireAdmin(ctx, sess); !ok {
			return next, msg
		}
		sess.State = domain.StateAwaitUpdateName
		return sess, promptUpdateName

	default:
		return sess, msgIdleHint
	}
}

// requireAdmin runs the admin entry guard. On a failed or unavailable check
// the session stays IDLE.
func (e *Engine) requireAdmin(ctx context.Context, sess domain.Session) (domain.Session, string, bool) {
	isAdmin, err := e.backend.IsAdmin(ctx, sess.UserID)
	if err != nil {
		return sess, errorMessage(err), false
	}
	if !isAdmin {
		return sess, msgDenied, false
	}
	return sess, "", true
}

// requireRegistered blocks ledger workflows for unregistered users.
func (e *Engine) requireRegistered(ctx context.Context, sess domain.Session) (domain.Session, string, bool) {
	registered, err := e.backend.IsRegistered(ctx, sess.UserID)
	if err != nil {
		return sess, errorMessage(err), false
	}
	if !registered {
		return sess, msgRegisterFirst, false
	}
	return sess, "", true
}

// listCurrencies renders the /get_currencies reply.
func (e *Engine) listCurrencies(ctx context.Context) string {
	records, err := e.backend.ListCurrencies(ctx)
	if err != nil {
		return errorMessage(err)
	}
	if len(records) == 0 {
		return msgNoCurrencies
	}

	var sb strings.Builder
	sb.WriteString("Currencies and their rates to the base unit:\n\n")
	for _, rec := range records {
		fmt.Fprintf(&sb, "- %s: %s\n", rec.Code, rec.Rate.StringFixed(2))
	}
	return sb.String()
}

// helpText varies the command list with admin status. An unavailable role
// service degrades to the non-admin list.
func (e *Engine) helpText(ctx context.Context, userID string) string {
	isAdmin, err := e.backend.IsAdmin(ctx, userID)
	if err != nil {
		slog.Warn("admin check failed for help text", "user_id", userID, "error", err)
		return msgHelp
	}
	if isAdmin {
		return msgHelpAdmin
	}
	return msgHelp
}
