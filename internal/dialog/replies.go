package dialog

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/kisses-noo/rpp-lab/internal/domain"
)

// Field keys accumulated in Session.Fields across turns.
const (
	fieldCurrencyName   = "currency_name"
	fieldOpType         = "type_operation"
	fieldSum            = "sum"
	fieldReportCurrency = "currency"
)

// Prompts and user-facing messages. Every error kind in the taxonomy maps to
// exactly one message class below.
const (
	msgIdleHint = "Use /help to see the available commands."

	msgHelp = "Hi! I can manage currencies and track your finances.\n\n" +
		"Available commands:\n" +
		"/reg - register\n" +
		"/add_operation - add an income or expense\n" +
		"/operations - view your operations\n" +
		"/get_currencies - list currencies\n" +
		"/convert - convert a currency\n" +
		"/cancel - abort the current dialogue"

	msgHelpAdmin = msgHelp + "\n/manage_currency - manage currencies (admin)"

	msgManageMenu = "Currency management:\n" +
		"add_currency - add a currency\n" +
		"delete_currency - delete a currency\n" +
		"update_currency - change a rate"

	promptCurrencyName   = "Enter the currency name:"
	promptCurrencyRate   = "Enter the rate to the base unit (for example, 90.5):"
	promptDeleteName     = "Enter the currency name to delete:"
	promptUpdateName     = "Enter the currency name to update:"
	promptNewRate        = "Enter the new rate:"
	promptConvertName    = "Enter the currency name to convert:"
	promptConvertAmount  = "Enter the amount to convert:"
	promptUsername       = "Enter your name:"
	promptOpType         = "Choose the operation type: income or expense."
	promptAmount         = "Enter the operation amount:"
	promptDate           = "Enter the operation date (YYYY-MM-DD):"
	promptReportCurrency = "Choose the display currency: RUB, USD or EUR."
	promptSortOrder      = "Choose the sort order: ASC or DESC."

	msgCancelled      = "Dialogue cancelled."
	msgNothingCancel  = "Nothing to cancel."
	msgRegisterFirst  = "Please register first with /reg."
	msgAlreadyReg     = "You are already registered!"
	msgNoCurrencies   = "No currencies stored yet."
	msgNoOperations   = "You have no operations yet."
	msgUnknownCommand = "Unknown command. Use /help."

	msgNotFound    = "Not found. Check the name and try again."
	msgConflict    = "It already exists."
	msgDenied      = "You do not have access to this command."
	msgUnavailable = "The service is unavailable. Try again later."
	msgInternal    = "Something went wrong. Try again."
)

// errorMessage maps a collaborator or engine error onto its single
// user-visible message class. Unexpected kinds are logged and reported
// generically.
func errorMessage(err error) string {
	switch domain.ErrorKind(err) {
	case domain.ErrNotFound:
		return msgNotFound
	case domain.ErrConflict:
		return msgConflict
	case domain.ErrUnauthorized:
		return msgDenied
	case domain.ErrUnavailable:
		return msgUnavailable
	case domain.ErrValidation:
		return validationMessage(err)
	default:
		slog.Error("unexpected error in dialogue", "error", err)
		return msgInternal
	}
}

// validationMessage surfaces the validator's own wording without the
// sentinel prefix.
func validationMessage(err error) string {
	msg := err.Error()
	if i := strings.Index(msg, ": "); i >= 0 && errors.Is(err, domain.ErrValidation) {
		msg = msg[i+2:]
	}
	return "Invalid input: " + msg
}
