// Package domain defines the core domain models for the bot and its services.
package domain

// State represents the dialogue state of a session.
type State string

// Shared initial/terminal state.
const StateIdle State = "IDLE"

// Currency-management graph.
const (
	StateAwaitName          State = "AWAIT_NAME"
	StateAwaitRate          State = "AWAIT_RATE"
	StateAwaitDeleteName    State = "AWAIT_DELETE_NAME"
	StateAwaitUpdateName    State = "AWAIT_UPDATE_NAME"
	StateAwaitNewRate       State = "AWAIT_NEW_RATE"
	StateAwaitConvertName   State = "AWAIT_CONVERT_NAME"
	StateAwaitConvertAmount State = "AWAIT_CONVERT_AMOUNT"
)

// Finance-ledger graph.
const (
	StateAwaitUsername       State = "AWAIT_USERNAME"
	StateAwaitOpType         State = "AWAIT_OP_TYPE"
	StateAwaitAmount         State = "AWAIT_AMOUNT"
	StateAwaitDate           State = "AWAIT_DATE"
	StateAwaitReportCurrency State = "AWAIT_REPORT_CURRENCY"
	StateAwaitSortOrder      State = "AWAIT_SORT_ORDER"
)

// EntryKind represents the type of a ledger operation.
type EntryKind string

const (
	EntryIncome  EntryKind = "INCOME"
	EntryExpense EntryKind = "EXPENSE"
)

// SortOrder represents the report ordering by date.
type SortOrder string

const (
	SortAsc  SortOrder = "ASC"
	SortDesc SortOrder = "DESC"
)

// Token represents a button selection sent by the messaging transport.
// Tokens form a closed set so transition tables stay exhaustive.
type Token string

const (
	TokenAddCurrency    Token = "add_currency"
	TokenDeleteCurrency Token = "delete_currency"
	TokenUpdateCurrency Token = "update_currency"
	TokenTypeIncome     Token = "type_income"
	TokenTypeExpense    Token = "type_expense"
	TokenSortAsc        Token = "ASC"
	TokenSortDesc       Token = "DESC"
	TokenCurrencyRUB    Token = "RUB"
	TokenCurrencyUSD    Token = "USD"
	TokenCurrencyEUR    Token = "EUR"
)
