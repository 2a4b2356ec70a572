// Package backend provides the HTTP orchestration client for the three
// collaborator services: the currency manager, the ledger/data service and
// the role service.
//
// Every call is bounded by the client timeout. Transport failures and
// timeouts surface as domain.ErrUnavailable; collaborator-reported failures
// are mapped onto the shared error taxonomy. The client never retries inside
// a dialogue turn: a retry is a new user turn.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kisses-noo/rpp-lab/internal/domain"
)

// Client is an HTTP client for the collaborator services.
type Client struct {
	currencyURL string
	ledgerURL   string
	roleURL     string
	httpClient  *http.Client
}

// NewClient creates a new collaborator client with the given base URLs.
func NewClient(currencyURL, ledgerURL, roleURL string, timeout time.Duration) *Client {
	return &Client{
		currencyURL: strings.TrimSuffix(currencyURL, "/"),
		ledgerURL:   strings.TrimSuffix(ledgerURL, "/"),
		roleURL:     strings.TrimSuffix(roleURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// IsAdmin reports whether the user may enter admin-gated workflows.
func (c *Client) IsAdmin(ctx context.Context, userID string) (bool, error) {
	var resp struct {
		IsAdmin bool `json:"is_admin"`
	}
	err := c.getJSON(ctx, c.roleURL+"/is_admin/"+url.PathEscape(userID), &resp)
	if err != nil {
		return false, err
	}
	return resp.IsAdmin, nil
}

// GetRate returns the stored rate for a currency code.
func (c *Client) GetRate(ctx context.Context, code string) (decimal.Decimal, error) {
	var resp struct {
		Rate decimal.Decimal `json:"rate"`
	}
	q := url.Values{"currency": {code}}
	err := c.getJSON(ctx, c.roleURL+"/rate?"+q.Encode(), &resp)
	if err != nil {
		return decimal.Zero, err
	}
	return resp.Rate, nil
}

// UpsertCurrency adds a new currency. A duplicate code is a conflict.
func (c *Client) UpsertCurrency(ctx context.Context, code string, rate decimal.Decimal) error {
	body := map[string]any{"currency_name": code, "rate": rate}
	return c.postJSON(ctx, c.currencyURL+"/load", body, nil)
}

// UpdateRate changes the rate of an existing currency.
func (c *Client) UpdateRate(ctx context.Context, code string, rate decimal.Decimal) error {
	body := map[string]any{"currency_name": code, "new_rate": rate}
	return c.postJSON(ctx, c.currencyURL+"/update_currency", body, nil)
}

// DeleteCurrency removes a currency.
func (c *Client) DeleteCurrency(ctx context.Context, code string) error {
	body := map[string]any{"currency_name": code}
	return c.postJSON(ctx, c.currencyURL+"/delete", body, nil)
}

// ListCurrencies returns all stored currencies.
func (c *Client) ListCurrencies(ctx context.Context) ([]domain.CurrencyRecord, error) {
	var resp []domain.CurrencyRecord
	if err := c.getJSON(ctx, c.ledgerURL+"/currencies", &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// Convert converts an amount of the given currency into the base unit.
func (c *Client) Convert(ctx context.Context, code string, amount decimal.Decimal) (domain.Conversion, error) {
	var resp domain.Conversion
	q := url.Values{
		"currency_name": {code},
		"amount":        {amount.String()},
	}
	err := c.getJSON(ctx, c.ledgerURL+"/convert?"+q.Encode(), &resp)
	return resp, err
}

// RegisterUser registers a bot user. A second registration is a conflict.
func (c *Client) RegisterUser(ctx context.Context, ownerID, name string) error {
	body := map[string]any{"chat_id": ownerID, "name": name}
	return c.postJSON(ctx, c.ledgerURL+"/register", body, nil)
}

// IsRegistered reports whether the user has completed registration.
func (c *Client) IsRegistered(ctx context.Context, ownerID string) (bool, error) {
	var resp struct {
		Registered bool `json:"registered"`
	}
	err := c.getJSON(ctx, c.ledgerURL+"/users/"+url.PathEscape(ownerID), &resp)
	if err != nil {
		return false, err
	}
	return resp.Registered, nil
}

// AddEntry stores a committed ledger operation.
func (c *Client) AddEntry(ctx context.Context, entry domain.LedgerEntry) error {
	body := map[string]any{
		"date":           entry.Date.Format("2006-01-02"),
		"sum":            entry.Amount,
		"chat_id":        entry.OwnerID,
		"type_operation": entry.Kind,
	}
	return c.postJSON(ctx, c.ledgerURL+"/operations", body, nil)
}

// ListEntries returns the user's operations ordered by date.
func (c *Client) ListEntries(ctx context.Context, ownerID string, order domain.SortOrder) ([]domain.LedgerEntry, error) {
	var resp []entryPayload
	q := url.Values{
		"chat_id": {ownerID},
		"order":   {string(order)},
	}
	if err := c.getJSON(ctx, c.ledgerURL+"/operations?"+q.Encode(), &resp); err != nil {
		return nil, err
	}

	entries := make([]domain.LedgerEntry, 0, len(resp))
	for _, p := range resp {
		e, err := p.toEntry()
		if err != nil {
			return nil, fmt.Errorf("%w: bad entry in response: %v", domain.ErrInternal, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// entryPayload is the wire form of a ledger entry.
type entryPayload struct {
	ID     string          `json:"id"`
	Date   string          `json:"date"`
	Amount decimal.Decimal `json:"sum"`
	Owner  string          `json:"chat_id"`
	Kind   string          `json:"type_operation"`
}

func (p entryPayload) toEntry() (domain.LedgerEntry, error) {
	date, err := time.Parse("2006-01-02", p.Date)
	if err != nil {
		return domain.LedgerEntry{}, err
	}
	return domain.LedgerEntry{
		ID:      p.ID,
		Date:    date,
		Amount:  p.Amount,
		OwnerID: p.Owner,
		Kind:    domain.EntryKind(p.Kind),
	}, nil
}

func (c *Client) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInternal, err)
	}
	return c.do(req, out)
}

func (c *Client) postJSON(ctx context.Context, url string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInternal, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInternal, err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

// do executes the request and maps the response onto the error taxonomy.
func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("%w: decoding response: %v", domain.ErrInternal, err)
		}
		return nil
	}

	msg := readError(resp.Body)
	switch resp.StatusCode {
	case http.StatusBadRequest, http.StatusConflict:
		return fmt.Errorf("%w: %s", domain.ErrConflict, msg)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", domain.ErrNotFound, msg)
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %s", domain.ErrUnauthorized, msg)
	case http.StatusServiceUnavailable, http.StatusBadGateway, http.StatusGatewayTimeout:
		return fmt.Errorf("%w: %s", domain.ErrUnavailable, msg)
	default:
		return fmt.Errorf("%w: status %d: %s", domain.ErrInternal, resp.StatusCode, msg)
	}
}

// readError extracts the {"error": ...} message a collaborator returns.
func readError(r io.Reader) string {
	data, _ := io.ReadAll(io.LimitReader(r, 4096))
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(data, &payload); err == nil && payload.Error != "" {
		return payload.Error
	}
	return strings.TrimSpace(string(data))
}
