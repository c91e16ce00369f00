package webpay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	pkgerrors "github.com/andesgear/tienda-backend/pkg/errors"
)

const (
	// IntegrationBaseURL points at Transbank's sandbox environment.
	IntegrationBaseURL = "https://webpay3gint.transbank.cl"
	// ProductionBaseURL points at Transbank's live environment.
	ProductionBaseURL = "https://webpay3g.transbank.cl"

	transactionsPath            = "/rswebpaytransaction/api/webpay/v1.2/transactions"
	responseBodyReadLimit int64 = 2048

	statusAuthorized = "AUTHORIZED"
)

var (
	errCommerceCodeRequired = errors.New("webpay commerce code is required")
	errAPIKeyRequired       = errors.New("webpay api key is required")
)

// Client wraps the Transbank Webpay Plus REST API.
type Client struct {
	httpClient   *http.Client
	baseURL      string
	commerceCode string
	apiKey       string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the configured Webpay base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		trimmed := strings.TrimSpace(baseURL)
		if trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// NewClient builds the Webpay client given merchant credentials.
func NewClient(commerceCode, apiKey string, opts ...Option) (*Client, error) {
	trimmedCode := strings.TrimSpace(commerceCode)
	if trimmedCode == "" {
		return nil, errCommerceCodeRequired
	}
	trimmedKey := strings.TrimSpace(apiKey)
	if trimmedKey == "" {
		return nil, errAPIKeyRequired
	}

	client := &Client{
		commerceCode: trimmedCode,
		apiKey:       trimmedKey,
		baseURL:      IntegrationBaseURL,
		httpClient:   &http.Client{Timeout: 15 * time.Second},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	if client.baseURL == "" {
		client.baseURL = IntegrationBaseURL
	}

	return client, nil
}

// CreateRequest describes the payload for starting a Webpay Plus transaction.
type CreateRequest struct {
	BuyOrder  string `json:"buy_order"`
	SessionID string `json:"session_id"`
	Amount    int64  `json:"amount"`
	ReturnURL string `json:"return_url"`
}

// CreateResponse carries the redirect token returned by Transbank.
type CreateResponse struct {
	Token string `json:"token"`
	URL   string `json:"url"`
}

// RedirectURL returns the full payment form URL the shopper should be sent to.
func (r CreateResponse) RedirectURL() string {
	if r.URL == "" || r.Token == "" {
		return ""
	}
	return fmt.Sprintf("%s?token_ws=%s", r.URL, url.QueryEscape(r.Token))
}

// CardDetail holds the masked card data from the commit response.
type CardDetail struct {
	CardNumber string `json:"card_number"`
}

// CommitResponse is Transbank's authorization result for a committed transaction.
type CommitResponse struct {
	VCI                string     `json:"vci"`
	Amount             int64      `json:"amount"`
	Status             string     `json:"status"`
	BuyOrder           string     `json:"buy_order"`
	SessionID          string     `json:"session_id"`
	CardDetail         CardDetail `json:"card_detail"`
	AccountingDate     string     `json:"accounting_date"`
	TransactionDate    string     `json:"transaction_date"`
	AuthorizationCode  string     `json:"authorization_code"`
	PaymentTypeCode    string     `json:"payment_type_code"`
	ResponseCode       int        `json:"response_code"`
	InstallmentsNumber int        `json:"installments_number"`
}

// Approved reports whether Transbank authorized the payment. Both conditions
// must hold: rejections can carry status AUTHORIZED with a nonzero code.
func (r CommitResponse) Approved() bool {
	return r.ResponseCode == 0 && r.Status == statusAuthorized
}

// Create opens a Webpay Plus transaction and returns the redirect token.
func (c *Client) Create(ctx context.Context, req CreateRequest) (*CreateResponse, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "webpay client not configured")
	}
	if strings.TrimSpace(req.BuyOrder) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "buy order is required")
	}
	if req.Amount <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
	}
	if strings.TrimSpace(req.ReturnURL) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "return url is required")
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "marshal create request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.buildURL(transactionsPath), bytes.NewReader(payload))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build create request")
	}
	c.setHeaders(httpReq)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute create request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, c.apiError(resp, "create transaction failed")
	}

	var created CreateResponse
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode create response")
	}
	if created.Token == "" || created.URL == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "create response missing token or url")
	}

	return &created, nil
}

// Commit confirms the transaction identified by token after the shopper
// returns from the payment form.
func (c *Client) Commit(ctx context.Context, token string) (*CommitResponse, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "webpay client not configured")
	}
	trimmed := strings.TrimSpace(token)
	if trimmed == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transaction token is required")
	}

	commitURL := fmt.Sprintf("%s/%s", c.buildURL(transactionsPath), url.PathEscape(trimmed))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPut, commitURL, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build commit request")
	}
	c.setHeaders(httpReq)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute commit request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, c.apiError(resp, "commit transaction failed")
	}

	var committed CommitResponse
	if err := json.NewDecoder(resp.Body).Decode(&committed); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode commit response")
	}

	return &committed, nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Tbk-Api-Key-Id", c.commerceCode)
	req.Header.Set("Tbk-Api-Key-Secret", c.apiKey)
}

func (c *Client) apiError(resp *http.Response, context string) error {
	msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
	return pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))), context)
}

func (c *Client) buildURL(path string) string {
	trimmed := strings.TrimRight(c.baseURL, "/")
	path = strings.TrimLeft(path, "/")
	return fmt.Sprintf("%s/%s", trimmed, path)
}
