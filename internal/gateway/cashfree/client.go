// Package cashfree is a thin client for the Cashfree PG orders API.
package cashfree

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/bepeace/telemed/config"
	"github.com/bepeace/telemed/internal/domain"
)

// Gateway is the payment-provider surface the order service depends on.
type Gateway interface {
	CreateOrder(ctx context.Context, req CreateOrderRequest) (*Order, error)
	GetOrder(ctx context.Context, orderID string) (*Order, error)
}

type CreateOrderRequest struct {
	OrderID       string
	Amount        float64
	Currency      string
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	ReturnURL     string
	NotifyURL     string
}

// Order is the subset of the provider's order object the service reads.
type Order struct {
	OrderID          string  `json:"order_id"`
	Status           string  `json:"order_status"`
	Amount           float64 `json:"order_amount"`
	Currency         string  `json:"order_currency"`
	PaymentSessionID string  `json:"payment_session_id"`
}

type customerDetails struct {
	CustomerID    string `json:"customer_id"`
	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email"`
	CustomerPhone string `json:"customer_phone"`
}

type orderMeta struct {
	ReturnURL string `json:"return_url,omitempty"`
	NotifyURL string `json:"notify_url,omitempty"`
}

type createOrderBody struct {
	OrderID         string          `json:"order_id"`
	OrderAmount     float64         `json:"order_amount"`
	OrderCurrency   string          `json:"order_currency"`
	CustomerDetails customerDetails `json:"customer_details"`
	OrderMeta       orderMeta       `json:"order_meta"`
}

type Client struct {
	baseURL    string
	appID      string
	secretKey  string
	apiVersion string
	httpClient *http.Client
}

func NewClient(cfg config.CashfreeConfig) *Client {
	return &Client{
		baseURL:    cfg.BaseURL,
		appID:      cfg.AppID,
		secretKey:  cfg.SecretKey,
		apiVersion: cfg.APIVersion,
		httpClient: &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second},
	}
}

func (c *Client) CreateOrder(ctx context.Context, req CreateOrderRequest) (*Order, error) {
	body := createOrderBody{
		OrderID:       req.OrderID,
		OrderAmount:   req.Amount,
		OrderCurrency: req.Currency,
		CustomerDetails: customerDetails{
			CustomerID:    req.OrderID,
			CustomerName:  req.CustomerName,
			CustomerEmail: req.CustomerEmail,
			CustomerPhone: req.CustomerPhone,
		},
		OrderMeta: orderMeta{ReturnURL: req.ReturnURL, NotifyURL: req.NotifyURL},
	}
	return c.do(ctx, http.MethodPost, "/orders", body)
}

func (c *Client) GetOrder(ctx context.Context, orderID string) (*Order, error) {
	return c.do(ctx, http.MethodGet, "/orders/"+url.PathEscape(orderID), nil)
}

func (c *Client) do(ctx context.Context, method, path string, body any) (*Order, error) {
	var payload io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("cashfree: marshal request: %w", err)
		}
		payload = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, payload)
	if err != nil {
		return nil, fmt.Errorf("cashfree: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-client-id", c.appID)
	req.Header.Set("x-client-secret", c.secretKey)
	req.Header.Set("x-api-version", c.apiVersion)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrGateway, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", domain.ErrGateway, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: %s %s returned %d: %s", domain.ErrGateway, method, path, resp.StatusCode, data)
	}

	var order Order
	if err := json.Unmarshal(data, &order); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", domain.ErrGateway, err)
	}
	return &order, nil
}

var _ Gateway = (*Client)(nil)
