// Package cashfree reads order state from the Cashfree payment gateway.
package cashfree

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/gymdesk/gymdesk/internal/application/membership/paymentgateway"
	"github.com/gymdesk/gymdesk/internal/shared/config"
	"github.com/gymdesk/gymdesk/internal/shared/logger"
)

const (
	defaultAPIVersion     = "2023-08-01"
	defaultRequestTimeout = 10 * time.Second
	// maxResponseSize caps the body read from the gateway (1MB).
	maxResponseSize = 1 << 20

	orderStatusPaid          = "PAID"
	paymentStatusSuccess     = "SUCCESS"
	completionTimeLayoutNoTZ = "2006-01-02T15:04:05"
)

type orderResponse struct {
	OrderID         string          `json:"order_id"`
	OrderAmount     decimal.Decimal `json:"order_amount"`
	OrderCurrency   string          `json:"order_currency"`
	OrderStatus     string          `json:"order_status"`
	CustomerDetails struct {
		CustomerEmail string `json:"customer_email"`
	} `json:"customer_details"`
}

type paymentResponse struct {
	PaymentStatus         string `json:"payment_status"`
	PaymentCompletionTime string `json:"payment_completion_time"`
}

type errorResponse struct {
	Message string `json:"message"`
	Code    string `json:"code"`
	Type    string `json:"type"`
}

// Client implements paymentgateway.OrderStatusFetcher over the PG REST API.
type Client struct {
	baseURL      string
	clientID     string
	clientSecret string
	apiVersion   string
	httpClient   *http.Client
	logger       logger.Interface
}

var _ paymentgateway.OrderStatusFetcher = (*Client)(nil)

func NewClient(cfg *config.GatewayConfig, log logger.Interface) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	apiVersion := cfg.APIVersion
	if apiVersion == "" {
		apiVersion = defaultAPIVersion
	}

	return &Client{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		apiVersion:   apiVersion,
		httpClient:   &http.Client{Timeout: timeout},
		logger:       log.Named("cashfree"),
	}
}

// FetchOrder returns the order's current status. For paid orders the
// capture time comes from the order's successful payment.
func (c *Client) FetchOrder(ctx context.Context, orderID string) (*paymentgateway.OrderStatus, error) {
	var order orderResponse
	if err := c.get(ctx, "/orders/"+url.PathEscape(orderID), &order); err != nil {
		return nil, err
	}

	status := &paymentgateway.OrderStatus{
		OrderID:       order.OrderID,
		Status:        order.OrderStatus,
		Amount:        order.OrderAmount,
		Currency:      order.OrderCurrency,
		CustomerEmail: order.CustomerDetails.CustomerEmail,
	}

	if strings.EqualFold(order.OrderStatus, orderStatusPaid) {
		paidAt, err := c.fetchPaidAt(ctx, orderID)
		if err != nil {
			// The order is still paid; the start date falls back to checkout time.
			c.logger.Warnw("failed to fetch payment completion time",
				"order_id", orderID,
				"error", err,
			)
		}
		status.PaidAt = paidAt
	}

	return status, nil
}

func (c *Client) fetchPaidAt(ctx context.Context, orderID string) (*time.Time, error) {
	var payments []paymentResponse
	if err := c.get(ctx, "/orders/"+url.PathEscape(orderID)+"/payments", &payments); err != nil {
		return nil, err
	}

	for _, p := range payments {
		if !strings.EqualFold(p.PaymentStatus, paymentStatusSuccess) || p.PaymentCompletionTime == "" {
			continue
		}
		t, err := parseCompletionTime(p.PaymentCompletionTime)
		if err != nil {
			return nil, err
		}
		return &t, nil
	}
	return nil, nil
}

// parseCompletionTime accepts RFC 3339 and the zone-less form, which the
// gateway reports in IST.
func parseCompletionTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	ist := time.FixedZone("IST", 5*3600+30*60)
	t, err := time.ParseInLocation(completionTimeLayoutNoTZ, s, ist)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid payment completion time %q: %w", s, err)
	}
	return t.UTC(), nil
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to build gateway request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("x-client-id", c.clientID)
	req.Header.Set("x-client-secret", c.clientSecret)
	req.Header.Set("x-api-version", c.apiVersion)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("failed to read gateway response: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return paymentgateway.ErrOrderNotFound
	}
	if resp.StatusCode != http.StatusOK {
		var apiErr errorResponse
		_ = json.Unmarshal(body, &apiErr)
		return fmt.Errorf("gateway returned status %d: %s", resp.StatusCode, apiErr.Message)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode gateway response: %w", err)
	}
	return nil
}
