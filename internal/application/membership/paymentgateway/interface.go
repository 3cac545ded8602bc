package paymentgateway

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// ErrOrderNotFound is returned when the gateway has no record of an order.
var ErrOrderNotFound = errors.New("order not found at gateway")

// OrderStatusFetcher looks up the current state of a checkout order.
type OrderStatusFetcher interface {
	FetchOrder(ctx context.Context, orderID string) (*OrderStatus, error)
}

// OrderStatus is the gateway's view of an order. Status is the raw gateway
// string; callers normalize it.
type OrderStatus struct {
	OrderID       string
	Status        string
	Amount        decimal.Decimal
	Currency      string
	CustomerEmail string
	// PaidAt is set once the gateway reports a successful capture.
	PaidAt *time.Time
}
