package parking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// PaymentMethod tries to collect amount and reports whether it succeeded.
// It must not retry on its own.
type PaymentMethod interface {
	AttemptPayment(ctx context.Context, amount float64) bool
}

type PaymentFunc func(ctx context.Context, amount float64) bool

func (f PaymentFunc) AttemptPayment(ctx context.Context, amount float64) bool {
	return f(ctx, amount)
}

// CashPayment always succeeds and keeps the amounts it took.
type CashPayment struct {
	mu       sync.Mutex
	receipts []float64
}

func NewCashPayment() *CashPayment {
	return &CashPayment{}
}

func (c *CashPayment) AttemptPayment(_ context.Context, amount float64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.receipts = append(c.receipts, amount)
	return true
}

func (c *CashPayment) Receipts() []float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]float64, len(c.receipts))
	copy(out, c.receipts)
	return out
}

// PrepaidCard declines any amount above its remaining balance.
type PrepaidCard struct {
	mu      sync.Mutex
	balance float64
}

func NewPrepaidCard(balance float64) *PrepaidCard {
	return &PrepaidCard{balance: balance}
}

func (p *PrepaidCard) AttemptPayment(_ context.Context, amount float64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if amount > p.balance {
		return false
	}
	p.balance -= amount
	return true
}

func (p *PrepaidCard) TopUp(amount float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.balance += amount
}

func (p *PrepaidCard) Balance() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.balance
}

type declinedPayment struct{}

func (declinedPayment) AttemptPayment(context.Context, float64) bool {
	return false
}

// DeclinedPayment refuses every payment.
var DeclinedPayment PaymentMethod = declinedPayment{}

var errAttemptDeclined = errors.New("payment attempt declined")

// RetryingPayment is a caller-side retry policy around another method.
type RetryingPayment struct {
	method          PaymentMethod
	maxTries        uint
	initialInterval time.Duration
	maxInterval     time.Duration
}

func NewRetryingPayment(method PaymentMethod, maxTries uint) *RetryingPayment {
	if maxTries == 0 {
		maxTries = 1
	}
	return &RetryingPayment{
		method:          method,
		maxTries:        maxTries,
		initialInterval: 100 * time.Millisecond,
		maxInterval:     2 * time.Second,
	}
}

// WithIntervals overrides the backoff bounds.
func (r *RetryingPayment) WithIntervals(initial, max time.Duration) *RetryingPayment {
	r.initialInterval = initial
	r.maxInterval = max
	return r
}

func (r *RetryingPayment) AttemptPayment(ctx context.Context, amount float64) bool {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = r.initialInterval
	bo.MaxInterval = r.maxInterval

	ok, err := backoff.Retry(ctx, func() (bool, error) {
		if r.method.AttemptPayment(ctx, amount) {
			return true, nil
		}
		return false, errAttemptDeclined
	},
		backoff.WithBackOff(bo),
		backoff.WithMaxTries(r.maxTries),
	)
	return err == nil && ok
}

// WithRetries wraps method in a RetryingPayment when tries > 1. Cash, prepaid
// cards and DeclinedPayment settle from local state and are returned as is.
func WithRetries(method PaymentMethod, tries uint) PaymentMethod {
	if tries <= 1 {
		return method
	}
	switch method.(type) {
	case *CashPayment, *PrepaidCard, declinedPayment:
		return method
	}
	return NewRetryingPayment(method, tries)
}

// NewPaymentMethod builds a method from its name: cash, declined, or card
// (a prepaid card holding cardBalance).
func NewPaymentMethod(kind string, cardBalance float64) (PaymentMethod, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", "cash":
		return NewCashPayment(), nil
	case "card":
		return NewPrepaidCard(cardBalance), nil
	case "declined":
		return DeclinedPayment, nil
	}
	return nil, fmt.Errorf("unknown payment method %q", kind)
}
