package payment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"golang.org/x/sync/singleflight"

	httpapi "medilink-client/internal/api/http"
	"medilink-client/internal/domain"
	"medilink-client/internal/logger"
)

var ErrCheckoutInProgress = errors.New("a checkout is already open for this order")

// Opener shows the checkout page to the user, typically by printing the URL
// or launching a browser
type Opener func(checkoutURL string) error

type Config struct {
	Addr         string // loopback listen address, port 0 picks a free one
	PublicKey    string
	ScriptURL    string
	Currency     string // used when the order carries none
	MerchantName string
}

type outcome struct {
	result *domain.PaymentResult
	err    error
}

type pending struct {
	page httpapi.CheckoutPage
	done chan outcome
}

// Checkout collects payments through the provider widget rendered on a
// local page. The callback server is started on first use; concurrent
// first uses share one start and a failed start is retried by the next caller.
type Checkout struct {
	cfg    Config
	opener Opener
	listen func(network, address string) (net.Listener, error)
	log    *slog.Logger

	group singleflight.Group

	mu      sync.Mutex
	baseURL string
	server  *http.Server
	waiting map[string]*pending // by provider order id
}

func NewCheckout(cfg Config, opener Opener) *Checkout {
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:0"
	}
	if cfg.MerchantName == "" {
		cfg.MerchantName = "MediLink"
	}
	return &Checkout{
		cfg:     cfg,
		opener:  opener,
		listen:  net.Listen,
		log:     logger.WithComponent("checkout"),
		waiting: make(map[string]*pending),
	}
}

// Open shows the widget for order and blocks until the user pays, closes
// the widget or ctx ends. No timeout is applied.
func (c *Checkout) Open(ctx context.Context, order *domain.PaymentOrder, booking *domain.Booking) (*domain.PaymentResult, error) {
	if order == nil || order.ExternalOrderID == "" {
		return nil, fmt.Errorf("payment order has no provider order id")
	}
	base, err := c.load()
	if err != nil {
		return nil, err
	}

	p := &pending{
		page: c.page(order, booking),
		done: make(chan outcome, 1),
	}
	orderID := order.ExternalOrderID

	c.mu.Lock()
	if _, busy := c.waiting[orderID]; busy {
		c.mu.Unlock()
		return nil, ErrCheckoutInProgress
	}
	c.waiting[orderID] = p
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		delete(c.waiting, orderID)
		c.mu.Unlock()
	}()

	checkoutURL := fmt.Sprintf("%s/checkout/%s?nonce=%s", base, url.PathEscape(orderID), url.QueryEscape(p.page.Nonce))
	if err := c.opener(checkoutURL); err != nil {
		return nil, fmt.Errorf("failed to open checkout: %w", err)
	}
	c.log.Info("Waiting for payment", "order_id", orderID)

	select {
	case o := <-p.done:
		return o.result, o.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *Checkout) page(order *domain.PaymentOrder, booking *domain.Booking) httpapi.CheckoutPage {
	key := order.Key
	if key == "" {
		key = c.cfg.PublicKey
	}
	currency := order.Currency
	if currency == "" {
		currency = c.cfg.Currency
	}
	description := "equipment booking"
	if booking != nil && booking.EquipmentName != "" {
		description = fmt.Sprintf("%s, %s to %s", booking.EquipmentName, booking.StartDate, booking.EndDate)
	}
	return httpapi.CheckoutPage{
		OrderID:      order.ExternalOrderID,
		Nonce:        uuid.NewString(),
		Key:          key,
		ScriptURL:    c.cfg.ScriptURL,
		AmountMinor:  int64(math.Round(order.Amount * 100)),
		Currency:     currency,
		MerchantName: c.cfg.MerchantName,
		Description:  description,
	}
}

// load starts the callback server once and returns its base URL
func (c *Checkout) load() (string, error) {
	c.mu.Lock()
	base := c.baseURL
	c.mu.Unlock()
	if base != "" {
		return base, nil
	}

	v, err, _ := c.group.Do("load", func() (any, error) {
		c.mu.Lock()
		if c.baseURL != "" {
			defer c.mu.Unlock()
			return c.baseURL, nil
		}
		c.mu.Unlock()

		ln, err := c.listen("tcp", c.cfg.Addr)
		if err != nil {
			return "", fmt.Errorf("failed to start checkout server: %w", err)
		}
		router := mux.NewRouter()
		httpapi.RegisterCheckoutRoutes(router, c)
		srv := &http.Server{Handler: router, ReadHeaderTimeout: 10 * time.Second}
		go func() {
			if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
				c.log.Error("Checkout server stopped", "error", err)
			}
		}()

		base := "http://" + ln.Addr().String()
		c.mu.Lock()
		c.baseURL = base
		c.server = srv
		c.mu.Unlock()
		c.log.Debug("Checkout server listening", "url", base)
		return base, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// URL is the base address of the callback server, empty until started
func (c *Checkout) URL() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.baseURL
}

// Close stops the callback server if it was started
func (c *Checkout) Close(ctx context.Context) error {
	c.mu.Lock()
	srv := c.server
	c.server = nil
	c.baseURL = ""
	c.mu.Unlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

func (c *Checkout) lookup(orderID, nonce string) (*pending, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.waiting[orderID]
	if !ok || p.page.Nonce != nonce {
		return nil, false
	}
	return p, true
}

func (c *Checkout) Page(orderID, nonce string) (httpapi.CheckoutPage, bool) {
	p, ok := c.lookup(orderID, nonce)
	if !ok {
		return httpapi.CheckoutPage{}, false
	}
	return p.page, true
}

func (c *Checkout) Complete(orderID, nonce string, result domain.PaymentResult) bool {
	return c.finish(orderID, nonce, outcome{result: &result})
}

func (c *Checkout) Dismiss(orderID, nonce string) bool {
	return c.finish(orderID, nonce, outcome{err: domain.ErrPaymentDismissed})
}

func (c *Checkout) finish(orderID, nonce string, o outcome) bool {
	p, ok := c.lookup(orderID, nonce)
	if !ok {
		return false
	}
	select {
	case p.done <- o:
		return true
	default:
		// already answered
		return false
	}
}
