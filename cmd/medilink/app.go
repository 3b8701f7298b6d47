package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"time"

	"medilink-client/internal/config"
	"medilink-client/internal/gateway"
	"medilink-client/internal/logger"
	"medilink-client/internal/payment"
	"medilink-client/internal/repository/rest"
	"medilink-client/internal/security"
	"medilink-client/internal/service"
	"medilink-client/internal/session"
	"medilink-client/internal/storage"
)

// app holds the wiring shared by all commands. It is filled in by init
// once flags are parsed.
type app struct {
	in     io.Reader
	reader *bufio.Reader
	out    io.Writer
	errOut io.Writer

	configPath string
	ephemeral  bool

	cfg       *config.Config
	store     storage.TokenStore
	session   *session.Provider
	client    *gateway.Client
	auth      service.AuthService
	equipment service.EquipmentService
	bookings  service.BookingService
	workflow  service.BookingWorkflow
	checkout  *payment.Checkout
}

func newApp(in io.Reader, out, errOut io.Writer) *app {
	return &app{in: in, out: out, errOut: errOut}
}

func (a *app) init(ctx context.Context) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg

	logger.InitializeWithWriter(a.errOut, cfg.Log.Level, cfg.Log.Format)
	logger.Debug("Configuration loaded", "api", cfg.API.BaseURL, "session_store", cfg.Session.Store, "payments", cfg.Payment.Enabled)

	storeCfg := storage.Config{
		Type:          cfg.Session.Store,
		Dir:           cfg.Session.Path,
		DSN:           cfg.Session.DSN,
		EncryptionKey: cfg.Session.EncryptionKey,
	}
	if a.ephemeral {
		storeCfg.Type = "memory"
	}
	store, err := storage.New(storeCfg)
	if err != nil {
		return fmt.Errorf("failed to open session store: %w", err)
	}
	a.store = store

	a.session = session.NewProvider(store, security.NewIdentityResolver())
	if err := a.session.Init(ctx); err != nil {
		return err
	}

	a.client = gateway.NewClient(cfg.API.BaseURL, cfg.GetAPITimeout(), a.session, gateway.NavigatorFunc(a.redirectToLogin))
	repos := rest.NewStore(a.client)

	a.auth = service.NewAuthService(repos.AuthRepository, a.session)
	a.equipment = service.NewEquipmentService(repos.EquipmentRepository, a.session)
	a.bookings = service.NewBookingService(repos.BookingRepository, a.session)

	notifier := service.NewNoopNotifier()
	if cfg.Notifications.SendGridAPIKey != "" {
		notifier = service.NewSendGridNotifier(cfg.Notifications.SendGridAPIKey, cfg.Notifications.FromEmail, cfg.Notifications.FromName)
	}

	var widget service.PaymentWidget
	if cfg.Payment.Enabled {
		a.checkout = payment.NewCheckout(payment.Config{
			Addr:         cfg.GetCallbackAddress(),
			PublicKey:    cfg.Payment.PublicKey,
			ScriptURL:    cfg.Payment.ScriptURL,
			Currency:     cfg.Payment.Currency,
			MerchantName: cfg.Notifications.FromName,
		}, a.showCheckout)
		widget = a.checkout
	}

	a.workflow = service.NewBookingWorkflow(
		a.session,
		repos.BookingRepository,
		repos.PaymentRepository,
		repos.EquipmentRepository,
		widget,
		notifier,
		service.WorkflowConfig{
			PaymentsEnabled:   cfg.Payment.Enabled,
			CheckAvailability: cfg.Booking.CheckAvailability,
			OrderAttempts:     cfg.Payment.OrderAttempts,
			OrderDelay:        cfg.GetOrderDelay(),
		},
	)
	return nil
}

func (a *app) close() {
	if a.checkout != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := a.checkout.Close(ctx); err != nil {
			logger.Warn("Failed to stop checkout server", "error", err)
		}
	}
	if c, ok := a.store.(io.Closer); ok {
		if err := c.Close(); err != nil {
			logger.Warn("Failed to close session store", "error", err)
		}
	}
}

func (a *app) redirectToLogin() {
	fmt.Fprintln(a.errOut, "Your session has ended. Run 'medilink login' to sign in again.")
}

func (a *app) showCheckout(checkoutURL string) error {
	fmt.Fprintf(a.out, "Complete the payment in your browser:\n  %s\n", checkoutURL)
	return nil
}
