package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"medilink-client/internal/domain"
	"medilink-client/internal/gateway"
	"medilink-client/internal/logger"
	"medilink-client/internal/repository"
	"medilink-client/internal/utils"
)

type WorkflowState int

const (
	StateValidating WorkflowState = iota
	StateSubmitting
	StateAwaitingOrder
	StateAwaitingPayment
	StateVerifying
	StateBooked
	StateFailed
)

func (s WorkflowState) String() string {
	switch s {
	case StateValidating:
		return "validating"
	case StateSubmitting:
		return "submitting"
	case StateAwaitingOrder:
		return "awaiting order"
	case StateAwaitingPayment:
		return "awaiting payment"
	case StateVerifying:
		return "verifying"
	case StateBooked:
		return "booked"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

type BookingRequest struct {
	Equipment *domain.Equipment
	StartDate string // yyyy-mm-dd
	EndDate   string // yyyy-mm-dd
}

type BookingOutcome struct {
	State      WorkflowState
	Days       int
	TotalPrice float64
	Booking    *domain.Booking
	Order      *domain.PaymentOrder
	// Equipment is the record re-fetched after booking, or the input when
	// the re-fetch failed
	Equipment *domain.Equipment
}

type WorkflowConfig struct {
	PaymentsEnabled bool
	// CheckAvailability asks the backend about the exact range in addition
	// to the advisory availability flag
	CheckAvailability bool
	OrderAttempts     int
	OrderDelay        time.Duration
}

type bookingWorkflow struct {
	session       Session
	bookingRepo   repository.BookingRepository
	paymentRepo   repository.PaymentRepository
	equipmentRepo repository.EquipmentRepository
	widget        PaymentWidget
	notifier      Notifier
	cfg           WorkflowConfig
}

func NewBookingWorkflow(
	session Session,
	bookingRepo repository.BookingRepository,
	paymentRepo repository.PaymentRepository,
	equipmentRepo repository.EquipmentRepository,
	widget PaymentWidget,
	notifier Notifier,
	cfg WorkflowConfig,
) BookingWorkflow {
	if cfg.OrderAttempts <= 0 {
		cfg.OrderAttempts = 5
	}
	if notifier == nil {
		notifier = NewNoopNotifier()
	}
	return &bookingWorkflow{
		session:       session,
		bookingRepo:   bookingRepo,
		paymentRepo:   paymentRepo,
		equipmentRepo: equipmentRepo,
		widget:        widget,
		notifier:      notifier,
		cfg:           cfg,
	}
}

// run tracks the state of one Book call
type run struct {
	out     *BookingOutcome
	observe func(WorkflowState)
}

func (r *run) enter(s WorkflowState) {
	r.out.State = s
	if r.observe != nil {
		r.observe(s)
	}
}

func (r *run) fail(err error) (*BookingOutcome, error) {
	r.enter(StateFailed)
	return r.out, err
}

func (w *bookingWorkflow) Book(ctx context.Context, req BookingRequest, observe func(WorkflowState)) (*BookingOutcome, error) {
	logger.EnterMethod("bookingWorkflow.Book", "start", req.StartDate, "end", req.EndDate)
	r := &run{out: &BookingOutcome{Equipment: req.Equipment}, observe: observe}
	r.enter(StateValidating)

	identity, err := w.validate(ctx, req, r.out)
	if err != nil {
		logger.ExitMethodWithError("bookingWorkflow.Book", err)
		return r.fail(err)
	}

	r.enter(StateSubmitting)
	booking, err := w.bookingRepo.Create(ctx, identity.ID, &domain.Booking{
		EquipmentID:   req.Equipment.ID,
		EquipmentName: req.Equipment.Name,
		UserID:        identity.ID,
		StartDate:     req.StartDate,
		EndDate:       req.EndDate,
		TotalPrice:    r.out.TotalPrice,
		Status:        domain.BookingStatusPending,
	})
	if err != nil {
		logger.ExitMethodWithError("bookingWorkflow.Book", err)
		return r.fail(fmt.Errorf("failed to submit booking: %w", err))
	}
	r.out.Booking = booking
	logger.Info("Booking submitted", "booking_id", booking.ID, "status", booking.Status, "price", r.out.TotalPrice)

	if w.cfg.PaymentsEnabled {
		done, err := w.collectPayment(ctx, r)
		if err != nil {
			logger.ExitMethodWithError("bookingWorkflow.Book", err, "booking_id", booking.ID)
			return r.fail(err)
		}
		if !done {
			// Left waiting for the user; nothing has failed
			logger.ExitMethod("bookingWorkflow.Book", "state", r.out.State, "booking_id", booking.ID)
			return r.out, nil
		}
	}

	r.enter(StateBooked)
	w.refreshEquipment(ctx, r.out)
	w.sendReceipt(ctx, identity, r.out)
	logger.ExitMethod("bookingWorkflow.Book", "state", r.out.State, "booking_id", booking.ID)
	return r.out, nil
}

// validate applies the checks in order and fills days and price
func (w *bookingWorkflow) validate(ctx context.Context, req BookingRequest, out *BookingOutcome) (*domain.Identity, error) {
	start, startErr := utils.ParseDate(req.StartDate)
	end, endErr := utils.ParseDate(req.EndDate)
	datesSet := startErr == nil && endErr == nil

	if datesSet && end.Before(start) {
		return nil, ErrInvalidDateRange
	}

	identity := w.session.Identity()
	if identity == nil {
		return nil, ErrNotAuthenticated
	}

	if !datesSet || req.Equipment == nil {
		return nil, ErrInvalidPrice
	}
	out.Days = utils.RentalDays(start, end)
	total, err := utils.TotalPrice(req.Equipment.Price, out.Days)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPrice, err)
	}
	out.TotalPrice = total

	if !req.Equipment.Availability {
		return nil, ErrUnavailable
	}
	if w.cfg.CheckAvailability {
		ok, err := w.bookingRepo.CheckAvailability(ctx, req.Equipment.ID, start.String(), end.String())
		switch {
		case err != nil:
			if errors.Is(err, gateway.ErrAuthorizationExpired) {
				return nil, err
			}
			logger.Warn("Availability check failed, using listed availability", "equipment_id", req.Equipment.ID, "error", err)
		case !ok:
			return nil, ErrUnavailable
		}
	}
	return identity, nil
}

// collectPayment returns false when the user left the payment window
// without finishing
func (w *bookingWorkflow) collectPayment(ctx context.Context, r *run) (bool, error) {
	booking := r.out.Booking

	r.enter(StateAwaitingOrder)
	order, err := w.awaitOrder(ctx, booking.ID)
	if err != nil {
		return false, err
	}
	r.out.Order = order

	r.enter(StateAwaitingPayment)
	result, err := w.widget.Open(ctx, order, booking)
	if err != nil {
		if errors.Is(err, domain.ErrPaymentDismissed) || ctx.Err() != nil {
			logger.Info("Payment not completed", "booking_id", booking.ID, "reason", err)
			return false, nil
		}
		return false, fmt.Errorf("%w: %w", ErrPaymentIncomplete, err)
	}
	if !result.Complete() {
		return false, ErrPaymentIncomplete
	}

	r.enter(StateVerifying)
	ok, err := w.paymentRepo.Verify(ctx, result)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrPaymentVerificationFailed, err)
	}
	if !ok {
		return false, ErrPaymentVerificationFailed
	}

	booking.Payment = &domain.Payment{
		OrderID:         result.OrderID,
		ExternalOrderID: order.ExternalOrderID,
		PaymentID:       result.PaymentID,
		Status:          domain.PaymentStatusSuccess,
	}
	logger.Info("Payment verified", "booking_id", booking.ID, "payment_id", result.PaymentID)
	return true, nil
}

// awaitOrder polls for the order the backend creates asynchronously.
// Only not-found answers are retried, with a fixed delay between attempts.
func (w *bookingWorkflow) awaitOrder(ctx context.Context, bookingID string) (*domain.PaymentOrder, error) {
	for attempt := 1; attempt <= w.cfg.OrderAttempts; attempt++ {
		order, err := w.paymentRepo.GetOrder(ctx, bookingID)
		if err == nil {
			logger.Debug("Payment order found", "booking_id", bookingID, "attempt", attempt)
			return order, nil
		}
		if !gateway.IsNotFound(err) {
			return nil, fmt.Errorf("%w: %w", ErrPaymentOrder, err)
		}
		if attempt == w.cfg.OrderAttempts {
			break
		}

		timer := time.NewTimer(w.cfg.OrderDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, fmt.Errorf("%w: %w", ErrPaymentOrder, ctx.Err())
		case <-timer.C:
		}
	}
	return nil, fmt.Errorf("%w: no order for booking %s after %d attempts", ErrPaymentOrder, bookingID, w.cfg.OrderAttempts)
}

// refreshEquipment re-reads availability; a failure leaves the old record
func (w *bookingWorkflow) refreshEquipment(ctx context.Context, out *BookingOutcome) {
	id := out.Equipment.ID
	eq, err := w.equipmentRepo.GetByID(ctx, id)
	if err != nil {
		logger.Warn("Failed to refresh equipment after booking", "equipment_id", id, "error", err)
		return
	}
	out.Equipment = eq
}

func (w *bookingWorkflow) sendReceipt(ctx context.Context, identity *domain.Identity, out *BookingOutcome) {
	if err := w.notifier.SendBookingReceipt(ctx, identity, out.Booking, out.Equipment); err != nil {
		logger.Warn("Failed to send booking receipt", "booking_id", out.Booking.ID, "error", err)
	}
}
