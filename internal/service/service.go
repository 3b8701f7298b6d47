package service

import (
	"context"

	"medilink-client/internal/domain"
)

// Session is what the services need from the session provider
type Session interface {
	Identity() *domain.Identity
	Login(ctx context.Context, token string) (*domain.Identity, error)
	Logout(ctx context.Context) error
}

type AuthService interface {
	// Register creates an account. When the backend issues a token the user
	// is signed in and the identity is returned, otherwise it is nil.
	Register(ctx context.Context, reg *domain.Registration) (*domain.Identity, error)
	Login(ctx context.Context, email, password string) (*domain.Identity, error)
	Logout(ctx context.Context) error
	WhoAmI() *domain.Identity
	// ValidateRemote asks the backend to confirm the current token
	ValidateRemote(ctx context.Context) (string, error)
}

type EquipmentService interface {
	List(ctx context.Context) ([]domain.Equipment, error)
	Get(ctx context.Context, id int64) (*domain.Equipment, error)
	Search(ctx context.Context, filter domain.EquipmentFilter) ([]domain.Equipment, error)
	Create(ctx context.Context, eq *domain.Equipment) (*domain.Equipment, error)
	Update(ctx context.Context, eq *domain.Equipment) (*domain.Equipment, error)
	Delete(ctx context.Context, id int64) error
	// Snapshot is the last fetched list with pending local changes applied
	Snapshot() []domain.Equipment
	Refresh(ctx context.Context) error
}

type BookingService interface {
	List(ctx context.Context) ([]domain.Booking, error)
	Get(ctx context.Context, id string) (*domain.Booking, error)
	Cancel(ctx context.Context, id string) error
	Confirm(ctx context.Context, id string) error
	Complete(ctx context.Context, id string) error
	CheckAvailability(ctx context.Context, equipmentID int64, startDate, endDate string) (bool, error)
}

type BookingWorkflow interface {
	// Book runs validation, submission and payment for one booking. The
	// returned outcome is always non-nil and carries the state reached.
	Book(ctx context.Context, req BookingRequest, observe func(WorkflowState)) (*BookingOutcome, error)
}

// PaymentWidget collects a payment for an order from the user
type PaymentWidget interface {
	Open(ctx context.Context, order *domain.PaymentOrder, booking *domain.Booking) (*domain.PaymentResult, error)
}

type Notifier interface {
	SendBookingReceipt(ctx context.Context, to *domain.Identity, booking *domain.Booking, eq *domain.Equipment) error
}
