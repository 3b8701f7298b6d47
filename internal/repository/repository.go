package repository

import (
	"context"

	"medilink-client/internal/domain"
)

type AuthRepository interface {
	// Register creates the account and returns the token issued for it
	Register(ctx context.Context, reg *domain.Registration) (string, error)
	Login(ctx context.Context, creds *domain.Credentials) (string, error)
	// Validate asks the backend whether the current bearer token is accepted
	Validate(ctx context.Context) (string, error)
}

type EquipmentRepository interface {
	List(ctx context.Context) ([]domain.Equipment, error)
	GetByID(ctx context.Context, id int64) (*domain.Equipment, error)
	Search(ctx context.Context, filter domain.EquipmentFilter) ([]domain.Equipment, error)
	Create(ctx context.Context, eq *domain.Equipment) (*domain.Equipment, error)
	Update(ctx context.Context, eq *domain.Equipment) (*domain.Equipment, error)
	Delete(ctx context.Context, id int64) error
}

type BookingRepository interface {
	Create(ctx context.Context, userID string, booking *domain.Booking) (*domain.Booking, error)
	GetByID(ctx context.Context, id string) (*domain.Booking, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Booking, error)
	Cancel(ctx context.Context, id, userID string) error
	Act(ctx context.Context, id, userID string, action domain.BookingAction) error
	// CheckAvailability reports whether no booking overlaps the inclusive range
	CheckAvailability(ctx context.Context, equipmentID int64, startDate, endDate string) (bool, error)
}

type PaymentRepository interface {
	// GetOrder returns the order the backend created for a booking. A
	// not-found error means the order has not been created yet.
	GetOrder(ctx context.Context, bookingID string) (*domain.PaymentOrder, error)
	Verify(ctx context.Context, result *domain.PaymentResult) (bool, error)
}
