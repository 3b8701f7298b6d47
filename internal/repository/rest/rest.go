package rest

import (
	"context"
	"net/url"

	"medilink-client/internal/gateway"
	"medilink-client/internal/repository"
)

// Backend is the subset of the gateway client the repositories use
type Backend interface {
	Get(ctx context.Context, path string, query url.Values, out any) error
	Post(ctx context.Context, path string, body, out any) error
	Put(ctx context.Context, path string, body, out any) error
	Delete(ctx context.Context, path string) error
	Do(ctx context.Context, r gateway.Request, out any) error
}

type Store struct {
	repository.AuthRepository
	repository.EquipmentRepository
	repository.BookingRepository
	repository.PaymentRepository
}

func NewStore(backend Backend) *Store {
	return &Store{
		AuthRepository:      NewAuthRepository(backend),
		EquipmentRepository: NewEquipmentRepository(backend),
		BookingRepository:   NewBookingRepository(backend),
		PaymentRepository:   NewPaymentRepository(backend),
	}
}
