package rest

import (
	"context"
	"net/url"

	"medilink-client/internal/domain"
	"medilink-client/internal/repository"
)

type paymentRepository struct {
	backend Backend
}

func NewPaymentRepository(backend Backend) repository.PaymentRepository {
	return &paymentRepository{backend: backend}
}

func (r *paymentRepository) GetOrder(ctx context.Context, bookingID string) (*domain.PaymentOrder, error) {
	var order domain.PaymentOrder
	if err := r.backend.Get(ctx, "/payments/"+url.PathEscape(bookingID), nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *paymentRepository) Verify(ctx context.Context, result *domain.PaymentResult) (bool, error) {
	var ok bool
	if err := r.backend.Post(ctx, "/payments/verify-payment", result, &ok); err != nil {
		return false, err
	}
	return ok, nil
}
