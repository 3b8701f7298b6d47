package rest

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"medilink-client/internal/domain"
	"medilink-client/internal/gateway"
	"medilink-client/internal/repository"
)

const userIDHeader = "X-User-Id"

type bookingRepository struct {
	backend Backend
}

func NewBookingRepository(backend Backend) repository.BookingRepository {
	return &bookingRepository{backend: backend}
}

func userHeader(userID string) http.Header {
	h := http.Header{}
	if userID != "" {
		h.Set(userIDHeader, userID)
	}
	return h
}

func (r *bookingRepository) Create(ctx context.Context, userID string, b *domain.Booking) (*domain.Booking, error) {
	var created domain.Booking
	req := gateway.Request{Method: http.MethodPost, Path: "/bookings", Header: userHeader(userID), Body: b}
	if err := r.backend.Do(ctx, req, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *bookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	var b domain.Booking
	if err := r.backend.Get(ctx, "/bookings/"+url.PathEscape(id), nil, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *bookingRepository) ListByUser(ctx context.Context, userID string) ([]domain.Booking, error) {
	var items []domain.Booking
	req := gateway.Request{Method: http.MethodGet, Path: "/bookings", Header: userHeader(userID)}
	if err := r.backend.Do(ctx, req, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *bookingRepository) Cancel(ctx context.Context, id, userID string) error {
	req := gateway.Request{Method: http.MethodDelete, Path: "/bookings/" + url.PathEscape(id), Header: userHeader(userID)}
	return r.backend.Do(ctx, req, nil)
}

func (r *bookingRepository) Act(ctx context.Context, id, userID string, action domain.BookingAction) error {
	switch action {
	case domain.BookingActionConfirm, domain.BookingActionComplete:
	default:
		return fmt.Errorf("unknown booking action %q", action)
	}
	req := gateway.Request{
		Method: http.MethodPost,
		Path:   fmt.Sprintf("/bookings/%s/%s", url.PathEscape(id), action),
		Header: userHeader(userID),
	}
	return r.backend.Do(ctx, req, nil)
}

func (r *bookingRepository) CheckAvailability(ctx context.Context, equipmentID int64, startDate, endDate string) (bool, error) {
	query := url.Values{}
	query.Set("startDate", startDate)
	query.Set("endDate", endDate)

	var available bool
	if err := r.backend.Get(ctx, fmt.Sprintf("/bookings/%d/availability", equipmentID), query, &available); err != nil {
		return false, err
	}
	return available, nil
}
