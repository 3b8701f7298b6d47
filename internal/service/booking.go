package service

import (
	"context"
	"fmt"

	"medilink-client/internal/domain"
	"medilink-client/internal/logger"
	"medilink-client/internal/repository"
	"medilink-client/internal/utils"
)

type bookingService struct {
	bookingRepo repository.BookingRepository
	session     Session
}

func NewBookingService(bookingRepo repository.BookingRepository, session Session) BookingService {
	return &bookingService{
		bookingRepo: bookingRepo,
		session:     session,
	}
}

// List returns the caller's bookings; the backend widens the scope for admins
func (s *bookingService) List(ctx context.Context) ([]domain.Booking, error) {
	identity := s.session.Identity()
	if identity == nil {
		return nil, ErrNotAuthenticated
	}
	return s.bookingRepo.ListByUser(ctx, identity.ID)
}

func (s *bookingService) Get(ctx context.Context, id string) (*domain.Booking, error) {
	if s.session.Identity() == nil {
		return nil, ErrNotAuthenticated
	}
	return s.bookingRepo.GetByID(ctx, id)
}

func (s *bookingService) Cancel(ctx context.Context, id string) error {
	identity := s.session.Identity()
	if identity == nil {
		return ErrNotAuthenticated
	}
	if err := s.bookingRepo.Cancel(ctx, id, identity.ID); err != nil {
		return err
	}
	logger.Info("Booking cancelled", "booking_id", id, "user_id", identity.ID)
	return nil
}

func (s *bookingService) Confirm(ctx context.Context, id string) error {
	return s.act(ctx, id, domain.BookingActionConfirm)
}

func (s *bookingService) Complete(ctx context.Context, id string) error {
	return s.act(ctx, id, domain.BookingActionComplete)
}

func (s *bookingService) act(ctx context.Context, id string, action domain.BookingAction) error {
	identity := s.session.Identity()
	if identity == nil {
		return ErrNotAuthenticated
	}
	if !identity.IsAdmin() {
		return ErrForbidden
	}
	if err := s.bookingRepo.Act(ctx, id, identity.ID, action); err != nil {
		return err
	}
	logger.Info("Booking updated", "booking_id", id, "action", action)
	return nil
}

func (s *bookingService) CheckAvailability(ctx context.Context, equipmentID int64, startDate, endDate string) (bool, error) {
	start, err := utils.ParseDate(startDate)
	if err != nil {
		return false, fmt.Errorf("invalid start date: %w", err)
	}
	end, err := utils.ParseDate(endDate)
	if err != nil {
		return false, fmt.Errorf("invalid end date: %w", err)
	}
	if end.Before(start) {
		return false, ErrInvalidDateRange
	}
	return s.bookingRepo.CheckAvailability(ctx, equipmentID, start.String(), end.String())
}
