package service

import (
	"context"

	"github.com/stretchr/testify/mock"

	"medilink-client/internal/domain"
)

// stubSession holds a fixed identity
type stubSession struct {
	identity *domain.Identity
	loginErr error
	logins   []string
}

func (s *stubSession) Identity() *domain.Identity { return s.identity }

func (s *stubSession) Login(ctx context.Context, token string) (*domain.Identity, error) {
	s.logins = append(s.logins, token)
	if s.loginErr != nil {
		s.identity = nil
		return nil, s.loginErr
	}
	s.identity = &domain.Identity{ID: "u-" + token, Role: domain.RoleUser}
	return s.identity, nil
}

func (s *stubSession) Logout(ctx context.Context) error {
	s.identity = nil
	return nil
}

// MockAuthRepo
type MockAuthRepo struct {
	mock.Mock
}

func (m *MockAuthRepo) Register(ctx context.Context, reg *domain.Registration) (string, error) {
	args := m.Called(ctx, reg)
	return args.String(0), args.Error(1)
}
func (m *MockAuthRepo) Login(ctx context.Context, creds *domain.Credentials) (string, error) {
	args := m.Called(ctx, creds)
	return args.String(0), args.Error(1)
}
func (m *MockAuthRepo) Validate(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

// MockEquipmentRepo
type MockEquipmentRepo struct {
	mock.Mock
}

func (m *MockEquipmentRepo) List(ctx context.Context) ([]domain.Equipment, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Equipment), args.Error(1)
}
func (m *MockEquipmentRepo) GetByID(ctx context.Context, id int64) (*domain.Equipment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Equipment), args.Error(1)
}
func (m *MockEquipmentRepo) Search(ctx context.Context, filter domain.EquipmentFilter) ([]domain.Equipment, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Equipment), args.Error(1)
}
func (m *MockEquipmentRepo) Create(ctx context.Context, eq *domain.Equipment) (*domain.Equipment, error) {
	args := m.Called(ctx, eq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Equipment), args.Error(1)
}
func (m *MockEquipmentRepo) Update(ctx context.Context, eq *domain.Equipment) (*domain.Equipment, error) {
	args := m.Called(ctx, eq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Equipment), args.Error(1)
}
func (m *MockEquipmentRepo) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockBookingRepo
type MockBookingRepo struct {
	mock.Mock
}

func (m *MockBookingRepo) Create(ctx context.Context, userID string, b *domain.Booking) (*domain.Booking, error) {
	args := m.Called(ctx, userID, b)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}
func (m *MockBookingRepo) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}
func (m *MockBookingRepo) ListByUser(ctx context.Context, userID string) ([]domain.Booking, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Booking), args.Error(1)
}
func (m *MockBookingRepo) Cancel(ctx context.Context, id, userID string) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}
func (m *MockBookingRepo) Act(ctx context.Context, id, userID string, action domain.BookingAction) error {
	args := m.Called(ctx, id, userID, action)
	return args.Error(0)
}
func (m *MockBookingRepo) CheckAvailability(ctx context.Context, equipmentID int64, startDate, endDate string) (bool, error) {
	args := m.Called(ctx, equipmentID, startDate, endDate)
	return args.Bool(0), args.Error(1)
}

// MockPaymentRepo
type MockPaymentRepo struct {
	mock.Mock
}

func (m *MockPaymentRepo) GetOrder(ctx context.Context, bookingID string) (*domain.PaymentOrder, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentOrder), args.Error(1)
}
func (m *MockPaymentRepo) Verify(ctx context.Context, result *domain.PaymentResult) (bool, error) {
	args := m.Called(ctx, result)
	return args.Bool(0), args.Error(1)
}

// MockPaymentWidget
type MockPaymentWidget struct {
	mock.Mock
}

func (m *MockPaymentWidget) Open(ctx context.Context, order *domain.PaymentOrder, booking *domain.Booking) (*domain.PaymentResult, error) {
	args := m.Called(ctx, order, booking)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentResult), args.Error(1)
}

// MockNotifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) SendBookingReceipt(ctx context.Context, to *domain.Identity, booking *domain.Booking, eq *domain.Equipment) error {
	args := m.Called(ctx, to, booking, eq)
	return args.Error(0)
}
