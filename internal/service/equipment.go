package service

import (
	"context"
	"fmt"
	"math"
	"strings"

	"medilink-client/internal/domain"
	"medilink-client/internal/logger"
	"medilink-client/internal/repository"
)

// CanManage reports whether identity owns eq. It only decides which actions
// the client offers; the backend makes the real authorization decision.
func CanManage(eq *domain.Equipment, identity *domain.Identity) bool {
	var ownerID, userID string
	if eq != nil {
		ownerID = eq.OwnerID
	}
	if identity != nil {
		userID = identity.ID
	}
	return ownerID == userID
}

type equipmentService struct {
	equipmentRepo repository.EquipmentRepository
	session       Session
	inv           *inventory
}

func NewEquipmentService(equipmentRepo repository.EquipmentRepository, session Session) EquipmentService {
	return &equipmentService{
		equipmentRepo: equipmentRepo,
		session:       session,
		inv:           newInventory(),
	}
}

func (s *equipmentService) List(ctx context.Context) ([]domain.Equipment, error) {
	if err := s.Refresh(ctx); err != nil {
		return nil, err
	}
	return s.inv.view(), nil
}

func (s *equipmentService) Refresh(ctx context.Context) error {
	items, err := s.equipmentRepo.List(ctx)
	if err != nil {
		return err
	}
	if dropped := s.inv.replace(items); dropped > 0 {
		logger.Debug("Reconciled pending equipment changes", "dropped", dropped, "count", len(items))
	}
	return nil
}

func (s *equipmentService) Snapshot() []domain.Equipment {
	return s.inv.view()
}

func (s *equipmentService) Get(ctx context.Context, id int64) (*domain.Equipment, error) {
	return s.equipmentRepo.GetByID(ctx, id)
}

func (s *equipmentService) Search(ctx context.Context, filter domain.EquipmentFilter) ([]domain.Equipment, error) {
	filter.Type = strings.TrimSpace(filter.Type)
	filter.Location = strings.TrimSpace(filter.Location)
	return s.equipmentRepo.Search(ctx, filter)
}

func (s *equipmentService) Create(ctx context.Context, eq *domain.Equipment) (*domain.Equipment, error) {
	identity := s.session.Identity()
	if identity == nil {
		return nil, ErrNotAuthenticated
	}
	if !identity.IsAdmin() {
		return nil, ErrForbidden
	}
	if err := validateEquipment(eq); err != nil {
		return nil, err
	}
	if eq.OwnerID == "" {
		eq.OwnerID = identity.ID
	}

	created, err := s.equipmentRepo.Create(ctx, eq)
	if err != nil {
		return nil, err
	}
	s.inv.upsert(*created)
	logger.Info("Equipment created", "equipment_id", created.ID, "owner_id", created.OwnerID)
	return created, nil
}

func (s *equipmentService) Update(ctx context.Context, eq *domain.Equipment) (*domain.Equipment, error) {
	if err := validateEquipment(eq); err != nil {
		return nil, err
	}
	current, err := s.manageable(ctx, eq.ID)
	if err != nil {
		return nil, err
	}
	eq.OwnerID = current.OwnerID

	updated, err := s.equipmentRepo.Update(ctx, eq)
	if err != nil {
		return nil, err
	}
	s.inv.upsert(*updated)
	return updated, nil
}

func (s *equipmentService) Delete(ctx context.Context, id int64) error {
	if _, err := s.manageable(ctx, id); err != nil {
		return err
	}
	if err := s.equipmentRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.inv.remove(id)
	return nil
}

// manageable loads the current record and applies the ownership gate
func (s *equipmentService) manageable(ctx context.Context, id int64) (*domain.Equipment, error) {
	identity := s.session.Identity()
	if identity == nil {
		return nil, ErrNotAuthenticated
	}
	current, err := s.equipmentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanManage(current, identity) {
		return nil, ErrForbidden
	}
	return current, nil
}

func validateEquipment(eq *domain.Equipment) error {
	if eq == nil || strings.TrimSpace(eq.Name) == "" {
		return fmt.Errorf("equipment name is required")
	}
	if math.IsNaN(eq.Price) || math.IsInf(eq.Price, 0) || eq.Price < 0 {
		return fmt.Errorf("equipment price must be a non-negative number")
	}
	return nil
}
