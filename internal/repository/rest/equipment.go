package rest

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"medilink-client/internal/domain"
	"medilink-client/internal/repository"
)

type equipmentRepository struct {
	backend Backend
}

func NewEquipmentRepository(backend Backend) repository.EquipmentRepository {
	return &equipmentRepository{backend: backend}
}

func (r *equipmentRepository) List(ctx context.Context) ([]domain.Equipment, error) {
	var items []domain.Equipment
	if err := r.backend.Get(ctx, "/equipments", nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *equipmentRepository) GetByID(ctx context.Context, id int64) (*domain.Equipment, error) {
	var eq domain.Equipment
	if err := r.backend.Get(ctx, fmt.Sprintf("/equipments/%d", id), nil, &eq); err != nil {
		return nil, err
	}
	return &eq, nil
}

func (r *equipmentRepository) Search(ctx context.Context, filter domain.EquipmentFilter) ([]domain.Equipment, error) {
	query := url.Values{}
	if filter.Type != "" {
		query.Set("type", filter.Type)
	}
	if filter.Location != "" {
		query.Set("location", filter.Location)
	}
	if filter.Availability != nil {
		query.Set("availability", strconv.FormatBool(*filter.Availability))
	}

	var items []domain.Equipment
	if err := r.backend.Get(ctx, "/equipments/search", query, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *equipmentRepository) Create(ctx context.Context, eq *domain.Equipment) (*domain.Equipment, error) {
	var created domain.Equipment
	if err := r.backend.Post(ctx, "/equipments/add", eq, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *equipmentRepository) Update(ctx context.Context, eq *domain.Equipment) (*domain.Equipment, error) {
	var updated domain.Equipment
	if err := r.backend.Put(ctx, fmt.Sprintf("/equipments/%d", eq.ID), eq, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *equipmentRepository) Delete(ctx context.Context, id int64) error {
	return r.backend.Delete(ctx, fmt.Sprintf("/equipments/%d", id))
}
