package inventory

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/medisuite/hms-api/internal/model"
	"github.com/medisuite/hms-api/internal/repository"
	"github.com/medisuite/hms-api/internal/service/audit"
	"github.com/medisuite/hms-api/internal/service/event"
	apperrors "github.com/medisuite/hms-api/pkg/errors"
)

type Service struct {
	repo     repository.InventoryRepository
	auditSvc *audit.Service
	eventSvc *event.Service
}

func NewService(repo repository.InventoryRepository, auditSvc *audit.Service, eventSvc *event.Service) *Service {
	return &Service{repo: repo, auditSvc: auditSvc, eventSvc: eventSvc}
}

func (s *Service) CreateItem(ctx context.Context, actorID uuid.UUID, req *model.CreateSupplyItemRequest) (*model.SupplyItem, error) {
	item := &model.SupplyItem{
		Name:         req.Name,
		Category:     req.Category,
		Unit:         req.Unit,
		Quantity:     req.Quantity,
		ReorderLevel: req.ReorderLevel,
		SupplierID:   req.SupplierID,
		Status:       "active",
	}

	if err := s.repo.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to create supply item: %w", err)
	}

	s.auditSvc.Log(ctx, actorID, "inventory.create", "supply_item", item.ID, req)
	return item, nil
}

func (s *Service) GetItem(ctx context.Context, id uuid.UUID) (*model.SupplyItem, error) {
	item, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, apperrors.NotFound("supply item", err)
	}
	return item, nil
}

func (s *Service) UpdateItem(ctx context.Context, actorID, id uuid.UUID, req *model.UpdateSupplyItemRequest) (*model.SupplyItem, error) {
	item, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, apperrors.NotFound("supply item", err)
	}

	if req.Name != nil {
		item.Name = *req.Name
	}
	if req.Category != nil {
		item.Category = *req.Category
	}
	if req.Unit != nil {
		item.Unit = *req.Unit
	}
	if req.ReorderLevel != nil {
		item.ReorderLevel = *req.ReorderLevel
	}
	if req.SupplierID != nil {
		item.SupplierID = req.SupplierID
	}
	if req.Status != nil {
		item.Status = *req.Status
	}

	if err := s.repo.Update(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to update supply item: %w", err)
	}

	s.auditSvc.Log(ctx, actorID, "inventory.update", "supply_item", item.ID, req)
	return item, nil
}

// AdjustStock applies a signed quantity delta. Adjustments that would
// drive stock negative are rejected by the storage layer.
func (s *Service) AdjustStock(ctx context.Context, actorID, id uuid.UUID, req *model.AdjustStockRequest) (*model.SupplyItem, error) {
	if req.Delta == 0 {
		return nil, apperrors.BadRequest("delta must be non-zero", nil)
	}

	item, err := s.repo.AdjustStock(ctx, id, req.Delta)
	if err != nil {
		return nil, apperrors.Conflict("stock adjustment rejected", err)
	}

	s.auditSvc.Log(ctx, actorID, "inventory.adjust", "supply_item", id, req)

	if item.Quantity <= item.ReorderLevel {
		if err := s.eventSvc.Emit(ctx, "inventory.low_stock", item); err != nil {
			log.Warn().Err(err).Str("item_id", item.ID.String()).Msg("failed to emit inventory.low_stock")
		}
	}
	return item, nil
}

func (s *Service) DeleteItem(ctx context.Context, actorID, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return apperrors.NotFound("supply item", err)
	}
	s.auditSvc.Log(ctx, actorID, "inventory.delete", "supply_item", id, nil)
	return nil
}

func (s *Service) ListItems(ctx context.Context, filters *model.SupplyItemFilters) ([]*model.SupplyItem, error) {
	items, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list supply items: %w", err)
	}
	return items, nil
}
