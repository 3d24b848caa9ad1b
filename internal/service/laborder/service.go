package laborder

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/medisuite/hms-api/internal/model"
	"github.com/medisuite/hms-api/internal/repository"
	"github.com/medisuite/hms-api/internal/service/audit"
	"github.com/medisuite/hms-api/internal/service/event"
	apperrors "github.com/medisuite/hms-api/pkg/errors"
)

const defaultPriority = "routine"

var allowedTransitions = map[model.LabOrderStatus][]model.LabOrderStatus{
	model.LabOrderStatusOrdered:    {model.LabOrderStatusInProgress, model.LabOrderStatusCancelled},
	model.LabOrderStatusInProgress: {model.LabOrderStatusCompleted, model.LabOrderStatusCancelled},
	model.LabOrderStatusCompleted:  {},
	model.LabOrderStatusCancelled:  {},
}

func transitionAllowed(from, to model.LabOrderStatus) bool {
	for _, s := range allowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

type Service struct {
	repo        repository.LabOrderRepository
	patientRepo repository.PatientRepository
	auditSvc    *audit.Service
	eventSvc    *event.Service
}

func NewService(repo repository.LabOrderRepository, patientRepo repository.PatientRepository, auditSvc *audit.Service, eventSvc *event.Service) *Service {
	return &Service{repo: repo, patientRepo: patientRepo, auditSvc: auditSvc, eventSvc: eventSvc}
}

func (s *Service) CreateLabOrder(ctx context.Context, orderedBy uuid.UUID, req *model.CreateLabOrderRequest) (*model.LabOrder, error) {
	if _, err := s.patientRepo.Get(ctx, req.PatientID); err != nil {
		return nil, apperrors.NotFound("patient", err)
	}

	priority := req.Priority
	if priority == "" {
		priority = defaultPriority
	}

	order := &model.LabOrder{
		PatientID:     req.PatientID,
		OrderedBy:     orderedBy,
		AppointmentID: req.AppointmentID,
		TestName:      req.TestName,
		Status:        model.LabOrderStatusOrdered,
		Priority:      priority,
		Notes:         req.Notes,
	}

	if err := s.repo.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to create lab order: %w", err)
	}

	s.auditSvc.Log(ctx, orderedBy, "laborder.create", "lab_order", order.ID, req)
	if err := s.eventSvc.Emit(ctx, "laborder.created", order); err != nil {
		log.Warn().Err(err).Str("lab_order_id", order.ID.String()).Msg("failed to emit laborder.created")
	}
	return order, nil
}

func (s *Service) GetLabOrder(ctx context.Context, id uuid.UUID) (*model.LabOrder, error) {
	order, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, apperrors.NotFound("lab order", err)
	}
	return order, nil
}

// UpdateLabOrder advances an order's status and attaches results.
// Completing an order requires a result document.
func (s *Service) UpdateLabOrder(ctx context.Context, actorID, id uuid.UUID, req *model.UpdateLabOrderRequest) (*model.LabOrder, error) {
	order, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, apperrors.NotFound("lab order", err)
	}

	if req.Status != nil {
		if !transitionAllowed(order.Status, *req.Status) {
			return nil, apperrors.BadRequest(
				fmt.Sprintf("cannot transition lab order from %q to %q", order.Status, *req.Status), nil)
		}
		if *req.Status == model.LabOrderStatusCompleted && req.Result == nil && order.Result == nil {
			return nil, apperrors.BadRequest("completed lab order requires a result", nil)
		}
		order.Status = *req.Status
		if *req.Status == model.LabOrderStatusCompleted {
			now := time.Now()
			order.CompletedAt = &now
		}
	}
	if req.Result != nil {
		order.Result = req.Result
	}
	if req.Notes != nil {
		order.Notes = *req.Notes
	}

	if err := s.repo.Update(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to update lab order: %w", err)
	}

	s.auditSvc.Log(ctx, actorID, "laborder.update", "lab_order", order.ID, req)
	if order.Status == model.LabOrderStatusCompleted && req.Status != nil {
		if err := s.eventSvc.Emit(ctx, "laborder.completed", order); err != nil {
			log.Warn().Err(err).Str("lab_order_id", order.ID.String()).Msg("failed to emit laborder.completed")
		}
	}
	return order, nil
}

func (s *Service) ListLabOrders(ctx context.Context, filters *model.LabOrderFilters) ([]*model.LabOrder, error) {
	orders, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list lab orders: %w", err)
	}
	return orders, nil
}
