package prescription

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

type Service struct {
	repo        repository.PrescriptionRepository
	patientRepo repository.PatientRepository
	auditSvc    *audit.Service
	eventSvc    *event.Service
}

func NewService(repo repository.PrescriptionRepository, patientRepo repository.PatientRepository, auditSvc *audit.Service, eventSvc *event.Service) *Service {
	return &Service{repo: repo, patientRepo: patientRepo, auditSvc: auditSvc, eventSvc: eventSvc}
}

// CreatePrescription records a prescription written by doctorID.
func (s *Service) CreatePrescription(ctx context.Context, doctorID uuid.UUID, req *model.CreatePrescriptionRequest) (*model.Prescription, error) {
	if _, err := s.patientRepo.Get(ctx, req.PatientID); err != nil {
		return nil, apperrors.NotFound("patient", err)
	}

	prescription := &model.Prescription{
		PatientID:     req.PatientID,
		DoctorID:      doctorID,
		AppointmentID: req.AppointmentID,
		Status:        model.PrescriptionStatusPending,
		Notes:         req.Notes,
	}
	for _, item := range req.Items {
		prescription.Items = append(prescription.Items, model.PrescriptionItem{
			Medication:   item.Medication,
			Dosage:       item.Dosage,
			Frequency:    item.Frequency,
			DurationDays: item.DurationDays,
			Instructions: item.Instructions,
		})
	}

	if err := s.repo.Create(ctx, prescription); err != nil {
		return nil, fmt.Errorf("failed to create prescription: %w", err)
	}

	s.auditSvc.Log(ctx, doctorID, "prescription.create", "prescription", prescription.ID, req)
	if err := s.eventSvc.Emit(ctx, "prescription.created", prescription); err != nil {
		log.Warn().Err(err).Str("prescription_id", prescription.ID.String()).Msg("failed to emit prescription.created")
	}
	return prescription, nil
}

func (s *Service) GetPrescription(ctx context.Context, id uuid.UUID) (*model.Prescription, error) {
	prescription, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, apperrors.NotFound("prescription", err)
	}
	return prescription, nil
}

// Dispense marks a pending prescription as handed out by actorID.
func (s *Service) Dispense(ctx context.Context, actorID, id uuid.UUID) (*model.Prescription, error) {
	prescription, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, apperrors.NotFound("prescription", err)
	}
	if prescription.Status != model.PrescriptionStatusPending {
		return nil, apperrors.BadRequest(
			fmt.Sprintf("cannot dispense prescription in status %q", prescription.Status), nil)
	}

	now := time.Now()
	if err := s.repo.UpdateStatus(ctx, id, model.PrescriptionStatusDispensed, &actorID, &now); err != nil {
		return nil, fmt.Errorf("failed to dispense prescription: %w", err)
	}

	prescription.Status = model.PrescriptionStatusDispensed
	prescription.DispensedBy = &actorID
	prescription.DispensedAt = &now

	s.auditSvc.Log(ctx, actorID, "prescription.dispense", "prescription", id, nil)
	if err := s.eventSvc.Emit(ctx, "prescription.dispensed", prescription); err != nil {
		log.Warn().Err(err).Str("prescription_id", id.String()).Msg("failed to emit prescription.dispensed")
	}
	return prescription, nil
}

func (s *Service) Cancel(ctx context.Context, actorID, id uuid.UUID) (*model.Prescription, error) {
	prescription, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, apperrors.NotFound("prescription", err)
	}
	if prescription.Status != model.PrescriptionStatusPending {
		return nil, apperrors.BadRequest(
			fmt.Sprintf("cannot cancel prescription in status %q", prescription.Status), nil)
	}

	if err := s.repo.UpdateStatus(ctx, id, model.PrescriptionStatusCancelled, nil, nil); err != nil {
		return nil, fmt.Errorf("failed to cancel prescription: %w", err)
	}
	prescription.Status = model.PrescriptionStatusCancelled

	s.auditSvc.Log(ctx, actorID, "prescription.cancel", "prescription", id, nil)
	return prescription, nil
}

func (s *Service) ListPrescriptions(ctx context.Context, filters *model.PrescriptionFilters) ([]*model.Prescription, error) {
	prescriptions, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list prescriptions: %w", err)
	}
	return prescriptions, nil
}
