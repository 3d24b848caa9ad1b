package appointment

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
	repo        repository.AppointmentRepository
	patientRepo repository.PatientRepository
	auditSvc    *audit.Service
	eventSvc    *event.Service
}

func NewService(repo repository.AppointmentRepository, patientRepo repository.PatientRepository, auditSvc *audit.Service, eventSvc *event.Service) *Service {
	return &Service{repo: repo, patientRepo: patientRepo, auditSvc: auditSvc, eventSvc: eventSvc}
}

func (s *Service) CreateAppointment(ctx context.Context, actorID uuid.UUID, req *model.CreateAppointmentRequest) (*model.Appointment, error) {
	if _, err := s.patientRepo.Get(ctx, req.PatientID); err != nil {
		return nil, apperrors.NotFound("patient", err)
	}

	conflict, err := s.repo.CheckConflicts(ctx, req.DoctorID, req.StartTime, req.EndTime, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to check appointment conflicts: %w", err)
	}
	if conflict {
		return nil, apperrors.Conflict("doctor already has an appointment in this time slot", nil)
	}

	appointment := &model.Appointment{
		PatientID: req.PatientID,
		DoctorID:  req.DoctorID,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Status:    model.AppointmentStatusScheduled,
		Reason:    req.Reason,
		Notes:     req.Notes,
	}

	if err := s.repo.Create(ctx, appointment); err != nil {
		return nil, fmt.Errorf("failed to create appointment: %w", err)
	}

	s.auditSvc.Log(ctx, actorID, "appointment.create", "appointment", appointment.ID, req)
	if err := s.eventSvc.Emit(ctx, "appointment.created", appointment); err != nil {
		log.Warn().Err(err).Str("appointment_id", appointment.ID.String()).Msg("failed to emit appointment.created")
	}
	return appointment, nil
}

func (s *Service) GetAppointment(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	appointment, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, apperrors.NotFound("appointment", err)
	}
	return appointment, nil
}

func (s *Service) UpdateAppointment(ctx context.Context, actorID, id uuid.UUID, req *model.UpdateAppointmentRequest) (*model.Appointment, error) {
	appointment, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, apperrors.NotFound("appointment", err)
	}

	if req.StartTime != nil {
		appointment.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		appointment.EndTime = *req.EndTime
	}
	if req.StartTime != nil || req.EndTime != nil {
		if !appointment.EndTime.After(appointment.StartTime) {
			return nil, apperrors.BadRequest("end time must be after start time", nil)
		}
		conflict, err := s.repo.CheckConflicts(ctx, appointment.DoctorID, appointment.StartTime, appointment.EndTime, &id)
		if err != nil {
			return nil, fmt.Errorf("failed to check appointment conflicts: %w", err)
		}
		if conflict {
			return nil, apperrors.Conflict("doctor already has an appointment in this time slot", nil)
		}
	}
	if req.Status != nil {
		if !req.Status.Valid() {
			return nil, apperrors.BadRequest(fmt.Sprintf("invalid status %q", *req.Status), nil)
		}
		appointment.Status = *req.Status
	}
	if req.Notes != nil {
		appointment.Notes = *req.Notes
	}
	if req.CancelReason != nil {
		appointment.CancelReason = req.CancelReason
	}

	if err := s.repo.Update(ctx, appointment); err != nil {
		return nil, fmt.Errorf("failed to update appointment: %w", err)
	}

	s.auditSvc.Log(ctx, actorID, "appointment.update", "appointment", appointment.ID, req)
	return appointment, nil
}

func (s *Service) CancelAppointment(ctx context.Context, actorID, id uuid.UUID, reason string) (*model.Appointment, error) {
	status := model.AppointmentStatusCancelled
	req := &model.UpdateAppointmentRequest{Status: &status}
	if reason != "" {
		req.CancelReason = &reason
	}
	appointment, err := s.UpdateAppointment(ctx, actorID, id, req)
	if err != nil {
		return nil, err
	}
	if err := s.eventSvc.Emit(ctx, "appointment.cancelled", appointment); err != nil {
		log.Warn().Err(err).Str("appointment_id", appointment.ID.String()).Msg("failed to emit appointment.cancelled")
	}
	return appointment, nil
}

func (s *Service) DeleteAppointment(ctx context.Context, actorID, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return apperrors.NotFound("appointment", err)
	}
	s.auditSvc.Log(ctx, actorID, "appointment.delete", "appointment", id, nil)
	return nil
}

func (s *Service) ListAppointments(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	appointments, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}
