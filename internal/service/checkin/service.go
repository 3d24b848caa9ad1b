package checkin

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/medisuite/hms-api/internal/model"
	"github.com/medisuite/hms-api/internal/repository"
	"github.com/medisuite/hms-api/internal/service/event"
	apperrors "github.com/medisuite/hms-api/pkg/errors"
	"github.com/medisuite/hms-api/pkg/metrics"
)

const defaultReason = "General consultation"

// allowedTransitions defines the check-in state machine. A status maps
// to the set of statuses reachable from it; terminal states map to none.
var allowedTransitions = map[model.CheckInStatus][]model.CheckInStatus{
	model.CheckInStatusWaiting:        {model.CheckInStatusInConsultation, model.CheckInStatusCancelled},
	model.CheckInStatusInConsultation: {model.CheckInStatusCompleted, model.CheckInStatusCancelled},
	model.CheckInStatusCompleted:      {},
	model.CheckInStatusCancelled:      {},
}

func transitionAllowed(from, to model.CheckInStatus) bool {
	for _, s := range allowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

type Service struct {
	repo            repository.CheckInRepository
	appointmentRepo repository.AppointmentRepository
	eventSvc        *event.Service
	metrics         *metrics.Metrics
	now             func() time.Time
}

func NewService(repo repository.CheckInRepository, appointmentRepo repository.AppointmentRepository, eventSvc *event.Service, m *metrics.Metrics) *Service {
	return &Service{
		repo:            repo,
		appointmentRepo: appointmentRepo,
		eventSvc:        eventSvc,
		metrics:         m,
		now:             time.Now,
	}
}

// QueueDay truncates t to local midnight; queue numbers restart here.
func QueueDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// CreateCheckIn registers an arrival and assigns the next same-day
// queue number. Either an appointment or a patient reference is
// required; with only an appointment, the patient is taken from it.
func (s *Service) CreateCheckIn(ctx context.Context, req *model.CreateCheckInRequest) (*model.CheckIn, error) {
	if req.AppointmentID == nil && req.PatientID == nil {
		return nil, apperrors.BadRequest("appointment_id or patient_id is required", nil)
	}

	patientID := uuid.Nil
	if req.PatientID != nil {
		patientID = *req.PatientID
	}

	if req.AppointmentID != nil {
		apt, err := s.appointmentRepo.Get(ctx, *req.AppointmentID)
		if err != nil {
			return nil, apperrors.NotFound("appointment", err)
		}
		if patientID == uuid.Nil {
			patientID = apt.PatientID
		}
	}

	reason := req.Reason
	if reason == "" {
		reason = defaultReason
	}

	now := s.now()
	checkIn := &model.CheckIn{
		AppointmentID: req.AppointmentID,
		PatientID:     patientID,
		QueueDate:     QueueDay(now),
		Status:        model.CheckInStatusWaiting,
		Reason:        reason,
		Vitals:        req.Vitals,
		ArrivedAt:     now,
	}

	if err := s.repo.CreateWithQueueNumber(ctx, checkIn); err != nil {
		return nil, fmt.Errorf("failed to create check-in: %w", err)
	}

	if s.metrics != nil {
		s.metrics.CheckinsCreated.Inc()
		s.updateQueueGauge(ctx, checkIn.QueueDate)
	}

	if err := s.eventSvc.Emit(ctx, "checkin.created", checkIn); err != nil {
		log.Warn().Err(err).Str("checkin_id", checkIn.ID.String()).Msg("failed to emit checkin.created")
	}

	return checkIn, nil
}

// UpdateStatus advances a check-in through the state machine and keeps
// the linked appointment consistent: entering consultation confirms the
// appointment, completion completes it, cancellation releases it back
// to scheduled.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, req *model.UpdateCheckInStatusRequest) (*model.CheckIn, error) {
	if !req.Status.Valid() {
		return nil, apperrors.BadRequest(fmt.Sprintf("invalid status %q", req.Status), nil)
	}

	checkIn, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, apperrors.NotFound("check-in", err)
	}

	if checkIn.Status.Terminal() {
		return nil, apperrors.BadRequest(
			fmt.Sprintf("check-in is already %s", checkIn.Status), nil)
	}
	if !transitionAllowed(checkIn.Status, req.Status) {
		return nil, apperrors.BadRequest(
			fmt.Sprintf("cannot transition check-in from %q to %q", checkIn.Status, req.Status), nil)
	}

	checkIn.Status = req.Status
	if req.Notes != "" {
		checkIn.Notes = req.Notes
	}
	if req.Status == model.CheckInStatusCompleted {
		completedAt := s.now()
		checkIn.CompletedAt = &completedAt
	}

	if err := s.repo.Update(ctx, checkIn); err != nil {
		return nil, fmt.Errorf("failed to update check-in: %w", err)
	}

	if checkIn.AppointmentID != nil {
		if err := s.mirrorAppointmentStatus(ctx, *checkIn.AppointmentID, req.Status); err != nil {
			log.Error().Err(err).
				Str("checkin_id", checkIn.ID.String()).
				Str("appointment_id", checkIn.AppointmentID.String()).
				Msg("failed to mirror appointment status")
		}
	}

	if s.metrics != nil {
		s.updateQueueGauge(ctx, checkIn.QueueDate)
	}

	if req.Status == model.CheckInStatusCompleted {
		if err := s.eventSvc.Emit(ctx, "checkin.completed", checkIn); err != nil {
			log.Warn().Err(err).Str("checkin_id", checkIn.ID.String()).Msg("failed to emit checkin.completed")
		}
	}

	return checkIn, nil
}

func (s *Service) mirrorAppointmentStatus(ctx context.Context, appointmentID uuid.UUID, status model.CheckInStatus) error {
	switch status {
	case model.CheckInStatusInConsultation:
		return s.appointmentRepo.UpdateStatus(ctx, appointmentID, model.AppointmentStatusConfirmed)
	case model.CheckInStatusCompleted:
		return s.appointmentRepo.UpdateStatus(ctx, appointmentID, model.AppointmentStatusCompleted)
	case model.CheckInStatusCancelled:
		// Release the slot so the appointment is visibly unconsumed.
		return s.appointmentRepo.UpdateStatus(ctx, appointmentID, model.AppointmentStatusScheduled)
	}
	return nil
}

func (s *Service) GetCheckIn(ctx context.Context, id uuid.UUID) (*model.CheckIn, error) {
	checkIn, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, apperrors.NotFound("check-in", err)
	}
	return checkIn, nil
}

func (s *Service) ListCheckIns(ctx context.Context, filters *model.CheckInFilters) ([]*model.CheckIn, error) {
	checkIns, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list check-ins: %w", err)
	}
	return checkIns, nil
}

// TodayQueue lists the current day's queue in consultation order.
func (s *Service) TodayQueue(ctx context.Context) ([]*model.CheckIn, error) {
	return s.ListCheckIns(ctx, &model.CheckInFilters{QueueDate: QueueDay(s.now())})
}

func (s *Service) updateQueueGauge(ctx context.Context, day time.Time) {
	count, err := s.repo.CountWaiting(ctx, day)
	if err != nil {
		return
	}
	s.metrics.QueueWaiting.Set(float64(count))
}
