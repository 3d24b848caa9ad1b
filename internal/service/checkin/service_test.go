package checkin

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medisuite/hms-api/internal/model"
	"github.com/medisuite/hms-api/internal/service/event"
	apperrors "github.com/medisuite/hms-api/pkg/errors"
)

type fakeCheckInRepo struct {
	mu       sync.Mutex
	checkIns map[uuid.UUID]*model.CheckIn
}

func newFakeCheckInRepo() *fakeCheckInRepo {
	return &fakeCheckInRepo{checkIns: make(map[uuid.UUID]*model.CheckIn)}
}

func (r *fakeCheckInRepo) CreateWithQueueNumber(_ context.Context, checkIn *model.CheckIn) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	max := 0
	for _, c := range r.checkIns {
		if c.QueueDate.Equal(checkIn.QueueDate) && c.QueueNumber > max {
			max = c.QueueNumber
		}
	}
	checkIn.ID = uuid.New()
	checkIn.QueueNumber = max + 1
	cp := *checkIn
	r.checkIns[checkIn.ID] = &cp
	return nil
}

func (r *fakeCheckInRepo) Get(_ context.Context, id uuid.UUID) (*model.CheckIn, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.checkIns[id]
	if !ok {
		return nil, fmt.Errorf("check-in not found")
	}
	cp := *c
	return &cp, nil
}

func (r *fakeCheckInRepo) Update(_ context.Context, checkIn *model.CheckIn) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.checkIns[checkIn.ID]; !ok {
		return fmt.Errorf("check-in not found")
	}
	cp := *checkIn
	r.checkIns[checkIn.ID] = &cp
	return nil
}

func (r *fakeCheckInRepo) List(_ context.Context, filters *model.CheckInFilters) ([]*model.CheckIn, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.CheckIn
	for _, c := range r.checkIns {
		if !filters.QueueDate.IsZero() && !c.QueueDate.Equal(filters.QueueDate) {
			continue
		}
		if filters.Status != "" && c.Status != filters.Status {
			continue
		}
		cp := *c
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeCheckInRepo) CountWaiting(_ context.Context, day time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.checkIns {
		if c.QueueDate.Equal(day) && c.Status == model.CheckInStatusWaiting {
			n++
		}
	}
	return n, nil
}

type fakeAppointmentRepo struct {
	mu           sync.Mutex
	appointments map[uuid.UUID]*model.Appointment
}

func newFakeAppointmentRepo() *fakeAppointmentRepo {
	return &fakeAppointmentRepo{appointments: make(map[uuid.UUID]*model.Appointment)}
}

func (r *fakeAppointmentRepo) add(apt *model.Appointment) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if apt.ID == uuid.Nil {
		apt.ID = uuid.New()
	}
	r.appointments[apt.ID] = apt
}

func (r *fakeAppointmentRepo) Create(_ context.Context, apt *model.Appointment) error {
	r.add(apt)
	return nil
}

func (r *fakeAppointmentRepo) Get(_ context.Context, id uuid.UUID) (*model.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	apt, ok := r.appointments[id]
	if !ok {
		return nil, fmt.Errorf("appointment not found")
	}
	cp := *apt
	return &cp, nil
}

func (r *fakeAppointmentRepo) GetByCheckInCode(_ context.Context, code string) (*model.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, apt := range r.appointments {
		if apt.CheckInCode != nil && *apt.CheckInCode == code {
			cp := *apt
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("appointment not found")
}

func (r *fakeAppointmentRepo) Update(_ context.Context, apt *model.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.appointments[apt.ID] = apt
	return nil
}

func (r *fakeAppointmentRepo) UpdateStatus(_ context.Context, id uuid.UUID, status model.AppointmentStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	apt, ok := r.appointments[id]
	if !ok {
		return fmt.Errorf("appointment not found")
	}
	apt.Status = status
	return nil
}

func (r *fakeAppointmentRepo) SetCheckInCode(_ context.Context, id uuid.UUID, code string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	apt, ok := r.appointments[id]
	if !ok {
		return fmt.Errorf("appointment not found")
	}
	if apt.CheckInCode == nil {
		apt.CheckInCode = &code
	}
	return nil
}

func (r *fakeAppointmentRepo) CheckInCodeExists(_ context.Context, code string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, apt := range r.appointments {
		if apt.CheckInCode != nil && *apt.CheckInCode == code {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeAppointmentRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.appointments, id)
	return nil
}

func (r *fakeAppointmentRepo) List(_ context.Context, _ *model.AppointmentFilters) ([]*model.Appointment, error) {
	return nil, nil
}

func (r *fakeAppointmentRepo) CheckConflicts(_ context.Context, _ uuid.UUID, _, _ time.Time, _ *uuid.UUID) (bool, error) {
	return false, nil
}

type fakeOutboxRepo struct {
	mu     sync.Mutex
	events []*model.OutboxEvent
}

func (r *fakeOutboxRepo) Create(_ context.Context, e *model.OutboxEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *fakeOutboxRepo) GetPendingEvents(_ context.Context, _ int) ([]*model.OutboxEvent, error) {
	return nil, nil
}

func (r *fakeOutboxRepo) UpdateStatus(_ context.Context, _ uuid.UUID, _ model.OutboxStatus, _ *string) error {
	return nil
}

func (r *fakeOutboxRepo) DeleteProcessedBefore(_ context.Context, _ time.Time) (int64, error) {
	return 0, nil
}

func (r *fakeOutboxRepo) eventTypes() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var types []string
	for _, e := range r.events {
		types = append(types, e.EventType)
	}
	return types
}

func newTestService() (*Service, *fakeCheckInRepo, *fakeAppointmentRepo, *fakeOutboxRepo) {
	checkInRepo := newFakeCheckInRepo()
	appointmentRepo := newFakeAppointmentRepo()
	outboxRepo := &fakeOutboxRepo{}
	svc := NewService(checkInRepo, appointmentRepo, event.NewService(outboxRepo), nil)
	return svc, checkInRepo, appointmentRepo, outboxRepo
}

func TestCreateCheckInAssignsSequentialQueueNumbers(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()
	patientID := uuid.New()

	for i := 1; i <= 3; i++ {
		checkIn, err := svc.CreateCheckIn(ctx, &model.CreateCheckInRequest{PatientID: &patientID})
		require.NoError(t, err)
		assert.Equal(t, i, checkIn.QueueNumber)
		assert.Equal(t, model.CheckInStatusWaiting, checkIn.Status)
	}
}

func TestCreateCheckInQueueRestartsPerDay(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()
	patientID := uuid.New()

	svc.now = func() time.Time { return time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC) }
	first, err := svc.CreateCheckIn(ctx, &model.CreateCheckInRequest{PatientID: &patientID})
	require.NoError(t, err)
	assert.Equal(t, 1, first.QueueNumber)

	svc.now = func() time.Time { return time.Date(2026, 3, 2, 8, 30, 0, 0, time.UTC) }
	nextDay, err := svc.CreateCheckIn(ctx, &model.CreateCheckInRequest{PatientID: &patientID})
	require.NoError(t, err)
	assert.Equal(t, 1, nextDay.QueueNumber)
	assert.False(t, nextDay.QueueDate.Equal(first.QueueDate))
}

func TestCreateCheckInRequiresReference(t *testing.T) {
	svc, _, _, _ := newTestService()

	_, err := svc.CreateCheckIn(context.Background(), &model.CreateCheckInRequest{})
	require.Error(t, err)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrBadRequest, appErr.Code)
}

func TestCreateCheckInDefaultsReason(t *testing.T) {
	svc, _, _, _ := newTestService()
	patientID := uuid.New()

	checkIn, err := svc.CreateCheckIn(context.Background(), &model.CreateCheckInRequest{PatientID: &patientID})
	require.NoError(t, err)
	assert.Equal(t, "General consultation", checkIn.Reason)
}

func TestCreateCheckInResolvesPatientFromAppointment(t *testing.T) {
	svc, _, appointmentRepo, outboxRepo := newTestService()
	ctx := context.Background()

	patientID := uuid.New()
	apt := &model.Appointment{PatientID: patientID, Status: model.AppointmentStatusScheduled}
	appointmentRepo.add(apt)

	checkIn, err := svc.CreateCheckIn(ctx, &model.CreateCheckInRequest{AppointmentID: &apt.ID})
	require.NoError(t, err)
	assert.Equal(t, patientID, checkIn.PatientID)
	assert.Contains(t, outboxRepo.eventTypes(), "checkin.created")
}

func TestCreateCheckInUnknownAppointment(t *testing.T) {
	svc, _, _, _ := newTestService()
	missing := uuid.New()

	_, err := svc.CreateCheckIn(context.Background(), &model.CreateCheckInRequest{AppointmentID: &missing})
	require.Error(t, err)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrNotFound, appErr.Code)
}

func TestUpdateStatusTransitions(t *testing.T) {
	tests := []struct {
		name    string
		from    model.CheckInStatus
		to      model.CheckInStatus
		allowed bool
	}{
		{"waiting to in_consultation", model.CheckInStatusWaiting, model.CheckInStatusInConsultation, true},
		{"waiting to cancelled", model.CheckInStatusWaiting, model.CheckInStatusCancelled, true},
		{"waiting to completed", model.CheckInStatusWaiting, model.CheckInStatusCompleted, false},
		{"in_consultation to completed", model.CheckInStatusInConsultation, model.CheckInStatusCompleted, true},
		{"in_consultation to cancelled", model.CheckInStatusInConsultation, model.CheckInStatusCancelled, true},
		{"in_consultation to waiting", model.CheckInStatusInConsultation, model.CheckInStatusWaiting, false},
		{"completed is terminal", model.CheckInStatusCompleted, model.CheckInStatusInConsultation, false},
		{"cancelled is terminal", model.CheckInStatusCancelled, model.CheckInStatusWaiting, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, checkInRepo, _, _ := newTestService()
			ctx := context.Background()
			patientID := uuid.New()

			checkIn, err := svc.CreateCheckIn(ctx, &model.CreateCheckInRequest{PatientID: &patientID})
			require.NoError(t, err)

			stored, err := checkInRepo.Get(ctx, checkIn.ID)
			require.NoError(t, err)
			stored.Status = tt.from
			require.NoError(t, checkInRepo.Update(ctx, stored))

			updated, err := svc.UpdateStatus(ctx, checkIn.ID, &model.UpdateCheckInStatusRequest{Status: tt.to})
			if tt.allowed {
				require.NoError(t, err)
				assert.Equal(t, tt.to, updated.Status)
			} else {
				require.Error(t, err)
				var appErr *apperrors.AppError
				require.ErrorAs(t, err, &appErr)
				assert.Equal(t, apperrors.ErrBadRequest, appErr.Code)
				unchanged, getErr := checkInRepo.Get(ctx, checkIn.ID)
				require.NoError(t, getErr)
				assert.Equal(t, tt.from, unchanged.Status)
			}
		})
	}
}

func TestUpdateStatusRejectsUnknownStatus(t *testing.T) {
	svc, checkInRepo, _, _ := newTestService()
	ctx := context.Background()
	patientID := uuid.New()

	checkIn, err := svc.CreateCheckIn(ctx, &model.CreateCheckInRequest{PatientID: &patientID})
	require.NoError(t, err)

	_, err = svc.UpdateStatus(ctx, checkIn.ID, &model.UpdateCheckInStatusRequest{Status: "paused"})
	require.Error(t, err)

	unchanged, err := checkInRepo.Get(ctx, checkIn.ID)
	require.NoError(t, err)
	assert.Equal(t, model.CheckInStatusWaiting, unchanged.Status)
}

func TestUpdateStatusMirrorsAppointment(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		transition []model.CheckInStatus
		wantStatus model.AppointmentStatus
	}{
		{"consultation confirms appointment", []model.CheckInStatus{model.CheckInStatusInConsultation}, model.AppointmentStatusConfirmed},
		{"completion completes appointment", []model.CheckInStatus{model.CheckInStatusInConsultation, model.CheckInStatusCompleted}, model.AppointmentStatusCompleted},
		{"cancellation releases appointment", []model.CheckInStatus{model.CheckInStatusCancelled}, model.AppointmentStatusScheduled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, appointmentRepo, _ := newTestService()
			apt := &model.Appointment{PatientID: uuid.New(), Status: model.AppointmentStatusScheduled}
			appointmentRepo.add(apt)

			checkIn, err := svc.CreateCheckIn(ctx, &model.CreateCheckInRequest{AppointmentID: &apt.ID})
			require.NoError(t, err)

			for _, status := range tt.transition {
				_, err = svc.UpdateStatus(ctx, checkIn.ID, &model.UpdateCheckInStatusRequest{Status: status})
				require.NoError(t, err)
			}

			got, err := appointmentRepo.Get(ctx, apt.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, got.Status)
		})
	}
}

func TestUpdateStatusCompletedSetsCompletedAt(t *testing.T) {
	svc, _, _, outboxRepo := newTestService()
	ctx := context.Background()
	patientID := uuid.New()

	checkIn, err := svc.CreateCheckIn(ctx, &model.CreateCheckInRequest{PatientID: &patientID})
	require.NoError(t, err)

	_, err = svc.UpdateStatus(ctx, checkIn.ID, &model.UpdateCheckInStatusRequest{Status: model.CheckInStatusInConsultation})
	require.NoError(t, err)

	updated, err := svc.UpdateStatus(ctx, checkIn.ID, &model.UpdateCheckInStatusRequest{Status: model.CheckInStatusCompleted})
	require.NoError(t, err)
	require.NotNil(t, updated.CompletedAt)
	assert.Contains(t, outboxRepo.eventTypes(), "checkin.completed")
}

func TestConcurrentCheckInsGetDistinctQueueNumbers(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	const n = 20
	var wg sync.WaitGroup
	results := make(chan int, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			patientID := uuid.New()
			checkIn, err := svc.CreateCheckIn(ctx, &model.CreateCheckInRequest{PatientID: &patientID})
			if err == nil {
				results <- checkIn.QueueNumber
			}
		}()
	}
	wg.Wait()
	close(results)

	seen := make(map[int]bool)
	for num := range results {
		assert.False(t, seen[num], "queue number %d assigned twice", num)
		seen[num] = true
	}
	assert.Len(t, seen, n)
}
