package checkin

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medisuite/hms-api/internal/model"
	checkinsvc "github.com/medisuite/hms-api/internal/service/checkin"
	"github.com/medisuite/hms-api/internal/service/event"
	"github.com/medisuite/hms-api/internal/service/qrcode"
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
	next := 1
	for _, c := range r.checkIns {
		if c.QueueDate.Equal(checkIn.QueueDate) && c.QueueNumber >= next {
			next = c.QueueNumber + 1
		}
	}
	checkIn.ID = uuid.New()
	checkIn.QueueNumber = next
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
	cp := *checkIn
	r.checkIns[checkIn.ID] = &cp
	return nil
}

func (r *fakeCheckInRepo) List(_ context.Context, _ *model.CheckInFilters) ([]*model.CheckIn, error) {
	return nil, nil
}

func (r *fakeCheckInRepo) CountWaiting(_ context.Context, _ time.Time) (int, error) {
	return 0, nil
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

type fakeOutboxRepo struct{}

func (r *fakeOutboxRepo) Create(_ context.Context, _ *model.OutboxEvent) error { return nil }
func (r *fakeOutboxRepo) GetPendingEvents(_ context.Context, _ int) ([]*model.OutboxEvent, error) {
	return nil, nil
}
func (r *fakeOutboxRepo) UpdateStatus(_ context.Context, _ uuid.UUID, _ model.OutboxStatus, _ *string) error {
	return nil
}
func (r *fakeOutboxRepo) DeleteProcessedBefore(_ context.Context, _ time.Time) (int64, error) {
	return 0, nil
}

func newScanRouter(t *testing.T, appointmentRepo *fakeAppointmentRepo) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	checkinSvc := checkinsvc.NewService(newFakeCheckInRepo(), appointmentRepo, event.NewService(&fakeOutboxRepo{}), nil)
	h := NewHandler(checkinSvc, qrcode.NewService(appointmentRepo))

	r := gin.New()
	r.POST("/checkins/scan", h.Scan)
	return r
}

func postScan(t *testing.T, r *gin.Engine, body map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/checkins/scan", strings.NewReader(string(raw)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestScanWithCode(t *testing.T) {
	repo := newFakeAppointmentRepo()
	code := "CHK-A2B3C"
	apt := &model.Appointment{PatientID: uuid.New(), CheckInCode: &code}
	repo.add(apt)
	r := newScanRouter(t, repo)

	w := postScan(t, r, map[string]string{"code": "chk-a2b3c"})
	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Data model.CheckIn `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, apt.PatientID, resp.Data.PatientID)
	assert.Equal(t, model.CheckInStatusWaiting, resp.Data.Status)
}

func TestScanCodelessPayloadUsesAppointmentReference(t *testing.T) {
	repo := newFakeAppointmentRepo()
	apt := &model.Appointment{PatientID: uuid.New()}
	repo.add(apt)
	r := newScanRouter(t, repo)

	payload, err := json.Marshal(map[string]interface{}{
		"type":           "hms_checkin",
		"appointment_id": apt.ID,
		"issued_at":      time.Now().UTC(),
	})
	require.NoError(t, err)

	w := postScan(t, r, map[string]string{"payload": string(payload)})
	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Data model.CheckIn `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, apt.PatientID, resp.Data.PatientID)
	require.NotNil(t, resp.Data.AppointmentID)
	assert.Equal(t, apt.ID, *resp.Data.AppointmentID)
}

func TestScanRequiresPayloadOrCode(t *testing.T) {
	r := newScanRouter(t, newFakeAppointmentRepo())

	w := postScan(t, r, map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
