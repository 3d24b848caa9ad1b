package qrcode

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medisuite/hms-api/internal/model"
)

type fakeAppointmentRepo struct {
	mu           sync.Mutex
	appointments map[uuid.UUID]*model.Appointment
	existsCalls  int
	// codes reported as taken regardless of stored appointments
	takenCodes map[string]bool
}

func newFakeAppointmentRepo() *fakeAppointmentRepo {
	return &fakeAppointmentRepo{
		appointments: make(map[uuid.UUID]*model.Appointment),
		takenCodes:   make(map[string]bool),
	}
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
	r.existsCalls++
	if r.takenCodes[code] || r.takenCodes["*"] {
		return true, nil
	}
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

func TestCheckInCodeGeneratesAndPersists(t *testing.T) {
	repo := newFakeAppointmentRepo()
	apt := &model.Appointment{PatientID: uuid.New()}
	repo.add(apt)
	svc := NewService(repo)
	ctx := context.Background()

	code, err := svc.CheckInCode(ctx, apt.ID)
	require.NoError(t, err)
	require.NotNil(t, code)
	assert.True(t, IsValidCheckInCode(*code))

	// A second call returns the same persisted code.
	again, err := svc.CheckInCode(ctx, apt.ID)
	require.NoError(t, err)
	require.NotNil(t, again)
	assert.Equal(t, *code, *again)
}

func TestCheckInCodeGivesUpAfterCollisions(t *testing.T) {
	repo := newFakeAppointmentRepo()
	repo.takenCodes["*"] = true
	apt := &model.Appointment{PatientID: uuid.New()}
	repo.add(apt)
	svc := NewService(repo)

	code, err := svc.CheckInCode(context.Background(), apt.ID)
	require.NoError(t, err)
	assert.Nil(t, code)
	assert.Equal(t, maxCodeAttempts, repo.existsCalls)
}

func TestIsValidCheckInCode(t *testing.T) {
	tests := []struct {
		code string
		want bool
	}{
		{"CHK-A2B3C", true},
		{"chk-a2b3c", true},
		{"CHK-ZZZZZ", true},
		{"CHK-A2B3", false},
		{"CHK-A2B3CD", false},
		{"XYZ-A2B3C", false},
		{"CHK-A0B3C", false},
		{"CHK-AOB3C", false},
		{"CHK-A1B3C", false},
		{"CHK-AIB3C", false},
		{"", false},
		{"CHK-", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsValidCheckInCode(tt.code), "code %q", tt.code)
	}
}

func TestGeneratedCodesUseSafeAlphabet(t *testing.T) {
	for i := 0; i < 50; i++ {
		code, err := randomCode()
		require.NoError(t, err)
		require.True(t, strings.HasPrefix(code, "CHK-"))
		for _, c := range code[len("CHK-"):] {
			assert.NotContains(t, "01OI", string(c), "code %q contains ambiguous character", code)
		}
	}
}

func TestResolveCodeNormalizesCase(t *testing.T) {
	repo := newFakeAppointmentRepo()
	code := "CHK-A2B3C"
	apt := &model.Appointment{PatientID: uuid.New(), CheckInCode: &code}
	repo.add(apt)
	svc := NewService(repo)

	got, err := svc.ResolveCode(context.Background(), "  chk-a2b3c ")
	require.NoError(t, err)
	assert.Equal(t, apt.ID, got.ID)
}

func TestResolveCodeRejectsMalformed(t *testing.T) {
	svc := NewService(newFakeAppointmentRepo())

	_, err := svc.ResolveCode(context.Background(), "not-a-code")
	require.Error(t, err)
}

func TestBuildAndParsePayload(t *testing.T) {
	repo := newFakeAppointmentRepo()
	apt := &model.Appointment{PatientID: uuid.New()}
	repo.add(apt)
	svc := NewService(repo)
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC) }

	payload, err := svc.BuildPayload(context.Background(), apt.ID)
	require.NoError(t, err)
	assert.Equal(t, "hms_checkin", payload.Type)
	assert.Equal(t, apt.ID, payload.AppointmentID)

	raw, err := json.Marshal(payload)
	require.NoError(t, err)

	parsed, err := ParsePayload(raw)
	require.NoError(t, err)
	assert.Equal(t, payload.Code, parsed.Code)
	assert.Equal(t, payload.AppointmentID, parsed.AppointmentID)
}

func TestBuildPayloadWithoutCode(t *testing.T) {
	repo := newFakeAppointmentRepo()
	repo.takenCodes["*"] = true
	apt := &model.Appointment{PatientID: uuid.New()}
	repo.add(apt)
	svc := NewService(repo)

	payload, err := svc.BuildPayload(context.Background(), apt.ID)
	require.NoError(t, err)
	require.NotNil(t, payload)
	assert.Empty(t, payload.Code)
	assert.Equal(t, apt.ID, payload.AppointmentID)

	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), `"code"`)

	// A codeless payload still parses; the appointment reference
	// carries the check-in.
	parsed, err := ParsePayload(raw)
	require.NoError(t, err)
	assert.Empty(t, parsed.Code)
	assert.Equal(t, apt.ID, parsed.AppointmentID)
}

func TestImageWithoutCodeStillRenders(t *testing.T) {
	repo := newFakeAppointmentRepo()
	repo.takenCodes["*"] = true
	apt := &model.Appointment{PatientID: uuid.New()}
	repo.add(apt)
	svc := NewService(repo)

	png, err := svc.Image(context.Background(), apt.ID, 256)
	require.NoError(t, err)
	require.NotEmpty(t, png)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, png[:4])
}

func TestParsePayloadRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not json", "garbage"},
		{"wrong type", `{"type":"other","appointment_id":"` + uuid.NewString() + `","code":"CHK-A2B3C"}`},
		{"missing appointment", `{"type":"hms_checkin","code":"CHK-A2B3C"}`},
		{"bad code", `{"type":"hms_checkin","appointment_id":"` + uuid.NewString() + `","code":"CHK-0000"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePayload([]byte(tt.raw))
			require.Error(t, err)
		})
	}
}

func TestImageProducesPNG(t *testing.T) {
	repo := newFakeAppointmentRepo()
	apt := &model.Appointment{PatientID: uuid.New()}
	repo.add(apt)
	svc := NewService(repo)

	png, err := svc.Image(context.Background(), apt.ID, 256)
	require.NoError(t, err)
	require.NotEmpty(t, png)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, png[:4])
}
