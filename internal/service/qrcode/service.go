package qrcode

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog/log"
	qr "github.com/skip2/go-qrcode"

	"github.com/medisuite/hms-api/internal/model"
	"github.com/medisuite/hms-api/internal/repository"
	apperrors "github.com/medisuite/hms-api/pkg/errors"
)

const (
	codePrefix = "CHK-"
	codeLength = 5

	// Excludes 0/O and 1/I so codes read unambiguously over the phone.
	codeAlphabet = "23456789ABCDEFGHJKLMNPQRSTUVWXYZ"

	payloadType = "hms_checkin"

	maxCodeAttempts = 5

	codeCacheTTL     = 10 * time.Minute
	codeCacheCleanup = 30 * time.Minute
)

// Payload is the JSON document encoded into a check-in QR image and
// accepted back by the scan endpoint. Code is empty when generation
// was exhausted; the appointment reference alone still checks in.
type Payload struct {
	Type          string    `json:"type"`
	AppointmentID uuid.UUID `json:"appointment_id"`
	Code          string    `json:"code,omitempty"`
	IssuedAt      time.Time `json:"issued_at"`
}

type Service struct {
	appointmentRepo repository.AppointmentRepository
	codeCache       *cache.Cache
	now             func() time.Time
}

func NewService(appointmentRepo repository.AppointmentRepository) *Service {
	return &Service{
		appointmentRepo: appointmentRepo,
		codeCache:       cache.New(codeCacheTTL, codeCacheCleanup),
		now:             time.Now,
	}
}

// CheckInCode returns the appointment's check-in code, generating and
// persisting one on first use. Generation retries on collisions; if a
// unique code cannot be found the appointment simply has no code and
// the caller falls back to manual check-in.
func (s *Service) CheckInCode(ctx context.Context, appointmentID uuid.UUID) (*string, error) {
	apt, err := s.appointmentRepo.Get(ctx, appointmentID)
	if err != nil {
		return nil, apperrors.NotFound("appointment", err)
	}
	if apt.CheckInCode != nil {
		return apt.CheckInCode, nil
	}

	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := randomCode()
		if err != nil {
			return nil, fmt.Errorf("failed to generate check-in code: %w", err)
		}
		exists, err := s.appointmentRepo.CheckInCodeExists(ctx, code)
		if err != nil {
			return nil, fmt.Errorf("failed to check code uniqueness: %w", err)
		}
		if exists {
			continue
		}
		if err := s.appointmentRepo.SetCheckInCode(ctx, appointmentID, code); err != nil {
			return nil, fmt.Errorf("failed to persist check-in code: %w", err)
		}
		// SetCheckInCode only writes when the column is still NULL, so a
		// concurrent writer may have won. Re-read for the stored value.
		apt, err = s.appointmentRepo.Get(ctx, appointmentID)
		if err != nil {
			return nil, fmt.Errorf("failed to reload appointment: %w", err)
		}
		return apt.CheckInCode, nil
	}

	log.Warn().Str("appointment_id", appointmentID.String()).
		Int("attempts", maxCodeAttempts).
		Msg("could not generate unique check-in code")
	return nil, nil
}

// ResolveCode finds the appointment a check-in code belongs to. Codes
// are matched case-insensitively; recent lookups are cached.
func (s *Service) ResolveCode(ctx context.Context, code string) (*model.Appointment, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	if !IsValidCheckInCode(normalized) {
		return nil, apperrors.BadRequest("malformed check-in code", nil)
	}

	if cached, ok := s.codeCache.Get(normalized); ok {
		apt := cached.(model.Appointment)
		return &apt, nil
	}

	apt, err := s.appointmentRepo.GetByCheckInCode(ctx, normalized)
	if err != nil {
		return nil, apperrors.NotFound("appointment", err)
	}

	s.codeCache.Set(normalized, *apt, cache.DefaultExpiration)
	return apt, nil
}

// Image renders the appointment's check-in payload as a PNG. size is
// the image edge in pixels.
func (s *Service) Image(ctx context.Context, appointmentID uuid.UUID, size int) ([]byte, error) {
	payload, err := s.BuildPayload(ctx, appointmentID)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode payload: %w", err)
	}

	png, err := qr.Encode(string(data), qr.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("failed to render QR image: %w", err)
	}
	return png, nil
}

// BuildPayload assembles the scan payload for an appointment. The
// payload carries no code when none could be generated; that payload
// is still scannable.
func (s *Service) BuildPayload(ctx context.Context, appointmentID uuid.UUID) (*Payload, error) {
	code, err := s.CheckInCode(ctx, appointmentID)
	if err != nil {
		return nil, err
	}

	payload := &Payload{
		Type:          payloadType,
		AppointmentID: appointmentID,
		IssuedAt:      s.now().UTC(),
	}
	if code != nil {
		payload.Code = *code
	}
	return payload, nil
}

// ParsePayload validates raw scanned QR content and returns the
// payload it carries.
func ParsePayload(raw []byte) (*Payload, error) {
	var payload Payload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, apperrors.BadRequest("unreadable QR payload", err)
	}
	if payload.Type != payloadType {
		return nil, apperrors.BadRequest(fmt.Sprintf("unexpected payload type %q", payload.Type), nil)
	}
	if payload.AppointmentID == uuid.Nil {
		return nil, apperrors.BadRequest("payload missing appointment reference", nil)
	}
	// The code is optional. Validate only when one is present.
	if payload.Code != "" && !IsValidCheckInCode(payload.Code) {
		return nil, apperrors.BadRequest("malformed check-in code", nil)
	}
	return &payload, nil
}

// IsValidCheckInCode reports whether code has the CHK-XXXXX shape with
// every character drawn from the code alphabet. Case-insensitive.
func IsValidCheckInCode(code string) bool {
	code = strings.ToUpper(code)
	if len(code) != len(codePrefix)+codeLength {
		return false
	}
	if !strings.HasPrefix(code, codePrefix) {
		return false
	}
	for _, c := range code[len(codePrefix):] {
		if !strings.ContainsRune(codeAlphabet, c) {
			return false
		}
	}
	return true
}

func randomCode() (string, error) {
	var b strings.Builder
	b.WriteString(codePrefix)
	max := big.NewInt(int64(len(codeAlphabet)))
	for i := 0; i < codeLength; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b.WriteByte(codeAlphabet[n.Int64()])
	}
	return b.String(), nil
}
