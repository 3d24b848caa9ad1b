package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type CheckInStatus string

const (
	CheckInStatusWaiting        CheckInStatus = "waiting"
	CheckInStatusInConsultation CheckInStatus = "in_consultation"
	CheckInStatusCompleted      CheckInStatus = "completed"
	CheckInStatusCancelled      CheckInStatus = "cancelled"
)

// Valid reports whether s is one of the four recognized statuses.
func (s CheckInStatus) Valid() bool {
	switch s {
	case CheckInStatusWaiting, CheckInStatusInConsultation,
		CheckInStatusCompleted, CheckInStatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transition is allowed from s.
func (s CheckInStatus) Terminal() bool {
	return s == CheckInStatusCompleted || s == CheckInStatusCancelled
}

// CheckIn records a patient's arrival for a visit. Queue numbers are
// sequential per queue_date and unique under (queue_date, queue_number).
// Check-ins are never deleted; they are the historical queue record.
type CheckIn struct {
	Base
	AppointmentID *uuid.UUID      `db:"appointment_id" json:"appointment_id,omitempty"`
	PatientID     uuid.UUID       `db:"patient_id" json:"patient_id"`
	QueueNumber   int             `db:"queue_number" json:"queue_number"`
	QueueDate     time.Time       `db:"queue_date" json:"queue_date"`
	Status        CheckInStatus   `db:"status" json:"status"`
	Reason        string          `db:"reason" json:"reason"`
	Vitals        json.RawMessage `db:"vitals" json:"vitals,omitempty"`
	Notes         string          `db:"notes" json:"notes,omitempty"`
	ArrivedAt     time.Time       `db:"arrived_at" json:"arrived_at"`
	CompletedAt   *time.Time      `db:"completed_at" json:"completed_at,omitempty"`
}

type CreateCheckInRequest struct {
	AppointmentID *uuid.UUID      `json:"appointment_id"`
	PatientID     *uuid.UUID      `json:"patient_id"`
	Reason        string          `json:"reason" binding:"max=1000"`
	Vitals        json.RawMessage `json:"vitals"`
}

type UpdateCheckInStatusRequest struct {
	Status CheckInStatus `json:"status" binding:"required"`
	Notes  string        `json:"notes" binding:"max=1000"`
}

type CheckInFilters struct {
	PatientID uuid.UUID
	Status    CheckInStatus
	QueueDate time.Time
}
