package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type LabOrderStatus string

const (
	LabOrderStatusOrdered    LabOrderStatus = "ordered"
	LabOrderStatusInProgress LabOrderStatus = "in_progress"
	LabOrderStatusCompleted  LabOrderStatus = "completed"
	LabOrderStatusCancelled  LabOrderStatus = "cancelled"
)

type LabOrder struct {
	Base
	PatientID     uuid.UUID       `db:"patient_id" json:"patient_id"`
	OrderedBy     uuid.UUID       `db:"ordered_by" json:"ordered_by"`
	AppointmentID *uuid.UUID      `db:"appointment_id" json:"appointment_id,omitempty"`
	TestName      string          `db:"test_name" json:"test_name"`
	Status        LabOrderStatus  `db:"status" json:"status"`
	Priority      string          `db:"priority" json:"priority"`
	Notes         string          `db:"notes" json:"notes,omitempty"`
	Result        json.RawMessage `db:"result" json:"result,omitempty"`
	CompletedAt   *time.Time      `db:"completed_at" json:"completed_at,omitempty"`
}

type CreateLabOrderRequest struct {
	PatientID     uuid.UUID  `json:"patient_id" binding:"required"`
	AppointmentID *uuid.UUID `json:"appointment_id"`
	TestName      string     `json:"test_name" binding:"required,max=200"`
	Priority      string     `json:"priority" binding:"omitempty,oneof=routine urgent stat"`
	Notes         string     `json:"notes" binding:"max=1000"`
}

type UpdateLabOrderRequest struct {
	Status *LabOrderStatus `json:"status"`
	Result json.RawMessage `json:"result"`
	Notes  *string         `json:"notes"`
}

type LabOrderFilters struct {
	PatientID uuid.UUID
	OrderedBy uuid.UUID
	Status    LabOrderStatus
}
