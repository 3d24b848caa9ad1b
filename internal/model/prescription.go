package model

import (
	"time"

	"github.com/google/uuid"
)

type PrescriptionStatus string

const (
	PrescriptionStatusPending   PrescriptionStatus = "pending"
	PrescriptionStatusDispensed PrescriptionStatus = "dispensed"
	PrescriptionStatusCancelled PrescriptionStatus = "cancelled"
)

type Prescription struct {
	Base
	PatientID     uuid.UUID          `db:"patient_id" json:"patient_id"`
	DoctorID      uuid.UUID          `db:"doctor_id" json:"doctor_id"`
	AppointmentID *uuid.UUID         `db:"appointment_id" json:"appointment_id,omitempty"`
	Status        PrescriptionStatus `db:"status" json:"status"`
	Notes         string             `db:"notes" json:"notes,omitempty"`
	DispensedAt   *time.Time         `db:"dispensed_at" json:"dispensed_at,omitempty"`
	DispensedBy   *uuid.UUID         `db:"dispensed_by" json:"dispensed_by,omitempty"`
	Items         []PrescriptionItem `db:"-" json:"items,omitempty"`
}

type PrescriptionItem struct {
	ID             uuid.UUID `db:"id" json:"id"`
	PrescriptionID uuid.UUID `db:"prescription_id" json:"prescription_id"`
	Medication     string    `db:"medication" json:"medication"`
	Dosage         string    `db:"dosage" json:"dosage"`
	Frequency      string    `db:"frequency" json:"frequency"`
	DurationDays   int       `db:"duration_days" json:"duration_days"`
	Instructions   string    `db:"instructions" json:"instructions,omitempty"`
}

type CreatePrescriptionRequest struct {
	PatientID     uuid.UUID                       `json:"patient_id" binding:"required"`
	AppointmentID *uuid.UUID                      `json:"appointment_id"`
	Notes         string                          `json:"notes" binding:"max=1000"`
	Items         []CreatePrescriptionItemRequest `json:"items" binding:"required,min=1,dive"`
}

type CreatePrescriptionItemRequest struct {
	Medication   string `json:"medication" binding:"required,max=200"`
	Dosage       string `json:"dosage" binding:"required,max=100"`
	Frequency    string `json:"frequency" binding:"required,max=100"`
	DurationDays int    `json:"duration_days" binding:"required,min=1"`
	Instructions string `json:"instructions" binding:"max=500"`
}

type UpdatePrescriptionStatusRequest struct {
	Status PrescriptionStatus `json:"status" binding:"required"`
}

type PrescriptionFilters struct {
	PatientID uuid.UUID
	DoctorID  uuid.UUID
	Status    PrescriptionStatus
}
