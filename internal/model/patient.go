package model

import (
	"time"

	"github.com/google/uuid"
)

type Patient struct {
	Base
	Name        string     `db:"name" json:"name"`
	Email       string     `db:"email" json:"email,omitempty"`
	Phone       string     `db:"phone" json:"phone,omitempty"`
	DateOfBirth *time.Time `db:"date_of_birth" json:"date_of_birth,omitempty"`
	Gender      string     `db:"gender" json:"gender,omitempty"`
	Address     string     `db:"address" json:"address,omitempty"`
	BloodGroup  string     `db:"blood_group" json:"blood_group,omitempty"`
	CaregiverID *uuid.UUID `db:"caregiver_id" json:"caregiver_id,omitempty"`
	Status      string     `db:"status" json:"status"`
}

type CreatePatientRequest struct {
	Name        string     `json:"name" binding:"required,max=200"`
	Email       string     `json:"email" binding:"omitempty,email"`
	Phone       string     `json:"phone" binding:"max=30"`
	DateOfBirth *time.Time `json:"date_of_birth"`
	Gender      string     `json:"gender" binding:"omitempty,oneof=male female other"`
	Address     string     `json:"address" binding:"max=500"`
	BloodGroup  string     `json:"blood_group" binding:"max=5"`
	CaregiverID *uuid.UUID `json:"caregiver_id"`
}

type UpdatePatientRequest struct {
	Name        *string    `json:"name"`
	Email       *string    `json:"email"`
	Phone       *string    `json:"phone"`
	Address     *string    `json:"address"`
	BloodGroup  *string    `json:"blood_group"`
	CaregiverID *uuid.UUID `json:"caregiver_id"`
	Status      *string    `json:"status"`
}

type PatientFilters struct {
	SearchTerm  string
	Status      string
	CaregiverID uuid.UUID
}
