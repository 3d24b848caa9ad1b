package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/medisuite/hms-api/internal/model"
)

// All repository interfaces in one file
type (
	UserRepository interface {
		Create(ctx context.Context, user *model.User) error
		Get(ctx context.Context, id uuid.UUID) (*model.User, error)
		GetByEmail(ctx context.Context, email string) (*model.User, error)
		Update(ctx context.Context, user *model.User) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, role string) ([]*model.User, error)
		UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
	}

	PatientRepository interface {
		Create(ctx context.Context, patient *model.Patient) error
		Get(ctx context.Context, id uuid.UUID) (*model.Patient, error)
		Update(ctx context.Context, patient *model.Patient) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, filters *model.PatientFilters) ([]*model.Patient, error)
	}

	AppointmentRepository interface {
		Create(ctx context.Context, appointment *model.Appointment) error
		Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
		GetByCheckInCode(ctx context.Context, code string) (*model.Appointment, error)
		Update(ctx context.Context, appointment *model.Appointment) error
		UpdateStatus(ctx context.Context, id uuid.UUID, status model.AppointmentStatus) error
		SetCheckInCode(ctx context.Context, id uuid.UUID, code string) error
		CheckInCodeExists(ctx context.Context, code string) (bool, error)
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error)
		CheckConflicts(ctx context.Context, doctorID uuid.UUID, startTime, endTime time.Time, excludeID *uuid.UUID) (bool, error)
	}

	CheckInRepository interface {
		// CreateWithQueueNumber assigns the next same-day queue number and
		// inserts the check-in atomically.
		CreateWithQueueNumber(ctx context.Context, checkIn *model.CheckIn) error
		Get(ctx context.Context, id uuid.UUID) (*model.CheckIn, error)
		Update(ctx context.Context, checkIn *model.CheckIn) error
		List(ctx context.Context, filters *model.CheckInFilters) ([]*model.CheckIn, error)
		CountWaiting(ctx context.Context, day time.Time) (int, error)
	}

	PrescriptionRepository interface {
		Create(ctx context.Context, prescription *model.Prescription) error
		Get(ctx context.Context, id uuid.UUID) (*model.Prescription, error)
		UpdateStatus(ctx context.Context, id uuid.UUID, status model.PrescriptionStatus, dispensedBy *uuid.UUID, dispensedAt *time.Time) error
		List(ctx context.Context, filters *model.PrescriptionFilters) ([]*model.Prescription, error)
	}

	LabOrderRepository interface {
		Create(ctx context.Context, order *model.LabOrder) error
		Get(ctx context.Context, id uuid.UUID) (*model.LabOrder, error)
		Update(ctx context.Context, order *model.LabOrder) error
		List(ctx context.Context, filters *model.LabOrderFilters) ([]*model.LabOrder, error)
	}

	InventoryRepository interface {
		Create(ctx context.Context, item *model.SupplyItem) error
		Get(ctx context.Context, id uuid.UUID) (*model.SupplyItem, error)
		Update(ctx context.Context, item *model.SupplyItem) error
		AdjustStock(ctx context.Context, id uuid.UUID, delta int) (*model.SupplyItem, error)
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, filters *model.SupplyItemFilters) ([]*model.SupplyItem, error)
	}

	AuditRepository interface {
		Create(ctx context.Context, log *model.AuditLog) error
		List(ctx context.Context, filters *model.AuditLogFilters) ([]*model.AuditLog, error)
	}

	OutboxRepository interface {
		Create(ctx context.Context, event *model.OutboxEvent) error
		GetPendingEvents(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
		UpdateStatus(ctx context.Context, id uuid.UUID, status model.OutboxStatus, errorMessage *string) error
		DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
	}
)
