package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/medisuite/hms-api/internal/model"
	"github.com/medisuite/hms-api/internal/repository"
)

type prescriptionRepository struct {
	BaseRepository
}

func NewPrescriptionRepository(db *sqlx.DB) repository.PrescriptionRepository {
	return &prescriptionRepository{NewBaseRepository(db)}
}

// Create inserts the prescription and its items in one transaction.
func (r *prescriptionRepository) Create(ctx context.Context, prescription *model.Prescription) error {
	prescription.ID = uuid.New()
	prescription.CreatedAt = time.Now()
	prescription.UpdatedAt = prescription.CreatedAt

	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO prescriptions (
				id, patient_id, doctor_id, appointment_id, status, notes,
				created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`
		_, err := tx.ExecContext(ctx, query,
			prescription.ID,
			prescription.PatientID,
			prescription.DoctorID,
			prescription.AppointmentID,
			prescription.Status,
			prescription.Notes,
			prescription.CreatedAt,
			prescription.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to create prescription: %w", err)
		}

		itemQuery := `
			INSERT INTO prescription_items (
				id, prescription_id, medication, dosage, frequency,
				duration_days, instructions
			) VALUES ($1, $2, $3, $4, $5, $6, $7)
		`
		for i := range prescription.Items {
			item := &prescription.Items[i]
			item.ID = uuid.New()
			item.PrescriptionID = prescription.ID
			_, err := tx.ExecContext(ctx, itemQuery,
				item.ID,
				item.PrescriptionID,
				item.Medication,
				item.Dosage,
				item.Frequency,
				item.DurationDays,
				item.Instructions,
			)
			if err != nil {
				return fmt.Errorf("failed to create prescription item: %w", err)
			}
		}

		return nil
	})
}

func (r *prescriptionRepository) Get(ctx context.Context, id uuid.UUID) (*model.Prescription, error) {
	query := `
		SELECT id, patient_id, doctor_id, appointment_id, status, notes,
			   dispensed_at, dispensed_by, created_at, updated_at, deleted_at
		FROM prescriptions
		WHERE id = $1
	`
	var prescription model.Prescription
	err := r.db.GetContext(ctx, &prescription, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get prescription: %w", err)
	}

	itemQuery := `
		SELECT id, prescription_id, medication, dosage, frequency,
			   duration_days, instructions
		FROM prescription_items
		WHERE prescription_id = $1
	`
	err = r.db.SelectContext(ctx, &prescription.Items, itemQuery, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get prescription items: %w", err)
	}

	return &prescription, nil
}

func (r *prescriptionRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.PrescriptionStatus, dispensedBy *uuid.UUID, dispensedAt *time.Time) error {
	query := `
		UPDATE prescriptions
		SET status = $1, dispensed_by = $2, dispensed_at = $3, updated_at = $4
		WHERE id = $5
	`
	result, err := r.db.ExecContext(ctx, query, status, dispensedBy, dispensedAt, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update prescription status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("prescription not found")
	}

	return nil
}

func (r *prescriptionRepository) List(ctx context.Context, filters *model.PrescriptionFilters) ([]*model.Prescription, error) {
	query := `
		SELECT id, patient_id, doctor_id, appointment_id, status, notes,
			   dispensed_at, dispensed_by, created_at, updated_at, deleted_at
		FROM prescriptions
		WHERE 1=1
	`
	args := []interface{}{}
	argCount := 1

	if filters != nil {
		if filters.PatientID != uuid.Nil {
			query += fmt.Sprintf(" AND patient_id = $%d", argCount)
			args = append(args, filters.PatientID)
			argCount++
		}
		if filters.DoctorID != uuid.Nil {
			query += fmt.Sprintf(" AND doctor_id = $%d", argCount)
			args = append(args, filters.DoctorID)
			argCount++
		}
		if filters.Status != "" {
			query += fmt.Sprintf(" AND status = $%d", argCount)
			args = append(args, filters.Status)
			argCount++
		}
	}

	query += " ORDER BY created_at DESC"

	var prescriptions []*model.Prescription
	err := r.db.SelectContext(ctx, &prescriptions, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list prescriptions: %w", err)
	}
	return prescriptions, nil
}
