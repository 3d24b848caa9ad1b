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

type labOrderRepository struct {
	BaseRepository
}

func NewLabOrderRepository(db *sqlx.DB) repository.LabOrderRepository {
	return &labOrderRepository{NewBaseRepository(db)}
}

func (r *labOrderRepository) Create(ctx context.Context, order *model.LabOrder) error {
	query := `
		INSERT INTO lab_orders (
			id, patient_id, ordered_by, appointment_id, test_name,
			status, priority, notes, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	order.ID = uuid.New()
	order.CreatedAt = time.Now()
	order.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		order.ID,
		order.PatientID,
		order.OrderedBy,
		order.AppointmentID,
		order.TestName,
		order.Status,
		order.Priority,
		order.Notes,
		order.CreatedAt,
		order.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create lab order: %w", err)
	}
	return nil
}

func (r *labOrderRepository) Get(ctx context.Context, id uuid.UUID) (*model.LabOrder, error) {
	query := `
		SELECT id, patient_id, ordered_by, appointment_id, test_name,
			   status, priority, notes, result, completed_at,
			   created_at, updated_at, deleted_at
		FROM lab_orders
		WHERE id = $1
	`
	var order model.LabOrder
	err := r.db.GetContext(ctx, &order, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get lab order: %w", err)
	}
	return &order, nil
}

func (r *labOrderRepository) Update(ctx context.Context, order *model.LabOrder) error {
	query := `
		UPDATE lab_orders
		SET status = $1, result = $2, notes = $3, completed_at = $4, updated_at = $5
		WHERE id = $6
	`
	order.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		order.Status,
		order.Result,
		order.Notes,
		order.CompletedAt,
		order.UpdatedAt,
		order.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update lab order: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("lab order not found")
	}

	return nil
}

func (r *labOrderRepository) List(ctx context.Context, filters *model.LabOrderFilters) ([]*model.LabOrder, error) {
	query := `
		SELECT id, patient_id, ordered_by, appointment_id, test_name,
			   status, priority, notes, result, completed_at,
			   created_at, updated_at, deleted_at
		FROM lab_orders
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
		if filters.OrderedBy != uuid.Nil {
			query += fmt.Sprintf(" AND ordered_by = $%d", argCount)
			args = append(args, filters.OrderedBy)
			argCount++
		}
		if filters.Status != "" {
			query += fmt.Sprintf(" AND status = $%d", argCount)
			args = append(args, filters.Status)
			argCount++
		}
	}

	query += " ORDER BY created_at DESC"

	var orders []*model.LabOrder
	err := r.db.SelectContext(ctx, &orders, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list lab orders: %w", err)
	}
	return orders, nil
}
