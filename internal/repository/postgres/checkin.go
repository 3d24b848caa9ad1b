package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/medisuite/hms-api/internal/model"
	"github.com/medisuite/hms-api/internal/repository"
)

// maxQueueNumberRetries bounds the retry loop when two check-ins race
// for the same queue number and one insert hits the unique index.
const maxQueueNumberRetries = 3

type checkInRepository struct {
	BaseRepository
}

func NewCheckInRepository(db *sqlx.DB) repository.CheckInRepository {
	return &checkInRepository{NewBaseRepository(db)}
}

// CreateWithQueueNumber computes MAX(queue_number)+1 for the check-in's
// queue date and inserts inside one transaction. The unique index on
// (queue_date, queue_number) makes concurrent duplicates impossible:
// the loser of a race fails the insert and retries with a fresh number.
func (r *checkInRepository) CreateWithQueueNumber(ctx context.Context, checkIn *model.CheckIn) error {
	checkIn.ID = uuid.New()
	checkIn.CreatedAt = time.Now()
	checkIn.UpdatedAt = checkIn.CreatedAt

	var lastErr error
	for attempt := 0; attempt < maxQueueNumberRetries; attempt++ {
		err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
			var maxNumber sql.NullInt64
			query := `
				SELECT MAX(queue_number)
				FROM checkins
				WHERE queue_date = $1
			`
			if err := tx.GetContext(ctx, &maxNumber, query, checkIn.QueueDate); err != nil {
				return fmt.Errorf("failed to read max queue number: %w", err)
			}

			checkIn.QueueNumber = 1
			if maxNumber.Valid {
				checkIn.QueueNumber = int(maxNumber.Int64) + 1
			}

			insert := `
				INSERT INTO checkins (
					id, appointment_id, patient_id, queue_number, queue_date,
					status, reason, vitals, notes, arrived_at,
					created_at, updated_at
				) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
			`
			_, err := tx.ExecContext(ctx, insert,
				checkIn.ID,
				checkIn.AppointmentID,
				checkIn.PatientID,
				checkIn.QueueNumber,
				checkIn.QueueDate,
				checkIn.Status,
				checkIn.Reason,
				checkIn.Vitals,
				checkIn.Notes,
				checkIn.ArrivedAt,
				checkIn.CreatedAt,
				checkIn.UpdatedAt,
			)
			return err
		})
		if err == nil {
			return nil
		}
		if !isUniqueViolation(err, "checkins_queue_date_queue_number_key") {
			return fmt.Errorf("failed to create check-in: %w", err)
		}
		lastErr = err
	}
	return fmt.Errorf("failed to assign queue number after %d attempts: %w", maxQueueNumberRetries, lastErr)
}

func (r *checkInRepository) Get(ctx context.Context, id uuid.UUID) (*model.CheckIn, error) {
	query := `
		SELECT id, appointment_id, patient_id, queue_number, queue_date,
			   status, reason, vitals, notes, arrived_at, completed_at,
			   created_at, updated_at, deleted_at
		FROM checkins
		WHERE id = $1
	`
	var checkIn model.CheckIn
	err := r.db.GetContext(ctx, &checkIn, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get check-in: %w", err)
	}
	return &checkIn, nil
}

func (r *checkInRepository) Update(ctx context.Context, checkIn *model.CheckIn) error {
	query := `
		UPDATE checkins
		SET status = $1, notes = $2, completed_at = $3, updated_at = $4
		WHERE id = $5
	`
	checkIn.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		checkIn.Status,
		checkIn.Notes,
		checkIn.CompletedAt,
		checkIn.UpdatedAt,
		checkIn.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update check-in: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("check-in not found")
	}

	return nil
}

func (r *checkInRepository) List(ctx context.Context, filters *model.CheckInFilters) ([]*model.CheckIn, error) {
	query := `
		SELECT id, appointment_id, patient_id, queue_number, queue_date,
			   status, reason, vitals, notes, arrived_at, completed_at,
			   created_at, updated_at, deleted_at
		FROM checkins
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
		if filters.Status != "" {
			query += fmt.Sprintf(" AND status = $%d", argCount)
			args = append(args, filters.Status)
			argCount++
		}
		if !filters.QueueDate.IsZero() {
			query += fmt.Sprintf(" AND queue_date = $%d", argCount)
			args = append(args, filters.QueueDate)
			argCount++
		}
	}

	query += " ORDER BY queue_date DESC, queue_number ASC"

	var checkIns []*model.CheckIn
	err := r.db.SelectContext(ctx, &checkIns, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list check-ins: %w", err)
	}
	return checkIns, nil
}

func (r *checkInRepository) CountWaiting(ctx context.Context, day time.Time) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM checkins
		WHERE queue_date = $1 AND status = $2
	`
	var count int
	err := r.db.GetContext(ctx, &count, query, day, model.CheckInStatusWaiting)
	if err != nil {
		return 0, fmt.Errorf("failed to count waiting check-ins: %w", err)
	}
	return count, nil
}
