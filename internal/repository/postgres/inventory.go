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

type inventoryRepository struct {
	BaseRepository
}

func NewInventoryRepository(db *sqlx.DB) repository.InventoryRepository {
	return &inventoryRepository{NewBaseRepository(db)}
}

func (r *inventoryRepository) Create(ctx context.Context, item *model.SupplyItem) error {
	query := `
		INSERT INTO supply_items (
			id, name, category, unit, quantity, reorder_level,
			supplier_id, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	item.ID = uuid.New()
	item.CreatedAt = time.Now()
	item.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		item.ID,
		item.Name,
		item.Category,
		item.Unit,
		item.Quantity,
		item.ReorderLevel,
		item.SupplierID,
		item.Status,
		item.CreatedAt,
		item.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create supply item: %w", err)
	}
	return nil
}

func (r *inventoryRepository) Get(ctx context.Context, id uuid.UUID) (*model.SupplyItem, error) {
	query := `
		SELECT id, name, category, unit, quantity, reorder_level,
			   supplier_id, status, created_at, updated_at, deleted_at
		FROM supply_items
		WHERE id = $1 AND deleted_at IS NULL
	`
	var item model.SupplyItem
	err := r.db.GetContext(ctx, &item, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get supply item: %w", err)
	}
	return &item, nil
}

func (r *inventoryRepository) Update(ctx context.Context, item *model.SupplyItem) error {
	query := `
		UPDATE supply_items
		SET name = $1, category = $2, unit = $3, reorder_level = $4,
			supplier_id = $5, status = $6, updated_at = $7
		WHERE id = $8 AND deleted_at IS NULL
	`
	item.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		item.Name,
		item.Category,
		item.Unit,
		item.ReorderLevel,
		item.SupplierID,
		item.Status,
		item.UpdatedAt,
		item.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update supply item: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("supply item not found")
	}

	return nil
}

// AdjustStock applies a signed delta atomically and returns the updated
// row. The quantity check runs in the same statement so concurrent
// adjustments cannot drive stock negative.
func (r *inventoryRepository) AdjustStock(ctx context.Context, id uuid.UUID, delta int) (*model.SupplyItem, error) {
	query := `
		UPDATE supply_items
		SET quantity = quantity + $1, updated_at = $2
		WHERE id = $3 AND deleted_at IS NULL AND quantity + $1 >= 0
		RETURNING id, name, category, unit, quantity, reorder_level,
				  supplier_id, status, created_at, updated_at, deleted_at
	`
	var item model.SupplyItem
	err := r.db.GetContext(ctx, &item, query, delta, time.Now(), id)
	if err != nil {
		return nil, fmt.Errorf("failed to adjust stock: %w", err)
	}
	return &item, nil
}

func (r *inventoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE supply_items
		SET deleted_at = $1, updated_at = $1
		WHERE id = $2 AND deleted_at IS NULL
	`
	result, err := r.db.ExecContext(ctx, query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete supply item: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("supply item not found")
	}

	return nil
}

func (r *inventoryRepository) List(ctx context.Context, filters *model.SupplyItemFilters) ([]*model.SupplyItem, error) {
	query := `
		SELECT id, name, category, unit, quantity, reorder_level,
			   supplier_id, status, created_at, updated_at, deleted_at
		FROM supply_items
		WHERE deleted_at IS NULL
	`
	args := []interface{}{}
	argCount := 1

	if filters != nil {
		if filters.Category != "" {
			query += fmt.Sprintf(" AND category = $%d", argCount)
			args = append(args, filters.Category)
			argCount++
		}
		if filters.SupplierID != uuid.Nil {
			query += fmt.Sprintf(" AND supplier_id = $%d", argCount)
			args = append(args, filters.SupplierID)
			argCount++
		}
		if filters.LowStock {
			query += " AND quantity <= reorder_level"
		}
	}

	query += " ORDER BY name ASC"

	var items []*model.SupplyItem
	err := r.db.SelectContext(ctx, &items, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list supply items: %w", err)
	}
	return items, nil
}
