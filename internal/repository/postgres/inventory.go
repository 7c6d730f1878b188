package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/vet-admin-api/internal/model"
	"github.com/jwalitptl/vet-admin-api/internal/repository"
)

type inventoryRepository struct {
	BaseRepository
	doc *document[model.InventoryItem]
}

func NewInventoryRepository(base BaseRepository) repository.InventoryRepository {
	return &inventoryRepository{
		BaseRepository: base,
		doc: newDocument(base, "inventory_items",
			func(i *model.InventoryItem) *model.Base { return &i.Base },
			[]string{"sku", "category"},
			func(i *model.InventoryItem) []interface{} {
				return []interface{}{strings.ToLower(i.SKU), string(i.Category)}
			},
		),
	}
}

func (r *inventoryRepository) Create(ctx context.Context, item *model.InventoryItem) error {
	return r.doc.insert(ctx, item)
}

func (r *inventoryRepository) Get(ctx context.Context, id uuid.UUID) (*model.InventoryItem, error) {
	return r.doc.get(ctx, id)
}

func (r *inventoryRepository) GetBySKU(ctx context.Context, sku string) (*model.InventoryItem, error) {
	return r.doc.first(ctx, "sku = $1", strings.ToLower(sku))
}

func (r *inventoryRepository) Update(ctx context.Context, item *model.InventoryItem) error {
	return r.doc.update(ctx, item)
}

func (r *inventoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.doc.remove(ctx, id)
}

func (r *inventoryRepository) List(ctx context.Context) ([]*model.InventoryItem, error) {
	return r.doc.list(ctx, "")
}

func (r *inventoryRepository) AddMovement(ctx context.Context, m *model.StockMovement) error {
	query := `
		INSERT INTO stock_movements (id, item_id, delta, reason, at)
		VALUES (:id, :item_id, :delta, :reason, :at)
	`
	if _, err := r.GetDB().NamedExecContext(ctx, query, m); err != nil {
		return fmt.Errorf("failed to record stock movement: %w", mapError(err))
	}
	return nil
}

func (r *inventoryRepository) ListMovements(ctx context.Context, since time.Time) ([]*model.StockMovement, error) {
	query := `
		SELECT id, item_id, delta, reason, at
		FROM stock_movements
		WHERE at >= $1
		ORDER BY at, id
	`
	var movements []*model.StockMovement
	if err := r.GetDB().SelectContext(ctx, &movements, query, since); err != nil {
		return nil, fmt.Errorf("failed to list stock movements: %w", err)
	}
	return movements, nil
}
