package inventory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jwalitptl/vet-admin-api/internal/model"
	"github.com/jwalitptl/vet-admin-api/internal/repository"
	apperrors "github.com/jwalitptl/vet-admin-api/pkg/errors"
	"github.com/jwalitptl/vet-admin-api/pkg/logger"
)

const (
	DefaultExpiryWindow = 30 * 24 * time.Hour
	UsageMonths         = 6
	TopUsedLimit        = 5
	MonthLabelLayout    = "Jan 2006"
)

// Notifier raises in-app notifications.
type Notifier interface {
	Notify(ctx context.Context, n *model.Notification) error
}

type Service struct {
	repo         repository.InventoryRepository
	notifier     Notifier
	logger       *logger.Logger
	expiryWindow time.Duration
	now          func() time.Time
}

func NewService(repo repository.InventoryRepository, notifier Notifier, log *logger.Logger, expiryWindowDays int) *Service {
	window := DefaultExpiryWindow
	if expiryWindowDays > 0 {
		window = time.Duration(expiryWindowDays) * 24 * time.Hour
	}
	return &Service{
		repo:         repo,
		notifier:     notifier,
		logger:       log,
		expiryWindow: window,
		now:          time.Now,
	}
}

// View decorates an item with its stock and expiry state.
func (s *Service) View(item *model.InventoryItem) *model.InventoryItemView {
	now := s.now()
	return &model.InventoryItemView{
		InventoryItem: item,
		LowStock:      item.LowStock(),
		Expiring:      item.ExpiringWithin(now, s.expiryWindow),
		ExpiryLabel:   item.ExpiryLabel(now),
	}
}

func (s *Service) Create(ctx context.Context, req *model.CreateInventoryItemRequest) (*model.InventoryItem, error) {
	item := &model.InventoryItem{
		Name:     strings.TrimSpace(req.Name),
		SKU:      strings.TrimSpace(req.SKU),
		Category: req.Category,
		Quantity: req.Quantity,
		Unit:     req.Unit,
		MinStock: req.MinStock,
		Price:    req.Price,
		Supplier: req.Supplier,
		Location: req.Location,
		Notes:    req.Notes,
	}
	if item.Name == "" || item.SKU == "" {
		return nil, apperrors.BadRequest("name and sku are required", nil)
	}
	if item.Quantity < 0 || item.MinStock < 0 {
		return nil, apperrors.BadRequest("quantity and min stock cannot be negative", nil)
	}
	if item.Price.IsNegative() {
		return nil, apperrors.BadRequest("price cannot be negative", nil)
	}
	if req.ExpiryDate != "" {
		d, err := model.ParseDate(req.ExpiryDate, time.UTC)
		if err != nil {
			return nil, apperrors.BadRequest("invalid expiry date", err)
		}
		item.ExpiryDate = &d
	}

	item.Touch(s.now())
	if err := s.repo.Create(ctx, item); err != nil {
		if errors.Is(err, model.ErrDuplicate) {
			return nil, apperrors.Conflict(fmt.Sprintf("sku %s already exists", item.SKU), err)
		}
		return nil, fmt.Errorf("failed to create inventory item: %w", err)
	}
	return item, nil
}

// GetBySKU looks an item up by its stock-keeping unit, ignoring case.
func (s *Service) GetBySKU(ctx context.Context, sku string) (*model.InventoryItem, error) {
	sku = strings.TrimSpace(sku)
	if sku == "" {
		return nil, apperrors.BadRequest("sku is required", nil)
	}
	item, err := s.repo.GetBySKU(ctx, sku)
	if errors.Is(err, model.ErrNotFound) {
		return nil, apperrors.NotFound("inventory item", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get inventory item by sku: %w", err)
	}
	return item, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.InventoryItem, error) {
	item, err := s.repo.Get(ctx, id)
	if errors.Is(err, model.ErrNotFound) {
		return nil, apperrors.NotFound("inventory item", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get inventory item: %w", err)
	}
	return item, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req *model.UpdateInventoryItemRequest) (*model.InventoryItem, error) {
	item, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		item.Name = strings.TrimSpace(*req.Name)
	}
	if req.SKU != nil {
		item.SKU = strings.TrimSpace(*req.SKU)
	}
	if req.Category != nil {
		item.Category = *req.Category
	}
	if req.Unit != nil {
		item.Unit = *req.Unit
	}
	if req.MinStock != nil {
		item.MinStock = *req.MinStock
	}
	if req.Price != nil {
		item.Price = *req.Price
	}
	if req.Supplier != nil {
		item.Supplier = *req.Supplier
	}
	if req.Location != nil {
		item.Location = *req.Location
	}
	if req.Notes != nil {
		item.Notes = *req.Notes
	}
	if req.ExpiryDate != nil {
		if *req.ExpiryDate == "" {
			item.ExpiryDate = nil
		} else {
			d, err := model.ParseDate(*req.ExpiryDate, time.UTC)
			if err != nil {
				return nil, apperrors.BadRequest("invalid expiry date", err)
			}
			item.ExpiryDate = &d
		}
	}
	if item.Name == "" || item.SKU == "" {
		return nil, apperrors.BadRequest("name and sku are required", nil)
	}
	if item.MinStock < 0 || item.Price.IsNegative() {
		return nil, apperrors.BadRequest("min stock and price cannot be negative", nil)
	}

	return s.save(ctx, item)
}

func (s *Service) save(ctx context.Context, item *model.InventoryItem) (*model.InventoryItem, error) {
	item.Touch(s.now())
	if err := s.repo.Update(ctx, item); err != nil {
		if errors.Is(err, model.ErrDuplicate) {
			return nil, apperrors.Conflict(fmt.Sprintf("sku %s already exists", item.SKU), err)
		}
		return nil, fmt.Errorf("failed to update inventory item: %w", err)
	}
	return item, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.repo.Delete(ctx, id)
	if errors.Is(err, model.ErrNotFound) {
		return apperrors.NotFound("inventory item", err)
	}
	if err != nil {
		return fmt.Errorf("failed to delete inventory item: %w", err)
	}
	return nil
}

// List returns items sorted by name. Search matches name or SKU; category
// "all" or empty matches every category.
func (s *Service) List(ctx context.Context, filters *model.InventoryFilters) ([]*model.InventoryItemView, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list inventory: %w", err)
	}

	q := strings.ToLower(strings.TrimSpace(filters.Search))
	out := make([]*model.InventoryItemView, 0, len(items))
	for _, item := range items {
		if q != "" && !strings.Contains(strings.ToLower(item.Name), q) &&
			!strings.Contains(strings.ToLower(item.SKU), q) {
			continue
		}
		if filters.Category != "" && filters.Category != "all" && string(item.Category) != filters.Category {
			continue
		}
		view := s.View(item)
		if filters.LowStock && !view.LowStock {
			continue
		}
		if filters.Expiring && !view.Expiring {
			continue
		}
		out = append(out, view)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out, nil
}

// Alerts returns the low-stock and expiring items.
func (s *Service) Alerts(ctx context.Context) (lowStock, expiring []*model.InventoryItemView, err error) {
	views, err := s.List(ctx, &model.InventoryFilters{})
	if err != nil {
		return nil, nil, err
	}
	for _, v := range views {
		if v.LowStock {
			lowStock = append(lowStock, v)
		}
		if v.Expiring {
			expiring = append(expiring, v)
		}
	}
	return lowStock, expiring, nil
}

// AdjustStock applies delta to the item's quantity and records the movement.
// A negative delta is usage. Crossing into low stock raises a high-priority
// notification.
func (s *Service) AdjustStock(ctx context.Context, id uuid.UUID, req *model.AdjustStockRequest) (*model.InventoryItem, error) {
	if req.Delta == 0 {
		return nil, apperrors.BadRequest("delta must not be zero", nil)
	}
	item, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	next := item.Quantity + req.Delta
	if next < 0 {
		return nil, apperrors.BadRequest(
			fmt.Sprintf("insufficient stock: %d %s of %s available", item.Quantity, item.Unit, item.Name), nil)
	}

	// A quantity change is never stored without its movement.
	movement := &model.StockMovement{
		ID:     uuid.New(),
		ItemID: item.ID,
		Delta:  req.Delta,
		Reason: req.Reason,
		At:     s.now(),
	}
	if err := s.repo.AddMovement(ctx, movement); err != nil {
		return nil, fmt.Errorf("failed to record stock movement: %w", err)
	}

	wasLow := item.LowStock()
	item.Quantity = next
	if _, err := s.save(ctx, item); err != nil {
		return nil, err
	}

	if !wasLow && item.LowStock() && s.notifier != nil {
		if err := s.notifier.Notify(ctx, LowStockNotification(item)); err != nil {
			s.logger.Error(err, "failed to raise low stock notification", "item_id", item.ID)
		}
	}
	return item, nil
}

// LowStockNotification is the alert raised for an item at or below its
// minimum stock.
func LowStockNotification(item *model.InventoryItem) *model.Notification {
	return &model.Notification{
		Title:    "Low stock: " + item.Name,
		Message:  fmt.Sprintf("%s (%s) is down to %d %s, minimum is %d.", item.Name, item.SKU, item.Quantity, item.Unit, item.MinStock),
		Priority: model.NotificationPriorityHigh,
		Link:     "/inventory/" + item.ID.String(),
	}
}

// ExpiringNotification is the alert raised for an item close to or past its
// expiry date.
func ExpiringNotification(item *model.InventoryItem) *model.Notification {
	return &model.Notification{
		Title:    "Expiring stock: " + item.Name,
		Message:  fmt.Sprintf("%s (%s) expires on %s.", item.Name, item.SKU, item.ExpiryDate.Format(model.DateLayout)),
		Priority: model.NotificationPriorityMedium,
		Link:     "/inventory/" + item.ID.String(),
	}
}

// Analytics summarises stock value and usage over the last six months.
func (s *Service) Analytics(ctx context.Context) (*model.InventoryAnalytics, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list inventory: %w", err)
	}

	now := s.now()
	firstMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -(UsageMonths - 1), 0)
	movements, err := s.repo.ListMovements(ctx, firstMonth)
	if err != nil {
		return nil, fmt.Errorf("failed to list stock movements: %w", err)
	}

	out := &model.InventoryAnalytics{
		TotalItems:   len(items),
		TotalValue:   decimal.Zero,
		MonthlyUsage: make([]model.MonthlyUsage, UsageMonths),
		TopUsed:      []model.ItemUsage{},
	}
	names := make(map[uuid.UUID]string, len(items))
	for _, item := range items {
		names[item.ID] = item.Name
		out.TotalValue = out.TotalValue.Add(item.Value())
		if item.LowStock() {
			out.LowStockCount++
		}
		if item.ExpiringWithin(now, s.expiryWindow) {
			out.ExpiringCount++
		}
	}

	for i := range out.MonthlyUsage {
		out.MonthlyUsage[i].Label = firstMonth.AddDate(0, i, 0).Format(MonthLabelLayout)
	}
	used := map[uuid.UUID]int{}
	for _, m := range movements {
		if m.Delta >= 0 {
			continue
		}
		at := m.At.In(now.Location())
		idx := (at.Year()-firstMonth.Year())*12 + int(at.Month()) - int(firstMonth.Month())
		if idx < 0 || idx >= UsageMonths {
			continue
		}
		out.MonthlyUsage[idx].Used += -m.Delta
		used[m.ItemID] += -m.Delta
	}

	for id, n := range used {
		name, ok := names[id]
		if !ok {
			continue
		}
		out.TopUsed = append(out.TopUsed, model.ItemUsage{ItemID: id, Name: name, Used: n})
	}
	sort.Slice(out.TopUsed, func(i, j int) bool {
		if out.TopUsed[i].Used != out.TopUsed[j].Used {
			return out.TopUsed[i].Used > out.TopUsed[j].Used
		}
		return out.TopUsed[i].Name < out.TopUsed[j].Name
	})
	if len(out.TopUsed) > TopUsedLimit {
		out.TopUsed = out.TopUsed[:TopUsedLimit]
	}
	return out, nil
}
