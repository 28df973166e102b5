package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/kurdotex/order-intake/internal/models"
)

type GormRepo struct {
	DB *gorm.DB
}

// CreateOrder inserts the order together with its items. gorm runs the parent
// insert and the association inserts in one transaction, so a failed item
// insert leaves no order row behind.
func (r *GormRepo) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	if err := r.DB.WithContext(ctx).Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

func (r *GormRepo) ListOrders(ctx context.Context, userID uint) ([]models.Order, error) {
	var orders []models.Order
	err := r.DB.WithContext(ctx).
		Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *GormRepo) GetOrder(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	if err := r.DB.WithContext(ctx).Preload("Items").First(&order, id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *GormRepo) UserExists(ctx context.Context, id uint) (bool, error) {
	var n int64
	if err := r.DB.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// CreateWebhookEvent inserts a ledger row. A duplicate external event id is
// not an error: the row written by the first delivery is returned and the
// second result is true. Requires gorm.Config.TranslateError so the unique
// violation surfaces as gorm.ErrDuplicatedKey.
func (r *GormRepo) CreateWebhookEvent(ctx context.Context, ev *models.WebhookEvent) (*models.WebhookEvent, bool, error) {
	err := r.DB.WithContext(ctx).Create(ev).Error
	if err == nil {
		return ev, false, nil
	}
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, false, err
	}

	var existing models.WebhookEvent
	findErr := r.DB.WithContext(ctx).
		Where("external_event_id = ?", ev.ExternalEventID).
		First(&existing).Error
	if findErr != nil {
		return nil, false, findErr
	}
	return &existing, true, nil
}
