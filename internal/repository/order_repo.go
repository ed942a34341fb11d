package repository

import (
	"context"
	"time"

	"compras-backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrderFilter narrows List queries.
type OrderFilter struct {
	Status     *model.OrderStatus
	SupplierID *uuid.UUID
	Search     string // matches order number
}

// OrderUpdate enumerates the mutable order fields. Nil pointer = leave as is.
// Fields not listed here (status, token columns, resolution metadata) can only
// change through the dedicated methods below.
type OrderUpdate struct {
	SupplierID    *uuid.UUID
	ApproverID    *uuid.UUID
	PaymentTermID *uuid.UUID
	Notes         *string
	DeliveryDate  *time.Time
}

type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Order, error)
	FindByIDWithRelations(ctx context.Context, id uuid.UUID) (*model.Order, error)
	FindByToken(ctx context.Context, token string) (*model.Order, error)
	List(ctx context.Context, filter OrderFilter, page, limit int) ([]model.Order, int64, error)
	UpdateFields(ctx context.Context, id uuid.UUID, upd OrderUpdate) error
	ReplaceItems(ctx context.Context, orderID uuid.UUID, items []model.OrderItem) error
	UpdateTotals(ctx context.Context, id uuid.UUID, order *model.Order) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus) error
	Delete(ctx context.Context, id uuid.UUID) error

	// Token lifecycle. SetToken overwrites the token columns in one update so
	// only the newest token is ever valid. ConsumeToken is a conditional
	// single-statement check-and-set on the used flag: when two requests race,
	// exactly one gets true.
	SetToken(ctx context.Context, id uuid.UUID, token string, createdAt, expiresAt time.Time) error
	ConsumeToken(ctx context.Context, id uuid.UUID, token string) (bool, error)
	ClearToken(ctx context.Context, id uuid.UUID) error

	// RecordResolution writes the terminal status plus the approval/rejection
	// metadata in a single update.
	RecordResolution(ctx context.Context, id uuid.UUID, status model.OrderStatus, actor string, at time.Time, ip, reason, observations string) error
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(ctx context.Context, order *model.Order) error {
	return GetDB(ctx, r.db).Create(order).Error
}

func (r *orderRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	var order model.Order
	if err := GetDB(ctx, r.db).First(&order, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) FindByIDWithRelations(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	var order model.Order
	if err := GetDB(ctx, r.db).
		Preload("Items").
		Preload("Items.Category").
		Preload("Items.Unit").
		Preload("Supplier").
		Preload("Approver").
		Preload("PaymentTerm").
		First(&order, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) FindByToken(ctx context.Context, token string) (*model.Order, error) {
	var order model.Order
	if err := GetDB(ctx, r.db).
		Preload("Items").
		Preload("Supplier").
		Preload("Approver").
		First(&order, "approval_token = ?", token).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) List(ctx context.Context, filter OrderFilter, page, limit int) ([]model.Order, int64, error) {
	var orders []model.Order
	var total int64

	db := GetDB(ctx, r.db)
	query := db.Model(&model.Order{})
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.SupplierID != nil {
		query = query.Where("supplier_id = ?", *filter.SupplierID)
	}
	if filter.Search != "" {
		query = query.Where("order_number ILIKE ?", "%"+filter.Search+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := query.
		Preload("Items").
		Preload("Supplier").
		Preload("Approver").
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&orders).Error; err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

func (r *orderRepository) UpdateFields(ctx context.Context, id uuid.UUID, upd OrderUpdate) error {
	updates := map[string]interface{}{}
	if upd.SupplierID != nil {
		updates["supplier_id"] = *upd.SupplierID
	}
	if upd.ApproverID != nil {
		updates["approver_id"] = *upd.ApproverID
	}
	if upd.PaymentTermID != nil {
		updates["payment_term_id"] = *upd.PaymentTermID
	}
	if upd.Notes != nil {
		updates["notes"] = *upd.Notes
	}
	if upd.DeliveryDate != nil {
		updates["delivery_date"] = *upd.DeliveryDate
	}
	if len(updates) == 0 {
		return nil
	}
	return GetDB(ctx, r.db).Model(&model.Order{}).Where("id = ?", id).Updates(updates).Error
}

func (r *orderRepository) ReplaceItems(ctx context.Context, orderID uuid.UUID, items []model.OrderItem) error {
	db := GetDB(ctx, r.db)
	if err := db.Where("order_id = ?", orderID).Delete(&model.OrderItem{}).Error; err != nil {
		return err
	}
	for i := range items {
		items[i].OrderID = orderID
		if err := db.Create(&items[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *orderRepository) UpdateTotals(ctx context.Context, id uuid.UUID, order *model.Order) error {
	return GetDB(ctx, r.db).Model(&model.Order{}).Where("id = ?", id).Updates(map[string]interface{}{
		"subtotal":   order.Subtotal,
		"tax_rate":   order.TaxRate,
		"tax_amount": order.TaxAmount,
		"total":      order.Total,
	}).Error
}

func (r *orderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus) error {
	return GetDB(ctx, r.db).Model(&model.Order{}).Where("id = ?", id).Update("status", status).Error
}

func (r *orderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Delete(&model.Order{}, "id = ?", id).Error
}

func (r *orderRepository) SetToken(ctx context.Context, id uuid.UUID, token string, createdAt, expiresAt time.Time) error {
	return GetDB(ctx, r.db).Model(&model.Order{}).Where("id = ?", id).Updates(map[string]interface{}{
		"approval_token":   token,
		"token_created_at": createdAt,
		"token_expires_at": expiresAt,
		"token_used":       false,
	}).Error
}

func (r *orderRepository) ConsumeToken(ctx context.Context, id uuid.UUID, token string) (bool, error) {
	res := GetDB(ctx, r.db).Model(&model.Order{}).
		Where("id = ? AND approval_token = ? AND token_used = false", id, token).
		Update("token_used", true)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *orderRepository) ClearToken(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Model(&model.Order{}).Where("id = ?", id).Updates(map[string]interface{}{
		"approval_token": "",
		"token_used":     true,
	}).Error
}

func (r *orderRepository) RecordResolution(ctx context.Context, id uuid.UUID, status model.OrderStatus, actor string, at time.Time, ip, reason, observations string) error {
	return GetDB(ctx, r.db).Model(&model.Order{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":           status,
		"resolved_by":      actor,
		"resolved_at":      at,
		"resolved_ip":      ip,
		"rejection_reason": reason,
		"observations":     observations,
	}).Error
}
