package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"compras-backend/internal/model"
	"compras-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// --- DTOs ---

type OrderItemPayload struct {
	Description string          `json:"description" binding:"required"`
	CategoryID  string          `json:"category_id"`
	UnitID      string          `json:"unit_id"`
	Quantity    decimal.Decimal `json:"quantity" binding:"required"`
	UnitPrice   decimal.Decimal `json:"unit_price" binding:"required"`
}

type CreateOrderRequest struct {
	SupplierID    string             `json:"supplier_id" binding:"required"`
	ApproverID    string             `json:"approver_id"`
	PaymentTermID string             `json:"payment_term_id"`
	TaxRate       decimal.Decimal    `json:"tax_rate"`
	Notes         string             `json:"notes"`
	DeliveryDate  *time.Time         `json:"delivery_date"`
	Items         []OrderItemPayload `json:"items" binding:"required,min=1"`
}

// UpdateOrderRequest enumerates the mutable fields explicitly; nil = not sent.
// Items, when sent, replace the full line-item set and totals are recomputed.
type UpdateOrderRequest struct {
	SupplierID    *string             `json:"supplier_id"`
	ApproverID    *string             `json:"approver_id"`
	PaymentTermID *string             `json:"payment_term_id"`
	TaxRate       *decimal.Decimal    `json:"tax_rate"`
	Notes         *string             `json:"notes"`
	DeliveryDate  *time.Time          `json:"delivery_date"`
	Items         *[]OrderItemPayload `json:"items"`
}

var (
	ErrOrderNotEditable   = errors.New("solo las órdenes en estado Creada pueden modificarse")
	ErrOrderNotApproved   = errors.New("solo las órdenes aprobadas pueden completarse")
	ErrOrderNotDeletable  = errors.New("solo las órdenes en estado Creada pueden eliminarse")
	ErrOrderInReviewEdit  = errors.New("la orden está en revisión; invalide el enlace de aprobación antes de modificarla")
)

// --- Interface ---

type OrderService interface {
	CreateOrder(ctx context.Context, req CreateOrderRequest, userID *uuid.UUID) (*model.Order, error)
	GetOrder(ctx context.Context, id string) (*model.Order, error)
	ListOrders(ctx context.Context, filter repository.OrderFilter, page, limit int) ([]model.Order, int64, error)
	UpdateOrder(ctx context.Context, id string, req UpdateOrderRequest, userID *uuid.UUID) (*model.Order, error)
	DeleteOrder(ctx context.Context, id string, userID *uuid.UUID) error
	CompleteOrder(ctx context.Context, id string, userID *uuid.UUID) (*model.Order, error)
	WithdrawFromReview(ctx context.Context, id string, userID *uuid.UUID) (*model.Order, error)
}

type orderService struct {
	orders    repository.OrderRepository
	audits    repository.AuditRepository
	sequences SequenceService
	tokens    TokenService
	txManager repository.TransactionManager
}

func NewOrderService(
	orders repository.OrderRepository,
	audits repository.AuditRepository,
	sequences SequenceService,
	tokens TokenService,
	txManager repository.TransactionManager,
) OrderService {
	return &orderService{
		orders:    orders,
		audits:    audits,
		sequences: sequences,
		tokens:    tokens,
		txManager: txManager,
	}
}

// --- Implementation ---

// computeTotals derives line totals and the order totals from the items and
// tax rate. All arithmetic is decimal; nothing goes through float64.
func computeTotals(order *model.Order) {
	subtotal := decimal.Zero
	for i := range order.Items {
		order.Items[i].Total = order.Items[i].Quantity.Mul(order.Items[i].UnitPrice)
		subtotal = subtotal.Add(order.Items[i].Total)
	}
	order.Subtotal = subtotal
	order.TaxAmount = subtotal.Mul(order.TaxRate)
	order.Total = subtotal.Add(order.TaxAmount)
}

func buildItems(payloads []OrderItemPayload) ([]model.OrderItem, error) {
	items := make([]model.OrderItem, 0, len(payloads))
	for _, p := range payloads {
		if p.Quantity.LessThanOrEqual(decimal.Zero) {
			return nil, fmt.Errorf("la cantidad de %q debe ser mayor a cero", p.Description)
		}
		if p.UnitPrice.IsNegative() {
			return nil, fmt.Errorf("el precio unitario de %q no puede ser negativo", p.Description)
		}
		item := model.OrderItem{
			Description: p.Description,
			Quantity:    p.Quantity,
			UnitPrice:   p.UnitPrice,
		}
		if p.CategoryID != "" {
			id, err := uuid.Parse(p.CategoryID)
			if err != nil {
				return nil, fmt.Errorf("category_id inválido: %w", err)
			}
			item.CategoryID = &id
		}
		if p.UnitID != "" {
			id, err := uuid.Parse(p.UnitID)
			if err != nil {
				return nil, fmt.Errorf("unit_id inválido: %w", err)
			}
			item.UnitID = &id
		}
		items = append(items, item)
	}
	return items, nil
}

func parseOptionalUUID(s string) (*uuid.UUID, error) {
	if s == "" {
		return nil, nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func (s *orderService) CreateOrder(ctx context.Context, req CreateOrderRequest, userID *uuid.UUID) (*model.Order, error) {
	supplierID, err := uuid.Parse(req.SupplierID)
	if err != nil {
		return nil, fmt.Errorf("supplier_id inválido: %w", err)
	}
	approverID, err := parseOptionalUUID(req.ApproverID)
	if err != nil {
		return nil, fmt.Errorf("approver_id inválido: %w", err)
	}
	paymentTermID, err := parseOptionalUUID(req.PaymentTermID)
	if err != nil {
		return nil, fmt.Errorf("payment_term_id inválido: %w", err)
	}
	items, err := buildItems(req.Items)
	if err != nil {
		return nil, err
	}

	order := &model.Order{
		Status:        model.StatusCreated,
		SupplierID:    &supplierID,
		ApproverID:    approverID,
		PaymentTermID: paymentTermID,
		TaxRate:       req.TaxRate,
		Notes:         req.Notes,
		DeliveryDate:  req.DeliveryDate,
		Items:         items,
	}
	computeTotals(order)

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		number, seqErr := s.sequences.NextNumber(txCtx, model.SeqTypePurchaseOrder, time.Now())
		if seqErr != nil {
			return seqErr
		}
		order.OrderNumber = number

		if createErr := s.orders.Create(txCtx, order); createErr != nil {
			return createErr
		}

		details, _ := json.Marshal(map[string]interface{}{
			"numero_orden": order.OrderNumber,
			"total":        order.Total.StringFixed(2),
		})
		audit := model.AuditLog{
			UserID:   userID,
			Action:   model.ActionCreateOrder,
			EntityID: order.ID.String(),
			Details:  string(details),
		}
		return s.audits.Create(txCtx, &audit)
	})
	if err != nil {
		return nil, err
	}

	return s.orders.FindByIDWithRelations(ctx, order.ID)
}

func (s *orderService) GetOrder(ctx context.Context, id string) (*model.Order, error) {
	orderID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("identificador de orden inválido: %w", err)
	}
	return s.orders.FindByIDWithRelations(ctx, orderID)
}

func (s *orderService) ListOrders(ctx context.Context, filter repository.OrderFilter, page, limit int) ([]model.Order, int64, error) {
	return s.orders.List(ctx, filter, page, limit)
}

func (s *orderService) UpdateOrder(ctx context.Context, id string, req UpdateOrderRequest, userID *uuid.UUID) (*model.Order, error) {
	orderID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("identificador de orden inválido: %w", err)
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		order, findErr := s.orders.FindByID(txCtx, orderID)
		if findErr != nil {
			return findErr
		}
		if order.Status == model.StatusInReview {
			return ErrOrderInReviewEdit
		}
		if order.Status != model.StatusCreated {
			return ErrOrderNotEditable
		}

		upd := repository.OrderUpdate{
			Notes:        req.Notes,
			DeliveryDate: req.DeliveryDate,
		}
		if req.SupplierID != nil {
			sid, parseErr := uuid.Parse(*req.SupplierID)
			if parseErr != nil {
				return fmt.Errorf("supplier_id inválido: %w", parseErr)
			}
			upd.SupplierID = &sid
		}
		if req.ApproverID != nil {
			aid, parseErr := uuid.Parse(*req.ApproverID)
			if parseErr != nil {
				return fmt.Errorf("approver_id inválido: %w", parseErr)
			}
			upd.ApproverID = &aid
		}
		if req.PaymentTermID != nil {
			pid, parseErr := uuid.Parse(*req.PaymentTermID)
			if parseErr != nil {
				return fmt.Errorf("payment_term_id inválido: %w", parseErr)
			}
			upd.PaymentTermID = &pid
		}
		if updErr := s.orders.UpdateFields(txCtx, orderID, upd); updErr != nil {
			return updErr
		}

		if req.Items != nil || req.TaxRate != nil {
			recalc := *order
			if req.TaxRate != nil {
				recalc.TaxRate = *req.TaxRate
			}
			if req.Items != nil {
				items, buildErr := buildItems(*req.Items)
				if buildErr != nil {
					return buildErr
				}
				if repErr := s.orders.ReplaceItems(txCtx, orderID, items); repErr != nil {
					return repErr
				}
				recalc.Items = items
			}
			computeTotals(&recalc)
			if totErr := s.orders.UpdateTotals(txCtx, orderID, &recalc); totErr != nil {
				return totErr
			}
		}

		audit := model.AuditLog{
			UserID:   userID,
			Action:   model.ActionUpdateOrder,
			EntityID: orderID.String(),
		}
		return s.audits.Create(txCtx, &audit)
	})
	if err != nil {
		return nil, err
	}

	return s.orders.FindByIDWithRelations(ctx, orderID)
}

func (s *orderService) DeleteOrder(ctx context.Context, id string, userID *uuid.UUID) error {
	orderID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("identificador de orden inválido: %w", err)
	}

	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		order, findErr := s.orders.FindByID(txCtx, orderID)
		if findErr != nil {
			return findErr
		}
		if order.Status != model.StatusCreated {
			return ErrOrderNotDeletable
		}
		if delErr := s.orders.Delete(txCtx, orderID); delErr != nil {
			return delErr
		}
		audit := model.AuditLog{
			UserID:   userID,
			Action:   model.ActionDeleteOrder,
			EntityID: orderID.String(),
		}
		return s.audits.Create(txCtx, &audit)
	})
}

// CompleteOrder marks an approved order as fulfilled. This is the separate
// fulfilment step after the token flow has run its course.
func (s *orderService) CompleteOrder(ctx context.Context, id string, userID *uuid.UUID) (*model.Order, error) {
	orderID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("identificador de orden inválido: %w", err)
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		order, findErr := s.orders.FindByID(txCtx, orderID)
		if findErr != nil {
			return findErr
		}
		if order.Status != model.StatusApproved {
			return ErrOrderNotApproved
		}
		if stErr := s.orders.UpdateStatus(txCtx, orderID, model.StatusCompleted); stErr != nil {
			return stErr
		}
		audit := model.AuditLog{
			UserID:   userID,
			Action:   model.ActionCompleteOrder,
			EntityID: orderID.String(),
		}
		return s.audits.Create(txCtx, &audit)
	})
	if err != nil {
		return nil, err
	}

	return s.orders.FindByIDWithRelations(ctx, orderID)
}

// WithdrawFromReview pulls an order out of the approval flow: the live token
// is invalidated and the order returns to Created so it can be edited and
// re-sent later.
func (s *orderService) WithdrawFromReview(ctx context.Context, id string, userID *uuid.UUID) (*model.Order, error) {
	orderID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("identificador de orden inválido: %w", err)
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		order, findErr := s.orders.FindByID(txCtx, orderID)
		if findErr != nil {
			return findErr
		}
		if order.Status != model.StatusInReview {
			return errors.New("la orden no está en revisión")
		}
		if invErr := s.tokens.Invalidate(txCtx, orderID); invErr != nil {
			return invErr
		}
		if stErr := s.orders.UpdateStatus(txCtx, orderID, model.StatusCreated); stErr != nil {
			return stErr
		}
		audit := model.AuditLog{
			UserID:   userID,
			Action:   model.ActionInvalidateToken,
			EntityID: orderID.String(),
		}
		return s.audits.Create(txCtx, &audit)
	})
	if err != nil {
		return nil, err
	}

	return s.orders.FindByIDWithRelations(ctx, orderID)
}
