package service

import (
	"context"
	"sync"
	"time"

	"compras-backend/internal/model"
	"compras-backend/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// In-memory repository fakes backing the service tests. They honor the same
// contracts as the gorm implementations, including the conditional token
// consumption and gorm.ErrRecordNotFound on misses.

type fakeTxManager struct{}

func (fakeTxManager) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	return fn(ctx)
}

type fakeOrderRepo struct {
	mu     sync.Mutex
	orders map[uuid.UUID]*model.Order
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: map[uuid.UUID]*model.Order{}}
}

func (r *fakeOrderRepo) put(order *model.Order) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	cp := *order
	r.orders[order.ID] = &cp
}

func (r *fakeOrderRepo) get(id uuid.UUID) *model.Order {
	r.mu.Lock()
	defer r.mu.Unlock()
	if o, ok := r.orders[id]; ok {
		cp := *o
		return &cp
	}
	return nil
}

func (r *fakeOrderRepo) Create(_ context.Context, order *model.Order) error {
	r.put(order)
	return nil
}

func (r *fakeOrderRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Order, error) {
	if o := r.get(id); o != nil {
		return o, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeOrderRepo) FindByIDWithRelations(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	return r.FindByID(ctx, id)
}

func (r *fakeOrderRepo) FindByToken(_ context.Context, token string) (*model.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.orders {
		if o.ApprovalToken == token {
			cp := *o
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeOrderRepo) List(_ context.Context, filter repository.OrderFilter, _, _ int) ([]model.Order, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Order
	for _, o := range r.orders {
		if filter.Status != nil && o.Status != *filter.Status {
			continue
		}
		out = append(out, *o)
	}
	return out, int64(len(out)), nil
}

func (r *fakeOrderRepo) UpdateFields(_ context.Context, id uuid.UUID, upd repository.OrderUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if upd.SupplierID != nil {
		o.SupplierID = upd.SupplierID
	}
	if upd.ApproverID != nil {
		o.ApproverID = upd.ApproverID
	}
	if upd.PaymentTermID != nil {
		o.PaymentTermID = upd.PaymentTermID
	}
	if upd.Notes != nil {
		o.Notes = *upd.Notes
	}
	if upd.DeliveryDate != nil {
		o.DeliveryDate = upd.DeliveryDate
	}
	return nil
}

func (r *fakeOrderRepo) ReplaceItems(_ context.Context, orderID uuid.UUID, items []model.OrderItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[orderID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	o.Items = items
	return nil
}

func (r *fakeOrderRepo) UpdateTotals(_ context.Context, id uuid.UUID, order *model.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	o.Subtotal = order.Subtotal
	o.TaxRate = order.TaxRate
	o.TaxAmount = order.TaxAmount
	o.Total = order.Total
	return nil
}

func (r *fakeOrderRepo) UpdateStatus(_ context.Context, id uuid.UUID, status model.OrderStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	o.Status = status
	return nil
}

func (r *fakeOrderRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.orders, id)
	return nil
}

func (r *fakeOrderRepo) SetToken(_ context.Context, id uuid.UUID, token string, createdAt, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	o.ApprovalToken = token
	o.TokenCreatedAt = &createdAt
	o.TokenExpiresAt = &expiresAt
	o.TokenUsed = false
	return nil
}

func (r *fakeOrderRepo) ConsumeToken(_ context.Context, id uuid.UUID, token string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok || o.ApprovalToken != token || o.TokenUsed {
		return false, nil
	}
	o.TokenUsed = true
	return true, nil
}

func (r *fakeOrderRepo) ClearToken(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	o.ApprovalToken = ""
	o.TokenUsed = true
	return nil
}

func (r *fakeOrderRepo) RecordResolution(_ context.Context, id uuid.UUID, status model.OrderStatus, actor string, at time.Time, ip, reason, observations string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	o.Status = status
	o.ResolvedBy = actor
	o.ResolvedAt = &at
	o.ResolvedIP = ip
	o.RejectionReason = reason
	o.Observations = observations
	return nil
}

type fakeApproverRepo struct {
	mu        sync.Mutex
	approvers map[uuid.UUID]*model.Approver
}

func newFakeApproverRepo() *fakeApproverRepo {
	return &fakeApproverRepo{approvers: map[uuid.UUID]*model.Approver{}}
}

func (r *fakeApproverRepo) Create(_ context.Context, approver *model.Approver) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if approver.ID == uuid.Nil {
		approver.ID = uuid.New()
	}
	cp := *approver
	r.approvers[approver.ID] = &cp
	return nil
}

func (r *fakeApproverRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Approver, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.approvers[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeApproverRepo) List(_ context.Context, onlyEligible bool) ([]model.Approver, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Approver
	for _, a := range r.approvers {
		if onlyEligible && !a.IsApprover {
			continue
		}
		out = append(out, *a)
	}
	return out, nil
}

func (r *fakeApproverRepo) Update(_ context.Context, approver *model.Approver) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *approver
	r.approvers[approver.ID] = &cp
	return nil
}

func (r *fakeApproverRepo) SetPINHash(_ context.Context, id uuid.UUID, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.approvers[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	a.PINHash = hash
	return nil
}

type fakeAuditRepo struct {
	mu      sync.Mutex
	entries []model.AuditLog
}

func (r *fakeAuditRepo) Create(_ context.Context, entry *model.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *fakeAuditRepo) ListByEntity(_ context.Context, entityID string, _, _ int) ([]model.AuditLog, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.AuditLog
	for _, e := range r.entries {
		if e.EntityID == entityID {
			out = append(out, e)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeAuditRepo) actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.Action)
	}
	return out
}

type fakeSequenceRepo struct {
	mu       sync.Mutex
	counters map[string]int64
}

func newFakeSequenceRepo() *fakeSequenceRepo {
	return &fakeSequenceRepo{counters: map[string]int64{}}
}

func (r *fakeSequenceRepo) Next(_ context.Context, seqType, period string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := seqType + "|" + period
	r.counters[key]++
	return r.counters[key], nil
}

func (r *fakeSequenceRepo) Current(_ context.Context, seqType, period string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counters[seqType+"|"+period], nil
}
