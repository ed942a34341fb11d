package service

import (
	"context"
	"testing"

	"compras-backend/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type orderFixture struct {
	orders *fakeOrderRepo
	audits *fakeAuditRepo
	svc    OrderService
}

func newOrderFixture() *orderFixture {
	orders := newFakeOrderRepo()
	audits := &fakeAuditRepo{}
	tokens := NewTokenService(orders)
	sequences := NewSequenceService(newFakeSequenceRepo())
	svc := NewOrderService(orders, audits, sequences, tokens, fakeTxManager{})
	return &orderFixture{orders: orders, audits: audits, svc: svc}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestComputeTotals(t *testing.T) {
	t.Run("line totals, subtotal, tax and grand total", func(t *testing.T) {
		order := &model.Order{
			TaxRate: dec("0.18"),
			Items: []model.OrderItem{
				{Quantity: dec("3"), UnitPrice: dec("100.50")},
				{Quantity: dec("2.5"), UnitPrice: dec("40")},
			},
		}
		computeTotals(order)

		require.True(t, order.Items[0].Total.Equal(dec("301.50")), "got %s", order.Items[0].Total)
		require.True(t, order.Items[1].Total.Equal(dec("100")), "got %s", order.Items[1].Total)
		require.True(t, order.Subtotal.Equal(dec("401.50")), "got %s", order.Subtotal)
		require.True(t, order.TaxAmount.Equal(dec("72.27")), "got %s", order.TaxAmount)
		require.True(t, order.Total.Equal(dec("473.77")), "got %s", order.Total)
	})

	t.Run("no float drift on cent quantities", func(t *testing.T) {
		order := &model.Order{
			TaxRate: decimal.Zero,
			Items: []model.OrderItem{
				{Quantity: dec("3"), UnitPrice: dec("0.1")},
			},
		}
		computeTotals(order)
		require.True(t, order.Total.Equal(dec("0.3")), "got %s", order.Total)
	})
}

func TestCreateOrder(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture()
	supplierID := uuid.New()
	userID := uuid.New()

	req := CreateOrderRequest{
		SupplierID: supplierID.String(),
		TaxRate:    dec("0.18"),
		Items: []OrderItemPayload{
			{Description: "Cemento", Quantity: dec("10"), UnitPrice: dec("25")},
		},
	}

	order, err := f.svc.CreateOrder(ctx, req, &userID)
	require.NoError(t, err)
	require.Equal(t, model.StatusCreated, order.Status)
	require.Regexp(t, `^OC-\d{4}-\d{2}-\d{3}$`, order.OrderNumber)
	require.True(t, order.Total.Equal(dec("295")), "got %s", order.Total)
	require.Contains(t, f.audits.actions(), model.ActionCreateOrder)

	t.Run("numbers advance per order", func(t *testing.T) {
		second, err := f.svc.CreateOrder(ctx, req, &userID)
		require.NoError(t, err)
		require.NotEqual(t, order.OrderNumber, second.OrderNumber)
	})

	t.Run("rejects non-positive quantities", func(t *testing.T) {
		bad := req
		bad.Items = []OrderItemPayload{{Description: "Nada", Quantity: decimal.Zero, UnitPrice: dec("1")}}
		_, err := f.svc.CreateOrder(ctx, bad, &userID)
		require.Error(t, err)
	})

	t.Run("rejects negative prices", func(t *testing.T) {
		bad := req
		bad.Items = []OrderItemPayload{{Description: "Nada", Quantity: dec("1"), UnitPrice: dec("-5")}}
		_, err := f.svc.CreateOrder(ctx, bad, &userID)
		require.Error(t, err)
	})
}

func TestUpdateOrderStateGuards(t *testing.T) {
	ctx := context.Background()

	t.Run("only created orders are editable", func(t *testing.T) {
		f := newOrderFixture()
		order := &model.Order{OrderNumber: "OC-2025-05-001", Status: model.StatusApproved}
		f.orders.put(order)

		notes := "cambio"
		_, err := f.svc.UpdateOrder(ctx, order.ID.String(), UpdateOrderRequest{Notes: &notes}, nil)
		require.ErrorIs(t, err, ErrOrderNotEditable)
	})

	t.Run("in-review orders point at the withdraw step", func(t *testing.T) {
		f := newOrderFixture()
		order := &model.Order{OrderNumber: "OC-2025-05-002", Status: model.StatusInReview}
		f.orders.put(order)

		notes := "cambio"
		_, err := f.svc.UpdateOrder(ctx, order.ID.String(), UpdateOrderRequest{Notes: &notes}, nil)
		require.ErrorIs(t, err, ErrOrderInReviewEdit)
	})

	t.Run("item replacement recomputes totals", func(t *testing.T) {
		f := newOrderFixture()
		order := &model.Order{
			OrderNumber: "OC-2025-05-003",
			Status:      model.StatusCreated,
			TaxRate:     dec("0.18"),
		}
		f.orders.put(order)

		items := []OrderItemPayload{
			{Description: "Arena", Quantity: dec("4"), UnitPrice: dec("50")},
		}
		updated, err := f.svc.UpdateOrder(ctx, order.ID.String(), UpdateOrderRequest{Items: &items}, nil)
		require.NoError(t, err)
		require.True(t, updated.Subtotal.Equal(dec("200")), "got %s", updated.Subtotal)
		require.True(t, updated.Total.Equal(dec("236")), "got %s", updated.Total)
	})
}

func TestDeleteOrder(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture()

	created := &model.Order{OrderNumber: "OC-2025-05-004", Status: model.StatusCreated}
	f.orders.put(created)
	approved := &model.Order{OrderNumber: "OC-2025-05-005", Status: model.StatusApproved}
	f.orders.put(approved)

	require.NoError(t, f.svc.DeleteOrder(ctx, created.ID.String(), nil))
	require.Nil(t, f.orders.get(created.ID))

	err := f.svc.DeleteOrder(ctx, approved.ID.String(), nil)
	require.ErrorIs(t, err, ErrOrderNotDeletable)
}

func TestCompleteOrder(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture()

	approved := &model.Order{OrderNumber: "OC-2025-05-006", Status: model.StatusApproved}
	f.orders.put(approved)

	order, err := f.svc.CompleteOrder(ctx, approved.ID.String(), nil)
	require.NoError(t, err)
	require.Equal(t, model.StatusCompleted, order.Status)
	require.Contains(t, f.audits.actions(), model.ActionCompleteOrder)

	t.Run("only approved orders complete", func(t *testing.T) {
		created := &model.Order{OrderNumber: "OC-2025-05-007", Status: model.StatusCreated}
		f.orders.put(created)
		_, err := f.svc.CompleteOrder(ctx, created.ID.String(), nil)
		require.ErrorIs(t, err, ErrOrderNotApproved)
	})
}

func TestWithdrawFromReview(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture()
	tokens := NewTokenService(f.orders)

	order := &model.Order{OrderNumber: "OC-2025-05-008", Status: model.StatusInReview}
	f.orders.put(order)
	token, _, err := tokens.Issue(ctx, order.ID, 1)
	require.NoError(t, err)

	withdrawn, err := f.svc.WithdrawFromReview(ctx, order.ID.String(), nil)
	require.NoError(t, err)
	require.Equal(t, model.StatusCreated, withdrawn.Status)

	_, err = tokens.Validate(ctx, token)
	fe, ok := AsFlowError(err)
	require.True(t, ok)
	require.Equal(t, CodeTokenInvalid, fe.Code)
}
