package service

import (
	"context"
	"testing"
	"time"

	"compras-backend/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type approvalFixture struct {
	orders    *fakeOrderRepo
	approvers *fakeApproverRepo
	audits    *fakeAuditRepo
	tokens    TokenService
	svc       ApprovalService
}

func newApprovalFixture(t *testing.T) *approvalFixture {
	t.Helper()
	orders := newFakeOrderRepo()
	approvers := newFakeApproverRepo()
	audits := &fakeAuditRepo{}
	tokens := NewTokenService(orders)
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	svc := NewApprovalService(orders, approvers, audits, tokens, fakeTxManager{}, nil, log)
	return &approvalFixture{
		orders:    orders,
		approvers: approvers,
		audits:    audits,
		tokens:    tokens,
		svc:       svc,
	}
}

const testPIN = "4321"

func (f *approvalFixture) seedApprover(t *testing.T) *model.Approver {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(testPIN), bcrypt.MinCost)
	require.NoError(t, err)
	approver := &model.Approver{
		Name:    "María González",
		Title:   "Gerente de Compras",
		PINHash: string(hash),
	}
	require.NoError(t, f.approvers.Create(context.Background(), approver))
	return approver
}

func (f *approvalFixture) seedOrder(status model.OrderStatus, approverID *uuid.UUID) *model.Order {
	order := &model.Order{
		OrderNumber: "OC-2025-03-007",
		Status:      status,
		ApproverID:  approverID,
		Subtotal:    decimal.NewFromInt(1000),
		TaxAmount:   decimal.NewFromInt(180),
		Total:       decimal.NewFromInt(1180),
	}
	f.orders.put(order)
	return order
}

func TestGenerateToken(t *testing.T) {
	ctx := context.Background()

	t.Run("moves a created order into review and returns the links", func(t *testing.T) {
		f := newApprovalFixture(t)
		approver := f.seedApprover(t)
		order := f.seedOrder(model.StatusCreated, &approver.ID)

		resp, err := f.svc.GenerateToken(ctx, order.ID.String(), GenerateTokenRequest{
			BaseURL: "https://compras.example.com/",
		})
		require.NoError(t, err)
		require.Len(t, resp.Token, 64)
		require.Equal(t, "https://compras.example.com/aprobacion/"+resp.Token, resp.URLAprobacion)
		require.Contains(t, resp.URLRechazo, "accion=rechazar")
		require.Contains(t, resp.Mensaje, order.OrderNumber)

		stored := f.orders.get(order.ID)
		require.Equal(t, model.StatusInReview, stored.Status)
		require.Contains(t, f.audits.actions(), model.ActionIssueToken)
	})

	t.Run("rejects while a live token exists, reporting remaining minutes", func(t *testing.T) {
		f := newApprovalFixture(t)
		approver := f.seedApprover(t)
		order := f.seedOrder(model.StatusCreated, &approver.ID)

		_, err := f.svc.GenerateToken(ctx, order.ID.String(), GenerateTokenRequest{BaseURL: "https://x.test", TTLHours: 2})
		require.NoError(t, err)

		_, err = f.svc.GenerateToken(ctx, order.ID.String(), GenerateTokenRequest{BaseURL: "https://x.test"})
		fe, ok := AsFlowError(err)
		require.True(t, ok)
		require.Equal(t, CodeTokenActive, fe.Code)
		require.Greater(t, fe.RemainingMinutes, 110)
		require.LessOrEqual(t, fe.RemainingMinutes, 120)
	})

	t.Run("re-issues after the previous token expired", func(t *testing.T) {
		f := newApprovalFixture(t)
		approver := f.seedApprover(t)
		order := f.seedOrder(model.StatusCreated, &approver.ID)

		_, err := f.svc.GenerateToken(ctx, order.ID.String(), GenerateTokenRequest{BaseURL: "https://x.test"})
		require.NoError(t, err)

		past := time.Now().Add(-time.Minute)
		stored := f.orders.get(order.ID)
		stored.TokenExpiresAt = &past
		f.orders.put(stored)

		resp, err := f.svc.GenerateToken(ctx, order.ID.String(), GenerateTokenRequest{BaseURL: "https://x.test"})
		require.NoError(t, err)
		require.Len(t, resp.Token, 64)
	})

	t.Run("refuses resolved orders", func(t *testing.T) {
		f := newApprovalFixture(t)
		approver := f.seedApprover(t)
		order := f.seedOrder(model.StatusApproved, &approver.ID)

		_, err := f.svc.GenerateToken(ctx, order.ID.String(), GenerateTokenRequest{BaseURL: "https://x.test"})
		fe, ok := AsFlowError(err)
		require.True(t, ok)
		require.Equal(t, CodeInvalidState, fe.Code)
	})

	t.Run("bad order id", func(t *testing.T) {
		f := newApprovalFixture(t)
		_, err := f.svc.GenerateToken(ctx, "not-a-uuid", GenerateTokenRequest{BaseURL: "https://x.test"})
		fe, ok := AsFlowError(err)
		require.True(t, ok)
		require.Equal(t, CodeTokenInvalid, fe.Code)
	})
}

func TestValidatePIN(t *testing.T) {
	ctx := context.Background()
	f := newApprovalFixture(t)
	approver := f.seedApprover(t)
	order := f.seedOrder(model.StatusCreated, &approver.ID)

	resp, err := f.svc.GenerateToken(ctx, order.ID.String(), GenerateTokenRequest{BaseURL: "https://x.test"})
	require.NoError(t, err)

	t.Run("correct PIN returns the approver identity", func(t *testing.T) {
		identity, err := f.svc.ValidatePIN(ctx, ValidatePINRequest{Token: resp.Token, PIN: testPIN})
		require.NoError(t, err)
		require.Equal(t, approver.ID, identity.ID)
		require.Equal(t, approver.Name, identity.Nombre)
	})

	t.Run("wrong PIN", func(t *testing.T) {
		_, err := f.svc.ValidatePIN(ctx, ValidatePINRequest{Token: resp.Token, PIN: "0000"})
		fe, ok := AsFlowError(err)
		require.True(t, ok)
		require.Equal(t, CodePINInvalid, fe.Code)
	})

	t.Run("order without an assigned approver", func(t *testing.T) {
		g := newApprovalFixture(t)
		orphan := g.seedOrder(model.StatusCreated, nil)
		issued, err := g.svc.GenerateToken(ctx, orphan.ID.String(), GenerateTokenRequest{BaseURL: "https://x.test"})
		require.NoError(t, err)

		_, err = g.svc.ValidatePIN(ctx, ValidatePINRequest{Token: issued.Token, PIN: testPIN})
		fe, ok := AsFlowError(err)
		require.True(t, ok)
		require.Equal(t, CodeApproverNotFound, fe.Code)
	})
}

func TestApprove(t *testing.T) {
	ctx := context.Background()

	t.Run("happy path", func(t *testing.T) {
		f := newApprovalFixture(t)
		approver := f.seedApprover(t)
		order := f.seedOrder(model.StatusCreated, &approver.ID)
		issued, err := f.svc.GenerateToken(ctx, order.ID.String(), GenerateTokenRequest{BaseURL: "https://x.test"})
		require.NoError(t, err)

		resp, err := f.svc.Approve(ctx, issued.Token, ApproveRequest{
			PIN:           testPIN,
			Observaciones: "Conforme",
		}, "203.0.113.9")
		require.NoError(t, err)
		require.Equal(t, order.OrderNumber, resp.NumeroOrden)
		require.Equal(t, "Aprobada", resp.Estado)
		require.Equal(t, approver.Name, resp.ResueltoPor)

		stored := f.orders.get(order.ID)
		require.Equal(t, model.StatusApproved, stored.Status)
		require.True(t, stored.TokenUsed)
		require.Equal(t, approver.Name, stored.ResolvedBy)
		require.Equal(t, "203.0.113.9", stored.ResolvedIP)
		require.Equal(t, "Conforme", stored.Observations)
		require.Contains(t, f.audits.actions(), model.ActionApproveOrder)
	})

	t.Run("a second resolve attempt reports the token as used", func(t *testing.T) {
		f := newApprovalFixture(t)
		approver := f.seedApprover(t)
		order := f.seedOrder(model.StatusCreated, &approver.ID)
		issued, err := f.svc.GenerateToken(ctx, order.ID.String(), GenerateTokenRequest{BaseURL: "https://x.test"})
		require.NoError(t, err)

		_, err = f.svc.Approve(ctx, issued.Token, ApproveRequest{PIN: testPIN}, "")
		require.NoError(t, err)

		_, err = f.svc.Reject(ctx, issued.Token, RejectRequest{PIN: testPIN, Motivo: "tarde"}, "")
		fe, ok := AsFlowError(err)
		require.True(t, ok)
		require.Equal(t, CodeTokenUsed, fe.Code)

		stored := f.orders.get(order.ID)
		require.Equal(t, model.StatusApproved, stored.Status)
	})

	t.Run("wrong PIN leaves the token replayable", func(t *testing.T) {
		f := newApprovalFixture(t)
		approver := f.seedApprover(t)
		order := f.seedOrder(model.StatusCreated, &approver.ID)
		issued, err := f.svc.GenerateToken(ctx, order.ID.String(), GenerateTokenRequest{BaseURL: "https://x.test"})
		require.NoError(t, err)

		_, err = f.svc.Approve(ctx, issued.Token, ApproveRequest{PIN: "9999"}, "")
		fe, ok := AsFlowError(err)
		require.True(t, ok)
		require.Equal(t, CodePINInvalid, fe.Code)

		stored := f.orders.get(order.ID)
		require.Equal(t, model.StatusInReview, stored.Status)
		require.False(t, stored.TokenUsed)

		_, err = f.svc.Approve(ctx, issued.Token, ApproveRequest{PIN: testPIN}, "")
		require.NoError(t, err)
	})

	t.Run("explicit actor name overrides the approver record", func(t *testing.T) {
		f := newApprovalFixture(t)
		approver := f.seedApprover(t)
		order := f.seedOrder(model.StatusCreated, &approver.ID)
		issued, err := f.svc.GenerateToken(ctx, order.ID.String(), GenerateTokenRequest{BaseURL: "https://x.test"})
		require.NoError(t, err)

		resp, err := f.svc.Approve(ctx, issued.Token, ApproveRequest{Nombre: "M. González (vacaciones)", PIN: testPIN}, "")
		require.NoError(t, err)
		require.Equal(t, "M. González (vacaciones)", resp.ResueltoPor)
	})
}

func TestReject(t *testing.T) {
	ctx := context.Background()
	f := newApprovalFixture(t)
	approver := f.seedApprover(t)
	order := f.seedOrder(model.StatusCreated, &approver.ID)
	issued, err := f.svc.GenerateToken(ctx, order.ID.String(), GenerateTokenRequest{BaseURL: "https://x.test"})
	require.NoError(t, err)

	resp, err := f.svc.Reject(ctx, issued.Token, RejectRequest{
		PIN:    testPIN,
		Motivo: "Precio fuera de presupuesto",
	}, "198.51.100.4")
	require.NoError(t, err)
	require.Equal(t, "Cancelada", resp.Estado)

	stored := f.orders.get(order.ID)
	require.Equal(t, model.StatusCancelled, stored.Status)
	require.Equal(t, "Precio fuera de presupuesto", stored.RejectionReason)
	require.Contains(t, f.audits.actions(), model.ActionRejectOrder)
}

func TestGetOrderByToken(t *testing.T) {
	ctx := context.Background()
	f := newApprovalFixture(t)
	approver := f.seedApprover(t)
	order := f.seedOrder(model.StatusCreated, &approver.ID)
	order.Items = []model.OrderItem{{
		Description: "Tornillos M8",
		Quantity:    decimal.NewFromInt(500),
		UnitPrice:   decimal.NewFromFloat(0.12),
		Total:       decimal.NewFromInt(60),
	}}
	f.orders.put(order)

	issued, err := f.svc.GenerateToken(ctx, order.ID.String(), GenerateTokenRequest{BaseURL: "https://x.test"})
	require.NoError(t, err)

	view, err := f.svc.GetOrderByToken(ctx, issued.Token)
	require.NoError(t, err)
	require.Equal(t, order.OrderNumber, view.NumeroOrden)
	require.Equal(t, "En Revisión", view.Estado)
	require.Len(t, view.Items, 1)
	require.Equal(t, "Tornillos M8", view.Items[0].Descripcion)
	require.False(t, view.ExpiraEn.IsZero())
}
