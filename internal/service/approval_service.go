package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"compras-backend/internal/model"
	"compras-backend/internal/repository"
	ws "compras-backend/internal/websocket"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// --- DTOs ---

type ApproveRequest struct {
	Nombre        string `json:"nombre"`
	PIN           string `json:"pin" binding:"required"`
	Observaciones string `json:"observaciones"`
}

type RejectRequest struct {
	Nombre string `json:"nombre"`
	PIN    string `json:"pin" binding:"required"`
	Motivo string `json:"motivo"`
}

type GenerateTokenRequest struct {
	BaseURL  string `json:"baseUrl" binding:"required"`
	TTLHours int    `json:"ttlHours"`
}

type ValidatePINRequest struct {
	Token string `json:"token" binding:"required"`
	PIN   string `json:"pin" binding:"required"`
}

type ApprovalItemView struct {
	Descripcion    string          `json:"descripcion"`
	Cantidad       decimal.Decimal `json:"cantidad"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario"`
	Total          decimal.Decimal `json:"total"`
}

// ApprovalOrderView is the order summary shown on the public approval page.
// It deliberately exposes no internal IDs beyond what the page needs.
type ApprovalOrderView struct {
	NumeroOrden    string             `json:"numero_orden"`
	Estado         string             `json:"estado"`
	Proveedor      string             `json:"proveedor"`
	Aprobador      string             `json:"aprobador"`
	Subtotal       decimal.Decimal    `json:"subtotal"`
	Impuesto       decimal.Decimal    `json:"impuesto"`
	Total          decimal.Decimal    `json:"total"`
	Notas          string             `json:"notas"`
	ExpiraEn       time.Time          `json:"expira_en"`
	Items          []ApprovalItemView `json:"items"`
}

type TokenIssueResponse struct {
	Token         string    `json:"token"`
	ExpiraEn      time.Time `json:"expira_en"`
	URLAprobacion string    `json:"url_aprobacion"`
	URLRechazo    string    `json:"url_rechazo"`
	Mensaje       string    `json:"mensaje"`
}

type ResolutionResponse struct {
	NumeroOrden string    `json:"numero_orden"`
	Estado      string    `json:"estado"`
	ResueltoPor string    `json:"resuelto_por"`
	ResueltoEn  time.Time `json:"resuelto_en"`
}

type ApproverIdentity struct {
	ID     uuid.UUID `json:"id"`
	Nombre string    `json:"nombre"`
	Cargo  string    `json:"cargo"`
}

// --- Interface ---

// ApprovalService is the order-state transition protocol: it issues approval
// tokens, authenticates the designated approver by PIN, and applies the
// Created/InReview -> Approved|Cancelled transitions exactly once per token.
type ApprovalService interface {
	GetOrderByToken(ctx context.Context, token string) (ApprovalOrderView, error)
	GenerateToken(ctx context.Context, orderID string, req GenerateTokenRequest) (TokenIssueResponse, error)
	ValidatePIN(ctx context.Context, req ValidatePINRequest) (ApproverIdentity, error)
	Approve(ctx context.Context, token string, req ApproveRequest, ip string) (ResolutionResponse, error)
	Reject(ctx context.Context, token string, req RejectRequest, ip string) (ResolutionResponse, error)
}

type approvalService struct {
	orders    repository.OrderRepository
	approvers repository.ApproverRepository
	audits    repository.AuditRepository
	tokens    TokenService
	txManager repository.TransactionManager
	hub       *ws.Hub
	log       *logrus.Logger
}

func NewApprovalService(
	orders repository.OrderRepository,
	approvers repository.ApproverRepository,
	audits repository.AuditRepository,
	tokens TokenService,
	txManager repository.TransactionManager,
	hub *ws.Hub,
	log *logrus.Logger,
) ApprovalService {
	return &approvalService{
		orders:    orders,
		approvers: approvers,
		audits:    audits,
		tokens:    tokens,
		txManager: txManager,
		hub:       hub,
		log:       log,
	}
}

// --- Implementation ---

func (s *approvalService) GetOrderByToken(ctx context.Context, token string) (ApprovalOrderView, error) {
	order, err := s.tokens.Validate(ctx, token)
	if err != nil {
		return ApprovalOrderView{}, err
	}
	return toApprovalView(order), nil
}

func (s *approvalService) GenerateToken(ctx context.Context, orderID string, req GenerateTokenRequest) (TokenIssueResponse, error) {
	id, err := uuid.Parse(orderID)
	if err != nil {
		return TokenIssueResponse{}, flowErr(CodeTokenInvalid, "Identificador de orden inválido")
	}

	var resp TokenIssueResponse
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		order, findErr := s.orders.FindByIDWithRelations(txCtx, id)
		if findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return flowErr(CodeTokenInvalid, "Orden no encontrada")
			}
			return findErr
		}

		// Tokens only exist for orders still in flight.
		if !order.Status.Resolvable() {
			return flowErr(CodeInvalidState,
				fmt.Sprintf("La orden está %s y no admite aprobación", order.Status.Label()))
		}

		// A second live link would let two different parties resolve the same
		// order; refuse and report how long the current one remains valid.
		now := time.Now()
		if order.HasActiveToken(now) {
			fe := flowErr(CodeTokenActive, "Ya existe un enlace de aprobación vigente para esta orden")
			fe.RemainingMinutes = int(math.Ceil(order.TokenExpiresAt.Sub(now).Minutes()))
			return fe
		}

		token, expiresAt, issueErr := s.tokens.Issue(txCtx, order.ID, req.TTLHours)
		if issueErr != nil {
			return issueErr
		}

		// Created -> InReview on first issuance; re-issuing while InReview is
		// a pure regeneration (resend) and leaves the status alone.
		if order.Status == model.StatusCreated {
			if stErr := s.orders.UpdateStatus(txCtx, order.ID, model.StatusInReview); stErr != nil {
				return stErr
			}
		}

		details, _ := json.Marshal(map[string]interface{}{
			"expira_en": expiresAt.Format(time.RFC3339),
		})
		audit := model.AuditLog{
			Action:   model.ActionIssueToken,
			EntityID: order.ID.String(),
			Details:  string(details),
		}
		if auditErr := s.audits.Create(txCtx, &audit); auditErr != nil {
			return auditErr
		}

		resp = buildIssueResponse(order, token, expiresAt, req.BaseURL)
		return nil
	})
	if err != nil {
		return TokenIssueResponse{}, err
	}

	s.broadcast("orden_en_revision", map[string]string{"orden_id": orderID})
	return resp, nil
}

func (s *approvalService) ValidatePIN(ctx context.Context, req ValidatePINRequest) (ApproverIdentity, error) {
	order, err := s.tokens.Validate(ctx, req.Token)
	if err != nil {
		return ApproverIdentity{}, err
	}

	approver, err := s.authenticate(ctx, order, req.PIN)
	if err != nil {
		return ApproverIdentity{}, err
	}

	return ApproverIdentity{ID: approver.ID, Nombre: approver.Name, Cargo: approver.Title}, nil
}

func (s *approvalService) Approve(ctx context.Context, token string, req ApproveRequest, ip string) (ResolutionResponse, error) {
	return s.resolve(ctx, token, resolution{
		status:       model.StatusApproved,
		action:       model.ActionApproveOrder,
		event:        "orden_aprobada",
		actor:        req.Nombre,
		pin:          req.PIN,
		observations: req.Observaciones,
		ip:           ip,
	})
}

func (s *approvalService) Reject(ctx context.Context, token string, req RejectRequest, ip string) (ResolutionResponse, error) {
	return s.resolve(ctx, token, resolution{
		status: model.StatusCancelled,
		action: model.ActionRejectOrder,
		event:  "orden_rechazada",
		actor:  req.Nombre,
		pin:    req.PIN,
		reason: req.Motivo,
		ip:     ip,
	})
}

type resolution struct {
	status       model.OrderStatus
	action       string
	event        string
	actor        string
	pin          string
	reason       string
	observations string
	ip           string
}

// resolve applies the terminal transition for both approve and reject. The
// token consumption and the status write commit in the same transaction: if
// the state mutation fails the token stays replayable, and when two requests
// race the conditional used-flag update lets exactly one through.
func (s *approvalService) resolve(ctx context.Context, token string, r resolution) (ResolutionResponse, error) {
	var resp ResolutionResponse
	var orderID uuid.UUID

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		order, err := s.tokens.Validate(txCtx, token)
		if err != nil {
			return err
		}

		approver, err := s.authenticate(txCtx, order, r.pin)
		if err != nil {
			return err
		}

		consumed, err := s.tokens.MarkUsed(txCtx, order.ID, order.ApprovalToken)
		if err != nil {
			return err
		}
		if !consumed {
			return flowErr(CodeTokenUsed, "Este enlace ya fue utilizado")
		}

		actor := strings.TrimSpace(r.actor)
		if actor == "" {
			actor = approver.Name
		}

		now := time.Now()
		if err := s.orders.RecordResolution(txCtx, order.ID, r.status, actor, now, r.ip, r.reason, r.observations); err != nil {
			return err
		}

		details, _ := json.Marshal(map[string]interface{}{
			"numero_orden": order.OrderNumber,
			"aprobador_id": approver.ID.String(),
			"motivo":       r.reason,
		})
		audit := model.AuditLog{
			ActorName: actor,
			ActorIP:   r.ip,
			Action:    r.action,
			EntityID:  order.ID.String(),
			Details:   string(details),
		}
		if err := s.audits.Create(txCtx, &audit); err != nil {
			return err
		}

		orderID = order.ID
		resp = ResolutionResponse{
			NumeroOrden: order.OrderNumber,
			Estado:      r.status.Label(),
			ResueltoPor: actor,
			ResueltoEn:  now,
		}
		return nil
	})
	if err != nil {
		return ResolutionResponse{}, err
	}

	s.broadcast(r.event, map[string]string{
		"orden_id":     orderID.String(),
		"numero_orden": resp.NumeroOrden,
		"resuelto_por": resp.ResueltoPor,
	})
	return resp, nil
}

// authenticate binds the PIN to the order's designated approver. Wrong PIN and
// wrong approver produce the same response shape; bcrypt's comparison is
// constant-time by construction.
func (s *approvalService) authenticate(ctx context.Context, order *model.Order, pin string) (*model.Approver, error) {
	if order.ApproverID == nil {
		return nil, flowErr(CodeApproverNotFound, "La orden no tiene un aprobador asignado")
	}

	approver, err := s.approvers.FindByID(ctx, *order.ApproverID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, flowErr(CodeApproverNotFound, "La orden no tiene un aprobador asignado")
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(approver.PINHash), []byte(pin)) != nil {
		return nil, flowErr(CodePINInvalid, "PIN incorrecto")
	}

	return approver, nil
}

func (s *approvalService) broadcast(event string, payload interface{}) {
	if s.hub == nil {
		return
	}
	s.hub.BroadcastJSON(event, payload)
}

// --- Helpers ---

func buildIssueResponse(order *model.Order, token string, expiresAt time.Time, baseURL string) TokenIssueResponse {
	base := strings.TrimRight(baseURL, "/")
	approveURL := base + "/aprobacion/" + token
	rejectURL := base + "/aprobacion/" + token + "?accion=rechazar"

	supplier := ""
	if order.Supplier != nil {
		supplier = order.Supplier.Name
	}

	mensaje := fmt.Sprintf(
		"Se solicita su aprobación para la orden de compra %s (proveedor: %s, total: %s). "+
			"Revise y apruebe o rechace aquí: %s — el enlace vence el %s.",
		order.OrderNumber, supplier, order.Total.StringFixed(2),
		approveURL, expiresAt.Format("02/01/2006 15:04"))

	return TokenIssueResponse{
		Token:         token,
		ExpiraEn:      expiresAt,
		URLAprobacion: approveURL,
		URLRechazo:    rejectURL,
		Mensaje:       mensaje,
	}
}

func toApprovalView(order *model.Order) ApprovalOrderView {
	view := ApprovalOrderView{
		NumeroOrden: order.OrderNumber,
		Estado:      order.Status.Label(),
		Subtotal:    order.Subtotal,
		Impuesto:    order.TaxAmount,
		Total:       order.Total,
		Notas:       order.Notes,
	}
	if order.TokenExpiresAt != nil {
		view.ExpiraEn = *order.TokenExpiresAt
	}
	if order.Supplier != nil {
		view.Proveedor = order.Supplier.Name
	}
	if order.Approver != nil {
		view.Aprobador = order.Approver.Name
	}
	for _, item := range order.Items {
		view.Items = append(view.Items, ApprovalItemView{
			Descripcion:    item.Description,
			Cantidad:       item.Quantity,
			PrecioUnitario: item.UnitPrice,
			Total:          item.Total,
		})
	}
	return view
}
