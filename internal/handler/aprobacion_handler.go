package handler

import (
	"net/http"

	"compras-backend/internal/service"
	"compras-backend/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// AprobacionHandler exposes the public, token-authenticated approval surface.
// No staff JWT is required here: the single-use token plus the approver's PIN
// are the credentials.
type AprobacionHandler struct {
	approvalService service.ApprovalService
	log             *logrus.Logger
}

func NewAprobacionHandler(approvalService service.ApprovalService, log *logrus.Logger) *AprobacionHandler {
	return &AprobacionHandler{approvalService: approvalService, log: log}
}

func (h *AprobacionHandler) RegisterRoutes(router *gin.RouterGroup) {
	aprobacion := router.Group("/api/aprobacion")
	{
		aprobacion.GET("/:token", h.GetOrder)
		aprobacion.POST("/:token/aprobar", h.Approve)
		aprobacion.POST("/:token/rechazar", h.Reject)
		aprobacion.POST("/generar-token/:ordenId", h.GenerateToken)
		aprobacion.POST("/validar-pin", h.ValidatePIN)
	}
}

// respondFlowError maps a service error onto the wire: known flow errors keep
// their tag and a 4xx status; anything else is an infrastructure failure that
// gets logged and reported as a generic SERVER_ERROR with no internal detail.
func (h *AprobacionHandler) respondFlowError(c *gin.Context, err error) {
	if fe, ok := service.AsFlowError(err); ok {
		status := http.StatusBadRequest
		if fe.Code == service.CodeTokenInvalid || fe.Code == service.CodeApproverNotFound {
			status = http.StatusNotFound
		}
		resp := response.ErrWithMessage(fe.Code, fe.Message)
		if fe.Code == service.CodeTokenActive {
			resp.Extra = map[string]int{"minutos_restantes": fe.RemainingMinutes}
		}
		c.JSON(status, resp)
		return
	}

	h.log.WithError(err).WithField("path", c.FullPath()).Error("approval flow failure")
	c.JSON(http.StatusInternalServerError, response.Err(service.CodeServerError))
}

// GetOrder returns the order summary for the approval page
// @Summary      Order summary by approval token
// @Tags         aprobacion
// @Produce      json
// @Param        token  path      string  true  "Approval token (64 hex chars)"
// @Success      200    {object}  response.Response
// @Failure      400    {object}  response.Response
// @Failure      404    {object}  response.Response
// @Router       /api/aprobacion/{token} [get]
func (h *AprobacionHandler) GetOrder(c *gin.Context) {
	view, err := h.approvalService.GetOrderByToken(c.Request.Context(), c.Param("token"))
	if err != nil {
		h.respondFlowError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.OK(view))
}

// Approve applies the InReview -> Approved transition
// @Summary      Approve order via token
// @Tags         aprobacion
// @Accept       json
// @Produce      json
// @Param        token    path  string                  true  "Approval token"
// @Param        payload  body  service.ApproveRequest  true  "Approver name, PIN and observations"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/aprobacion/{token}/aprobar [post]
func (h *AprobacionHandler) Approve(c *gin.Context) {
	var req service.ApproveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrWithMessage(service.CodePINInvalid, "PIN requerido"))
		return
	}

	result, err := h.approvalService.Approve(c.Request.Context(), c.Param("token"), req, c.ClientIP())
	if err != nil {
		h.respondFlowError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.OK(result))
}

// Reject applies the InReview -> Cancelled transition
// @Summary      Reject order via token
// @Tags         aprobacion
// @Accept       json
// @Produce      json
// @Param        token    path  string                 true  "Approval token"
// @Param        payload  body  service.RejectRequest  true  "Approver name, PIN and rejection reason"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/aprobacion/{token}/rechazar [post]
func (h *AprobacionHandler) Reject(c *gin.Context) {
	var req service.RejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrWithMessage(service.CodePINInvalid, "PIN requerido"))
		return
	}

	result, err := h.approvalService.Reject(c.Request.Context(), c.Param("token"), req, c.ClientIP())
	if err != nil {
		h.respondFlowError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.OK(result))
}

// GenerateToken issues (or refuses to duplicate) an approval link for an order
// @Summary      Issue approval token for an order
// @Tags         aprobacion
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        ordenId  path  string                        true  "Order ID"
// @Param        payload  body  service.GenerateTokenRequest  true  "Base URL for the approval links"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/aprobacion/generar-token/{ordenId} [post]
func (h *AprobacionHandler) GenerateToken(c *gin.Context) {
	var req service.GenerateTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrWithMessage("PAYLOAD_INVALIDO", "baseUrl es obligatorio"))
		return
	}

	result, err := h.approvalService.GenerateToken(c.Request.Context(), c.Param("ordenId"), req)
	if err != nil {
		h.respondFlowError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.OK(result))
}

// ValidatePIN checks the PIN against the order's assigned approver
// @Summary      Validate approver PIN
// @Tags         aprobacion
// @Accept       json
// @Produce      json
// @Param        payload  body  service.ValidatePINRequest  true  "Token and PIN"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/aprobacion/validar-pin [post]
func (h *AprobacionHandler) ValidatePIN(c *gin.Context) {
	var req service.ValidatePINRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrWithMessage("PAYLOAD_INVALIDO", "token y pin son obligatorios"))
		return
	}

	identity, err := h.approvalService.ValidatePIN(c.Request.Context(), req)
	if err != nil {
		h.respondFlowError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.OK(identity))
}
