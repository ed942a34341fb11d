package handler

import (
	"net/http"

	"compras-backend/internal/middleware"
	"compras-backend/internal/model"
	"compras-backend/internal/service"
	"compras-backend/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type ApproverHandler struct {
	approverService service.ApproverService
	log             *logrus.Logger
}

func NewApproverHandler(approverService service.ApproverService, log *logrus.Logger) *ApproverHandler {
	return &ApproverHandler{approverService: approverService, log: log}
}

func (h *ApproverHandler) RegisterRoutes(router *gin.RouterGroup) {
	admin := middleware.RequireRole(model.RoleAdmin)
	aprobadores := router.Group("/api/aprobadores")
	{
		aprobadores.GET("", middleware.RequireRole(model.RoleAdmin, model.RoleBuyer), h.ListApprovers)
		aprobadores.POST("", admin, h.CreateApprover)
		aprobadores.PUT("/:id", admin, h.UpdateApprover)
		aprobadores.PUT("/:id/pin", admin, h.SetPIN)
	}
}

// ListApprovers lists approvers, by default only eligible ones
// @Summary      List approvers
// @Tags         aprobadores
// @Security     BearerAuth
// @Produce      json
// @Param        todos  query  string  false  "Include ineligible approvers (true/false)"
// @Success      200  {object}  response.Response
// @Router       /api/aprobadores [get]
func (h *ApproverHandler) ListApprovers(c *gin.Context) {
	onlyEligible := c.Query("todos") != "true"
	approvers, err := h.approverService.ListApprovers(c.Request.Context(), onlyEligible)
	if err != nil {
		h.log.WithError(err).Error("approver list failed")
		c.JSON(http.StatusInternalServerError, response.Err(service.CodeServerError))
		return
	}
	c.JSON(http.StatusOK, response.OK(approvers))
}

// CreateApprover registers an approver; the PIN is hashed before storage
// @Summary      Create approver
// @Tags         aprobadores
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body  service.CreateApproverRequest  true  "Approver payload (includes initial PIN)"
// @Success      201  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/aprobadores [post]
func (h *ApproverHandler) CreateApprover(c *gin.Context) {
	var req service.CreateApproverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrWithMessage("PAYLOAD_INVALIDO", err.Error()))
		return
	}

	approver, err := h.approverService.CreateApprover(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.ErrWithMessage("PAYLOAD_INVALIDO", err.Error()))
		return
	}
	c.JSON(http.StatusCreated, response.OK(approver))
}

// UpdateApprover updates approver fields (never the PIN; see SetPIN)
// @Summary      Update approver
// @Tags         aprobadores
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path  string                         true  "Approver ID"
// @Param        payload  body  service.UpdateApproverRequest  true  "Fields to update"
// @Success      200  {object}  response.Response
// @Router       /api/aprobadores/{id} [put]
func (h *ApproverHandler) UpdateApprover(c *gin.Context) {
	var req service.UpdateApproverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrWithMessage("PAYLOAD_INVALIDO", err.Error()))
		return
	}

	approver, err := h.approverService.UpdateApprover(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.ErrWithMessage("PAYLOAD_INVALIDO", err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.OK(approver))
}

// SetPIN replaces the approver's PIN
// @Summary      Set approver PIN
// @Tags         aprobadores
// @Security     BearerAuth
// @Accept       json
// @Param        id       path  string                 true  "Approver ID"
// @Param        payload  body  service.SetPINRequest  true  "New PIN"
// @Success      200  {object}  response.Response
// @Router       /api/aprobadores/{id}/pin [put]
func (h *ApproverHandler) SetPIN(c *gin.Context) {
	var req service.SetPINRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrWithMessage("PAYLOAD_INVALIDO", err.Error()))
		return
	}

	if err := h.approverService.SetPIN(c.Request.Context(), c.Param("id"), req); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrWithMessage("PAYLOAD_INVALIDO", err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.OK(gin.H{"updated": true}))
}
