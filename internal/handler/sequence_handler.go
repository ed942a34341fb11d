package handler

import (
	"net/http"
	"time"

	"compras-backend/internal/middleware"
	"compras-backend/internal/model"
	"compras-backend/internal/service"
	"compras-backend/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type SequenceHandler struct {
	sequenceService service.SequenceService
	log             *logrus.Logger
}

func NewSequenceHandler(sequenceService service.SequenceService, log *logrus.Logger) *SequenceHandler {
	return &SequenceHandler{sequenceService: sequenceService, log: log}
}

func (h *SequenceHandler) RegisterRoutes(router *gin.RouterGroup) {
	secuencias := router.Group("/api/secuencias")
	{
		secuencias.GET("/siguiente-numero-oc", middleware.RequireRole(model.RoleAdmin, model.RoleBuyer), h.NextOrderNumber)
		secuencias.GET("/preview-numero-oc", middleware.RequireRole(model.RoleAdmin, model.RoleBuyer), h.PreviewOrderNumber)
	}
}

// NextOrderNumber atomically issues the next purchase-order number
// @Summary      Issue next order number
// @Tags         secuencias
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /api/secuencias/siguiente-numero-oc [get]
func (h *SequenceHandler) NextOrderNumber(c *gin.Context) {
	number, err := h.sequenceService.NextNumber(c.Request.Context(), model.SeqTypePurchaseOrder, time.Now())
	if err != nil {
		h.log.WithError(err).Error("sequence issue failed")
		c.JSON(http.StatusInternalServerError, response.Err(service.CodeServerError))
		return
	}
	c.JSON(http.StatusOK, response.OK(gin.H{"numero": number}))
}

// PreviewOrderNumber computes the next number without reserving it
// @Summary      Preview next order number
// @Tags         secuencias
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /api/secuencias/preview-numero-oc [get]
func (h *SequenceHandler) PreviewOrderNumber(c *gin.Context) {
	number, err := h.sequenceService.PreviewNumber(c.Request.Context(), model.SeqTypePurchaseOrder, time.Now())
	if err != nil {
		h.log.WithError(err).Error("sequence preview failed")
		c.JSON(http.StatusInternalServerError, response.Err(service.CodeServerError))
		return
	}
	c.JSON(http.StatusOK, response.OK(gin.H{"numero": number}))
}
