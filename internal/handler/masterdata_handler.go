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

// MasterDataHandler exposes the flat reference tables: categories, units and
// payment terms. Same shape for the three, so the handlers are thin.
type MasterDataHandler struct {
	masterData service.MasterDataService
	log        *logrus.Logger
}

func NewMasterDataHandler(masterData service.MasterDataService, log *logrus.Logger) *MasterDataHandler {
	return &MasterDataHandler{masterData: masterData, log: log}
}

func (h *MasterDataHandler) RegisterRoutes(router *gin.RouterGroup) {
	staff := middleware.RequireRole(model.RoleAdmin, model.RoleBuyer)
	admin := middleware.RequireRole(model.RoleAdmin)

	categorias := router.Group("/api/categorias")
	{
		categorias.GET("", staff, h.ListCategories)
		categorias.POST("", admin, h.CreateCategory)
		categorias.PUT("/:id", admin, h.UpdateCategory)
	}

	unidades := router.Group("/api/unidades")
	{
		unidades.GET("", staff, h.ListUnits)
		unidades.POST("", admin, h.CreateUnit)
		unidades.PUT("/:id", admin, h.UpdateUnit)
	}

	condiciones := router.Group("/api/condiciones-pago")
	{
		condiciones.GET("", staff, h.ListPaymentTerms)
		condiciones.POST("", admin, h.CreatePaymentTerm)
		condiciones.PUT("/:id", admin, h.UpdatePaymentTerm)
	}
}

func includeInactive(c *gin.Context) bool {
	return c.Query("todas") == "true"
}

func (h *MasterDataHandler) respond(c *gin.Context, data interface{}, err error) {
	if err != nil {
		c.JSON(http.StatusBadRequest, response.ErrWithMessage("PAYLOAD_INVALIDO", err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.OK(data))
}

// ListCategories lists item categories
// @Summary      List categories
// @Tags         maestros
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /api/categorias [get]
func (h *MasterDataHandler) ListCategories(c *gin.Context) {
	data, err := h.masterData.ListCategories(c.Request.Context(), includeInactive(c))
	h.respond(c, data, err)
}

func (h *MasterDataHandler) CreateCategory(c *gin.Context) {
	var req service.MasterDataPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrWithMessage("PAYLOAD_INVALIDO", err.Error()))
		return
	}
	data, err := h.masterData.CreateCategory(c.Request.Context(), req)
	h.respond(c, data, err)
}

func (h *MasterDataHandler) UpdateCategory(c *gin.Context) {
	var req service.MasterDataUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrWithMessage("PAYLOAD_INVALIDO", err.Error()))
		return
	}
	data, err := h.masterData.UpdateCategory(c.Request.Context(), c.Param("id"), req)
	h.respond(c, data, err)
}

// ListUnits lists units of measure
// @Summary      List units
// @Tags         maestros
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /api/unidades [get]
func (h *MasterDataHandler) ListUnits(c *gin.Context) {
	data, err := h.masterData.ListUnits(c.Request.Context(), includeInactive(c))
	h.respond(c, data, err)
}

func (h *MasterDataHandler) CreateUnit(c *gin.Context) {
	var req service.MasterDataPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrWithMessage("PAYLOAD_INVALIDO", err.Error()))
		return
	}
	data, err := h.masterData.CreateUnit(c.Request.Context(), req)
	h.respond(c, data, err)
}

func (h *MasterDataHandler) UpdateUnit(c *gin.Context) {
	var req service.MasterDataUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrWithMessage("PAYLOAD_INVALIDO", err.Error()))
		return
	}
	data, err := h.masterData.UpdateUnit(c.Request.Context(), c.Param("id"), req)
	h.respond(c, data, err)
}

// ListPaymentTerms lists payment terms
// @Summary      List payment terms
// @Tags         maestros
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /api/condiciones-pago [get]
func (h *MasterDataHandler) ListPaymentTerms(c *gin.Context) {
	data, err := h.masterData.ListPaymentTerms(c.Request.Context(), includeInactive(c))
	h.respond(c, data, err)
}

func (h *MasterDataHandler) CreatePaymentTerm(c *gin.Context) {
	var req service.MasterDataPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrWithMessage("PAYLOAD_INVALIDO", err.Error()))
		return
	}
	data, err := h.masterData.CreatePaymentTerm(c.Request.Context(), req)
	h.respond(c, data, err)
}

func (h *MasterDataHandler) UpdatePaymentTerm(c *gin.Context) {
	var req service.MasterDataUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrWithMessage("PAYLOAD_INVALIDO", err.Error()))
		return
	}
	data, err := h.masterData.UpdatePaymentTerm(c.Request.Context(), c.Param("id"), req)
	h.respond(c, data, err)
}
