package handler

import (
	"errors"
	"net/http"

	"compras-backend/internal/middleware"
	"compras-backend/internal/model"
	"compras-backend/internal/service"
	"compras-backend/pkg/pagination"
	"compras-backend/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type SupplierHandler struct {
	supplierService service.SupplierService
	log             *logrus.Logger
}

func NewSupplierHandler(supplierService service.SupplierService, log *logrus.Logger) *SupplierHandler {
	return &SupplierHandler{supplierService: supplierService, log: log}
}

func (h *SupplierHandler) RegisterRoutes(router *gin.RouterGroup) {
	staff := middleware.RequireRole(model.RoleAdmin, model.RoleBuyer)
	proveedores := router.Group("/api/proveedores")
	{
		proveedores.GET("", staff, h.ListSuppliers)
		proveedores.POST("", staff, h.CreateSupplier)
		proveedores.GET("/:id", staff, h.GetSupplier)
		proveedores.PUT("/:id", staff, h.UpdateSupplier)
		proveedores.DELETE("/:id", middleware.RequireRole(model.RoleAdmin), h.DeleteSupplier)
	}
}

// ListSuppliers returns paginated suppliers with optional search
// @Summary      List suppliers
// @Tags         proveedores
// @Security     BearerAuth
// @Produce      json
// @Param        page    query  int     false  "Page number"
// @Param        limit   query  int     false  "Items per page"
// @Param        search  query  string  false  "Search by name, tax ID or contact"
// @Success      200  {object}  response.Response
// @Router       /api/proveedores [get]
func (h *SupplierHandler) ListSuppliers(c *gin.Context) {
	params := pagination.Parse(c)
	suppliers, total, err := h.supplierService.ListSuppliers(c.Request.Context(), c.Query("search"), params.Page, params.Limit)
	if err != nil {
		h.log.WithError(err).Error("supplier list failed")
		c.JSON(http.StatusInternalServerError, response.Err(service.CodeServerError))
		return
	}
	c.JSON(http.StatusOK, response.Paginated(suppliers, params.Page, params.Limit, total))
}

// CreateSupplier creates a supplier
// @Summary      Create supplier
// @Tags         proveedores
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body  service.CreateSupplierRequest  true  "Supplier payload"
// @Success      201  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/proveedores [post]
func (h *SupplierHandler) CreateSupplier(c *gin.Context) {
	var req service.CreateSupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrWithMessage("PAYLOAD_INVALIDO", err.Error()))
		return
	}

	supplier, err := h.supplierService.CreateSupplier(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.ErrWithMessage("PAYLOAD_INVALIDO", err.Error()))
		return
	}
	c.JSON(http.StatusCreated, response.OK(supplier))
}

// GetSupplier returns a supplier
// @Summary      Get supplier
// @Tags         proveedores
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  string  true  "Supplier ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/proveedores/{id} [get]
func (h *SupplierHandler) GetSupplier(c *gin.Context) {
	supplier, err := h.supplierService.GetSupplier(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, response.ErrWithMessage("NO_ENCONTRADO", "Proveedor no encontrado"))
			return
		}
		c.JSON(http.StatusBadRequest, response.ErrWithMessage("PAYLOAD_INVALIDO", err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.OK(supplier))
}

// UpdateSupplier updates supplier fields
// @Summary      Update supplier
// @Tags         proveedores
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path  string                         true  "Supplier ID"
// @Param        payload  body  service.UpdateSupplierRequest  true  "Fields to update"
// @Success      200  {object}  response.Response
// @Router       /api/proveedores/{id} [put]
func (h *SupplierHandler) UpdateSupplier(c *gin.Context) {
	var req service.UpdateSupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrWithMessage("PAYLOAD_INVALIDO", err.Error()))
		return
	}

	supplier, err := h.supplierService.UpdateSupplier(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, response.ErrWithMessage("NO_ENCONTRADO", "Proveedor no encontrado"))
			return
		}
		c.JSON(http.StatusBadRequest, response.ErrWithMessage("PAYLOAD_INVALIDO", err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.OK(supplier))
}

// DeleteSupplier soft-deletes a supplier
// @Summary      Delete supplier
// @Tags         proveedores
// @Security     BearerAuth
// @Param        id  path  string  true  "Supplier ID"
// @Success      200  {object}  response.Response
// @Router       /api/proveedores/{id} [delete]
func (h *SupplierHandler) DeleteSupplier(c *gin.Context) {
	if err := h.supplierService.DeleteSupplier(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrWithMessage("PAYLOAD_INVALIDO", err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.OK(gin.H{"deleted": true}))
}
