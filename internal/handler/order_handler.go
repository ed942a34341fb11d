package handler

import (
	"errors"
	"net/http"
	"strconv"

	"compras-backend/internal/middleware"
	"compras-backend/internal/model"
	"compras-backend/internal/pdf"
	"compras-backend/internal/repository"
	"compras-backend/internal/service"
	"compras-backend/pkg/pagination"
	"compras-backend/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type OrderHandler struct {
	orderService service.OrderService
	log          *logrus.Logger
}

func NewOrderHandler(orderService service.OrderService, log *logrus.Logger) *OrderHandler {
	return &OrderHandler{orderService: orderService, log: log}
}

func (h *OrderHandler) RegisterRoutes(router *gin.RouterGroup) {
	staff := middleware.RequireRole(model.RoleAdmin, model.RoleBuyer)
	ordenes := router.Group("/api/ordenes")
	{
		ordenes.GET("", staff, h.ListOrders)
		ordenes.POST("", staff, h.CreateOrder)
		ordenes.GET("/:id", staff, h.GetOrder)
		ordenes.PUT("/:id", staff, h.UpdateOrder)
		ordenes.DELETE("/:id", middleware.RequireRole(model.RoleAdmin), h.DeleteOrder)
		ordenes.POST("/:id/completar", staff, h.CompleteOrder)
		ordenes.POST("/:id/retirar-revision", staff, h.WithdrawFromReview)
		ordenes.GET("/:id/pdf", staff, h.OrderPDF)
	}
}

func currentUserID(c *gin.Context) *uuid.UUID {
	raw, ok := c.Get("userID")
	if !ok {
		return nil
	}
	s, ok := raw.(string)
	if !ok {
		return nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return nil
	}
	return &id
}

func (h *OrderHandler) respondError(c *gin.Context, err error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, response.ErrWithMessage("NO_ENCONTRADO", "Orden no encontrada"))
		return
	}
	switch {
	case errors.Is(err, service.ErrOrderNotEditable),
		errors.Is(err, service.ErrOrderNotDeletable),
		errors.Is(err, service.ErrOrderNotApproved),
		errors.Is(err, service.ErrOrderInReviewEdit):
		c.JSON(http.StatusBadRequest, response.ErrWithMessage(service.CodeInvalidState, err.Error()))
	default:
		c.JSON(http.StatusBadRequest, response.ErrWithMessage("PAYLOAD_INVALIDO", err.Error()))
	}
}

// ListOrders returns paginated orders with optional filters
// @Summary      List purchase orders
// @Tags         ordenes
// @Security     BearerAuth
// @Produce      json
// @Param        page      query  int     false  "Page number"
// @Param        limit     query  int     false  "Items per page"
// @Param        status    query  int     false  "Filter by status code (1..5)"
// @Param        supplier  query  string  false  "Filter by supplier ID"
// @Param        search    query  string  false  "Search by order number"
// @Success      200  {object}  response.Response
// @Router       /api/ordenes [get]
func (h *OrderHandler) ListOrders(c *gin.Context) {
	params := pagination.Parse(c)

	filter := repository.OrderFilter{Search: c.Query("search")}
	if raw := c.Query("status"); raw != "" {
		if code, err := strconv.Atoi(raw); err == nil {
			status := model.OrderStatus(code)
			filter.Status = &status
		}
	}
	if raw := c.Query("supplier"); raw != "" {
		if id, err := uuid.Parse(raw); err == nil {
			filter.SupplierID = &id
		}
	}

	orders, total, err := h.orderService.ListOrders(c.Request.Context(), filter, params.Page, params.Limit)
	if err != nil {
		h.log.WithError(err).Error("order list failed")
		c.JSON(http.StatusInternalServerError, response.Err(service.CodeServerError))
		return
	}
	c.JSON(http.StatusOK, response.Paginated(orders, params.Page, params.Limit, total))
}

// CreateOrder creates a purchase order with its line items
// @Summary      Create purchase order
// @Tags         ordenes
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body  service.CreateOrderRequest  true  "Order payload"
// @Success      201  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/ordenes [post]
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req service.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrWithMessage("PAYLOAD_INVALIDO", err.Error()))
		return
	}

	order, err := h.orderService.CreateOrder(c.Request.Context(), req, currentUserID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.OK(order))
}

// GetOrder returns one order with items and relations
// @Summary      Get purchase order
// @Tags         ordenes
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  string  true  "Order ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/ordenes/{id} [get]
func (h *OrderHandler) GetOrder(c *gin.Context) {
	order, err := h.orderService.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.OK(order))
}

// UpdateOrder updates the mutable fields of an order still in Created state
// @Summary      Update purchase order
// @Tags         ordenes
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path  string                      true  "Order ID"
// @Param        payload  body  service.UpdateOrderRequest  true  "Fields to update"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/ordenes/{id} [put]
func (h *OrderHandler) UpdateOrder(c *gin.Context) {
	var req service.UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrWithMessage("PAYLOAD_INVALIDO", err.Error()))
		return
	}

	order, err := h.orderService.UpdateOrder(c.Request.Context(), c.Param("id"), req, currentUserID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.OK(order))
}

// DeleteOrder removes an order still in Created state
// @Summary      Delete purchase order
// @Tags         ordenes
// @Security     BearerAuth
// @Param        id  path  string  true  "Order ID"
// @Success      200  {object}  response.Response
// @Router       /api/ordenes/{id} [delete]
func (h *OrderHandler) DeleteOrder(c *gin.Context) {
	if err := h.orderService.DeleteOrder(c.Request.Context(), c.Param("id"), currentUserID(c)); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.OK(gin.H{"deleted": true}))
}

// CompleteOrder marks an approved order as fulfilled
// @Summary      Complete purchase order
// @Tags         ordenes
// @Security     BearerAuth
// @Param        id  path  string  true  "Order ID"
// @Success      200  {object}  response.Response
// @Router       /api/ordenes/{id}/completar [post]
func (h *OrderHandler) CompleteOrder(c *gin.Context) {
	order, err := h.orderService.CompleteOrder(c.Request.Context(), c.Param("id"), currentUserID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.OK(order))
}

// WithdrawFromReview invalidates the live approval link and returns the order to Created
// @Summary      Withdraw order from review
// @Tags         ordenes
// @Security     BearerAuth
// @Param        id  path  string  true  "Order ID"
// @Success      200  {object}  response.Response
// @Router       /api/ordenes/{id}/retirar-revision [post]
func (h *OrderHandler) WithdrawFromReview(c *gin.Context) {
	order, err := h.orderService.WithdrawFromReview(c.Request.Context(), c.Param("id"), currentUserID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.OK(order))
}

// OrderPDF renders the printable purchase-order document
// @Summary      Purchase order PDF
// @Tags         ordenes
// @Security     BearerAuth
// @Produce      application/pdf
// @Param        id  path  string  true  "Order ID"
// @Success      200
// @Router       /api/ordenes/{id}/pdf [get]
func (h *OrderHandler) OrderPDF(c *gin.Context) {
	order, err := h.orderService.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	doc, err := pdf.RenderOrder(order)
	if err != nil {
		h.log.WithError(err).Error("order pdf render failed")
		c.JSON(http.StatusInternalServerError, response.Err(service.CodeServerError))
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+order.OrderNumber+`.pdf"`)
	c.Data(http.StatusOK, "application/pdf", doc)
}
