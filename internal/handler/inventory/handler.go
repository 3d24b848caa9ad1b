package inventory

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/medisuite/hms-api/internal/handler"
	"github.com/medisuite/hms-api/internal/middleware"
	"github.com/medisuite/hms-api/internal/model"
	"github.com/medisuite/hms-api/internal/service/inventory"
)

type Handler struct {
	inventorySvc *inventory.Service
}

func NewHandler(inventorySvc *inventory.Service) *Handler {
	return &Handler{inventorySvc: inventorySvc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	read := middleware.RequirePermission("inventory:read")
	write := middleware.RequirePermission("inventory:write")
	r.POST("", write, h.Create)
	r.GET("", read, h.List)
	r.GET("/:id", read, h.Get)
	r.PATCH("/:id", write, h.Update)
	r.POST("/:id/adjust", write, h.AdjustStock)
	r.DELETE("/:id", write, h.Delete)
}

func (h *Handler) Create(c *gin.Context) {
	var req model.CreateSupplyItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	item, err := h.inventorySvc.CreateItem(c.Request.Context(), middleware.UserID(c), &req)
	if err != nil {
		handler.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(item))
}

func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid item ID"))
		return
	}

	item, err := h.inventorySvc.GetItem(c.Request.Context(), id)
	if err != nil {
		handler.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(item))
}

func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid item ID"))
		return
	}

	var req model.UpdateSupplyItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	item, err := h.inventorySvc.UpdateItem(c.Request.Context(), middleware.UserID(c), id, &req)
	if err != nil {
		handler.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(item))
}

func (h *Handler) AdjustStock(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid item ID"))
		return
	}

	var req model.AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	item, err := h.inventorySvc.AdjustStock(c.Request.Context(), middleware.UserID(c), id, &req)
	if err != nil {
		handler.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(item))
}

func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid item ID"))
		return
	}

	if err := h.inventorySvc.DeleteItem(c.Request.Context(), middleware.UserID(c), id); err != nil {
		handler.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(nil))
}

func (h *Handler) List(c *gin.Context) {
	filters := &model.SupplyItemFilters{
		Category: c.Query("category"),
		LowStock: c.Query("low_stock") == "true",
	}
	if v := c.Query("supplier_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid supplier_id"))
			return
		}
		filters.SupplierID = id
	}

	items, err := h.inventorySvc.ListItems(c.Request.Context(), filters)
	if err != nil {
		handler.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(items))
}
