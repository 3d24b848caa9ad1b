package laborder

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/medisuite/hms-api/internal/handler"
	"github.com/medisuite/hms-api/internal/middleware"
	"github.com/medisuite/hms-api/internal/model"
	"github.com/medisuite/hms-api/internal/service/laborder"
)

type Handler struct {
	labOrderSvc *laborder.Service
}

func NewHandler(labOrderSvc *laborder.Service) *Handler {
	return &Handler{labOrderSvc: labOrderSvc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	read := middleware.RequirePermission("lab_orders:read")
	write := middleware.RequirePermission("lab_orders:write")
	r.POST("", write, h.Create)
	r.GET("", read, h.List)
	r.GET("/:id", read, h.Get)
	r.PATCH("/:id", write, h.Update)
}

func (h *Handler) Create(c *gin.Context) {
	var req model.CreateLabOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	order, err := h.labOrderSvc.CreateLabOrder(c.Request.Context(), middleware.UserID(c), &req)
	if err != nil {
		handler.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(order))
}

func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid lab order ID"))
		return
	}

	order, err := h.labOrderSvc.GetLabOrder(c.Request.Context(), id)
	if err != nil {
		handler.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(order))
}

func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid lab order ID"))
		return
	}

	var req model.UpdateLabOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	order, err := h.labOrderSvc.UpdateLabOrder(c.Request.Context(), middleware.UserID(c), id, &req)
	if err != nil {
		handler.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(order))
}

func (h *Handler) List(c *gin.Context) {
	filters := &model.LabOrderFilters{}
	if v := c.Query("patient_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid patient_id"))
			return
		}
		filters.PatientID = id
	}
	if v := c.Query("ordered_by"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid ordered_by"))
			return
		}
		filters.OrderedBy = id
	}
	if v := c.Query("status"); v != "" {
		filters.Status = model.LabOrderStatus(v)
	}

	orders, err := h.labOrderSvc.ListLabOrders(c.Request.Context(), filters)
	if err != nil {
		handler.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(orders))
}
