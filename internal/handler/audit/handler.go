package audit

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/medisuite/hms-api/internal/handler"
	"github.com/medisuite/hms-api/internal/middleware"
	"github.com/medisuite/hms-api/internal/model"
	"github.com/medisuite/hms-api/internal/service/audit"
)

type Handler struct {
	auditSvc *audit.Service
}

func NewHandler(auditSvc *audit.Service) *Handler {
	return &Handler{auditSvc: auditSvc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("", middleware.RequirePermission("audit:read"), h.List)
}

func (h *Handler) List(c *gin.Context) {
	filters := &model.AuditLogFilters{
		EntityType: c.Query("entity_type"),
	}
	if v := c.Query("user_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid user_id"))
			return
		}
		filters.UserID = id
	}
	if v := c.Query("entity_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid entity_id"))
			return
		}
		filters.EntityID = id
	}

	logs, err := h.auditSvc.List(c.Request.Context(), filters)
	if err != nil {
		handler.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(logs))
}
