package role

import (
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"

	"github.com/medisuite/hms-api/internal/accesscontrol"
	"github.com/medisuite/hms-api/internal/handler"
)

// Handler exposes the static role table for clients that render
// role-aware navigation.
type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/:role", h.Get)
}

type roleResponse struct {
	Role        string   `json:"role"`
	DisplayName string   `json:"display_name"`
	Dashboard   string   `json:"dashboard"`
	Permissions []string `json:"permissions"`
}

func (h *Handler) Get(c *gin.Context) {
	name := c.Param("role")
	if !accesscontrol.Valid(name) {
		c.JSON(http.StatusNotFound, handler.NewErrorResponse("role not found"))
		return
	}

	permissions := accesscontrol.Permissions(name)
	sort.Strings(permissions)

	c.JSON(http.StatusOK, handler.NewSuccessResponse(roleResponse{
		Role:        name,
		DisplayName: accesscontrol.DisplayName(name),
		Dashboard:   accesscontrol.DashboardForRole(name),
		Permissions: permissions,
	}))
}
