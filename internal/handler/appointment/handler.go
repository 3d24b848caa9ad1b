package appointment

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/medisuite/hms-api/internal/handler"
	"github.com/medisuite/hms-api/internal/middleware"
	"github.com/medisuite/hms-api/internal/model"
	"github.com/medisuite/hms-api/internal/service/appointment"
	"github.com/medisuite/hms-api/internal/service/qrcode"
)

const defaultQRSize = 256

type Handler struct {
	appointmentSvc *appointment.Service
	qrSvc          *qrcode.Service
}

func NewHandler(appointmentSvc *appointment.Service, qrSvc *qrcode.Service) *Handler {
	return &Handler{appointmentSvc: appointmentSvc, qrSvc: qrSvc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	read := middleware.RequirePermission("appointments:read")
	write := middleware.RequirePermission("appointments:write")
	r.POST("", write, h.Create)
	r.GET("", read, h.List)
	r.GET("/:id", read, h.Get)
	r.PATCH("/:id", write, h.Update)
	r.POST("/:id/cancel", write, h.Cancel)
	r.DELETE("/:id", write, h.Delete)
	r.GET("/:id/code", read, h.CheckInCode)
	r.GET("/:id/qr", read, h.QRImage)
}

func (h *Handler) Create(c *gin.Context) {
	var req model.CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	apt, err := h.appointmentSvc.CreateAppointment(c.Request.Context(), middleware.UserID(c), &req)
	if err != nil {
		handler.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(apt))
}

func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid appointment ID"))
		return
	}

	apt, err := h.appointmentSvc.GetAppointment(c.Request.Context(), id)
	if err != nil {
		handler.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(apt))
}

func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid appointment ID"))
		return
	}

	var req model.UpdateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	apt, err := h.appointmentSvc.UpdateAppointment(c.Request.Context(), middleware.UserID(c), id, &req)
	if err != nil {
		handler.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(apt))
}

type cancelRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

func (h *Handler) Cancel(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid appointment ID"))
		return
	}

	var req cancelRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	apt, err := h.appointmentSvc.CancelAppointment(c.Request.Context(), middleware.UserID(c), id, req.Reason)
	if err != nil {
		handler.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(apt))
}

func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid appointment ID"))
		return
	}

	if err := h.appointmentSvc.DeleteAppointment(c.Request.Context(), middleware.UserID(c), id); err != nil {
		handler.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(nil))
}

// CheckInCode returns the appointment's check-in code, minting one on
// first request. A null code means generation was exhausted and the
// patient checks in manually.
func (h *Handler) CheckInCode(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid appointment ID"))
		return
	}

	code, err := h.qrSvc.CheckInCode(c.Request.Context(), id)
	if err != nil {
		handler.AbortWithError(c, err)
		return
	}

	apt, err := h.appointmentSvc.GetAppointment(c.Request.Context(), id)
	if err != nil {
		handler.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{
		"code":   code,
		"status": apt.Status,
	}))
}

// QRImage streams the appointment's check-in QR as a PNG.
func (h *Handler) QRImage(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid appointment ID"))
		return
	}

	size := defaultQRSize
	if v := c.Query("size"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 64 || parsed > 1024 {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("size must be between 64 and 1024"))
			return
		}
		size = parsed
	}

	png, err := h.qrSvc.Image(c.Request.Context(), id, size)
	if err != nil {
		handler.AbortWithError(c, err)
		return
	}

	c.Data(http.StatusOK, "image/png", png)
}

func (h *Handler) List(c *gin.Context) {
	filters := &model.AppointmentFilters{}
	if v := c.Query("patient_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid patient_id"))
			return
		}
		filters.PatientID = id
	}
	if v := c.Query("doctor_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid doctor_id"))
			return
		}
		filters.DoctorID = id
	}
	if v := c.Query("status"); v != "" {
		filters.Status = model.AppointmentStatus(v)
	}
	if v := c.Query("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid from, expected RFC 3339"))
			return
		}
		filters.StartDate = t
	}
	if v := c.Query("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid to, expected RFC 3339"))
			return
		}
		filters.EndDate = t
	}

	appointments, err := h.appointmentSvc.ListAppointments(c.Request.Context(), filters)
	if err != nil {
		handler.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(appointments))
}
