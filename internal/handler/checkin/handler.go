package checkin

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/medisuite/hms-api/internal/handler"
	"github.com/medisuite/hms-api/internal/middleware"
	"github.com/medisuite/hms-api/internal/model"
	"github.com/medisuite/hms-api/internal/service/checkin"
	"github.com/medisuite/hms-api/internal/service/qrcode"
)

type Handler struct {
	checkinSvc *checkin.Service
	qrSvc      *qrcode.Service
}

func NewHandler(checkinSvc *checkin.Service, qrSvc *qrcode.Service) *Handler {
	return &Handler{checkinSvc: checkinSvc, qrSvc: qrSvc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	read := middleware.RequirePermission("checkins:read")
	write := middleware.RequirePermission("checkins:write")
	r.POST("", write, h.Create)
	r.POST("/scan", write, h.Scan)
	r.GET("", read, h.List)
	r.GET("/queue", read, h.Queue)
	r.GET("/:id", read, h.Get)
	r.PATCH("/:id/status", write, h.UpdateStatus)
}

func (h *Handler) Create(c *gin.Context) {
	var req model.CreateCheckInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	checkIn, err := h.checkinSvc.CreateCheckIn(c.Request.Context(), &req)
	if err != nil {
		handler.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(checkIn))
}

type scanRequest struct {
	// Raw QR payload, or just the printed check-in code.
	Payload string `json:"payload"`
	Code    string `json:"code"`
}

// Scan checks a patient in from a scanned QR payload or a typed code.
func (h *Handler) Scan(c *gin.Context) {
	var req scanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	var appointmentID uuid.UUID
	switch {
	case req.Payload != "":
		payload, err := qrcode.ParsePayload([]byte(req.Payload))
		if err != nil {
			handler.AbortWithError(c, err)
			return
		}
		if payload.Code != "" {
			apt, err := h.qrSvc.ResolveCode(c.Request.Context(), payload.Code)
			if err != nil {
				handler.AbortWithError(c, err)
				return
			}
			appointmentID = apt.ID
		} else {
			// Codeless payloads check in by appointment reference alone.
			appointmentID = payload.AppointmentID
		}
	case req.Code != "":
		apt, err := h.qrSvc.ResolveCode(c.Request.Context(), req.Code)
		if err != nil {
			handler.AbortWithError(c, err)
			return
		}
		appointmentID = apt.ID
	default:
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("payload or code is required"))
		return
	}

	checkIn, err := h.checkinSvc.CreateCheckIn(c.Request.Context(), &model.CreateCheckInRequest{
		AppointmentID: &appointmentID,
	})
	if err != nil {
		handler.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(checkIn))
}

func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid check-in ID"))
		return
	}

	checkIn, err := h.checkinSvc.GetCheckIn(c.Request.Context(), id)
	if err != nil {
		handler.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(checkIn))
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid check-in ID"))
		return
	}

	var req model.UpdateCheckInStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	checkIn, err := h.checkinSvc.UpdateStatus(c.Request.Context(), id, &req)
	if err != nil {
		handler.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(checkIn))
}

func (h *Handler) List(c *gin.Context) {
	filters := &model.CheckInFilters{}
	if v := c.Query("patient_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid patient_id"))
			return
		}
		filters.PatientID = id
	}
	if v := c.Query("status"); v != "" {
		filters.Status = model.CheckInStatus(v)
	}
	if v := c.Query("date"); v != "" {
		day, err := time.ParseInLocation("2006-01-02", v, time.Local)
		if err != nil {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid date, expected YYYY-MM-DD"))
			return
		}
		filters.QueueDate = day
	}

	checkIns, err := h.checkinSvc.ListCheckIns(c.Request.Context(), filters)
	if err != nil {
		handler.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(checkIns))
}

// Queue returns today's queue in consultation order.
func (h *Handler) Queue(c *gin.Context) {
	checkIns, err := h.checkinSvc.TodayQueue(c.Request.Context())
	if err != nil {
		handler.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(checkIns))
}
