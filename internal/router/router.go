package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/medisuite/hms-api/internal/accesscontrol"
	appointmenthandler "github.com/medisuite/hms-api/internal/handler/appointment"
	audithandler "github.com/medisuite/hms-api/internal/handler/audit"
	authhandler "github.com/medisuite/hms-api/internal/handler/auth"
	checkinhandler "github.com/medisuite/hms-api/internal/handler/checkin"
	healthhandler "github.com/medisuite/hms-api/internal/handler/health"
	inventoryhandler "github.com/medisuite/hms-api/internal/handler/inventory"
	laborderhandler "github.com/medisuite/hms-api/internal/handler/laborder"
	patienthandler "github.com/medisuite/hms-api/internal/handler/patient"
	prescriptionhandler "github.com/medisuite/hms-api/internal/handler/prescription"
	rolehandler "github.com/medisuite/hms-api/internal/handler/role"
	userhandler "github.com/medisuite/hms-api/internal/handler/user"
	"github.com/medisuite/hms-api/internal/middleware"
	"github.com/medisuite/hms-api/internal/service/auth"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Auth         *authhandler.Handler
	Health       *healthhandler.Handler
	User         *userhandler.Handler
	Patient      *patienthandler.Handler
	Appointment  *appointmenthandler.Handler
	CheckIn      *checkinhandler.Handler
	Prescription *prescriptionhandler.Handler
	LabOrder     *laborderhandler.Handler
	Inventory    *inventoryhandler.Handler
	Audit        *audithandler.Handler
	Role         *rolehandler.Handler
}

// New builds the HTTP surface. Everything under /api/v1 except auth and
// health requires a valid token and passes the role route guard.
func New(h Handlers, authSvc *auth.Service, limiter *middleware.RateLimiter) *gin.Engine {
	registerValidations()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS())
	r.Use(limiter.Middleware())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/api/v1")

	h.Auth.RegisterRoutes(v1.Group("/auth"))
	h.Health.RegisterRoutes(v1.Group("/health"))

	protected := v1.Group("")
	protected.Use(middleware.Authenticate(authSvc))
	protected.Use(middleware.RouteGuard())

	h.User.RegisterRoutes(protected.Group("/users", middleware.RequireRole(accesscontrol.RoleAdmin)))
	protected.GET("/profile", h.User.Me)
	h.Patient.RegisterRoutes(protected.Group("/patients"))
	h.Appointment.RegisterRoutes(protected.Group("/appointments"))
	h.CheckIn.RegisterRoutes(protected.Group("/checkins"))
	h.Prescription.RegisterRoutes(protected.Group("/prescriptions"))
	h.LabOrder.RegisterRoutes(protected.Group("/lab-orders"))
	h.Inventory.RegisterRoutes(protected.Group("/inventory"))
	h.Audit.RegisterRoutes(protected.Group("/audit"))
	h.Role.RegisterRoutes(protected.Group("/roles"))

	return r
}
