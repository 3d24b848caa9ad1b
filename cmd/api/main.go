package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/medisuite/hms-api/config"
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
	"github.com/medisuite/hms-api/internal/repository/postgres"
	"github.com/medisuite/hms-api/internal/router"
	appointmentsvc "github.com/medisuite/hms-api/internal/service/appointment"
	auditsvc "github.com/medisuite/hms-api/internal/service/audit"
	authsvc "github.com/medisuite/hms-api/internal/service/auth"
	checkinsvc "github.com/medisuite/hms-api/internal/service/checkin"
	eventsvc "github.com/medisuite/hms-api/internal/service/event"
	inventorysvc "github.com/medisuite/hms-api/internal/service/inventory"
	labordersvc "github.com/medisuite/hms-api/internal/service/laborder"
	patientsvc "github.com/medisuite/hms-api/internal/service/patient"
	prescriptionsvc "github.com/medisuite/hms-api/internal/service/prescription"
	qrcodesvc "github.com/medisuite/hms-api/internal/service/qrcode"
	usersvc "github.com/medisuite/hms-api/internal/service/user"
	"github.com/medisuite/hms-api/pkg/logger"
	"github.com/medisuite/hms-api/pkg/metrics"
	"github.com/medisuite/hms-api/pkg/security"
)

const (
	defaultRateLimit = 20.0
	defaultBurst     = 40
	bcryptCost       = 12
)

func main() {
	logger.Setup(nil)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	m := metrics.NewMetrics("hms")
	postgres.SetMetrics(m)

	userRepo := postgres.NewUserRepository(db)
	patientRepo := postgres.NewPatientRepository(db)
	appointmentRepo := postgres.NewAppointmentRepository(db)
	checkinRepo := postgres.NewCheckInRepository(db)
	prescriptionRepo := postgres.NewPrescriptionRepository(db)
	labOrderRepo := postgres.NewLabOrderRepository(db)
	inventoryRepo := postgres.NewInventoryRepository(db)
	auditRepo := postgres.NewAuditRepository(db)
	outboxRepo := postgres.NewOutboxRepository(db)

	hasher := security.NewBcryptHasher(bcryptCost)
	auditService := auditsvc.NewService(auditRepo)
	eventService := eventsvc.NewService(outboxRepo)
	authService := authsvc.NewService(userRepo, hasher, cfg.JWT)
	userService := usersvc.NewService(userRepo, hasher, auditService)
	patientService := patientsvc.NewService(patientRepo, auditService, eventService)
	appointmentService := appointmentsvc.NewService(appointmentRepo, patientRepo, auditService, eventService)
	checkinService := checkinsvc.NewService(checkinRepo, appointmentRepo, eventService, m)
	qrService := qrcodesvc.NewService(appointmentRepo)
	prescriptionService := prescriptionsvc.NewService(prescriptionRepo, patientRepo, auditService, eventService)
	labOrderService := labordersvc.NewService(labOrderRepo, patientRepo, auditService, eventService)
	inventoryService := inventorysvc.NewService(inventoryRepo, auditService, eventService)

	handlers := router.Handlers{
		Auth:         authhandler.NewHandler(authService),
		Health:       healthhandler.NewHandler(db),
		User:         userhandler.NewHandler(userService),
		Patient:      patienthandler.NewHandler(patientService),
		Appointment:  appointmenthandler.NewHandler(appointmentService, qrService),
		CheckIn:      checkinhandler.NewHandler(checkinService, qrService),
		Prescription: prescriptionhandler.NewHandler(prescriptionService),
		LabOrder:     laborderhandler.NewHandler(labOrderService),
		Inventory:    inventoryhandler.NewHandler(inventoryService),
		Audit:        audithandler.NewHandler(auditService),
		Role:         rolehandler.NewHandler(),
	}

	limiter := middleware.NewRateLimiter(defaultRateLimit, defaultBurst)
	engine := router.New(handlers, authService, limiter)

	timeout := time.Duration(cfg.Server.TimeoutSeconds) * time.Second
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
}
