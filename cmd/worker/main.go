package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/medisuite/hms-api/config"
	"github.com/medisuite/hms-api/internal/email"
	"github.com/medisuite/hms-api/internal/model"
	"github.com/medisuite/hms-api/internal/repository"
	"github.com/medisuite/hms-api/internal/repository/postgres"
	"github.com/medisuite/hms-api/pkg/logger"
	"github.com/medisuite/hms-api/pkg/messaging"
	redisbroker "github.com/medisuite/hms-api/pkg/messaging/redis"
	"github.com/medisuite/hms-api/pkg/metrics"
	"github.com/medisuite/hms-api/pkg/worker"
)

// workerConfig is read from the environment; the worker runs headless
// and carries no config file.
type workerConfig struct {
	DBHost     string `envconfig:"DB_HOST" default:"localhost"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" required:"true"`
	DBPassword string `envconfig:"DB_PASSWORD" required:"true"`
	DBName     string `envconfig:"DB_NAME" required:"true"`
	DBSSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`

	RedisURL string `envconfig:"REDIS_URL" default:"redis://localhost:6379"`

	SMTPHost     string `envconfig:"SMTP_HOST"`
	SMTPPort     int    `envconfig:"SMTP_PORT" default:"587"`
	SMTPUser     string `envconfig:"SMTP_USER"`
	SMTPPassword string `envconfig:"SMTP_PASSWORD"`
	EmailFrom    string `envconfig:"EMAIL_FROM"`

	RetentionDays int `envconfig:"OUTBOX_RETENTION_DAYS" default:"30"`
}

func main() {
	procLogger := logger.Setup(&logger.Config{Level: zerolog.InfoLevel})

	var cfg workerConfig
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatal().Err(err).Msg("failed to read environment")
	}

	db, err := postgres.NewDB(config.DatabaseConfig{
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		Name:     cfg.DBName,
		SSLMode:  cfg.DBSSLMode,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	broker, err := redisbroker.NewRedisBroker(redisbroker.Config{
		URL:          cfg.RedisURL,
		MaxRetries:   3,
		RetryBackoff: 100 * time.Millisecond,
		PoolSize:     10,
		MinIdleConns: 2,
	}, &procLogger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer broker.Close()

	outboxRepo := postgres.NewOutboxRepository(db)
	patientRepo := postgres.NewPatientRepository(db)
	m := metrics.NewMetrics("hms_worker")
	processor := worker.NewOutboxProcessor(outboxRepo, broker, m)

	var mailer *email.Service
	if cfg.SMTPHost != "" {
		mailer = email.NewService(config.EmailConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUser,
			Password: cfg.SMTPPassword,
			From:     cfg.EmailFrom,
		})
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go processor.Run(ctx)
	go notifyLoop(ctx, broker, patientRepo, mailer)
	go purgeLoop(ctx, outboxRepo, cfg.RetentionDays)

	log.Info().Msg("worker started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("worker stopping")
	cancel()
}

// notifyLoop mails patients on the events that concern them. Mail
// failures are logged and dropped; the event channel is best effort.
func notifyLoop(ctx context.Context, broker messaging.Broker, patientRepo repository.PatientRepository, mailer *email.Service) {
	if mailer == nil {
		return
	}

	events, err := broker.Subscribe(ctx, "hms.events")
	if err != nil {
		log.Error().Err(err).Msg("failed to subscribe to events")
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case raw, ok := <-events:
			if !ok {
				return
			}
			handleEvent(ctx, raw, patientRepo, mailer)
		}
	}
}

func handleEvent(ctx context.Context, raw []byte, patientRepo repository.PatientRepository, mailer *email.Service) {
	var msg struct {
		Type    string          `json:"type"`
		Payload json.RawMessage `json:"payload"`
	}
	if err := json.Unmarshal(raw, &msg); err != nil {
		log.Warn().Err(err).Msg("unreadable event")
		return
	}

	switch msg.Type {
	case "appointment.created":
		var apt model.Appointment
		if err := json.Unmarshal(msg.Payload, &apt); err != nil {
			log.Warn().Err(err).Msg("unreadable appointment payload")
			return
		}
		patient, err := patientRepo.Get(ctx, apt.PatientID)
		if err != nil {
			log.Warn().Err(err).Str("patient_id", apt.PatientID.String()).Msg("patient lookup failed")
			return
		}
		if err := mailer.SendAppointmentConfirmation(patient, &apt); err != nil {
			log.Error().Err(err).Msg("confirmation mail failed")
		}
	case "laborder.completed":
		var order model.LabOrder
		if err := json.Unmarshal(msg.Payload, &order); err != nil {
			log.Warn().Err(err).Msg("unreadable lab order payload")
			return
		}
		patient, err := patientRepo.Get(ctx, order.PatientID)
		if err != nil {
			log.Warn().Err(err).Str("patient_id", order.PatientID.String()).Msg("patient lookup failed")
			return
		}
		if err := mailer.SendLabResultNotification(patient, &order); err != nil {
			log.Error().Err(err).Msg("result mail failed")
		}
	}
}

// purgeLoop trims processed outbox rows past the retention window.
func purgeLoop(ctx context.Context, outboxRepo repository.OutboxRepository, retentionDays int) {
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cutoff := time.Now().AddDate(0, 0, -retentionDays)
			n, err := outboxRepo.DeleteProcessedBefore(ctx, cutoff)
			if err != nil {
				log.Error().Err(err).Msg("outbox purge failed")
				continue
			}
			log.Info().Int64("deleted", n).Msg("outbox purged")
		}
	}
}
