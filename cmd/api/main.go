package main

import (
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"github.com/smartplaces/community-api/internal/config"
	"github.com/smartplaces/community-api/internal/infra/database"
	"github.com/smartplaces/community-api/internal/infra/http/handlers"
	"github.com/smartplaces/community-api/internal/infra/http/middleware"
	"github.com/smartplaces/community-api/internal/infra/integration/resend"
	"github.com/smartplaces/community-api/internal/infra/integration/twilio"
	"github.com/smartplaces/community-api/internal/infra/mail"
	"github.com/smartplaces/community-api/internal/infra/queue"
	"github.com/smartplaces/community-api/internal/infra/ratelimit"
	"github.com/smartplaces/community-api/internal/usecase"
)

func main() {
	cfg := config.Load()

	log.SetFormatter(&log.JSONFormatter{})

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: cfg.SentryDSN}); err != nil {
			log.WithError(err).Warn("sentry init failed")
		}
		defer sentry.Flush(2 * time.Second)
	}

	db, err := database.NewDBConnection(cfg.DatabaseURL)
	if err != nil {
		log.WithError(err).Fatal("database connection failed")
	}
	defer db.Close()

	rabbitMQ, err := queue.NewRabbitMQ(cfg.RabbitUser, cfg.RabbitPass, cfg.RabbitHost, cfg.RabbitPort)
	if err != nil {
		log.WithError(err).Fatal("rabbitmq connection failed")
	}
	defer rabbitMQ.Conn.Close()
	defer rabbitMQ.Ch.Close()

	// 1. Repositori
	leadRepo := database.NewLeadRepository(db)

	// 2. Rate limiter: memòria per defecte, Redis si hi ha més d'una
	// instància al darrere del balancejador.
	var limiter ratelimit.Limiter
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		limiter = ratelimit.NewRedisWindow(rdb, cfg.RateLimitMax, cfg.RateLimitWindow)
	} else {
		limiter = ratelimit.NewSlidingWindow(cfg.RateLimitMax, cfg.RateLimitWindow)
	}

	// 3. Cua de benvinguda + worker SMTP
	producer := queue.NewProducer(rabbitMQ.Conn, rabbitMQ.Ch)
	mailSender := mail.NewEmailSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.FromEmail)
	worker := queue.NewWorker(rabbitMQ.Ch, mailSender)
	go worker.Start(queue.QueueName)

	// 4. UseCases
	signupUC := usecase.NewSignupLeadUseCase(leadRepo, limiter, producer)

	notifyCfg := usecase.NotifyConfig{
		ResendAPIKey:     cfg.ResendAPIKey,
		FromEmail:        cfg.FromEmail,
		ToEmail:          cfg.ToEmail,
		TwilioAccountSID: cfg.TwilioAccountSID,
		TwilioAuthToken:  cfg.TwilioAuthToken,
		TwilioFromNumber: cfg.TwilioFromNumber,
		AdminPhoneNumber: cfg.AdminPhoneNumber,
	}
	emailAPI := resend.NewClient(cfg.ResendAPIKey)
	smsAPI := twilio.NewClient(cfg.TwilioAccountSID, cfg.TwilioAuthToken)

	leadNotifierUC := usecase.NewLeadNotifier(notifyCfg, emailAPI, smsAPI)
	contactNotifierUC := usecase.NewContactFormNotifier(notifyCfg, emailAPI, smsAPI)

	// 5. Handlers
	signupHandler := handlers.NewSignupHandler(signupUC)
	leadNotifyHandler := handlers.NewNotifyHandler(leadNotifierUC)
	contactNotifyHandler := handlers.NewNotifyHandler(contactNotifierUC)
	healthHandler := handlers.NewHealthHandler(db, rabbitMQ.Conn, cfg)

	// 6. Router
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Client-Info", "apikey"},
	}))
	r.MethodNotAllowed(handlers.MethodNotAllowed)

	r.Post("/community/signup", signupHandler.Handle)
	r.Post("/notify/lead", leadNotifyHandler.Handle)
	r.Post("/notify/contact", contactNotifyHandler.Handle)
	r.Get("/health", healthHandler.Handle)
	r.Handle("/metrics", promhttp.Handler())

	log.WithField("port", cfg.Port).Info("🔥 community API running")
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}
