package main

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/inkflow/inkflow/libs/config"
	"github.com/inkflow/inkflow/libs/db"
	"github.com/inkflow/inkflow/libs/httpx"
	"github.com/inkflow/inkflow/libs/kafkax"
	otelx "github.com/inkflow/inkflow/libs/otel"
	"github.com/inkflow/inkflow/libs/runtime"
	"github.com/inkflow/inkflow/services/booking-service/internal/availability"
	"github.com/inkflow/inkflow/services/booking-service/internal/handlers"
	"github.com/inkflow/inkflow/services/booking-service/internal/outbox"
	"github.com/inkflow/inkflow/services/booking-service/internal/storage"
)

// defaultWeekHours is used until the business_hours table has rows:
// weekdays 09:00-17:00, weekend closed.
func defaultWeekHours() []availability.BusinessHoursRule {
	var rules []availability.BusinessHoursRule
	for wd := time.Monday; wd <= time.Friday; wd++ {
		rules = append(rules, availability.BusinessHoursRule{
			Weekday:     wd,
			OpenMinute:  9 * 60,
			CloseMinute: 17 * 60,
			Open:        true,
		})
	}
	return rules
}

func loadHours(ctx context.Context, repo *storage.HoursRepository, logger *slog.Logger) (*availability.Hours, error) {
	rules, err := repo.Load(ctx)
	if err != nil {
		return nil, err
	}
	if len(rules) == 0 {
		logger.Info("no stored business hours, using weekday defaults")
		rules = defaultWeekHours()
	}
	return availability.NewHours(rules)
}

func splitCSV(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func policyFromEnv() availability.Policy {
	return availability.Policy{
		MinDuration:      config.Minutes("MIN_DURATION_MINUTES", 15*time.Minute),
		MaxDuration:      config.Minutes("MAX_DURATION_MINUTES", 8*time.Hour),
		DefaultDuration:  config.Minutes("DEFAULT_DURATION_MINUTES", 60*time.Minute),
		DefaultBuffer:    config.Minutes("DEFAULT_BUFFER_MINUTES", 15*time.Minute),
		MaxDaysToCheck:   config.Int("MAX_DAYS_TO_CHECK", 30),
		MaxSearchResults: config.Int("MAX_SEARCH_RESULTS", 100),
	}
}

func main() {
	service := config.String("SERVICE_NAME", "booking-service")
	port, err := config.Port("PORT", "8083")
	if err != nil {
		panic(err)
	}
	logger := runtime.NewLogger(service)

	ctx, stop := runtime.SignalContext()
	defer stop()

	otelShutdown, err := otelx.Setup(ctx, otelx.ConfigFromEnv(service))
	if err != nil {
		logger.Error("otel setup failed", "err", err)
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = otelShutdown(shutdownCtx)
		}()
	}

	dbURL, err := config.RequiredString("DATABASE_URL")
	if err != nil {
		panic(err)
	}
	pool, err := db.Open(ctx, dbURL, db.Options{})
	if err != nil {
		logger.Error("db connection failed", "err", err)
		panic(err)
	}
	defer pool.Close()

	repo := storage.NewAppointmentRepository(pool)
	hoursRepo := storage.NewHoursRepository(pool)
	outboxRepo := outbox.NewRepository(pool)

	hours, err := loadHours(ctx, hoursRepo, logger)
	if err != nil {
		logger.Error("business hours load failed", "err", err)
		panic(err)
	}
	coordinator := availability.NewCoordinator(hours, repo, repo, policyFromEnv())

	outboxPublisher := outbox.NewPublisher(pool, outboxRepo, logger, outbox.PublisherConfig{
		Brokers:   config.String("KAFKA_BROKERS", ""),
		PollEvery: 2 * time.Second,
		BatchSize: 50,
	})
	go outboxPublisher.Run(ctx)

	bookingHandler := handlers.NewBookingHandler(repo, outboxRepo, coordinator, logger)
	availabilityHandler := handlers.NewAvailabilityHandler(coordinator, logger)
	hoursHandler := handlers.NewHoursHandler(hours, hoursRepo, logger)

	readyChecks := []runtime.ReadyCheck{
		{Name: "db", Check: db.ReadyCheck(pool)},
	}
	if brokers := config.String("KAFKA_BROKERS", ""); brokers != "" {
		readyChecks = append(readyChecks, runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(brokers)})
	}

	var rdb *redis.Client
	if addr := config.String("REDIS_ADDR", ""); addr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: addr})
		defer rdb.Close()
		readyChecks = append(readyChecks, runtime.ReadyCheck{Name: "redis", Check: httpx.RedisReadyCheck(rdb)})
	}

	mux := runtime.NewBaseMux(readyChecks...)
	mux.HandleFunc("/api/v1/public/slots", availabilityHandler.Slots)
	mux.HandleFunc("/api/v1/public/slots/next", availabilityHandler.NextSlot)
	mux.HandleFunc("/api/v1/public/slots/suggest", availabilityHandler.Suggest)
	mux.HandleFunc("/api/v1/public/book", bookingHandler.Book)
	mux.HandleFunc("/api/v1/appointments", bookingHandler.List)
	mux.HandleFunc("/api/v1/appointments/cancel", bookingHandler.Cancel)
	mux.HandleFunc("/api/v1/appointments/reschedule", bookingHandler.Reschedule)
	mux.Handle("/api/v1/business-hours", hoursHandler)

	middlewares := []httpx.Middleware{
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
		httpx.WithBodyLimit(1 << 20),
		httpx.WithTimeout(30 * time.Second),
		httpx.WithCORS(httpx.CORSPolicy{
			AllowedOrigins: splitCSV(config.String("ALLOWED_ORIGINS", "")),
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
			AllowedHeaders: []string{"Content-Type", "X-Request-Id"},
			MaxAge:         10 * time.Minute,
		}),
	}
	rateLimit := config.Int("RATE_LIMIT_PER_MINUTE", 120)
	if rdb != nil {
		limiter := httpx.NewRedisRateLimiter(rdb, rateLimit, time.Minute, service)
		middlewares = append(middlewares, limiter.Middleware(logger, true))
	} else {
		middlewares = append(middlewares, httpx.NewRateLimiter(rateLimit, time.Minute).Middleware())
	}
	httpHandler := httpx.Chain(mux, middlewares...)
	httpHandler = otelhttp.NewHandler(httpHandler, "booking")

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           httpHandler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server error", "err", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "err", err)
	}
	logger.Info("http server stopped")
}
