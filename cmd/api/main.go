package main

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	validator "github.com/go-playground/validator/v10"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/extra/redisotel/v9"
	redis "github.com/redis/go-redis/v9"
	limiter "github.com/ulule/limiter/v3"
	limiterstdlib "github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	limiterredis "github.com/ulule/limiter/v3/drivers/store/redis"

	"github.com/mvrcosta/backend-loja/internal/cart"
	"github.com/mvrcosta/backend-loja/internal/catalog"
	"github.com/mvrcosta/backend-loja/internal/checkout"
	"github.com/mvrcosta/backend-loja/internal/common"
	"github.com/mvrcosta/backend-loja/internal/config"
	"github.com/mvrcosta/backend-loja/internal/events"
	"github.com/mvrcosta/backend-loja/internal/health"
	"github.com/mvrcosta/backend-loja/internal/identity"
	"github.com/mvrcosta/backend-loja/internal/obs"
	"github.com/mvrcosta/backend-loja/internal/payment"
	"github.com/mvrcosta/backend-loja/internal/security"
	"github.com/mvrcosta/backend-loja/internal/tasks"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logFormat := envOrDefault("OBS_LOG_FORMAT", "json")
	logLevel := envOrDefault("OBS_LOG_LEVEL", "info")
	logger := obs.NewLogger(logFormat, logLevel).With().Str("env", cfg.AppEnv).Logger()

	metricsNamespace := envOrDefault("OBS_METRICS_NAMESPACE", "loja")
	metricsEnabled := envBool("OBS_ENABLE_PROMETHEUS", true)
	obs.MustRegisterDomainMetrics(metricsNamespace, nil)

	tracingEnabled := envBool("OBS_ENABLE_TRACING", true)
	if tracingEnabled {
		sampling := envFloat("OBS_TRACING_SAMPLING_RATIO", 1.0)
		shutdown, err := obs.InitTracer(context.Background(), obs.TracingConfig{
			ServiceName:   "loja-api",
			Endpoint:      envOrDefault("OBS_OTLP_ENDPOINT", ""),
			Exporter:      envOrDefault("OBS_TRACING_EXPORTER", "otlp"),
			SamplingRatio: sampling,
			Environment:   cfg.AppEnv,
		})
		if err != nil {
			logger.Error().Err(err).Msg("initialise tracing")
			tracingEnabled = false
		} else {
			defer func() {
				if err := shutdown(context.Background()); err != nil {
					logger.Error().Err(err).Msg("shutdown tracer")
				}
			}()
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse redis url")
	}
	redisClient := redis.NewClient(redisOpts)
	if err := redisotel.InstrumentTracing(redisClient); err != nil {
		logger.Error().Err(err).Msg("instrument redis tracing")
	}
	if metricsEnabled {
		if err := redisotel.InstrumentMetrics(redisClient); err != nil {
			logger.Error().Err(err).Msg("instrument redis metrics")
		}
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Error().Err(err).Msg("close redis")
		}
	}()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal().Err(err).Msg("ping redis")
	}

	taskClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     redisOpts.Addr,
		Password: redisOpts.Password,
		DB:       redisOpts.DB,
	})
	defer func() {
		if err := taskClient.Close(); err != nil {
			logger.Error().Err(err).Msg("close task client")
		}
	}()

	catalogSvc := &catalog.Service{
		Source: catalog.StaticSource{Products: catalog.DefaultProducts()},
		Cache:  catalog.NewCache(redisClient, cfg.CatalogCacheTTL),
	}
	catalogHandler := &catalog.Handler{Svc: catalogSvc}

	cartSvc := &cart.Service{
		Store:   cart.RedisStore{Client: redisClient, TTL: cfg.CartTTL},
		Catalog: catalogSvc,
		Logger:  logger,
	}
	cartHandler := &cart.Handler{Svc: cartSvc, PixDiscountBPS: cfg.PixDiscountBPS}

	bus := &events.Bus{
		Store:     events.RedisStreamStore{Client: redisClient},
		Notifiers: []events.Notifier{events.LogNotifier{Logger: logger}},
	}

	gateway := payment.MercadoPago{
		PublicKey:   cfg.MercadoPagoPublicKey,
		AccessToken: cfg.MercadoPagoAccessToken,
		BaseURL:     cfg.MercadoPagoBaseURL,
		Sandbox:     cfg.PaymentSandbox,
		PixExpiry:   cfg.PixExpiry,
		Approver:    payment.RateApprover{Rate: cfg.CardApprovalRate},
	}
	paymentSvc := &payment.Service{
		Gateway:   gateway,
		Charges:   payment.ChargeStore{Client: redisClient, TTL: cfg.ChargeTTL},
		Scheduler: tasks.Scheduler{Client: taskClient},
		Events:    bus,
		Logger:    logger,
	}
	paymentHandler := &payment.Handler{Svc: paymentSvc}

	orch := &checkout.Orchestrator{
		Sessions:        checkout.NewRegistry(),
		Cart:            cartSvc,
		Gateway:         paymentSvc,
		Events:          bus,
		Validate:        validator.New(),
		Logger:          logger,
		PixDiscountBPS:  cfg.PixDiscountBPS,
		MaxInstallments: cfg.MaxInstallments,
		Currency:        cfg.CurrencyCode,
	}
	checkoutHandler := &checkout.Handler{Orch: orch, Identity: identity.HeaderProvider{}}

	idem := common.Idem{R: redisClient, TTL: cfg.IdempotencyTTL}

	confirmRate, err := limiter.NewRateFromFormatted(cfg.ConfirmRateLimit)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse confirm rate limit")
	}
	limiterStore, err := limiterredis.NewStoreWithOptions(redisClient, limiter.StoreOptions{Prefix: "limiter:confirm"})
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise rate limit store")
	}
	confirmLimiter := limiterstdlib.NewMiddleware(limiter.New(limiterStore, confirmRate))

	var httpMetrics *obs.HTTPMetrics
	if metricsEnabled {
		buckets := obs.ParseBucketsCSV(envOrDefault("OBS_METRICS_BUCKETS_MS", ""))
		httpMetrics = obs.NewHTTPMetrics(metricsNamespace, buckets, nil)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(security.Headers{Enable: envBool("SECURE_HEADERS", true)}.Middleware)
	r.Use(security.BodyLimit{Max: int64(envInt("SECURE_MAX_BODY_BYTES", 1<<20))}.Middleware)
	r.Use(obs.RoutePatternMiddleware)
	if tracingEnabled {
		r.Use(obs.TracingMiddleware)
	}
	if metricsEnabled && httpMetrics != nil {
		r.Use(obs.HTTPObs{Metrics: httpMetrics}.Middleware)
	}
	r.Use(common.SessionMiddleware)
	r.Use(identity.Middleware)
	r.Use(obs.RequestLogger{Logger: logger}.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins(cfg),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Idempotency-Key", common.SessionHeader, identity.HeaderPayerName, identity.HeaderPayerEmail},
		ExposedHeaders:   []string{common.SessionHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}
	if envBool("OBS_ENABLE_PPROF", true) {
		user := envOrDefault("SECURE_PPROF_BASIC_AUTH_USER", "")
		pass := envOrDefault("SECURE_PPROF_BASIC_AUTH_PASS", "")
		r.Mount("/debug/pprof", protectPprof(newPprofMux(), user, pass))
	}

	healthHandler := health.Handler{
		Checker:      health.RedisChecker{Client: redisClient},
		RedisTimeout: envDurationMillis("HEALTH_READY_REDIS_TIMEOUT_MS", 300),
	}
	r.Get("/health/live", healthHandler.Live)
	r.Get("/health/ready", healthHandler.Ready)

	r.Route("/api/v1", func(v chi.Router) {
		v.Get("/products", catalogHandler.List)
		v.Get("/products/{id}", catalogHandler.Get)

		v.Route("/cart", func(c chi.Router) {
			c.Get("/", cartHandler.Get)
			c.Group(func(g chi.Router) {
				g.Use(idem.Middleware)
				g.Post("/items", cartHandler.AddItem)
				g.Patch("/items/{productId}", cartHandler.UpdateItem)
				g.Delete("/items/{productId}", cartHandler.RemoveItem)
				g.Delete("/", cartHandler.Clear)
			})
		})

		v.Route("/checkout", func(c chi.Router) {
			c.Get("/", checkoutHandler.State)
			c.Post("/shipping", checkoutHandler.SubmitShipping)
			c.Post("/payment-method", checkoutHandler.SelectPayment)
			c.With(idem.Middleware, confirmLimiter.Handler).Post("/confirm", checkoutHandler.Confirm)
			c.Post("/back", checkoutHandler.Back)
			c.Post("/cancel", checkoutHandler.Cancel)
		})

		v.Get("/payments/pix/{chargeID}", paymentHandler.GetPixCharge)
	})

	srv := &http.Server{
		Addr:    cfg.HTTPAddr(),
		Handler: r,
	}

	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		<-shutdownCtx.Done()
		health.SetReady(false)
		drainCtx, drainCancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer drainCancel()
		if err := srv.Shutdown(drainCtx); err != nil {
			logger.Error().Err(err).Msg("shutdown server")
		}
	}()

	logger.Info().Str("addr", srv.Addr).Msg("server starting")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal().Err(err).Msg("server exited unexpectedly")
	}
	logger.Info().Msg("server shutdown complete")
}

func allowedOrigins(cfg *config.Config) []string {
	if len(cfg.CORSAllowedOrigins) == 0 {
		return []string{"*"}
	}
	return cfg.CORSAllowedOrigins
}

func envOrDefault(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		trimmed := strings.TrimSpace(val)
		if trimmed != "" {
			return trimmed
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if val, ok := os.LookupEnv(key); ok {
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "1", "t", "true", "yes", "on":
			return true
		case "0", "f", "false", "no", "off":
			return false
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseFloat(strings.TrimSpace(val), 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(strings.TrimSpace(val)); err == nil {
			return parsed
		}
	}
	return fallback
}

func envDurationMillis(key string, fallback int) time.Duration {
	return time.Duration(envInt(key, fallback)) * time.Millisecond
}

func newPprofMux() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", pprof.Index)
	mux.HandleFunc("/cmdline", pprof.Cmdline)
	mux.HandleFunc("/profile", pprof.Profile)
	mux.HandleFunc("/symbol", pprof.Symbol)
	mux.HandleFunc("/trace", pprof.Trace)
	mux.Handle("/allocs", pprof.Handler("allocs"))
	mux.Handle("/block", pprof.Handler("block"))
	mux.Handle("/goroutine", pprof.Handler("goroutine"))
	mux.Handle("/heap", pprof.Handler("heap"))
	mux.Handle("/mutex", pprof.Handler("mutex"))
	mux.Handle("/threadcreate", pprof.Handler("threadcreate"))
	return mux
}

func protectPprof(handler http.Handler, user, pass string) http.Handler {
	user = strings.TrimSpace(user)
	pass = strings.TrimSpace(pass)
	if user == "" {
		return handler
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, p, ok := r.BasicAuth()
		if !ok || subtle.ConstantTimeCompare([]byte(u), []byte(user)) != 1 || subtle.ConstantTimeCompare([]byte(p), []byte(pass)) != 1 {
			w.Header().Set("WWW-Authenticate", "Basic realm=restricted")
			http.Error(w, "unauthorised", http.StatusUnauthorized)
			return
		}
		handler.ServeHTTP(w, r)
	})
}
