package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/macacolandia/dashboard-api/internal/auth"
	"github.com/macacolandia/dashboard-api/internal/background"
	"github.com/macacolandia/dashboard-api/internal/captcha"
	"github.com/macacolandia/dashboard-api/internal/config"
	"github.com/macacolandia/dashboard-api/internal/database"
	"github.com/macacolandia/dashboard-api/internal/handlers"
	"github.com/macacolandia/dashboard-api/internal/middleware"
	"github.com/macacolandia/dashboard-api/internal/models"
	"github.com/macacolandia/dashboard-api/internal/ratelimit"
	"github.com/macacolandia/dashboard-api/internal/repositories"
	"github.com/macacolandia/dashboard-api/internal/routes"
	"github.com/macacolandia/dashboard-api/internal/services"
	pkgauth "github.com/macacolandia/dashboard-api/pkg/auth"
	pkghttp "github.com/macacolandia/dashboard-api/pkg/http"
	pkglogger "github.com/macacolandia/dashboard-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(cfg.Server),
	}))
	slog.SetDefault(logger)

	logger.Info("configuration loaded", slog.String("env", cfg.Server.Env))

	if err := database.Migrate(&cfg.Database); err != nil {
		logger.Error("failed to run migrations", slog.Any("error", err))
		os.Exit(1)
	}

	db, err := database.NewConnection(&cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	// Repositories
	accountRepo := repositories.NewAccountRepository(db)
	registrationRepo := repositories.NewRegistrationRepository(db)
	lockoutRepo := repositories.NewLockoutRepository(db)
	securityLogRepo := repositories.NewSecurityLogRepository(db)
	activityLogRepo := repositories.NewActivityLogRepository(db)
	economyRepo := repositories.NewEconomyRepository(db)

	// Rate limiting: a shared Redis counter store when configured,
	// otherwise process-local memory.
	var counterStore ratelimit.CounterStore
	if cfg.RateLimit.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RateLimit.RedisAddr,
			Password: cfg.RateLimit.RedisPassword,
			DB:       cfg.RateLimit.RedisDB,
		})
		counterStore = ratelimit.NewRedisStore(client)
		logger.Info("rate limiting backed by redis", slog.String("addr", cfg.RateLimit.RedisAddr))
	} else {
		counterStore = ratelimit.NewMemoryStore()
	}
	limiter := ratelimit.NewLimiter(counterStore, map[ratelimit.Action]ratelimit.Rule{
		ratelimit.ActionLogin:    {MaxAttempts: cfg.RateLimit.LoginMaxAttempts, Window: cfg.RateLimit.LoginWindow},
		ratelimit.ActionRegister: {MaxAttempts: cfg.RateLimit.RegisterMaxAttempts, Window: cfg.RateLimit.RegisterWindow},
		ratelimit.ActionAPI:      {MaxAttempts: cfg.RateLimit.APIMaxAttempts, Window: cfg.RateLimit.APIWindow},
	}, logger)

	// Services
	alertLogger := pkglogger.NewAlertLogger(logger)
	securityLogService := services.NewSecurityLogService(securityLogRepo, alertLogger, logger)

	lockoutService := services.NewLockoutService(lockoutRepo, services.LockoutConfig{
		Threshold:        cfg.Security.LockoutThreshold,
		FailureWindow:    cfg.Security.FailureWindow,
		LockDuration:     cfg.Security.LockoutDuration,
		AttemptRetention: cfg.Security.AttemptRetention,
	}, logger)

	authService := services.NewAuthService(accountRepo, lockoutService, securityLogService,
		cfg.Security.LockoutThreshold, logger)

	verifier := captcha.NewGoogleVerifier(captcha.Config{
		SecretKey:   cfg.Captcha.SecretKey,
		VerifyURL:   cfg.Captcha.VerifyURL,
		MinScore:    cfg.Captcha.MinScore,
		Environment: cfg.Server.Env,
	}, logger)

	var notifier services.AdminNotifier
	if cfg.Email.FromAddress != "" {
		sesNotifier, err := services.NewSESNotifier(cfg.Email.AWSRegion, cfg.Email.FromAddress,
			cfg.Email.AdminAddress, cfg.Email.DashboardURL, logger)
		if err != nil {
			logger.Error("failed to initialize email notifier", slog.Any("error", err))
			os.Exit(1)
		}
		notifier = sesNotifier
	} else {
		logger.Warn("email notifications disabled, EMAIL_FROM_ADDRESS not set")
	}

	registrationService := services.NewRegistrationService(registrationRepo, accountRepo,
		verifier, securityLogService, notifier, logger)
	userService := services.NewUserService(accountRepo, activityLogRepo, logger)
	economyService := services.NewEconomyService(economyRepo, activityLogRepo, logger)

	// Session
	sessions := auth.NewSessionManager(cfg.Session.JWTSecret, cfg.Session.MaxAge)
	cookieConfig := auth.CookieConfig{
		Secure:   cfg.Server.Env == "production",
		SameSite: "lax",
	}
	proxyConfig := &pkghttp.ProxyConfig{TrustedProxies: cfg.Server.TrustedProxies}

	// Handlers
	h := routes.Handlers{
		Auth: handlers.NewAuthHandler(authService, registrationService, sessions, limiter,
			securityLogService, cookieConfig, proxyConfig,
			cfg.RateLimit.LoginMaxAttempts, cfg.RateLimit.RegisterMaxAttempts),
		AdminUsers:    handlers.NewAdminUserHandler(userService, proxyConfig),
		Registrations: handlers.NewRegistrationHandler(registrationService),
		Logs:          handlers.NewLogHandler(securityLogService, userService),
		Economy:       handlers.NewEconomyHandler(economyService, proxyConfig),
	}

	// Bootstrap first admin account if configured
	bootCtx, bootCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := ensureAdminAccount(bootCtx, accountRepo, logger); err != nil {
		logger.Error("failed to ensure admin account", slog.Any("error", err))
	}
	bootCancel()

	// Background maintenance
	cleanupManager := background.NewCleanupManager([]background.CleanupTask{
		{Name: "lockout_sweep", Run: lockoutService.SweepExpired},
		{Name: "rate_limit_sweep", Run: func(ctx context.Context) (int64, error) {
			removed, err := limiter.Sweep(ctx)
			return int64(removed), err
		}},
	}, cfg.Security.CleanupInterval, logger)

	// Router
	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(middleware.SecurityHeaders(middleware.SecurityHeadersConfig{Env: cfg.Server.Env}))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig(cfg.Server.AllowedOrigins)))
	router.Use(middleware.SecureLogger(logger))
	router.Use(chimiddleware.Recoverer)
	router.Use(chimiddleware.Timeout(60 * time.Second))

	routes.RegisterRoutes(router, h, sessions, accountRepo, cookieConfig, cfg.RateLimit)

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		w.Header().Set("Content-Type", "application/json")
		if err := db.HealthCheck(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"unhealthy","database":"down"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy","database":"up"}`))
	})

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	cleanupCtx, cleanupCancel := context.WithCancel(context.Background())
	defer cleanupCancel()
	go cleanupManager.Start(cleanupCtx)

	go func() {
		logger.Info("starting server", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutdown signal received")

	cleanupCancel()
	cleanupManager.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("server stopped gracefully")
}

func logLevel(server config.ServerConfig) slog.Level {
	if server.Debug {
		return slog.LevelDebug
	}
	switch server.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ensureAdminAccount creates the first admin when ADMIN_EMAIL and
// ADMIN_PASSWORD are set and no account with that email exists yet.
func ensureAdminAccount(ctx context.Context, accounts *repositories.AccountRepository, logger *slog.Logger) error {
	adminEmail := os.Getenv("ADMIN_EMAIL")
	adminPassword := os.Getenv("ADMIN_PASSWORD")

	if adminEmail == "" || adminPassword == "" {
		logger.Info("no ADMIN_EMAIL or ADMIN_PASSWORD set, skipping admin bootstrap")
		return nil
	}

	_, err := accounts.GetByEmail(ctx, adminEmail)
	if err == nil {
		logger.Info("admin account already exists")
		return nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return fmt.Errorf("failed to check for admin account: %w", err)
	}

	hash, err := pkgauth.HashPassword(adminPassword)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	_, err = accounts.Create(ctx, &models.Account{
		Email:        adminEmail,
		Name:         "Admin",
		PasswordHash: hash,
		Role:         models.RoleAdmin,
		Approved:     true,
	})
	if err != nil {
		return fmt.Errorf("failed to create admin account: %w", err)
	}

	logger.Info("admin account created")
	return nil
}
