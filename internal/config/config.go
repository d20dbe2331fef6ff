package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database  DatabaseConfig
	Server    ServerConfig
	Session   SessionConfig
	Security  SecurityConfig
	RateLimit RateLimitConfig
	Captcha   CaptchaConfig
	Email     EmailConfig
}

type DatabaseConfig struct {
	Host              string
	Port              int
	User              string
	Password          string
	Name              string
	SSLMode           string
	MaxConns          int32
	MinConns          int32
	MaxConnLifetime   time.Duration
	MaxConnIdleTime   time.Duration
	HealthCheckPeriod time.Duration
}

type ServerConfig struct {
	Port           string
	Env            string
	Debug          bool
	LogLevel       string
	AllowedOrigins []string
	TrustedProxies []string
}

type SessionConfig struct {
	JWTSecret string
	MaxAge    time.Duration
}

// SecurityConfig drives the failed-attempt tracker and account lockout.
type SecurityConfig struct {
	LockoutThreshold  int           // failures within FailureWindow that trigger a lock
	FailureWindow     time.Duration // trailing window counted toward the threshold
	LockoutDuration   time.Duration
	AttemptRetention  time.Duration // failed attempts older than this are swept
	CleanupInterval   time.Duration
}

// RateLimitConfig drives the in-process request limiter. RedisAddr empty
// means the process-local counter store is used.
type RateLimitConfig struct {
	LoginMaxAttempts    int
	LoginWindow         time.Duration
	RegisterMaxAttempts int
	RegisterWindow      time.Duration
	APIMaxAttempts      int
	APIWindow           time.Duration
	EdgeLoginPerWindow  int // httprate limit on the login endpoint
	EdgeRegisterPerHour int // httprate limit on the register endpoint
	RedisAddr           string
	RedisPassword       string
	RedisDB             int
}

type CaptchaConfig struct {
	SecretKey string
	VerifyURL string
	MinScore  float64
}

type EmailConfig struct {
	AWSRegion    string
	FromAddress  string
	AdminAddress string
	DashboardURL string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	jwtSecret := getEnv("SESSION_SECRET", "")
	if jwtSecret == "" {
		return nil, fmt.Errorf("SESSION_SECRET is required")
	}

	env := getEnv("ENV", "development")

	cfg := &Config{
		Database: DatabaseConfig{
			Host:              getEnv("DB_HOST", "localhost"),
			Port:              getEnvAsInt("DB_PORT", 5432),
			User:              getEnv("DB_USER", "postgres"),
			Password:          getEnv("DB_PASSWORD", ""),
			Name:              getEnv("DB_NAME", "macacolandia"),
			SSLMode:           getEnv("DB_SSLMODE", "disable"),
			MaxConns:          int32(getEnvAsInt("DB_MAX_CONNS", 25)),
			MinConns:          int32(getEnvAsInt("DB_MIN_CONNS", 5)),
			MaxConnLifetime:   getEnvAsDuration("DB_MAX_CONN_LIFETIME", 5*time.Minute),
			MaxConnIdleTime:   getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 1*time.Minute),
			HealthCheckPeriod: getEnvAsDuration("DB_HEALTH_CHECK_PERIOD", 1*time.Minute),
		},
		Server: ServerConfig{
			Port:           getEnv("PORT", "8080"),
			Env:            env,
			Debug:          getEnvAsBool("DEBUG", false),
			LogLevel:       getEnv("LOG_LEVEL", "info"),
			AllowedOrigins: parseAllowedOrigins(env),
			TrustedProxies: parseList(getEnv("TRUSTED_PROXIES", "")),
		},
		Session: SessionConfig{
			JWTSecret: jwtSecret,
			MaxAge:    getEnvAsDuration("SESSION_MAX_AGE", 30*24*time.Hour),
		},
		Security: SecurityConfig{
			LockoutThreshold: getEnvAsInt("LOCKOUT_THRESHOLD", 5),
			FailureWindow:    getEnvAsDuration("FAILURE_WINDOW", 15*time.Minute),
			LockoutDuration:  getEnvAsDuration("LOCKOUT_DURATION", 15*time.Minute),
			AttemptRetention: getEnvAsDuration("ATTEMPT_RETENTION", 24*time.Hour),
			CleanupInterval:  getEnvAsDuration("SECURITY_CLEANUP_INTERVAL", 1*time.Hour),
		},
		RateLimit: RateLimitConfig{
			LoginMaxAttempts:    getEnvAsInt("RATE_LIMIT_LOGIN_MAX", 5),
			LoginWindow:         getEnvAsDuration("RATE_LIMIT_LOGIN_WINDOW", 5*time.Minute),
			RegisterMaxAttempts: getEnvAsInt("RATE_LIMIT_REGISTER_MAX", 10),
			RegisterWindow:      getEnvAsDuration("RATE_LIMIT_REGISTER_WINDOW", 1*time.Hour),
			APIMaxAttempts:      getEnvAsInt("RATE_LIMIT_API_MAX", 100),
			APIWindow:           getEnvAsDuration("RATE_LIMIT_API_WINDOW", 1*time.Minute),
			EdgeLoginPerWindow:  getEnvAsInt("RATE_LIMIT_EDGE_LOGIN", 10),
			EdgeRegisterPerHour: getEnvAsInt("RATE_LIMIT_EDGE_REGISTER", 5),
			RedisAddr:           getEnv("REDIS_ADDR", ""),
			RedisPassword:       getEnv("REDIS_PASSWORD", ""),
			RedisDB:             getEnvAsInt("REDIS_DB", 0),
		},
		Captcha: CaptchaConfig{
			SecretKey: getEnv("RECAPTCHA_SECRET_KEY", ""),
			VerifyURL: getEnv("RECAPTCHA_VERIFY_URL", "https://www.google.com/recaptcha/api/siteverify"),
			MinScore:  getEnvAsFloat("RECAPTCHA_MIN_SCORE", 0.5),
		},
		Email: EmailConfig{
			AWSRegion:    getEnv("AWS_REGION", "us-east-1"),
			FromAddress:  getEnv("EMAIL_FROM", ""),
			AdminAddress: getEnv("ADMIN_EMAIL", ""),
			DashboardURL: getEnv("DASHBOARD_URL", "http://localhost:3000"),
		},
	}

	if cfg.Database.Password == "" {
		return nil, fmt.Errorf("DB_PASSWORD is required")
	}

	if err := validateSessionSecret(jwtSecret, env); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validateSessionSecret enforces minimum security standards for the session
// signing secret.
func validateSessionSecret(secret, env string) error {
	minLength := 16
	if env == "production" {
		minLength = 32
	}

	if len(secret) < minLength {
		return fmt.Errorf("SESSION_SECRET must be at least %d characters in %s environment (got %d)",
			minLength, env, len(secret))
	}

	weakSecrets := []string{
		"secret", "test", "password", "12345", "changeme",
		"admin", "root", "default", "example",
	}

	secretLower := strings.ToLower(secret)
	for _, weak := range weakSecrets {
		if secretLower == weak {
			return fmt.Errorf("SESSION_SECRET cannot be a common weak value")
		}
	}

	return nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultVal
}

func getEnvAsFloat(key string, defaultVal float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultVal
}

func parseList(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	for i, part := range parts {
		parts[i] = strings.TrimSpace(part)
	}
	return parts
}

func parseAllowedOrigins(env string) []string {
	if env == "production" {
		originsStr := getEnv("ALLOWED_ORIGINS", "")
		if originsStr == "" {
			return []string{}
		}
		origins := strings.Split(originsStr, ",")
		for i, origin := range origins {
			origins[i] = strings.TrimSpace(origin)
		}
		return origins
	}

	// Development: allow localhost variants
	return []string{
		"http://localhost:3000",
		"http://localhost:8080",
		"http://localhost:5173",
		"http://127.0.0.1:3000",
		"http://127.0.0.1:8080",
		"http://127.0.0.1:5173",
	}
}
