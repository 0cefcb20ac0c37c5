package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Collaborator names, also the DNS names the default base URLs point at.
// The gateway keeps the name it is deployed under.
const (
	UserService         = "user-service"
	CourseService       = "course-service"
	EnrollmentService   = "enrollment-service"
	PaymentService      = "payment-service"
	NotificationService = "notification-service"
	Gateway             = "swagger-ui"
)

// ServiceNames lists the collaborators behind the gateway in display order.
var ServiceNames = []string{
	UserService,
	CourseService,
	EnrollmentService,
	PaymentService,
	NotificationService,
}

type Config struct {
	Env          string
	Port         int
	ServiceName  string
	StoreBackend string

	DBURL string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	TokenSecret string

	AdminEmail    string
	AdminPassword string
	AdminName     string

	// ServiceURLs maps collaborator name to base URL.
	ServiceURLs map[string]string

	NotifyTimeout  time.Duration
	ProbeTimeout   time.Duration
	ForwardTimeout time.Duration

	MaxBodyBytes   int64
	AllowedOrigins []string
}

// Load reads the process environment (and a .env file when present).
// serviceName is the binary's default SERVICE_NAME.
func Load(serviceName string) Config {
	// best effort: a missing .env just means real env vars are used
	_ = godotenv.Load()

	return Config{
		Env:          getEnv("APP_ENV", "dev"),
		Port:         getEnvInt("PORT", 8000),
		ServiceName:  getEnv("SERVICE_NAME", serviceName),
		StoreBackend: strings.ToLower(getEnv("STORE_BACKEND", "memory")),

		DBURL: buildDBURL(),

		RedisAddr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		TokenSecret: getEnv("TOKEN_SECRET", "learnhub-dev-secret"),

		AdminEmail:    getEnv("ADMIN_EMAIL", ""),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),
		AdminName:     getEnv("ADMIN_NAME", "Admin"),

		ServiceURLs: loadServiceURLs(),

		NotifyTimeout:  getEnvDuration("NOTIFY_TIMEOUT", 5*time.Second),
		ProbeTimeout:   getEnvDuration("PROBE_TIMEOUT", 5*time.Second),
		ForwardTimeout: getEnvDuration("FORWARD_TIMEOUT", 30*time.Second),

		MaxBodyBytes:   int64(getEnvInt("MAX_BODY_BYTES", 10<<20)),
		AllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "")),
	}
}

// EnvKey returns the variable overriding a collaborator's base URL,
// e.g. "payment-service" -> "PAYMENT_SERVICE_URL".
func EnvKey(service string) string {
	return strings.ToUpper(strings.ReplaceAll(service, "-", "_")) + "_URL"
}

// DefaultURL is the base URL used when EnvKey(service) is unset.
func DefaultURL(service string) string {
	return "http://" + service + ":8000"
}

func loadServiceURLs() map[string]string {
	urls := make(map[string]string, len(ServiceNames))

	for _, name := range ServiceNames {
		urls[name] = strings.TrimRight(getEnv(EnvKey(name), DefaultURL(name)), "/")
	}

	return urls
}

func buildDBURL() string {
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		return dsn
	}

	host := getEnv("DB_HOST", "127.0.0.1")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "learnhub")
	pass := getEnv("DB_PASSWORD", "learnhub")
	name := getEnv("DB_NAME", "learnhub")
	ssl := getEnv("DB_SSLMODE", "disable")

	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=" + ssl
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		num, err := strconv.Atoi(v)

		if err != nil {
			slog.Warn("invalid integer env var, using default", "key", key, "value", v, "default", fallback)
			return fallback
		}

		return num
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)

		if err != nil || d <= 0 {
			slog.Warn("invalid duration env var, using default", "key", key, "value", v, "default", fallback)
			return fallback
		}

		return d
	}
	return fallback
}

func splitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
