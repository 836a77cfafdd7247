package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort  string
	AppEnv   string
	LogLevel string

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string
	DynamoTables   DynamoTables
	S3BucketName   string

	// JWTSecret is the single HS256 signing secret. JWTSecretFromLegacy is set
	// when it was read from SECRET_KEY instead of JWT_SECRET.
	JWTSecret           string
	JWTSecretFromLegacy bool
	JWTExpiry           time.Duration

	AuthCookieName    string
	AuthCookieSecure  bool
	AuthRejectBlocked bool

	OTPTTL                  time.Duration
	RecoveryRequireVerified bool
	ResetGrantTTL           time.Duration
	TicketStore             string // "dynamo" | "redis"
	RedisURL                string

	SMTPHost       string
	SMTPPort       string
	SMTPFrom       string
	SMTPUsername   string
	SMTPPassword   string
	SNSRegion      string
	GoogleClientID string
	AllowedOrigins []string // CORS allowed origins
	// TrustProxy honours X-Forwarded-For / X-Real-Ip. Enable only behind a proxy
	// that overwrites them.
	TrustProxy bool
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	Users           string
	Jobs            string
	Newsletters     string
	RecoveryTickets string
}

// Load reads all configuration from environment variables.
func Load() *Config {
	secret, legacy := jwtSecret()
	return &Config{
		AppPort:  getEnv("APP_PORT", "8000"),
		AppEnv:   getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		DynamoTables: DynamoTables{
			Users:           getEnv("DYNAMO_TABLE_USERS", "users"),
			Jobs:            getEnv("DYNAMO_TABLE_JOBS", "jobs"),
			Newsletters:     getEnv("DYNAMO_TABLE_NEWSLETTERS", "newsletters"),
			RecoveryTickets: getEnv("DYNAMO_TABLE_RECOVERY_TICKETS", "recovery_tickets"),
		},
		S3BucketName: getEnv("S3_BUCKET_NAME", "jobboard-files"),

		JWTSecret:           secret,
		JWTSecretFromLegacy: legacy,
		JWTExpiry:           time.Duration(getEnvInt("JWT_EXPIRY_HOURS", 24)) * time.Hour,

		AuthCookieName:    getEnv("AUTH_COOKIE_NAME", "token"),
		AuthCookieSecure:  getEnvBool("AUTH_COOKIE_SECURE", false),
		AuthRejectBlocked: getEnvBool("AUTH_REJECT_BLOCKED", false),

		OTPTTL:                  time.Duration(getEnvInt("OTP_TTL_SECONDS", 600)) * time.Second,
		RecoveryRequireVerified: getEnvBool("RECOVERY_REQUIRE_VERIFIED", true),
		ResetGrantTTL:           time.Duration(getEnvInt("RESET_GRANT_TTL_SECONDS", 600)) * time.Second,
		TicketStore:             getEnv("TICKET_STORE", "dynamo"),
		RedisURL:                getEnv("REDIS_URL", "redis://localhost:6379/0"),

		SMTPHost:       getEnv("SMTP_HOST", "localhost"),
		SMTPPort:       getEnv("SMTP_PORT", "1025"),
		SMTPFrom:       getEnv("SMTP_FROM", "noreply@example.com"),
		SMTPUsername:   getEnv("SMTP_USERNAME", ""),
		SMTPPassword:   getEnv("SMTP_PASSWORD", ""),
		SNSRegion:      getEnv("SNS_REGION", "us-east-1"),
		GoogleClientID: getEnv("GOOGLE_CLIENT_ID", ""),
		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "http://localhost:5173"), ","),
		TrustProxy:     getEnvBool("TRUST_PROXY", false),
	}
}

// IsDevelopment reports whether the app runs in the development environment.
func (c *Config) IsDevelopment() bool { return c.AppEnv == "development" }

// jwtSecret prefers JWT_SECRET and falls back to the legacy SECRET_KEY.
func jwtSecret() (string, bool) {
	if v := os.Getenv("JWT_SECRET"); v != "" {
		return v, false
	}
	if v := os.Getenv("SECRET_KEY"); v != "" {
		return v, true
	}
	return "", false
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
