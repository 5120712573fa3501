package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	JWTSecret string // HS256 key used to verify access tokens

	Location         *time.Location // viewer time zone for day bucketing (default: Local)
	RecentWindowDays int            // days counted as "recent" (default: 7)
	ActivityDays     int            // days in the daily activity series (default: 7)

	SessionIdleTTL time.Duration // release a user's mirror after this much inactivity (default: 30m)
	ReapInterval   time.Duration // how often idle sessions are checked (default: 1m)

	ImportFile     string        // optional bookmarks.yaml to import, empty = importer disabled
	ImportUser     string        // user that receives imported bookmarks (required with ImportFile)
	ImportInterval time.Duration // interval between imports (default: 24h)

	RateBurst  int // mutation burst per user (default: 20)
	RatePerMin int // sustained mutations per minute per user (default: 60)

	Redis RedisConfig

	AllowedCIDRS   []string // optional, restrict infra endpoints to these networks
	AllowedOrigins []string // browser origins allowed for CORS and the stream (supports *.example.com)
	TrustProxy     bool     // true => trust X-Forwarded-For headers (e.g. cloudflared)
}

type RedisConfig struct {
	Addr             string        // ex: "localhost:6379"
	User             string        // optional
	Password         string        // optional
	PasswordRequired bool          // true => require password, false => allow empty password
	DB               int           // Redis DB number
	DialTimeout      time.Duration // ex: 5s
	ReadTimeout      time.Duration // ex: 3s
	WriteTimeout     time.Duration // ex: 3s
	MaxWait          time.Duration // max wait between retries (ex: 10s)
	PingTimeout      time.Duration // timeout for each ping attempt (ex: 5s)
	PoolSize         int           // connection pool size
	ConnectTimeout   time.Duration // total time to retry connecting (ex: 30s)
	RetryInterval    time.Duration // initial wait between retries (ex: 2s, grows exponentially)
	WarnThreshold    int           // warn after this many attempts
}

// Load reads the full service configuration. It panics on missing or
// invalid required values.
func Load() *Config {
	cfg := &Config{
		// Server settings
		ListenPort:      getenv("MARKS_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("MARKS_SHUTDOWN_TIMEOUT", 5*time.Second),

		// Logging
		LogLevel:  getenv("MARKS_LOG_LEVEL", "info"),
		PrettyLog: mustBool("MARKS_PRETTY_LOG", true),

		// Auth
		JWTSecret: LoadJWTSecret(),

		// Analytics
		Location:         mustLocation("MARKS_TIMEZONE", "Local"),
		RecentWindowDays: getenvInt("MARKS_RECENT_WINDOW_DAYS", 7),
		ActivityDays:     getenvInt("MARKS_ACTIVITY_DAYS", 7),

		// Sessions
		SessionIdleTTL: mustDuration("MARKS_SESSION_IDLE_TTL", 30*time.Minute),
		ReapInterval:   mustDuration("MARKS_REAP_INTERVAL", time.Minute),

		// Import
		ImportFile:     getenv("MARKS_IMPORT_FILE", ""),
		ImportUser:     getenv("MARKS_IMPORT_USER", ""),
		ImportInterval: mustDuration("MARKS_IMPORT_INTERVAL", 24*time.Hour),

		// Rate limiting
		RateBurst:  getenvInt("MARKS_RATE_BURST", 20),
		RatePerMin: getenvInt("MARKS_RATE_PER_MIN", 60),

		Redis: LoadRedis(),

		// Access restrictions
		AllowedCIDRS:   parseAllowedIPs(getenv("MARKS_ALLOWED_CIDRS", "")),
		AllowedOrigins: splitAndTrim(getenv("MARKS_ALLOWED_ORIGINS", "")),
		TrustProxy:     mustBool("MARKS_TRUST_PROXY", true),
	}

	if cfg.ImportFile != "" && cfg.ImportUser == "" {
		panic("❌ FATAL: MARKS_IMPORT_USER is required when MARKS_IMPORT_FILE is set")
	}
	if cfg.RecentWindowDays <= 0 || cfg.ActivityDays <= 0 {
		panic("❌ FATAL: MARKS_RECENT_WINDOW_DAYS and MARKS_ACTIVITY_DAYS must be > 0")
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		cfgCopy := *cfg
		cfgCopy.JWTSecret = "***REDACTED***"
		cfgCopy.Redis = cfg.Redis.redacted()
		log.Printf("[DEBUG] cfg: %+v\n", cfgCopy)
	}

	return cfg
}

// LoadRedis reads only the Redis settings. The import command uses it on its own.
func LoadRedis() RedisConfig {
	rc := RedisConfig{
		Addr:             requireEnv("MARKS_REDIS_ADDR"),
		User:             getenv("MARKS_REDIS_USERNAME", "default"),
		PasswordRequired: mustBool("MARKS_REDIS_PASSWORD_REQUIRED", true),
		Password:         getenv("MARKS_REDIS_PASSWORD", ""),
		DB:               getenvInt("MARKS_REDIS_DB", 0),
		DialTimeout:      mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		ReadTimeout:      mustDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		WriteTimeout:     mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		MaxWait:          mustDuration("REDIS_MAX_WAIT", 10*time.Second),
		PingTimeout:      mustDuration("REDIS_PING_TIMEOUT", 5*time.Second),
		PoolSize:         getenvInt("REDIS_POOL_SIZE", 10),
		ConnectTimeout:   mustDuration("REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RetryInterval:    mustDuration("REDIS_RETRY_INTERVAL", 2*time.Second),
		WarnThreshold:    getenvInt("REDIS_WARN_THRESHOLD", 3),
	}

	if rc.PasswordRequired && rc.Password == "" {
		panic("❌ FATAL: MARKS_REDIS_PASSWORD is required when MARKS_REDIS_PASSWORD_REQUIRED=true")
	}
	return rc
}

// LoadJWTSecret reads the token signing key. The token command uses it on its own.
func LoadJWTSecret() string {
	return requireEnv("MARKS_JWT_SECRET")
}

func (rc RedisConfig) redacted() RedisConfig {
	rc.Password = "***REDACTED***"
	if rc.User != "" {
		rc.User = "***REDACTED***"
	}
	return rc
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func requireEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
	}
	return v
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

// mustLocation loads an IANA zone name. Unlike the other helpers an invalid
// value is fatal.
func mustLocation(key, def string) *time.Location {
	name := getenv(key, def)
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(fmt.Sprintf("❌ FATAL: Invalid time zone for %s: %s", key, name))
	}
	return loc
}

func parseAllowedIPs(allowed string) []string {
	if allowed == "" {
		return nil
	}
	ips := make([]string, 0, 4)
	for _, ip := range splitAndTrim(allowed) {
		if ip != "" {
			ips = append(ips, ip)
		}
	}
	return ips
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
