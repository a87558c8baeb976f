package config

import (
	"os"
	"strconv"
	"strings"

	"spinwheel/internal/logger"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort     string
	DatabaseURL string
	JWTSecret   string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	LogLevel string
	LogJSON  bool

	// Wheel economics (whole PKR)
	SpinCost       int64
	MultiSpinCost  int64
	MultiSpinCount int
	MinRotations   int
	ExtraRotations int

	// Payments
	MinDeposit      int64
	ReceiverMethod  string
	ReceiverAccount string
	ReceiverName    string

	// Referral reward credited to the referrer per applied code
	ReferralBonus int64

	// Operator accounts allowed to confirm deposits
	AdminUserIDs []int64

	// Rate limits
	APIRateLimit   int
	APIRateWindow  int
	AuthRateLimit  int
	AuthRateWindow int
	SpinRateLimit  int
	SpinRateWindow int
}

// Load reads configuration from the environment (.env honored in dev).
func Load() *Config {
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		logger.Fatal("DATABASE_URL is not set")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		logger.Fatal("JWT_SECRET is not set")
	}

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	return &Config{
		AppPort:     port,
		DatabaseURL: dbURL,
		JWTSecret:   jwtSecret,

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       envInt("REDIS_DB", 0),

		LogLevel: envStr("LOG_LEVEL", "info"),
		LogJSON:  os.Getenv("LOG_JSON") == "true",

		SpinCost:       envInt64("SPIN_COST", 10),
		MultiSpinCost:  envInt64("MULTI_SPIN_COST", 50),
		MultiSpinCount: envInt("MULTI_SPIN_COUNT", 5),
		MinRotations:   envInt("MIN_ROTATIONS", 5),
		ExtraRotations: envInt("EXTRA_ROTATIONS", 3),

		MinDeposit:      envInt64("MIN_DEPOSIT", 200),
		ReceiverMethod:  envStr("RECEIVER_METHOD", "Easypaisa"),
		ReceiverAccount: os.Getenv("RECEIVER_ACCOUNT"),
		ReceiverName:    os.Getenv("RECEIVER_NAME"),

		ReferralBonus: envInt64("REFERRAL_BONUS", 50),

		AdminUserIDs: envIDList("ADMIN_USER_IDS"),

		APIRateLimit:   envInt("API_RATE_LIMIT", 60),
		APIRateWindow:  envInt("API_RATE_WINDOW_SECONDS", 60),
		AuthRateLimit:  envInt("AUTH_RATE_LIMIT", 5),
		AuthRateWindow: envInt("AUTH_RATE_WINDOW_SECONDS", 60),
		SpinRateLimit:  envInt("SPIN_RATE_LIMIT", 60),
		SpinRateWindow: envInt("SPIN_RATE_WINDOW_SECONDS", 60),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

// envIDList parses a comma-separated list of user IDs.
func envIDList(key string) []int64 {
	var ids []int64
	for _, s := range strings.Split(os.Getenv(key), ",") {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if id, err := strconv.ParseInt(s, 10, 64); err == nil {
			ids = append(ids, id)
		}
	}
	return ids
}
