package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string
	AppPort    string
	AppEnv     string
	LogLevel   string

	DBMaxOpenConns int
	DBMaxIdleTime  time.Duration

	JWTSecret string

	Currency              string
	TaxRate               decimal.Decimal
	FreeShippingThreshold decimal.Decimal
	FlatShippingFee       decimal.Decimal
	// PromoCodes maps an upper-cased code to a percentage.
	PromoCodes map[string]decimal.Decimal

	PaymentTimeout    time.Duration
	StripeSecretKey   string
	StripeSuccessURL  string
	StripeCancelURL   string
	RazorpayKeyID     string
	RazorpayKeySecret string

	NotifyDriver     string
	KafkaBrokers     string
	KafkaNotifyTopic string
	WhatsAppBaseURL  string
	WhatsAppUsername string
	WhatsAppPassword string
}

var defaultPromoCodes = "SAVE10:10,SAVE20:20,WELCOME5:5"

func LoadConfig() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		DBHost:     os.Getenv("DB_HOST"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
		DBPort:     os.Getenv("DB_PORT"),
		AppPort:    getenv("APP_PORT", "8080"),
		AppEnv:     os.Getenv("APP_ENV"),
		LogLevel:   os.Getenv("LOG_LEVEL"),

		DBMaxOpenConns: getInt("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleTime:  getDuration("DB_MAX_IDLE_TIME", 5*time.Minute),

		JWTSecret: os.Getenv("JWT_SECRET"),

		Currency:              strings.ToUpper(getenv("CURRENCY", "USD")),
		TaxRate:               getDecimal("TAX_RATE", "0.08"),
		FreeShippingThreshold: getDecimal("FREE_SHIPPING_THRESHOLD", "75"),
		FlatShippingFee:       getDecimal("FLAT_SHIPPING_FEE", "9.99"),
		PromoCodes:            ParsePromoCodes(getenv("PROMO_CODES", defaultPromoCodes)),

		PaymentTimeout:    getDuration("PAYMENT_TIMEOUT", 15*time.Second),
		StripeSecretKey:   os.Getenv("STRIPE_SECRET_KEY"),
		StripeSuccessURL:  os.Getenv("STRIPE_SUCCESS_URL"),
		StripeCancelURL:   os.Getenv("STRIPE_CANCEL_URL"),
		RazorpayKeyID:     os.Getenv("RAZORPAY_KEY_ID"),
		RazorpayKeySecret: os.Getenv("RAZORPAY_KEY_SECRET"),

		NotifyDriver:     strings.ToLower(getenv("NOTIFY_DRIVER", "log")),
		KafkaBrokers:     os.Getenv("KAFKA_BROKERS"),
		KafkaNotifyTopic: getenv("KAFKA_NOTIFY_TOPIC", "orders.confirmed"),
		WhatsAppBaseURL:  os.Getenv("WHATSAPP_BASE_URL"),
		WhatsAppUsername: os.Getenv("WHATSAPP_USERNAME"),
		WhatsAppPassword: os.Getenv("WHATSAPP_PASSWORD"),
	}

	if cfg.DBHost == "" {
		log.Fatal("Environment variables not loaded properly")
	}

	return cfg
}

// ParsePromoCodes reads "CODE:percent" pairs separated by commas.
// Malformed pairs are skipped.
func ParsePromoCodes(raw string) map[string]decimal.Decimal {
	codes := make(map[string]decimal.Decimal)
	for _, pair := range strings.Split(raw, ",") {
		code, pct, ok := strings.Cut(strings.TrimSpace(pair), ":")
		if !ok {
			continue
		}
		code = strings.ToUpper(strings.TrimSpace(code))
		value, err := decimal.NewFromString(strings.TrimSpace(pct))
		if code == "" || err != nil || value.IsNegative() {
			continue
		}
		codes[code] = value
	}
	return codes
}

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getDecimal(key, fallback string) decimal.Decimal {
	v, err := decimal.NewFromString(getenv(key, fallback))
	if err != nil {
		log.Printf("invalid %s, using %s", key, fallback)
		return decimal.RequireFromString(fallback)
	}
	return v
}

func getInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		log.Printf("invalid %s, using %d", key, fallback)
		return fallback
	}
	return n
}

func getDuration(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(raw); err == nil {
		return time.Duration(secs) * time.Second
	}
	log.Printf("invalid %s, using %s", key, fallback)
	return fallback
}
