package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Settings is the runtime configuration read from the environment.
type Settings struct {
	Port      string
	DBDriver  string
	DBURL     string
	JWTSecret string
	JWTExpiry time.Duration

	RedisAddr   string
	KafkaBroker string
	KafkaTopic  string

	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFrom       string

	PublicBaseURL string
	CORSOrigins   []string

	Business Business
}

// Business holds restaurant-level settings loaded from BUSINESS_CONFIG.
type Business struct {
	RestaurantName     string   `yaml:"restaurant_name"`
	ServiceChargeRate  float64  `yaml:"service_charge_rate"`
	TaxRate            float64  `yaml:"tax_rate"`
	PaymentMethods     []string `yaml:"payment_methods"`
	Currency           string   `yaml:"currency"`
	ReportSnapshotCron string   `yaml:"report_snapshot_cron"`
}

func DefaultBusiness() Business {
	return Business{
		RestaurantName:     "RestoPOS",
		ServiceChargeRate:  0.10,
		TaxRate:            0,
		PaymentMethods:     []string{"cash", "card", "mobile", "other"},
		Currency:           "Rs.",
		ReportSnapshotCron: "5 0 * * *",
	}
}

func (b Business) ServiceCharge() decimal.Decimal {
	return decimal.NewFromFloat(b.ServiceChargeRate)
}

func (b Business) Validate() error {
	if b.ServiceChargeRate < 0 || b.ServiceChargeRate > 1 {
		return fmt.Errorf("service_charge_rate must be between 0 and 1, got %v", b.ServiceChargeRate)
	}
	if b.TaxRate < 0 || b.TaxRate > 1 {
		return fmt.Errorf("tax_rate must be between 0 and 1, got %v", b.TaxRate)
	}
	if len(b.PaymentMethods) == 0 {
		return errors.New("payment_methods must not be empty")
	}
	return nil
}

// LoadBusiness reads a YAML file over the defaults. Keys absent from the
// file keep their default value.
func LoadBusiness(path string) (Business, error) {
	b := DefaultBusiness()
	data, err := os.ReadFile(path)
	if err != nil {
		return b, fmt.Errorf("read business config: %w", err)
	}
	if err := yaml.Unmarshal(data, &b); err != nil {
		return b, fmt.Errorf("parse business config: %w", err)
	}
	return b, b.Validate()
}

// LoadSettings reads the process environment. Call godotenv.Load first to
// pick up a .env file.
func LoadSettings() (Settings, error) {
	s := Settings{
		Port:             getEnv("PORT", "8080"),
		DBDriver:         getEnv("DB_DRIVER", "postgres"),
		DBURL:            os.Getenv("DB_URL"),
		JWTSecret:        os.Getenv("JWT_SECRET"),
		JWTExpiry:        24 * time.Hour,
		RedisAddr:        os.Getenv("REDIS_ADDR"),
		KafkaBroker:      os.Getenv("KAFKA_BROKER"),
		KafkaTopic:       getEnv("KAFKA_TOPIC", "pos-events"),
		TwilioAccountSID: os.Getenv("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:  os.Getenv("TWILIO_AUTH_TOKEN"),
		TwilioFrom:       os.Getenv("TWILIO_FROM_NUMBER"),
		PublicBaseURL:    strings.TrimRight(getEnv("PUBLIC_BASE_URL", "http://localhost:8080"), "/"),
		CORSOrigins:      splitList(getEnv("CORS_ORIGINS", "http://localhost:3000")),
		Business:         DefaultBusiness(),
	}

	if env := os.Getenv("JWT_EXPIRY_HOURS"); env != "" {
		h, err := strconv.Atoi(env)
		if err != nil || h <= 0 {
			return s, fmt.Errorf("invalid JWT_EXPIRY_HOURS %q", env)
		}
		s.JWTExpiry = time.Duration(h) * time.Hour
	}

	if path := os.Getenv("BUSINESS_CONFIG"); path != "" {
		b, err := LoadBusiness(path)
		if err != nil {
			return s, err
		}
		s.Business = b
	}

	if s.JWTSecret == "" {
		return s, errors.New("JWT_SECRET not set")
	}
	if s.DBURL == "" {
		return s, errors.New("DB_URL not set")
	}
	return s, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
