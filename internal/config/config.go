// Package config resolves runtime configuration from the environment (with
// optional .env file) plus an optional shop-settings YAML for merchandising
// values that change without a redeploy.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultAddr              = ":8080"
	defaultAPIBaseURL        = "http://localhost:4000/api"
	defaultFreeShipThreshold = 5000
	defaultFlatShippingFee   = 250
	defaultCurrency          = "PKR"
	defaultSessionTTL        = 30 * 24 * time.Hour
	defaultEnvFile           = ".env"
)

// Config captures all runtime settings organised by concern.
type Config struct {
	Server  ServerConfig
	API     APIConfig
	Session SessionConfig
	Shop    ShopConfig
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr         string
	Env          string // "prod" hardens cookies
	TemplatesDir string
	PublicDir    string
}

// APIConfig points at the remote backend.
type APIConfig struct {
	BaseURL string
}

// SessionConfig controls the visit cookie and registry.
type SessionConfig struct {
	SigningKey string
	TTL        time.Duration
}

// ShopConfig holds merchandising values: the free-shipping rule, currency,
// and the form option lists.
type ShopConfig struct {
	FreeShippingThreshold int64                 `yaml:"freeShippingThreshold"`
	FlatShippingFee       int64                 `yaml:"flatShippingFee"`
	Currency              string                `yaml:"currency"`
	Provinces             []string              `yaml:"provinces"`
	PaymentMethods        []PaymentMethodOption `yaml:"paymentMethods"`
}

// PaymentMethodOption is one selectable payment method.
type PaymentMethodOption struct {
	ID          string `yaml:"id"`
	Label       string `yaml:"label"`
	Description string `yaml:"description"`
}

// PaymentMethodIDs returns the configured method identifiers in order.
func (s ShopConfig) PaymentMethodIDs() []string {
	ids := make([]string, 0, len(s.PaymentMethods))
	for _, m := range s.PaymentMethods {
		ids = append(ids, m.ID)
	}
	return ids
}

// IsProd reports whether the server runs with production hardening.
func (s ServerConfig) IsProd() bool { return strings.EqualFold(s.Env, "prod") }

// Load resolves configuration: .env file (if present), then process env,
// then the optional shop settings file named by KHOJ_SHOP_SETTINGS.
func Load() (Config, error) {
	// Missing .env is the normal production case.
	_ = godotenv.Load(defaultEnvFile)

	cfg := Config{
		Server: ServerConfig{
			Addr:         ":" + stringFromEnv("KHOJ_WEB_PORT", strings.TrimPrefix(defaultAddr, ":")),
			Env:          stringFromEnv("KHOJ_WEB_ENV", "dev"),
			TemplatesDir: stringFromEnv("KHOJ_WEB_TEMPLATES", "templates"),
			PublicDir:    stringFromEnv("KHOJ_WEB_PUBLIC", "public"),
		},
		API: APIConfig{
			BaseURL: stringFromEnv("KHOJ_API_BASE_URL", defaultAPIBaseURL),
		},
		Session: SessionConfig{
			SigningKey: os.Getenv("KHOJ_WEB_SESSION_SIGNING_KEY"),
			TTL:        durationFromEnv("KHOJ_WEB_SESSION_TTL", defaultSessionTTL),
		},
		Shop: defaultShop(),
	}

	// Cloud Run style port override.
	if port := os.Getenv("PORT"); port != "" && os.Getenv("KHOJ_WEB_PORT") == "" {
		cfg.Server.Addr = ":" + port
	}

	cfg.Shop.FreeShippingThreshold = int64FromEnv("KHOJ_SHIPPING_FREE_THRESHOLD", cfg.Shop.FreeShippingThreshold)
	cfg.Shop.FlatShippingFee = int64FromEnv("KHOJ_SHIPPING_FEE", cfg.Shop.FlatShippingFee)

	if path := strings.TrimSpace(os.Getenv("KHOJ_SHOP_SETTINGS")); path != "" {
		if err := loadShopSettings(path, &cfg.Shop); err != nil {
			return Config{}, err
		}
	}
	if err := validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func defaultShop() ShopConfig {
	return ShopConfig{
		FreeShippingThreshold: defaultFreeShipThreshold,
		FlatShippingFee:       defaultFlatShippingFee,
		Currency:              defaultCurrency,
		Provinces: []string{
			"Punjab",
			"Sindh",
			"Khyber Pakhtunkhwa",
			"Balochistan",
			"Islamabad Capital Territory",
			"Azad Kashmir",
			"Gilgit-Baltistan",
		},
		PaymentMethods: []PaymentMethodOption{
			{ID: "cod", Label: "Cash on Delivery", Description: "Pay when you receive your order"},
			{ID: "jazzcash", Label: "JazzCash", Description: "Pay via JazzCash mobile wallet"},
			{ID: "easypaisa", Label: "Easypaisa", Description: "Pay via Easypaisa mobile wallet"},
			{ID: "card", Label: "Credit / Debit Card", Description: "Visa, Mastercard, UnionPay"},
		},
	}
}

// loadShopSettings overlays YAML values onto the built-in shop defaults.
func loadShopSettings(path string, shop *ShopConfig) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read shop settings %s: %w", path, err)
	}
	var overlay ShopConfig
	if err := yaml.Unmarshal(raw, &overlay); err != nil {
		return fmt.Errorf("config: parse shop settings %s: %w", path, err)
	}
	if overlay.FreeShippingThreshold > 0 {
		shop.FreeShippingThreshold = overlay.FreeShippingThreshold
	}
	if overlay.FlatShippingFee > 0 {
		shop.FlatShippingFee = overlay.FlatShippingFee
	}
	if overlay.Currency != "" {
		shop.Currency = strings.ToUpper(overlay.Currency)
	}
	if len(overlay.Provinces) > 0 {
		shop.Provinces = overlay.Provinces
	}
	if len(overlay.PaymentMethods) > 0 {
		shop.PaymentMethods = overlay.PaymentMethods
	}
	return nil
}

func validate(cfg Config) error {
	var missing []string
	if strings.TrimSpace(cfg.API.BaseURL) == "" {
		missing = append(missing, "KHOJ_API_BASE_URL")
	}
	if cfg.Server.IsProd() && cfg.Session.SigningKey == "" {
		missing = append(missing, "KHOJ_WEB_SESSION_SIGNING_KEY")
	}
	if len(missing) > 0 {
		return fmt.Errorf("config: missing required settings [%s]", strings.Join(missing, ", "))
	}
	return nil
}

func stringFromEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func int64FromEnv(key string, fallback int64) int64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func durationFromEnv(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return parsed
}
