package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config ilovaning barcha sozlamalari. Qiymatlar environmentdan o'qiladi,
// .env fayli mavjud bo'lsa avval u yuklanadi.
type Config struct {
	TelegramToken string `env:"TELEGRAM_TOKEN"`
	AdminIDsRaw   string `env:"ADMIN_IDS"`

	// DATABASE_URL bo'sh bo'lsa dialog tarixi xotirada saqlanadi.
	DatabaseURL string `env:"DATABASE_URL"`

	Redis    RedisConfig
	Sheets   SheetsConfig
	Listings ListingsConfig
	Dialog   DialogConfig

	OpsAddr   string `env:"OPS_ADDR" env-default:":8081"`
	LogLevel  string `env:"LOG_LEVEL" env-default:"info"`
	LogFormat string `env:"LOG_FORMAT" env-default:"console"`

	// AdminIDs ADMIN_IDS qiymatidan Load ichida parse qilinadi.
	AdminIDs []int64
}

// RedisConfig sessiya ombori ulanishi. Addr bo'sh bo'lsa Redis ishlatilmaydi.
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" env-default:"0"`
}

// SheetsConfig Google Sheets konfiguratsiya manbasi.
type SheetsConfig struct {
	SpreadsheetID      string        `env:"GOOGLE_SPREADSHEET_ID"`
	ServiceAccountJSON string        `env:"GOOGLE_SERVICE_ACCOUNT_JSON"`
	APIKey             string        `env:"GOOGLE_SHEETS_API_KEY"`
	RefreshInterval    time.Duration `env:"CONFIG_REFRESH_INTERVAL" env-default:"5m"`
}

// ListingsConfig tashqi e'lonlar API mijozi.
type ListingsConfig struct {
	URL       string `env:"LISTINGS_API_URL" env-default:"https://bots2.tira.com.ua:8443/api/get_apartments"`
	APIKey    string `env:"LISTINGS_API_KEY"`
	Limit     int    `env:"LISTINGS_LIMIT" env-default:"3"`
	MediaBase string `env:"LISTINGS_MEDIA_BASE" env-default:"https://re24.com.ua/"`
}

// DialogConfig suhbat oqimi va navbat sozlamalari.
type DialogConfig struct {
	SilenceThreshold     time.Duration `env:"SILENCE_THRESHOLD" env-default:"15m"`
	SilenceCheckInterval time.Duration `env:"SILENCE_CHECK_INTERVAL" env-default:"30s"`
	SessionTTL           time.Duration `env:"SESSION_TTL" env-default:"24h"`
	WorkerCount          int           `env:"WORKER_COUNT" env-default:"16"`
}

// Load konfiguratsiyani yuklash
func Load() (*Config, error) {
	// .env faylini yuklash (mavjud bo'lsa)
	_ = godotenv.Load()

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("environment o'qib bo'lmadi: %w", err)
	}

	if strings.TrimSpace(cfg.TelegramToken) == "" {
		return nil, fmt.Errorf("TELEGRAM_TOKEN environment variable bo'sh")
	}
	if cfg.Listings.Limit <= 0 {
		return nil, fmt.Errorf("LISTINGS_LIMIT musbat bo'lishi kerak, hozir %d", cfg.Listings.Limit)
	}
	if cfg.Dialog.WorkerCount <= 0 {
		return nil, fmt.Errorf("WORKER_COUNT musbat bo'lishi kerak, hozir %d", cfg.Dialog.WorkerCount)
	}

	admins, err := parseAdminIDs(cfg.AdminIDsRaw)
	if err != nil {
		return nil, fmt.Errorf("ADMIN_IDS noto'g'ri formatda: %w", err)
	}
	cfg.AdminIDs = admins

	return &cfg, nil
}

// parseAdminIDs vergul bilan ajratilgan Telegram ID ro'yxatini parse qiladi.
// Bo'sh elementlar tashlab yuboriladi, shuning uchun "1, 2," ham yaroqli.
func parseAdminIDs(raw string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%q raqam emas", part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
