package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Rakuten   RakutenConfig
	Yahoo     YahooConfig
	Filter    FilterConfig
	Canonical CanonicalConfig
	Pricing   PricingConfig
	Results   ResultsConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// RakutenConfig holds Rakuten Ichiba search API configuration
type RakutenConfig struct {
	ApplicationID string `mapstructure:"application_id"`
	BaseURL       string `mapstructure:"base_url"`
}

// YahooConfig holds Yahoo! Shopping search API configuration
type YahooConfig struct {
	AppID   string `mapstructure:"app_id"`
	BaseURL string `mapstructure:"base_url"`
}

// FilterConfig holds the category/seller filter keyword lists.
// Loaded once at startup and treated as read-only afterwards.
type FilterConfig struct {
	RequiredKeywords []string `mapstructure:"required_keywords"`
	ExcludedKeywords []string `mapstructure:"excluded_keywords"`
	SellerBlacklist  []string `mapstructure:"seller_blacklist"`
	Bypass           bool     `mapstructure:"bypass"` // diagnostics switch: accept everything
}

// CanonicalConfig holds the title canonicalizer noise denylist
type CanonicalConfig struct {
	NoiseWords []string `mapstructure:"noise_words"`
}

// PricingConfig holds the winsorize quantiles for outlier suppression
type PricingConfig struct {
	LowerQuantile float64 `mapstructure:"lower_quantile"`
	UpperQuantile float64 `mapstructure:"upper_quantile"`
}

// ResultsConfig holds result page settings
type ResultsConfig struct {
	PageSize int `mapstructure:"page_size"`
}

// RateLimitConfig holds per-marketplace client rate limits (requests/second)
type RateLimitConfig struct {
	Rakuten float64 `mapstructure:"rakuten"`
	Yahoo   float64 `mapstructure:"yahoo"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/dramscan/")

	// Environment variable settings
	v.SetEnvPrefix("DRAMSCAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set default values
	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; using environment variables and defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})

	// Marketplace defaults. Credentials default to empty so the env-only keys
	// are known to viper and picked up by Unmarshal.
	v.SetDefault("rakuten.application_id", "")
	v.SetDefault("rakuten.base_url", "https://app.rakuten.co.jp")
	v.SetDefault("yahoo.app_id", "")
	v.SetDefault("yahoo.base_url", "https://shopping.yahooapis.jp")

	// Category filter defaults: the target category in Japanese and English,
	// competing beverage categories, and sellers known to list non-retail lots
	v.SetDefault("filter.required_keywords", []string{
		"ウイスキー", "ウィスキー", "whisky", "whiskey",
	})
	v.SetDefault("filter.excluded_keywords", []string{
		"ビール", "ワイン", "日本酒", "焼酎", "梅酒",
		"ブランデー", "ジン", "ウォッカ", "ラム酒", "リキュール",
		"beer", "wine", "sake", "brandy", "vodka",
	})
	v.SetDefault("filter.seller_blacklist", []string{})
	v.SetDefault("filter.bypass", false)

	// Canonicalizer noise denylist: promotional and packaging qualifiers that
	// never distinguish one bottling from another
	v.SetDefault("canonical.noise_words", []string{
		"限定", "数量限定", "アウトレット", "訳あり", "お買い得",
		"セット", "飲み比べ", "箱なし", "箱付", "化粧箱",
		"国産", "正規品", "並行輸入品", "送料無料", "ポイント",
		"limited", "outlet", "bargain", "set",
	})

	// Pricing defaults: winsorized 5%/95% trimming
	v.SetDefault("pricing.lower_quantile", 0.05)
	v.SetDefault("pricing.upper_quantile", 0.95)

	// Results defaults
	v.SetDefault("results.page_size", 18)

	// Rate limit defaults (requests per second per marketplace)
	v.SetDefault("ratelimit.rakuten", 1.0)
	v.SetDefault("ratelimit.yahoo", 1.0)
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Rakuten.ApplicationID == "" {
		return fmt.Errorf("Rakuten application ID is required (set DRAMSCAN_RAKUTEN_APPLICATION_ID)")
	}

	if config.Yahoo.AppID == "" {
		return fmt.Errorf("Yahoo app ID is required (set DRAMSCAN_YAHOO_APP_ID)")
	}

	if config.Pricing.LowerQuantile < 0 || config.Pricing.LowerQuantile > 1 ||
		config.Pricing.UpperQuantile < 0 || config.Pricing.UpperQuantile > 1 {
		return fmt.Errorf("pricing quantiles must be within [0, 1]")
	}

	if config.Pricing.LowerQuantile > config.Pricing.UpperQuantile {
		return fmt.Errorf("pricing lower quantile must not exceed upper quantile")
	}

	if config.Results.PageSize <= 0 {
		return fmt.Errorf("results page size must be positive, got: %d", config.Results.PageSize)
	}

	if len(config.Filter.RequiredKeywords) == 0 && !config.Filter.Bypass {
		return fmt.Errorf("at least one required category keyword is needed unless the filter bypass is set")
	}

	return nil
}
