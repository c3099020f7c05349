package config

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/spf13/viper"
)

// AppConfig holds the configuration for the application.
// Tags used:
// - mapstructure: used by viper to unmarshal
// - default: default value to set if missing
// - required: if "true", error if missing
type AppConfig struct {
	// Environment specifies the runtime environment (e.g., development, production).
	Environment string `mapstructure:"APP_ENV" default:"development"`
	// LogLevel defines the logging verbosity (e.g., debug, info, error).
	LogLevel string `mapstructure:"LOG_LEVEL" default:"info"`
	// ServerPort is the port where the server will listen.
	ServerPort int `mapstructure:"SERVER_PORT" default:"8080"`

	// Cache holds the result-cache configuration.
	Cache CacheConfig `mapstructure:",squash"`

	// Carrier credentials. All optional: an adapter without credentials
	// serves synthetic demo responses instead of calling upstream.
	USPS   USPSConfig   `mapstructure:",squash"`
	UPS    UPSConfig    `mapstructure:",squash"`
	FedEx  FedExConfig  `mapstructure:",squash"`
	DHL    DHLConfig    `mapstructure:",squash"`
	Amazon AmazonConfig `mapstructure:",squash"`
	OnTrac OnTracConfig `mapstructure:",squash"`

	// Proxy holds the outbound proxy used by the browser-based adapter.
	Proxy ProxyConfig `mapstructure:",squash"`
}

// CacheConfig controls the tracking result cache.
type CacheConfig struct {
	// TTLSeconds is how long a cached package snapshot stays valid.
	TTLSeconds int `mapstructure:"CACHE_TTL_SECONDS" default:"300"`
	// MaxEntries bounds the in-memory cache size.
	MaxEntries int `mapstructure:"CACHE_MAX_ENTRIES" default:"1000"`
	// RedisURL, when set, switches the cache backend from in-memory to Redis.
	RedisURL string `mapstructure:"CACHE_REDIS_URL"`
}

// USPSConfig holds the USPS Web Tools credential.
type USPSConfig struct {
	UserID string `mapstructure:"USPS_API_USER_ID"`
}

// UPSConfig holds the UPS OAuth2 client credentials.
type UPSConfig struct {
	ClientID      string `mapstructure:"UPS_CLIENT_ID"`
	ClientSecret  string `mapstructure:"UPS_CLIENT_SECRET"`
	AccountNumber string `mapstructure:"UPS_ACCOUNT_NUMBER"`
}

// FedExConfig holds the FedEx OAuth2 client credentials.
type FedExConfig struct {
	ClientID      string `mapstructure:"FEDEX_CLIENT_ID"`
	ClientSecret  string `mapstructure:"FEDEX_CLIENT_SECRET"`
	AccountNumber string `mapstructure:"FEDEX_ACCOUNT_NUMBER"`
}

// DHLConfig holds the DHL unified tracking API key.
type DHLConfig struct {
	APIKey string `mapstructure:"DHL_API_KEY"`
}

// AmazonConfig controls the browser-based Amazon adapter. Amazon exposes no
// public tracking API, so tracking works by capturing the progress JSON the
// tracking page loads.
type AmazonConfig struct {
	ScrapeEnabled bool   `mapstructure:"AMAZON_SCRAPE_ENABLED" default:"false"`
	TrackingURL   string `mapstructure:"AMAZON_TRACKING_URL" default:"https://track.amazon.com/tracking/%s"`
}

// OnTracConfig holds the OnTrac API credentials.
type OnTracConfig struct {
	Account  string `mapstructure:"ONTRAC_ACCOUNT"`
	Password string `mapstructure:"ONTRAC_PASSWORD"`
}

// ProxyConfig holds outbound proxy details for the browser-based adapter.
type ProxyConfig struct {
	Enabled  bool   `mapstructure:"PROXY_ENABLED" default:"false"`
	Hostname string `mapstructure:"PROXY_HOSTNAME"`
	Port     int    `mapstructure:"PROXY_PORT"`
	Username string `mapstructure:"PROXY_USERNAME"`
	Password string `mapstructure:"PROXY_PASSWORD"`
}

// Load loads configuration from .env files and environment variables.
func Load(path string) (*AppConfig, error) {
	v := viper.New()

	v.AutomaticEnv()

	v.AddConfigPath(path)
	v.SetConfigName(".env")
	v.SetConfigType("env")

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config AppConfig

	if err := processTags(v, &config); err != nil {
		return nil, err
	}

	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	if err := validateRequired(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// processTags iterates over the struct fields and sets default values in Viper.
func processTags(v *viper.Viper, config interface{}) error {
	val := reflect.ValueOf(config)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}

	t := val.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		if field.Type.Kind() == reflect.Struct {
			if err := processTags(v, val.Field(i).Addr().Interface()); err != nil {
				return err
			}
			continue
		}

		key := field.Tag.Get("mapstructure")
		defaultValue := field.Tag.Get("default")

		if key != "" {
			v.BindEnv(key)
		}

		if key != "" && defaultValue != "" {
			v.SetDefault(key, defaultValue)
		}
	}
	return nil
}

// validateRequired checks if fields marked as required have non-zero values.
func validateRequired(config interface{}) error {
	val := reflect.ValueOf(config)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}

	t := val.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		if field.Type.Kind() == reflect.Struct {
			if err := validateRequired(val.Field(i).Addr().Interface()); err != nil {
				return err
			}
			continue
		}

		required := field.Tag.Get("required")
		if required == "true" {
			value := val.Field(i)
			if isZero(value) {
				key := field.Tag.Get("mapstructure")
				return fmt.Errorf("missing required configuration: %s", key)
			}
		}
	}
	return nil
}

// isZero checks if a reflect.Value is the zero value for its type.
func isZero(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.String:
		return v.String() == ""
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	case reflect.Bool:
		return !v.Bool()
	case reflect.Slice, reflect.Map:
		return v.Len() == 0
	default:
		return v.IsZero()
	}
}
