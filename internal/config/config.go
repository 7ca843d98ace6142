package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"reflect"
	"strings"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/jrschumacher/appauth/internal/apperr"
	"github.com/jrschumacher/appauth/internal/logger"
	"github.com/jrschumacher/appauth/internal/validation"
	"github.com/spf13/viper"
)

const (
	EnvProd = "production"
	EnvDev  = "development"
	EnvTest = "test"
)

// EnvPrefix is prepended to every environment variable key, e.g. APPAUTH_CLIENT_ID.
const EnvPrefix = "APPAUTH"

// ConfigFileEnv names an explicit config file, overriding the search path.
const ConfigFileEnv = "APPAUTH_CONFIG"

// Config holds application configuration loaded from environment variables or config file.
type Config struct {
	AppEnv string `mapstructure:"app_env" default:"development" validate:"required,oneof=production development test"`

	// Identity provider endpoints. Parse errors surface on lookup, not on load.
	Issuer                string `mapstructure:"issuer"`
	AuthorizationURI      string `mapstructure:"authorization_uri"`
	TokenURI              string `mapstructure:"token_uri"`
	LogoutURI             string `mapstructure:"logout_uri"`
	RedirectURI           string `mapstructure:"redirect_uri" default:"http://127.0.0.1:8765/callback"`
	PostLogoutRedirectURI string `mapstructure:"post_logout_redirect_uri" default:"http://127.0.0.1:8765/logoutcallback"`

	// Client credentials
	ClientID     string `mapstructure:"client_id" validate:"required"`
	ClientSecret string `mapstructure:"client_secret" secret:"true"`
	Scope        string `mapstructure:"scope" default:"openid profile"`

	// Logging
	LogLevel  string `mapstructure:"log_level" default:"INFO" validate:"oneof=DEBUG INFO WARN ERROR"`
	LogFormat string `mapstructure:"log_format" default:"text" validate:"oneof=text json"`
}

// Load loads configuration from config file and environment variables using viper.
func Load() *Config {
	cfg := Config{}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	if path := os.Getenv(ConfigFileEnv); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "__", "-", "__"))

	// Set defaults for the config struct
	if err := defaults.Set(&cfg); err != nil {
		panic("failed to set struct defaults: " + err.Error())
	}

	// Bind env vars for each field
	typeOfCfg := reflect.TypeOf(cfg)
	for i := 0; i < typeOfCfg.NumField(); i++ {
		field := typeOfCfg.Field(i)
		_ = v.BindEnv(field.Tag.Get("mapstructure"))
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			logger.Error("Error read config file", "error", err)
		}
		logger.Warn("No config file found, using environment variables")
	}

	if err := v.Unmarshal(&cfg); err != nil {
		logger.Warn("Could not unmarshal config", "error", err)
	}

	logger.Debug("Loaded config", "config", cfg.String())

	return &cfg
}

// Validate checks struct-level constraints. Endpoint URLs are not checked here.
func Validate(cfg *Config) error {
	validate := validator.New()
	return validate.Struct(cfg)
}

// ValidateAll runs Validate and every endpoint URL lookup, collecting all failures.
func ValidateAll(cfg *Config) error {
	errs := validation.FromValidator(Validate(cfg))
	lookups := []struct {
		field string
		get   func() (*url.URL, error)
	}{
		{"authorization_uri", cfg.GetAuthorizationURI},
		{"token_uri", cfg.GetTokenURI},
		{"logout_uri", cfg.GetLogoutURI},
		{"redirect_uri", cfg.GetRedirectURI},
		{"post_logout_redirect_uri", cfg.GetPostLogoutRedirectURI},
	}
	for _, l := range lookups {
		if _, err := l.get(); err != nil {
			errs.Add(l.field, describe(err))
		}
	}
	return errs.ErrOrNil()
}

func describe(err error) string {
	var appErr *apperr.ApplicationError
	if errors.As(err, &appErr) {
		return appErr.Description
	}
	return err.Error()
}

// GetAuthorizationURI returns the parsed authorization endpoint.
func (c *Config) GetAuthorizationURI() (*url.URL, error) { return GetURL(c.AuthorizationURI) }

// GetTokenURI returns the parsed token endpoint.
func (c *Config) GetTokenURI() (*url.URL, error) { return GetURL(c.TokenURI) }

// GetLogoutURI returns the parsed end session endpoint.
func (c *Config) GetLogoutURI() (*url.URL, error) { return GetURL(c.LogoutURI) }

// GetRedirectURI returns the parsed login redirect URI.
func (c *Config) GetRedirectURI() (*url.URL, error) { return GetURL(c.RedirectURI) }

// GetPostLogoutRedirectURI returns the parsed logout redirect URI.
func (c *Config) GetPostLogoutRedirectURI() (*url.URL, error) {
	return GetURL(c.PostLogoutRedirectURI)
}

// GetClientSecret returns the optional client secret.
func (c *Config) GetClientSecret() string { return c.ClientSecret }

// GetScope returns the space-delimited scope string.
func (c *Config) GetScope() string { return c.Scope }

// GetURL parses value as an absolute URL. Values without a scheme, or http(s)
// URLs without a host, yield an "Invalid Configuration Error".
func GetURL(value string) (*url.URL, error) {
	u, err := url.Parse(value)
	if err != nil || u.Scheme == "" || strings.ContainsAny(value, " \t\n") {
		return nil, invalidURL(value)
	}
	if (u.Scheme == "http" || u.Scheme == "https") && u.Host == "" {
		return nil, invalidURL(value)
	}
	return u, nil
}

func invalidURL(value string) error {
	return apperr.New("Invalid Configuration Error", fmt.Sprintf("The URL %s could not be parsed", value))
}

// String returns a string representation of the config with secret fields redacted.
func (c *Config) String() string {
	v := reflect.ValueOf(*c)
	t := reflect.TypeOf(*c)
	var sb strings.Builder
	sb.WriteString("Config{")
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		name := field.Name
		value := v.Field(i).Interface()
		if field.Tag.Get("secret") == "true" {
			value = "***REDACTED***"
		}
		sb.WriteString(name + ": " + toString(value))
		if i < t.NumField()-1 {
			sb.WriteString(", ")
		}
	}
	sb.WriteString("}")
	return sb.String()
}

// toString converts interface{} to string for String
func toString(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	default:
		return fmt.Sprintf("%v", val)
	}
}
