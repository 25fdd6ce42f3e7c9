package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Version information - set by GoReleaser during build
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// GetVersionInfo returns a formatted version string
func GetVersionInfo() string {
	return fmt.Sprintf("swagger-token version %s, commit %s, built at %s", version, commit, date)
}

// EnvPrefix is the prefix of every environment variable read by Load.
const EnvPrefix = "SWAGGER_TOKEN"

// Compiled-in defaults for the Kakao / afternote flow.
const (
	DefaultProviderName = "KAKAO"
	DefaultClientID     = "f631cb629a27146986a0337232138f16"
	DefaultAuthURL      = "https://kauth.kakao.com/oauth/authorize"
	DefaultTokenURL     = "https://kauth.kakao.com/oauth/token"
	DefaultRedirectURI  = "http://localhost:3000"
	DefaultBackendURL   = "https://afternote.kro.kr/auth/social/login"
	DefaultHost         = "127.0.0.1"
	DefaultPort         = 3000
)

type Config struct {
	Provider ProviderConfig `mapstructure:"provider"`
	Backend  BackendConfig  `mapstructure:"backend"`
	Callback CallbackConfig `mapstructure:"callback"`
	Browser  BrowserConfig  `mapstructure:"browser"`
	Output   OutputConfig   `mapstructure:"output"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// ProviderConfig describes the identity provider the authorization code is redeemed against.
type ProviderConfig struct {
	Name         string `mapstructure:"name" validate:"required"`
	ClientID     string `mapstructure:"client_id" validate:"required"`
	ClientSecret string `mapstructure:"client_secret" validate:"required"`
	AuthURL      string `mapstructure:"auth_url" validate:"required,url"`
	TokenURL     string `mapstructure:"token_url" validate:"required,url"`
	RedirectURI  string `mapstructure:"redirect_uri" validate:"required,url"`
}

type BackendConfig struct {
	LoginURL string        `mapstructure:"login_url" validate:"required,url"`
	Timeout  time.Duration `mapstructure:"timeout" validate:"min=0"`
}

// CallbackConfig controls the local listener catching the provider redirect.
type CallbackConfig struct {
	Host string `mapstructure:"host" validate:"required"`
	Port int    `mapstructure:"port" validate:"min=0,max=65535"`
	// Path is the redirect path accepted besides "/". Derived from the redirect URI when empty.
	Path string `mapstructure:"path"`
	// Timeout bounds the wait for the redirect. Zero waits forever.
	Timeout    time.Duration `mapstructure:"timeout" validate:"min=0"`
	StateCheck bool          `mapstructure:"state_check"`
}

// Addr returns the host:port the listener binds.
func (c *CallbackConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type BrowserConfig struct {
	Disabled bool `mapstructure:"disabled"`
}

type OutputConfig struct {
	Format string `mapstructure:"format" validate:"oneof=text json yaml"`
}

type LoggingConfig struct {
	Level             string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format            string `mapstructure:"format" validate:"oneof=console json"`
	DisableStacktrace bool   `mapstructure:"disable_stacktrace"`
	OutputPath        string `mapstructure:"output_path"`
	AppendToFile      bool   `mapstructure:"append_to_file"`
}

// flagKeys maps command line flags to config keys.
var flagKeys = map[string]string{
	"provider":      "provider.name",
	"client-id":     "provider.client_id",
	"client-secret": "provider.client_secret",
	"auth-url":      "provider.auth_url",
	"token-url":     "provider.token_url",
	"redirect-uri":  "provider.redirect_uri",
	"backend-url":   "backend.login_url",
	"host":          "callback.host",
	"port":          "callback.port",
	"timeout":       "callback.timeout",
	"state-check":   "callback.state_check",
	"no-browser":    "browser.disabled",
	"output":        "output.format",
	"log-level":     "logging.level",
	"log-format":    "logging.format",
}

// InitFlags registers the command line flags understood by Load (without parsing)
func InitFlags(flags *pflag.FlagSet) {
	flags.String("config", "", "Path to a config file (default ./config.yaml or ~/.swagger-token/config.yaml)")
	flags.String("env-file", "", "Path to a .env file (default ./.env when present)")
	flags.String("provider", DefaultProviderName, "Provider name sent to the backend login endpoint")
	flags.String("client-id", DefaultClientID, "OAuth client id")
	flags.String("client-secret", "", "OAuth client secret")
	flags.String("auth-url", DefaultAuthURL, "Provider authorize URL")
	flags.String("token-url", DefaultTokenURL, "Provider token URL")
	flags.String("redirect-uri", DefaultRedirectURI, "Redirect URI registered with the provider")
	flags.String("backend-url", DefaultBackendURL, "Backend social login URL")
	flags.String("host", DefaultHost, "Host the callback listener binds")
	flags.Int("port", DefaultPort, "Port the callback listener binds (defaults to the redirect URI port)")
	flags.Duration("timeout", 0, "Give up waiting for the redirect after this long (0 waits forever)")
	flags.Bool("state-check", false, "Send a random OAuth state and reject redirects that do not echo it")
	flags.Bool("no-browser", false, "Print the authorize URL instead of opening a browser")
	flags.StringP("output", "o", "text", "Output format (text|json|yaml)")
	flags.String("log-level", "warn", "Log level (debug|info|warn|error)")
	flags.String("log-format", "console", "Log format (console|json)")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("provider.name", DefaultProviderName)
	v.SetDefault("provider.client_id", DefaultClientID)
	v.SetDefault("provider.client_secret", "")
	v.SetDefault("provider.auth_url", DefaultAuthURL)
	v.SetDefault("provider.token_url", DefaultTokenURL)
	v.SetDefault("provider.redirect_uri", DefaultRedirectURI)
	v.SetDefault("backend.login_url", DefaultBackendURL)
	v.SetDefault("backend.timeout", 30*time.Second)
	v.SetDefault("callback.host", DefaultHost)
	v.SetDefault("callback.path", "")
	v.SetDefault("callback.timeout", time.Duration(0))
	v.SetDefault("callback.state_check", false)
	v.SetDefault("browser.disabled", false)
	v.SetDefault("output.format", "text")
	v.SetDefault("logging.level", "warn")
	v.SetDefault("logging.format", "console")
}

// Load builds the configuration from defaults, an optional config file, the
// environment (optionally seeded from a .env file) and the given flags.
// flags may be nil.
func Load(flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if err := loadEnvFile(flagString(flags, "env-file")); err != nil {
		return nil, err
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			f := flags.Lookup(name)
			if f == nil {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
			}
		}
	}

	if err := readConfigFile(v, flagString(flags, "config")); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if cfg.Callback.Path == "" {
		cfg.Callback.Path = redirectPath(cfg.Provider.RedirectURI)
	}
	// Unless given explicitly, listen where the provider will redirect to
	if !v.IsSet("callback.port") {
		cfg.Callback.Port = redirectPort(cfg.Provider.RedirectURI)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func readConfigFile(v *viper.Viper, path string) error {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		return nil
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".swagger-token"))
	}
	if err := v.ReadInConfig(); err != nil {
		// The config file is optional, defaults cover the whole flow
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}
	return nil
}

// loadEnvFile seeds the process environment from a .env file. An explicit
// path must exist; the implicit ./.env is only read when present.
// Variables already set in the environment win.
func loadEnvFile(path string) error {
	if path != "" {
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("failed to load env file %s: %w", path, err)
		}
		return nil
	}
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			return fmt.Errorf("failed to load env file .env: %w", err)
		}
	}
	return nil
}

func redirectPath(redirectURI string) string {
	u, err := url.Parse(redirectURI)
	if err != nil || u.Path == "" {
		return "/"
	}
	return u.Path
}

func redirectPort(redirectURI string) int {
	u, err := url.Parse(redirectURI)
	if err != nil {
		return DefaultPort
	}
	if p := u.Port(); p != "" {
		if port, err := strconv.Atoi(p); err == nil {
			return port
		}
		return DefaultPort
	}
	switch u.Scheme {
	case "http":
		return 80
	case "https":
		return 443
	default:
		return DefaultPort
	}
}

func flagString(flags *pflag.FlagSet, name string) string {
	if flags == nil {
		return ""
	}
	value, err := flags.GetString(name)
	if err != nil {
		return ""
	}
	return value
}
