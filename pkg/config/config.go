package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

const (
	// EnvPrefix is the prefix for environment variable overrides,
	// e.g. PARKOOR_AUTH_SESSION_SECRET overrides auth.session.secret.
	EnvPrefix = "PARKOOR"

	// DefaultListen is the default HTTP listen address.
	DefaultListen = ":8080"

	// DefaultSiteCode is the fallback tenant when nothing else applies.
	DefaultSiteCode = "COMMON"

	// DefaultSessionMaxAge is the default session lifetime.
	DefaultSessionMaxAge = 12 * time.Hour

	// DefaultSSOMaxAge is the default lifetime of a portal handoff token.
	DefaultSSOMaxAge = 5 * time.Minute

	// DefaultSessionCookie is the default session cookie name.
	DefaultSessionCookie = "parking_session"

	// DefaultMaxUploadBytes bounds evidence photo uploads.
	DefaultMaxUploadBytes = 10 << 20
)

// Config is the root configuration for parkoor.
type Config struct {
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Auth     AuthConfig     `yaml:"auth" mapstructure:"auth"`
	Site     SiteConfig     `yaml:"site" mapstructure:"site"`
	Policy   PolicyConfig   `yaml:"policy" mapstructure:"policy"`
	Database DatabaseConfig `yaml:"database" mapstructure:"database"`
	Storage  StorageConfig  `yaml:"storage" mapstructure:"storage"`
}

// Load reads the configuration file at path (optional) and applies
// environment variable overrides and defaults. The returned config is
// validated and normalized.
func Load(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)

		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	)); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// setDefaults registers every scalar key so env overrides apply even when
// the key is absent from the file.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.listen", DefaultListen)
	v.SetDefault("server.root_path", "")
	v.SetDefault("server.cors_origins", []string{})
	v.SetDefault("server.max_upload_bytes", DefaultMaxUploadBytes)
	v.SetDefault("server.rate_limit.enabled", false)
	v.SetDefault("server.rate_limit.auth.requests_per_minute", 10)
	v.SetDefault("server.rate_limit.machine.requests_per_minute", 600)

	v.SetDefault("auth.api_key", "")
	v.SetDefault("auth.session.secret", "")
	v.SetDefault("auth.session.salt", "parking-session")
	v.SetDefault("auth.session.max_age", DefaultSessionMaxAge)
	v.SetDefault("auth.session.cookie_name", DefaultSessionCookie)
	v.SetDefault("auth.sso.enabled", false)
	v.SetDefault("auth.sso.secret", "")
	v.SetDefault("auth.sso.salt", "parking-sso-context")
	v.SetDefault("auth.sso.max_age", DefaultSSOMaxAge)
	v.SetDefault("auth.sso.redirect_path", "/admin")
	v.SetDefault("auth.local.enabled", true)

	v.SetDefault("site.default_code", DefaultSiteCode)
	v.SetDefault("policy.timezone", "Local")

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.sqlite.path", "./data/parking.db")
	v.SetDefault("database.postgres.host", "localhost")
	v.SetDefault("database.postgres.port", 5432)
	v.SetDefault("database.postgres.user", "")
	v.SetDefault("database.postgres.password", "")
	v.SetDefault("database.postgres.database", "parking")
	v.SetDefault("database.postgres.ssl_mode", "disable")
	v.SetDefault("database.seed_demo", false)

	v.SetDefault("storage.local.enabled", true)
	v.SetDefault("storage.local.dir", "./uploads")
	v.SetDefault("storage.local.owner", "")
	v.SetDefault("storage.s3.enabled", false)
	v.SetDefault("storage.s3.endpoint_url", "")
	v.SetDefault("storage.s3.region", "")
	v.SetDefault("storage.s3.bucket", "")
	v.SetDefault("storage.s3.prefix", "uploads")
	v.SetDefault("storage.s3.access_key_id", "")
	v.SetDefault("storage.s3.secret_access_key", "")
	v.SetDefault("storage.s3.force_path_style", false)
	v.SetDefault("storage.s3.presign_expiry", 15*time.Minute)
}

// normalize canonicalizes values that have more than one accepted spelling.
func (c *Config) normalize() {
	c.Server.RootPath = NormalizeRootPath(c.Server.RootPath)
	c.Site.DefaultCode = strings.ToUpper(strings.TrimSpace(c.Site.DefaultCode))
	c.Database.Driver = strings.ToLower(strings.TrimSpace(c.Database.Driver))

	// S3 takes over from the local default when explicitly enabled.
	if c.Storage.S3.Enabled {
		c.Storage.Local.Enabled = false
	}
}

// NormalizeRootPath returns path with a leading slash and no trailing
// slash, or "" for the root.
func NormalizeRootPath(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return ""
	}

	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	return strings.TrimRight(path, "/")
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.Auth.APIKey == "" {
		errs = append(errs, errors.New("auth.api_key is required"))
	}

	if c.Auth.Session.Secret == "" {
		errs = append(errs, errors.New("auth.session.secret is required"))
	}

	if c.Auth.Session.MaxAge <= 0 {
		errs = append(errs, errors.New("auth.session.max_age must be positive"))
	}

	if c.Auth.Session.CookieName == "" {
		errs = append(errs, errors.New("auth.session.cookie_name is required"))
	}

	if c.Auth.SSO.Enabled {
		if c.Auth.SSO.Secret == "" {
			errs = append(errs, errors.New("auth.sso.secret is required when sso is enabled"))
		}

		if c.Auth.SSO.Secret == c.Auth.Session.Secret {
			errs = append(errs, errors.New("auth.sso.secret must differ from auth.session.secret"))
		}

		if c.Auth.SSO.Salt == c.Auth.Session.Salt {
			errs = append(errs, errors.New("auth.sso.salt must differ from auth.session.salt"))
		}

		if c.Auth.SSO.MaxAge <= 0 {
			errs = append(errs, errors.New("auth.sso.max_age must be positive"))
		}
	}

	if c.Site.DefaultCode == "" {
		errs = append(errs, errors.New("site.default_code is required"))
	}

	if _, err := time.LoadLocation(c.Policy.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("policy.timezone: %w", err))
	}

	switch c.Database.Driver {
	case "sqlite":
		if c.Database.SQLite.Path == "" {
			errs = append(errs, errors.New("database.sqlite.path is required"))
		}
	case "postgres":
		if c.Database.Postgres.Host == "" {
			errs = append(errs, errors.New("database.postgres.host is required"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported database driver: %q", c.Database.Driver))
	}

	switch {
	case c.Storage.Local.Enabled && c.Storage.S3.Enabled:
		errs = append(errs, errors.New("only one storage backend may be enabled"))
	case c.Storage.Local.Enabled:
		if c.Storage.Local.Dir == "" {
			errs = append(errs, errors.New("storage.local.dir is required"))
		}
	case c.Storage.S3.Enabled:
		if c.Storage.S3.Bucket == "" {
			errs = append(errs, errors.New("storage.s3.bucket is required"))
		}

		if c.Storage.S3.PresignExpiry <= 0 {
			errs = append(errs, errors.New("storage.s3.presign_expiry must be positive"))
		}
	default:
		errs = append(errs, errors.New("a storage backend must be enabled"))
	}

	if c.Server.MaxUploadBytes <= 0 {
		errs = append(errs, errors.New("server.max_upload_bytes must be positive"))
	}

	return errors.Join(errs...)
}

// Location returns the time zone used to decide the current policy date.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Policy.Timezone)
	if err != nil {
		return time.Local
	}

	return loc
}

// Redacted returns a copy of the config with secrets masked, suitable for
// printing.
func (c *Config) Redacted() Config {
	out := *c

	out.Auth.APIKey = redact(out.Auth.APIKey)
	out.Auth.Session.Secret = redact(out.Auth.Session.Secret)
	out.Auth.SSO.Secret = redact(out.Auth.SSO.Secret)
	out.Database.Postgres.Password = redact(out.Database.Postgres.Password)
	out.Storage.S3.SecretAccessKey = redact(out.Storage.S3.SecretAccessKey)

	users := make([]LocalUser, len(c.Auth.Local.Users))
	for i, u := range c.Auth.Local.Users {
		users[i] = LocalUser{Username: u.Username, Password: redact(u.Password), Role: u.Role}
	}

	out.Auth.Local.Users = users

	return out
}

func redact(v string) string {
	if v == "" {
		return ""
	}

	return "********"
}
