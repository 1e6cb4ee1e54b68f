package config

import "time"

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Listen string `yaml:"listen" mapstructure:"listen"`
	// RootPath is the URL prefix the service is mounted under when it sits
	// behind a reverse proxy (e.g. "/parking"). Empty means "/".
	RootPath       string          `yaml:"root_path,omitempty" mapstructure:"root_path"`
	CORSOrigins    []string        `yaml:"cors_origins,omitempty" mapstructure:"cors_origins"`
	RateLimit      RateLimitConfig `yaml:"rate_limit,omitempty" mapstructure:"rate_limit"`
	MaxUploadBytes int64           `yaml:"max_upload_bytes" mapstructure:"max_upload_bytes"`
}

// RateLimitConfig configures per-IP rate limiting.
type RateLimitConfig struct {
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	// Auth applies to the login and SSO handoff endpoints.
	Auth RateLimitTier `yaml:"auth,omitempty" mapstructure:"auth"`
	// Machine applies to the API-key protected enforcement endpoints.
	Machine RateLimitTier `yaml:"machine,omitempty" mapstructure:"machine"`
}

// RateLimitTier defines request limits for a specific tier.
type RateLimitTier struct {
	RequestsPerMinute int `yaml:"requests_per_minute" mapstructure:"requests_per_minute"`
}

// AuthConfig contains authentication settings.
type AuthConfig struct {
	// APIKey is the shared machine credential for enforcement devices.
	APIKey  string          `yaml:"api_key" mapstructure:"api_key"`
	Session SessionConfig   `yaml:"session" mapstructure:"session"`
	SSO     SSOConfig       `yaml:"sso" mapstructure:"sso"`
	Local   LocalAuthConfig `yaml:"local" mapstructure:"local"`
}

// SessionConfig configures the signed session cookie.
type SessionConfig struct {
	Secret     string        `yaml:"secret" mapstructure:"secret"`
	Salt       string        `yaml:"salt" mapstructure:"salt"`
	MaxAge     time.Duration `yaml:"max_age" mapstructure:"max_age"`
	CookieName string        `yaml:"cookie_name" mapstructure:"cookie_name"`
}

// SSOConfig configures the portal handoff channel. Its secret and salt must
// differ from the session ones.
type SSOConfig struct {
	Enabled      bool          `yaml:"enabled" mapstructure:"enabled"`
	Secret       string        `yaml:"secret" mapstructure:"secret"`
	Salt         string        `yaml:"salt" mapstructure:"salt"`
	MaxAge       time.Duration `yaml:"max_age" mapstructure:"max_age"`
	RedirectPath string        `yaml:"redirect_path" mapstructure:"redirect_path"`
}

// LocalAuthConfig configures username/password login.
type LocalAuthConfig struct {
	Enabled bool        `yaml:"enabled" mapstructure:"enabled"`
	Users   []LocalUser `yaml:"users,omitempty" mapstructure:"users"`
}

// LocalUser defines a user seeded from config.
type LocalUser struct {
	Username string `yaml:"username" mapstructure:"username"`
	Password string `yaml:"password" mapstructure:"password"`
	Role     string `yaml:"role" mapstructure:"role"`
}

// SiteConfig contains tenant settings.
type SiteConfig struct {
	// DefaultCode is the single source of truth for the fallback site.
	DefaultCode string `yaml:"default_code" mapstructure:"default_code"`
}

// PolicyConfig contains verdict evaluation settings.
type PolicyConfig struct {
	// Timezone decides which calendar day "today" is. Accepts IANA names
	// and "Local".
	Timezone string `yaml:"timezone" mapstructure:"timezone"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Driver   string               `yaml:"driver" mapstructure:"driver"`
	SQLite   SQLiteDatabaseConfig `yaml:"sqlite,omitempty" mapstructure:"sqlite"`
	Postgres PostgresConfig       `yaml:"postgres,omitempty" mapstructure:"postgres"`
	SeedDemo bool                 `yaml:"seed_demo" mapstructure:"seed_demo"`
}

// SQLiteDatabaseConfig contains SQLite-specific settings.
type SQLiteDatabaseConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// PostgresConfig contains PostgreSQL connection settings.
type PostgresConfig struct {
	Host     string `yaml:"host" mapstructure:"host"`
	Port     int    `yaml:"port" mapstructure:"port"`
	User     string `yaml:"user" mapstructure:"user"`
	Password string `yaml:"password" mapstructure:"password"`
	Database string `yaml:"database" mapstructure:"database"`
	SSLMode  string `yaml:"ssl_mode,omitempty" mapstructure:"ssl_mode"`
}

// StorageConfig contains the evidence photo backend settings.
// Exactly one backend (local or S3) must be enabled.
type StorageConfig struct {
	Local LocalStorageConfig `yaml:"local" mapstructure:"local"`
	S3    S3Config           `yaml:"s3" mapstructure:"s3"`
}

// LocalStorageConfig stores evidence photos on the local filesystem.
type LocalStorageConfig struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	Dir     string `yaml:"dir" mapstructure:"dir"`
	// Owner optionally sets "UID:GID" ownership on written files.
	Owner string `yaml:"owner,omitempty" mapstructure:"owner"`
}

// S3Config stores evidence photos in an S3-compatible bucket.
type S3Config struct {
	Enabled         bool          `yaml:"enabled" mapstructure:"enabled"`
	EndpointURL     string        `yaml:"endpoint_url,omitempty" mapstructure:"endpoint_url"`
	Region          string        `yaml:"region,omitempty" mapstructure:"region"`
	Bucket          string        `yaml:"bucket" mapstructure:"bucket"`
	Prefix          string        `yaml:"prefix,omitempty" mapstructure:"prefix"`
	AccessKeyID     string        `yaml:"access_key_id,omitempty" mapstructure:"access_key_id"`
	SecretAccessKey string        `yaml:"secret_access_key,omitempty" mapstructure:"secret_access_key"`
	ForcePathStyle  bool          `yaml:"force_path_style" mapstructure:"force_path_style"`
	PresignExpiry   time.Duration `yaml:"presign_expiry" mapstructure:"presign_expiry"`
}
