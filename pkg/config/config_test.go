package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalConfig = `
auth:
  api_key: device-key
  session:
    secret: session-secret
  sso:
    enabled: true
    secret: portal-secret
site:
  default_code: " common "
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig))
	require.NoError(t, err)

	assert.Equal(t, DefaultListen, cfg.Server.Listen)
	assert.Equal(t, "", cfg.Server.RootPath)
	assert.Equal(t, DefaultSessionMaxAge, cfg.Auth.Session.MaxAge)
	assert.Equal(t, DefaultSSOMaxAge, cfg.Auth.SSO.MaxAge)
	assert.Equal(t, DefaultSessionCookie, cfg.Auth.Session.CookieName)
	assert.Equal(t, "parking-session", cfg.Auth.Session.Salt)
	assert.Equal(t, "parking-sso-context", cfg.Auth.SSO.Salt)
	assert.True(t, cfg.Auth.Local.Enabled)
	assert.Equal(t, "COMMON", cfg.Site.DefaultCode)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.True(t, cfg.Storage.Local.Enabled)
	assert.False(t, cfg.Storage.S3.Enabled)
	assert.Equal(t, int64(DefaultMaxUploadBytes), cfg.Server.MaxUploadBytes)
}

func TestLoad_EnvVarOverrides(t *testing.T) {
	path := writeConfig(t, minimalConfig)

	tests := []struct {
		name     string
		envVars  map[string]string
		validate func(t *testing.T, cfg *Config)
	}{
		{
			name: "duration override - session max age",
			envVars: map[string]string{
				"PARKOOR_AUTH_SESSION_MAX_AGE": "30m",
			},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 30*time.Minute, cfg.Auth.Session.MaxAge)
			},
		},
		{
			name: "string override - default site",
			envVars: map[string]string{
				"PARKOOR_SITE_DEFAULT_CODE": "tower-b",
			},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "TOWER-B", cfg.Site.DefaultCode)
			},
		},
		{
			name: "string override - root path is normalized",
			envVars: map[string]string{
				"PARKOOR_SERVER_ROOT_PATH": "parking/",
			},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "/parking", cfg.Server.RootPath)
			},
		},
		{
			name: "boolean override - disable local login",
			envVars: map[string]string{
				"PARKOOR_AUTH_LOCAL_ENABLED": "false",
			},
			validate: func(t *testing.T, cfg *Config) {
				assert.False(t, cfg.Auth.Local.Enabled)
			},
		},
		{
			name: "s3 enabled turns off local storage",
			envVars: map[string]string{
				"PARKOOR_STORAGE_S3_ENABLED": "true",
				"PARKOOR_STORAGE_S3_BUCKET":  "evidence",
			},
			validate: func(t *testing.T, cfg *Config) {
				assert.True(t, cfg.Storage.S3.Enabled)
				assert.False(t, cfg.Storage.Local.Enabled)
				assert.Equal(t, "evidence", cfg.Storage.S3.Bucket)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			cfg, err := Load(path)
			require.NoError(t, err)
			tt.validate(t, cfg)
		})
	}
}

func TestLoad_EnvOnly(t *testing.T) {
	t.Setenv("PARKOOR_AUTH_API_KEY", "k")
	t.Setenv("PARKOOR_AUTH_SESSION_SECRET", "s")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "k", cfg.Auth.APIKey)
	assert.False(t, cfg.Auth.SSO.Enabled)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errMsg  string
	}{
		{
			name: "missing api key",
			content: `
auth:
  session:
    secret: s
`,
			errMsg: "auth.api_key is required",
		},
		{
			name: "missing session secret",
			content: `
auth:
  api_key: k
`,
			errMsg: "auth.session.secret is required",
		},
		{
			name: "sso secret reused",
			content: `
auth:
  api_key: k
  session:
    secret: same
  sso:
    enabled: true
    secret: same
`,
			errMsg: "auth.sso.secret must differ",
		},
		{
			name: "sso salt reused",
			content: `
auth:
  api_key: k
  session:
    secret: a
    salt: shared
  sso:
    enabled: true
    secret: b
    salt: shared
`,
			errMsg: "auth.sso.salt must differ",
		},
		{
			name: "unknown driver",
			content: `
auth:
  api_key: k
  session:
    secret: s
database:
  driver: mysql
`,
			errMsg: "unsupported database driver",
		},
		{
			name: "blank default site",
			content: `
auth:
  api_key: k
  session:
    secret: s
site:
  default_code: "   "
`,
			errMsg: "site.default_code is required",
		},
		{
			name: "bad timezone",
			content: `
auth:
  api_key: k
  session:
    secret: s
policy:
  timezone: Mars/Olympus
`,
			errMsg: "policy.timezone",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestNormalizeRootPath(t *testing.T) {
	cases := map[string]string{
		"":          "",
		"/":         "",
		"parking":   "/parking",
		"/parking/": "/parking",
		" /a/b/ ":   "/a/b",
		"/already":  "/already",
	}

	for in, want := range cases {
		assert.Equal(t, want, NormalizeRootPath(in), "input %q", in)
	}
}

func TestRedacted(t *testing.T) {
	cfg := &Config{
		Auth: AuthConfig{
			APIKey:  "device-key",
			Session: SessionConfig{Secret: "s1"},
			SSO:     SSOConfig{Secret: "s2"},
			Local: LocalAuthConfig{Users: []LocalUser{
				{Username: "admin", Password: "admin1234", Role: "admin"},
			}},
		},
	}

	out := cfg.Redacted()

	assert.Equal(t, "********", out.Auth.APIKey)
	assert.Equal(t, "********", out.Auth.Session.Secret)
	assert.Equal(t, "********", out.Auth.SSO.Secret)
	assert.Equal(t, "********", out.Auth.Local.Users[0].Password)
	assert.Equal(t, "admin1234", cfg.Auth.Local.Users[0].Password, "original untouched")
}
