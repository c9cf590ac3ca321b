package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate runs Load from an empty directory so no config.toml is picked up,
// and unsets the ERP_ variables the tests touch.
func isolate(t *testing.T) string {
	t.Helper()
	for _, kv := range os.Environ() {
		key, _, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(key, "ERP_") {
			t.Setenv(key, "")
			require.NoError(t, os.Unsetenv(key))
		}
	}
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "stock-transfer", cfg.App.Name)
	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, 25, cfg.Database.MaxOpenConns)
	assert.Equal(t, 5, cfg.Database.MaxIdleConns)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr())
	assert.Equal(t, 15*time.Minute, cfg.JWT.AccessTokenExpiration)
	assert.Equal(t, "stock-transfer", cfg.Telemetry.ServiceName, "service name follows app name")
	assert.Equal(t, 300, cfg.HTTP.RateLimit)
	assert.Equal(t, time.Minute, cfg.HTTP.RateWindow)

	assert.Equal(t, 0, cfg.Transfer.EditDays)
	assert.Equal(t, "fifo", cfg.Transfer.AccountingMethod)
	assert.False(t, cfg.Transfer.AllowOverselling)
	assert.Equal(t, 3, cfg.Transfer.MaxRetries)
	assert.Equal(t, 10*time.Second, cfg.Transfer.UnitOfWorkTimeout)
	assert.Equal(t, "notifications", cfg.Queue.Queue)
	assert.True(t, cfg.Idempotency.Enabled)
	assert.Equal(t, 24*time.Hour, cfg.Idempotency.TTL)
	assert.Equal(t, 15*time.Minute, cfg.Storage.PresignExpiration)
	assert.True(t, cfg.Swagger.Enabled)
	assert.False(t, cfg.Swagger.RequireAuth)
	assert.Empty(t, cfg.Swagger.AllowedIPs)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("ERP_APP_PORT", "9000")
	t.Setenv("ERP_DATABASE_HOST", "db.internal")
	t.Setenv("ERP_DATABASE_MAX_OPEN_CONNS", "50")
	t.Setenv("ERP_TRANSFER_EDIT_DAYS", "30")
	t.Setenv("ERP_TRANSFER_ACCOUNTING_METHOD", "fefo")
	t.Setenv("ERP_TRANSFER_ALLOW_OVERSELLING", "true")
	t.Setenv("ERP_TRANSFER_UNIT_OF_WORK_TIMEOUT", "3s")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9000", cfg.App.Port)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 50, cfg.Database.MaxOpenConns)
	assert.Equal(t, 30, cfg.Transfer.EditDays)
	assert.Equal(t, "fefo", cfg.Transfer.AccountingMethod)
	assert.True(t, cfg.Transfer.AllowOverselling)
	assert.Equal(t, 3*time.Second, cfg.Transfer.UnitOfWorkTimeout)
}

func TestLoad_ConfigFileBelowEnvironment(t *testing.T) {
	dir := isolate(t)
	toml := `
[transfer]
edit_days = 7
accounting_method = "lifo"

[queue]
queue = "transfer-events"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(toml), 0o600))
	t.Setenv("ERP_TRANSFER_EDIT_DAYS", "14")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 14, cfg.Transfer.EditDays)
	assert.Equal(t, "lifo", cfg.Transfer.AccountingMethod)
	assert.Equal(t, "transfer-events", cfg.Queue.Queue)
}

func TestLoad_Validation(t *testing.T) {
	production := map[string]string{
		"ERP_APP_ENV":             "production",
		"ERP_JWT_SECRET":          "this-is-a-very-secure-jwt-secret-key-32chars",
		"ERP_DATABASE_PASSWORD":   "secure-password",
		"ERP_DATABASE_SSLMODE":    "require",
		"ERP_SWAGGER_ALLOWED_IPS": "10.0.0.0/8",
	}

	tests := []struct {
		name    string
		base    map[string]string
		env     map[string]string
		wantErr string
	}{
		{"idle above open", nil, map[string]string{"ERP_DATABASE_MAX_OPEN_CONNS": "10", "ERP_DATABASE_MAX_IDLE_CONNS": "20"}, "cannot exceed"},
		{"zero open conns", nil, map[string]string{"ERP_DATABASE_MAX_OPEN_CONNS": "0"}, "max_open_conns must be positive"},
		{"negative idle conns", nil, map[string]string{"ERP_DATABASE_MAX_IDLE_CONNS": "-1"}, "max_idle_conns cannot be negative"},
		{"unknown accounting method", nil, map[string]string{"ERP_TRANSFER_ACCOUNTING_METHOD": "avco"}, "accounting_method"},
		{"negative edit window", nil, map[string]string{"ERP_TRANSFER_EDIT_DAYS": "-1"}, "edit_days"},
		{"storage without credentials", nil, map[string]string{"ERP_STORAGE_ENABLED": "true", "ERP_STORAGE_BUCKET": "docs"}, "storage.bucket"},
		{"sampling ratio out of range", nil, map[string]string{"ERP_TELEMETRY_SAMPLING_RATIO": "1.5"}, "sampling_ratio"},
		{"production without secret", production, map[string]string{"ERP_JWT_SECRET": ""}, "jwt.secret is required in production"},
		{"production short secret", production, map[string]string{"ERP_JWT_SECRET": "short-secret"}, "at least 32 characters"},
		{"production without db password", production, map[string]string{"ERP_DATABASE_PASSWORD": ""}, "database.password is required"},
		{"production without ssl", production, map[string]string{"ERP_DATABASE_SSLMODE": "disable"}, "sslmode cannot be 'disable'"},
		{"production full sql logging", production, map[string]string{"ERP_TELEMETRY_DB_LOG_FULL_SQL": "true"}, "db_log_full_sql"},
		{"production open swagger", production, map[string]string{"ERP_SWAGGER_ALLOWED_IPS": ""}, "swagger must be disabled"},
		{"production swagger behind auth", production, map[string]string{"ERP_SWAGGER_ALLOWED_IPS": "", "ERP_SWAGGER_REQUIRE_AUTH": "true"}, ""},
		{"production swagger disabled", production, map[string]string{"ERP_SWAGGER_ALLOWED_IPS": "", "ERP_SWAGGER_ENABLED": "false"}, ""},
		{"valid production", production, nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			for k, v := range tt.base {
				t.Setenv(k, v)
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	cfg := DatabaseConfig{Host: "db", Port: 5433, User: "svc", Password: "pass@word#123", DBName: "stock", SSLMode: "require"}
	assert.Equal(t, "postgres://svc:pass%40word%23123@db:5433/stock?sslmode=require", cfg.DSN())
}
