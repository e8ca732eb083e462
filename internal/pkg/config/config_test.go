package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fullYAML = `
telegram:
  api_id: 12345
  api_hash: "hash1"
  phone_number: "+111"
  database_directory: "/var/lib/sender"
  system_language_code: "ru"
  device_model: "Server"
  application_version: "2.0"
  use_message_database: false
  enable_storage_optimizer: false
  workers: 8
  mtproto_log_level: "debug"
  entity_ttl: 30m
sender:
  login: "alice"
  encryption_key: "secret"
  amount: 5
  strategy: "round_robin"
  auth_poll_timeout: 2s
  event_wait_timeout: 15s
  send_pause: 500ms
logging:
  level: "debug"
  format: "json"
`

// partialYAML переопределяет только часть значений, остальные берутся по умолчанию.
const partialYAML = `
sender:
  login: "bob"
  amount: 3
`

// clearEnv убирает переменные окружения, влияющие на загрузку.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"API_ID", "API_HASH", "PHONE_NUMBER", "TDLIB_DATABASE_DIR", "LOG_LEVEL"} {
		t.Setenv(key, "")
	}
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFromYAML_Full(t *testing.T) {
	cfg := defaultConfig()
	require.NoError(t, loadFromYAML(writeFile(t, fullYAML), cfg))

	assert.Equal(t, 12345, cfg.Telegram.APIID)
	assert.Equal(t, "hash1", cfg.Telegram.APIHash)
	assert.Equal(t, "+111", cfg.Telegram.PhoneNumber)
	assert.Equal(t, "/var/lib/sender", cfg.Telegram.DatabaseDirectory)
	assert.Equal(t, "ru", cfg.Telegram.SystemLanguageCode)
	assert.Equal(t, "Server", cfg.Telegram.DeviceModel)
	assert.Equal(t, "2.0", cfg.Telegram.ApplicationVersion)
	assert.False(t, cfg.Telegram.UseMessageDatabase)
	assert.False(t, cfg.Telegram.EnableStorageOptimizer)
	assert.Equal(t, 8, cfg.Telegram.Workers)
	assert.Equal(t, "debug", cfg.Telegram.MTProtoLogLevel)
	assert.Equal(t, 30*time.Minute, cfg.Telegram.EntityTTL)

	assert.Equal(t, "alice", cfg.Sender.Login)
	assert.Equal(t, "secret", cfg.Sender.EncryptionKey)
	assert.Equal(t, 5, cfg.Sender.Amount)
	assert.Equal(t, "round_robin", cfg.Sender.Strategy)
	assert.Equal(t, 2*time.Second, cfg.Sender.AuthPollTimeout)
	assert.Equal(t, 15*time.Second, cfg.Sender.EventWaitTimeout)
	assert.Equal(t, 500*time.Millisecond, cfg.Sender.SendPause)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	require.NoError(t, cfg.Validate())
}

func TestLoadFromYAML_PartialKeepsDefaults(t *testing.T) {
	cfg := defaultConfig()
	require.NoError(t, loadFromYAML(writeFile(t, partialYAML), cfg))

	assert.Equal(t, "bob", cfg.Sender.Login)
	assert.Equal(t, 3, cfg.Sender.Amount)

	assert.Equal(t, DefaultAPIID, cfg.Telegram.APIID)
	assert.Equal(t, DefaultAPIHash, cfg.Telegram.APIHash)
	assert.Equal(t, DefaultDatabaseDirectory, cfg.Telegram.DatabaseDirectory)
	assert.True(t, cfg.Telegram.UseMessageDatabase)
	assert.True(t, cfg.Telegram.EnableStorageOptimizer)
	assert.Equal(t, DefaultStrategy, cfg.Sender.Strategy)
	assert.Equal(t, DefaultAuthPollTimeout, cfg.Sender.AuthPollTimeout)
	assert.Equal(t, DefaultEventWaitTimeout, cfg.Sender.EventWaitTimeout)
	assert.Equal(t, DefaultSendPause, cfg.Sender.SendPause)
}

func TestLoadFromYAML_MissingFileIsNotAnError(t *testing.T) {
	cfg := defaultConfig()
	require.NoError(t, loadFromYAML(filepath.Join(t.TempDir(), "absent.yml"), cfg))
	assert.Equal(t, defaultConfig(), cfg)
}

func TestLoadFromYAML_InvalidYAML(t *testing.T) {
	cfg := defaultConfig()
	err := loadFromYAML(writeFile(t, "sender: [unclosed"), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "YAML")
}

func TestLoadConfig_EnvOverridesYAML(t *testing.T) {
	clearEnv(t)
	t.Setenv("API_ID", "777")
	t.Setenv("API_HASH", "envhash")
	t.Setenv("PHONE_NUMBER", "+999")
	t.Setenv("TDLIB_DATABASE_DIR", "/tmp/td")
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := LoadConfig(writeFile(t, fullYAML))
	require.NoError(t, err)

	assert.Equal(t, 777, cfg.Telegram.APIID)
	assert.Equal(t, "envhash", cfg.Telegram.APIHash)
	assert.Equal(t, "+999", cfg.Telegram.PhoneNumber)
	assert.Equal(t, "/tmp/td", cfg.Telegram.DatabaseDirectory)
	assert.Equal(t, "warn", cfg.Logging.Level)
	// Значения, не заданные в окружении, остаются из файла.
	assert.Equal(t, "alice", cfg.Sender.Login)
}

func TestLoadConfig_InvalidAPIID(t *testing.T) {
	clearEnv(t)
	t.Setenv("API_ID", "not-a-number")

	_, err := LoadConfig(writeFile(t, partialYAML))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API_ID")
}

func TestLoadConfig_ExplicitMissingFile(t *testing.T) {
	clearEnv(t)
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yml"))
	require.Error(t, err)
}

func TestNormalize_ExpandsHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	cfg := defaultConfig()
	require.NoError(t, cfg.Normalize())
	assert.Equal(t, filepath.Join(home, ".tdlib"), cfg.Telegram.DatabaseDirectory)

	cfg.Telegram.DatabaseDirectory = "/abs/path"
	require.NoError(t, cfg.Normalize())
	assert.Equal(t, "/abs/path", cfg.Telegram.DatabaseDirectory)
}

func TestTdlibParameters(t *testing.T) {
	cfg := defaultConfig()
	params := cfg.TdlibParameters()

	assert.Equal(t, DefaultAPIID, params.APIID)
	assert.Equal(t, DefaultAPIHash, params.APIHash)
	assert.Equal(t, DefaultSystemLanguageCode, params.SystemLanguageCode)
	assert.Equal(t, DefaultDeviceModel, params.DeviceModel)
	assert.Equal(t, DefaultApplicationVersion, params.ApplicationVersion)
	assert.True(t, params.UseMessageDatabase)
	assert.False(t, params.UseSecretChats)
	assert.True(t, params.EnableStorageOptimizer)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := defaultConfig()
		cfg.Sender.Login = "alice"
		cfg.Sender.EncryptionKey = "secret"
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "zero send pause", mutate: func(c *Config) { c.Sender.SendPause = 0 }},
		{name: "api id", mutate: func(c *Config) { c.Telegram.APIID = 0 }, wantErr: "telegram.api_id"},
		{name: "api hash", mutate: func(c *Config) { c.Telegram.APIHash = "" }, wantErr: "telegram.api_hash"},
		{name: "database dir", mutate: func(c *Config) { c.Telegram.DatabaseDirectory = "" }, wantErr: "telegram.database_directory"},
		{name: "workers", mutate: func(c *Config) { c.Telegram.Workers = 0 }, wantErr: "telegram.workers"},
		{name: "entity ttl", mutate: func(c *Config) { c.Telegram.EntityTTL = -time.Second }, wantErr: "telegram.entity_ttl"},
		{name: "login", mutate: func(c *Config) { c.Sender.Login = "" }, wantErr: "sender.login"},
		{name: "encryption key", mutate: func(c *Config) { c.Sender.EncryptionKey = "" }, wantErr: "sender.encryption_key"},
		{name: "amount", mutate: func(c *Config) { c.Sender.Amount = 0 }, wantErr: "sender.amount"},
		{name: "strategy", mutate: func(c *Config) { c.Sender.Strategy = "weighted" }, wantErr: "sender.strategy"},
		{name: "auth poll", mutate: func(c *Config) { c.Sender.AuthPollTimeout = 0 }, wantErr: "sender.auth_poll_timeout"},
		{name: "event wait", mutate: func(c *Config) { c.Sender.EventWaitTimeout = 0 }, wantErr: "sender.event_wait_timeout"},
		{name: "send pause", mutate: func(c *Config) { c.Sender.SendPause = -time.Second }, wantErr: "sender.send_pause"},
		{name: "log level", mutate: func(c *Config) { c.Logging.Level = "trace" }, wantErr: "logging.level"},
		{name: "log format", mutate: func(c *Config) { c.Logging.Format = "xml" }, wantErr: "logging.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSecrets(t *testing.T) {
	cfg := defaultConfig()
	cfg.Sender.EncryptionKey = "key"
	cfg.Telegram.PhoneNumber = "+100"

	assert.ElementsMatch(t, []string{"key", DefaultAPIHash, "+100"}, cfg.Secrets())
}
