// Package config предоставляет управление конфигурацией приложения
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"

	"random-sticker-sender/internal/tdapi"
)

// Telegram содержит параметры сессии Telegram
type Telegram struct {
	APIID                  int           `json:"api_id" yaml:"api_id"`
	APIHash                string        `json:"api_hash" yaml:"api_hash"`
	PhoneNumber            string        `json:"phone_number,omitempty" yaml:"phone_number,omitempty"`
	DatabaseDirectory      string        `json:"database_directory" yaml:"database_directory"`
	SystemLanguageCode     string        `json:"system_language_code" yaml:"system_language_code"`
	DeviceModel            string        `json:"device_model" yaml:"device_model"`
	ApplicationVersion     string        `json:"application_version" yaml:"application_version"`
	UseMessageDatabase     bool          `json:"use_message_database" yaml:"use_message_database"`
	UseSecretChats         bool          `json:"use_secret_chats" yaml:"use_secret_chats"`
	EnableStorageOptimizer bool          `json:"enable_storage_optimizer" yaml:"enable_storage_optimizer"`
	Workers                int           `json:"workers" yaml:"workers"`
	MTProtoLogLevel        string        `json:"mtproto_log_level" yaml:"mtproto_log_level"`
	EntityTTL              time.Duration `json:"entity_ttl" yaml:"entity_ttl"` // 0 - без ограничений
}

// Sender содержит конфигурацию отправки стикеров
type Sender struct {
	Login            string        `json:"login" yaml:"login"`
	EncryptionKey    string        `json:"-" yaml:"encryption_key"`
	Amount           int           `json:"amount" yaml:"amount"`
	Strategy         string        `json:"strategy" yaml:"strategy"` // random, round_robin
	AuthPollTimeout  time.Duration `json:"auth_poll_timeout" yaml:"auth_poll_timeout"`
	EventWaitTimeout time.Duration `json:"event_wait_timeout" yaml:"event_wait_timeout"`
	SendPause        time.Duration `json:"send_pause" yaml:"send_pause"`
}

// Logging содержит конфигурацию логирования
type Logging struct {
	Level  string `json:"level" yaml:"level"`   // debug, info, warn, error
	Format string `json:"format" yaml:"format"` // text, json
}

// Config содержит конфигурацию приложения
type Config struct {
	Telegram Telegram `json:"telegram" yaml:"telegram"`
	Sender   Sender   `json:"sender" yaml:"sender"`
	Logging  Logging  `json:"logging" yaml:"logging"`
}

// LoadConfig загружает конфигурацию: значения по умолчанию, затем .env файл,
// затем YAML-файл, затем переменные окружения.
// Пустой path означает config.yml в текущем каталоге; его отсутствие не ошибка.
// Явно указанный файл должен существовать.
func LoadConfig(path string) (*Config, error) {
	// Если .env файла не существует, это нормально, мы будем полагаться на переменные окружения
	_ = godotenv.Load()

	cfg := defaultConfig()

	if path == "" {
		path = DefaultConfigFile
	} else if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("не удалось открыть файл конфигурации %s: %w", path, err)
	}

	if err := loadFromYAML(path, cfg); err != nil {
		return nil, err
	}

	if err := loadFromEnv(cfg); err != nil {
		return nil, fmt.Errorf("не удалось загрузить конфигурацию из env: %w", err)
	}

	return cfg, nil
}

// loadFromYAML накладывает значения из YAML-файла на cfg.
// Отсутствующий файл пропускается.
func loadFromYAML(filename string, cfg *Config) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("не удалось прочитать файл конфигурации %s: %w", filename, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("не удалось разобрать YAML конфигурацию: %w", err)
	}

	return nil
}

// loadFromEnv накладывает на cfg значения из переменных окружения
func loadFromEnv(cfg *Config) error {
	if v := getEnv("API_ID", ""); v != "" {
		apiID, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("недопустимый API_ID: %w", err)
		}
		cfg.Telegram.APIID = apiID
	}
	cfg.Telegram.APIHash = getEnv("API_HASH", cfg.Telegram.APIHash)
	cfg.Telegram.PhoneNumber = getEnv("PHONE_NUMBER", cfg.Telegram.PhoneNumber)
	cfg.Telegram.DatabaseDirectory = getEnv("TDLIB_DATABASE_DIR", cfg.Telegram.DatabaseDirectory)
	cfg.Logging.Level = getEnv("LOG_LEVEL", cfg.Logging.Level)
	return nil
}

// Normalize раскрывает ~ в пути к хранилищу сессии
func (c *Config) Normalize() error {
	dir, err := expandHome(c.Telegram.DatabaseDirectory)
	if err != nil {
		return fmt.Errorf("не удалось определить telegram.database_directory: %w", err)
	}
	c.Telegram.DatabaseDirectory = dir
	return nil
}

// TdlibParameters возвращает параметры, которые клиент передает сессии
func (c *Config) TdlibParameters() tdapi.TdlibParameters {
	return tdapi.TdlibParameters{
		DatabaseDirectory:      c.Telegram.DatabaseDirectory,
		UseMessageDatabase:     c.Telegram.UseMessageDatabase,
		UseSecretChats:         c.Telegram.UseSecretChats,
		APIID:                  c.Telegram.APIID,
		APIHash:                c.Telegram.APIHash,
		SystemLanguageCode:     c.Telegram.SystemLanguageCode,
		DeviceModel:            c.Telegram.DeviceModel,
		ApplicationVersion:     c.Telegram.ApplicationVersion,
		EnableStorageOptimizer: c.Telegram.EnableStorageOptimizer,
	}
}

// Validate проверяет, являются ли значения конфигурации допустимыми
func (c *Config) Validate() error {
	// Валидация Telegram
	if c.Telegram.APIID <= 0 {
		return fmt.Errorf("telegram.api_id должно быть положительным целым числом")
	}
	if c.Telegram.APIHash == "" {
		return fmt.Errorf("telegram.api_hash не может быть пустым")
	}
	if c.Telegram.DatabaseDirectory == "" {
		return fmt.Errorf("telegram.database_directory не может быть пустым")
	}
	if c.Telegram.Workers <= 0 {
		return fmt.Errorf("telegram.workers должно быть положительным")
	}
	if c.Telegram.EntityTTL < 0 {
		return fmt.Errorf("telegram.entity_ttl должно быть неотрицательным (0 для отсутствия ограничений)")
	}

	// Валидация параметров отправки
	if c.Sender.Login == "" {
		return fmt.Errorf("sender.login не может быть пустым")
	}
	if c.Sender.EncryptionKey == "" {
		return fmt.Errorf("sender.encryption_key не может быть пустым")
	}
	if c.Sender.Amount <= 0 {
		return fmt.Errorf("sender.amount должно быть положительным")
	}
	switch c.Sender.Strategy {
	case "random", "round_robin":
		// all good
	default:
		return fmt.Errorf("sender.strategy должен быть одним из: random, round_robin")
	}
	if c.Sender.AuthPollTimeout <= 0 {
		return fmt.Errorf("sender.auth_poll_timeout должно быть положительным")
	}
	if c.Sender.EventWaitTimeout <= 0 {
		return fmt.Errorf("sender.event_wait_timeout должно быть положительным")
	}
	if c.Sender.SendPause < 0 {
		return fmt.Errorf("sender.send_pause должно быть неотрицательным")
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		// all good
	default:
		return fmt.Errorf("logging.level должен быть одним из: debug, info, warn, error")
	}

	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format должен быть одним из: text, json")
	}

	return nil
}

// Secrets возвращает значения, которые не должны попадать в логи
func (c *Config) Secrets() []string {
	return []string{c.Sender.EncryptionKey, c.Telegram.APIHash, c.Telegram.PhoneNumber}
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

// getEnv извлекает значение переменной окружения или возвращает значение по умолчанию, если она не установлена
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
