package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/pflag"

	"random-sticker-sender/internal/adapters/exporter"
	"random-sticker-sender/internal/log"
	"random-sticker-sender/internal/pkg/config"
	"random-sticker-sender/internal/pkg/term"
	"random-sticker-sender/internal/ports"
	"random-sticker-sender/internal/sender"
	"random-sticker-sender/internal/telegram"
)

const (
	exitFailure     = 1
	exitInterrupted = 130
)

// options — значения флагов командной строки.
type options struct {
	login         string
	encryptionKey string
	amount        int
	configPath    string
	logLevel      string
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		if errors.Is(err, context.Canceled) {
			slog.Warn("Interrupted")
			os.Exit(exitInterrupted)
		}
		slog.Error("application run failed", "error", err)
		os.Exit(exitFailure)
	}
}

func parseFlags(args []string, stderr io.Writer) (*options, *pflag.FlagSet, error) {
	opts := &options{}
	fs := pflag.NewFlagSet("sender", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVarP(&opts.login, "login", "l", "", "Telegram username to send stickers to (required)")
	fs.StringVarP(&opts.encryptionKey, "encryption_key", "e", "", "Session storage encryption key (required)")
	fs.IntVarP(&opts.amount, "amount", "a", config.DefaultAmount, "Number of stickers to send")
	fs.StringVarP(&opts.configPath, "config", "c", "", "Path to YAML config file")
	fs.StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: sender -l <username> -e <encryption_key> [flags]")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return nil, fs, err
	}
	if opts.login == "" || opts.encryptionKey == "" {
		fs.Usage()
		return nil, fs, errors.New("--login and --encryption_key are required")
	}
	return opts, fs, nil
}

// run инкапсулирует всю логику инициализации и запуска приложения.
func run(args []string) error {
	// 1. Разбор флагов
	opts, fs, err := parseFlags(args, os.Stderr)
	if err != nil {
		return err
	}

	// 2. Загрузка конфигурации, флаги имеют наивысший приоритет
	cfg, err := config.LoadConfig(opts.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg.Sender.Login = opts.login
	cfg.Sender.EncryptionKey = opts.encryptionKey
	if fs.Changed("amount") {
		cfg.Sender.Amount = opts.amount
	}
	if opts.logLevel != "" {
		cfg.Logging.Level = opts.logLevel
	}
	if err := cfg.Normalize(); err != nil {
		return err
	}

	// 3. Инициализация логгера
	logger := newLogger(cfg)
	slog.SetDefault(logger)

	// 4. Валидация конфигурации (после инициализации логгера)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	// 5. Инициализация зависимостей
	strategy, err := sender.NewStrategy(cfg.Sender.Strategy)
	if err != nil {
		return err
	}
	sessionCfg := telegram.Config{
		Workers:         cfg.Telegram.Workers,
		MTProtoLogLevel: cfg.Telegram.MTProtoLogLevel,
		EntityTTL:       cfg.Telegram.EntityTTL,
	}
	// Один файл логов gotd на все перезапуски сессии.
	if err := os.MkdirAll(cfg.Telegram.DatabaseDirectory, 0o700); err != nil {
		return fmt.Errorf("failed to create database directory: %w", err)
	}
	mtprotoLogger, closeMTProtoLog, err := telegram.NewMTProtoLogger(
		filepath.Join(cfg.Telegram.DatabaseDirectory, "mtproto.log"), cfg.Telegram.MTProtoLogLevel)
	if err != nil {
		return err
	}
	defer func() {
		_ = mtprotoLogger.Sync()
		closeMTProtoLog()
	}()

	sessionLogger := logger.With("component", "session")
	factory := func(ctx context.Context) (ports.Session, error) {
		s, err := telegram.NewSession(ctx, sessionCfg,
			telegram.WithLogger(sessionLogger),
			telegram.WithMTProtoLogger(mtprotoLogger),
		)
		if err != nil {
			return nil, err
		}
		return s, nil
	}

	client, err := sender.NewClient(sender.Config{
		Login:            cfg.Sender.Login,
		EncryptionKey:    cfg.Sender.EncryptionKey,
		Amount:           cfg.Sender.Amount,
		Parameters:       cfg.TdlibParameters(),
		AuthPollTimeout:  cfg.Sender.AuthPollTimeout,
		EventWaitTimeout: cfg.Sender.EventWaitTimeout,
		SendPause:        cfg.Sender.SendPause,
	}, factory, term.NewTerminal(cfg.Telegram.PhoneNumber),
		sender.WithLogger(logger.With("component", "sender")),
		sender.WithStrategy(strategy),
	)
	if err != nil {
		return fmt.Errorf("failed to create sender: %w", err)
	}

	// 6. Запуск с корректным завершением по сигналу
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("Starting sender",
		"login", cfg.Sender.Login,
		"amount", cfg.Sender.Amount,
		"strategy", cfg.Sender.Strategy,
		"database_directory", cfg.Telegram.DatabaseDirectory,
	)

	runErr := client.Run(ctx)

	stats := client.Stats()
	logger.Info("Sender stopped",
		"delivered", stats.Delivered,
		"sent", stats.Sent,
		"quota", stats.Quota,
		"stickers", stats.Stickers,
		"sets", stats.ProcessedSets,
		"restarts", stats.Restarts,
	)
	if err := exporter.NewConsoleExporter(os.Stdout).Export(stats); err != nil {
		logger.Warn("Failed to print report", "error", err)
	}

	return runErr
}

func newLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	switch cfg.Logging.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	// stdout занят приглашениями ввода, логи идут в stderr.
	handlerOpts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Logging.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, handlerOpts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, handlerOpts)
	}
	return log.NewMaskedLogger(handler, cfg.Secrets()...)
}
