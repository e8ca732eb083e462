package telegram

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gotd/td/telegram/auth"
	"github.com/gotd/td/tg"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"random-sticker-sender/internal/tdapi"
)

func unexpectedRequest(request string, state tdapi.AuthorizationState) *tdapi.Error {
	current := "none"
	if state != nil {
		current = state.TypeName()
	}
	return &tdapi.Error{Code: 400, Message: fmt.Sprintf("unexpected %s in state %s", request, current)}
}

// setParameters проверяет параметры и готовит каталог базы.
func (s *Session) setParameters(p tdapi.TdlibParameters) tdapi.Object {
	state := s.currentState()
	if _, ok := state.(*tdapi.AuthorizationStateWaitTdlibParameters); !ok {
		return unexpectedRequest("setTdlibParameters", state)
	}
	if p.APIID <= 0 || p.APIHash == "" {
		return &tdapi.Error{Code: 400, Message: "API_ID_INVALID"}
	}
	if p.DatabaseDirectory == "" {
		return &tdapi.Error{Code: 400, Message: "database directory is empty"}
	}
	if err := os.MkdirAll(p.DatabaseDirectory, 0o700); err != nil {
		return &tdapi.Error{Code: 500, Message: fmt.Sprintf("failed to create database directory: %v", err)}
	}

	s.mu.Lock()
	if s.zlog == nil {
		logger, closeLog, err := s.openMTProtoLog(filepath.Join(p.DatabaseDirectory, mtprotoLogFileName), s.cfg.MTProtoLogLevel)
		if err != nil {
			s.mu.Unlock()
			return &tdapi.Error{Code: 500, Message: err.Error()}
		}
		s.zlog = logger
		s.closeZlog = closeLog
	}
	s.params = &p
	s.mu.Unlock()

	s.log.Info("Session parameters accepted",
		"database_directory", p.DatabaseDirectory,
		"device_model", p.DeviceModel,
		"application_version", p.ApplicationVersion,
		"language", p.SystemLanguageCode,
	)

	_, err := os.Stat(s.sessionPath(p))
	s.setState(&tdapi.AuthorizationStateWaitEncryptionKey{IsEncrypted: err == nil})
	return &tdapi.Ok{}
}

func (s *Session) sessionPath(p tdapi.TdlibParameters) string {
	return filepath.Join(p.DatabaseDirectory, sessionFileName)
}

// checkEncryptionKey открывает зашифрованное хранилище и запускает клиент MTProto.
func (s *Session) checkEncryptionKey(ctx context.Context, key string) tdapi.Object {
	state := s.currentState()
	if _, ok := state.(*tdapi.AuthorizationStateWaitEncryptionKey); !ok {
		return unexpectedRequest("checkDatabaseEncryptionKey", state)
	}

	s.mu.RLock()
	params := *s.params
	zlog := s.zlog
	s.mu.RUnlock()

	storage, err := NewEncryptedFileStorage(s.sessionPath(params), key, s.cfg.KeyWorkFactor)
	if err != nil {
		return &tdapi.Error{Code: 400, Message: "ENCRYPTION_KEY_INVALID"}
	}
	if err := storage.Verify(ctx); err != nil {
		if errors.Is(err, ErrWrongEncryptionKey) {
			return &tdapi.Error{Code: 401, Message: "WRONG_ENCRYPTION_KEY"}
		}
		return &tdapi.Error{Code: 500, Message: err.Error()}
	}

	s.start(params, storage, zlog)
	return &tdapi.Ok{}
}

// start запускает клиент в фоне. Когда клиент останавливается,
// сессия сообщает состояния Closing и Closed.
func (s *Session) start(params tdapi.TdlibParameters, storage *EncryptedFileStorage, zlog *zap.Logger) {
	runner := s.newRunner(params, storage, zlog)

	s.mu.Lock()
	s.storage = storage
	s.runner = runner
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.log.Info("Starting telegram client background runner")

		err := runner.Run(s.ctx, func(runCtx context.Context) error {
			status, err := runner.Auth().Status(runCtx)
			if err != nil {
				return fmt.Errorf("failed to get auth status: %w", err)
			}
			if status.Authorized {
				s.log.InfoContext(runCtx, "Telegram client authenticated and ready")
				s.setState(&tdapi.AuthorizationStateReady{})
			} else {
				s.log.InfoContext(runCtx, "Session is not authorized, waiting for phone number")
				s.setState(&tdapi.AuthorizationStateWaitPhoneNumber{})
			}

			// Держим соединение активным, пока не завершится контекст.
			<-runCtx.Done()
			return runCtx.Err()
		})

		if err != nil && !errors.Is(err, context.Canceled) {
			s.log.Error("Telegram client background runner exited with error", "error", err)
		} else {
			s.log.Info("Telegram client background runner stopped")
		}

		s.setState(&tdapi.AuthorizationStateClosing{})
		s.setState(&tdapi.AuthorizationStateClosed{})
	}()
}

func (s *Session) authClient() telegramAuth {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.runner == nil {
		return nil
	}
	return s.runner.Auth()
}

// sendCode запрашивает код подтверждения для номера телефона.
func (s *Session) sendCode(ctx context.Context, phone string) tdapi.Object {
	state := s.currentState()
	if _, ok := state.(*tdapi.AuthorizationStateWaitPhoneNumber); !ok {
		return unexpectedRequest("setAuthenticationPhoneNumber", state)
	}
	if phone == "" {
		return &tdapi.Error{Code: 400, Message: "PHONE_NUMBER_INVALID"}
	}

	var sent tg.AuthSentCodeClass
	err := s.do(ctx, "auth.sendCode", func(ctx context.Context) error {
		res, err := s.authClient().SendCode(ctx, phone, auth.SendCodeOptions{})
		if err == nil {
			sent = res
		}
		return err
	})
	if err != nil {
		return toError(err)
	}

	switch c := sent.(type) {
	case *tg.AuthSentCode:
		s.mu.Lock()
		s.phone = phone
		s.codeHash = c.PhoneCodeHash
		s.mu.Unlock()
		s.setState(&tdapi.AuthorizationStateWaitCode{})
	case *tg.AuthSentCodeSuccess:
		s.log.Info("Authorized without code")
		s.setState(&tdapi.AuthorizationStateReady{})
	default:
		return &tdapi.Error{Code: 500, Message: fmt.Sprintf("unexpected sent code type %T", sent)}
	}
	return &tdapi.Ok{}
}

// signIn завершает вход кодом подтверждения.
func (s *Session) signIn(ctx context.Context, code string) tdapi.Object {
	state := s.currentState()
	if _, ok := state.(*tdapi.AuthorizationStateWaitCode); !ok {
		return unexpectedRequest("checkAuthenticationCode", state)
	}

	s.mu.RLock()
	phone, hash := s.phone, s.codeHash
	s.mu.RUnlock()

	err := s.do(ctx, "auth.signIn", func(ctx context.Context) error {
		_, err := s.authClient().SignIn(ctx, phone, code, hash)
		return err
	})
	if errors.Is(err, auth.ErrPasswordAuthNeeded) {
		s.setState(&tdapi.AuthorizationStateWaitPassword{})
		return &tdapi.Ok{}
	}
	if err != nil {
		return toError(err)
	}

	s.log.Info("Signed in")
	s.setState(&tdapi.AuthorizationStateReady{})
	return &tdapi.Ok{}
}

// NewMTProtoLogger создает логгер gotd, пишущий в файл path, чтобы не мешать вводу в консоли.
// Возвращаемая функция закрывает файл; вызывать ее после Sync.
func NewMTProtoLogger(path, level string) (*zap.Logger, func(), error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid mtproto log level %q: %w", level, err)
	}
	sink, closeSink, err := zap.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create mtproto logger: %w", err)
	}
	core := zapcore.NewCore(zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()), sink, lvl)
	return zap.New(core, zap.ErrorOutput(sink)), closeSink, nil
}
