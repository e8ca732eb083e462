package telegram

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/gotd/td/session"
	"github.com/gotd/td/telegram"
	"github.com/gotd/td/telegram/auth"
	"github.com/gotd/td/tg"
	"github.com/gotd/td/tgerr"
	"go.uber.org/zap"

	"random-sticker-sender/internal/tdapi"
)

var (
	// ErrFloodWaitActive возвращается, когда запрос не может быть выполнен из-за активного ограничения FLOOD_WAIT.
	ErrFloodWaitActive = errors.New("client is in flood wait")
	// floodWaitRegex используется для парсинга длительности ожидания из сообщения об ошибке.
	floodWaitRegex = regexp.MustCompile(`FLOOD_WAIT \((\d+)\)`)
)

// telegramAPI представляет необработанные методы API, которые мы используем.
type telegramAPI interface {
	ContactsResolveUsername(ctx context.Context, req *tg.ContactsResolveUsernameRequest) (*tg.ContactsResolvedPeer, error)
	MessagesGetAllStickers(ctx context.Context, hash int64) (tg.MessagesAllStickersClass, error)
	MessagesGetStickerSet(ctx context.Context, req *tg.MessagesGetStickerSetRequest) (tg.MessagesStickerSetClass, error)
	MessagesSendMedia(ctx context.Context, req *tg.MessagesSendMediaRequest) (tg.UpdatesClass, error)
}

// telegramAuth представляет клиент аутентификации.
type telegramAuth interface {
	Status(ctx context.Context) (*auth.Status, error)
	SendCode(ctx context.Context, phone string, options auth.SendCodeOptions) (tg.AuthSentCodeClass, error)
	SignIn(ctx context.Context, phone, code, codeHash string) (*tg.AuthAuthorization, error)
}

// telegramRunner определяет зависимости от клиента gotd.
// Это позволяет создавать моки в тестах.
type telegramRunner interface {
	Run(ctx context.Context, f func(ctx context.Context) error) error
	API() telegramAPI
	Auth() telegramAuth
}

// runnerFactory создает клиент gotd после того, как известны параметры и хранилище.
type runnerFactory func(params tdapi.TdlibParameters, storage session.Storage, logger *zap.Logger) telegramRunner

// prodRunner является оберткой вокруг реального *telegram.Client для удовлетворения интерфейса telegramRunner.
type prodRunner struct {
	*telegram.Client
}

func (p *prodRunner) API() telegramAPI {
	return p.Client.API()
}

func (p *prodRunner) Auth() telegramAuth {
	return p.Client.Auth()
}

func newProdRunner(params tdapi.TdlibParameters, storage session.Storage, logger *zap.Logger) telegramRunner {
	client := telegram.NewClient(params.APIID, params.APIHash, telegram.Options{
		Logger:         logger,
		SessionStorage: storage,
		Device: telegram.DeviceConfig{
			DeviceModel:    params.DeviceModel,
			AppVersion:     params.ApplicationVersion,
			SystemLangCode: params.SystemLanguageCode,
			LangCode:       params.SystemLanguageCode,
		},
	})
	return &prodRunner{Client: client}
}

// do выполняет вызов API с учетом ограничения FLOOD_WAIT.
func (s *Session) do(ctx context.Context, method string, f func(ctx context.Context) error) error {
	if err := s.checkHealthStatus(); err != nil {
		s.log.WarnContext(ctx, "Session is in flood wait, request rejected", "method", method, "error", err)
		return err
	}

	s.log.DebugContext(ctx, "Executing API call", "method", method)
	opErr := f(ctx)
	if opErr != nil {
		// Обрабатываем специфичные ошибки, такие как FLOOD_WAIT.
		s.handleError(opErr)
		s.log.WarnContext(ctx, "API call failed", "method", method, "error", opErr)
	}
	return opErr
}

// checkHealthStatus проверяет, не находится ли сессия в состоянии FLOOD_WAIT.
func (s *Session) checkHealthStatus() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.unhealthyUntil.IsZero() && s.clock().Before(s.unhealthyUntil) {
		return fmt.Errorf("%w: active until %v", ErrFloodWaitActive, s.unhealthyUntil)
	}
	return nil
}

// handleError ищет FLOOD_WAIT и обновляет состояние сессии.
func (s *Session) handleError(err error) {
	if waitDuration, ok := parseFloodWait(err); ok {
		s.mu.Lock()
		defer s.mu.Unlock()

		s.unhealthyUntil = s.clock().Add(waitDuration)
		s.log.Warn("Session got FLOOD_WAIT, set unhealthy", "wait_duration", waitDuration, "until", s.unhealthyUntil)
	}
}

// parseFloodWait извлекает длительность ожидания из ошибки.
func parseFloodWait(err error) (time.Duration, bool) {
	if err == nil {
		return 0, false
	}
	if d, ok := tgerr.AsFloodWait(err); ok {
		return d, true
	}

	matches := floodWaitRegex.FindStringSubmatch(err.Error())
	if len(matches) < 2 {
		return 0, false
	}

	seconds, convErr := strconv.Atoi(matches[1])
	if convErr != nil {
		return 0, false
	}

	return time.Duration(seconds) * time.Second, true
}

// toError превращает ошибку вызова в ошибочный результат запроса.
func toError(err error) *tdapi.Error {
	if errors.Is(err, ErrFloodWaitActive) {
		return &tdapi.Error{Code: 429, Message: err.Error()}
	}
	if rpcErr, ok := tgerr.As(err); ok {
		return &tdapi.Error{Code: rpcErr.Code, Message: rpcErr.Message}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return &tdapi.Error{Code: 408, Message: err.Error()}
	}
	return &tdapi.Error{Code: 500, Message: err.Error()}
}
