// Package telegram реализует сессию мессенджера поверх MTProto-клиента gotd.
//
// Сессия принимает запросы в виде объектов tdapi и отдает результаты и
// push-обновления через единую очередь событий. Процесс входа представлен
// последовательностью состояний авторизации, как в TDLib: сессия сама
// сообщает, какие данные ей нужны следующими.
package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gotd/td/tg"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"random-sticker-sender/internal/cache"
	"random-sticker-sender/internal/tdapi"
)

const (
	defaultWorkers      = 4
	eventsBufferSize    = 256
	sessionFileName     = "session.age"
	mtprotoLogFileName  = "mtproto.log"
	cacheCleanupPeriod  = 10 * time.Minute
	optionVersion       = "version"
	defaultMTProtoLevel = "info"
)

// Config содержит настройки сессии, не зависящие от параметров TDLib.
type Config struct {
	// Workers — сколько запросов выполняется одновременно.
	Workers int
	// MTProtoLogLevel — уровень логов gotd в файле mtproto.log.
	MTProtoLogLevel string
	// KeyWorkFactor — log2(N) для scrypt при шифровании сессии, 0 — по умолчанию.
	KeyWorkFactor int
	// EntityTTL — сколько хранятся access hash собеседников и наборов, 0 — бессрочно.
	EntityTTL time.Duration
}

// Option определяет функциональную опцию для конфигурации сессии.
type Option func(*Session)

// WithLogger устанавливает логгер для сессии.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.log = l
		}
	}
}

// WithMTProtoLogger устанавливает логгер gotd вместо файла в каталоге базы.
func WithMTProtoLogger(l *zap.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.zlog = l
		}
	}
}

// Session реализует ports.Session поверх gotd.
type Session struct {
	id        string
	cfg       Config
	log       *slog.Logger
	zlog      *zap.Logger
	closeZlog func()
	newRunner runnerFactory
	clock     func() time.Time

	// openMTProtoLog создает файловый логгер gotd, если он не передан в опциях.
	openMTProtoLog func(path, level string) (*zap.Logger, func(), error)

	ctx       context.Context
	cancel    context.CancelFunc
	sem       *semaphore.Weighted
	events    chan tdapi.Response
	done      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once

	peers *cache.CacheStore[int64, tg.InputPeerClass]
	sets  *cache.CacheStore[int64, *tg.InputStickerSetID]

	mu             sync.RWMutex
	state          tdapi.AuthorizationState
	params         *tdapi.TdlibParameters
	storage        *EncryptedFileStorage
	runner         telegramRunner
	phone          string
	codeHash       string
	unhealthyUntil time.Time
}

// NewSession создает сессию и сразу сообщает состояние WaitTdlibParameters.
func NewSession(ctx context.Context, cfg Config, opts ...Option) (*Session, error) {
	if cfg.Workers <= 0 {
		cfg.Workers = defaultWorkers
	}
	if cfg.MTProtoLogLevel == "" {
		cfg.MTProtoLogLevel = defaultMTProtoLevel
	}
	if cfg.KeyWorkFactor < 0 || cfg.KeyWorkFactor > 30 {
		return nil, fmt.Errorf("scrypt work factor %d out of range", cfg.KeyWorkFactor)
	}

	s := &Session{
		id:             uuid.NewString(),
		cfg:            cfg,
		log:            slog.Default(),
		newRunner:      newProdRunner,
		openMTProtoLog: NewMTProtoLogger,
		clock:          time.Now,
		sem:            semaphore.NewWeighted(int64(cfg.Workers)),
		events:         make(chan tdapi.Response, eventsBufferSize),
		done:           make(chan struct{}),
		peers:          cache.NewCacheStore[int64, tg.InputPeerClass](),
		sets:           cache.NewCacheStore[int64, *tg.InputStickerSetID](),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With("session_id", s.id)
	s.ctx, s.cancel = context.WithCancel(ctx)

	if cfg.EntityTTL > 0 {
		s.peers.StartCleanupTicker(s.ctx, cacheCleanupPeriod)
		s.sets.StartCleanupTicker(s.ctx, cacheCleanupPeriod)
	}

	s.log.DebugContext(ctx, "Session created", "workers", cfg.Workers)
	s.setState(&tdapi.AuthorizationStateWaitTdlibParameters{})
	return s, nil
}

// ID возвращает уникальный идентификатор сессии.
func (s *Session) ID() string {
	return s.id
}

// Send выполняет запрос в отдельной горутине и не блокируется.
// Одновременно выполняется не больше Workers запросов, поэтому ответы
// могут приходить не в том порядке, в котором запросы были отправлены.
func (s *Session) Send(requestID uint64, request tdapi.Function) {
	if s.ctx.Err() != nil {
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.sem.Acquire(s.ctx, 1); err != nil {
			return
		}
		result := s.execute(s.ctx, request)
		s.sem.Release(1)

		if e, ok := tdapi.AsError(result); ok {
			s.log.Debug("Request failed", "request_id", requestID, "request", request.TypeName(), "code", e.Code, "error", e.Message)
		}
		s.emit(tdapi.Response{RequestID: requestID, Object: result})
	}()
}

// Receive возвращает следующее событие или false по таймауту.
func (s *Session) Receive(ctx context.Context, timeout time.Duration) (tdapi.Response, bool) {
	select {
	case <-s.done:
		return tdapi.Response{}, false
	default:
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case resp := <-s.events:
		return resp, true
	case <-timer.C:
	case <-ctx.Done():
	case <-s.done:
	}
	return tdapi.Response{}, false
}

// Close останавливает клиент MTProto и все выполняющиеся запросы.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.log.Debug("Closing session")
		// Сначала закрываем очередь, чтобы события остановленного клиента не попали в нее.
		close(s.done)
		s.cancel()
		s.wg.Wait()
		s.mu.RLock()
		defer s.mu.RUnlock()
		// Логгер, переданный через WithMTProtoLogger, закрывает его владелец.
		if s.closeZlog != nil {
			_ = s.zlog.Sync()
			s.closeZlog()
		}
	})
	return nil
}

// emit кладет событие в очередь. После закрытия сессии события отбрасываются.
func (s *Session) emit(resp tdapi.Response) {
	select {
	case <-s.done:
		return
	default:
	}
	select {
	case s.events <- resp:
	case <-s.done:
	}
}

// setState меняет состояние авторизации и сообщает о нем клиенту.
func (s *Session) setState(state tdapi.AuthorizationState) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()

	s.log.Debug("Authorization state changed", "state", state.TypeName())
	s.emit(tdapi.Response{Object: &tdapi.UpdateAuthorizationState{State: state}})
}

func (s *Session) currentState() tdapi.AuthorizationState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// execute выбирает обработчик по типу запроса.
func (s *Session) execute(ctx context.Context, request tdapi.Function) tdapi.Object {
	switch r := request.(type) {
	case *tdapi.GetOption:
		return s.getOption(r.Name)
	case *tdapi.SetTdlibParameters:
		return s.setParameters(r.Parameters)
	case *tdapi.CheckDatabaseEncryptionKey:
		return s.checkEncryptionKey(ctx, r.EncryptionKey)
	case *tdapi.SetAuthenticationPhoneNumber:
		return s.sendCode(ctx, r.PhoneNumber)
	case *tdapi.CheckAuthenticationCode:
		return s.signIn(ctx, r.Code)
	case *tdapi.SearchPublicChat:
		return s.searchPublicChat(ctx, r.Username)
	case *tdapi.GetInstalledStickerSets:
		return s.getInstalledStickerSets(ctx)
	case *tdapi.GetStickerSet:
		return s.getStickerSet(ctx, r.SetID)
	case *tdapi.SendMessage:
		return s.sendMessage(ctx, r)
	default:
		return &tdapi.Error{Code: 400, Message: "unsupported request " + request.TypeName()}
	}
}

func (s *Session) getOption(name string) tdapi.Object {
	if name == optionVersion {
		return &tdapi.OptionValueString{Value: strconv.Itoa(tg.Layer)}
	}
	return &tdapi.Error{Code: 400, Message: "option " + name + " not found"}
}
