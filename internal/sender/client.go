// Package sender реализует клиент, который авторизуется в Telegram,
// загружает установленные наборы стикеров и отправляет случайные стикеры
// указанному пользователю.
//
// Вся бизнес-логика выполняется в одном цикле Run: он опрашивает сессию,
// передает ответы продолжениям через трекер запросов и по флагам состояния
// решает, какой шаг сделать следующим.
package sender

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"random-sticker-sender/internal/domain"
	"random-sticker-sender/internal/ports"
	"random-sticker-sender/internal/tdapi"
	"random-sticker-sender/internal/tracker"
)

const (
	unknownSetCount  = -1
	unresolvedChatID = int64(-1)

	defaultAuthPollTimeout  = 1 * time.Second
	defaultEventWaitTimeout = 10 * time.Second
	defaultSendPause        = 1 * time.Second
)

// ErrEmptyCatalog возвращается, когда все наборы загружены, но стикеров в них нет.
var ErrEmptyCatalog = errors.New("sticker catalog is empty")

// Config содержит неизменяемую конфигурацию клиента.
// При перезапуске сессии все состояние восстанавливается только из нее.
type Config struct {
	// Login — имя пользователя, которому отправляются стикеры.
	Login string
	// EncryptionKey — ключ шифрования хранилища сессии.
	EncryptionKey string
	// Amount — сколько стикеров нужно доставить.
	Amount int
	// Parameters передаются сессии в состоянии WaitTdlibParameters.
	Parameters tdapi.TdlibParameters

	// AuthPollTimeout — таймаут ожидания события до завершения авторизации.
	AuthPollTimeout time.Duration
	// EventWaitTimeout — таймаут ожидания события, когда делать больше нечего.
	EventWaitTimeout time.Duration
	// SendPause — пауза после подтвержденной отправки.
	SendPause time.Duration
}

// Option определяет функциональную опцию для конфигурации клиента.
type Option func(*Client)

// WithLogger устанавливает логгер для клиента.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// WithStrategy устанавливает стратегию выбора стикера.
func WithStrategy(s ports.Strategy) Option {
	return func(c *Client) {
		if s != nil {
			c.strategy = s
		}
	}
}

// WithSleep подменяет паузу после отправки (используется в тестах).
func WithSleep(f func(ctx context.Context, d time.Duration) error) Option {
	return func(c *Client) {
		if f != nil {
			c.sleep = f
		}
	}
}

// state — все изменяемое состояние одной сессии.
// При перезапуске заменяется целиком.
type state struct {
	authState   tdapi.AuthorizationState
	authGen     uint64
	ready       bool
	needRestart bool
	exit        bool
	started     bool

	totalSets     int
	processedSets int
	targetChatID  int64
	stickers      []domain.Sticker

	sent      int
	delivered int
}

func newState() *state {
	return &state{
		totalSets:    unknownSetCount,
		targetChatID: unresolvedChatID,
	}
}

func (s *state) catalogComplete() bool {
	return s.totalSets != unknownSetCount && s.processedSets == s.totalSets
}

// Client — клиент, доставляющий заданное число случайных стикеров.
type Client struct {
	cfg        Config
	newSession ports.SessionFactory
	prompter   ports.Prompter
	strategy   ports.Strategy
	sleep      func(ctx context.Context, d time.Duration) error
	log        *slog.Logger

	// session и tracker принадлежат циклу Run.
	session ports.Session
	tracker *tracker.Tracker

	mu       sync.Mutex
	st       *state
	restarts int
}

// NewClient создает клиент. Сессия создается при вызове Run.
func NewClient(cfg Config, newSession ports.SessionFactory, prompter ports.Prompter, opts ...Option) (*Client, error) {
	if newSession == nil {
		return nil, errors.New("session factory is required")
	}
	if prompter == nil {
		return nil, errors.New("prompter is required")
	}
	if cfg.Login == "" {
		return nil, errors.New("login is required")
	}
	if cfg.Amount <= 0 {
		return nil, fmt.Errorf("amount must be positive, got %d", cfg.Amount)
	}
	if cfg.AuthPollTimeout <= 0 {
		cfg.AuthPollTimeout = defaultAuthPollTimeout
	}
	if cfg.EventWaitTimeout <= 0 {
		cfg.EventWaitTimeout = defaultEventWaitTimeout
	}
	if cfg.SendPause <= 0 {
		cfg.SendPause = defaultSendPause
	}

	c := &Client{
		cfg:        cfg,
		newSession: newSession,
		prompter:   prompter,
		strategy:   NewRandomStrategy(),
		sleep:      sleepContext,
		log:        slog.Default(),
		st:         newState(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Run выполняет цикл клиента, пока не будет доставлено Amount стикеров.
// Возвращает nil при успехе и ошибку контекста при отмене.
func (c *Client) Run(ctx context.Context) error {
	if err := c.rebuild(ctx); err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	defer c.closeSession()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		done, err := c.step(ctx)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}
}

// step принимает одно решение цикла управления.
// Возвращает true, когда квота доставлена.
func (c *Client) step(ctx context.Context) (bool, error) {
	c.mu.Lock()
	needRestart := c.st.needRestart
	ready := c.st.ready
	exit := c.st.exit
	started := c.st.started
	canSend := c.st.catalogComplete() &&
		c.st.targetChatID != unresolvedChatID &&
		c.st.sent < c.cfg.Amount
	c.mu.Unlock()

	switch {
	case needRestart:
		return false, c.restart(ctx)
	case !ready:
		c.poll(ctx, c.cfg.AuthPollTimeout)
	case exit:
		c.log.InfoContext(ctx, "All stickers delivered", "amount", c.cfg.Amount)
		return true, nil
	case !started:
		c.startFetch(ctx)
	case canSend:
		return false, c.deliverOne(ctx)
	default:
		return false, c.waitEvent(ctx)
	}
	return false, nil
}

// Stats возвращает снимок счетчиков. Безопасен для вызова из других горутин.
func (c *Client) Stats() domain.Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return domain.Stats{
		Ready:         c.st.ready,
		Started:       c.st.started,
		TargetChatID:  c.st.targetChatID,
		TotalSets:     c.st.totalSets,
		ProcessedSets: c.st.processedSets,
		Stickers:      len(c.st.stickers),
		Sent:          c.st.sent,
		Delivered:     c.st.delivered,
		Quota:         c.cfg.Amount,
		Restarts:      c.restarts,
	}
}

// rebuild создает новую сессию и сбрасывает все состояние к начальному.
func (c *Client) rebuild(ctx context.Context) error {
	session, err := c.newSession(ctx)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.st = newState()
	c.mu.Unlock()

	c.session = session
	c.tracker = tracker.New(session, func(update tdapi.Object) {
		c.processUpdate(ctx, update)
	})
	c.tracker.Submit(&tdapi.GetOption{Name: "version"}, nil)
	return nil
}

func (c *Client) restart(ctx context.Context) error {
	c.log.WarnContext(ctx, "Session closed, restarting", "pending_requests", c.tracker.Pending())
	c.closeSession()

	c.mu.Lock()
	c.restarts++
	c.mu.Unlock()

	if err := c.rebuild(ctx); err != nil {
		return fmt.Errorf("failed to restart session: %w", err)
	}
	return nil
}

func (c *Client) closeSession() {
	if c.session == nil {
		return
	}
	if err := c.session.Close(); err != nil {
		c.log.Warn("Failed to close session", "error", err)
	}
	c.session = nil
}

// poll ждет одно событие и передает его трекеру.
func (c *Client) poll(ctx context.Context, timeout time.Duration) {
	resp, ok := c.session.Receive(ctx, timeout)
	if !ok {
		return
	}
	c.dispatch(ctx, resp)
}

// waitEvent блокируется до первого настоящего события.
func (c *Client) waitEvent(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		resp, ok := c.session.Receive(ctx, c.cfg.EventWaitTimeout)
		if !ok {
			continue
		}
		c.dispatch(ctx, resp)
		return nil
	}
}

func (c *Client) dispatch(ctx context.Context, resp tdapi.Response) {
	if !c.tracker.Dispatch(resp) && resp.Object != nil {
		c.log.DebugContext(ctx, "Dropped response without handler",
			"request_id", resp.RequestID,
			"type", resp.Object.TypeName(),
		)
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
