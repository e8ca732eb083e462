// Package tracker связывает запросы к сессии с их продолжениями.
package tracker

import (
	"sync"

	"random-sticker-sender/internal/tdapi"
)

// Handler — одноразовое продолжение запроса.
// Получает как успешный, так и ошибочный результат (*tdapi.Error).
type Handler func(result tdapi.Object)

// Sender — получатель запросов, обычно ports.Session.
type Sender interface {
	Send(requestID uint64, request tdapi.Function)
}

// Tracker выдает идентификаторы запросов и хранит их продолжения.
// Каждое продолжение вызывается не более одного раза.
type Tracker struct {
	sender   Sender
	onUpdate func(tdapi.Object)

	mu       sync.Mutex
	lastID   uint64
	handlers map[uint64]Handler
}

// New создает трекер. onUpdate получает push-обновления (RequestID == 0).
func New(sender Sender, onUpdate func(tdapi.Object)) *Tracker {
	return &Tracker{
		sender:   sender,
		onUpdate: onUpdate,
		handlers: make(map[uint64]Handler),
	}
}

// Submit отправляет запрос и регистрирует продолжение.
// handler == nil означает "отправить и забыть".
func (t *Tracker) Submit(request tdapi.Function, handler Handler) uint64 {
	t.mu.Lock()
	t.lastID++
	id := t.lastID
	if handler != nil {
		t.handlers[id] = handler
	}
	t.mu.Unlock()

	// Отправляем вне блокировки: сессия может сразу же ответить.
	t.sender.Send(id, request)
	return id
}

// Dispatch передает ответ его получателю.
// Возвращает true, если ответ был обработан продолжением или как push-обновление.
// Ответ на неизвестный или уже обработанный запрос молча отбрасывается.
func (t *Tracker) Dispatch(resp tdapi.Response) bool {
	if resp.Object == nil {
		return false
	}

	if resp.IsUpdate() {
		if t.onUpdate != nil {
			t.onUpdate(resp.Object)
		}
		return true
	}

	t.mu.Lock()
	handler, ok := t.handlers[resp.RequestID]
	if ok {
		delete(t.handlers, resp.RequestID)
	}
	t.mu.Unlock()

	if !ok {
		return false
	}

	// Продолжение может само отправлять запросы, поэтому вызываем его без блокировки.
	handler(resp.Object)
	return true
}

// Pending возвращает число запросов, ожидающих ответа.
func (t *Tracker) Pending() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.handlers)
}

// LastID возвращает последний выданный идентификатор.
func (t *Tracker) LastID() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastID
}
