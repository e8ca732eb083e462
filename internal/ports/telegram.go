package ports

import (
	"context"
	"time"

	"random-sticker-sender/internal/tdapi"
)

// Session — соединение с бэкендом мессенджера.
// Send не блокируется; результаты запросов и push-обновления приходят через Receive.
type Session interface {
	// Send отправляет запрос, помеченный идентификатором requestID.
	Send(requestID uint64, request tdapi.Function)
	// Receive ждет следующее событие не дольше timeout.
	// Возвращает false, если событие не пришло или контекст завершен.
	Receive(ctx context.Context, timeout time.Duration) (tdapi.Response, bool)
	// Close закрывает сессию. Неполученные ответы теряются.
	Close() error
}

// SessionFactory создает новую сессию с одной и той же конфигурацией.
// Вызывается при старте и при каждом перезапуске.
type SessionFactory func(ctx context.Context) (Session, error)
