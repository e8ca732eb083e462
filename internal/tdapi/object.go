// Package tdapi описывает объекты, которыми клиент обменивается с сессией:
// запросы (функции), результаты, push-обновления и состояния авторизации.
//
// Все объекты — это помеченные варианты: конкретный тип определяется
// переключателем по типу, а TypeName дает стабильное имя для логов.
package tdapi

import "fmt"

// Object — любой объект, пришедший из сессии или отправленный в нее.
type Object interface {
	TypeName() string
}

// Function — запрос, который можно отправить в сессию.
type Function interface {
	Object
	isFunction()
}

// Update — push-обновление, не связанное ни с одним запросом.
type Update interface {
	Object
	isUpdate()
}

// Response — единица входящего потока событий сессии.
// RequestID == 0 означает push-обновление.
type Response struct {
	RequestID uint64
	Object    Object
}

// IsUpdate сообщает, является ли ответ незапрошенным push-событием.
func (r Response) IsUpdate() bool {
	return r.RequestID == 0
}

// Error — результат запроса, завершившегося ошибкой.
type Error struct {
	Code    int
	Message string
}

func (*Error) TypeName() string { return "error" }

// Error реализует интерфейс error, чтобы результат можно было оборачивать.
func (e *Error) Error() string {
	return fmt.Sprintf("%d: %s", e.Code, e.Message)
}

// IsError сообщает, является ли объект ошибочным результатом.
func IsError(o Object) bool {
	_, ok := o.(*Error)
	return ok
}

// AsError возвращает ошибку из результата, если результат ошибочный.
func AsError(o Object) (*Error, bool) {
	e, ok := o.(*Error)
	return e, ok
}

// Ok — пустой успешный результат.
type Ok struct{}

func (*Ok) TypeName() string { return "ok" }

// OptionValueString — строковое значение опции.
type OptionValueString struct {
	Value string
}

func (*OptionValueString) TypeName() string { return "optionValueString" }

// Chat — разрешенный чат.
type Chat struct {
	ID    int64
	Title string
}

func (*Chat) TypeName() string { return "chat" }

// StickerSetInfo — краткое описание установленного набора стикеров.
type StickerSetInfo struct {
	ID    int64
	Title string
	Name  string
	Size  int
}

// StickerSets — список установленных наборов стикеров.
type StickerSets struct {
	TotalCount int
	Sets       []StickerSetInfo
}

func (*StickerSets) TypeName() string { return "stickerSets" }

// Sticker — стикер внутри набора.
type Sticker struct {
	SetID    int64
	Width    int
	Height   int
	Emoji    string
	RemoteID string
}

// StickerSet — полностью загруженный набор стикеров.
type StickerSet struct {
	ID       int64
	Title    string
	Name     string
	Stickers []Sticker
}

func (*StickerSet) TypeName() string { return "stickerSet" }

// Message — отправленное сообщение.
type Message struct {
	ID     int64
	ChatID int64
}

func (*Message) TypeName() string { return "message" }
