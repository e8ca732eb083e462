package tdapi

// TdlibParameters — параметры, с которыми инициализируется сессия.
type TdlibParameters struct {
	DatabaseDirectory      string
	UseMessageDatabase     bool
	UseSecretChats         bool
	APIID                  int
	APIHash                string
	SystemLanguageCode     string
	DeviceModel            string
	ApplicationVersion     string
	EnableStorageOptimizer bool
}

// GetOption запрашивает значение опции сессии.
type GetOption struct {
	Name string
}

func (*GetOption) TypeName() string { return "getOption" }
func (*GetOption) isFunction()      {}

// SetTdlibParameters передает параметры сессии.
type SetTdlibParameters struct {
	Parameters TdlibParameters
}

func (*SetTdlibParameters) TypeName() string { return "setTdlibParameters" }
func (*SetTdlibParameters) isFunction()      {}

// CheckDatabaseEncryptionKey передает ключ шифрования хранилища сессии.
type CheckDatabaseEncryptionKey struct {
	EncryptionKey string
}

func (*CheckDatabaseEncryptionKey) TypeName() string { return "checkDatabaseEncryptionKey" }
func (*CheckDatabaseEncryptionKey) isFunction()      {}

// SetAuthenticationPhoneNumber передает номер телефона для входа.
type SetAuthenticationPhoneNumber struct {
	PhoneNumber string
}

func (*SetAuthenticationPhoneNumber) TypeName() string { return "setAuthenticationPhoneNumber" }
func (*SetAuthenticationPhoneNumber) isFunction()      {}

// CheckAuthenticationCode передает код подтверждения.
type CheckAuthenticationCode struct {
	Code string
}

func (*CheckAuthenticationCode) TypeName() string { return "checkAuthenticationCode" }
func (*CheckAuthenticationCode) isFunction()      {}

// SearchPublicChat ищет публичный чат по имени пользователя.
type SearchPublicChat struct {
	Username string
}

func (*SearchPublicChat) TypeName() string { return "searchPublicChat" }
func (*SearchPublicChat) isFunction()      {}

// GetInstalledStickerSets запрашивает установленные наборы стикеров.
type GetInstalledStickerSets struct{}

func (*GetInstalledStickerSets) TypeName() string { return "getInstalledStickerSets" }
func (*GetInstalledStickerSets) isFunction()      {}

// GetStickerSet запрашивает содержимое набора стикеров.
type GetStickerSet struct {
	SetID int64
}

func (*GetStickerSet) TypeName() string { return "getStickerSet" }
func (*GetStickerSet) isFunction()      {}

// InputFileRemote ссылается на файл, уже загруженный на сервер.
type InputFileRemote struct {
	ID string
}

// InputMessageSticker — содержимое сообщения со стикером.
type InputMessageSticker struct {
	Sticker InputFileRemote
	Width   int
	Height  int
}

// SendMessage отправляет сообщение в чат.
type SendMessage struct {
	ChatID  int64
	Content InputMessageSticker
}

func (*SendMessage) TypeName() string { return "sendMessage" }
func (*SendMessage) isFunction()      {}
