package tdapi

// AuthorizationState — текущее состояние авторизации сессии.
type AuthorizationState interface {
	Object
	isAuthorizationState()
}

// UpdateAuthorizationState сообщает о смене состояния авторизации.
type UpdateAuthorizationState struct {
	State AuthorizationState
}

func (*UpdateAuthorizationState) TypeName() string { return "updateAuthorizationState" }
func (*UpdateAuthorizationState) isUpdate()        {}

// UpdateOption сообщает об изменении опции сессии.
type UpdateOption struct {
	Name  string
	Value string
}

func (*UpdateOption) TypeName() string { return "updateOption" }
func (*UpdateOption) isUpdate()        {}

type AuthorizationStateWaitTdlibParameters struct{}

func (*AuthorizationStateWaitTdlibParameters) TypeName() string {
	return "authorizationStateWaitTdlibParameters"
}
func (*AuthorizationStateWaitTdlibParameters) isAuthorizationState() {}

// AuthorizationStateWaitEncryptionKey: IsEncrypted == true, если хранилище уже существует.
type AuthorizationStateWaitEncryptionKey struct {
	IsEncrypted bool
}

func (*AuthorizationStateWaitEncryptionKey) TypeName() string {
	return "authorizationStateWaitEncryptionKey"
}
func (*AuthorizationStateWaitEncryptionKey) isAuthorizationState() {}

type AuthorizationStateWaitPhoneNumber struct{}

func (*AuthorizationStateWaitPhoneNumber) TypeName() string {
	return "authorizationStateWaitPhoneNumber"
}
func (*AuthorizationStateWaitPhoneNumber) isAuthorizationState() {}

type AuthorizationStateWaitCode struct{}

func (*AuthorizationStateWaitCode) TypeName() string { return "authorizationStateWaitCode" }
func (*AuthorizationStateWaitCode) isAuthorizationState() {}

// AuthorizationStateWaitPassword — для аккаунта включена двухэтапная проверка.
type AuthorizationStateWaitPassword struct {
	Hint string
}

func (*AuthorizationStateWaitPassword) TypeName() string { return "authorizationStateWaitPassword" }
func (*AuthorizationStateWaitPassword) isAuthorizationState() {}

type AuthorizationStateReady struct{}

func (*AuthorizationStateReady) TypeName() string { return "authorizationStateReady" }
func (*AuthorizationStateReady) isAuthorizationState() {}

type AuthorizationStateLoggingOut struct{}

func (*AuthorizationStateLoggingOut) TypeName() string { return "authorizationStateLoggingOut" }
func (*AuthorizationStateLoggingOut) isAuthorizationState() {}

type AuthorizationStateClosing struct{}

func (*AuthorizationStateClosing) TypeName() string { return "authorizationStateClosing" }
func (*AuthorizationStateClosing) isAuthorizationState() {}

// AuthorizationStateClosed — сессия закрыта, дальше работать с ней нельзя.
type AuthorizationStateClosed struct{}

func (*AuthorizationStateClosed) TypeName() string { return "authorizationStateClosed" }
func (*AuthorizationStateClosed) isAuthorizationState() {}
