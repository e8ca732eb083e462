package sender

import (
	"context"

	"random-sticker-sender/internal/tdapi"
)

// processUpdate обрабатывает push-обновления сессии.
// Интересны только обновления состояния авторизации, остальные пропускаются.
func (c *Client) processUpdate(ctx context.Context, update tdapi.Object) {
	switch u := update.(type) {
	case *tdapi.UpdateAuthorizationState:
		if u.State == nil {
			return
		}
		c.mu.Lock()
		c.st.authState = u.State
		c.mu.Unlock()
		c.onAuthorizationStateUpdate(ctx)
	default:
		c.log.DebugContext(ctx, "Ignoring update", "type", update.TypeName())
	}
}

// onAuthorizationStateUpdate выполняет действие, которого требует текущее состояние.
// Каждый вызов увеличивает поколение, поэтому ответы на запросы,
// отправленные в прошлых состояниях, игнорируются.
func (c *Client) onAuthorizationStateUpdate(ctx context.Context) {
	c.mu.Lock()
	c.st.authGen++
	gen := c.st.authGen
	current := c.st.authState
	c.mu.Unlock()

	if current == nil {
		return
	}

	c.log.DebugContext(ctx, "Authorization state", "state", current.TypeName(), "generation", gen)

	switch current.(type) {
	case *tdapi.AuthorizationStateReady:
		c.setReady(true)
		c.log.InfoContext(ctx, "Authorized")
	case *tdapi.AuthorizationStateLoggingOut:
		c.setReady(false)
		c.log.InfoContext(ctx, "Logging out")
	case *tdapi.AuthorizationStateClosing:
		c.log.InfoContext(ctx, "Closing")
	case *tdapi.AuthorizationStateClosed:
		c.mu.Lock()
		c.st.ready = false
		c.st.needRestart = true
		c.mu.Unlock()
		c.log.InfoContext(ctx, "Closed")
	case *tdapi.AuthorizationStateWaitCode:
		code, err := c.prompter.Code(ctx)
		if err != nil {
			c.log.ErrorContext(ctx, "Failed to read authentication code", "error", err)
			return
		}
		c.submitAuthentication(ctx, gen, &tdapi.CheckAuthenticationCode{Code: code})
	case *tdapi.AuthorizationStateWaitPhoneNumber:
		phone, err := c.prompter.PhoneNumber(ctx)
		if err != nil {
			c.log.ErrorContext(ctx, "Failed to read phone number", "error", err)
			return
		}
		c.submitAuthentication(ctx, gen, &tdapi.SetAuthenticationPhoneNumber{PhoneNumber: phone})
	case *tdapi.AuthorizationStateWaitEncryptionKey:
		c.submitAuthentication(ctx, gen, &tdapi.CheckDatabaseEncryptionKey{EncryptionKey: c.cfg.EncryptionKey})
	case *tdapi.AuthorizationStateWaitTdlibParameters:
		c.submitAuthentication(ctx, gen, &tdapi.SetTdlibParameters{Parameters: c.cfg.Parameters})
	case *tdapi.AuthorizationStateWaitPassword:
		c.log.WarnContext(ctx, "Two-step verification is enabled for this account and is not supported")
	}
}

// submitAuthentication отправляет запрос авторизации, ответ на который
// учитывается, только пока поколение gen остается текущим.
func (c *Client) submitAuthentication(ctx context.Context, gen uint64, request tdapi.Function) {
	c.tracker.Submit(request, func(result tdapi.Object) {
		if !c.isCurrentAuthGeneration(gen) {
			c.log.DebugContext(ctx, "Ignoring stale authorization result",
				"request", request.TypeName(),
				"generation", gen,
			)
			return
		}
		c.checkAuthenticationError(ctx, request, result)
	})
}

// checkAuthenticationError сообщает об ошибке и повторяет текущее состояние.
func (c *Client) checkAuthenticationError(ctx context.Context, request tdapi.Function, result tdapi.Object) {
	e, ok := tdapi.AsError(result)
	if !ok {
		return
	}
	c.log.ErrorContext(ctx, "Authorization request failed",
		"request", request.TypeName(),
		"code", e.Code,
		"error", e.Message,
	)
	c.onAuthorizationStateUpdate(ctx)
}

func (c *Client) isCurrentAuthGeneration(gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.st.authGen == gen
}

func (c *Client) setReady(ready bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.st.ready = ready
}
