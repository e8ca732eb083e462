package sender

import (
	"context"
	"fmt"

	"random-sticker-sender/internal/tdapi"
)

// deliverOne выбирает случайный стикер и отправляет его в целевой чат.
// Попытка учитывается до отправки: неудачная отправка расходует квоту без повтора.
func (c *Client) deliverOne(ctx context.Context) error {
	c.mu.Lock()
	size := len(c.st.stickers)
	if size == 0 {
		c.mu.Unlock()
		return ErrEmptyCatalog
	}
	idx, err := c.strategy.Next(size)
	if err != nil {
		c.mu.Unlock()
		return fmt.Errorf("failed to pick sticker: %w", err)
	}
	if idx < 0 || idx >= size {
		c.mu.Unlock()
		return fmt.Errorf("strategy returned index %d out of range [0, %d)", idx, size)
	}
	sticker := c.st.stickers[idx]
	chatID := c.st.targetChatID
	c.st.sent++
	attempt := c.st.sent
	c.mu.Unlock()

	c.log.InfoContext(ctx, "Sending sticker",
		"attempt", attempt,
		"amount", c.cfg.Amount,
		"set_id", sticker.SetID,
		"emoji", sticker.Emoji,
	)

	request := &tdapi.SendMessage{
		ChatID: chatID,
		Content: tdapi.InputMessageSticker{
			Sticker: tdapi.InputFileRemote{ID: sticker.RemoteID},
			Width:   sticker.Width,
			Height:  sticker.Height,
		},
	}
	c.tracker.Submit(request, func(result tdapi.Object) {
		c.onStickerSent(ctx, attempt, result)
	})
	return nil
}

func (c *Client) onStickerSent(ctx context.Context, attempt int, result tdapi.Object) {
	if e, ok := tdapi.AsError(result); ok {
		c.log.WarnContext(ctx, "Sticker was not delivered", "attempt", attempt, "code", e.Code, "error", e.Message)
		return
	}

	if err := c.sleep(ctx, c.cfg.SendPause); err != nil {
		return
	}

	c.mu.Lock()
	c.st.delivered++
	delivered := c.st.delivered
	if delivered == c.cfg.Amount {
		c.st.exit = true
	}
	c.mu.Unlock()

	c.log.InfoContext(ctx, "Sticker delivered", "delivered", delivered, "amount", c.cfg.Amount)
}
