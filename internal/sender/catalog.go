package sender

import (
	"context"
	"fmt"

	"random-sticker-sender/internal/domain"
	"random-sticker-sender/internal/tdapi"
)

// startFetch запускает поиск целевого чата и загрузку каталога.
// Вызывается один раз за время жизни сессии.
func (c *Client) startFetch(ctx context.Context) {
	c.mu.Lock()
	c.st.started = true
	c.mu.Unlock()

	c.log.InfoContext(ctx, "Resolving target chat and loading installed sticker sets", "login", c.cfg.Login)

	c.tracker.Submit(&tdapi.SearchPublicChat{Username: c.cfg.Login}, func(result tdapi.Object) {
		c.onChatFound(ctx, result)
	})
	c.tracker.Submit(&tdapi.GetInstalledStickerSets{}, func(result tdapi.Object) {
		c.onStickerSets(ctx, result)
	})
}

func (c *Client) onChatFound(ctx context.Context, result tdapi.Object) {
	if e, ok := tdapi.AsError(result); ok {
		c.log.WarnContext(ctx, "Target chat not found, nothing will be sent",
			"login", c.cfg.Login,
			"code", e.Code,
			"error", e.Message,
		)
		return
	}
	chat, ok := result.(*tdapi.Chat)
	if !ok {
		c.log.WarnContext(ctx, "Unexpected search result", "type", result.TypeName())
		return
	}

	c.mu.Lock()
	c.st.targetChatID = chat.ID
	c.mu.Unlock()

	c.log.InfoContext(ctx, "Target chat resolved", "chat_id", chat.ID, "title", chat.Title)
}

func (c *Client) onStickerSets(ctx context.Context, result tdapi.Object) {
	if e, ok := tdapi.AsError(result); ok {
		c.log.WarnContext(ctx, "Failed to load installed sticker sets", "code", e.Code, "error", e.Message)
		return
	}
	sets, ok := result.(*tdapi.StickerSets)
	if !ok {
		c.log.WarnContext(ctx, "Unexpected sticker sets result", "type", result.TypeName())
		return
	}

	c.mu.Lock()
	c.st.totalSets = len(sets.Sets)
	c.mu.Unlock()

	c.log.InfoContext(ctx, "Installed sticker sets loaded", "sets", len(sets.Sets))

	for _, set := range sets.Sets {
		setID := set.ID
		c.tracker.Submit(&tdapi.GetStickerSet{SetID: setID}, func(result tdapi.Object) {
			c.onStickerSet(ctx, setID, result)
		})
	}
}

// onStickerSet добавляет стикеры набора в каталог.
// Набор, загрузка которого завершилась ошибкой, считается обработанным,
// но его стикеры в каталог не попадают.
func (c *Client) onStickerSet(ctx context.Context, setID int64, result tdapi.Object) {
	var stickers []domain.Sticker
	var loadErr error

	switch r := result.(type) {
	case *tdapi.Error:
		loadErr = r
	case *tdapi.StickerSet:
		stickers = make([]domain.Sticker, 0, len(r.Stickers))
		for _, s := range r.Stickers {
			stickers = append(stickers, domain.Sticker{
				RemoteID: s.RemoteID,
				Width:    s.Width,
				Height:   s.Height,
				SetID:    setID,
				Emoji:    s.Emoji,
			})
		}
	default:
		loadErr = fmt.Errorf("unexpected result type %s", result.TypeName())
	}

	c.mu.Lock()
	c.st.processedSets++
	c.st.stickers = append(c.st.stickers, stickers...)
	processed, total := c.st.processedSets, c.st.totalSets
	c.mu.Unlock()

	if loadErr != nil {
		c.log.WarnContext(ctx, "Failed to load sticker set, skipping", "set_id", setID, "error", loadErr)
		return
	}
	c.log.DebugContext(ctx, "Sticker set loaded",
		"set_id", setID,
		"stickers", len(stickers),
		"processed", processed,
		"total", total,
	)
}
