package telegram

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/gotd/td/tg"

	"random-sticker-sender/internal/tdapi"
)

// api возвращает клиент API, если сессия авторизована.
func (s *Session) api() (telegramAPI, *tdapi.Error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.state.(*tdapi.AuthorizationStateReady); !ok || s.runner == nil {
		return nil, &tdapi.Error{Code: 401, Message: "Unauthorized"}
	}
	return s.runner.API(), nil
}

// searchPublicChat находит чат по публичному имени и запоминает его peer.
func (s *Session) searchPublicChat(ctx context.Context, username string) tdapi.Object {
	api, e := s.api()
	if e != nil {
		return e
	}
	username = strings.TrimPrefix(strings.TrimSpace(username), "@")
	if username == "" {
		return &tdapi.Error{Code: 400, Message: "USERNAME_INVALID"}
	}

	var resolved *tg.ContactsResolvedPeer
	err := s.do(ctx, "contacts.resolveUsername", func(ctx context.Context) error {
		res, err := api.ContactsResolveUsername(ctx, &tg.ContactsResolveUsernameRequest{Username: username})
		if err == nil {
			resolved = res
		}
		return err
	})
	if err != nil {
		return toError(err)
	}

	chat, peer, ok := resolvedChat(resolved)
	if !ok {
		return &tdapi.Error{Code: 404, Message: "Chat not found"}
	}
	s.peers.Put(chat.ID, peer, s.cfg.EntityTTL)
	s.log.DebugContext(ctx, "Public chat resolved", "username", username, "chat_id", chat.ID)
	return chat
}

// getInstalledStickerSets возвращает установленные наборы и запоминает их access hash.
func (s *Session) getInstalledStickerSets(ctx context.Context) tdapi.Object {
	api, e := s.api()
	if e != nil {
		return e
	}

	var all tg.MessagesAllStickersClass
	err := s.do(ctx, "messages.getAllStickers", func(ctx context.Context) error {
		res, err := api.MessagesGetAllStickers(ctx, 0)
		if err == nil {
			all = res
		}
		return err
	})
	if err != nil {
		return toError(err)
	}

	result := &tdapi.StickerSets{}
	stickers, ok := all.(*tg.MessagesAllStickers)
	if !ok {
		return result
	}
	for _, set := range stickers.Sets {
		s.sets.Put(set.ID, &tg.InputStickerSetID{ID: set.ID, AccessHash: set.AccessHash}, s.cfg.EntityTTL)
		result.Sets = append(result.Sets, stickerSetInfo(set))
	}
	result.TotalCount = len(result.Sets)
	return result
}

// getStickerSet загружает документы набора.
func (s *Session) getStickerSet(ctx context.Context, setID int64) tdapi.Object {
	api, e := s.api()
	if e != nil {
		return e
	}
	input, ok := s.sets.Get(setID)
	if !ok {
		return &tdapi.Error{Code: 400, Message: "STICKERSET_INVALID"}
	}

	var set tg.MessagesStickerSetClass
	err := s.do(ctx, "messages.getStickerSet", func(ctx context.Context) error {
		res, err := api.MessagesGetStickerSet(ctx, &tg.MessagesGetStickerSetRequest{Stickerset: input})
		if err == nil {
			set = res
		}
		return err
	})
	if err != nil {
		return toError(err)
	}

	full, ok := set.(*tg.MessagesStickerSet)
	if !ok {
		return &tdapi.Error{Code: 500, Message: fmt.Sprintf("unexpected sticker set type %T", set)}
	}
	result, skipped := convertStickerSet(setID, full)
	if skipped > 0 {
		s.log.WarnContext(ctx, "Some sticker documents were skipped", "set_id", setID, "skipped", skipped)
	}
	return result
}

// sendMessage отправляет стикер в ранее найденный чат.
func (s *Session) sendMessage(ctx context.Context, req *tdapi.SendMessage) tdapi.Object {
	api, e := s.api()
	if e != nil {
		return e
	}
	peer, ok := s.peers.Get(req.ChatID)
	if !ok {
		return &tdapi.Error{Code: 400, Message: "Chat not found"}
	}
	doc, err := decodeRemoteID(req.Content.Sticker.ID)
	if err != nil {
		return &tdapi.Error{Code: 400, Message: err.Error()}
	}

	randomID := rand.Int64()
	var updates tg.UpdatesClass
	err = s.do(ctx, "messages.sendMedia", func(ctx context.Context) error {
		res, err := api.MessagesSendMedia(ctx, &tg.MessagesSendMediaRequest{
			Peer:     peer,
			Media:    &tg.InputMediaDocument{ID: doc},
			RandomID: randomID,
		})
		if err == nil {
			updates = res
		}
		return err
	})
	if err != nil {
		return toError(err)
	}

	return &tdapi.Message{ID: sentMessageID(updates, randomID), ChatID: req.ChatID}
}
