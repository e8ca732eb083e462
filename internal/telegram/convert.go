package telegram

import (
	"strings"

	"github.com/gotd/td/tg"

	"random-sticker-sender/internal/tdapi"
)

const (
	// channelIDOffset сдвигает идентификаторы каналов в отрицательную область: -100XXXXXXXXXX.
	channelIDOffset = int64(-1000000000000)

	defaultStickerSide = 512
)

// markedChatID кодирует тип собеседника в знаке и диапазоне идентификатора:
// пользователи положительные, группы отрицательные, каналы начинаются с -100.
func markedChatID(peer tg.PeerClass) int64 {
	switch p := peer.(type) {
	case *tg.PeerUser:
		return p.UserID
	case *tg.PeerChat:
		return -p.ChatID
	case *tg.PeerChannel:
		return channelIDOffset - p.ChannelID
	default:
		return 0
	}
}

// resolvedChat находит сущность, на которую указывает результат поиска,
// и строит для нее чат и входной peer.
func resolvedChat(res *tg.ContactsResolvedPeer) (*tdapi.Chat, tg.InputPeerClass, bool) {
	id := markedChatID(res.Peer)

	switch p := res.Peer.(type) {
	case *tg.PeerUser:
		for _, u := range res.Users {
			user, ok := u.(*tg.User)
			if !ok || user.ID != p.UserID {
				continue
			}
			return &tdapi.Chat{ID: id, Title: userTitle(user)},
				&tg.InputPeerUser{UserID: user.ID, AccessHash: user.AccessHash}, true
		}
	case *tg.PeerChat:
		for _, c := range res.Chats {
			chat, ok := c.(*tg.Chat)
			if !ok || chat.ID != p.ChatID {
				continue
			}
			return &tdapi.Chat{ID: id, Title: chat.Title}, &tg.InputPeerChat{ChatID: chat.ID}, true
		}
	case *tg.PeerChannel:
		for _, c := range res.Chats {
			channel, ok := c.(*tg.Channel)
			if !ok || channel.ID != p.ChannelID {
				continue
			}
			return &tdapi.Chat{ID: id, Title: channel.Title},
				&tg.InputPeerChannel{ChannelID: channel.ID, AccessHash: channel.AccessHash}, true
		}
	}
	return nil, nil, false
}

func userTitle(u *tg.User) string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Username
	}
	return name
}

func stickerSetInfo(set tg.StickerSet) tdapi.StickerSetInfo {
	return tdapi.StickerSetInfo{
		ID:    set.ID,
		Title: set.Title,
		Name:  set.ShortName,
		Size:  set.Count,
	}
}

// stickerSize возвращает размеры стикера из атрибутов документа.
func stickerSize(doc *tg.Document) (int, int) {
	for _, attr := range doc.Attributes {
		switch a := attr.(type) {
		case *tg.DocumentAttributeImageSize:
			return a.W, a.H
		case *tg.DocumentAttributeVideo:
			return a.W, a.H
		}
	}
	return defaultStickerSide, defaultStickerSide
}

func stickerEmoji(doc *tg.Document) string {
	for _, attr := range doc.Attributes {
		if a, ok := attr.(*tg.DocumentAttributeSticker); ok {
			return a.Alt
		}
	}
	return ""
}

// convertStickerSet превращает ответ API в набор стикеров.
// Документы, которые не удалось закодировать, пропускаются.
func convertStickerSet(setID int64, res *tg.MessagesStickerSet) (*tdapi.StickerSet, int) {
	out := &tdapi.StickerSet{
		ID:       setID,
		Title:    res.Set.Title,
		Name:     res.Set.ShortName,
		Stickers: make([]tdapi.Sticker, 0, len(res.Documents)),
	}
	skipped := 0
	for _, d := range res.Documents {
		doc, ok := d.(*tg.Document)
		if !ok {
			skipped++
			continue
		}
		remoteID, err := encodeRemoteID(doc)
		if err != nil {
			skipped++
			continue
		}
		w, h := stickerSize(doc)
		out.Stickers = append(out.Stickers, tdapi.Sticker{
			SetID:    setID,
			Width:    w,
			Height:   h,
			Emoji:    stickerEmoji(doc),
			RemoteID: remoteID,
		})
	}
	return out, skipped
}

// sentMessageID ищет идентификатор отправленного сообщения в ответе MessagesSendMedia.
func sentMessageID(updates tg.UpdatesClass, randomID int64) int64 {
	var list []tg.UpdateClass
	switch u := updates.(type) {
	case *tg.UpdateShortSentMessage:
		return int64(u.ID)
	case *tg.Updates:
		list = u.Updates
	case *tg.UpdatesCombined:
		list = u.Updates
	}

	var fallback int64
	for _, upd := range list {
		switch u := upd.(type) {
		case *tg.UpdateMessageID:
			if u.RandomID == randomID {
				return int64(u.ID)
			}
		case *tg.UpdateNewMessage:
			if m, ok := u.Message.(*tg.Message); ok && fallback == 0 {
				fallback = int64(m.ID)
			}
		case *tg.UpdateNewChannelMessage:
			if m, ok := u.Message.(*tg.Message); ok && fallback == 0 {
				fallback = int64(m.ID)
			}
		}
	}
	return fallback
}
