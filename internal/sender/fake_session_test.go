package sender

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"random-sticker-sender/internal/ports"
	"random-sticker-sender/internal/tdapi"
)

// backendScript описывает поведение фейкового бэкенда.
// Общий для всех сессий одного теста, поэтому счетчики переживают перезапуск.
type backendScript struct {
	authorized bool
	// wrongCodes — сколько первых кодов будет отвергнуто.
	wrongCodes int
	chat       *tdapi.Chat
	setIDs     []int64
	sets       map[int64][]tdapi.Sticker
	failedSets map[int64]bool
	// failedSends — сколько первых отправок завершится ошибкой.
	failedSends int
	// closeOnSetList закрывает первую сессию сразу после списка наборов.
	closeOnSetList bool
	// manual отключает автоматические ответы.
	manual bool
}

type fakeSession struct {
	script *backendScript

	mu     sync.Mutex
	queue  []tdapi.Response
	sent   []tdapi.Function
	closed bool
}

func newFakeSession(script *backendScript) *fakeSession {
	s := &fakeSession{script: script}
	s.push(&tdapi.AuthorizationStateWaitTdlibParameters{})
	return s
}

func (s *fakeSession) push(state tdapi.AuthorizationState) {
	s.queue = append(s.queue, tdapi.Response{Object: &tdapi.UpdateAuthorizationState{State: state}})
}

func (s *fakeSession) reply(id uint64, o tdapi.Object) {
	s.queue = append(s.queue, tdapi.Response{RequestID: id, Object: o})
}

// answer кладет ответ в очередь; используется в ручном режиме.
func (s *fakeSession) answer(id uint64, o tdapi.Object) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reply(id, o)
}

// drain отбрасывает накопленные события.
func (s *fakeSession) drain() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queue = nil
}

func (s *fakeSession) Send(id uint64, request tdapi.Function) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.sent = append(s.sent, request)
	if s.script.manual {
		return
	}

	sc := s.script
	switch r := request.(type) {
	case *tdapi.GetOption:
		s.reply(id, &tdapi.OptionValueString{Value: "1.8.0"})
	case *tdapi.SetTdlibParameters:
		s.reply(id, &tdapi.Ok{})
		s.push(&tdapi.AuthorizationStateWaitEncryptionKey{IsEncrypted: true})
	case *tdapi.CheckDatabaseEncryptionKey:
		s.reply(id, &tdapi.Ok{})
		if sc.authorized {
			s.push(&tdapi.AuthorizationStateReady{})
		} else {
			s.push(&tdapi.AuthorizationStateWaitPhoneNumber{})
		}
	case *tdapi.SetAuthenticationPhoneNumber:
		s.reply(id, &tdapi.Ok{})
		s.push(&tdapi.AuthorizationStateWaitCode{})
	case *tdapi.CheckAuthenticationCode:
		if sc.wrongCodes > 0 {
			sc.wrongCodes--
			s.reply(id, &tdapi.Error{Code: 400, Message: "PHONE_CODE_INVALID"})
			return
		}
		s.reply(id, &tdapi.Ok{})
		s.push(&tdapi.AuthorizationStateReady{})
	case *tdapi.SearchPublicChat:
		if sc.chat == nil {
			s.reply(id, &tdapi.Error{Code: 400, Message: "USERNAME_NOT_OCCUPIED"})
			return
		}
		s.reply(id, sc.chat)
	case *tdapi.GetInstalledStickerSets:
		infos := make([]tdapi.StickerSetInfo, 0, len(sc.setIDs))
		for _, setID := range sc.setIDs {
			infos = append(infos, tdapi.StickerSetInfo{ID: setID, Size: len(sc.sets[setID])})
		}
		s.reply(id, &tdapi.StickerSets{TotalCount: len(infos), Sets: infos})
		if sc.closeOnSetList {
			sc.closeOnSetList = false
			s.push(&tdapi.AuthorizationStateClosing{})
			s.push(&tdapi.AuthorizationStateClosed{})
		}
	case *tdapi.GetStickerSet:
		if sc.failedSets[r.SetID] {
			s.reply(id, &tdapi.Error{Code: 400, Message: "STICKERSET_INVALID"})
			return
		}
		s.reply(id, &tdapi.StickerSet{ID: r.SetID, Stickers: sc.sets[r.SetID]})
	case *tdapi.SendMessage:
		if sc.failedSends > 0 {
			sc.failedSends--
			s.reply(id, &tdapi.Error{Code: 403, Message: "CHAT_WRITE_FORBIDDEN"})
			return
		}
		s.reply(id, &tdapi.Message{ID: int64(id), ChatID: r.ChatID})
	default:
		s.reply(id, &tdapi.Error{Code: 400, Message: "unsupported " + request.TypeName()})
	}
}

func (s *fakeSession) Receive(ctx context.Context, _ time.Duration) (tdapi.Response, bool) {
	s.mu.Lock()
	if len(s.queue) > 0 {
		resp := s.queue[0]
		s.queue = s.queue[1:]
		s.mu.Unlock()
		return resp, true
	}
	s.mu.Unlock()

	select {
	case <-ctx.Done():
	case <-time.After(time.Millisecond):
	}
	return tdapi.Response{}, false
}

func (s *fakeSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.queue = nil
	return nil
}

// requests возвращает отправленные запросы указанного типа.
func requestsOf[T tdapi.Function](s *fakeSession) []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []T
	for _, r := range s.sent {
		if t, ok := r.(T); ok {
			out = append(out, t)
		}
	}
	return out
}

// fakeFactory создает сессии по одному сценарию и запоминает их.
type fakeFactory struct {
	script   *backendScript
	sessions []*fakeSession
	failNext bool
}

func (f *fakeFactory) New(context.Context) (ports.Session, error) {
	if f.failNext {
		return nil, errors.New("backend unavailable")
	}
	s := newFakeSession(f.script)
	f.sessions = append(f.sessions, s)
	return s, nil
}

func (f *fakeFactory) last() *fakeSession {
	return f.sessions[len(f.sessions)-1]
}

type fakePrompter struct {
	phone     string
	code      string
	phoneErr  error
	codeErr   error
	phoneCall int
	codeCall  int
}

func (p *fakePrompter) PhoneNumber(context.Context) (string, error) {
	p.phoneCall++
	return p.phone, p.phoneErr
}

func (p *fakePrompter) Code(context.Context) (string, error) {
	p.codeCall++
	return p.code, p.codeErr
}

func newPrompter() *fakePrompter {
	return &fakePrompter{phone: "+15550000000", code: "12345"}
}

func sticker(setID int64, n int) tdapi.Sticker {
	return tdapi.Sticker{
		SetID:    setID,
		Width:    512,
		Height:   512,
		Emoji:    "🙂",
		RemoteID: fmt.Sprintf("remote-%d-%d", setID, n),
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func noSleep(context.Context, time.Duration) error { return nil }
