package log

import (
	"cmp"
	"context"
	"log/slog"
	"regexp"
	"slices"
	"strings"
)

const (
	secretMask = "***masked***"
	// Секреты короче этого не маскируются, иначе маска портит обычный текст.
	minSecretLen = 4
)

// маскируем номера телефонов в международном формате
var phoneNumberRegex = regexp.MustCompile(`\+\d{7,15}\b`)

// SecretMaskerHandler - обертка для slog.Handler, которая маскирует секреты в логах
type SecretMaskerHandler struct {
	handler slog.Handler
	masker  *masker
}

type masker struct {
	replacer *strings.Replacer
}

// NewSecretMaskerHandler создает новый обработчик, маскирующий переданные секреты
// и номера телефонов
func NewSecretMaskerHandler(handler slog.Handler, secrets ...string) *SecretMaskerHandler {
	return &SecretMaskerHandler{
		handler: handler,
		masker:  newMasker(secrets),
	}
}

func newMasker(secrets []string) *masker {
	uniq := make([]string, 0, len(secrets))
	for _, s := range secrets {
		if len(s) >= minSecretLen && !slices.Contains(uniq, s) {
			uniq = append(uniq, s)
		}
	}
	// Длинные секреты раньше коротких, чтобы не маскировать их по частям.
	slices.SortFunc(uniq, func(a, b string) int { return cmp.Compare(len(b), len(a)) })

	m := &masker{}
	if len(uniq) > 0 {
		pairs := make([]string, 0, len(uniq)*2)
		for _, s := range uniq {
			pairs = append(pairs, s, secretMask)
		}
		m.replacer = strings.NewReplacer(pairs...)
	}
	return m
}

// mask заменяет найденные секреты на маску
func (m *masker) mask(text string) string {
	if m.replacer != nil {
		text = m.replacer.Replace(text)
	}
	return phoneNumberRegex.ReplaceAllString(text, "+"+secretMask)
}

// Enabled реализует интерфейс slog.Handler
func (h *SecretMaskerHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle реализует интерфейс slog.Handler
func (h *SecretMaskerHandler) Handle(ctx context.Context, record slog.Record) error {
	// Атрибуты переносятся в новую запись уже маскированными.
	r := slog.NewRecord(record.Time, record.Level, h.masker.mask(record.Message), record.PC)

	record.Attrs(func(a slog.Attr) bool {
		r.AddAttrs(h.maskAttr(a))
		return true
	})

	return h.handler.Handle(ctx, r)
}

// WithAttrs реализует интерфейс slog.Handler
func (h *SecretMaskerHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	maskedAttrs := make([]slog.Attr, len(attrs))
	for i, attr := range attrs {
		maskedAttrs[i] = h.maskAttr(attr)
	}
	return &SecretMaskerHandler{
		handler: h.handler.WithAttrs(maskedAttrs),
		masker:  h.masker,
	}
}

// WithGroup реализует интерфейс slog.Handler
func (h *SecretMaskerHandler) WithGroup(name string) slog.Handler {
	return &SecretMaskerHandler{
		handler: h.handler.WithGroup(name),
		masker:  h.masker,
	}
}

func (h *SecretMaskerHandler) maskAttr(a slog.Attr) slog.Attr {
	return slog.Attr{Key: a.Key, Value: h.maskValue(a.Value)}
}

// maskValue рекурсивно маскирует значения атрибутов
func (h *SecretMaskerHandler) maskValue(value slog.Value) slog.Value {
	value = value.Resolve()
	switch value.Kind() {
	case slog.KindString:
		return slog.StringValue(h.masker.mask(value.String()))
	case slog.KindAny:
		// Текст ошибки маскируется так же, как строка.
		if err, ok := value.Any().(error); ok {
			return slog.StringValue(h.masker.mask(err.Error()))
		}
		return value
	case slog.KindGroup:
		group := value.Group()
		maskedGroup := make([]slog.Attr, len(group))
		for i, attr := range group {
			maskedGroup[i] = h.maskAttr(attr)
		}
		return slog.GroupValue(maskedGroup...)
	default:
		// Для других типов возвращаем оригинальное значение
		return value
	}
}

// NewMaskedLogger создает новый экземпляр slog.Logger с маскировкой секретов
func NewMaskedLogger(handler slog.Handler, secrets ...string) *slog.Logger {
	return slog.New(NewSecretMaskerHandler(handler, secrets...))
}
