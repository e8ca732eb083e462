package ports

import (
	"context"

	"random-sticker-sender/internal/domain"
)

// Prompter запрашивает учетные данные у пользователя.
type Prompter interface {
	// PhoneNumber возвращает номер телефона для входа.
	PhoneNumber(ctx context.Context) (string, error)
	// Code возвращает код подтверждения.
	Code(ctx context.Context) (string, error)
}

// Strategy определяет интерфейс для стратегии выбора стикера из каталога.
type Strategy interface {
	// Next возвращает индекс в диапазоне [0, size).
	Next(size int) (int, error)
}

// Exporter определяет интерфейс для вывода итогов работы.
type Exporter interface {
	Export(stats domain.Stats) error
}
