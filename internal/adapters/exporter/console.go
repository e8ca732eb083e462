package exporter

import (
	"fmt"
	"io"
	"os"

	"random-sticker-sender/internal/domain"
	"random-sticker-sender/internal/ports"
)

// ConsoleExporter реализует интерфейс Exporter для вывода итогов в консоль.
type ConsoleExporter struct {
	out io.Writer
}

// NewConsoleExporter создает новый экземпляр ConsoleExporter.
// nil out означает stdout.
func NewConsoleExporter(out io.Writer) ports.Exporter {
	if out == nil {
		out = os.Stdout
	}
	return &ConsoleExporter{out: out}
}

// Export выводит итоги отправки стикеров.
func (e *ConsoleExporter) Export(stats domain.Stats) error {
	if _, err := fmt.Fprintln(e.out, "--- Delivery Report ---"); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	lines := make([]string, 0, 4)
	if stats.CatalogComplete() {
		lines = append(lines, fmt.Sprintf("Sticker sets: %d, stickers: %d", stats.ProcessedSets, stats.Stickers))
	} else {
		lines = append(lines, "Sticker catalog was not loaded.")
	}
	if stats.TargetChatID < 0 && stats.Sent == 0 {
		lines = append(lines, "Target chat was not resolved.")
	}
	lines = append(lines, fmt.Sprintf("Delivered: %d of %d (attempts: %d)", stats.Delivered, stats.Quota, stats.Sent))
	if stats.Restarts > 0 {
		lines = append(lines, fmt.Sprintf("Session restarts: %d", stats.Restarts))
	}

	for _, line := range lines {
		if _, err := fmt.Fprintln(e.out, line); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
	}
	return nil
}
