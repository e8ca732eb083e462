package exporter

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"random-sticker-sender/internal/domain"
)

func TestConsoleExporter(t *testing.T) {
	t.Run("NewConsoleExporter создает корректный экземпляр", func(t *testing.T) {
		exporter := NewConsoleExporter(nil)
		require.NotNil(t, exporter)
	})

	t.Run("Export выводит итоги успешной отправки", func(t *testing.T) {
		var buf bytes.Buffer
		exporter := NewConsoleExporter(&buf)

		err := exporter.Export(domain.Stats{
			TargetChatID:  42,
			TotalSets:     3,
			ProcessedSets: 3,
			Stickers:      3,
			Sent:          2,
			Delivered:     2,
			Quota:         2,
			Restarts:      1,
		})
		require.NoError(t, err)

		output := buf.String()
		assert.True(t, strings.HasPrefix(output, "--- Delivery Report ---\n"))
		assert.Contains(t, output, "Sticker sets: 3, stickers: 3")
		assert.Contains(t, output, "Delivered: 2 of 2 (attempts: 2)")
		assert.Contains(t, output, "Session restarts: 1")
		assert.NotContains(t, output, "not resolved")
	})

	t.Run("Export сообщает о незагруженном каталоге", func(t *testing.T) {
		var buf bytes.Buffer
		exporter := NewConsoleExporter(&buf)

		err := exporter.Export(domain.Stats{TargetChatID: -1, TotalSets: -1, Quota: 1})
		require.NoError(t, err)

		output := buf.String()
		assert.Contains(t, output, "Sticker catalog was not loaded.")
		assert.Contains(t, output, "Target chat was not resolved.")
		assert.Contains(t, output, "Delivered: 0 of 1 (attempts: 0)")
		assert.NotContains(t, output, "Session restarts")
	})

	t.Run("Export возвращает ошибку записи", func(t *testing.T) {
		exporter := NewConsoleExporter(failingWriter{})
		err := exporter.Export(domain.Stats{})
		require.Error(t, err)
	})
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("closed") }
