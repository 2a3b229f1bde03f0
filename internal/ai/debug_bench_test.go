package ai

import (
	"io"
	"log/slog"
	"testing"
)

func discardLogger(level slog.Level) {
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: level,
	})))
}

// Выключенный гейт — это цена decision pass в проде: один atomic.Load,
// slog.Debug не вызывается вовсе.
func BenchmarkDebugGate_Disabled(b *testing.B) {
	discardLogger(slog.LevelInfo)
	EnableDebugLogging(false)

	b.ResetTimer()
	for range b.N {
		if IsDebugEnabled() {
			slog.Debug("decision pass", "state", "chase", "target", 0x30000001)
		}
	}
}

func BenchmarkDebugGate_Enabled(b *testing.B) {
	discardLogger(slog.LevelDebug)
	EnableDebugLogging(true)

	b.ResetTimer()
	for range b.N {
		if IsDebugEnabled() {
			slog.Debug("decision pass", "state", "chase", "target", 0x30000001)
		}
	}
}

// Без гейта каждый decision pass платит за форматирование аргументов,
// даже когда хендлер отбрасывает запись по уровню.
func BenchmarkDebugGate_UnguardedBaseline(b *testing.B) {
	discardLogger(slog.LevelInfo)

	b.ResetTimer()
	for range b.N {
		slog.Debug("decision pass", "state", "chase", "target", 0x30000001)
	}
}
