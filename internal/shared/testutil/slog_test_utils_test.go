package testutil

import (
	"log/slog"
	"testing"
)

func TestBufferedSlogHandler(t *testing.T) {
	t.Run("captures log records", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		logger.Info("test message", slog.String("key", "value"))
		logger.Error("error message", slog.Int("code", 500))

		if got := handler.Count(); got != 2 {
			t.Errorf("Expected 2 records, got %d", got)
		}
		if !handler.ContainsMessage("test message") {
			t.Error("Expected to find 'test message'")
		}
		if !handler.ContainsAttr("key", "value") {
			t.Error("Expected to find attribute key=value")
		}
		if !handler.ContainsAttr("code", int64(500)) {
			t.Error("Expected to find attribute code=500")
		}
	})

	t.Run("filters by level", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		logger.Debug("debug msg")
		logger.Info("info msg")
		logger.Warn("warn msg")
		logger.Error("error msg")

		if got := len(handler.GetRecordsByLevel(slog.LevelInfo)); got != 1 {
			t.Errorf("Expected 1 info record, got %d", got)
		}
	})

	t.Run("derived loggers share records and keep attrs", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		logger.With(slog.String("component", "loader")).Info("loaded")

		if !handler.ContainsAttr("component", "loader") {
			t.Error("Expected With attrs to be captured")
		}
		handler.Clear()
		if handler.Count() != 0 {
			t.Error("Expected Clear to drop records")
		}
	})
}

func TestFixtures(t *testing.T) {
	if MonsterTable().Len() != 3 {
		t.Error("Expected 3 monster rows")
	}
	if CharacterTable().Width() != 4 {
		t.Error("Expected 4 character columns")
	}
}
