package logger

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		level   zapcore.Level
		wantErr bool
	}{
		{"Debug console", Config{Level: "debug", Format: "console"}, zapcore.DebugLevel, false},
		{"Info json", Config{Level: "info", Format: "json"}, zapcore.InfoLevel, false},
		{"Warn", Config{Level: "warn"}, zapcore.WarnLevel, false},
		{"Empty level", Config{}, zapcore.InfoLevel, false},
		{"Invalid level", Config{Level: "loud"}, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := New(&tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.True(t, l.Core().Enabled(tt.level))
			if tt.level > zapcore.DebugLevel {
				assert.False(t, l.Core().Enabled(tt.level-1))
			}
		})
	}
}

func TestWithRequestID(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	base := zap.New(core)

	app := fiber.New()
	app.Get("/with", func(c *fiber.Ctx) error {
		c.Locals("request_id", "abc-123")
		WithRequestID(base, c).Info("with")
		return c.SendStatus(fiber.StatusOK)
	})
	app.Get("/without", func(c *fiber.Ctx) error {
		WithRequestID(base, c).Info("without")
		return c.SendStatus(fiber.StatusOK)
	})

	for _, path := range []string{"/with", "/without"} {
		resp, err := app.Test(httptest.NewRequest("GET", path, nil))
		assert.NoError(t, err)
		_, _ = io.Copy(io.Discard, resp.Body)
	}

	entries := logs.AllUntimed()
	assert.Len(t, entries, 2)
	assert.Equal(t, "abc-123", entries[0].ContextMap()["request_id"])
	assert.NotContains(t, entries[1].ContextMap(), "request_id")
}
