package process

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupHandler(t *testing.T) *fiber.App {
	t.Helper()
	src := &fakeSource{}
	src.set(SystemTimes{},
		Record{PID: 1, CreateTime: 1, Name: "init"},
		Record{PID: 42, CreateTime: 2, Name: "worker"},
	)
	svc, _ := newTestService(t, src, afero.NewMemMapFs())
	require.NoError(t, svc.Provider().Update(context.Background()))

	app := fiber.New()
	require.NoError(t, NewFeature(svc, true).Load(app))
	return app
}

func TestHandler(t *testing.T) {
	app := setupHandler(t)

	tests := []struct {
		name       string
		target     string
		wantStatus int
		check      func(t *testing.T, body []byte)
	}{
		{
			name:       "list",
			target:     "/processes",
			wantStatus: fiber.StatusOK,
			check: func(t *testing.T, body []byte) {
				var entries []Entry
				require.NoError(t, json.Unmarshal(body, &entries))
				require.Len(t, entries, 4)
				assert.Equal(t, InterruptsPID, entries[0].PID)
				assert.Equal(t, int32(42), entries[3].PID)
			},
		},
		{
			name:       "list with limit",
			target:     "/processes?sort=cpu&limit=2",
			wantStatus: fiber.StatusOK,
			check: func(t *testing.T, body []byte) {
				var entries []Entry
				require.NoError(t, json.Unmarshal(body, &entries))
				assert.Len(t, entries, 2)
			},
		},
		{name: "bad sort", target: "/processes?sort=name", wantStatus: fiber.StatusBadRequest},
		{name: "negative limit", target: "/processes?limit=-1", wantStatus: fiber.StatusBadRequest},
		{
			name:       "get",
			target:     "/processes/42",
			wantStatus: fiber.StatusOK,
			check: func(t *testing.T, body []byte) {
				var entry Entry
				require.NoError(t, json.Unmarshal(body, &entry))
				assert.Equal(t, "worker", entry.Name)
				assert.Equal(t, uint64(1), entry.AddedCycle)
			},
		},
		{name: "get pseudo", target: "/processes/-3", wantStatus: fiber.StatusOK},
		{name: "not found", target: "/processes/999", wantStatus: fiber.StatusNotFound},
		{name: "invalid pid", target: "/processes/abc", wantStatus: fiber.StatusBadRequest},
		{name: "maximums", target: "/processes/max", wantStatus: fiber.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest("GET", tt.target, nil))
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)

			if tt.check != nil {
				body, err := io.ReadAll(resp.Body)
				require.NoError(t, err)
				tt.check(t, body)
			}
		})
	}
}
