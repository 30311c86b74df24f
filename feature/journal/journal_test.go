package journal

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"system-mirror/core/database"
	"system-mirror/core/provider"
	"system-mirror/feature/network"
	"system-mirror/feature/process"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupJournal(t *testing.T) *Journal {
	t.Helper()
	db, err := database.Connect(database.Config{Driver: "sqlite", Name: ":memory:"})
	require.NoError(t, err)

	j, err := New(db, zap.NewNop())
	require.NoError(t, err)
	return j
}

func TestNew(t *testing.T) {
	j := setupJournal(t)

	_, err := uuid.Parse(j.Session())
	assert.NoError(t, err)

	missing, err := database.MissingColumns(j.db, "journal_records", columns)
	require.NoError(t, err)
	assert.Empty(t, missing)
}

func TestWriteAndHistory(t *testing.T) {
	j := setupJournal(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, j.Write(ctx, []Record{
		{Provider: "process", ItemKey: "1", Kind: KindAdded, Name: "init", Cycle: 1, OccurredAt: base},
		{Provider: "process", ItemKey: "2", Kind: KindAdded, Name: "sh", Cycle: 1, OccurredAt: base},
		{Provider: "process", ItemKey: "2", Kind: KindRemoved, Name: "sh", Cycle: 3, OccurredAt: base.Add(2 * time.Second)},
		{Provider: "network", ItemKey: "tcp 0.0.0.0:22", Kind: KindAdded, Cycle: 1, OccurredAt: base},
	}))
	require.NoError(t, j.Write(ctx, nil))

	tests := []struct {
		name  string
		query Query
		want  []string
	}{
		{name: "all newest first", query: Query{}, want: []string{"tcp 0.0.0.0:22", "2", "2", "1"}},
		{name: "by provider", query: Query{Provider: "process"}, want: []string{"2", "2", "1"}},
		{name: "by key", query: Query{Provider: "process", Key: "2"}, want: []string{"2", "2"}},
		{name: "by kind", query: Query{Kind: KindRemoved}, want: []string{"2"}},
		{name: "since", query: Query{Since: base.Add(time.Second)}, want: []string{"2"}},
		{name: "limit", query: Query{Limit: 1}, want: []string{"tcp 0.0.0.0:22"}},
		{name: "session", query: Query{Session: j.Session(), Limit: 2}, want: []string{"tcp 0.0.0.0:22", "2"}},
		{name: "other session", query: Query{Session: "nope"}, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, err := j.History(ctx, tt.query)
			require.NoError(t, err)

			var keys []string
			for _, r := range records {
				keys = append(keys, r.ItemKey)
				assert.Equal(t, j.Session(), r.Session)
			}
			assert.Equal(t, tt.want, keys)
		})
	}
}

func TestFollow(t *testing.T) {
	j := setupJournal(t)
	ctx := context.Background()
	exitedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	changes := make(chan provider.Change[int32, process.Process], 8)
	changes <- provider.Change[int32, process.Process]{Kind: provider.Added, Key: 7, Value: process.Process{Name: "nginx", Details: process.Details{Exe: "/usr/sbin/nginx"}}, Cycle: 1}
	changes <- provider.Change[int32, process.Process]{Kind: provider.Modified, Key: 7, Cycle: 1}
	changes <- provider.Change[int32, process.Process]{Kind: provider.Updated, Cycle: 1}
	changes <- provider.Change[int32, process.Process]{Kind: provider.Removed, Key: 7, Value: process.Process{Name: "nginx"}, Cycle: 2, RemovedAt: exitedAt}
	close(changes)

	Follow(ctx, j, "process", changes, DescribeProcess)

	records, err := j.History(ctx, Query{Provider: "process"})
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, KindRemoved, records[0].Kind)
	assert.Equal(t, uint64(2), records[0].Cycle)
	assert.WithinDuration(t, exitedAt, records[0].OccurredAt, 0)
	assert.Equal(t, KindAdded, records[1].Kind)
	assert.Equal(t, "7", records[1].ItemKey)
	assert.Equal(t, "nginx", records[1].Name)
	assert.Equal(t, "/usr/sbin/nginx", records[1].Detail)
}

func TestDescribeConnection(t *testing.T) {
	tests := []struct {
		name       string
		key        network.Key
		conn       network.Connection
		wantKey    string
		wantDetail string
	}{
		{
			name:       "listener",
			key:        network.Key{Protocol: "tcp", Local: "0.0.0.0:22"},
			conn:       network.Connection{Status: "LISTEN", ProcessName: "sshd"},
			wantKey:    "tcp 0.0.0.0:22",
			wantDetail: "LISTEN",
		},
		{
			name:       "resolved peer",
			key:        network.Key{Protocol: "tcp", Local: "10.0.0.2:5000", Remote: "93.184.216.34:443"},
			conn:       network.Connection{Status: "ESTABLISHED", RemoteHost: "example.com"},
			wantKey:    "tcp 10.0.0.2:5000 -> 93.184.216.34:443",
			wantDetail: "example.com",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, _, detail := DescribeConnection(tt.key, &tt.conn)
			assert.Equal(t, tt.wantKey, key)
			assert.Equal(t, tt.wantDetail, detail)
		})
	}
}

func TestHandler(t *testing.T) {
	j := setupJournal(t)
	require.NoError(t, j.Write(context.Background(), []Record{
		{Provider: "process", ItemKey: "1", Kind: KindAdded, OccurredAt: time.Now()},
		{Provider: "process", ItemKey: "1", Kind: KindRemoved, OccurredAt: time.Now()},
	}))

	app := fiber.New()
	f := NewFeature(j)
	require.True(t, f.IsEnabled())
	require.NoError(t, f.Load(app))

	tests := []struct {
		name       string
		target     string
		wantStatus int
		wantCount  int
	}{
		{name: "all", target: "/journal", wantStatus: fiber.StatusOK, wantCount: 2},
		{name: "current session", target: "/journal?session=current&kind=removed", wantStatus: fiber.StatusOK, wantCount: 1},
		{name: "since", target: "/journal?since=2100-01-01T00:00:00Z", wantStatus: fiber.StatusOK, wantCount: 0},
		{name: "bad kind", target: "/journal?kind=modified", wantStatus: fiber.StatusBadRequest},
		{name: "bad limit", target: "/journal?limit=5000", wantStatus: fiber.StatusBadRequest},
		{name: "bad since", target: "/journal?since=yesterday", wantStatus: fiber.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest("GET", tt.target, nil))
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)

			if tt.wantStatus == fiber.StatusOK {
				body, err := io.ReadAll(resp.Body)
				require.NoError(t, err)
				var records []Record
				require.NoError(t, json.Unmarshal(body, &records))
				assert.Len(t, records, tt.wantCount)
			}
		})
	}

	assert.False(t, NewFeature(nil).IsEnabled())
}
