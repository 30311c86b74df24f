package export

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"system-mirror/core/storage"
	"system-mirror/core/storage/mocks"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func listing(keys ...string) <-chan minio.ObjectInfo {
	ch := make(chan minio.ObjectInfo, len(keys))
	for _, k := range keys {
		ch <- minio.ObjectInfo{Key: k}
	}
	close(ch)
	return ch
}

func newTestExporter(client storage.Client, every, retain int) *Exporter {
	cfg := storage.Config{Bucket: "snapshots", Prefix: "snapshots/", EveryCycles: every, Retain: retain}
	e := New(client, cfg, "host", func(cycle uint64) any {
		return map[string]any{"cycle": cycle}
	}, zap.NewNop())
	e.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return e
}

func TestExport(t *testing.T) {
	client := new(mocks.Client)
	e := newTestExporter(client, 1, 2)
	ctx := context.Background()

	client.On("PutObject", ctx, "snapshots", "snapshots/host/20260301T120000Z-00000007.json", mock.Anything, int64(11), mock.MatchedBy(func(o minio.PutObjectOptions) bool {
		return o.ContentType == "application/json"
	})).Run(func(args mock.Arguments) {
		data, err := io.ReadAll(args.Get(3).(io.Reader))
		require.NoError(t, err)
		assert.JSONEq(t, `{"cycle":7}`, string(data))
	}).Return(minio.UploadInfo{}, nil)

	client.On("ListObjects", ctx, "snapshots", minio.ListObjectsOptions{Prefix: "snapshots/host/", Recursive: true}).Return(listing(
		"snapshots/host/20260301T115800Z-00000005.json",
		"snapshots/host/20260301T115700Z-00000004.json",
		"snapshots/host/20260301T120000Z-00000007.json",
		"snapshots/host/20260301T115900Z-00000006.json",
		"snapshots/host/readme.txt",
	))
	client.On("RemoveObject", ctx, "snapshots", "snapshots/host/20260301T115700Z-00000004.json", minio.RemoveObjectOptions{}).Return(nil)
	client.On("RemoveObject", ctx, "snapshots", "snapshots/host/20260301T115800Z-00000005.json", minio.RemoveObjectOptions{}).Return(nil)

	name, err := e.Export(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "snapshots/host/20260301T120000Z-00000007.json", name)
	client.AssertExpectations(t)
	client.AssertNumberOfCalls(t, "RemoveObject", 2)
}

func TestExport_UploadFailure(t *testing.T) {
	client := new(mocks.Client)
	e := newTestExporter(client, 1, 2)

	client.On("PutObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(minio.UploadInfo{}, errors.New("access denied"))

	_, err := e.Export(context.Background(), 1)
	assert.ErrorContains(t, err, "access denied")
	client.AssertNotCalled(t, "ListObjects", mock.Anything, mock.Anything, mock.Anything)
}

func TestExport_NoRetention(t *testing.T) {
	client := new(mocks.Client)
	e := newTestExporter(client, 1, 0)

	client.On("PutObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(minio.UploadInfo{}, nil)

	_, err := e.Export(context.Background(), 1)
	require.NoError(t, err)
	client.AssertNotCalled(t, "ListObjects", mock.Anything, mock.Anything, mock.Anything)
}

func TestNotify(t *testing.T) {
	tests := []struct {
		name   string
		every  int
		cycles []uint64
		want   []uint64
	}{
		{name: "every third", every: 3, cycles: []uint64{1, 2, 3}, want: []uint64{3}},
		{name: "not due", every: 5, cycles: []uint64{1, 2, 3, 4}, want: nil},
		{name: "pending skips", every: 1, cycles: []uint64{1, 2}, want: []uint64{1}},
		{name: "zero means every cycle", every: 0, cycles: []uint64{9}, want: []uint64{9}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestExporter(new(mocks.Client), tt.every, 0)
			for _, c := range tt.cycles {
				e.Notify(c)
			}

			var got []uint64
			for len(e.trigger) > 0 {
				got = append(got, <-e.trigger)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRun(t *testing.T) {
	client := new(mocks.Client)
	e := newTestExporter(client, 1, 0)

	done := make(chan struct{})
	client.On("PutObject", mock.Anything, "snapshots", "snapshots/host/20260301T120000Z-00000004.json", mock.Anything, mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { close(done) }).
		Return(minio.UploadInfo{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	finished := make(chan error, 1)
	go func() { finished <- e.Run(ctx) }()

	e.Notify(4)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("export did not run")
	}

	cancel()
	assert.NoError(t, <-finished)
}
