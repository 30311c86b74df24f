package process

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"sync"
	"testing"

	"system-mirror/core/cache"
	"system-mirror/core/provider"
	"system-mirror/core/workqueue"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeSource struct {
	mu      sync.Mutex
	records []Record
	times   SystemTimes
	details map[int32]Details
	err     error
}

func (s *fakeSource) set(times SystemTimes, records ...Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.times = times
	s.records = records
}

func (s *fakeSource) Processes(context.Context) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return append([]Record(nil), s.records...), nil
}

func (s *fakeSource) SystemTimes(context.Context) (SystemTimes, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.times, nil
}

func (s *fakeSource) Details(_ context.Context, pid int32) (Details, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.details[pid]
	if !ok {
		return Details{}, errors.New("access denied")
	}
	return d, nil
}

type queue struct {
	mu    sync.Mutex
	items []workqueue.Item
}

func (q *queue) Enqueue(item workqueue.Item) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, item)
	return nil
}

func (q *queue) runAll() {
	q.mu.Lock()
	items := q.items
	q.items = nil
	q.mu.Unlock()
	for _, item := range items {
		item(context.Background())
	}
}

func newTestService(t *testing.T, src *fakeSource, fs afero.Fs) (*Service, *queue) {
	t.Helper()
	q := &queue{}
	svc := NewService(provider.Config{Enabled: true, InitialCapacity: 16}, cache.Config{Size: 16}, src, fs, q, zap.NewNop())
	t.Cleanup(func() {
		_ = svc.Provider().Terminate(context.Background())
		_ = svc.Close()
	})
	return svc, q
}

func sha(data string) string {
	sum := sha256.Sum256([]byte(data))
	return hex.EncodeToString(sum[:])
}

func TestProcess_PseudoEntries(t *testing.T) {
	src := &fakeSource{}
	src.set(SystemTimes{Irq: 30, Softirq: 20}, Record{PID: 1, CreateTime: 1000, Name: "init"})
	svc, _ := newTestService(t, src, afero.NewMemMapFs())

	require.NoError(t, svc.Provider().Update(context.Background()))

	interrupts, ok := svc.Get(InterruptsPID)
	require.True(t, ok)
	assert.True(t, interrupts.Pseudo)
	assert.Equal(t, "Interrupts", interrupts.Name)
	assert.Equal(t, uint64(50), interrupts.KernelTime.Value)

	soft, ok := svc.Get(SoftInterruptsPID)
	require.True(t, ok)
	assert.Equal(t, uint64(20), soft.KernelTime.Value)

	assert.Len(t, svc.List(SortPID, 0), 3)
}

func TestProcess_CPUUsage(t *testing.T) {
	src := &fakeSource{}
	src.set(SystemTimes{User: 1000, Idle: 1000},
		Record{PID: 10, CreateTime: 1, UserTime: 100, KernelTime: 100},
		Record{PID: 20, CreateTime: 2, UserTime: 0, KernelTime: 0, ReadBytes: 10},
	)
	svc, _ := newTestService(t, src, afero.NewMemMapFs())
	ctx := context.Background()
	require.NoError(t, svc.Provider().Update(ctx))

	// 1000ns of system time passes.
	src.set(SystemTimes{User: 1500, Idle: 1500},
		Record{PID: 10, CreateTime: 1, UserTime: 250, KernelTime: 150},
		Record{PID: 20, CreateTime: 2, UserTime: 10, KernelTime: 0, ReadBytes: 4010, WriteBytes: 10},
	)
	require.NoError(t, svc.Provider().Update(ctx))

	p, ok := svc.Get(10)
	require.True(t, ok)
	assert.Equal(t, uint64(150), p.UserTime.Delta)
	assert.Equal(t, uint64(50), p.KernelTime.Delta)
	assert.InDelta(t, 0.2, p.CPUUsage, 1e-9)
	assert.InDelta(t, 0.15, p.UserUsage, 1e-9)
	assert.InDelta(t, 0.05, p.KernelUsage, 1e-9)

	busiest := svc.Maximums()
	assert.Equal(t, uint64(2), busiest.Cycle)
	assert.Equal(t, int32(10), busiest.CPUPID)
	assert.Equal(t, int32(20), busiest.IOPID)
	assert.Equal(t, uint64(4010), busiest.IOBytes)

	list := svc.List(SortCPU, 1)
	require.Len(t, list, 1)
	assert.Equal(t, int32(10), list[0].PID)

	list = svc.List(SortIO, 1)
	require.Len(t, list, 1)
	assert.Equal(t, int32(20), list[0].PID)
}

func TestProcess_CounterReset(t *testing.T) {
	src := &fakeSource{}
	src.set(SystemTimes{User: 10}, Record{PID: 5, CreateTime: 1, ReadOps: 100})
	svc, _ := newTestService(t, src, afero.NewMemMapFs())
	ctx := context.Background()
	require.NoError(t, svc.Provider().Update(ctx))

	src.set(SystemTimes{User: 5}, Record{PID: 5, CreateTime: 1, ReadOps: 40})
	require.NoError(t, svc.Provider().Update(ctx))

	p, ok := svc.Get(5)
	require.True(t, ok)
	assert.Equal(t, uint64(0), p.ReadOps.Delta)
	assert.Equal(t, uint64(40), p.ReadOps.Value)
	assert.Equal(t, float64(0), p.CPUUsage)
}

func TestProcess_PIDReuse(t *testing.T) {
	src := &fakeSource{}
	src.set(SystemTimes{}, Record{PID: 7, CreateTime: 100, Name: "old"})
	svc, _ := newTestService(t, src, afero.NewMemMapFs())
	ctx := context.Background()
	require.NoError(t, svc.Provider().Update(ctx))

	var kinds []provider.EventKind
	sub := svc.Provider().Listen(func(ev provider.Event[int32, Process]) {
		if ev.Ref != nil && ev.Ref.Value().Key() == 7 {
			kinds = append(kinds, ev.Kind)
		}
	})
	defer sub.Close()

	src.set(SystemTimes{}, Record{PID: 7, CreateTime: 200, Name: "new"})
	require.NoError(t, svc.Provider().Update(ctx))

	assert.Equal(t, []provider.EventKind{provider.Removed, provider.Added}, kinds)
	p, ok := svc.Get(7)
	require.True(t, ok)
	assert.Equal(t, "new", p.Name)
	assert.Equal(t, uint64(2), p.AddedCycle)
}

func TestProcess_Enrichment(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/usr/bin/app", []byte("binary"), 0o755))

	src := &fakeSource{details: map[int32]Details{
		1: {Exe: "/usr/bin/app", Cmdline: "app --serve", Username: "root"},
		2: {Exe: "/usr/bin/app", Cmdline: "app --worker", Username: "nobody"},
		3: {Exe: "/missing"},
	}}
	src.set(SystemTimes{}, Record{PID: 1, CreateTime: 1})
	svc, q := newTestService(t, src, fs)
	ctx := context.Background()

	// First cycle: stage 1 inline, stage 2 queued.
	require.NoError(t, svc.Provider().Update(ctx))
	p, _ := svc.Get(1)
	assert.Equal(t, "app --serve", p.Cmdline)
	assert.Empty(t, p.Digest)

	q.runAll()
	src.set(SystemTimes{}, Record{PID: 1, CreateTime: 1}, Record{PID: 2, CreateTime: 2}, Record{PID: 3, CreateTime: 3}, Record{PID: 4, CreateTime: 4})
	require.NoError(t, svc.Provider().Update(ctx))

	p, _ = svc.Get(1)
	assert.Equal(t, sha("binary"), p.Digest)

	// Later cycles: stage 1 queued, stage 2 chained after the merge.
	p, _ = svc.Get(2)
	assert.Empty(t, p.Exe)
	for i := 0; i < 2; i++ {
		q.runAll()
		require.NoError(t, svc.Provider().Update(ctx))
	}

	p, _ = svc.Get(2)
	assert.Equal(t, "nobody", p.Username)
	assert.Equal(t, sha("binary"), p.Digest)
	assert.Equal(t, 1, svc.digests.Len())

	p, _ = svc.Get(3)
	assert.Equal(t, "/missing", p.Exe)
	assert.NotEmpty(t, p.DigestError)

	p, _ = svc.Get(4)
	assert.Equal(t, "access denied", p.DetailsError)
	assert.Equal(t, ErrNoExecutable.Error(), p.DigestError)

	p, _ = svc.Get(InterruptsPID)
	assert.Empty(t, p.DetailsError)
	assert.Empty(t, p.DigestError)
}

func TestProcess_DigestTerminating(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/bin/x", []byte("x"), 0o755))
	a := NewAdapter(&fakeSource{}, fs, cache.New[string]("test", cache.Config{Size: 4, ErrorTTL: 0}), zap.NewNop())

	_, err := a.Enrich(context.Background(), provider.EnrichRequest[int32, Process]{
		Stage:       stageDigest,
		Key:         1,
		Value:       Process{Details: Details{Exe: "/bin/x"}},
		Terminating: func() bool { return true },
	})
	assert.ErrorIs(t, err, provider.ErrTerminated)
	assert.Equal(t, 0, a.digests.Len())
}

func TestProcess_EnumerationFailure(t *testing.T) {
	src := &fakeSource{err: errors.New("proc unavailable")}
	svc, _ := newTestService(t, src, afero.NewMemMapFs())

	err := svc.Provider().Update(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "process: enumerate")
	assert.Empty(t, svc.List(SortPID, 0))
}
