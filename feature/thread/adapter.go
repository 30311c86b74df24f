package thread

import (
	"context"
	"fmt"
	"path"
	"strconv"
	"strings"

	"system-mirror/core/hashtable"
	"system-mirror/core/provider"

	"github.com/spf13/afero"
)

// Thread is the tracked value of one thread.
type Thread struct {
	TID int32 `json:"tid"`
	PID int32 `json:"pid"`

	UserTime   provider.Delta `json:"user_time"`
	KernelTime provider.Delta `json:"kernel_time"`
	CPUUsage   float64        `json:"cpu_usage"`

	Name        string `json:"name,omitempty"`
	WaitChannel string `json:"wait_channel,omitempty"`
	InfoError   string `json:"info_error,omitempty"`
}

// Info is the stage 1 enrichment of a thread.
type Info struct {
	Name        string
	WaitChannel string
}

// Adapter mirrors the threads of one process.
type Adapter struct {
	pid    int32
	source Source
	fs     afero.Fs
	proc   string

	total uint64
}

// NewAdapter creates an adapter for pid. Thread names and wait channels are
// read from the proc filesystem mounted at proc on fs.
func NewAdapter(pid int32, source Source, fs afero.Fs, proc string) *Adapter {
	return &Adapter{pid: pid, source: source, fs: fs, proc: proc}
}

// Name identifies the provider.
func (a *Adapter) Name() string {
	return "thread"
}

// Enumerate lists the threads of the process.
func (a *Adapter) Enumerate(ctx context.Context) ([]Record, error) {
	return a.source.Threads(ctx, a.pid)
}

// BeginCycle stores the system CPU delta for usage calculation.
func (a *Adapter) BeginCycle(ctx context.Context, cycle *provider.Cycle, records []Record) ([]Record, error) {
	total, err := a.source.SystemTotal(ctx)
	if err != nil {
		return nil, fmt.Errorf("system times: %w", err)
	}

	var delta uint64
	if !cycle.First && total > a.total {
		delta = total - a.total
	}
	a.total = total
	cycle.Data = delta
	return records, nil
}

// Key returns the tid.
func (a *Adapter) Key(rec *Record) int32 {
	return rec.TID
}

// Hash hashes a tid.
func (a *Adapter) Hash(tid int32) uint32 {
	return hashtable.HashUint32(uint32(tid))
}

// SameEntity is always true: threads are not tracked across tid reuse.
func (a *Adapter) SameEntity(*Thread, *Record) bool {
	return true
}

// NewValue creates a thread from its first record.
func (a *Adapter) NewValue(tid int32, rec *Record, _ *provider.Cycle) Thread {
	return Thread{
		TID:        tid,
		PID:        a.pid,
		UserTime:   provider.NewDelta(rec.UserTime),
		KernelTime: provider.NewDelta(rec.KernelTime),
	}
}

// Update applies a new sample and reports whether anything changed.
func (a *Adapter) Update(v *Thread, rec *Record, cycle *provider.Cycle) bool {
	before := v.CPUUsage
	v.UserTime.Update(rec.UserTime)
	v.KernelTime.Update(rec.KernelTime)

	total, _ := cycle.Data.(uint64)
	v.CPUUsage = provider.Usage(v.UserTime.Delta+v.KernelTime.Delta, total)
	return v.CPUUsage != before
}

// Stages returns 1: name and wait channel.
func (a *Adapter) Stages() int {
	return 1
}

// Enrich reads the thread's name and the kernel function it sleeps in.
func (a *Adapter) Enrich(_ context.Context, req provider.EnrichRequest[int32, Thread]) (any, error) {
	dir := path.Join(a.proc, strconv.Itoa(int(a.pid)), "task", strconv.Itoa(int(req.Key)))

	name, err := afero.ReadFile(a.fs, path.Join(dir, "comm"))
	if err != nil {
		return nil, err
	}

	info := Info{Name: strings.TrimSpace(string(name))}
	if wchan, err := afero.ReadFile(a.fs, path.Join(dir, "wchan")); err == nil {
		if w := strings.TrimSpace(string(wchan)); w != "0" {
			info.WaitChannel = w
		}
	}
	return info, nil
}

// Merge stores the thread info.
func (a *Adapter) Merge(v *Thread, _ int, result any, err error) {
	if err != nil {
		v.InfoError = err.Error()
		return
	}
	if info, ok := result.(Info); ok {
		v.Name = info.Name
		v.WaitChannel = info.WaitChannel
	}
}
