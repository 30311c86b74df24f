package process

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"system-mirror/core/cache"
	"system-mirror/core/hashtable"
	"system-mirror/core/provider"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

const (
	// SoftInterruptsPID identifies the pseudo process accounting softirq time.
	SoftInterruptsPID int32 = -2
	// InterruptsPID identifies the pseudo process accounting interrupt time.
	InterruptsPID int32 = -3
)

const (
	stageDetails = 1
	stageDigest  = 2
)

// ErrNoExecutable is the digest failure of processes without a known image.
var ErrNoExecutable = errors.New("process has no executable path")

// Process is the tracked value of one process.
type Process struct {
	PID        int32     `json:"pid"`
	PPID       int32     `json:"ppid"`
	Name       string    `json:"name"`
	CreateTime time.Time `json:"create_time"`
	Pseudo     bool      `json:"pseudo,omitempty"`

	UserTime   provider.Delta `json:"user_time"`
	KernelTime provider.Delta `json:"kernel_time"`

	CPUUsage    float64 `json:"cpu_usage"`
	UserUsage   float64 `json:"user_usage"`
	KernelUsage float64 `json:"kernel_usage"`

	RSS      provider.Delta `json:"rss"`
	VMS      uint64         `json:"vms"`
	Threads  int32          `json:"threads"`
	Switches provider.Delta `json:"context_switches"`

	ReadBytes  provider.Delta `json:"read_bytes"`
	WriteBytes provider.Delta `json:"write_bytes"`
	ReadOps    provider.Delta `json:"read_ops"`
	WriteOps   provider.Delta `json:"write_ops"`

	Details
	DetailsError string `json:"details_error,omitempty"`

	Digest      string `json:"digest,omitempty"`
	DigestError string `json:"digest_error,omitempty"`

	createMillis int64
}

// IOBytes is the number of bytes read and written during the last cycle.
func (p *Process) IOBytes() uint64 {
	return p.ReadBytes.Delta + p.WriteBytes.Delta
}

// Maximums names the busiest processes of the last cycle.
type Maximums struct {
	Cycle    uint64  `json:"cycle"`
	CPUPID   int32   `json:"cpu_pid"`
	CPUUsage float64 `json:"cpu_usage"`
	IOPID    int32   `json:"io_pid"`
	IOBytes  uint64  `json:"io_bytes"`
}

type cycleData struct {
	total uint64
	max   Maximums
}

// Adapter mirrors the processes of a Source.
type Adapter struct {
	source  Source
	fs      afero.Fs
	digests *cache.Cache[string]
	logger  *zap.Logger

	system   SystemTimes
	maximums atomic.Pointer[Maximums]
}

// NewAdapter creates a process adapter. Executables are read from fs for
// digests, and digests are memoized in digests keyed by path.
func NewAdapter(source Source, fs afero.Fs, digests *cache.Cache[string], logger *zap.Logger) *Adapter {
	return &Adapter{
		source:  source,
		fs:      fs,
		digests: digests,
		logger:  logger.Named("process"),
	}
}

// Name identifies the provider.
func (a *Adapter) Name() string {
	return "process"
}

// Enumerate lists the running processes.
func (a *Adapter) Enumerate(ctx context.Context) ([]Record, error) {
	return a.source.Processes(ctx)
}

// BeginCycle samples the system CPU times and appends the interrupt pseudo
// processes.
func (a *Adapter) BeginCycle(ctx context.Context, cycle *provider.Cycle, records []Record) ([]Record, error) {
	times, err := a.source.SystemTimes(ctx)
	if err != nil {
		return nil, fmt.Errorf("system times: %w", err)
	}

	data := &cycleData{max: Maximums{Cycle: cycle.Number}}
	if !cycle.First {
		if total, prev := times.Total(), a.system.Total(); total > prev {
			data.total = total - prev
		}
	}
	a.system = times
	cycle.Data = data

	return append(records,
		Record{PID: InterruptsPID, Name: "Interrupts", Pseudo: true, KernelTime: times.Irq + times.Softirq},
		Record{PID: SoftInterruptsPID, Name: "Soft Interrupts", Pseudo: true, KernelTime: times.Softirq},
	), nil
}

// Key returns the pid.
func (a *Adapter) Key(rec *Record) int32 {
	return rec.PID
}

// Hash hashes a pid.
func (a *Adapter) Hash(pid int32) uint32 {
	return hashtable.HashUint32(uint32(pid))
}

// SameEntity compares creation times so a reused pid is seen as a new
// process.
func (a *Adapter) SameEntity(v *Process, rec *Record) bool {
	return v.createMillis == rec.CreateTime
}

// NewValue creates a process from its first record.
func (a *Adapter) NewValue(pid int32, rec *Record, cycle *provider.Cycle) Process {
	v := Process{
		PID:          pid,
		PPID:         rec.PPID,
		Name:         rec.Name,
		Pseudo:       rec.Pseudo,
		UserTime:     provider.NewDelta(rec.UserTime),
		KernelTime:   provider.NewDelta(rec.KernelTime),
		RSS:          provider.NewDelta(rec.RSS),
		VMS:          rec.VMS,
		Threads:      rec.Threads,
		Switches:     provider.NewDelta(rec.ContextSwitches),
		ReadBytes:    provider.NewDelta(rec.ReadBytes),
		WriteBytes:   provider.NewDelta(rec.WriteBytes),
		ReadOps:      provider.NewDelta(rec.ReadOps),
		WriteOps:     provider.NewDelta(rec.WriteOps),
		createMillis: rec.CreateTime,
	}
	if rec.CreateTime > 0 {
		v.CreateTime = time.UnixMilli(rec.CreateTime)
	}
	return v
}

// Update refreshes counters and usage. It reports a change when any counter
// moved or a gauge differs.
func (a *Adapter) Update(v *Process, rec *Record, cycle *provider.Cycle) bool {
	before := *v

	v.PPID = rec.PPID
	v.Name = rec.Name
	v.VMS = rec.VMS
	v.Threads = rec.Threads
	v.UserTime.Update(rec.UserTime)
	v.KernelTime.Update(rec.KernelTime)
	v.RSS.Update(rec.RSS)
	v.Switches.Update(rec.ContextSwitches)
	v.ReadBytes.Update(rec.ReadBytes)
	v.WriteBytes.Update(rec.WriteBytes)
	v.ReadOps.Update(rec.ReadOps)
	v.WriteOps.Update(rec.WriteOps)

	data, _ := cycle.Data.(*cycleData)
	var total uint64
	if data != nil {
		total = data.total
	}
	v.UserUsage = provider.Usage(v.UserTime.Delta, total)
	v.KernelUsage = provider.Usage(v.KernelTime.Delta, total)
	v.CPUUsage = provider.Usage(v.UserTime.Delta+v.KernelTime.Delta, total)

	if data != nil && !v.Pseudo {
		if v.CPUUsage > data.max.CPUUsage {
			data.max.CPUPID, data.max.CPUUsage = v.PID, v.CPUUsage
		}
		if io := v.IOBytes(); io > data.max.IOBytes {
			data.max.IOPID, data.max.IOBytes = v.PID, io
		}
	}

	return v.CPUUsage != before.CPUUsage ||
		v.Name != before.Name ||
		v.PPID != before.PPID ||
		v.VMS != before.VMS ||
		v.Threads != before.Threads ||
		v.RSS.Delta != 0 ||
		v.Switches.Delta != 0 ||
		v.IOBytes() != before.IOBytes() ||
		v.ReadOps.Delta != before.ReadOps.Delta ||
		v.WriteOps.Delta != before.WriteOps.Delta
}

// EndCycle publishes the busiest processes of the cycle.
func (a *Adapter) EndCycle(cycle *provider.Cycle) {
	if data, ok := cycle.Data.(*cycleData); ok {
		m := data.max
		a.maximums.Store(&m)
	}
}

// Maximums returns the busiest processes of the last completed cycle.
func (a *Adapter) Maximums() Maximums {
	if m := a.maximums.Load(); m != nil {
		return *m
	}
	return Maximums{}
}

// Stages is details then digest.
func (a *Adapter) Stages() int {
	return 2
}

// Enrich runs one enrichment stage.
func (a *Adapter) Enrich(ctx context.Context, req provider.EnrichRequest[int32, Process]) (any, error) {
	if req.Value.Pseudo {
		return nil, nil
	}

	switch req.Stage {
	case stageDetails:
		return a.source.Details(ctx, req.Key)
	case stageDigest:
		if req.Value.Exe == "" {
			return "", ErrNoExecutable
		}
		return a.digests.Get(ctx, req.Value.Exe, func(ctx context.Context) (string, error) {
			return a.digest(ctx, req.Value.Exe, req.Terminating)
		})
	default:
		return nil, fmt.Errorf("unknown stage %d", req.Stage)
	}
}

// Merge stores the result of an enrichment stage.
func (a *Adapter) Merge(v *Process, stage int, result any, err error) {
	switch stage {
	case stageDetails:
		if err != nil {
			v.DetailsError = err.Error()
			return
		}
		if d, ok := result.(Details); ok {
			v.Details = d
		}
	case stageDigest:
		if err != nil {
			v.DigestError = err.Error()
			return
		}
		if s, ok := result.(string); ok {
			v.Digest = s
		}
	}
}

// digest hashes the executable at path, giving up between chunks when the
// provider is terminating. Abandoned digests are not cached.
func (a *Adapter) digest(ctx context.Context, path string, terminating func() bool) (string, error) {
	f, err := a.fs.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	buf := make([]byte, 64*1024)
	for {
		if terminating() {
			return "", fmt.Errorf("%w: %w", provider.ErrTerminated, context.Canceled)
		}
		if err := ctx.Err(); err != nil {
			return "", err
		}

		n, err := f.Read(buf)
		h.Write(buf[:n])
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", err
		}
	}

	sum := hex.EncodeToString(h.Sum(nil))
	a.logger.Debug("Executable digested", zap.String("path", path), zap.String("sha256", sum))
	return sum, nil
}
