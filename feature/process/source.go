package process

import (
	"context"
	"errors"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/process"
)

// Record is one process as seen by a single enumeration.
type Record struct {
	PID        int32
	PPID       int32
	Name       string
	CreateTime int64 // milliseconds since the epoch
	Pseudo     bool

	UserTime   uint64 // nanoseconds
	KernelTime uint64 // nanoseconds

	RSS uint64
	VMS uint64

	ReadBytes  uint64
	WriteBytes uint64
	ReadOps    uint64
	WriteOps   uint64

	ContextSwitches uint64
	Threads         int32
}

// SystemTimes are cumulative system-wide CPU times in nanoseconds.
type SystemTimes struct {
	User    uint64
	System  uint64
	Idle    uint64
	Nice    uint64
	Iowait  uint64
	Irq     uint64
	Softirq uint64
	Steal   uint64
}

// Total is the sum of every accounted CPU state.
func (t SystemTimes) Total() uint64 {
	return t.User + t.System + t.Idle + t.Nice + t.Iowait + t.Irq + t.Softirq + t.Steal
}

// Details is the stage 1 enrichment of a process.
type Details struct {
	Exe      string `json:"exe"`
	Cmdline  string `json:"cmdline"`
	Username string `json:"username"`
}

// Source enumerates processes and system CPU times.
type Source interface {
	Processes(ctx context.Context) ([]Record, error)
	SystemTimes(ctx context.Context) (SystemTimes, error)
	Details(ctx context.Context, pid int32) (Details, error)
}

// GopsutilSource reads the live system through gopsutil.
type GopsutilSource struct{}

// NewGopsutilSource returns a source for the local machine.
func NewGopsutilSource() *GopsutilSource {
	return &GopsutilSource{}
}

// Processes enumerates every process whose identity can be read. Processes
// that exit mid-enumeration are skipped; fields that cannot be read stay zero.
func (s *GopsutilSource) Processes(ctx context.Context) ([]Record, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, err
	}

	records := make([]Record, 0, len(procs))
	for _, p := range procs {
		created, err := p.CreateTimeWithContext(ctx)
		if err != nil {
			continue
		}

		rec := Record{PID: p.Pid, CreateTime: created}
		rec.Name, _ = p.NameWithContext(ctx)
		rec.PPID, _ = p.PpidWithContext(ctx)

		if times, err := p.TimesWithContext(ctx); err == nil {
			rec.UserTime = seconds(times.User)
			rec.KernelTime = seconds(times.System)
		}
		if mem, err := p.MemoryInfoWithContext(ctx); err == nil {
			rec.RSS = mem.RSS
			rec.VMS = mem.VMS
		}
		if io, err := p.IOCountersWithContext(ctx); err == nil {
			rec.ReadBytes = io.ReadBytes
			rec.WriteBytes = io.WriteBytes
			rec.ReadOps = io.ReadCount
			rec.WriteOps = io.WriteCount
		}
		if cs, err := p.NumCtxSwitchesWithContext(ctx); err == nil {
			rec.ContextSwitches = uint64(cs.Voluntary + cs.Involuntary)
		}
		rec.Threads, _ = p.NumThreadsWithContext(ctx)

		records = append(records, rec)
	}

	return records, nil
}

// SystemTimes returns the aggregate CPU times of the machine.
func (s *GopsutilSource) SystemTimes(ctx context.Context) (SystemTimes, error) {
	stats, err := cpu.TimesWithContext(ctx, false)
	if err != nil {
		return SystemTimes{}, err
	}
	if len(stats) == 0 {
		return SystemTimes{}, errors.New("no cpu times reported")
	}

	st := stats[0]
	return SystemTimes{
		User:    seconds(st.User),
		System:  seconds(st.System),
		Idle:    seconds(st.Idle),
		Nice:    seconds(st.Nice),
		Iowait:  seconds(st.Iowait),
		Irq:     seconds(st.Irq),
		Softirq: seconds(st.Softirq),
		Steal:   seconds(st.Steal),
	}, nil
}

// Details reads the executable path, command line and owner of pid. The
// first failing field aborts; the caller falls back to empty values.
func (s *GopsutilSource) Details(ctx context.Context, pid int32) (Details, error) {
	p, err := process.NewProcessWithContext(ctx, pid)
	if err != nil {
		return Details{}, err
	}

	var d Details
	if d.Exe, err = p.ExeWithContext(ctx); err != nil {
		return Details{}, err
	}
	d.Cmdline, _ = p.CmdlineWithContext(ctx)
	d.Username, _ = p.UsernameWithContext(ctx)
	return d, nil
}

func seconds(s float64) uint64 {
	if s <= 0 {
		return 0
	}
	return uint64(s * float64(time.Second))
}
