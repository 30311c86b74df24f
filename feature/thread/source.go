package thread

import (
	"context"
	"errors"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/process"
)

// Record is one thread as seen by a single enumeration.
type Record struct {
	TID        int32
	UserTime   uint64 // nanoseconds
	KernelTime uint64 // nanoseconds
}

// Source enumerates the threads of a process.
type Source interface {
	Threads(ctx context.Context, pid int32) ([]Record, error)
	// SystemTotal returns the cumulative CPU time of the machine in
	// nanoseconds.
	SystemTotal(ctx context.Context) (uint64, error)
}

// GopsutilSource reads threads through gopsutil.
type GopsutilSource struct{}

// NewGopsutilSource returns a source for the local machine.
func NewGopsutilSource() *GopsutilSource {
	return &GopsutilSource{}
}

// Threads lists the threads of pid with their CPU times.
func (s *GopsutilSource) Threads(ctx context.Context, pid int32) ([]Record, error) {
	p, err := process.NewProcessWithContext(ctx, pid)
	if err != nil {
		return nil, err
	}

	threads, err := p.ThreadsWithContext(ctx)
	if err != nil {
		return nil, err
	}

	records := make([]Record, 0, len(threads))
	for tid, times := range threads {
		rec := Record{TID: tid}
		if times != nil {
			rec.UserTime = seconds(times.User)
			rec.KernelTime = seconds(times.System)
		}
		records = append(records, rec)
	}
	return records, nil
}

// SystemTotal returns the cumulative CPU time of the machine.
func (s *GopsutilSource) SystemTotal(ctx context.Context) (uint64, error) {
	stats, err := cpu.TimesWithContext(ctx, false)
	if err != nil {
		return 0, err
	}
	if len(stats) == 0 {
		return 0, errors.New("no cpu times reported")
	}

	st := stats[0]
	return seconds(st.User + st.System + st.Idle + st.Nice + st.Iowait + st.Irq + st.Softirq + st.Steal), nil
}

func seconds(s float64) uint64 {
	if s <= 0 {
		return 0
	}
	return uint64(s * float64(time.Second))
}
