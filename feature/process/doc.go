// Package process mirrors the processes of the local machine.
//
// A Source (gopsutil by default) is enumerated once per cycle and diffed by the
// generic provider engine. Identity is the pid together with the creation
// time, so a recycled pid shows up as a removal followed by an addition in
// the same cycle.
//
// # Counters
//
// CPU times, resident memory, context switches and I/O counters are tracked
// as provider.Delta values. CPU usage is the per-cycle delta divided by the
// delta of the total system CPU time, split into user and kernel usage. The
// busiest processes by CPU and by I/O are recorded at the end of each cycle.
//
// # Pseudo Processes
//
// Two entries with negative pids account time that belongs to no process:
// "Interrupts" (pid -3) carries irq and softirq time, and "Soft Interrupts"
// (pid -2) carries softirq time alone. They are never enriched.
//
// # Enrichment
//
//   - Stage 1 reads the executable path, command line and owner.
//   - Stage 2 hashes the executable with SHA-256. Digests are cached by path,
//     so processes sharing an image are hashed once.
//
// On a provider's first cycle stage 1 runs inline, so the initial snapshot is
// complete when Update returns.
//
// # Usage
//
//	svc := process.NewService(cfg.Process, cfg.Digest, process.NewGopsutilSource(), afero.NewOsFs(), queue, logger)
//	go svc.Provider().Run(ctx)
//
//	for _, p := range svc.List(process.SortCPU, 10) {
//	    fmt.Println(p.PID, p.Name, p.CPUUsage)
//	}
package process
