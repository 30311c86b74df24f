package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"system-mirror/core/config"
	"system-mirror/core/logger"
	"system-mirror/feature/network"
	"system-mirror/feature/process"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Flags for list commands
	listCycles int
	listSort   string
	listLimit  int
)

// listCmd is the parent command for one-shot listings.
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print a snapshot of mirrored state",
	Long: `Runs a few update cycles against this machine and prints the result.

At least two cycles are needed for usage and I/O rates.

Examples:
  # Top 20 processes by CPU
  list processes --sort cpu --limit 20

  # Every socket, with reverse DNS given more time
  list network --cycles 3`,
}

var listProcessesCmd = &cobra.Command{
	Use:   "processes",
	Short: "List processes",
	RunE:  runListProcesses,
}

var listNetworkCmd = &cobra.Command{
	Use:   "network",
	Short: "List network connections",
	RunE:  runListNetwork,
}

func init() {
	listCmd.PersistentFlags().IntVar(&listCycles, "cycles", 2, "Number of update cycles to run before printing")
	listProcessesCmd.Flags().StringVar(&listSort, "sort", process.SortPID, "Sort order (pid, cpu, io)")
	listProcessesCmd.Flags().IntVar(&listLimit, "limit", 0, "Maximum number of rows (0 for all)")

	listCmd.AddCommand(listProcessesCmd)
	listCmd.AddCommand(listNetworkCmd)
	RootCmd.AddCommand(listCmd)
}

// cliServices loads configuration with a quiet console logger.
func cliServices() (*services, *config.Config, *zap.Logger, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	cfg.Log.Format = "console"
	if cfg.Log.Level == "info" {
		cfg.Log.Level = "warn"
	}

	logg, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return newServices(cfg, logg), cfg, logg, nil
}

// cycle runs n update cycles of update, pausing interval between them.
func cycle(ctx context.Context, n int, interval time.Duration, update func(context.Context) error) error {
	if n < 1 {
		return fmt.Errorf("cycles must be at least 1")
	}
	for i := 0; i < n; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(interval):
			}
		}
		if err := update(ctx); err != nil {
			return err
		}
	}
	return nil
}

func runListProcesses(cmd *cobra.Command, args []string) error {
	switch listSort {
	case process.SortPID, process.SortCPU, process.SortIO:
	default:
		return fmt.Errorf("unknown sort order %q", listSort)
	}

	svc, cfg, logg, err := cliServices()
	if err != nil {
		return err
	}
	defer logg.Sync()
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	defer svc.close(context.Background())

	if err := cycle(ctx, listCycles, cfg.Process.Interval, svc.processes.Provider().Update); err != nil {
		return err
	}

	printProcesses(os.Stdout, svc.processes.List(listSort, listLimit), cfg.Process.Interval)
	return nil
}

func printProcesses(w io.Writer, entries []process.Entry, interval time.Duration) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"PID", "PPID", "Name", "CPU", "Memory", "I/O", "User", "Started"})
	table.SetBorder(false)
	table.SetAutoWrapText(false)

	perSecond := float64(time.Second) / float64(max(interval, time.Millisecond))
	for _, p := range entries {
		started := "-"
		if !p.CreateTime.IsZero() {
			started = humanize.Time(p.CreateTime)
		}
		table.Append([]string{
			strconv.Itoa(int(p.PID)),
			strconv.Itoa(int(p.PPID)),
			p.Name,
			fmt.Sprintf("%.1f%%", p.CPUUsage*100),
			humanize.IBytes(p.RSS.Value),
			humanize.IBytes(uint64(float64(p.IOBytes())*perSecond)) + "/s",
			p.Username,
			started,
		})
	}
	table.Render()
}

func runListNetwork(cmd *cobra.Command, args []string) error {
	svc, cfg, logg, err := cliServices()
	if err != nil {
		return err
	}
	defer logg.Sync()
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	defer svc.close(context.Background())

	// Process names are linked from the process provider.
	update := func(ctx context.Context) error {
		if err := svc.processes.Provider().Update(ctx); err != nil {
			return err
		}
		return svc.network.Provider().Update(ctx)
	}
	if err := cycle(ctx, listCycles, cfg.Network.Interval, update); err != nil {
		return err
	}

	printConnections(os.Stdout, svc.network.List(network.Filter{}))
	return nil
}

func printConnections(w io.Writer, entries []network.Entry) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Proto", "Local", "Remote", "Host", "State", "PID", "Process"})
	table.SetBorder(false)
	table.SetAutoWrapText(false)

	for _, c := range entries {
		remote := "-"
		if c.RemoteAddr != "" {
			remote = c.RemoteAddr + ":" + strconv.FormatUint(uint64(c.RemotePort), 10)
		}
		table.Append([]string{
			c.Protocol,
			c.LocalAddr + ":" + strconv.FormatUint(uint64(c.LocalPort), 10),
			remote,
			c.RemoteHost,
			c.Status,
			strconv.Itoa(int(c.PID)),
			c.ProcessName,
		})
	}
	table.Render()
	fmt.Fprintf(w, "%s connections\n", humanize.Comma(int64(len(entries))))
}
