package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"system-mirror/feature/thread"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// threadsCmd prints the threads of one process.
var threadsCmd = &cobra.Command{
	Use:   "threads <pid>",
	Short: "List the threads of a process",
	Args:  cobra.ExactArgs(1),
	RunE:  runThreads,
}

func init() {
	threadsCmd.Flags().IntVar(&listCycles, "cycles", 2, "Number of update cycles to run before printing")
	RootCmd.AddCommand(threadsCmd)
}

func runThreads(cmd *cobra.Command, args []string) error {
	pid, err := strconv.ParseInt(args[0], 10, 32)
	if err != nil || pid <= 0 {
		return fmt.Errorf("invalid pid %q", args[0])
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

	// The process cycle provides the owning process name.
	if err := svc.processes.Provider().Update(ctx); err != nil {
		return err
	}

	var entries []thread.Entry
	err = cycle(ctx, listCycles, cfg.Thread.Interval, func(ctx context.Context) error {
		entries, err = svc.threads.List(ctx, int32(pid))
		return err
	})
	if err != nil {
		return err
	}

	printThreads(os.Stdout, entries)
	return nil
}

func printThreads(w io.Writer, entries []thread.Entry) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"TID", "Name", "CPU", "User", "Kernel", "Wait Channel"})
	table.SetBorder(false)
	table.SetAutoWrapText(false)

	for _, t := range entries {
		table.Append([]string{
			strconv.Itoa(int(t.TID)),
			t.Name,
			fmt.Sprintf("%.1f%%", t.CPUUsage*100),
			time.Duration(t.UserTime.Value).Round(time.Millisecond).String(),
			time.Duration(t.KernelTime.Value).Round(time.Millisecond).String(),
			t.WaitChannel,
		})
	}
	table.Render()

	if len(entries) > 0 && entries[0].Process != "" {
		fmt.Fprintf(w, "%s threads of %s\n", humanize.Comma(int64(len(entries))), entries[0].Process)
	}
}
