package cmd

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"system-mirror/core/provider"
	"system-mirror/feature/network"
	"system-mirror/feature/process"
	"system-mirror/feature/thread"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCycle(t *testing.T) {
	tests := []struct {
		name    string
		n       int
		failAt  int
		wantRun int
		wantErr bool
	}{
		{name: "runs every cycle", n: 3, failAt: -1, wantRun: 3},
		{name: "stops on failure", n: 3, failAt: 1, wantRun: 2, wantErr: true},
		{name: "rejects zero", n: 0, failAt: -1, wantRun: 0, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runs := 0
			err := cycle(context.Background(), tt.n, time.Millisecond, func(context.Context) error {
				runs++
				if runs-1 == tt.failAt {
					return errors.New("boom")
				}
				return nil
			})
			assert.Equal(t, tt.wantRun, runs)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPrintProcesses(t *testing.T) {
	var buf bytes.Buffer
	printProcesses(&buf, []process.Entry{
		{Process: process.Process{
			PID:       42,
			Name:      "nginx",
			CPUUsage:  0.125,
			RSS:       provider.Delta{Value: 2 * 1024 * 1024},
			ReadBytes: provider.Delta{Delta: 1024},
			Details:   process.Details{Username: "www-data"},
		}},
	}, time.Second)

	out := buf.String()
	assert.Contains(t, out, "nginx")
	assert.Contains(t, out, "12.5%")
	assert.Contains(t, out, "2.0 MiB")
	assert.Contains(t, out, "1.0 KiB/s")
	assert.Contains(t, out, "www-data")
}

func TestPrintConnections(t *testing.T) {
	var buf bytes.Buffer
	printConnections(&buf, []network.Entry{
		{Connection: network.Connection{Protocol: "tcp", LocalAddr: "0.0.0.0", LocalPort: 22, Status: "LISTEN", PID: 1, ProcessName: "sshd"}},
		{Connection: network.Connection{Protocol: "tcp", LocalAddr: "10.0.0.2", LocalPort: 5000, RemoteAddr: "93.184.216.34", RemotePort: 443, RemoteHost: "example.com"}},
	})

	out := buf.String()
	assert.Contains(t, out, "0.0.0.0:22")
	assert.Contains(t, out, "93.184.216.34:443")
	assert.Contains(t, out, "example.com")
	assert.Contains(t, out, "2 connections")
}

func TestPrintThreads(t *testing.T) {
	var buf bytes.Buffer
	printThreads(&buf, []thread.Entry{
		{Thread: thread.Thread{TID: 10, Name: "app", WaitChannel: "do_epoll_wait", UserTime: provider.Delta{Value: uint64(1500 * time.Millisecond)}}, Process: "app"},
	})

	out := buf.String()
	require.NotEmpty(t, out)
	assert.Contains(t, out, "do_epoll_wait")
	assert.Contains(t, out, "1.5s")
	assert.Contains(t, out, "1 threads of app")
}
