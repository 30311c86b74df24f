package network

import (
	"context"
	"syscall"

	"github.com/shirou/gopsutil/v4/net"
)

// Record is one socket as seen by a single enumeration.
type Record struct {
	Protocol   string
	LocalAddr  string
	LocalPort  uint32
	RemoteAddr string
	RemotePort uint32
	Status     string
	PID        int32
}

// Source enumerates sockets.
type Source interface {
	Connections(ctx context.Context) ([]Record, error)
}

// GopsutilSource reads sockets through gopsutil.
type GopsutilSource struct{}

// NewGopsutilSource returns a source for the local machine.
func NewGopsutilSource() *GopsutilSource {
	return &GopsutilSource{}
}

// Connections returns every TCP and UDP socket over IPv4 and IPv6.
func (s *GopsutilSource) Connections(ctx context.Context) ([]Record, error) {
	stats, err := net.ConnectionsWithContext(ctx, "inet")
	if err != nil {
		return nil, err
	}

	records := make([]Record, 0, len(stats))
	for _, st := range stats {
		proto := protocol(st.Family, st.Type)
		if proto == "" {
			continue
		}
		records = append(records, Record{
			Protocol:   proto,
			LocalAddr:  st.Laddr.IP,
			LocalPort:  st.Laddr.Port,
			RemoteAddr: st.Raddr.IP,
			RemotePort: st.Raddr.Port,
			Status:     st.Status,
			PID:        st.Pid,
		})
	}
	return records, nil
}

func protocol(family, typ uint32) string {
	var proto string
	switch typ {
	case syscall.SOCK_STREAM:
		proto = "tcp"
	case syscall.SOCK_DGRAM:
		proto = "udp"
	default:
		return ""
	}
	if family == syscall.AF_INET6 {
		proto += "6"
	}
	return proto
}
