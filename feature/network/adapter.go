package network

import (
	"context"
	"errors"
	"net"
	"strconv"

	"system-mirror/core/hashtable"
	"system-mirror/core/object"
	"system-mirror/core/provider"
	"system-mirror/core/resolve"
	"system-mirror/feature/process"
)

// Key identifies a connection.
type Key struct {
	Protocol string
	Local    string
	Remote   string
	PID      int32
}

// Connection is the tracked value of one socket.
type Connection struct {
	Protocol   string `json:"protocol"`
	LocalAddr  string `json:"local_addr"`
	LocalPort  uint32 `json:"local_port"`
	RemoteAddr string `json:"remote_addr,omitempty"`
	RemotePort uint32 `json:"remote_port,omitempty"`
	Status     string `json:"status"`
	PID        int32  `json:"pid"`

	ProcessName string `json:"process_name,omitempty"`
	ProcessExe  string `json:"process_exe,omitempty"`

	RemoteHost   string `json:"remote_host,omitempty"`
	ResolveError string `json:"resolve_error,omitempty"`
}

// Processes looks up the process owning a socket. *process.Provider
// satisfies it.
type Processes interface {
	Lookup(pid int32) (*object.Ref[provider.Item[int32, process.Process]], bool)
}

// Adapter mirrors the sockets of a Source.
type Adapter struct {
	source    Source
	resolver  *resolve.Service
	processes Processes
}

// NewAdapter creates a network adapter. resolver and processes may be nil.
func NewAdapter(source Source, resolver *resolve.Service, processes Processes) *Adapter {
	return &Adapter{source: source, resolver: resolver, processes: processes}
}

// Name identifies the provider.
func (a *Adapter) Name() string {
	return "network"
}

// Enumerate lists the sockets of the machine.
func (a *Adapter) Enumerate(ctx context.Context) ([]Record, error) {
	return a.source.Connections(ctx)
}

// Key builds the identity of a socket.
func (a *Adapter) Key(rec *Record) Key {
	k := Key{
		Protocol: rec.Protocol,
		Local:    net.JoinHostPort(rec.LocalAddr, strconv.FormatUint(uint64(rec.LocalPort), 10)),
		PID:      rec.PID,
	}
	if rec.RemoteAddr != "" {
		k.Remote = net.JoinHostPort(rec.RemoteAddr, strconv.FormatUint(uint64(rec.RemotePort), 10))
	}
	return k
}

// Hash hashes a socket key.
func (a *Adapter) Hash(k Key) uint32 {
	h := hashtable.HashString(k.Protocol + "|" + k.Local + "|" + k.Remote)
	return h ^ hashtable.HashUint32(uint32(k.PID))
}

// SameEntity is always true: the key covers the whole identity.
func (a *Adapter) SameEntity(*Connection, *Record) bool {
	return true
}

// NewValue creates a connection from its first record.
func (a *Adapter) NewValue(_ Key, rec *Record, _ *provider.Cycle) Connection {
	c := Connection{
		Protocol:   rec.Protocol,
		LocalAddr:  rec.LocalAddr,
		LocalPort:  rec.LocalPort,
		RemoteAddr: rec.RemoteAddr,
		RemotePort: rec.RemotePort,
		Status:     rec.Status,
		PID:        rec.PID,
	}
	a.link(&c)
	return c
}

// Update refreshes the state of a connection and reports whether it changed.
func (a *Adapter) Update(c *Connection, rec *Record, _ *provider.Cycle) bool {
	changed := c.Status != rec.Status
	c.Status = rec.Status
	if a.link(c) {
		changed = true
	}
	return changed
}

// link copies the owning process's name, and its executable once the
// process's first enrichment stage has been merged.
func (a *Adapter) link(c *Connection) bool {
	if a.processes == nil || c.ProcessExe != "" || c.PID <= 0 {
		return false
	}

	ref, ok := a.processes.Lookup(c.PID)
	if !ok {
		return false
	}
	defer ref.Dereference()

	item := ref.Value()
	p := item.Load()
	changed := c.ProcessName != p.Name
	c.ProcessName = p.Name
	if item.Stage1().Test() && p.Exe != "" {
		c.ProcessExe = p.Exe
		changed = true
	}
	return changed
}

// Stages is the remote host lookup.
func (a *Adapter) Stages() int {
	return 1
}

// Enrich resolves the remote address.
func (a *Adapter) Enrich(ctx context.Context, req provider.EnrichRequest[Key, Connection]) (any, error) {
	if a.resolver == nil || req.Value.RemoteAddr == "" {
		return "", nil
	}
	host, err := a.resolver.Lookup(ctx, req.Value.RemoteAddr)
	if errors.Is(err, resolve.ErrNotResolvable) {
		return "", nil
	}
	return host, err
}

// Merge stores the resolved remote host.
func (a *Adapter) Merge(c *Connection, _ int, result any, err error) {
	if err != nil {
		c.ResolveError = err.Error()
		return
	}
	if host, ok := result.(string); ok {
		c.RemoteHost = host
	}
}
