package journal

import (
	"strconv"

	"system-mirror/feature/network"
	"system-mirror/feature/process"
)

// DescribeProcess records the pid, name and executable of a process.
func DescribeProcess(pid int32, p *process.Process) (string, string, string) {
	return strconv.Itoa(int(pid)), p.Name, p.Exe
}

// DescribeConnection records the socket endpoints and its owner.
func DescribeConnection(k network.Key, c *network.Connection) (string, string, string) {
	key := k.Protocol + " " + k.Local
	if k.Remote != "" {
		key += " -> " + k.Remote
	}
	detail := c.RemoteHost
	if detail == "" {
		detail = c.Status
	}
	return key, c.ProcessName, detail
}
