// Package network mirrors the TCP and UDP sockets of the local machine.
//
// A connection is identified by protocol, local endpoint, remote endpoint and
// owning pid. Its single enrichment stage resolves the remote address through
// the shared resolve.Service, whose cache is shared by every connection to the
// same peer.
//
// Connections link to their owning process through the process provider: the
// process name is copied as soon as the process is known, and its executable
// path once the process's first enrichment stage has completed (tested via
// the item's stage-1 event, never waited on).
package network
