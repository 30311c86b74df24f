// Package thread mirrors the threads of individual processes.
//
// Thread providers are created on demand by the Manager, one per process, the
// first time a consumer asks for a pid. While in use they are updated on the
// provider interval; once unused for DefaultIdleTimeout, or once the process
// has exited, they are terminated.
//
// A thread's single enrichment stage reads its name and wait channel from
// /proc/<pid>/task/<tid>. The owning process name is resolved through Names
// at query time rather than stored, so a thread never keeps its process alive.
package thread
