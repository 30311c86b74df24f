// Package resolve performs cached reverse-DNS lookups for connection
// endpoints.
//
// Lookups go through core/cache, so an address seen on many connections is
// resolved once per TTL, and concurrent resolutions of the same address
// share a single query. Loopback, unspecified and unparsable addresses are
// never sent to the resolver.
package resolve
