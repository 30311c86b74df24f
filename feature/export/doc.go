// Package export uploads periodic JSON snapshots of the mirrored state to an
// S3-compatible object store.
//
// An Exporter is notified of every finished cycle and exports every
// storage.Config.EveryCycles cycles. Uploads run on the exporter's own
// goroutine so a slow store never delays an update cycle. After each upload
// the oldest snapshots beyond storage.Config.Retain are removed.
//
// Objects are named <prefix><name>/<UTC timestamp>-<cycle>.json.
package export
