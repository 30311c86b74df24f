// Package journal persists the lifecycle of mirrored items.
//
// Every added and removed item of a followed provider becomes a Record in the
// journal_records table, stamped with the session id of the running monitor
// (a UUID) and the cycle that produced it. Records are collected from the
// provider's change stream and written once per cycle, off the update
// goroutine.
//
// The table is migrated on start-up and its columns verified with
// database.MissingColumns, so both sqlite and MySQL deployments fail fast on
// a stale schema.
//
// # Usage
//
//	j, err := journal.New(db, logger)
//	if err != nil {
//	    return err
//	}
//	go journal.Follow(ctx, j, "process", procs.Provider().Changes(ctx), journal.DescribeProcess)
//
//	records, err := j.History(ctx, journal.Query{Provider: "process", Key: "4242"})
package journal
