// Package updater sequences one update cycle: load the installed-version
// record, query the configured remote source, compare identifiers, and when
// they differ download the per-OS asset into the staging area, extract it
// over the installation root, and persist the new record. The staging area
// is cleared on every exit path.
//
// The record is only advanced after extraction succeeds, so a failed run
// leaves the local state exactly as it was and the next run starts clean.
//
// Known limitation: concurrent invocations against the same installation
// root are unsafe. There is no locking; the last writer wins and extractions
// can interleave.
package updater
