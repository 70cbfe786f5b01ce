// Package state implements persistence for the installed-version record.
//
// The FileRepository stores and loads the record as JSON on disk and exposes a
// Repository interface the updater service depends on. The record is only
// advanced after an extraction has fully succeeded, so a failed run leaves it
// untouched and the next run retries from scratch.
package state
