// Package release contains core domain types for the update flow.
//
// It defines Asset and Release (what a remote source offers right now) and
// Installed (the persisted record of what was last put on disk).
package release
