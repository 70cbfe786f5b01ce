// Package config defines the updater settings: which remote source to follow,
// how to match per-OS artifacts, and where the local installation lives.
//
// Settings are stored as YAML. Built-in presets reproduce the update setups
// of the HarbourMasters ports this tool was written for.
package config
