// Package platform resolves the running operating system to one of the fixed
// keys used by artifact tables (windows, linux, mac).
package platform
