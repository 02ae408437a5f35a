// Package platform provides cross-platform filesystem operations for files
// that hold credentials. On Unix systems permission bits are applied with
// chmod directly; on Windows they are skipped because the OS does not
// support Unix-style permission bits.
package platform
