// Package render writes command results for people (text) or for other
// programs (json, yaml). Text layout is stable because agents read stdout.
package render
