// Package updater tells the user whether a newer amtp release exists. It
// asks the GitHub Releases API at most once a day and remembers the answer
// in ~/.amtp/version-check.json. It never downloads or replaces binaries.
package updater
