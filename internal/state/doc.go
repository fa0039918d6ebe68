// Package state keeps the history of generator runs and the last fingerprint
// written for each target page in a SQLite database.
package state
