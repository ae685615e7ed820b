// Package scheduler runs the board's daily housekeeping: it removes the
// records of past service days and reminds the operators shortly before
// service so the board can be reset.
package scheduler
