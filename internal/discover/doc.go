// Package discover locates trajectory folders beneath the manual download
// directory and partitions them into train and validation splits.
//
// Trajectory folders sit at a fixed depth below the root. The locator
// expands one wildcard per intermediate level, then matches immediate
// children whose names carry the trajectory prefix. Directories without any
// matching children are logged and skipped; an empty overall result is not
// an error.
package discover
