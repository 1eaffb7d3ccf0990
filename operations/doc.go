// Package operations glues the remote client, the pruning engine and the
// output files together. Commands in cmd call these and only format results.
package operations
