// Package scoring holds the pure calculation rules for task score
// distribution, review aggregation, monthly performance scoring, ranking and
// department rollups. Nothing in this package performs I/O; every value that
// is stored or combined passes through pkg/rounding first.
package scoring
