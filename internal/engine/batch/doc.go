// Package batch splits work into fixed-size batches and runs them
// sequentially or with bounded concurrency, reporting progress after each
// batch. The plan importer uses it to submit many production plans without
// flooding the backend.
package batch
