// Package download runs the external stream downloader once per planned
// recording and reports the outcome of every task.
//
// Orchestrator spawns tasks newest first, bounded by an optional concurrency
// cap, and collects results in the order they finish. Exit codes are
// inspected; a failing task never aborts its siblings unless fail-fast is
// enabled. Cancelling the context kills running downloads (the whole process
// group on unix) and marks unstarted ones as canceled.
package download
