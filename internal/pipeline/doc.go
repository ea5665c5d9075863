// Package pipeline runs one course download end to end: establish the
// browser session, list and filter recordings, plan filenames, let the user
// narrow the selection, and hand the plan to the download orchestrator.
//
// The stages run strictly in sequence and share one browser, which the
// pipeline closes when the run ends. Each run gets a uuid that flows through
// the context into every log line and into the history ledger.
package pipeline
