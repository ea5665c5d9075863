// Package services defines shared utilities consumed by the pipeline stages
// and the external integrations they drive.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, course IDs, and stage names for
//     logging and tracing.
//   - Structured error markers plus the Wrap helper so failures read the same
//     way regardless of which stage produced them.
//
// Use these helpers when wiring new stage logic so operational behaviour
// (error handling, observability) stays uniform across the pipeline.
package services
