// Package lecture defines the course and recording types shared by the
// session, catalog, planner, and download packages.
//
// Course carries the platform's canonical section identifier once the session
// layer discovers it. Recording values are immutable facts returned by the
// catalog; IndexedRecording pins each one to its position in the full
// chronological list so lecture numbers survive filtering and selection.
package lecture
