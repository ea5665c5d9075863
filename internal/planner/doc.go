// Package planner turns filtered recordings into download plans: it derives
// sanitized filenames, orders downloads newest first, and optionally narrows
// the plan through an interactive Chooser.
package planner
