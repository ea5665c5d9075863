// Package session establishes an authenticated browser session for a course.
//
// Manager.Establish navigates to the course URL, decides whether the platform
// is asking for a login, submits credentials when it is, classifies failures
// into AuthError kinds, and recovers the course's canonical section
// identifier from the landing page. Failures are terminal; retry policy
// belongs to the caller.
package session
