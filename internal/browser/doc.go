// Package browser wraps the automated Chrome session used to sign in to the
// lecture-capture platform and read course pages.
//
// Driver and Element are the narrow capabilities the session and catalog
// packages consume; Rod implements them on top of go-rod. Tests substitute
// scripted fakes.
package browser
