// Package catalog lists a course's recordings in chronological order and
// filters them by date.
//
// Catalog delegates the fetch to a Source. SectionSource reads the platform's
// section JSON through the authenticated browser session so cookies from the
// login carry over without a separate HTTP client.
package catalog
