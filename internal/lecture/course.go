package lecture

import (
	"strings"
	"sync"
)

// Course identifies a lecture-capture course section.
type Course struct {
	ID   string
	Name string
	URL  string

	mu          sync.RWMutex
	canonicalID string
}

// NewCourse builds a course. The canonical identifier may be empty; the
// session layer fills it in from page content when the URL hides it.
func NewCourse(id, name, url, canonicalID string) *Course {
	return &Course{
		ID:          strings.TrimSpace(id),
		Name:        strings.TrimSpace(name),
		URL:         strings.TrimSpace(url),
		canonicalID: strings.TrimSpace(canonicalID),
	}
}

// CanonicalID returns the platform section identifier, or "" when unknown.
func (c *Course) CanonicalID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.canonicalID
}

// ResolveCanonicalID records the discovered identifier. Empty values are
// ignored so a failed discovery never clears a known identifier. Calling it
// repeatedly with the same value is a no-op. Reports whether the stored value
// changed.
func (c *Course) ResolveCanonicalID(id string) bool {
	id = strings.TrimSpace(id)
	if id == "" {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.canonicalID == id {
		return false
	}
	c.canonicalID = id
	return true
}

// Label renders "<id> - <name>", or just the id when the name is empty.
func (c *Course) Label() string {
	if c.Name == "" {
		return c.ID
	}
	return strings.TrimSpace(c.ID + " - " + c.Name)
}
