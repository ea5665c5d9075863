// Package browsertest provides a scripted browser.Driver for tests.
package browsertest

import (
	"context"
	"errors"
	"strings"
	"sync"

	"lecturedl/internal/browser"
)

// Page is one scripted document.
type Page struct {
	URL  string
	HTML string
	Body string
	// IDs lists the element ids present on the page.
	IDs []string
}

// SubmitFunc decides the page shown after a form submission given what was
// typed into each field, keyed by element id.
type SubmitFunc func(fields map[string]string) Page

// Fake serves pages keyed by URL and records interactions.
type Fake struct {
	mu sync.Mutex

	Pages       map[string]Page
	OnSubmit    SubmitFunc
	NavigateErr error
	// SourceErr, when set, is returned by PageSource.
	SourceErr error

	current   Page
	fields    map[string]string
	Navigated []string
	Submits   []string
	Closed    bool
}

// New returns a fake serving pages.
func New(pages ...Page) *Fake {
	f := &Fake{Pages: make(map[string]Page, len(pages)), fields: make(map[string]string)}
	for _, p := range pages {
		f.Pages[p.URL] = p
	}
	return f
}

// Field returns what was typed into the element with the given id.
func (f *Fake) Field(id string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fields[id]
}

func (f *Fake) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Closed {
		return browser.ErrClosed
	}
	f.Navigated = append(f.Navigated, url)
	if f.NavigateErr != nil {
		return f.NavigateErr
	}
	page, ok := f.Pages[url]
	if !ok {
		page = Page{URL: url, HTML: "<html><head></head><body></body></html>"}
	}
	if page.URL == "" {
		page.URL = url
	}
	f.current = page
	return nil
}

func (f *Fake) FindByPartialID(_ context.Context, substr string) (browser.Element, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range f.current.IDs {
		if strings.Contains(id, substr) {
			return &element{fake: f, id: id}, true, nil
		}
	}
	return nil, false, nil
}

func (f *Fake) FindByID(_ context.Context, id string) (browser.Element, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, candidate := range f.current.IDs {
		if candidate == id {
			return &element{fake: f, id: id}, true, nil
		}
	}
	return nil, false, nil
}

func (f *Fake) PageSource(context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.SourceErr != nil {
		return "", f.SourceErr
	}
	return f.current.HTML, nil
}

func (f *Fake) BodyText(context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.current.Body, nil
}

func (f *Fake) CurrentURL(context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.current.URL, nil
}

func (f *Fake) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Closed = true
	return nil
}

func (f *Fake) submit(via string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Submits = append(f.Submits, via)
	if f.OnSubmit == nil {
		return errors.New("browsertest: no submit handler")
	}
	fields := make(map[string]string, len(f.fields))
	for k, v := range f.fields {
		fields[k] = v
	}
	f.current = f.OnSubmit(fields)
	return nil
}

type element struct {
	fake *Fake
	id   string
}

func (e *element) Clear(context.Context) error {
	e.fake.mu.Lock()
	defer e.fake.mu.Unlock()
	e.fake.fields[e.id] = ""
	return nil
}

func (e *element) SendKeys(_ context.Context, text string) error {
	e.fake.mu.Lock()
	defer e.fake.mu.Unlock()
	e.fake.fields[e.id] += text
	return nil
}

func (e *element) Submit(context.Context) error {
	return e.fake.submit("click:" + e.id)
}

func (e *element) PressEnter(context.Context) error {
	return e.fake.submit("enter:" + e.id)
}
