package browser

import (
	"context"
	"errors"
)

// ErrClosed is returned when a driver is used after Close.
var ErrClosed = errors.New("browser closed")

// Driver is the browser capability used by the session and catalog stages.
type Driver interface {
	Navigate(ctx context.Context, url string) error
	// FindByPartialID returns the first element whose id attribute contains substr.
	FindByPartialID(ctx context.Context, substr string) (Element, bool, error)
	// FindByID returns the element whose id attribute equals id.
	FindByID(ctx context.Context, id string) (Element, bool, error)
	PageSource(ctx context.Context) (string, error)
	// BodyText returns the rendered text of the current document body.
	BodyText(ctx context.Context) (string, error)
	CurrentURL(ctx context.Context) (string, error)
	Close() error
}

// Element is a handle to a form control on the current page.
type Element interface {
	Clear(ctx context.Context) error
	SendKeys(ctx context.Context, text string) error
	Submit(ctx context.Context) error
	PressEnter(ctx context.Context) error
}
