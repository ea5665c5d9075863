package browser

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"lecturedl/internal/logging"
)

const navigationWait = 10 * time.Second

// Options configures the Chrome instance launched by NewRod.
type Options struct {
	Headless  bool
	Binary    string
	UserAgent string
	Timeout   time.Duration
	Logger    *slog.Logger
}

// Rod drives a single Chrome tab through go-rod.
type Rod struct {
	mu       sync.Mutex
	launcher *launcher.Launcher
	browser  *rod.Browser
	page     *rod.Page
	timeout  time.Duration
	logger   *slog.Logger
	closed   bool
}

// NewRod launches Chrome and opens the tab all later calls operate on.
func NewRod(ctx context.Context, opts Options) (*Rod, error) {
	logger := logging.NewComponentLogger(opts.Logger, "browser")

	l := launcher.New().
		Context(ctx).
		Headless(opts.Headless).
		Set("disable-blink-features", "AutomationControlled").
		Set("lang", "en-US")
	if bin := strings.TrimSpace(opts.Binary); bin != "" {
		l = l.Bin(bin)
	} else if path, ok := launcher.LookPath(); ok {
		l = l.Bin(path)
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	b := rod.New().ControlURL(controlURL)
	if err := b.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("connect browser: %w", err)
	}

	page, err := b.Page(proto.TargetCreateTarget{})
	if err != nil {
		_ = b.Close()
		l.Kill()
		return nil, fmt.Errorf("open page: %w", err)
	}
	if ua := strings.TrimSpace(opts.UserAgent); ua != "" {
		if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: ua}); err != nil {
			_ = b.Close()
			l.Kill()
			return nil, fmt.Errorf("set user agent: %w", err)
		}
	}

	logger.Debug("browser launched",
		logging.Bool("headless", opts.Headless),
		logging.String("control_url", controlURL),
	)

	return &Rod{
		launcher: l,
		browser:  b,
		page:     page,
		timeout:  opts.Timeout,
		logger:   logger,
	}, nil
}

func (r *Rod) scoped(ctx context.Context) (*rod.Page, context.CancelFunc, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, func() {}, ErrClosed
	}
	if r.timeout > 0 {
		ctx, cancel := context.WithTimeout(ctx, r.timeout)
		return r.page.Context(ctx), cancel, nil
	}
	return r.page.Context(ctx), func() {}, nil
}

// Navigate loads url and waits for the load event.
func (r *Rod) Navigate(ctx context.Context, url string) error {
	page, cancel, err := r.scoped(ctx)
	defer cancel()
	if err != nil {
		return err
	}
	if err := page.Navigate(url); err != nil {
		return fmt.Errorf("navigate %s: %w", url, err)
	}
	if err := page.WaitLoad(); err != nil {
		return fmt.Errorf("wait for %s: %w", url, err)
	}
	r.logger.Debug("page loaded", logging.String("url", url))
	return nil
}

// FindByPartialID probes without waiting, so absence is reported immediately.
func (r *Rod) FindByPartialID(ctx context.Context, substr string) (Element, bool, error) {
	return r.findX(ctx, partialIDXPath(substr))
}

// FindByID probes for an exact id match without waiting.
func (r *Rod) FindByID(ctx context.Context, id string) (Element, bool, error) {
	return r.findX(ctx, exactIDXPath(id))
}

func (r *Rod) findX(ctx context.Context, xpath string) (Element, bool, error) {
	page, cancel, err := r.scoped(ctx)
	defer cancel()
	if err != nil {
		return nil, false, err
	}
	has, el, err := page.HasX(xpath)
	if err != nil {
		return nil, false, fmt.Errorf("query %s: %w", xpath, err)
	}
	if !has {
		return nil, false, nil
	}
	return &rodElement{el: el, timeout: r.timeout}, true, nil
}

// PageSource returns the serialized DOM of the current page.
func (r *Rod) PageSource(ctx context.Context) (string, error) {
	page, cancel, err := r.scoped(ctx)
	defer cancel()
	if err != nil {
		return "", err
	}
	html, err := page.HTML()
	if err != nil {
		return "", fmt.Errorf("read page source: %w", err)
	}
	return html, nil
}

// BodyText returns the text content of <body>, or "" when the page has none.
func (r *Rod) BodyText(ctx context.Context) (string, error) {
	page, cancel, err := r.scoped(ctx)
	defer cancel()
	if err != nil {
		return "", err
	}
	has, body, err := page.Has("body")
	if err != nil {
		return "", fmt.Errorf("query body: %w", err)
	}
	if !has {
		return "", nil
	}
	text, err := body.Text()
	if err != nil {
		return "", fmt.Errorf("read body text: %w", err)
	}
	return text, nil
}

// CurrentURL reports the URL of the loaded document after redirects.
func (r *Rod) CurrentURL(ctx context.Context) (string, error) {
	page, cancel, err := r.scoped(ctx)
	defer cancel()
	if err != nil {
		return "", err
	}
	info, err := page.Info()
	if err != nil {
		return "", fmt.Errorf("page info: %w", err)
	}
	return info.URL, nil
}

// Close shuts the browser down and removes the launcher's temp profile.
func (r *Rod) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true
	err := r.browser.Close()
	r.launcher.Kill()
	r.launcher.Cleanup()
	if err != nil {
		return fmt.Errorf("close browser: %w", err)
	}
	return nil
}

type rodElement struct {
	el      *rod.Element
	timeout time.Duration
}

func (e *rodElement) scoped(ctx context.Context) (*rod.Element, context.CancelFunc) {
	if e.timeout > 0 {
		ctx, cancel := context.WithTimeout(ctx, e.timeout)
		return e.el.Context(ctx), cancel
	}
	return e.el.Context(ctx), func() {}
}

func (e *rodElement) Clear(ctx context.Context) error {
	el, cancel := e.scoped(ctx)
	defer cancel()
	if err := el.SelectAllText(); err != nil {
		return fmt.Errorf("select field text: %w", err)
	}
	if err := el.Input(""); err != nil {
		return fmt.Errorf("clear field: %w", err)
	}
	return nil
}

func (e *rodElement) SendKeys(ctx context.Context, text string) error {
	el, cancel := e.scoped(ctx)
	defer cancel()
	if err := el.Input(text); err != nil {
		return fmt.Errorf("type into field: %w", err)
	}
	return nil
}

func (e *rodElement) Submit(ctx context.Context) error {
	el, cancel := e.scoped(ctx)
	defer cancel()
	return e.awaitNavigation(ctx, func() error {
		if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
			return fmt.Errorf("click submit: %w", err)
		}
		return nil
	})
}

func (e *rodElement) PressEnter(ctx context.Context) error {
	el, cancel := e.scoped(ctx)
	defer cancel()
	return e.awaitNavigation(ctx, func() error {
		if err := el.Type(input.Enter); err != nil {
			return fmt.Errorf("press enter: %w", err)
		}
		return nil
	})
}

// awaitNavigation runs action and waits for the resulting page load. Forms
// that reject credentials in place never navigate, so the wait is bounded.
func (e *rodElement) awaitNavigation(ctx context.Context, action func() error) error {
	wait := navigationWait
	if e.timeout > 0 && e.timeout < wait {
		wait = e.timeout
	}
	waitCtx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()
	done := e.el.Page().Context(waitCtx).WaitNavigation(proto.PageLifecycleEventNameLoad)
	if err := action(); err != nil {
		return err
	}
	done()
	return ctx.Err()
}

func partialIDXPath(substr string) string {
	return fmt.Sprintf("//*[contains(@id,%s)]", xpathLiteral(substr))
}

func exactIDXPath(id string) string {
	return fmt.Sprintf("//*[@id=%s]", xpathLiteral(id))
}

// xpathLiteral quotes s for XPath 1.0, which has no escape sequences.
func xpathLiteral(s string) string {
	if !strings.Contains(s, "'") {
		return "'" + s + "'"
	}
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	parts := strings.Split(s, "'")
	quoted := make([]string, 0, len(parts)*2)
	for i, part := range parts {
		if i > 0 {
			quoted = append(quoted, `"'"`)
		}
		quoted = append(quoted, "'"+part+"'")
	}
	return "concat(" + strings.Join(quoted, ",") + ")"
}
