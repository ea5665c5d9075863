package session

import (
	"context"
	"fmt"
	"log/slog"

	"lecturedl/internal/browser"
	"lecturedl/internal/credentials"
	"lecturedl/internal/lecture"
	"lecturedl/internal/logging"
	"lecturedl/internal/services"
)

const (
	usernameFieldHint = "username"
	passwordFieldHint = "password"
	submitControlID   = "login-btn"
	snapshotLogLimit  = 2048
)

// Manager drives the browser through the platform's login flow.
type Manager struct {
	driver browser.Driver
	creds  credentials.Provider
	logger *slog.Logger
}

// New constructs a session manager. creds may be nil when the deployment
// never asks for a login.
func New(driver browser.Driver, creds credentials.Provider, logger *slog.Logger) *Manager {
	return &Manager{
		driver: driver,
		creds:  creds,
		logger: logging.NewComponentLogger(logger, "session"),
	}
}

// Establish opens course.URL, signs in when required, and records the
// canonical identifier found on the resulting page. Authentication failures
// are returned as *AuthError.
func (m *Manager) Establish(ctx context.Context, course *lecture.Course) (Outcome, error) {
	if course == nil || course.URL == "" {
		return OutcomeUnknown, services.Wrap(services.ErrValidation, "session", "establish", "course url required", nil)
	}
	ctx = services.WithStage(ctx, "session")
	logger := logging.WithContext(ctx, m.logger)

	logger.Info("opening course page", logging.String("url", course.URL))
	if err := m.driver.Navigate(ctx, course.URL); err != nil {
		if ctx.Err() != nil {
			return OutcomeUnknown, ctx.Err()
		}
		return OutcomeUnknown, &AuthError{Kind: KindNetworkUnavailable, URL: course.URL, Err: err}
	}

	_, loginRequired, err := m.driver.FindByPartialID(ctx, usernameFieldHint)
	if err != nil {
		return OutcomeUnknown, services.Wrap(services.ErrExternalTool, "session", "probe login form", "", err)
	}

	outcome := LoginNotRequired
	if loginRequired {
		logger.Info("login form detected")
		if err := m.login(ctx, logger); err != nil {
			return OutcomeUnknown, err
		}
		outcome = LoggedIn
	} else {
		source, err := m.driver.PageSource(ctx)
		if err != nil {
			return OutcomeUnknown, services.Wrap(services.ErrExternalTool, "session", "read page", "", err)
		}
		if kind := classifyLanding(source); kind != 0 {
			return OutcomeUnknown, m.fail(ctx, logger, kind, source)
		}
	}

	m.recoverCanonicalID(ctx, logger, course)
	logger.Info("session established", logging.String("outcome", outcome.String()))
	return outcome, nil
}

func (m *Manager) login(ctx context.Context, logger *slog.Logger) error {
	creds, err := credentials.Resolve(ctx, m.creds)
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "session", "credentials", "no credentials available", err)
	}

	userField, ok, err := m.driver.FindByPartialID(ctx, usernameFieldHint)
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "session", "locate username field", "", err)
	}
	if !ok {
		return services.Wrap(services.ErrNotFound, "session", "locate username field", "login form disappeared", nil)
	}
	passField, ok, err := m.driver.FindByPartialID(ctx, passwordFieldHint)
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "session", "locate password field", "", err)
	}
	if !ok {
		return services.Wrap(services.ErrNotFound, "session", "locate password field", "login form has no password field", nil)
	}

	if err := fill(ctx, userField, creds.Username); err != nil {
		return services.Wrap(services.ErrExternalTool, "session", "fill username", "", err)
	}
	if err := fill(ctx, passField, creds.Password); err != nil {
		return services.Wrap(services.ErrExternalTool, "session", "fill password", "", err)
	}

	submit, ok, err := m.driver.FindByID(ctx, submitControlID)
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "session", "locate submit control", "", err)
	}
	if ok {
		err = submit.Submit(ctx)
	} else {
		logger.Debug("submit control missing; pressing enter")
		err = passField.PressEnter(ctx)
	}
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "session", "submit login", "", err)
	}

	_, stillOnLogin, err := m.driver.FindByPartialID(ctx, usernameFieldHint)
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "session", "verify login", "", err)
	}
	if stillOnLogin {
		source, srcErr := m.driver.PageSource(ctx)
		if srcErr != nil {
			logger.Debug("login page snapshot unavailable", logging.Error(srcErr))
		}
		return m.fail(ctx, logger, KindInvalidCredentials, source)
	}
	logger.Info("login accepted", logging.String("username", creds.Username))
	return nil
}

func fill(ctx context.Context, el browser.Element, value string) error {
	if err := el.Clear(ctx); err != nil {
		return err
	}
	return el.SendKeys(ctx, value)
}

func (m *Manager) fail(ctx context.Context, logger *slog.Logger, kind Kind, source string) error {
	url, _ := m.driver.CurrentURL(ctx)
	authErr := &AuthError{Kind: kind, URL: url, Snapshot: source}
	logging.ErrorWithContext(logger, "session failed", "session_"+kind.String(),
		logging.String("url", url),
		logging.String(logging.FieldErrorHint, authErr.Hint()),
	)
	logger.Debug("failure snapshot", logging.String("html", truncate(source, snapshotLogLimit)))
	return authErr
}

// recoverCanonicalID is best effort: a page without the identifier leaves the
// course untouched.
func (m *Manager) recoverCanonicalID(ctx context.Context, logger *slog.Logger, course *lecture.Course) {
	source, err := m.driver.PageSource(ctx)
	if err != nil {
		logger.Warn("canonical id recovery skipped",
			logging.Error(err),
			logging.String(logging.FieldEventType, "canonical_id_unreadable"),
			logging.String(logging.FieldErrorHint, "the page could not be read"),
			logging.String(logging.FieldImpact, "the course identifier from configuration is used"),
		)
		return
	}
	id, ok := ExtractCanonicalID(source)
	if !ok {
		if current, urlErr := m.driver.CurrentURL(ctx); urlErr == nil {
			id, ok = SectionIDFromURL(current)
		}
	}
	if !ok && course.CanonicalID() == "" {
		id, ok = SectionIDFromURL(course.URL)
	}
	if !ok {
		logger.Debug("canonical id not present on page", logging.String("current", course.CanonicalID()))
		return
	}
	if course.ResolveCanonicalID(id) {
		logger.Info("canonical id recovered", logging.String("canonical_id", id))
	}
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return fmt.Sprintf("%s... (%d bytes)", s[:limit], len(s))
}
