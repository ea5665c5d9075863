package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"lecturedl/internal/browser"
	"lecturedl/internal/lecture"
	"lecturedl/internal/services"
)

const sectionDataPath = "/ess/client/api/sections/%s/section-data.json?pageSize=100"

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	lecture.DateLayout,
	"January 2, 2006",
}

// SectionSource reads recordings from the section-data endpoint using the
// browser's authenticated session.
type SectionSource struct {
	driver browser.Driver
}

// NewSectionSource returns a source that navigates driver to the JSON endpoint.
func NewSectionSource(driver browser.Driver) *SectionSource {
	return &SectionSource{driver: driver}
}

// SectionDataURL builds the endpoint for a course's canonical identifier.
func SectionDataURL(courseURL, canonicalID string) (string, error) {
	if strings.TrimSpace(canonicalID) == "" {
		return "", services.Wrap(services.ErrValidation, "catalog", "section url", "canonical id unknown", nil)
	}
	parsed, err := url.Parse(courseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return "", services.Wrap(services.ErrValidation, "catalog", "section url", fmt.Sprintf("invalid course url %q", courseURL), err)
	}
	origin := parsed.Scheme + "://" + parsed.Host
	return origin + fmt.Sprintf(sectionDataPath, url.PathEscape(canonicalID)), nil
}

func (s *SectionSource) Recordings(ctx context.Context, course *lecture.Course) ([]lecture.Recording, error) {
	endpoint, err := SectionDataURL(course.URL, course.CanonicalID())
	if err != nil {
		return nil, err
	}
	if err := s.driver.Navigate(ctx, endpoint); err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "catalog", "fetch section data", endpoint, err)
	}
	body, err := s.driver.BodyText(ctx)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "catalog", "read section data", "", err)
	}
	return ParseSectionData([]byte(body))
}

type sectionData struct {
	Section *struct {
		Presentations presentationPage `json:"presentations"`
	} `json:"section"`
	Presentations *presentationPage `json:"presentations"`
}

type presentationPage struct {
	PageContents []presentation `json:"pageContents"`
}

type presentation struct {
	Title     string `json:"title"`
	StartTime string `json:"startTime"`
	RichMedia string `json:"richMedia"`
}

// ParseSectionData decodes a section-data document. Presentations may sit
// under "section" or at the top level depending on the platform version.
func ParseSectionData(data []byte) ([]lecture.Recording, error) {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return nil, services.Wrap(services.ErrNotFound, "catalog", "parse section data", "empty response", nil)
	}
	var doc sectionData
	if err := json.Unmarshal([]byte(trimmed), &doc); err != nil {
		return nil, services.Wrap(services.ErrValidation, "catalog", "parse section data", "", err)
	}

	var page *presentationPage
	switch {
	case doc.Section != nil:
		page = &doc.Section.Presentations
	case doc.Presentations != nil:
		page = doc.Presentations
	default:
		return nil, services.Wrap(services.ErrValidation, "catalog", "parse section data", "no presentations in response", nil)
	}

	recordings := make([]lecture.Recording, 0, len(page.PageContents))
	var errs []error
	for i, p := range page.PageContents {
		date, err := parseDate(p.StartTime)
		if err != nil {
			errs = append(errs, fmt.Errorf("presentation %d (%q): %w", i, p.Title, err))
			continue
		}
		recordings = append(recordings, lecture.Recording{
			Title: strings.TrimSpace(p.Title),
			Date:  date,
			URL:   strings.TrimSpace(p.RichMedia),
		})
	}
	if len(errs) > 0 {
		return nil, services.Wrap(services.ErrValidation, "catalog", "parse section data", "unreadable presentation dates", errors.Join(errs...))
	}
	return recordings, nil
}

func parseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", value)
}
