package model

import "strings"

const (
	// HandlePlaceholder is the token replaced by the handle in a URL template.
	HandlePlaceholder = "{handle}"

	// LegacyHandlePlaceholder is accepted as an alias of HandlePlaceholder.
	// Older catalogs were written with it.
	LegacyHandlePlaceholder = "{username}"

	// DefaultExistsStatus is the HTTP status treated as "profile exists"
	// when a target does not specify one.
	DefaultExistsStatus = 200
)

// Target is one platform definition from the catalog.
// Targets are immutable once the catalog has been loaded.
type Target struct {
	// Name is the platform name. It is unique within a catalog.
	Name string `json:"name" yaml:"name" toml:"name"`

	// URLTemplate is the profile URL with exactly one handle placeholder.
	URLTemplate string `json:"url" yaml:"url" toml:"url"`

	// ExistsStatus is the HTTP status code that indicates the profile exists.
	// Zero means DefaultExistsStatus.
	ExistsStatus int `json:"exists_status,omitempty" yaml:"exists_status,omitempty" toml:"exists_status,omitempty"`

	// ConfidenceWeight is the base reliability of the platform in [0,1].
	ConfidenceWeight float64 `json:"confidence_weight" yaml:"confidence_weight" toml:"confidence_weight"`
}

// ExpectedStatus returns the status code that classifies a probe as Found.
func (t Target) ExpectedStatus() int {
	if t.ExistsStatus == 0 {
		return DefaultExistsStatus
	}
	return t.ExistsStatus
}

// ResolveURL substitutes handle into the URL template.
// The handle is inserted verbatim, without percent-encoding.
func (t Target) ResolveURL(handle string) string {
	if strings.Contains(t.URLTemplate, HandlePlaceholder) {
		return strings.Replace(t.URLTemplate, HandlePlaceholder, handle, 1)
	}
	return strings.Replace(t.URLTemplate, LegacyHandlePlaceholder, handle, 1)
}

// PlaceholderCount returns how many handle placeholders the template holds,
// counting both spellings.
func (t Target) PlaceholderCount() int {
	return strings.Count(t.URLTemplate, HandlePlaceholder) +
		strings.Count(t.URLTemplate, LegacyHandlePlaceholder)
}
