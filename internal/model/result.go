package model

import "slices"

// Outcome is the transient result of one probe. It is consumed by the
// scanner to build a Result and never stored on its own.
type Outcome struct {
	// Status is the classification of the probe.
	Status Status

	// Body is the response body. It is only populated for StatusFound.
	Body string

	// HTTPStatus is the status code received, zero on transport failure.
	HTTPStatus int

	// Digest is a hex SHA3-256 digest of Body, empty unless found.
	Digest string

	// ErrorDetail describes the transport failure for StatusError.
	ErrorDetail string
}

// Contacts holds contact identifiers found on a profile page.
type Contacts struct {
	Emails []string `json:"emails"`
	Phones []string `json:"phones"`
}

// IsEmpty returns true if no email or phone was found.
func (c Contacts) IsEmpty() bool {
	return len(c.Emails) == 0 && len(c.Phones) == 0
}

// Signals is the public information extracted from a profile page.
// Links, Emails and Phones are sets stored as sorted, de-duplicated slices.
type Signals struct {
	// Bio is the profile description. Empty means absent.
	Bio string `json:"bio,omitempty"`

	// Links are the external http(s) links found on the page.
	Links []string `json:"links"`

	// Contacts are the emails and phone numbers found on the page.
	Contacts Contacts `json:"contacts"`
}

// HasBio returns true if a bio was extracted.
func (s Signals) HasBio() bool {
	return s.Bio != ""
}

// HasContacts returns true if at least one email or phone was extracted.
func (s Signals) HasContacts() bool {
	return !s.Contacts.IsEmpty()
}

// IsEmpty returns true if nothing was extracted.
func (s Signals) IsEmpty() bool {
	return !s.HasBio() && len(s.Links) == 0 && !s.HasContacts()
}

// EmptySignals returns Signals with non-nil empty sets, so that JSON output
// renders [] rather than null.
func EmptySignals() Signals {
	return Signals{
		Links:    []string{},
		Contacts: Contacts{Emails: []string{}, Phones: []string{}},
	}
}

// Result is the record produced for one target during one scan.
// Status is the discriminant: Signals is only non-empty for StatusFound and
// ErrorDetail is only set for StatusError.
type Result struct {
	// Platform is the target name.
	Platform string `json:"platform"`

	// URL is the fully resolved profile URL.
	URL string `json:"url"`

	// Status is the probe classification.
	Status Status `json:"status"`

	// Confidence is an additive heuristic score in [0,100], not a probability.
	Confidence int `json:"confidence"`

	// Signals holds the extracted public information.
	Signals Signals `json:"signals"`

	// ErrorDetail describes the transport failure for StatusError.
	ErrorDetail string `json:"error,omitempty"`

	// HTTPStatus is the status code the platform answered with.
	HTTPStatus int `json:"http_status,omitempty"`

	// Digest fingerprints the profile page body of a found result.
	Digest string `json:"digest,omitempty"`
}

// IsFound returns true if the profile exists.
func (r Result) IsFound() bool {
	return r.Status == StatusFound
}

// SortedSet returns values de-duplicated and sorted. A nil or empty input
// yields an empty, non-nil slice.
func SortedSet(values []string) []string {
	out := make([]string, 0, len(values))
	out = append(out, values...)
	slices.Sort(out)
	return slices.Compact(out)
}
