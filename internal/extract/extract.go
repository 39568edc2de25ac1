// Package extract pulls public signals out of profile page bodies.
//
// Extraction is pure: no I/O, no shared state, and no failure mode. A body
// that matches nothing yields an absent bio and empty sets. The scanner
// depends only on the Extractor interface, so implementations can be
// swapped without touching the probing code.
package extract

import (
	"errors"
	"fmt"

	"github.com/nao1215/handlescan/internal/model"
)

// Extractor kinds accepted by New.
const (
	// KindRegex selects RegexExtractor.
	KindRegex = "regex"
	// KindHTML selects HTMLExtractor.
	KindHTML = "html"
)

// ErrUnknownKind is returned by New for an unsupported extractor kind.
var ErrUnknownKind = errors.New("unknown extractor kind")

// Extractor extracts signals from a raw response body.
type Extractor interface {
	// Bio returns the profile description and whether one was found.
	Bio(body string) (string, bool)

	// Links returns the external http(s) links, de-duplicated and sorted.
	Links(body string) []string

	// Contacts returns the emails and phone numbers found in body.
	Contacts(body string) model.Contacts
}

// New returns the extractor for kind. An empty kind selects KindRegex.
func New(kind string) (Extractor, error) {
	switch kind {
	case "", KindRegex:
		return NewRegexExtractor(), nil
	case KindHTML:
		return NewHTMLExtractor(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}

// wholePage is implemented by extractors that can produce every signal
// from a single pass over the body.
type wholePage interface {
	Extract(body string) model.Signals
}

// Signals runs every extraction of e against body.
func Signals(e Extractor, body string) model.Signals {
	if w, ok := e.(wholePage); ok {
		return w.Extract(body)
	}
	signals := model.EmptySignals()
	if bio, ok := e.Bio(body); ok {
		signals.Bio = bio
	}
	signals.Links = e.Links(body)
	signals.Contacts = e.Contacts(body)
	return signals
}
