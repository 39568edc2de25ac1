package extract

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/nao1215/handlescan/internal/model"
)

// bioPatterns are tried in order; the first one that matches wins.
var bioPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?is)<meta name="description" content="(.*?)"`),
	regexp.MustCompile(`(?is)<meta property="og:description" content="(.*?)"`),
}

var linkRegex = regexp.MustCompile(`href="(https?://[^"]+)"`)

// emailRegex and phoneRegex are permissive on purpose. Matches are
// heuristic and never validated further.
var (
	emailRegex = regexp.MustCompile(`[a-zA-Z0-9_.+\-]+@[a-zA-Z0-9\-]+\.[a-zA-Z0-9\-.]+`)
	phoneRegex = regexp.MustCompile(`\+?\d[\d\s\-()]{6,}\d`)
)

// minPhoneDigits is the number of digits a phone-like token must contain.
// phoneRegex matches at least this many characters.
const minPhoneDigits = 8

// RegexExtractor extracts signals with regular expressions over the raw
// body text. It is the default extractor.
type RegexExtractor struct{}

// NewRegexExtractor creates a RegexExtractor.
func NewRegexExtractor() *RegexExtractor {
	return &RegexExtractor{}
}

// Bio returns the trimmed content of the meta description, falling back to
// the Open Graph description. The first matching pattern decides: an empty
// meta description is reported as absent.
func (RegexExtractor) Bio(body string) (string, bool) {
	for _, re := range bioPatterns {
		m := re.FindStringSubmatch(body)
		if m == nil {
			continue
		}
		bio := strings.TrimSpace(m[1])
		return bio, bio != ""
	}
	return "", false
}

// Links returns every double-quoted href that starts with http:// or https://.
func (RegexExtractor) Links(body string) []string {
	matches := linkRegex.FindAllStringSubmatch(body, -1)
	links := make([]string, 0, len(matches))
	for _, m := range matches {
		links = append(links, m[1])
	}
	return model.SortedSet(links)
}

// Contacts returns the email-like and phone-like tokens in body.
func (RegexExtractor) Contacts(body string) model.Contacts {
	return contactsFromText(body)
}

func contactsFromText(text string) model.Contacts {
	return model.Contacts{
		Emails: model.SortedSet(emailRegex.FindAllString(text, -1)),
		Phones: findPhones(text),
	}
}

func findPhones(text string) []string {
	var phones []string
	for _, candidate := range phoneRegex.FindAllString(text, -1) {
		if countDigits(candidate) >= minPhoneDigits {
			phones = append(phones, candidate)
		}
	}
	return model.SortedSet(phones)
}

func countDigits(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsDigit(r) {
			n++
		}
	}
	return n
}
