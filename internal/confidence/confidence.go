// Package confidence scores how reliable a probe classification is.
//
// The score is an additive heuristic, not a probability: the platform's
// base weight plus a fixed bonus per kind of corroborating signal, capped
// at MaxScore. Scores are never normalized across platforms.
package confidence

import (
	"math"

	"github.com/nao1215/handlescan/internal/model"
)

const (
	// MaxScore is the upper bound of every score.
	MaxScore = 100

	// BioBonus is added when a bio was extracted.
	BioBonus = 5

	// ContactsBonus is added when at least one contact was extracted.
	ContactsBonus = 5

	// HighReliability is the score from which a result is explained as
	// coming from a high reliability platform.
	HighReliability = 90
)

// Explanation reasons.
const (
	ReasonProfileExists   = "Profile page exists"
	ReasonBio             = "Public bio detected"
	ReasonLinks           = "External links found"
	ReasonContacts        = "Contact information found"
	ReasonHighReliability = "High reliability platform"
)

// Score returns min(round(weight*100) + bio bonus + contacts bonus, 100).
// Weights are validated to [0,1] when the catalog is loaded; out of range
// values are clamped so the result always stays in [0,100].
func Score(weight float64, hasBio, hasContacts bool) int {
	raw := int(math.Round(weight * 100))
	if hasBio {
		raw += BioBonus
	}
	if hasContacts {
		raw += ContactsBonus
	}
	return min(max(raw, 0), MaxScore)
}

// ScoreResult scores r against target weight. Error results score 0;
// everything else is scored from its signals, which are empty unless found.
func ScoreResult(weight float64, r model.Result) int {
	if r.Status == model.StatusError {
		return 0
	}
	return Score(weight, r.Signals.HasBio(), r.Signals.HasContacts())
}

// Explain lists the reasons behind a result's confidence, most basic first.
// Only found results have reasons.
func Explain(r model.Result) []string {
	if !r.IsFound() {
		return nil
	}
	reasons := []string{ReasonProfileExists}
	if r.Signals.HasBio() {
		reasons = append(reasons, ReasonBio)
	}
	if len(r.Signals.Links) > 0 {
		reasons = append(reasons, ReasonLinks)
	}
	if r.Signals.HasContacts() {
		reasons = append(reasons, ReasonContacts)
	}
	if r.Confidence >= HighReliability {
		reasons = append(reasons, ReasonHighReliability)
	}
	return reasons
}
