// Package correlate links results that published the same bio.
//
// Matching is exact string equality. Differences in case, whitespace or
// punctuation defeat a correlation; that is a known limitation of the
// heuristic, not something to normalize away.
package correlate

import (
	"github.com/nao1215/handlescan/internal/model"
)

// MinPlatforms is the number of distinct platforms a bio needs to be
// reported as a correlation.
const MinPlatforms = 2

// Correlate groups results by bio and keeps the groups shared by at least
// MinPlatforms distinct platforms. Results without a bio are ignored.
// The input is not modified and the output does not depend on its order.
func Correlate(results []model.Result) model.CorrelationMap {
	groups := make(map[string][]string)
	for _, r := range results {
		if !r.Signals.HasBio() {
			continue
		}
		groups[r.Signals.Bio] = append(groups[r.Signals.Bio], r.Platform)
	}

	correlation := make(model.CorrelationMap)
	for bio, platforms := range groups {
		distinct := model.SortedSet(platforms)
		if len(distinct) >= MinPlatforms {
			correlation[bio] = distinct
		}
	}
	return correlation
}
