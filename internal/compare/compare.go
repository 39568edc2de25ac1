// Package compare diffs two scans of the same handle.
//
// A diff answers what changed in a handle's public footprint between
// scans: profiles that appeared or disappeared, bios that were rewritten,
// profile pages whose content changed, and bios that started to be shared
// across platforms.
package compare

import (
	"slices"
	"strings"
	"time"

	"github.com/nao1215/handlescan/internal/model"
)

// ScanRef identifies one side of a comparison.
type ScanRef struct {
	ID        string        `json:"id"`
	StartedAt time.Time     `json:"started_at"`
	Summary   model.Summary `json:"summary"`
}

func refOf(r *model.ScanReport) ScanRef {
	return ScanRef{ID: r.ID, StartedAt: r.StartedAt, Summary: r.Summary()}
}

// BioChange is a bio rewritten between scans of a profile found both times.
type BioChange struct {
	Platform string `json:"platform"`
	Before   string `json:"before"`
	After    string `json:"after"`
}

// ConfidenceChange is a score that moved between scans of a found profile.
type ConfidenceChange struct {
	Platform string `json:"platform"`
	Before   int    `json:"before"`
	After    int    `json:"after"`
}

// Delta returns After minus Before.
func (c ConfidenceChange) Delta() int {
	return c.After - c.Before
}

// Correlation is a bio shared by Platforms.
type Correlation struct {
	Bio       string   `json:"bio"`
	Platforms []string `json:"platforms"`
}

// Diff is the difference between two scans. Platform lists are sorted.
type Diff struct {
	Handle   string  `json:"handle"`
	Previous ScanRef `json:"previous_scan"`
	Current  ScanRef `json:"current_scan"`

	// NewlyFound are platforms found now that were not found before.
	NewlyFound []string `json:"newly_found,omitempty"`

	// NoLongerFound are platforms found before that now answer NOT FOUND.
	NoLongerFound []string `json:"no_longer_found,omitempty"`

	// Unreachable are platforms found before that errored this time, so
	// their state is unknown.
	Unreachable []string `json:"unreachable,omitempty"`

	BioChanges        []BioChange        `json:"bio_changes,omitempty"`
	ConfidenceChanges []ConfidenceChange `json:"confidence_changes,omitempty"`

	// ContentChanges are platforms found both times whose page digest changed.
	ContentChanges []string `json:"content_changes,omitempty"`

	// NewCorrelations are shared bios that were not shared before.
	NewCorrelations []Correlation `json:"new_correlations,omitempty"`

	// Unchanged counts platforms found both times with nothing changed.
	Unchanged int `json:"unchanged"`
}

// HasChanges reports whether anything differs between the two scans.
func (d *Diff) HasChanges() bool {
	return len(d.NewlyFound) > 0 ||
		len(d.NoLongerFound) > 0 ||
		len(d.Unreachable) > 0 ||
		len(d.BioChanges) > 0 ||
		len(d.ConfidenceChanges) > 0 ||
		len(d.ContentChanges) > 0 ||
		len(d.NewCorrelations) > 0
}

// Compare diffs prev against curr. Both reports should be for the same
// handle; Handle is taken from curr.
func Compare(prev, curr *model.ScanReport) *Diff {
	d := &Diff{
		Handle:   curr.Handle,
		Previous: refOf(prev),
		Current:  refOf(curr),
	}

	before := make(map[string]model.Result, len(prev.Results))
	for _, r := range prev.Results {
		before[r.Platform] = r
	}
	after := make(map[string]model.Result, len(curr.Results))
	for _, r := range curr.Results {
		after[r.Platform] = r
	}

	for _, now := range curr.Results {
		then, seen := before[now.Platform]
		wasFound := seen && then.IsFound()

		if now.IsFound() && !wasFound {
			d.NewlyFound = append(d.NewlyFound, now.Platform)
			continue
		}
		if !now.IsFound() || !wasFound {
			continue
		}

		changed := false
		if then.Signals.Bio != now.Signals.Bio {
			d.BioChanges = append(d.BioChanges, BioChange{
				Platform: now.Platform,
				Before:   then.Signals.Bio,
				After:    now.Signals.Bio,
			})
			changed = true
		}
		if then.Confidence != now.Confidence {
			d.ConfidenceChanges = append(d.ConfidenceChanges, ConfidenceChange{
				Platform: now.Platform,
				Before:   then.Confidence,
				After:    now.Confidence,
			})
			changed = true
		}
		if then.Digest != "" && now.Digest != "" && then.Digest != now.Digest {
			d.ContentChanges = append(d.ContentChanges, now.Platform)
			changed = true
		}
		if !changed {
			d.Unchanged++
		}
	}

	for _, then := range prev.Results {
		if !then.IsFound() {
			continue
		}
		now, seen := after[then.Platform]
		switch {
		case seen && now.Status == model.StatusNotFound:
			d.NoLongerFound = append(d.NoLongerFound, then.Platform)
		case seen && now.Status == model.StatusError:
			d.Unreachable = append(d.Unreachable, then.Platform)
		}
	}

	for _, bio := range curr.Correlation.Bios() {
		if _, shared := prev.Correlation[bio]; shared {
			continue
		}
		d.NewCorrelations = append(d.NewCorrelations, Correlation{
			Bio:       bio,
			Platforms: curr.Correlation.Platforms(bio),
		})
	}

	slices.Sort(d.NewlyFound)
	slices.Sort(d.NoLongerFound)
	slices.Sort(d.Unreachable)
	slices.Sort(d.ContentChanges)
	slices.SortFunc(d.BioChanges, func(a, b BioChange) int { return strings.Compare(a.Platform, b.Platform) })
	slices.SortFunc(d.ConfidenceChanges, func(a, b ConfidenceChange) int { return strings.Compare(a.Platform, b.Platform) })

	return d
}
