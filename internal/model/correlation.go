package model

import "slices"

// CorrelationMap maps a bio to the sorted names of the platforms that
// published exactly that bio. Only bios shared by two or more platforms
// are kept.
type CorrelationMap map[string][]string

// Bios returns the correlated bios in lexical order.
func (m CorrelationMap) Bios() []string {
	bios := make([]string, 0, len(m))
	for bio := range m {
		bios = append(bios, bio)
	}
	slices.Sort(bios)
	return bios
}

// Platforms returns the platforms sharing bio, or nil.
func (m CorrelationMap) Platforms(bio string) []string {
	return m[bio]
}
