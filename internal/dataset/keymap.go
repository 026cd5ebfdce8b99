package dataset

import (
	"strings"

	"solarprep/domain/dataset"
)

type keyEntry struct {
	fragment string
	id       string
}

// KeyMapper resolves raw plant names to canonical site IDs.
//
// Entries are tried in site-table order and the first entry whose name occurs
// inside the raw value wins. A raw value that matches nothing is passed through
// unchanged and counted as unmapped.
type KeyMapper struct {
	entries []keyEntry
}

// NewKeyMapper builds a mapper from the site table. Rows without a name are
// skipped since an empty fragment would match every value.
func NewKeyMapper(sites dataset.SiteTable) *KeyMapper {
	m := &KeyMapper{entries: make([]keyEntry, 0, len(sites.Sites))}
	for _, s := range sites.Sites {
		if s.Name == "" {
			continue
		}
		m.entries = append(m.entries, keyEntry{fragment: s.Name, id: s.ID})
	}
	return m
}

// Resolve returns the site ID for raw and whether any entry matched.
func (m *KeyMapper) Resolve(raw string) (string, bool) {
	for _, e := range m.entries {
		if strings.Contains(raw, e.fragment) {
			return e.id, true
		}
	}
	return raw, false
}

// Apply returns a copy of records with Site resolved, and the mapping counts.
// Unmapped names are reported in order of first appearance.
func (m *KeyMapper) Apply(records []dataset.LabeledRecord) ([]dataset.LabeledRecord, dataset.KeyMapStats) {
	out := make([]dataset.LabeledRecord, len(records))
	cache := make(map[string]string)
	unmapped := make(map[string]bool)
	var stats dataset.KeyMapStats

	for i, r := range records {
		id, ok := cache[r.Site]
		if !ok {
			var matched bool
			id, matched = m.Resolve(r.Site)
			if !matched {
				unmapped[r.Site] = true
				stats.UnmappedNames = append(stats.UnmappedNames, r.Site)
			}
			cache[r.Site] = id
		}
		if unmapped[r.Site] {
			stats.UnmappedRows++
		} else {
			stats.MappedRows++
		}
		r.Site = id
		out[i] = r
	}
	return out, stats
}
