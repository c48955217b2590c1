package course

import (
	"slices"
	"strings"
)

// GeneralEducationMarker marks departments listing general education
// courses, their variant of a course takes display precedence.
const GeneralEducationMarker = "通識"

func isGeneralEducation(dept string) bool {
	return strings.Contains(dept, GeneralEducationMarker)
}

// Merge folds another sighting of a course into its canonical record. The
// sighting is always appended to the sources. When the canonical record
// came from a regular department and the sighting from a general education
// listing, every other field is taken from the sighting.
func Merge(existing CanonicalRecord, incoming NormalizedRecord) (merged CanonicalRecord, replaced bool) {
	sources := make([]Source, 0, len(existing.Sources)+1)
	sources = append(sources, existing.Sources...)
	sources = append(sources, incoming.Source())

	if !isGeneralEducation(existing.Dept) && isGeneralEducation(incoming.Dept) {
		return CanonicalRecord{NormalizedRecord: incoming, Sources: sources}, true
	}
	return CanonicalRecord{NormalizedRecord: existing.NormalizedRecord, Sources: sources}, false
}

type Stats struct {
	// Inputs is the number of records added.
	Inputs int `json:"inputs"`
	// Unique is the number of distinct course serials.
	Unique int `json:"unique"`
	// Merged is the number of records folded into an existing course.
	Merged int `json:"merged"`
	// Replaced is the number of merges that swapped the canonical fields.
	Replaced int `json:"replaced"`
}

// Deduper collapses records sharing a course serial. It is not safe for
// concurrent use, records must be added in scrape order since order decides
// which variant ends up canonical.
type Deduper struct {
	index   map[string]int
	records []CanonicalRecord
	stats   Stats
}

func NewDeduper() *Deduper {
	return &Deduper{index: map[string]int{}}
}

func (d *Deduper) Add(rec NormalizedRecord) {
	d.stats.Inputs++

	idx, seen := d.index[rec.Serial]
	if !seen {
		d.index[rec.Serial] = len(d.records)
		d.records = append(d.records, CanonicalRecord{
			NormalizedRecord: rec,
			Sources:          []Source{rec.Source()},
		})
		d.stats.Unique++
		return
	}

	merged, replaced := Merge(d.records[idx], rec)
	d.records[idx] = merged
	d.stats.Merged++
	if replaced {
		d.stats.Replaced++
	}
}

func (d *Deduper) Get(serial string) (CanonicalRecord, bool) {
	idx, ok := d.index[serial]
	if !ok {
		return CanonicalRecord{}, false
	}
	return cloneRecord(d.records[idx]), true
}

func (d *Deduper) Len() int {
	return len(d.records)
}

func (d *Deduper) Stats() Stats {
	return d.stats
}

// Records returns the canonical records in first sighting order.
func (d *Deduper) Records() []CanonicalRecord {
	out := make([]CanonicalRecord, len(d.records))
	for i, r := range d.records {
		out[i] = cloneRecord(r)
	}
	return out
}

func cloneRecord(r CanonicalRecord) CanonicalRecord {
	r.Sources = slices.Clone(r.Sources)
	return r
}
