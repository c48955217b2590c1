package course

import (
	"strings"

	"ncucourse/lib/criteria"
	"ncucourse/lib/timeblock"
)

const requiredKeyword = "必"

func IsRequired(requirement string) bool {
	return strings.Contains(requirement, requiredKeyword)
}

// Normalize derives the structured fields of a raw record.
func Normalize(raw RawRecord) NormalizedRecord {
	return NormalizedRecord{
		RawRecord:   raw,
		TimeParsed:  timeblock.ParseAll(raw.MeetingTime),
		RulesParsed: criteria.Parse(raw.Criteria),
		IsRequired:  IsRequired(raw.Requirement),
	}
}

// Process normalizes and deduplicates raw records in order.
func Process(raws []RawRecord) ([]CanonicalRecord, Stats) {
	d := NewDeduper()
	for _, raw := range raws {
		d.Add(Normalize(raw))
	}
	return d.Records(), d.Stats()
}
