package course

import (
	"ncucourse/lib/criteria"
	"ncucourse/lib/timeblock"
)

// RawRecord is one course offering row as it appears on a class page.
// The json keys match the catalog's column labels.
type RawRecord struct {
	Serial      string `json:"課程編號"`
	Code        string `json:"課程代碼"`
	Name        string `json:"課程名稱"`
	Instructor  string `json:"授課教師"`
	Credits     string `json:"學分"`
	Requirement string `json:"必選修"`
	MeetingTime string `json:"上課時間/教室"`
	Criteria    string `json:"分發條件"`
	Dept        string `json:"dept_name"`
	Class       string `json:"class_name"`
}

// Source is a department and class listing a course was found under.
type Source struct {
	Dept  string `json:"dept"`
	Class string `json:"class"`
}

func (r RawRecord) Source() Source {
	return Source{Dept: r.Dept, Class: r.Class}
}

type NormalizedRecord struct {
	RawRecord
	TimeParsed  []timeblock.TimeBlock `json:"time_parsed"`
	RulesParsed []criteria.RuleGroup  `json:"rules_parsed"`
	IsRequired  bool                  `json:"is_required"`
}

// CanonicalRecord is the deduplicated view of a course, Sources lists every
// listing it was discovered under in discovery order.
type CanonicalRecord struct {
	NormalizedRecord
	Sources []Source `json:"sources"`
}
