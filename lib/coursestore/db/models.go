package db

type Course struct {
	Serial      string
	Code        string
	Name        string
	Instructor  string
	Credits     string
	Requirement string
	MeetingTime string
	Criteria    string
	Dept        string
	Class       string
	IsRequired  bool
	// json encoded []timeblock.TimeBlock
	TimeParsed string
	// json encoded []criteria.RuleGroup
	RulesParsed string
}

type CourseSource struct {
	Serial   string
	Position int64
	Dept     string
	Class    string
}

type ScrapeRun struct {
	ID            string
	Term          string
	StartedAt     int64
	FinishedAt    int64
	Targets       int64
	Failures      int64
	Inputs        int64
	UniqueCourses int64
	Merged        int64
	Replaced      int64
}
