package timezone

import (
	"fmt"
	"time"
	_ "time/tzdata"
)

var Location *time.Location

func init() {
	var err error
	Location, err = time.LoadLocation("Asia/Taipei")
	if err != nil {
		panic(err)
	}
}

// force timezone to be in Taipei so the semester boundaries do not shift
// with wherever the scraper happens to run
func Now() time.Time {
	return time.Now().In(Location)
}

// Term is an ROC academic year and semester, e.g. 114-1.
type Term struct {
	Year     int
	Semester int
}

func (t Term) String() string {
	return fmt.Sprintf("%d-%d", t.Year, t.Semester)
}

// GetTerm returns the term the catalog is showing at now. the first
// semester runs from august to january, the second from february to july.
func GetTerm(now time.Time) Term {
	now = now.In(Location)
	year := now.Year()
	month := now.Month()

	if month >= time.August {
		return Term{Year: year - 1911, Semester: 1}
	}
	if month == time.January {
		return Term{Year: year - 1912, Semester: 1}
	}
	return Term{Year: year - 1912, Semester: 2}
}
