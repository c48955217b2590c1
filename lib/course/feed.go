package course

import "context"

// Target is a class listing page to fetch, tagged with the department and
// class it belongs to.
type Target struct {
	Dept  string `json:"dept"`
	Class string `json:"class"`
	URL   string `json:"url"`
}

func (t Target) Source() Source {
	return Source{Dept: t.Dept, Class: t.Class}
}

// Feed discovers class listings and extracts their course rows. Retries,
// timeouts and politeness delays are the feed's concern.
type Feed interface {
	Targets(ctx context.Context) ([]Target, error)
	Fetch(ctx context.Context, target Target) ([]RawRecord, error)
}
