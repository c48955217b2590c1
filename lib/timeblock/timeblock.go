package timeblock

import (
	"iter"
	"regexp"
	"slices"
	"strings"

	"golang.org/x/text/width"
)

// TimeBlock is a contiguous run of periods on a single day, Start and End
// are inclusive indices on the period scale.
type TimeBlock struct {
	Day   Day `json:"day"`
	Start int `json:"start"`
	End   int `json:"end"`
}

// Unscheduled is the token the catalog uses for courses without a fixed time.
const Unscheduled = "未定"

var annotationRegex = regexp.MustCompile(`[\(\[].*?[\)\]]`)
var locationRegex = regexp.MustCompile(`/[^\s,]+`)
var dayPeriodsRegex = regexp.MustCompile(`([一二三四五六日])\s*([0-9A-Z,\-~]+)`)
var rangeSeparatorRegex = regexp.MustCompile(`[-~]`)

// Parse lazily decodes a meeting time string such as "一3,4 二B,C(R101)".
// The returned sequence can be iterated any number of times and always
// produces the same blocks. Fragments that cannot be decoded are skipped.
func Parse(text string) iter.Seq[TimeBlock] {
	return func(yield func(TimeBlock) bool) {
		order, periods := scan(text)
		for _, day := range order {
			for _, block := range encode(day, periods[day]) {
				if !yield(block) {
					return
				}
			}
		}
	}
}

// ParseAll is Parse collected into a slice, it never returns nil.
func ParseAll(text string) []TimeBlock {
	blocks := []TimeBlock{}
	for block := range Parse(text) {
		blocks = append(blocks, block)
	}
	return blocks
}

func clean(text string) string {
	text = strings.TrimSpace(width.Fold.String(text))
	if text == "" || text == Unscheduled {
		return ""
	}
	text = annotationRegex.ReplaceAllString(text, "")
	text = locationRegex.ReplaceAllString(text, "")
	return text
}

// scan collects the period indices of every day mentioned in text, days are
// returned in the order they first appear.
func scan(text string) ([]Day, map[Day][]int) {
	text = clean(text)
	if text == "" {
		return nil, nil
	}

	var order []Day
	periods := map[Day][]int{}
	for _, match := range dayPeriodsRegex.FindAllStringSubmatch(text, -1) {
		glyph := []rune(match[1])[0]
		day, ok := DayFromGlyph(glyph)
		if !ok {
			continue
		}
		indices := decodePeriodList(match[2])
		if len(indices) == 0 {
			continue
		}
		if _, seen := periods[day]; !seen {
			order = append(order, day)
		}
		periods[day] = append(periods[day], indices...)
	}
	return order, periods
}

func decodePeriodList(list string) []int {
	var indices []int
	for _, part := range strings.Split(list, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		if rangeSeparatorRegex.MatchString(part) {
			bounds := rangeSeparatorRegex.Split(part, -1)
			if len(bounds) < 2 || len(bounds[0]) != 1 || len(bounds[1]) != 1 {
				continue
			}
			start, okStart := PeriodIndex(bounds[0][0])
			end, okEnd := PeriodIndex(bounds[1][0])
			if !okStart || !okEnd {
				continue
			}
			for k := min(start, end); k <= max(start, end); k++ {
				indices = append(indices, k)
			}
			continue
		}

		for i := 0; i < len(part); i++ {
			idx, ok := PeriodIndex(part[i])
			if ok {
				indices = append(indices, idx)
			}
		}
	}
	return indices
}

// encode run-length encodes period indices into maximal blocks.
func encode(day Day, indices []int) []TimeBlock {
	if len(indices) == 0 {
		return nil
	}
	sorted := slices.Clone(indices)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	var blocks []TimeBlock
	start, last := sorted[0], sorted[0]
	for _, idx := range sorted[1:] {
		if idx == last+1 {
			last = idx
			continue
		}
		blocks = append(blocks, TimeBlock{Day: day, Start: start, End: last})
		start, last = idx, idx
	}
	return append(blocks, TimeBlock{Day: day, Start: start, End: last})
}

// Format renders blocks back into the catalog notation, one token per
// block, e.g. "一3-4 二B-C".
func Format(blocks []TimeBlock) string {
	parts := make([]string, len(blocks))
	for i, b := range blocks {
		var sb strings.Builder
		sb.WriteRune(b.Day.Glyph())
		sb.WriteByte(PeriodCode(b.Start))
		if b.End != b.Start {
			sb.WriteByte('-')
			sb.WriteByte(PeriodCode(b.End))
		}
		parts[i] = sb.String()
	}
	return strings.Join(parts, " ")
}
