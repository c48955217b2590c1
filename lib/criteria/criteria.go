package criteria

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/width"
)

// classifier maps a clause key to a category when the key contains any of
// the keywords. classifiers are checked in order and the first hit wins.
type classifier struct {
	keywords []string
	category Category
}

var classifiers = []classifier{
	{keywords: []string{"系", "院"}, category: Dept},
	{keywords: []string{"年"}, category: Grade},
	{keywords: []string{"班"}, category: Class},
	{keywords: []string{"學號"}, category: StudentID},
	{keywords: []string{"身"}, category: Identity},
	{keywords: []string{"學制"}, category: System},
	{keywords: []string{"指定", "先修"}, category: Prerequisite},
	{keywords: []string{"人數", "上限"}, category: Limit},
}

// Classify returns the category of a clause key.
func Classify(key string) Category {
	for _, c := range classifiers {
		for _, keyword := range c.keywords {
			if strings.Contains(key, keyword) {
				return c.category
			}
		}
	}
	return Other
}

const (
	restrictNotKeyword = "限非"
	notKeyword         = "非"
	oddKeyword         = "單"
	evenKeyword        = "雙"
)

var noneTokens = []string{"無", "None"}

var gradeWords = map[string]string{
	"一年級": "1",
	"二年級": "2",
	"三年級": "3",
	"四年級": "4",
	"五年級": "5",
	"六年級": "6",
}

var groupSeparatorRegex = regexp.MustCompile(`\s*[|｜]\s*`)
var priorityRegex = regexp.MustCompile(`^[\(\[\{（［｛]\s*([0-9０-９]+)\s*[\)\]\}）］｝]\s*[:：.]?\s*((?s:.*))$`)
var clauseSeparatorRegex = regexp.MustCompile(`[。；;]\s*`)
var operatorRegex = regexp.MustCompile(`限非|非|限`)
var valueSeparatorRegex = regexp.MustCompile(`[、,，/或]`)

// Parse turns an admission criteria string such as
// "(1)系:限機械工程學系。年:限三年級 | (2)系:限非電機工程學系" into rule
// groups in source order. Clauses that cannot be understood are dropped.
func Parse(text string) []RuleGroup {
	groups := []RuleGroup{}

	text = strings.TrimSpace(text)
	if text == "" {
		return groups
	}
	for _, none := range noneTokens {
		if text == none {
			return groups
		}
	}

	for _, group := range groupSeparatorRegex.Split(text, -1) {
		group = strings.TrimSpace(group)
		if group == "" {
			continue
		}
		priority, content := splitPriority(group)
		groups = append(groups, RuleGroup{
			Priority: priority,
			Rules:    parseClauses(content),
		})
	}
	return groups
}

func splitPriority(group string) (int, string) {
	match := priorityRegex.FindStringSubmatch(group)
	if match == nil {
		return 1, group
	}
	priority, err := strconv.Atoi(width.Narrow.String(match[1]))
	if err != nil || priority < 1 {
		return 1, match[2]
	}
	return priority, match[2]
}

func parseClauses(content string) Rules {
	rules := Rules{}
	for _, clause := range clauseSeparatorRegex.Split(content, -1) {
		key, value, ok := splitClause(clause)
		if !ok {
			continue
		}
		category := Classify(key)
		rules[category] = parseRule(category, value)
	}
	return rules
}

func splitClause(clause string) (string, string, bool) {
	sep := ":"
	if !strings.Contains(clause, sep) {
		sep = "："
	}
	key, value, ok := strings.Cut(clause, sep)
	if !ok {
		return "", "", false
	}
	return strings.TrimSpace(key), strings.TrimSpace(value), true
}

func parseRule(category Category, value string) Rule {
	if category == StudentID {
		parity := All
		if strings.Contains(value, oddKeyword) {
			parity = Odd
		} else if strings.Contains(value, evenKeyword) {
			parity = Even
		}
		return Rule{Mode: Include, Parity: parity}
	}

	mode := Include
	// identity values may legitimately contain "非" (e.g. 非應屆畢業生),
	// there only the explicit "限非" operator excludes
	if strings.Contains(value, restrictNotKeyword) ||
		(strings.Contains(value, notKeyword) && category != Identity) {
		mode = Exclude
	}

	values := splitValues(operatorRegex.ReplaceAllString(value, ""))
	if category == Grade {
		for i, v := range values {
			if digit, ok := gradeWords[v]; ok {
				values[i] = digit
			}
		}
		values = dedupe(values)
	}
	return Rule{Mode: mode, Values: values}
}

func splitValues(text string) []string {
	var values []string
	for _, v := range valueSeparatorRegex.Split(text, -1) {
		v = strings.TrimSpace(v)
		if v != "" {
			values = append(values, v)
		}
	}
	return dedupe(values)
}

func dedupe(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
