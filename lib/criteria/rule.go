package criteria

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

// Category is the fixed label a clause is classified under, downstream
// eligibility matching indexes rules by these exact strings.
type Category string

const (
	Dept         Category = "dept"
	Grade        Category = "grade"
	Class        Category = "class"
	StudentID    Category = "parity"
	Identity     Category = "identity"
	System       Category = "system"
	Prerequisite Category = "prerequisite"
	Limit        Category = "limit"
	Other        Category = "other"
)

// Categories lists every category in classification precedence order,
// followed by the fallback.
var Categories = []Category{
	Dept, Grade, Class, StudentID, Identity, System, Prerequisite, Limit, Other,
}

type Mode string

const (
	Include Mode = "include"
	Exclude Mode = "exclude"
)

type Parity string

const (
	Odd  Parity = "odd"
	Even Parity = "even"
	All  Parity = "all"
)

// Rule is an include/exclude value set. Student id rules carry a Parity
// instead of Values and serialize as {"mode", "value"}.
type Rule struct {
	Mode   Mode
	Values []string
	Parity Parity
}

type ruleJSON struct {
	Mode   Mode      `json:"mode"`
	Values *[]string `json:"values,omitempty"`
	Value  Parity    `json:"value,omitempty"`
}

func (r Rule) MarshalJSON() ([]byte, error) {
	if r.Parity != "" {
		return json.Marshal(ruleJSON{Mode: r.Mode, Value: r.Parity})
	}
	values := r.Values
	if values == nil {
		values = []string{}
	}
	return json.Marshal(ruleJSON{Mode: r.Mode, Values: &values})
}

func (r *Rule) UnmarshalJSON(data []byte) error {
	var raw ruleJSON
	err := json.Unmarshal(data, &raw)
	if err != nil {
		return err
	}
	r.Mode = raw.Mode
	r.Parity = raw.Value
	r.Values = nil
	if raw.Values != nil {
		r.Values = *raw.Values
	}
	if r.Parity == "" && r.Values == nil {
		r.Values = []string{}
	}
	return nil
}

func (r Rule) String() string {
	if r.Parity != "" {
		return fmt.Sprintf("%s %s", r.Mode, r.Parity)
	}
	return fmt.Sprintf("%s [%s]", r.Mode, strings.Join(r.Values, ", "))
}

// Rules holds at most one rule per category.
type Rules map[Category]Rule

// RuleGroup is one independent condition group of a criteria string.
type RuleGroup struct {
	Priority int   `json:"priority"`
	Rules    Rules `json:"rules"`
}

func (g RuleGroup) String() string {
	var parts []string
	for _, category := range Categories {
		rule, ok := g.Rules[category]
		if !ok {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s", category, rule))
	}
	return fmt.Sprintf("(%d) %s", g.Priority, strings.Join(parts, "; "))
}

// SortedCategories returns the categories present in the group in
// precedence order.
func (g RuleGroup) SortedCategories() []Category {
	out := make([]Category, 0, len(g.Rules))
	for category := range g.Rules {
		out = append(out, category)
	}
	slices.SortFunc(out, func(a, b Category) int {
		return slices.Index(Categories, a) - slices.Index(Categories, b)
	})
	return out
}
