package criteria

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	testCases := []struct {
		text     string
		expected []RuleGroup
	}{
		{text: "", expected: []RuleGroup{}},
		{text: "無", expected: []RuleGroup{}},
		{text: " None ", expected: []RuleGroup{}},
		{
			text: "(1)系:限機械工程學系。年:限三年級 | (2)系:限非電機工程學系",
			expected: []RuleGroup{
				{
					Priority: 1,
					Rules: Rules{
						Dept:  {Mode: Include, Values: []string{"機械工程學系"}},
						Grade: {Mode: Include, Values: []string{"3"}},
					},
				},
				{
					Priority: 2,
					Rules: Rules{
						Dept: {Mode: Exclude, Values: []string{"電機工程學系"}},
					},
				},
			},
		},
		{
			text: "年級:限一年級、二年級",
			expected: []RuleGroup{{
				Priority: 1,
				Rules:    Rules{Grade: {Mode: Include, Values: []string{"1", "2"}}},
			}},
		},
		{
			text: "系年級:限資訊工程學系",
			expected: []RuleGroup{{
				Priority: 1,
				Rules:    Rules{Dept: {Mode: Include, Values: []string{"資訊工程學系"}}},
			}},
		},
		{
			text: "學號:限單號",
			expected: []RuleGroup{{
				Priority: 1,
				Rules:    Rules{StudentID: {Mode: Include, Parity: Odd}},
			}},
		},
		{
			text: "學號:雙號或單號",
			expected: []RuleGroup{{
				Priority: 1,
				Rules:    Rules{StudentID: {Mode: Include, Parity: Odd}},
			}},
		},
		{
			text: "學號:限雙號",
			expected: []RuleGroup{{
				Priority: 1,
				Rules:    Rules{StudentID: {Mode: Include, Parity: Even}},
			}},
		},
		{
			text: "學號:不拘",
			expected: []RuleGroup{{
				Priority: 1,
				Rules:    Rules{StudentID: {Mode: Include, Parity: All}},
			}},
		},
		{
			text: "身分:非應屆畢業生",
			expected: []RuleGroup{{
				Priority: 1,
				Rules:    Rules{Identity: {Mode: Include, Values: []string{"應屆畢業生"}}},
			}},
		},
		{
			text: "身分:限非外籍生",
			expected: []RuleGroup{{
				Priority: 1,
				Rules:    Rules{Identity: {Mode: Exclude, Values: []string{"外籍生"}}},
			}},
		},
		{
			text: "限本系學生。年:限一年級",
			expected: []RuleGroup{{
				Priority: 1,
				Rules:    Rules{Grade: {Mode: Include, Values: []string{"1"}}},
			}},
		},
		{
			text: "系:限機械系、土木系/化工系或電機系，機械系",
			expected: []RuleGroup{{
				Priority: 1,
				Rules: Rules{Dept: {
					Mode:   Include,
					Values: []string{"機械系", "土木系", "化工系", "電機系"},
				}},
			}},
		},
		{
			text: "［２］：系：限資工系",
			expected: []RuleGroup{{
				Priority: 2,
				Rules:    Rules{Dept: {Mode: Include, Values: []string{"資工系"}}},
			}},
		},
		{
			text: "{3}. 學制:限學士班；人數上限:50；先修科目:微積分；備註:請洽系辦",
			expected: []RuleGroup{{
				Priority: 3,
				Rules: Rules{
					System:       {Mode: Include, Values: []string{"學士班"}},
					Limit:        {Mode: Include, Values: []string{"50"}},
					Prerequisite: {Mode: Include, Values: []string{"微積分"}},
					Other:        {Mode: Include, Values: []string{"請洽系辦"}},
				},
			}},
		},
		{
			text: "系:限資工系。系:限電機系",
			expected: []RuleGroup{{
				Priority: 1,
				Rules:    Rules{Dept: {Mode: Include, Values: []string{"電機系"}}},
			}},
		},
		{
			text: "(2)系:限資工系 ｜ (1)系:限電機系",
			expected: []RuleGroup{
				{Priority: 2, Rules: Rules{Dept: {Mode: Include, Values: []string{"資工系"}}}},
				{Priority: 1, Rules: Rules{Dept: {Mode: Include, Values: []string{"電機系"}}}},
			},
		},
		{
			text: "系:限",
			expected: []RuleGroup{{
				Priority: 1,
				Rules:    Rules{Dept: {Mode: Include, Values: []string{}}},
			}},
		},
		{
			text: "(1)",
			expected: []RuleGroup{{
				Priority: 1,
				Rules:    Rules{},
			}},
		},
	}

	for _, test := range testCases {
		diff := cmp.Diff(test.expected, Parse(test.text))
		if diff != "" {
			t.Fatalf("%q: %s", test.text, diff)
		}
	}
}

func TestClassifyPrecedence(t *testing.T) {
	testCases := []struct {
		key      string
		expected Category
	}{
		{key: "系", expected: Dept},
		{key: "學院", expected: Dept},
		{key: "年級班別", expected: Grade},
		{key: "班別", expected: Class},
		{key: "學號", expected: StudentID},
		{key: "身分別", expected: Identity},
		{key: "學制", expected: System},
		{key: "指定修課", expected: Prerequisite},
		{key: "人數", expected: Limit},
		{key: "限修上限", expected: Limit},
		{key: "備註", expected: Other},
	}
	for _, test := range testCases {
		require.Equal(t, test.expected, Classify(test.key), test.key)
	}
}

func TestRuleGroupJSON(t *testing.T) {
	groups := Parse("(1)系:限機械工程學系。年:限三年級 | (2)系:限非電機工程學系。學號:限單號")

	serialized, err := json.Marshal(groups)
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(
		t,
		`[{"priority":1,"rules":{"dept":{"mode":"include","values":["機械工程學系"]},"grade":{"mode":"include","values":["3"]}}},`+
			`{"priority":2,"rules":{"dept":{"mode":"exclude","values":["電機工程學系"]},"parity":{"mode":"include","value":"odd"}}}]`,
		string(serialized),
	)

	var decoded []RuleGroup
	err = json.Unmarshal(serialized, &decoded)
	if err != nil {
		t.Fatal(err)
	}
	diff := cmp.Diff(groups, decoded)
	if diff != "" {
		t.Fatal(diff)
	}
}

func TestParseIsPure(t *testing.T) {
	text := "(1)系:限機械工程學系、土木工程學系。年:限三年級 | [2]身分:限非外籍生"
	first, err := json.Marshal(Parse(text))
	if err != nil {
		t.Fatal(err)
	}
	for range 10 {
		again, err := json.Marshal(Parse(text))
		if err != nil {
			t.Fatal(err)
		}
		require.Equal(t, first, again)
	}
}
