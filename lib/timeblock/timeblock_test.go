package timeblock

import (
	"math/rand"
	"strings"
	"testing"

	"ncucourse/lib/testutil"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	testCases := []struct {
		text     string
		expected []TimeBlock
	}{
		{text: "", expected: []TimeBlock{}},
		{text: "   ", expected: []TimeBlock{}},
		{text: "未定", expected: []TimeBlock{}},
		{
			text: "一3,4 二B,C(R101)",
			expected: []TimeBlock{
				{Day: Monday, Start: 2, End: 3},
				{Day: Tuesday, Start: 11, End: 12},
			},
		},
		{
			text:     "三5-7",
			expected: []TimeBlock{{Day: Wednesday, Start: 5, End: 7}},
		},
		{
			text:     "三7~5",
			expected: []TimeBlock{{Day: Wednesday, Start: 5, End: 7}},
		},
		{
			text:     "四34Z",
			expected: []TimeBlock{{Day: Thursday, Start: 2, End: 4}},
		},
		{
			text:     "一1-X,3",
			expected: []TimeBlock{{Day: Monday, Start: 2, End: 2}},
		},
		{
			text:     "一1 一2",
			expected: []TimeBlock{{Day: Monday, Start: 0, End: 1}},
		},
		{
			text: "五1,3",
			expected: []TimeBlock{
				{Day: Friday, Start: 0, End: 0},
				{Day: Friday, Start: 2, End: 2},
			},
		},
		{
			text: "日9/E1-201 六AB",
			expected: []TimeBlock{
				{Day: Sunday, Start: 9, End: 9},
				{Day: Saturday, Start: 10, End: 11},
			},
		},
		{
			text:     "一３,４",
			expected: []TimeBlock{{Day: Monday, Start: 2, End: 3}},
		},
		{
			text:     "一[R1]2",
			expected: []TimeBlock{{Day: Monday, Start: 1, End: 1}},
		},
		{text: "七1", expected: []TimeBlock{}},
		{text: "一XY", expected: []TimeBlock{}},
		{
			text:     "二 1-2,34",
			expected: []TimeBlock{{Day: Tuesday, Start: 0, End: 3}},
		},
	}

	for _, test := range testCases {
		diff := cmp.Diff(test.expected, ParseAll(test.text))
		if diff != "" {
			t.Fatalf("%q: %s", test.text, diff)
		}
	}
}

func TestParseRestartable(t *testing.T) {
	seq := Parse("一3,4 二B,C 一9")

	var first, second []TimeBlock
	for b := range seq {
		first = append(first, b)
	}
	for b := range seq {
		second = append(second, b)
	}
	require.Equal(t, first, second)
	require.Len(t, first, 3)

	var stopped []TimeBlock
	for b := range seq {
		stopped = append(stopped, b)
		break
	}
	require.Equal(t, first[:1], stopped)
}

func TestFormat(t *testing.T) {
	require.Equal(t, "一3-4 二B-C", Format(ParseAll("一3,4 二B,C(R101)")))
	require.Equal(t, "五1 五3", Format(ParseAll("五1,3")))
	require.Equal(t, "", Format(nil))
}

var periodTokens = func() []string {
	out := make([]string, len(Periods))
	for i, p := range Periods {
		out[i] = string(p)
	}
	return out
}()

func randomTimeText(rndm *rand.Rand) string {
	// 0: single code run
	// 1: range with '-'
	// 2: range with '~'
	// 3: garbage code
	partKind := testutil.RandomSwitch(5, 3, 1, 1)

	var sb strings.Builder
	days := rndm.Intn(4) + 1
	for range days {
		sb.WriteRune(testutil.RandomPick(rndm, DisplayOrder))
		parts := rndm.Intn(3) + 1
		for i := range parts {
			if i > 0 {
				sb.WriteByte(',')
			}
			switch partKind(rndm) {
			case 0:
				for range rndm.Intn(3) + 1 {
					sb.WriteString(testutil.RandomPick(rndm, periodTokens))
				}
			case 1:
				sb.WriteString(testutil.RandomPick(rndm, periodTokens))
				sb.WriteByte('-')
				sb.WriteString(testutil.RandomPick(rndm, periodTokens))
			case 2:
				sb.WriteString(testutil.RandomPick(rndm, periodTokens))
				sb.WriteByte('~')
				sb.WriteString(testutil.RandomPick(rndm, periodTokens))
			case 3:
				sb.WriteString("XQ")
			}
		}
		if rndm.Intn(4) == 0 {
			sb.WriteString("(E1-101)")
		}
		sb.WriteByte(' ')
	}
	return sb.String()
}

func TestParseBlocksAreMaximal(t *testing.T) {
	rndm := rand.New(rand.NewSource(1024))

	for range 2000 {
		text := randomTimeText(rndm)
		blocks := ParseAll(text)

		byDay := map[Day][]TimeBlock{}
		for _, b := range blocks {
			require.LessOrEqual(t, b.Start, b.End, text)
			require.GreaterOrEqual(t, b.Start, 0, text)
			require.Less(t, b.End, len(Periods), text)
			byDay[b.Day] = append(byDay[b.Day], b)
		}
		for _, dayBlocks := range byDay {
			for i := 1; i < len(dayBlocks); i++ {
				// blocks of a day are sorted and separated by at least one free period
				require.Greater(t, dayBlocks[i].Start, dayBlocks[i-1].End+1, text)
			}
		}

		require.Equal(t, blocks, ParseAll(text), text)
	}
}
