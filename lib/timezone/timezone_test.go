package timezone

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestGetTerm(t *testing.T) {
	testCases := []struct {
		now      time.Time
		expected Term
	}{
		{
			now:      time.Date(2025, time.September, 1, 0, 0, 0, 0, Location),
			expected: Term{Year: 114, Semester: 1},
		},
		{
			now:      time.Date(2026, time.January, 15, 0, 0, 0, 0, Location),
			expected: Term{Year: 114, Semester: 1},
		},
		{
			now:      time.Date(2026, time.February, 1, 0, 0, 0, 0, Location),
			expected: Term{Year: 114, Semester: 2},
		},
		{
			now:      time.Date(2026, time.July, 31, 23, 0, 0, 0, Location),
			expected: Term{Year: 114, Semester: 2},
		},
		{
			// still july 31st in UTC, already august in Taipei
			now:      time.Date(2026, time.July, 31, 20, 0, 0, 0, time.UTC),
			expected: Term{Year: 115, Semester: 1},
		},
	}

	for _, test := range testCases {
		require.Equal(t, test.expected, GetTerm(test.now), test.now.String())
	}
	require.Equal(t, "114-1", Term{Year: 114, Semester: 1}.String())
}
