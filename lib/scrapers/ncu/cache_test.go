package ncu

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCacheKey(t *testing.T) {
	testCases := []struct {
		link   string
		expect string
	}{
		{
			link:   "https://cis.ncu.edu.tw/Course/main/query/byUnion?show=table&dept=1",
			expect: "page:https://cis.ncu.edu.tw/Course/main/query/byUnion?dept=1&show=table",
		},
		{
			link:   "HTTPS://cis.ncu.edu.tw/index.html#top",
			expect: "page:https://cis.ncu.edu.tw/",
		},
	}

	for _, test := range testCases {
		key, err := cacheKey(test.link)
		if err != nil {
			t.Fatal(err)
		}
		require.Equal(t, test.expect, key)
	}
}

func TestPageCache(t *testing.T) {
	cache, err := OpenPageCache("", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	defer cache.Close()

	ctx := context.Background()
	_, err = cache.Get(ctx, "https://cis.ncu.edu.tw/a?x=1&y=2")
	require.Equal(t, ErrPageNotCached, err)

	err = cache.Set(ctx, "https://cis.ncu.edu.tw/a?x=1&y=2", []byte("page contents"))
	require.Nil(t, err)

	contents, err := cache.Get(ctx, "https://cis.ncu.edu.tw/a?y=2&x=1")
	require.Nil(t, err)
	require.Equal(t, []byte("page contents"), contents)

	_, err = cache.Get(ctx, "https://cis.ncu.edu.tw/b")
	require.Equal(t, ErrPageNotCached, err)
}
