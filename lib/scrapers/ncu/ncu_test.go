package ncu

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"ncucourse/lib/course"
	"ncucourse/lib/restyutil"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

const directoryHtml = `<html><body>
<ul class="tree">
	<li>
		<a href="#">機械工程學系(12)</a>
		<ul id="dept1001">
			<li><a href="/Course/main/query/byUnion?openUnion=1&amp;id=10011">一年級 (3)</a></li>
			<li><a href="/Course/main/query/byUnion?openUnion=1&amp;id=10012&amp;show=table">二年級 (5)</a></li>
			<li><a href="/Course/main/other?id=1">不是班級</a></li>
		</ul>
	</li>
	<li>
		<a href="#">通識教育中心 (40)</a>
		<ul id="dept9001">
			<li><a href="https://cis.ncu.edu.tw/Course/main/query/byUnion?openUnion=1&amp;id=90011">通識選修-人文 (20)</a></li>
		</ul>
	</li>
</ul>
<ul id="dept_orphan"><li><a href="/Course/main/query/byUnion?openUnion=1&amp;id=1">orphan</a></li></ul>
</body></html>`

func row(serial, code, name, instructor, requirement, credits string, days [7]string, criteria string) string {
	var sb strings.Builder
	sb.WriteString("<tr>")
	sb.WriteString("<td>1</td>")
	fmt.Fprintf(&sb, "<td> %s </td>", serial)
	fmt.Fprintf(&sb, "<td>%s</td>", code)
	sb.WriteString("<td>-</td>")
	fmt.Fprintf(&sb, "<td>%s</td>", name)
	fmt.Fprintf(&sb, "<td>%s</td>", instructor)
	fmt.Fprintf(&sb, "<td>%s</td>", requirement)
	fmt.Fprintf(&sb, "<td>%s</td>", credits)
	sb.WriteString("<td></td><td></td>")
	for _, d := range days {
		fmt.Fprintf(&sb, "<td>%s</td>", d)
	}
	fmt.Fprintf(&sb, "<td>%s</td>", criteria)
	sb.WriteString("</tr>")
	return sb.String()
}

func classHtml(rows ...string) string {
	return `<html><body><table class="t4">
<tr><th>序</th><th>編號</th></tr>` + strings.Join(rows, "\n") + `
<tr><td colspan="18">合計</td></tr>
</table></body></html>`
}

var mechRows = []string{
	row(
		"10001", "ME1001", `<a href="#">工程圖學</a><br>Engineering Graphics`,
		"王小明", "必修", "3",
		[7]string{"", "34 E1-101", "", "", "", "", ""},
		"分發條件<br>(1)系:限機械工程學系。年:限一年級<br>(2)系:限非電機工程學系",
	),
	row(
		"10002", "ME1002", "微積分", "李大華", "選修", "3",
		[7]string{"", "", "BC LS-201", "", "Z<br>LS-201", "", ""},
		"無",
	),
	row(
		"abc", "ME1003", "bad serial", "", "", "", [7]string{}, "",
	),
}

func TestParseDirectory(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(directoryHtml))
	if err != nil {
		t.Fatal(err)
	}
	base, _ := url.Parse("https://cis.ncu.edu.tw")

	targets := parseDirectory(context.Background(), doc, base)
	expected := []course.Target{
		{
			Dept:  "機械工程學系",
			Class: "一年級",
			URL:   "https://cis.ncu.edu.tw/Course/main/query/byUnion?openUnion=1&id=10011&show=table",
		},
		{
			Dept:  "機械工程學系",
			Class: "二年級",
			URL:   "https://cis.ncu.edu.tw/Course/main/query/byUnion?openUnion=1&id=10012&show=table",
		},
		{
			Dept:  "通識教育中心",
			Class: "通識選修-人文",
			URL:   "https://cis.ncu.edu.tw/Course/main/query/byUnion?openUnion=1&id=90011&show=table",
		},
	}
	diff := cmp.Diff(expected, targets)
	if diff != "" {
		t.Fatal(diff)
	}
}

func TestParseClassTable(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(classHtml(mechRows...)))
	if err != nil {
		t.Fatal(err)
	}
	target := course.Target{Dept: "機械工程學系", Class: "一年級"}

	records, err := parseClassTable(context.Background(), doc, target)
	if err != nil {
		t.Fatal(err)
	}
	expected := []course.RawRecord{
		{
			Serial:      "10001",
			Code:        "ME1001",
			Name:        "工程圖學",
			Instructor:  "王小明",
			Requirement: "必修",
			Credits:     "3",
			MeetingTime: "一34/E1-101",
			Criteria:    "(1)系:限機械工程學系。年:限一年級 | (2)系:限非電機工程學系",
			Dept:        "機械工程學系",
			Class:       "一年級",
		},
		{
			Serial:      "10002",
			Code:        "ME1002",
			Name:        "微積分",
			Instructor:  "李大華",
			Requirement: "選修",
			Credits:     "3",
			MeetingTime: "二BC/LS-201 四Z/LS-201",
			Criteria:    "無",
			Dept:        "機械工程學系",
			Class:       "一年級",
		},
	}
	diff := cmp.Diff(expected, records)
	if diff != "" {
		t.Fatal(diff)
	}

	empty, err := goquery.NewDocumentFromReader(strings.NewReader("<html><body><p>查無資料</p></body></html>"))
	if err != nil {
		t.Fatal(err)
	}
	_, err = parseClassTable(context.Background(), empty, target)
	require.ErrorIs(t, err, ErrNoTable)
}

func TestClassTableUrl(t *testing.T) {
	base, _ := url.Parse("https://cis.ncu.edu.tw")

	link, err := classTableUrl(base, "/Course/main/query/byUnion?openUnion=1")
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, "https://cis.ncu.edu.tw/Course/main/query/byUnion?openUnion=1&show=table", link)

	link, err = classTableUrl(base, "/Course/main/query/byUnion?openUnion=1&dept=%E8%B3%87&id=3")
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, "https://cis.ncu.edu.tw/Course/main/query/byUnion?openUnion=1&dept=%E8%B3%87&id=3&show=table", link)

	link, err = classTableUrl(base, "/Course/main/query/byUnion")
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, "https://cis.ncu.edu.tw/Course/main/query/byUnion?show=table", link)

	link, err = classTableUrl(base, "byUnion?show=table&openUnion=1")
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, "https://cis.ncu.edu.tw/byUnion?show=table&openUnion=1", link)
}

type catalogServer struct {
	*httptest.Server
	hits atomic.Int64
}

func newCatalogServer(t *testing.T) *catalogServer {
	s := &catalogServer{}
	mux := http.NewServeMux()
	mux.HandleFunc("/Course/main/query/byClass", func(w http.ResponseWriter, r *http.Request) {
		s.hits.Add(1)
		fmt.Fprint(w, directoryHtml)
	})
	mux.HandleFunc("/Course/main/query/byUnion", func(w http.ResponseWriter, r *http.Request) {
		s.hits.Add(1)
		switch r.URL.Query().Get("id") {
		case "10011":
			fmt.Fprint(w, classHtml(mechRows...))
		case "10012":
			fmt.Fprint(w, "<html><body>no courses</body></html>")
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
	s.Server = httptest.NewServer(mux)
	t.Cleanup(s.Close)
	return s
}

func newTestClient(t *testing.T, baseUrl string, cache *PageCache) *Client {
	client, err := NewClient(ClientOptions{
		BaseUrl:                 baseUrl,
		Timeout:                 time.Second * 5,
		Cache:                   cache,
		DisableCloudflareBypass: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	return client
}

func TestClient(t *testing.T) {
	server := newCatalogServer(t)
	cache, err := OpenPageCache("", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	defer cache.Close()

	client := newTestClient(t, server.URL, cache)
	ctx := context.Background()

	targets, err := client.Targets(ctx)
	if err != nil {
		t.Fatal(err)
	}
	require.Len(t, targets, 3)
	require.True(t, strings.HasPrefix(targets[0].URL, server.URL))

	records, err := client.Fetch(ctx, targets[0])
	if err != nil {
		t.Fatal(err)
	}
	require.Len(t, records, 2)
	require.Equal(t, "10001", records[0].Serial)

	records, err = client.Fetch(ctx, targets[1])
	require.Nil(t, err)
	require.Len(t, records, 0)

	_, err = client.Fetch(ctx, course.Target{
		Dept:  "不存在",
		Class: "不存在",
		URL:   server.URL + "/Course/main/query/byUnion?openUnion=1&id=404&show=table",
	})
	require.Error(t, err)

	hits := server.hits.Load()
	records, err = client.Fetch(ctx, targets[0])
	if err != nil {
		t.Fatal(err)
	}
	require.Len(t, records, 2)
	require.Equal(t, hits, server.hits.Load(), "second fetch should be served from the cache")
}

func TestPolitenessDelay(t *testing.T) {
	client := &Client{minDelay: time.Millisecond * 100, maxDelay: time.Millisecond * 300}
	for range 100 {
		d := client.politenessDelay()
		require.GreaterOrEqual(t, d, time.Millisecond*100)
		require.Less(t, d, time.Millisecond*300)
	}

	client = &Client{}
	require.Equal(t, time.Duration(0), client.politenessDelay())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, sleep(ctx, time.Hour), context.Canceled)
}

func TestClientHttpDump(t *testing.T) {
	previous := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})))
	defer slog.SetDefault(previous)

	server := newCatalogServer(t)
	dir := filepath.Join(t.TempDir(), "dump")
	output, err := restyutil.NewFilesystemOutput(dir)
	if err != nil {
		t.Fatal(err)
	}
	client, err := NewClient(ClientOptions{
		BaseUrl:                 server.URL,
		Instrument:              output,
		DisableCloudflareBypass: true,
	})
	if err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	targets, err := client.Targets(ctx)
	if err != nil {
		t.Fatal(err)
	}
	records, err := client.Fetch(ctx, targets[0])
	if err != nil {
		t.Fatal(err)
	}
	require.Len(t, records, 2)

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	require.Len(t, entries, 2)

	var dumps []string
	for _, e := range entries {
		contents, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			t.Fatal(err)
		}
		dumps = append(dumps, string(contents))
	}
	joined := strings.Join(dumps, "\n")
	require.Contains(t, joined, "# class directory")
	require.Contains(t, joined, "# 機械工程學系 / 一年級")
	require.Contains(t, joined, "工程圖學")
}
