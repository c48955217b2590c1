package restyutil

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strings"

	"github.com/go-resty/resty/v2"
)

// MaxDumpBodySize caps each body written to a dump, catalog listings are
// large html pages and only their head is usually interesting.
const MaxDumpBodySize = 32 << 10

type labelKey struct{}

// WithLabel tags the requests made with ctx, the label is written at the
// top of their dumps and logged next to them.
func WithLabel(ctx context.Context, label string) context.Context {
	return context.WithValue(ctx, labelKey{}, label)
}

func labelFromContext(ctx context.Context) string {
	label, _ := ctx.Value(labelKey{}).(string)
	return label
}

func writeHeaders(out *strings.Builder, headers http.Header) {
	keys := make([]string, 0, len(headers))
	for k := range headers {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		for _, v := range headers[k] {
			fmt.Fprintf(out, "%s: %s\n", k, v)
		}
	}
}

func writeBody(out *strings.Builder, body []byte) {
	if len(body) <= MaxDumpBodySize {
		out.Write(body)
		return
	}
	out.Write(body[:MaxDumpBodySize])
	fmt.Fprintf(out, "\n... (%d bytes truncated)", len(body)-MaxDumpBodySize)
}

func requestBody(req *http.Request) ([]byte, error) {
	if req.Body == nil || req.Body == http.NoBody || req.GetBody == nil {
		return nil, nil
	}
	body, err := req.GetBody()
	if err != nil {
		return nil, err
	}
	if body == nil {
		return nil, nil
	}
	defer body.Close()
	return io.ReadAll(body)
}

func formatHttpMessage(label string, res *resty.Response) string {
	var out strings.Builder
	if label != "" {
		fmt.Fprintf(&out, "# %s\n\n", label)
	}

	out.WriteString("---- REQUEST ----\n\n")
	fmt.Fprintf(&out, "%s %s\n\n", res.Request.Method, res.Request.URL)
	if raw := res.Request.RawRequest; raw != nil {
		writeHeaders(&out, raw.Header)
		body, err := requestBody(raw)
		if err != nil {
			fmt.Fprintf(&out, "\nfailed to read request body: %s\n", err.Error())
		} else if len(body) > 0 {
			out.WriteString("\n")
			writeBody(&out, body)
			out.WriteString("\n")
		}
	}

	out.WriteString("\n---- RESPONSE ----\n\n")
	responseUrl := res.Request.URL
	if res.RawResponse != nil {
		redirected, err := res.RawResponse.Location()
		if err == nil {
			responseUrl = redirected.String()
		}
	}
	fmt.Fprintf(&out, "%d %s\n\n", res.StatusCode(), responseUrl)
	writeHeaders(&out, res.Header())
	out.WriteString("\n")
	writeBody(&out, res.Body())

	return out.String()
}
