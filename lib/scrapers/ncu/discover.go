package ncu

import (
	"bytes"
	"context"
	"log/slog"
	"net/url"
	"strings"

	"ncucourse/lib/course"
	"ncucourse/lib/htmlutil"
	"ncucourse/lib/restyutil"
	"ncucourse/lib/textutil"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const classLinkMarker = "openUnion"

// Targets fetches the class directory and returns one target per class
// listing, in page order.
func (c *Client) Targets(ctx context.Context) ([]course.Target, error) {
	ctx, span := tracer.Start(ctx, "Targets")
	defer span.End()

	entry, err := c.BaseUrl.Parse(c.entryPath)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid entry path")
		return nil, err
	}
	body, err := c.get(restyutil.WithLabel(ctx, "class directory"), entry.String())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch directory")
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(body))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse directory html")
		return nil, err
	}

	targets := parseDirectory(ctx, doc, c.BaseUrl)
	span.SetAttributes(attribute.Int("targets", len(targets)))
	slog.InfoContext(ctx, "discovered class listings", "count", len(targets))
	return targets, nil
}

func parseDirectory(ctx context.Context, doc *goquery.Document, base *url.URL) []course.Target {
	var targets []course.Target
	doc.Find("ul[id^=dept]").Each(func(_ int, ul *goquery.Selection) {
		parent := ul.Closest("li")
		if parent.Length() == 0 {
			return
		}
		deptLink := parent.Find("a").First()
		if deptLink.Length() == 0 {
			return
		}
		dept := textutil.StripTrailingCount(htmlutil.StrippedText(deptLink))

		for _, anchor := range htmlutil.GetAnchors(ctx, ul.Find("a[href]")) {
			if !strings.Contains(anchor.Href, classLinkMarker) {
				continue
			}
			link, err := classTableUrl(base, anchor.Href)
			if err != nil {
				slog.WarnContext(ctx, "skipping class link", "href", anchor.Href, "err", err)
				continue
			}
			targets = append(targets, course.Target{
				Dept:  dept,
				Class: textutil.StripTrailingCount(anchor.Name),
				URL:   link,
			})
		}
	})
	return targets
}

// classTableUrl resolves href against base and makes sure the listing is
// rendered as a table.
func classTableUrl(base *url.URL, href string) (string, error) {
	link, err := base.Parse(href)
	if err != nil {
		return "", err
	}
	switch {
	case strings.Contains(link.RawQuery, "show=table"):
	case link.RawQuery == "":
		link.RawQuery = "show=table"
	default:
		link.RawQuery += "&show=table"
	}
	return link.String(), nil
}
