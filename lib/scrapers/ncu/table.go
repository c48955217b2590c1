package ncu

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"

	"ncucourse/lib/course"
	"ncucourse/lib/htmlutil"
	"ncucourse/lib/restyutil"
	"ncucourse/lib/timeblock"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// ErrNoTable is returned when a class page has no course table, which
// happens for classes without offerings this term.
var ErrNoTable = errors.New("no course table on page")

// column indices of the course table
const (
	colSerial      = 1
	colCode        = 2
	colName        = 4
	colInstructor  = 5
	colRequirement = 6
	colCredits     = 7
	colFirstDay    = 10
	colCriteria    = 17
	minColumns     = colCriteria + 1
)

const criteriaLabel = "分發條件"

// Fetch downloads a class listing and extracts its course rows.
func (c *Client) Fetch(ctx context.Context, target course.Target) ([]course.RawRecord, error) {
	ctx, span := tracer.Start(ctx, "Fetch")
	defer span.End()
	span.SetAttributes(
		attribute.String("dept", target.Dept),
		attribute.String("class", target.Class),
	)

	body, err := c.get(restyutil.WithLabel(ctx, target.Dept+" / "+target.Class), target.URL)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch class page")
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(body))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse class page html")
		return nil, err
	}

	records, err := parseClassTable(ctx, doc, target)
	if errors.Is(err, ErrNoTable) {
		slog.DebugContext(ctx, "class page has no course table", "url", target.URL)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("records", len(records)))
	return records, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func parseClassTable(ctx context.Context, doc *goquery.Document, target course.Target) ([]course.RawRecord, error) {
	table := doc.Find("table.t4").First()
	if table.Length() == 0 {
		return nil, ErrNoTable
	}

	records := []course.RawRecord{}
	table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		cells := tr.Find("td")
		if cells.Length() < minColumns {
			return
		}
		serial := htmlutil.StrippedText(cells.Eq(colSerial))
		if !isDigits(serial) {
			return
		}

		record, err := parseRow(cells, target)
		if err != nil {
			slog.WarnContext(ctx, "skipping malformed course row", "serial", serial, "err", err)
			return
		}
		record.Serial = serial
		records = append(records, record)
	})
	return records, nil
}

func parseRow(cells *goquery.Selection, target course.Target) (course.RawRecord, error) {
	name, err := htmlutil.FirstLine(cells.Eq(colName))
	if err != nil {
		return course.RawRecord{}, err
	}

	var timeParts []string
	for i, glyph := range timeblock.DisplayOrder {
		text := htmlutil.JoinedText(cells.Eq(colFirstDay+i), " ")
		if text == "" {
			continue
		}
		timeParts = append(timeParts, string(glyph)+strings.ReplaceAll(text, " ", "/"))
	}

	criteria, err := htmlutil.ReplaceLineBreaks(cells.Eq(colCriteria), " | ")
	if err != nil {
		return course.RawRecord{}, err
	}
	criteria = strings.TrimSpace(strings.ReplaceAll(criteria, criteriaLabel, ""))
	if strings.HasPrefix(criteria, "|") {
		criteria = strings.TrimSpace(criteria[1:])
	}

	return course.RawRecord{
		Code:        htmlutil.StrippedText(cells.Eq(colCode)),
		Name:        name,
		Instructor:  htmlutil.StrippedText(cells.Eq(colInstructor)),
		Requirement: htmlutil.StrippedText(cells.Eq(colRequirement)),
		Credits:     htmlutil.StrippedText(cells.Eq(colCredits)),
		MeetingTime: strings.Join(timeParts, " "),
		Criteria:    criteria,
		Dept:        target.Dept,
		Class:       target.Class,
	}, nil
}
