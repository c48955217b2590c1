package htmlutil

import (
	"bytes"
	"context"
	"net/url"
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/net/html"
)

var tracer = otel.Tracer("ncucourse.lib.htmlutil")

func GetText(node *html.Node) string {
	var buffer bytes.Buffer
	getTextRecursive(node, &buffer)
	return buffer.String()
}

func getTextRecursive(node *html.Node, buffer *bytes.Buffer) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		buffer.WriteString(node.Data)
		return
	}
	child := node.FirstChild
	for child != nil {
		getTextRecursive(child, buffer)
		child = child.NextSibling
	}
}

func collectTextNodes(node *html.Node, out *[]string) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		text := strings.TrimSpace(node.Data)
		if text != "" {
			*out = append(*out, text)
		}
		return
	}
	child := node.FirstChild
	for child != nil {
		collectTextNodes(child, out)
		child = child.NextSibling
	}
}

// JoinedText trims every text node under the selection and joins the
// non-empty ones with sep.
func JoinedText(sel *goquery.Selection, sep string) string {
	var parts []string
	for _, n := range sel.Nodes {
		collectTextNodes(n, &parts)
	}
	return strings.Join(parts, sep)
}

// StrippedText is the selection's text with surrounding whitespace removed.
func StrippedText(sel *goquery.Selection) string {
	return JoinedText(sel, "")
}

var brRegex = regexp.MustCompile(`(?i)<br\s*/?>`)

// ReplaceLineBreaks replaces <br> tags in the inner html of sel with
// replacement and returns the resulting text.
func ReplaceLineBreaks(sel *goquery.Selection, replacement string) (string, error) {
	inner, err := sel.Html()
	if err != nil {
		return "", err
	}
	inner = brRegex.ReplaceAllString(inner, replacement)
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(inner))
	if err != nil {
		return "", err
	}
	return doc.Text(), nil
}

// FirstLine returns the text before the first <br> in sel.
func FirstLine(sel *goquery.Selection) (string, error) {
	inner, err := sel.Html()
	if err != nil {
		return "", err
	}
	loc := brRegex.FindStringIndex(inner)
	if loc != nil {
		inner = inner[:loc[0]]
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(inner))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(doc.Text()), nil
}

type Anchor struct {
	Name string
	Href string
}

var innerWhitespace = regexp.MustCompile(`\s\s+`)

func removeNonPrintable(s string) string {
	newStr := strings.Builder{}
	for _, c := range s {
		if unicode.IsPrint(c) {
			newStr.WriteRune(c)
		}
	}
	return newStr.String()
}

func GetAnchors(ctx context.Context, sel *goquery.Selection) []Anchor {
	ctx, span := tracer.Start(ctx, "GetAnchors")
	defer span.End()

	anchors := []Anchor{}
	for _, n := range sel.Nodes {
		href := ""
		for _, a := range n.Attr {
			if a.Key == "href" {
				href = a.Val
				break
			}
		}
		if href == "" {
			continue
		}

		link, err := url.Parse(href)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "got error while parsing url")
			continue
		}

		name := GetText(n)
		name = removeNonPrintable(name)
		name = strings.Trim(name, " \t\n")
		name = innerWhitespace.ReplaceAllString(name, " ")

		linkStr := link.String()
		anchors = append(anchors, Anchor{
			Name: name,
			Href: linkStr,
		})
		span.AddEvent("anchor", trace.WithAttributes(
			attribute.String("name", name),
			attribute.String("url", linkStr),
		))
	}

	return anchors
}
