// Package render converts model output into the forms the notes store
// understands: markdown into readable plain text, and plain text into
// HTML that Notes.app renders with line breaks intact.
package render

import (
	"bytes"
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var (
	reANSI       = regexp.MustCompile(`\x1b\[[0-9;]*m`)
	reMultiBlank = regexp.MustCompile(`\n{3,}`)
)

var markdown = goldmark.New(
	goldmark.WithExtensions(extension.Table),
)

// ToPlainText converts markdown to clean, readable plain text:
// uppercased headings with underlines, bullet points, pipe tables,
// prettified checkboxes, ANSI codes stripped, and stable blank line
// spacing.
func ToPlainText(mdText string) (string, error) {
	var htmlBuf bytes.Buffer
	if err := markdown.Convert([]byte(mdText), &htmlBuf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(&htmlBuf)
	if err != nil {
		return "", fmt.Errorf("parse rendered markdown: %w", err)
	}

	// Tables first, before list/heading rewrites touch their cells.
	doc.Find("table").Each(func(_ int, table *goquery.Selection) {
		pretty := pipeTable(table)
		table.ReplaceWithHtml("\n" + html.EscapeString(pretty) + "\n")
	})

	doc.Find("li").Each(func(_ int, li *goquery.Selection) {
		li.PrependHtml("• ")
		li.AppendHtml("\n")
	})

	doc.Find("h1, h2, h3, h4, h5, h6").Each(func(_ int, heading *goquery.Selection) {
		text := strings.TrimSpace(heading.Text())
		underline := strings.Repeat("-", len([]rune(text)))
		heading.SetText("\n" + strings.ToUpper(text) + "\n" + underline + "\n")
	})

	text := doc.Text()

	// Normalize markdown checkboxes that survived as literal text.
	replacer := strings.NewReplacer(
		"- [ ]", "☐",
		"[ ]", "☐",
		"- [x]", "☑",
		"[x]", "☑",
	)
	text = replacer.Replace(text)

	text = reANSI.ReplaceAllString(text, "")
	text = reMultiBlank.ReplaceAllString(text, "\n\n")

	return strings.TrimSpace(text), nil
}

// pipeTable renders an HTML table as a GitHub-style pipe table with
// columns padded to equal width.
func pipeTable(table *goquery.Selection) string {
	var headers []string
	table.Find("thead th").Each(func(_ int, th *goquery.Selection) {
		headers = append(headers, strings.TrimSpace(th.Text()))
	})

	var rows [][]string
	table.Find("tbody tr").Each(func(_ int, tr *goquery.Selection) {
		var cells []string
		tr.Find("td, th").Each(func(_ int, td *goquery.Selection) {
			cells = append(cells, strings.TrimSpace(td.Text()))
		})
		if len(cells) > 0 {
			rows = append(rows, cells)
		}
	})

	// Fall back to the first row as headers when there is no thead.
	if len(headers) == 0 && len(rows) > 0 {
		headers = rows[0]
		rows = rows[1:]
	}
	if len(headers) == 0 {
		return ""
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	var sb strings.Builder
	writeRow := func(cells []string) {
		sb.WriteString("|")
		for i, w := range widths {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			sb.WriteString(" " + cell + strings.Repeat(" ", w-len(cell)) + " |")
		}
		sb.WriteString("\n")
	}

	writeRow(headers)
	sb.WriteString("|")
	for _, w := range widths {
		sb.WriteString(strings.Repeat("-", w+2) + "|")
	}
	sb.WriteString("\n")
	for _, row := range rows {
		writeRow(row)
	}

	return strings.TrimRight(sb.String(), "\n")
}

// WrapHTML wraps plain text in a <pre> block that preserves line breaks
// and spacing in Apple Notes, escaping entities to avoid accidental tag
// interpretation.
func WrapHTML(plainText string) string {
	escaped := html.EscapeString(plainText)
	return `<pre style="white-space: pre-wrap; ` +
		`font-family: -apple-system, BlinkMacSystemFont, ` +
		`'Helvetica Neue', Helvetica, Arial, sans-serif; ` +
		`font-size: 14px; line-height: 1.4;">` +
		escaped +
		`</pre>`
}
