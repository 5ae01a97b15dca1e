package terms

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"golang.org/x/net/html"
)

const (
	maxDescriptionRunes = 1000
	ellipsis            = "..."

	noDate   = "Fecha no disponible"
	noRating = "Sin calificación"
)

// ProcessDescription turns an HTML description into translated plain text,
// capped at 1000 runes (997 plus an ellipsis).
func (t *Translator) ProcessDescription(description string) string {
	if description == "" {
		return ""
	}
	text := t.TranslateText(StripHTML(description))
	runes := []rune(text)
	if len(runes) > maxDescriptionRunes {
		return string(runes[:maxDescriptionRunes-len(ellipsis)]) + ellipsis
	}
	return text
}

// StripHTML extracts the text content of an HTML fragment.
// Block elements become spaces and runs of whitespace collapse to one.
func StripHTML(s string) string {
	if s == "" {
		return ""
	}
	doc, err := html.Parse(strings.NewReader(s))
	if err != nil {
		s = htmlTagRegex.ReplaceAllString(s, " ")
		return strings.TrimSpace(collapseWhitespace(html.UnescapeString(s)))
	}

	var buf strings.Builder
	extractText(doc, &buf)
	return strings.TrimSpace(collapseWhitespace(buf.String()))
}

func extractText(n *html.Node, buf *strings.Builder) {
	switch n.Type {
	case html.TextNode:
		buf.WriteString(n.Data)
	case html.ElementNode:
		if n.Data == "script" || n.Data == "style" {
			return
		}
		if isBlock(n.Data) || n.Data == "br" {
			buf.WriteByte(' ')
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		extractText(c, buf)
	}

	if n.Type == html.ElementNode && isBlock(n.Data) {
		buf.WriteByte(' ')
	}
}

func isBlock(tag string) bool {
	switch tag {
	case "p", "div", "li", "ul", "ol", "h1", "h2", "h3", "h4", "h5", "h6", "blockquote":
		return true
	}
	return false
}

var (
	htmlTagRegex    = regexp.MustCompile(`<[^>]*>`)
	whitespaceRegex = regexp.MustCompile(`\s+`)
)

func collapseWhitespace(s string) string {
	return whitespaceRegex.ReplaceAllString(s, " ")
}

// DescriptionMarkdown converts an HTML description to Markdown.
// Conversion failures return the input unchanged.
func DescriptionMarkdown(description string) string {
	if strings.TrimSpace(description) == "" {
		return ""
	}
	md, err := htmltomarkdown.ConvertString(description)
	if err != nil {
		return description
	}
	return strings.TrimSpace(md)
}

// RatingLabel describes a 0-5 rating in Spanish. Nil and zero ratings have no label.
func RatingLabel(rating *float64) string {
	if rating == nil || *rating == 0 {
		return noRating
	}
	switch r := *rating; {
	case r >= 4.5:
		return "Excelente"
	case r >= 4.0:
		return "Muy bueno"
	case r >= 3.5:
		return "Bueno"
	case r >= 3.0:
		return "Regular"
	case r >= 2.0:
		return "Malo"
	default:
		return "Muy malo"
	}
}

// MetacriticBand buckets a Metacritic score for display.
func MetacriticBand(score *int) string {
	if score == nil {
		return ""
	}
	switch s := *score; {
	case s >= 80:
		return "high"
	case s >= 70:
		return "mid"
	case s >= 50:
		return "low"
	default:
		return "poor"
	}
}

var spanishMonths = [...]string{
	"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
}

// FormatDateSpanish renders an ISO date as "17 de septiembre de 2013".
// Missing or unparseable dates read "Fecha no disponible".
func FormatDateSpanish(date string) string {
	date = strings.TrimSpace(date)
	if date == "" {
		return noDate
	}
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		if t, err = time.Parse(time.RFC3339, date); err != nil {
			return noDate
		}
	}
	return fmt.Sprintf("%d de %s de %d", t.Day(), spanishMonths[t.Month()-1], t.Year())
}
