package notifier

import (
	"bytes"
	"fmt"
	"html"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

const previewLength = 280

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// RenderedArticle is an article body prepared for an outbound message.
type RenderedArticle struct {
	HTML    string
	Text    string
	Preview string
}

// RenderArticle converts the Markdown body to HTML and extracts its plain text.
// Raw HTML in the body is not passed through.
func RenderArticle(title, body string) (RenderedArticle, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(body), &buf); err != nil {
		return RenderedArticle{}, fmt.Errorf("render markdown: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		return RenderedArticle{}, fmt.Errorf("parse rendered html: %w", err)
	}

	var paragraphs []string
	doc.Find("p, li, h1, h2, h3, h4, h5, h6, pre, blockquote").Each(func(_ int, s *goquery.Selection) {
		if s.ParentsFiltered("li, blockquote").Length() > 0 {
			return
		}
		if t := strings.Join(strings.Fields(s.Text()), " "); t != "" {
			paragraphs = append(paragraphs, t)
		}
	})
	text := strings.Join(paragraphs, "\n\n")

	page := fmt.Sprintf("<html><body><h1>%s</h1>\n%s</body></html>", html.EscapeString(title), buf.String())
	return RenderedArticle{
		HTML:    page,
		Text:    text,
		Preview: truncate(strings.Join(strings.Fields(text), " "), previewLength, "..."),
	}, nil
}
