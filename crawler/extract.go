package crawler

import (
	"bytes"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
	"golang.org/x/net/html"
)

// Elements whose text never reaches the reader.
var hiddenElements = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"template": true,
}

// Block-level elements get a separating space so their text does not fuse
// with the neighbouring block.
var blockElements = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true, "br": true,
	"dd": true, "div": true, "dl": true, "dt": true, "fieldset": true, "figcaption": true,
	"figure": true, "footer": true, "form": true, "h1": true, "h2": true, "h3": true,
	"h4": true, "h5": true, "h6": true, "header": true, "hr": true, "li": true,
	"main": true, "nav": true, "ol": true, "p": true, "pre": true, "section": true,
	"table": true, "td": true, "th": true, "tr": true, "ul": true, "title": true,
}

// ParseDocument parses raw HTML into a queryable document.
func ParseDocument(raw []byte) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return nil, &ParseError{Err: err}
	}
	return doc, nil
}

// Snapshot parses a fetched response into a PageSnapshot.
func Snapshot(resp *Response) (*PageSnapshot, error) {
	doc, err := ParseDocument(resp.Body)
	if err != nil {
		if pe, ok := err.(*ParseError); ok {
			pe.URL = resp.URL
		}
		return nil, err
	}
	snap, err := Extract(doc, resp.URL)
	if err != nil {
		return nil, err
	}
	snap.FinalURL = resp.FinalURL
	snap.StatusCode = resp.StatusCode
	snap.RawHTML = string(resp.Body)
	snap.MainContent = mainContent(resp.Body, resp.URL)
	return snap, nil
}

// Extract builds the content fields of a snapshot from a parsed document.
// Relative image and link URLs are resolved against baseURL.
func Extract(doc *goquery.Document, baseURL string) (*PageSnapshot, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, &ParseError{URL: baseURL, Err: err}
	}

	text := VisibleText(doc.Selection)
	snap := &PageSnapshot{
		URL:             baseURL,
		Title:           strings.TrimSpace(doc.Find("title").First().Text()),
		MetaDescription: metaDescription(doc),
		Headings:        extractHeadings(doc),
		Paragraphs:      extractParagraphs(doc),
		Images:          extractImages(doc, base),
		Links:           extractLinks(doc, base),
		TextContent:     text,
		WordCount:       len(strings.Fields(text)),
		FetchedAt:       time.Now().UTC(),
	}
	if html, err := doc.Html(); err == nil {
		snap.RawHTML = html
	}
	return snap, nil
}

func metaDescription(doc *goquery.Document) string {
	content, _ := doc.Find(`meta[name="description"]`).First().Attr("content")
	return strings.TrimSpace(content)
}

func extractHeadings(doc *goquery.Document) map[string][]string {
	headings := make(map[string][]string, len(HeadingLevels))
	for _, level := range HeadingLevels {
		texts := make([]string, 0)
		doc.Find(level).Each(func(_ int, s *goquery.Selection) {
			texts = append(texts, strings.TrimSpace(s.Text()))
		})
		headings[level] = texts
	}
	return headings
}

func extractParagraphs(doc *goquery.Document) []string {
	paragraphs := make([]string, 0)
	doc.Find("p").Each(func(_ int, s *goquery.Selection) {
		if text := strings.TrimSpace(s.Text()); text != "" {
			paragraphs = append(paragraphs, text)
		}
	})
	return paragraphs
}

func extractImages(doc *goquery.Document, base *url.URL) []Image {
	images := make([]Image, 0)
	doc.Find("img").Each(func(_ int, s *goquery.Selection) {
		src, _ := s.Attr("src")
		if strings.TrimSpace(src) == "" {
			return
		}
		alt, _ := s.Attr("alt")
		title, _ := s.Attr("title")
		width, _ := s.Attr("width")
		height, _ := s.Attr("height")
		images = append(images, Image{
			Src:    resolve(base, src),
			Alt:    alt,
			Title:  title,
			Width:  width,
			Height: height,
		})
	})
	return images
}

func extractLinks(doc *goquery.Document, base *url.URL) []Link {
	links := make([]Link, 0)
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if href != "" {
			href = resolve(base, href)
		}
		title, _ := s.Attr("title")
		links = append(links, Link{
			Href:  href,
			Text:  strings.TrimSpace(s.Text()),
			Title: title,
		})
	})
	return links
}

// resolve turns ref into an absolute URL. Unparseable references are kept as written.
func resolve(base *url.URL, ref string) string {
	ref = strings.TrimSpace(ref)
	u, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	if u.IsAbs() && u.Host != "" {
		return u.String()
	}
	return base.ResolveReference(u).String()
}

// VisibleText returns the text of the selection with script and style
// content removed.
func VisibleText(sel *goquery.Selection) string {
	var b strings.Builder
	for _, n := range sel.Nodes {
		writeText(&b, n)
	}
	return b.String()
}

func writeText(b *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(n.Data)
		return
	case html.ElementNode:
		if hiddenElements[n.Data] {
			return
		}
	case html.CommentNode, html.DoctypeNode:
		return
	}

	block := n.Type == html.ElementNode && blockElements[n.Data]
	if block {
		b.WriteByte(' ')
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeText(b, c)
	}
	if block {
		b.WriteByte(' ')
	}
}

func mainContent(raw []byte, pageURL string) *Article {
	u, err := url.Parse(pageURL)
	if err != nil {
		return nil
	}
	article, err := readability.FromReader(bytes.NewReader(raw), u)
	if err != nil || strings.TrimSpace(article.Content) == "" {
		return nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(article.Content))
	if err != nil {
		return nil
	}
	return &Article{
		Title:     strings.TrimSpace(article.Title),
		Excerpt:   strings.TrimSpace(article.Excerpt),
		WordCount: len(strings.Fields(VisibleText(doc.Selection))),
	}
}

func trimmed(s string) string { return strings.TrimSpace(s) }
