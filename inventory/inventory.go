package inventory

import (
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/seo-optimizer/auditor/crawler"
)

// PreviewLength is how many characters of a division's text are kept.
const PreviewLength = 100

// Attributes holds element attributes. Space-separated token lists such as
// class and rel are split into []string, everything else is a string.
type Attributes map[string]any

// Heading is one h1-h6 element.
type Heading struct {
	Index             int        `json:"index"`
	Content           string     `json:"content"`
	Attributes        Attributes `json:"attributes"`
	Position          int        `json:"position"`
	DepthLevel        int        `json:"depthLevel"`
	CharacterCount    int        `json:"characterCount"`
	HasNestedElements bool       `json:"hasNestedElements"`
	ParentTag         string     `json:"parentTag,omitempty"`
}

// Paragraph is one p element, empty ones included.
type Paragraph struct {
	Index          int        `json:"index"`
	Content        string     `json:"content"`
	Attributes     Attributes `json:"attributes"`
	WordCount      int        `json:"wordCount"`
	CharacterCount int        `json:"characterCount"`
	Position       int        `json:"position"`
	ParentTag      string     `json:"parentTag,omitempty"`
	HasLinks       bool       `json:"hasLinks"`
	HasFormatting  bool       `json:"hasFormatting"`
	IsEmpty        bool       `json:"isEmpty"`
}

// Division is one div element.
type Division struct {
	Index             int        `json:"index"`
	ContentPreview    string     `json:"contentPreview"`
	FullContentLength int        `json:"fullContentLength"`
	Attributes        Attributes `json:"attributes"`
	ChildElements     []string   `json:"childElements"`
	TotalChildCount   int        `json:"totalChildCount"`
	Position          int        `json:"position"`
	NestingLevel      int        `json:"nestingLevel"`
	ParentTag         string     `json:"parentTag,omitempty"`
	HasID             bool       `json:"hasId"`
	HasClass          bool       `json:"hasClass"`
	IsEmpty           bool       `json:"isEmpty"`
}

type ClassCount struct {
	Class string `json:"class"`
	Count int    `json:"count"`
}

type Summary struct {
	HeadingCounts          map[string]int `json:"headingCounts"`
	TotalHeadings          int            `json:"totalHeadings"`
	TotalParagraphs        int            `json:"totalParagraphs"`
	TotalDivisions         int            `json:"totalDivisions"`
	TotalParagraphWords    int            `json:"totalParagraphWords"`
	AverageParagraphLength float64        `json:"averageParagraphLength"`
	MaxNestingLevel        int            `json:"maxNestingLevel"`
	MostCommonClasses      []ClassCount   `json:"mostCommonClasses"`
	ContentDensity         string         `json:"contentDensity"`
	StructuralComplexity   string         `json:"structuralComplexity"`
}

// Inventory catalogs the structural elements of a page.
type Inventory struct {
	Headings      map[string][]Heading `json:"headings"`
	Paragraphs    []Paragraph          `json:"paragraphs"`
	Divisions     []Division           `json:"divisions"`
	Summary       Summary              `json:"summary"`
	TotalElements int                  `json:"totalElements"`
}

// Extract walks doc and records every heading, paragraph and division in
// document order.
func Extract(doc *goquery.Document) *Inventory {
	inv := &Inventory{
		Headings:   extractHeadings(doc),
		Paragraphs: extractParagraphs(doc),
		Divisions:  extractDivisions(doc),
	}
	inv.Summary = summarize(inv)
	inv.TotalElements = inv.Summary.TotalHeadings + inv.Summary.TotalParagraphs + inv.Summary.TotalDivisions
	return inv
}

func extractHeadings(doc *goquery.Document) map[string][]Heading {
	headings := make(map[string][]Heading, len(crawler.HeadingLevels))
	for _, level := range crawler.HeadingLevels {
		headings[level] = extractHeading(doc, level)
	}
	return headings
}

func extractHeading(doc *goquery.Document, level string) []Heading {
	items := make([]Heading, 0)
	doc.Find(level).Each(func(i int, s *goquery.Selection) {
		n := s.Nodes[0]
		text := strings.TrimSpace(s.Text())
		items = append(items, Heading{
			Index:             i + 1,
			Content:           text,
			Attributes:        attributes(n),
			Position:          siblingPosition(n),
			DepthLevel:        depth(n),
			CharacterCount:    utf8.RuneCountInString(text),
			HasNestedElements: s.Children().Length() > 0,
			ParentTag:         parentTag(n),
		})
	})
	return items
}

func extractParagraphs(doc *goquery.Document) []Paragraph {
	items := make([]Paragraph, 0)
	doc.Find("p").Each(func(i int, s *goquery.Selection) {
		n := s.Nodes[0]
		text := strings.TrimSpace(s.Text())
		items = append(items, Paragraph{
			Index:          i + 1,
			Content:        text,
			Attributes:     attributes(n),
			WordCount:      len(strings.Fields(text)),
			CharacterCount: utf8.RuneCountInString(text),
			Position:       siblingPosition(n),
			ParentTag:      parentTag(n),
			HasLinks:       s.Find("a").Length() > 0,
			HasFormatting:  s.Find("strong, em, b, i, span").Length() > 0,
			IsEmpty:        text == "",
		})
	})
	return items
}

func extractDivisions(doc *goquery.Document) []Division {
	items := make([]Division, 0)
	doc.Find("div").Each(func(i int, s *goquery.Selection) {
		n := s.Nodes[0]
		text := strings.TrimSpace(s.Text())

		seen := make(map[string]bool)
		children := make([]string, 0)
		total := 0
		s.Find("*").Each(func(_ int, c *goquery.Selection) {
			total++
			name := goquery.NodeName(c)
			if !seen[name] {
				seen[name] = true
				children = append(children, name)
			}
		})
		sort.Strings(children)

		_, hasClass := s.Attr("class")
		id, _ := s.Attr("id")
		items = append(items, Division{
			Index:             i + 1,
			ContentPreview:    preview(text, PreviewLength),
			FullContentLength: utf8.RuneCountInString(text),
			Attributes:        attributes(n),
			ChildElements:     children,
			TotalChildCount:   total,
			Position:          siblingPosition(n),
			NestingLevel:      depth(n),
			ParentTag:         parentTag(n),
			HasID:             id != "",
			HasClass:          hasClass && len(strings.Fields(s.AttrOr("class", ""))) > 0,
			IsEmpty:           text == "",
		})
	})
	return items
}

func summarize(inv *Inventory) Summary {
	sum := Summary{
		HeadingCounts:   make(map[string]int, len(inv.Headings)),
		TotalParagraphs: len(inv.Paragraphs),
		TotalDivisions:  len(inv.Divisions),
	}
	for _, level := range crawler.HeadingLevels {
		n := len(inv.Headings[level])
		sum.HeadingCounts[level] = n
		sum.TotalHeadings += n
	}

	for _, p := range inv.Paragraphs {
		sum.TotalParagraphWords += p.WordCount
	}
	if len(inv.Paragraphs) > 0 {
		avg := float64(sum.TotalParagraphWords) / float64(len(inv.Paragraphs))
		sum.AverageParagraphLength = math.RoundToEven(avg*10) / 10
	}

	for _, d := range inv.Divisions {
		if d.NestingLevel > sum.MaxNestingLevel {
			sum.MaxNestingLevel = d.NestingLevel
		}
	}

	classes := make([]ClassCount, 0)
	index := make(map[string]int)
	count := func(attrs Attributes) {
		list, ok := attrs["class"].([]string)
		if !ok {
			return
		}
		for _, c := range list {
			if i, found := index[c]; found {
				classes[i].Count++
				continue
			}
			index[c] = len(classes)
			classes = append(classes, ClassCount{Class: c, Count: 1})
		}
	}
	for _, p := range inv.Paragraphs {
		count(p.Attributes)
	}
	for _, d := range inv.Divisions {
		count(d.Attributes)
	}
	sort.SliceStable(classes, func(i, j int) bool { return classes[i].Count > classes[j].Count })
	if len(classes) > 5 {
		classes = classes[:5]
	}
	sum.MostCommonClasses = classes

	switch {
	case sum.TotalParagraphWords > 1000:
		sum.ContentDensity = "high"
	case sum.TotalParagraphWords > 300:
		sum.ContentDensity = "medium"
	default:
		sum.ContentDensity = "low"
	}
	switch {
	case sum.MaxNestingLevel > 5:
		sum.StructuralComplexity = "high"
	case sum.MaxNestingLevel > 2:
		sum.StructuralComplexity = "medium"
	default:
		sum.StructuralComplexity = "low"
	}
	return sum
}

// TagSelection is the result of extracting only some tag types.
type TagSelection struct {
	RequestedTags []string             `json:"requestedTags"`
	Headings      map[string][]Heading `json:"headings,omitempty"`
	Paragraphs    []Paragraph          `json:"paragraphs,omitempty"`
	Divisions     []Division           `json:"divisions,omitempty"`
	TotalElements int                  `json:"totalElements"`
	Summary       string               `json:"summary"`
}

// ExtractTags records only the requested tag types. Recognised tags are
// h1-h6, p and div; anything else is ignored.
func ExtractTags(doc *goquery.Document, tags []string) *TagSelection {
	sel := &TagSelection{RequestedTags: make([]string, 0, len(tags))}
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" {
			continue
		}
		sel.RequestedTags = append(sel.RequestedTags, tag)

		switch tag {
		case "h1", "h2", "h3", "h4", "h5", "h6":
			if sel.Headings == nil {
				sel.Headings = make(map[string][]Heading)
			}
			if _, done := sel.Headings[tag]; !done {
				sel.Headings[tag] = extractHeading(doc, tag)
				sel.TotalElements += len(sel.Headings[tag])
			}
		case "p":
			if sel.Paragraphs == nil {
				sel.Paragraphs = extractParagraphs(doc)
				sel.TotalElements += len(sel.Paragraphs)
			}
		case "div":
			if sel.Divisions == nil {
				sel.Divisions = extractDivisions(doc)
				sel.TotalElements += len(sel.Divisions)
			}
		}
	}
	sel.Summary = summaryLine(sel.TotalElements, len(sel.RequestedTags))
	return sel
}

// ParseTagList splits a comma separated tag list such as "h1,h2,p".
func ParseTagList(list string) []string {
	parts := strings.Split(list, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
			tags = append(tags, p)
		}
	}
	return tags
}

var multiValued = map[string]bool{
	"class":          true,
	"rel":            true,
	"rev":            true,
	"headers":        true,
	"accesskey":      true,
	"accept-charset": true,
}

func attributes(n *html.Node) Attributes {
	attrs := make(Attributes, len(n.Attr))
	for _, a := range n.Attr {
		if multiValued[a.Key] {
			attrs[a.Key] = strings.Fields(a.Val)
			continue
		}
		attrs[a.Key] = a.Val
	}
	return attrs
}

// siblingPosition is the 1-based index of n among its parent's element
// children, or 0 when n has no element parent.
func siblingPosition(n *html.Node) int {
	if n.Parent == nil || n.Parent.Type != html.ElementNode {
		return 0
	}
	pos := 0
	for c := n.Parent.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			pos++
		}
		if c == n {
			return pos
		}
	}
	return 0
}

func depth(n *html.Node) int {
	d := 0
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Type == html.ElementNode {
			d++
		}
	}
	return d
}

func parentTag(n *html.Node) string {
	if n.Parent != nil && n.Parent.Type == html.ElementNode {
		return n.Parent.Data
	}
	return ""
}

func preview(text string, limit int) string {
	if utf8.RuneCountInString(text) <= limit {
		return text
	}
	return string([]rune(text)[:limit]) + "..."
}
