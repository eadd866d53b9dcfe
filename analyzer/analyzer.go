package analyzer

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/seo-optimizer/auditor/crawler"
	"github.com/seo-optimizer/auditor/keywords"
)

// Analyzer scores pages against a fixed rule table. It keeps no state
// between calls and is safe for concurrent use.
type Analyzer struct {
	rules Rules
}

// New creates an Analyzer for the given rules.
func New(rules Rules) *Analyzer {
	return &Analyzer{rules: rules}
}

func (a *Analyzer) Rules() Rules { return a.rules }

// Analyze runs every check against snap and its ranked keywords.
func (a *Analyzer) Analyze(snap *crawler.PageSnapshot, kws []keywords.Entry) *Result {
	return Analyze(snap, kws, a.rules)
}

// check is one independent rule. It records its sub-result and reports
// through the accumulator.
type check func(snap *crawler.PageSnapshot, kws []keywords.Entry, r Rules, acc *accumulator)

var checks = []check{
	checkTitle,
	checkMetaDescription,
	checkH1,
	checkHierarchy,
	checkImages,
	checkParagraphs,
	checkKeywordDensity,
	checkInternalLinks,
	checkContentLength,
}

type accumulator struct {
	res *Result
}

func (acc *accumulator) pass() {
	acc.res.TotalChecks++
	acc.res.PassedChecks++
}

func (acc *accumulator) fail(issue string, recommendations ...string) {
	acc.res.TotalChecks++
	acc.res.Issues = append(acc.res.Issues, issue)
	acc.res.Recommendations = append(acc.res.Recommendations, recommendations...)
}

// Analyze runs every check in order and derives the score. Identical inputs
// always give an identical Result.
func Analyze(snap *crawler.PageSnapshot, kws []keywords.Entry, rules Rules) *Result {
	res := &Result{
		Issues:          make([]string, 0),
		Recommendations: make([]string, 0),
	}
	if snap == nil {
		return res
	}
	res.URL = snap.URL

	acc := &accumulator{res: res}
	for _, c := range checks {
		c(snap, kws, rules, acc)
	}

	if res.TotalChecks > 0 {
		res.SEOScore = int(math.RoundToEven(float64(res.PassedChecks) / float64(res.TotalChecks) * 100))
	}
	return res
}

func checkTitle(snap *crawler.PageSnapshot, _ []keywords.Entry, r Rules, acc *accumulator) {
	d := textDetail(snap.Title, r.TitleMin, r.TitleMax)
	switch {
	case d.Status == StatusMissing:
		acc.fail("Title tag missing", "Add a meaningful title tag to the page")
	case d.Length < r.TitleMin:
		acc.fail(fmt.Sprintf("Title too short (%d characters)", d.Length),
			fmt.Sprintf("Title should be at least %d characters", r.TitleMin))
	case d.Length > r.TitleMax:
		acc.fail(fmt.Sprintf("Title too long (%d characters)", d.Length),
			fmt.Sprintf("Title should be at most %d characters", r.TitleMax))
	default:
		d.Status, d.Passed = StatusOptimal, true
		acc.pass()
	}
	acc.res.Details.Title = d
}

func checkMetaDescription(snap *crawler.PageSnapshot, _ []keywords.Entry, r Rules, acc *accumulator) {
	d := textDetail(snap.MetaDescription, r.MetaDescriptionMin, r.MetaDescriptionMax)
	switch {
	case d.Status == StatusMissing:
		acc.fail("Meta description missing", "Add meta description to the page")
	case d.Length < r.MetaDescriptionMin:
		acc.fail(fmt.Sprintf("Meta description too short (%d characters)", d.Length),
			fmt.Sprintf("Meta description should be at least %d characters", r.MetaDescriptionMin))
	case d.Length > r.MetaDescriptionMax:
		acc.fail(fmt.Sprintf("Meta description too long (%d characters)", d.Length),
			fmt.Sprintf("Meta description should be at most %d characters", r.MetaDescriptionMax))
	default:
		d.Status, d.Passed = StatusOptimal, true
		acc.pass()
	}
	acc.res.Details.MetaDescription = d
}

func textDetail(text string, lo, hi int) TextDetail {
	if text == "" {
		return TextDetail{Status: StatusMissing, Min: lo, Max: hi}
	}
	return TextDetail{
		Content: text,
		Length:  utf8.RuneCountInString(text),
		Status:  StatusExists,
		Min:     lo,
		Max:     hi,
	}
}

func checkH1(snap *crawler.PageSnapshot, _ []keywords.Entry, r Rules, acc *accumulator) {
	levels := make(map[string]HeadingLevel, len(crawler.HeadingLevels))
	for _, level := range crawler.HeadingLevels {
		content := snap.Headings[level]
		if content == nil {
			content = []string{}
		}
		levels[level] = HeadingLevel{Count: len(content), Content: content}
	}
	acc.res.Details.Headings.Levels = levels

	n := levels["h1"].Count
	switch {
	case n == 0:
		acc.fail("H1 tag missing", "Add one H1 tag to the page")
	case n > r.H1Max:
		acc.fail(fmt.Sprintf("Multiple H1 tags (%d)", n), "Page should have only one H1 tag")
	case n < r.H1Min:
		acc.fail(fmt.Sprintf("Too few H1 tags (%d)", n), fmt.Sprintf("Use at least %d H1 tags", r.H1Min))
	default:
		acc.res.Details.Headings.H1Passed = true
		acc.pass()
	}
}

// checkHierarchy fails when h2, h3 or h4 appear without the level above.
func checkHierarchy(snap *crawler.PageSnapshot, _ []keywords.Entry, _ Rules, acc *accumulator) {
	valid := HierarchyValid(snap.Headings)
	acc.res.Details.Headings.HierarchyValid = valid
	if valid {
		acc.pass()
		return
	}
	acc.fail("Heading hierarchy broken", "Use heading tags in logical hierarchy (H1->H2->H3...)")
}

// HierarchyValid reports whether no heading level from h2 to h4 is used
// while its parent level is absent.
func HierarchyValid(headings map[string][]string) bool {
	for i := 1; i < 4; i++ {
		parent, child := crawler.HeadingLevels[i-1], crawler.HeadingLevels[i]
		if len(headings[parent]) == 0 && len(headings[child]) > 0 {
			return false
		}
	}
	return true
}

func checkImages(snap *crawler.PageSnapshot, _ []keywords.Entry, r Rules, acc *accumulator) {
	d := ImageDetail{Total: len(snap.Images), MinRatio: r.ImageAltRatioMin}
	defer func() { acc.res.Details.Images = d }()
	if d.Total == 0 {
		return
	}

	d.Checked = true
	d.WithAlt = snap.ImagesWithAlt()
	d.WithoutAlt = d.Total - d.WithAlt
	ratio := float64(d.WithAlt) / float64(d.Total)
	d.AltRatio = round(ratio, 2)

	if ratio >= r.ImageAltRatioMin {
		d.Passed = true
		acc.pass()
		return
	}
	acc.fail(fmt.Sprintf("%d images missing alt text", d.WithoutAlt), "Add descriptive alt text to all images")
}

func checkParagraphs(snap *crawler.PageSnapshot, _ []keywords.Entry, r Rules, acc *accumulator) {
	d := ParagraphDetail{Total: len(snap.Paragraphs), MinWords: r.ParagraphMinWords}
	defer func() { acc.res.Details.Paragraphs = d }()
	if d.Total == 0 {
		return
	}

	d.Checked = true
	words := 0
	for _, p := range snap.Paragraphs {
		n := len(strings.Fields(p))
		words += n
		if n < r.ParagraphMinWords {
			d.ShortParagraphs++
		}
	}
	avg := float64(words) / float64(d.Total)
	d.AverageWords = round(avg, 1)

	if avg >= float64(r.ParagraphMinWords) {
		d.Passed = true
		acc.pass()
		return
	}
	acc.fail(fmt.Sprintf("Paragraphs too short (avg %.1f words)", avg),
		fmt.Sprintf("Paragraphs should contain at least %d words", r.ParagraphMinWords))
}

func checkKeywordDensity(_ *crawler.PageSnapshot, kws []keywords.Entry, r Rules, acc *accumulator) {
	d := KeywordDetail{
		TopKeywords:   []keywords.Entry{},
		DensityIssues: []string{},
		MinDensity:    r.KeywordDensityMin,
		MaxDensity:    r.KeywordDensityMax,
	}
	defer func() { acc.res.Details.Keywords = d }()
	if len(kws) == 0 {
		return
	}

	d.Checked = true
	d.TopKeywords = append(d.TopKeywords, kws[:min(r.KeywordWindow, len(kws))]...)
	for _, kw := range d.TopKeywords {
		if kw.Percentage > r.KeywordDensityMax {
			d.DensityIssues = append(d.DensityIssues,
				fmt.Sprintf("\"%s\" keyword too dense (%s%%)", kw.Word, FormatFloat(kw.Percentage)))
		}
	}

	if len(d.DensityIssues) == 0 {
		d.Passed = true
		acc.pass()
		return
	}

	// One issue per offending keyword, a single recommendation for all of them.
	acc.res.TotalChecks++
	acc.res.Issues = append(acc.res.Issues, d.DensityIssues...)
	acc.res.Recommendations = append(acc.res.Recommendations,
		fmt.Sprintf("Keep keyword density between %s-%s%%",
			strconv.FormatFloat(r.KeywordDensityMin, 'f', -1, 64),
			strconv.FormatFloat(r.KeywordDensityMax, 'f', -1, 64)))
}

var hostPattern = regexp.MustCompile(`https?://([^/]+)`)

// Host extracts the host part of a URL with a scheme://host match. URLs
// without an http(s) scheme give an empty host.
func Host(rawURL string) string {
	m := hostPattern.FindStringSubmatch(rawURL)
	if m == nil {
		return ""
	}
	return m[1]
}

func checkInternalLinks(snap *crawler.PageSnapshot, _ []keywords.Entry, r Rules, acc *accumulator) {
	d := LinkDetail{Total: len(snap.Links), MinInternal: r.InternalLinksMin}
	defer func() { acc.res.Details.Links = d }()
	if d.Total == 0 {
		return
	}

	base := Host(snap.URL)
	for _, l := range snap.Links {
		if l.Href == "" {
			continue
		}
		if Host(l.Href) == base {
			d.Internal++
		} else {
			d.External++
		}
	}

	d.Checked = true
	if d.Internal >= r.InternalLinksMin {
		d.Passed = true
		acc.pass()
		return
	}
	acc.fail(fmt.Sprintf("Internal links count low (%d)", d.Internal),
		fmt.Sprintf("Add at least %d internal links", r.InternalLinksMin))
}

func checkContentLength(snap *crawler.PageSnapshot, _ []keywords.Entry, r Rules, acc *accumulator) {
	d := ContentDetail{WordCount: snap.WordCount, MinWords: r.ContentMinWords}
	switch {
	case d.WordCount < r.ContentMinWords:
		d.Status = "short"
	case d.WordCount < r.ContentLongWords:
		d.Status = "adequate"
	default:
		d.Status = "long"
	}
	defer func() { acc.res.Details.Content = d }()

	if d.WordCount >= r.ContentMinWords {
		d.Passed = true
		acc.pass()
		return
	}
	acc.fail(fmt.Sprintf("Content too short (%d words)", d.WordCount),
		fmt.Sprintf("Expand content to at least %d words", r.ContentMinWords))
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.RoundToEven(v*p) / p
}

// FormatFloat prints v with the shortest exact representation and at least
// one decimal place: 60 -> "60.0", 3.33 -> "3.33".
func FormatFloat(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}
