package audit

import (
	"time"

	"github.com/seo-optimizer/auditor/analyzer"
	"github.com/seo-optimizer/auditor/crawler"
	"github.com/seo-optimizer/auditor/inventory"
	"github.com/seo-optimizer/auditor/keywords"
)

// Options tunes one audit. Zero values select the defaults.
type Options struct {
	MinKeywordLength  int
	TopKeywordCount   int
	MinParagraphWords int
	// SkipCache forces a fresh fetch; the new result still replaces the
	// cached one.
	SkipCache bool
}

func (o Options) keywordOptions(stop keywords.Set) (keywords.Options, error) {
	ko := keywords.DefaultOptions()
	ko.StopWords = stop
	if o.MinKeywordLength != 0 {
		ko.MinLength = o.MinKeywordLength
	}
	if o.TopKeywordCount != 0 {
		ko.TopN = o.TopKeywordCount
	}
	return ko, ko.Validate()
}

func (o Options) rules(base analyzer.Rules) (analyzer.Rules, error) {
	switch {
	case o.MinParagraphWords < 0:
		return base, &crawler.ValidationError{Field: "minParagraphWords", Message: "must not be negative"}
	case o.MinParagraphWords > 0:
		base.ParagraphMinWords = o.MinParagraphWords
	}
	return base, nil
}

// PageInfo is the short page summary shown next to an audit.
type PageInfo struct {
	Title            string         `json:"title"`
	MetaDescription  string         `json:"metaDescription"`
	WordCount        int            `json:"wordCount"`
	HeadingsCount    map[string]int `json:"headingsCount"`
	ImagesTotal      int            `json:"imagesTotal"`
	ImagesWithAlt    int            `json:"imagesWithAlt"`
	StatusCode       int            `json:"statusCode,omitempty"`
	MainContentWords int            `json:"mainContentWords,omitempty"`
}

func pageInfo(snap *crawler.PageSnapshot) PageInfo {
	info := PageInfo{
		Title:           snap.Title,
		MetaDescription: snap.MetaDescription,
		WordCount:       snap.WordCount,
		HeadingsCount:   make(map[string]int, 4),
		ImagesTotal:     len(snap.Images),
		ImagesWithAlt:   snap.ImagesWithAlt(),
		StatusCode:      snap.StatusCode,
	}
	for _, level := range crawler.HeadingLevels[:4] {
		info.HeadingsCount[level] = snap.HeadingCount(level)
	}
	if snap.MainContent != nil {
		info.MainContentWords = snap.MainContent.WordCount
	}
	return info
}

// Audit is the outcome of one page audit. A failed run carries only URL
// and Error. Cached audits are shared and must not be modified.
type Audit struct {
	ID              string           `json:"id,omitempty"`
	URL             string           `json:"url"`
	SEOScore        int              `json:"seoScore"`
	TotalChecks     int              `json:"totalChecks"`
	PassedChecks    int              `json:"passedChecks"`
	Issues          []string         `json:"issues"`
	Recommendations []string         `json:"recommendations"`
	PassedTests     []string         `json:"passedTests"`
	Keywords        []keywords.Entry `json:"keywords"`
	Report          string           `json:"detailedReport"`
	PageInfo        PageInfo         `json:"pageInfo"`
	Details         analyzer.Details `json:"details"`
	FetchedAt       time.Time        `json:"fetchedAt"`
	Duration        time.Duration    `json:"duration"`
	Cached          bool             `json:"cached"`
	Error           string           `json:"error,omitempty"`
}

// Failed builds the error variant of an Audit.
func Failed(url string, err error) *Audit {
	return &Audit{URL: url, Error: err.Error()}
}

// KeywordsResult is the outcome of a keyword-only extraction.
type KeywordsResult struct {
	URL        string           `json:"url"`
	Keywords   []keywords.Entry `json:"keywords"`
	TotalWords int              `json:"totalWords"`
	PageTitle  string           `json:"pageTitle"`
	Summary    string           `json:"keywordSummary"`
}

// InventoryResult is a full element inventory with its text report.
type InventoryResult struct {
	URL       string               `json:"url"`
	Inventory *inventory.Inventory `json:"inventory"`
	Report    string               `json:"detailedReport"`
}

// TagsResult holds the elements of the requested tag types only.
type TagsResult struct {
	URL string `json:"url"`
	*inventory.TagSelection
}

// CacheStats describes the result cache.
type CacheStats struct {
	Entries int           `json:"entries"`
	MaxSize int           `json:"maxSize"`
	TTL     time.Duration `json:"ttl"`
	Hits    int64         `json:"hits"`
	Misses  int64         `json:"misses"`
	Enabled bool          `json:"enabled"`
}
