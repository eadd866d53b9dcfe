package analyzer

import "github.com/seo-optimizer/auditor/keywords"

// Text detail statuses.
const (
	StatusMissing = "missing"
	StatusExists  = "exists"
	StatusOptimal = "optimal"
)

// Result is the outcome of one analysis. It is built by the checks in a
// fixed order and not modified afterwards.
type Result struct {
	URL             string   `json:"url"`
	SEOScore        int      `json:"seoScore"`
	TotalChecks     int      `json:"totalChecks"`
	PassedChecks    int      `json:"passedChecks"`
	Issues          []string `json:"issues"`
	Recommendations []string `json:"recommendations"`
	Details         Details  `json:"details"`
}

// Details holds one sub-result per check.
type Details struct {
	Title           TextDetail      `json:"title"`
	MetaDescription TextDetail      `json:"metaDescription"`
	Headings        HeadingDetail   `json:"headings"`
	Images          ImageDetail     `json:"images"`
	Paragraphs      ParagraphDetail `json:"paragraphs"`
	Keywords        KeywordDetail   `json:"keywords"`
	Links           LinkDetail      `json:"links"`
	Content         ContentDetail   `json:"content"`
}

// TextDetail covers the title and meta description checks.
type TextDetail struct {
	Content string `json:"content,omitempty"`
	Length  int    `json:"length"`
	Status  string `json:"status"`
	Min     int    `json:"min"`
	Max     int    `json:"max"`
	Passed  bool   `json:"passed"`
}

type HeadingLevel struct {
	Count   int      `json:"count"`
	Content []string `json:"content"`
}

type HeadingDetail struct {
	Levels         map[string]HeadingLevel `json:"levels"`
	H1Passed       bool                    `json:"h1Passed"`
	HierarchyValid bool                    `json:"hierarchyValid"`
}

// H1 returns the h1 entry, empty when the page has none.
func (h HeadingDetail) H1() HeadingLevel { return h.Levels["h1"] }

// Count returns the number of headings at level.
func (h HeadingDetail) Count(level string) int { return h.Levels[level].Count }

// ImageDetail is skipped (Checked false) when the page has no images.
type ImageDetail struct {
	Total      int     `json:"total"`
	WithAlt    int     `json:"withAlt"`
	WithoutAlt int     `json:"withoutAlt"`
	AltRatio   float64 `json:"altRatio"`
	MinRatio   float64 `json:"minRatio"`
	Checked    bool    `json:"checked"`
	Passed     bool    `json:"passed"`
}

type ParagraphDetail struct {
	Total           int     `json:"total"`
	AverageWords    float64 `json:"averageWords"`
	ShortParagraphs int     `json:"shortParagraphs"`
	MinWords        int     `json:"minWords"`
	Checked         bool    `json:"checked"`
	Passed          bool    `json:"passed"`
}

type KeywordDetail struct {
	TopKeywords   []keywords.Entry `json:"topKeywords"`
	DensityIssues []string         `json:"densityIssues"`
	MinDensity    float64          `json:"minDensity"`
	MaxDensity    float64          `json:"maxDensity"`
	Checked       bool             `json:"checked"`
	Passed        bool             `json:"passed"`
}

type LinkDetail struct {
	Total       int  `json:"total"`
	Internal    int  `json:"internal"`
	External    int  `json:"external"`
	MinInternal int  `json:"minInternal"`
	Checked     bool `json:"checked"`
	Passed      bool `json:"passed"`
}

// ContentDetail status is short, adequate or long.
type ContentDetail struct {
	WordCount int    `json:"wordCount"`
	Status    string `json:"status"`
	MinWords  int    `json:"minWords"`
	Passed    bool   `json:"passed"`
}
