package report

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/seo-optimizer/auditor/analyzer"
	"github.com/seo-optimizer/auditor/keywords"
)

// wording rewrites generic issue and recommendation text so it names the
// page's own leading keywords. Without keywords text passes through.
type wording struct {
	enabled   bool
	primary   string
	secondary string
	details   analyzer.Details
}

func newWording(res *analyzer.Result, kws []keywords.Entry) wording {
	w := wording{
		enabled:   len(kws) > 0,
		primary:   "primary keyword",
		secondary: "secondary keyword",
		details:   res.Details,
	}
	if len(kws) > 0 {
		w.primary = kws[0].Word
	}
	if len(kws) > 1 {
		w.secondary = kws[1].Word
	}
	return w
}

func (w wording) issue(issue string) string {
	if !w.enabled {
		return issue
	}
	lower := strings.ToLower(issue)
	switch {
	case strings.Contains(issue, "H1 tag missing"):
		return fmt.Sprintf("Missing H1 tag - Critical SEO issue affecting page hierarchy, should contain primary keyword \"%s\"", w.primary)
	case strings.HasPrefix(lower, "title too short"):
		return fmt.Sprintf("%s - Should be %d-%d characters for optimal SERP display and include \"%s\"",
			issue, w.details.Title.Min, w.details.Title.Max, w.primary)
	case lower == "meta description missing":
		return fmt.Sprintf("Meta description missing - Required for search engine result snippets, should include \"%s\"", w.primary)
	case strings.Contains(lower, "keyword too dense"):
		return fmt.Sprintf("%s - Should be %s%% to avoid over-optimization penalties", issue, w.densityRange())
	case strings.HasSuffix(lower, "missing alt text"):
		return issue + " - Impacts accessibility and SEO, consider using relevant keywords in alt text"
	}
	return issue
}

func (w wording) recommendation(rec string) string {
	if !w.enabled {
		return rec
	}
	lower := strings.ToLower(rec)
	switch {
	case strings.Contains(rec, "H1") && strings.HasPrefix(lower, "add"):
		return fmt.Sprintf("Add missing H1 tag with primary keyword \"%s\" for better topical relevance", w.primary)
	case strings.Contains(lower, "meta description"):
		return fmt.Sprintf("Write meta description (%d-%d characters) including primary keyword \"%s\" and compelling CTA",
			w.details.MetaDescription.Min, w.details.MetaDescription.Max, w.primary)
	case strings.Contains(lower, "alt text"):
		return fmt.Sprintf("Add alt text to images using relevant keywords like \"%s\" and \"%s\" where contextually appropriate",
			w.primary, w.secondary)
	case strings.HasPrefix(lower, "expand content"):
		return fmt.Sprintf("Expand content by 100-200 words focusing on \"%s\" and related terms for better topical coverage", w.primary)
	}
	return rec
}

func (w wording) densityRange() string {
	k := w.details.Keywords
	return strconv.FormatFloat(k.MinDensity, 'f', -1, 64) + "-" + strconv.FormatFloat(k.MaxDensity, 'f', -1, 64)
}

func roundTenth(v float64) float64 {
	return math.RoundToEven(v*10) / 10
}
