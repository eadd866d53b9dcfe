// Package report renders analysis results as plain text and CSV.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/seo-optimizer/auditor/analyzer"
	"github.com/seo-optimizer/auditor/keywords"
)

// MaxKeywords caps the keyword ranking section.
const MaxKeywords = 20

type Options struct {
	// GeneratedAt adds a date line when set. Leave it zero for byte-stable output.
	GeneratedAt time.Time
}

// Status maps a score to its qualitative band.
func Status(score int) string {
	switch {
	case score >= 90:
		return "Excellent"
	case score >= 70:
		return "Good"
	case score >= 50:
		return "Fair"
	default:
		return "Poor"
	}
}

// Classify labels a keyword by its 1-based rank.
func Classify(rank int, word string) string {
	switch {
	case rank == 1:
		return "Primary"
	case rank <= 5:
		return "Secondary"
	case len(strings.Fields(word)) > 1:
		return "Long-tail"
	default:
		return "Supporting"
	}
}

// Priority labels a recommendation by its 1-based position.
func Priority(pos int) string {
	switch {
	case pos <= 2:
		return "HIGH PRIORITY"
	case pos <= 4:
		return "MEDIUM PRIORITY"
	default:
		return "LOW PRIORITY"
	}
}

// Render produces the audit report. kws may be empty; when present, issues
// and recommendations are reworded around the leading keywords.
func Render(res *analyzer.Result, kws []keywords.Entry, opts Options) string {
	lines := make([]string, 0, 64)
	add := func(format string, args ...any) {
		lines = append(lines, fmt.Sprintf(format, args...))
	}

	add("SEO Technical Audit Report")
	add("%s", strings.Repeat("=", 40))
	add("URL: %s", res.URL)
	if !opts.GeneratedAt.IsZero() {
		add("Generated: %s", opts.GeneratedAt.Format("2006-01-02 15:04:05"))
	}
	add("SEO Score: %d/100", res.SEOScore)
	add("Status: %s", Status(res.SEOScore))
	add("")

	add("🔑 KEYWORDS ANALYSIS:")
	if len(kws) == 0 {
		add("No keywords extracted from content")
	}
	for i, kw := range kws[:min(MaxKeywords, len(kws))] {
		add("%d. %s: %d occurrences (%s%% density) - %s",
			i+1, kw.Word, kw.Count, analyzer.FormatFloat(kw.Percentage), Classify(i+1, kw.Word))
	}
	add("")

	add("📊 AUDIT SUMMARY:")
	add("- Total Checks Performed: %d", res.TotalChecks)
	add("- Passed Tests: %d", res.PassedChecks)
	add("- Failed Tests: %d", res.TotalChecks-res.PassedChecks)
	add("- Warnings: 0")
	add("")

	w := newWording(res, kws)
	if len(res.Issues) > 0 {
		add("🚨 SEO ISSUES FOUND:")
		for _, issue := range res.Issues {
			add("• %s", w.issue(issue))
		}
		add("")
	}

	if passed := analyzer.PassedTests(res); len(passed) > 0 {
		add("✅ PASSED SEO TESTS:")
		for _, p := range passed {
			add("• %s", p)
		}
		add("")
	}

	if len(res.Recommendations) > 0 {
		add("💡 OPTIMIZATION RECOMMENDATIONS (Prioritized):")
		for i, rec := range res.Recommendations {
			add("• %s: %s", Priority(i+1), w.recommendation(rec))
		}
		add("")
	}

	lines = append(lines, technicalDetails(res.Details, kws)...)
	return strings.Join(lines, "\n")
}

// RenderError is the report for a run that never reached analysis.
func RenderError(err error) string {
	return "Error: " + err.Error()
}

func technicalDetails(d analyzer.Details, kws []keywords.Entry) []string {
	primary := ""
	if len(kws) > 0 {
		primary = kws[0].Word
	}

	lines := []string{"📝 TECHNICAL DETAILS:"}
	lines = append(lines,
		"- Title: "+textLine(d.Title, primary),
		"- Meta Description: "+textLine(d.MetaDescription, primary),
	)

	h1 := d.Headings.Count("h1")
	h1Status := fmt.Sprintf("Issue: %d", h1)
	if d.Headings.H1Passed {
		h1Status = fmt.Sprintf("Optimal: %d", h1)
	}
	lines = append(lines,
		fmt.Sprintf("- H1 Tags: %d count - %s", h1, h1Status),
		fmt.Sprintf("- H2-H6 Tags: H2(%d), H3(%d), H4(%d), H5(%d), H6(%d)",
			d.Headings.Count("h2"), d.Headings.Count("h3"), d.Headings.Count("h4"),
			d.Headings.Count("h5"), d.Headings.Count("h6")),
	)

	coverage := 0.0
	if d.Images.Total > 0 {
		coverage = float64(d.Images.WithAlt) / float64(d.Images.Total) * 100
	}
	lines = append(lines, fmt.Sprintf("- Images: %d total, %d with alt text (%s%% coverage)",
		d.Images.Total, d.Images.WithAlt, analyzer.FormatFloat(roundTenth(coverage))))

	linkStatus := fmt.Sprintf("Insufficient: <%d", d.Links.MinInternal)
	if d.Links.Internal >= d.Links.MinInternal {
		linkStatus = fmt.Sprintf("Sufficient: %d+", d.Links.MinInternal)
	}
	lines = append(lines, fmt.Sprintf("- Internal Links: %d count - %s", d.Links.Internal, linkStatus))

	contentStatus := fmt.Sprintf("Short: <%d", d.Content.MinWords)
	if d.Content.Passed {
		contentStatus = fmt.Sprintf("Sufficient: %d+", d.Content.MinWords)
	}
	lines = append(lines, fmt.Sprintf("- Content Length: %d words - %s", d.Content.WordCount, contentStatus))

	if len(kws) > 0 {
		line := fmt.Sprintf("- Keyword Density: Primary \"%s\" (%s%%)", kws[0].Word, analyzer.FormatFloat(kws[0].Percentage))
		if len(kws) > 1 {
			line += fmt.Sprintf(", Secondary \"%s\" (%s%%)", kws[1].Word, analyzer.FormatFloat(kws[1].Percentage))
		}
		lines = append(lines, line)
	}
	return lines
}

func textLine(d analyzer.TextDetail, primary string) string {
	presence := "Missing"
	if d.Content != "" {
		presence = "Present"
	}
	line := fmt.Sprintf("%s - %d characters", presence, d.Length)
	if primary == "" {
		return line
	}
	match := "Missing"
	if strings.Contains(strings.ToLower(d.Content), strings.ToLower(primary)) {
		match = "Contains"
	}
	return fmt.Sprintf("%s - %s primary keyword \"%s\"", line, match, primary)
}
