package inventory

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/seo-optimizer/auditor/crawler"
)

func summaryLine(total, tagTypes int) string {
	return fmt.Sprintf("Extracted %d elements from %d tag types", total, tagTypes)
}

// Render formats an inventory as a plain text report. A zero generatedAt
// leaves the date line out so output stays reproducible.
func Render(url string, inv *Inventory, generatedAt time.Time) string {
	var b strings.Builder
	line := func(format string, args ...any) {
		fmt.Fprintf(&b, format, args...)
		b.WriteByte('\n')
	}

	line("HTML Content Extraction Report")
	line("%s", strings.Repeat("=", 40))
	line("URL: %s", url)
	if !generatedAt.IsZero() {
		line("Extraction Date: %s", generatedAt.Format("2006-01-02 15:04:05"))
	}
	line("Total Elements Extracted: %d", inv.TotalElements)
	line("")

	line("📋 HEADING ELEMENTS (H1-H6):")
	for _, level := range crawler.HeadingLevels {
		items := inv.Headings[level]
		if len(items) == 0 {
			continue
		}
		line("%s Elements (%d found):", strings.ToUpper(level), len(items))
		for _, h := range items[:min(3, len(items))] {
			line("  %d. Content: \"%s\"", h.Index, clip(h.Content, 50))
			if len(h.Attributes) > 0 {
				line("     Attributes: %s", formatAttributes(h.Attributes))
			}
			line("     Position: %d, Depth: %d", h.Position, h.DepthLevel)
		}
		if len(items) > 3 {
			line("     ... and %d more", len(items)-3)
		}
		line("")
	}

	line("📝 PARAGRAPH ELEMENTS (P):")
	for i, p := range inv.Paragraphs[:min(5, len(inv.Paragraphs))] {
		line("Paragraph %d:", i+1)
		line("  Content: \"%s\"", clip(p.Content, 80))
		line("  Word Count: %d words", p.WordCount)
		if len(p.Attributes) > 0 {
			line("  Attributes: %s", formatAttributes(p.Attributes))
		}
		line("  Position: %d, Parent: %s", p.Position, orNone(p.ParentTag))
		line("")
	}
	if len(inv.Paragraphs) > 5 {
		line("... and %d more paragraphs", len(inv.Paragraphs)-5)
		line("")
	}

	line("📦 DIVISION ELEMENTS (DIV):")
	for i, d := range inv.Divisions[:min(5, len(inv.Divisions))] {
		line("Division %d:", i+1)
		line("  Content Preview: \"%s\"", d.ContentPreview)
		line("  Full Content Length: %d characters", d.FullContentLength)
		if len(d.Attributes) > 0 {
			line("  Attributes: %s", formatAttributes(d.Attributes))
		}
		line("  Child Elements: [%s]", strings.Join(d.ChildElements, ", "))
		line("  Position: %d, Nesting Level: %d", d.Position, d.NestingLevel)
		line("")
	}
	if len(inv.Divisions) > 5 {
		line("... and %d more divisions", len(inv.Divisions)-5)
		line("")
	}

	sum := inv.Summary
	line("📊 EXTRACTION SUMMARY:")
	for _, level := range crawler.HeadingLevels {
		line("- Total %s Tags: %d", strings.ToUpper(level), sum.HeadingCounts[level])
	}
	line("- Total P Tags: %d", sum.TotalParagraphs)
	line("- Total DIV Tags: %d", sum.TotalDivisions)
	line("- Average Paragraph Length: %s words", strconv.FormatFloat(sum.AverageParagraphLength, 'f', 1, 64))
	line("- Deepest Nesting Level: %d", sum.MaxNestingLevel)
	line("- Content Density: %s", sum.ContentDensity)
	line("- Structural Complexity: %s", sum.StructuralComplexity)
	line("")

	line("🔍 CONTENT ANALYSIS:")
	if len(sum.MostCommonClasses) > 0 {
		line("- Most Common Classes:")
		for _, c := range sum.MostCommonClasses {
			line("  • %s: %d occurrences", c.Class, c.Count)
		}
	} else {
		b.WriteString("- No common CSS classes found")
	}

	return strings.TrimRight(b.String(), "\n")
}

func clip(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit]) + "..."
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}

// formatAttributes prints attributes sorted by name, e.g. `class=[a b] id=main`.
func formatAttributes(attrs Attributes) string {
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		switch v := attrs[k].(type) {
		case []string:
			parts = append(parts, fmt.Sprintf("%s=[%s]", k, strings.Join(v, " ")))
		default:
			parts = append(parts, fmt.Sprintf("%s=%v", k, v))
		}
	}
	return strings.Join(parts, " ")
}
