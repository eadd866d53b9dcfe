package analyzer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seo-optimizer/auditor/crawler"
	"github.com/seo-optimizer/auditor/keywords"
)

func words(n int) string {
	return strings.TrimSpace(strings.Repeat("word ", n))
}

func headings(counts map[string]int) map[string][]string {
	h := make(map[string][]string)
	for _, level := range crawler.HeadingLevels {
		h[level] = []string{}
		for i := 0; i < counts[level]; i++ {
			h[level] = append(h[level], level+" text")
		}
	}
	return h
}

// healthySnapshot passes every check.
func healthySnapshot() *crawler.PageSnapshot {
	return &crawler.PageSnapshot{
		URL:             "https://example.com/page",
		Title:           strings.Repeat("t", 40),
		MetaDescription: strings.Repeat("m", 130),
		Headings:        headings(map[string]int{"h1": 1, "h2": 2}),
		Paragraphs:      []string{words(25), words(25)},
		Images: []crawler.Image{
			{Src: "https://example.com/1.png", Alt: "one"},
			{Src: "https://example.com/2.png", Alt: "two"},
		},
		Links: []crawler.Link{
			{Href: "https://example.com/a"},
			{Href: "https://example.com/b"},
			{Href: "https://example.com/c"},
			{Href: "https://other.org/"},
		},
		WordCount: 400,
	}
}

func healthyKeywords() []keywords.Entry {
	return []keywords.Entry{{Word: "ceramics", Count: 10, Percentage: 2.5}}
}

func TestAnalyzeHealthyPage(t *testing.T) {
	res := Analyze(healthySnapshot(), healthyKeywords(), DefaultRules())

	assert.Equal(t, 9, res.TotalChecks)
	assert.Equal(t, 9, res.PassedChecks)
	assert.Equal(t, 100, res.SEOScore)
	assert.Empty(t, res.Issues)
	assert.Empty(t, res.Recommendations)
	assert.Equal(t, StatusOptimal, res.Details.Title.Status)
	assert.Equal(t, "adequate", res.Details.Content.Status)
	assert.Equal(t, 3, res.Details.Links.Internal)
	assert.Equal(t, 1, res.Details.Links.External)
}

func TestTitleLength(t *testing.T) {
	tests := []struct {
		name   string
		title  string
		passed bool
		issue  string
	}{
		{"missing", "", false, "Title tag missing"},
		{"lower bound", strings.Repeat("a", 30), true, ""},
		{"upper bound", strings.Repeat("a", 60), true, ""},
		{"too short", strings.Repeat("a", 29), false, "Title too short (29 characters)"},
		{"too long", strings.Repeat("a", 61), false, "Title too long (61 characters)"},
		{"runes not bytes", strings.Repeat("ş", 30), true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := healthySnapshot()
			snap.Title = tt.title
			res := Analyze(snap, healthyKeywords(), DefaultRules())

			assert.Equal(t, tt.passed, res.Details.Title.Passed)
			if tt.passed {
				assert.Empty(t, res.Issues)
				return
			}
			require.Len(t, res.Issues, 1)
			assert.Equal(t, tt.issue, res.Issues[0])
			assert.Len(t, res.Recommendations, 1)
		})
	}
}

func TestMetaDescriptionLength(t *testing.T) {
	snap := healthySnapshot()
	snap.MetaDescription = strings.Repeat("m", 161)
	res := Analyze(snap, healthyKeywords(), DefaultRules())
	assert.Equal(t, []string{"Meta description too long (161 characters)"}, res.Issues)
	assert.Equal(t, []string{"Meta description should be at most 160 characters"}, res.Recommendations)

	snap.MetaDescription = ""
	res = Analyze(snap, healthyKeywords(), DefaultRules())
	assert.Equal(t, []string{"Meta description missing"}, res.Issues)
	assert.Equal(t, StatusMissing, res.Details.MetaDescription.Status)
}

func TestH1Count(t *testing.T) {
	snap := healthySnapshot()
	snap.Headings = headings(map[string]int{"h1": 2})
	res := Analyze(snap, healthyKeywords(), DefaultRules())
	assert.Equal(t, []string{"Multiple H1 tags (2)"}, res.Issues)

	snap.Headings = headings(map[string]int{})
	res = Analyze(snap, healthyKeywords(), DefaultRules())
	assert.Equal(t, []string{"H1 tag missing"}, res.Issues)
}

func TestHeadingHierarchy(t *testing.T) {
	tests := []struct {
		name   string
		counts map[string]int
		valid  bool
	}{
		{"h2 without h1", map[string]int{"h2": 1}, false},
		{"h3 without h2", map[string]int{"h1": 1, "h3": 1}, false},
		{"h4 without h3", map[string]int{"h1": 1, "h2": 1, "h4": 1}, false},
		{"full chain", map[string]int{"h1": 1, "h2": 1, "h3": 1, "h4": 1}, true},
		{"no headings", map[string]int{}, true},
		{"h5 is not checked", map[string]int{"h1": 1, "h5": 1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := headings(tt.counts)
			assert.Equal(t, tt.valid, HierarchyValid(h))

			snap := healthySnapshot()
			snap.Headings = h
			res := Analyze(snap, healthyKeywords(), DefaultRules())
			assert.Equal(t, tt.valid, res.Details.Headings.HierarchyValid)
			assert.Equal(t, !tt.valid, contains(res.Issues, "Heading hierarchy broken"))
		})
	}
}

func TestImageAltCoverage(t *testing.T) {
	images := func(total, withAlt int) []crawler.Image {
		out := make([]crawler.Image, 0, total)
		for i := 0; i < total; i++ {
			img := crawler.Image{Src: "https://example.com/x.png"}
			if i < withAlt {
				img.Alt = "described"
			}
			out = append(out, img)
		}
		return out
	}

	snap := healthySnapshot()
	snap.Images = images(5, 4)
	res := Analyze(snap, healthyKeywords(), DefaultRules())
	assert.True(t, res.Details.Images.Passed)
	assert.Equal(t, 0.8, res.Details.Images.AltRatio)

	snap.Images = images(5, 3)
	res = Analyze(snap, healthyKeywords(), DefaultRules())
	assert.Equal(t, []string{"2 images missing alt text"}, res.Issues)

	snap.Images = []crawler.Image{{Src: "https://example.com/x.png", Alt: "   "}}
	res = Analyze(snap, healthyKeywords(), DefaultRules())
	assert.Equal(t, []string{"1 images missing alt text"}, res.Issues)
}

func TestSkippedChecks(t *testing.T) {
	snap := healthySnapshot()
	snap.Images = nil
	snap.Paragraphs = nil
	snap.Links = nil

	res := Analyze(snap, nil, DefaultRules())
	assert.Equal(t, 5, res.TotalChecks)
	assert.Equal(t, 5, res.PassedChecks)
	assert.False(t, res.Details.Images.Checked)
	assert.False(t, res.Details.Paragraphs.Checked)
	assert.False(t, res.Details.Keywords.Checked)
	assert.False(t, res.Details.Links.Checked)
	assert.NotNil(t, res.Details.Keywords.TopKeywords)
}

func TestParagraphLength(t *testing.T) {
	snap := healthySnapshot()
	snap.Paragraphs = []string{"two words", "three words here"}
	res := Analyze(snap, healthyKeywords(), DefaultRules())

	assert.Equal(t, []string{"Paragraphs too short (avg 2.5 words)"}, res.Issues)
	assert.Equal(t, []string{"Paragraphs should contain at least 20 words"}, res.Recommendations)
	assert.Equal(t, 2, res.Details.Paragraphs.ShortParagraphs)
	assert.Equal(t, 2.5, res.Details.Paragraphs.AverageWords)
}

func TestKeywordDensity(t *testing.T) {
	kws := []keywords.Entry{
		{Word: "mug", Count: 10, Percentage: 5.0},
		{Word: "glaze", Count: 7, Percentage: 3.5},
		{Word: "clay", Count: 6, Percentage: 3.0},
	}
	res := Analyze(healthySnapshot(), kws, DefaultRules())

	assert.Equal(t, []string{
		`"mug" keyword too dense (5.0%)`,
		`"glaze" keyword too dense (3.5%)`,
	}, res.Issues)
	assert.Equal(t, []string{"Keep keyword density between 1-3%"}, res.Recommendations)
	assert.Equal(t, 9, res.TotalChecks)
	assert.Equal(t, 8, res.PassedChecks)

	t.Run("only the top ten are checked", func(t *testing.T) {
		window := make([]keywords.Entry, 0, 11)
		for i := 0; i < 10; i++ {
			window = append(window, keywords.Entry{Word: "w", Count: 1, Percentage: 1.0})
		}
		window = append(window, keywords.Entry{Word: "late", Count: 1, Percentage: 9.0})
		res := Analyze(healthySnapshot(), window, DefaultRules())
		assert.True(t, res.Details.Keywords.Passed)
		assert.Len(t, res.Details.Keywords.TopKeywords, 10)
	})
}

func TestInternalLinks(t *testing.T) {
	snap := healthySnapshot()
	snap.Links = []crawler.Link{
		{Href: "https://example.com/a"},
		{Href: "https://www.example.com/b"},
		{Href: "mailto:hello@example.com"},
		{Href: ""},
	}
	res := Analyze(snap, healthyKeywords(), DefaultRules())

	assert.Equal(t, []string{"Internal links count low (1)"}, res.Issues)
	assert.Equal(t, []string{"Add at least 3 internal links"}, res.Recommendations)
	assert.Equal(t, 4, res.Details.Links.Total)
	assert.Equal(t, 1, res.Details.Links.Internal)
	assert.Equal(t, 2, res.Details.Links.External)
}

func TestContentLength(t *testing.T) {
	snap := healthySnapshot()
	snap.WordCount = 299
	res := Analyze(snap, healthyKeywords(), DefaultRules())
	assert.Equal(t, []string{"Content too short (299 words)"}, res.Issues)
	assert.Equal(t, "short", res.Details.Content.Status)

	snap.WordCount = 1000
	res = Analyze(snap, healthyKeywords(), DefaultRules())
	assert.Equal(t, "long", res.Details.Content.Status)
}

func TestPageWithOnlyDensityAndMissingTags(t *testing.T) {
	snap := healthySnapshot()
	snap.Title = ""
	snap.MetaDescription = ""
	snap.Headings = headings(map[string]int{"h1": 1})
	snap.Paragraphs = nil
	kws := []keywords.Entry{{Word: "mug", Count: 5, Percentage: 5.0}}

	res := Analyze(snap, kws, DefaultRules())
	assert.Equal(t, []string{
		"Title tag missing",
		"Meta description missing",
		`"mug" keyword too dense (5.0%)`,
	}, res.Issues)
	assert.Equal(t, 8, res.TotalChecks)
	assert.Equal(t, 5, res.PassedChecks)
	// 62.5 rounds half to even.
	assert.Equal(t, 62, res.SEOScore)
}

func TestAnalyzeIsIdempotent(t *testing.T) {
	snap := healthySnapshot()
	snap.Title = "short"
	kws := []keywords.Entry{{Word: "mug", Count: 5, Percentage: 4.0}}

	a := New(DefaultRules())
	first := a.Analyze(snap, kws)
	second := a.Analyze(snap, kws)
	assert.Equal(t, first, second)
}

func TestScoreBounds(t *testing.T) {
	snaps := []*crawler.PageSnapshot{
		healthySnapshot(),
		{URL: "https://example.com"},
		{URL: "not a url", Links: []crawler.Link{{Href: "/relative"}}},
	}
	for _, snap := range snaps {
		res := Analyze(snap, nil, DefaultRules())
		assert.GreaterOrEqual(t, res.TotalChecks, res.PassedChecks)
		assert.GreaterOrEqual(t, res.PassedChecks, 0)
		assert.GreaterOrEqual(t, res.SEOScore, 0)
		assert.LessOrEqual(t, res.SEOScore, 100)
	}

	assert.Equal(t, 0, Analyze(nil, nil, DefaultRules()).SEOScore)
}

func TestPassedTests(t *testing.T) {
	res := Analyze(healthySnapshot(), healthyKeywords(), DefaultRules())
	assert.Equal(t, []string{
		"Title tag length optimal (40 characters) - Within recommended 30-60 character range",
		"Meta description length appropriate (130 characters) - Within 120-160 character range",
		"Single H1 tag present - Optimal page structure maintained",
		"H1 tag contains content - Good for topical relevance",
		"Images with alt text (2 out of 2) - Meets accessibility and SEO requirements",
		"Content length sufficient (400 words) - Meets minimum content requirements",
		"Internal links present (3 found) - Supports site navigation and SEO",
	}, PassedTests(res))

	snap := healthySnapshot()
	snap.Images = nil
	snap.WordCount = 10
	passed := PassedTests(Analyze(snap, nil, DefaultRules()))
	assert.Len(t, passed, 5)
	assert.False(t, contains(passed, "Content length sufficient (10 words) - Meets minimum content requirements"))
}

func TestRulesValidate(t *testing.T) {
	assert.NoError(t, DefaultRules().Validate())

	r := DefaultRules()
	r.TitleMin = 70
	assert.Error(t, r.Validate())

	r = DefaultRules()
	r.ImageAltRatioMin = 1.5
	assert.Error(t, r.Validate())
}

func TestHost(t *testing.T) {
	assert.Equal(t, "example.com", Host("https://example.com/path"))
	assert.Equal(t, "example.com:8080", Host("http://example.com:8080"))
	assert.Equal(t, "", Host("/relative"))
	assert.Equal(t, "", Host("mailto:a@b.c"))
}

func TestFormatFloat(t *testing.T) {
	assert.Equal(t, "60.0", FormatFloat(60))
	assert.Equal(t, "3.33", FormatFloat(3.33))
	assert.Equal(t, "0.0", FormatFloat(0))
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
