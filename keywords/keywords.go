package keywords

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/seo-optimizer/auditor/crawler"
)

const (
	DefaultMinLength = 3
	DefaultTopN      = 20
)

// Entry is one ranked keyword.
type Entry struct {
	Word       string  `json:"word"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// Options controls tokenisation and ranking.
type Options struct {
	MinLength int
	TopN      int
	// StopWords replaces the built-in table when non-nil.
	StopWords Set
}

func DefaultOptions() Options {
	return Options{MinLength: DefaultMinLength, TopN: DefaultTopN}
}

// Validate rejects option values that cannot produce a ranking.
func (o Options) Validate() error {
	if o.MinLength < 1 {
		return &crawler.ValidationError{Field: "minKeywordLength", Message: "must be at least 1"}
	}
	if o.TopN < 1 {
		return &crawler.ValidationError{Field: "topKeywordCount", Message: "must be at least 1"}
	}
	return nil
}

func (o Options) withDefaults() Options {
	if o.MinLength <= 0 {
		o.MinLength = DefaultMinLength
	}
	if o.TopN <= 0 {
		o.TopN = DefaultTopN
	}
	return o
}

var (
	whitespace = regexp.MustCompile(`\s+`)
	wordRun    = regexp.MustCompile(`[\p{L}\p{N}_]+`)
	letterWord = regexp.MustCompile(`^[a-zğüşıöç]+$`)
	sharedStop = DefaultStopWords()
)

// Extract ranks the keywords of already visible text.
func Extract(text string, opts Options) []Entry {
	opts = opts.withDefaults()
	stop := opts.StopWords
	if stop == nil {
		stop = sharedStop
	}

	tokens := Tokenize(text, opts.MinLength)
	counts := make(map[string]int)
	order := make([]string, 0)
	total := 0
	for _, tok := range tokens {
		if stop.Has(tok) {
			continue
		}
		total++
		if counts[tok] == 0 {
			order = append(order, tok)
		}
		counts[tok]++
	}
	if total == 0 {
		return []Entry{}
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > opts.TopN {
		order = order[:opts.TopN]
	}

	entries := make([]Entry, 0, len(order))
	for _, word := range order {
		entries = append(entries, Entry{
			Word:       word,
			Count:      counts[word],
			Percentage: round2(float64(counts[word]) / float64(total) * 100),
		})
	}
	return entries
}

// FromDocument ranks the keywords of a parsed page, ignoring script and style.
func FromDocument(doc *goquery.Document, opts Options) []Entry {
	return Extract(crawler.VisibleText(doc.Selection), opts)
}

// FromSnapshot ranks the keywords of a snapshot's visible text. It agrees
// with FromDocument for the same page.
func FromSnapshot(snap *crawler.PageSnapshot, opts Options) []Entry {
	return Extract(snap.TextContent, opts)
}

// Tokenize lowercases text and returns the alphabetic words of at least
// minLength letters. Runs mixing letters with digits or other scripts are
// dropped whole.
func Tokenize(text string, minLength int) []string {
	text = strings.ToLower(whitespace.ReplaceAllString(text, " "))
	runs := wordRun.FindAllString(text, -1)
	words := make([]string, 0, len(runs))
	for _, w := range runs {
		if !letterWord.MatchString(w) {
			continue
		}
		if len([]rune(w)) < minLength {
			continue
		}
		words = append(words, w)
	}
	return words
}

// Density returns how often keyword occurs in text as a percentage of all
// word tokens. Occurrences are counted as substrings.
func Density(text, keyword string) float64 {
	text = strings.ToLower(text)
	keyword = strings.ToLower(keyword)
	total := len(wordRun.FindAllString(text, -1))
	if total == 0 || keyword == "" {
		return 0
	}
	return round2(float64(strings.Count(text, keyword)) / float64(total) * 100)
}

func round2(v float64) float64 {
	return math.RoundToEven(v*100) / 100
}
