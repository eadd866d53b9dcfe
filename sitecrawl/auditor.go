package sitecrawl

import (
	"context"
	"math"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/seo-optimizer/auditor/audit"
	"github.com/seo-optimizer/auditor/logging"
)

// PageAuditor audits one page. *audit.Service satisfies it.
type PageAuditor interface {
	Audit(ctx context.Context, url string, opts audit.Options) (*audit.Audit, error)
}

// Options configures a site audit.
type Options struct {
	Discover    DiscoverOptions
	Concurrency int
	Audit       audit.Options
}

// PageResult is the outcome for one discovered page.
type PageResult struct {
	URL          string `json:"url"`
	Score        int    `json:"score"`
	TotalChecks  int    `json:"totalChecks"`
	PassedChecks int    `json:"passedChecks"`
	IssueCount   int    `json:"issueCount"`
	Error        string `json:"error,omitempty"`
}

// IssueCount counts how many pages share an issue.
type IssueCount struct {
	Issue string `json:"issue"`
	Pages int    `json:"pages"`
}

// SiteReport aggregates the audits of every discovered page.
type SiteReport struct {
	Seed         string        `json:"seed"`
	Pages        []PageResult  `json:"pages"`
	Audited      int           `json:"audited"`
	Failed       int           `json:"failed"`
	AverageScore float64       `json:"averageScore"`
	CommonIssues []IssueCount  `json:"commonIssues"`
	Duration     time.Duration `json:"duration"`
}

// Auditor runs discovery followed by bounded concurrent page audits.
type Auditor struct {
	pages    PageAuditor
	discover func(ctx context.Context, seed string, opts DiscoverOptions) ([]string, error)
	logger   *logging.Logger
}

func NewAuditor(pages PageAuditor, logger *logging.Logger) *Auditor {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Auditor{pages: pages, discover: Discover, logger: logger}
}

// Run audits every page Discover finds. A failing page is recorded in the
// report; only discovery failure or cancellation fails the run.
func (a *Auditor) Run(ctx context.Context, seed string, opts Options) (*SiteReport, error) {
	started := time.Now()

	urls, err := a.discover(ctx, seed, opts.Discover)
	if err != nil {
		return nil, err
	}
	a.logger.Info("discovered %d pages from %s", len(urls), seed)

	limit := opts.Concurrency
	if limit <= 0 {
		limit = DefaultConcurrency
	}

	results := make([]PageResult, len(urls))
	issues := make([][]string, len(urls))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, u := range urls {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := a.pages.Audit(gctx, u, opts.Audit)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				results[i] = PageResult{URL: u, Error: err.Error()}
				return nil
			}
			results[i] = PageResult{
				URL:          u,
				Score:        res.SEOScore,
				TotalChecks:  res.TotalChecks,
				PassedChecks: res.PassedChecks,
				IssueCount:   len(res.Issues),
			}
			issues[i] = res.Issues
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &SiteReport{Seed: seed, Pages: results}
	total := 0
	for _, r := range results {
		if r.Error != "" {
			report.Failed++
			continue
		}
		report.Audited++
		total += r.Score
	}
	if report.Audited > 0 {
		report.AverageScore = math.RoundToEven(float64(total)/float64(report.Audited)*10) / 10
	}
	report.CommonIssues = commonIssues(issues, 5)
	report.Duration = time.Since(started)
	return report, nil
}

// commonIssues ranks issue texts by the number of pages reporting them.
func commonIssues(perPage [][]string, n int) []IssueCount {
	counts := make(map[string]int)
	for _, issues := range perPage {
		seen := make(map[string]bool, len(issues))
		for _, issue := range issues {
			if !seen[issue] {
				seen[issue] = true
				counts[issue]++
			}
		}
	}
	ranked := make([]IssueCount, 0, len(counts))
	for issue, pages := range counts {
		ranked = append(ranked, IssueCount{Issue: issue, Pages: pages})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Pages != ranked[j].Pages {
			return ranked[i].Pages > ranked[j].Pages
		}
		return ranked[i].Issue < ranked[j].Issue
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}
