package analyzer

import "fmt"

// PassedTests lists the checks that passed, derived from res.Details alone.
func PassedTests(res *Result) []string {
	if res == nil {
		return nil
	}
	d := res.Details
	passed := make([]string, 0)

	if d.Title.Passed {
		passed = append(passed, fmt.Sprintf(
			"Title tag length optimal (%d characters) - Within recommended %d-%d character range",
			d.Title.Length, d.Title.Min, d.Title.Max))
	}
	if d.MetaDescription.Passed {
		passed = append(passed, fmt.Sprintf(
			"Meta description length appropriate (%d characters) - Within %d-%d character range",
			d.MetaDescription.Length, d.MetaDescription.Min, d.MetaDescription.Max))
	}
	if d.Headings.H1Passed {
		passed = append(passed, "Single H1 tag present - Optimal page structure maintained")
	}
	if h1 := d.Headings.H1(); len(h1.Content) > 0 && h1.Content[0] != "" {
		passed = append(passed, "H1 tag contains content - Good for topical relevance")
	}
	if d.Images.Checked && d.Images.Passed {
		passed = append(passed, fmt.Sprintf(
			"Images with alt text (%d out of %d) - Meets accessibility and SEO requirements",
			d.Images.WithAlt, d.Images.Total))
	}
	if d.Content.Passed {
		passed = append(passed, fmt.Sprintf(
			"Content length sufficient (%d words) - Meets minimum content requirements", d.Content.WordCount))
	}
	if d.Links.Checked && d.Links.Passed {
		passed = append(passed, fmt.Sprintf(
			"Internal links present (%d found) - Supports site navigation and SEO", d.Links.Internal))
	}
	return passed
}
