package analyzer

import "fmt"

// Rules holds every threshold the checks compare against. It is plain data
// so it can be loaded from a YAML or TOML rules file.
type Rules struct {
	TitleMin           int     `json:"titleMin" yaml:"title_min" toml:"title_min"`
	TitleMax           int     `json:"titleMax" yaml:"title_max" toml:"title_max"`
	MetaDescriptionMin int     `json:"metaDescriptionMin" yaml:"meta_description_min" toml:"meta_description_min"`
	MetaDescriptionMax int     `json:"metaDescriptionMax" yaml:"meta_description_max" toml:"meta_description_max"`
	H1Min              int     `json:"h1Min" yaml:"h1_min" toml:"h1_min"`
	H1Max              int     `json:"h1Max" yaml:"h1_max" toml:"h1_max"`
	KeywordDensityMin  float64 `json:"keywordDensityMin" yaml:"keyword_density_min" toml:"keyword_density_min"`
	KeywordDensityMax  float64 `json:"keywordDensityMax" yaml:"keyword_density_max" toml:"keyword_density_max"`
	KeywordWindow      int     `json:"keywordWindow" yaml:"keyword_window" toml:"keyword_window"`
	ImageAltRatioMin   float64 `json:"imageAltRatioMin" yaml:"image_alt_ratio_min" toml:"image_alt_ratio_min"`
	InternalLinksMin   int     `json:"internalLinksMin" yaml:"internal_links_min" toml:"internal_links_min"`
	ParagraphMinWords  int     `json:"paragraphMinWords" yaml:"paragraph_min_words" toml:"paragraph_min_words"`
	ContentMinWords    int     `json:"contentMinWords" yaml:"content_min_words" toml:"content_min_words"`
	ContentLongWords   int     `json:"contentLongWords" yaml:"content_long_words" toml:"content_long_words"`
}

// DefaultRules returns the standard rule table.
func DefaultRules() Rules {
	return Rules{
		TitleMin:           30,
		TitleMax:           60,
		MetaDescriptionMin: 120,
		MetaDescriptionMax: 160,
		H1Min:              1,
		H1Max:              1,
		KeywordDensityMin:  1.0,
		KeywordDensityMax:  3.0,
		KeywordWindow:      10,
		ImageAltRatioMin:   0.8,
		InternalLinksMin:   3,
		ParagraphMinWords:  20,
		ContentMinWords:    300,
		ContentLongWords:   1000,
	}
}

// Validate reports the first inconsistent threshold.
func (r Rules) Validate() error {
	switch {
	case r.TitleMin < 0 || r.TitleMin > r.TitleMax:
		return fmt.Errorf("title range %d-%d is invalid", r.TitleMin, r.TitleMax)
	case r.MetaDescriptionMin < 0 || r.MetaDescriptionMin > r.MetaDescriptionMax:
		return fmt.Errorf("meta description range %d-%d is invalid", r.MetaDescriptionMin, r.MetaDescriptionMax)
	case r.H1Min < 1 || r.H1Min > r.H1Max:
		return fmt.Errorf("h1 range %d-%d is invalid", r.H1Min, r.H1Max)
	case r.KeywordDensityMin < 0 || r.KeywordDensityMin > r.KeywordDensityMax:
		return fmt.Errorf("keyword density range %v-%v is invalid", r.KeywordDensityMin, r.KeywordDensityMax)
	case r.KeywordWindow < 1:
		return fmt.Errorf("keyword window must be positive, got %d", r.KeywordWindow)
	case r.ImageAltRatioMin < 0 || r.ImageAltRatioMin > 1:
		return fmt.Errorf("image alt ratio must be within 0-1, got %v", r.ImageAltRatioMin)
	case r.InternalLinksMin < 0 || r.ParagraphMinWords < 0 || r.ContentMinWords < 0:
		return fmt.Errorf("minimum counts must not be negative")
	case r.ContentLongWords < r.ContentMinWords:
		return fmt.Errorf("long content threshold %d is below minimum %d", r.ContentLongWords, r.ContentMinWords)
	}
	return nil
}
