package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v2"

	"github.com/seo-optimizer/auditor/analyzer"
	"github.com/seo-optimizer/auditor/keywords"
)

// RuleSet is the content of a rules file. Keys left out keep their defaults.
type RuleSet struct {
	Rules          analyzer.Rules `yaml:"rules" toml:"rules"`
	ExtraStopWords []string       `yaml:"extra_stop_words" toml:"extra_stop_words"`
}

// DefaultRuleSet is the built-in rule table with no extra stop words.
func DefaultRuleSet() *RuleSet {
	return &RuleSet{Rules: analyzer.DefaultRules()}
}

// StopWords merges the extra stop words into the built-in table.
func (rs *RuleSet) StopWords() keywords.Set {
	extra := make([]string, 0, len(rs.ExtraStopWords))
	for _, w := range rs.ExtraStopWords {
		if w = strings.ToLower(strings.TrimSpace(w)); w != "" {
			extra = append(extra, w)
		}
	}
	return keywords.DefaultStopWords().With(extra...)
}

// LoadRules reads a .yaml, .yml or .toml rules file. An empty path returns
// the defaults.
func LoadRules(path string) (*RuleSet, error) {
	rs := DefaultRuleSet()
	if path == "" {
		return rs, nil
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read rules: %w", err)
		}
		if err := yaml.UnmarshalStrict(data, rs); err != nil {
			return nil, fmt.Errorf("parse rules %s: %w", path, err)
		}
	case ".toml":
		md, err := toml.DecodeFile(path, rs)
		if err != nil {
			return nil, fmt.Errorf("parse rules %s: %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("parse rules %s: unknown keys %v", path, undecoded)
		}
	default:
		return nil, fmt.Errorf("unsupported rules file extension %q", ext)
	}

	if err := rs.Rules.Validate(); err != nil {
		return nil, fmt.Errorf("rules %s: %w", path, err)
	}
	return rs, nil
}
