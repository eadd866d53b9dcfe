// Command seoaudit audits one page and prints the report.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/lipgloss"

	"github.com/seo-optimizer/auditor/audit"
	"github.com/seo-optimizer/auditor/config"
	"github.com/seo-optimizer/auditor/logging"
	"github.com/seo-optimizer/auditor/report"
)

var (
	bannerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1).Border(lipgloss.RoundedBorder())
	goodColor   = lipgloss.Color("10")
	fairColor   = lipgloss.Color("11")
	poorColor   = lipgloss.Color("9")
)

func main() {
	config.LoadEnv()
	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	rules, err := config.LoadRules(cfg.RulesFile)
	if err != nil {
		log.Fatalf("rules: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, err := audit.New(cfg.NewFetcher(logging.New(os.Stderr, os.Stderr, "seoaudit")), audit.ServiceOptions{
		Rules:     rules.Rules,
		StopWords: rules.StopWords(),
	})
	if err != nil {
		log.Fatalf("audit service: %v", err)
	}
	code := run(ctx, svc, os.Args[1:], os.Stdout, os.Stderr)
	svc.Shutdown()
	os.Exit(code)
}

func run(ctx context.Context, svc *audit.Service, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("seoaudit", flag.ContinueOnError)
	fs.SetOutput(stderr)
	asJSON := fs.Bool("json", false, "print the audit as JSON")
	csvPath := fs.String("csv", "", "write the keyword ranking to this CSV file")
	inv := fs.Bool("inventory", false, "print the element inventory instead of the audit")
	minLen := fs.Int("min-len", 3, "minimum keyword length")
	top := fs.Int("top", 20, "number of keywords to rank")
	minWords := fs.Int("min-words", 20, "minimum words per paragraph")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: seoaudit [flags] URL")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return 2
	}
	target := fs.Arg(0)

	if *inv {
		res, err := svc.Inventory(ctx, target)
		if err != nil {
			fmt.Fprintln(stderr, report.RenderError(err))
			return 1
		}
		if *asJSON {
			return writeJSON(stdout, stderr, res)
		}
		fmt.Fprintln(stdout, res.Report)
		return 0
	}

	a, err := svc.Audit(ctx, target, audit.Options{
		MinKeywordLength:  *minLen,
		TopKeywordCount:   *top,
		MinParagraphWords: *minWords,
	})
	if err != nil {
		fmt.Fprintln(stderr, report.RenderError(err))
		return 1
	}

	if *csvPath != "" {
		if err := writeCSV(*csvPath, a); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
	}

	if *asJSON {
		return writeJSON(stdout, stderr, a)
	}
	fmt.Fprintln(stdout, banner(a.SEOScore))
	fmt.Fprintln(stdout, a.Report)
	return 0
}

func banner(score int) string {
	color := poorColor
	switch {
	case score >= 70:
		color = goodColor
	case score >= 50:
		color = fairColor
	}
	text := fmt.Sprintf("SEO Score %d/100 · %s", score, report.Status(score))
	return bannerStyle.BorderForeground(color).Foreground(color).Render(text)
}

func writeCSV(path string, a *audit.Audit) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := report.WriteKeywordsCSV(f, a.Keywords); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

func writeJSON(stdout, stderr io.Writer, v any) int {
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
