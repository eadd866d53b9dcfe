// Command seo-mcp serves the audit tools over MCP stdio.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/seo-optimizer/auditor/audit"
	"github.com/seo-optimizer/auditor/config"
	"github.com/seo-optimizer/auditor/history"
	"github.com/seo-optimizer/auditor/logging"
	"github.com/seo-optimizer/auditor/mcptools"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// stdout carries the protocol, so every log line goes to stderr.
	logger := logging.New(os.Stderr, os.Stderr, "seo-mcp")
	logger.SetDebug(cfg.Debug)

	rules, err := config.LoadRules(cfg.RulesFile)
	if err != nil {
		log.Fatalf("rules: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	recorder, err := history.Open(ctx, cfg.History())
	if err != nil {
		log.Fatalf("history: %v", err)
	}

	svc, err := audit.New(cfg.NewFetcher(logger.With("robots")), audit.ServiceOptions{
		Rules:     rules.Rules,
		StopWords: rules.StopWords(),
		CacheTTL:  cfg.CacheTTL,
		CacheSize: cfg.CacheSize,
		History:   recorder,
		Logger:    logger.With("audit"),
	})
	if err != nil {
		log.Fatalf("audit service: %v", err)
	}
	defer svc.Shutdown()

	server := mcptools.New(svc, mcptools.Options{
		Implementation: &mcp.Implementation{Name: "seo-auditor", Version: "v1.0.0"},
		Instructions:   "Use analyze_webpage_seo for a scored audit, extract_page_keywords for keyword density and extract_html_content or extract_specific_tags for the page structure.",
	})

	logger.Info("serving MCP tools on stdio")
	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
		logger.Error("mcp server: %v", err)
	}
}
