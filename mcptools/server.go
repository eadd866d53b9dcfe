// Package mcptools serves the audit pipeline as MCP tools so language model
// agents can request audits and page inventories.
package mcptools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/seo-optimizer/auditor/audit"
	"github.com/seo-optimizer/auditor/inventory"
	"github.com/seo-optimizer/auditor/keywords"
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

// Auditor is the subset of *audit.Service the tools call.
type Auditor interface {
	Audit(ctx context.Context, url string, opts audit.Options) (*audit.Audit, error)
	Keywords(ctx context.Context, url string, count int) (*audit.KeywordsResult, error)
	Inventory(ctx context.Context, url string) (*audit.InventoryResult, error)
	InventoryTags(ctx context.Context, url string, tags []string) (*audit.TagsResult, error)
}

type Options struct {
	Implementation *mcp.Implementation
	Instructions   string
}

type Server struct {
	mcpServer *mcp.Server
	audits    Auditor
}

func New(audits Auditor, opts Options) *Server {
	impl := opts.Implementation
	if impl == nil {
		impl = &mcp.Implementation{Name: "seo-auditor", Version: "v1.0.0"}
	}
	server := mcp.NewServer(impl, &mcp.ServerOptions{Instructions: opts.Instructions})
	s := &Server{mcpServer: server, audits: audits}

	mcp.AddTool(server, &mcp.Tool{
		Name:        "analyze_webpage_seo",
		Description: "Fetch a web page and audit it against the SEO rule set. Returns the score, issues, recommendations, top keywords and a text report.",
	}, s.analyze)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "extract_page_keywords",
		Description: "Fetch a web page and rank its keywords by frequency with density percentages.",
	}, s.keywords)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "extract_html_content",
		Description: "Catalog every heading, paragraph and div of a web page with position, depth and attributes.",
	}, s.inventory)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "extract_specific_tags",
		Description: "Catalog only the requested tag types (h1-h6, p, div) of a web page.",
	}, s.tags)

	return s
}

func (s *Server) Run(ctx context.Context, transport mcp.Transport) error {
	return s.mcpServer.Run(ctx, transport)
}

func (s *Server) MCPServer() *mcp.Server {
	return s.mcpServer
}

type URLInput struct {
	URL string `json:"url" jsonschema:"absolute http(s) URL of the page"`
}

type AnalyzeOutput struct {
	Status          string           `json:"status" jsonschema:"success or error"`
	Message         string           `json:"message,omitempty" jsonschema:"error description"`
	URL             string           `json:"url"`
	SEOScore        int              `json:"seo_score" jsonschema:"score from 0 to 100"`
	TotalChecks     int              `json:"total_checks"`
	PassedChecks    int              `json:"passed_checks"`
	Issues          []string         `json:"issues,omitempty"`
	Recommendations []string         `json:"recommendations,omitempty"`
	Keywords        []keywords.Entry `json:"keywords,omitempty" jsonschema:"top ranked keywords"`
	DetailedReport  string           `json:"detailed_report,omitempty" jsonschema:"plain text audit report"`
	PageInfo        *audit.PageInfo  `json:"page_info,omitempty"`
}

func (s *Server) analyze(ctx context.Context, _ *mcp.CallToolRequest, input URLInput) (*mcp.CallToolResult, AnalyzeOutput, error) {
	a, err := s.audits.Audit(ctx, input.URL, audit.Options{})
	if err != nil {
		return nil, AnalyzeOutput{Status: statusError, Message: "Error during SEO analysis: " + err.Error(), URL: input.URL}, nil
	}
	kws := a.Keywords
	if len(kws) > 20 {
		kws = kws[:20]
	}
	return nil, AnalyzeOutput{
		Status:          statusSuccess,
		URL:             a.URL,
		SEOScore:        a.SEOScore,
		TotalChecks:     a.TotalChecks,
		PassedChecks:    a.PassedChecks,
		Issues:          a.Issues,
		Recommendations: a.Recommendations,
		Keywords:        kws,
		DetailedReport:  a.Report,
		PageInfo:        &a.PageInfo,
	}, nil
}

type KeywordsInput struct {
	URL          string `json:"url" jsonschema:"absolute http(s) URL of the page"`
	KeywordCount int    `json:"keyword_count,omitempty" jsonschema:"number of keywords to return, default 20"`
}

type KeywordsOutput struct {
	Status         string           `json:"status" jsonschema:"success or error"`
	Message        string           `json:"message,omitempty"`
	URL            string           `json:"url"`
	Keywords       []keywords.Entry `json:"keywords,omitempty"`
	TotalWords     int              `json:"total_words,omitempty"`
	PageTitle      string           `json:"page_title,omitempty"`
	KeywordSummary string           `json:"keyword_summary,omitempty"`
}

func (s *Server) keywords(ctx context.Context, _ *mcp.CallToolRequest, input KeywordsInput) (*mcp.CallToolResult, KeywordsOutput, error) {
	res, err := s.audits.Keywords(ctx, input.URL, input.KeywordCount)
	if err != nil {
		return nil, KeywordsOutput{Status: statusError, Message: "Error during keyword extraction: " + err.Error(), URL: input.URL}, nil
	}
	return nil, KeywordsOutput{
		Status:         statusSuccess,
		URL:            res.URL,
		Keywords:       res.Keywords,
		TotalWords:     res.TotalWords,
		PageTitle:      res.PageTitle,
		KeywordSummary: res.Summary,
	}, nil
}

type InventoryOutput struct {
	Status         string               `json:"status" jsonschema:"success or error"`
	Message        string               `json:"message,omitempty"`
	URL            string               `json:"url"`
	Inventory      *inventory.Inventory `json:"extracted_content,omitempty"`
	DetailedReport string               `json:"detailed_report,omitempty"`
}

func (s *Server) inventory(ctx context.Context, _ *mcp.CallToolRequest, input URLInput) (*mcp.CallToolResult, InventoryOutput, error) {
	res, err := s.audits.Inventory(ctx, input.URL)
	if err != nil {
		return nil, InventoryOutput{Status: statusError, Message: "Error extracting HTML content: " + err.Error(), URL: input.URL}, nil
	}
	return nil, InventoryOutput{
		Status:         statusSuccess,
		URL:            res.URL,
		Inventory:      res.Inventory,
		DetailedReport: res.Report,
	}, nil
}

type TagsInput struct {
	URL  string `json:"url" jsonschema:"absolute http(s) URL of the page"`
	Tags string `json:"tags" jsonschema:"comma separated tag names such as h1,h2,p"`
}

type TagsOutput struct {
	Status    string                  `json:"status" jsonschema:"success or error"`
	Message   string                  `json:"message,omitempty"`
	URL       string                  `json:"url"`
	Selection *inventory.TagSelection `json:"extracted_content,omitempty"`
}

func (s *Server) tags(ctx context.Context, _ *mcp.CallToolRequest, input TagsInput) (*mcp.CallToolResult, TagsOutput, error) {
	res, err := s.audits.InventoryTags(ctx, input.URL, inventory.ParseTagList(input.Tags))
	if err != nil {
		return nil, TagsOutput{Status: statusError, Message: "Error extracting specific tags: " + err.Error(), URL: input.URL}, nil
	}
	return nil, TagsOutput{Status: statusSuccess, URL: res.URL, Selection: res.TagSelection}, nil
}
