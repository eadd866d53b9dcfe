package crawler

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
)

// BrowserFetcher renders pages in headless Chrome so script-built markup is
// audited the way a search engine renderer would see it.
type BrowserFetcher struct {
	execPath  string
	userAgent string
	timeout   time.Duration
	settle    time.Duration
}

// NewBrowserFetcher returns a fetcher driving the Chrome binary at execPath,
// or the one chromedp finds on PATH when execPath is empty.
func NewBrowserFetcher(execPath, userAgent string, timeout time.Duration) *BrowserFetcher {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &BrowserFetcher{
		execPath:  execPath,
		userAgent: userAgent,
		timeout:   timeout,
		settle:    500 * time.Millisecond,
	}
}

func (f *BrowserFetcher) Fetch(ctx context.Context, rawURL string) (*Response, error) {
	target, err := ValidateURL(rawURL)
	if err != nil {
		return nil, err
	}
	rawURL = target.String()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(f.userAgent),
	)
	if f.execPath != "" {
		opts = append(opts, chromedp.ExecPath(f.execPath))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	tabCtx, cancelTab := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))
	defer cancelTab()

	tabCtx, cancelTimeout := context.WithTimeout(tabCtx, f.timeout)
	defer cancelTimeout()

	start := time.Now()
	resp, err := chromedp.RunResponse(tabCtx, chromedp.Navigate(rawURL))
	if err != nil {
		return nil, &FetchError{URL: rawURL, Err: err}
	}

	status := 0
	finalURL := rawURL
	contentType := ""
	if resp != nil {
		status = int(resp.Status)
		finalURL = resp.URL
		contentType = resp.MimeType
	}
	if status != 0 && (status < 200 || status > 299) {
		return nil, &FetchError{URL: rawURL, StatusCode: status, Err: fmt.Errorf("unexpected status %d", status)}
	}

	var html string
	if err := chromedp.Run(tabCtx,
		chromedp.Sleep(f.settle),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	); err != nil {
		return nil, &FetchError{URL: rawURL, StatusCode: status, Err: fmt.Errorf("read rendered document: %w", err)}
	}

	return &Response{
		URL:         rawURL,
		FinalURL:    finalURL,
		StatusCode:  status,
		ContentType: contentType,
		Body:        []byte(html),
		Duration:    time.Since(start),
	}, nil
}
