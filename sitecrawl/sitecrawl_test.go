package sitecrawl

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seo-optimizer/auditor/audit"
	"github.com/seo-optimizer/auditor/crawler"
)

func siteServer(t *testing.T) *httptest.Server {
	t.Helper()
	pages := map[string]string{
		"/": `<a href="/a">A</a><a href="/b#top">B</a><a href="https://other.example/x">X</a>
		      <a href="/logo.png">Logo</a><a href="mailto:hi@example.com">Mail</a>`,
		"/a": `<a href="/c">C</a>`,
		"/b": `<a href="/">Home</a>`,
		"/c": `<p>leaf</p>`,
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := pages[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprintf(w, "<html><body>%s</body></html>", body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestDiscover(t *testing.T) {
	srv := siteServer(t)
	ctx := context.Background()

	t.Run("one hop", func(t *testing.T) {
		got, err := Discover(ctx, srv.URL, DiscoverOptions{MaxDepth: 1})
		require.NoError(t, err)
		assert.Equal(t, []string{srv.URL + "/", srv.URL + "/a", srv.URL + "/b"}, got)
	})

	t.Run("two hops", func(t *testing.T) {
		got, err := Discover(ctx, srv.URL+"/", DiscoverOptions{MaxDepth: 2})
		require.NoError(t, err)
		assert.Equal(t, []string{srv.URL + "/", srv.URL + "/a", srv.URL + "/b", srv.URL + "/c"}, got)
	})

	t.Run("page cap", func(t *testing.T) {
		got, err := Discover(ctx, srv.URL, DiscoverOptions{MaxDepth: 3, MaxPages: 2})
		require.NoError(t, err)
		assert.Len(t, got, 2)
		assert.Contains(t, got, srv.URL+"/")
	})

	t.Run("invalid seed", func(t *testing.T) {
		_, err := Discover(ctx, "ftp://example.com", DiscoverOptions{})
		assert.True(t, crawler.IsValidation(err))
	})

	t.Run("asset seed", func(t *testing.T) {
		got, err := Discover(ctx, srv.URL+"/index.xml", DiscoverOptions{})
		require.Error(t, err)
		assert.True(t, crawler.IsValidation(err))
		assert.Contains(t, err.Error(), srv.URL+"/index.xml")
		assert.Nil(t, got)
	})
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"https://example.com", "https://example.com/", true},
		{"https://EXAMPLE.com/a#x", "https://EXAMPLE.com/a", true},
		{"https://example.com/img/a.JPG", "", false},
		{"https://other.com/a", "", false},
		{"mailto:a@example.com", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := normalize(tt.in, "example.com")
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

type fakeAuditor struct {
	calls atomic.Int32
}

func (f *fakeAuditor) Audit(_ context.Context, url string, _ audit.Options) (*audit.Audit, error) {
	f.calls.Add(1)
	switch url {
	case "https://example.com/broken":
		return nil, &crawler.FetchError{URL: url, StatusCode: 500, Err: errors.New("unexpected status")}
	case "https://example.com/":
		return &audit.Audit{URL: url, SEOScore: 80, TotalChecks: 5, PassedChecks: 4, Issues: []string{"Meta description missing"}}, nil
	default:
		return &audit.Audit{URL: url, SEOScore: 45, TotalChecks: 9, PassedChecks: 4,
			Issues: []string{"Meta description missing", "Content too short (120 words)"}}, nil
	}
}

func TestAuditorRun(t *testing.T) {
	pages := &fakeAuditor{}
	a := NewAuditor(pages, nil)
	a.discover = func(context.Context, string, DiscoverOptions) ([]string, error) {
		return []string{"https://example.com/", "https://example.com/a", "https://example.com/broken"}, nil
	}

	rep, err := a.Run(context.Background(), "https://example.com", Options{Concurrency: 2})
	require.NoError(t, err)

	assert.Equal(t, int32(3), pages.calls.Load())
	assert.Equal(t, 2, rep.Audited)
	assert.Equal(t, 1, rep.Failed)
	assert.Equal(t, 62.5, rep.AverageScore)
	require.Len(t, rep.Pages, 3)
	assert.Equal(t, "https://example.com/a", rep.Pages[1].URL)
	assert.Equal(t, 2, rep.Pages[1].IssueCount)
	assert.Contains(t, rep.Pages[2].Error, "HTTP 500")
	assert.Equal(t, []IssueCount{
		{Issue: "Meta description missing", Pages: 2},
		{Issue: "Content too short (120 words)", Pages: 1},
	}, rep.CommonIssues)
}

func TestAuditorRunErrors(t *testing.T) {
	a := NewAuditor(&fakeAuditor{}, nil)
	a.discover = func(context.Context, string, DiscoverOptions) ([]string, error) {
		return nil, &crawler.ValidationError{Field: "url", Message: "missing host"}
	}
	_, err := a.Run(context.Background(), "https://", Options{})
	assert.True(t, crawler.IsValidation(err))

	a.discover = func(context.Context, string, DiscoverOptions) ([]string, error) {
		return []string{"https://example.com/"}, nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = a.Run(ctx, "https://example.com", Options{})
	assert.ErrorIs(t, err, context.Canceled)
}
