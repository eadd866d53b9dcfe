package crawler

import "time"

// HeadingLevels lists the heading tags in hierarchy order.
var HeadingLevels = []string{"h1", "h2", "h3", "h4", "h5", "h6"}

// PageSnapshot is the immutable result of one fetch and parse cycle.
type PageSnapshot struct {
	URL             string              `json:"url"`
	FinalURL        string              `json:"finalUrl,omitempty"`
	Title           string              `json:"title,omitempty"`
	MetaDescription string              `json:"metaDescription,omitempty"`
	Headings        map[string][]string `json:"headings"`
	Paragraphs      []string            `json:"paragraphs"`
	Images          []Image             `json:"images"`
	Links           []Link              `json:"links"`
	RawHTML         string              `json:"-"`
	TextContent     string              `json:"-"`
	WordCount       int                 `json:"wordCount"`
	StatusCode      int                 `json:"statusCode,omitempty"`
	MainContent     *Article            `json:"mainContent,omitempty"`
	FetchedAt       time.Time           `json:"fetchedAt"`
}

// Image is one img element with a usable src.
type Image struct {
	Src    string `json:"src"`
	Alt    string `json:"alt"`
	Title  string `json:"title"`
	Width  string `json:"width,omitempty"`
	Height string `json:"height,omitempty"`
}

// Link is one anchor element carrying an href attribute.
type Link struct {
	Href  string `json:"href"`
	Text  string `json:"text"`
	Title string `json:"title"`
}

// Article summarizes the main readable content block of a page.
type Article struct {
	Title     string `json:"title"`
	Excerpt   string `json:"excerpt"`
	WordCount int    `json:"wordCount"`
}

// Response is the raw outcome of a successful fetch.
type Response struct {
	URL         string
	FinalURL    string
	StatusCode  int
	ContentType string
	Body        []byte
	Duration    time.Duration
}

func (p *PageSnapshot) HasTitle() bool { return p.Title != "" }

func (p *PageSnapshot) HasMetaDescription() bool { return p.MetaDescription != "" }

// HeadingCount returns how many headings of the given level were found.
func (p *PageSnapshot) HeadingCount(level string) int {
	return len(p.Headings[level])
}

// ImagesWithAlt counts images whose alt text is not blank.
func (p *PageSnapshot) ImagesWithAlt() int {
	n := 0
	for _, img := range p.Images {
		if trimmed(img.Alt) != "" {
			n++
		}
	}
	return n
}
