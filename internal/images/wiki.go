package images

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"
)

const (
	// DefaultSearchURL is the Spanish Wikipedia action API
	DefaultSearchURL = "https://es.wikipedia.org/w/api.php"

	// DefaultThumbSize bounds the requested thumbnail's largest dimension
	DefaultThumbSize = 1280

	defaultSearchTimeout = 10 * time.Second
	userAgent            = "Explorador/1.0"
)

// PageImage holds the image sources of one matched encyclopedia page.
// Either field may be empty.
type PageImage struct {
	Title     string
	Thumbnail string
	Original  string
}

// Searcher queries a text search backend for page images
type Searcher interface {
	Search(ctx context.Context, query string) ([]PageImage, error)
}

// WikiSearcher implements Searcher against a MediaWiki action API
type WikiSearcher struct {
	searchURL  string
	thumbSize  int
	httpClient *http.Client
	logger     *slog.Logger
}

// NewWikiSearcher creates a MediaWiki page-image searcher
func NewWikiSearcher(searchURL string, thumbSize int, timeout time.Duration, logger *slog.Logger) *WikiSearcher {
	if logger == nil {
		logger = slog.Default()
	}
	if searchURL == "" {
		searchURL = DefaultSearchURL
	}
	if thumbSize <= 0 {
		thumbSize = DefaultThumbSize
	}
	if timeout <= 0 {
		timeout = defaultSearchTimeout
	}
	return &WikiSearcher{
		searchURL:  searchURL,
		thumbSize:  thumbSize,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// wikiResponse is the subset of a generator=search&prop=pageimages reply we read
type wikiResponse struct {
	Query *struct {
		Pages map[string]wikiPage `json:"pages"`
	} `json:"query"`
}

type wikiPage struct {
	Index     int        `json:"index"`
	Title     string     `json:"title"`
	Thumbnail *wikiImage `json:"thumbnail"`
	Original  *wikiImage `json:"original"`
}

type wikiImage struct {
	Source string `json:"source"`
}

// Search returns the top hit's page images for query (at most one page)
func (s *WikiSearcher) Search(ctx context.Context, query string) ([]PageImage, error) {
	params := url.Values{}
	params.Set("origin", "*")
	params.Set("action", "query")
	params.Set("format", "json")
	params.Set("generator", "search")
	params.Set("gsrlimit", "1")
	params.Set("gsrsearch", query)
	params.Set("prop", "pageimages")
	params.Set("piprop", "thumbnail|original")
	params.Set("pithumbsize", strconv.Itoa(s.thumbSize))

	reqURL := s.searchURL + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	s.logger.Debug("image search request", "query", query)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("image search failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("image search: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var parsed wikiResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if parsed.Query == nil || len(parsed.Query.Pages) == 0 {
		return nil, nil
	}

	pages := make([]wikiPage, 0, len(parsed.Query.Pages))
	for _, p := range parsed.Query.Pages {
		pages = append(pages, p)
	}
	sort.Slice(pages, func(i, j int) bool { return pages[i].Index < pages[j].Index })

	results := make([]PageImage, len(pages))
	for i, p := range pages {
		results[i] = PageImage{Title: p.Title}
		if p.Thumbnail != nil {
			results[i].Thumbnail = p.Thumbnail.Source
		}
		if p.Original != nil {
			results[i].Original = p.Original.Source
		}
	}
	return results, nil
}
