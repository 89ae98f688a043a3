package schema

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/githubnext/yamlls/pkg/console"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Association binds resources matching a glob pattern to a schema URL
type Association struct {
	Pattern string `yaml:"pattern" json:"pattern"`
	URL     string `yaml:"url" json:"url"`
}

// Match reports whether uri matches the association pattern. A leading "**/"
// matches any number of directories, including none.
func (a Association) Match(uri string) bool {
	name := strings.TrimPrefix(uri, "file://")
	pattern := a.Pattern
	if ok, _ := path.Match(pattern, name); ok {
		return true
	}
	if rest, found := strings.CutPrefix(pattern, "**/"); found {
		if ok, _ := path.Match(rest, name); ok {
			return true
		}
		for i := 0; i < len(name); i++ {
			if name[i] != '/' {
				continue
			}
			if ok, _ := path.Match(rest, name[i+1:]); ok {
				return true
			}
		}
	}
	return false
}

// Service resolves the schema for a resource from its associations and caches
// compiled schemas by URL. It is safe for concurrent use.
type Service struct {
	associations []Association
	client       *http.Client
	verbose      bool

	mu    sync.Mutex
	cache map[string]*Schema
}

// NewService creates a schema service for the given associations
func NewService(associations []Association, verbose bool) *Service {
	return &Service{
		associations: associations,
		client:       &http.Client{Timeout: 30 * time.Second},
		verbose:      verbose,
		cache:        make(map[string]*Schema),
	}
}

// SchemaForResource returns the schema of the first association matching uri.
// It returns (nil, nil) when no association matches.
func (s *Service) SchemaForResource(ctx context.Context, uri string) (*Schema, error) {
	for _, a := range s.associations {
		if a.Match(uri) {
			if s.verbose {
				fmt.Fprintln(os.Stderr, console.FormatVerboseMessage(fmt.Sprintf("Using schema %s for %s", a.URL, uri)))
			}
			return s.Load(ctx, a.URL)
		}
	}
	if s.verbose {
		fmt.Fprintln(os.Stderr, console.FormatVerboseMessage(fmt.Sprintf("No schema associated with %s", uri)))
	}
	return nil, nil
}

// Load fetches and compiles the schema at url, or returns the cached copy.
// Plain paths and file:// URLs are read from disk; http(s) URLs are fetched.
func (s *Service) Load(ctx context.Context, url string) (*Schema, error) {
	s.mu.Lock()
	cached, ok := s.cache[url]
	s.mu.Unlock()
	if ok {
		return cached, nil
	}

	data, err := s.fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	loader := jsonschema.SchemeURLLoader{
		"file":  jsonschema.FileLoader{},
		"http":  &httpLoader{ctx: ctx, client: s.client},
		"https": &httpLoader{ctx: ctx, client: s.client},
	}
	compiled, err := CompileJSON(canonicalURL(url), data, WithLoader(loader))
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.cache[url]; ok {
		return existing, nil
	}
	s.cache[url] = compiled
	return compiled, nil
}

// Invalidate drops the cached schema for url so the next Load reads it again
func (s *Service) Invalidate(url string) {
	s.mu.Lock()
	delete(s.cache, url)
	s.mu.Unlock()
}

func (s *Service) fetch(ctx context.Context, url string) ([]byte, error) {
	if isHTTP(url) {
		if s.verbose {
			fmt.Fprintln(os.Stderr, console.FormatVerboseMessage("Fetching schema "+url))
		}
		return httpGet(ctx, s.client, url)
	}
	data, err := os.ReadFile(strings.TrimPrefix(url, "file://"))
	if err != nil {
		return nil, fmt.Errorf("failed to read schema %s: %w", url, err)
	}
	return data, nil
}

func isHTTP(url string) bool {
	return strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://")
}

// canonicalURL turns a file path into an absolute file:// URL so relative $ref
// values resolve against it
func canonicalURL(url string) string {
	if isHTTP(url) || strings.HasPrefix(url, "file://") {
		return url
	}
	if abs, err := filepath.Abs(url); err == nil {
		url = abs
	}
	return "file://" + filepath.ToSlash(url)
}

func httpGet(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request for %s: %w", url, err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch schema %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch schema %s: %s", url, resp.Status)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema %s: %w", url, err)
	}
	return data, nil
}

// httpLoader resolves remote $ref targets during compilation
type httpLoader struct {
	ctx    context.Context
	client *http.Client
}

func (l *httpLoader) Load(url string) (any, error) {
	data, err := httpGet(l.ctx, l.client, url)
	if err != nil {
		return nil, err
	}
	return jsonschema.UnmarshalJSON(bytes.NewReader(data))
}
