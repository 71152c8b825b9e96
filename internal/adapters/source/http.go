package source

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/okian/handicap/internal/domain/naming"
)

// HTTPSource GETs <base URL>/<document name>.
type HTTPSource struct {
	client *resty.Client
	opts   options
}

// NewHTTPSource creates a source fetching below baseURL.
func NewHTTPSource(baseURL string, opts ...Option) *HTTPSource {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(o.timeout).
		SetHeader("Accept", "application/json")
	return &HTTPSource{client: client, opts: o}
}

// Kind implements Source.
func (s *HTTPSource) Kind() string { return "http" }

// Fetch implements Source.
func (s *HTTPSource) Fetch(ctx context.Context, player string) (data []byte, err error) {
	start := time.Now()
	notFound := false
	defer func() { observe(s.Kind(), start, err, notFound) }()

	name := url.PathEscape(naming.DocumentName(player, s.opts.suffix))
	resp, err := s.client.R().SetContext(ctx).Get("/" + name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrFetch, name, err)
	}
	switch {
	case resp.StatusCode() == http.StatusNotFound:
		notFound = true
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	case resp.StatusCode() >= http.StatusBadRequest:
		return nil, fmt.Errorf("%w: %s: status %d", ErrFetch, name, resp.StatusCode())
	}
	return resp.Body(), nil
}
