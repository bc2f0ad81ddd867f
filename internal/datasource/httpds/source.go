package httpds

import (
	"context"
	"io"

	"csvclean/internal/datasource"
)

// Source reads a CSV from a URL.
type Source struct {
	client *Client
	url    string
}

var _ datasource.Source = (*Source)(nil)

// NewSource returns a Source fetching url with c.
func NewSource(c *Client, url string) *Source {
	return &Source{client: c, url: url}
}

// URL returns the configured URL.
func (s *Source) URL() string { return s.url }

// Open performs the GET and returns the response body.
func (s *Source) Open(ctx context.Context) (io.ReadCloser, error) {
	resp, err := s.client.Get(ctx, s.url)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}
