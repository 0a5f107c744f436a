// Package fetch loads the dashboard payload from its producer.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/singleflight"

	"finboard/internal/core"
)

// DefaultURL is where the payload producer serves dashboard data.
const DefaultURL = "http://localhost:5000/dashboard-data"

// maxBody bounds the payload read from the network.
const maxBody = 8 << 20

var ErrUnexpectedStatus = errors.New("unexpected status from dashboard data endpoint")

// Source yields one decoded, validated payload per call.
type Source interface {
	Load(ctx context.Context) (core.Payload, error)
}

// HTTPSource performs a single GET against the data endpoint. There are no
// retries; concurrent loads share one in-flight request.
type HTTPSource struct {
	URL     string
	Client  *http.Client
	Timeout time.Duration

	group singleflight.Group
}

// NewHTTPSource returns a source for url with the given request timeout.
func NewHTTPSource(url string, timeout time.Duration) *HTTPSource {
	if url == "" {
		url = DefaultURL
	}
	return &HTTPSource{
		URL:     url,
		Client:  &http.Client{},
		Timeout: timeout,
	}
}

// Load joins the in-flight request, if any. The shared request is detached
// from the caller's cancellation and bounded by Timeout only; a caller whose
// ctx ends stops waiting without failing the others.
func (s *HTTPSource) Load(ctx context.Context) (core.Payload, error) {
	shared := context.WithoutCancel(ctx)
	ch := s.group.DoChan(s.URL, func() (any, error) {
		return s.get(shared)
	})

	select {
	case <-ctx.Done():
		return core.Payload{}, fmt.Errorf("get %s: %w", s.URL, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return core.Payload{}, res.Err
		}
		return res.Val.(core.Payload), nil
	}
}

func (s *HTTPSource) get(ctx context.Context) (core.Payload, error) {
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return core.Payload{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return core.Payload{}, fmt.Errorf("get %s: %w", s.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return core.Payload{}, fmt.Errorf("get %s: %w: %d", s.URL, ErrUnexpectedStatus, resp.StatusCode)
	}

	p, err := core.DecodePayload(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return core.Payload{}, fmt.Errorf("get %s: %w", s.URL, err)
	}
	return p, nil
}

func (s *HTTPSource) String() string { return s.URL }

// FileSource reads a payload saved on disk.
type FileSource struct {
	Path string
}

func (s FileSource) Load(ctx context.Context) (core.Payload, error) {
	if err := ctx.Err(); err != nil {
		return core.Payload{}, err
	}
	f, err := os.Open(s.Path)
	if err != nil {
		return core.Payload{}, fmt.Errorf("open payload: %w", err)
	}
	defer f.Close()

	p, err := core.DecodePayload(f)
	if err != nil {
		return core.Payload{}, fmt.Errorf("%s: %w", s.Path, err)
	}
	return p, nil
}

func (s FileSource) String() string { return s.Path }

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context) (core.Payload, error)

func (f SourceFunc) Load(ctx context.Context) (core.Payload, error) { return f(ctx) }
