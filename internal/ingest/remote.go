package ingest

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"bitacora/internal/core"
)

// Source is a bulk ingestion origin: one fetch yields a full batch of
// normalized records plus the count of rows skipped for lacking a date.
type Source interface {
	Name() string
	Fetch(ctx context.Context) (recs []core.Record, skipped int, err error)
}

// RemoteCSV fetches a published spreadsheet export over HTTP.
type RemoteCSV struct {
	url    string
	client *http.Client
}

var _ Source = (*RemoteCSV)(nil)

func NewRemoteCSV(url string) *RemoteCSV {
	return &RemoteCSV{url: url, client: newPooledHTTPClient()}
}

func (r *RemoteCSV) Name() string { return "remote-csv" }

func (r *RemoteCSV) Fetch(ctx context.Context) ([]core.Record, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.url, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "text/csv")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("fetch %s: %w", r.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, 0, fmt.Errorf("fetch %s: unexpected status %d", r.url, resp.StatusCode)
	}

	return ParseRemoteCSV(resp.Body)
}

// newPooledHTTPClient builds an HTTP client with connection pooling and
// conservative timeouts for the remote sheet endpoint.
func newPooledHTTPClient() *http.Client {
	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	transport := &http.Transport{
		DialContext: dialer.DialContext,

		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		MaxConnsPerHost:     50,
		IdleConnTimeout:     90 * time.Second,

		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,

		ForceAttemptHTTP2: true,
	}

	return &http.Client{
		Transport: transport,
		Timeout:   60 * time.Second,
	}
}
