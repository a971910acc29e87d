// Copyright 2025 Certen Protocol
//
// HTTPPeerFetcher is the minimal concrete PeerFetcher: peer-to-peer
// gossip/transport is an explicit spec non-goal, so this is a plain HTTP
// GET against a shelterer's bundle endpoint rather than a purpose-built
// protocol.
package enginecore

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPPeerFetcher fetches a bundle's raw JSON from a peer shelterer's HTTP
// endpoint at fmt.Sprintf(urlTemplate, sheltererID, bundleID).
type HTTPPeerFetcher struct {
	client      *http.Client
	urlTemplate string
}

// NewHTTPPeerFetcher builds an HTTPPeerFetcher. urlTemplate must contain
// two %s verbs: shelterer id, then bundle id.
func NewHTTPPeerFetcher(urlTemplate string) *HTTPPeerFetcher {
	return &HTTPPeerFetcher{
		client:      &http.Client{Timeout: 10 * time.Second},
		urlTemplate: urlTemplate,
	}
}

// FetchBundle retrieves bundleID's raw JSON from sheltererID's endpoint.
func (f *HTTPPeerFetcher) FetchBundle(ctx context.Context, bundleID, sheltererID string) ([]byte, error) {
	url := fmt.Sprintf(f.urlTemplate, sheltererID, bundleID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch bundle: build request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch bundle: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch bundle: shelterer %s returned status %d", sheltererID, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("fetch bundle: read body: %w", err)
	}
	return body, nil
}
