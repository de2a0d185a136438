// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package image

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/taibuivan/yomira-image/internal/platform/apperr"
	"github.com/taibuivan/yomira-image/internal/platform/constants"
)

var errInvalidURL = errors.New("url must be absolute http or https")

// Fetcher downloads the source of a URL upload.
type Fetcher interface {
	// Fetch returns the body and whitelisted mime type of rawURL.
	Fetch(ctx context.Context, rawURL string) ([]byte, string, error)
}

// HTTPFetcher fetches remote images over HTTP.
//
// A HEAD request checks the advertised Content-Type before anything is
// downloaded. The GET response type is checked again and its body is capped
// at maxBytes.
type HTTPFetcher struct {
	client   *http.Client
	maxBytes int64
}

// NewHTTPFetcher creates a new [HTTPFetcher].
func NewHTTPFetcher(timeout time.Duration, maxBytes int64) *HTTPFetcher {
	return &HTTPFetcher{
		client:   &http.Client{Timeout: timeout},
		maxBytes: maxBytes,
	}
}

// NewHTTPFetcherWithClient creates a new [HTTPFetcher] around client.
func NewHTTPFetcherWithClient(client *http.Client, maxBytes int64) *HTTPFetcher {
	return &HTTPFetcher{client: client, maxBytes: maxBytes}
}

// Fetch implements [Fetcher].
func (fetcher *HTTPFetcher) Fetch(ctx context.Context, rawURL string) ([]byte, string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return nil, "", apperr.UpstreamFetch(rawURL, errInvalidURL)
	}

	head, err := fetcher.do(ctx, http.MethodHead, parsed.String())
	if err != nil {
		return nil, "", apperr.UpstreamFetch(rawURL, err)
	}
	head.Body.Close()

	if _, err := CheckMimeType(head.Header.Get(constants.HeaderContentType)); err != nil {
		return nil, "", err
	}

	response, err := fetcher.do(ctx, http.MethodGet, parsed.String())
	if err != nil {
		return nil, "", apperr.UpstreamFetch(rawURL, err)
	}
	defer response.Body.Close()

	mimeType, err := CheckMimeType(response.Header.Get(constants.HeaderContentType))
	if err != nil {
		return nil, "", err
	}

	data, err := io.ReadAll(io.LimitReader(response.Body, fetcher.maxBytes+1))
	if err != nil {
		return nil, "", apperr.UpstreamFetch(rawURL, err)
	}
	if int64(len(data)) > fetcher.maxBytes {
		return nil, "", apperr.UpstreamFetch(rawURL, fmt.Errorf("body exceeds %d bytes", fetcher.maxBytes))
	}

	return data, mimeType, nil
}

func (fetcher *HTTPFetcher) do(ctx context.Context, method, target string) (*http.Response, error) {
	request, err := http.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		return nil, err
	}

	response, err := fetcher.client.Do(request)
	if err != nil {
		return nil, err
	}

	if response.StatusCode < 200 || response.StatusCode > 299 {
		response.Body.Close()
		return nil, fmt.Errorf("%s %s: unexpected status %d", method, target, response.StatusCode)
	}
	return response, nil
}
