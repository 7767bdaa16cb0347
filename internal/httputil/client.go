// Package httputil provides a security-hardened HTTP client and input
// sanitization utilities shared by the fetch and relay layers.
package httputil

import (
	"crypto/tls"
	"net/http"
	"time"
)

// Browser-mimicking request headers. Target sites serve stripped-down or
// blocked pages to clients that do not look like a browser.
const (
	UserAgent      = "Mozilla/5.0 (X11; Linux x86_64; rv:109.0) Gecko/20100101 Firefox/121.0"
	AcceptHTML     = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"
	AcceptLanguage = "en-US,en;q=0.5"
)

// NewClient creates a hardened HTTP client with secure defaults.
// A zero timeout disables the whole-request deadline; callers streaming
// large bodies bound the request with a context instead.
func NewClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
			ForceAttemptHTTP2:   true,
			MaxIdleConns:        10,
			IdleConnTimeout:     30 * time.Second,
			DisableCompression:  false,
			MaxIdleConnsPerHost: 5,
		},
	}
}

// SetBrowserHeaders applies standard browser-like headers to a request.
// referer may be empty.
func SetBrowserHeaders(req *http.Request, referer string) {
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", AcceptHTML)
	req.Header.Set("Accept-Language", AcceptLanguage)
	if referer != "" {
		req.Header.Set("Referer", referer)
	}
}
