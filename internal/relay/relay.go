// Package relay re-streams a resolved video URL to an HTTP client as an
// attachment download, piping bytes through as they arrive without buffering
// the payload.
package relay

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"reelproxy/internal/httputil"
	"reelproxy/internal/media"
)

// Relay fetches media bytes and forwards them to a destination writer.
// Safe for concurrent use.
type Relay struct {
	client       *http.Client
	allowedHosts []string
	log          zerolog.Logger
}

// New creates a Relay. allowedHosts restricts relay targets to known media
// hosts, matched by suffix. An empty list disables the check: the relay will
// then proxy any host it is asked to, which must be an explicit
// configuration choice.
func New(allowedHosts []string, log zerolog.Logger) *Relay {
	return &Relay{
		// No whole-request timeout: large streams are bounded by the
		// caller's context instead.
		client:       httputil.NewClient(0),
		allowedHosts: allowedHosts,
		log:          log,
	}
}

// Stream fetches videoURL and pipes the bytes to w. Validation and the
// allow-list check happen before any outbound request. Headers are committed
// once, before the first body byte; a transport error after that point can
// only close the connection, never rewrite what was already flushed.
func (r *Relay) Stream(ctx context.Context, videoURL string, w http.ResponseWriter) error {
	if err := httputil.ValidateURL(videoURL); err != nil {
		return media.Wrap(media.KindInvalidInput, "invalid video URL", err)
	}
	if len(r.allowedHosts) > 0 && !httputil.HostAllowed(videoURL, r.allowedHosts) {
		return media.E(media.KindInvalidInput, "video host is not a permitted relay target")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, videoURL, nil)
	if err != nil {
		return media.Wrap(media.KindInvalidInput, "building upstream request", err)
	}
	httputil.SetBrowserHeaders(req, "")

	resp, err := r.client.Do(req)
	if err != nil {
		return media.Wrap(media.KindStreamFailure, "upstream request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return media.E(media.KindStreamFailure, fmt.Sprintf("upstream returned status %d", resp.StatusCode))
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	if resp.ContentLength > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(resp.ContentLength, 10))
	}
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", httputil.AttachmentName(videoURL)))
	w.WriteHeader(http.StatusOK)

	written, err := io.Copy(w, resp.Body)
	if err != nil {
		r.log.Warn().Err(err).Int64("written", written).Msg("relay stream interrupted")
		return media.Wrap(media.KindStreamFailure, "stream interrupted mid-transfer", err)
	}
	return nil
}
