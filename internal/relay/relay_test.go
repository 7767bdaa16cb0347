package relay

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"

	"reelproxy/internal/media"
)

func TestStreamPipesBytesAndHeaders(t *testing.T) {
	payload := bytes.Repeat([]byte("reelproxy-stream-data-"), 1024)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "video/mp4")
		w.Header().Set("Content-Length", strconv.Itoa(len(payload)))
		w.Write(payload)
	}))
	defer srv.Close()

	r := New(nil, zerolog.Nop())
	rec := httptest.NewRecorder()

	if err := r.Stream(context.Background(), srv.URL+"/v/clip.mp4", rec); err != nil {
		t.Fatalf("Stream() error = %v", err)
	}

	if !bytes.Equal(rec.Body.Bytes(), payload) {
		t.Errorf("streamed body differs from upstream payload (got %d bytes, want %d)",
			rec.Body.Len(), len(payload))
	}
	if got := rec.Header().Get("Content-Type"); got != "video/mp4" {
		t.Errorf("Content-Type = %q, want video/mp4", got)
	}
	if got := rec.Header().Get("Content-Length"); got != strconv.Itoa(len(payload)) {
		t.Errorf("Content-Length = %q, want %d", got, len(payload))
	}
	if got := rec.Header().Get("Content-Disposition"); got != `attachment; filename="clip.mp4"` {
		t.Errorf("Content-Disposition = %q", got)
	}
}

func TestStreamDefaultsContentType(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header()["Content-Type"] = nil // suppress auto-detection
		w.Write([]byte{0x00, 0x01})
	}))
	defer srv.Close()

	r := New(nil, zerolog.Nop())
	rec := httptest.NewRecorder()

	if err := r.Stream(context.Background(), srv.URL+"/v/12345", rec); err != nil {
		t.Fatalf("Stream() error = %v", err)
	}
	if got := rec.Header().Get("Content-Type"); got != "application/octet-stream" {
		t.Errorf("Content-Type = %q, want application/octet-stream", got)
	}
	if got := rec.Header().Get("Content-Disposition"); got != `attachment; filename="video.mp4"` {
		t.Errorf("Content-Disposition = %q", got)
	}
}

func TestStreamRejectsDisallowedHostBeforeRequest(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte("should never be fetched"))
	}))
	defer srv.Close()

	r := New([]string{"cdninstagram.com"}, zerolog.Nop())
	rec := httptest.NewRecorder()

	err := r.Stream(context.Background(), srv.URL+"/v/clip.mp4", rec)
	if err == nil {
		t.Fatal("Stream() expected error for disallowed host")
	}
	if kind := media.KindOf(err); kind != media.KindInvalidInput {
		t.Errorf("error kind = %q, want invalid_input", kind)
	}
	if n := hits.Load(); n != 0 {
		t.Errorf("upstream hits = %d, want 0 (allow-list check precedes the request)", n)
	}
	if rec.Body.Len() != 0 {
		t.Errorf("bytes written = %d, want 0", rec.Body.Len())
	}
}

func TestStreamEmptyAllowListProxiesAnyHost(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("open relay"))
	}))
	defer srv.Close()

	r := New(nil, zerolog.Nop())
	rec := httptest.NewRecorder()

	if err := r.Stream(context.Background(), srv.URL+"/v/clip.mp4", rec); err != nil {
		t.Fatalf("Stream() error = %v", err)
	}
	if rec.Body.String() != "open relay" {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func TestStreamInvalidURL(t *testing.T) {
	r := New(nil, zerolog.Nop())
	rec := httptest.NewRecorder()

	err := r.Stream(context.Background(), "not a url", rec)
	if err == nil {
		t.Fatal("Stream() expected error")
	}
	if kind := media.KindOf(err); kind != media.KindInvalidInput {
		t.Errorf("error kind = %q, want invalid_input", kind)
	}
}

func TestStreamUpstreamErrorBeforeBytes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))
	defer srv.Close()

	r := New(nil, zerolog.Nop())
	rec := httptest.NewRecorder()

	err := r.Stream(context.Background(), srv.URL+"/v/clip.mp4", rec)
	if err == nil {
		t.Fatal("Stream() expected error for non-2xx upstream")
	}
	if kind := media.KindOf(err); kind != media.KindStreamFailure {
		t.Errorf("error kind = %q, want stream_failure", kind)
	}
	if rec.Body.Len() != 0 {
		t.Errorf("bytes written = %d, want 0 (failure reported before streaming)", rec.Body.Len())
	}
}
