// Package extract locates a playable video URL and a thumbnail in post HTML.
//
// Extraction runs an ordered chain of independent strategies from most to
// least structured: open-graph metadata, linked-data script blocks, the
// embedded page-state script, and finally a raw pattern scan. The first
// strategy producing an absolute video URL wins. When none match, a
// thumbnail-only result is still returned when the page carries one, so an
// image post yields a preview instead of an error.
package extract

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"reelproxy/internal/httputil"
	"reelproxy/internal/media"
)

// strategy attempts one extraction technique against the page, returning a
// candidate URL or reporting a miss.
type strategy struct {
	method media.Method
	fn     func(*page) (string, bool)
}

var strategies = []strategy{
	{media.MethodOGVideo, ogVideo},
	{media.MethodLinkedData, linkedData},
	{media.MethodPageState, pageState},
	{media.MethodRawScan, rawScan},
}

// page bundles the raw HTML with its parsed DOM. The DOM is nil when the
// document cannot be parsed; DOM-based strategies then report a miss while
// the raw scans still run.
type page struct {
	html string
	doc  *goquery.Document
}

// Run applies the strategy chain to html. Pure computation: no network
// access, no randomness; identical input yields identical output.
func Run(html string) media.Extraction {
	p := &page{html: html}
	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(html)); err == nil {
		p.doc = doc
	}

	for _, s := range strategies {
		raw, ok := s.fn(p)
		if !ok {
			continue
		}
		u := NormalizeURL(raw)
		if httputil.ValidateURL(u) != nil {
			// Relative or garbled candidate, keep going down the chain.
			continue
		}
		return media.Extraction{
			VideoURL:     u,
			ThumbnailURL: thumbnail(p),
			Method:       s.method,
		}
	}

	return media.Extraction{ThumbnailURL: thumbnail(p)}
}

// ogVideo reads the open-graph video meta tag or its secure-URL variant.
func ogVideo(p *page) (string, bool) {
	if p.doc == nil {
		return "", false
	}
	var found string
	sel := `meta[property="og:video"], meta[property="og:video:url"], meta[property="og:video:secure_url"]`
	p.doc.Find(sel).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if c, ok := s.Attr("content"); ok && strings.TrimSpace(c) != "" {
			found = strings.TrimSpace(c)
			return false
		}
		return true
	})
	return found, found != ""
}

// linkedData parses application/ld+json script blocks for a contentUrl.
// Malformed JSON is a miss, never an error.
func linkedData(p *page) (string, bool) {
	if p.doc == nil {
		return "", false
	}
	var found string
	p.doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		var ld struct {
			ContentURL string `json:"contentUrl"`
		}
		if err := json.Unmarshal([]byte(s.Text()), &ld); err != nil {
			return true
		}
		if ld.ContentURL != "" {
			found = ld.ContentURL
			return false
		}
		return true
	})
	return found, found != ""
}

var (
	videoURLPattern   = regexp.MustCompile(`"video_url"\s*:\s*"([^"]+)"`)
	displayURLPattern = regexp.MustCompile(`"display_url"\s*:\s*"([^"]+)"`)
)

// rawScan searches the full HTML for a quoted video_url field regardless of
// document structure. Lowest confidence, last resort.
func rawScan(p *page) (string, bool) {
	m := videoURLPattern.FindStringSubmatch(p.html)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// thumbnail recovers a preview image from open-graph metadata or a raw
// display_url field. Empty when the page has neither.
func thumbnail(p *page) string {
	if p.doc != nil {
		var found string
		p.doc.Find(`meta[property="og:image"], meta[property="og:image:url"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			if c, ok := s.Attr("content"); ok && strings.TrimSpace(c) != "" {
				found = strings.TrimSpace(c)
				return false
			}
			return true
		})
		if found != "" {
			if u := NormalizeURL(found); httputil.ValidateURL(u) == nil {
				return u
			}
		}
	}
	if m := displayURLPattern.FindStringSubmatch(p.html); m != nil {
		if u := NormalizeURL(m[1]); httputil.ValidateURL(u) == nil {
			return u
		}
	}
	return ""
}
