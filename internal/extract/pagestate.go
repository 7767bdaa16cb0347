package extract

import (
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// The page-state strategy depends on an undocumented nested JSON shape the
// target site embeds in an inline script. Everything shape-specific lives in
// this file so markup changes touch only one strategy. Any structural
// mismatch is a plain miss, never an error.

// pageStateMarkers are global-state assignments that precede the JSON
// object literal.
var pageStateMarkers = []string{
	"window._sharedData",
	"window.__additionalDataLoaded",
}

// pageState scans inline scripts for a global-state assignment, captures the
// brace-balanced object that follows, and walks it for a video URL.
func pageState(p *page) (string, bool) {
	if p.doc == nil {
		return "", false
	}
	var found string
	p.doc.Find("script:not([src])").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := s.Text()
		for _, marker := range pageStateMarkers {
			idx := strings.Index(text, marker)
			if idx < 0 {
				continue
			}
			obj, ok := balancedObject(text[idx:])
			if !ok {
				continue
			}
			if u, ok := walkPageState(obj); ok {
				found = u
				return false
			}
		}
		return true
	})
	return found, found != ""
}

// balancedObject returns the first brace-balanced JSON object literal in s,
// honoring string quoting and escapes so braces inside values do not end the
// match early.
func balancedObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if escaped {
			escaped = false
			continue
		}
		switch c {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return s[start : i+1], true
				}
			}
		}
	}
	return "", false
}

type pageStateRoot struct {
	EntryData struct {
		PostPage []postPageEntry `json:"PostPage"`
	} `json:"entry_data"`
}

type postPageEntry struct {
	Graphql struct {
		ShortcodeMedia postMedia `json:"shortcode_media"`
	} `json:"graphql"`
	Media *postMedia `json:"media"`
}

type postMedia struct {
	VideoURL         string `json:"video_url"`
	DisplayURL       string `json:"display_url"`
	DisplayResources []struct {
		Src string `json:"src"`
	} `json:"display_resources"`
}

// walkPageState decodes the captured object and follows the known nested
// path: entry data -> first post entry -> media object -> video URL, falling
// back to the last display resource.
func walkPageState(obj string) (string, bool) {
	var root pageStateRoot
	if err := json.Unmarshal([]byte(obj), &root); err != nil {
		return "", false
	}

	entries := root.EntryData.PostPage
	if len(entries) == 0 {
		return "", false
	}

	m := entries[0].Graphql.ShortcodeMedia
	if m.VideoURL == "" && len(m.DisplayResources) == 0 && entries[0].Media != nil {
		// Older page revisions carried the media object directly.
		m = *entries[0].Media
	}

	if m.VideoURL != "" {
		return m.VideoURL, true
	}
	if n := len(m.DisplayResources); n > 0 {
		return m.DisplayResources[n-1].Src, true
	}
	return "", false
}
