// Package media defines shared types for the reelproxy service.
package media

// Source identifies which fetch strategy produced the page HTML.
type Source int

const (
	SourceDirect Source = iota
	SourceProvider
	SourceRelay
)

func (s Source) String() string {
	switch s {
	case SourceDirect:
		return "direct"
	case SourceProvider:
		return "provider"
	case SourceRelay:
		return "relay"
	default:
		return "unknown"
	}
}

// Page is the result of a successful page fetch.
// The HTML is carried as-is: partial or garbled content still counts as a
// successful fetch, and extraction decides downstream whether it is usable.
type Page struct {
	HTML   string
	Source Source
}

// Method identifies which extraction strategy matched, in decreasing order
// of confidence.
type Method int

const (
	MethodNone Method = iota
	MethodOGVideo
	MethodLinkedData
	MethodPageState
	MethodRawScan
)

func (m Method) String() string {
	switch m {
	case MethodOGVideo:
		return "og-video"
	case MethodLinkedData:
		return "linked-data"
	case MethodPageState:
		return "page-state"
	case MethodRawScan:
		return "raw-scan"
	default:
		return "none"
	}
}

// Extraction is the outcome of running the strategy chain over post HTML.
// Both URL fields may be empty: an image post or an extraction miss is a
// legitimate terminal result, not an error.
type Extraction struct {
	VideoURL     string
	ThumbnailURL string
	Method       Method
}
