package httputil

import (
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strings"
)

// ValidateURL checks that a URL is absolute, well-formed and uses an HTTP
// scheme.
func ValidateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("malformed URL: %w", err)
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("URL has no host")
	}
	return nil
}

// HostAllowed reports whether the URL's hostname matches one of the allowed
// hosts, either exactly or as a dot-separated suffix (so "instagram.com"
// also permits "www.instagram.com").
func HostAllowed(rawURL string, allowed []string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return false
	}
	for _, a := range allowed {
		a = strings.ToLower(strings.TrimSpace(a))
		if a == "" {
			continue
		}
		if host == a || strings.HasSuffix(host, "."+a) {
			return true
		}
	}
	return false
}

// SanitizeFilename removes path traversal and dangerous characters from a
// filename. Returns just the base name, stripped of any directory components.
func SanitizeFilename(name string) string {
	// Take only the base name to strip directory components
	name = filepath.Base(name)

	// Replace characters that are problematic on various OSes
	replacer := strings.NewReplacer(
		"..", "_",
		"/", "_",
		"\\", "_",
		"\x00", "",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
	)
	name = replacer.Replace(name)

	if name == "" || name == "." || name == ".." {
		return "untitled"
	}

	return name
}

// videoExtensions are remote-path extensions preserved by AttachmentName.
var videoExtensions = map[string]bool{
	".mp4":  true,
	".m4v":  true,
	".mov":  true,
	".webm": true,
	".mkv":  true,
}

// AttachmentName derives a download filename from the remote URL path,
// keeping a recognized video extension and defaulting to .mp4 otherwise.
func AttachmentName(rawURL string) string {
	ext := ".mp4"
	base := "video"
	if u, err := url.Parse(rawURL); err == nil && u.Path != "" {
		b := path.Base(u.Path)
		if e := strings.ToLower(path.Ext(b)); videoExtensions[e] {
			ext = e
			base = strings.TrimSuffix(b, path.Ext(b))
		}
	}
	name := SanitizeFilename(base)
	if name == "untitled" {
		name = "video"
	}
	return name + ext
}
