package httputil

import (
	"testing"
)

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{"valid HTTPS", "https://example.com/path", false},
		{"valid HTTP", "http://example.com/path", false},
		{"javascript scheme rejected", "javascript:alert(1)", true},
		{"data scheme rejected", "data:text/html,<h1>Hi</h1>", true},
		{"FTP rejected", "ftp://example.com/file", true},
		{"relative path rejected", "/p/abc123/", true},
		{"empty string", "", true},
		{"no host", "https://", true},
		{"valid with port", "https://example.com:8080/path", false},
		{"valid with query", "https://example.com/path?q=test&a=b", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateURL(tt.url)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateURL(%q) error = %v, wantErr %v", tt.url, err, tt.wantErr)
			}
		})
	}
}

func TestHostAllowed(t *testing.T) {
	allowed := []string{"instagram.com", "cdninstagram.com", "fbcdn.net"}

	tests := []struct {
		name string
		url  string
		want bool
	}{
		{"exact match", "https://instagram.com/p/abc/", true},
		{"www subdomain", "https://www.instagram.com/p/abc/", true},
		{"cdn subdomain", "https://scontent-lhr8-1.cdninstagram.com/v/video.mp4", true},
		{"fbcdn host", "https://video.xx.fbcdn.net/v/clip.mp4", true},
		{"case insensitive", "https://WWW.Instagram.COM/p/abc/", true},
		{"unrelated host", "https://evil.example.com/", false},
		{"suffix without dot boundary", "https://notinstagram.com/", false},
		{"embedded allowed host", "https://instagram.com.evil.example/", false},
		{"malformed url", "://nope", false},
		{"empty url", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HostAllowed(tt.url, allowed); got != tt.want {
				t.Errorf("HostAllowed(%q) = %v, want %v", tt.url, got, tt.want)
			}
		})
	}
}

func TestHostAllowedEmptyList(t *testing.T) {
	if HostAllowed("https://example.com/", nil) {
		t.Error("HostAllowed with empty list should reject everything")
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"normal filename", "clip.mp4", "clip.mp4"},
		{"path traversal", "../../etc/passwd", "passwd"},
		{"directory components", "/home/user/secret.txt", "secret.txt"},
		{"null bytes", "clip\x00.mp4", "clip.mp4"},
		{"Windows special chars", "clip<>:\"|?*.mp4", "clip_______.mp4"},
		{"double dots", "clip..mp4", "clip_mp4"},
		{"empty string", "", "untitled"},
		{"just dot", ".", "untitled"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizeFilename(tt.input)
			if got != tt.expected {
				t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestAttachmentName(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		expected string
	}{
		{"mp4 path", "https://cdn.example.com/v/t50/clip.mp4?efg=abc", "clip.mp4"},
		{"webm path", "https://cdn.example.com/media/reel.webm", "reel.webm"},
		{"no extension", "https://cdn.example.com/v/12345", "video.mp4"},
		{"unrecognized extension", "https://cdn.example.com/page.html", "video.mp4"},
		{"no path", "https://cdn.example.com", "video.mp4"},
		{"malformed url", "://nope", "video.mp4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AttachmentName(tt.url)
			if got != tt.expected {
				t.Errorf("AttachmentName(%q) = %q, want %q", tt.url, got, tt.expected)
			}
		})
	}
}
