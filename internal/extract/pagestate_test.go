package extract

import "testing"

func TestBalancedObject(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
		ok       bool
	}{
		{"simple object", `window._sharedData = {"a":1};`, `{"a":1}`, true},
		{"nested objects", `x = {"a":{"b":{"c":3}}};`, `{"a":{"b":{"c":3}}}`, true},
		{"braces inside strings", `x = {"a":"}{","b":2};`, `{"a":"}{","b":2}`, true},
		{"escaped quote in string", `x = {"a":"say \"hi\" {now}"};`, `{"a":"say \"hi\" {now}"}`, true},
		{"trailing content ignored", `x = {"a":1}; more();`, `{"a":1}`, true},
		{"no object", `var x = 1;`, "", false},
		{"unbalanced", `x = {"a":{"b":1};`, "", false},
		{"empty input", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := balancedObject(tt.input)
			if ok != tt.ok {
				t.Fatalf("balancedObject() ok = %v, want %v", ok, tt.ok)
			}
			if got != tt.expected {
				t.Errorf("balancedObject() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestWalkPageState(t *testing.T) {
	tests := []struct {
		name     string
		obj      string
		expected string
		ok       bool
	}{
		{
			name:     "video url present",
			obj:      `{"entry_data":{"PostPage":[{"graphql":{"shortcode_media":{"video_url":"https://cdn.test/v.mp4"}}}]}}`,
			expected: "https://cdn.test/v.mp4",
			ok:       true,
		},
		{
			name:     "display resources fallback uses last entry",
			obj:      `{"entry_data":{"PostPage":[{"graphql":{"shortcode_media":{"display_resources":[{"src":"https://cdn.test/small.jpg"},{"src":"https://cdn.test/large.jpg"}]}}}]}}`,
			expected: "https://cdn.test/large.jpg",
			ok:       true,
		},
		{
			name:     "legacy media object",
			obj:      `{"entry_data":{"PostPage":[{"media":{"video_url":"https://cdn.test/legacy.mp4"}}]}}`,
			expected: "https://cdn.test/legacy.mp4",
			ok:       true,
		},
		{
			name: "empty entry data",
			obj:  `{"entry_data":{"PostPage":[]}}`,
		},
		{
			name: "missing nested path",
			obj:  `{"config":{"csrf_token":"x"}}`,
		},
		{
			name: "media object without urls",
			obj:  `{"entry_data":{"PostPage":[{"graphql":{"shortcode_media":{"shortcode":"abc"}}}]}}`,
		},
		{
			name: "not json",
			obj:  `{definitely not json`,
		},
		{
			name: "wrong types are a miss",
			obj:  `{"entry_data":"surprise string"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := walkPageState(tt.obj)
			if ok != tt.ok {
				t.Fatalf("walkPageState() ok = %v, want %v", ok, tt.ok)
			}
			if got != tt.expected {
				t.Errorf("walkPageState() = %q, want %q", got, tt.expected)
			}
		})
	}
}
