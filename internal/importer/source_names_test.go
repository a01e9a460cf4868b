package importer

import "testing"

func TestSourceNameForDomain(t *testing.T) {
	tests := []struct {
		domain   string
		expected string
	}{
		{"nytimes.com", "The New York Times"},
		{"www.nytimes.com", "The New York Times"},
		{"KCUR.org", "KCUR"},
		{"somepaper.example.com", "Somepaper"},
		{"localblog.net", "Localblog"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := SourceNameForDomain(tt.domain); got != tt.expected {
			t.Errorf("SourceNameForDomain(%q) = %q, want %q", tt.domain, got, tt.expected)
		}
	}
}
