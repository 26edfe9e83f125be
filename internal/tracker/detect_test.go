package tracker

import "testing"

func TestParseRepoURL(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"git@github.com:acme/widgets.git", "acme/widgets"},
		{"git@github.com:acme/widgets", "acme/widgets"},
		{"https://github.com/acme/widgets.git", "acme/widgets"},
		{"https://github.com/acme/widgets", "acme/widgets"},
		{"https://gitlab.com/acme/widgets.git", ""},
		{"ssh://git@example.com/acme/widgets", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := parseRepoURL(tt.url); got != tt.want {
			t.Errorf("parseRepoURL(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}
