package signal

import (
	"net/http/httptest"
	"testing"
)

func TestOriginPolicy(t *testing.T) {
	tests := []struct {
		name    string
		allowed []string
		origin  string
		want    bool
	}{
		{"no origin header", nil, "", true},
		{"same host", nil, "http://chat.example:8080", true},
		{"same host different case", nil, "http://CHAT.example:8080", true},
		{"foreign origin", nil, "http://evil.example", false},
		{"foreign origin on another port", nil, "http://chat.example:9999", false},
		{"configured origin", []string{" https://app.example "}, "https://APP.example", true},
		{"configured origin wrong scheme", []string{"https://app.example"}, "http://app.example", false},
		{"wildcard", []string{"*"}, "http://evil.example", true},
		{"invalid entry ignored", []string{"not a url"}, "http://evil.example", false},
		{"garbage header", nil, "::::", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newOriginPolicy(tt.allowed)
			r := httptest.NewRequest("GET", "http://chat.example:8080/api/ws", nil)
			if tt.origin != "" {
				r.Header.Set("Origin", tt.origin)
			}
			if got := p.check(r); got != tt.want {
				t.Errorf("check(%q) = %v, want %v", tt.origin, got, tt.want)
			}
		})
	}
}
