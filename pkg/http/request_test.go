package http

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		forwarded  string
		want       string
	}{
		{
			name:       "remote addr with port",
			remoteAddr: "203.0.113.7:54321",
			want:       "203.0.113.7",
		},
		{
			name:       "single forwarded entry wins over remote addr",
			remoteAddr: "10.0.0.1:443",
			forwarded:  "198.51.100.4",
			want:       "198.51.100.4",
		},
		{
			name:       "first forwarded entry of a list",
			remoteAddr: "10.0.0.1:443",
			forwarded:  "198.51.100.4, 10.0.0.2, 10.0.0.3",
			want:       "198.51.100.4",
		},
		{
			name:       "forwarded entry with whitespace",
			remoteAddr: "10.0.0.1:443",
			forwarded:  "  198.51.100.4 , 10.0.0.2",
			want:       "198.51.100.4",
		},
		{
			name:       "no remote addr falls back to loopback",
			remoteAddr: "",
			want:       "127.0.0.1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("POST", "/login", nil)
			r.RemoteAddr = tt.remoteAddr
			if tt.forwarded != "" {
				r.Header.Set("X-Forwarded-For", tt.forwarded)
			}

			assert.Equal(t, tt.want, ClientIP(r))
		})
	}
}

func TestUserAgent(t *testing.T) {
	r := httptest.NewRequest("POST", "/login", nil)
	assert.Equal(t, "Unknown", UserAgent(r))

	r.Header.Set("User-Agent", "Mozilla/5.0")
	assert.Equal(t, "Mozilla/5.0", UserAgent(r))
}
