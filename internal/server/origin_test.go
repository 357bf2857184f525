package server

import (
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestOriginPolicy_AllowsConfiguredOrigin(t *testing.T) {
	req := require.New(t)
	policy := newOriginPolicy([]string{"http://localhost:8080"}, discardLogger())

	r := httptest.NewRequest("GET", "/ws", nil)
	r.Header.Set("Origin", "http://localhost:8080")
	req.True(policy.checkOrigin(r))

	// Scheme and host comparison is case-insensitive
	r.Header.Set("Origin", "HTTP://LOCALHOST:8080")
	req.True(policy.checkOrigin(r))
}

func TestOriginPolicy_BlocksUnknownOrigin(t *testing.T) {
	req := require.New(t)
	policy := newOriginPolicy([]string{"http://localhost:8080"}, discardLogger())

	r := httptest.NewRequest("GET", "/ws", nil)
	r.Header.Set("Origin", "http://evil.example.com")
	req.False(policy.checkOrigin(r))
}

func TestOriginPolicy_BlocksMissingOrigin(t *testing.T) {
	policy := newOriginPolicy([]string{"http://localhost:8080"}, discardLogger())
	r := httptest.NewRequest("GET", "/ws", nil)
	require.False(t, policy.checkOrigin(r))
}

func TestOriginPolicy_Wildcard(t *testing.T) {
	req := require.New(t)
	policy := newOriginPolicy([]string{"*"}, discardLogger())

	r := httptest.NewRequest("GET", "/ws", nil)
	r.Header.Set("Origin", "http://anywhere.example.com")
	req.True(policy.checkOrigin(r))

	// Wildcard also admits requests with no Origin header at all
	r.Header.Del("Origin")
	req.True(policy.checkOrigin(r))
}

func TestOriginPolicy_IgnoresMalformedConfigEntries(t *testing.T) {
	req := require.New(t)
	policy := newOriginPolicy([]string{"not a url", "", "http://ok.example.com"}, discardLogger())

	r := httptest.NewRequest("GET", "/ws", nil)
	r.Header.Set("Origin", "http://ok.example.com")
	req.True(policy.checkOrigin(r))
}
