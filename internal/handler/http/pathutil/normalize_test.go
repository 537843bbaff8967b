package pathutil

import (
	"fmt"
	"testing"
)

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/api/articles/1", "/api/articles/:id"},
		{"/api/articles/9999999", "/api/articles/:id"},
		{"/api/articles/12/approve", "/api/articles/:id/approve"},
		{"/api/publishers/3/journalists", "/api/publishers/:id/journalists"},
		{"/api/subscriptions/publishers/5", "/api/subscriptions/publishers/:id"},
		{"/api/subscriptions/journalists/6", "/api/subscriptions/journalists/:id"},
		{"/api/articles", "/api/articles"},
		{"/api/editor/pending", "/api/editor/pending"},
		{"/api/me/role", "/api/me/role"},
		{"/auth/token", "/auth/token"},
		{"/health", "/health"},
		{"/", "/"},
		{"/api/articles/abc", "/api/articles/abc"},
		{"/unknown/path/123", "/unknown/path/123"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := NormalizePath(tt.path); got != tt.want {
				t.Errorf("NormalizePath(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestNormalizePath_TrailingSlashAndQuery(t *testing.T) {
	for _, path := range []string{"/api/articles/7/", "/api/articles/7?format=json", "/api/articles/7/?a=b"} {
		if got := NormalizePath(path); got != "/api/articles/:id" {
			t.Errorf("NormalizePath(%q) = %q", path, got)
		}
	}
}

func TestNormalizePath_Cardinality(t *testing.T) {
	seen := map[string]struct{}{}
	for i := 1; i <= 1000; i++ {
		seen[NormalizePath(fmt.Sprintf("/api/articles/%d", i))] = struct{}{}
		seen[NormalizePath(fmt.Sprintf("/api/subscriptions/journalists/%d", i))] = struct{}{}
	}
	if len(seen) != 2 {
		t.Errorf("expected 2 unique labels, got %d", len(seen))
	}
}

func TestGetExpectedCardinality(t *testing.T) {
	if got := GetExpectedCardinality(); got != len(pathPatterns)+12 {
		t.Errorf("GetExpectedCardinality() = %d", got)
	}
}

func BenchmarkNormalizePath(b *testing.B) {
	paths := []string{"/api/articles/123", "/api/articles/4/approve", "/health", "/api/editor/pending"}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = NormalizePath(paths[i%len(paths)])
	}
}
