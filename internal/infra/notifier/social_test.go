package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newsportal/internal/domain/entity"
	"newsportal/internal/resilience/retry"
)

func newSocialServer(t *testing.T, postStatus func(n int32) int) (*httptest.Server, *int32, *int32) {
	t.Helper()
	var tokens, posts int32
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/token", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&tokens, 1)
		user, pass, ok := r.BasicAuth()
		if !ok || user != "portal" || pass != "s3cret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"tok-1","token_type":"bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/posts", func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&posts, 1)
		if r.Header.Get("Authorization") != "Bearer tok-1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		var body socialPost
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.ArticleID == 0 {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		assert.Equal(t, "article-9", r.Header.Get("Idempotency-Key"))
		w.WriteHeader(postStatus(n))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &tokens, &posts
}

func newTestPoster(srv *httptest.Server) *SocialPoster {
	p := NewSocialPoster(SocialConfig{
		Endpoint:      srv.URL + "/posts",
		TokenURL:      srv.URL + "/oauth/token",
		ClientID:      "portal",
		ClientSecret:  "s3cret",
		RatePerMinute: 6000,
		Timeout:       time.Second,
	})
	p.retry = retry.Config{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond, Multiplier: 2}
	return p
}

var socialArticle = &entity.Article{ID: 9, Title: "Bridge reopens", Body: "Traffic resumes on the *north* span."}

func TestSocialPoster_PublishArticle(t *testing.T) {
	srv, tokens, posts := newSocialServer(t, func(int32) int { return http.StatusCreated })
	p := newTestPoster(srv)

	require.NoError(t, p.PublishArticle(context.Background(), socialArticle))
	require.NoError(t, p.PublishArticle(context.Background(), socialArticle))

	assert.EqualValues(t, 1, atomic.LoadInt32(tokens), "token is cached between posts")
	assert.EqualValues(t, 2, atomic.LoadInt32(posts))
}

func TestSocialPoster_RetriesServerErrors(t *testing.T) {
	srv, _, posts := newSocialServer(t, func(n int32) int {
		if n < 3 {
			return http.StatusBadGateway
		}
		return http.StatusOK
	})

	require.NoError(t, newTestPoster(srv).PublishArticle(context.Background(), socialArticle))
	assert.EqualValues(t, 3, atomic.LoadInt32(posts))
}

func TestSocialPoster_ClientErrorIsNotRetried(t *testing.T) {
	srv, _, posts := newSocialServer(t, func(int32) int { return http.StatusUnprocessableEntity })

	err := newTestPoster(srv).PublishArticle(context.Background(), socialArticle)
	var httpErr *retry.HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusUnprocessableEntity, httpErr.StatusCode)
	assert.EqualValues(t, 1, atomic.LoadInt32(posts))
}

func TestSocialPoster_BadCredentials(t *testing.T) {
	srv, _, posts := newSocialServer(t, func(int32) int { return http.StatusOK })
	p := NewSocialPoster(SocialConfig{
		Endpoint:     srv.URL + "/posts",
		TokenURL:     srv.URL + "/oauth/token",
		ClientID:     "portal",
		ClientSecret: "wrong",
	})
	p.retry = retry.Config{MaxAttempts: 1}

	assert.Error(t, p.PublishArticle(context.Background(), socialArticle))
	assert.Zero(t, atomic.LoadInt32(posts))
}
