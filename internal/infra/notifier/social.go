package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"newsportal/internal/domain/entity"
	"newsportal/internal/observability/logging"
	"newsportal/internal/resilience/retry"
)

// SocialConfig contains the external social feed settings.
// ClientSecret is resolved from the environment by the config package.
type SocialConfig struct {
	Endpoint      string
	TokenURL      string
	ClientID      string
	ClientSecret  string
	Scopes        []string
	RatePerMinute int
	MaxRetries    int
	Timeout       time.Duration
}

// SocialPoster posts approved articles to the external social feed using an
// OAuth2 client-credentials token.
type SocialPoster struct {
	config      SocialConfig
	httpClient  *http.Client
	rateLimiter *RateLimiter
	retry       retry.Config
}

type socialPost struct {
	Text      string `json:"text"`
	ArticleID int64  `json:"article_id"`
}

func NewSocialPoster(config SocialConfig) *SocialPoster {
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}
	if config.RatePerMinute <= 0 {
		config.RatePerMinute = 30
	}

	cc := clientcredentials.Config{
		ClientID:     config.ClientID,
		ClientSecret: config.ClientSecret,
		TokenURL:     config.TokenURL,
		Scopes:       config.Scopes,
	}
	base := &http.Client{Timeout: config.Timeout}
	client := cc.Client(context.WithValue(context.Background(), oauth2.HTTPClient, base))
	client.Timeout = config.Timeout

	rc := retry.SocialConfig()
	if config.MaxRetries > 0 {
		rc.MaxAttempts = config.MaxRetries
	}
	return &SocialPoster{
		config:      config,
		httpClient:  client,
		rateLimiter: NewRateLimiter(float64(config.RatePerMinute)/60, 1),
		retry:       rc,
	}
}

// PublishArticle implements Publisher.
func (p *SocialPoster) PublishArticle(ctx context.Context, article *entity.Article) error {
	rendered, err := RenderArticle(article.Title, article.Body)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(socialPost{
		Text:      article.Title + "\n\n" + rendered.Preview,
		ArticleID: article.ID,
	})
	if err != nil {
		return fmt.Errorf("marshal social post: %w", err)
	}

	if err := p.rateLimiter.Allow(ctx); err != nil {
		return fmt.Errorf("rate limiter error: %w", err)
	}

	logger := logging.FromContext(ctx)
	err = retry.WithBackoff(ctx, p.retry, func() error {
		return p.post(ctx, article.ID, payload)
	})
	if err != nil {
		return err
	}
	logger.Info("article posted to social feed", "article_id", article.ID)
	return nil
}

func (p *SocialPoster) post(ctx context.Context, articleID int64, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.config.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create http request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", "article-"+strconv.FormatInt(articleID, 10))

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute http request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	return classifyStatus("social API", resp, body)
}

var _ Publisher = (*SocialPoster)(nil)
