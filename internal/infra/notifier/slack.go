package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"newsportal/internal/domain/entity"
	"newsportal/internal/observability/logging"
	"newsportal/internal/resilience/retry"
)

// SlackConfig contains configuration for the newsroom desk webhook.
type SlackConfig struct {
	// WebhookURL is the Slack Incoming Webhook URL (includes authentication token)
	WebhookURL string

	// Channel overrides the webhook's default channel when set
	Channel string

	// Timeout is the HTTP request timeout for Slack API calls
	Timeout time.Duration
}

// NewsroomDesk posts an editorial alert to the newsroom Slack channel
// whenever an article goes live.
type NewsroomDesk struct {
	config      SlackConfig
	httpClient  *http.Client
	rateLimiter *RateLimiter
	retry       retry.Config
}

// NewNewsroomDesk creates a desk notifier limited to 1 request/second
// (the Slack webhook limit).
func NewNewsroomDesk(config SlackConfig) *NewsroomDesk {
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}
	return &NewsroomDesk{
		config:      config,
		httpClient:  &http.Client{Timeout: config.Timeout},
		rateLimiter: NewRateLimiter(1.0, 1),
		retry:       retry.NewsroomConfig(),
	}
}

// SlackWebhookPayload represents the JSON payload sent to Slack webhook using Block Kit.
type SlackWebhookPayload struct {
	Text    string       `json:"text"`
	Channel string       `json:"channel,omitempty"`
	Blocks  []SlackBlock `json:"blocks"`
}

// SlackBlock represents a Slack Block Kit block.
type SlackBlock struct {
	Type     string            `json:"type"`               // "section", "context", "divider"
	Text     *SlackTextObject  `json:"text,omitempty"`     // Text content (for section)
	Elements []SlackTextObject `json:"elements,omitempty"` // Elements (for context)
}

// SlackTextObject represents a text object in Slack Block Kit.
type SlackTextObject struct {
	Type string `json:"type"` // "mrkdwn" or "plain_text"
	Text string `json:"text"`
}

const (
	// Slack Block Kit limits
	maxSectionTextLength = 3000
	maxFallbackLength    = 150

	slackTruncationSuffix = "..."
)

func (d *NewsroomDesk) buildBlockKitPayload(article *entity.Article, preview string) SlackWebhookPayload {
	fallbackText := truncate("Approved: "+article.Title, maxFallbackLength, slackTruncationSuffix)

	sectionText := truncate(fmt.Sprintf("*%s*\n\n%s", article.Title, preview), maxSectionTextLength, slackTruncationSuffix)

	approved := "pending"
	if article.ApprovedAt != nil {
		approved = article.ApprovedAt.UTC().Format(time.RFC3339)
	}
	contextText := fmt.Sprintf("article #%d • publisher #%d • journalist #%d • approved %s",
		article.ID, article.PublisherID, article.JournalistID, approved)

	return SlackWebhookPayload{
		Text:    fallbackText,
		Channel: d.config.Channel,
		Blocks: []SlackBlock{
			{Type: "section", Text: &SlackTextObject{Type: "mrkdwn", Text: sectionText}},
			{Type: "context", Elements: []SlackTextObject{{Type: "mrkdwn", Text: contextText}}},
		},
	}
}

// sendWebhookRequest returns a retry.HTTPError for any non-2xx reply.
func (d *NewsroomDesk) sendWebhookRequest(ctx context.Context, payload SlackWebhookPayload) error {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.config.WebhookURL, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("create http request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute http request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	return classifyStatus("Slack API", resp, body)
}

// PublishArticle implements Publisher.
func (d *NewsroomDesk) PublishArticle(ctx context.Context, article *entity.Article) error {
	rendered, err := RenderArticle(article.Title, article.Body)
	if err != nil {
		return err
	}
	if err := d.rateLimiter.Allow(ctx); err != nil {
		return fmt.Errorf("rate limiter error: %w", err)
	}
	payload := d.buildBlockKitPayload(article, rendered.Preview)
	err = retry.WithBackoff(ctx, d.retry, func() error {
		return d.sendWebhookRequest(ctx, payload)
	})
	if err != nil {
		return fmt.Errorf("newsroom alert for article %d: %w", article.ID, err)
	}
	logging.FromContext(ctx).Info("newsroom alert sent", "article_id", article.ID)
	return nil
}

var _ Publisher = (*NewsroomDesk)(nil)
