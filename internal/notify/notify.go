// Package notify delivers human-visible messages about notable cases
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/ppiankov/casework/internal/logging"
	"github.com/ppiankov/casework/internal/model"
)

// Notifier sends one message
type Notifier interface {
	Notify(ctx context.Context, message string) error
}

// New returns a webhook notifier when a URL is configured and a log
// notifier otherwise
func New(cfg model.NotifyConfig, logger *slog.Logger) Notifier {
	if cfg.WebhookURL == "" {
		return NewLog(logger)
	}
	return NewWebhook(cfg.WebhookURL, cfg.Timeout, logger)
}

// Webhook posts messages to a Discord-compatible webhook
type Webhook struct {
	url    string
	client *http.Client
	logger *slog.Logger
}

// NewWebhook creates a notifier posting to url
func NewWebhook(url string, timeout time.Duration, logger *slog.Logger) *Webhook {
	return &Webhook{
		url:    url,
		client: &http.Client{Timeout: timeout},
		logger: logging.OrDefault(logger, "notify"),
	}
}

type webhookPayload struct {
	Content string `json:"content"`
}

// Notify posts message as a JSON "content" payload
func (w *Webhook) Notify(ctx context.Context, message string) error {
	body, err := json.Marshal(webhookPayload{Content: message})
	if err != nil {
		return fmt.Errorf("encode webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("send webhook: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	w.logger.Debug("notification sent", "message", message)
	return nil
}

// Log writes messages to the log only
type Log struct {
	logger *slog.Logger
}

// NewLog creates a notifier that only logs
func NewLog(logger *slog.Logger) *Log {
	return &Log{logger: logging.OrDefault(logger, "notify")}
}

func (l *Log) Notify(_ context.Context, message string) error {
	l.logger.Info("notification", "message", message)
	return nil
}
