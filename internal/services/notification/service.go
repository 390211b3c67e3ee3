package notificationservice

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"resumeapi/internal/models"
	"time"
)

const (
	pkg = "notificationService/"

	EventFileUploaded = "file.uploaded"
	userAgent         = "resume-upload-api/1.0"

	// responses are logged, never returned; cap what is read
	maxLoggedBody = 4 << 10
)

// Notifier posts upload events to a webhook once. Failures are reported in
// the returned status and never as errors.
type Notifier struct {
	log     *slog.Logger
	client  *http.Client
	url     string
	secret  string
	timeout time.Duration
	now     func() time.Time
}

func New(log *slog.Logger, url string, secret string, timeout time.Duration) *Notifier {
	return &Notifier{
		log:     log,
		client:  &http.Client{},
		url:     url,
		secret:  secret,
		timeout: timeout,
		now:     time.Now,
	}
}

func (n *Notifier) Notify(ctx context.Context, payload models.WebhookPayload) models.WebhookStatus {
	op := pkg + "Notify"

	log := n.log.With(slog.String("op", op), slog.String("file_id", payload.FileID))

	if n.url == "" {
		log.Debug("webhook url is not configured")
		return models.WebhookStatus{Status: models.WebhookStatusSkipped, Message: "webhook is not configured"}
	}

	if ctx.Err() != nil {
		log.Info("request cancelled before webhook call")
		return models.WebhookStatus{Status: models.WebhookStatusSkipped, Message: "request cancelled before notification"}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		log.Error("failed to marshal payload", slog.String("error", err.Error()))
		return models.WebhookStatus{Status: models.WebhookStatusError, Message: "failed to build webhook payload"}
	}

	callCtx := ctx
	if n.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, n.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(callCtx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		log.Error("failed to create webhook request", slog.String("error", err.Error()))
		return models.WebhookStatus{Status: models.WebhookStatusError, Message: "invalid webhook url"}
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("X-Webhook-Event", EventFileUploaded)
	req.Header.Set("X-Webhook-Timestamp", n.now().UTC().Format(time.RFC3339))
	if n.secret != "" {
		req.Header.Set("X-Webhook-Signature", Sign(body, n.secret))
	}

	resp, err := n.client.Do(req)
	if err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			log.Info("request cancelled during webhook call")
			return models.WebhookStatus{Status: models.WebhookStatusSkipped, Message: "request cancelled during notification"}
		}

		if errors.Is(err, context.DeadlineExceeded) {
			log.Warn("webhook timed out", slog.Duration("timeout", n.timeout))
			return models.WebhookStatus{Status: models.WebhookStatusError, Message: "webhook timed out"}
		}

		log.Error("webhook request failed", slog.String("error", err.Error()))
		return models.WebhookStatus{Status: models.WebhookStatusError, Message: "failed to reach webhook"}
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxLoggedBody))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Warn("webhook returned non-success status",
			slog.Int("status", resp.StatusCode),
			slog.String("body", string(respBody)),
		)
		return models.WebhookStatus{
			Status:     models.WebhookStatusWarning,
			Message:    fmt.Sprintf("webhook returned status %d", resp.StatusCode),
			StatusCode: resp.StatusCode,
		}
	}

	log.Info("webhook triggered successfully", slog.Int("status", resp.StatusCode))

	return models.WebhookStatus{
		Status:     models.WebhookStatusSuccess,
		Message:    "file processing started",
		StatusCode: resp.StatusCode,
	}
}

// Sign returns the X-Webhook-Signature value for body.
func Sign(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}
