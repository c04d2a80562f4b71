package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/ysrc26/footbal-squad-manager/pkg/queue"
)

const oneSignalURL = "https://onesignal.com/api/v1/notifications"

// Sender delivers push payloads through the OneSignal REST API. Users are
// addressed by external user ID, which equals our user UUID.
type Sender struct {
	appID  string
	apiKey string
	client *http.Client
	logger *zap.Logger
}

// NewSender creates a OneSignal sender.
func NewSender(appID, apiKey string, logger *zap.Logger) *Sender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sender{
		appID:  appID,
		apiKey: apiKey,
		client: &http.Client{Timeout: 10 * time.Second},
		logger: logger,
	}
}

// Configured reports whether OneSignal credentials are present.
func (s *Sender) Configured() bool {
	return s.appID != "" && s.apiKey != ""
}

// Send delivers one push payload. Empty UserIDs broadcasts to all subscribers.
func (s *Sender) Send(ctx context.Context, payload queue.PushPayload) error {
	body := map[string]interface{}{
		"app_id":   s.appID,
		"headings": map[string]string{"en": payload.Title},
		"contents": map[string]string{"en": payload.Body},
		"data":     payload.Data,
	}
	if len(payload.UserIDs) > 0 {
		body["include_external_user_ids"] = payload.UserIDs
		body["channel_for_external_user_ids"] = "push"
	} else {
		body["included_segments"] = []string{"Total Subscriptions"}
	}

	raw, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, oneSignalURL, bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Basic "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("onesignal request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("onesignal status %d: %s", resp.StatusCode, snippet)
	}
	s.logger.Debug("push delivered", zap.String("title", payload.Title), zap.Int("recipients", len(payload.UserIDs)))
	return nil
}
