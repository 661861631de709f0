package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"

	"RRGSentinel/internal/model"
)

const telegramAPI = "https://api.telegram.org"

// TelegramNotifier publishes rotation reports to one chat through the Bot
// API and answers commands sent from that chat.
type TelegramNotifier struct {
	BotToken string
	ChatID   string
	BaseURL  string
	Client   *http.Client
	Retries  int
	// Backoff is the wait before retry attempt n (0-based).
	Backoff func(n int) time.Duration
}

func NewTelegramNotifier(botToken, chatID, proxyURL string) *TelegramNotifier {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &TelegramNotifier{
		BotToken: botToken,
		ChatID:   chatID,
		BaseURL:  telegramAPI,
		Client:   &http.Client{Timeout: 30 * time.Second, Transport: transport},
		Retries:  3,
		Backoff:  exponentialBackoff,
	}
}

func exponentialBackoff(n int) time.Duration {
	d := time.Second << uint(n)
	if d > 30*time.Second {
		d = 30 * time.Second
	}
	return d
}

// botReply is the envelope of every Bot API response.
type botReply struct {
	OK          bool            `json:"ok"`
	Description string          `json:"description"`
	Result      json.RawMessage `json:"result"`
}

// call invokes a Bot API method with a JSON body and decodes its result
// into out when out is non-nil.
func (t *TelegramNotifier) call(ctx context.Context, client *http.Client, method string, params any, out any) error {
	body, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("telegram %s: marshal: %w", method, err)
	}
	base := t.BaseURL
	if base == "" {
		base = telegramAPI
	}
	endpoint := fmt.Sprintf("%s/bot%s/%s", base, t.BotToken, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("telegram %s: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("telegram %s: %w", method, err)
	}
	defer resp.Body.Close()

	var reply botReply
	decodeErr := json.NewDecoder(resp.Body).Decode(&reply)
	if resp.StatusCode != http.StatusOK || !reply.OK {
		return fmt.Errorf("telegram %s: status %d: %s", method, resp.StatusCode, reply.Description)
	}
	if decodeErr != nil {
		return fmt.Errorf("telegram %s: decode: %w", method, decodeErr)
	}
	if out != nil {
		if err := json.Unmarshal(reply.Result, out); err != nil {
			return fmt.Errorf("telegram %s: decode result: %w", method, err)
		}
	}
	return nil
}

// Publish sends the rotation report of a cycle snapshot.
func (t *TelegramNotifier) Publish(ctx context.Context, snap *model.Snapshot) error {
	return t.SendWithRetry(ctx, FormatRotationReport(snap), t.Retries)
}

// Send posts an HTML message to the configured chat.
func (t *TelegramNotifier) Send(ctx context.Context, text string) error {
	return t.call(ctx, t.Client, "sendMessage", map[string]string{
		"chat_id":    t.ChatID,
		"text":       text,
		"parse_mode": "HTML",
	}, nil)
}

// SendWithRetry retries Send up to maxRetries times, waiting Backoff between
// attempts. A cancelled context stops it early.
func (t *TelegramNotifier) SendWithRetry(ctx context.Context, text string, maxRetries int) error {
	backoff := t.Backoff
	if backoff == nil {
		backoff = exponentialBackoff
	}
	var err error
	for attempt := 0; ; attempt++ {
		if err = t.Send(ctx, text); err == nil {
			return nil
		}
		if attempt == maxRetries {
			return fmt.Errorf("telegram: giving up after %d attempts: %w", attempt+1, err)
		}
		wait := backoff(attempt)
		log.Warn().Err(err).Int("attempt", attempt+1).Dur("backoff", wait).Msg("telegram send failed, retrying")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}
