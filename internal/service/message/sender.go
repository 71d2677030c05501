package message

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"helpdesk-backend/internal/env"
)

// SendTimeout bounds a single outbound relay call so a slow chat platform
// cannot hold a staff connection's read loop.
const SendTimeout = 10 * time.Second

// Sender delivers relayed content to the external chat platform. Failures
// are logged by the caller, never propagated: persistence is the
// authoritative outcome of a post.
type Sender interface {
	Send(ctx context.Context, chatID int64, text string) error
}

// TelegramSender posts through the Bot API sendMessage method, the same call
// the chat-platform adapter uses in the other direction.
type TelegramSender struct {
	client  *http.Client
	baseURL string
	botKey  string
}

func NewTelegramSender() *TelegramSender {
	return &TelegramSender{
		client:  &http.Client{Timeout: SendTimeout},
		baseURL: env.GetOrDefault(env.TelegramAPIBase, "https://api.telegram.org"),
		botKey:  env.Get(env.BotAPIKey),
	}
}

func (s *TelegramSender) Send(ctx context.Context, chatID int64, text string) error {
	form := url.Values{}
	form.Set("chat_id", strconv.FormatInt(chatID, 10))
	form.Set("text", text)

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", strings.TrimRight(s.baseURL, "/"), s.botKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build sendMessage request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	res, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("sendMessage: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return fmt.Errorf("sendMessage: status %d: %s", res.StatusCode, string(body))
	}
	return nil
}
