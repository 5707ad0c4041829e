package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultAPIBase = "https://api.telegram.org"

// Notifier sends messages through the Telegram Bot API.
type Notifier struct {
	token   string
	apiBase string
	client  *http.Client
}

// NewNotifier creates a Telegram notifier for the given bot token.
func NewNotifier(token string) *Notifier {
	return &Notifier{
		token:   token,
		apiBase: defaultAPIBase,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// NewNotifierWithBase creates a notifier against a custom API base URL.
func NewNotifierWithBase(token, apiBase string) *Notifier {
	n := NewNotifier(token)
	n.apiBase = apiBase
	return n
}

type sendMessageRequest struct {
	ChatID int64  `json:"chat_id"`
	Text   string `json:"text"`
}

// Notify delivers a message to the given chat. A single bounded call, no
// retries; the caller decides what a failure means.
func (n *Notifier) Notify(ctx context.Context, chatID int64, message string) error {
	body, err := json.Marshal(sendMessageRequest{ChatID: chatID, Text: message})
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", n.apiBase, n.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("telegram sendMessage: status %d: %s", resp.StatusCode, payload)
	}

	return nil
}
