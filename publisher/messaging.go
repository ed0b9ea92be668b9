package publisher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"smartmeeting/store"
)

// maxMessageRunes keeps bodies within a few SMS segments.
const maxMessageRunes = 480

type messagingPayload struct {
	To      string `json:"to"`
	From    string `json:"from,omitempty"`
	Subject string `json:"subject"`
	Text    string `json:"text"`
}

type messagingResp struct {
	ID    string `json:"id"`
	Error string `json:"error"`
}

// MessagingChannel posts invitations to a messaging gateway webhook keyed by
// phone number. Without a webhook URL it runs in demo mode.
type MessagingChannel struct {
	url    string
	apiKey string
	sender string
	client *http.Client
}

func NewMessagingChannel(url, apiKey, sender string, client *http.Client) *MessagingChannel {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &MessagingChannel{url: url, apiKey: apiKey, sender: sender, client: client}
}

func (c *MessagingChannel) Method() store.Method { return store.MethodMessaging }

func (c *MessagingChannel) Send(ctx context.Context, recipient string, msg Message) (string, error) {
	phone, ok := NormalizePhone(recipient)
	if !ok {
		return "", fmt.Errorf("invalid phone number %q", recipient)
	}
	if c.url == "" {
		return "Message sent successfully (demo mode)", nil
	}

	body, err := json.Marshal(messagingPayload{
		To:      phone,
		From:    c.sender,
		Subject: msg.Subject,
		Text:    digest(msg.Subject+"\n"+msg.Text, maxMessageRunes),
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var data messagingResp
	_ = json.Unmarshal(raw, &data)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if data.Error != "" {
			return "", fmt.Errorf("messaging gateway returned %d: %s", resp.StatusCode, data.Error)
		}
		return "", fmt.Errorf("messaging gateway returned %d", resp.StatusCode)
	}
	if data.ID != "" {
		return "Message sent successfully (id " + data.ID + ")", nil
	}
	return "Message sent successfully", nil
}
