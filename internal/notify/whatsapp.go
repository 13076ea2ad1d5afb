package notify

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// WhatsAppSender delivers messages to a WhatsApp group through the UltraMSG
// messages/chat endpoint.
type WhatsAppSender struct {
	endpoint string
	token    string
	groupID  string
	client   *http.Client
}

// NewWhatsAppSender creates an UltraMSG sender for the given instance.
func NewWhatsAppSender(apiBaseURL, instanceID, token, groupID string, timeout time.Duration) *WhatsAppSender {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &WhatsAppSender{
		endpoint: fmt.Sprintf("%s/%s/messages/chat", strings.TrimRight(apiBaseURL, "/"), instanceID),
		token:    token,
		groupID:  groupID,
		client:   &http.Client{Timeout: timeout},
	}
}

// Send posts the text to the configured group.
func (w *WhatsAppSender) Send(text string) error {
	form := url.Values{}
	form.Set("token", w.token)
	form.Set("to", w.groupID)
	form.Set("body", text)
	form.Set("priority", "10")

	resp, err := w.client.Post(w.endpoint, "application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("whatsapp: send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("whatsapp: unexpected status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

// Name returns the sender identifier.
func (w *WhatsAppSender) Name() string {
	return "whatsapp"
}
