package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"intelliq/internal/logger"
)

// notifier posts small JSON events to an ops webhook. Sends run in a
// goroutine and never block or fail the request being handled.
type notifier struct {
	url    string
	client *http.Client
	log    *logger.Logger
}

func newNotifier(url string, log *logger.Logger) *notifier {
	if url == "" {
		return nil
	}
	return &notifier{
		url:    url,
		client: &http.Client{Timeout: 5 * time.Second},
		log:    log,
	}
}

type webhookEvent struct {
	Event     string                 `json:"event"`
	Timestamp string                 `json:"timestamp"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
}

func (h *Handler) notify(event string, fields map[string]interface{}) {
	n := h.notifier
	if n == nil {
		return
	}
	go n.send(event, fields)
}

func (n *notifier) send(event string, fields map[string]interface{}) {
	payload, err := json.Marshal(webhookEvent{
		Event:     event,
		Timestamp: time.Now().Format(time.RFC3339),
		Fields:    fields,
	})
	if err != nil {
		n.log.Error("failed to marshal webhook event", "event", event, "error", err)
		return
	}

	resp, err := n.client.Post(n.url, "application/json", bytes.NewReader(payload))
	if err != nil {
		n.log.Error("failed to send webhook event", "event", event, "error", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		n.log.Error("webhook event rejected",
			"event", event, "status", resp.StatusCode, "body", string(body))
	}
}
