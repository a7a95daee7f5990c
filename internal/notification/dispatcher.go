// Package notification delivers "request paid" notices after the status
// transition and its ledger entry have been committed. Delivery failures are
// logged, never propagated: the workflow state is already durable.
package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"paydesk/internal/websocket"

	log "github.com/sirupsen/logrus"
)

// Event describes one request status transition for subscribers.
type Event struct {
	RequestID        string `json:"request_id"`
	Title            string `json:"title"`
	Status           string `json:"status"`
	Amount           string `json:"amount,omitempty"`
	BeneficiaryPhone string `json:"-"`
}

// Dispatcher fans a status event out to the websocket hub and, for paid
// requests with a beneficiary phone, to the configured SMS gateway.
type Dispatcher struct {
	gatewayURL string
	hub        *websocket.Hub
	client     *http.Client
}

func NewDispatcher(gatewayURL string, hub *websocket.Hub) *Dispatcher {
	return &Dispatcher{
		gatewayURL: gatewayURL,
		hub:        hub,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

// StatusChanged broadcasts the transition to connected clients.
func (d *Dispatcher) StatusChanged(ev Event) {
	if d.hub == nil {
		return
	}
	payload, err := json.Marshal(map[string]interface{}{
		"type": "request_status_changed",
		"data": ev,
	})
	if err != nil {
		return
	}
	select {
	case d.hub.Broadcast <- payload:
	default:
		log.Warn("websocket broadcast channel full, dropping status event")
	}
}

// RequestPaid sends an SMS to the beneficiary via the gateway. No-op when no
// gateway is configured or the request has no beneficiary phone.
func (d *Dispatcher) RequestPaid(ctx context.Context, ev Event) {
	if d.gatewayURL == "" || ev.BeneficiaryPhone == "" {
		return
	}

	message := fmt.Sprintf("Payment request %q has been paid", ev.Title)
	if ev.Amount != "" {
		message = fmt.Sprintf("Payment request %q has been paid (amount: %s)", ev.Title, ev.Amount)
	}

	body, err := json.Marshal(map[string]string{
		"to":      ev.BeneficiaryPhone,
		"message": message,
	})
	if err != nil {
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.gatewayURL, bytes.NewReader(body))
	if err != nil {
		log.WithError(err).Error("failed to build SMS gateway request")
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		log.WithError(err).WithField("request_id", ev.RequestID).Error("SMS gateway call failed")
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		log.WithFields(log.Fields{
			"request_id": ev.RequestID,
			"status":     resp.StatusCode,
		}).Error("SMS gateway rejected notification")
	}
}
