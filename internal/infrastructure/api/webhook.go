package api

import (
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"shopify-agent-gateway/internal/application"
	"shopify-agent-gateway/internal/domain"
	"shopify-agent-gateway/internal/infrastructure/metrics"
)

// WebhookVerifier checks the HMAC signature of a webhook delivery.
type WebhookVerifier interface {
	VerifyWebhook(r *http.Request, payload []byte) bool
}

// WebhookHandler receives Shopify webhook deliveries, verifies them, and
// hands them to the dispatcher. It acknowledges with 200 even when handling
// fails: a non-success status would make the platform retry delivery
// indefinitely.
type WebhookHandler struct {
	verifier   WebhookVerifier
	dispatcher *application.WebhookDispatcher
	metrics    *metrics.Metrics
	logger     zerolog.Logger
}

// NewWebhookHandler creates the webhook endpoint handler.
func NewWebhookHandler(
	verifier WebhookVerifier,
	dispatcher *application.WebhookDispatcher,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *WebhookHandler {
	return &WebhookHandler{
		verifier:   verifier,
		dispatcher: dispatcher,
		metrics:    m,
		logger:     logger,
	}
}

// ServeHTTP handles POST /webhooks/shopify.
func (h *WebhookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	topic := r.Header.Get("X-Shopify-Topic")
	if topic == "" {
		http.Error(w, "Missing X-Shopify-Topic header", http.StatusBadRequest)
		return
	}

	payload, err := io.ReadAll(r.Body)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to read webhook payload")
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if !h.verifier.VerifyWebhook(r, payload) {
		h.logger.Warn().Str("topic", topic).Msg("Webhook signature verification failed")
		http.Error(w, "Invalid signature", http.StatusUnauthorized)
		return
	}

	shop := r.Header.Get("X-Shopify-Shop-Domain")
	event := &domain.WebhookEvent{
		Topic:     topic,
		Shop:      shop,
		Payload:   payload,
		Verified:  true,
		CreatedAt: time.Now(),
	}

	h.metrics.WebhookEvents.WithLabelValues(topic).Inc()
	h.dispatcher.Dispatch(r.Context(), event)

	writeJSON(w, http.StatusOK, map[string]string{"received": "true"})
}
