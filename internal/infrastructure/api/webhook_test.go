package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopify-agent-gateway/internal/application"
	"shopify-agent-gateway/internal/domain"
	"shopify-agent-gateway/internal/infrastructure/metrics"
)

type stubVerifier struct{ ok bool }

func (v stubVerifier) VerifyWebhook(*http.Request, []byte) bool { return v.ok }

type recordingHandler struct {
	topic  string
	events []*domain.WebhookEvent
	err    error
}

func (h *recordingHandler) CanHandle(topic string) bool { return topic == h.topic }

func (h *recordingHandler) Handle(_ context.Context, event *domain.WebhookEvent) error {
	h.events = append(h.events, event)
	return h.err
}

func newTestWebhookHandler(verified bool, handlers ...application.WebhookHandler) *WebhookHandler {
	logger := zerolog.Nop()
	dispatcher := application.NewWebhookDispatcher(logger)
	for _, h := range handlers {
		dispatcher.RegisterHandler(h)
	}
	return NewWebhookHandler(stubVerifier{ok: verified}, dispatcher, metrics.New(), logger)
}

func webhookRequest(topic, shop, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/webhooks/shopify", strings.NewReader(body))
	if topic != "" {
		req.Header.Set("X-Shopify-Topic", topic)
	}
	req.Header.Set("X-Shopify-Shop-Domain", shop)
	req.Header.Set("X-Shopify-Hmac-Sha256", "sig")
	return req
}

func TestWebhookMissingTopic(t *testing.T) {
	h := newTestWebhookHandler(true)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, webhookRequest("", "shop.myshopify.com", `{}`))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWebhookInvalidSignature(t *testing.T) {
	handler := &recordingHandler{topic: "orders/create"}
	h := newTestWebhookHandler(false, handler)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, webhookRequest("orders/create", "shop.myshopify.com", `{"id":1}`))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, handler.events)
}

func TestWebhookDispatchesVerifiedEvent(t *testing.T) {
	handler := &recordingHandler{topic: "orders/create"}
	h := newTestWebhookHandler(true, handler)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, webhookRequest("orders/create", "shop.myshopify.com", `{"id":1}`))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"received":"true"}`, rec.Body.String())

	require.Len(t, handler.events, 1)
	event := handler.events[0]
	assert.Equal(t, "orders/create", event.Topic)
	assert.Equal(t, "shop.myshopify.com", event.Shop)
	assert.Equal(t, `{"id":1}`, string(event.Payload))
	assert.True(t, event.Verified)
}

func TestWebhookHandlerFailureStillAcknowledged(t *testing.T) {
	handler := &recordingHandler{topic: "orders/create", err: assert.AnError}
	h := newTestWebhookHandler(true, handler)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, webhookRequest("orders/create", "shop.myshopify.com", `{"id":1}`))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"received":"true"}`, rec.Body.String())
}

func TestWebhookUnhandledTopicAcknowledged(t *testing.T) {
	h := newTestWebhookHandler(true)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, webhookRequest("carts/update", "shop.myshopify.com", `{}`))

	assert.Equal(t, http.StatusOK, rec.Code)
}
